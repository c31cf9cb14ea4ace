package z64bank

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Cursor is a bounds-checked, big-endian view over a binary blob. Reads and
// writes advance the position; every access that would cross the end of the
// blob fails with ErrOutOfBounds instead of touching memory.
type Cursor struct {
	data    []byte
	pos     int
	written int
}

// NewCursor returns a cursor reading from data.
func NewCursor(data []byte) *Cursor {
	return &Cursor{data: data}
}

// NewWriteCursor returns a cursor over a fresh zero-filled buffer of the
// given size.
func NewWriteCursor(size int) *Cursor {
	return &Cursor{data: make([]byte, size)}
}

// Bytes returns the underlying buffer.
func (c *Cursor) Bytes() []byte { return c.data }

// Len returns the total size of the underlying buffer.
func (c *Cursor) Len() int { return len(c.data) }

// Pos returns the current position.
func (c *Cursor) Pos() int { return c.pos }

// Written returns the high-water mark of bytes written through the cursor.
func (c *Cursor) Written() int { return c.written }

// Seek moves the position to an absolute offset. Seeking to the very end of
// the buffer is allowed; any read or write there will fail.
func (c *Cursor) Seek(off int64) error {
	if off < 0 || off > int64(len(c.data)) {
		return fmt.Errorf("seek to 0x%x in 0x%x byte blob: %w", off, len(c.data), ErrOutOfBounds)
	}
	c.pos = int(off)
	return nil
}

// Skip advances the position by n bytes.
func (c *Cursor) Skip(n int) error {
	if err := c.need(n); err != nil {
		return err
	}
	c.pos += n
	return nil
}

func (c *Cursor) need(n int) error {
	if n < 0 || c.pos+n > len(c.data) {
		return fmt.Errorf("%d bytes at 0x%x in 0x%x byte blob: %w", n, c.pos, len(c.data), ErrOutOfBounds)
	}
	return nil
}

func (c *Cursor) U8() (uint8, error) {
	if err := c.need(1); err != nil {
		return 0, err
	}
	v := c.data[c.pos]
	c.pos++
	return v, nil
}

func (c *Cursor) U16() (uint16, error) {
	if err := c.need(2); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint16(c.data[c.pos:])
	c.pos += 2
	return v, nil
}

func (c *Cursor) U32() (uint32, error) {
	if err := c.need(4); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint32(c.data[c.pos:])
	c.pos += 4
	return v, nil
}

func (c *Cursor) I16() (int16, error) {
	v, err := c.U16()
	return int16(v), err
}

func (c *Cursor) I32() (int32, error) {
	v, err := c.U32()
	return int32(v), err
}

func (c *Cursor) F32() (float32, error) {
	v, err := c.U32()
	return math.Float32frombits(v), err
}

// Slice returns n bytes at the current position without copying.
func (c *Cursor) Slice(n int) ([]byte, error) {
	if err := c.need(n); err != nil {
		return nil, err
	}
	v := c.data[c.pos : c.pos+n]
	c.pos += n
	return v, nil
}

func (c *Cursor) mark() {
	if c.pos > c.written {
		c.written = c.pos
	}
}

func (c *Cursor) PutU8(v uint8) error {
	if err := c.need(1); err != nil {
		return err
	}
	c.data[c.pos] = v
	c.pos++
	c.mark()
	return nil
}

func (c *Cursor) PutU16(v uint16) error {
	if err := c.need(2); err != nil {
		return err
	}
	binary.BigEndian.PutUint16(c.data[c.pos:], v)
	c.pos += 2
	c.mark()
	return nil
}

func (c *Cursor) PutU32(v uint32) error {
	if err := c.need(4); err != nil {
		return err
	}
	binary.BigEndian.PutUint32(c.data[c.pos:], v)
	c.pos += 4
	c.mark()
	return nil
}

func (c *Cursor) PutI16(v int16) error { return c.PutU16(uint16(v)) }

func (c *Cursor) PutI32(v int32) error { return c.PutU32(uint32(v)) }

func (c *Cursor) PutF32(v float32) error { return c.PutU32(math.Float32bits(v)) }

func (c *Cursor) PutBytes(p []byte) error {
	if err := c.need(len(p)); err != nil {
		return err
	}
	copy(c.data[c.pos:], p)
	c.pos += len(p)
	c.mark()
	return nil
}
