package z64bank

import (
	"bytes"
	"errors"
	"math"
	"testing"
)

func TestCursorReads(t *testing.T) {
	data := []byte{
		0x41,
		0x12, 0x34,
		0xDE, 0xAD, 0xBE, 0xEF,
		0xFF, 0xFE,
		0x80, 0x00, 0x00, 0x00,
		0x3F, 0x80, 0x00, 0x00,
		'a', 'b', 'c',
	}
	c := NewCursor(data)

	if v, err := c.U8(); err != nil || v != 0x41 {
		t.Fatalf("U8 = %#x, %v", v, err)
	}
	if v, err := c.U16(); err != nil || v != 0x1234 {
		t.Fatalf("U16 = %#x, %v", v, err)
	}
	if v, err := c.U32(); err != nil || v != 0xDEADBEEF {
		t.Fatalf("U32 = %#x, %v", v, err)
	}
	if v, err := c.I16(); err != nil || v != -2 {
		t.Fatalf("I16 = %d, %v", v, err)
	}
	if v, err := c.I32(); err != nil || v != math.MinInt32 {
		t.Fatalf("I32 = %d, %v", v, err)
	}
	if v, err := c.F32(); err != nil || v != 1.0 {
		t.Fatalf("F32 = %v, %v", v, err)
	}
	s, err := c.Slice(3)
	if err != nil || !bytes.Equal(s, []byte("abc")) {
		t.Fatalf("Slice = %q, %v", s, err)
	}
	if c.Pos() != len(data) {
		t.Fatalf("pos = %d, want %d", c.Pos(), len(data))
	}
	if _, err := c.U8(); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("read past end: %v", err)
	}
}

func TestCursorSliceShares(t *testing.T) {
	data := []byte{1, 2, 3, 4}
	c := NewCursor(data)
	s, err := c.Slice(2)
	if err != nil {
		t.Fatal(err)
	}
	data[0] = 9
	if s[0] != 9 {
		t.Error("slice copied instead of aliasing the blob")
	}
}

func TestCursorSeekSkip(t *testing.T) {
	c := NewCursor(make([]byte, 8))

	if err := c.Seek(8); err != nil {
		t.Fatalf("seek to end: %v", err)
	}
	if _, err := c.U8(); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("read at end: %v", err)
	}
	if err := c.Seek(9); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("seek past end: %v", err)
	}
	if err := c.Seek(-1); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("seek negative: %v", err)
	}

	if err := c.Seek(2); err != nil {
		t.Fatal(err)
	}
	if err := c.Skip(4); err != nil || c.Pos() != 6 {
		t.Fatalf("pos = %d, %v", c.Pos(), err)
	}
	if err := c.Skip(3); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("skip past end: %v", err)
	}
	if c.Pos() != 6 {
		t.Errorf("failed skip moved pos to %d", c.Pos())
	}
	if err := c.Skip(-1); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("negative skip: %v", err)
	}
}

func TestCursorWrites(t *testing.T) {
	c := NewWriteCursor(8)

	if err := c.PutU16(0xBEEF); err != nil {
		t.Fatal(err)
	}
	if err := c.PutU8(0x7F); err != nil {
		t.Fatal(err)
	}
	if err := c.PutI16(-1); err != nil {
		t.Fatal(err)
	}
	want := []byte{0xBE, 0xEF, 0x7F, 0xFF, 0xFF, 0, 0, 0}
	if !bytes.Equal(c.Bytes(), want) {
		t.Fatalf("buffer = % x, want % x", c.Bytes(), want)
	}

	if err := c.Seek(4); err != nil {
		t.Fatal(err)
	}
	if err := c.PutF32(1.0); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(c.Bytes()[4:], []byte{0x3F, 0x80, 0, 0}) {
		t.Fatalf("buffer = % x", c.Bytes())
	}

	if err := c.PutU8(1); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("write past end: %v", err)
	}
}

func TestCursorWritten(t *testing.T) {
	c := NewWriteCursor(16)

	if err := c.PutU32(0x01020304); err != nil {
		t.Fatal(err)
	}
	if c.Written() != 4 {
		t.Fatalf("written = %d, want 4", c.Written())
	}

	// Backfilling must not lower the high-water mark.
	if err := c.Seek(0); err != nil {
		t.Fatal(err)
	}
	if err := c.PutU16(0xFFFF); err != nil {
		t.Fatal(err)
	}
	if c.Written() != 4 {
		t.Fatalf("written = %d after backfill, want 4", c.Written())
	}

	if err := c.Seek(6); err != nil {
		t.Fatal(err)
	}
	if err := c.PutBytes([]byte{1, 2, 3}); err != nil {
		t.Fatal(err)
	}
	if c.Written() != 9 {
		t.Fatalf("written = %d, want 9", c.Written())
	}

	// Seeks alone never count as writes.
	if err := c.Seek(16); err != nil {
		t.Fatal(err)
	}
	if c.Written() != 9 {
		t.Fatalf("written = %d after seek, want 9", c.Written())
	}
}
