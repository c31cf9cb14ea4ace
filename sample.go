package z64bank

import "fmt"

// Sample describes one entry of audio data in the audiotable. The payload
// itself is not part of the bank; the record stores where it lives
// (TableOffset, relative to the audiotable for this bank) and how to decode
// it. Codec, medium, the cache and relocation flags, and the payload size
// are packed into a single 32-bit bitfield in the binary record.
type Sample struct {
	Name   string
	Index  int
	Offset uint32

	Unk0      bool
	Codec     SampleCodec
	Medium    StorageMedium
	Cached    bool
	Relocated bool
	Size      uint32 // payload length in bytes, 24 bits

	TableOffset uint32
	Loop        *ADPCMLoop
	Book        *ADPCMBook
}

const sampleSizeMax = 0xFFFFFF

// sampleAt returns the sample at off, decoding it on first visit.
func (d *Decoder) sampleAt(off uint32) (*Sample, error) {
	if s, ok := d.samples[off]; ok {
		return s, nil
	}

	if err := d.cur.Seek(int64(off)); err != nil {
		return nil, fmt.Errorf("sample: %w", err)
	}

	s := &Sample{Name: "Sample", Offset: off}

	bits, err := d.cur.U32()
	if err != nil {
		return nil, fmt.Errorf("sample bitfield: %w", err)
	}
	s.Unk0 = bits>>31&1 != 0
	s.Codec = SampleCodec(bits >> 28 & 0x7)
	s.Medium = StorageMedium(bits >> 26 & 0x3)
	s.Cached = bits>>25&1 != 0
	s.Relocated = bits>>24&1 != 0
	s.Size = bits & sampleSizeMax

	if s.TableOffset, err = d.cur.U32(); err != nil {
		return nil, fmt.Errorf("sample table offset: %w", err)
	}
	loopOff, err := d.cur.U32()
	if err != nil {
		return nil, fmt.Errorf("sample loop pointer: %w", err)
	}
	bookOff, err := d.cur.U32()
	if err != nil {
		return nil, fmt.Errorf("sample book pointer: %w", err)
	}

	if loopOff != 0 {
		if s.Loop, err = d.loopAt(loopOff); err != nil {
			return nil, err
		}
	}
	if bookOff != 0 {
		if s.Book, err = d.bookAt(bookOff); err != nil {
			return nil, err
		}
	}

	s.Index = len(d.bank.Samples)
	d.samples[off] = s
	d.bank.Samples = append(d.bank.Samples, s)

	return s, nil
}

// bits packs the codec, medium, flags, and payload size back into the
// record's leading bitfield.
func (s *Sample) bits() uint32 {
	var bits uint32
	if s.Unk0 {
		bits |= 1 << 31
	}
	bits |= uint32(s.Codec&0x7) << 28
	bits |= uint32(s.Medium&0x3) << 26
	if s.Cached {
		bits |= 1 << 25
	}
	if s.Relocated {
		bits |= 1 << 24
	}
	return bits | s.Size&sampleSizeMax
}

func (s *Sample) packedSize() int { return 0x10 }

func (e *Encoder) packSample(s *Sample) error {
	if err := e.cur.PutU32(s.bits()); err != nil {
		return err
	}
	if err := e.cur.PutU32(s.TableOffset); err != nil {
		return err
	}
	if err := e.cur.PutU32(e.loopOffset(s.Loop)); err != nil {
		return err
	}
	return e.cur.PutU32(e.bookOffset(s.Book))
}
