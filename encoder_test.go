package z64bank

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

func TestEncodeRoundTrip(t *testing.T) {
	blob, meta := buildTestBank()

	b, err := NewDecoder(blob, meta).Decode()
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	packed, packedMeta, err := NewEncoder(b).Encode()
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	if !bytes.Equal(packed, blob) {
		t.Errorf("repacked blob differs from the source\ngot  % x\nwant % x", packed, blob)
	}
	if !bytes.Equal(packedMeta, meta.Bankmeta()) {
		t.Errorf("repacked metadata = % x, want % x", packedMeta, meta.Bankmeta())
	}
}

func TestEncodeDeterministic(t *testing.T) {
	b := decodeTestBank(t)

	first, firstMeta, err := NewEncoder(b).Encode()
	if err != nil {
		t.Fatalf("first encode failed: %v", err)
	}
	second, secondMeta, err := NewEncoder(b).Encode()
	if err != nil {
		t.Fatalf("second encode failed: %v", err)
	}

	if !bytes.Equal(first, second) || !bytes.Equal(firstMeta, secondMeta) {
		t.Error("two packings of one graph differ")
	}
}

func TestEncodeRederivesCounts(t *testing.T) {
	b := decodeTestBank(t)
	b.Meta.NumInstruments = 99
	b.Meta.NumDrums = 99
	b.Meta.NumEffects = 99

	_, metaData, err := NewEncoder(b).Encode()
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	// Counts come from the slot lists, not from whatever Meta carries.
	ent, err := ParseBankmeta(metaData)
	if err != nil {
		t.Fatal(err)
	}
	if ent.NumInstruments != 2 || ent.NumDrums != 2 || ent.NumEffects != 2 {
		t.Errorf("counts = %d, %d, %d, want 2, 2, 2",
			ent.NumInstruments, ent.NumDrums, ent.NumEffects)
	}
	if ent.Medium != MediumCartridge || ent.SeqPlayer != 2 || ent.FontID != 255 {
		t.Errorf("identity fields not carried: %+v", ent)
	}
}

func TestEncodeLayoutWithoutDrums(t *testing.T) {
	// With no drums the drum pointer table group disappears and the
	// effect list moves up behind the header.
	b := decodeTestBank(t)
	b.Drums = nil

	packed, _, err := NewEncoder(b).Encode()
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	be := binary.BigEndian
	if got := be.Uint32(packed[0:]); got != 0 {
		t.Errorf("drum list pointer = 0x%x, want 0", got)
	}
	if got := be.Uint32(packed[4:]); got != 0x10 {
		t.Errorf("effect list pointer = 0x%x, want 0x10", got)
	}
	if got := be.Uint32(packed[8:]); got != 0x20 {
		t.Errorf("instrument 0 pointer = 0x%x, want 0x20", got)
	}

	// And the blob still reads back.
	meta := IndexEntry{NumInstruments: 2, NumEffects: 2}
	if _, err := NewDecoder(packed, meta).Decode(); err != nil {
		t.Fatalf("repacked blob does not decode: %v", err)
	}
}

func TestEncodeAliasedInstrumentSlots(t *testing.T) {
	b := decodeTestBank(t)
	b.Instruments[1] = b.Instruments[0]

	packed, _, err := NewEncoder(b).Encode()
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	be := binary.BigEndian
	p0, p1 := be.Uint32(packed[8:]), be.Uint32(packed[12:])
	if p0 == 0 || p0 != p1 {
		t.Errorf("aliased slots packed to 0x%x and 0x%x, want one shared pointer", p0, p1)
	}
}

func TestEncodeRejectsBadGraphs(t *testing.T) {
	sample := func() *Sample {
		return &Sample{Codec: CodecADPCM, Medium: MediumCartridge, Size: 0x100}
	}
	env := func() *Envelope {
		return &Envelope{Points: []EnvelopePoint{{Delay: -1}}}
	}

	testCases := []struct {
		desc  string
		build func() *Bank
	}{
		{"too many instrument slots", func() *Bank {
			return &Bank{Instruments: make([]*Instrument, 0x100)}
		}},
		{"too many drum slots", func() *Bank {
			return &Bank{Drums: make([]*Drum, 0x100)}
		}},
		{"too many effect slots", func() *Bank {
			return &Bank{Effects: make([]*Effect, 0x10000)}
		}},
		{"drum without sample", func() *Bank {
			return &Bank{Drums: []*Drum{{Envelope: env()}}}
		}},
		{"envelope without points", func() *Bank {
			return &Bank{Instruments: []*Instrument{{Envelope: &Envelope{}}}}
		}},
		{"sample size past 24 bits", func() *Bank {
			s := sample()
			s.Size = 0x1000000
			return &Bank{Effects: []*Effect{{Sound: Sound{Sample: s, Tuning: 1}}}}
		}},
		{"codec past 3 bits", func() *Bank {
			s := sample()
			s.Codec = 8
			return &Bank{Effects: []*Effect{{Sound: Sound{Sample: s, Tuning: 1}}}}
		}},
		{"medium past 2 bits", func() *Bank {
			s := sample()
			s.Medium = 4
			return &Bank{Effects: []*Effect{{Sound: Sound{Sample: s, Tuning: 1}}}}
		}},
		{"loop start without tail", func() *Bank {
			s := sample()
			s.Loop = &ADPCMLoop{Start: 8, End: 16}
			return &Bank{Effects: []*Effect{{Sound: Sound{Sample: s, Tuning: 1}}}}
		}},
		{"loop tail without start", func() *Bank {
			s := sample()
			s.Loop = &ADPCMLoop{End: 16, Tail: new([16]int16)}
			return &Bank{Effects: []*Effect{{Sound: Sound{Sample: s, Tuning: 1}}}}
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			_, _, err := NewEncoder(tc.build()).Encode()
			if !errors.Is(err, ErrUnpackableGraph) {
				t.Fatalf("error = %v, want ErrUnpackableGraph", err)
			}
		})
	}
}

func TestEncoderSingleUse(t *testing.T) {
	b := decodeTestBank(t)
	e := NewEncoder(b)
	if _, _, err := e.Encode(); err != nil {
		t.Fatalf("first encode failed: %v", err)
	}
	if _, _, err := e.Encode(); !errors.Is(err, ErrUnpackableGraph) {
		t.Fatalf("second encode error = %v, want ErrUnpackableGraph", err)
	}
}

func TestSampleBitfield(t *testing.T) {
	s := &Sample{
		Unk0:      false,
		Codec:     CodecS16InMem,
		Medium:    MediumUnknown,
		Cached:    true,
		Relocated: false,
		Size:      12345,
	}
	if got := s.bits(); got != 0x26003039 {
		t.Errorf("bits = 0x%08x, want 0x26003039", got)
	}

	s.Unk0 = true
	s.Relocated = true
	if got := s.bits(); got != 0xA7003039 {
		t.Errorf("bits = 0x%08x, want 0xa7003039", got)
	}
}
