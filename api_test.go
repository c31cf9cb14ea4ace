package z64bank

import (
	"bytes"
	"errors"
	"testing"
)

func TestDecodeEncode(t *testing.T) {
	blob, ent := buildTestBank()
	meta := ent.Bankmeta()

	b, err := Decode(blob, meta)
	if err != nil {
		t.Fatal(err)
	}
	if len(b.Instruments) != 2 || len(b.Drums) != 2 || len(b.Effects) != 2 {
		t.Fatalf("slots = %d/%d/%d", len(b.Instruments), len(b.Drums), len(b.Effects))
	}

	packed, packedMeta, err := Encode(b)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(packed, blob) {
		t.Error("repacked bank differs from the source binary")
	}
	if !bytes.Equal(packedMeta, meta) {
		t.Error("repacked bankmeta differs from the source binary")
	}
}

func TestDecodeShortMeta(t *testing.T) {
	blob, _ := buildTestBank()
	if _, err := Decode(blob, make([]byte, 7)); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("7 byte bankmeta: %v", err)
	}
}

func TestMarshalUnmarshalBank(t *testing.T) {
	blob, ent := buildTestBank()
	b, err := Decode(blob, ent.Bankmeta())
	if err != nil {
		t.Fatal(err)
	}

	text, err := MarshalBank(b)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(text, []byte("<?xml")) {
		t.Errorf("text starts with %q", text[:min(len(text), 16)])
	}

	back, err := UnmarshalBank(text)
	if err != nil {
		t.Fatal(err)
	}
	packed, packedMeta, err := Encode(back)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(packed, blob) {
		t.Error("bank repacked from text differs from the source binary")
	}
	if !bytes.Equal(packedMeta, ent.Bankmeta()) {
		t.Error("bankmeta repacked from text differs")
	}
}

func TestUnmarshalBankRejectsJunk(t *testing.T) {
	for _, text := range []string{
		"",
		"not xml at all <",
		"<wave></wave>",
	} {
		if _, err := UnmarshalBank([]byte(text)); !errors.Is(err, ErrSchemaMismatch) {
			t.Errorf("%q: %v", text, err)
		}
	}
}

func TestDecodeFromIndex(t *testing.T) {
	blob, ent := buildTestBank()

	audiobank := append(make([]byte, 0x40), blob...)
	ent.Address = 0x40
	ent.Size = uint32(len(blob))

	index := make([]byte, 16+16)
	index[1] = 1
	copy(index[16:], packIndexEntry(ent))

	b, err := DecodeFromIndex(audiobank, index, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(b.Instruments) != 2 || b.Meta.Address != 0x40 {
		t.Fatalf("bank = %d instruments at %#x", len(b.Instruments), b.Meta.Address)
	}
	if b.Envelopes[0].Name != "General Use Envelope" {
		t.Errorf("envelope name = %q", b.Envelopes[0].Name)
	}

	if _, err := DecodeFromIndex(audiobank, index, 1); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("bank 1 of 1: %v", err)
	}
}

// packIndexEntry lays out one 16-byte index table entry.
func packIndexEntry(ent IndexEntry) []byte {
	cur := NewWriteCursor(indexEntrySize)
	cur.PutU32(ent.Address)
	cur.PutU32(ent.Size)
	cur.PutBytes(ent.Bankmeta())
	return cur.Bytes()
}
