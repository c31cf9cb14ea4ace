package z64bank

import (
	"fmt"
	"strconv"
)

const (
	bankmetaSize    = 8
	indexHeaderSize = 16
	indexEntrySize  = 16
)

// IndexEntry describes one bank: where it lives inside the audiobank blob,
// how big it is, and the counts and ids the engine reads before touching
// the bank itself. The last seven fields are the bank's companion metadata
// ("bankmeta") and are all a standalone metadata blob carries; Address and
// Size only exist in the index table.
type IndexEntry struct {
	Address uint32
	Size    uint32

	Medium         StorageMedium
	SeqPlayer      uint8
	TableID        uint8
	FontID         uint8
	NumInstruments uint8
	NumDrums       uint8
	NumEffects     uint16
}

// ParseBankmeta reads an 8-byte metadata blob. Address and Size stay zero;
// a standalone blob does not carry them.
func ParseBankmeta(data []byte) (IndexEntry, error) {
	var ent IndexEntry
	cur := NewCursor(data)

	medium, err := cur.U8()
	if err != nil {
		return ent, fmt.Errorf("bankmeta medium: %w", err)
	}
	ent.Medium = StorageMedium(medium)
	if ent.SeqPlayer, err = cur.U8(); err != nil {
		return ent, fmt.Errorf("bankmeta sequence player: %w", err)
	}
	if ent.TableID, err = cur.U8(); err != nil {
		return ent, fmt.Errorf("bankmeta table id: %w", err)
	}
	if ent.FontID, err = cur.U8(); err != nil {
		return ent, fmt.Errorf("bankmeta font id: %w", err)
	}
	if ent.NumInstruments, err = cur.U8(); err != nil {
		return ent, fmt.Errorf("bankmeta instrument count: %w", err)
	}
	if ent.NumDrums, err = cur.U8(); err != nil {
		return ent, fmt.Errorf("bankmeta drum count: %w", err)
	}
	if ent.NumEffects, err = cur.U16(); err != nil {
		return ent, fmt.Errorf("bankmeta effect count: %w", err)
	}

	return ent, nil
}

// Bankmeta renders the entry back into an 8-byte metadata blob.
func (ent IndexEntry) Bankmeta() []byte {
	cur := NewWriteCursor(bankmetaSize)
	cur.PutU8(uint8(ent.Medium))
	cur.PutU8(ent.SeqPlayer)
	cur.PutU8(ent.TableID)
	cur.PutU8(ent.FontID)
	cur.PutU8(ent.NumInstruments)
	cur.PutU8(ent.NumDrums)
	cur.PutU16(ent.NumEffects)
	return cur.Bytes()
}

// BankIndex is the table at the start of the audiobank index: a bank count
// followed by one 16-byte entry per bank.
type BankIndex struct {
	Entries []IndexEntry
}

// ParseIndex reads an audiobank index table.
func ParseIndex(data []byte) (*BankIndex, error) {
	cur := NewCursor(data)

	count, err := cur.U16()
	if err != nil {
		return nil, fmt.Errorf("index bank count: %w", err)
	}
	if err := cur.Skip(indexHeaderSize - 2); err != nil {
		return nil, fmt.Errorf("index header: %w", err)
	}

	ix := &BankIndex{Entries: make([]IndexEntry, 0, count)}
	for i := 0; i < int(count); i++ {
		addr, err := cur.U32()
		if err != nil {
			return nil, fmt.Errorf("index entry %d address: %w", i, err)
		}
		size, err := cur.U32()
		if err != nil {
			return nil, fmt.Errorf("index entry %d size: %w", i, err)
		}
		meta, err := cur.Slice(bankmetaSize)
		if err != nil {
			return nil, fmt.Errorf("index entry %d: %w", i, err)
		}
		ent, err := ParseBankmeta(meta)
		if err != nil {
			return nil, fmt.Errorf("index entry %d: %w", i, err)
		}
		ent.Address = addr
		ent.Size = size
		ix.Entries = append(ix.Entries, ent)
	}

	return ix, nil
}

// SliceBank cuts bank n out of a whole audiobank blob, returning its bytes
// and its index entry.
func (ix *BankIndex) SliceBank(audiobank []byte, n int) ([]byte, IndexEntry, error) {
	if n < 0 || n >= len(ix.Entries) {
		return nil, IndexEntry{}, fmt.Errorf("bank %d of %d: %w", n, len(ix.Entries), ErrOutOfBounds)
	}
	ent := ix.Entries[n]

	start := int64(ent.Address)
	end := start + int64(ent.Size)
	if end > int64(len(audiobank)) {
		return nil, IndexEntry{}, fmt.Errorf("bank %d spans 0x%x-0x%x in 0x%x byte blob: %w",
			n, start, end, len(audiobank), ErrOutOfBounds)
	}

	return audiobank[start:end], ent, nil
}

// treeStruct renders the entry as the abindexentry struct of a bank tree.
// Counts come from the caller, which derives them from the slot lists.
func (ent IndexEntry) treeStruct(numInst, numDrum, numEffects int) *Element {
	st := NewElement("struct")
	st.SetAttr("name", "ABIndexEntry")
	st.Add(
		numField("Bank Offset in Audiobank", "uint32", "Ptr Bank (in Audiobank)", formatUint(uint64(ent.Address))),
		numField("Bank Size", "uint32", "None", formatUint(uint64(ent.Size))),
		defaultField("Sample Medium", "uint8", "None", "2", formatUint(uint64(ent.Medium))),
		defaultField("Sequence Player", "uint8", "None", "2", formatUint(uint64(ent.SeqPlayer))),
		defaultField("Audiotable ID", "uint8", "None", "0", formatUint(uint64(ent.TableID))),
		defaultField("Soundfont ID", "uint8", "None", "255", formatUint(uint64(ent.FontID))),
		numField("NUM_INST", "uint8", "NUM_INST", formatInt(int64(numInst))),
		numField("NUM_DRUM", "uint8", "NUM_DRUM", formatInt(int64(numDrum))),
		numField("NUM_SFX", "uint16", "NUM_SFX", formatInt(int64(numEffects))),
	)
	return st
}

// parseIndexEntryStruct reads the abindexentry struct back. Fields are
// positional; the width of each one is pinned by its position.
func parseIndexEntryStruct(st *Element) (IndexEntry, error) {
	var ent IndexEntry

	if name, ok := st.Attr("name"); ok && name != "ABIndexEntry" && name != "ABIndexentry" {
		return ent, fmt.Errorf("index entry struct named %q: %w", name, ErrUnknownRecordKind)
	}

	fields := st.ChildrenNamed("field")
	if len(fields) != 9 {
		return ent, fmt.Errorf("index entry has %d fields, want 9: %w", len(fields), ErrSchemaMismatch)
	}

	vals := make([]uint64, len(fields))
	widths := []int{32, 32, 8, 8, 8, 8, 8, 8, 16}
	for i, f := range fields {
		raw, ok := f.Attr("value")
		if !ok {
			return ent, fmt.Errorf("index entry field %d has no value: %w", i, ErrSchemaMismatch)
		}
		v, err := strconv.ParseUint(raw, 10, widths[i])
		if err != nil {
			return ent, fmt.Errorf("index entry field %d value %q: %w", i, raw, ErrSchemaMismatch)
		}
		vals[i] = v
	}

	ent.Address = uint32(vals[0])
	ent.Size = uint32(vals[1])
	ent.Medium = StorageMedium(vals[2])
	ent.SeqPlayer = uint8(vals[3])
	ent.TableID = uint8(vals[4])
	ent.FontID = uint8(vals[5])
	ent.NumInstruments = uint8(vals[6])
	ent.NumDrums = uint8(vals[7])
	ent.NumEffects = uint16(vals[8])

	return ent, nil
}
