package z64bank

import (
	"fmt"
	"math"
)

// Decoder reads the binary form of one bank into its logical graph. A
// decoder is good for a single Decode call.
//
// Shared records are memoized by offset: the first visit decodes, every
// later pointer to the same offset reuses the node. That is what turns
// pointer aliasing in the blob into shared nodes in the graph, and the
// fixed visit order (drums, then effects, then instruments, each record's
// fields in declaration order) is what makes registry indices reproducible.
type Decoder struct {
	cur  *Cursor
	meta IndexEntry
	bank *Bank

	envelopes map[uint32]*Envelope
	samples   map[uint32]*Sample
	loops     map[uint32]*ADPCMLoop
	books     map[uint32]*ADPCMBook
}

// NewDecoder returns a decoder over a bank blob. Offsets inside the blob
// are relative to its start, so the slice must hold exactly one bank.
func NewDecoder(data []byte, meta IndexEntry) *Decoder {
	return &Decoder{
		cur:       NewCursor(data),
		meta:      meta,
		envelopes: make(map[uint32]*Envelope),
		samples:   make(map[uint32]*Sample),
		loops:     make(map[uint32]*ADPCMLoop),
		books:     make(map[uint32]*ADPCMBook),
	}
}

// Decode reads the whole reachable graph.
func (d *Decoder) Decode() (*Bank, error) {
	if d.bank != nil {
		return nil, errDecoderUsed
	}
	d.bank = &Bank{Meta: d.meta}

	var err error
	if d.bank.DrumListOffset, err = d.cur.U32(); err != nil {
		return nil, fmt.Errorf("drum list pointer: %w", err)
	}
	if d.bank.SFXListOffset, err = d.cur.U32(); err != nil {
		return nil, fmt.Errorf("effect list pointer: %w", err)
	}

	if err := d.decodeDrumList(); err != nil {
		return nil, err
	}
	if err := d.decodeEffectList(); err != nil {
		return nil, err
	}
	if err := d.decodeInstrumentList(); err != nil {
		return nil, err
	}

	return d.bank, nil
}

func (d *Decoder) decodeDrumList() error {
	count := int(d.meta.NumDrums)
	if count == 0 {
		return nil
	}
	if d.bank.DrumListOffset == 0 {
		d.bank.Drums = make([]*Drum, count)
		return nil
	}

	if err := d.cur.Seek(int64(d.bank.DrumListOffset)); err != nil {
		return fmt.Errorf("drum list: %w", err)
	}
	offsets := make([]uint32, count)
	for i := range offsets {
		off, err := d.cur.U32()
		if err != nil {
			return fmt.Errorf("drum %d pointer: %w", i, err)
		}
		offsets[i] = off
	}

	d.bank.Drums = make([]*Drum, 0, count)
	valid := 0
	for i, off := range offsets {
		if off == 0 {
			d.bank.Drums = append(d.bank.Drums, nil)
			continue
		}
		drum, err := d.decodeDrum(off, valid)
		if err != nil {
			return fmt.Errorf("drum %d: %w", i, err)
		}
		d.bank.Drums = append(d.bank.Drums, drum)
		valid++
	}
	return nil
}

func (d *Decoder) decodeEffectList() error {
	count := int(d.meta.NumEffects)
	if count == 0 {
		return nil
	}
	if d.bank.SFXListOffset == 0 {
		d.bank.Effects = make([]*Effect, count)
		return nil
	}

	if err := d.cur.Seek(int64(d.bank.SFXListOffset)); err != nil {
		return fmt.Errorf("effect list: %w", err)
	}
	recs := make([]soundRecord, count)
	for i := range recs {
		rec, err := d.readSoundRecord()
		if err != nil {
			return fmt.Errorf("effect %d: %w", i, err)
		}
		recs[i] = rec
	}

	d.bank.Effects = make([]*Effect, 0, count)
	for i, rec := range recs {
		// An all-zero slot is an empty one. The tuning is compared by bit
		// pattern so a negative zero still counts as a present effect.
		if rec.sample == 0 && math.Float32bits(rec.tuning) == 0 {
			d.bank.Effects = append(d.bank.Effects, nil)
			continue
		}
		snd, err := d.resolveSound(rec)
		if err != nil {
			return fmt.Errorf("effect %d: %w", i, err)
		}
		d.bank.Effects = append(d.bank.Effects, &Effect{
			Index:  i,
			Offset: d.bank.SFXListOffset + uint32(8*i),
			Sound:  snd,
		})
	}
	return nil
}

func (d *Decoder) decodeInstrumentList() error {
	count := int(d.meta.NumInstruments)
	if count == 0 {
		return nil
	}

	if err := d.cur.Seek(8); err != nil {
		return fmt.Errorf("instrument table: %w", err)
	}
	offsets := make([]uint32, count)
	for i := range offsets {
		off, err := d.cur.U32()
		if err != nil {
			return fmt.Errorf("instrument %d pointer: %w", i, err)
		}
		offsets[i] = off
	}

	d.bank.Instruments = make([]*Instrument, 0, count)
	valid := 0
	for i, off := range offsets {
		if off == 0 {
			d.bank.Instruments = append(d.bank.Instruments, nil)
			continue
		}
		inst, err := d.decodeInstrument(off, valid)
		if err != nil {
			return fmt.Errorf("instrument %d: %w", i, err)
		}
		d.bank.Instruments = append(d.bank.Instruments, inst)
		valid++
	}
	return nil
}
