package z64bank

import "fmt"

// Instrument is one slot of the bank's instrument table. The three sounds
// split the keyboard into low, primary, and high regions at the two key
// region bounds; unused splits leave their sample nil.
type Instrument struct {
	Name   string
	Index  int
	Offset uint32

	Relocated  uint8
	KeyLow     uint8
	KeyHigh    uint8
	DecayIndex uint8

	Envelope *Envelope
	Sounds   [3]Sound // low, primary, high
}

func (d *Decoder) decodeInstrument(off uint32, index int) (*Instrument, error) {
	if err := d.cur.Seek(int64(off)); err != nil {
		return nil, fmt.Errorf("instrument: %w", err)
	}

	inst := &Instrument{Name: "Instrument", Index: index, Offset: off}

	var err error
	if inst.Relocated, err = d.cur.U8(); err != nil {
		return nil, fmt.Errorf("instrument relocated flag: %w", err)
	}
	if inst.KeyLow, err = d.cur.U8(); err != nil {
		return nil, fmt.Errorf("instrument key region low: %w", err)
	}
	if inst.KeyHigh, err = d.cur.U8(); err != nil {
		return nil, fmt.Errorf("instrument key region high: %w", err)
	}
	if inst.DecayIndex, err = d.cur.U8(); err != nil {
		return nil, fmt.Errorf("instrument decay index: %w", err)
	}

	envOff, err := d.cur.U32()
	if err != nil {
		return nil, fmt.Errorf("instrument envelope pointer: %w", err)
	}
	var recs [3]soundRecord
	for i := range recs {
		if recs[i], err = d.readSoundRecord(); err != nil {
			return nil, fmt.Errorf("instrument split %d: %w", i, err)
		}
	}

	if envOff != 0 {
		if inst.Envelope, err = d.envelopeAt(envOff); err != nil {
			return nil, err
		}
	}
	for i, rec := range recs {
		if inst.Sounds[i], err = d.resolveSound(rec); err != nil {
			return nil, err
		}
	}

	return inst, nil
}

func (inst *Instrument) packedSize() int { return 0x20 }

func (e *Encoder) packInstrument(inst *Instrument) error {
	if err := e.cur.PutU8(inst.Relocated); err != nil {
		return err
	}
	if err := e.cur.PutU8(inst.KeyLow); err != nil {
		return err
	}
	if err := e.cur.PutU8(inst.KeyHigh); err != nil {
		return err
	}
	if err := e.cur.PutU8(inst.DecayIndex); err != nil {
		return err
	}
	if err := e.cur.PutU32(e.envelopeOffset(inst.Envelope)); err != nil {
		return err
	}
	for _, snd := range inst.Sounds {
		if err := e.packSound(snd); err != nil {
			return err
		}
	}
	return nil
}
