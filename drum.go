package z64bank

import "fmt"

// Drum is one slot of the bank's drum list: a single sound with its own
// decay and pan settings. Every drum must reference a sample; the engine
// crashes on a drum whose sample pointer is zero, so a zero pointer is
// rejected at decode time instead of being passed through.
type Drum struct {
	Name   string
	Index  int
	Offset uint32

	DecayIndex uint8
	Pan        uint8
	Relocated  uint8

	Sound    Sound
	Envelope *Envelope
}

func (d *Decoder) decodeDrum(off uint32, index int) (*Drum, error) {
	if err := d.cur.Seek(int64(off)); err != nil {
		return nil, fmt.Errorf("drum: %w", err)
	}

	drum := &Drum{Name: "Drum", Index: index, Offset: off}

	var err error
	if drum.DecayIndex, err = d.cur.U8(); err != nil {
		return nil, fmt.Errorf("drum decay index: %w", err)
	}
	if drum.Pan, err = d.cur.U8(); err != nil {
		return nil, fmt.Errorf("drum pan: %w", err)
	}
	if drum.Relocated, err = d.cur.U8(); err != nil {
		return nil, fmt.Errorf("drum relocated flag: %w", err)
	}
	if err = d.cur.Skip(1); err != nil { // padding byte
		return nil, fmt.Errorf("drum padding: %w", err)
	}

	rec, err := d.readSoundRecord()
	if err != nil {
		return nil, fmt.Errorf("drum sound: %w", err)
	}
	envOff, err := d.cur.U32()
	if err != nil {
		return nil, fmt.Errorf("drum envelope pointer: %w", err)
	}

	if rec.sample == 0 {
		return nil, fmt.Errorf("drum at 0x%x has no sample: %w", off, ErrMalformedGraph)
	}
	if drum.Sound, err = d.resolveSound(rec); err != nil {
		return nil, err
	}
	if envOff != 0 {
		if drum.Envelope, err = d.envelopeAt(envOff); err != nil {
			return nil, err
		}
	}

	return drum, nil
}

func (drum *Drum) packedSize() int { return 0x10 }

func (e *Encoder) packDrum(drum *Drum) error {
	if err := e.cur.PutU8(drum.DecayIndex); err != nil {
		return err
	}
	if err := e.cur.PutU8(drum.Pan); err != nil {
		return err
	}
	if err := e.cur.PutU8(drum.Relocated); err != nil {
		return err
	}
	if err := e.cur.PutU8(0); err != nil { // padding byte
		return err
	}
	if err := e.packSound(drum.Sound); err != nil {
		return err
	}
	return e.cur.PutU32(e.envelopeOffset(drum.Envelope))
}
