package z64bank

import "fmt"

// Envelope is an articulation table of (delay, argument) pairs that drives
// the volume ramp of an instrument, drum, or effect. The final pair, whose
// delay is a negative opcode (hang, goto, or restart) or zero (disable),
// terminates the table and is kept as part of Points.
type Envelope struct {
	Name   string
	Index  int
	Offset uint32
	Points []EnvelopePoint
}

// EnvelopePoint is a single envelope step.
type EnvelopePoint struct {
	Delay int16
	Arg   int16
}

// envelopeAt returns the envelope at off, decoding it on first visit.
// Envelope tables carry no length; pairs are read until a negative delay or
// the end of the blob, whichever comes first.
func (d *Decoder) envelopeAt(off uint32) (*Envelope, error) {
	if env, ok := d.envelopes[off]; ok {
		return env, nil
	}

	if err := d.cur.Seek(int64(off)); err != nil {
		return nil, fmt.Errorf("envelope: %w", err)
	}

	env := &Envelope{Offset: off}

	for d.cur.Pos()+4 <= d.cur.Len() {
		delay, err := d.cur.I16()
		if err != nil {
			return nil, fmt.Errorf("envelope delay: %w", err)
		}
		arg, err := d.cur.I16()
		if err != nil {
			return nil, fmt.Errorf("envelope argument: %w", err)
		}

		env.Points = append(env.Points, EnvelopePoint{Delay: delay, Arg: arg})

		if delay < 0 {
			break
		}
	}

	env.Name = envelopeName(env.Points)
	env.Index = len(d.bank.Envelopes)
	d.envelopes[off] = env
	d.bank.Envelopes = append(d.bank.Envelopes, env)

	return env, nil
}

// packedSize returns the record's size in a packed bank, including group
// padding.
func (env *Envelope) packedSize() int {
	return align16(4 * len(env.Points))
}

func packEnvelope(cur *Cursor, env *Envelope) error {
	for _, p := range env.Points {
		if err := cur.PutI16(p.Delay); err != nil {
			return err
		}
		if err := cur.PutI16(p.Arg); err != nil {
			return err
		}
	}
	return nil
}
