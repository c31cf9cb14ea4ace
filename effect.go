package z64bank

import "fmt"

// Sound pairs a sample with the tuning factor it is played at. A nil Sample
// with a zero Tuning marks an unused slot.
type Sound struct {
	Sample *Sample
	Tuning float32
}

// Effect is one entry of the bank's sound effect list. Unlike instruments
// and drums, effects are stored inline in the list, eight bytes each.
type Effect struct {
	Index  int
	Offset uint32
	Sound  Sound
}

// soundRecord is the raw wire form of a Sound, read before its sample
// pointer is resolved.
type soundRecord struct {
	sample uint32
	tuning float32
}

func (d *Decoder) readSoundRecord() (soundRecord, error) {
	var rec soundRecord
	var err error
	if rec.sample, err = d.cur.U32(); err != nil {
		return rec, fmt.Errorf("sample pointer: %w", err)
	}
	if rec.tuning, err = d.cur.F32(); err != nil {
		return rec, fmt.Errorf("sample tuning: %w", err)
	}
	return rec, nil
}

// resolveSound turns a raw sound record into a Sound, decoding the sample
// behind a nonzero pointer. A zero pointer stays nil and is never read.
func (d *Decoder) resolveSound(rec soundRecord) (Sound, error) {
	snd := Sound{Tuning: rec.tuning}
	if rec.sample == 0 {
		return snd, nil
	}
	s, err := d.sampleAt(rec.sample)
	if err != nil {
		return Sound{}, err
	}
	snd.Sample = s
	return snd, nil
}

func (e *Encoder) packSound(snd Sound) error {
	if err := e.cur.PutU32(e.sampleOffset(snd.Sample)); err != nil {
		return err
	}
	return e.cur.PutF32(snd.Tuning)
}
