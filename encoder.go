package z64bank

import "fmt"

// Encoder packs a logical bank graph back into binary form. An encoder is
// good for a single Encode call.
//
// Packing is two passes over a fixed layout. Pass one walks the graph in
// the decoder's canonical order and assigns every record an offset; pass
// two writes record bytes into a zero-filled buffer, resolving pointers
// through the pass-one assignments. Groups are laid out in file order:
// header with the instrument pointer table, drum pointer table, effect
// list, instruments, drums, samples, envelopes, loops, codebooks. Each
// group and each variable-length record is padded to a 16-byte boundary.
type Encoder struct {
	bank *Bank
	cur  *Cursor
	used bool

	instOff map[*Instrument]uint32
	drumOff map[*Drum]uint32
	envOff  map[*Envelope]uint32
	smpOff  map[*Sample]uint32
	loopOff map[*ADPCMLoop]uint32
	bookOff map[*ADPCMBook]uint32

	insts     []*Instrument
	drums     []*Drum
	envelopes []*Envelope
	samples   []*Sample
	loops     []*ADPCMLoop
	books     []*ADPCMBook

	drumListOff uint32
	sfxListOff  uint32
	total       int
}

// NewEncoder returns an encoder for the given bank graph.
func NewEncoder(b *Bank) *Encoder {
	return &Encoder{
		bank:    b,
		instOff: make(map[*Instrument]uint32),
		drumOff: make(map[*Drum]uint32),
		envOff:  make(map[*Envelope]uint32),
		smpOff:  make(map[*Sample]uint32),
		loopOff: make(map[*ADPCMLoop]uint32),
		bookOff: make(map[*ADPCMBook]uint32),
	}
}

// Encode packs the graph and returns the bank blob together with its
// re-derived 8-byte metadata blob. The input graph is not modified; slot
// counts in the metadata come from the slot lists, not from Meta.
func (e *Encoder) Encode() (bankData, metaData []byte, err error) {
	if e.used {
		return nil, nil, fmt.Errorf("encoder already used: %w", ErrUnpackableGraph)
	}
	e.used = true

	if err := e.validate(); err != nil {
		return nil, nil, err
	}
	e.layout()
	if err := e.write(); err != nil {
		return nil, nil, err
	}

	meta := e.bank.Meta
	meta.NumInstruments = uint8(len(e.bank.Instruments))
	meta.NumDrums = uint8(len(e.bank.Drums))
	meta.NumEffects = uint16(len(e.bank.Effects))

	return e.cur.Bytes(), meta.Bankmeta(), nil
}

// validate is the pre-flight pass: everything that would produce a blob
// the decoder could not faithfully read back is rejected before a single
// byte is written.
func (e *Encoder) validate() error {
	b := e.bank

	if len(b.Instruments) > 0xFF {
		return fmt.Errorf("%d instrument slots exceed the 8-bit counter: %w", len(b.Instruments), ErrUnpackableGraph)
	}
	if len(b.Drums) > 0xFF {
		return fmt.Errorf("%d drum slots exceed the 8-bit counter: %w", len(b.Drums), ErrUnpackableGraph)
	}
	if len(b.Effects) > 0xFFFF {
		return fmt.Errorf("%d effect slots exceed the 16-bit counter: %w", len(b.Effects), ErrUnpackableGraph)
	}

	for i, drum := range b.Drums {
		if drum != nil && drum.Sound.Sample == nil {
			return fmt.Errorf("drum %d has no sample: %w", i, ErrUnpackableGraph)
		}
	}

	var err error
	e.bank.visitShared(sharedVisitor{
		envelope: func(env *Envelope) {
			if err == nil && len(env.Points) == 0 {
				err = fmt.Errorf("envelope %q has no points: %w", env.Name, ErrUnpackableGraph)
			}
		},
		sample: func(s *Sample) {
			if err != nil {
				return
			}
			switch {
			case s.Size > sampleSizeMax:
				err = fmt.Errorf("sample size 0x%x exceeds 24 bits: %w", s.Size, ErrUnpackableGraph)
			case s.Codec > 7:
				err = fmt.Errorf("sample codec %d exceeds 3 bits: %w", s.Codec, ErrUnpackableGraph)
			case s.Medium > 3:
				err = fmt.Errorf("sample medium %d exceeds 2 bits: %w", s.Medium, ErrUnpackableGraph)
			}
		},
		loop: func(loop *ADPCMLoop) {
			if err != nil {
				return
			}
			if (loop.Start != 0) != (loop.Tail != nil) {
				err = fmt.Errorf("loop tail presence must match a nonzero loop start: %w", ErrUnpackableGraph)
			}
		},
	})
	return err
}

// layout assigns every record its offset.
func (e *Encoder) layout() {
	b := e.bank
	off := align16(8 + 4*len(b.Instruments))

	if len(b.Drums) > 0 {
		e.drumListOff = uint32(off)
		off += align16(4 * len(b.Drums))
	}
	if len(b.Effects) > 0 {
		e.sfxListOff = uint32(off)
		off += align16(8 * len(b.Effects))
	}

	e.insts = b.uniqueInstruments()
	e.drums = b.uniqueDrums()
	for _, inst := range e.insts {
		e.instOff[inst] = uint32(off)
		off += inst.packedSize()
	}
	for _, drum := range e.drums {
		e.drumOff[drum] = uint32(off)
		off += drum.packedSize()
	}

	b.visitShared(sharedVisitor{
		envelope: func(env *Envelope) { e.envelopes = append(e.envelopes, env) },
		sample:   func(s *Sample) { e.samples = append(e.samples, s) },
		loop:     func(loop *ADPCMLoop) { e.loops = append(e.loops, loop) },
		book:     func(book *ADPCMBook) { e.books = append(e.books, book) },
	})

	for _, s := range e.samples {
		e.smpOff[s] = uint32(off)
		off += s.packedSize()
	}
	for _, env := range e.envelopes {
		e.envOff[env] = uint32(off)
		off += env.packedSize()
	}
	for _, loop := range e.loops {
		e.loopOff[loop] = uint32(off)
		off += loop.packedSize()
	}
	for _, book := range e.books {
		e.bookOff[book] = uint32(off)
		off += book.packedSize()
	}

	e.total = align16(off)
}

func (e *Encoder) write() error {
	b := e.bank
	e.cur = NewWriteCursor(e.total)

	if err := e.cur.PutU32(e.drumListOff); err != nil {
		return err
	}
	if err := e.cur.PutU32(e.sfxListOff); err != nil {
		return err
	}
	for _, inst := range b.Instruments {
		if err := e.cur.PutU32(e.instrumentOffset(inst)); err != nil {
			return err
		}
	}

	if len(b.Drums) > 0 {
		if err := e.cur.Seek(int64(e.drumListOff)); err != nil {
			return err
		}
		for _, drum := range b.Drums {
			if err := e.cur.PutU32(e.drumOffset(drum)); err != nil {
				return err
			}
		}
	}

	if len(b.Effects) > 0 {
		if err := e.cur.Seek(int64(e.sfxListOff)); err != nil {
			return err
		}
		for _, eff := range b.Effects {
			if eff == nil {
				if err := e.cur.Skip(8); err != nil {
					return err
				}
				continue
			}
			if err := e.packSound(eff.Sound); err != nil {
				return err
			}
		}
	}

	for _, inst := range e.insts {
		if err := e.cur.Seek(int64(e.instOff[inst])); err != nil {
			return err
		}
		if err := e.packInstrument(inst); err != nil {
			return err
		}
	}
	for _, drum := range e.drums {
		if err := e.cur.Seek(int64(e.drumOff[drum])); err != nil {
			return err
		}
		if err := e.packDrum(drum); err != nil {
			return err
		}
	}
	for _, s := range e.samples {
		if err := e.cur.Seek(int64(e.smpOff[s])); err != nil {
			return err
		}
		if err := e.packSample(s); err != nil {
			return err
		}
	}
	for _, env := range e.envelopes {
		if err := e.cur.Seek(int64(e.envOff[env])); err != nil {
			return err
		}
		if err := packEnvelope(e.cur, env); err != nil {
			return err
		}
	}
	for _, loop := range e.loops {
		if err := e.cur.Seek(int64(e.loopOff[loop])); err != nil {
			return err
		}
		if err := packLoop(e.cur, loop); err != nil {
			return err
		}
	}
	for _, book := range e.books {
		if err := e.cur.Seek(int64(e.bookOff[book])); err != nil {
			return err
		}
		if err := packBook(e.cur, book); err != nil {
			return err
		}
	}

	return nil
}

func (e *Encoder) instrumentOffset(inst *Instrument) uint32 {
	if inst == nil {
		return 0
	}
	return e.instOff[inst]
}

func (e *Encoder) drumOffset(drum *Drum) uint32 {
	if drum == nil {
		return 0
	}
	return e.drumOff[drum]
}

func (e *Encoder) envelopeOffset(env *Envelope) uint32 {
	if env == nil {
		return 0
	}
	return e.envOff[env]
}

func (e *Encoder) sampleOffset(s *Sample) uint32 {
	if s == nil {
		return 0
	}
	return e.smpOff[s]
}

func (e *Encoder) loopOffset(loop *ADPCMLoop) uint32 {
	if loop == nil {
		return 0
	}
	return e.loopOff[loop]
}

func (e *Encoder) bookOffset(book *ADPCMBook) uint32 {
	if book == nil {
		return 0
	}
	return e.bookOff[book]
}
