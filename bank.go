package z64bank

// Bank is the logical form of one instrument bank: the slot lists the
// engine indexes directly, plus registries of the shared records they
// reference. Slot lists may hold nil for empty slots. Registry order is
// first-encounter order of the canonical traversal and doubles as the
// index space the text form uses for cross-references.
type Bank struct {
	Meta IndexEntry

	// List pointers as decoded from the header. Informational; packing
	// assigns fresh ones.
	DrumListOffset uint32
	SFXListOffset  uint32

	Instruments []*Instrument
	Drums       []*Drum
	Effects     []*Effect

	Envelopes []*Envelope
	Samples   []*Sample
	Loops     []*ADPCMLoop
	Books     []*ADPCMBook
}

// sharedVisitor receives each shared record once, in canonical order.
type sharedVisitor struct {
	envelope func(*Envelope)
	sample   func(*Sample)
	loop     func(*ADPCMLoop)
	book     func(*ADPCMBook)
}

// visitShared walks the slot lists in decode order (drums, effects,
// instruments, each record's fields in declaration order) and fires the
// callbacks the first time each shared record is reached. The resulting
// per-kind sequences match the registry order a decode of the packed bank
// would produce, which is what keeps binary round trips byte-identical.
func (b *Bank) visitShared(v sharedVisitor) {
	seenEnv := make(map[*Envelope]bool)
	seenSmp := make(map[*Sample]bool)
	seenLoop := make(map[*ADPCMLoop]bool)
	seenBook := make(map[*ADPCMBook]bool)

	envelope := func(env *Envelope) {
		if env == nil || seenEnv[env] {
			return
		}
		seenEnv[env] = true
		if v.envelope != nil {
			v.envelope(env)
		}
	}
	sample := func(s *Sample) {
		if s == nil || seenSmp[s] {
			return
		}
		seenSmp[s] = true
		if v.sample != nil {
			v.sample(s)
		}
		if s.Loop != nil && !seenLoop[s.Loop] {
			seenLoop[s.Loop] = true
			if v.loop != nil {
				v.loop(s.Loop)
			}
		}
		if s.Book != nil && !seenBook[s.Book] {
			seenBook[s.Book] = true
			if v.book != nil {
				v.book(s.Book)
			}
		}
	}

	for _, drum := range b.Drums {
		if drum == nil {
			continue
		}
		sample(drum.Sound.Sample)
		envelope(drum.Envelope)
	}
	for _, eff := range b.Effects {
		if eff == nil {
			continue
		}
		sample(eff.Sound.Sample)
	}
	for _, inst := range b.Instruments {
		if inst == nil {
			continue
		}
		envelope(inst.Envelope)
		for _, snd := range inst.Sounds {
			sample(snd.Sample)
		}
	}
}

// uniqueInstruments returns the distinct non-nil instruments in slot
// order. Slots normally hold distinct records, but the text form can map
// two slots to one instrument, and packing keeps that aliasing.
func (b *Bank) uniqueInstruments() []*Instrument {
	var out []*Instrument
	seen := make(map[*Instrument]bool)
	for _, inst := range b.Instruments {
		if inst == nil || seen[inst] {
			continue
		}
		seen[inst] = true
		out = append(out, inst)
	}
	return out
}

// uniqueDrums returns the distinct non-nil drums in slot order.
func (b *Bank) uniqueDrums() []*Drum {
	var out []*Drum
	seen := make(map[*Drum]bool)
	for _, drum := range b.Drums {
		if drum == nil || seen[drum] {
			continue
		}
		seen[drum] = true
		out = append(out, drum)
	}
	return out
}

// Normalize rebuilds the shared-record registries and indices from the
// slot lists. Decode and FromTree leave a bank normalized already; call
// this after assembling or editing a graph by hand so that ToTree sees
// every reachable record.
func (b *Bank) Normalize() {
	b.Envelopes = nil
	b.Samples = nil
	b.Loops = nil
	b.Books = nil

	b.visitShared(sharedVisitor{
		envelope: func(env *Envelope) {
			env.Index = len(b.Envelopes)
			b.Envelopes = append(b.Envelopes, env)
		},
		sample: func(s *Sample) {
			s.Index = len(b.Samples)
			b.Samples = append(b.Samples, s)
		},
		loop: func(loop *ADPCMLoop) {
			loop.Index = len(b.Loops)
			b.Loops = append(b.Loops, loop)
		},
		book: func(book *ADPCMBook) {
			book.Index = len(b.Books)
			b.Books = append(b.Books, book)
		},
	})
}
