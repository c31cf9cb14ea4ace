package z64bank

import (
	"fmt"
	"strconv"
)

// fieldName names a field in error messages.
func fieldName(f *Element) string {
	if name, ok := f.Attr("name"); ok {
		return strconv.Quote(name)
	}
	return "(unnamed)"
}

// fieldUint reads a field or element value as an unsigned integer of the
// given bit width.
func fieldUint(f *Element, bits int) (uint64, error) {
	raw, ok := f.Attr("value")
	if !ok {
		return 0, fmt.Errorf("field %s has no value: %w", fieldName(f), ErrSchemaMismatch)
	}
	v, err := strconv.ParseUint(raw, 10, bits)
	if err != nil {
		return 0, fmt.Errorf("field %s value %q: %w", fieldName(f), raw, ErrSchemaMismatch)
	}
	return v, nil
}

// fieldInt reads a field or element value as a signed integer of the given
// bit width.
func fieldInt(f *Element, bits int) (int64, error) {
	raw, ok := f.Attr("value")
	if !ok {
		return 0, fmt.Errorf("field %s has no value: %w", fieldName(f), ErrSchemaMismatch)
	}
	v, err := strconv.ParseInt(raw, 10, bits)
	if err != nil {
		return 0, fmt.Errorf("field %s value %q: %w", fieldName(f), raw, ErrSchemaMismatch)
	}
	return v, nil
}

// fieldFloat reads a field value as a 32-bit float.
func fieldFloat(f *Element) (float32, error) {
	raw, ok := f.Attr("value")
	if !ok {
		return 0, fmt.Errorf("field %s has no value: %w", fieldName(f), ErrSchemaMismatch)
	}
	v, err := strconv.ParseFloat(raw, 32)
	if err != nil {
		return 0, fmt.Errorf("field %s value %q: %w", fieldName(f), raw, ErrSchemaMismatch)
	}
	return float32(v), nil
}

// fieldIndex reads a pointer field's cross-reference index. A pointer
// without one is null.
func fieldIndex(f *Element) (int, error) {
	raw, ok := f.Attr("index")
	if !ok {
		return -1, nil
	}
	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("field %s index %q: %w", fieldName(f), raw, ErrSchemaMismatch)
	}
	return int(v), nil
}

// itemAddress reads an item's address attribute. Addresses record where a
// record lived in the source binary and are bookkeeping only, so a missing
// or unparseable one is zero.
func itemAddress(el *Element) uint32 {
	raw, ok := el.Attr("address")
	if !ok {
		return 0
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0
	}
	return uint32(v)
}

// recordStruct returns el's struct child. A name attribute, when present,
// must match one of the given kinds.
func recordStruct(el *Element, kinds ...string) (*Element, error) {
	st := el.Child("struct")
	if st == nil {
		return nil, fmt.Errorf("%s has no struct: %w", el.Name, ErrSchemaMismatch)
	}
	name, ok := st.Attr("name")
	if !ok {
		return st, nil
	}
	for _, kind := range kinds {
		if name == kind {
			return st, nil
		}
	}
	return nil, fmt.Errorf("struct named %q, want %s: %w", name, kinds[0], ErrUnknownRecordKind)
}

// resolveIndex maps a cross-reference index to its registry record. -1 is
// a null pointer; anything else must be a valid position.
func resolveIndex[T any](registry []*T, index int, kind string) (*T, error) {
	if index == -1 {
		return nil, nil
	}
	if index < 0 || index >= len(registry) {
		return nil, fmt.Errorf("%s index %d of %d: %w", kind, index, len(registry), ErrMalformedGraph)
	}
	return registry[index], nil
}

// treeParser reconstructs a bank from its text form. Shared records are
// parsed out of their own sections first; pointer fields then resolve
// their index attributes against the rebuilt registries.
type treeParser struct {
	root *Element
	bank *Bank

	insts []*Instrument
	drums []*Drum
}

// FromTree rebuilds a bank from its text form. Cross-reference indices are
// authoritative: two slots naming the same index share one record. The
// address and value attributes record where records lived in the source
// binary and are carried as bookkeeping only; packing assigns fresh
// offsets. Slot table lengths must match the counts in the abindexentry
// struct.
func FromTree(root *Element) (*Bank, error) {
	if root.Name != "bank" {
		return nil, fmt.Errorf("root element %q, want bank: %w", root.Name, ErrSchemaMismatch)
	}

	p := &treeParser{root: root, bank: &Bank{}}

	if err := p.parseIndexEntry(); err != nil {
		return nil, err
	}
	if err := p.parseLoops(); err != nil {
		return nil, err
	}
	if err := p.parseBooks(); err != nil {
		return nil, err
	}
	if err := p.parseSamples(); err != nil {
		return nil, err
	}
	if err := p.parseEnvelopes(); err != nil {
		return nil, err
	}
	if err := p.parseInstruments(); err != nil {
		return nil, err
	}
	if err := p.parseDrums(); err != nil {
		return nil, err
	}
	if err := p.parseBankHeader(); err != nil {
		return nil, err
	}
	if err := p.parseDrumList(); err != nil {
		return nil, err
	}
	if err := p.parseEffectList(); err != nil {
		return nil, err
	}

	return p.bank, nil
}

func (p *treeParser) parseIndexEntry() error {
	sec := p.root.Child("abindexentry")
	if sec == nil {
		return fmt.Errorf("bank tree has no abindexentry: %w", ErrSchemaMismatch)
	}
	st := sec.Child("struct")
	if st == nil {
		return fmt.Errorf("abindexentry has no struct: %w", ErrSchemaMismatch)
	}

	ent, err := parseIndexEntryStruct(st)
	if err != nil {
		return err
	}
	p.bank.Meta = ent
	return nil
}

func (p *treeParser) parseLoops() error {
	sec := p.root.Child("aladpcmloops")
	if sec == nil {
		return nil
	}
	for i, item := range sec.ChildrenNamed("item") {
		st, err := recordStruct(item, "ALADPCMLoop")
		if err != nil {
			return fmt.Errorf("loopbook %d: %w", i, err)
		}
		loop, err := parseLoopStruct(st)
		if err != nil {
			return fmt.Errorf("loopbook %d: %w", i, err)
		}
		loop.Index = i
		loop.Offset = itemAddress(item)
		p.bank.Loops = append(p.bank.Loops, loop)
	}
	return nil
}

func parseLoopStruct(st *Element) (*ADPCMLoop, error) {
	fields := st.ChildrenNamed("field")
	if len(fields) != 4 && len(fields) != 5 {
		return nil, fmt.Errorf("loopbook has %d fields, want 5: %w", len(fields), ErrSchemaMismatch)
	}

	loop := &ADPCMLoop{Name: "Loopbook"}

	start, err := fieldUint(fields[0], 32)
	if err != nil {
		return nil, err
	}
	loop.Start = uint32(start)

	end, err := fieldUint(fields[1], 32)
	if err != nil {
		return nil, err
	}
	loop.End = uint32(end)

	count, err := fieldInt(fields[2], 32)
	if err != nil {
		return nil, err
	}
	loop.Count = int32(count)

	numSamples, err := fieldUint(fields[3], 32)
	if err != nil {
		return nil, err
	}
	loop.NumSamples = uint32(numSamples)

	if raw, ok := st.Attr("HAS_TAIL"); ok && raw == "1" {
		if len(fields) != 5 {
			return nil, fmt.Errorf("loopbook tail flagged but missing: %w", ErrSchemaMismatch)
		}
		els := fields[4].ChildrenNamed("element")
		if len(els) != 1 {
			return nil, fmt.Errorf("loopbook tail holds %d arrays, want 1: %w", len(els), ErrSchemaMismatch)
		}
		tail, err := parseCoeffElement(els[0], "ALADPCMTail")
		if err != nil {
			return nil, fmt.Errorf("loopbook tail: %w", err)
		}
		loop.Tail = tail
	}

	return loop, nil
}

// parseCoeffElement reads one 16-coefficient array from its element
// wrapper: a one-field struct whose "data" field lists the coefficients.
func parseCoeffElement(el *Element, kind string) (*[16]int16, error) {
	st, err := recordStruct(el, kind)
	if err != nil {
		return nil, err
	}
	data := st.Child("field")
	if data == nil {
		return nil, fmt.Errorf("%s has no data field: %w", kind, ErrSchemaMismatch)
	}
	els := data.ChildrenNamed("element")
	if len(els) != 16 {
		return nil, fmt.Errorf("%s holds %d coefficients, want 16: %w", kind, len(els), ErrSchemaMismatch)
	}

	var coeffs [16]int16
	for i, c := range els {
		v, err := fieldInt(c, 16)
		if err != nil {
			return nil, err
		}
		coeffs[i] = int16(v)
	}
	return &coeffs, nil
}

func (p *treeParser) parseBooks() error {
	sec := p.root.Child("aladpcmbooks")
	if sec == nil {
		return nil
	}
	for i, item := range sec.ChildrenNamed("item") {
		st, err := recordStruct(item, "ALADPCMBook")
		if err != nil {
			return fmt.Errorf("codebook %d: %w", i, err)
		}
		book, err := parseBookStruct(st)
		if err != nil {
			return fmt.Errorf("codebook %d: %w", i, err)
		}
		book.Index = i
		book.Offset = itemAddress(item)
		p.bank.Books = append(p.bank.Books, book)
	}
	return nil
}

func parseBookStruct(st *Element) (*ADPCMBook, error) {
	fields := st.ChildrenNamed("field")
	if len(fields) != 3 {
		return nil, fmt.Errorf("codebook has %d fields, want 3: %w", len(fields), ErrSchemaMismatch)
	}

	book := &ADPCMBook{Name: "Codebook"}

	order, err := fieldInt(fields[0], 32)
	if err != nil {
		return nil, err
	}
	book.Order = int32(order)

	numPredictors, err := fieldInt(fields[1], 32)
	if err != nil {
		return nil, err
	}

	els := fields[2].ChildrenNamed("element")
	if int64(len(els)) != numPredictors {
		return nil, fmt.Errorf("codebook lists %d predictors, header says %d: %w",
			len(els), numPredictors, ErrSchemaMismatch)
	}
	for _, el := range els {
		pred, err := parseCoeffElement(el, "ALADPCMPredictor")
		if err != nil {
			return nil, err
		}
		book.Predictors = append(book.Predictors, *pred)
	}

	return book, nil
}

func (p *treeParser) parseSamples() error {
	sec := p.root.Child("samples")
	if sec == nil {
		return nil
	}
	for i, item := range sec.ChildrenNamed("item") {
		st, err := recordStruct(item, "ABSample")
		if err != nil {
			return fmt.Errorf("sample %d: %w", i, err)
		}
		s, err := p.parseSampleStruct(st)
		if err != nil {
			return fmt.Errorf("sample %d: %w", i, err)
		}
		s.Index = i
		s.Offset = itemAddress(item)
		p.bank.Samples = append(p.bank.Samples, s)
	}
	return nil
}

func (p *treeParser) parseSampleStruct(st *Element) (*Sample, error) {
	fields := st.ChildrenNamed("field")
	if len(fields) != 9 {
		return nil, fmt.Errorf("sample has %d fields, want 9: %w", len(fields), ErrSchemaMismatch)
	}

	s := &Sample{Name: "Sample"}

	unk0, err := fieldUint(fields[0], 1)
	if err != nil {
		return nil, err
	}
	s.Unk0 = unk0 != 0

	codec, err := fieldUint(fields[1], 3)
	if err != nil {
		return nil, err
	}
	s.Codec = SampleCodec(codec)

	medium, err := fieldUint(fields[2], 2)
	if err != nil {
		return nil, err
	}
	s.Medium = StorageMedium(medium)

	cached, err := fieldUint(fields[3], 1)
	if err != nil {
		return nil, err
	}
	s.Cached = cached != 0

	relocated, err := fieldUint(fields[4], 1)
	if err != nil {
		return nil, err
	}
	s.Relocated = relocated != 0

	size, err := fieldUint(fields[5], 24)
	if err != nil {
		return nil, err
	}
	s.Size = uint32(size)

	tableOffset, err := fieldUint(fields[6], 32)
	if err != nil {
		return nil, err
	}
	s.TableOffset = uint32(tableOffset)

	loopIdx, err := fieldIndex(fields[7])
	if err != nil {
		return nil, err
	}
	if s.Loop, err = resolveIndex(p.bank.Loops, loopIdx, "loopbook"); err != nil {
		return nil, err
	}

	bookIdx, err := fieldIndex(fields[8])
	if err != nil {
		return nil, err
	}
	if s.Book, err = resolveIndex(p.bank.Books, bookIdx, "codebook"); err != nil {
		return nil, err
	}

	return s, nil
}

func (p *treeParser) parseEnvelopes() error {
	sec := p.root.Child("envelopes")
	if sec == nil {
		return nil
	}
	for i, item := range sec.ChildrenNamed("item") {
		env, err := parseEnvelopeItem(item)
		if err != nil {
			return fmt.Errorf("envelope %d: %w", i, err)
		}
		env.Index = i
		env.Offset = itemAddress(item)
		p.bank.Envelopes = append(p.bank.Envelopes, env)
	}
	return nil
}

// parseEnvelopeItem reads an envelope's delay/argument fields. The fields
// normally sit inside an ABEnvelope struct, but items listing them
// directly under the item are accepted too.
func parseEnvelopeItem(item *Element) (*Envelope, error) {
	holder := item
	if st := item.Child("struct"); st != nil {
		if name, ok := st.Attr("name"); ok && name != "ABEnvelope" {
			return nil, fmt.Errorf("struct named %q, want ABEnvelope: %w", name, ErrUnknownRecordKind)
		}
		holder = st
	}

	fields := holder.ChildrenNamed("field")
	if len(fields)%2 != 0 {
		return nil, fmt.Errorf("envelope has %d fields, want an even number: %w", len(fields), ErrSchemaMismatch)
	}

	env := &Envelope{}
	for i := 0; i < len(fields); i += 2 {
		delay, err := fieldInt(fields[i], 16)
		if err != nil {
			return nil, err
		}
		arg, err := fieldInt(fields[i+1], 16)
		if err != nil {
			return nil, err
		}
		env.Points = append(env.Points, EnvelopePoint{Delay: int16(delay), Arg: int16(arg)})
	}
	env.Name = envelopeName(env.Points)

	return env, nil
}

func (p *treeParser) parseInstruments() error {
	sec := p.root.Child("instruments")
	if sec == nil {
		return nil
	}
	for i, item := range sec.ChildrenNamed("item") {
		st, err := recordStruct(item, "ABInstrument")
		if err != nil {
			return fmt.Errorf("instrument %d: %w", i, err)
		}
		inst, err := p.parseInstrumentStruct(st)
		if err != nil {
			return fmt.Errorf("instrument %d: %w", i, err)
		}
		inst.Index = i
		inst.Offset = itemAddress(item)
		p.insts = append(p.insts, inst)
	}
	return nil
}

func (p *treeParser) parseInstrumentStruct(st *Element) (*Instrument, error) {
	fields := st.ChildrenNamed("field")
	if len(fields) != 6 {
		return nil, fmt.Errorf("instrument has %d fields, want 6: %w", len(fields), ErrSchemaMismatch)
	}

	inst := &Instrument{Name: "Instrument"}

	relocated, err := fieldUint(fields[0], 8)
	if err != nil {
		return nil, err
	}
	inst.Relocated = uint8(relocated)

	keyLow, err := fieldUint(fields[1], 8)
	if err != nil {
		return nil, err
	}
	inst.KeyLow = uint8(keyLow)

	keyHigh, err := fieldUint(fields[2], 8)
	if err != nil {
		return nil, err
	}
	inst.KeyHigh = uint8(keyHigh)

	decay, err := fieldUint(fields[3], 8)
	if err != nil {
		return nil, err
	}
	inst.DecayIndex = uint8(decay)

	envIdx, err := fieldIndex(fields[4])
	if err != nil {
		return nil, err
	}
	if inst.Envelope, err = resolveIndex(p.bank.Envelopes, envIdx, "envelope"); err != nil {
		return nil, err
	}

	els := fields[5].ChildrenNamed("element")
	if len(els) != 3 {
		return nil, fmt.Errorf("instrument lists %d sounds, want 3: %w", len(els), ErrSchemaMismatch)
	}
	for i, el := range els {
		st, err := recordStruct(el, "ABSound")
		if err != nil {
			return nil, fmt.Errorf("split %d: %w", i, err)
		}
		if inst.Sounds[i], err = p.parseSoundStruct(st); err != nil {
			return nil, fmt.Errorf("split %d: %w", i, err)
		}
	}

	return inst, nil
}

// parseSoundStruct reads a sample/tuning pair. A tuned null sample is
// rejected: a null pointer must carry zero tuning.
func (p *treeParser) parseSoundStruct(st *Element) (Sound, error) {
	fields := st.ChildrenNamed("field")
	if len(fields) != 2 {
		return Sound{}, fmt.Errorf("sound has %d fields, want 2: %w", len(fields), ErrSchemaMismatch)
	}

	idx, err := fieldIndex(fields[0])
	if err != nil {
		return Sound{}, err
	}
	tuning, err := fieldFloat(fields[1])
	if err != nil {
		return Sound{}, err
	}
	if idx == -1 && tuning != 0 {
		return Sound{}, fmt.Errorf("null sample tuned to %v: %w", tuning, ErrSchemaMismatch)
	}

	snd := Sound{Tuning: tuning}
	if snd.Sample, err = resolveIndex(p.bank.Samples, idx, "sample"); err != nil {
		return Sound{}, err
	}
	return snd, nil
}

func (p *treeParser) parseDrums() error {
	sec := p.root.Child("drums")
	if sec == nil {
		return nil
	}
	for i, item := range sec.ChildrenNamed("item") {
		st, err := recordStruct(item, "ABDrum")
		if err != nil {
			return fmt.Errorf("drum %d: %w", i, err)
		}
		drum, err := p.parseDrumStruct(st)
		if err != nil {
			return fmt.Errorf("drum %d: %w", i, err)
		}
		drum.Index = i
		drum.Offset = itemAddress(item)
		p.drums = append(p.drums, drum)
	}
	return nil
}

func (p *treeParser) parseDrumStruct(st *Element) (*Drum, error) {
	fields := st.ChildrenNamed("field")
	if len(fields) != 6 {
		return nil, fmt.Errorf("drum has %d fields, want 6: %w", len(fields), ErrSchemaMismatch)
	}

	drum := &Drum{Name: "Drum"}

	decay, err := fieldUint(fields[0], 8)
	if err != nil {
		return nil, err
	}
	drum.DecayIndex = uint8(decay)

	pan, err := fieldUint(fields[1], 8)
	if err != nil {
		return nil, err
	}
	drum.Pan = uint8(pan)

	relocated, err := fieldUint(fields[2], 8)
	if err != nil {
		return nil, err
	}
	drum.Relocated = uint8(relocated)

	pad, err := fieldUint(fields[3], 8)
	if err != nil {
		return nil, err
	}
	if pad != 0 {
		return nil, fmt.Errorf("drum padding byte %d, want 0: %w", pad, ErrSchemaMismatch)
	}

	soundStruct, err := recordStruct(fields[4], "ABSound")
	if err != nil {
		return nil, err
	}
	if drum.Sound, err = p.parseSoundStruct(soundStruct); err != nil {
		return nil, err
	}

	envIdx, err := fieldIndex(fields[5])
	if err != nil {
		return nil, err
	}
	if drum.Envelope, err = resolveIndex(p.bank.Envelopes, envIdx, "envelope"); err != nil {
		return nil, err
	}

	return drum, nil
}

func (p *treeParser) parseBankHeader() error {
	sec := p.root.Child("abbank")
	if sec == nil {
		return fmt.Errorf("bank tree has no abbank: %w", ErrSchemaMismatch)
	}
	st, err := recordStruct(sec, "ABBank")
	if err != nil {
		return err
	}

	fields := st.ChildrenNamed("field")
	if len(fields) != 3 {
		return fmt.Errorf("bank header has %d fields, want 3: %w", len(fields), ErrSchemaMismatch)
	}

	drumPtr, err := fieldUint(fields[0], 32)
	if err != nil {
		return err
	}
	p.bank.DrumListOffset = uint32(drumPtr)

	sfxPtr, err := fieldUint(fields[1], 32)
	if err != nil {
		return err
	}
	p.bank.SFXListOffset = uint32(sfxPtr)

	els := fields[2].ChildrenNamed("element")
	if len(els) != int(p.bank.Meta.NumInstruments) {
		return fmt.Errorf("instrument list has %d slots, index entry says %d: %w",
			len(els), p.bank.Meta.NumInstruments, ErrSchemaMismatch)
	}
	for i, el := range els {
		idx, err := fieldIndex(el)
		if err != nil {
			return fmt.Errorf("instrument slot %d: %w", i, err)
		}
		inst, err := resolveIndex(p.insts, idx, "instrument")
		if err != nil {
			return fmt.Errorf("instrument slot %d: %w", i, err)
		}
		p.bank.Instruments = append(p.bank.Instruments, inst)
	}

	return nil
}

func (p *treeParser) parseDrumList() error {
	numDrums := int(p.bank.Meta.NumDrums)

	sec := p.root.Child("abdrumlist")
	if sec == nil || sec.Child("struct") == nil {
		if numDrums != 0 {
			return fmt.Errorf("drum list missing, index entry says %d drums: %w", numDrums, ErrSchemaMismatch)
		}
		return nil
	}
	st, err := recordStruct(sec, "ABDrumList")
	if err != nil {
		return err
	}

	fields := st.ChildrenNamed("field")
	if len(fields) != 1 {
		return fmt.Errorf("drum list has %d fields, want 1: %w", len(fields), ErrSchemaMismatch)
	}

	els := fields[0].ChildrenNamed("element")
	if len(els) != numDrums {
		return fmt.Errorf("drum list has %d slots, index entry says %d: %w", len(els), numDrums, ErrSchemaMismatch)
	}
	for i, el := range els {
		idx, err := fieldIndex(el)
		if err != nil {
			return fmt.Errorf("drum slot %d: %w", i, err)
		}
		drum, err := resolveIndex(p.drums, idx, "drum")
		if err != nil {
			return fmt.Errorf("drum slot %d: %w", i, err)
		}
		p.bank.Drums = append(p.bank.Drums, drum)
	}

	return nil
}

func (p *treeParser) parseEffectList() error {
	numEffects := int(p.bank.Meta.NumEffects)

	sec := p.root.Child("absfxlist")
	if sec == nil || sec.Child("struct") == nil {
		if numEffects != 0 {
			return fmt.Errorf("effect list missing, index entry says %d effects: %w", numEffects, ErrSchemaMismatch)
		}
		return nil
	}
	st, err := recordStruct(sec, "ABSFXList")
	if err != nil {
		return err
	}

	fields := st.ChildrenNamed("field")
	if len(fields) != 1 {
		return fmt.Errorf("effect list has %d fields, want 1: %w", len(fields), ErrSchemaMismatch)
	}

	els := fields[0].ChildrenNamed("element")
	if len(els) != numEffects {
		return fmt.Errorf("effect list has %d slots, index entry says %d: %w", len(els), numEffects, ErrSchemaMismatch)
	}
	for i, el := range els {
		st, err := recordStruct(el, "ABSound")
		if err != nil {
			return fmt.Errorf("effect %d: %w", i, err)
		}
		snd, err := p.parseSoundStruct(st)
		if err != nil {
			return fmt.Errorf("effect %d: %w", i, err)
		}
		if snd.Sample == nil && snd.Tuning == 0 {
			p.bank.Effects = append(p.bank.Effects, nil)
			continue
		}
		p.bank.Effects = append(p.bank.Effects, &Effect{Index: i, Sound: snd})
	}

	return nil
}
