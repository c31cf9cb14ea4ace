package z64bank

import (
	"fmt"
	"strconv"
)

func formatUint(v uint64) string { return strconv.FormatUint(v, 10) }
func formatInt(v int64) string   { return strconv.FormatInt(v, 10) }

func formatFloat(v float32) string {
	return strconv.FormatFloat(float64(v), 'g', -1, 32)
}

func formatBool(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

// numField builds a plain scalar field.
func numField(name, datatype, meaning, value string) *Element {
	f := NewElement("field")
	f.SetAttr("name", name)
	f.SetAttr("datatype", datatype)
	f.SetAttr("ispointer", "0")
	f.SetAttr("isarray", "0")
	f.SetAttr("meaning", meaning)
	f.SetAttr("value", value)
	return f
}

// defaultField builds a scalar field that also carries its schema default.
func defaultField(name, datatype, meaning, defaultval, value string) *Element {
	f := NewElement("field")
	f.SetAttr("name", name)
	f.SetAttr("datatype", datatype)
	f.SetAttr("ispointer", "0")
	f.SetAttr("isarray", "0")
	f.SetAttr("meaning", meaning)
	f.SetAttr("defaultval", defaultval)
	f.SetAttr("value", value)
	return f
}

// ptrField builds a pointer field with no cross-reference, used for the
// list pointers of the bank header and for empty effect slots.
func ptrField(name, ptrto, meaning string, value uint32) *Element {
	f := NewElement("field")
	f.SetAttr("name", name)
	f.SetAttr("datatype", "uint32")
	f.SetAttr("ispointer", "1")
	f.SetAttr("ptrto", ptrto)
	f.SetAttr("isarray", "0")
	f.SetAttr("meaning", meaning)
	f.SetAttr("value", formatUint(uint64(value)))
	return f
}

// indexedPtrField builds a pointer field whose index attribute
// cross-references an item of the target kind's section, -1 for null.
func indexedPtrField(name, ptrto, meaning string, value uint32, index int) *Element {
	f := ptrField(name, ptrto, meaning, value)
	f.SetAttr("index", formatInt(int64(index)))
	return f
}

// arrayField builds the header of an array field; elements are added by the
// caller. lenAttr and lenVal describe how the schema sizes the array, either
// a fixed length or the name of the count variable.
func arrayField(name, datatype, lenAttr, lenVal string) *Element {
	f := NewElement("field")
	f.SetAttr("name", name)
	f.SetAttr("datatype", datatype)
	f.SetAttr("ispointer", "0")
	f.SetAttr("isarray", "1")
	f.SetAttr(lenAttr, lenVal)
	return f
}

// coeffElement wraps one 16-coefficient array the way predictor and tail
// arrays store them: an element holding a one-field struct whose "data"
// field lists the coefficients.
func coeffElement(kind string, coeffs [16]int16) *Element {
	data := arrayField("data", "int16", "arraylenfixed", "16")
	data.SetAttr("meaning", "None")
	for _, v := range coeffs {
		el := NewElement("element")
		el.SetAttr("datatype", "int16")
		el.SetAttr("ispointer", "0")
		el.SetAttr("value", formatInt(int64(v)))
		data.Add(el)
	}

	st := NewElement("struct")
	st.SetAttr("name", kind)
	st.Add(data)

	el := NewElement("element")
	el.SetAttr("datatype", kind)
	el.SetAttr("ispointer", "0")
	el.SetAttr("value", "0")
	el.Add(st)
	return el
}

// projector holds the per-kind linearizations of one projection: each
// unique record and the section position its cross-references use. The
// orders come from the canonical traversal, so a bank decoded from binary
// projects its records in decode order.
type projector struct {
	bank *Bank

	instList []*Instrument
	drumList []*Drum
	envList  []*Envelope
	smpList  []*Sample
	loopList []*ADPCMLoop
	bookList []*ADPCMBook

	insts map[*Instrument]int
	drums map[*Drum]int
	envs  map[*Envelope]int
	smps  map[*Sample]int
	loops map[*ADPCMLoop]int
	books map[*ADPCMBook]int
}

func newProjector(b *Bank) *projector {
	p := &projector{
		bank:  b,
		insts: make(map[*Instrument]int),
		drums: make(map[*Drum]int),
		envs:  make(map[*Envelope]int),
		smps:  make(map[*Sample]int),
		loops: make(map[*ADPCMLoop]int),
		books: make(map[*ADPCMBook]int),
	}

	p.instList = b.uniqueInstruments()
	for i, inst := range p.instList {
		p.insts[inst] = i
	}
	p.drumList = b.uniqueDrums()
	for i, drum := range p.drumList {
		p.drums[drum] = i
	}

	b.visitShared(sharedVisitor{
		envelope: func(env *Envelope) {
			p.envs[env] = len(p.envList)
			p.envList = append(p.envList, env)
		},
		sample: func(s *Sample) {
			p.smps[s] = len(p.smpList)
			p.smpList = append(p.smpList, s)
		},
		loop: func(loop *ADPCMLoop) {
			p.loops[loop] = len(p.loopList)
			p.loopList = append(p.loopList, loop)
		},
		book: func(book *ADPCMBook) {
			p.books[book] = len(p.bookList)
			p.bookList = append(p.bookList, book)
		},
	})

	return p
}

func (p *projector) instrumentRef(inst *Instrument) (uint32, int) {
	if inst == nil {
		return 0, -1
	}
	return inst.Offset, p.insts[inst]
}

func (p *projector) drumRef(drum *Drum) (uint32, int) {
	if drum == nil {
		return 0, -1
	}
	return drum.Offset, p.drums[drum]
}

func (p *projector) envelopeRef(env *Envelope) (uint32, int) {
	if env == nil {
		return 0, -1
	}
	return env.Offset, p.envs[env]
}

func (p *projector) sampleRef(s *Sample) (uint32, int) {
	if s == nil {
		return 0, -1
	}
	return s.Offset, p.smps[s]
}

func (p *projector) loopRef(loop *ADPCMLoop) (uint32, int) {
	if loop == nil {
		return 0, -1
	}
	return loop.Offset, p.loops[loop]
}

func (p *projector) bookRef(book *ADPCMBook) (uint32, int) {
	if book == nil {
		return 0, -1
	}
	return book.Offset, p.books[book]
}

// ToTree projects the bank into its text form: a <bank> root holding one
// section per record kind, with shared records listed once in their own
// sections and referenced by position everywhere else. Every section is
// always present; empty ones stay childless.
func (b *Bank) ToTree() *Element {
	p := newProjector(b)

	root := NewElement("bank")
	root.SetAttr("NUM_INST", formatInt(int64(len(b.Instruments))))
	root.SetAttr("NUM_DRUM", formatInt(int64(len(b.Drums))))
	root.SetAttr("NUM_SFX", formatInt(int64(len(b.Effects))))
	root.SetAttr("ATnum", formatUint(uint64(b.Meta.TableID)))

	root.Add(
		p.indexEntrySection(),
		p.headerSection(),
		p.bankSection(),
		p.drumListSection(),
		p.effectListSection(),
		p.instrumentsSection(),
		p.drumsSection(),
		p.envelopesSection(),
		p.samplesSection(),
		p.booksSection(),
		p.loopsSection(),
	)
	return root
}

func (p *projector) indexEntrySection() *Element {
	sec := NewElement("abindexentry")
	sec.Add(p.bank.Meta.treeStruct(len(p.bank.Instruments), len(p.bank.Drums), len(p.bank.Effects)))
	return sec
}

func (p *projector) headerSection() *Element {
	sec := NewElement("abheader")
	st := NewElement("struct")
	st.SetAttr("name", "ABHeader")
	sec.Add(st)
	return sec
}

func (p *projector) bankSection() *Element {
	st := NewElement("struct")
	st.SetAttr("name", "ABBank")
	st.Add(
		ptrField("Drum List Pointer", "ABDrumList", "Ptr Drum List", p.bank.DrumListOffset),
		ptrField("Effect List Pointer", "ABSFXList", "Ptr SFX List", p.bank.SFXListOffset),
	)

	list := NewElement("field")
	list.SetAttr("name", "Instrument List")
	list.SetAttr("datatype", "uint32")
	list.SetAttr("ispointer", "1")
	list.SetAttr("ptrto", "ABInstrument")
	list.SetAttr("isarray", "1")
	list.SetAttr("arraylenvar", "NUM_INST")
	list.SetAttr("meaning", "List of Ptrs to Insts")
	for _, inst := range p.bank.Instruments {
		off, idx := p.instrumentRef(inst)
		list.Add(slotElement("ABInstrument", off, idx))
	}
	st.Add(list)

	sec := NewElement("abbank")
	sec.Add(st)
	return sec
}

// slotElement is one pointer of a slot table. Null slots carry no index.
func slotElement(ptrto string, offset uint32, index int) *Element {
	el := NewElement("element")
	el.SetAttr("datatype", "uint32")
	el.SetAttr("ispointer", "1")
	el.SetAttr("ptrto", ptrto)
	el.SetAttr("value", formatUint(uint64(offset)))
	if index >= 0 {
		el.SetAttr("index", formatInt(int64(index)))
	}
	return el
}

func (p *projector) drumListSection() *Element {
	sec := NewElement("abdrumlist")
	if p.bank.DrumListOffset != 0 && len(p.bank.Drums) > 0 {
		sec.SetAttr("address", formatUint(uint64(p.bank.DrumListOffset)))
	}
	if len(p.bank.Drums) == 0 {
		return sec
	}

	list := NewElement("field")
	list.SetAttr("name", "Drum List")
	list.SetAttr("datatype", "uint32")
	list.SetAttr("ispointer", "1")
	list.SetAttr("ptrto", "ABDrum")
	list.SetAttr("isarray", "1")
	list.SetAttr("arraylenvar", "NUM_DRUM")
	for _, drum := range p.bank.Drums {
		off, idx := p.drumRef(drum)
		list.Add(slotElement("ABDrum", off, idx))
	}

	st := NewElement("struct")
	st.SetAttr("name", "ABDrumList")
	st.Add(list)
	sec.Add(st)
	return sec
}

func (p *projector) effectListSection() *Element {
	sec := NewElement("absfxlist")
	if p.bank.SFXListOffset != 0 && len(p.bank.Effects) > 0 {
		sec.SetAttr("address", formatUint(uint64(p.bank.SFXListOffset)))
	}
	if len(p.bank.Effects) == 0 {
		return sec
	}

	list := arrayField("Effect List", "ABSound", "arraylenvar", "NUM_SFX")
	for _, eff := range p.bank.Effects {
		el := NewElement("element")
		el.SetAttr("datatype", "ABSound")
		el.SetAttr("ispointer", "0")
		el.SetAttr("value", "0")
		if eff == nil {
			el.Add(p.soundStruct(Sound{}, false))
		} else {
			el.Add(p.soundStruct(eff.Sound, true))
		}
		list.Add(el)
	}

	st := NewElement("struct")
	st.SetAttr("name", "ABSFXList")
	st.Add(list)
	sec.Add(st)
	return sec
}

// soundStruct renders a sample/tuning pair. withIndex controls whether the
// sample pointer carries a cross-reference; empty effect slots leave it
// off. Tuning projects as zero when the sample is null, since the parser
// side treats a tuned null sample as an inconsistency.
func (p *projector) soundStruct(snd Sound, withIndex bool) *Element {
	st := NewElement("struct")
	st.SetAttr("name", "ABSound")

	off, idx := p.sampleRef(snd.Sample)
	if withIndex {
		st.Add(indexedPtrField("Sample Pointer", "ABSample", "Ptr Sample", off, idx))
	} else {
		st.Add(ptrField("Sample Pointer", "ABSample", "Ptr Sample", off))
	}

	tuning := snd.Tuning
	if snd.Sample == nil {
		tuning = 0
	}
	st.Add(numField("Sample Tuning", "float32", "None", formatFloat(tuning)))
	return st
}

func (p *projector) instrumentsSection() *Element {
	sec := NewElement("instruments")
	for i, inst := range p.instList {
		sec.Add(p.instrumentItem(inst, i))
	}
	return sec
}

func (p *projector) instrumentItem(inst *Instrument, index int) *Element {
	st := NewElement("struct")
	st.SetAttr("name", "ABInstrument")

	envOff, envIdx := p.envelopeRef(inst.Envelope)
	st.Add(
		numField("Relocated (Bool)", "uint8", "None", formatUint(uint64(inst.Relocated))),
		numField("Key Region Low (Max Range)", "uint8", "None", formatUint(uint64(inst.KeyLow))),
		numField("Key Region High (Min Range)", "uint8", "None", formatUint(uint64(inst.KeyHigh))),
		numField("Decay Index", "uint8", "None", formatUint(uint64(inst.DecayIndex))),
		indexedPtrField("Envelope Pointer", "ABEnvelope", "Ptr Envelope", envOff, envIdx),
	)

	arr := arrayField("Sample Pointer Array", "ABSound", "arraylenfixed", "3")
	arr.SetAttr("meaning", "List of 3 Sounds for Splits")
	for _, snd := range inst.Sounds {
		el := NewElement("element")
		el.SetAttr("datatype", "ABSound")
		el.SetAttr("ispointer", "0")
		el.SetAttr("value", "0")
		el.Add(p.soundStruct(snd, true))
		arr.Add(el)
	}
	st.Add(arr)

	item := NewElement("item")
	item.SetAttr("address", formatUint(uint64(inst.Offset)))
	item.SetAttr("name", itemName(inst.Name, index))
	item.Add(st)
	return item
}

func (p *projector) drumsSection() *Element {
	sec := NewElement("drums")
	for i, drum := range p.drumList {
		sec.Add(p.drumItem(drum, i))
	}
	return sec
}

func (p *projector) drumItem(drum *Drum, index int) *Element {
	st := NewElement("struct")
	st.SetAttr("name", "ABDrum")
	st.Add(
		numField("Decay Index", "uint8", "None", formatUint(uint64(drum.DecayIndex))),
		numField("Pan", "uint8", "None", formatUint(uint64(drum.Pan))),
		numField("Relocated (Bool)", "uint8", "None", formatUint(uint64(drum.Relocated))),
		numField("Padding Byte", "uint8", "None", "0"),
	)

	snd := NewElement("field")
	snd.SetAttr("name", "Drum Sound")
	snd.SetAttr("datatype", "ABSound")
	snd.SetAttr("ispointer", "0")
	snd.SetAttr("isarray", "0")
	snd.SetAttr("meaning", "Drum Sound")
	snd.Add(p.soundStruct(drum.Sound, true))
	st.Add(snd)

	envOff, envIdx := p.envelopeRef(drum.Envelope)
	st.Add(indexedPtrField("Envelope Pointer", "ABEnvelope", "Ptr Envelope", envOff, envIdx))

	item := NewElement("item")
	item.SetAttr("address", formatUint(uint64(drum.Offset)))
	item.SetAttr("name", itemName(drum.Name, index))
	item.Add(st)
	return item
}

func (p *projector) envelopesSection() *Element {
	sec := NewElement("envelopes")
	for i, env := range p.envList {
		sec.Add(p.envelopeItem(env, i))
	}
	return sec
}

func (p *projector) envelopeItem(env *Envelope, index int) *Element {
	st := NewElement("struct")
	st.SetAttr("name", "ABEnvelope")
	for i, pt := range env.Points {
		st.Add(
			numField(fmt.Sprintf("Delay %d", i+1), "int16", "None", formatInt(int64(pt.Delay))),
			numField(fmt.Sprintf("Argument %d", i+1), "int16", "None", formatInt(int64(pt.Arg))),
		)
	}

	item := NewElement("item")
	item.SetAttr("address", formatUint(uint64(env.Offset)))
	item.SetAttr("name", itemName(env.Name, index))
	item.Add(st)
	return item
}

func (p *projector) samplesSection() *Element {
	sec := NewElement("samples")
	for i, s := range p.smpList {
		sec.Add(p.sampleItem(s, i))
	}
	return sec
}

func (p *projector) sampleItem(s *Sample, index int) *Element {
	st := NewElement("struct")
	st.SetAttr("name", "ABSample")
	st.Add(
		numField("Unk 0", "uint8", "None", formatBool(s.Unk0)),
		numField("Codec", "uint8", "None", formatUint(uint64(s.Codec))),
		numField("Medium", "uint8", "None", formatUint(uint64(s.Medium))),
		numField("Cached (Bool)", "uint8", "None", formatBool(s.Cached)),
		numField("Relocated (Bool)", "uint8", "None", formatBool(s.Relocated)),
		numField("Binary Size", "uint32", "None", formatUint(uint64(s.Size))),
	)

	table := NewElement("field")
	table.SetAttr("name", "Audiotable Address")
	table.SetAttr("datatype", "uint32")
	table.SetAttr("ispointer", "0")
	table.SetAttr("ptrto", "ATSample")
	table.SetAttr("isarray", "0")
	table.SetAttr("meaning", "Sample Address (in Sample Table)")
	table.SetAttr("value", formatUint(uint64(s.TableOffset)))
	st.Add(table)

	loopOff, loopIdx := p.loopRef(s.Loop)
	bookOff, bookIdx := p.bookRef(s.Book)
	st.Add(
		indexedPtrField("Loop Pointer", "ALADPCMLoop", "Ptr ALADPCMLoop", loopOff, loopIdx),
		indexedPtrField("Book Pointer", "ALADPCMBook", "Ptr ALADPCMBook", bookOff, bookIdx),
	)

	item := NewElement("item")
	item.SetAttr("address", formatUint(uint64(s.Offset)))
	item.SetAttr("name", itemName(s.Name, index))
	item.Add(st)
	return item
}

func (p *projector) booksSection() *Element {
	sec := NewElement("aladpcmbooks")
	for i, book := range p.bookList {
		sec.Add(p.bookItem(book, i))
	}
	return sec
}

func (p *projector) bookItem(book *ADPCMBook, index int) *Element {
	st := NewElement("struct")
	st.SetAttr("name", "ALADPCMBook")
	st.SetAttr("NUM_PRED", formatInt(int64(len(book.Predictors))))
	st.Add(
		numField("Order", "int32", "None", formatInt(int64(book.Order))),
		numField("Number of Predictors", "int32", "NUM_PRED", formatInt(int64(len(book.Predictors)))),
	)

	arr := arrayField("Codebook", "ALADPCMPredictor", "arraylenvar", "NUM_PRED")
	arr.SetAttr("meaning", "Array of Predictors")
	for i := range book.Predictors {
		arr.Add(coeffElement("ALADPCMPredictor", book.Predictors[i]))
	}
	st.Add(arr)

	item := NewElement("item")
	item.SetAttr("address", formatUint(uint64(book.Offset)))
	item.SetAttr("name", itemName(book.Name, index))
	item.Add(st)
	return item
}

func (p *projector) loopsSection() *Element {
	sec := NewElement("aladpcmloops")
	for i, loop := range p.loopList {
		sec.Add(p.loopItem(loop, i))
	}
	return sec
}

func (p *projector) loopItem(loop *ADPCMLoop, index int) *Element {
	st := NewElement("struct")
	st.SetAttr("name", "ALADPCMLoop")
	st.SetAttr("HAS_TAIL", formatBool(loop.Tail != nil))
	st.Add(
		numField("Loop Start", "uint32", "Loop Start", formatUint(uint64(loop.Start))),
		numField("Loop End (Sample Length if Count = 0)", "uint32", "Loop End", formatUint(uint64(loop.End))),
		defaultField("Loop Count", "int32", "Loop Count", "-1", formatInt(int64(loop.Count))),
		numField("Number of Samples", "uint32", "None", formatUint(uint64(loop.NumSamples))),
	)

	arr := arrayField("Loopbook", "ALADPCMTail", "arraylenvar", "HAS_TAIL")
	arr.SetAttr("meaning", "Tail Data (if Loop Start != 0)")
	if loop.Tail != nil {
		arr.Add(coeffElement("ALADPCMTail", *loop.Tail))
	}
	st.Add(arr)

	item := NewElement("item")
	item.SetAttr("address", formatUint(uint64(loop.Offset)))
	item.SetAttr("name", itemName(loop.Name, index))
	item.Add(st)
	return item
}
