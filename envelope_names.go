package z64bank

// vanillaEnvelopes maps the envelope tables shipped in the retail games to
// display names. Each entry lists the flattened (delay, argument) values
// including the terminator pair.
var vanillaEnvelopes = []struct {
	name   string
	points []int16
}{
	{"Effects 1 Envelope [1]", []int16{1, 32700, 1, 32700, 32700, 32700, -1, 0}},
	{"Effects 1 Envelope [2]", []int16{1, 0, 30, 32700, 690, 0, -1, 0}},
	{"Effects 1 Envelope [3]", []int16{0, 0, 30, 32700, 690, 0, -1, 0}},
	{"Effects 1 Envelope [4]", []int16{1, 32727, 30, 29000, 690, 0, -1, 0}},
	{"Effects 1 Envelope [5]", []int16{8, 32700, 5000, 0, -1, 0, 0, 0}},
	{"Effects 1 Envelope [6]", []int16{8, 32700, 32700, 29430, -1, 0, 0, 0}},

	{"Ambience Envelope", []int16{1, 32700, 0, 32700, 32700, 32700, -1, 0}},

	{"General Use Envelope", []int16{2, 32700, 1, 32700, 32700, 29430, -1, 0}},
	{"Glockenspiel Envelope", []int16{2, 32700, 127, 5615, 73, 0, -1, 0}},
	{"Piano Envelope", []int16{2, 32700, 229, 0, 1, 0, -1, 0}},
	{"Hold (298) Envelope", []int16{2, 32700, 298, 32700, 32700, 29430, -1, 0}},
	{"Marimba Envelope", []int16{2, 32700, 121, 1651, 1, 0, -1, 0}},
	{"Decay (298) Envelope", []int16{2, 32700, 298, 0, 1, 0, -1, 0}},
	{"Pandeiro & Tambourine Envelope", []int16{2, 32700, 298, 12882, 1, 0, -1, 0}},
	{"Slow Attack Envelope", []int16{32, 32700, 1, 32700, 32700, 29430, -1, 0}},
	{"Malon & Lulu Envelope", []int16{8, 32700, 1, 32700, 32700, 29430, -1, 0}},
	{"Decay (421) Envelope", []int16{2, 32700, 1, 32700, 421, 0, -1, 0}},
	{"Banjo Envelope", []int16{2, 32700, 130, 4954, 523, 0, -1, 0}},
	{"Steel Drum Envelope", []int16{2, 32700, 250, 0, 1, 0, -1, 0}},
	{"Decay (289) Envelope", []int16{2, 32700, 1, 32700, 289, 0, -1, 0}},
	{"SYNFantasia3 Envelope", []int16{2, 32700, 1, 32700, 433, 0, -1, 0}},
	{"Female Choir Envelope", []int16{21, 32700, 1, 32700, 32700, 29430, -1, 0}},
	{"Reverb Marimba Envelope", []int16{2, 32700, 145, 29067, 31, 0, -1, 0}},
	{"DIGI PAD 04 Envelope", []int16{42, 32700, 298, 32700, 32700, 29430, -1, 0}},

	{"ENIGMATIC Envelope 1", []int16{69, 32700, 1, 32700, 32700, 29430, -1, 0}},
	{"ENIGMATIC Envelope 2", []int16{24, 32700, 1, 32700, 32700, 29430, -1, 0}},
	{"Metal Grind Envelope", []int16{50, 32700, 298, 32700, 32700, 29430, -1, 0}},
	{"Duduk Envelope", []int16{17, 32700, 1, 32700, 32700, 29430, -1, 0}},

	{"Fretless Bass Envelope", []int16{2, 32700, 1, 32700, 409, 0, -1, 0}},
	{"Rhodes E. Piano Envelope", []int16{2, 32700, 1, 32700, 439, 0, -1, 0}},
	{"Velocity MC-202 Envelope", []int16{2, 32700, 1, 30718, 409, 0, -1, 0}},
	{"VERBHHOD6 ALT Envelope", []int16{20, 32700, 1, 32700, 32700, 29430, -1, 0}},
	{"Fretless Bass ALT Envelope", []int16{2, 32700, 1, 32700, 511, 0, -1, 0}},
	{"Tabla Envelope", []int16{2, 32700, 1, 32700, 565, 0, -1, 0}},
}

// envelopeName returns the vanilla display name for a point table, or
// "Envelope" when the table is not a known vanilla envelope.
func envelopeName(points []EnvelopePoint) string {
	for _, v := range vanillaEnvelopes {
		if len(v.points) != 2*len(points) {
			continue
		}
		match := true
		for i, p := range points {
			if v.points[2*i] != p.Delay || v.points[2*i+1] != p.Arg {
				match = false
				break
			}
		}
		if match {
			return v.name
		}
	}
	return "Envelope"
}
