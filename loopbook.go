package z64bank

import "fmt"

// ADPCMLoop holds the loop points of a compressed sample. Count is 0 for
// one-shot samples and -1 for an infinite loop; when the sample does not
// loop, End holds its length in samples instead of a loop end point.
//
// A loop that starts mid-stream carries a 16-coefficient tail so the ADPCM
// decoder can re-seed its predictor state when it jumps back. The tail is
// present in the binary record exactly when Start is nonzero.
type ADPCMLoop struct {
	Name   string
	Index  int
	Offset uint32

	Start      uint32
	End        uint32
	Count      int32
	NumSamples uint32
	Tail       *[16]int16
}

// loopAt returns the loop record at off, decoding it on first visit.
func (d *Decoder) loopAt(off uint32) (*ADPCMLoop, error) {
	if loop, ok := d.loops[off]; ok {
		return loop, nil
	}

	if err := d.cur.Seek(int64(off)); err != nil {
		return nil, fmt.Errorf("loopbook: %w", err)
	}

	loop := &ADPCMLoop{Name: "Loopbook", Offset: off}

	var err error
	if loop.Start, err = d.cur.U32(); err != nil {
		return nil, fmt.Errorf("loop start: %w", err)
	}
	if loop.End, err = d.cur.U32(); err != nil {
		return nil, fmt.Errorf("loop end: %w", err)
	}
	if loop.Count, err = d.cur.I32(); err != nil {
		return nil, fmt.Errorf("loop count: %w", err)
	}
	if loop.NumSamples, err = d.cur.U32(); err != nil {
		return nil, fmt.Errorf("loop sample count: %w", err)
	}

	if loop.Start != 0 {
		var tail [16]int16
		for i := range tail {
			if tail[i], err = d.cur.I16(); err != nil {
				return nil, fmt.Errorf("loop tail: %w", err)
			}
		}
		loop.Tail = &tail
	}

	loop.Index = len(d.bank.Loops)
	d.loops[off] = loop
	d.bank.Loops = append(d.bank.Loops, loop)

	return loop, nil
}

func (loop *ADPCMLoop) packedSize() int {
	if loop.Tail != nil {
		return 0x30
	}
	return 0x10
}

func packLoop(cur *Cursor, loop *ADPCMLoop) error {
	if err := cur.PutU32(loop.Start); err != nil {
		return err
	}
	if err := cur.PutU32(loop.End); err != nil {
		return err
	}
	if err := cur.PutI32(loop.Count); err != nil {
		return err
	}
	if err := cur.PutU32(loop.NumSamples); err != nil {
		return err
	}
	if loop.Tail != nil {
		for _, v := range loop.Tail {
			if err := cur.PutI16(v); err != nil {
				return err
			}
		}
	}
	return nil
}
