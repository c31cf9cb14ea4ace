// Package adpcm expands VADPCM-compressed sample payloads into 16-bit PCM.
//
// VADPCM is the vector ADPCM variant of the N64 audio library. A frame is
// one header byte carrying a shift scale and a predictor choice, followed
// by sixteen residues: 4-bit residues in nine-byte frames, or 2-bit
// residues in five-byte "small" frames. Prediction runs over a codebook of
// 8 x (order+8) coefficient tables expanded from the raw coefficients
// stored alongside the sample, with the last sixteen output samples kept
// as state between frames.
package adpcm

import (
	"errors"
	"fmt"
)

// PredictorSize is the number of prediction rows per table, one row per
// output sample of a frame half.
const PredictorSize = 8

// FrameSampleCount is the number of PCM samples one frame decodes to.
const FrameSampleCount = 16

const (
	// FrameSize is the byte size of a frame with 4-bit residues.
	FrameSize = 9
	// SmallFrameSize is the byte size of a frame with 2-bit residues.
	SmallFrameSize = 5
)

var (
	ErrInvalidBook = errors.New("invalid codebook")
	ErrBadFrame    = errors.New("bad frame data")
)

// Predictor is one expanded prediction table. Row i maps the prior state
// and the frame residues to output sample i of a frame half; each row
// holds order state coefficients followed by eight residue coefficients.
type Predictor struct {
	Table [PredictorSize][]int32
}

// Codebook holds the expanded predictors a stream is decoded against.
type Codebook struct {
	Predictors []Predictor
	Order      int
}

// NewCodebook expands raw predictor pages into decode tables. Each page is
// the 16-coefficient block a bank stores per predictor, holding order
// columns of eight values; order must fit the page.
func NewCodebook(order int, pages [][16]int16) (*Codebook, error) {
	if order < 1 || order*PredictorSize > 16 {
		return nil, fmt.Errorf("%w: order %d", ErrInvalidBook, order)
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("%w: no predictors", ErrInvalidBook)
	}

	book := &Codebook{Order: order, Predictors: make([]Predictor, len(pages))}
	for i := range pages {
		book.Predictors[i] = expandPredictor(order, &pages[i])
	}
	return book, nil
}

// expandPredictor builds the 8 x (order+8) table for one raw coefficient
// page. Columns up to order are the stored state coefficients; the residue
// columns unroll the in-frame feedback so that a whole frame half can be
// predicted from state and residues alone.
func expandPredictor(order int, page *[16]int16) Predictor {
	var pred Predictor
	for i := range pred.Table {
		pred.Table[i] = make([]int32, order+PredictorSize)
	}

	for j := 0; j < order; j++ {
		for k := 0; k < PredictorSize; k++ {
			pred.Table[k][j] = int32(page[j*PredictorSize+k])
		}
	}

	for k := 1; k < PredictorSize; k++ {
		pred.Table[k][order] = pred.Table[k-1][order-1]
	}
	pred.Table[0][order] = 1 << 11

	for k := 1; k < PredictorSize; k++ {
		for j := k; j < PredictorSize; j++ {
			pred.Table[j][k+order] = pred.Table[j-k][order]
		}
	}

	return pred
}

// Decode expands a whole VADPCM stream to PCM. small selects the
// five-byte 2-bit frame layout instead of the nine-byte 4-bit one. The
// data must be a whole number of frames; decoding starts from silent
// state, and every frame yields FrameSampleCount output samples.
func Decode(data []byte, book *Codebook, small bool) ([]int16, error) {
	if book == nil || len(book.Predictors) == 0 {
		return nil, fmt.Errorf("%w: no predictors", ErrInvalidBook)
	}
	if book.Order < 1 || book.Order > PredictorSize {
		return nil, fmt.Errorf("%w: order %d", ErrInvalidBook, book.Order)
	}

	size := FrameSize
	if small {
		size = SmallFrameSize
	}
	if len(data)%size != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not whole %d-byte frames", ErrBadFrame, len(data), size)
	}

	out := make([]int16, 0, len(data)/size*FrameSampleCount)
	var state [FrameSampleCount]int32

	for off := 0; off < len(data); off += size {
		if err := decodeFrame(data[off:off+size], book, small, &state); err != nil {
			return nil, fmt.Errorf("frame at %#x: %w", off, err)
		}
		for _, v := range state {
			out = append(out, int16(v))
		}
	}

	return out, nil
}

// decodeFrame decodes one frame in place over the rolling 16-sample state.
func decodeFrame(frame []byte, book *Codebook, small bool, state *[FrameSampleCount]int32) error {
	header := frame[0]
	scale := int32(1) << (header >> 4)
	optimalp := int(header & 0xF)
	if optimalp >= len(book.Predictors) {
		return fmt.Errorf("%w: predictor %d of %d", ErrBadFrame, optimalp, len(book.Predictors))
	}

	var ix [FrameSampleCount]int32
	if small {
		for i, c := range frame[1:] {
			ix[i*4] = int32(c >> 6)
			ix[i*4+1] = int32(c >> 4 & 0x3)
			ix[i*4+2] = int32(c >> 2 & 0x3)
			ix[i*4+3] = int32(c & 0x3)
		}
		for i := range ix {
			if ix[i] > 1 {
				ix[i] -= 4
			}
			ix[i] *= scale
		}
	} else {
		for i, c := range frame[1:] {
			ix[i*2] = int32(c >> 4)
			ix[i*2+1] = int32(c & 0xF)
		}
		for i := range ix {
			if ix[i] > 7 {
				ix[i] -= 16
			}
			ix[i] *= scale
		}
	}

	pred := &book.Predictors[optimalp]
	order := book.Order
	var inVec [FrameSampleCount + PredictorSize]int32

	for half := 0; half < 2; half++ {
		for i := 0; i < PredictorSize; i++ {
			inVec[order+i] = ix[half*PredictorSize+i]
		}

		if half == 0 {
			for i := 0; i < order; i++ {
				inVec[i] = state[FrameSampleCount-order+i]
			}
		} else {
			for i := 0; i < order; i++ {
				inVec[i] = state[PredictorSize-order+i]
			}
		}

		for i := 0; i < PredictorSize; i++ {
			state[half*PredictorSize+i] = innerProduct(pred.Table[i][:order+i+1], inVec[:order+i+1])
		}
	}

	return nil
}

// innerProduct multiplies coefficients against inputs and scales the sum
// down from Q11, rounding toward negative infinity like the reference
// decoder.
func innerProduct(coefs, in []int32) int32 {
	var out int32
	for i, c := range coefs {
		out += c * in[i]
	}

	dout := out / (1 << 11)
	fiout := dout * (1 << 11)
	if out-fiout < 0 {
		return dout - 1
	}
	return dout
}
