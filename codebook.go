package z64bank

import "fmt"

// ADPCMBook is a VADPCM codebook: the predictor coefficients the decoder
// picks from when reconstructing a compressed sample. Each predictor is
// stored as 16 raw coefficients (order times eight values, order is 2 in
// all known banks).
type ADPCMBook struct {
	Name   string
	Index  int
	Offset uint32

	Order      int32
	Predictors [][16]int16
}

// bookAt returns the codebook at off, decoding it on first visit.
func (d *Decoder) bookAt(off uint32) (*ADPCMBook, error) {
	if book, ok := d.books[off]; ok {
		return book, nil
	}

	if err := d.cur.Seek(int64(off)); err != nil {
		return nil, fmt.Errorf("codebook: %w", err)
	}

	book := &ADPCMBook{Name: "Codebook", Offset: off}

	var err error
	if book.Order, err = d.cur.I32(); err != nil {
		return nil, fmt.Errorf("codebook order: %w", err)
	}
	numPredictors, err := d.cur.I32()
	if err != nil {
		return nil, fmt.Errorf("codebook predictor count: %w", err)
	}

	for i := int32(0); i < numPredictors; i++ {
		var pred [16]int16
		for j := range pred {
			if pred[j], err = d.cur.I16(); err != nil {
				return nil, fmt.Errorf("codebook predictor %d: %w", i, err)
			}
		}
		book.Predictors = append(book.Predictors, pred)
	}

	book.Index = len(d.bank.Books)
	d.books[off] = book
	d.bank.Books = append(d.bank.Books, book)

	return book, nil
}

func (book *ADPCMBook) packedSize() int {
	return align16(8 + 0x20*len(book.Predictors))
}

func packBook(cur *Cursor, book *ADPCMBook) error {
	if err := cur.PutI32(book.Order); err != nil {
		return err
	}
	if err := cur.PutI32(int32(len(book.Predictors))); err != nil {
		return err
	}
	for _, pred := range book.Predictors {
		for _, v := range pred {
			if err := cur.PutI16(v); err != nil {
				return err
			}
		}
	}
	return nil
}
