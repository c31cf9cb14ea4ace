package z64bank

import "errors"

var (
	// ErrOutOfBounds is returned when a pointer or field read would cross
	// the end of the binary blob.
	ErrOutOfBounds = errors.New("read out of bounds")

	// ErrMalformedGraph is returned when decoded or parsed data violates a
	// structural rule of the bank graph, such as a drum without a sample or
	// a reference to a record that does not exist.
	ErrMalformedGraph = errors.New("malformed bank graph")

	// ErrSchemaMismatch is returned when a text tree has the wrong shape:
	// missing sections, wrong field counts, unparsable values, or array
	// lengths that disagree with their declared counts.
	ErrSchemaMismatch = errors.New("text tree does not match bank schema")

	// ErrUnknownRecordKind is returned when a text tree names a record or
	// section this package does not recognize.
	ErrUnknownRecordKind = errors.New("unknown record kind")

	// ErrUnpackableGraph is returned by Encode when the bank graph cannot
	// be serialized, for example when a slot list exceeds its counter range.
	ErrUnpackableGraph = errors.New("bank graph cannot be packed")

	errDecoderUsed = errors.New("decoder already used")
)
