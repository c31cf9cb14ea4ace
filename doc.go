// Package z64bank converts Zelda64 instrument banks between their binary
// form and an editable XML text form.
//
// A bank is a flat big-endian blob of fixed-layout records linked by
// absolute offsets: instruments, drums, and sound effects referencing
// shared envelopes, samples, ADPCM loop records, and ADPCM codebooks. The
// package decodes such a blob together with its companion metadata into a
// logical graph in which aliased records are shared nodes, and packs a
// graph back into a blob with freshly computed offsets that preserves the
// sharing. A bank decoded and re-encoded unchanged reproduces its source
// bytes.
//
// For whole-file workflows the usual entry points are:
//
//   - Decode / Encode for bank plus metadata blob pairs
//   - DecodeFromIndex for slicing one bank out of a full audiobank
//   - MarshalBank / UnmarshalBank for the XML text form
//
// The text form follows the SEQ64 bank description schema: one section per
// record kind, shared records listed once and referenced by index.
package z64bank
