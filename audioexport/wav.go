// Package audioexport writes decoded bank samples into standard audio
// containers: mono 16-bit WAV with optional sampler loop points, and AIFF.
package audioexport

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/riff"
)

var ErrInvalidRate = errors.New("invalid sample rate")

var cidSmpl = [4]byte{'s', 'm', 'p', 'l'}

// Loop carries sampler loop points for the WAV smpl chunk. PlayCount
// follows the chunk's convention: zero repeats forever.
type Loop struct {
	Start     uint32
	End       uint32
	PlayCount uint32
}

// WAVEncoder streams mono 16-bit PCM into a RIFF/WAVE container. The
// header goes out ahead of the data with placeholder sizes; Close patches
// them, so the underlying writer must seek.
type WAVEncoder struct {
	w io.WriteSeeker

	SampleRate int
	Loop       *Loop

	written     int
	dataSizePos int
	frames      int
	wroteHeader bool
}

// NewWAVEncoder returns an encoder writing to w. A nil loop leaves the
// smpl chunk out.
func NewWAVEncoder(w io.WriteSeeker, sampleRate int, loop *Loop) *WAVEncoder {
	return &WAVEncoder{w: w, SampleRate: sampleRate, Loop: loop}
}

// addLE serializes and adds the passed value using little endian.
func (e *WAVEncoder) addLE(src any) error {
	e.written += binary.Size(src)

	if err := binary.Write(e.w, binary.LittleEndian, src); err != nil {
		return fmt.Errorf("failed to write little endian: %w", err)
	}
	return nil
}

func (e *WAVEncoder) writeHeader() error {
	if e.SampleRate <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidRate, e.SampleRate)
	}
	e.wroteHeader = true

	if err := e.addLE(riff.RiffID); err != nil {
		return err
	}
	// file size, patched on Close
	if err := e.addLE(uint32(0xFFFFFFFF)); err != nil {
		return err
	}
	if err := e.addLE(riff.WavFormatID); err != nil {
		return err
	}

	if err := e.writeFmtChunk(); err != nil {
		return err
	}
	if e.Loop != nil {
		if err := e.writeSmplChunk(); err != nil {
			return err
		}
	}

	if err := e.addLE(riff.DataFormatID); err != nil {
		return fmt.Errorf("error encoding sound header: %w", err)
	}
	e.dataSizePos = e.written

	// data chunk size, patched on Close
	return e.addLE(uint32(0xFFFFFFFF))
}

func (e *WAVEncoder) writeFmtChunk() error {
	if err := e.addLE(riff.FmtID); err != nil {
		return err
	}

	const blockAlign = 2 // one channel, two bytes per sample
	fields := []any{
		uint32(16),
		uint16(1), // PCM
		uint16(1), // mono
		uint32(e.SampleRate),
		uint32(e.SampleRate * blockAlign),
		uint16(blockAlign),
		uint16(16),
	}
	for _, f := range fields {
		if err := e.addLE(f); err != nil {
			return fmt.Errorf("error encoding the fmt chunk: %w", err)
		}
	}
	return nil
}

// writeSmplChunk emits one sampler loop. Field order follows the smpl
// chunk layout: manufacturer, product, sample period, MIDI unity note and
// pitch fraction, SMPTE format and offset, loop count, sampler data, then
// the loop record.
func (e *WAVEncoder) writeSmplChunk() error {
	if err := e.addLE(cidSmpl); err != nil {
		return err
	}

	fields := []any{
		uint32(60),
		uint32(0), // manufacturer
		uint32(0), // product
		uint32(1_000_000_000 / e.SampleRate),
		uint32(60), // MIDI unity note
		uint32(0),  // MIDI pitch fraction
		uint32(0),  // SMPTE format
		uint32(0),  // SMPTE offset
		uint32(1),  // sample loops
		uint32(0),  // sampler data
		uint32(0),  // cue point id
		uint32(0),  // loop type: forward
		e.Loop.Start,
		e.Loop.End,
		uint32(0), // fraction
		e.Loop.PlayCount,
	}
	for _, f := range fields {
		if err := e.addLE(f); err != nil {
			return fmt.Errorf("error encoding the smpl chunk: %w", err)
		}
	}
	return nil
}

// Write appends PCM samples to the data chunk.
func (e *WAVEncoder) Write(pcm []int16) error {
	if !e.wroteHeader {
		if err := e.writeHeader(); err != nil {
			return err
		}
	}

	if len(pcm) == 0 {
		return nil
	}
	if err := e.addLE(pcm); err != nil {
		return fmt.Errorf("failed to write sample data: %w", err)
	}
	e.frames += len(pcm)
	return nil
}

// Close patches the container and data sizes. The underlying writer is
// not closed.
func (e *WAVEncoder) Close() error {
	if !e.wroteHeader {
		if err := e.writeHeader(); err != nil {
			return err
		}
	}

	total := e.written

	if _, err := e.w.Seek(4, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek to file size position: %w", err)
	}
	if err := e.addLE(uint32(total - 8)); err != nil {
		return fmt.Errorf("%w when writing the container size", err)
	}

	if _, err := e.w.Seek(int64(e.dataSizePos), io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek to data size position: %w", err)
	}
	if err := e.addLE(uint32(2 * e.frames)); err != nil {
		return fmt.Errorf("%w when writing the data chunk size", err)
	}

	if _, err := e.w.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("failed to seek to end of file: %w", err)
	}
	return nil
}

// WriteWAV writes pcm as a complete mono 16-bit WAV in one call.
func WriteWAV(w io.WriteSeeker, pcm []int16, sampleRate int, loop *Loop) error {
	enc := NewWAVEncoder(w, sampleRate, loop)
	if err := enc.Write(pcm); err != nil {
		return err
	}
	return enc.Close()
}
