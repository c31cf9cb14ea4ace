package audioexport

import (
	"fmt"
	"io"

	"github.com/go-audio/aiff"
	"github.com/go-audio/audio"
)

// WriteAIFF writes pcm as a complete mono 16-bit AIFF. The writer must
// seek; the aiff encoder patches its chunk sizes on Close.
func WriteAIFF(w io.WriteSeeker, pcm []int16, sampleRate int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidRate, sampleRate)
	}

	enc := aiff.NewEncoder(w, sampleRate, 16, 1)

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		SourceBitDepth: 16,
		Data:           make([]int, len(pcm)),
	}
	for i, v := range pcm {
		buf.Data[i] = int(v)
	}

	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("failed to write aiff samples: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to close aiff encoder: %w", err)
	}
	return nil
}
