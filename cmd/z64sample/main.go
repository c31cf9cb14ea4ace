// z64sample decodes one sample of an instrument bank out of its
// audiotable and writes it as a playable WAV or AIFF file. VADPCM
// payloads are decoded with the bank's own codebook; the sample rate is
// derived from the first tuning value that references the sample.
package main

import (
	"encoding/binary"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	z64bank "github.com/crinuleiroz/z64-bank-converter"
	"github.com/crinuleiroz/z64-bank-converter/adpcm"
	"github.com/crinuleiroz/z64-bank-converter/audioexport"
)

const usageMessage = `You must pass -bank, -meta, -table and -sample:
  z64sample -bank file.zbank -meta file.bankmeta -table Audiotable -sample 4 -o out.wav
The output extension picks the container (.wav or .aiff).`

func main() {
	err := run(os.Args[1:], os.Stdout)
	if err == nil {
		return
	}

	if errors.Is(err, errMissingInput) {
		fmt.Println(usageMessage)
		os.Exit(1)
	}

	log.Fatal(err)
}

var errMissingInput = errors.New("missing input")

func run(args []string, out io.Writer) error {
	flagSet := flag.NewFlagSet("z64sample", flag.ContinueOnError)

	bankPath := flagSet.String("bank", "", "binary bank (.zbank) holding the sample records")
	metaPath := flagSet.String("meta", "", "metadata blob (.bankmeta) for -bank")
	tablePath := flagSet.String("table", "", "audiotable blob holding the sample payloads")
	sampleNum := flagSet.Int("sample", -1, "sample number to decode")
	outPath := flagSet.String("o", "", "output file, .wav or .aiff")

	if err := flagSet.Parse(args); err != nil {
		return err
	}
	if *bankPath == "" || *metaPath == "" || *tablePath == "" || *sampleNum < 0 {
		return errMissingInput
	}

	bankData, err := os.ReadFile(*bankPath)
	if err != nil {
		return err
	}
	metaData, err := os.ReadFile(*metaPath)
	if err != nil {
		return err
	}
	table, err := os.ReadFile(*tablePath)
	if err != nil {
		return err
	}

	b, err := z64bank.Decode(bankData, metaData)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", *bankPath, err)
	}
	if *sampleNum >= len(b.Samples) {
		return fmt.Errorf("sample %d of %d: %w", *sampleNum, len(b.Samples), z64bank.ErrOutOfBounds)
	}
	s := b.Samples[*sampleNum]

	pcm, err := decodeSample(s, table)
	if err != nil {
		return fmt.Errorf("decoding sample %d: %w", *sampleNum, err)
	}

	// The payload is frame-padded; the loop record knows the true length.
	if loop := s.Loop; loop != nil && loop.NumSamples > 0 && int(loop.NumSamples) < len(pcm) {
		pcm = pcm[:loop.NumSamples]
	}

	rate := sampleRate(findTuning(b, s))
	if *outPath == "" {
		*outPath = fmt.Sprintf("%s_sample%d.wav", stem(*bankPath), *sampleNum)
	}

	f, err := os.Create(*outPath)
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(*outPath)) {
	case ".aiff", ".aif":
		err = audioexport.WriteAIFF(f, pcm, rate)
	default:
		err = audioexport.WriteWAV(f, pcm, rate, loopSpec(s))
	}
	if err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	fmt.Fprintf(out, "wrote %s (%d samples at %d Hz)\n", *outPath, len(pcm), rate)
	return nil
}

// stem strips the extension so output names can be derived from inputs.
func stem(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path))
}

// decodeSample cuts the payload out of the audiotable and turns it into
// 16-bit PCM.
func decodeSample(s *z64bank.Sample, table []byte) ([]int16, error) {
	start := int64(s.TableOffset)
	end := start + int64(s.Size)
	if end > int64(len(table)) {
		return nil, fmt.Errorf("payload spans 0x%x-0x%x in 0x%x byte audiotable: %w",
			start, end, len(table), z64bank.ErrOutOfBounds)
	}
	payload := table[start:end]

	switch s.Codec {
	case z64bank.CodecADPCM, z64bank.CodecSmallADPCM:
		if s.Book == nil {
			return nil, errors.New("no codebook attached to a VADPCM sample")
		}
		book, err := adpcm.NewCodebook(int(s.Book.Order), s.Book.Predictors)
		if err != nil {
			return nil, err
		}
		return adpcm.Decode(payload, book, s.Codec == z64bank.CodecSmallADPCM)

	case z64bank.CodecS16, z64bank.CodecS16InMem:
		if len(payload)%2 != 0 {
			return nil, fmt.Errorf("16-bit payload has odd length 0x%x", len(payload))
		}
		pcm := make([]int16, len(payload)/2)
		for i := range pcm {
			pcm[i] = int16(binary.BigEndian.Uint16(payload[2*i:]))
		}
		return pcm, nil

	case z64bank.CodecS8:
		pcm := make([]int16, len(payload))
		for i, v := range payload {
			pcm[i] = int16(int8(v)) << 8
		}
		return pcm, nil
	}

	return nil, fmt.Errorf("codec %v holds no playable audio", s.Codec)
}

// findTuning returns the tuning of the first sound referencing the sample,
// scanning instruments, then drums, then effects.
func findTuning(b *z64bank.Bank, s *z64bank.Sample) float32 {
	for _, inst := range b.Instruments {
		if inst == nil {
			continue
		}
		for _, snd := range inst.Sounds {
			if snd.Sample == s && snd.Tuning > 0 {
				return snd.Tuning
			}
		}
	}
	for _, drum := range b.Drums {
		if drum != nil && drum.Sound.Sample == s && drum.Sound.Tuning > 0 {
			return drum.Sound.Tuning
		}
	}
	for _, eff := range b.Effects {
		if eff != nil && eff.Sound.Sample == s && eff.Sound.Tuning > 0 {
			return eff.Sound.Tuning
		}
	}
	return 0
}

// sampleRate converts a tuning ratio to a playback rate. Tuning 1.0 is
// the engine's native 32 kHz; tunings at or below zero fall back to it.
func sampleRate(tuning float32) int {
	rate := int(tuning * 32000)
	if rate <= 0 {
		return 32000
	}
	return rate
}

// loopSpec maps the sample's loop record onto the WAV sampler chunk. A
// loop count of zero means the sample plays straight through; -1 loops
// forever, which the chunk spells as play count zero.
func loopSpec(s *z64bank.Sample) *audioexport.Loop {
	loop := s.Loop
	if loop == nil || loop.Count == 0 {
		return nil
	}

	spec := &audioexport.Loop{Start: loop.Start, End: loop.End}
	if loop.Count > 0 {
		spec.PlayCount = uint32(loop.Count)
	}
	return spec
}
