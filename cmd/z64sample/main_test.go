package main

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	z64bank "github.com/crinuleiroz/z64-bank-converter"
)

// writeFixtures encodes a one-instrument bank around the given sample and
// writes it, its metadata, and the audiotable payload to disk.
func writeFixtures(t *testing.T, sample *z64bank.Sample, tuning float32, table []byte) (dir string) {
	t.Helper()

	b := &z64bank.Bank{
		Meta: z64bank.IndexEntry{Medium: z64bank.MediumCartridge, FontID: 255},
		Instruments: []*z64bank.Instrument{{
			KeyHigh: 0x7F,
			Envelope: &z64bank.Envelope{Points: []z64bank.EnvelopePoint{
				{Delay: 1, Arg: 32700},
				{Delay: -1},
			}},
			Sounds: [3]z64bank.Sound{{}, {Sample: sample, Tuning: tuning}, {}},
		}},
	}
	b.Normalize()

	bankData, metaData, err := z64bank.Encode(b)
	if err != nil {
		t.Fatalf("packing the fixture bank failed: %v", err)
	}

	dir = t.TempDir()
	for name, blob := range map[string][]byte{
		"fixture.zbank":    bankData,
		"fixture.bankmeta": metaData,
		"Audiotable":       table,
	} {
		if err := os.WriteFile(filepath.Join(dir, name), blob, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func extractArgs(dir string, n int, outName string) []string {
	return []string{
		"-bank", filepath.Join(dir, "fixture.zbank"),
		"-meta", filepath.Join(dir, "fixture.bankmeta"),
		"-table", filepath.Join(dir, "Audiotable"),
		"-sample", strconv.Itoa(n),
		"-o", filepath.Join(dir, outName),
	}
}

func TestRunRequiresInput(t *testing.T) {
	var out bytes.Buffer
	for _, args := range [][]string{
		nil,
		{"-bank", "x.zbank", "-meta", "x.bankmeta"},
		{"-bank", "x.zbank", "-meta", "x.bankmeta", "-table", "t"},
	} {
		if err := run(args, &out); !errors.Is(err, errMissingInput) {
			t.Fatalf("run(%v) = %v, want errMissingInput", args, err)
		}
	}
}

func TestRunExtractsRawSample(t *testing.T) {
	pcm := []int16{100, -100, 30000, -30000}
	table := make([]byte, 4, 4+2*len(pcm))
	for _, v := range pcm {
		table = binary.BigEndian.AppendUint16(table, uint16(v))
	}

	sample := &z64bank.Sample{
		Codec:       z64bank.CodecS16,
		Medium:      z64bank.MediumCartridge,
		Size:        uint32(2 * len(pcm)),
		TableOffset: 4,
	}
	dir := writeFixtures(t, sample, 1, table)

	var out bytes.Buffer
	if err := run(extractArgs(dir, 0, "out.wav"), &out); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !strings.Contains(out.String(), "4 samples at 32000 Hz") {
		t.Fatalf("unexpected output: %s", out.String())
	}

	wav, err := os.ReadFile(filepath.Join(dir, "out.wav"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(wav, []byte("RIFF")) {
		t.Fatal("output is not a RIFF file")
	}
	if bytes.Contains(wav, []byte("smpl")) {
		t.Error("smpl chunk written for a sample without a loop")
	}

	var want bytes.Buffer
	if err := binary.Write(&want, binary.LittleEndian, pcm); err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(wav, want.Bytes()) {
		t.Errorf("wav holds no little-endian copy of the payload: % x", wav)
	}
}

func TestRunDecodesADPCMToAIFF(t *testing.T) {
	// One frame against an all-zero codebook decodes to the scaled
	// residues alone.
	frame := []byte{0x40, 0x01, 0x23, 0x45, 0x67, 0x89, 0xAB, 0xCD, 0xEF}
	want := []int16{0, 16, 32, 48, 64, 80, 96, 112, -128, -112, -96, -80}

	sample := &z64bank.Sample{
		Codec:       z64bank.CodecADPCM,
		Medium:      z64bank.MediumCartridge,
		Size:        uint32(len(frame)),
		TableOffset: 0,
		Loop:        &z64bank.ADPCMLoop{End: 12, NumSamples: 12},
		Book:        &z64bank.ADPCMBook{Order: 1, Predictors: make([][16]int16, 1)},
	}
	dir := writeFixtures(t, sample, 0.5, frame)

	var out bytes.Buffer
	if err := run(extractArgs(dir, 0, "out.aiff"), &out); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	// The loop record trims the frame padding; tuning 0.5 halves the rate.
	if !strings.Contains(out.String(), "12 samples at 16000 Hz") {
		t.Fatalf("unexpected output: %s", out.String())
	}

	aiff, err := os.ReadFile(filepath.Join(dir, "out.aiff"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(aiff, []byte("FORM")) {
		t.Fatal("output is not an AIFF file")
	}

	var wantPCM bytes.Buffer
	if err := binary.Write(&wantPCM, binary.BigEndian, want); err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(aiff, wantPCM.Bytes()) {
		t.Errorf("aiff holds no big-endian copy of the decoded frame: % x", aiff)
	}
}

func TestRunWritesLoopChunk(t *testing.T) {
	table := make([]byte, 8)
	sample := &z64bank.Sample{
		Codec:  z64bank.CodecS16,
		Medium: z64bank.MediumCartridge,
		Size:   8,
		Loop:   &z64bank.ADPCMLoop{Start: 1, End: 3, Count: -1, NumSamples: 4, Tail: new([16]int16)},
	}
	dir := writeFixtures(t, sample, 1, table)

	var out bytes.Buffer
	if err := run(extractArgs(dir, 0, "looped.wav"), &out); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	wav, err := os.ReadFile(filepath.Join(dir, "looped.wav"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(wav, []byte("smpl")) {
		t.Fatal("no smpl chunk for a looped sample")
	}
}

func TestRunRejectsBadInput(t *testing.T) {
	table := make([]byte, 4)
	sample := &z64bank.Sample{
		Codec:  z64bank.CodecS16,
		Medium: z64bank.MediumCartridge,
		Size:   16,
	}
	dir := writeFixtures(t, sample, 1, table)

	// Payload runs past the audiotable.
	var out bytes.Buffer
	err := run(extractArgs(dir, 0, "oob.wav"), &out)
	if !errors.Is(err, z64bank.ErrOutOfBounds) {
		t.Fatalf("short audiotable error = %v, want ErrOutOfBounds", err)
	}

	// Sample number past the registry.
	if err := run(extractArgs(dir, 5, "gone.wav"), &out); !errors.Is(err, z64bank.ErrOutOfBounds) {
		t.Fatalf("missing sample error = %v, want ErrOutOfBounds", err)
	}
}
