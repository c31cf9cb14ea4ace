package main

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	z64bank "github.com/crinuleiroz/z64-bank-converter"
)

// testBank builds a small graph with one shared sample and envelope so the
// fixture exercises aliasing through both conversion directions.
func testBank() *z64bank.Bank {
	loop := &z64bank.ADPCMLoop{End: 128, NumSamples: 128}
	book := &z64bank.ADPCMBook{Order: 2, Predictors: make([][16]int16, 2)}
	sample := &z64bank.Sample{
		Codec:       z64bank.CodecADPCM,
		Medium:      z64bank.MediumCartridge,
		Cached:      true,
		Size:        0x90,
		TableOffset: 0x1200,
		Loop:        loop,
		Book:        book,
	}
	env := &z64bank.Envelope{Points: []z64bank.EnvelopePoint{
		{Delay: 2, Arg: 32700},
		{Delay: -1},
	}}

	b := &z64bank.Bank{
		Meta: z64bank.IndexEntry{
			Medium:    z64bank.MediumCartridge,
			SeqPlayer: 2,
			FontID:    255,
		},
		Instruments: []*z64bank.Instrument{{
			KeyHigh:  0x7F,
			Envelope: env,
			Sounds:   [3]z64bank.Sound{{}, {Sample: sample, Tuning: 1}, {}},
		}},
		Drums: []*z64bank.Drum{{
			Pan:      64,
			Envelope: env,
			Sound:    z64bank.Sound{Sample: sample, Tuning: 0.9},
		}},
		Effects: []*z64bank.Effect{{
			Sound: z64bank.Sound{Sample: sample, Tuning: 1.1},
		}},
	}
	b.Normalize()
	return b
}

// writeFixtures encodes the test bank into .zbank and .bankmeta files.
func writeFixtures(t *testing.T) (dir string, bankData, metaData []byte) {
	t.Helper()

	bankData, metaData, err := z64bank.Encode(testBank())
	if err != nil {
		t.Fatalf("packing the fixture bank failed: %v", err)
	}

	dir = t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "fixture.zbank"), bankData, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "fixture.bankmeta"), metaData, 0o644); err != nil {
		t.Fatal(err)
	}
	return dir, bankData, metaData
}

func TestRunRequiresInput(t *testing.T) {
	var out bytes.Buffer
	err := run(nil, &out)
	if err == nil {
		t.Fatal("expected error without input flags")
	}
	if !errors.Is(err, errNoInput) {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := run([]string{"-bank", "x.zbank"}, &out); !errors.Is(err, errNoInput) {
		t.Fatalf("-bank without -meta: %v", err)
	}
	if err := run([]string{"-audiobank", "ab"}, &out); !errors.Is(err, errNoInput) {
		t.Fatalf("-audiobank without -index: %v", err)
	}
}

func TestRunBankToXML(t *testing.T) {
	dir, _, _ := writeFixtures(t)

	var out bytes.Buffer
	err := run([]string{
		"-bank", filepath.Join(dir, "fixture.zbank"),
		"-meta", filepath.Join(dir, "fixture.bankmeta"),
	}, &out)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if !strings.Contains(out.String(), "1 instruments, 1 drums, 1 effects") {
		t.Fatalf("unexpected output: %s", out.String())
	}

	text, err := os.ReadFile(filepath.Join(dir, "fixture.xml"))
	if err != nil {
		t.Fatalf("no xml written next to the bank: %v", err)
	}
	if !strings.Contains(string(text), "<bank ") {
		t.Fatalf("output is not a bank document:\n%s", text)
	}
	if !strings.Contains(string(text), "abindexentry") {
		t.Fatal("output has no abindexentry section")
	}
}

func TestRunXMLRoundTrip(t *testing.T) {
	dir, bankData, metaData := writeFixtures(t)

	var out bytes.Buffer
	xmlPath := filepath.Join(dir, "fixture.xml")
	err := run([]string{
		"-bank", filepath.Join(dir, "fixture.zbank"),
		"-meta", filepath.Join(dir, "fixture.bankmeta"),
		"-o", xmlPath,
	}, &out)
	if err != nil {
		t.Fatalf("decoding run failed: %v", err)
	}

	repacked := filepath.Join(dir, "repacked")
	if err := run([]string{"-xml", xmlPath, "-o", repacked}, &out); err != nil {
		t.Fatalf("packing run failed: %v", err)
	}

	gotBank, err := os.ReadFile(repacked + ".zbank")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(gotBank, bankData) {
		t.Errorf("repacked bank differs from the original (%d vs %d bytes)",
			len(gotBank), len(bankData))
	}

	gotMeta, err := os.ReadFile(repacked + ".bankmeta")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(gotMeta, metaData) {
		t.Errorf("repacked metadata = % x, want % x", gotMeta, metaData)
	}
}

func TestRunAudiobank(t *testing.T) {
	dir, bankData, metaData := writeFixtures(t)

	// Audiobank blob with the bank at 0x20, and an index table whose
	// second entry points at it.
	audiobank := append(make([]byte, 0x20), bankData...)

	var index bytes.Buffer
	header := make([]byte, 16)
	binary.BigEndian.PutUint16(header, 2)
	index.Write(header)
	for i, addr := range []uint32{0, 0x20} {
		var ent [8]byte
		binary.BigEndian.PutUint32(ent[0:], addr)
		if i == 1 {
			binary.BigEndian.PutUint32(ent[4:], uint32(len(bankData)))
		}
		index.Write(ent[:])
		index.Write(metaData)
	}

	abPath := filepath.Join(dir, "Audiobank")
	ixPath := filepath.Join(dir, "Audiobank_index")
	if err := os.WriteFile(abPath, audiobank, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(ixPath, index.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	err := run([]string{"-audiobank", abPath, "-index", ixPath, "-n", "1"}, &out)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	text, err := os.ReadFile(abPath + "_1.xml")
	if err != nil {
		t.Fatalf("no xml written for the selected bank: %v", err)
	}
	if !strings.Contains(string(text), "NUM_INST=\"1\"") {
		t.Fatalf("selected bank has the wrong shape:\n%s", text)
	}

	// Out of range bank numbers surface the library's bounds error.
	if err := run([]string{"-audiobank", abPath, "-index", ixPath, "-n", "7"}, &out); err == nil {
		t.Fatal("expected error for bank 7 of 2")
	}
}

func TestRunMissingFile(t *testing.T) {
	var out bytes.Buffer
	err := run([]string{"-xml", "/nonexistent/bank.xml"}, &out)
	if err == nil {
		t.Fatal("expected error for a missing input file")
	}
}
