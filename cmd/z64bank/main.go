// z64bank converts Zelda64 instrument banks between their binary form
// (a .zbank blob plus its 8-byte .bankmeta companion) and the SEQ64 XML
// form. It can also pull a single bank out of a whole audiobank file
// using the matching index table.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	z64bank "github.com/crinuleiroz/z64-bank-converter"
)

const usageMessage = `You must pass one input:
  -bank file.zbank -meta file.bankmeta   convert a binary bank to XML
  -xml file.xml                          convert an XML bank back to binary
  -audiobank Audiobank -index Index -n 3 pull bank 3 out of an audiobank
Use -o to override the output path.`

func main() {
	err := run(os.Args[1:], os.Stdout)
	if err == nil {
		return
	}

	if errors.Is(err, errNoInput) {
		fmt.Println(usageMessage)
		os.Exit(1)
	}

	log.Fatal(err)
}

var errNoInput = errors.New("no input given")

func run(args []string, out io.Writer) error {
	flagSet := flag.NewFlagSet("z64bank", flag.ContinueOnError)

	bankPath := flagSet.String("bank", "", "binary bank (.zbank) to convert to XML")
	metaPath := flagSet.String("meta", "", "metadata blob (.bankmeta) for -bank")
	xmlPath := flagSet.String("xml", "", "XML bank to convert back to binary")
	audiobankPath := flagSet.String("audiobank", "", "whole audiobank blob to pull one bank from")
	indexPath := flagSet.String("index", "", "audiobank index table for -audiobank")
	bankNum := flagSet.Int("n", 0, "bank number for -audiobank")
	outPath := flagSet.String("o", "", "output path, derived from the input when empty")

	if err := flagSet.Parse(args); err != nil {
		return err
	}

	switch {
	case *xmlPath != "":
		return packBank(*xmlPath, *outPath, out)

	case *audiobankPath != "":
		if *indexPath == "" {
			return fmt.Errorf("-audiobank needs -index: %w", errNoInput)
		}
		if *outPath == "" {
			*outPath = fmt.Sprintf("%s_%d.xml", stem(*audiobankPath), *bankNum)
		}
		audiobank, err := os.ReadFile(*audiobankPath)
		if err != nil {
			return err
		}
		indexData, err := os.ReadFile(*indexPath)
		if err != nil {
			return err
		}
		b, err := z64bank.DecodeFromIndex(audiobank, indexData, *bankNum)
		if err != nil {
			return fmt.Errorf("decoding bank %d of %s: %w", *bankNum, *audiobankPath, err)
		}
		return dumpBank(b, *outPath, out)

	case *bankPath != "":
		if *metaPath == "" {
			return fmt.Errorf("-bank needs -meta: %w", errNoInput)
		}
		if *outPath == "" {
			*outPath = stem(*bankPath) + ".xml"
		}
		bankData, err := os.ReadFile(*bankPath)
		if err != nil {
			return err
		}
		metaData, err := os.ReadFile(*metaPath)
		if err != nil {
			return err
		}
		b, err := z64bank.Decode(bankData, metaData)
		if err != nil {
			return fmt.Errorf("decoding %s: %w", *bankPath, err)
		}
		return dumpBank(b, *outPath, out)
	}

	return errNoInput
}

// stem strips the extension so output names can be derived from inputs.
func stem(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path))
}

// dumpBank writes the XML form of a decoded bank.
func dumpBank(b *z64bank.Bank, outPath string, out io.Writer) error {
	text, err := z64bank.MarshalBank(b)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outPath, text, 0o644); err != nil {
		return err
	}

	fmt.Fprintf(out, "wrote %s (%d instruments, %d drums, %d effects)\n",
		outPath, len(b.Instruments), len(b.Drums), len(b.Effects))
	return nil
}

// packBank converts an XML bank back into .zbank and .bankmeta blobs.
func packBank(xmlPath, outPath string, out io.Writer) error {
	text, err := os.ReadFile(xmlPath)
	if err != nil {
		return err
	}
	b, err := z64bank.UnmarshalBank(text)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", xmlPath, err)
	}

	bankData, metaData, err := z64bank.Encode(b)
	if err != nil {
		return fmt.Errorf("packing %s: %w", xmlPath, err)
	}

	if outPath == "" {
		outPath = stem(xmlPath)
	}
	bankOut := outPath + ".zbank"
	metaOut := outPath + ".bankmeta"

	if err := os.WriteFile(bankOut, bankData, 0o644); err != nil {
		return err
	}
	if err := os.WriteFile(metaOut, metaData, 0o644); err != nil {
		return err
	}

	fmt.Fprintf(out, "wrote %s (0x%x bytes) and %s\n", bankOut, len(bankData), metaOut)
	return nil
}
