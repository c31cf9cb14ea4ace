package z64bank

// SampleCodec identifies the compression scheme of a sample's payload in
// the audiotable.
type SampleCodec uint8

const (
	CodecADPCM      SampleCodec = 0 // 9-byte VADPCM frames
	CodecS8         SampleCodec = 1
	CodecS16InMem   SampleCodec = 2
	CodecSmallADPCM SampleCodec = 3 // 5-byte VADPCM frames
	CodecReverb     SampleCodec = 4
	CodecS16        SampleCodec = 5
)

func (c SampleCodec) String() string {
	switch c {
	case CodecADPCM:
		return "ADPCM"
	case CodecS8:
		return "S8"
	case CodecS16InMem:
		return "S16 inmemory"
	case CodecSmallADPCM:
		return "small ADPCM"
	case CodecReverb:
		return "reverb"
	case CodecS16:
		return "S16"
	}
	return "unknown"
}

// StorageMedium identifies where a sample's payload lives at runtime.
type StorageMedium uint8

const (
	MediumRAM       StorageMedium = 0
	MediumUnknown   StorageMedium = 1
	MediumCartridge StorageMedium = 2
	MediumDiskDrive StorageMedium = 3
)

func (m StorageMedium) String() string {
	switch m {
	case MediumRAM:
		return "RAM"
	case MediumUnknown:
		return "unknown"
	case MediumCartridge:
		return "cartridge"
	case MediumDiskDrive:
		return "disk drive"
	}
	return "unknown"
}
