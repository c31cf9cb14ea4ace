package z64bank

// Decode reads a binary bank blob and its companion 8-byte metadata blob
// into a logical bank graph.
func Decode(bankData, metaData []byte) (*Bank, error) {
	meta, err := ParseBankmeta(metaData)
	if err != nil {
		return nil, err
	}

	return NewDecoder(bankData, meta).Decode()
}

// DecodeFromIndex cuts bank n out of a whole audiobank blob using its
// index table and decodes it. The index entry supplies the counts and ids
// a standalone metadata blob would otherwise carry.
func DecodeFromIndex(audiobank, indexData []byte, n int) (*Bank, error) {
	ix, err := ParseIndex(indexData)
	if err != nil {
		return nil, err
	}
	data, ent, err := ix.SliceBank(audiobank, n)
	if err != nil {
		return nil, err
	}

	return NewDecoder(data, ent).Decode()
}

// Encode packs a bank graph into fresh binary bank and metadata blobs.
func Encode(b *Bank) (bankData, metaData []byte, err error) {
	return NewEncoder(b).Encode()
}

// MarshalBank renders a bank's text form as indented XML.
func MarshalBank(b *Bank) ([]byte, error) {
	return MarshalTree(b.ToTree())
}

// UnmarshalBank parses a bank from its XML text form.
func UnmarshalBank(data []byte) (*Bank, error) {
	root, err := UnmarshalTree(data)
	if err != nil {
		return nil, err
	}

	return FromTree(root)
}
