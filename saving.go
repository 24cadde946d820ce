package humpack

import "io"

// Save packs a value and writes its canonical text to w. Failures from
// packing, encoding or the writer propagate unchanged.
func (reg *Registry) Save(v any, w io.Writer) error {
	doc, err := reg.Pack(v)
	if err != nil {
		return err
	}
	text, err := EncodeText(doc)
	if err != nil {
		return err
	}
	_, err = w.Write(text)
	return err
}

// Load reads canonical text from r and reconstructs the value.
func (reg *Registry) Load(r io.Reader) (any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	doc, err := DecodeText(data)
	if err != nil {
		return nil, err
	}
	return reg.Unpack(doc)
}
