package utils

import (
	"bytes"

	"github.com/mogaika/morpheme_converter/config"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

func BytesStringLength(bs []byte) int {
	if l := bytes.IndexByte(bs, 0); l == -1 {
		return len(bs)
	} else {
		return l
	}
}

// DecodeName turns raw name bytes (up to the first NUL) into a string.
// With the default encoding the bytes must be valid UTF-8, otherwise they
// are decoded with the configured charmap.
func DecodeName(bs []byte) (string, error) {
	bs = bs[:BytesStringLength(bs)]

	var t transform.Transformer = encoding.UTF8Validator
	if cm := config.GetEncoding(); cm != nil {
		t = cm.NewDecoder()
	}

	s, _, err := transform.Bytes(t, bs)
	if err != nil {
		return "", err
	}
	return string(s), nil
}
