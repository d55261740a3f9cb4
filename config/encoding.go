package config

import (
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding/charmap"
)

// UTF8 is the default bone name encoding. Names are validated, not transcoded.
const UTF8 = "utf-8"

// nil means UTF8
var currentCharMap *charmap.Charmap

func SetEncoding(name string) error {
	if name == "" || strings.EqualFold(name, UTF8) {
		currentCharMap = nil
		return nil
	}
	for _, enc := range charmap.All {
		if cm, ok := enc.(*charmap.Charmap); ok {
			if cm.String() == name {
				currentCharMap = cm
				return nil
			}
		}
	}
	return errors.Errorf("Failed to find encoding %q", name)
}

func ListEncodings() []string {
	list := []string{UTF8}
	for _, enc := range charmap.All {
		if cm, ok := enc.(*charmap.Charmap); ok {
			list = append(list, cm.String())
		}
	}
	return list
}

// GetEncoding returns nil when names are plain UTF-8.
func GetEncoding() *charmap.Charmap {
	return currentCharMap
}
