package hive

import (
	"unicode/utf16"

	"golang.org/x/text/encoding/charmap"
)

// decodeName decodes a key or value name that may be stored either as
// Windows-1252 (when NameIsCompressed()/NameIsASCII() is set) or UTF-16LE.
// Most names in practice are pure ASCII, so decodeASCII takes a fast path
// that skips the charmap decoder entirely when every byte is already valid
// 7-bit ASCII; it falls back to charmap.Windows1252 only for the (rare)
// extended Latin-1 characters Windows allows in an "ASCII" key name.
func decodeName(raw []byte, ascii bool) string {
	if ascii {
		return decodeASCII(raw)
	}
	return decodeUTF16LE(raw)
}

func decodeASCII(raw []byte) string {
	for _, c := range raw {
		if c >= 0x80 {
			out, err := charmap.Windows1252.NewDecoder().Bytes(raw)
			if err != nil {
				return string(raw)
			}
			return string(out)
		}
	}
	// Fast path: every byte already 7-bit ASCII, identical under Windows-1252.
	return string(raw)
}

func decodeUTF16LE(raw []byte) string {
	if len(raw)%2 != 0 {
		raw = raw[:len(raw)-1]
	}
	units := make([]uint16, len(raw)/2)
	for i := range units {
		units[i] = uint16(raw[2*i]) | uint16(raw[2*i+1])<<8
	}
	return string(utf16.Decode(units))
}
