package format

import (
	"golang.org/x/text/encoding/unicode"
)

// utf16Decoder converts UTF-16LE name bytes to UTF-8. NTFS names carry no
// BOM; the length is always supplied out-of-band.
var utf16Decoder = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// DecodeUTF16LE decodes UTF-16LE bytes to a UTF-8 string. Unpaired
// surrogates are replaced, not rejected; on-disk names are not guaranteed to
// be well-formed.
func DecodeUTF16LE(b []byte) (string, error) {
	if len(b) == 0 {
		return "", nil
	}
	decoded, err := utf16Decoder.NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

// EncodeUTF16LE converts s to UTF-16LE bytes. Used by tests that build
// synthetic records.
func EncodeUTF16LE(s string) ([]byte, error) {
	return utf16Decoder.NewEncoder().Bytes([]byte(s))
}
