package naming

import "strings"

const upperHex = "0123456789ABCDEF"

// EncodeBaseName percent-encodes name when it contains any byte outside the
// printable ASCII range. Names made only of printable ASCII are returned as is.
//
// When encoding, every byte except the unreserved set (A-Z a-z 0-9 _ . - ~)
// is escaped, including '/', '%', '+' and spaces, so url.PathUnescape
// recovers the original name.
func EncodeBaseName(name string) string {
	if isPrintableASCII(name) {
		return name
	}

	var b strings.Builder
	b.Grow(len(name) * 3)
	for i := 0; i < len(name); i++ {
		c := name[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperHex[c>>4])
		b.WriteByte(upperHex[c&0x0F])
	}
	return b.String()
}

func isPrintableASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] > 0x7E {
			return false
		}
	}
	return true
}

func isUnreserved(c byte) bool {
	switch {
	case 'A' <= c && c <= 'Z', 'a' <= c && c <= 'z', '0' <= c && c <= '9':
		return true
	case c == '_' || c == '.' || c == '-' || c == '~':
		return true
	}
	return false
}
