package bce

import (
	"sort"
	"strings"
)

// authorizationKey is excluded from the canonical query string.
const authorizationKey = "authorization"

const upperHex = "0123456789ABCDEF"

// normalizedBytes maps every byte value to its canonical form: unreserved
// characters (A-Z a-z 0-9 . ~ - _) stay as-is, everything else becomes %XX.
var normalizedBytes [256]string

func init() {
	for i := range 256 {
		b := byte(i)
		if isUnreserved(b) {
			normalizedBytes[i] = string([]byte{b})
			continue
		}
		normalizedBytes[i] = string([]byte{'%', upperHex[b>>4], upperHex[b&0x0F]})
	}
}

func isUnreserved(b byte) bool {
	switch {
	case 'A' <= b && b <= 'Z', 'a' <= b && b <= 'z', '0' <= b && b <= '9':
		return true
	case b == '.', b == '~', b == '-', b == '_':
		return true
	}
	return false
}

// Normalize percent-encodes s byte by byte. When encodeSlash is false, '/'
// is kept verbatim, which is the form used for URI paths.
func Normalize(s string, encodeSlash bool) string {
	if s == "" {
		return ""
	}

	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '/' && !encodeSlash {
			sb.WriteByte(c)
			continue
		}
		sb.WriteString(normalizedBytes[c])
	}
	return sb.String()
}

// CanonicalQueryString builds the sorted key=value list that takes part in the
// signature. Keys are written as-is and only values are normalized; the
// verifier on the other side expects exactly this form.
func CanonicalQueryString(params map[string]string) string {
	if len(params) == 0 {
		return ""
	}

	pairs := make([]string, 0, len(params))
	for k, v := range params {
		if strings.EqualFold(k, authorizationKey) {
			continue
		}
		pairs = append(pairs, k+"="+Normalize(v, true))
	}
	sort.Strings(pairs)

	return strings.Join(pairs, "&")
}
