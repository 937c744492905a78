package lit

import "strconv"

// ParseUintNumeral recognises the canonical decimal form of a uint32:
// no sign, no leading zeros (except "0" itself), no surrounding space.
// Only canonical numerals may be stored as inline numeric strings, so that
// equal strings always have equal encodings.
func ParseUintNumeral(s string) (uint32, bool) {
	if s == "" || len(s) > 10 {
		return 0, false
	}
	if s[0] == '0' {
		return 0, s == "0"
	}
	var n uint64
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + uint64(c-'0')
	}
	if n > 1<<32-1 {
		return 0, false
	}
	return uint32(n), true
}

// FormatUintNumeral returns the canonical numeral for n.
func FormatUintNumeral(n uint32) string {
	return strconv.FormatUint(uint64(n), 10)
}
