package asm

import "strconv"

// parseNumber parses a decimal, "0x" hex, or "0b" binary literal, with '_'
// digit-group separators allowed anywhere after the base prefix. This isn't
// present in original_source/rtl/asm.py (the Python original only ever calls
// Python's own int()); it's added here as the natural numeric-literal surface
// an assembler needs, using the tokenizer already in hand.
func parseNumber(tok string) (int64, bool) {
	if tok == "" {
		return 0, false
	}
	neg := false
	s := tok
	if s[0] == '-' {
		neg = true
		s = s[1:]
	}
	clean := func(body string) string {
		b := make([]byte, 0, len(body))
		for i := 0; i < len(body); i++ {
			if body[i] != '_' {
				b = append(b, body[i])
			}
		}
		return string(b)
	}

	var v int64
	var err error
	switch {
	case len(s) > 2 && (s[0:2] == "0x" || s[0:2] == "0X"):
		var u uint64
		u, err = strconv.ParseUint(clean(s[2:]), 16, 64)
		v = int64(u)
	case len(s) > 2 && (s[0:2] == "0b" || s[0:2] == "0B"):
		var u uint64
		u, err = strconv.ParseUint(clean(s[2:]), 2, 64)
		v = int64(u)
	default:
		v, err = strconv.ParseInt(clean(s), 10, 64)
	}
	if err != nil {
		return 0, false
	}
	if neg {
		v = -v
	}
	return v, true
}
