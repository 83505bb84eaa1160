package bom

import (
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Scale selects how unit-prefix letters translate into powers of ten.
type Scale int

const (
	// ScaleSI uses standard SI powers: k = 10^3, n = 10^-9 and so on.
	ScaleSI Scale = iota
	// ScaleLegacy reproduces the 10eN constants of older kibom releases,
	// one decade further from unity than SI (k = 10^4, n = 10^-10).
	ScaleLegacy
)

// InvalidValue is returned by ParseValue for values without a usable numeric
// literal. It orders before every parsed magnitude.
var InvalidValue = math.Inf(-1)

// IsInvalid reports whether v is the InvalidValue sentinel.
func IsInvalid(v float64) bool {
	return math.IsInf(v, -1)
}

// prefixExponents maps the first suffix letter to its SI exponent. Lookup is
// case-sensitive: "m" is milli, "M" is mega.
var prefixExponents = map[rune]int{
	'p': -12,
	'n': -9,
	'u': -6,
	'µ': -6,
	'μ': -6,
	'm': -3,
	'k': 3,
	'M': 6,
	'G': 9,
	'T': 12,
}

// ParseValue converts a component value such as "4.7k", "100nF" or "22"
// into a scalar magnitude for ordering. The numeric literal is everything
// before the first letter; the first letter of the suffix picks the scale
// and the remaining letters are ignored. Unknown or empty suffixes leave
// the literal unscaled.
func ParseValue(s string, scale Scale) float64 {
	s = strings.TrimSpace(s)
	literal, suffix := s, ""
	if i := strings.IndexFunc(s, unicode.IsLetter); i >= 0 {
		literal = s[:i]
		suffix = strings.Trim(s[i:], "0123456789")
	}

	n, err := strconv.ParseFloat(strings.TrimSpace(literal), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return InvalidValue
	}
	if suffix == "" {
		return n
	}

	first, _ := utf8.DecodeRuneInString(suffix)
	exp, ok := prefixExponents[first]
	if !ok {
		return n
	}
	if scale == ScaleLegacy {
		if exp > 0 {
			exp++
		} else {
			exp--
		}
	}
	return n * math.Pow10(exp)
}
