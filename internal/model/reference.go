package model

import (
	"strconv"
	"strings"
)

// RefPrefix returns the run of characters in ref before its first digit.
// ok is false when ref contains no digit; a reference that starts with a
// digit has an empty prefix and ok true.
func RefPrefix(ref string) (prefix string, ok bool) {
	i := strings.IndexFunc(ref, isDigit)
	if i < 0 {
		return "", false
	}
	return ref[:i], true
}

// RefNumber returns the integer that follows the non-digit prefix of ref,
// e.g. 10 for "R10" and 3 for "Q3A". It returns -1 when there is none.
func RefNumber(ref string) int {
	ref = strings.TrimSpace(ref)
	i := strings.IndexFunc(ref, isDigit)
	if i < 0 {
		return -1
	}
	j := i
	for j < len(ref) && isDigit(rune(ref[j])) {
		j++
	}
	n, err := strconv.Atoi(ref[i:j])
	if err != nil {
		return -1
	}
	return n
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
