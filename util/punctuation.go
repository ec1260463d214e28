// Package util holds the punctuation rules shared by tokenization and detokenization.
package util

import (
	"strings"
	"unicode"
)

// IsPunct reports whether r is punctuation, a symbol, CJK punctuation or a full-width form.
func IsPunct(r rune) bool {
	if unicode.IsPunct(r) || unicode.IsSymbol(r) {
		return true
	}
	// CJK Symbols and Punctuation
	if r >= 0x3000 && r <= 0x303F {
		return true
	}
	// Full-width forms
	return r >= 0xFF00 && r <= 0xFFEF
}

// IsPunctuation reports whether the token s is non-empty and made of punctuation only.
func IsPunctuation(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !IsPunct(r) {
			return false
		}
	}
	return true
}

// AttachesLeft reports whether the token s is written without a space before it, as
// closing punctuation is.
func AttachesLeft(s string) bool {
	return IsPunctuation(s) && strings.ContainsAny(s, ",.!?;:%)]}，。！？；：、）") && !strings.ContainsAny(s, "([{（")
}

// AttachesRight reports whether the token after s is written without a space before it.
func AttachesRight(s string) bool {
	switch s {
	case "(", "[", "{", "（":
		return true
	}
	return false
}
