package translator

import (
	"strings"
	"unicode"

	"github.com/teatak/smt/util"
)

// Tokenize splits text into decoder tokens. Whitespace separates tokens, and every
// punctuation rune and every CJK ideograph is a token of its own. Separators between
// digits stay inside the number, so "3.5" and "1,000" are one token.
func Tokenize(text string) []string {
	runes := []rune(text)
	var tokens []string
	var current []rune
	flush := func() {
		if len(current) > 0 {
			tokens = append(tokens, string(current))
			current = current[:0]
		}
	}
	for i, r := range runes {
		switch {
		case unicode.IsSpace(r):
			flush()
		case isNumberSeparator(runes, i):
			current = append(current, r)
		case isCJK(r) || util.IsPunct(r):
			flush()
			tokens = append(tokens, string(r))
		default:
			current = append(current, r)
		}
	}
	flush()
	return tokens
}

func isNumberSeparator(runes []rune, i int) bool {
	r := runes[i]
	if r != '.' && r != ',' {
		return false
	}
	return i > 0 && i+1 < len(runes) && unicode.IsDigit(runes[i-1]) && unicode.IsDigit(runes[i+1])
}

func isCJK(r rune) bool {
	return r >= 0x4E00 && r <= 0x9FFF
}

// Detokenize joins target words with spaces, attaching closing punctuation to the word
// before it and opening brackets to the word after.
func Detokenize(words []string) string {
	var sb strings.Builder
	glue := true
	for _, w := range words {
		if !glue && !util.AttachesLeft(w) {
			sb.WriteByte(' ')
		}
		sb.WriteString(w)
		glue = util.AttachesRight(w)
	}
	return sb.String()
}
