// Package phrase holds the per-sentence data the decoder searches over: source tokens,
// spans and coverage, score vectors, candidate target phrases and translation options.
package phrase

import (
	"strconv"
	"strings"
)

// Phrase is an ordered, immutable sequence of tokens.
type Phrase []string

// Sub returns the tokens covered by s. The result shares memory with p.
func (p Phrase) Sub(s Span) Phrase {
	return p[s.Start : s.End+1]
}

func (p Phrase) String() string {
	return strings.Join(p, " ")
}

// NonTerminal is a gap in a rule's source or target side, written "[X,1]".
// Index is 1-based and links the target gap to the source gap with the same index.
type NonTerminal struct {
	Label string
	Index int
}

func (nt NonTerminal) String() string {
	return "[" + nt.Label + "," + strconv.Itoa(nt.Index) + "]"
}

// ParseNonTerminal recognises a non-terminal token such as "[X,1]".
func ParseNonTerminal(tok string) (NonTerminal, bool) {
	if len(tok) < 5 || tok[0] != '[' || tok[len(tok)-1] != ']' {
		return NonTerminal{}, false
	}
	label, idx, ok := strings.Cut(tok[1:len(tok)-1], ",")
	if !ok || label == "" {
		return NonTerminal{}, false
	}
	n, err := strconv.Atoi(idx)
	if err != nil || n < 1 {
		return NonTerminal{}, false
	}
	return NonTerminal{Label: label, Index: n}, true
}

// NonTerminals lists the gaps of a rule side in order of appearance.
func NonTerminals(side []string) []NonTerminal {
	var out []NonTerminal
	for _, tok := range side {
		if nt, ok := ParseNonTerminal(tok); ok {
			out = append(out, nt)
		}
	}
	return out
}

// Terminals returns the side without its non-terminals.
func Terminals(side []string) []string {
	out := make([]string, 0, len(side))
	for _, tok := range side {
		if _, ok := ParseNonTerminal(tok); !ok {
			out = append(out, tok)
		}
	}
	return out
}
