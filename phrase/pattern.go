package phrase

// MatchPattern aligns a rule's source pattern with span s of src. Terminals must match
// the source tokens exactly and every non-terminal covers at least one token. Each
// result lists the spans bound to the non-terminals in pattern order.
func MatchPattern(src Phrase, s Span, pattern []string) [][]Span {
	if len(pattern) == 0 || len(pattern) > s.Len() {
		return nil
	}
	var out [][]Span
	bound := make([]Span, 0, len(pattern))

	var walk func(p, pos int)
	walk = func(p, pos int) {
		if p == len(pattern) {
			if pos == s.End+1 {
				out = append(out, append(make([]Span, 0, len(bound)), bound...))
			}
			return
		}
		left := s.End + 1 - pos
		need := len(pattern) - p
		if left < need {
			return
		}
		if _, ok := ParseNonTerminal(pattern[p]); !ok {
			if src[pos] == pattern[p] {
				walk(p+1, pos+1)
			}
			return
		}
		// leave one token for every remaining symbol
		for end := pos; end <= s.End-(need-1); end++ {
			bound = append(bound, Span{Start: pos, End: end})
			walk(p+1, end+1)
			bound = bound[:len(bound)-1]
		}
	}
	walk(0, s.Start)
	return out
}
