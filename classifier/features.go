package classifier

import "strings"

const (
	bos = "_BOS_"
	eos = "_EOS_"
)

// SourceFeatures generates context features for the source span [start,end] of tokens.
func SourceFeatures(tokens []string, start, end int) []string {
	// Helper to safely get a token
	get := func(pos int) string {
		if pos < 0 {
			return bos
		}
		if pos >= len(tokens) {
			return eos
		}
		return tokens[pos]
	}

	// Feature templates
	// S:  x[start..end]
	// L2: x[start-2]
	// L1: x[start-1]
	// R1: x[end+1]
	// R2: x[end+2]
	return []string{
		"S:" + strings.Join(tokens[start:end+1], "_"),
		"L2:" + get(start-2),
		"L1:" + get(start-1),
		"R1:" + get(end+1),
		"R2:" + get(end+2),
	}
}

// TargetFeatures generates features for a candidate's target words.
func TargetFeatures(words []string) []string {
	feats := make([]string, 0, len(words)+1)
	feats = append(feats, "T:"+strings.Join(words, "_"))
	for _, w := range words {
		feats = append(feats, "TW:"+w)
	}
	return feats
}

// Combine crosses every source feature with every target feature and keeps the target
// features on their own.
func Combine(src, tgt []string) []string {
	out := make([]string, 0, len(src)*len(tgt)+len(tgt))
	out = append(out, tgt...)
	for _, s := range src {
		for _, t := range tgt {
			out = append(out, s+"^"+t)
		}
	}
	return out
}
