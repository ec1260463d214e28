package dictionary

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"
)

// Prune keeps the limit best entries of every source phrase, ranked by the dot product
// of their scores with weights. Rules are not touched. It returns the number of
// entries removed.
func (t *Table) Prune(limit int, weights []float64) (int, error) {
	if len(weights) != t.NumScores {
		return 0, fmt.Errorf("got %d weights, want %d", len(weights), t.NumScores)
	}
	if limit <= 0 {
		return 0, nil
	}
	score := func(e *Entry) float64 {
		s := 0.0
		for i, v := range e.Scores {
			s += v * weights[i]
		}
		return s
	}
	removed := 0
	for key, es := range t.Entries {
		if len(es) <= limit {
			continue
		}
		sort.SliceStable(es, func(i, j int) bool { return score(es[i]) > score(es[j]) })
		removed += len(es) - limit
		t.Entries[key] = es[:limit]
	}
	return removed, nil
}

// Write prints the table in the format Read accepts, phrases sorted by source and then
// the rules in load order.
func (t *Table) Write(w io.Writer, rules bool) error {
	bw := bufio.NewWriter(w)
	keys := make([]string, 0, len(t.Entries))
	for k := range t.Entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, e := range t.Entries[k] {
			fmt.Fprintln(bw, FormatLine(e, rules))
		}
	}
	if rules {
		for _, e := range t.Rules {
			fmt.Fprintln(bw, FormatLine(e, true))
		}
	}
	return bw.Flush()
}

// FormatLine renders e as one phrase line or rule line.
func FormatLine(e *Entry, rules bool) string {
	sep := " " + FieldSeparator + " "
	line := strings.Join(e.Source, " ") + sep + strings.Join(e.Target, " ") + sep + FormatScores(e.Scores)
	if rules {
		line = e.LHS + sep + line
	}
	return line
}
