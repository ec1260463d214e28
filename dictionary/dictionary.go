package dictionary

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/teatak/smt/phrase"
)

// FieldSeparator separates the columns of a table line.
const FieldSeparator = "|||"

// Entry is one stored translation with the provider's raw (log-domain) scores.
type Entry struct {
	LHS    string
	Source []string
	Target []string
	Scores []float64
}

// HasNonTerminals reports whether the source side contains gaps.
func (e *Entry) HasNonTerminals() bool {
	return len(phrase.NonTerminals(e.Source)) > 0
}

// Table holds phrase pairs or rules keyed by their source side.
type Table struct {
	NumScores int
	// Entries indexes terminal-only source sides.
	Entries map[string][]*Entry
	// Rules holds entries whose source side has non-terminals.
	Rules []*Entry
	// MaxLen is the longest terminal-only source side.
	MaxLen int
	Loaded bool
}

// NewTable creates an empty table whose entries carry numScores scores.
func NewTable(numScores int) *Table {
	return &Table{
		NumScores: numScores,
		Entries:   make(map[string][]*Entry),
	}
}

// Add stores e after checking its score count.
func (t *Table) Add(e *Entry) error {
	if len(e.Scores) != t.NumScores {
		return fmt.Errorf("entry %q: got %d scores, want %d", strings.Join(e.Source, " "), len(e.Scores), t.NumScores)
	}
	if len(e.Source) == 0 {
		return fmt.Errorf("entry with empty source side")
	}
	if e.HasNonTerminals() {
		if err := checkGaps(e); err != nil {
			return err
		}
		t.Rules = append(t.Rules, e)
		return nil
	}
	key := strings.Join(e.Source, " ")
	t.Entries[key] = append(t.Entries[key], e)
	if len(e.Source) > t.MaxLen {
		t.MaxLen = len(e.Source)
	}
	return nil
}

// checkGaps requires source gaps numbered 1..n in order and every target gap to refer
// to one of them.
func checkGaps(e *Entry) error {
	src := phrase.NonTerminals(e.Source)
	for i, nt := range src {
		if nt.Index != i+1 {
			return fmt.Errorf("rule %q: source gap %s out of order", strings.Join(e.Source, " "), nt)
		}
	}
	for _, nt := range phrase.NonTerminals(e.Target) {
		if nt.Index > len(src) || src[nt.Index-1].Label != nt.Label {
			return fmt.Errorf("rule %q: target gap %s has no source gap", strings.Join(e.Source, " "), nt)
		}
	}
	return nil
}

// Lookup returns the entries whose source side is exactly source.
func (t *Table) Lookup(source string) []*Entry {
	return t.Entries[source]
}

// Len returns the number of stored entries.
func (t *Table) Len() int {
	n := len(t.Rules)
	for _, es := range t.Entries {
		n += len(es)
	}
	return n
}

// Load loads phrase pairs from a file.
// File format: source ||| target ||| score1 score2 ...
func (t *Table) Load(path string) error {
	return t.loadFile(path, false)
}

// LoadRules loads hierarchical rules from a file.
// File format: LHS ||| source pattern ||| target pattern ||| score1 score2 ...
func (t *Table) LoadRules(path string) error {
	return t.loadFile(path, true)
}

func (t *Table) loadFile(path string, rules bool) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return t.Read(file, rules)
}

// Read parses table lines from r. Blank lines and lines starting with '#' are skipped.
func (t *Table) Read(r io.Reader, rules bool) error {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 1024*1024)
	scanner.Buffer(buf, 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		e, err := ParseLine(line, rules)
		if err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
		if err := t.Add(e); err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	t.Loaded = true
	return nil
}

// ParseLine parses one phrase line (rules=false) or rule line (rules=true).
func ParseLine(line string, rules bool) (*Entry, error) {
	parts := strings.Split(line, FieldSeparator)
	want := 3
	if rules {
		want = 4
	}
	if len(parts) != want {
		return nil, fmt.Errorf("expected %d fields, got %d", want, len(parts))
	}
	e := &Entry{LHS: "X"}
	if rules {
		e.LHS = strings.TrimSpace(parts[0])
		parts = parts[1:]
	}
	e.Source = strings.Fields(parts[0])
	e.Target = strings.Fields(parts[1])
	for _, f := range strings.Fields(parts[2]) {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("bad score %q: %w", f, err)
		}
		e.Scores = append(e.Scores, v)
	}
	return e, nil
}

// FormatScores renders scores the way ParseLine reads them.
func FormatScores(scores []float64) string {
	parts := make([]string, len(scores))
	for i, s := range scores {
		parts[i] = strconv.FormatFloat(s, 'g', -1, 64)
	}
	return strings.Join(parts, " ")
}
