// Package lm implements a backoff n-gram language model read from ARPA text files.
package lm

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// Sentence boundary and unknown-word tokens.
const (
	BOS = "<s>"
	EOS = "</s>"
	UNK = "<unk>"
)

// UnknownLogProb is the natural-log probability given to words the model has never seen
// when it has no <unk> entry.
const UnknownLogProb = -100.0

var ln10 = math.Log(10)

type entry struct {
	prob    float64
	backoff float64
}

// Model is an n-gram backoff model. Probabilities are stored in natural log.
type Model struct {
	order  int
	ngrams map[string]entry
}

// NewModel creates an empty model of the given order.
func NewModel(order int) *Model {
	return &Model{order: order, ngrams: make(map[string]entry)}
}

// Order returns the n-gram order.
func (m *Model) Order() int {
	return m.order
}

// Len returns the number of stored n-grams.
func (m *Model) Len() int {
	return len(m.ngrams)
}

// Add stores an n-gram with natural-log probability and backoff weight.
func (m *Model) Add(words []string, logProb, backoff float64) {
	if len(words) > m.order {
		m.order = len(words)
	}
	m.ngrams[strings.Join(words, " ")] = entry{prob: logProb, backoff: backoff}
}

// Contains reports whether w is in the vocabulary.
func (m *Model) Contains(w string) bool {
	_, ok := m.ngrams[w]
	return ok
}

// LogProb returns ln P(w | history). Only the last Order()-1 words of history are used.
func (m *Model) LogProb(history []string, w string) float64 {
	if len(history) > m.order-1 {
		history = history[len(history)-(m.order-1):]
	}
	backoff := 0.0
	for i := 0; i <= len(history); i++ {
		ctx := history[i:]
		if e, ok := m.ngrams[joinWith(ctx, w)]; ok {
			return backoff + e.prob
		}
		if len(ctx) > 0 {
			if e, ok := m.ngrams[strings.Join(ctx, " ")]; ok {
				backoff += e.backoff
			}
		}
	}
	if e, ok := m.ngrams[UNK]; ok {
		return backoff + e.prob
	}
	return UnknownLogProb
}

// ScoreSequence returns the summed log probability of words given the initial history.
func (m *Model) ScoreSequence(history, words []string) float64 {
	ctx := append([]string(nil), history...)
	total := 0.0
	for _, w := range words {
		total += m.LogProb(ctx, w)
		ctx = append(ctx, w)
	}
	return total
}

func joinWith(ctx []string, w string) string {
	if len(ctx) == 0 {
		return w
	}
	return strings.Join(ctx, " ") + " " + w
}

// Load reads an ARPA file from path.
func Load(path string) (*Model, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return Read(file)
}

// Read parses ARPA text: a \data\ header, one \N-grams: section per order and \end\.
// Values in the file are log10 and are converted to natural log.
func Read(r io.Reader) (*Model, error) {
	m := NewModel(0)
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 1024*1024)
	scanner.Buffer(buf, 1024*1024)

	section := -1
	lineNo := 0
	seenData := false
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		switch {
		case line == `\data\`:
			seenData = true
			section = 0
			continue
		case line == `\end\`:
			if !seenData {
				return nil, fmt.Errorf("line %d: missing \\data\\ header", lineNo)
			}
			return m.finish()
		case strings.HasPrefix(line, `\`) && strings.HasSuffix(line, "-grams:"):
			n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(line, `\`), "-grams:"))
			if err != nil || n < 1 {
				return nil, fmt.Errorf("line %d: bad section %q", lineNo, line)
			}
			section = n
			continue
		}
		if section <= 0 {
			// header counts ("ngram 1=5") and preamble text
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < section+1 {
			return nil, fmt.Errorf("line %d: expected %d words", lineNo, section)
		}
		prob, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad probability: %w", lineNo, err)
		}
		backoff := 0.0
		if len(fields) > section+1 {
			if backoff, err = strconv.ParseFloat(fields[section+1], 64); err != nil {
				return nil, fmt.Errorf("line %d: bad backoff: %w", lineNo, err)
			}
		}
		m.Add(fields[1:section+1], prob*ln10, backoff*ln10)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if !seenData {
		return nil, fmt.Errorf("missing \\data\\ header")
	}
	return m.finish()
}

func (m *Model) finish() (*Model, error) {
	if m.order == 0 {
		return nil, fmt.Errorf("no n-grams")
	}
	return m, nil
}
