// Package classifier scores translation candidates in their source context with a linear
// model over crossed source-window and target features.
package classifier

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Model is a linear model. A prediction is a loss: lower means a better candidate.
type Model struct {
	// Weights[feature_string] = weight
	// feature_string typically "S:maison^T:house"
	Weights map[string]float64
	// Bias is added to every prediction.
	Bias float64
}

// NewModel creates a new empty model.
func NewModel() *Model {
	return &Model{
		Weights: make(map[string]float64),
	}
}

// Load loads a simple text-based model.
// Format lines:
// B weight
// F feature_string weight
func (m *Model) Load(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Fields(line)
		switch {
		case parts[0] == "B" && len(parts) == 2:
			w, err := strconv.ParseFloat(parts[1], 64)
			if err != nil {
				return fmt.Errorf("line %d: %w", lineNo, err)
			}
			m.Bias = w
		case parts[0] == "F" && len(parts) == 3:
			w, err := strconv.ParseFloat(parts[2], 64)
			if err != nil {
				return fmt.Errorf("line %d: %w", lineNo, err)
			}
			m.Weights[parts[1]] = w
		default:
			return fmt.Errorf("line %d: malformed entry %q", lineNo, line)
		}
	}
	return scanner.Err()
}

// Save saves the model to a file, features sorted.
func (m *Model) Save(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	writer := bufio.NewWriter(file)

	if m.Bias != 0 {
		fmt.Fprintf(writer, "B %g\n", m.Bias)
	}
	feats := make([]string, 0, len(m.Weights))
	for feat := range m.Weights {
		feats = append(feats, feat)
	}
	sort.Strings(feats)
	for _, feat := range feats {
		fmt.Fprintf(writer, "F %s %g\n", feat, m.Weights[feat])
	}
	return writer.Flush()
}

// Update adds delta to a feature weight, dropping weights that reach zero.
func (m *Model) Update(feat string, delta float64) {
	m.Weights[feat] += delta
	if m.Weights[feat] == 0 {
		delete(m.Weights, feat)
	}
}

// Predict returns the loss of a feature set.
func (m *Model) Predict(feats []string) float64 {
	loss := m.Bias
	for _, f := range feats {
		loss += m.Weights[f]
	}
	return loss
}
