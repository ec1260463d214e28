package ff

import (
	"strconv"
	"strings"
)

// Spec is one parsed feature line: "Type key1=val1 key2=val2 ...".
type Spec struct {
	Line int
	Type string
	Args map[string]string
}

// ParseSpec parses a feature line. line is its 1-based position, used in errors.
func ParseSpec(line int, text string) (*Spec, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil, &ConfigError{Line: line, Reason: "empty feature line"}
	}
	s := &Spec{Line: line, Type: fields[0], Args: make(map[string]string)}
	for _, f := range fields[1:] {
		k, v, ok := strings.Cut(f, "=")
		if !ok || k == "" {
			return nil, &ConfigError{Line: line, Key: f, Reason: "expected key=value"}
		}
		if _, dup := s.Args[k]; dup {
			return nil, &ConfigError{Line: line, Key: k, Reason: "duplicate key"}
		}
		s.Args[k] = v
	}
	return s, nil
}

// Name returns the instance name.
func (s *Spec) Name() string {
	return s.Args["name"]
}

// Get returns the raw value of key.
func (s *Spec) Get(key string) (string, bool) {
	v, ok := s.Args[key]
	return v, ok
}

// Require returns the value of key or a ConfigError when it is missing.
func (s *Spec) Require(key string) (string, error) {
	v, ok := s.Args[key]
	if !ok || v == "" {
		return "", &ConfigError{Line: s.Line, Key: key, Reason: s.Type + " requires this key"}
	}
	return v, nil
}

// Int returns key as an integer, or def when absent.
func (s *Spec) Int(key string, def int) (int, error) {
	v, ok := s.Args[key]
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, &ConfigError{Line: s.Line, Key: key, Reason: "not an integer: " + v}
	}
	return n, nil
}

// RequireInt is Require followed by integer parsing.
func (s *Spec) RequireInt(key string) (int, error) {
	if _, err := s.Require(key); err != nil {
		return 0, err
	}
	return s.Int(key, 0)
}

// Float returns key as a float, or def when absent.
func (s *Spec) Float(key string, def float64) (float64, error) {
	v, ok := s.Args[key]
	if !ok {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, &ConfigError{Line: s.Line, Key: key, Reason: "not a number: " + v}
	}
	return f, nil
}

// Bool returns key as a boolean, or def when absent.
func (s *Spec) Bool(key string, def bool) (bool, error) {
	v, ok := s.Args[key]
	if !ok {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, &ConfigError{Line: s.Line, Key: key, Reason: "not a boolean: " + v}
	}
	return b, nil
}

// fixedScores rejects a num-features key that disagrees with a feature's fixed size.
func (s *Spec) fixedScores(n int) error {
	got, err := s.Int("num-features", n)
	if err != nil {
		return err
	}
	if got != n {
		return &ConfigError{Line: s.Line, Key: "num-features", Reason: s.Type + " has exactly " + strconv.Itoa(n) + " score(s)"}
	}
	return nil
}
