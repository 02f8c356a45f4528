package store

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/roach88/twolc/internal/ir"
)

// marshalJSON converts v to JSON TEXT for storage, without HTML escaping
// so that pair symbols like a:<b> are stored as written.
func marshalJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return string(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))), nil
}

func marshalAutomaton(a ir.Automaton) (string, error) {
	s, err := marshalJSON(a)
	if err != nil {
		return "", fmt.Errorf("marshal automaton: %w", err)
	}
	return s, nil
}

func unmarshalAutomaton(s string) (ir.Automaton, error) {
	var a ir.Automaton
	if err := json.Unmarshal([]byte(s), &a); err != nil {
		return ir.Automaton{}, fmt.Errorf("unmarshal automaton: %w", err)
	}
	return a, nil
}

// marshalStrings stores a string list; nil is stored as [].
func marshalStrings(ss []string) (string, error) {
	if ss == nil {
		ss = []string{}
	}
	s, err := marshalJSON(ss)
	if err != nil {
		return "", fmt.Errorf("marshal strings: %w", err)
	}
	return s, nil
}

func unmarshalStrings(s string) ([]string, error) {
	var out []string
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, fmt.Errorf("unmarshal strings: %w", err)
	}
	return out, nil
}
