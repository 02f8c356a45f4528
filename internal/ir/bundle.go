package ir

import (
	"encoding/json"
	"fmt"
	"io"
)

// RuleRecord is one compiled rule as written to a bundle or the store.
type RuleRecord struct {
	Ordinal   int       `json:"ordinal"`  // position among the compiled rules, from 0
	Name      string    `json:"name"`     // the rule statement on one line
	Operator  string    `json:"operator"` // "=>", "<=", "<=>", "<--" or "/<="
	FirstLine int       `json:"first_line"`
	LastLine  int       `json:"last_line"`
	Automaton Automaton `json:"automaton"`
	Hash      string    `json:"hash"` // RuleHash of this record
}

// RuleBundle is the ordered output of one compile: every rule that
// compiled, tagged with its name, in rule-file order.
type RuleBundle struct {
	Version      string       `json:"version"`
	Source       string       `json:"source"`
	Pairs        []string     `json:"pairs"`
	AlphabetHash string       `json:"alphabet_hash"`
	Rules        []RuleRecord `json:"rules"`
}

// Rule returns the rule with the given name or ordinal (as a decimal
// string).
func (b *RuleBundle) Rule(key string) (RuleRecord, bool) {
	for _, r := range b.Rules {
		if r.Name == key || fmt.Sprint(r.Ordinal) == key {
			return r, true
		}
	}
	return RuleRecord{}, false
}

// Validate checks that the bundle is complete and its hashes match.
func (b *RuleBundle) Validate() error {
	if b.Version != BundleVersion {
		return fmt.Errorf("unsupported bundle version %q", b.Version)
	}
	if h, err := AlphabetHash(b.Pairs); err != nil {
		return err
	} else if h != b.AlphabetHash {
		return fmt.Errorf("alphabet hash mismatch")
	}
	for i, r := range b.Rules {
		if r.Ordinal != i {
			return fmt.Errorf("rule %d has ordinal %d", i, r.Ordinal)
		}
		h, err := RuleHash(r)
		if err != nil {
			return err
		}
		if h != r.Hash {
			return fmt.Errorf("rule %d (%s): hash mismatch", i, r.Name)
		}
	}
	return nil
}

// WriteBundle writes b as indented JSON.
func WriteBundle(w io.Writer, b *RuleBundle) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(b)
}

// ReadBundle decodes and validates a bundle. Unknown fields are errors.
func ReadBundle(r io.Reader) (*RuleBundle, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	var b RuleBundle
	if err := dec.Decode(&b); err != nil {
		return nil, fmt.Errorf("decode bundle: %w", err)
	}
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("invalid bundle: %w", err)
	}
	return &b, nil
}
