package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content hashes. The version suffix leaves room for
// changing the hashed fields later.
const (
	DomainRule     = "twolc/rule/v1"
	DomainAlphabet = "twolc/alphabet/v1"
	DomainBundle   = "twolc/bundle/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data). The null byte
// keeps the domain and data boundary unambiguous.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// RuleHash identifies a compiled rule by its name, operator and
// automaton. Line numbers are excluded, so moving a rule within its file
// keeps the hash.
func RuleHash(rec RuleRecord) (string, error) {
	canonical, err := MarshalCanonical(map[string]any{
		"name":      rec.Name,
		"operator":  rec.Operator,
		"automaton": rec.Automaton.canonical(),
	})
	if err != nil {
		return "", fmt.Errorf("RuleHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainRule, canonical), nil
}

// AlphabetHash identifies an alphabet by its sorted pair symbols.
func AlphabetHash(pairs []string) (string, error) {
	canonical, err := MarshalCanonical(pairs)
	if err != nil {
		return "", fmt.Errorf("AlphabetHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainAlphabet, canonical), nil
}

// BundleHash identifies a bundle by its alphabet and the ordered hashes
// of its rules.
func BundleHash(b *RuleBundle) (string, error) {
	rules := make([]string, len(b.Rules))
	for i, r := range b.Rules {
		rules[i] = r.Hash
	}
	canonical, err := MarshalCanonical(map[string]any{
		"version":       b.Version,
		"alphabet_hash": b.AlphabetHash,
		"rules":         rules,
	})
	if err != nil {
		return "", fmt.Errorf("BundleHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainBundle, canonical), nil
}

// MustRuleHash is like RuleHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustRuleHash(rec RuleRecord) string {
	h, err := RuleHash(rec)
	if err != nil {
		panic(err)
	}
	return h
}
