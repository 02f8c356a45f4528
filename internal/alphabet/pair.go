package alphabet

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Reserved symbols used internally by the rule compiler. They never occur
// in examples and cannot be written in rules except as .#.
const (
	BeginSymbol   = "@BEGIN@"
	EndSymbol     = "@END@"
	ZeroSymbol    = "@ZERO@"
	DiamondSymbol = "@DIAMOND@"

	// BoundaryDisplay is how both boundary symbols are printed.
	BoundaryDisplay = ".#."
)

// IsReserved reports whether name is one of the internal symbols.
func IsReserved(name string) bool {
	switch name {
	case BeginSymbol, EndSymbol, ZeroSymbol, DiamondSymbol:
		return true
	}
	return false
}

// Pair is an (input, output) symbol pair.
type Pair struct {
	In  string
	Out string
}

// Identity returns the pair s:s.
func Identity(s string) Pair {
	return Pair{In: s, Out: s}
}

// String returns the pair symbol: "a" for a:a, "{aä}:a" otherwise.
func (p Pair) String() string {
	if p.In == p.Out {
		return displaySymbol(p.In)
	}
	return displaySymbol(p.In) + ":" + displaySymbol(p.Out)
}

func displaySymbol(s string) string {
	if s == BeginSymbol || s == EndSymbol {
		return BoundaryDisplay
	}
	return s
}

// ParsePairSymbol parses a pair symbol as it appears in an example file.
// Both sides must be non-empty.
func ParsePairSymbol(s string) (Pair, error) {
	in, out, err := SplitPairSymbol(s)
	if err != nil {
		return Pair{}, err
	}
	if in == "" || out == "" {
		return Pair{}, fmt.Errorf("invalid pair symbol %q: empty side", s)
	}
	return Pair{In: in, Out: out}, nil
}

// SplitPairSymbol splits a pair symbol at its single unescaped colon and
// unescapes both sides. A symbol without a colon stands for itself on
// both sides. Either side may be empty, as in the rule-file forms "a:",
// ":b" and ":".
func SplitPairSymbol(s string) (in, out string, err error) {
	colon := -1
	escaped := false
	for i, r := range s {
		switch {
		case escaped:
			escaped = false
		case r == '%':
			escaped = true
		case r == ':':
			if colon >= 0 {
				return "", "", fmt.Errorf("invalid pair symbol %q: more than one ':'", s)
			}
			colon = i
		}
	}
	if escaped {
		return "", "", fmt.Errorf("invalid pair symbol %q: dangling '%%'", s)
	}
	if colon < 0 {
		sym := NormalizeSymbol(s)
		return sym, sym, nil
	}
	return NormalizeSymbol(s[:colon]), NormalizeSymbol(s[colon+1:]), nil
}

// NormalizeSymbol removes % escapes and applies NFC normalization.
func NormalizeSymbol(s string) string {
	if strings.IndexByte(s, '%') >= 0 {
		var sb strings.Builder
		escaped := false
		for _, r := range s {
			if r == '%' && !escaped {
				escaped = true
				continue
			}
			escaped = false
			sb.WriteRune(r)
		}
		s = sb.String()
	}
	return norm.NFC.String(s)
}

// FormatPairs renders a pair string as space separated pair symbols.
func FormatPairs(pairs []Pair) string {
	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = p.String()
	}
	return strings.Join(parts, " ")
}
