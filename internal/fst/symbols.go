package fst

import (
	"fmt"
	"sync"
)

// Symbol is an interned symbol id. Epsilon is always 0.
type Symbol int32

// Epsilon is the empty symbol.
const Epsilon Symbol = 0

const epsilonName = "@0@"

// EncodeSeparator joins the two sides of an encoded pair symbol.
const EncodeSeparator = "^"

// Label is the input/output pair carried by an arc.
type Label struct {
	In  Symbol
	Out Symbol
}

// Identity returns the label s:s.
func Identity(s Symbol) Label {
	return Label{In: s, Out: s}
}

// IsEpsilon reports whether both sides are epsilon.
func (l Label) IsEpsilon() bool {
	return l.In == Epsilon && l.Out == Epsilon
}

func (l Label) less(m Label) bool {
	if l.In != m.In {
		return l.In < m.In
	}
	return l.Out < m.Out
}

// SymbolTable maps symbol names to ids.
//
// The table is read-shared by every compilation. Extending it takes the
// write lock, so concurrent rule compilations may intern safely, but ids
// are only reproducible across runs when the table is filled up front.
type SymbolTable struct {
	mu      sync.RWMutex
	names   []string
	ids     map[string]Symbol
	decoded map[Symbol]Label
	encoded map[Label]Symbol
}

// NewSymbolTable returns a table holding only epsilon.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		names:   []string{epsilonName},
		ids:     map[string]Symbol{epsilonName: Epsilon},
		decoded: make(map[Symbol]Label),
		encoded: make(map[Label]Symbol),
	}
}

// Intern returns the id of name, adding it if needed.
func (t *SymbolTable) Intern(name string) Symbol {
	t.mu.RLock()
	s, ok := t.ids[name]
	t.mu.RUnlock()
	if ok {
		return s
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if s, ok := t.ids[name]; ok {
		return s
	}
	s = Symbol(len(t.names))
	t.names = append(t.names, name)
	t.ids[name] = s
	return s
}

// Lookup returns the id of name without adding it.
func (t *SymbolTable) Lookup(name string) (Symbol, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.ids[name]
	return s, ok
}

// Name returns the printable name of s.
func (t *SymbolTable) Name(s Symbol) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if s < 0 || int(s) >= len(t.names) {
		return fmt.Sprintf("#%d", s)
	}
	return t.names[s]
}

// Len returns the number of symbols including epsilon.
func (t *SymbolTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.names)
}

// EncodeLabel returns the single symbol "in^out" standing for l.
// The epsilon label encodes to Epsilon.
func (t *SymbolTable) EncodeLabel(l Label) Symbol {
	if l.IsEpsilon() {
		return Epsilon
	}
	t.mu.RLock()
	s, ok := t.encoded[l]
	t.mu.RUnlock()
	if ok {
		return s
	}

	name := t.Name(l.In) + EncodeSeparator + t.Name(l.Out)

	t.mu.Lock()
	defer t.mu.Unlock()
	if s, ok := t.encoded[l]; ok {
		return s
	}
	s, ok = t.ids[name]
	if !ok {
		s = Symbol(len(t.names))
		t.names = append(t.names, name)
		t.ids[name] = s
	}
	t.encoded[l] = s
	t.decoded[s] = l
	return s
}

// DecodeSymbol returns the label an encoded symbol stands for.
func (t *SymbolTable) DecodeSymbol(s Symbol) (Label, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	l, ok := t.decoded[s]
	return l, ok
}
