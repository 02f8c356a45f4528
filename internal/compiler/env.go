package compiler

import (
	"sync"

	"github.com/roach88/twolc/internal/fst"
)

// Predefined names bound in every environment.
var predefined = []string{"PI", "PAIRS"}

// Env is the append-only definition environment of one rule file.
// Definitions are added in file order by a single goroutine and read
// concurrently while rules compile.
type Env struct {
	mu    sync.RWMutex
	defs  map[string]*fst.Automaton
	order []string
}

// NewEnv returns an environment with PI and PAIRS bound to the automaton
// of one legal pair.
func NewEnv(cc *CompilationContext) *Env {
	env := &Env{defs: make(map[string]*fst.Automaton)}
	for _, name := range predefined {
		env.defs[name] = cc.PI().WithName(name)
		env.order = append(env.order, name)
	}
	return env
}

// Define binds name. A name can be bound only once.
func (e *Env) Define(name string, a *fst.Automaton) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.defs[name]; ok {
		return errorf(DuplicateDefinition, "%s is already defined", name)
	}
	e.defs[name] = a.WithName(name)
	e.order = append(e.order, name)
	return nil
}

// Lookup returns the automaton bound to name.
func (e *Env) Lookup(name string) (*fst.Automaton, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	a, ok := e.defs[name]
	return a, ok
}

// Names returns the bound names in definition order.
func (e *Env) Names() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]string, len(e.order))
	copy(out, e.order)
	return out
}

// Snapshot returns an independent copy of the current bindings. A rule
// compiled against a snapshot sees only the definitions above it in the
// file, even if later definitions are added to e meanwhile.
func (e *Env) Snapshot() *Env {
	e.mu.RLock()
	defer e.mu.RUnlock()
	cp := &Env{
		defs:  make(map[string]*fst.Automaton, len(e.defs)),
		order: make([]string, len(e.order)),
	}
	for k, v := range e.defs {
		cp.defs[k] = v
	}
	copy(cp.order, e.order)
	return cp
}
