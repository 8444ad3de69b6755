// Package statement models the parser's output contract (spec.md §3/§6):
// the external, addressable input the JIT compiler consumes. The
// lexer/parser itself is out of scope (spec.md §1) — this package only
// carries the shape and the validation the runtime performs on it.
package statement

import (
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/SergeiGolos/wod-wiki-runtime/internal/fragment"
)

// Meta carries source location, for error messages and editor round-trips.
type Meta struct {
	Line   int
	Column int
}

// Statement is an addressable parser-output node. Children is always the
// canonical int[][] shape (§9: "The canonical shape for the core is
// int[][], each inner group executes together") — a flat int[]-emitting
// parser is the external caller's responsibility to wrap.
type Statement struct {
	ID       int
	Fragments []fragment.Fragment
	Children  [][]int
	Meta      Meta
}

// Script is the full addressable set of statements for one workout,
// indexed by ID, plus the ordered root statement IDs that form the
// top-level sibling group the orchestrator compiles first.
type Script struct {
	Statements map[int]Statement
	Root       []int
}

// Get resolves id within the script.
func (s Script) Get(id int) (Statement, bool) {
	st, ok := s.Statements[id]
	return st, ok
}

// Resolve resolves a whole ID group (one child "row") into Statements, in
// order, failing on the first unresolvable ID.
func (s Script) Resolve(ids []int) ([]Statement, error) {
	out := make([]Statement, 0, len(ids))
	for _, id := range ids {
		st, ok := s.Get(id)
		if !ok {
			return nil, fmt.Errorf("statement %d: unresolved id", id)
		}
		out = append(out, st)
	}
	return out, nil
}

// Validate checks the §3 invariants that must hold before Start: ids
// unique (guaranteed by the map keying on ID, so this instead checks every
// Children reference resolves within the same script) and every root id
// exists. It returns every violation found rather than stopping at the
// first, so a caller can surface them all at once.
//
// The per-statement children scan runs one goroutine per statement via
// errgroup, since it only ever reads s.Statements (never writes) — safe
// concurrent access to the same map is one of the few places in this
// codebase where fan-out is actually sound: Validate runs once, before
// Start, outside the single-threaded-owner window the runtime itself
// enforces (internal/memory.Store's doc comment).
func (s Script) Validate() []error {
	var errs []error
	for _, id := range s.Root {
		if _, ok := s.Statements[id]; !ok {
			errs = append(errs, fmt.Errorf("root statement %d: unresolved id", id))
		}
	}

	var mu sync.Mutex
	var g errgroup.Group
	for id, st := range s.Statements {
		id, st := id, st
		g.Go(func() error {
			var local []error
			for gi, group := range st.Children {
				for _, childID := range group {
					if _, ok := s.Statements[childID]; !ok {
						local = append(local, fmt.Errorf("statement %d children[%d]: unresolved id %d", id, gi, childID))
					}
				}
			}
			if len(local) > 0 {
				mu.Lock()
				errs = append(errs, local...)
				mu.Unlock()
			}
			return nil
		})
	}
	g.Wait()

	sort.Slice(errs, func(i, j int) bool { return errs[i].Error() < errs[j].Error() })
	return errs
}
