// Package jit implements the JIT Compiler & Strategies (spec.md §4.8): an
// ordered, last-added-wins strategy table that turns one compiled sibling
// group of statements into a Block, plus an LRU cache so repeat shapes
// (the common case — a rep-scheme's children recompile every round) skip
// re-running every strategy's Match.
package jit

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/SergeiGolos/wod-wiki-runtime/internal/behavior"
	"github.com/SergeiGolos/wod-wiki-runtime/internal/block"
	"github.com/SergeiGolos/wod-wiki-runtime/internal/fragment"
	"github.com/SergeiGolos/wod-wiki-runtime/internal/memory"
	"github.com/SergeiGolos/wod-wiki-runtime/internal/statement"
	"github.com/SergeiGolos/wod-wiki-runtime/internal/wrerrors"
)

// CompileContext carries the shared collaborators a Strategy needs to
// build a Block, without the strategy package importing the orchestrator.
type CompileContext struct {
	Store   *memory.Store
	Now     func() time.Time
	NextKey func() memory.Key
	History *behavior.Log
}

// Strategy matches a compiled sibling group of statements and builds a
// Block from it (§4.8).
type Strategy interface {
	Name() string
	Match(stmts []statement.Statement) bool
	Compile(stmts []statement.Statement, ctx CompileContext) (*block.Block, error)
}

// Compiler holds the ordered strategy list and the match-cache.
type Compiler struct {
	strategies []Strategy
	cache      *lru.Cache[string, Strategy]
}

// NewCompiler builds an empty Compiler. cacheSize bounds the match cache;
// 0 disables caching.
func NewCompiler(cacheSize int) *Compiler {
	c := &Compiler{}
	if cacheSize > 0 {
		cache, _ := lru.New[string, Strategy](cacheSize)
		c.cache = cache
	}
	return c
}

// Register appends a strategy. Strategies registered later take priority:
// Compile iterates in reverse registration order, so the last Register
// call wins ties (§4.8 "last added = highest priority").
func (c *Compiler) Register(s Strategy) {
	c.strategies = append(c.strategies, s)
}

// Compile selects the highest-priority matching strategy for stmts and
// builds a Block. Statement-shape signatures are cached so recompiling the
// same fragment shape (e.g. a rep scheme's repeated child group) skips the
// linear match scan.
func (c *Compiler) Compile(stmts []statement.Statement, ctx CompileContext) (*block.Block, error) {
	if len(stmts) == 0 {
		return nil, wrerrors.NewStrategyNotFoundError(nil)
	}

	sig := signature(stmts[0])
	if c.cache != nil {
		if strat, ok := c.cache.Get(sig); ok {
			return strat.Compile(stmts, ctx)
		}
	}

	for i := len(c.strategies) - 1; i >= 0; i-- {
		strat := c.strategies[i]
		if strat.Match(stmts) {
			if c.cache != nil {
				c.cache.Add(sig, strat)
			}
			return strat.Compile(stmts, ctx)
		}
	}

	ids := make([]int, len(stmts))
	for i, st := range stmts {
		ids[i] = st.ID
	}
	return nil, wrerrors.NewStrategyNotFoundError(ids)
}

// signature derives a cache key from a statement's fragment kinds and
// Action names — the only inputs every strategy's Match reads (§4.8 "each
// strategy's match is a pure predicate over fragment kinds").
func signature(st statement.Statement) string {
	b := make([]byte, 0, len(st.Fragments)*2)
	for _, f := range st.Fragments {
		b = append(b, byte('A'+int(f.Kind)))
		if f.Kind == fragment.KindAction {
			b = append(b, []byte(f.Name)...)
		}
	}
	if len(st.Children) > 0 {
		b = append(b, 'C')
	}
	return string(b)
}

// deriveChildGroups resolves the Block's loopable child groups: the first
// statement's own Children if present, else — when multiple statements
// were compiled together as one sibling group and the first carries no
// children of its own — the remaining statement ids form one combined
// group (§4.8 "the remaining statements form one sibling group").
func deriveChildGroups(stmts []statement.Statement) [][]int {
	if len(stmts[0].Children) > 0 {
		return stmts[0].Children
	}
	if len(stmts) > 1 {
		ids := make([]int, 0, len(stmts)-1)
		for _, st := range stmts[1:] {
			ids = append(ids, st.ID)
		}
		return [][]int{ids}
	}
	return nil
}

// sourceIDs collects every statement id compiled into one Block.
func sourceIDs(stmts []statement.Statement) []int {
	ids := make([]int, len(stmts))
	for i, st := range stmts {
		ids[i] = st.ID
	}
	return ids
}

// deriveLabel picks a human-readable label: the first Effort name, else
// the first Action name, else a generic fallback.
func deriveLabel(fs []fragment.Fragment) string {
	if f, ok := fragment.Find(fs, fragment.KindEffort); ok {
		return f.Name
	}
	if f, ok := fragment.Find(fs, fragment.KindAction); ok {
		return f.Name
	}
	return "block"
}
