package statement

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/SergeiGolos/wod-wiki-runtime/internal/fragment"
)

func TestValidateAcceptsAWellFormedScript(t *testing.T) {
	s := Script{
		Root: []int{1},
		Statements: map[int]Statement{
			1: {ID: 1, Children: [][]int{{2, 3}}},
			2: {ID: 2},
			3: {ID: 3},
		},
	}

	assert.Empty(t, s.Validate())
}

func TestValidateReportsUnresolvedRootID(t *testing.T) {
	s := Script{Root: []int{99}, Statements: map[int]Statement{}}

	errs := s.Validate()

	assert.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "root statement 99")
}

func TestValidateReportsEveryUnresolvedChildAcrossStatements(t *testing.T) {
	// Two statements each reference a dangling child id; the per-statement
	// scan runs concurrently (errgroup), so this exercises that every
	// goroutine's findings land in the merged, sorted result rather than
	// only the last one to finish.
	s := Script{
		Root: []int{1, 2},
		Statements: map[int]Statement{
			1: {ID: 1, Children: [][]int{{100}}},
			2: {ID: 2, Children: [][]int{{200}}},
		},
	}

	errs := s.Validate()

	assert.Len(t, errs, 2)
	joined := errs[0].Error() + errs[1].Error()
	assert.Contains(t, joined, "unresolved id 100")
	assert.Contains(t, joined, "unresolved id 200")
}

func TestGetResolvesKnownID(t *testing.T) {
	s := Script{Statements: map[int]Statement{5: {ID: 5, Fragments: []fragment.Fragment{{Kind: fragment.KindText, Text: "x"}}}}}

	st, ok := s.Get(5)

	assert.True(t, ok)
	assert.Equal(t, 5, st.ID)
}

func TestResolveFailsOnFirstUnresolvableID(t *testing.T) {
	s := Script{Statements: map[int]Statement{1: {ID: 1}}}

	_, err := s.Resolve([]int{1, 2})

	assert.Error(t, err)
}
