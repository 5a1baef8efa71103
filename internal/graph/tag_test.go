package graph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aledsdavies/commitvm/internal/graph"
	"github.com/aledsdavies/commitvm/internal/redirect"
	"github.com/aledsdavies/commitvm/internal/store"
	"github.com/aledsdavies/commitvm/internal/storetest"
	"github.com/aledsdavies/commitvm/internal/vmerrors"
)

func TestFindTagDiamondPicksTaggedBranch(t *testing.T) {
	b := storetest.NewBuilder()
	b.Commit("start", "branch left")
	b.Commit("left", "println L", "start")
	b.Commit("right", "println R", "start")
	b.Commit("end", "nop", "left", "right")
	b.Tag("left", "left")
	b.Tag("right", "right")
	s := b.Store()

	children, err := graph.Build(s, b.Hash("end"), redirect.DefaultMaxHops)
	require.NoError(t, err)

	chosen, err := graph.FindTag(s, "left", children[b.Hash("start")], redirect.DefaultMaxHops)
	require.NoError(t, err)
	assert.Equal(t, b.Hash("left"), chosen)
}

// TestFindTagPicksClosestAncestor builds a merge commit with one candidate
// one hop away and another candidate three hops away, and asserts the
// nearer candidate wins regardless of traversal order.
func TestFindTagPicksClosestAncestor(t *testing.T) {
	b := storetest.NewBuilder()
	b.Commit("start", "nop")
	b.Commit("branchNear", "nop", "start")
	b.Commit("branchFar", "nop", "start")
	b.Commit("midA", "nop", "branchFar")
	b.Commit("midB", "nop", "midA")
	b.Commit("deep", "nop", "branchNear", "midB")
	b.Tag("deep", "deep")
	s := b.Store()

	candidates := []store.ID{b.Hash("branchNear"), b.Hash("branchFar")}
	chosen, err := graph.FindTag(s, "deep", candidates, redirect.DefaultMaxHops)
	require.NoError(t, err)
	assert.Equal(t, b.Hash("branchNear"), chosen)
}

func TestFindTagNotFound(t *testing.T) {
	b := storetest.NewBuilder()
	b.Commit("start", "nop")
	b.Commit("unrelated", "nop")
	b.Commit("other", "nop", "start")
	b.Tag("goal", "unrelated")
	s := b.Store()

	_, err := graph.FindTag(s, "goal", []store.ID{b.Hash("other")}, redirect.DefaultMaxHops)
	assert.True(t, vmerrors.Is(err, vmerrors.BranchTargetNotFound))
}

func TestFindTagMissingTagRaisesMissingRef(t *testing.T) {
	b := storetest.NewBuilder()
	b.Commit("start", "nop")
	s := b.Store()

	_, err := graph.FindTag(s, "nope", []store.ID{b.Hash("start")}, redirect.DefaultMaxHops)
	assert.True(t, vmerrors.Is(err, vmerrors.MissingRef))
}
