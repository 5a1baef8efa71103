package graph

import (
	"github.com/aledsdavies/commitvm/internal/redirect"
	"github.com/aledsdavies/commitvm/internal/store"
	"github.com/aledsdavies/commitvm/internal/vmerrors"
)

// FindTag resolves tagName and performs a DFS across its ancestors (parent
// index 0, 1, …), tracking depth from the tag, to find the candidate in
// children closest to it. Redirection is applied to every visited ancestor.
// Ties resolve to whichever candidate was recorded first.
func FindTag(s store.Store, tagName string, children []store.ID, maxRedirectHops int) (store.ID, error) {
	tagCommit, err := s.ResolveTag(tagName)
	if err != nil {
		return store.ZeroID, err
	}
	tagCommit, _, err = redirect.Resolve(s, tagCommit, maxRedirectHops)
	if err != nil {
		return store.ZeroID, err
	}

	isCandidate := make(map[store.ID]bool, len(children))
	for _, c := range children {
		isCandidate[c] = true
	}

	type found struct {
		child store.ID
		depth int
	}
	var best *found
	// visited records the shallowest depth each ancestor has been reached
	// at; a node is walked again only when a shorter path to it turns up.
	visited := map[store.ID]int{}

	type frame struct {
		id    store.ID
		depth int
	}
	stack := []frame{{id: tagCommit, depth: 0}}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		canonID, _, err := redirect.Resolve(s, f.id, maxRedirectHops)
		if err != nil {
			return store.ZeroID, err
		}
		if d, seen := visited[canonID]; seen && d <= f.depth {
			continue
		}
		visited[canonID] = f.depth

		if isCandidate[canonID] && (best == nil || f.depth < best.depth) {
			best = &found{child: canonID, depth: f.depth}
		}

		commit, err := s.Commit(canonID)
		if err != nil {
			return store.ZeroID, err
		}
		// Push parents in reverse index order so that popping the stack
		// visits parent 0 first, matching a recursive preorder DFS over
		// "parent index 0, 1, …".
		for i := commit.NumParents() - 1; i >= 0; i-- {
			parent, ok, err := s.Parent(canonID, i)
			if err != nil {
				return store.ZeroID, err
			}
			if !ok {
				continue
			}
			stack = append(stack, frame{id: parent, depth: f.depth + 1})
		}
	}

	if best == nil {
		return store.ZeroID, vmerrors.New(vmerrors.BranchTargetNotFound, "no ancestor of tag %q reaches any candidate child", tagName)
	}
	return best.child, nil
}
