// Package graph builds the forward children index from a terminal commit
// and resolves tag-directed branch targets against it.
package graph

import (
	"github.com/aledsdavies/commitvm/internal/redirect"
	"github.com/aledsdavies/commitvm/internal/store"
)

// Children maps a canonical commit identity to its ordered, deduplicated
// forward child commits, as discovered by a reverse DFS from the terminal
// commit across parent edges.
type Children map[store.ID][]store.ID

// Build performs an iterative reverse DFS from end across parent edges,
// inverting them into a forward child index. Every identity is canonicalized
// through the redirection resolver the moment it is discovered — before it
// is ever used as a map key or inserted into a child slice — so the
// alternative, aggressively-canonicalize-before-insertion strategy is taken
// instead of a collect-then-rewrite second pass: no pre-redirection identity
// is ever admitted into the index in the first place.
func Build(s store.Store, end store.ID, maxRedirectHops int) (Children, error) {
	children := make(Children)
	visited := make(map[store.ID]bool)

	canon := func(id store.ID) (store.ID, error) {
		c, _, err := redirect.Resolve(s, id, maxRedirectHops)
		return c, err
	}

	endCanon, err := canon(end)
	if err != nil {
		return nil, err
	}

	stack := []store.ID{endCanon}
	visited[endCanon] = true

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		commit, err := s.Commit(cur)
		if err != nil {
			return nil, err
		}

		for i := 0; i < commit.NumParents(); i++ {
			parent, ok, err := s.Parent(cur, i)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			parentCanon, err := canon(parent)
			if err != nil {
				return nil, err
			}

			children[parentCanon] = appendUnique(children[parentCanon], cur)

			if !visited[parentCanon] {
				visited[parentCanon] = true
				stack = append(stack, parentCanon)
			}
		}
	}

	// Every canonical identity reachable from end must appear as a key, even
	// one with no children of its own. The walk only adds parents as keys,
	// so end itself always needs this explicit entry.
	if _, ok := children[endCanon]; !ok {
		children[endCanon] = nil
	}

	return children, nil
}

func appendUnique(ids []store.ID, id store.ID) []store.ID {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}
