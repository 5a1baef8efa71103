// Package redirect implements replacement-reference resolution: following
// chains of refs/replace/<id> pointers to a fixed point.
package redirect

import (
	"github.com/aledsdavies/commitvm/internal/store"
	"github.com/aledsdavies/commitvm/internal/vmerrors"
)

// DefaultMaxHops bounds a replacement chain when a caller doesn't configure
// its own limit. Chains are assumed acyclic by construction; a well-formed
// repository never needs more than a handful of hops, so a generous but
// finite cap turns a malformed cycle into a diagnosable error instead of an
// infinite loop.
const DefaultMaxHops = 1000

// Resolve follows id through refs/replace/<id> chains until no replacement
// exists, returning the canonical commit and whether any redirection
// occurred at all. maxHops bounds the chain length; pass DefaultMaxHops when
// no configuration overrides it.
func Resolve(s store.Store, id store.ID, maxHops int) (canonical store.ID, redirected bool, err error) {
	visited := map[store.ID]bool{id: true}
	cur := id

	for hops := 0; hops <= maxHops; hops++ {
		next, ok, err := s.ResolveReplace(cur)
		if err != nil {
			return store.ZeroID, false, err
		}
		if !ok {
			return cur, cur != id, nil
		}
		if visited[next] {
			return store.ZeroID, false, vmerrors.New(vmerrors.RedirectLoop, "replacement chain from %s does not terminate", id)
		}
		visited[next] = true
		cur = next
	}
	return store.ZeroID, false, vmerrors.New(vmerrors.RedirectLoop, "replacement chain from %s exceeds %d hops", id, maxHops)
}
