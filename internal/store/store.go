// Package store is a thin facade over an on-disk git repository, exposing
// only the primitives the interpreter needs: commit lookup, parent-by-index
// enumeration, tag resolution (with annotated-tag peeling), and
// replacement-reference lookup. It owns no interpreter semantics — that
// belongs to internal/redirect, internal/graph, and internal/engine.
package store

import (
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/aledsdavies/commitvm/internal/vmerrors"
)

// ID is a commit identity. It is a type alias for go-git's hash type so the
// rest of the interpreter never needs to import go-git directly.
type ID = plumbing.Hash

// ZeroID is the identity used to signal "no such commit".
var ZeroID = plumbing.ZeroHash

// Commit is the minimal view of a commit the interpreter operates on.
type Commit struct {
	ID           ID
	Message      string
	ParentHashes []ID
}

// NumParents returns how many parents the commit has.
func (c Commit) NumParents() int { return len(c.ParentHashes) }

// Store is the interface the rest of the interpreter depends on.
type Store interface {
	// Commit looks up a commit by identity.
	Commit(id ID) (Commit, error)
	// Parent returns the i-th parent of id, or ok=false if it has no such
	// parent (index out of range).
	Parent(id ID, i int) (ID, bool, error)
	// ResolveTag resolves refs/tags/<name>, peeling any chain of annotated
	// tag objects down to the commit it ultimately names.
	ResolveTag(name string) (ID, error)
	// ResolveReplace looks up refs/replace/<id>. ok is false when no such
	// reference exists.
	ResolveReplace(id ID) (ID, bool, error)
}

// GitStore is a Store backed by a go-git repository opened from disk.
type GitStore struct {
	repo *git.Repository
}

// Open opens the git repository rooted at path.
func Open(path string) (*GitStore, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return nil, vmerrors.New(vmerrors.IoError, "opening repository %s: %w", path, err)
	}
	return &GitStore{repo: repo}, nil
}

// FromRepository wraps an already-open repository. Exported for tests that
// build synthetic in-memory repositories (see internal/storetest).
func FromRepository(repo *git.Repository) *GitStore {
	return &GitStore{repo: repo}
}

func (s *GitStore) Commit(id ID) (Commit, error) {
	c, err := s.repo.CommitObject(id)
	if err != nil {
		return Commit{}, vmerrors.New(vmerrors.IoError, "loading commit %s: %w", id, err)
	}
	return Commit{ID: c.Hash, Message: c.Message, ParentHashes: append([]ID(nil), c.ParentHashes...)}, nil
}

func (s *GitStore) Parent(id ID, i int) (ID, bool, error) {
	c, err := s.Commit(id)
	if err != nil {
		return ZeroID, false, err
	}
	if i < 0 || i >= len(c.ParentHashes) {
		return ZeroID, false, nil
	}
	return c.ParentHashes[i], true, nil
}

// maxTagPeelDepth bounds chained annotated-tag peeling (tag -> tag -> ... ->
// commit); real repositories never chain more than one or two deep.
const maxTagPeelDepth = 32

func (s *GitStore) ResolveTag(name string) (ID, error) {
	ref, err := s.repo.Reference(plumbing.NewTagReferenceName(name), true)
	if err != nil {
		return ZeroID, vmerrors.New(vmerrors.MissingRef, "resolving tag %q: %w", name, err)
	}

	h := ref.Hash()
	for i := 0; i < maxTagPeelDepth; i++ {
		tagObj, err := s.repo.TagObject(h)
		if err != nil {
			// Not an annotated tag object: h already names a commit
			// (lightweight tag), so peeling is done.
			return h, nil
		}
		switch tagObj.TargetType {
		case plumbing.CommitObject:
			return tagObj.Target, nil
		case plumbing.TagObject:
			h = tagObj.Target
		default:
			return ZeroID, vmerrors.New(vmerrors.MissingRef, "peeling tag %q: target is a %s, not a commit", name, tagObj.TargetType)
		}
	}
	return ZeroID, vmerrors.New(vmerrors.MissingRef, "tag %q: annotated tag chain exceeds %d hops", name, maxTagPeelDepth)
}

func (s *GitStore) ResolveReplace(id ID) (ID, bool, error) {
	refName := plumbing.ReferenceName(fmt.Sprintf("refs/replace/%s", id.String()))
	ref, err := s.repo.Reference(refName, true)
	if err != nil {
		return ZeroID, false, nil
	}
	return ref.Hash(), true, nil
}
