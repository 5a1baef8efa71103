// Package storetest builds small, synthetic in-memory git repositories for
// exercising internal/store, internal/redirect, internal/graph and
// internal/engine without touching disk.
package storetest

import (
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/memory"

	"github.com/aledsdavies/commitvm/internal/store"
)

// Builder accumulates commits, tags and replacement refs under short local
// names and assembles them into a real (in-memory) git repository.
type Builder struct {
	storer    *memory.Storage
	repo      *git.Repository
	emptyTree plumbing.Hash
	commits   map[string]plumbing.Hash
}

// NewBuilder returns an empty builder backed by a fresh in-memory repo.
func NewBuilder() *Builder {
	storer := memory.NewStorage()
	repo, err := git.Init(storer, nil)
	if err != nil {
		panic(err)
	}

	b := &Builder{storer: storer, repo: repo, commits: make(map[string]plumbing.Hash)}

	tree := &object.Tree{}
	obj := storer.NewEncodedObject()
	obj.SetType(plumbing.TreeObject)
	if err := tree.Encode(obj); err != nil {
		panic(err)
	}
	h, err := storer.SetEncodedObject(obj)
	if err != nil {
		panic(err)
	}
	b.emptyTree = h
	return b
}

// Commit creates a commit with the given message and registers it under
// name; parents name previously-registered commits. Every synthetic commit
// shares the same empty tree — message content is the only data that
// matters to the interpreter.
func (b *Builder) Commit(name, message string, parents ...string) plumbing.Hash {
	var parentHashes []plumbing.Hash
	for _, p := range parents {
		parentHashes = append(parentHashes, b.Hash(p))
	}

	when := time.Unix(0, 0).UTC()
	c := &object.Commit{
		Author:       object.Signature{Name: "test", Email: "test@example.com", When: when},
		Committer:    object.Signature{Name: "test", Email: "test@example.com", When: when},
		Message:      message,
		TreeHash:     b.emptyTree,
		ParentHashes: parentHashes,
	}

	obj := b.storer.NewEncodedObject()
	obj.SetType(plumbing.CommitObject)
	if err := c.Encode(obj); err != nil {
		panic(err)
	}
	h, err := b.storer.SetEncodedObject(obj)
	if err != nil {
		panic(err)
	}
	b.commits[name] = h
	return h
}

// Hash returns the real hash registered under a builder-local commit name.
func (b *Builder) Hash(name string) plumbing.Hash {
	h, ok := b.commits[name]
	if !ok {
		panic("storetest: unknown commit " + name)
	}
	return h
}

// Tag points refs/tags/<tagName> directly at commitName (a lightweight tag).
func (b *Builder) Tag(tagName, commitName string) {
	ref := plumbing.NewHashReference(plumbing.NewTagReferenceName(tagName), b.Hash(commitName))
	if err := b.storer.SetReference(ref); err != nil {
		panic(err)
	}
}

// AnnotatedTag creates a tag object pointing at commitName and points
// refs/tags/<tagName> at the tag object, exercising tag-peeling.
func (b *Builder) AnnotatedTag(tagName, commitName string) {
	tag := &object.Tag{
		Name:       tagName,
		Tagger:     object.Signature{Name: "test", Email: "test@example.com", When: time.Unix(0, 0).UTC()},
		Message:    "tag " + tagName,
		TargetType: plumbing.CommitObject,
		Target:     b.Hash(commitName),
	}
	obj := b.storer.NewEncodedObject()
	obj.SetType(plumbing.TagObject)
	if err := tag.Encode(obj); err != nil {
		panic(err)
	}
	h, err := b.storer.SetEncodedObject(obj)
	if err != nil {
		panic(err)
	}
	ref := plumbing.NewHashReference(plumbing.NewTagReferenceName(tagName), h)
	if err := b.storer.SetReference(ref); err != nil {
		panic(err)
	}
}

// Replace points refs/replace/<fromName> at toName.
func (b *Builder) Replace(fromName, toName string) {
	refName := plumbing.ReferenceName("refs/replace/" + b.Hash(fromName).String())
	ref := plumbing.NewHashReference(refName, b.Hash(toName))
	if err := b.storer.SetReference(ref); err != nil {
		panic(err)
	}
}

// Store returns a store.Store view of the assembled repository.
func (b *Builder) Store() store.Store {
	return store.FromRepository(b.repo)
}
