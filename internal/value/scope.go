package value

import (
	"github.com/aledsdavies/commitvm/internal/vmerrors"
)

// Scope owns the root table and the stack of nested tables that name
// resolution is currently relative to. The current scope is the top of the
// stack, or the root when the stack is empty.
type Scope struct {
	root  *Table
	stack []*Table
}

// NewScope returns a Scope with a fresh, empty root table.
func NewScope() *Scope {
	return &Scope{root: NewTable()}
}

// Root returns the root table, regardless of current scope depth.
func (s *Scope) Root() *Table { return s.root }

// Current returns the table that paths are currently resolved against.
func (s *Scope) Current() *Table {
	if len(s.stack) == 0 {
		return s.root
	}
	return s.stack[len(s.stack)-1]
}

// Depth returns the number of entered scopes.
func (s *Scope) Depth() int { return len(s.stack) }

// Resolve walks path from the current scope and returns the value at its
// final segment. An empty path resolves to the current scope table itself.
func (s *Scope) Resolve(path string) (Value, error) {
	segs := SplitPath(path)
	if len(segs) == 0 {
		return s.Current(), nil
	}
	t := s.Current()
	for _, seg := range segs[:len(segs)-1] {
		next, ok := t.Get(seg)
		if !ok {
			return nil, vmerrors.New(vmerrors.UndefinedSymbol, "undefined symbol %q", path)
		}
		nt, ok := next.(*Table)
		if !ok {
			return nil, vmerrors.New(vmerrors.NotATable, "%q is not a table", seg)
		}
		t = nt
	}
	last := segs[len(segs)-1]
	v, ok := t.Get(last)
	if !ok {
		return nil, vmerrors.New(vmerrors.UndefinedSymbol, "undefined symbol %q", path)
	}
	return v, nil
}

// Exists reports whether path resolves to a value from the current scope.
func (s *Scope) Exists(path string) bool {
	_, err := s.Resolve(path)
	return err == nil
}

// walkInterior walks path's interior segments from the current scope,
// auto-creating missing interior tables, and returns the table that owns the
// final segment plus that final segment's name.
func (s *Scope) walkInterior(path string) (*Table, string, error) {
	segs := SplitPath(path)
	if len(segs) == 0 {
		return nil, "", vmerrors.New(vmerrors.UndefinedSymbol, "empty path")
	}
	t := s.Current()
	for _, seg := range segs[:len(segs)-1] {
		next, ok := t.Get(seg)
		if !ok {
			nt := NewTable()
			t.Set(seg, nt)
			t = nt
			continue
		}
		nt, ok := next.(*Table)
		if !ok {
			return nil, "", vmerrors.New(vmerrors.NotATable, "%q is not a table", seg)
		}
		t = nt
	}
	return t, segs[len(segs)-1], nil
}

// Set writes val at path, auto-creating missing interior tables.
func (s *Scope) Set(path string, val Value) error {
	owner, key, err := s.walkInterior(path)
	if err != nil {
		return err
	}
	owner.Set(key, val)
	return nil
}

// Delete removes the value at path. Interior tables are auto-created along
// the way (matching the source interpreter's observed, if surprising,
// behavior — see SPEC_FULL.md §9); a missing tail key is silently ignored.
func (s *Scope) Delete(path string) error {
	owner, key, err := s.walkInterior(path)
	if err != nil {
		return err
	}
	owner.Delete(key)
	return nil
}

// Enter pushes one scope per path segment onto the stack, auto-creating
// missing intermediate tables. A non-Table segment raises NotATable, leaving
// the stack unchanged for the segments that weren't pushed.
func (s *Scope) Enter(path string) error {
	segs := SplitPath(path)
	for _, seg := range segs {
		t := s.Current()
		next, ok := t.Get(seg)
		if !ok {
			nt := NewTable()
			t.Set(seg, nt)
			s.stack = append(s.stack, nt)
			continue
		}
		nt, ok := next.(*Table)
		if !ok {
			return vmerrors.New(vmerrors.NotATable, "%q is not a table", seg)
		}
		s.stack = append(s.stack, nt)
	}
	return nil
}

// Exit pops one scope. It is a no-op when the stack is already empty.
func (s *Scope) Exit() {
	if len(s.stack) == 0 {
		return
	}
	s.stack = s.stack[:len(s.stack)-1]
}
