// Package value implements the interpreter's runtime value model: 64-bit
// integers, Unicode strings, and nested tables addressed by slash-separated
// paths.
package value

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Value is the sum type of the three runtime value kinds. It is sealed to
// Int, Str and *Table by the unexported marker method.
type Value interface {
	isValue()
	fmt.Stringer
}

// Int is a 64-bit signed integer value.
type Int int64

func (Int) isValue() {}

func (i Int) String() string { return fmt.Sprintf("%d", int64(i)) }

// Str is a Unicode string value. Construct it with NewStr so the content is
// NFC-normalized; combining-sequence equivalents then compare and concatenate
// identically regardless of how a commit message encoded them.
type Str string

func (Str) isValue() {}

func (s Str) String() string { return string(s) }

// NewStr normalizes s to NFC and wraps it as a Str.
func NewStr(s string) Str {
	return Str(norm.NFC.String(s))
}

// Table is a mapping from string keys to values. It is always held and
// passed by pointer: the scope stack keeps pointers into the root table, and
// mutating a table through one alias must be visible through every alias.
type Table struct {
	fields map[string]Value
}

func (*Table) isValue() {}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{fields: make(map[string]Value)}
}

// String renders a table as the literal token "<table>" per the language's
// render() semantics; it is never intended to be reused as a path.
func (t *Table) String() string { return "<table>" }

// Get returns the value stored at key and whether it was present.
func (t *Table) Get(key string) (Value, bool) {
	v, ok := t.fields[key]
	return v, ok
}

// Set stores val at key, overwriting any previous value.
func (t *Table) Set(key string, val Value) {
	t.fields[key] = val
}

// Delete removes key; it is a no-op if key is absent.
func (t *Table) Delete(key string) {
	delete(t.fields, key)
}

// Keys returns the table's keys in sorted order. Table key ordering is not
// observable to the interpreted language; sorting only makes Go-level
// iteration (tests, equality diffs) deterministic.
func (t *Table) Keys() []string {
	keys := make([]string, 0, len(t.fields))
	for k := range t.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Equal reports whether t and other have structurally identical contents.
func (t *Table) Equal(other *Table) bool {
	if t == other {
		return true
	}
	if len(t.fields) != len(other.fields) {
		return false
	}
	for k, v := range t.fields {
		ov, ok := other.fields[k]
		if !ok {
			return false
		}
		if !Equal(v, ov) {
			return false
		}
	}
	return true
}

// Equal implements the `eq` opcode's value-equality rule: same variant and
// content. Tables compare structurally.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case Int:
		bv, ok := b.(Int)
		return ok && av == bv
	case Str:
		bv, ok := b.(Str)
		return ok && av == bv
	case *Table:
		bv, ok := b.(*Table)
		return ok && av.Equal(bv)
	default:
		return false
	}
}

// Render returns the canonical textual projection of v: Int as decimal, Str
// as itself, Table as the literal "<table>".
func Render(v Value) string {
	if v == nil {
		return ""
	}
	return v.String()
}

// SplitPath splits a slash-separated path into its segments. Empty segments
// (from a leading, trailing, or doubled slash) are dropped, matching the
// shell-token convention that a bare path never intentionally names an empty
// component.
func SplitPath(path string) []string {
	raw := strings.Split(path, "/")
	segs := raw[:0]
	for _, s := range raw {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}
