package value

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderInt(t *testing.T) {
	assert.Equal(t, "7", Render(Int(7)))
	assert.Equal(t, "-3", Render(Int(-3)))
}

func TestRenderStr(t *testing.T) {
	assert.Equal(t, "hello", Render(NewStr("hello")))
}

func TestRenderTable(t *testing.T) {
	assert.Equal(t, "<table>", Render(NewTable()))
}

func TestStrNormalizesToNFC(t *testing.T) {
	// "e" + combining acute accent vs precomposed "é" should compare equal
	// once both pass through NewStr.
	decomposed := NewStr("é")
	precomposed := NewStr("é")
	assert.True(t, Equal(decomposed, precomposed))
}

func TestEqualAcrossVariants(t *testing.T) {
	assert.False(t, Equal(Int(1), NewStr("1")))
	assert.True(t, Equal(Int(1), Int(1)))
	assert.True(t, Equal(NewStr("a"), NewStr("a")))
}

// tableDiffOpts lets cmp.Diff reach into Table's unexported fields map, so
// test failures report which key diverged instead of just "not equal".
var tableDiffOpts = cmp.AllowUnexported(Table{})

func TestTableEqualStructural(t *testing.T) {
	a := NewTable()
	a.Set("x", Int(1))
	b := NewTable()
	b.Set("x", Int(1))
	assert.True(t, a.Equal(b))
	if diff := cmp.Diff(a, b, tableDiffOpts); diff != "" {
		t.Errorf("structurally equal tables differ (-a +b):\n%s", diff)
	}

	b.Set("y", Int(2))
	assert.False(t, a.Equal(b))
	assert.NotEmpty(t, cmp.Diff(a, b, tableDiffOpts))
}

func TestTableEqualNested(t *testing.T) {
	a := NewTable()
	inner := NewTable()
	inner.Set("n", Int(1))
	a.Set("t", inner)

	b := NewTable()
	innerB := NewTable()
	innerB.Set("n", Int(1))
	b.Set("t", innerB)

	require.True(t, a.Equal(b))
	if diff := cmp.Diff(a, b, tableDiffOpts); diff != "" {
		t.Errorf("structurally equal nested tables differ (-a +b):\n%s", diff)
	}

	innerB.Set("n", Int(2))
	assert.False(t, a.Equal(b))
	assert.NotEmpty(t, cmp.Diff(a, b, tableDiffOpts))
}

func TestSplitPathDropsEmptySegments(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, SplitPath("a/b/c"))
	assert.Equal(t, []string{"a", "b"}, SplitPath("/a/b/"))
	assert.Equal(t, []string{"a"}, SplitPath("a"))
	assert.Empty(t, SplitPath(""))
}
