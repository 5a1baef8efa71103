package lang

import "github.com/aledsdavies/commitvm/internal/value"

// Eval resolves a Get operand to a runtime value against the given scope.
func (g Get) Eval(scope *value.Scope) (value.Value, error) {
	if g.Kind == GetLiteral {
		return g.Literal, nil
	}
	return scope.Resolve(g.Path)
}

// EvalPath evaluates a Get used as a target path operand (the "V" slots):
// the get is evaluated to a value and rendered to text, which is then used
// as a path string.
func (g Get) EvalPath(scope *value.Scope) (string, error) {
	v, err := g.Eval(scope)
	if err != nil {
		return "", err
	}
	return value.Render(v), nil
}
