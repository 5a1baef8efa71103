package lang

// OpcodeNames lists every recognized opcode. Parse dispatches on the opcode
// with its own switch; this list is the candidate set internal/suggest
// fuzzy-matches a typo against.
var OpcodeNames = []string{
	"nop", "set", "get", "del", "exists", "branch", "enter", "exit", "match",
	"print", "println", "inpln", "concat", "chars", "eq",
	"gt", "add", "sub", "mul", "div", "mod", "and", "or", "xor",
}

func isKnownOpcode(name string) bool {
	for _, n := range OpcodeNames {
		if n == name {
			return true
		}
	}
	return false
}

var arithOps = map[string]ArithOp{
	"gt":  ArithGt,
	"add": ArithAdd,
	"sub": ArithSub,
	"mul": ArithMul,
	"div": ArithDiv,
	"mod": ArithMod,
	"and": ArithAnd,
	"or":  ArithOr,
	"xor": ArithXor,
}
