package lang

import (
	"strconv"
	"strings"

	"github.com/aledsdavies/commitvm/internal/suggest"
	"github.com/aledsdavies/commitvm/internal/value"
	"github.com/aledsdavies/commitvm/internal/vmerrors"
)

// Parse converts a single commit message into an Instruction. An empty or
// whitespace-only message parses as Nop. An unrecognized opcode or wrong
// arity raises a *lang.ParseError wrapped in a ParseError-kind *vmerrors.VMError.
func Parse(message string) (Instruction, error) {
	tokens, err := Tokenize(message)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return Nop{}, nil
	}

	op := tokens[0]
	args := tokens[1:]

	switch op.Text {
	case "nop":
		return expectArity(op, args, 0, func([]Token) (Instruction, error) { return Nop{}, nil })
	case "set":
		return expectArity(op, args, 2, func(a []Token) (Instruction, error) {
			return buildGet2(a, func(v, s Get) Instruction { return Set{V: v, S: s} })
		})
	case "get":
		return expectArity(op, args, 2, func(a []Token) (Instruction, error) {
			return buildGet2(a, func(v, s Get) Instruction { return GetInstr{V: v, S: s} })
		})
	case "del":
		return expectArity(op, args, 1, func(a []Token) (Instruction, error) {
			v, err := parseGet(a[0])
			if err != nil {
				return nil, err
			}
			return Del{V: v}, nil
		})
	case "exists":
		return expectArity(op, args, 2, func(a []Token) (Instruction, error) {
			return buildGet2(a, func(v, s Get) Instruction { return Exists{V: v, S: s} })
		})
	case "branch":
		return expectArity(op, args, 1, func(a []Token) (Instruction, error) {
			tag, err := parseGet(a[0])
			if err != nil {
				return nil, err
			}
			return Branch{Tag: tag}, nil
		})
	case "enter":
		return expectArity(op, args, 1, func(a []Token) (Instruction, error) {
			p, err := parseGet(a[0])
			if err != nil {
				return nil, err
			}
			return Enter{Path: p}, nil
		})
	case "exit":
		return expectArity(op, args, 0, func([]Token) (Instruction, error) { return Exit{}, nil })
	case "match":
		return parseMatch(op, args)
	case "print":
		return expectArity(op, args, 1, func(a []Token) (Instruction, error) {
			x, err := parseGet(a[0])
			if err != nil {
				return nil, err
			}
			return Print{X: x}, nil
		})
	case "println":
		return expectArity(op, args, 1, func(a []Token) (Instruction, error) {
			x, err := parseGet(a[0])
			if err != nil {
				return nil, err
			}
			return Println{X: x}, nil
		})
	case "inpln":
		return expectArity(op, args, 1, func(a []Token) (Instruction, error) {
			v, err := parseGet(a[0])
			if err != nil {
				return nil, err
			}
			return Inpln{V: v}, nil
		})
	case "concat":
		return expectArity(op, args, 3, func(a []Token) (Instruction, error) {
			return buildGet3(a, func(v, x, y Get) Instruction { return Concat{V: v, A: x, B: y} })
		})
	case "chars":
		return expectArity(op, args, 2, func(a []Token) (Instruction, error) {
			return buildGet2(a, func(v, s Get) Instruction { return Chars{V: v, S: s} })
		})
	case "eq":
		return expectArity(op, args, 3, func(a []Token) (Instruction, error) {
			return buildGet3(a, func(v, x, y Get) Instruction { return Eq{V: v, A: x, B: y} })
		})
	default:
		if arithOp, ok := arithOps[op.Text]; ok {
			return expectArity(op, args, 3, func(a []Token) (Instruction, error) {
				return buildGet3(a, func(v, x, y Get) Instruction { return Arith{Op: arithOp, V: v, A: x, B: y} })
			})
		}
		return nil, unknownOpcode(op)
	}
}

// buildGet2 parses a[0] and a[1] as Get operands and applies build, failing
// fast on the first parse error.
func buildGet2(a []Token, build func(v, s Get) Instruction) (Instruction, error) {
	v, err := parseGet(a[0])
	if err != nil {
		return nil, err
	}
	s, err := parseGet(a[1])
	if err != nil {
		return nil, err
	}
	return build(v, s), nil
}

// buildGet3 parses a[0], a[1] and a[2] as Get operands and applies build,
// failing fast on the first parse error.
func buildGet3(a []Token, build func(v, x, y Get) Instruction) (Instruction, error) {
	v, err := parseGet(a[0])
	if err != nil {
		return nil, err
	}
	x, err := parseGet(a[1])
	if err != nil {
		return nil, err
	}
	y, err := parseGet(a[2])
	if err != nil {
		return nil, err
	}
	return build(v, x, y), nil
}

func unknownOpcode(op Token) error {
	pe := &ParseError{
		Message:  op.Text,
		Offset:   op.Offset,
		Got:      op.Text,
		Expected: "a known opcode",
	}
	pe.Suggestion = suggest.Opcode(op.Text, OpcodeNames)
	return vmerrors.New(vmerrors.ParseError, "%w", pe)
}

func expectArity(op Token, args []Token, n int, build func([]Token) (Instruction, error)) (Instruction, error) {
	if len(args) != n {
		pe := &ParseError{
			Message:  op.Text,
			Offset:   op.Offset,
			Got:      strconv.Itoa(len(args)),
			Expected: strconv.Itoa(n) + " operand(s)",
		}
		return nil, vmerrors.New(vmerrors.ParseError, "%q: %w", op.Text, pe)
	}
	return build(args)
}

func parseMatch(op Token, args []Token) (Instruction, error) {
	// match V S v1 b1 v2 b2 ...  => arity is 2 + 2k for some k >= 0, and even.
	if len(args) < 2 || (len(args)-2)%2 != 0 {
		pe := &ParseError{
			Message:  op.Text,
			Offset:   op.Offset,
			Got:      strconv.Itoa(len(args)),
			Expected: "V S followed by value/branch pairs",
		}
		return nil, vmerrors.New(vmerrors.ParseError, "%q: %w", op.Text, pe)
	}

	v, err := parseGet(args[0])
	if err != nil {
		return nil, err
	}
	s, err := parseGet(args[1])
	if err != nil {
		return nil, err
	}
	m := Match{V: v, S: s}
	for i := 2; i < len(args); i += 2 {
		val, err := parseGet(args[i])
		if err != nil {
			return nil, err
		}
		br, err := parseGet(args[i+1])
		if err != nil {
			return nil, err
		}
		m.Arms = append(m.Arms, MatchArm{Value: val, Branch: br})
	}
	return m, nil
}

// parseGet classifies a single token as a variable reference ($path), an
// integer literal (#123), or a bare string literal (anything else). A `#`
// prefix commits to an integer literal: a remainder that fails to parse as
// an int64 is a hard parse error, not a silent fallback to a string.
func parseGet(tok Token) (Get, error) {
	switch {
	case strings.HasPrefix(tok.Text, "$"):
		return Get{Kind: GetVar, Path: tok.Text[1:]}, nil
	case strings.HasPrefix(tok.Text, "#"):
		n, err := strconv.ParseInt(tok.Text[1:], 10, 64)
		if err != nil {
			pe := &ParseError{
				Message:  tok.Text,
				Offset:   tok.Offset,
				Got:      tok.Text,
				Expected: "an integer literal",
			}
			return Get{}, vmerrors.New(vmerrors.ParseError, "%s", pe.Error())
		}
		return Get{Kind: GetLiteral, Literal: value.Int(n)}, nil
	default:
		return Get{Kind: GetLiteral, Literal: value.NewStr(tok.Text)}, nil
	}
}
