package engine

import (
	"fmt"
	"io"
	"strings"

	"github.com/aledsdavies/commitvm/internal/lang"
	"github.com/aledsdavies/commitvm/internal/value"
	"github.com/aledsdavies/commitvm/internal/vmerrors"
)

// opcodeName returns the source-level opcode name for an instruction, used
// for telemetry and debug-event labels. Branch is handled entirely
// by the cursor loop and never reaches exec.
func opcodeName(instr lang.Instruction) string {
	switch instr.(type) {
	case lang.Nop:
		return "nop"
	case lang.Set:
		return "set"
	case lang.GetInstr:
		return "get"
	case lang.Del:
		return "del"
	case lang.Exists:
		return "exists"
	case lang.Enter:
		return "enter"
	case lang.Exit:
		return "exit"
	case lang.Match:
		return "match"
	case lang.Print:
		return "print"
	case lang.Println:
		return "println"
	case lang.Inpln:
		return "inpln"
	case lang.Concat:
		return "concat"
	case lang.Chars:
		return "chars"
	case lang.Eq:
		return "eq"
	case lang.Arith:
		return "arith"
	default:
		return "unknown"
	}
}

func (e *Engine) exec(instr lang.Instruction) error {
	switch i := instr.(type) {
	case lang.Nop:
		return nil
	case lang.Set:
		return e.execSet(i)
	case lang.GetInstr:
		return e.execGet(i)
	case lang.Del:
		return e.execDel(i)
	case lang.Exists:
		return e.execExists(i)
	case lang.Enter:
		return e.execEnter(i)
	case lang.Exit:
		e.scope.Exit()
		return nil
	case lang.Match:
		return e.execMatch(i)
	case lang.Print:
		return e.execPrint(i.X, false)
	case lang.Println:
		return e.execPrint(i.X, true)
	case lang.Inpln:
		return e.execInpln(i)
	case lang.Concat:
		return e.execConcat(i)
	case lang.Chars:
		return e.execChars(i)
	case lang.Eq:
		return e.execEq(i)
	case lang.Arith:
		return e.execArith(i)
	default:
		return vmerrors.New(vmerrors.ParseError, "unhandled instruction %T", instr)
	}
}

func (e *Engine) execSet(i lang.Set) error {
	path, err := i.V.EvalPath(e.scope)
	if err != nil {
		return err
	}
	val, err := i.S.Eval(e.scope)
	if err != nil {
		return err
	}
	return e.scope.Set(path, val)
}

func (e *Engine) execGet(i lang.GetInstr) error {
	path, err := i.V.EvalPath(e.scope)
	if err != nil {
		return err
	}
	nameVal, err := i.S.Eval(e.scope)
	if err != nil {
		return err
	}
	// §4.6/§9: resolve S to a string, then re-parse that string as a
	// variable path. A Table operand renders as "<table>" and will simply
	// fail to resolve as a path — preserved as observed, not special-cased.
	resolved, err := e.scope.Resolve(value.Render(nameVal))
	if err != nil {
		return err
	}
	return e.scope.Set(path, resolved)
}

func (e *Engine) execDel(i lang.Del) error {
	path, err := i.V.EvalPath(e.scope)
	if err != nil {
		return err
	}
	return e.scope.Delete(path)
}

func (e *Engine) execExists(i lang.Exists) error {
	path, err := i.V.EvalPath(e.scope)
	if err != nil {
		return err
	}
	sv, err := i.S.Eval(e.scope)
	if err != nil {
		return err
	}
	exists := e.scope.Exists(value.Render(sv))
	result := value.Int(0)
	if exists {
		result = value.Int(1)
	}
	return e.scope.Set(path, result)
}

func (e *Engine) execEnter(i lang.Enter) error {
	path, err := i.Path.EvalPath(e.scope)
	if err != nil {
		return err
	}
	return e.scope.Enter(path)
}

func (e *Engine) execMatch(i lang.Match) error {
	path, err := i.V.EvalPath(e.scope)
	if err != nil {
		return err
	}
	sv, err := i.S.Eval(e.scope)
	if err != nil {
		return err
	}
	for _, arm := range i.Arms {
		av, err := arm.Value.Eval(e.scope)
		if err != nil {
			return err
		}
		if value.Equal(sv, av) {
			bv, err := arm.Branch.Eval(e.scope)
			if err != nil {
				return err
			}
			return e.scope.Set(path, bv)
		}
	}
	// No arm matched: V is intentionally left unwritten (see SPEC_FULL.md §9).
	return nil
}

func (e *Engine) execPrint(x lang.Get, newline bool) error {
	v, err := x.Eval(e.scope)
	if err != nil {
		return err
	}
	text := value.Render(v)
	if newline {
		text += "\n"
	}
	if _, err := fmt.Fprint(e.stdout, text); err != nil {
		return vmerrors.New(vmerrors.IoError, "writing stdout: %w", err)
	}
	if f, ok := e.stdout.(interface{ Flush() error }); ok {
		if err := f.Flush(); err != nil {
			return vmerrors.New(vmerrors.IoError, "flushing stdout: %w", err)
		}
	}
	return nil
}

func (e *Engine) execInpln(i lang.Inpln) error {
	path, err := i.V.EvalPath(e.scope)
	if err != nil {
		return err
	}
	line, err := e.stdin.ReadString('\n')
	if err != nil && err != io.EOF {
		return vmerrors.New(vmerrors.IoError, "reading stdin: %w", err)
	}
	if err == io.EOF && line != "" {
		// The stream ended mid-line, with no trailing newline: a genuine
		// EOF on a clean line boundary (line == "") is not an error.
		return vmerrors.New(vmerrors.IoError, "unexpected EOF mid-line")
	}
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	return e.scope.Set(path, value.NewStr(line))
}

func (e *Engine) execConcat(i lang.Concat) error {
	path, err := i.V.EvalPath(e.scope)
	if err != nil {
		return err
	}
	av, err := i.A.Eval(e.scope)
	if err != nil {
		return err
	}
	bv, err := i.B.Eval(e.scope)
	if err != nil {
		return err
	}
	return e.scope.Set(path, value.NewStr(value.Render(av)+value.Render(bv)))
}

func (e *Engine) execChars(i lang.Chars) error {
	path, err := i.V.EvalPath(e.scope)
	if err != nil {
		return err
	}
	sv, err := i.S.Eval(e.scope)
	if err != nil {
		return err
	}
	runes := []rune(value.Render(sv))
	table := value.NewTable()
	for idx, r := range runes {
		table.Set(fmt.Sprintf("%d", idx), value.NewStr(string(r)))
	}
	table.Set("len", value.Int(len(runes)))
	return e.scope.Set(path, table)
}

func (e *Engine) execEq(i lang.Eq) error {
	path, err := i.V.EvalPath(e.scope)
	if err != nil {
		return err
	}
	av, err := i.A.Eval(e.scope)
	if err != nil {
		return err
	}
	bv, err := i.B.Eval(e.scope)
	if err != nil {
		return err
	}
	result := value.Int(0)
	if value.Equal(av, bv) {
		result = value.Int(1)
	}
	return e.scope.Set(path, result)
}

func asInt(v value.Value) (int64, error) {
	i, ok := v.(value.Int)
	if !ok {
		return 0, vmerrors.New(vmerrors.TypeMismatch, "expected Int, got %T", v)
	}
	return int64(i), nil
}

func (e *Engine) execArith(i lang.Arith) error {
	path, err := i.V.EvalPath(e.scope)
	if err != nil {
		return err
	}
	av, err := i.A.Eval(e.scope)
	if err != nil {
		return err
	}
	bv, err := i.B.Eval(e.scope)
	if err != nil {
		return err
	}
	a, err := asInt(av)
	if err != nil {
		return err
	}
	b, err := asInt(bv)
	if err != nil {
		return err
	}

	var result int64
	switch i.Op {
	case lang.ArithGt:
		if a > b {
			result = 1
		}
	case lang.ArithAdd:
		result = a + b
	case lang.ArithSub:
		result = a - b
	case lang.ArithMul:
		result = a * b
	case lang.ArithDiv:
		if b == 0 {
			return vmerrors.New(vmerrors.ArithmeticError, "division by zero")
		}
		result = a / b
	case lang.ArithMod:
		if b == 0 {
			return vmerrors.New(vmerrors.ArithmeticError, "modulo by zero")
		}
		result = a % b
	case lang.ArithAnd:
		result = a & b
	case lang.ArithOr:
		result = a | b
	case lang.ArithXor:
		result = a ^ b
	}
	return e.scope.Set(path, value.Int(result))
}
