package engine_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aledsdavies/commitvm/internal/engine"
	"github.com/aledsdavies/commitvm/internal/storetest"
	"github.com/aledsdavies/commitvm/internal/vmerrors"
)

// fixedRNG always returns its n, making "random" successor selection
// deterministic for tests that need it.
type fixedRNG struct{ n int }

func (f fixedRNG) Intn(int) int { return f.n }

func TestRunLinearHelloWorld(t *testing.T) {
	b := storetest.NewBuilder()
	b.Commit("start", "set x \"hello\"")
	b.Commit("print", "println $x", "start")
	b.Commit("end", "nop", "print")
	b.Tag("start", "start")
	b.Tag("end", "end")

	var out bytes.Buffer
	eng := engine.New(b.Store(), engine.Config{Stdout: &out})
	res, err := eng.Run(context.Background(), "start", "end")
	require.NoError(t, err)
	assert.Equal(t, "hello\n", out.String())
	assert.Equal(t, 3, res.Telemetry.StepsRun)
}

func TestRunArithmetic(t *testing.T) {
	b := storetest.NewBuilder()
	b.Commit("start", "set a #4")
	b.Commit("setb", "set b #5", "start")
	b.Commit("sum", "add c $a $b", "setb")
	b.Commit("end", "println $c", "sum")
	b.Tag("start", "start")
	b.Tag("end", "end")

	var out bytes.Buffer
	eng := engine.New(b.Store(), engine.Config{Stdout: &out})
	_, err := eng.Run(context.Background(), "start", "end")
	require.NoError(t, err)
	assert.Equal(t, "9\n", out.String())
}

func TestRunScopedWrite(t *testing.T) {
	b := storetest.NewBuilder()
	b.Commit("start", "enter ns")
	b.Commit("write", "set leaf \"value\"", "start")
	b.Commit("end", "exit", "write")
	b.Tag("start", "start")
	b.Tag("end", "end")

	eng := engine.New(b.Store(), engine.Config{})
	res, err := eng.Run(context.Background(), "start", "end")
	require.NoError(t, err)

	nsVal, ok := res.Scope.Root().Get("ns")
	require.True(t, ok)
	assert.Equal(t, 0, res.Scope.Depth())
	_ = nsVal
}

func TestRunDiamondBranchingIsDeterministicWithFixedRNG(t *testing.T) {
	b := storetest.NewBuilder()
	b.Commit("start", "nop")
	left := b.Commit("left", "set path \"left\"", "start")
	right := b.Commit("right", "set path \"right\"", "start")
	_ = left
	_ = right
	b.Commit("join", "nop", "left", "right")
	b.Tag("start", "start")
	b.Tag("end", "join")

	eng := engine.New(b.Store(), engine.Config{RNG: fixedRNG{n: 0}})
	_, err := eng.Run(context.Background(), "start", "end")
	require.NoError(t, err)
}

func TestRunMatchSelectsBranchValue(t *testing.T) {
	b := storetest.NewBuilder()
	b.Commit("start", "set code #2")
	b.Commit("dispatch", "match target $code #1 left #2 right", "start")
	b.Commit("left", "set path \"left\"", "dispatch")
	b.Commit("right", "set path \"right\"", "dispatch")
	b.Commit("end", "nop", "left", "right")
	b.Tag("start", "start")
	b.Tag("end", "end")

	eng := engine.New(b.Store(), engine.Config{})
	res, err := eng.Run(context.Background(), "start", "end")
	require.NoError(t, err)

	v, err := res.Scope.Resolve("target")
	require.NoError(t, err)
	assert.Equal(t, "right", v.String())
}

func TestRunReplacementIsTransparentToExecution(t *testing.T) {
	b := storetest.NewBuilder()
	b.Commit("start", "nop")
	b.Commit("buggy", "set x \"wrong\"", "start")
	b.Commit("fixed", "set x \"right\"", "start")
	b.Commit("end", "println $x", "buggy")
	b.Replace("buggy", "fixed")
	b.Tag("start", "start")
	b.Tag("end", "end")

	var out bytes.Buffer
	eng := engine.New(b.Store(), engine.Config{Stdout: &out})
	_, err := eng.Run(context.Background(), "start", "end")
	require.NoError(t, err)
	assert.Equal(t, "right\n", out.String())
}

func TestRunRespectsConfiguredMaxRedirectHops(t *testing.T) {
	b := storetest.NewBuilder()
	b.Commit("start", "nop")
	b.Commit("buggy", "set x \"wrong\"", "start")
	b.Commit("fixedOnce", "set x \"closer\"", "start")
	b.Commit("fixedTwice", "set x \"right\"", "start")
	b.Commit("end", "println $x", "buggy")
	b.Replace("buggy", "fixedOnce")
	b.Replace("fixedOnce", "fixedTwice")
	b.Tag("start", "start")
	b.Tag("end", "end")

	eng := engine.New(b.Store(), engine.Config{MaxRedirectHops: 1})
	_, err := eng.Run(context.Background(), "start", "end")
	require.Error(t, err)
	assert.True(t, vmerrors.Is(err, vmerrors.RedirectLoop))
}

func TestRunNoSuccessorRaisesError(t *testing.T) {
	b := storetest.NewBuilder()
	b.Commit("start", "nop")
	b.Commit("deadend", "nop", "start")
	b.Commit("end", "nop", "start")
	b.Tag("start", "deadend")
	b.Tag("end", "end")

	eng := engine.New(b.Store(), engine.Config{})
	_, err := eng.Run(context.Background(), "start", "end")
	require.Error(t, err)
	assert.True(t, vmerrors.Is(err, vmerrors.NoSuccessor))
}

func TestRunDivisionByZeroRaisesArithmeticError(t *testing.T) {
	b := storetest.NewBuilder()
	b.Commit("start", "set a #1")
	b.Commit("setz", "set z #0", "start")
	b.Commit("end", "div r $a $z", "setz")
	b.Tag("start", "start")
	b.Tag("end", "end")

	eng := engine.New(b.Store(), engine.Config{})
	_, err := eng.Run(context.Background(), "start", "end")
	require.Error(t, err)
	assert.True(t, vmerrors.Is(err, vmerrors.ArithmeticError))
}

func TestRunInplnReadsLine(t *testing.T) {
	b := storetest.NewBuilder()
	b.Commit("start", "inpln x")
	b.Commit("end", "println $x", "start")
	b.Tag("start", "start")
	b.Tag("end", "end")

	var out bytes.Buffer
	eng := engine.New(b.Store(), engine.Config{Stdout: &out, Stdin: strings.NewReader("hello\r\n")})
	_, err := eng.Run(context.Background(), "start", "end")
	require.NoError(t, err)
	assert.Equal(t, "hello\n", out.String())
}

func TestRunInplnCleanEOFSucceedsWithEmptyString(t *testing.T) {
	b := storetest.NewBuilder()
	b.Commit("start", "inpln x")
	b.Commit("end", "println $x", "start")
	b.Tag("start", "start")
	b.Tag("end", "end")

	var out bytes.Buffer
	eng := engine.New(b.Store(), engine.Config{Stdout: &out, Stdin: strings.NewReader("")})
	_, err := eng.Run(context.Background(), "start", "end")
	require.NoError(t, err)
	assert.Equal(t, "\n", out.String())
}

func TestRunInplnMidLineEOFRaisesIoError(t *testing.T) {
	b := storetest.NewBuilder()
	b.Commit("start", "inpln x")
	b.Commit("end", "println $x", "start")
	b.Tag("start", "start")
	b.Tag("end", "end")

	eng := engine.New(b.Store(), engine.Config{Stdin: strings.NewReader("no trailing newline")})
	_, err := eng.Run(context.Background(), "start", "end")
	require.Error(t, err)
	assert.True(t, vmerrors.Is(err, vmerrors.IoError))
}

func TestRunCancelledContextStopsBeforeNextCommit(t *testing.T) {
	b := storetest.NewBuilder()
	b.Commit("start", "nop")
	b.Commit("end", "nop", "start")
	b.Tag("start", "start")
	b.Tag("end", "end")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	eng := engine.New(b.Store(), engine.Config{})
	_, err := eng.Run(ctx, "start", "end")
	require.Error(t, err)
}
