// Package engine drives the cursor loop over a commit graph: it resolves
// start and end tags, builds the forward children index once, then walks
// commits one at a time, dispatching each parsed instruction against a
// shared scope until it reaches the end tag or runs out of successors.
package engine

import (
	"bufio"
	"context"
	"io"
	"time"

	"github.com/aledsdavies/commitvm/internal/graph"
	"github.com/aledsdavies/commitvm/internal/lang"
	"github.com/aledsdavies/commitvm/internal/redirect"
	"github.com/aledsdavies/commitvm/internal/store"
	"github.com/aledsdavies/commitvm/internal/value"
	"github.com/aledsdavies/commitvm/internal/vmerrors"
)

// Config configures one Run. Stdout/Stdin default to nothing useful when
// left nil; callers running a real program supply both. MaxRedirectHops
// defaults to redirect.DefaultMaxHops when zero.
type Config struct {
	RNG             RNG
	Stdout          io.Writer
	Stdin           io.Reader
	DebugFn         func(DebugEvent)
	Telemetry       TelemetryLevel
	MaxRedirectHops int
}

// Result summarizes a completed run.
type Result struct {
	Scope     *value.Scope
	Telemetry Telemetry
}

// Engine holds the mutable state of one run: the backing store, the shared
// scope all instructions read and write, and the run's configuration.
type Engine struct {
	store           store.Store
	scope           *value.Scope
	rng             RNG
	stdout          io.Writer
	stdin           *bufio.Reader
	debug           func(DebugEvent)
	telLvl          TelemetryLevel
	tel             Telemetry
	maxRedirectHops int
}

// New constructs an Engine over s with the given configuration, filling in
// defaults for anything left zero.
func New(s store.Store, cfg Config) *Engine {
	rng := cfg.RNG
	if rng == nil {
		rng = NewSeededRNG(1)
	}
	stdout := cfg.Stdout
	if stdout == nil {
		stdout = io.Discard
	}
	var stdin *bufio.Reader
	if cfg.Stdin != nil {
		stdin = bufio.NewReader(cfg.Stdin)
	} else {
		stdin = bufio.NewReader(io.MultiReader())
	}
	maxRedirectHops := cfg.MaxRedirectHops
	if maxRedirectHops <= 0 {
		maxRedirectHops = redirect.DefaultMaxHops
	}
	return &Engine{
		store:           s,
		scope:           value.NewScope(),
		rng:             rng,
		stdout:          stdout,
		stdin:           stdin,
		debug:           cfg.DebugFn,
		telLvl:          cfg.Telemetry,
		maxRedirectHops: maxRedirectHops,
	}
}

func (e *Engine) emit(event, commit, detail string) {
	if e.debug == nil {
		return
	}
	e.debug(DebugEvent{Timestamp: time.Now(), Event: event, Commit: commit, Detail: detail})
}

// Run resolves startTag and endTag against s, builds the children index from
// the end commit, and walks the graph from the start commit until it
// reaches the canonical end commit or a cursor has no successor.
func (e *Engine) Run(ctx context.Context, startTag, endTag string) (*Result, error) {
	endID, err := e.store.ResolveTag(endTag)
	if err != nil {
		return nil, err
	}
	endCanon, _, err := redirect.Resolve(e.store, endID, e.maxRedirectHops)
	if err != nil {
		return nil, err
	}

	children, err := graph.Build(e.store, endCanon, e.maxRedirectHops)
	if err != nil {
		return nil, err
	}

	startID, err := e.store.ResolveTag(startTag)
	if err != nil {
		return nil, err
	}
	cur, _, err := redirect.Resolve(e.store, startID, e.maxRedirectHops)
	if err != nil {
		return nil, err
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		commit, err := e.store.Commit(cur)
		if err != nil {
			return nil, vmerrors.Wrap(cur.String(), err)
		}

		e.emit("enter_cursor", cur.String(), commit.Message)

		instr, err := lang.Parse(commit.Message)
		if err != nil {
			return nil, vmerrors.Wrap(cur.String(), err)
		}

		if br, ok := instr.(lang.Branch); ok {
			tagVal, err := br.Tag.Eval(e.scope)
			if err != nil {
				return nil, vmerrors.Wrap(cur.String(), err)
			}
			tagName := value.Render(tagVal)
			e.emit("branch", cur.String(), tagName)
			target, err := graph.FindTag(e.store, tagName, children[cur], e.maxRedirectHops)
			if err != nil {
				return nil, vmerrors.Wrap(cur.String(), err)
			}
			cur = target
			continue
		}

		if err := e.execTimed(cur.String(), opcodeName(instr), instr); err != nil {
			return nil, vmerrors.Wrap(cur.String(), err)
		}

		if cur == endCanon {
			e.emit("halt", cur.String(), "")
			break
		}

		next, ok, err := e.successor(children[cur])
		if err != nil {
			return nil, vmerrors.Wrap(cur.String(), err)
		}
		if !ok {
			return nil, vmerrors.At(cur.String(), vmerrors.NoSuccessor, "commit %s has no successor and is not the end commit", cur)
		}
		cur = next
	}

	return &Result{Scope: e.scope, Telemetry: e.tel}, nil
}

// successor picks the next cursor from cur's forward children, resolving
// redirection on the chosen child. With more than one child, selection is
// uniformly random via the engine's injected RNG.
func (e *Engine) successor(kids []store.ID) (store.ID, bool, error) {
	if len(kids) == 0 {
		return store.ZeroID, false, nil
	}
	choice := kids[0]
	if len(kids) > 1 {
		choice = kids[e.rng.Intn(len(kids))]
	}
	canon, _, err := redirect.Resolve(e.store, choice, e.maxRedirectHops)
	if err != nil {
		return store.ZeroID, false, err
	}
	return canon, true, nil
}

func (e *Engine) execTimed(commit, op string, instr lang.Instruction) error {
	e.tel.StepCount++
	start := time.Now()
	err := e.exec(instr)
	elapsed := time.Since(start)
	if err != nil {
		e.tel.FailedStep = op
		return err
	}
	e.tel.StepsRun++
	if e.telLvl == TelemetryTiming {
		e.tel.StepTimings = append(e.tel.StepTimings, StepTiming{Commit: commit, Opcode: op, Duration: elapsed})
	}
	e.emit("exec", commit, op)
	return nil
}
