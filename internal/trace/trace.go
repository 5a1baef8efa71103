// Package trace persists an engine run's accumulated debug events and step
// timings as a single CBOR document, for offline inspection of a run
// without re-executing it.
package trace

import (
	"os"

	"github.com/fxamacker/cbor/v2"

	"github.com/aledsdavies/commitvm/internal/engine"
	"github.com/aledsdavies/commitvm/internal/vmerrors"
)

// Trace is the on-disk shape written to --trace-out.
type Trace struct {
	Events    []engine.DebugEvent
	Telemetry engine.Telemetry
}

// Write CBOR-encodes t and writes it to path.
func Write(path string, t Trace) error {
	data, err := cbor.Marshal(t)
	if err != nil {
		return vmerrors.New(vmerrors.IoError, "encoding trace: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return vmerrors.New(vmerrors.IoError, "writing trace file %s: %w", path, err)
	}
	return nil
}

// Read loads and decodes a trace file previously written by Write.
func Read(path string) (Trace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Trace{}, vmerrors.New(vmerrors.IoError, "reading trace file %s: %w", path, err)
	}
	var t Trace
	if err := cbor.Unmarshal(data, &t); err != nil {
		return Trace{}, vmerrors.New(vmerrors.IoError, "decoding trace file %s: %w", path, err)
	}
	return t, nil
}

// Collector accumulates debug events as an engine.Config.DebugFn callback.
type Collector struct {
	events []engine.DebugEvent
}

func (c *Collector) Observe(ev engine.DebugEvent) {
	c.events = append(c.events, ev)
}

func (c *Collector) Events() []engine.DebugEvent {
	return c.events
}
