// Package config loads and validates the optional YAML run configuration:
// seed, redirect hop budget, debug/telemetry levels, trace output path, and
// a minimum-engine-version gate.
package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/aledsdavies/commitvm/internal/engine"
	"github.com/aledsdavies/commitvm/internal/vmerrors"
)

// Version is the engine's own build-time version, compared against a
// config's minEngineVersion.
const Version = "v1.0.0"

//go:embed schema.json
var schemaJSON []byte

var compiledSchema = func() *jsonschema.Schema {
	c := jsonschema.NewCompiler()
	if err := c.AddResource("config.schema.json", bytes.NewReader(schemaJSON)); err != nil {
		panic(fmt.Sprintf("config: invalid embedded schema: %v", err))
	}
	s, err := c.Compile("config.schema.json")
	if err != nil {
		panic(fmt.Sprintf("config: schema does not compile: %v", err))
	}
	return s
}()

// Config is the parsed, validated contents of a run configuration file.
type Config struct {
	Seed             *int64
	MaxRedirectHops  int
	Debug            engine.DebugLevel
	Telemetry        engine.TelemetryLevel
	TraceOut         string
	MinEngineVersion string
}

// raw mirrors the YAML document shape before level strings are parsed into
// their typed enums.
type raw struct {
	Seed             *int64 `yaml:"seed"`
	MaxRedirectHops  *int   `yaml:"maxRedirectHops"`
	Debug            string `yaml:"debug"`
	Telemetry        string `yaml:"telemetry"`
	TraceOut         string `yaml:"traceOut"`
	MinEngineVersion string `yaml:"minEngineVersion"`
}

// Load parses and validates data as a run configuration document. On
// success, MinEngineVersion (if set) has already been checked against
// Version.
func Load(data []byte) (*Config, error) {
	var doc map[string]interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, vmerrors.New(vmerrors.MissingRef, "parsing config: %w", err)
	}
	if doc == nil {
		doc = map[string]interface{}{}
	}

	asJSON, err := json.Marshal(doc)
	if err != nil {
		return nil, vmerrors.New(vmerrors.MissingRef, "re-encoding config for validation: %w", err)
	}
	var instance interface{}
	if err := json.Unmarshal(asJSON, &instance); err != nil {
		return nil, vmerrors.New(vmerrors.MissingRef, "decoding config for validation: %w", err)
	}
	if err := compiledSchema.Validate(instance); err != nil {
		return nil, vmerrors.New(vmerrors.MissingRef, "config failed validation: %w", err)
	}

	var r raw
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, vmerrors.New(vmerrors.MissingRef, "parsing config: %w", err)
	}

	cfg := &Config{
		Seed:             r.Seed,
		MaxRedirectHops:  1000,
		TraceOut:         r.TraceOut,
		MinEngineVersion: r.MinEngineVersion,
	}
	if r.MaxRedirectHops != nil {
		cfg.MaxRedirectHops = *r.MaxRedirectHops
	}

	debugLvl, ok := engine.ParseDebugLevel(r.Debug)
	if !ok {
		return nil, vmerrors.New(vmerrors.MissingRef, "invalid debug level %q", r.Debug)
	}
	cfg.Debug = debugLvl

	telLvl, ok := engine.ParseTelemetryLevel(r.Telemetry)
	if !ok {
		return nil, vmerrors.New(vmerrors.MissingRef, "invalid telemetry level %q", r.Telemetry)
	}
	cfg.Telemetry = telLvl

	if cfg.MinEngineVersion != "" {
		if !semver.IsValid(cfg.MinEngineVersion) {
			return nil, vmerrors.New(vmerrors.MissingRef, "minEngineVersion %q is not a valid semantic version", cfg.MinEngineVersion)
		}
		if semver.Compare(Version, cfg.MinEngineVersion) < 0 {
			return nil, vmerrors.New(vmerrors.MissingRef, "config requires engine %s or newer, running %s", cfg.MinEngineVersion, Version)
		}
	}

	return cfg, nil
}

// ResolveSeed returns the configured seed, or a default derived
// deterministically from startCommitID when none was set.
func (c *Config) ResolveSeed(startCommitID string) int64 {
	if c.Seed != nil {
		return *c.Seed
	}
	sum := blake2b.Sum256([]byte(startCommitID))
	var seed int64
	for i := 0; i < 8; i++ {
		seed = seed<<8 | int64(sum[i])
	}
	return seed
}
