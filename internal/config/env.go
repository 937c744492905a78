package config

import (
	"fmt"
	"strconv"

	"github.com/xyproto/env/v2"
)

// Environment variables that override file settings.
const (
	EnvConfigPath    = "ECMACORE_CONFIG"
	EnvHeapSize      = "ECMACORE_HEAP_SIZE"
	EnvRefLimit      = "ECMACORE_REF_LIMIT"
	EnvTraceLevel    = "ECMACORE_TRACE_LEVEL"
	EnvTraceOutput   = "ECMACORE_TRACE_OUTPUT"
	EnvStressEngines = "ECMACORE_STRESS_ENGINES"
	EnvStressSeed    = "ECMACORE_STRESS_SEED"
)

// ApplyEnv overrides cfg with any ECMACORE_* variables that are set.
// The environment is re-read on every call.
func ApplyEnv(cfg *Config) error {
	env.Load()
	if err := envInt(EnvHeapSize, &cfg.Heap.Size); err != nil {
		return err
	}
	if env.Has(EnvRefLimit) {
		n, err := strconv.ParseInt(env.Str(EnvRefLimit), 0, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvRefLimit, err)
		}
		cfg.Heap.RefLimit = n
	}
	cfg.Trace.Level = env.Str(EnvTraceLevel, cfg.Trace.Level)
	cfg.Trace.Output = env.Str(EnvTraceOutput, cfg.Trace.Output)
	if err := envInt(EnvStressEngines, &cfg.Stress.Engines); err != nil {
		return err
	}
	if env.Has(EnvStressSeed) {
		n, err := strconv.ParseUint(env.Str(EnvStressSeed), 0, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvStressSeed, err)
		}
		cfg.Stress.Seed = n
	}
	return cfg.Validate()
}

func envInt(name string, dst *int) error {
	if !env.Has(name) {
		return nil
	}
	n, err := strconv.Atoi(env.Str(name))
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	*dst = n
	return nil
}

// Resolve loads path, or the file named by ECMACORE_CONFIG when path is
// empty, or the defaults when neither is set. Environment overrides are
// applied last.
func Resolve(path string) (Config, error) {
	if path == "" {
		env.Load()
		path = env.Str(EnvConfigPath)
	}
	cfg := Default()
	if path != "" {
		var err error
		if cfg, err = Load(path); err != nil {
			return Config{}, err
		}
	}
	if err := ApplyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
