// Package config loads ecmacore settings from a TOML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"strings"

	"fortio.org/safecast"
	"github.com/BurntSushi/toml"

	"ecmacore/internal/ecma"
	"ecmacore/internal/jmem"
	"ecmacore/internal/trace"
)

// Config is the full configuration.
type Config struct {
	Heap   HeapConfig   `toml:"heap"`
	Trace  TraceConfig  `toml:"trace"`
	Stress StressConfig `toml:"stress"`
}

// HeapConfig sizes each engine heap.
type HeapConfig struct {
	Size     int    `toml:"size"`
	Base     uint64 `toml:"base"`
	RefLimit int64  `toml:"ref_limit"`
	Codec    string `toml:"codec"`
}

// TraceConfig selects trace output.
type TraceConfig struct {
	Level    string `toml:"level"`
	Mode     string `toml:"mode"`
	Output   string `toml:"output"`
	Format   string `toml:"format"`
	RingSize int    `toml:"ring_size"`
}

// StressConfig drives the stress workload.
type StressConfig struct {
	Engines   int    `toml:"engines"`
	Steps     int    `toml:"steps"`
	Registers int    `toml:"registers"`
	Slots     int    `toml:"slots"`
	Seed      uint64 `toml:"seed"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Heap: HeapConfig{
			Size:     jmem.DefaultSize,
			Base:     uint64(jmem.DefaultBase),
			RefLimit: ecma.DefaultRefLimit,
		},
		Trace: TraceConfig{
			Level:    "off",
			Mode:     "stream",
			Output:   "-",
			Format:   "text",
			RingSize: 4096,
		},
		Stress: StressConfig{
			Engines:   4,
			Steps:     20000,
			Registers: 64,
			Slots:     64,
			Seed:      1,
		},
	}
}

// Load reads path on top of Default. Keys the file sets but the
// configuration does not know are an error.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if meta.IsDefined("heap", "base") && cfg.Heap.Base%jmem.Alignment != 0 {
		return Config{}, fmt.Errorf("%s: heap.base %#x is not %d-byte aligned", path, cfg.Heap.Base, jmem.Alignment)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks ranges.
func (c Config) Validate() error {
	var errs []error
	if c.Heap.Size < 64 {
		errs = append(errs, fmt.Errorf("heap.size %d is below 64 bytes", c.Heap.Size))
	}
	if _, err := safecast.Conv[uint32](c.Heap.Size); err != nil {
		errs = append(errs, fmt.Errorf("heap.size %d: %w", c.Heap.Size, err))
	}
	if _, err := safecast.Conv[uint32](c.Heap.RefLimit); err != nil || c.Heap.RefLimit < 1 {
		errs = append(errs, fmt.Errorf("heap.ref_limit %d must be within [1, 2^32)", c.Heap.RefLimit))
	}
	switch c.Heap.Codec {
	case "", "default", "compressed", "direct":
	default:
		errs = append(errs, fmt.Errorf("heap.codec %q (expected: compressed|direct)", c.Heap.Codec))
	}
	if _, err := trace.ParseLevel(c.Trace.Level); err != nil {
		errs = append(errs, fmt.Errorf("trace.level: %w", err))
	}
	if _, err := trace.ParseMode(c.Trace.Mode); err != nil {
		errs = append(errs, fmt.Errorf("trace.mode: %w", err))
	}
	if _, err := trace.ParseFormat(c.Trace.Format); err != nil {
		errs = append(errs, fmt.Errorf("trace.format: %w", err))
	}
	if c.Stress.Engines < 1 {
		errs = append(errs, fmt.Errorf("stress.engines %d must be positive", c.Stress.Engines))
	}
	if c.Stress.Steps < 0 {
		errs = append(errs, fmt.Errorf("stress.steps %d must not be negative", c.Stress.Steps))
	}
	if c.Stress.Registers < 1 || c.Stress.Slots < 1 {
		errs = append(errs, fmt.Errorf("stress.registers and stress.slots must be positive"))
	}
	return errors.Join(errs...)
}

// ContextOptions converts the heap section for ecma.NewContext.
func (c Config) ContextOptions(tracer trace.Tracer) (ecma.Options, error) {
	limit, err := safecast.Conv[uint32](c.Heap.RefLimit)
	if err != nil {
		return ecma.Options{}, fmt.Errorf("heap.ref_limit: %w", err)
	}
	return ecma.Options{
		HeapBase: jmem.Pointer(c.Heap.Base),
		HeapSize: c.Heap.Size,
		RefLimit: limit,
		Codec:    c.Heap.Codec,
		Tracer:   tracer,
	}, nil
}

// TracerConfig converts the trace section for trace.New.
func (c Config) TracerConfig() (trace.Config, error) {
	level, err := trace.ParseLevel(c.Trace.Level)
	if err != nil {
		return trace.Config{}, err
	}
	mode, err := trace.ParseMode(c.Trace.Mode)
	if err != nil {
		return trace.Config{}, err
	}
	format, err := trace.ParseFormat(c.Trace.Format)
	if err != nil {
		return trace.Config{}, err
	}
	return trace.Config{
		Level:      level,
		Mode:       mode,
		Format:     format,
		OutputPath: c.Trace.Output,
		RingSize:   c.Trace.RingSize,
	}, nil
}
