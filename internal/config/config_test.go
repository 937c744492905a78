package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ecmacore/internal/jmem"
	"ecmacore/internal/trace"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ecmacore.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[heap]
size = 65536
codec = "direct"

[trace]
level = "detail"
mode = "ring"

[stress]
engines = 2
seed = 42
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Heap.Size != 65536 || cfg.Heap.Codec != "direct" {
		t.Fatalf("heap = %+v", cfg.Heap)
	}
	if cfg.Heap.Base != uint64(jmem.DefaultBase) {
		t.Fatalf("heap.base = %#x, want default", cfg.Heap.Base)
	}
	if cfg.Stress.Engines != 2 || cfg.Stress.Seed != 42 {
		t.Fatalf("stress = %+v", cfg.Stress)
	}
	if cfg.Stress.Steps != Default().Stress.Steps {
		t.Fatalf("stress.steps = %d, want default", cfg.Stress.Steps)
	}
	tc, err := cfg.TracerConfig()
	if err != nil {
		t.Fatalf("TracerConfig: %v", err)
	}
	if tc.Level != trace.LevelDetail || tc.Mode != trace.ModeRing {
		t.Fatalf("tracer config = %+v", tc)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, "[heap]\nsize = 4096\nsise = 1\n")
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "heap.sise") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestLoadRejectsMisalignedBase(t *testing.T) {
	path := writeConfig(t, "[heap]\nbase = 0x1003\n")
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "aligned") {
		t.Fatalf("expected alignment error, got %v", err)
	}
}

func TestValidateCollectsErrors(t *testing.T) {
	cfg := Default()
	cfg.Heap.Size = 8
	cfg.Heap.RefLimit = 0
	cfg.Trace.Level = "loud"
	cfg.Stress.Engines = 0
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"heap.size", "heap.ref_limit", "trace.level", "stress.engines"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvHeapSize, "131072")
	t.Setenv(EnvRefLimit, "0x10")
	t.Setenv(EnvTraceLevel, "phase")
	t.Setenv(EnvStressEngines, "3")
	t.Setenv(EnvStressSeed, "7")
	cfg := Default()
	if err := ApplyEnv(&cfg); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if cfg.Heap.Size != 131072 || cfg.Heap.RefLimit != 16 {
		t.Fatalf("heap = %+v", cfg.Heap)
	}
	if cfg.Trace.Level != "phase" || cfg.Stress.Engines != 3 || cfg.Stress.Seed != 7 {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestApplyEnvRejectsGarbage(t *testing.T) {
	t.Setenv(EnvHeapSize, "lots")
	cfg := Default()
	if err := ApplyEnv(&cfg); err == nil || !strings.Contains(err.Error(), EnvHeapSize) {
		t.Fatalf("expected %s error, got %v", EnvHeapSize, err)
	}
}

func TestApplyEnvSeesLaterChanges(t *testing.T) {
	cfg := Default()
	if err := ApplyEnv(&cfg); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	t.Setenv(EnvStressSeed, "99")
	if err := ApplyEnv(&cfg); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if cfg.Stress.Seed != 99 {
		t.Fatalf("seed = %d, want 99", cfg.Stress.Seed)
	}
}

func TestContextOptions(t *testing.T) {
	cfg := Default()
	cfg.Heap.RefLimit = 300
	opts, err := cfg.ContextOptions(trace.Nop)
	if err != nil {
		t.Fatalf("ContextOptions: %v", err)
	}
	if opts.RefLimit != 300 || opts.HeapSize != cfg.Heap.Size || opts.HeapBase != jmem.DefaultBase {
		t.Fatalf("options = %+v", opts)
	}
}

func TestResolveUsesEnvPath(t *testing.T) {
	path := writeConfig(t, "[stress]\nsteps = 12\n")
	t.Setenv(EnvConfigPath, path)
	t.Setenv(EnvStressSeed, "99")
	cfg, err := Resolve("")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if cfg.Stress.Steps != 12 || cfg.Stress.Seed != 99 {
		t.Fatalf("stress = %+v", cfg.Stress)
	}
}
