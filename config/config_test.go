package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadOverridesOnlyPresentFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gc.toml")
	contents := "young_threshold = 1048576\nheap_growth_factor = 1.5\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writeFile: %v", err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if c.YoungThreshold != 1048576 {
		t.Fatalf("expected overridden young threshold, got %d", c.YoungThreshold)
	}
	if c.HeapGrowthFactor != 1.5 {
		t.Fatalf("expected overridden growth factor, got %v", c.HeapGrowthFactor)
	}
	if c.MatureThreshold != Default().MatureThreshold {
		t.Fatalf("expected mature threshold to retain its default")
	}
}

func TestEnvOverrideWinsOverFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gc.toml")
	if err := os.WriteFile(path, []byte("young_threshold = 1000\n"), 0o644); err != nil {
		t.Fatalf("writeFile: %v", err)
	}

	t.Setenv("CORE_VM_YOUNG_THRESHOLD", "2000")

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if c.YoungThreshold != 2000 {
		t.Fatalf("expected env override to win, got %d", c.YoungThreshold)
	}
}

