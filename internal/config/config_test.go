package config

import (
	"os"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	os.Unsetenv(envHeapSize)
	os.Unsetenv(envInitialGCLimit)
	os.Unsetenv(envGCGrowthFactor)
	os.Unsetenv(envDisableMetrics)

	cfg := Load()
	if cfg.HeapSize != defaultHeapSize {
		t.Fatalf("expected default heap size %d, got %d", defaultHeapSize, cfg.HeapSize)
	}
	if cfg.InitialGCLimit != defaultInitialGCLimit {
		t.Fatalf("expected default GC limit %d, got %d", defaultInitialGCLimit, cfg.InitialGCLimit)
	}
	if cfg.DisableMetrics {
		t.Fatalf("expected metrics enabled by default")
	}
}

func TestLoadFromEnv(t *testing.T) {
	os.Setenv(envHeapSize, "64")
	defer os.Unsetenv(envHeapSize)
	os.Setenv(envDisableMetrics, "true")
	defer os.Unsetenv(envDisableMetrics)

	cfg := Load()
	if cfg.HeapSize != 64 {
		t.Fatalf("expected heap size 64 from env, got %d", cfg.HeapSize)
	}
	if !cfg.DisableMetrics {
		t.Fatalf("expected metrics disabled from env")
	}
}

func TestApplyHeapSizeOverride(t *testing.T) {
	cfg := Config{HeapSize: defaultHeapSize}
	cfg = cfg.ApplyHeapSize(128)
	if cfg.HeapSize != 128 {
		t.Fatalf("expected flag override to win, got %d", cfg.HeapSize)
	}

	cfg2 := Config{HeapSize: 999}
	cfg2 = cfg2.ApplyHeapSize(0)
	if cfg2.HeapSize != 999 {
		t.Fatalf("expected unset flag to leave value unchanged, got %d", cfg2.HeapSize)
	}
}
