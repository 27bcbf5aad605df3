// Package config loads runtime configuration layered, highest precedence
// first: explicit flag value, process environment, a .brilrc dotenv file
// in the working directory, compiled-in default.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	defaultHeapSize        = 1000000
	defaultInitialGCLimit  = 16
	defaultGCGrowthFactor  = 2
	dotenvFile             = ".brilrc"
	envHeapSize            = "BRIL_HEAP_SIZE"
	envInitialGCLimit      = "BRIL_INITIAL_GC_LIMIT"
	envGCGrowthFactor      = "BRIL_GC_GROWTH_FACTOR"
	envDisableMetrics      = "BRIL_DISABLE_METRICS"
	envDisableColor        = "BRIL_NO_COLOR"
)

// Config holds the resolved runtime parameters for a bril-cli invocation.
type Config struct {
	HeapSize        int64
	InitialGCLimit  int64
	GCGrowthFactor  int64
	DisableMetrics  bool
	DisableColor    bool
}

// Load resolves configuration from the dotenv file, then the process
// environment, applying compiled-in defaults for anything unset. Explicit
// CLI flags are applied afterward by the caller (cli package), since
// cobra flags aren't visible here.
func Load() Config {
	loadDotenv()

	return Config{
		HeapSize:       envInt(envHeapSize, defaultHeapSize),
		InitialGCLimit: envInt(envInitialGCLimit, defaultInitialGCLimit),
		GCGrowthFactor: envInt(envGCGrowthFactor, defaultGCGrowthFactor),
		DisableMetrics: envBool(envDisableMetrics, false),
		DisableColor:   envBool(envDisableColor, false),
	}
}

// loadDotenv loads .brilrc from the working directory, the way the donor
// CLI loads its own per-user .env file. Missing or malformed files are
// silently ignored; env vars already set in the process take precedence
// over dotenv entries (godotenv.Load never overwrites existing vars).
func loadDotenv() {
	_ = godotenv.Load(dotenvFile)
}

func envInt(key string, def int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}
	return n
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// ApplyHeapSize overrides the heap size when a CLI flag explicitly set it
// (flag value > 0 signals "was set"; 0 means "use layered default").
func (c Config) ApplyHeapSize(flagValue int64) Config {
	if flagValue > 0 {
		c.HeapSize = flagValue
	}
	return c
}
