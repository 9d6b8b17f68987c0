// Package config loads the GC's tunable thresholds the way the teacher
// loads exchange configuration: a TOML file read via go-toml, with any
// matching environment variables (optionally sourced from a .env file via
// godotenv) overriding individual fields.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Config holds every tunable named in spec.md §6 plus the growth-policy
// bound this module's threshold-adaptation Open Question resolved with
// (see DESIGN.md).
type Config struct {
	// YoungThreshold is the number of bytes allocated into the young
	// generation that triggers a young collection.
	YoungThreshold int64 `toml:"young_threshold"`

	// MatureThreshold is the equivalent trigger for the mature generation.
	MatureThreshold int64 `toml:"mature_threshold"`

	// MailboxThreshold is the equivalent trigger for a process's mailbox
	// heap.
	MailboxThreshold int64 `toml:"mailbox_threshold"`

	// HeapGrowthFactor multiplies a threshold that fired under heavy
	// survival pressure (see HeapGrowthBound).
	HeapGrowthFactor float64 `toml:"heap_growth_factor"`

	// HeapGrowthBound is the survival ratio (bytes marked / bytes
	// scanned) above which AdjustThresholds grows a threshold instead of
	// leaving it unchanged.
	HeapGrowthBound float64 `toml:"heap_growth_bound"`

	// YoungMaxAge is the number of young cycles a survivor endures before
	// it is recycled into the new eden.
	YoungMaxAge int `toml:"young_max_age"`

	// GlobalAllocatorSoftCap bounds how many idle blocks the global
	// allocator retains before further returned blocks are released
	// outright.
	GlobalAllocatorSoftCap int `toml:"global_allocator_soft_cap"`
}

// Default returns the configuration the original ships as its built-in
// defaults.
func Default() Config {
	return Config{
		YoungThreshold:         8 * 1024 * 1024,
		MatureThreshold:        16 * 1024 * 1024,
		MailboxThreshold:       4 * 1024 * 1024,
		HeapGrowthFactor:       2.0,
		HeapGrowthBound:        0.7,
		YoungMaxAge:            3,
		GlobalAllocatorSoftCap: 256,
	}
}

// Load reads a TOML configuration file at path, starting from Default()
// and overwriting only the fields present in the file.
func Load(path string) (*Config, error) {
	c := Default()

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := toml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	applyEnvOverrides(&c)

	return &c, nil
}

// LoadWithEnvFile behaves like Load but first loads envPath (a .env-style
// file) into the process environment via godotenv, so CORE_VM_* variables
// set there take effect for this call's override pass. A missing envPath
// is not an error — it mirrors godotenv.Load's own tolerant behavior for
// optional local overrides.
func LoadWithEnvFile(path, envPath string) (*Config, error) {
	_ = godotenv.Load(envPath)
	return Load(path)
}

func applyEnvOverrides(c *Config) {
	if v, ok := envInt64("CORE_VM_YOUNG_THRESHOLD"); ok {
		c.YoungThreshold = v
	}
	if v, ok := envInt64("CORE_VM_MATURE_THRESHOLD"); ok {
		c.MatureThreshold = v
	}
	if v, ok := envInt64("CORE_VM_MAILBOX_THRESHOLD"); ok {
		c.MailboxThreshold = v
	}
	if v, ok := envFloat("CORE_VM_HEAP_GROWTH_FACTOR"); ok {
		c.HeapGrowthFactor = v
	}
	if v, ok := envFloat("CORE_VM_HEAP_GROWTH_BOUND"); ok {
		c.HeapGrowthBound = v
	}
	if v, ok := envInt("CORE_VM_YOUNG_MAX_AGE"); ok {
		c.YoungMaxAge = v
	}
	if v, ok := envInt("CORE_VM_GLOBAL_ALLOCATOR_SOFT_CAP"); ok {
		c.GlobalAllocatorSoftCap = v
	}
}

func envInt64(key string) (int64, bool) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	return v, err == nil
}

func envInt(key string) (int, bool) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	return v, err == nil
}

func envFloat(key string) (float64, bool) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	return v, err == nil
}
