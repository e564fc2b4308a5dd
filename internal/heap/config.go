package heap

import "github.com/caarlos0/env/v6"

// Config tunes the GC. It is ordinarily loaded from the environment via
// LoadConfig (the pack's ambient configuration library,
// github.com/caarlos0/env, is also what github.com/mna/mainer uses
// internally to bind flags), and may additionally be overridden by CLI
// flags in cmd/cinder.
type Config struct {
	// StressGC forces a collection on every single allocation, the "stress
	// test mode" of spec §4.5, useful for shaking out missing roots.
	StressGC bool `env:"CINDER_GC_STRESS" envDefault:"false"`

	// GrowthFactor is the multiplier applied to bytes_allocated to compute
	// next_gc after each collection (spec §4.5: "next_gc = bytes_allocated
	// * 2").
	GrowthFactor float64 `env:"CINDER_GC_GROWTH_FACTOR" envDefault:"2.0"`

	// InitialThreshold is the bytes_allocated value that must be exceeded
	// before the very first collection runs.
	InitialThreshold int `env:"CINDER_GC_INITIAL_THRESHOLD" envDefault:"1048576"`
}

// DefaultConfig returns the Config spec.md's constants imply, with no
// environment overrides applied.
func DefaultConfig() Config {
	return Config{GrowthFactor: 2.0, InitialThreshold: 1024 * 1024}
}

// LoadConfig returns DefaultConfig overridden by any CINDER_GC_* variables
// present in the environment.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	if err := env.Parse(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
