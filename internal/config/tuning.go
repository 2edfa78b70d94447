package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
// This is the single source of truth for all default tuning values.
const DefaultConfigPath = "config/tuning.defaults.json"

// TuningConfig represents the root configuration for fragmentation tuning
// parameters. All fields are pointers so a partial JSON file only overrides
// what it mentions; the Get* methods supply defaults for the rest.
type TuningConfig struct {
	// Scheduler params
	MaxSlicesPerTick    *int `json:"max_slices_per_tick,omitempty"`
	MaxCompletedPerTick *int `json:"max_completed_per_tick,omitempty"`
	MinVerticesForSlice *int `json:"min_vertices_for_slice,omitempty"`

	// Activator params
	MaxActivationsPerTick *int `json:"max_activations_per_tick,omitempty"`

	// Fragmentation policy params
	MaxDepth               *int     `json:"max_depth,omitempty"`
	SmallFragmentThreshold *float64 `json:"small_fragment_threshold,omitempty"`
	RecursiveFragmentRatio *float64 `json:"recursive_fragment_ratio,omitempty"`

	// Fragment params
	Density          *float64 `json:"density,omitempty"`
	FragmentLifetime *string  `json:"fragment_lifetime,omitempty"` // duration string like "5s"
	PoolCapacity     *int     `json:"pool_capacity,omitempty"`

	// Seed drives the cutting-plane randomness; 0 means time-seeded.
	Seed *int64 `json:"seed,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }
func ptrInt64(v int64) *int64       { return &v }

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
// Use LoadTuningConfig to load actual values from the defaults file.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// DefaultTuningConfig returns a TuningConfig with every field populated with
// its default value, matching what the Get* methods fall back to.
func DefaultTuningConfig() *TuningConfig {
	return &TuningConfig{
		MaxSlicesPerTick:       ptrInt(2),
		MaxCompletedPerTick:    ptrInt(2),
		MinVerticesForSlice:    ptrInt(4),
		MaxActivationsPerTick:  ptrInt(4),
		MaxDepth:               ptrInt(3),
		SmallFragmentThreshold: ptrFloat64(0.05),
		RecursiveFragmentRatio: ptrFloat64(0.3),
		Density:                ptrFloat64(800),
		FragmentLifetime:       ptrString("5s"),
		PoolCapacity:           ptrInt(64),
		Seed:                   ptrInt64(0),
	}
}

// LoadTuningConfig loads a TuningConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under the
// max file size. Fields omitted from the JSON file fall back to defaults
// through the Get* methods, so partial configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical tuning defaults from DefaultConfigPath.
// It searches for the file in the current directory and common parent directories.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *TuningConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,    // from internal/config/
		"../../../" + DefaultConfigPath, // deeper packages
	}
	for _, path := range candidates {
		if cfg, err := LoadTuningConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	if c.SmallFragmentThreshold != nil {
		if v := *c.SmallFragmentThreshold; v < 0 || v > 1 {
			return fmt.Errorf("small_fragment_threshold must be between 0 and 1, got %f", v)
		}
	}
	if c.RecursiveFragmentRatio != nil {
		if v := *c.RecursiveFragmentRatio; v < 0 || v > 1 {
			return fmt.Errorf("recursive_fragment_ratio must be between 0 and 1, got %f", v)
		}
	}
	if c.SmallFragmentThreshold != nil && c.RecursiveFragmentRatio != nil {
		if *c.SmallFragmentThreshold > *c.RecursiveFragmentRatio {
			return fmt.Errorf("small_fragment_threshold %f exceeds recursive_fragment_ratio %f",
				*c.SmallFragmentThreshold, *c.RecursiveFragmentRatio)
		}
	}
	if c.Density != nil && *c.Density <= 0 {
		return fmt.Errorf("density must be positive, got %f", *c.Density)
	}
	if c.MaxDepth != nil && *c.MaxDepth < 0 {
		return fmt.Errorf("max_depth must be non-negative, got %d", *c.MaxDepth)
	}
	if c.PoolCapacity != nil && *c.PoolCapacity < 0 {
		return fmt.Errorf("pool_capacity must be non-negative, got %d", *c.PoolCapacity)
	}
	if c.FragmentLifetime != nil && *c.FragmentLifetime != "" {
		if _, err := time.ParseDuration(*c.FragmentLifetime); err != nil {
			return fmt.Errorf("invalid fragment_lifetime '%s': %w", *c.FragmentLifetime, err)
		}
	}
	return nil
}

// GetMaxSlicesPerTick returns the max_slices_per_tick value or the default.
func (c *TuningConfig) GetMaxSlicesPerTick() int {
	if c.MaxSlicesPerTick == nil {
		return 2
	}
	return *c.MaxSlicesPerTick
}

// GetMaxCompletedPerTick returns the max_completed_per_tick value or the default.
func (c *TuningConfig) GetMaxCompletedPerTick() int {
	if c.MaxCompletedPerTick == nil {
		return 2
	}
	return *c.MaxCompletedPerTick
}

// GetMinVerticesForSlice returns the min_vertices_for_slice value or the default.
func (c *TuningConfig) GetMinVerticesForSlice() int {
	if c.MinVerticesForSlice == nil {
		return 4
	}
	return *c.MinVerticesForSlice
}

// GetMaxActivationsPerTick returns the max_activations_per_tick value or the default.
func (c *TuningConfig) GetMaxActivationsPerTick() int {
	if c.MaxActivationsPerTick == nil {
		return 4
	}
	return *c.MaxActivationsPerTick
}

// GetMaxDepth returns the max_depth value or the default.
func (c *TuningConfig) GetMaxDepth() int {
	if c.MaxDepth == nil {
		return 3
	}
	return *c.MaxDepth
}

// GetSmallFragmentThreshold returns the small_fragment_threshold value or the default.
func (c *TuningConfig) GetSmallFragmentThreshold() float64 {
	if c.SmallFragmentThreshold == nil {
		return 0.05
	}
	return *c.SmallFragmentThreshold
}

// GetRecursiveFragmentRatio returns the recursive_fragment_ratio value or the default.
func (c *TuningConfig) GetRecursiveFragmentRatio() float64 {
	if c.RecursiveFragmentRatio == nil {
		return 0.3
	}
	return *c.RecursiveFragmentRatio
}

// GetDensity returns the density value or the default.
func (c *TuningConfig) GetDensity() float64 {
	if c.Density == nil {
		return 800
	}
	return *c.Density
}

// GetFragmentLifetime parses and returns the FragmentLifetime as a time.Duration.
func (c *TuningConfig) GetFragmentLifetime() time.Duration {
	if c.FragmentLifetime == nil || *c.FragmentLifetime == "" {
		return 5 * time.Second // default
	}
	d, err := time.ParseDuration(*c.FragmentLifetime)
	if err != nil {
		return 5 * time.Second // default on parse error
	}
	return d
}

// GetPoolCapacity returns the pool_capacity value or the default.
func (c *TuningConfig) GetPoolCapacity() int {
	if c.PoolCapacity == nil {
		return 64
	}
	return *c.PoolCapacity
}

// GetSeed returns the seed value or the default.
func (c *TuningConfig) GetSeed() int64 {
	if c.Seed == nil {
		return 0
	}
	return *c.Seed
}
