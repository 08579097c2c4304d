package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DefaultConfigPath is the path to the canonical viewer defaults file.
// This is the single source of truth for all default viewer values.
const DefaultConfigPath = "config/viewer.defaults.json"

// ViewerConfig represents the root configuration for the playback viewer.
// Every field is optional; the Get* methods supply defaults for omitted
// fields.
type ViewerConfig struct {
	// Playback params
	TickInterval *string `json:"tick_interval,omitempty"` // duration string like "10ms"
	MaxCycles    *int    `json:"max_cycles,omitempty"`    // 0 = loop forever

	// Drawing params
	PathSampleStep *float64 `json:"path_sample_step,omitempty"` // seconds between drawn path samples
	FieldSize      *float64 `json:"field_size,omitempty"`       // side of the square field, plan units
	PlotSizeInches *float64 `json:"plot_size_inches,omitempty"`
	OutputDir      *string  `json:"output_dir,omitempty"`

	// Ambient
	LogLevel *string `json:"log_level,omitempty"`
	Database *string `json:"database,omitempty"` // SQLite recording path; empty disables recording
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyViewerConfig returns a ViewerConfig with all fields set to nil.
// Use LoadViewerConfig to load actual values from the defaults file.
func EmptyViewerConfig() *ViewerConfig {
	return &ViewerConfig{}
}

// DefaultViewerConfig returns a config with every field explicitly set to
// its default value.
func DefaultViewerConfig() *ViewerConfig {
	empty := EmptyViewerConfig()
	return &ViewerConfig{
		TickInterval:   ptrString(empty.GetTickInterval().String()),
		MaxCycles:      ptrInt(empty.GetMaxCycles()),
		PathSampleStep: ptrFloat64(empty.GetPathSampleStep()),
		FieldSize:      ptrFloat64(empty.GetFieldSize()),
		PlotSizeInches: ptrFloat64(empty.GetPlotSizeInches()),
		OutputDir:      ptrString(empty.GetOutputDir()),
		LogLevel:       ptrString(empty.GetLogLevel()),
		Database:       ptrString(empty.GetDatabase()),
	}
}

// LoadViewerConfig loads a ViewerConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under the max file size.
// Fields omitted from the JSON file retain their default values, so
// partial configs are safe.
func LoadViewerConfig(path string) (*ViewerConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

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

	cfg := EmptyViewerConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical viewer defaults from DefaultConfigPath.
// It searches for the file in the current directory and common parent directories.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *ViewerConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,    // from internal/config/
		"../../../" + DefaultConfigPath, // from cmd/pathreplay/
	}
	for _, path := range candidates {
		if cfg, err := LoadViewerConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *ViewerConfig) Validate() error {
	if c.TickInterval != nil && *c.TickInterval != "" {
		d, err := time.ParseDuration(*c.TickInterval)
		if err != nil {
			return fmt.Errorf("invalid tick_interval '%s': %w", *c.TickInterval, err)
		}
		if d <= 0 {
			return fmt.Errorf("tick_interval must be positive, got %s", d)
		}
	}

	if c.MaxCycles != nil && *c.MaxCycles < 0 {
		return fmt.Errorf("max_cycles must be non-negative, got %d", *c.MaxCycles)
	}

	if c.PathSampleStep != nil && *c.PathSampleStep <= 0 {
		return fmt.Errorf("path_sample_step must be positive, got %f", *c.PathSampleStep)
	}

	if c.FieldSize != nil && *c.FieldSize <= 0 {
		return fmt.Errorf("field_size must be positive, got %f", *c.FieldSize)
	}

	if c.PlotSizeInches != nil && *c.PlotSizeInches <= 0 {
		return fmt.Errorf("plot_size_inches must be positive, got %f", *c.PlotSizeInches)
	}

	if c.LogLevel != nil {
		switch *c.LogLevel {
		case "", "debug", "info", "warn", "error":
		default:
			return fmt.Errorf("log_level must be one of debug, info, warn, error; got %q", *c.LogLevel)
		}
	}

	return nil
}

// GetTickInterval parses and returns the TickInterval as a time.Duration.
func (c *ViewerConfig) GetTickInterval() time.Duration {
	if c.TickInterval == nil || *c.TickInterval == "" {
		return 10 * time.Millisecond // default
	}
	d, err := time.ParseDuration(*c.TickInterval)
	if err != nil || d <= 0 {
		return 10 * time.Millisecond // default on parse error
	}
	return d
}

// GetMaxCycles returns the max_cycles value or the default.
func (c *ViewerConfig) GetMaxCycles() int {
	if c.MaxCycles == nil {
		return 0
	}
	return *c.MaxCycles
}

// GetPathSampleStep returns the path_sample_step value or the default.
func (c *ViewerConfig) GetPathSampleStep() float64 {
	if c.PathSampleStep == nil {
		return 0.05
	}
	return *c.PathSampleStep
}

// GetFieldSize returns the field_size value or the default.
func (c *ViewerConfig) GetFieldSize() float64 {
	if c.FieldSize == nil {
		return 144.0 // 12ft field in inches
	}
	return *c.FieldSize
}

// GetPlotSizeInches returns the plot_size_inches value or the default.
func (c *ViewerConfig) GetPlotSizeInches() float64 {
	if c.PlotSizeInches == nil {
		return 6.0
	}
	return *c.PlotSizeInches
}

// GetOutputDir returns the output_dir value or the default.
func (c *ViewerConfig) GetOutputDir() string {
	if c.OutputDir == nil || *c.OutputDir == "" {
		return "plots"
	}
	return *c.OutputDir
}

// GetLogLevel returns the log_level value or the default.
func (c *ViewerConfig) GetLogLevel() string {
	if c.LogLevel == nil || *c.LogLevel == "" {
		return "info"
	}
	return *c.LogLevel
}

// GetDatabase returns the database path or "" when recording is disabled.
func (c *ViewerConfig) GetDatabase() string {
	if c.Database == nil {
		return ""
	}
	return *c.Database
}
