package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	return path
}

func TestEmptyViewerConfigDefaults(t *testing.T) {
	cfg := EmptyViewerConfig()

	if got := cfg.GetTickInterval(); got != 10*time.Millisecond {
		t.Errorf("GetTickInterval() = %v, want 10ms", got)
	}
	if got := cfg.GetMaxCycles(); got != 0 {
		t.Errorf("GetMaxCycles() = %d, want 0", got)
	}
	if got := cfg.GetPathSampleStep(); got != 0.05 {
		t.Errorf("GetPathSampleStep() = %v, want 0.05", got)
	}
	if got := cfg.GetFieldSize(); got != 144 {
		t.Errorf("GetFieldSize() = %v, want 144", got)
	}
	if got := cfg.GetPlotSizeInches(); got != 6 {
		t.Errorf("GetPlotSizeInches() = %v, want 6", got)
	}
	if got := cfg.GetOutputDir(); got != "plots" {
		t.Errorf("GetOutputDir() = %q, want plots", got)
	}
	if got := cfg.GetLogLevel(); got != "info" {
		t.Errorf("GetLogLevel() = %q, want info", got)
	}
	if got := cfg.GetDatabase(); got != "" {
		t.Errorf("GetDatabase() = %q, want empty", got)
	}
}

func TestDefaultViewerConfigMatchesGetters(t *testing.T) {
	cfg := DefaultViewerConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultViewerConfig() invalid: %v", err)
	}
	if *cfg.TickInterval != "10ms" {
		t.Errorf("TickInterval = %q, want 10ms", *cfg.TickInterval)
	}
	if *cfg.FieldSize != 144 {
		t.Errorf("FieldSize = %v, want 144", *cfg.FieldSize)
	}
}

func TestLoadViewerConfig(t *testing.T) {
	path := writeConfig(t, "viewer.json", `{
  "tick_interval": "16ms",
  "max_cycles": 3,
  "path_sample_step": 0.1,
  "field_size": 120,
  "output_dir": "out",
  "log_level": "debug",
  "database": "replay.db"
}`)

	cfg, err := LoadViewerConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if got := cfg.GetTickInterval(); got != 16*time.Millisecond {
		t.Errorf("GetTickInterval() = %v, want 16ms", got)
	}
	if got := cfg.GetMaxCycles(); got != 3 {
		t.Errorf("GetMaxCycles() = %d, want 3", got)
	}
	if got := cfg.GetPathSampleStep(); got != 0.1 {
		t.Errorf("GetPathSampleStep() = %v, want 0.1", got)
	}
	if got := cfg.GetFieldSize(); got != 120 {
		t.Errorf("GetFieldSize() = %v, want 120", got)
	}
	if got := cfg.GetOutputDir(); got != "out" {
		t.Errorf("GetOutputDir() = %q, want out", got)
	}
	if got := cfg.GetLogLevel(); got != "debug" {
		t.Errorf("GetLogLevel() = %q, want debug", got)
	}
	if got := cfg.GetDatabase(); got != "replay.db" {
		t.Errorf("GetDatabase() = %q, want replay.db", got)
	}
	// Omitted field keeps its default.
	if got := cfg.GetPlotSizeInches(); got != 6 {
		t.Errorf("GetPlotSizeInches() = %v, want default 6", got)
	}
}

func TestLoadViewerConfigMissing(t *testing.T) {
	_, err := LoadViewerConfig("/nonexistent/path/to/config.json")
	if err == nil {
		t.Error("Expected error when loading missing file, got nil")
	}
}

func TestLoadViewerConfigInvalidJSON(t *testing.T) {
	path := writeConfig(t, "invalid.json", `{"field_size": "big"`)
	if _, err := LoadViewerConfig(path); err == nil {
		t.Error("Expected error when loading invalid JSON, got nil")
	}
}

func TestLoadViewerConfigRejectsNonJSON(t *testing.T) {
	_, err := LoadViewerConfig("/some/path/config.yaml")
	if err == nil {
		t.Error("Expected error for non-.json extension, got nil")
	}
}

func TestLoadViewerConfigRejectsLargeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "large.json")
	largeData := make([]byte, 2*1024*1024) // 2MB
	if err := os.WriteFile(path, largeData, 0644); err != nil {
		t.Fatalf("Failed to write large file: %v", err)
	}

	if _, err := LoadViewerConfig(path); err == nil {
		t.Error("Expected error for file size > 1MB, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *ViewerConfig
		wantErr bool
	}{
		{"empty", EmptyViewerConfig(), false},
		{"valid interval", &ViewerConfig{TickInterval: ptrString("20ms")}, false},
		{"bad interval", &ViewerConfig{TickInterval: ptrString("soon")}, true},
		{"zero interval", &ViewerConfig{TickInterval: ptrString("0s")}, true},
		{"negative cycles", &ViewerConfig{MaxCycles: ptrInt(-1)}, true},
		{"zero sample step", &ViewerConfig{PathSampleStep: ptrFloat64(0)}, true},
		{"negative field", &ViewerConfig{FieldSize: ptrFloat64(-5)}, true},
		{"zero plot size", &ViewerConfig{PlotSizeInches: ptrFloat64(0)}, true},
		{"bad log level", &ViewerConfig{LogLevel: ptrString("verbose")}, true},
		{"warn log level", &ViewerConfig{LogLevel: ptrString("warn")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadDefaultConfigFile(t *testing.T) {
	cfg := MustLoadDefaultConfig()
	if got := cfg.GetTickInterval(); got != 10*time.Millisecond {
		t.Errorf("defaults file tick_interval = %v, want 10ms", got)
	}
	if got := cfg.GetFieldSize(); got != 144 {
		t.Errorf("defaults file field_size = %v, want 144", got)
	}
}
