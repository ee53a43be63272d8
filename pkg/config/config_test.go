// pkg/config/config_test.go
package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config == nil {
		t.Fatal("DefaultConfig() returned nil")
	}
	if config.Index != IndexGrid {
		t.Errorf("Expected Index %q, got %q", IndexGrid, config.Index)
	}
	if !config.NoRepeat {
		t.Error("Expected NoRepeat to be true")
	}
	if config.Grid != (GridConfig{Columns: 8, Rows: 4, SplitCount: 40, SplitWidth: 800}) {
		t.Errorf("Unexpected grid defaults %+v", config.Grid)
	}
	if config.Quad != (QuadConfig{SplitCount: 40, SplitMinCount: 4, SplitWidth: 200, MaxDepth: 16}) {
		t.Errorf("Unexpected quadtree defaults %+v", config.Quad)
	}
	if config.Solver.MaxIterations != 64 || config.Solver.EPAMaxIterations != 64 {
		t.Errorf("Unexpected solver caps %+v", config.Solver)
	}
	if err := config.Validate(); err != nil {
		t.Errorf("DefaultConfig() should be valid, got %v", err)
	}
}

func TestLoadConfig_Success(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "test_config.json")

	testConfig := DefaultConfig()
	testConfig.Index = IndexQuadTree
	testConfig.Quad.SplitCount = 12
	testConfig.Solver.Tolerance = 1e-6
	testConfig.LogLevel = "DEBUG"

	data, err := json.MarshalIndent(testConfig, "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal test config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("Failed to write test config file: %v", err)
	}

	loadedConfig, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if *loadedConfig != *testConfig {
		t.Errorf("Expected %+v, got %+v", testConfig, loadedConfig)
	}
}

func TestLoadConfig_PartialFileKeepsDefaults(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "partial.json")
	if err := os.WriteFile(configPath, []byte(`{"index": "quadtree", "grid": {"columns": 2}}`), 0o644); err != nil {
		t.Fatalf("Failed to write test config file: %v", err)
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if config.Index != IndexQuadTree || config.Grid.Columns != 2 {
		t.Errorf("file values not applied: %+v", config)
	}
	if config.Grid.Rows != 4 || config.Quad.MaxDepth != 16 {
		t.Errorf("defaults lost: %+v", config)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	invalidPath := filepath.Join(t.TempDir(), "invalid_config.json")
	if err := os.WriteFile(invalidPath, []byte(`{"index": "grid", invalid json}`), 0o644); err != nil {
		t.Fatalf("Failed to write invalid JSON file: %v", err)
	}

	tests := []struct {
		name     string
		path     string
		contains string
	}{
		{name: "file not found", path: "/path/that/does/not/exist/config.json", contains: "failed to read config file"},
		{name: "invalid json", path: invalidPath, contains: "failed to parse config file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := LoadConfig(tt.path)
			if err == nil || config != nil {
				t.Fatalf("LoadConfig() = %v, %v, expected an error", config, err)
			}
			if !strings.Contains(err.Error(), tt.contains) {
				t.Errorf("Expected error to contain '%s', got '%s'", tt.contains, err.Error())
			}
		})
	}
}

func TestSaveConfig(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "saved.json")
		config := DefaultConfig()
		config.MetricsAddr = ":9100"

		if err := SaveConfig(config, configPath); err != nil {
			t.Fatalf("SaveConfig failed: %v", err)
		}
		loaded, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}
		if *loaded != *config {
			t.Errorf("Expected %+v, got %+v", config, loaded)
		}
	})

	t.Run("invalid path", func(t *testing.T) {
		err := SaveConfig(DefaultConfig(), "/path/that/does/not/exist/config.json")
		if err == nil || !strings.Contains(err.Error(), "failed to write config file") {
			t.Errorf("Expected write error, got %v", err)
		}
	})

	t.Run("nil config", func(t *testing.T) {
		err := SaveConfig(nil, filepath.Join(t.TempDir(), "nil.json"))
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Expected ErrInvalidConfig, got %v", err)
		}
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(c *Config)
		errorField string
	}{
		{name: "ValidConfig", mutate: func(c *Config) {}},
		{name: "QuadTreeIndex", mutate: func(c *Config) { c.Index = IndexQuadTree }},
		{name: "UnknownIndex", mutate: func(c *Config) { c.Index = "rtree" }, errorField: "Index"},
		{name: "ZeroColumns", mutate: func(c *Config) { c.Grid.Columns = 0 }, errorField: "Grid.Columns"},
		{name: "ZeroRows", mutate: func(c *Config) { c.Grid.Rows = 0 }, errorField: "Grid.Rows"},
		{name: "ZeroGridSplitCount", mutate: func(c *Config) { c.Grid.SplitCount = 0 }, errorField: "Grid.SplitCount"},
		{name: "NegativeGridSplitWidth", mutate: func(c *Config) { c.Grid.SplitWidth = -1 }, errorField: "Grid.SplitWidth"},
		{name: "QuadSplitBelowMin", mutate: func(c *Config) { c.Quad.SplitCount = 2 }, errorField: "Quad.SplitCount"},
		{name: "ZeroQuadSplitWidth", mutate: func(c *Config) { c.Quad.SplitWidth = 0 }, errorField: "Quad.SplitWidth"},
		{name: "ZeroMaxDepth", mutate: func(c *Config) { c.Quad.MaxDepth = 0 }, errorField: "Quad.MaxDepth"},
		{name: "ZeroEPACap", mutate: func(c *Config) { c.Solver.EPAMaxIterations = 0 }, errorField: "Solver.MaxIterations"},
		{name: "ZeroTolerance", mutate: func(c *Config) { c.Solver.Tolerance = 0 }, errorField: "Solver.Tolerance"},
		{name: "UnknownLogLevel", mutate: func(c *Config) { c.LogLevel = "LOUD" }, errorField: "LogLevel"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)
			err := config.Validate()

			if tt.errorField == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			var fieldErr *FieldError
			if !errors.As(err, &fieldErr) {
				t.Fatalf("Validate() = %v, expected a FieldError", err)
			}
			if fieldErr.Field != tt.errorField {
				t.Errorf("Expected error field %q, got %q", tt.errorField, fieldErr.Field)
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Error("FieldError should unwrap to ErrInvalidConfig")
			}
		})
	}
}

func TestConfig_Conversions(t *testing.T) {
	config := DefaultConfig()
	config.Grid.Columns = 3
	config.Quad.MaxDepth = 5
	config.Solver.Tolerance = 1e-3

	if got := config.GridParams(); got.Columns != 3 || got.Rows != 4 || got.SplitWidth != 800 {
		t.Errorf("GridParams() = %+v", got)
	}
	if got := config.QuadParams(); got.MaxDepth != 5 || got.SplitMinCount != 4 {
		t.Errorf("QuadParams() = %+v", got)
	}
	if got := config.NarrowSolver(); got.Tolerance != 1e-3 || got.MaxIterations != 64 {
		t.Errorf("NarrowSolver() = %+v", got)
	}
}
