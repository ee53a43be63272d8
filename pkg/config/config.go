// pkg/config/config.go
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/opd-ai/go-collide/pkg/logging"
	"github.com/opd-ai/go-collide/pkg/narrow"
	"github.com/opd-ai/go-collide/pkg/spatial"
)

// Index kinds accepted by Config.Index
const (
	IndexGrid     = "grid"
	IndexQuadTree = "quadtree"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// FieldError reports the config field that failed validation
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *FieldError) Unwrap() error { return ErrInvalidConfig }

// Config contains configuration for a collision detector
type Config struct {
	Index    string       `json:"index"`
	NoRepeat bool         `json:"noRepeat"`
	Grid     GridConfig   `json:"grid"`
	Quad     QuadConfig   `json:"quadTree"`
	Solver   SolverConfig `json:"solver"`
	LogLevel string       `json:"logLevel"`
	// MetricsAddr enables the prometheus endpoint when not empty.
	MetricsAddr string `json:"metricsAddr,omitempty"`
}

// GridConfig contains the grid map tuning
type GridConfig struct {
	Columns    int     `json:"columns"`
	Rows       int     `json:"rows"`
	SplitCount int     `json:"splitCount"`
	SplitWidth float64 `json:"splitWidth"`
}

// QuadConfig contains the quadtree tuning
type QuadConfig struct {
	SplitCount    int     `json:"splitCount"`
	SplitMinCount int     `json:"splitMinCount"`
	SplitWidth    float64 `json:"splitWidth"`
	MaxDepth      int     `json:"maxDepth"`
}

// SolverConfig contains the GJK/EPA limits
type SolverConfig struct {
	MaxIterations    int     `json:"maxIterations"`
	EPAMaxIterations int     `json:"epaMaxIterations"`
	Tolerance        float64 `json:"tolerance"`
}

// LoadConfig loads a configuration from a file. Fields missing from the
// file keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveConfig saves a configuration to a file
func SaveConfig(config *Config, path string) error {
	if config == nil {
		return fmt.Errorf("failed to marshal config: %w", ErrInvalidConfig)
	}
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DefaultConfig returns a default detector configuration
func DefaultConfig() *Config {
	grid := spatial.DefaultGridParams()
	quad := spatial.DefaultQuadParams()
	return &Config{
		Index:    IndexGrid,
		NoRepeat: true,
		Grid: GridConfig{
			Columns:    grid.Columns,
			Rows:       grid.Rows,
			SplitCount: grid.SplitCount,
			SplitWidth: grid.SplitWidth,
		},
		Quad: QuadConfig{
			SplitCount:    quad.SplitCount,
			SplitMinCount: quad.SplitMinCount,
			SplitWidth:    quad.SplitWidth,
			MaxDepth:      quad.MaxDepth,
		},
		Solver: SolverConfig{
			MaxIterations:    narrow.DefaultMaxIterations,
			EPAMaxIterations: narrow.DefaultEPAMaxIterations,
			Tolerance:        narrow.DefaultTolerance,
		},
		LogLevel: "INFO",
	}
}

// Validate checks the configuration and returns the first invalid field.
func (c *Config) Validate() error {
	if c.Index != IndexGrid && c.Index != IndexQuadTree {
		return &FieldError{"Index", fmt.Sprintf("must be %q or %q, got %q", IndexGrid, IndexQuadTree, c.Index)}
	}
	if c.Grid.Columns < 1 {
		return &FieldError{"Grid.Columns", "must be at least 1"}
	}
	if c.Grid.Rows < 1 {
		return &FieldError{"Grid.Rows", "must be at least 1"}
	}
	if c.Grid.SplitCount < 1 {
		return &FieldError{"Grid.SplitCount", "must be at least 1"}
	}
	if !positive(c.Grid.SplitWidth) {
		return &FieldError{"Grid.SplitWidth", "must be a positive number"}
	}
	if c.Quad.SplitMinCount < 0 || c.Quad.SplitCount < c.Quad.SplitMinCount {
		return &FieldError{"Quad.SplitCount", "must be at least SplitMinCount"}
	}
	if !positive(c.Quad.SplitWidth) {
		return &FieldError{"Quad.SplitWidth", "must be a positive number"}
	}
	if c.Quad.MaxDepth < 1 {
		return &FieldError{"Quad.MaxDepth", "must be at least 1"}
	}
	if c.Solver.MaxIterations < 1 || c.Solver.EPAMaxIterations < 1 {
		return &FieldError{"Solver.MaxIterations", "iteration caps must be at least 1"}
	}
	if !positive(c.Solver.Tolerance) {
		return &FieldError{"Solver.Tolerance", "must be a positive number"}
	}
	if _, ok := logging.ParseLevel(c.LogLevel); !ok {
		return &FieldError{"LogLevel", fmt.Sprintf("unknown level %q", c.LogLevel)}
	}
	return nil
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// GridParams converts the grid section for spatial.NewGridMap.
func (c *Config) GridParams() spatial.GridParams {
	return spatial.GridParams{
		Columns:    c.Grid.Columns,
		Rows:       c.Grid.Rows,
		SplitCount: c.Grid.SplitCount,
		SplitWidth: c.Grid.SplitWidth,
	}
}

// QuadParams converts the quadtree section for spatial.NewQuadTree.
func (c *Config) QuadParams() spatial.QuadParams {
	return spatial.QuadParams{
		SplitCount:    c.Quad.SplitCount,
		SplitMinCount: c.Quad.SplitMinCount,
		SplitWidth:    c.Quad.SplitWidth,
		MaxDepth:      c.Quad.MaxDepth,
	}
}

// NarrowSolver returns the GJK/EPA solver described by the config.
func (c *Config) NarrowSolver() narrow.Solver {
	return narrow.Solver{
		MaxIterations:    c.Solver.MaxIterations,
		EPAMaxIterations: c.Solver.EPAMaxIterations,
		Tolerance:        c.Solver.Tolerance,
	}
}
