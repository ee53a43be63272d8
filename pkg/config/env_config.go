// pkg/config/env_config.go
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables read by ApplyEnvironmentOverrides
const (
	EnvIndex            = "COLLIDE_INDEX"
	EnvNoRepeat         = "COLLIDE_NO_REPEAT"
	EnvGridColumns      = "COLLIDE_GRID_COLUMNS"
	EnvGridRows         = "COLLIDE_GRID_ROWS"
	EnvGridSplitCount   = "COLLIDE_GRID_SPLIT_COUNT"
	EnvGridSplitWidth   = "COLLIDE_GRID_SPLIT_WIDTH"
	EnvQuadSplitCount   = "COLLIDE_QUAD_SPLIT_COUNT"
	EnvQuadSplitMin     = "COLLIDE_QUAD_SPLIT_MIN_COUNT"
	EnvQuadSplitWidth   = "COLLIDE_QUAD_SPLIT_WIDTH"
	EnvQuadMaxDepth     = "COLLIDE_QUAD_MAX_DEPTH"
	EnvGJKMaxIterations = "COLLIDE_GJK_MAX_ITERATIONS"
	EnvEPAMaxIterations = "COLLIDE_EPA_MAX_ITERATIONS"
	EnvTolerance        = "COLLIDE_TOLERANCE"
	EnvLogLevel         = "COLLIDE_LOG_LEVEL"
	EnvMetricsAddr      = "COLLIDE_METRICS_ADDR"
)

// LoadDotEnv loads variables from the given .env files into the process
// environment without overriding values already set. With no arguments it
// reads ".env" in the working directory; a missing default file is not an
// error.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load .env: %w", err)
		}
		return nil
	}
	if err := godotenv.Load(paths...); err != nil {
		return fmt.Errorf("failed to load %s: %w", strings.Join(paths, ", "), err)
	}
	return nil
}

// ApplyEnvironmentOverrides applies COLLIDE_* environment variables on top
// of config and validates the result.
func ApplyEnvironmentOverrides(config *Config) error {
	config.Index = strings.ToLower(getEnvOrDefault(EnvIndex, config.Index))
	config.NoRepeat = getEnvAsBoolOrDefault(EnvNoRepeat, config.NoRepeat)

	config.Grid.Columns = getEnvAsIntOrDefault(EnvGridColumns, config.Grid.Columns)
	config.Grid.Rows = getEnvAsIntOrDefault(EnvGridRows, config.Grid.Rows)
	config.Grid.SplitCount = getEnvAsIntOrDefault(EnvGridSplitCount, config.Grid.SplitCount)
	config.Grid.SplitWidth = getEnvAsFloatOrDefault(EnvGridSplitWidth, config.Grid.SplitWidth)

	config.Quad.SplitCount = getEnvAsIntOrDefault(EnvQuadSplitCount, config.Quad.SplitCount)
	config.Quad.SplitMinCount = getEnvAsIntOrDefault(EnvQuadSplitMin, config.Quad.SplitMinCount)
	config.Quad.SplitWidth = getEnvAsFloatOrDefault(EnvQuadSplitWidth, config.Quad.SplitWidth)
	config.Quad.MaxDepth = getEnvAsIntOrDefault(EnvQuadMaxDepth, config.Quad.MaxDepth)

	config.Solver.MaxIterations = getEnvAsIntOrDefault(EnvGJKMaxIterations, config.Solver.MaxIterations)
	config.Solver.EPAMaxIterations = getEnvAsIntOrDefault(EnvEPAMaxIterations, config.Solver.EPAMaxIterations)
	config.Solver.Tolerance = getEnvAsFloatOrDefault(EnvTolerance, config.Solver.Tolerance)

	config.LogLevel = getEnvOrDefault(EnvLogLevel, config.LogLevel)
	config.MetricsAddr = getEnvOrDefault(EnvMetricsAddr, config.MetricsAddr)

	if err := config.Validate(); err != nil {
		return fmt.Errorf("environment overrides: %w", err)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value, err := strconv.Atoi(getEnvOrDefault(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBoolOrDefault(key string, defaultValue bool) bool {
	if value, err := strconv.ParseBool(getEnvOrDefault(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloatOrDefault(key string, defaultValue float64) float64 {
	if value, err := strconv.ParseFloat(getEnvOrDefault(key, ""), 64); err == nil {
		return value
	}
	return defaultValue
}
