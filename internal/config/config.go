// Package config holds the process-wide configuration for the optimizer
// and executor: which planner to use by default, how deep its search may
// go, where atom statistics live, and how long a filter run may take
// before it's aborted.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for a chameleon process.
type Config struct {
	Planner PlannerConfig
	Query   QueryConfig
	Logging LoggingConfig
}

// PlannerConfig selects and parameterizes the optimizer's planning
// strategy.
type PlannerConfig struct {
	Type         string // "EvalPred", "Tdacb", "BDCWithBestD", "OnePredLookahead"
	MaxDepth     int    // Tdacb's restructuring depth bound
	BestD        int    // BDCWithBestD's largest OR-node batch subset size
	StatsPath    string // YAML atom stats file, empty disables persisted stats
	DisableOrOpt bool   // disables dual-rank OR ordering and SeqOr narrowing
}

// QueryConfig holds per-filter-run execution settings.
type QueryConfig struct {
	QueryTimeout time.Duration
}

// LoggingConfig controls log verbosity.
type LoggingConfig struct {
	Level string // "debug", "info", "warn", "error"
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Planner: PlannerConfig{
			Type:     "EvalPred",
			MaxDepth: 3,
			BestD:    3,
		},
		Query: QueryConfig{
			QueryTimeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadFromEnv loads configuration from environment variables, falling
// back to defaults.
func LoadFromEnv() *Config {
	cfg := Default()

	if plannerType := os.Getenv("CHAMELEON_PLANNER"); plannerType != "" {
		cfg.Planner.Type = plannerType
	}
	if maxDepthStr := os.Getenv("CHAMELEON_MAX_DEPTH"); maxDepthStr != "" {
		if maxDepth, err := strconv.Atoi(maxDepthStr); err == nil {
			cfg.Planner.MaxDepth = maxDepth
		}
	}
	if bestDStr := os.Getenv("CHAMELEON_BEST_D"); bestDStr != "" {
		if bestD, err := strconv.Atoi(bestDStr); err == nil {
			cfg.Planner.BestD = bestD
		}
	}
	if statsPath := os.Getenv("CHAMELEON_STATS_PATH"); statsPath != "" {
		cfg.Planner.StatsPath = statsPath
	}
	if disableOrOpt := os.Getenv("CHAMELEON_DISABLE_OR_OPT"); disableOrOpt != "" {
		if parsed, err := strconv.ParseBool(disableOrOpt); err == nil {
			cfg.Planner.DisableOrOpt = parsed
		}
	}
	if timeoutStr := os.Getenv("CHAMELEON_QUERY_TIMEOUT"); timeoutStr != "" {
		if timeout, err := time.ParseDuration(timeoutStr); err == nil {
			cfg.Query.QueryTimeout = timeout
		}
	}
	if level := os.Getenv("CHAMELEON_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}

	return cfg
}

// Validate checks if the configuration is usable.
func (c *Config) Validate() error {
	switch c.Planner.Type {
	case "EvalPred", "Tdacb", "BDCWithBestD", "OnePredLookahead":
	default:
		return fmt.Errorf("unknown planner type: %s", c.Planner.Type)
	}
	if c.Planner.MaxDepth < 0 {
		return fmt.Errorf("max depth must be non-negative: %d", c.Planner.MaxDepth)
	}
	if c.Planner.BestD < 1 {
		return fmt.Errorf("best-d must be at least 1: %d", c.Planner.BestD)
	}
	if c.Query.QueryTimeout < 0 {
		return fmt.Errorf("query timeout must be non-negative: %s", c.Query.QueryTimeout)
	}
	return nil
}

// String returns a formatted string representation of the configuration.
func (c *Config) String() string {
	return fmt.Sprintf(`Chameleon Configuration:
  Planner:
    Type: %s
    Max Depth: %d
    Best D: %d
    Stats Path: %s
    Disable OR Optimization: %t
  Query:
    Query Timeout: %s
  Logging:
    Level: %s`,
		c.Planner.Type, c.Planner.MaxDepth, c.Planner.BestD, c.Planner.StatsPath, c.Planner.DisableOrOpt,
		c.Query.QueryTimeout, c.Logging.Level)
}
