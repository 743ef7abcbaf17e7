package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"invopt-mcp/internal/planning"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// AppConfig holds the complete application configuration.
type AppConfig struct {
	DataPath            string
	LogDir              string
	SnapshotDir         string
	EnableMermaidCharts bool
	Planning            planning.Defaults
}

// Load loads the configuration from .env files, an optional invopt config file
// and environment variables.
func Load() (*AppConfig, error) {
	// 1. Try to load from the executable's directory (highest priority for MCP servers)
	exePath, err := os.Executable()
	exeDir := ""
	if err == nil {
		exeDir = filepath.Dir(exePath)
		envPath := filepath.Join(exeDir, ".env")
		if err := godotenv.Load(envPath); err == nil {
			log.Debug().Str("path", envPath).Msg("Loaded configuration from binary directory")
		}
	}

	// 2. Fallback to current working directory (useful for development/go run)
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found in working directory, relying on environment variables or binary-relative .env")
	}

	// 3. Resolve Data Paths
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		if exeDir != "" {
			dataPath = exeDir
		} else {
			dataPath = "."
		}
	}

	logDir := filepath.Join(dataPath, "logs")
	snapshotDir := getEnv("SNAPSHOT_DIR", filepath.Join(dataPath, "snapshots"))

	// Ensure directories exist
	if err := os.MkdirAll(logDir, 0755); err != nil {
		log.Warn().Err(err).Str("path", logDir).Msg("Failed to create log directory")
	}
	if err := os.MkdirAll(snapshotDir, 0755); err != nil {
		log.Warn().Err(err).Str("path", snapshotDir).Msg("Failed to create snapshot directory")
	}

	defaults, err := LoadPlanning(dataPath)
	if err != nil {
		return nil, err
	}

	cfg := &AppConfig{
		DataPath:            dataPath,
		LogDir:              logDir,
		SnapshotDir:         snapshotDir,
		EnableMermaidCharts: getEnvBool("ENABLE_MERMAID_CHARTS", false),
		Planning:            defaults,
	}

	return cfg, nil
}

// LoadPlanning reads planning defaults from invopt.{yaml,json,toml} in dir and
// PLAN_* environment variables. Environment wins over the file.
func LoadPlanning(dir string) (planning.Defaults, error) {
	def := planning.DefaultDefaults()

	v := viper.New()
	v.SetDefault("lead_time_days", def.LeadTimeDays)
	v.SetDefault("review_period_days", def.ReviewPeriodDays)
	v.SetDefault("service_level", def.ServiceLevel)
	v.SetDefault("service_level_a", def.ServiceLevels["A"])
	v.SetDefault("service_level_b", def.ServiceLevels["B"])
	v.SetDefault("service_level_c", def.ServiceLevels["C"])
	v.SetDefault("holding_cost_rate", def.HoldingCostRate)
	v.SetDefault("ordering_cost", def.OrderingCost)
	v.SetDefault("stockout_cost", def.StockoutCost)
	v.SetDefault("forecast_periods", def.ForecastPeriods)
	v.SetDefault("stats_window", def.StatsWindow)
	v.SetDefault("mc_iterations", def.Iterations)
	v.SetDefault("mc_seed", def.Seed)
	v.SetDefault("concurrency", def.Concurrency)

	v.SetEnvPrefix("PLAN")
	v.AutomaticEnv()

	v.SetConfigName("invopt")
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return def, fmt.Errorf("failed to read planning config: %w", err)
		}
	} else {
		log.Debug().Str("path", v.ConfigFileUsed()).Msg("Loaded planning defaults from file")
	}

	return planning.Defaults{
		LeadTimeDays:     v.GetFloat64("lead_time_days"),
		ReviewPeriodDays: v.GetFloat64("review_period_days"),
		ServiceLevel:     v.GetFloat64("service_level"),
		ServiceLevels: map[string]float64{
			"A": v.GetFloat64("service_level_a"),
			"B": v.GetFloat64("service_level_b"),
			"C": v.GetFloat64("service_level_c"),
		},
		HoldingCostRate: v.GetFloat64("holding_cost_rate"),
		OrderingCost:    v.GetFloat64("ordering_cost"),
		StockoutCost:    v.GetFloat64("stockout_cost"),
		ForecastPeriods: v.GetInt("forecast_periods"),
		StatsWindow:     v.GetInt("stats_window"),
		Iterations:      v.GetInt("mc_iterations"),
		Seed:            v.GetInt64("mc_seed"),
		Concurrency:     v.GetInt("concurrency"),
	}, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}
