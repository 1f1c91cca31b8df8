package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/alvmarrod/rank-weaver/internal/rank"
	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// EnvPrefix prefixes every environment variable read by ApplyEnv
const EnvPrefix = "RANKWEAVER_"

// Config holds all runtime configuration parameters
type Config struct {
	CorpusDir     string  `json:"corpus_dir"`
	DBPath        string  `json:"db_path"`
	DampingFactor float64 `json:"damping_factor"`
	Samples       int     `json:"samples"`
	Tolerance     float64 `json:"tolerance"`
	MaxIterations int     `json:"max_iterations"`
	Seed          uint64  `json:"seed"`
	Workers       int     `json:"workers"`
	MetricsPath   string  `json:"metrics_path"`
	LogLevel      string  `json:"log_level"`
}

// LoadConfig reads configuration from a JSON file, overlays environment
// variables (and a .env file when present) and fills defaults.
// A missing file is an error unless optional is set, in which case only the
// environment and defaults apply. The result is not validated: callers
// layer their own overrides on top and then call Validate.
func LoadConfig(path string, optional bool) (*Config, error) {
	var cfg Config

	file, err := os.Open(path)
	switch {
	case err == nil:
		defer file.Close()
		decoder := json.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	case optional && errors.Is(err, os.ErrNotExist):
		logrus.Debugf("No config file at %s, using environment and defaults", path)
	default:
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}

	if err := loadDotEnv(); err != nil {
		return nil, err
	}
	if err := ApplyEnv(&cfg); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}

	ApplyDefaults(&cfg)

	return &cfg, nil
}

// loadDotEnv loads .env files into the environment without overriding
// variables already set. Missing files are skipped.
func loadDotEnv(filenames ...string) error {
	err := godotenv.Load(filenames...)
	if err == nil || errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to load .env: %w", err)
}

// ApplyEnv overrides fields from RANKWEAVER_* environment variables
func ApplyEnv(cfg *Config) error {
	var result error

	// a corpus source from the environment replaces the file's source
	corpusDir, hasDir := lookupEnv("CORPUS_DIR")
	dbPath, hasDB := lookupEnv("DB_PATH")
	if hasDir || hasDB {
		cfg.CorpusDir, cfg.DBPath = corpusDir, dbPath
	}
	if v, ok := lookupEnv("METRICS_PATH"); ok {
		cfg.MetricsPath = v
	}
	if v, ok := lookupEnv("LOG_LEVEL"); ok {
		cfg.LogLevel = v
	}
	if v, ok := lookupEnv("DAMPING_FACTOR"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("%sDAMPING_FACTOR: %w", EnvPrefix, err))
		} else {
			cfg.DampingFactor = f
		}
	}
	if v, ok := lookupEnv("TOLERANCE"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("%sTOLERANCE: %w", EnvPrefix, err))
		} else {
			cfg.Tolerance = f
		}
	}
	if v, ok := lookupEnv("SAMPLES"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("%sSAMPLES: %w", EnvPrefix, err))
		} else {
			cfg.Samples = n
		}
	}
	if v, ok := lookupEnv("MAX_ITERATIONS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("%sMAX_ITERATIONS: %w", EnvPrefix, err))
		} else {
			cfg.MaxIterations = n
		}
	}
	if v, ok := lookupEnv("WORKERS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("%sWORKERS: %w", EnvPrefix, err))
		} else {
			cfg.Workers = n
		}
	}
	if v, ok := lookupEnv("SEED"); ok {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("%sSEED: %w", EnvPrefix, err))
		} else {
			cfg.Seed = n
		}
	}

	return result
}

func lookupEnv(name string) (string, bool) {
	value := os.Getenv(EnvPrefix + name)
	return value, value != ""
}

// ApplyDefaults sets default values for unspecified fields
func ApplyDefaults(cfg *Config) {
	defaults := rank.DefaultOptions()
	if cfg.DampingFactor == 0 {
		cfg.DampingFactor = defaults.DampingFactor
	}
	if cfg.Samples == 0 {
		cfg.Samples = defaults.Samples
	}
	if cfg.Tolerance == 0 {
		cfg.Tolerance = defaults.Tolerance
	}
	if cfg.MaxIterations == 0 {
		cfg.MaxIterations = defaults.MaxIterations
	}
	if cfg.Workers == 0 {
		cfg.Workers = 4
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
}

// Validate checks that values are sensible, reporting every problem at once
func (cfg *Config) Validate() error {
	var result error

	if !(cfg.DampingFactor > 0 && cfg.DampingFactor < 1) {
		result = multierror.Append(result, fmt.Errorf("damping_factor must be in (0, 1), got %v", cfg.DampingFactor))
	}
	if cfg.Samples < 1 {
		result = multierror.Append(result, fmt.Errorf("samples must be >= 1, got %d", cfg.Samples))
	}
	if !(cfg.Tolerance > 0) {
		result = multierror.Append(result, fmt.Errorf("tolerance must be > 0, got %v", cfg.Tolerance))
	}
	if cfg.MaxIterations < 1 {
		result = multierror.Append(result, fmt.Errorf("max_iterations must be >= 1, got %d", cfg.MaxIterations))
	}
	if cfg.Workers < 1 {
		result = multierror.Append(result, fmt.Errorf("workers must be >= 1, got %d", cfg.Workers))
	}
	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		result = multierror.Append(result, fmt.Errorf("log_level: %w", err))
	}
	if cfg.CorpusDir != "" && cfg.DBPath != "" {
		result = multierror.Append(result, errors.New("corpus_dir and db_path are mutually exclusive"))
	}

	return result
}

// Source describes where the corpus is read from, for logs and metrics
func (cfg *Config) Source() string {
	if cfg.DBPath != "" {
		return "sqlite:" + cfg.DBPath
	}
	return "dir:" + cfg.CorpusDir
}

// Options returns the estimator parameters
func (cfg *Config) Options() rank.Options {
	return rank.Options{
		DampingFactor: cfg.DampingFactor,
		Samples:       cfg.Samples,
		Tolerance:     cfg.Tolerance,
		MaxIterations: cfg.MaxIterations,
	}
}
