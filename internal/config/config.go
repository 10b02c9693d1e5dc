package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix is the prefix for all environment overrides (DASHBOARD_SERVER_PORT, ...)
const EnvPrefix = "DASHBOARD"

// Config holds the complete dashboard configuration
type Config struct {
	Server  ServerConfig  `yaml:"server" envconfig:"SERVER"`
	Data    DataConfig    `yaml:"data" envconfig:"DATA"`
	Cache   CacheConfig   `yaml:"cache" envconfig:"CACHE"`
	Limits  LimitsConfig  `yaml:"limits" envconfig:"LIMITS"`
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	AllowedOrigins  []string      `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
}

// DataConfig points at the two input files and controls how they are cleaned
type DataConfig struct {
	// Dir is the base directory for all data files
	Dir               string            `yaml:"dir" envconfig:"DIR"`
	ResultsFile       string            `yaml:"results_file" envconfig:"RESULTS_FILE"`
	BoundariesFile    string            `yaml:"boundaries_file" envconfig:"BOUNDARIES_FILE"`
	SimplifyTolerance float64           `yaml:"simplify_tolerance" envconfig:"SIMPLIFY_TOLERANCE"`
	FuzzyJoin         bool              `yaml:"fuzzy_join" envconfig:"FUZZY_JOIN"`
	PartyAliases      map[string]string `yaml:"party_aliases" envconfig:"PARTY_ALIASES"`
}

// CacheConfig controls the rendered figure cache
type CacheConfig struct {
	TTL             time.Duration `yaml:"ttl" envconfig:"TTL"`
	CleanupInterval time.Duration `yaml:"cleanup_interval" envconfig:"CLEANUP_INTERVAL"`
}

// LimitsConfig contains request rate limiting configuration
type LimitsConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" envconfig:"LEVEL"`
}

// DefaultPartyAliases maps cleaned long party names to the short labels used in every view
var DefaultPartyAliases = map[string]string{
	"Bharatiya Janata Party":             "BJP",
	"Indian National Congress":           "INC",
	"Bahujan Samaj Party":                "BSP",
	"Aam Aadmi Party":                    "AAP",
	"Communist Party Of India (Marxist)": "CPM",
	"All India Trinamool Congress":       "TMC",
	"Janata Dal (United)":                "JDU",
	"Samajwadi Party":                    "SP",
}

// Load builds the configuration from defaults, an optional YAML file and the
// environment, in that order of increasing precedence.
func Load(configFile string) (*Config, error) {
	cfg := Default()
	cfg.Data.PartyAliases = nil

	if configFile == "" {
		configFile = findConfigFile()
	}
	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// Keep the DATA_DIR convention working
	if envDataDir := os.Getenv("DATA_DIR"); envDataDir != "" {
		cfg.Data.Dir = envDataDir
	}

	// only variables that are set override the file
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if len(cfg.Data.PartyAliases) == 0 {
		cfg.Data.PartyAliases = defaultAliases()
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func defaultAliases() map[string]string {
	aliases := make(map[string]string, len(DefaultPartyAliases))
	for k, v := range DefaultPartyAliases {
		aliases[k] = v
	}
	return aliases
}

// Default returns the configuration used when nothing is overridden
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			AllowedOrigins:  []string{"*"},
		},
		Data: DataConfig{
			Dir:               "data",
			ResultsFile:       "Loksabha_1962-2019 .csv",
			BoundariesFile:    "india_pc_2019_simplified.geojson",
			SimplifyTolerance: 0.001,
			FuzzyJoin:         true,
			PartyAliases:      defaultAliases(),
		},
		Cache: CacheConfig{
			TTL:             time.Hour,
			CleanupInterval: 2 * time.Hour,
		},
		Limits: LimitsConfig{
			Enabled: true,
			RPS:     50,
			Burst:   100,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// GetDataFilePath returns the path for a data file relative to the data directory
func (c *Config) GetDataFilePath(filename string) string {
	if filepath.IsAbs(filename) {
		return filename
	}
	return filepath.Join(c.Data.Dir, filename)
}

// ResultsPath returns the resolved path of the election results CSV
func (c *Config) ResultsPath() string {
	return c.GetDataFilePath(c.Data.ResultsFile)
}

// BoundariesPath returns the resolved path of the constituency GeoJSON
func (c *Config) BoundariesPath() string {
	return c.GetDataFilePath(c.Data.BoundariesFile)
}

// CheckDataFiles verifies that both input files exist
func (c *Config) CheckDataFiles() error {
	for _, path := range []string{c.ResultsPath(), c.BoundariesPath()} {
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("data file not found at %s: %w", path, err)
		}
	}
	return nil
}

// loadFromFile decodes the YAML file onto cfg; keys missing from the file keep
// their current value
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Data.ResultsFile == "" {
		return fmt.Errorf("results file must be set")
	}
	if c.Data.BoundariesFile == "" {
		return fmt.Errorf("boundaries file must be set")
	}
	if c.Data.SimplifyTolerance < 0 {
		return fmt.Errorf("simplify tolerance must not be negative")
	}
	if c.Limits.Enabled && (c.Limits.RPS <= 0 || c.Limits.Burst <= 0) {
		return fmt.Errorf("rate limit rps and burst must be positive")
	}
	return nil
}

func findConfigFile() string {
	for _, location := range []string{"config.yaml", "configs/config.yaml"} {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}
	return ""
}
