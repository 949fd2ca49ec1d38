package querylint

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
)

// Config represents the querylint configuration
type Config struct {
	Databases  map[string]Database `yaml:"databases"`
	Validation ValidationConfig    `yaml:"validation"`
	Schema     SchemaConfig        `yaml:"schema"`
}

// Database represents a named database connection entry. A schema
// reference of the form name://<entry> is resolved through this map.
type Database struct {
	Connection string `yaml:"connection"`
	Schema     string `yaml:"schema"`
}

// ValidationConfig represents validation settings
type ValidationConfig struct {
	// Strict escalates advisories (duplicate expanded column names) to errors.
	Strict bool `yaml:"strict"`
	// ProbeTimeout bounds the schema metadata probe.
	ProbeTimeout time.Duration `yaml:"probe_timeout"`
}

// SchemaConfig represents schema pull/load settings
type SchemaConfig struct {
	OutputDir     string   `yaml:"output_dir"`
	IncludeTables []string `yaml:"include_tables"`
	ExcludeTables []string `yaml:"exclude_tables"`
}

// LoadConfig loads configuration from the specified file
func LoadConfig(configPath string) (*Config, error) {
	// .env first so connection strings can reference secrets
	if err := loadEnvFiles(); err != nil {
		return nil, fmt.Errorf("failed to load environment files: %w", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		config := defaultConfig()
		expandConfigEnvVars(config)

		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config

	err = yaml.UnmarshalWithOptions(data, &config, yaml.Strict())
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	applyDefaults(&config)
	expandConfigEnvVars(&config)

	return &config, nil
}

// ResolveDatabase returns the connection string of a named database entry.
func (c *Config) ResolveDatabase(name string) (string, error) {
	db, ok := c.Databases[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrDatabaseNotConfigured, name)
	}

	return db.Connection, nil
}

func validateConfig(config *Config) error {
	for name, db := range config.Databases {
		if db.Connection == "" {
			return fmt.Errorf("%w: database '%s': connection is required", ErrConfigValidation, name)
		}
	}

	if config.Validation.ProbeTimeout < 0 {
		return fmt.Errorf("%w: probe_timeout must not be negative", ErrConfigValidation)
	}

	return nil
}

func applyDefaults(config *Config) {
	if config.Validation.ProbeTimeout == 0 {
		config.Validation.ProbeTimeout = 30 * time.Second
	}

	if config.Schema.OutputDir == "" {
		config.Schema.OutputDir = ".querylint/schema"
	}
}

func defaultConfig() *Config {
	config := &Config{
		Databases: map[string]Database{},
	}
	applyDefaults(config)

	return config
}

// loadEnvFiles loads .env files if they exist
func loadEnvFiles() error {
	if fileExists(".env") {
		if err := godotenv.Load(".env"); err != nil {
			return fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	return nil
}

// expandEnvVars expands environment variables in the format ${VAR} or $VAR
func expandEnvVars(s string) string {
	re1 := regexp.MustCompile(`\$\{([^}]+)\}`)
	s = re1.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(match[2 : len(match)-1])
	})

	re2 := regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)
	s = re2.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(match[1:])
	})

	return s
}

func expandConfigEnvVars(config *Config) {
	for name, db := range config.Databases {
		db.Connection = expandEnvVars(db.Connection)
		db.Schema = expandEnvVars(db.Schema)
		config.Databases[name] = db
	}

	config.Schema.OutputDir = expandEnvVars(config.Schema.OutputDir)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
