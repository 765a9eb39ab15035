package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the global configuration.
// Design notes: viper manages it; sources in precedence order are
// environment variables (LIVRARIA_*), .env files, the YAML config file, defaults.
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Storage StorageConfig `mapstructure:"storage"`
	Backup  BackupConfig  `mapstructure:"backup"`
	CSV     CSVConfig     `mapstructure:"csv"`
	Log     LogConfig     `mapstructure:"log"`
	Display DisplayConfig `mapstructure:"display"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

type AppConfig struct {
	BaseDir string `mapstructure:"base_dir"` // root of data/, backups/, exports/
}

type StorageConfig struct {
	FileName    string        `mapstructure:"file_name"`
	BusyTimeout time.Duration `mapstructure:"busy_timeout"`
}

type BackupConfig struct {
	Prefix    string `mapstructure:"prefix"`
	Retention int    `mapstructure:"retention"`
}

type CSVConfig struct {
	DefaultFile string   `mapstructure:"default_file"`
	Headers     []string `mapstructure:"headers"` // id, title, author, year, price labels
}

type LogConfig struct {
	Level        string `mapstructure:"level"`  // debug | info | warn | error
	Format       string `mapstructure:"format"` // auto | console | json
	Output       string `mapstructure:"output"` // stdout | stderr | /path/to/file
	EnableCaller bool   `mapstructure:"enable_caller"`
}

type DisplayConfig struct {
	Locale         string `mapstructure:"locale"`
	CurrencySymbol string `mapstructure:"currency_symbol"`
}

type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"` // node-exporter textfile path, empty disables
}

// Directory names under the base directory.
const (
	DataDir    = "data"
	BackupsDir = "backups"
	ExportsDir = "exports"
)

// DataDir returns <base>/data.
func (c *Config) DataDir() string {
	return filepath.Join(c.App.BaseDir, DataDir)
}

// BackupsDir returns <base>/backups.
func (c *Config) BackupsDir() string {
	return filepath.Join(c.App.BaseDir, BackupsDir)
}

// ExportsDir returns <base>/exports.
func (c *Config) ExportsDir() string {
	return filepath.Join(c.App.BaseDir, ExportsDir)
}

// DataFile returns the live SQLite file path.
func (c *Config) DataFile() string {
	return filepath.Join(c.DataDir(), c.Storage.FileName)
}

// DefaultHeaders are the CSV column labels, in id, title, author, year, price order.
var DefaultHeaders = []string{"ID", "Título", "Autor", "Ano de Publicação", "Preço"}

// Default returns the configuration used when no file or environment overrides exist.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// defaults always decode
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.base_dir", ".")
	v.SetDefault("storage.file_name", "livraria.db")
	v.SetDefault("storage.busy_timeout", 5*time.Second)
	v.SetDefault("backup.prefix", "backup_livraria_")
	v.SetDefault("backup.retention", 5)
	v.SetDefault("csv.default_file", "livros_exportados.csv")
	v.SetDefault("csv.headers", DefaultHeaders)
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "auto")
	v.SetDefault("log.output", "stderr")
	v.SetDefault("log.enable_caller", false)
	v.SetDefault("display.locale", "pt-BR")
	v.SetDefault("display.currency_symbol", "R$")
	v.SetDefault("metrics.textfile", "")
}

// Load reads the configuration.
// 1. .env and .env.local are loaded into the process environment (missing files are fine)
// 2. configFile is read when given; otherwise livraria.yaml is searched in ./config and .
// 3. LIVRARIA_* environment variables override file values (LIVRARIA_BACKUP_RETENTION → backup.retention)
func Load(configFile string) (*Config, error) {
	for _, envFile := range []string{".env", ".env.local"} {
		_ = godotenv.Load(envFile)
	}

	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("livraria")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// an explicit file must exist; the search path may be empty
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetEnvPrefix("LIVRARIA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// validate checks values the rest of the program relies on.
func validate(cfg *Config) error {
	if strings.TrimSpace(cfg.App.BaseDir) == "" {
		return fmt.Errorf("app.base_dir must not be empty")
	}
	if cfg.Storage.FileName == "" || filepath.Base(cfg.Storage.FileName) != cfg.Storage.FileName {
		return fmt.Errorf("storage.file_name must be a bare file name: %q", cfg.Storage.FileName)
	}
	if cfg.Backup.Retention < 1 {
		return fmt.Errorf("backup.retention must be at least 1, got %d", cfg.Backup.Retention)
	}
	if cfg.Backup.Prefix == "" {
		return fmt.Errorf("backup.prefix must not be empty")
	}
	if len(cfg.CSV.Headers) != len(DefaultHeaders) {
		return fmt.Errorf("csv.headers must list %d labels (id, title, author, year, price), got %d",
			len(DefaultHeaders), len(cfg.CSV.Headers))
	}
	return nil
}
