package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvPrefix     = "INVENTORY"
	EnvConfigFile = "INVENTORY_CONFIG"
)

type Config struct {
	DataDir   string `mapstructure:"data_dir"`
	DBFile    string `mapstructure:"db_file"`
	SeedPath  string `mapstructure:"seed_path"`
	ExportDir string `mapstructure:"export_dir"`

	Log struct {
		Level  string
		Format string
	} `mapstructure:"log"`

	Auth struct {
		Username      string
		PasswordHash  string        `mapstructure:"password_hash"`
		SessionSecret string        `mapstructure:"session_secret"`
		SessionTTL    time.Duration `mapstructure:"session_ttl"`
	} `mapstructure:"auth"`

	Inventory struct {
		LowStockThreshold int `mapstructure:"low_stock_threshold"`
	} `mapstructure:"inventory"`

	Metrics struct {
		Textfile string
	} `mapstructure:"metrics"`
}

// DBPath is the live store file.
func (c Config) DBPath() string {
	return filepath.Join(c.DataDir, c.DBFile)
}

// SessionPath is where the signed session token of the logged in operator lives.
func (c Config) SessionPath() string {
	return filepath.Join(c.DataDir, "session.token")
}

// SecretPath holds the generated signing key when auth.session_secret is unset.
func (c Config) SecretPath() string {
	return filepath.Join(c.DataDir, "session.key")
}

// Load reads .env, then the environment (INVENTORY_*), then an optional YAML
// file named by INVENTORY_CONFIG or found at <data_dir>/config.yaml.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	path := os.Getenv(EnvConfigFile)
	if path == "" {
		candidate := filepath.Join(expandHome(v.GetString("data_dir")), "config.yaml")
		if _, err := os.Stat(candidate); err == nil {
			path = candidate
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("decode config: %w", err)
	}
	c.DataDir = expandHome(c.DataDir)
	c.ExportDir = expandHome(c.ExportDir)
	c.SeedPath = expandHome(c.SeedPath)
	c.Metrics.Textfile = expandHome(c.Metrics.Textfile)

	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

func setDefaults(v *viper.Viper) {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	exeDir := "."
	if exe, err := os.Executable(); err == nil {
		exeDir = filepath.Dir(exe)
	}

	v.SetDefault("data_dir", filepath.Join(home, ".embassyfx"))
	v.SetDefault("db_file", "embassy.db")
	v.SetDefault("seed_path", filepath.Join(exeDir, "bootstrap", "seed.db"))
	v.SetDefault("export_dir", filepath.Join(home, "Documents", "EmbassyInventory", "exports"))
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("auth.username", "finance")
	v.SetDefault("auth.password_hash", "")
	v.SetDefault("auth.session_secret", "")
	v.SetDefault("auth.session_ttl", 12*time.Hour)
	v.SetDefault("inventory.low_stock_threshold", 5)
	v.SetDefault("metrics.textfile", "")
}

// Validate fails fast on settings the program cannot run with.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.DataDir) == "" {
		errs = append(errs, errors.New("data_dir is required"))
	}
	if c.DBFile == "" || filepath.Base(c.DBFile) != c.DBFile {
		errs = append(errs, fmt.Errorf("db_file %q must be a plain file name", c.DBFile))
	}
	if strings.TrimSpace(c.ExportDir) == "" {
		errs = append(errs, errors.New("export_dir is required"))
	}
	switch strings.ToLower(c.Log.Format) {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q must be console or json", c.Log.Format))
	}
	if strings.TrimSpace(c.Auth.Username) == "" {
		errs = append(errs, errors.New("auth.username is required"))
	}
	if c.Auth.SessionTTL <= 0 {
		errs = append(errs, errors.New("auth.session_ttl must be positive"))
	}
	if c.Inventory.LowStockThreshold < 0 {
		errs = append(errs, errors.New("inventory.low_stock_threshold must be >= 0"))
	}
	return errors.Join(errs...)
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
