// Package config loads seedcash settings from config.yaml and SEEDCASH_*
// environment variables through viper.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/seedcash/seedcash/pkg/types"
)

const (
	configName = "config"
	envPrefix  = "SEEDCASH"
)

// Config is the resolved runtime configuration.
type Config struct {
	Environment string `mapstructure:"environment"`
	Debug       bool   `mapstructure:"debug"`

	Slip39  Slip39Config  `mapstructure:"slip39"`
	Address AddressConfig `mapstructure:"address"`
	Watch   WatchConfig   `mapstructure:"watch"`
}

type Slip39Config struct {
	IterationExponent int  `mapstructure:"iteration_exponent"`
	Extendable        bool `mapstructure:"extendable"`
}

type AddressConfig struct {
	Format types.AddressFormat `mapstructure:"format"`
	Count  int                 `mapstructure:"count"`
}

// WatchConfig locates the watch-only registry. Password encrypts both the
// database at rest and its backups; empty disables encryption.
type WatchConfig struct {
	DBPath    string `mapstructure:"db_path"`
	BackupDir string `mapstructure:"backup_dir"`
	Password  string `mapstructure:"password"`

	S3 S3Config `mapstructure:"s3"`
}

// S3Config mirrors registry backups to S3-compatible storage when Endpoint
// is set.
type S3Config struct {
	Endpoint  string `mapstructure:"endpoint"`
	Bucket    string `mapstructure:"bucket"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Region    string `mapstructure:"region"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Prefix    string `mapstructure:"prefix"`
}

// SetDefaults registers the default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")
	v.SetDefault("debug", false)
	v.SetDefault("slip39.iteration_exponent", 1)
	v.SetDefault("slip39.extendable", true)
	v.SetDefault("address.format", string(types.AddressFormatCashAddr))
	v.SetDefault("address.count", 5)
	v.SetDefault("watch.db_path", filepath.Join(".", "watch"))
	v.SetDefault("watch.backup_dir", filepath.Join(".", "backups"))
	v.SetDefault("watch.password", "")
	v.SetDefault("watch.s3.endpoint", "")
	v.SetDefault("watch.s3.bucket", "")
	v.SetDefault("watch.s3.access_key", "")
	v.SetDefault("watch.s3.secret_key", "")
	v.SetDefault("watch.s3.region", "")
	v.SetDefault("watch.s3.use_ssl", true)
	v.SetDefault("watch.s3.prefix", "")
}

// InitViperConfig prepares the global viper instance. A missing config file
// is not an error.
func InitViperConfig() error {
	return initViper(viper.GetViper(), "$HOME/.seedcash", ".")
}

func initViper(v *viper.Viper, paths ...string) error {
	SetDefaults(v)
	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}
	return nil
}

// Load decodes the global viper state into a Config.
func Load() (Config, error) {
	return load(viper.GetViper())
}

func load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if f, err := types.ParseAddressFormat(string(cfg.Address.Format)); err == nil {
		cfg.Address.Format = f
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges that viper cannot express.
func (c Config) Validate() error {
	if c.Slip39.IterationExponent < 0 || c.Slip39.IterationExponent > 15 {
		return fmt.Errorf("slip39.iteration_exponent must be between 0 and 15, got %d", c.Slip39.IterationExponent)
	}
	if _, err := types.ParseAddressFormat(string(c.Address.Format)); err != nil {
		return err
	}
	if c.Address.Count < 1 {
		return fmt.Errorf("address.count must be positive, got %d", c.Address.Count)
	}
	return nil
}
