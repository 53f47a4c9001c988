package config

import (
	"errors"
	"fmt"
	"strings"

	"carcatalog/content/internal/domain"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Storyblok StoryblokConfig `mapstructure:"storyblok"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Log       LogConfig       `mapstructure:"log"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
}

// StoryblokConfig holds content API configuration
type StoryblokConfig struct {
	BaseURL              string `mapstructure:"base_url"`
	Token                string `mapstructure:"token"`
	Version              string `mapstructure:"version"`
	RootPrefix           string `mapstructure:"root_prefix"`
	PerPage              int    `mapstructure:"per_page"`
	Timeout              int    `mapstructure:"timeout"`
	MaxRetries           int    `mapstructure:"max_retries"`
	MaxWorkers           int    `mapstructure:"max_workers"`
	MaxRequestsPerSecond int    `mapstructure:"max_requests_per_second"`
	Proxy                string `mapstructure:"proxy"`
}

// RedisConfig holds Redis connection details for the refresh event stream
type RedisConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	Password      string `mapstructure:"password"`
	Database      int    `mapstructure:"database"`
	ConsumerGroup string `mapstructure:"consumer_group"`
	MinIdleTime   int    `mapstructure:"min_idle_time"`
	Workers       int    `mapstructure:"workers"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CatalogConfig holds the display reference data
type CatalogConfig struct {
	Categories []domain.Category `mapstructure:"categories"`
}

// Load loads configuration from a YAML file with environment variable
// overrides. An empty path searches for config.yaml in the current directory;
// a missing file is not an error in that case, so that the whole
// configuration can come from the environment.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if len(config.Catalog.Categories) == 0 {
		config.Catalog.Categories = append([]domain.Category(nil), domain.DefaultCategories...)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks the values the content pipeline cannot run without
func (c *Config) Validate() error {
	if c.Storyblok.Token == "" {
		return fmt.Errorf("storyblok.token is required")
	}
	if c.Storyblok.BaseURL == "" {
		return fmt.Errorf("storyblok.base_url is required")
	}
	if !strings.HasSuffix(c.Storyblok.RootPrefix, "/") {
		return fmt.Errorf("storyblok.root_prefix must end with '/', got %q", c.Storyblok.RootPrefix)
	}
	if c.Storyblok.MaxWorkers < 1 {
		return fmt.Errorf("storyblok.max_workers must be at least 1, got %d", c.Storyblok.MaxWorkers)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("storyblok.base_url", "https://api-us.storyblok.com/v2")
	v.SetDefault("storyblok.token", "")
	v.SetDefault("storyblok.version", domain.VersionPublished)
	v.SetDefault("storyblok.root_prefix", "brands/")
	v.SetDefault("storyblok.per_page", 100)
	v.SetDefault("storyblok.timeout", 30)
	v.SetDefault("storyblok.max_retries", 3)
	v.SetDefault("storyblok.max_workers", 8)
	v.SetDefault("storyblok.max_requests_per_second", 25)
	v.SetDefault("storyblok.proxy", "")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.database", 0)
	v.SetDefault("redis.consumer_group", "catalog_refresh")
	v.SetDefault("redis.min_idle_time", 120)
	v.SetDefault("redis.workers", 1)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}
