package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/CIDgravity/snakelet"
)

// config structure
type Config struct {
	API     APIConfig     `mapstructure:"API"`
	Github  GithubConfig  `mapstructure:"GITHUB"`
	Tasks   TasksConfig   `mapstructure:"TASKS"`
	Storage StorageConfig `mapstructure:"STORAGE"`
	Logs    LogsConfig    `mapstructure:"LOGS"`
}

type APIConfig struct {
	ListenPort string `mapstructure:"ListenPort"`
	BaseURL    string `mapstructure:"BaseURL"` // public playground url, used to build share links
}

type GithubConfig struct {
	Token             string        `mapstructure:"Token"`
	BaseURL           string        `mapstructure:"BaseURL"` // empty = api.github.com
	SearchPerPage     int           `mapstructure:"SearchPerPage"`
	TrendingPerPage   int           `mapstructure:"TrendingPerPage"`
	MaxRetries        int           `mapstructure:"MaxRetries"`
	RetryInitialDelay time.Duration `mapstructure:"RetryInitialDelay"`
	RetryMaxDelay     time.Duration `mapstructure:"RetryMaxDelay"`
	CacheSize         int           `mapstructure:"CacheSize"`
	SearchCacheTTL    time.Duration `mapstructure:"SearchCacheTTL"`
	TrendingCacheTTL  time.Duration `mapstructure:"TrendingCacheTTL"`
	RequestsPerHour   int           `mapstructure:"RequestsPerHour"`
}

type TasksConfig struct {
	MaxParallelTasksAllowed int `mapstructure:"MaxParallelTasksAllowed"`
}

type StorageConfig struct {
	Driver string `mapstructure:"Driver"` // bolt | sqlite | memory
	Path   string `mapstructure:"Path"`
}

type LogsConfig struct {
	Level            string `mapstructure:"Level"` // error | warn | info | debug - case insensitive
	OutputLogsAsJSON bool   `mapstructure:"OutputLogsAsJSON"`
}

// Load reads the config file and merges it over the defaults
// when path is empty, config/config.toml is looked up next to the binary then in the working directory
// the returned config is never nil: on error it holds the defaults
func Load(path string) (*Config, error) {
	cfg := GetDefault()

	if path == "" {
		found, err := lookupConfigFile()
		if err != nil {
			return cfg, err
		}

		path = found
	}

	if _, err := snakelet.InitAndLoad(cfg, path); err != nil {
		return GetDefault(), fmt.Errorf("loading %s: %w", path, err)
	}

	return cfg, nil
}

func lookupConfigFile() (string, error) {
	dir, err := filepath.Abs(filepath.Dir(os.Args[0]))
	if err != nil {
		return "", err
	}

	candidates := []string{
		filepath.Join(dir, "config", "config.toml"),
		filepath.Join("config", "config.toml"),
	}

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
	}

	return "", fmt.Errorf("config/config.toml: %w", os.ErrNotExist)
}

// GetDefault
func GetDefault() *Config {
	return &Config{
		API: APIConfig{
			ListenPort: "5000",
			BaseURL:    "http://localhost:5000/",
		},
		Github: GithubConfig{
			SearchPerPage:     50,
			TrendingPerPage:   30,
			MaxRetries:        3,
			RetryInitialDelay: time.Second,
			RetryMaxDelay:     30 * time.Second,
			CacheSize:         128,
			SearchCacheTTL:    5 * time.Minute,
			TrendingCacheTTL:  30 * time.Minute,
			RequestsPerHour:   600,
		},
		Tasks: TasksConfig{
			MaxParallelTasksAllowed: 8,
		},
		Storage: StorageConfig{
			Driver: "bolt",
			Path:   "devhub.db",
		},
		Logs: LogsConfig{
			Level:            "debug",
			OutputLogsAsJSON: false,
		},
	}
}
