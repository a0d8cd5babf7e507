package config

import (
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type CORS struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type Config struct {
	Listen  string  `yaml:"listen"`
	Admin   Admin   `yaml:"admin"`
	Logger  Logger  `yaml:"logger"`
	Storage Storage `yaml:"storage"`
	Auth    Auth    `yaml:"auth"`
	CORS    CORS    `yaml:"cors"`
	Redis   Redis   `yaml:"redis"`
	Fetcher Fetcher `yaml:"fetcher"`
}

type Admin struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

type Logger struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

type Storage struct {
	Database string `yaml:"database"`
}

type Auth struct {
	JWT    JWT    `yaml:"jwt"`
	GitHub GitHub `yaml:"github"`
	Local  Local  `yaml:"local"`
}

// Local defines configuration for email/password authentication.
type Local struct {
	Enabled bool `yaml:"enabled"`
}

type JWT struct {
	Secret      string `yaml:"secret"`
	ExpireHours int    `yaml:"expire_hours"`
}

type GitHub struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RedirectURI  string `yaml:"redirect_uri"`
}

type Redis struct {
	Addr     string `yaml:"addr"` // empty disables the leaderboard cache
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type Fetcher struct {
	LeetcodeURL   string `yaml:"leetcode_url"`
	CodeforcesURL string `yaml:"codeforces_url"`
	GithubURL     string `yaml:"github_url"`
	BatchSize     int    `yaml:"batch_size"`
	ItemDelayMS   int    `yaml:"item_delay_ms"`
	BatchDelayMS  int    `yaml:"batch_delay_ms"`
	CronSpec      string `yaml:"cron_spec"` // empty disables scheduled refresh
}

func Load(path string) (*Config, error) {
	// Secrets may come from a local .env; missing file is fine.
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("ALGOJOURNEY_JWT_SECRET"); v != "" {
		cfg.Auth.JWT.Secret = v
	}
	if v := os.Getenv("ALGOJOURNEY_GITHUB_CLIENT_SECRET"); v != "" {
		cfg.Auth.GitHub.ClientSecret = v
	}

	if cfg.Fetcher.LeetcodeURL == "" {
		cfg.Fetcher.LeetcodeURL = "https://leetcode.com/graphql"
	}
	if cfg.Fetcher.CodeforcesURL == "" {
		cfg.Fetcher.CodeforcesURL = "https://codeforces.com/api"
	}
	if cfg.Fetcher.GithubURL == "" {
		cfg.Fetcher.GithubURL = "https://api.github.com"
	}
	if cfg.Fetcher.BatchSize <= 0 {
		cfg.Fetcher.BatchSize = 5
	}
	if cfg.Fetcher.ItemDelayMS <= 0 {
		cfg.Fetcher.ItemDelayMS = 1000
	}
	if cfg.Fetcher.BatchDelayMS <= 0 {
		cfg.Fetcher.BatchDelayMS = 5000
	}

	return &cfg, nil
}
