package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Questions struct {
		CacheTTL string `yaml:"cacheTtl"`
	} `yaml:"questions"`
	Classifier struct {
		BaseURL      string `yaml:"baseUrl"`
		Timeout      string `yaml:"timeout"`
		ProbeTimeout string `yaml:"probeTimeout"`
		LivenessTTL  string `yaml:"livenessTtl"`
	} `yaml:"classifier"`
}

// Load reads YAML config from path. A missing file yields the zero config so
// the service can run on defaults and environment overrides.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return cfg, err
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}
	if url := os.Getenv("CLASSIFIER_URL"); url != "" {
		cfg.Classifier.BaseURL = url
	}
	return cfg, nil
}

// Duration parses a duration string or returns the fallback if empty.
func Duration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
