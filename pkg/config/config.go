package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Geolocation provider names accepted in geoip.provider.
const (
	ProviderMaxMind = "maxmind"
	ProviderIPWhois = "ipwhois"
)

type Config struct {
	Server struct {
		Addr           string   `yaml:"addr"`
		TrustedProxies []string `yaml:"trusted_proxies"`
	} `yaml:"server"`

	Rules struct {
		File string `yaml:"file"`
		// DataCenterPoints enables the data center ASN preset when positive.
		DataCenterPoints int `yaml:"datacenter_points"`
	} `yaml:"rules"`

	Blacklist struct {
		File        string `yaml:"file"`
		Reason      string `yaml:"reason"`
		RedisAddr   string `yaml:"redis_addr"`
		RedisPrefix string `yaml:"redis_prefix"`
	} `yaml:"blacklist"`

	GeoIP struct {
		Provider string        `yaml:"provider"`
		CityDB   string        `yaml:"city_db"`
		ASNDB    string        `yaml:"asn_db"`
		BaseURL  string        `yaml:"base_url"`
		Timeout  time.Duration `yaml:"timeout"`
	} `yaml:"geoip"`

	Log struct {
		Level      string `yaml:"level"`
		Dir        string `yaml:"dir"`
		Filename   string `yaml:"filename"`
		MaxAge     int    `yaml:"max_age"`
		RotateTime int    `yaml:"rotate_time"`
	} `yaml:"log"`
}

// Default returns the configuration used for fields a file leaves empty.
func Default() *Config {
	cfg := &Config{}
	cfg.Server.Addr = ":8080"
	cfg.Blacklist.Reason = "file"
	cfg.GeoIP.Provider = ProviderIPWhois
	cfg.GeoIP.Timeout = 5 * time.Second
	cfg.Log.Level = "INFO"
	cfg.Log.Filename = "ipreputation.log"
	cfg.Log.MaxAge = 24
	cfg.Log.RotateTime = 1
	return cfg
}

func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server addr is required")
	}
	switch c.GeoIP.Provider {
	case ProviderMaxMind:
		if c.GeoIP.CityDB == "" {
			return fmt.Errorf("geoip city_db is required for the maxmind provider")
		}
	case ProviderIPWhois:
	default:
		return fmt.Errorf("unknown geoip provider %q", c.GeoIP.Provider)
	}
	if c.GeoIP.Timeout < 0 {
		return fmt.Errorf("geoip timeout must not be negative")
	}
	if c.Rules.DataCenterPoints < 0 {
		return fmt.Errorf("rules datacenter_points must not be negative")
	}
	if c.Log.MaxAge <= 0 || c.Log.RotateTime <= 0 {
		return fmt.Errorf("log max_age and rotate_time must be positive")
	}
	return nil
}

// LoadConfig reads filename on top of Default and validates the result.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}
