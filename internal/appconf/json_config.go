package appconf

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"shuttle.campusbus.org/internal/utils"
)

// JSONConfig mirrors the on-disk config file. Empty fields keep their defaults.
type JSONConfig struct {
	Port            int      `json:"port" validate:"gte=0,lte=65535"`
	Env             string   `json:"env" validate:"omitempty,oneof=development test production"`
	Verbose         bool     `json:"verbose"`
	RateLimit       *int     `json:"rate-limit" validate:"omitempty,gte=0"`
	NightCutoff     string   `json:"night-cutoff"`
	SchedulePath    string   `json:"schedule-path"`
	PrefsPath       string   `json:"prefs-path"`
	CacheName       string   `json:"cache-name"`
	NatsURL         string   `json:"nats-url" validate:"omitempty,url"`
	NatsPrefix      string   `json:"nats-subject-prefix"`
	DefaultLang     string   `json:"default-lang" validate:"omitempty,oneof=en zh"`
	ClockEnvVar     string   `json:"clock-env-var"`
	ClockFile       string   `json:"clock-file"`
	ClockTick       string   `json:"clock-tick"`
	ScheduleRefresh string   `json:"schedule-refresh"`
	TrustedProxies  []string `json:"trusted-proxies" validate:"omitempty,dive,cidr|ip"`
	AssetOrigin     string   `json:"asset-origin" validate:"omitempty,url"`
}

// LoadFromFile reads and validates a JSON config file.
func LoadFromFile(path string) (*JSONConfig, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg JSONConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse JSON config: %w", err)
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// ToAppConfig resolves the file values over Default().
func (j *JSONConfig) ToAppConfig() (Config, error) {
	c := Default()
	if j.Port != 0 {
		c.Port = j.Port
	}
	if j.Env != "" {
		c.Env = ParseEnvironment(j.Env)
	}
	c.Verbose = j.Verbose
	if j.RateLimit != nil {
		c.RateLimit = *j.RateLimit
	}
	if j.NightCutoff != "" {
		m, err := utils.TimeToMinutes(j.NightCutoff)
		if err != nil {
			return Config{}, fmt.Errorf("invalid configuration: night-cutoff: %w", err)
		}
		c.NightCutoff = m
	}
	if j.SchedulePath != "" {
		c.SchedulePath = j.SchedulePath
	}
	if j.PrefsPath != "" {
		c.PrefsPath = j.PrefsPath
	}
	if j.CacheName != "" {
		c.CacheName = j.CacheName
	}
	c.NatsURL = j.NatsURL
	if j.NatsPrefix != "" {
		c.NatsSubjectPrefix = j.NatsPrefix
	}
	if j.DefaultLang != "" {
		c.DefaultLang = j.DefaultLang
	}
	c.ClockEnvVar = j.ClockEnvVar
	c.ClockFile = j.ClockFile
	c.TrustedProxies = j.TrustedProxies
	c.AssetOrigin = j.AssetOrigin

	var err error
	if c.ClockTick, err = parseDurationOr(j.ClockTick, c.ClockTick); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: clock-tick: %w", err)
	}
	if c.ScheduleRefresh, err = parseDurationOr(j.ScheduleRefresh, c.ScheduleRefresh); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: schedule-refresh: %w", err)
	}

	return c, c.Validate()
}

func parseDurationOr(s string, fallback time.Duration) (time.Duration, error) {
	if s == "" {
		return fallback, nil
	}
	return time.ParseDuration(s)
}
