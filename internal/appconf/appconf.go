// Package appconf defines the runtime configuration of the shuttle server and
// the terminal board.
package appconf

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Environment selects logging format and whether debug pages are served.
type Environment int

const (
	Development Environment = iota
	Test
	Production
)

func (e Environment) String() string {
	switch e {
	case Test:
		return "test"
	case Production:
		return "production"
	default:
		return "development"
	}
}

// ParseEnvironment maps a name to an Environment. Unknown names fall back to Development.
func ParseEnvironment(s string) Environment {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "test":
		return Test
	case "production", "prod":
		return Production
	default:
		return Development
	}
}

const (
	DefaultPort              = 4000
	DefaultRateLimit         = 100
	DefaultNightCutoff       = 1170 // 19:30
	DefaultPrefsPath         = "shuttle-prefs.db"
	DefaultCacheName         = "campus-shuttle-v4"
	DefaultNatsSubjectPrefix = "shuttle.live"
	DefaultLang              = "zh"
	DefaultClockTick         = time.Second
	DefaultScheduleRefresh   = 30 * time.Second
)

// Config is the validated, fully resolved configuration.
type Config struct {
	Port              int           `validate:"gte=0,lte=65535"`
	Env               Environment   `validate:"gte=0,lte=2"`
	Verbose           bool
	RateLimit         int           `validate:"gte=0"`
	NightCutoff       int           `validate:"gte=0,lte=1439"`
	SchedulePath      string
	PrefsPath         string        `validate:"required"`
	CacheName         string        `validate:"required"`
	NatsURL           string        `validate:"omitempty,url"`
	NatsSubjectPrefix string        `validate:"required"`
	DefaultLang       string        `validate:"oneof=en zh"`
	ClockEnvVar       string
	ClockFile         string
	ClockTick         time.Duration `validate:"gt=0"`
	ScheduleRefresh   time.Duration `validate:"gt=0"`
	// TrustedProxies are addresses or CIDR ranges allowed to set X-Forwarded-For.
	TrustedProxies    []string      `validate:"dive,cidr|ip"`
	// AssetOrigin, when set, is the remote origin the asset worker fetches
	// the board shell from instead of the in-process pages.
	AssetOrigin       string        `validate:"omitempty,url"`
}

// Default returns a Config with every field at its default.
func Default() Config {
	return Config{
		Port:              DefaultPort,
		Env:               Development,
		RateLimit:         DefaultRateLimit,
		NightCutoff:       DefaultNightCutoff,
		PrefsPath:         DefaultPrefsPath,
		CacheName:         DefaultCacheName,
		NatsSubjectPrefix: DefaultNatsSubjectPrefix,
		DefaultLang:       DefaultLang,
		ClockTick:         DefaultClockTick,
		ScheduleRefresh:   DefaultScheduleRefresh,
	}
}

var validate = validator.New()

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// LoadDotEnv loads KEY=VALUE pairs from the given files (".env" when none are
// given) into the process environment. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overlays SHUTTLE_* environment variables on c.
func ApplyEnv(c Config) Config {
	if v, ok := lookupInt("SHUTTLE_PORT"); ok {
		c.Port = v
	}
	if v := os.Getenv("SHUTTLE_ENV"); v != "" {
		c.Env = ParseEnvironment(v)
	}
	if v := os.Getenv("SHUTTLE_VERBOSE"); v != "" {
		c.Verbose, _ = strconv.ParseBool(v)
	}
	if v, ok := lookupInt("SHUTTLE_RATE_LIMIT"); ok {
		c.RateLimit = v
	}
	if v := os.Getenv("SHUTTLE_SCHEDULE_PATH"); v != "" {
		c.SchedulePath = v
	}
	if v := os.Getenv("SHUTTLE_PREFS_PATH"); v != "" {
		c.PrefsPath = v
	}
	if v := os.Getenv("SHUTTLE_CACHE_NAME"); v != "" {
		c.CacheName = v
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		c.NatsURL = v
	}
	if v := os.Getenv("SHUTTLE_LANG"); v != "" {
		c.DefaultLang = v
	}
	if v := os.Getenv("SHUTTLE_TRUSTED_PROXIES"); v != "" {
		c.TrustedProxies = splitList(v)
	}
	if v := os.Getenv("SHUTTLE_ASSET_ORIGIN"); v != "" {
		c.AssetOrigin = v
	}
	return c
}

func lookupInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
