package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Redis  RedisConfig  `mapstructure:"redis"`
	State  StateConfig  `mapstructure:"state"`
	Hold   HoldConfig   `mapstructure:"hold"`
	Offers OffersConfig `mapstructure:"offers"`
	JWT    JWTConfig    `mapstructure:"jwt"`
	Admin  AdminConfig  `mapstructure:"admin"`
	CORS   CORSConfig   `mapstructure:"cors"`
	Log    LogConfig    `mapstructure:"log"`
}

type ServerConfig struct {
	Host                    string        `mapstructure:"host"`
	Port                    int           `mapstructure:"port"`
	Mode                    string        `mapstructure:"mode"`
	ReadTimeout             time.Duration `mapstructure:"read_timeout"`
	WriteTimeout            time.Duration `mapstructure:"write_timeout"`
	GracefulShutdownTimeout time.Duration `mapstructure:"graceful_shutdown_timeout"`
}

// RedisConfig addresses the networked hold store. Addr accepts host:port or a redis:// URL.
type RedisConfig struct {
	Addr           string        `mapstructure:"addr"`
	Password       string        `mapstructure:"password"`
	DB             int           `mapstructure:"db"`
	PoolSize       int           `mapstructure:"pool_size"`
	DialTimeout    time.Duration `mapstructure:"dial_timeout"`
	HealthInterval time.Duration `mapstructure:"health_interval"`
}

type StateConfig struct {
	Backend string `mapstructure:"backend"` // "auto" | "redis" | "memory"
}

type HoldConfig struct {
	TTL           time.Duration `mapstructure:"ttl"`
	MarkupRate    float64       `mapstructure:"markup_rate"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

type OffersConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type JWTConfig struct {
	SigningKey string `mapstructure:"signing_key"`
	Issuer     string `mapstructure:"issuer"`
}

type AdminConfig struct {
	UserIDs []string `mapstructure:"user_ids"`
}

type CORSConfig struct {
	AllowedOrigins   []string      `mapstructure:"allowed_origins"`
	AllowedMethods   []string      `mapstructure:"allowed_methods"`
	AllowedHeaders   []string      `mapstructure:"allowed_headers"`
	AllowCredentials bool          `mapstructure:"allow_credentials"`
	MaxAge           time.Duration `mapstructure:"max_age"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.graceful_shutdown_timeout", 15*time.Second)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.dial_timeout", 2*time.Second)
	v.SetDefault("redis.health_interval", 5*time.Second)

	v.SetDefault("state.backend", "auto")

	v.SetDefault("hold.ttl", 600*time.Second)
	v.SetDefault("hold.markup_rate", 0.15)
	v.SetDefault("hold.sweep_interval", 30*time.Second)

	v.SetDefault("offers.base_url", "")
	v.SetDefault("offers.api_key", "")
	v.SetDefault("offers.timeout", 10*time.Second)

	v.SetDefault("jwt.signing_key", "")
	v.SetDefault("jwt.issuer", "holdbroker")
	v.SetDefault("admin.user_ids", []string{})

	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"Origin", "Content-Type", "Authorization"})
	v.SetDefault("cors.allow_credentials", false)
	v.SetDefault("cors.max_age", 12*time.Hour)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Load reads config.yaml if present, overlays environment variables, and returns Config.
// Values are read once at startup; nothing reloads them.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Environment variable override: HOLD_TTL -> hold.ttl, REDIS_ADDR -> redis.addr
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	cfg := &Config{}
	decodeHook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		secondsDurationHook(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(cfg, decodeHook); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the hold lifecycle cannot operate with.
func (c *Config) Validate() error {
	if c.Hold.TTL <= 0 {
		return errors.New("hold.ttl must be positive")
	}
	if c.Hold.MarkupRate < 0 {
		return errors.New("hold.markup_rate must not be negative")
	}
	if c.Hold.SweepInterval <= 0 {
		return errors.New("hold.sweep_interval must be positive")
	}
	switch c.State.Backend {
	case "auto", "redis", "memory":
	default:
		return errors.New("state.backend must be one of auto, redis, memory")
	}
	return nil
}

// SetConfigFile bypasses viper's search path, so a missing file surfaces as a plain fs error.
func isMissingFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

// secondsDurationHook reads a bare integer as whole seconds, so HOLD_TTL=600 and
// "ttl: 600" both mean ten minutes. Strings with a unit fall through to the
// standard duration parser.
func secondsDurationHook() mapstructure.DecodeHookFuncType {
	durationType := reflect.TypeOf(time.Duration(0))
	const maxSeconds = math.MaxInt64 / int64(time.Second)

	return func(from, to reflect.Type, data any) (any, error) {
		if to != durationType || from == durationType {
			return data, nil
		}

		var seconds int64
		switch from.Kind() {
		case reflect.String:
			n, err := strconv.ParseInt(strings.TrimSpace(reflect.ValueOf(data).String()), 10, 64)
			if err != nil {
				return data, nil
			}
			seconds = n
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			seconds = reflect.ValueOf(data).Int()
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			u := reflect.ValueOf(data).Uint()
			if u > uint64(maxSeconds) {
				return nil, fmt.Errorf("duration %d seconds out of range", u)
			}
			seconds = int64(u)
		default:
			return data, nil
		}

		if seconds > maxSeconds || seconds < -maxSeconds {
			return nil, fmt.Errorf("duration %d seconds out of range", seconds)
		}
		return time.Duration(seconds) * time.Second, nil
	}
}
