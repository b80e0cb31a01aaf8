package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

type Config struct {
	Mode   string `mapstructure:"mode"`
	Server struct {
		HTTPPort string        `mapstructure:"HTTPPort"`
		Timeout  time.Duration `mapstructure:"HTTPTimeout"`
	} `mapstructure:"server"`
	Repositories struct {
		Postgres struct {
			Host     string `mapstructure:"host"`
			Port     string `mapstructure:"port"`
			Username string `mapstructure:"username"`
			Password string `mapstructure:"password"`
			DB       string `mapstructure:"db"`
			SSLMode  string `mapstructure:"SSLMODE"`
		} `mapstructure:"postgres"`
	} `mapstructure:"repositories"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Usage     UsageConfig     `mapstructure:"usage"`
	Upstream  UpstreamConfig  `mapstructure:"upstream"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
}

// JWTConfig carries everything the token service needs. SecretKey is
// required and has no fallback: an unset secret is a deployment error,
// not something to paper over with a dev default.
type JWTConfig struct {
	SecretKey  string        `mapstructure:"secretKey"`
	TokenTTL   time.Duration `mapstructure:"tokenTTL"`
	Issuer     string        `mapstructure:"issuer"`
	CookieName string        `mapstructure:"cookieName"`
}

type UsageConfig struct {
	FreeLimit int64 `mapstructure:"freeLimit"`
}

type UpstreamConfig struct {
	AnalyzerURL    string        `mapstructure:"analyzerURL"`
	SuggestionsURL string        `mapstructure:"suggestionsURL"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowedOrigins"`
}

type RateLimitConfig struct {
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// IsProduction controls the cookie attributes: Secure + SameSite=None in
// production, SameSite=Lax in development so the local frontend works
// over plain HTTP.
func (c *Config) IsProduction() bool {
	return c.Mode == "production"
}

func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	// Environment overrides: RESUMATCH_JWT_SECRETKEY, RESUMATCH_MODE, ...
	v.SetEnvPrefix("RESUMATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %w", err)
		}
	}

	if err := v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

func (c *Config) validate() error {
	if c.JWT.SecretKey == "" {
		return errors.New("jwt.secretKey is not configured (set RESUMATCH_JWT_SECRETKEY)")
	}
	if c.JWT.TokenTTL <= 0 {
		c.JWT.TokenTTL = time.Hour
	}
	if c.JWT.CookieName == "" {
		c.JWT.CookieName = "token"
	}
	if c.Usage.FreeLimit <= 0 {
		c.Usage.FreeLimit = 20
	}
	if c.Upstream.Timeout <= 0 {
		c.Upstream.Timeout = 30 * time.Second
	}
	return nil
}

// ConnectionURL assembles the postgres URL used by both the pool and the
// migration runner.
func (c *Config) ConnectionURL() string {
	pg := c.Repositories.Postgres
	return fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=%s",
		pg.Username, pg.Password, pg.Host, pg.Port, pg.DB, pg.SSLMode)
}
