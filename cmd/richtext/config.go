package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/npillmayer/richtext"
	"github.com/npillmayer/richtext/store"
	redis "github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
)

// Config is read from an optional config file (YAML, TOML or JSON) and from
// environment variables prefixed with RICHTEXT_, e.g. RICHTEXT_REDIS_ADDR.
type Config struct {
	Unit  string `mapstructure:"unit"`  // runes, utf16 or bytes
	Merge bool   `mapstructure:"merge"` // coalesce equally styled runs
	IDs   string `mapstructure:"ids"`   // counter or uuid
	Store struct {
		Backend string `mapstructure:"backend"` // memory or redis
		Prefix  string `mapstructure:"prefix"`
	} `mapstructure:"store"`
	Redis struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`
}

func loadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetDefault("unit", richtext.Runes.String())
	v.SetDefault("merge", false)
	v.SetDefault("ids", "counter")
	v.SetDefault("store.backend", "memory")
	v.SetDefault("store.prefix", "richtext:field:")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetEnvPrefix("RICHTEXT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config %q: %w", path, err)
			}
		}
	}
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) engine() (*richtext.Engine, error) {
	unit, err := richtext.UnitFromString(cfg.Unit)
	if err != nil {
		return nil, err
	}
	opts := []richtext.Option{richtext.WithUnit(unit), richtext.WithMerging(cfg.Merge)}
	switch cfg.IDs {
	case "", "counter":
	case "uuid":
		opts = append(opts, richtext.WithIDSource(richtext.UUIDs()))
	default:
		return nil, fmt.Errorf("%w: unknown id source %q", richtext.ErrIllegalArguments, cfg.IDs)
	}
	return richtext.New(opts...), nil
}

func (cfg *Config) store(engine *richtext.Engine) (store.Store, func(), error) {
	switch cfg.Store.Backend {
	case "", "memory":
		tracer().Infof("memory store keeps fields for this run only")
		return store.NewMemoryStore(engine), func() {}, nil
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		return store.NewRedisStore(rdb, cfg.Store.Prefix, engine), func() { rdb.Close() }, nil
	}
	return nil, nil, fmt.Errorf("%w: unknown store backend %q", richtext.ErrIllegalArguments, cfg.Store.Backend)
}
