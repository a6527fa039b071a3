package cmd

import (
	"fmt"

	"github.com/Chative-core-poc-v1/bookstore/internal/agent/model"
	"github.com/Chative-core-poc-v1/bookstore/internal/core"
	pkgredis "github.com/Chative-core-poc-v1/bookstore/pkg/redis"
	"github.com/kelseyhightower/envconfig"
)

// AppConfig defines all configurable parameters of the service,
// sourced from environment variables (loaded from .env for local runs).
type AppConfig struct {
	Env      string `envconfig:"APP_ENV" default:"development"`
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`

	// Infrastructure
	Redis pkgredis.Config

	Store      model.StoreConfig
	Session    model.SessionConfig
	Commerce   model.CommerceConfig
	Classifier model.ClassifierModelConfig
}

func (c AppConfig) Environment() core.Environment {
	return core.ParseEnvironment(c.Env)
}

func loadConfig() (AppConfig, error) {
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return AppConfig{}, fmt.Errorf("process environment config: %w", err)
	}
	switch cfg.Store.Backend {
	case backendMemory, backendRedis, backendSQLite:
	default:
		return AppConfig{}, fmt.Errorf("unknown STORE_BACKEND %q", cfg.Store.Backend)
	}
	switch cfg.Session.Backend {
	case backendMemory, backendRedis:
	default:
		return AppConfig{}, fmt.Errorf("unknown SESSION_BACKEND %q", cfg.Session.Backend)
	}
	return cfg, nil
}
