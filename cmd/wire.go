package cmd

import (
	"context"
	"fmt"

	"github.com/Chative-core-poc-v1/bookstore/internal/agent/classifier"
	"github.com/Chative-core-poc-v1/bookstore/internal/agent/commerce"
	"github.com/Chative-core-poc-v1/bookstore/internal/agent/dialogue"
	"github.com/Chative-core-poc-v1/bookstore/internal/agent/model"
	"github.com/Chative-core-poc-v1/bookstore/internal/agent/repo"
	"github.com/Chative-core-poc-v1/bookstore/internal/agent/session"
	logx "github.com/Chative-core-poc-v1/bookstore/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const (
	backendMemory = "memory"
	backendRedis  = "redis"
	backendSQLite = "sqlite"
)

// app holds the wired components and the resources to release on exit.
type app struct {
	router  *dialogue.Router
	rdb     *redis.Client
	closers []func() error
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			logx.Warn().Err(err).Msg("close failed")
		}
	}
}

type recordBackend interface {
	model.RecordStore
	model.Seeder
}

// redisClient connects on first use so memory-only setups never need Redis.
func (a *app) redisClient(ctx context.Context, cfg AppConfig) (*redis.Client, error) {
	if a.rdb != nil {
		return a.rdb, nil
	}
	c, err := cfg.Redis.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	a.closers = append(a.closers, c.Close)
	a.rdb = c
	return c, nil
}

func (a *app) openRecords(ctx context.Context, cfg AppConfig) (recordBackend, error) {
	switch cfg.Store.Backend {
	case backendSQLite:
		s, err := repo.OpenSQLite(cfg.Store.SQLitePath)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, s.Close)
		return s, nil
	case backendRedis:
		c, err := a.redisClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return repo.NewRedisRecordStore(c, cfg.Redis.KeyPrefix), nil
	default:
		s := repo.NewMemoryRecordStore()
		seed, err := loadSeed(cfg.Store.SeedFile)
		if err != nil {
			return nil, err
		}
		if err := seed.Apply(ctx, s); err != nil {
			return nil, err
		}
		logx.Info().Int("books", len(seed.Books)).Int("accounts", len(seed.Accounts)).Msg("in-memory catalog seeded")
		return s, nil
	}
}

func loadSeed(path string) (*repo.Seed, error) {
	if path == "" {
		return repo.DefaultSeed(), nil
	}
	return repo.LoadSeedFile(path)
}

func (a *app) openSessions(ctx context.Context, cfg AppConfig) (model.SessionStore, error) {
	if cfg.Session.Backend != backendRedis {
		return repo.NewMemorySessionStore(), nil
	}
	c, err := a.redisClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return repo.NewRedisSessionStore(c, cfg.Redis.KeyPrefix, cfg.Session.Timeout), nil
}

func newClassifier(ctx context.Context, cfg model.ClassifierModelConfig) (model.Classifier, error) {
	rules := classifier.RuleClassifier{}
	if !cfg.Enabled() {
		logx.Info().Msg("GEMINI_API_KEY not set, using rule-based intent classification")
		return rules, nil
	}
	cm, err := classifier.NewGeminiChatModel(ctx, cfg)
	if err != nil {
		return nil, err
	}
	mc, err := classifier.NewModelClassifier(ctx, cm, cfg)
	if err != nil {
		return nil, err
	}
	logx.Info().Str("model", cfg.Model).Float64("min_confidence", cfg.MinConfidence).Msg("LLM intent classification enabled")
	return classifier.Fallback{Primary: mc, Secondary: rules, MinConfidence: cfg.MinConfidence}, nil
}

func buildApp(ctx context.Context, cfg AppConfig) (_ *app, err error) {
	a := &app{}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	records, err := a.openRecords(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open record store: %w", err)
	}
	sessions, err := a.openSessions(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	cls, err := newClassifier(ctx, cfg.Classifier)
	if err != nil {
		return nil, fmt.Errorf("build classifier: %w", err)
	}

	a.router = dialogue.NewRouter(
		session.NewManager(sessions, cfg.Session.Timeout),
		commerce.NewEngine(records, cfg.Commerce),
		commerce.NewCatalog(records, cfg.Commerce.SearchLimit),
		cls,
	)
	logx.Info().
		Str("store", cfg.Store.Backend).
		Str("sessions", cfg.Session.Backend).
		Dur("session_timeout", cfg.Session.Timeout).
		Msg("bookstore assistant ready")
	return a, nil
}
