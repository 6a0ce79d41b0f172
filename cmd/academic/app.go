package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/uit-hub/academic-ledger/config"
	"github.com/uit-hub/academic-ledger/internal/application/command"
	"github.com/uit-hub/academic-ledger/internal/application/query"
	"github.com/uit-hub/academic-ledger/internal/domain/curriculum"
	"github.com/uit-hub/academic-ledger/internal/infrastructure/external/portal"
	"github.com/uit-hub/academic-ledger/internal/infrastructure/persistence/postgres"
	"github.com/uit-hub/academic-ledger/internal/infrastructure/persistence/redis"
	"github.com/uit-hub/academic-ledger/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// APPLICATION WIRING
// ══════════════════════════════════════════════════════════════════════════════

// app holds the wired dependencies of one CLI invocation.
type app struct {
	cfg *config.Config
	log *logger.Logger

	db    *postgres.Connection
	redis *redis.Cache

	ledgers  *postgres.LedgerRepository
	programs *postgres.CurriculumRepository
	profiles *postgres.ProfileRepository

	// Interface-typed so a missing Redis stays a nil interface.
	ledgerCache interface {
		command.LedgerCache
		query.LedgerCache
	}
	locker command.SyncLocker
}

// newApp loads configuration, connects to PostgreSQL and, unless disabled,
// to Redis. A Redis failure degrades to no cache and an in-process lock.
func newApp(ctx context.Context) (*app, error) {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION AND LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	log := newLogger(cfg)

	a := &app{cfg: cfg, log: log}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. POSTGRESQL
	// ─────────────────────────────────────────────────────────────────────────
	dsn := cfg.Database.DSN()
	if dsn == "" {
		return nil, fmt.Errorf("database is not configured")
	}
	dbCfg := postgres.DefaultConfig(dsn)
	if cfg.Database.MaxOpenConns > 0 {
		dbCfg.MaxConns = int32(cfg.Database.MaxOpenConns)
	}
	if cfg.Database.MaxIdleConns > 0 {
		dbCfg.MinConns = int32(min(cfg.Database.MaxIdleConns, cfg.Database.MaxOpenConns))
	}
	if cfg.Database.ConnMaxLifetime > 0 {
		dbCfg.MaxConnLifetime = cfg.Database.ConnMaxLifetime
	}
	if cfg.Database.ConnMaxIdleTime > 0 {
		dbCfg.MaxConnIdleTime = cfg.Database.ConnMaxIdleTime
	}

	a.db, err = postgres.NewConnection(ctx, dbCfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	a.ledgers = postgres.NewLedgerRepository(a.db)
	a.programs = postgres.NewCurriculumRepository(a.db)
	a.profiles = postgres.NewProfileRepository(a.db)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. REDIS (optional)
	// ─────────────────────────────────────────────────────────────────────────
	a.locker = command.NewLocalSyncLocker()
	if !cfg.Redis.Disabled {
		cache, err := redis.NewCache(ctx, redisConfig(cfg.Redis))
		if err != nil {
			log.Warn("redis unavailable, cache disabled and sync lock is process-local", logger.Err(err))
		} else {
			a.redis = cache
			a.ledgerCache = redis.NewLedgerCache(cache, cfg.Redis.LedgerTTL)
			a.locker = redis.NewSyncLock(cache, cfg.Redis.SyncLockTTL, log)
		}
	}

	return a, nil
}

// close releases connections. Safe on a partially built app.
func (a *app) close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.Warn("failed to close redis", logger.Err(err))
		}
	}
	if a.db != nil {
		a.db.Close()
	}
	_ = a.log.Sync()
}

// migrateIfEnabled applies embedded migrations when db.auto_migrate is set.
func (a *app) migrateIfEnabled() error {
	if !a.cfg.Database.AutoMigrate {
		return nil
	}
	if _, err := a.db.Migrate(a.log); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (a *app) policy() curriculum.Policy {
	return policyFromConfig(a.cfg.Policy)
}

// portalClient builds the portal client from configuration.
func (a *app) portalClient() command.PortalClient {
	pc := a.cfg.Portal
	cfg := portal.DefaultClientConfig(pc.BaseURL)
	if pc.SessionCookieName != "" {
		cfg.SessionCookieName = pc.SessionCookieName
	}
	if pc.TranscriptPath != "" {
		cfg.TranscriptPath = pc.TranscriptPath
	}
	if pc.RegistrationPath != "" {
		cfg.RegistrationPath = pc.RegistrationPath
	}
	if pc.ProfilePath != "" {
		cfg.ProfilePath = pc.ProfilePath
	}
	if pc.RequestTimeout > 0 {
		cfg.Timeout = pc.RequestTimeout
	}
	if pc.UserAgent != "" {
		cfg.UserAgent = pc.UserAgent
	}
	cfg.Logger = a.log

	return &portalAdapter{client: portal.NewClient(cfg)}
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

func newLogger(cfg *config.Config) *logger.Logger {
	opts := logger.DefaultOptions()
	opts.Output = os.Stderr
	opts.Level = logger.ParseLevel(cfg.Observability.LogLevel)
	if cfg.App.Debug {
		opts.Level = logger.LevelDebug
	}
	if cfg.Observability.LogFormat != "" {
		opts.Format = cfg.Observability.LogFormat
	}
	return logger.New(opts).With(
		logger.String("app", cfg.App.Name),
		logger.String("env", string(cfg.App.Environment)),
	)
}

func redisConfig(c config.RedisConfig) redis.Config {
	rc := redis.DefaultConfig()
	rc.URL = c.URL
	if c.Host != "" {
		rc.Host = c.Host
	}
	if c.Port > 0 {
		rc.Port = c.Port
	}
	rc.Password = c.Password
	rc.DB = c.DB
	if c.PoolSize > 0 {
		rc.PoolSize = c.PoolSize
	}
	if c.MinIdleConns > 0 {
		rc.MinIdleConns = c.MinIdleConns
	}
	if c.DialTimeout > 0 {
		rc.DialTimeout = c.DialTimeout
	}
	if c.ReadTimeout > 0 {
		rc.ReadTimeout = c.ReadTimeout
	}
	if c.WriteTimeout > 0 {
		rc.WriteTimeout = c.WriteTimeout
	}
	return rc
}

func policyFromConfig(p config.PolicyConfig) curriculum.Policy {
	return curriculum.Policy{
		StandardSemesters:     p.StandardSemesters,
		CostPerCredit:         p.CostPerCredit,
		GraduationFallback:    upperAll(p.GraduationFallback),
		GeneralCategories:     p.GeneralCategories,
		FoundationCategories:  p.FoundationCategories,
		SpecializedCategories: p.SpecializedCategories,
	}
}

func upperAll(codes []string) []string {
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		if c = strings.ToUpper(strings.TrimSpace(c)); c != "" {
			out = append(out, c)
		}
	}
	return out
}

// ══════════════════════════════════════════════════════════════════════════════
// ADAPTERS
// These adapt infrastructure implementations to application interfaces.
// ══════════════════════════════════════════════════════════════════════════════

// portalAdapter adapts portal.Client to command.PortalClient.
type portalAdapter struct {
	client *portal.Client
}

// FetchTranscript implements command.PortalClient.
func (a *portalAdapter) FetchTranscript(ctx context.Context, mssv, cookie string) (*command.TranscriptData, error) {
	page, err := a.client.FetchTranscript(ctx, mssv, cookie)
	if err != nil {
		return nil, err
	}
	return transcriptData(page), nil
}

// FetchRegistration implements command.PortalClient.
func (a *portalAdapter) FetchRegistration(ctx context.Context, cookie string) (*command.RegistrationData, error) {
	page, err := a.client.FetchRegistration(ctx, cookie)
	if err != nil {
		return nil, err
	}
	return &command.RegistrationData{Title: page.Title, Rows: page.Rows}, nil
}

// FetchMajor implements command.PortalClient.
func (a *portalAdapter) FetchMajor(ctx context.Context, cookie string) (string, error) {
	return a.client.FetchMajor(ctx, cookie)
}

func transcriptData(page *portal.TranscriptPage) *command.TranscriptData {
	return &command.TranscriptData{
		Rows:           page.Rows,
		StudentNumber:  page.StudentNumber,
		FullName:       page.Personal.FullName,
		BirthDate:      page.Personal.BirthDate,
		Gender:         page.Personal.Gender,
		Class:          page.Personal.Class,
		Faculty:        page.Personal.Faculty,
		TrainingSystem: page.Personal.TrainingSystem,
	}
}
