package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"sitterboard/internal/app"
	"sitterboard/internal/config"
	"sitterboard/internal/database"
	"sitterboard/internal/kv"
	"sitterboard/internal/observability"
	"sitterboard/internal/repository/bolt"
	"sitterboard/internal/repository/kvstore"
	"sitterboard/internal/repository/postgres"
)

// runtime is the wiring shared by every subcommand.
type runtime struct {
	cfg          config.Config
	logger       zerolog.Logger
	store        kv.Store
	db           *sql.DB
	redis        *redis.Client
	metrics      *observability.Collector
	notices      *kvstore.NoticeRepository
	profileRepo  *kvstore.ProfileRepository
	noticeSvc    *app.NoticeService
	applications *app.ApplicationService
	profiles     *app.ProfileService
}

func loadConfig() (config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadFile(configFile)
	if err != nil {
		return config.Config{}, zerolog.Nop(), err
	}
	return cfg, observability.NewLogger(cfg.LogLevel, cfg.LogFormat), nil
}

func openRuntime(ctx context.Context) (*runtime, error) {
	cfg, logger, err := loadConfig()
	if err != nil {
		return nil, err
	}
	rt := &runtime{cfg: cfg, logger: logger, metrics: observability.NewCollector()}
	if err := rt.openStore(ctx); err != nil {
		rt.Close()
		return nil, err
	}
	rt.notices = kvstore.NewNoticeRepository(rt.store, cfg.CASMaxRetries, logger)
	rt.profileRepo = kvstore.NewProfileRepository(rt.store)
	rt.noticeSvc = app.NewNoticeService(rt.notices, rt.metrics)
	rt.applications = rt.applicationService(nil)
	rt.profiles = app.NewProfileService(rt.profileRepo)
	return rt, nil
}

// applicationService builds the service with an optional apply throttle.
func (rt *runtime) applicationService(throttle app.Throttle) *app.ApplicationService {
	return app.NewApplicationService(rt.notices, rt.metrics, app.ApplicationOptions{
		AllowApplicationsWhenFilled: rt.cfg.AllowApplicationsWhenFilled,
		Throttle:                    throttle,
		ApplyLimit:                  rt.cfg.ApplyRateLimitPerMin,
		ApplyWindow:                 time.Minute,
	})
}

func (rt *runtime) openStore(ctx context.Context) error {
	switch rt.cfg.StoreDriver {
	case config.StoreBolt:
		store, err := bolt.Open(rt.cfg.BoltPath)
		if err != nil {
			return err
		}
		rt.store = store
	case config.StorePostgres:
		db, err := database.NewPostgres(ctx, database.PostgresConfig{
			Driver:          rt.cfg.DBDriver,
			DSN:             rt.cfg.PostgresDSN,
			MaxOpenConns:    rt.cfg.DBMaxOpenConns,
			MaxIdleConns:    rt.cfg.DBMaxIdleConns,
			ConnMaxIdle:     rt.cfg.DBConnMaxIdle,
			ConnMaxLifetime: rt.cfg.DBConnMaxLife,
		}, rt.logger)
		if err != nil {
			return err
		}
		rt.db = db
		rt.store = postgres.NewKVStore(db, rt.cfg.KVTable)
	case config.StoreMemory:
		rt.logger.Warn().Msg("using in-memory store, data is lost on exit")
		rt.store = kv.NewMemoryStore()
	default:
		return fmt.Errorf("unknown store driver %q", rt.cfg.StoreDriver)
	}
	rt.logger.Info().Str("driver", rt.cfg.StoreDriver).Msg("store opened")
	return nil
}

func (rt *runtime) Close() {
	if rt.store != nil {
		if err := rt.store.Close(); err != nil {
			rt.logger.Error().Err(err).Msg("close store")
		}
	}
	if rt.db != nil {
		if err := rt.db.Close(); err != nil {
			rt.logger.Error().Err(err).Msg("close database")
		}
	}
	if rt.redis != nil {
		if err := rt.redis.Close(); err != nil {
			rt.logger.Error().Err(err).Msg("close redis")
		}
	}
}
