package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/clawdsign/pkg/cache"
	"github.com/matzehuels/clawdsign/pkg/config"
	"github.com/matzehuels/clawdsign/pkg/store"
	"github.com/matzehuels/clawdsign/pkg/store/memory"
	"github.com/matzehuels/clawdsign/pkg/store/mongo"
	"github.com/matzehuels/clawdsign/pkg/store/postgres"
)

// openStore connects the configured backend. When migrate is true the
// postgres tables or mongo indexes are created first.
func openStore(ctx context.Context, cfg config.StoreConfig, migrate bool) (store.Store, error) {
	switch cfg.Backend {
	case config.StoreMemory:
		return memory.New(), nil

	case config.StorePostgres:
		s, err := postgres.Open(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, err
		}
		if migrate {
			if err := s.Migrate(ctx); err != nil {
				s.Close()
				return nil, err
			}
		}
		return s, nil

	case config.StoreMongo:
		s, err := mongo.Open(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		if migrate {
			if err := s.EnsureIndexes(ctx); err != nil {
				s.Close()
				return nil, err
			}
		}
		return s, nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
}

// openCache connects the configured cache. An unreachable redis degrades to
// no caching rather than failing startup.
func openCache(ctx context.Context, cfg config.CacheConfig, logger *log.Logger) cache.Cache {
	switch cfg.Backend {
	case config.CacheMemory:
		return cache.NewMemoryCache()
	case config.CacheRedis:
		var rc *cache.RedisCache
		err := cache.RetryWithBackoff(ctx, func() error {
			var err error
			rc, err = cache.NewRedisCache(ctx, cache.RedisConfig{
				Addr:     cfg.RedisAddr,
				Password: cfg.RedisPassword,
				DB:       cfg.RedisDB,
				Prefix:   appName + ":",
			})
			return err
		})
		if err != nil {
			logger.Warn("redis unavailable, caching disabled", "addr", cfg.RedisAddr, "err", err)
			return cache.NewNullCache()
		}
		return rc
	}
	return cache.NewNullCache()
}
