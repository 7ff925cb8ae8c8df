package factory

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/mikey/llm-autoresponder/internal/adapters/cache"
	"github.com/mikey/llm-autoresponder/internal/backend"
	"github.com/mikey/llm-autoresponder/internal/config"
)

// CacheFactory creates reply caches based on configuration
type CacheFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewCacheFactory creates a new cache factory
func NewCacheFactory(cfg *config.Config, logger *zap.Logger) *CacheFactory {
	return &CacheFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateReplyCache creates the configured reply cache; nil when caching
// is disabled
func (f *CacheFactory) CreateReplyCache() (backend.ReplyCache, error) {
	if !f.cfg.GetBool("cache.enabled") {
		return nil, nil
	}

	ttl, err := f.cfg.GetDuration("cache.ttl")
	if err != nil {
		return nil, fmt.Errorf("invalid cache ttl: %w", err)
	}
	cleanupFreq, err := f.cfg.GetDuration("cache.cleanup_frequency")
	if err != nil {
		return nil, fmt.Errorf("invalid cache cleanup frequency: %w", err)
	}

	cacheType := f.cfg.GetString("cache.type")
	switch cacheType {
	case "memory":
		return cache.NewMemoryCache(ttl, cleanupFreq, f.logger), nil
	case "sqlite":
		sqlitePath := f.cfg.GetString("cache.sqlite_path")
		if err := os.MkdirAll(filepath.Dir(sqlitePath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		return cache.NewSQLiteCache(sqlitePath, ttl, cleanupFreq, f.logger)
	case "mysql":
		return cache.NewMySQLCache(f.cfg.GetString("cache.mysql_dsn"), ttl, cleanupFreq, f.logger)
	default:
		return nil, fmt.Errorf("unsupported cache type: %s", cacheType)
	}
}
