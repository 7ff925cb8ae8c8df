package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/mikey/llm-autoresponder/internal/backend"
)

// SQLiteCache is a SQLite-backed reply cache. The composed response is
// stored as a JSON blob keyed by the normalized sender address.
type SQLiteCache struct {
	db          *sql.DB
	ttl         time.Duration
	cleanupFreq time.Duration
	logger      *zap.Logger
	stopCh      chan struct{}
}

// NewSQLiteCache creates a new SQLite cache and starts its cleanup task
func NewSQLiteCache(dbPath string, ttl, cleanupFreq time.Duration, logger *zap.Logger) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS reply_cache (
			sender_email TEXT PRIMARY KEY,
			response TEXT,
			expires_at TIMESTAMP
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_reply_expires_at ON reply_cache(expires_at)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	c := &SQLiteCache{
		db:          db,
		ttl:         ttl,
		cleanupFreq: cleanupFreq,
		logger:      logger,
		stopCh:      make(chan struct{}),
	}
	go c.startCleanupTask()
	return c, nil
}

// Get retrieves the cached response for a sender
func (c *SQLiteCache) Get(ctx context.Context, sender string) (*backend.Response, error) {
	var blob string
	err := c.db.QueryRowContext(ctx, `
		SELECT response
		FROM reply_cache
		WHERE sender_email = ? AND expires_at > ?
	`, sender, time.Now().UTC().Format(time.RFC3339)).Scan(&blob)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, backend.ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to query cache: %w", err)
	}

	var resp backend.Response
	if err := json.Unmarshal([]byte(blob), &resp); err != nil {
		return nil, fmt.Errorf("failed to decode cached response: %w", err)
	}
	return &resp, nil
}

// Put stores the response for a sender
func (c *SQLiteCache) Put(ctx context.Context, sender string, resp *backend.Response) error {
	blob, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("failed to encode response: %w", err)
	}

	_, err = c.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO reply_cache (sender_email, response, expires_at)
		VALUES (?, ?, ?)
	`, sender, string(blob), time.Now().UTC().Add(c.ttl).Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to insert cache entry: %w", err)
	}
	return nil
}

// Close stops the cleanup task and closes the database
func (c *SQLiteCache) Close() error {
	close(c.stopCh)
	return c.db.Close()
}

func (c *SQLiteCache) cleanup(ctx context.Context) error {
	res, err := c.db.ExecContext(ctx, `
		DELETE FROM reply_cache WHERE expires_at <= ?
	`, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		c.logger.Debug("Cleaned up expired cache entries", zap.Int64("expired_count", n))
	}
	return nil
}

func (c *SQLiteCache) startCleanupTask() {
	ticker := time.NewTicker(c.cleanupFreq)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.cleanup(context.Background()); err != nil {
				c.logger.Error("Failed to clean up cache", zap.Error(err))
			}
		case <-c.stopCh:
			return
		}
	}
}
