package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/mikey/llm-autoresponder/internal/backend"
)

// MySQLCache is a MySQL-backed reply cache for deployments that share one
// cache across backend instances
type MySQLCache struct {
	db          *sql.DB
	ttl         time.Duration
	cleanupFreq time.Duration
	logger      *zap.Logger
	stopCh      chan struct{}
}

// NewMySQLCache creates a new MySQL cache and starts its cleanup task
func NewMySQLCache(dsn string, ttl, cleanupFreq time.Duration, logger *zap.Logger) (*MySQLCache, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS reply_cache (
			sender_email VARCHAR(320) PRIMARY KEY,
			response MEDIUMTEXT,
			expires_at TIMESTAMP,
			INDEX idx_reply_expires_at (expires_at)
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	c := &MySQLCache{
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
func (c *MySQLCache) Get(ctx context.Context, sender string) (*backend.Response, error) {
	var blob string
	err := c.db.QueryRowContext(ctx, `
		SELECT response
		FROM reply_cache
		WHERE sender_email = ? AND expires_at > NOW()
	`, sender).Scan(&blob)
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
func (c *MySQLCache) Put(ctx context.Context, sender string, resp *backend.Response) error {
	blob, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("failed to encode response: %w", err)
	}

	_, err = c.db.ExecContext(ctx, `
		REPLACE INTO reply_cache (sender_email, response, expires_at)
		VALUES (?, ?, ?)
	`, sender, string(blob), time.Now().Add(c.ttl))
	if err != nil {
		return fmt.Errorf("failed to insert cache entry: %w", err)
	}
	return nil
}

// Close stops the cleanup task and closes the database
func (c *MySQLCache) Close() error {
	close(c.stopCh)
	return c.db.Close()
}

func (c *MySQLCache) cleanup(ctx context.Context) error {
	res, err := c.db.ExecContext(ctx, `DELETE FROM reply_cache WHERE expires_at <= NOW()`)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		c.logger.Debug("Cleaned up expired cache entries", zap.Int64("expired_count", n))
	}
	return nil
}

func (c *MySQLCache) startCleanupTask() {
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
