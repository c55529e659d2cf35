package app

import (
	"context"

	"github.com/datallboy/rangefetch/internal/domain"
	"github.com/datallboy/rangefetch/internal/infra/config"
	"github.com/datallboy/rangefetch/internal/infra/logger"
)

// HistoryStore persists download records without the commands importing
// the store package's drivers.
type HistoryStore interface {
	SaveDownload(ctx context.Context, rec *domain.DownloadRecord) error
	GetDownload(ctx context.Context, id string) (*domain.DownloadRecord, error)
	ListDownloads(ctx context.Context, limit int) ([]*domain.DownloadRecord, error)
	Close() error
}

// Context holds the environment and shared resources of one command run.
type Context struct {
	Config *config.Config
	Logger *logger.Logger

	// Store is nil when history is disabled.
	Store HistoryStore
}

// NewContext initializes the base environment.
func NewContext(cfg *config.Config, log *logger.Logger) *Context {
	return &Context{
		Config: cfg,
		Logger: log,
	}
}

// Record saves rec if a store is configured. Failures are logged, not
// returned, so history problems never fail a download.
func (c *Context) Record(ctx context.Context, rec *domain.DownloadRecord) {
	if c.Store == nil {
		return
	}
	if err := c.Store.SaveDownload(ctx, rec); err != nil {
		c.Logger.Warn("Failed to record download %s: %v", rec.ID, err)
	}
}

// Close releases the store and the log file.
func (c *Context) Close() error {
	if c.Store != nil {
		if err := c.Store.Close(); err != nil {
			return err
		}
	}
	return c.Logger.Close()
}
