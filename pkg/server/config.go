package server

import (
	"errors"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/lucentlabs/lens/pkg/dataset"
	"github.com/lucentlabs/lens/pkg/view"
)

// VersionInfo contains build-time version information plus the
// per-process instance id.
type VersionInfo struct {
	Version  string `json:"version"`
	Commit   string `json:"commit"`
	Date     string `json:"date"`
	Instance string `json:"instance"`
}

// Config holds the server configuration.
type Config struct {
	ListenAddr        string
	DataDir           string
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
	RateLimit         rate.Limit
	RateBurst         int
	VersionInfo       VersionInfo

	Logger   *slog.Logger
	Loader   *dataset.Loader
	Renderer *view.Renderer
}

func (cfg *Config) Validate() error {
	if cfg.ListenAddr == "" {
		return errors.New("listen addr is required")
	}
	if cfg.DataDir == "" {
		return errors.New("data dir is required")
	}
	if cfg.Logger == nil {
		return errors.New("logger is required")
	}
	if cfg.Loader == nil {
		return errors.New("loader is required")
	}
	if cfg.Renderer == nil {
		return errors.New("renderer is required")
	}
	if cfg.ReadHeaderTimeout <= 0 {
		cfg.ReadHeaderTimeout = 10 * time.Second
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 15 * time.Second
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = rate.Limit(20)
	}
	if cfg.RateBurst <= 0 {
		cfg.RateBurst = 40
	}
	return nil
}
