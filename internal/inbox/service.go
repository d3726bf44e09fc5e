package inbox

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/ppiankov/pbhp/internal/engine"
)

// Config holds the watch service configuration.
type Config struct {
	Dirs         Dirs
	PollMode     bool
	PollInterval time.Duration
	Logger       *slog.Logger
}

// Service watches the inbox and assesses every request that lands there.
type Service struct {
	cfg       Config
	processor *Processor
}

// New validates the configuration and builds the service.
func New(cfg Config, e *engine.Engine) (*Service, error) {
	if cfg.Dirs.Inbox == "" || cfg.Dirs.Outbox == "" {
		return nil, fmt.Errorf("inbox and outbox directories are required")
	}
	if cfg.Dirs.State == "" {
		cfg.Dirs.State = filepath.Join(cfg.Dirs.Outbox, ".state")
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = pollInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Service{cfg: cfg, processor: NewProcessor(cfg.Dirs, e, cfg.Logger)}, nil
}

// Run processes any requests already waiting, then watches for new ones.
// Blocks until ctx is cancelled.
func (s *Service) Run(ctx context.Context) error {
	if err := EnsureDirs(s.cfg.Dirs); err != nil {
		return fmt.Errorf("ensure directories: %w", err)
	}

	handler := func(path string) {
		if err := s.processor.Process(ctx, path); err != nil {
			s.cfg.Logger.Warn("process request", "request", filepath.Base(path), "error", err)
		}
	}
	if err := ScanExisting(s.cfg.Dirs.Inbox, handler); err != nil {
		return fmt.Errorf("scan existing: %w", err)
	}

	if s.cfg.PollMode {
		return NewPollWatcher(s.cfg.Dirs.Inbox, handler, s.cfg.PollInterval).Run(ctx)
	}
	return NewWatcher(s.cfg.Dirs.Inbox, handler, s.cfg.Logger).Run(ctx)
}
