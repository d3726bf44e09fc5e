package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ppiankov/pbhp/internal/audit"
	"github.com/ppiankov/pbhp/internal/detect"
	"github.com/ppiankov/pbhp/internal/engine"
	"github.com/ppiankov/pbhp/internal/llm"
	"github.com/ppiankov/pbhp/internal/policy"
	"github.com/ppiankov/pbhp/internal/store"
	"github.com/ppiankov/pbhp/internal/store/redisstore"
	"github.com/ppiankov/pbhp/internal/store/sqlstore"
)

// runtime bundles what an assessing command needs.
type runtime struct {
	cfg    *policy.Config
	hash   string
	store  store.Store
	audit  *audit.Log
	engine *engine.Engine
}

// loadConfig reads the policy file and applies the global flag overrides.
func loadConfig() (*policy.Config, string, error) {
	cfg, hash, err := policy.LoadConfigWithHash(configPath)
	if err != nil {
		return nil, "", err
	}
	if storeDriver != "" {
		cfg.Store.Driver = storeDriver
	}
	if storeDSN != "" {
		cfg.Store.DSN = storeDSN
	}
	if auditPath != "" {
		cfg.AuditLog = auditPath
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, hash, nil
}

// openRuntime wires the engine from configuration: detector patterns,
// custom requirements, store, audit log and the optional reviewer.
func openRuntime(ctx context.Context) (*runtime, error) {
	cfg, hash, err := loadConfig()
	if err != nil {
		return nil, err
	}

	patterns, err := detect.LoadPatterns(cfg.PatternsFile)
	if err != nil {
		return nil, err
	}
	validator, err := policy.NewValidator(cfg.Requirements)
	if err != nil {
		return nil, err
	}

	st, err := openStore(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	rt := &runtime{cfg: cfg, hash: hash, store: st}

	opts := []engine.Option{
		engine.WithLogger(slog.Default()),
		engine.WithConfig(cfg),
		engine.WithPatterns(patterns),
		engine.WithValidator(validator),
	}
	if cfg.AuditLog != "" {
		rt.audit, err = audit.Open(cfg.AuditLog, hash)
		if err != nil {
			_ = st.Close()
			return nil, err
		}
		opts = append(opts, engine.WithAudit(rt.audit))
	}
	if cfg.LLM.Provider != "" {
		p, err := llm.NewProvider(cfg.LLM.Provider, cfg.LLM.Model)
		if err != nil {
			_ = rt.Close()
			return nil, err
		}
		opts = append(opts, engine.WithReviewer(llm.NewReviewer(p, llm.Options{
			Timeout:           cfg.LLM.Timeout,
			RequestsPerMinute: cfg.LLM.RequestsPerMinute,
			Logger:            slog.Default(),
		})))
	}

	rt.engine = engine.New(st, opts...)
	return rt, nil
}

func (rt *runtime) Close() error {
	var errs []error
	if rt.audit != nil {
		errs = append(errs, rt.audit.Close())
	}
	if rt.store != nil {
		errs = append(errs, rt.store.Close())
	}
	return errors.Join(errs...)
}

// openStore opens the record store named by the configuration.
func openStore(ctx context.Context, sc policy.StoreConfig) (store.Store, error) {
	switch sc.Driver {
	case "memory":
		return store.NewMemory(), nil
	case "", "file":
		dir := sc.DSN
		if dir == "" {
			dir = store.DefaultDir()
		}
		return store.NewFile(dir)
	case "sqlite":
		dsn := sc.DSN
		if dsn == "" {
			dsn = filepath.Join(filepath.Dir(store.DefaultDir()), "records.db")
		}
		if err := os.MkdirAll(filepath.Dir(dsn), 0o750); err != nil {
			return nil, fmt.Errorf("store: create database directory: %w", err)
		}
		return sqlstore.Open(ctx, "sqlite", dsn)
	case "postgres":
		if sc.DSN == "" {
			return nil, fmt.Errorf("store: postgres requires a dsn")
		}
		return sqlstore.Open(ctx, "postgres", sc.DSN)
	case "redis":
		return redisstore.Open(ctx, sc.DSN)
	default:
		return nil, fmt.Errorf("store: unknown driver %q", sc.Driver)
	}
}
