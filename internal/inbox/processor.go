// Package inbox runs assessments in batch: request files dropped into an
// inbox directory are assessed and the sealed record, with its rendered
// response, is written to an outbox directory.
package inbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/ppiankov/pbhp/internal/engine"
	"github.com/ppiankov/pbhp/internal/intake"
	"github.com/ppiankov/pbhp/internal/model"
)

// dirPerm is the permission for watcher-managed directories.
const dirPerm = 0o750

// Status values written to the outbox.
const (
	StatusFinalized = "finalized"
	StatusBlocked   = "blocked"
	StatusOpen      = "open"
	StatusFailed    = "failed"
)

// Dirs holds the directory layout.
type Dirs struct {
	Inbox  string // incoming request files
	Outbox string // results
	State  string // state/{processing,done,failed}
}

func (d Dirs) ProcessingDir() string { return filepath.Join(d.State, "processing") }
func (d Dirs) DoneDir() string       { return filepath.Join(d.State, "done") }
func (d Dirs) FailedDir() string     { return filepath.Join(d.State, "failed") }

// EnsureDirs creates all required directories. Idempotent.
func EnsureDirs(d Dirs) error {
	for _, dir := range []string{d.Inbox, d.Outbox, d.ProcessingDir(), d.DoneDir(), d.FailedDir()} {
		if err := os.MkdirAll(dir, dirPerm); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// Result is written to the outbox for every request file.
type Result struct {
	Request     string        `json:"request"`
	Status      string        `json:"status"`
	RecordID    string        `json:"record_id,omitempty"`
	Record      *model.Record `json:"record,omitempty"`
	Response    string        `json:"response,omitempty"`
	Error       string        `json:"error,omitempty"`
	CompletedAt time.Time     `json:"completed_at"`
}

// Processor assesses one request file at a time.
type Processor struct {
	dirs   Dirs
	engine *engine.Engine
	log    *slog.Logger
	now    func() time.Time
}

func NewProcessor(d Dirs, e *engine.Engine, log *slog.Logger) *Processor {
	if log == nil {
		log = slog.Default()
	}
	return &Processor{dirs: d, engine: e, log: log, now: time.Now}
}

// Process takes a request file through its lifecycle:
// read, move to processing, assess, write the result, archive.
func (p *Processor) Process(ctx context.Context, path string) error {
	// Symlinks could point the watcher at arbitrary files.
	fi, err := os.Lstat(path)
	if err != nil {
		return fmt.Errorf("stat request file: %w", err)
	}
	if fi.Mode()&os.ModeSymlink != 0 {
		return fmt.Errorf("rejected symlink: %s", filepath.Base(path))
	}

	name := filepath.Base(path)
	processing := filepath.Join(p.dirs.ProcessingDir(), name)
	if err := moveFile(path, processing); err != nil {
		return fmt.Errorf("move to processing: %w", err)
	}

	res := p.assess(ctx, name, processing)
	if err := p.writeResult(res); err != nil {
		return fmt.Errorf("write result: %w", err)
	}

	archive := p.dirs.DoneDir()
	if res.Status == StatusFailed {
		archive = p.dirs.FailedDir()
	}
	if err := moveFile(processing, filepath.Join(archive, name)); err != nil {
		return fmt.Errorf("archive request: %w", err)
	}
	p.log.Info("request processed", "request", name, "status", res.Status, "record_id", res.RecordID)
	return nil
}

func (p *Processor) assess(ctx context.Context, name, path string) *Result {
	res := &Result{Request: name}
	defer func() { res.CompletedAt = p.now().UTC() }()

	req, err := intake.Load(path)
	if err != nil {
		res.Status, res.Error = StatusFailed, err.Error()
		return res
	}
	out, err := intake.Run(ctx, p.engine, req)
	if err != nil {
		res.Status, res.Error = StatusFailed, err.Error()
		return res
	}

	switch {
	case out.Blocked:
		res.Status = StatusBlocked
	case out.Finalized:
		res.Status = StatusFinalized
	default:
		res.Status = StatusOpen
	}
	rec := out.Record
	res.RecordID = rec.RecordID
	res.Record = &rec
	res.Response = out.Response
	return res
}

func (p *Processor) writeResult(r *Result) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	filename := strings.TrimSuffix(r.Request, filepath.Ext(r.Request)) + ".result.json"
	tmpPath := filepath.Join(p.dirs.Outbox, filename+".tmp")
	finalPath := filepath.Join(p.dirs.Outbox, filename)

	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("write temp: %w", err)
	}
	return os.Rename(tmpPath, finalPath)
}

// moveFile renames src to dst, falling back to copy and remove across
// devices (EXDEV), as happens with bind-mounted directories.
func moveFile(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	var errno syscall.Errno
	if !errors.As(err, &errno) || errno != syscall.EXDEV {
		return err
	}
	if err := copyFile(src, dst); err != nil {
		return err
	}
	return os.Remove(src)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode())
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		_ = os.Remove(dst)
		return err
	}
	return out.Close()
}
