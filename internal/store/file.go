package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/ppiankov/pbhp/internal/model"
)

// File stores one JSON document per record in a directory.
type File struct {
	dir string
	mu  sync.Mutex
}

// NewFile creates a File store backed by the given directory.
func NewFile(dir string) (*File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: cannot create record directory: %w", err)
	}
	return &File{dir: dir}, nil
}

// DefaultDir returns ~/.pbhp/records.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "pbhp-records")
	}
	return filepath.Join(home, ".pbhp", "records")
}

func (f *File) Save(_ context.Context, r model.Record) error {
	if err := ValidateID(r.RecordID); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writeAtomic(f.path(r.RecordID), r)
}

func (f *File) Get(_ context.Context, id string) (model.Record, error) {
	if err := ValidateID(id); err != nil {
		return model.Record{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	r, err := f.read(id)
	if errors.Is(err, os.ErrNotExist) {
		return model.Record{}, ErrNotFound
	}
	return r, err
}

// List returns records ordered by timestamp, then id. Unreadable files
// are skipped.
func (f *File) List(_ context.Context) ([]model.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := os.ReadDir(f.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("store: %w", err)
	}

	var records []model.Record
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		r, err := f.read(strings.TrimSuffix(e.Name(), ".json"))
		if err != nil {
			continue
		}
		records = append(records, r)
	}
	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].Timestamp.Equal(records[j].Timestamp) {
			return records[i].Timestamp.Before(records[j].Timestamp)
		}
		return records[i].RecordID < records[j].RecordID
	})
	return records, nil
}

func (f *File) Close() error { return nil }

func (f *File) path(id string) string {
	return filepath.Join(f.dir, id+".json")
}

func (f *File) read(id string) (model.Record, error) {
	data, err := os.ReadFile(f.path(id))
	if err != nil {
		return model.Record{}, err
	}
	var r model.Record
	if err := json.Unmarshal(data, &r); err != nil {
		return model.Record{}, fmt.Errorf("store: corrupt record %s: %w", id, err)
	}
	return r, nil
}

func (f *File) writeAtomic(path string, r model.Record) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("store: encode record %s: %w", r.RecordID, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("store: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("store: %w", err)
	}
	return nil
}
