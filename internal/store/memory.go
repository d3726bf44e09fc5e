package store

import (
	"context"
	"sync"

	"github.com/ppiankov/pbhp/internal/model"
)

// Memory keeps records in process. Insertion order is preserved.
type Memory struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]model.Record
}

func NewMemory() *Memory {
	return &Memory{byID: make(map[string]model.Record)}
}

func (m *Memory) Save(_ context.Context, r model.Record) error {
	if err := ValidateID(r.RecordID); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byID[r.RecordID]; !ok {
		m.order = append(m.order, r.RecordID)
	}
	m.byID[r.RecordID] = r
	return nil
}

func (m *Memory) Get(_ context.Context, id string) (model.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.byID[id]
	if !ok {
		return model.Record{}, ErrNotFound
	}
	return r, nil
}

func (m *Memory) List(_ context.Context) ([]model.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]model.Record, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.byID[id])
	}
	return out, nil
}

func (m *Memory) Close() error { return nil }
