// Package store persists sealed assessment records.
package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/ppiankov/pbhp/internal/model"
)

// ErrNotFound is returned by Get when no record has the id.
var ErrNotFound = errors.New("store: record not found")

// Store is a record repository. Save overwrites a record with the same
// id. List returns records oldest first. Implementations are safe for
// concurrent use.
type Store interface {
	Save(ctx context.Context, r model.Record) error
	Get(ctx context.Context, id string) (model.Record, error)
	List(ctx context.Context) ([]model.Record, error)
	Close() error
}

// validID matches alphanumeric, dash, underscore, and dot characters only.
var validID = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

// ValidateID rejects ids that could escape a directory or key prefix.
func ValidateID(id string) error {
	if id == "" {
		return fmt.Errorf("store: record id must not be empty")
	}
	if strings.Contains(id, "..") {
		return fmt.Errorf("store: record id must not contain '..'")
	}
	if !validID.MatchString(id) {
		return fmt.Errorf("store: record id %q contains invalid characters", id)
	}
	return nil
}
