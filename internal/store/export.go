package store

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/Masterminds/semver/v3"

	"github.com/ppiankov/pbhp/internal/model"
)

// WriteJSON writes records as an indented JSON array.
func WriteJSON(w io.Writer, records []model.Record) error {
	if records == nil {
		records = []model.Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(records)
}

// ReadJSON reads an array written by WriteJSON. Records from a newer
// protocol version or a different major version are rejected.
func ReadJSON(r io.Reader) ([]model.Record, error) {
	var records []model.Record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("store: decode records: %w", err)
	}
	for _, rec := range records {
		if err := CheckVersion(rec.Version); err != nil {
			return nil, fmt.Errorf("store: record %s: %w", rec.RecordID, err)
		}
	}
	return records, nil
}

// CheckVersion accepts record versions with the running protocol's major
// version that are not newer than it.
func CheckVersion(v string) error {
	current := semver.MustParse(model.ProtocolVersion)
	got, err := semver.NewVersion(v)
	if err != nil {
		return fmt.Errorf("invalid version %q: %w", v, err)
	}
	c, err := semver.NewConstraint(fmt.Sprintf(">= %d.0.0, <= %s", current.Major(), current.String()))
	if err != nil {
		return err
	}
	if !c.Check(got) {
		return fmt.Errorf("version %s is not compatible with %s", got, current)
	}
	return nil
}
