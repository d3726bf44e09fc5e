package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/ppiankov/pbhp/internal/model"
)

// VerifyResult holds the outcome of a chain verification.
type VerifyResult struct {
	Valid     bool   `json:"valid"`
	Lines     int    `json:"lines"`
	Error     string `json:"error,omitempty"`
	ErrorLine int    `json:"error_line,omitempty"`
}

// Verify reads the log at path and validates the hash chain, reporting
// the first broken link.
func Verify(path string) VerifyResult {
	res, _ := walk(path, nil)
	return res
}

// VerifyRecords validates the chain and also checks every entry's digest
// against the record returned by lookup. A record that cannot be found
// fails verification.
func VerifyRecords(path string, lookup func(id string) (model.Record, error)) VerifyResult {
	res, _ := walk(path, func(e Entry) error {
		rec, err := lookup(e.RecordID)
		if err != nil {
			return fmt.Errorf("record %s: %w", e.RecordID, err)
		}
		digest, err := Digest(rec)
		if err != nil {
			return err
		}
		if digest != e.RecordDigest {
			return fmt.Errorf("record %s digest mismatch: log has %s, store has %s", e.RecordID, e.RecordDigest, digest)
		}
		return nil
	})
	return res
}

// Entries reads entries in order, stopping at the first broken link.
func Entries(path string) ([]Entry, error) {
	var out []Entry
	res, err := walk(path, func(e Entry) error {
		out = append(out, e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !res.Valid && res.ErrorLine == 0 {
		return nil, fmt.Errorf("audit: %s", res.Error)
	}
	return out, nil
}

// walk is the shared chain check. visit, when set, runs on each entry
// whose link is intact. The error is non-nil only when the file cannot be
// opened.
func walk(path string, visit func(Entry) error) (VerifyResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return VerifyResult{Error: fmt.Sprintf("open: %v", err)}, err
	}
	defer f.Close()
	return walkReader(f, visit), nil
}

func walkReader(r io.Reader, visit func(Entry) error) VerifyResult {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	lineNum := 0
	expected := GenesisHash
	for scanner.Scan() {
		lineNum++
		line := append([]byte(nil), scanner.Bytes()...)

		var e Entry
		if err := json.Unmarshal(line, &e); err != nil {
			return VerifyResult{Error: fmt.Sprintf("parse error: %v", err), ErrorLine: lineNum}
		}
		if e.PrevHash != expected {
			msg := fmt.Sprintf("hash mismatch: expected %s, got %s", expected, e.PrevHash)
			if lineNum == 1 {
				msg = fmt.Sprintf("first entry prev_hash is %q, expected genesis hash", e.PrevHash)
			}
			return VerifyResult{Error: msg, ErrorLine: lineNum}
		}
		if visit != nil {
			if err := visit(e); err != nil {
				return VerifyResult{Error: err.Error(), ErrorLine: lineNum}
			}
		}
		expected = HashLine(line)
	}
	if err := scanner.Err(); err != nil {
		return VerifyResult{Error: fmt.Sprintf("scan: %v", err)}
	}
	return VerifyResult{Valid: true, Lines: lineNum}
}
