package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/gowebpki/jcs"

	"github.com/ppiankov/pbhp/internal/model"
)

// TimestampFormat is the layout used in entry timestamps.
const TimestampFormat = "2006-01-02T15:04:05.000Z"

// Entry is one line in the hash-chained JSONL audit trail. It summarises
// a persisted record and pins its content with RecordDigest.
// All fields are scalars so json.Marshal output is deterministic.
type Entry struct {
	Timestamp        string `json:"ts"`
	RecordID         string `json:"record_id"`
	Action           string `json:"action"`
	RiskClass        string `json:"risk_class"`
	Outcome          string `json:"outcome"`
	RequestedOutcome string `json:"requested_outcome,omitempty"`
	GateValid        bool   `json:"gate_valid"`
	RecordDigest     string `json:"record_digest"`
	PolicyHash       string `json:"policy_hash"`
	PrevHash         string `json:"prev_hash"`
}

// NewEntry summarises a record. The timestamp is the record's own.
func NewEntry(rec model.Record, policyHash string) (Entry, error) {
	digest, err := Digest(rec)
	if err != nil {
		return Entry{}, err
	}
	e := Entry{
		Timestamp:    rec.Timestamp.UTC().Format(TimestampFormat),
		RecordID:     rec.RecordID,
		Action:       rec.ActionDescription,
		RiskClass:    rec.HighestRiskClass.String(),
		Outcome:      string(rec.DecisionOutcome),
		GateValid:    true,
		RecordDigest: digest,
		PolicyHash:   policyHash,
	}
	if g := rec.FinalizationGate; g != nil {
		e.GateValid = g.Valid
		e.RequestedOutcome = string(g.RequestedOutcome)
	}
	return e, nil
}

// Digest returns "sha256:<hex>" over the RFC 8785 canonical JSON of the
// record, so the digest survives re-encoding by other tools.
func Digest(rec model.Record) (string, error) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("audit: marshal record: %w", err)
	}
	canon, err := jcs.Transform(raw)
	if err != nil {
		return "", fmt.Errorf("audit: canonicalize record: %w", err)
	}
	h := sha256.Sum256(canon)
	return "sha256:" + hex.EncodeToString(h[:]), nil
}
