// Package engine orchestrates a PBHP assessment: it creates assessments,
// records each protocol step, runs the preflight and finalization gates,
// and persists the sealed record.
//
// An Engine is safe for concurrent use by several callers as long as each
// caller owns its own *model.Assessment.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/ppiankov/pbhp/internal/audit"
	"github.com/ppiankov/pbhp/internal/detect"
	"github.com/ppiankov/pbhp/internal/gate"
	"github.com/ppiankov/pbhp/internal/model"
	"github.com/ppiankov/pbhp/internal/policy"
	"github.com/ppiankov/pbhp/internal/preflight"
	"github.com/ppiankov/pbhp/internal/store"
)

// ErrAlreadyFinalized is returned when Finalize is called on a sealed
// assessment. A rerun is a new assessment.
var ErrAlreadyFinalized = errors.New("assessment already finalized")

// Option configures an Engine at creation time.
type Option func(*engineConfig)

type engineConfig struct {
	logger    *slog.Logger
	now       func() time.Time
	newID     func() string
	cfg       *policy.Config
	patterns  *detect.Set
	validator *policy.Validator
	reviewer  detect.Detector
	audit     *audit.Log
}

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *engineConfig) { c.logger = l }
}

// WithClock overrides time.Now for assessment timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *engineConfig) { c.now = now }
}

// WithIDs overrides the record id generator (UUID v4 by default).
func WithIDs(newID func() string) Option {
	return func(c *engineConfig) { c.newID = newID }
}

// WithConfig applies policy thresholds and action verbs.
func WithConfig(cfg *policy.Config) Option {
	return func(c *engineConfig) { c.cfg = cfg }
}

// WithPatterns replaces the built-in detector vocabulary.
func WithPatterns(set *detect.Set) Option {
	return func(c *engineConfig) { c.patterns = set }
}

// WithValidator adds operator-defined requirements to the built-in matrix.
func WithValidator(v *policy.Validator) Option {
	return func(c *engineConfig) { c.validator = v }
}

// WithReviewer adds an advisory detector whose findings become gate warnings.
func WithReviewer(d detect.Detector) Option {
	return func(c *engineConfig) { c.reviewer = d }
}

// WithAudit appends every sealed record to a hash-chained audit log.
func WithAudit(l *audit.Log) Option {
	return func(c *engineConfig) { c.audit = l }
}

// Engine runs assessments against a record store.
type Engine struct {
	store     store.Store
	log       *slog.Logger
	now       func() time.Time
	newID     func() string
	preflight *preflight.Checker
	gate      *gate.Gate
	validator *policy.Validator
	drift     detect.Detector
	rejection detect.Detector
	eugenics  detect.Detector
	audit     *audit.Log
	tracer    trace.Tracer
}

// New builds an engine around st. A nil store keeps records in memory.
func New(st store.Store, opts ...Option) *Engine {
	c := engineConfig{}
	for _, o := range opts {
		o(&c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.newID == nil {
		c.newID = uuid.NewString
	}
	if c.cfg == nil {
		c.cfg = policy.DefaultConfig()
	}
	if c.patterns == nil {
		c.patterns = detect.Default()
	}
	if st == nil {
		st = store.NewMemory()
	}

	detectors := gate.NewDetectors(c.patterns, c.cfg.FuzzyThreshold, c.cfg.MinJustificationLength)
	detectors.Reviewer = c.reviewer

	return &Engine{
		store:     st,
		log:       c.logger,
		now:       c.now,
		newID:     c.newID,
		preflight: preflight.New(c.cfg.MinActionLength, c.cfg.ExtraActionVerbs),
		gate:      gate.New(detectors),
		validator: c.validator,
		drift:     detectors.Drift,
		rejection: detect.NewRejection(c.patterns),
		eugenics:  detect.NewEugenics(c.patterns),
		audit:     c.audit,
		tracer:    otel.Tracer("pbhp.engine"),
	}
}

// NewAssessment starts an assessment (step 1: name the action).
func (e *Engine) NewAssessment(action string, agent model.AgentMetadata) (*model.Assessment, error) {
	if strings.TrimSpace(action) == "" {
		return nil, fmt.Errorf("action: %w", model.ErrEmptyDescription)
	}
	if agent.AgentType == "" {
		agent.AgentType = "ai_system"
	}
	a := model.NewAssessment(e.newID(), action, agent, e.now())
	e.log.Info("assessment created", "record_id", a.ID, "agent_type", agent.AgentType)
	return a, nil
}

// Get returns a stored record by id.
func (e *Engine) Get(ctx context.Context, id string) (model.Record, error) {
	return e.store.Get(ctx, id)
}

// List returns every stored record.
func (e *Engine) List(ctx context.Context) ([]model.Record, error) {
	return e.store.List(ctx)
}

// Store exposes the underlying record store.
func (e *Engine) Store() store.Store {
	return e.store
}
