package engine

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ppiankov/pbhp/internal/gate"
	"github.com/ppiankov/pbhp/internal/model"
)

// Preflight runs the phase 1 screen over the action and extra context,
// attaches the result and logs every block and escalation as a drift
// alarm. A blocked assessment must not proceed until each block is resolved.
func (e *Engine) Preflight(ctx context.Context, a *model.Assessment, extra string) model.PreflightResult {
	_, span := e.tracer.Start(ctx, "engine.Preflight",
		trace.WithAttributes(attribute.String("record_id", a.ID)))
	defer span.End()

	res := e.preflight.Run(a.ActionDescription, extra)
	a.Preflight = &res
	a.Alarm(res.Blocks...)
	a.Alarm(res.Escalations...)

	span.SetAttributes(
		attribute.Bool("passed", res.Passed),
		attribute.Int("blocks", len(res.Blocks)),
		attribute.Int("escalations", len(res.Escalations)),
	)
	if !res.Passed {
		e.log.Warn("preflight blocked", "record_id", a.ID, "blocks", len(res.Blocks))
	}
	return res
}

// ValidateRequirements returns every unmet requirement for the
// assessment's current class and outcome.
func (e *Engine) ValidateRequirements(a *model.Assessment) []string {
	errs := e.validator.Validate(a)
	if errs == nil {
		errs = []string{}
	}
	return errs
}

// Finalize records the requested decision, runs the finalization gate and
// persists the sealed record. The gate may override the outcome to
// ESCALATE; callers read the final decision back from a. The returned
// error is ErrAlreadyFinalized, an invalid outcome, or a persistence
// failure. Gate findings are data, not errors. After a persistence
// failure a is left open and unchanged, so Finalize can be called again.
func (e *Engine) Finalize(ctx context.Context, a *model.Assessment, outcome model.DecisionOutcome, justification string) (*model.Assessment, error) {
	if a.Sealed {
		return a, ErrAlreadyFinalized
	}
	if !outcome.Valid() {
		return a, fmt.Errorf("finalize: %w: %q", model.ErrInvalidOutcome, outcome)
	}

	ctx, span := e.tracer.Start(ctx, "engine.Finalize",
		trace.WithAttributes(
			attribute.String("record_id", a.ID),
			attribute.String("risk_class", a.HighestRiskClass.String()),
			attribute.String("requested_outcome", string(outcome)),
		))
	defer span.End()

	undo := snapshot(a)
	a.DecisionOutcome = outcome
	a.Justification = justification

	validationErrors := e.ValidateRequirements(a)
	a.Alarm(validationErrors...)

	res := e.gate.Evaluate(gate.Input{
		Class:            a.HighestRiskClass,
		Harms:            a.Harms,
		Outcome:          outcome,
		Justification:    justification,
		ValidationErrors: validationErrors,
	})
	a.FinalizationGate = &res

	if !res.Valid {
		a.DecisionOutcome = model.OutcomeEscalate
		a.Justification = gate.InvalidatedJustification(outcome, res.InvalidationReasons, justification)
		a.Alarm(res.InvalidationReasons...)
		e.log.Warn("finalization gate invalidated decision",
			"record_id", a.ID,
			"requested", outcome,
			"class", a.HighestRiskClass,
			"reasons", len(res.InvalidationReasons))
	}
	for _, w := range res.Warnings {
		a.Alarm("gate_warning:" + w)
	}
	span.SetAttributes(
		attribute.Bool("gate_valid", res.Valid),
		attribute.String("outcome", string(a.DecisionOutcome)),
	)

	a.Sealed = true
	rec := a.Record()
	if err := e.persist(ctx, rec); err != nil {
		undo()
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist failed")
		return a, err
	}
	e.log.Info("assessment finalized",
		"record_id", a.ID,
		"class", a.HighestRiskClass,
		"outcome", a.DecisionOutcome,
		"gate_valid", res.Valid)
	return a, nil
}

// snapshot returns a func that puts back the fields Finalize mutates, so a
// failed write leaves the assessment open and Finalize can be retried.
func snapshot(a *model.Assessment) func() {
	outcome, justification := a.DecisionOutcome, a.Justification
	fg := a.FinalizationGate
	alarms := len(a.DriftAlarms)
	return func() {
		a.DecisionOutcome, a.Justification = outcome, justification
		a.FinalizationGate = fg
		a.DriftAlarms = a.DriftAlarms[:alarms]
		a.Sealed = false
	}
}

func (e *Engine) persist(ctx context.Context, rec model.Record) error {
	_, span := e.tracer.Start(ctx, "store.Save",
		trace.WithAttributes(attribute.String("record_id", rec.RecordID)))
	defer span.End()

	if err := e.store.Save(ctx, rec); err != nil {
		span.RecordError(err)
		return fmt.Errorf("finalize: %w", err)
	}
	if e.audit != nil {
		if err := e.audit.RecordSealed(rec); err != nil {
			span.RecordError(err)
			return fmt.Errorf("finalize: audit: %w", err)
		}
	}
	return nil
}
