package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ppiankov/pbhp/internal/audit"
	"github.com/ppiankov/pbhp/internal/detect"
	"github.com/ppiankov/pbhp/internal/model"
	"github.com/ppiankov/pbhp/internal/policy"
	"github.com/ppiankov/pbhp/internal/store"
)

var fixedNow = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

func testEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	n := 0
	base := []Option{
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithClock(func() time.Time { return fixedNow }),
		WithIDs(func() string { n++; return fmt.Sprintf("rec-%d", n) }),
	}
	return New(store.NewMemory(), append(base, opts...)...)
}

func newAssessment(t *testing.T, e *Engine, action string) *model.Assessment {
	t.Helper()
	a, err := e.NewAssessment(action, model.AgentMetadata{AgentType: "test"})
	require.NoError(t, err)
	return a
}

func addHarm(t *testing.T, e *Engine, a *model.Assessment, impact model.Impact, likelihood model.Likelihood, irreversible, power bool) model.Harm {
	t.Helper()
	h, err := e.AddHarm(a, model.Harm{
		Description:           "Residents lose access to records",
		Impact:                impact,
		Likelihood:            likelihood,
		Irreversible:          irreversible,
		PowerAsymmetry:        power,
		AffectedParties:       []string{"residents"},
		LeastPowerfulAffected: "residents",
	})
	require.NoError(t, err)
	return h
}

func TestScenarioGreenProceeds(t *testing.T) {
	e := testEngine(t)
	ctx := context.Background()
	a := newAssessment(t, e, "Rename the shared config file")

	h := addHarm(t, e, a, model.ImpactTrivial, model.LikelihoodUnlikely, false, false)
	require.Equal(t, model.Green, h.RiskClass)
	require.True(t, e.DoorWallGap(a, "File is shared", "Scripts may break", "Undo rename if needed"))

	_, err := e.Finalize(ctx, a, model.OutcomeProceed, "Low risk, reversible")
	require.NoError(t, err)

	require.True(t, a.FinalizationGate.Valid)
	require.Equal(t, model.OutcomeProceed, a.DecisionOutcome)
	require.Equal(t, "Low risk, reversible", a.Justification)
	require.True(t, a.Sealed)
	require.Empty(t, a.DriftAlarms)

	rec, err := e.Get(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, model.OutcomeProceed, rec.DecisionOutcome)
	require.True(t, rec.Sealed)
}

func TestScenarioRedWithoutArtifactsEscalates(t *testing.T) {
	e := testEngine(t)
	a := newAssessment(t, e, "Close the shelter intake queue")

	h := addHarm(t, e, a, model.ImpactSevere, model.LikelihoodLikely, true, true)
	require.Equal(t, model.Red, h.RiskClass)
	e.DoorWallGap(a, "Budget", "Intake stops", "Route new intakes to the county office")

	_, err := e.Finalize(context.Background(), a, model.OutcomeProceed, "Doing it anyway")
	require.NoError(t, err)

	g := a.FinalizationGate
	require.False(t, g.Valid)
	require.True(t, g.RequiresRerun)
	require.Equal(t, model.OutcomeProceed, g.RequestedOutcome)
	require.Equal(t, model.OutcomeEscalate, a.DecisionOutcome)

	reasons := strings.Join(g.InvalidationReasons, "\n")
	require.Contains(t, reasons, "RED requires safer alternatives")
	require.Contains(t, reasons, "RED requires Red Team review")
	require.True(t, strings.HasPrefix(a.Justification, "FINALIZATION GATE INVALIDATED original decision (proceed). Reasons: "))
	require.True(t, strings.HasSuffix(a.Justification, "Original justification: Doing it anyway"))

	for _, r := range g.InvalidationReasons {
		require.Contains(t, a.DriftAlarms, r)
	}
}

func TestScenarioBlackMustRefuseOrEscalate(t *testing.T) {
	e := testEngine(t)
	a := newAssessment(t, e, "Release the untested dam control update")

	h := addHarm(t, e, a, model.ImpactCatastrophic, model.LikelihoodImminent, true, true)
	require.Equal(t, model.Black, h.RiskClass)
	e.DoorWallGap(a, "Deadline", "Flooding", "Keep the current controller and stage the update")
	require.NoError(t, e.AddAlternative(a, model.Alternative{Description: "Run the update in simulation first", ReducesHarm: true}))
	e.RedTeam(a, model.RedTeamReview{
		FailureModes: []string{"gate opens at the wrong level"},
		WhoBearsRisk: "Downstream residents",
	})

	_, err := e.Finalize(context.Background(), a, model.OutcomeProceed, "Justification text")
	require.NoError(t, err)

	g := a.FinalizationGate
	require.False(t, g.Valid)
	require.Equal(t, []string{
		"Cannot PROCEED with unresolved validation errors: BLACK: Must refuse or escalate, cannot proceed",
	}, g.InvalidationReasons)
	require.Equal(t, model.OutcomeEscalate, a.DecisionOutcome)
}

func TestScenarioPreflightBlocks(t *testing.T) {
	tests := []struct {
		name           string
		action         string
		underspecified bool
		wantBlock      string
	}{
		{"vague action", "do stuff", true, "Action underspecified"},
		{"power and irreversibility", "Permanently terminate refugee housing program", false, "Power asymmetry + irreversibility"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := testEngine(t)
			a := newAssessment(t, e, tt.action)

			res := e.Preflight(context.Background(), a, "")
			require.False(t, res.Passed)
			require.NotEmpty(t, res.Blocks)
			require.Equal(t, tt.underspecified, res.Underspecified)
			require.Contains(t, strings.Join(res.Blocks, "\n"), tt.wantBlock)
			require.NotNil(t, a.Preflight)
			for _, b := range res.Blocks {
				require.Contains(t, a.DriftAlarms, b)
			}
		})
	}
}

func TestScenarioVagueDoor(t *testing.T) {
	for _, door := range []string{"be cautious", "Be Cautious", "BE CAUTIOUS."} {
		d, ok := CheckDoorWallGap("x", "y", door)
		require.False(t, ok, door)
		require.Equal(t, door, d.Door)
	}

	e := testEngine(t)
	a := newAssessment(t, e, "Publish the incident report")
	require.False(t, e.DoorWallGap(a, "x", "y", "be cautious"))
	require.Equal(t, []string{"No concrete Door identified - PBHP does not permit proceeding without an escape vector"}, a.DriftAlarms)
}

func TestNewAssessmentDefaults(t *testing.T) {
	e := testEngine(t)
	a, err := e.NewAssessment("Send the renewal reminder", model.AgentMetadata{})
	require.NoError(t, err)
	require.Equal(t, "rec-1", a.ID)
	require.Equal(t, fixedNow, a.CreatedAt)
	require.Equal(t, model.ProtocolVersion, a.Version)
	require.Equal(t, "ai_system", a.Agent.AgentType)
	require.Equal(t, model.Green, a.HighestRiskClass)

	_, err = e.NewAssessment("   ", model.AgentMetadata{})
	require.ErrorIs(t, err, model.ErrEmptyDescription)
}

func TestDefaultIDsAreUUIDs(t *testing.T) {
	e := New(nil, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	a, err := e.NewAssessment("Send the renewal reminder", model.AgentMetadata{})
	require.NoError(t, err)
	require.Len(t, a.ID, 36)
}

func TestAddHarmRejectsInvalidInput(t *testing.T) {
	e := testEngine(t)
	a := newAssessment(t, e, "Send the renewal reminder")

	_, err := e.AddHarm(a, model.Harm{Description: "x", Impact: "huge", Likelihood: model.LikelihoodLikely})
	require.ErrorIs(t, err, model.ErrInvalidImpact)
	_, err = e.AddHarm(a, model.Harm{Description: "x", Impact: model.ImpactSevere, Likelihood: "often"})
	require.ErrorIs(t, err, model.ErrInvalidLikelihood)
	_, err = e.AddHarm(a, model.Harm{Impact: model.ImpactSevere, Likelihood: model.LikelihoodLikely})
	require.ErrorIs(t, err, model.ErrEmptyDescription)

	require.Empty(t, a.Harms)
	require.Equal(t, model.Green, a.HighestRiskClass)
}

func TestWatermarkNeverDecreases(t *testing.T) {
	e := testEngine(t)
	a := newAssessment(t, e, "Send the renewal reminder")

	addHarm(t, e, a, model.ImpactSevere, model.LikelihoodLikely, true, false)
	require.Equal(t, model.Red, a.HighestRiskClass)
	h := addHarm(t, e, a, model.ImpactTrivial, model.LikelihoodUnlikely, false, false)
	require.Equal(t, model.Green, h.RiskClass)
	require.Equal(t, model.Red, a.HighestRiskClass)
	require.Len(t, a.Harms, 2)
	require.Equal(t, model.UncertaintyFuzzy, a.Harms[1].UncertaintyLevel)
}

func TestFinalizeIsTerminal(t *testing.T) {
	e := testEngine(t)
	ctx := context.Background()
	a := newAssessment(t, e, "Rename the shared config file")
	e.DoorWallGap(a, "w", "g", "Undo rename if needed")

	_, err := e.Finalize(ctx, a, model.OutcomeProceed, "Low risk, reversible")
	require.NoError(t, err)
	alarms := len(a.DriftAlarms)

	_, err = e.Finalize(ctx, a, model.OutcomeRefuse, "changed my mind")
	require.ErrorIs(t, err, ErrAlreadyFinalized)
	require.Equal(t, model.OutcomeProceed, a.DecisionOutcome)
	require.Equal(t, "Low risk, reversible", a.Justification)
	require.Len(t, a.DriftAlarms, alarms)

	_, err = e.AddHarm(a, model.Harm{Description: "late", Impact: model.ImpactSevere, Likelihood: model.LikelihoodLikely})
	require.ErrorIs(t, err, ErrAlreadyFinalized)
}

func TestFinalizeRejectsUnknownOutcome(t *testing.T) {
	e := testEngine(t)
	a := newAssessment(t, e, "Rename the shared config file")
	_, err := e.Finalize(context.Background(), a, "maybe", "x")
	require.ErrorIs(t, err, model.ErrInvalidOutcome)
	require.False(t, a.Sealed)
}

func TestFinalizeWarningsAreLogged(t *testing.T) {
	e := testEngine(t)
	a := newAssessment(t, e, "Rename the shared config file")

	// No door at GREEN: unmet requirement, but a refusal is not blocked by it.
	_, err := e.Finalize(context.Background(), a, model.OutcomeRefuse, "Low risk, reversible")
	require.NoError(t, err)
	require.True(t, a.FinalizationGate.Valid)
	require.Equal(t, model.OutcomeRefuse, a.DecisionOutcome)
	require.Contains(t, a.DriftAlarms, "Door/Wall/Gap analysis not performed")
}

func TestReviewerFindingsBecomeWarnings(t *testing.T) {
	reviewer := detect.Func(func(string) []string { return []string{"responsibility shifted"} })
	e := testEngine(t, WithReviewer(reviewer))
	a := newAssessment(t, e, "Rename the shared config file")
	e.DoorWallGap(a, "w", "g", "Undo rename if needed")

	_, err := e.Finalize(context.Background(), a, model.OutcomeProceed, "Low risk, reversible")
	require.NoError(t, err)
	require.True(t, a.FinalizationGate.Valid)
	require.Contains(t, a.DriftAlarms, "gate_warning:Reviewer: responsibility shifted")
}

func TestCustomRequirements(t *testing.T) {
	v, err := policy.NewValidator([]policy.Requirement{{
		ID:      "owner",
		When:    `!has(input.follow_up.owner)`,
		Message: "Follow-up owner required",
	}})
	require.NoError(t, err)
	e := testEngine(t, WithValidator(v))
	a := newAssessment(t, e, "Rename the shared config file")
	e.DoorWallGap(a, "w", "g", "Undo rename if needed")

	require.Equal(t, []string{"Follow-up owner required"}, e.ValidateRequirements(a))

	_, err = e.Finalize(context.Background(), a, model.OutcomeProceed, "Low risk, reversible")
	require.NoError(t, err)
	require.Equal(t, model.OutcomeEscalate, a.DecisionOutcome)
}

type failingStore struct{ store.Store }

func (failingStore) Save(context.Context, model.Record) error { return errors.New("disk full") }

func TestFinalizeSurfacesStoreErrors(t *testing.T) {
	e := New(failingStore{store.NewMemory()}, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	a := newAssessment(t, e, "Rename the shared config file")
	_, err := e.Finalize(context.Background(), a, model.OutcomeRefuse, "Low risk, reversible")
	require.ErrorContains(t, err, "disk full")
}

// flakyStore fails the first n saves.
type flakyStore struct {
	*store.Memory
	fails int
}

func (f *flakyStore) Save(ctx context.Context, r model.Record) error {
	if f.fails > 0 {
		f.fails--
		return errors.New("disk full")
	}
	return f.Memory.Save(ctx, r)
}

func TestFinalizeRetryAfterStoreError(t *testing.T) {
	st := &flakyStore{Memory: store.NewMemory(), fails: 1}
	e := New(st, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	ctx := context.Background()
	a := newAssessment(t, e, "Rename the shared config file")
	e.DoorWallGap(a, "w", "g", "Undo rename if needed")
	alarms := len(a.DriftAlarms)

	_, err := e.Finalize(ctx, a, model.OutcomeProceed, "Low risk, reversible")
	require.ErrorContains(t, err, "disk full")
	require.False(t, a.Sealed)
	require.Empty(t, a.DecisionOutcome)
	require.Nil(t, a.FinalizationGate)
	require.Len(t, a.DriftAlarms, alarms)

	_, err = e.Finalize(ctx, a, model.OutcomeProceed, "Low risk, reversible")
	require.NoError(t, err)
	require.True(t, a.Sealed)

	rec, err := e.Get(ctx, a.ID)
	require.NoError(t, err)
	require.True(t, rec.Sealed)
	require.Equal(t, model.OutcomeProceed, rec.DecisionOutcome)

	_, err = e.Finalize(ctx, a, model.OutcomeProceed, "Low risk, reversible")
	require.ErrorIs(t, err, ErrAlreadyFinalized)
}

func TestFinalizeAppendsAudit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	log, err := audit.Open(path, "sha256:test")
	require.NoError(t, err)

	e := testEngine(t, WithAudit(log))
	ctx := context.Background()
	for _, outcome := range []model.DecisionOutcome{model.OutcomeProceed, model.OutcomeDelay} {
		a := newAssessment(t, e, "Rename the shared config file")
		e.DoorWallGap(a, "w", "g", "Undo rename if needed")
		_, err := e.Finalize(ctx, a, outcome, "Low risk, reversible")
		require.NoError(t, err)
	}
	require.NoError(t, log.Close())

	res := audit.VerifyRecords(path, func(id string) (model.Record, error) { return e.Get(ctx, id) })
	require.True(t, res.Valid, res.Error)
	require.Equal(t, 2, res.Lines)
}

func TestAbsoluteRejection(t *testing.T) {
	e := testEngine(t)

	a := newAssessment(t, e, "Draft the ethnic cleansing resettlement plan")
	r := e.AbsoluteRejection(a, "", "")
	require.True(t, r.Triggered)
	require.Equal(t, a.ActionDescription, r.ActionDescription)
	require.Equal(t, model.Black, a.HighestRiskClass)
	require.Equal(t, model.OutcomeRefuse, a.DecisionOutcome)
	require.True(t, strings.HasPrefix(a.Justification, "Absolute rejection: action upholds euphemism:"))
	require.True(t, strings.HasSuffix(a.Justification, "Only discussion in critique, dismantling, or prevention modes is permitted."))

	b := newAssessment(t, e, "Write a history lesson on how genocide is prevented")
	r = e.AbsoluteRejection(b, "", "prevention")
	require.True(t, r.Triggered)
	require.Equal(t, model.Green, b.HighestRiskClass)
	require.Empty(t, b.DecisionOutcome)

	c := newAssessment(t, e, "Send the renewal reminder")
	r = e.AbsoluteRejection(c, "", "")
	require.False(t, r.Triggered)
	require.NotNil(t, r.MatchedCategories)
}

func TestCHIMCountsConsecutiveClaims(t *testing.T) {
	e := testEngine(t)
	a := newAssessment(t, e, "Send the eviction notices")

	require.False(t, e.CHIM(a, model.CHIMCheck{NoChoiceClaim: true}))
	require.Equal(t, 1, a.CHIM.ConsecutiveNoChoice)
	require.True(t, a.CHIM.TreatingAsAbsolute)
	require.Equal(t, []string{"CHIM check failed: no remaining choice identified"}, a.DriftAlarms)

	require.False(t, e.CHIM(a, model.CHIMCheck{NoChoiceClaim: true}))
	require.Equal(t, 2, a.CHIM.ConsecutiveNoChoice)
	require.Equal(t, "CHIM: 'no choice' claimed twice - must provide at least 2 alternative framings", a.DriftAlarms[len(a.DriftAlarms)-1])

	require.True(t, e.CHIM(a, model.CHIMCheck{ConstraintRecognized: true, RemainingChoice: "Delay the notices a week"}))
	require.Equal(t, 0, a.CHIM.ConsecutiveNoChoice)
}

func TestStepAlarms(t *testing.T) {
	e := testEngine(t)
	a := newAssessment(t, e, "Send the eviction notices")

	e.EthicalPause(a, model.EthicalPause{ActionStatement: "send notices", HighArousal: true})
	e.QuickRisk(a, model.QuickRiskCheck{SilenceDelayProtectsMore: model.Unsure})
	require.True(t, a.QuickRisk.ShouldTighten())

	flags := e.Consequences(a, model.ConsequencesChecklist{AnyHorizonIrreversible: true})
	require.True(t, flags.IrreversibleHarm)
	require.True(t, flags.AgencyLoss, "unanswered questions count as unsure")

	e.Uncertainty(a, model.UncertaintyAssessment{HarmHighHardToUndo: true, HarmFallsOnLowPower: true, BenefitsSpeculative: true, Confidence: model.ConfidenceLow})
	issues := e.EpistemicFence(a, model.EpistemicFence{Mode: model.FenceExplore})

	require.Equal(t, []string{"EXPLORE mode requires at least 2 competing frames"}, issues)
	require.Equal(t, []string{
		"High arousal state detected: tightening behavior (slow down, clarify intent, smallest safe action)",
		"Consequences checklist: critical flags require Door/CHIM rerun + safer alternative search",
		"Uncertainty rule: high harm + low power + speculative benefits -> default to shrink/slow/oppose",
		"Epistemic fence: EXPLORE mode requires at least 2 competing frames",
	}, a.DriftAlarms)
	require.Equal(t, "low", a.Confidence())
}

func TestConsentAndAlternatives(t *testing.T) {
	e := testEngine(t)
	a := newAssessment(t, e, "Send the eviction notices")

	require.Equal(t, model.ConsentNarrow, e.Consent(a, model.ConsentCheck{CompatibleWithDignity: false}))
	require.Contains(t, e.ValidateRequirements(a), "Action not compatible with dignity of least powerful affected")

	require.ErrorIs(t, e.AddAlternative(a, model.Alternative{Description: " "}), model.ErrEmptyDescription)
	require.NoError(t, e.AddAlternative(a, model.Alternative{Description: "Offer a payment plan"}))
	require.Len(t, a.Alternatives, 1)
}

func TestRedTeamOutcome(t *testing.T) {
	e := testEngine(t)
	a := newAssessment(t, e, "Send the eviction notices")

	r := e.RedTeam(a, model.RedTeamReview{
		FailureModes: []string{"wrong tenants listed"},
		AbuseVectors: []string{"severe retaliation against organisers"},
		WhoBearsRisk: "Tenants",
	})
	require.Equal(t, model.RedTeamUnresolved, r.Outcome)

	r = e.RedTeam(a, model.RedTeamReview{})
	require.Equal(t, model.RedTeamNoIssues, r.Outcome)
	require.Same(t, r, a.RedTeam)
}

func TestChallengePause(t *testing.T) {
	e := testEngine(t)
	a := newAssessment(t, e, "Send the eviction notices")

	r := e.ChallengePause(a, "urgency language", "tenants lose housing", "", "")
	require.Equal(t, "maintained", r.Outcome)
	require.True(t, a.PauseChallenged)
	require.Equal(t, "Trigger: urgency language. Risk: tenants lose housing. Outcome: maintained.", a.PauseJustification)

	r = e.ChallengePause(a, "urgency language", "tenants lose housing", "Send only to units already vacated", "Court order on file")
	require.Equal(t, "released", r.Outcome)
	require.Equal(t, "released", a.FalsePositive.Outcome)
}
