package intake

import (
	"context"
	"fmt"

	"github.com/ppiankov/pbhp/internal/engine"
	"github.com/ppiankov/pbhp/internal/model"
)

// Result is what replaying a request produced.
type Result struct {
	Assessment *model.Assessment `json:"-"`
	Record     model.Record      `json:"record"`
	Blocked    bool              `json:"blocked"`
	Finalized  bool              `json:"finalized"`
	Response   string            `json:"response,omitempty"`
}

// Build replays every step of the request except the final decision.
// It stops right after preflight when preflight blocks, so no harm or
// decision work is done on an action that cannot be assessed.
func Build(ctx context.Context, e *engine.Engine, req *Request) (*model.Assessment, bool, error) {
	a, err := e.NewAssessment(req.Action, req.Agent)
	if err != nil {
		return nil, false, err
	}
	if pre := e.Preflight(ctx, a, req.Context); !pre.Passed {
		return a, true, nil
	}

	if req.EthicalPause != nil {
		e.EthicalPause(a, *req.EthicalPause)
	}
	if req.QuickRisk != nil {
		e.QuickRisk(a, *req.QuickRisk)
	}
	e.AbsoluteRejection(a, "", req.AnalysisMode)
	if d := req.DoorWallGap; d != nil {
		e.DoorWallGap(a, d.Wall, d.Gap, d.Door)
	}
	if req.CHIM != nil {
		e.CHIM(a, *req.CHIM)
	}
	for i, h := range req.Harms {
		if _, err := e.AddHarm(a, h); err != nil {
			return a, false, fmt.Errorf("harm %d: %w", i+1, err)
		}
	}
	if req.Consent != nil {
		e.Consent(a, *req.Consent)
	}
	for i, alt := range req.Alternatives {
		if err := e.AddAlternative(a, alt); err != nil {
			return a, false, fmt.Errorf("alternative %d: %w", i+1, err)
		}
	}
	if req.RedTeam != nil {
		e.RedTeam(a, *req.RedTeam)
	}
	if req.Consequences != nil {
		e.Consequences(a, *req.Consequences)
	}
	if req.Uncertainty != nil {
		e.Uncertainty(a, *req.Uncertainty)
	}
	if req.EpistemicFence != nil {
		e.EpistemicFence(a, *req.EpistemicFence)
	}
	a.FollowUp = req.FollowUp
	a.Notes = req.Notes
	return a, false, nil
}

// Run builds the assessment and finalizes it with the requested decision.
// An absolute rejection without an explicit decision is finalized as the
// refusal it pre-set. Without either, the assessment is left open.
func Run(ctx context.Context, e *engine.Engine, req *Request) (*Result, error) {
	a, blocked, err := Build(ctx, e, req)
	if err != nil {
		return nil, err
	}
	res := &Result{Assessment: a, Blocked: blocked}

	if !blocked {
		outcome, justification := a.DecisionOutcome, a.Justification
		if d := req.Decision; d != nil {
			outcome, justification = d.Outcome, d.Justification
		}
		if outcome != "" {
			if _, err := e.Finalize(ctx, a, outcome, justification); err != nil {
				return nil, err
			}
			res.Finalized = true
		}
	}

	res.Record = a.Record()
	res.Response = engine.Respond(a)
	return res, nil
}
