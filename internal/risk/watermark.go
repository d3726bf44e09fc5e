package risk

import "github.com/ppiankov/pbhp/internal/model"

// Max folds classes into the highest one. An empty list is Green.
func Max(classes ...model.RiskClass) model.RiskClass {
	out := model.Green
	for _, rc := range classes {
		if rc > out {
			out = rc
		}
	}
	return out
}

// Watermark recomputes an assessment's highest class from its harms.
func Watermark(harms []model.Harm) model.RiskClass {
	out := model.Green
	for _, h := range harms {
		out = Max(out, h.RiskClass)
	}
	return out
}

// MinimumFloor is the fast harm check: hard to undo and landing on people
// with less power means at least ORANGE, whatever the detail says.
func MinimumFloor(hardToUndo, landsOnLessPower bool) model.RiskClass {
	if hardToUndo && landsOnLessPower {
		return model.Orange
	}
	return model.Green
}
