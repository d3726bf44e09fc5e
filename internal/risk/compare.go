package risk

import "github.com/ppiankov/pbhp/internal/model"

// Preference is the result of comparing two options.
type Preference string

const (
	PreferA Preference = "a"
	PreferB Preference = "b"
	Tied    Preference = "tied"
)

// CompareOptions ranks two options by their harms, lexicographically:
// any catastrophic irreversible harm, then fewer irreversible harms, then
// fewer severe-or-worse harms, then fewer harms landing on the less powerful.
// A large benefit never buys back a worse position on an earlier key.
func CompareOptions(a, b []model.Harm) Preference {
	ca, cb := hasCatastrophicIrreversible(a), hasCatastrophicIrreversible(b)
	switch {
	case ca && !cb:
		return PreferB
	case cb && !ca:
		return PreferA
	}

	keys := []func(model.Harm) bool{
		func(h model.Harm) bool { return h.Irreversible },
		func(h model.Harm) bool {
			return h.Impact == model.ImpactSevere || h.Impact == model.ImpactCatastrophic
		},
		func(h model.Harm) bool { return h.PowerAsymmetry },
	}
	for _, key := range keys {
		na, nb := count(a, key), count(b, key)
		if na < nb {
			return PreferA
		}
		if nb < na {
			return PreferB
		}
	}
	return Tied
}

func hasCatastrophicIrreversible(harms []model.Harm) bool {
	for _, h := range harms {
		if h.Impact == model.ImpactCatastrophic && h.Irreversible {
			return true
		}
	}
	return false
}

func count(harms []model.Harm, pred func(model.Harm) bool) int {
	n := 0
	for _, h := range harms {
		if pred(h) {
			n++
		}
	}
	return n
}
