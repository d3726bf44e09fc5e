package detect

// Detector classifies free text. An empty result means clean.
type Detector interface {
	Detect(text string) []string
}

// Func adapts a plain function to Detector.
type Func func(text string) []string

func (f Func) Detect(text string) []string { return f(text) }

// Chain runs detectors in order and concatenates their findings.
type Chain []Detector

func (c Chain) Detect(text string) []string {
	var out []string
	for _, d := range c {
		if d == nil {
			continue
		}
		out = append(out, d.Detect(text)...)
	}
	return out
}
