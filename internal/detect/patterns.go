package detect

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Pattern is a named regular expression.
type Pattern struct {
	Name string `yaml:"name"`
	Expr string `yaml:"expr"`
}

// Patterns holds the raw vocabulary organised by family.
type Patterns struct {
	Drift               []Pattern `yaml:"drift"`
	PrematureCollapse   []Pattern `yaml:"premature_collapse"`
	CompassionDrift     []Pattern `yaml:"compassion_drift"`
	Sycophancy          []Pattern `yaml:"sycophancy"`
	FuzzyPhrases        []string  `yaml:"fuzzy_phrases"`
	TheaterPhrases      []string  `yaml:"theater_phrases"`
	Contempt            []string  `yaml:"contempt"`
	Euphemisms          []string  `yaml:"euphemisms"`
	RejectionCategories []string  `yaml:"rejection_categories"`
	RejectionEuphemisms []string  `yaml:"rejection_euphemisms"`
	Eugenics            []string  `yaml:"eugenics"`
	IQClaims            []string  `yaml:"iq_claims"`
}

type namedRegexp struct {
	name string
	re   *regexp.Regexp
}

// Set is a compiled Patterns value. Safe for concurrent use.
type Set struct {
	raw Patterns

	drift      []namedRegexp
	collapse   []namedRegexp
	compassion []namedRegexp
	sycophancy []namedRegexp

	contempt     []*regexp.Regexp
	rejectionEup []*regexp.Regexp
	eugenics     []*regexp.Regexp
	iq           []*regexp.Regexp
}

var defaultSet = mustCompile(DefaultPatterns)

// Default returns the compiled built-in vocabulary.
func Default() *Set {
	return defaultSet
}

// Compile compiles every expression in p.
func Compile(p Patterns) (*Set, error) {
	s := &Set{raw: p}
	var err error

	if s.drift, err = compileNamed("drift", p.Drift); err != nil {
		return nil, err
	}
	if s.collapse, err = compileNamed("premature_collapse", p.PrematureCollapse); err != nil {
		return nil, err
	}
	if s.compassion, err = compileNamed("compassion_drift", p.CompassionDrift); err != nil {
		return nil, err
	}
	if s.sycophancy, err = compileNamed("sycophancy", p.Sycophancy); err != nil {
		return nil, err
	}
	if s.contempt, err = compileAll("contempt", p.Contempt); err != nil {
		return nil, err
	}
	if s.rejectionEup, err = compileAll("rejection_euphemisms", p.RejectionEuphemisms); err != nil {
		return nil, err
	}
	if s.eugenics, err = compileAll("eugenics", p.Eugenics); err != nil {
		return nil, err
	}
	if s.iq, err = compileAll("iq_claims", p.IQClaims); err != nil {
		return nil, err
	}
	return s, nil
}

// Raw returns the uncompiled vocabulary.
func (s *Set) Raw() Patterns {
	return s.raw
}

// Merge appends extra's entries to base, family by family.
func Merge(base, extra Patterns) Patterns {
	return Patterns{
		Drift:               concat(base.Drift, extra.Drift),
		PrematureCollapse:   concat(base.PrematureCollapse, extra.PrematureCollapse),
		CompassionDrift:     concat(base.CompassionDrift, extra.CompassionDrift),
		Sycophancy:          concat(base.Sycophancy, extra.Sycophancy),
		FuzzyPhrases:        concat(base.FuzzyPhrases, extra.FuzzyPhrases),
		TheaterPhrases:      concat(base.TheaterPhrases, extra.TheaterPhrases),
		Contempt:            concat(base.Contempt, extra.Contempt),
		Euphemisms:          concat(base.Euphemisms, extra.Euphemisms),
		RejectionCategories: concat(base.RejectionCategories, extra.RejectionCategories),
		RejectionEuphemisms: concat(base.RejectionEuphemisms, extra.RejectionEuphemisms),
		Eugenics:            concat(base.Eugenics, extra.Eugenics),
		IQClaims:            concat(base.IQClaims, extra.IQClaims),
	}
}

// LoadPatterns reads a pattern extension file and merges it onto the
// defaults. An empty path means ~/.pbhp/patterns.yaml. A missing file
// yields the defaults.
func LoadPatterns(path string) (*Set, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Default(), nil
		}
		path = filepath.Join(home, ".pbhp", "patterns.yaml")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("detect: read patterns: %w", err)
	}

	var extra Patterns
	if err := yaml.Unmarshal(data, &extra); err != nil {
		return nil, fmt.Errorf("detect: parse patterns %s: %w", path, err)
	}
	return Compile(Merge(DefaultPatterns, extra))
}

func mustCompile(p Patterns) *Set {
	s, err := Compile(p)
	if err != nil {
		panic(err)
	}
	return s
}

func compileNamed(family string, ps []Pattern) ([]namedRegexp, error) {
	out := make([]namedRegexp, 0, len(ps))
	for _, p := range ps {
		re, err := regexp.Compile(p.Expr)
		if err != nil {
			return nil, fmt.Errorf("detect: %s pattern %q: %w", family, p.Name, err)
		}
		out = append(out, namedRegexp{name: p.Name, re: re})
	}
	return out, nil
}

func compileAll(family string, exprs []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(exprs))
	for _, e := range exprs {
		re, err := regexp.Compile(e)
		if err != nil {
			return nil, fmt.Errorf("detect: %s pattern %q: %w", family, e, err)
		}
		out = append(out, re)
	}
	return out, nil
}

func concat[T any](a, b []T) []T {
	out := make([]T, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}

// matchFamily returns "<category>:<name>" for every pattern that matches.
// Names shared by several patterns may appear more than once.
func matchFamily(text, category string, family []namedRegexp) []string {
	var out []string
	for _, p := range family {
		if p.re.MatchString(text) {
			out = append(out, category+":"+p.name)
		}
	}
	return out
}
