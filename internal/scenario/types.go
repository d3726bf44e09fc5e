package scenario

// Expectation lists what a case asserts about the finished assessment.
// Empty fields are not checked.
type Expectation struct {
	Outcome     string `yaml:"outcome,omitempty"`
	RiskClass   string `yaml:"risk_class,omitempty"`
	Blocked     *bool  `yaml:"blocked,omitempty"`
	Invalidated *bool  `yaml:"invalidated,omitempty"`
}

// Case is one assessment request plus its expected result. Request holds
// an intake document inline.
type Case struct {
	Name    string         `yaml:"name,omitempty"`
	Request map[string]any `yaml:"request"`
	Expect  Expectation    `yaml:"expect"`
}

// Scenario is a named collection of assessment test cases.
type Scenario struct {
	Name  string `yaml:"name"`
	Cases []Case `yaml:"cases"`
}

// CaseResult is the outcome of evaluating one test case.
type CaseResult struct {
	Index    int      `json:"index"`
	Name     string   `json:"name,omitempty"`
	Action   string   `json:"action"`
	Passed   bool     `json:"passed"`
	Expected string   `json:"expected"`
	Actual   string   `json:"actual"`
	Failures []string `json:"failures,omitempty"`
}

// RunResult is the outcome of running all cases in one scenario file.
type RunResult struct {
	File   string       `json:"file"`
	Name   string       `json:"name"`
	Total  int          `json:"total"`
	Passed int          `json:"passed"`
	Failed int          `json:"failed"`
	Cases  []CaseResult `json:"cases"`
}
