package llm

import (
	"context"
	"encoding/json"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const systemPrompt = `You review the written justification for a decision that may harm people.
Report rationalization: minimizing harm, false urgency, claims of having no choice,
shifting responsibility, flattery, or contempt for the people affected.
Output ONLY JSON: {"findings": ["short finding", ...]}. Use an empty list when the
justification is plain and honest. Do not judge whether the decision is correct.`

const maxFindings = 5

// Options configures a Reviewer.
type Options struct {
	Timeout           time.Duration
	RequestsPerMinute int
	MaxTokens         int
	Logger            *slog.Logger
}

// Reviewer asks an LLM to flag rationalization in a justification. It
// satisfies detect.Detector. Errors are logged and yield no findings.
type Reviewer struct {
	provider Provider
	limiter  *rate.Limiter
	timeout  time.Duration
	tokens   int
	log      *slog.Logger
}

// NewReviewer wraps a provider with a timeout and a request-rate limit.
func NewReviewer(p Provider, opts Options) *Reviewer {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.RequestsPerMinute <= 0 {
		opts.RequestsPerMinute = 30
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 512
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	perSecond := rate.Limit(float64(opts.RequestsPerMinute) / 60.0)
	return &Reviewer{
		provider: p,
		limiter:  rate.NewLimiter(perSecond, 1),
		timeout:  opts.Timeout,
		tokens:   opts.MaxTokens,
		log:      opts.Logger,
	}
}

// Detect implements detect.Detector.
func (r *Reviewer) Detect(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	findings, err := r.Review(ctx, text)
	if err != nil {
		r.log.Warn("justification review failed", "error", err)
		return nil
	}
	return findings
}

// Review waits for a rate-limit slot, queries the provider and parses
// the findings.
func (r *Reviewer) Review(ctx context.Context, justification string) ([]string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	raw, err := r.provider.Complete(ctx, systemPrompt, "Justification:\n"+justification, r.tokens)
	if err != nil {
		return nil, err
	}
	return ParseFindings(raw)
}

var fenceRe = regexp.MustCompile("(?s)^(?:`{3}|~{3})[^\\n]*\\n(.*?)(?:`{3}|~{3})\\s*$")

// ParseFindings decodes {"findings": [...]}, tolerating a markdown code
// fence around the JSON. Blank findings are dropped and at most five kept.
func ParseFindings(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if m := fenceRe.FindStringSubmatch(raw); m != nil {
		raw = strings.TrimSpace(m[1])
	}
	var resp struct {
		Findings []string `json:"findings"`
	}
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, err
	}
	var out []string
	for _, f := range resp.Findings {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
		if len(out) == maxFindings {
			break
		}
	}
	return out, nil
}
