package policy

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Requirement is an operator-defined gate rule. When evaluates to true
// over the assessment record, Message is reported as unmet.
type Requirement struct {
	ID      string `yaml:"id"`
	When    string `yaml:"when"`
	Message string `yaml:"message"`
}

// StoreConfig selects the record store backend.
type StoreConfig struct {
	Driver string `yaml:"driver"` // file (default), memory, sqlite, postgres, redis
	DSN    string `yaml:"dsn"`
}

// LLMConfig configures the optional learned reviewer.
type LLMConfig struct {
	Provider          string        `yaml:"provider"` // "", anthropic, openai
	Model             string        `yaml:"model"`
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerMinute int           `yaml:"requests_per_minute"`
}

// Config holds all configurable gate parameters. The built-in requirement
// matrix is not configurable; Requirements only add to it.
type Config struct {
	MinActionLength        int           `yaml:"min_action_length"`
	MinJustificationLength int           `yaml:"min_justification_length"`
	FuzzyThreshold         float64       `yaml:"fuzzy_threshold"`
	ExtraActionVerbs       []string      `yaml:"extra_action_verbs"`
	PatternsFile           string        `yaml:"patterns_file"`
	Requirements           []Requirement `yaml:"requirements"`
	Store                  StoreConfig   `yaml:"store"`
	AuditLog               string        `yaml:"audit_log"`
	LLM                    LLMConfig     `yaml:"llm"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		MinActionLength:        10,
		MinJustificationLength: 50,
		FuzzyThreshold:         0.80,
		Store:                  StoreConfig{Driver: "file"},
		LLM: LLMConfig{
			Timeout:           30 * time.Second,
			RequestsPerMinute: 30,
		},
	}
}

// DefaultPath returns ~/.pbhp/<name>, or "" when the home directory is unknown.
func DefaultPath(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".pbhp", name)
}

// LoadConfig loads gate configuration from a YAML file.
// Empty path falls back to ~/.pbhp/policy.yaml.
// Missing file returns defaults. Invalid YAML returns an error.
func LoadConfig(path string) (*Config, error) {
	cfg, _, err := LoadConfigWithHash(path)
	return cfg, err
}

// LoadConfigWithHash loads configuration and returns the SHA-256 of the raw
// bytes on disk. When no file exists the hash is that of empty input.
func LoadConfigWithHash(path string) (*Config, string, error) {
	if path == "" {
		path = DefaultPath("policy.yaml")
	}

	var data []byte
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, "", fmt.Errorf("failed to read policy config: %w", err)
		}
	}

	h := sha256.Sum256(data)
	hash := "sha256:" + hex.EncodeToString(h[:])

	// Start with defaults, YAML overwrites only specified fields
	cfg := DefaultConfig()
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, "", fmt.Errorf("failed to parse policy config: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, hash, nil
}

// Validate rejects values the gate cannot run with. Requirement
// expressions are checked by NewValidator.
func (c *Config) Validate() error {
	if c.MinActionLength < 1 {
		return fmt.Errorf("policy: min_action_length must be positive, got %d", c.MinActionLength)
	}
	if c.MinJustificationLength < 0 {
		return fmt.Errorf("policy: min_justification_length must not be negative, got %d", c.MinJustificationLength)
	}
	if c.FuzzyThreshold <= 0 || c.FuzzyThreshold > 1 {
		return fmt.Errorf("policy: fuzzy_threshold must be in (0, 1], got %v", c.FuzzyThreshold)
	}
	seen := make(map[string]bool)
	for i, r := range c.Requirements {
		if r.ID == "" || r.When == "" || r.Message == "" {
			return fmt.Errorf("policy: requirement %d needs id, when and message", i)
		}
		if seen[r.ID] {
			return fmt.Errorf("policy: duplicate requirement id %q", r.ID)
		}
		seen[r.ID] = true
	}
	switch c.Store.Driver {
	case "", "memory", "file", "sqlite", "postgres", "redis":
	default:
		return fmt.Errorf("policy: unknown store driver %q", c.Store.Driver)
	}
	switch c.LLM.Provider {
	case "", "anthropic", "openai":
	default:
		return fmt.Errorf("policy: unknown llm provider %q", c.LLM.Provider)
	}
	return nil
}

// DefaultConfigYAML returns a commented policy.yaml matching DefaultConfig.
func DefaultConfigYAML() string {
	return `# PBHP gate policy.
# Omitted fields keep their defaults. The built-in requirement matrix
# always applies; requirements below only add to it.

# Shortest action description preflight accepts.
min_action_length: 10

# Justifications shorter than this are compliance theater at ORANGE and RED.
min_justification_length: 50

# Similarity (0-1] at which a paraphrase counts as a drift phrase.
fuzzy_threshold: 0.80

# Extra verbs preflight accepts as a clear action, e.g. [archive, migrate].
extra_action_verbs: []

# Detector vocabulary extensions (default ~/.pbhp/patterns.yaml).
patterns_file: ""

# Operator requirements. "when" is a CEL expression over the record
# (bound as input); when it is true the message is reported as unmet.
requirements: []
#  - id: follow-up-owner
#    when: 'input.highest_risk_class in ["orange", "red"] && !has(input.follow_up.owner)'
#    message: ORANGE and above need a follow-up owner

store:
  driver: file   # file, memory, sqlite, postgres, redis
  dsn: ""        # directory, database DSN or redis address

# Hash-chained log of sealed records; empty disables it.
audit_log: ""

# Optional advisory reviewer; findings become gate warnings only.
llm:
  provider: ""   # anthropic or openai
  model: ""
  timeout: 30s
  requests_per_minute: 30
`
}
