package policy

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfigValues(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.MinActionLength != 10 {
		t.Errorf("expected MinActionLength=10, got %d", cfg.MinActionLength)
	}
	if cfg.MinJustificationLength != 50 {
		t.Errorf("expected MinJustificationLength=50, got %d", cfg.MinJustificationLength)
	}
	if cfg.FuzzyThreshold != 0.80 {
		t.Errorf("expected FuzzyThreshold=0.80, got %v", cfg.FuzzyThreshold)
	}
	if cfg.Store.Driver != "file" {
		t.Errorf("expected file store, got %s", cfg.Store.Driver)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config must validate: %v", err)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, hash, err := LoadConfigWithHash("/nonexistent/path/policy.yaml")
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
	if cfg.MinActionLength != 10 {
		t.Errorf("expected defaults, got %+v", cfg)
	}
	empty := sha256.Sum256(nil)
	if hash != "sha256:"+hex.EncodeToString(empty[:]) {
		t.Errorf("expected empty-input hash, got %s", hash)
	}
}

func TestLoadConfigFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.yaml")

	content := `
min_justification_length: 80
fuzzy_threshold: 0.9
extra_action_verbs: [migrate, rotate]
requirements:
  - id: two-alternatives-at-red
    when: input.highest_risk_class == "red" && size(input.alternatives) < 2
    message: "RED requires at least two safer alternatives"
store:
  driver: sqlite
  dsn: /tmp/pbhp.db
llm:
  provider: anthropic
  timeout: 5s
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, hash, err := LoadConfigWithHash(path)
	if err != nil {
		t.Fatalf("LoadConfigWithHash: %v", err)
	}
	if cfg.MinJustificationLength != 80 || cfg.FuzzyThreshold != 0.9 {
		t.Errorf("unexpected overrides: %+v", cfg)
	}
	// Unspecified fields keep defaults
	if cfg.MinActionLength != 10 {
		t.Errorf("expected default MinActionLength, got %d", cfg.MinActionLength)
	}
	if len(cfg.ExtraActionVerbs) != 2 || len(cfg.Requirements) != 1 {
		t.Errorf("unexpected lists: %+v", cfg)
	}
	if cfg.Store.Driver != "sqlite" || cfg.Store.DSN != "/tmp/pbhp.db" {
		t.Errorf("unexpected store: %+v", cfg.Store)
	}
	if cfg.LLM.Timeout != 5*time.Second {
		t.Errorf("expected 5s timeout, got %v", cfg.LLM.Timeout)
	}
	if cfg.LLM.RequestsPerMinute != 30 {
		t.Errorf("expected default rate, got %d", cfg.LLM.RequestsPerMinute)
	}

	sum := sha256.Sum256([]byte(content))
	if hash != "sha256:"+hex.EncodeToString(sum[:]) {
		t.Errorf("hash mismatch: %s", hash)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"invalid yaml", "min_action_length: [", "failed to parse"},
		{"bad threshold", "fuzzy_threshold: 1.5", "fuzzy_threshold"},
		{"bad driver", "store:\n  driver: mongo", "unknown store driver"},
		{"bad provider", "llm:\n  provider: bard", "unknown llm provider"},
		{"incomplete requirement", "requirements:\n  - id: x\n    when: \"true\"", "needs id, when and message"},
		{"duplicate requirement", "requirements:\n  - {id: x, when: \"true\", message: m}\n  - {id: x, when: \"true\", message: m}", "duplicate requirement"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "policy.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0o600); err != nil {
				t.Fatal(err)
			}
			_, err := LoadConfig(path)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestDefaultConfigYAMLMatchesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	if err := os.WriteFile(path, []byte(DefaultConfigYAML()), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("generated policy must load: %v", err)
	}
	def := DefaultConfig()
	if cfg.MinActionLength != def.MinActionLength || cfg.MinJustificationLength != def.MinJustificationLength ||
		cfg.FuzzyThreshold != def.FuzzyThreshold || cfg.Store.Driver != def.Store.Driver ||
		cfg.LLM.Timeout != def.LLM.Timeout || cfg.LLM.RequestsPerMinute != def.LLM.RequestsPerMinute {
		t.Errorf("generated policy drifted from defaults: %+v", cfg)
	}
}
