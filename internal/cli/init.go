package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ppiankov/pbhp/internal/policy"
)

var (
	initDir   string
	initForce bool
)

func init() {
	initCmd.Flags().StringVar(&initDir, "dir", "", "Config directory (default ~/.pbhp)")
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite existing config files")
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Bootstrap PBHP configuration",
	Long: `Creates the config directory with a commented default policy, an empty
detector pattern extension file, and an example scenario for "pbhp check".

Existing files are left alone unless --force is given.`,
	RunE: runInit,
}

const patternsTemplate = `# PBHP detector vocabulary extensions.
# Entries here are added to the built-in lists; nothing can be removed.
# Regex patterns are matched against NFKC-folded, lower-cased text.

drift: []
#  - name: budget-excuse
#    expr: 'the\s+budget\s+made\s+us'
premature_collapse: []
compassion_drift: []
sycophancy: []
fuzzy_phrases: []
theater_phrases: []
contempt: []
euphemisms: []
rejection_categories: []
rejection_euphemisms: []
eugenics: []
iq_claims: []
`

const exampleScenario = `name: example gate checks
cases:
  - name: reversible rename proceeds
    request:
      action: Rename the shared config file
      harms:
        - {description: Scripts that read the old name break, impact: trivial, likelihood: unlikely}
      door_wall_gap: {wall: Shared file, gap: Old scripts, door: Undo rename if needed}
      decision: {outcome: proceed, justification: "Low risk, reversible"}
    expect: {outcome: proceed, risk_class: green}

  - name: vague action is blocked
    request:
      action: do stuff
    expect: {blocked: true}
`

func runInit(cmd *cobra.Command, args []string) error {
	configDir := initDir
	if configDir == "" {
		configDir = filepath.Dir(policy.DefaultPath("policy.yaml"))
		if configDir == "." {
			return fmt.Errorf("cannot determine home directory; use --dir")
		}
	}

	files := []struct {
		path    string
		content string
	}{
		{filepath.Join(configDir, "policy.yaml"), policy.DefaultConfigYAML()},
		{filepath.Join(configDir, "patterns.yaml"), patternsTemplate},
		{filepath.Join(configDir, "scenarios", "example.yaml"), exampleScenario},
	}

	var created []string
	for _, f := range files {
		wrote, err := writeIfMissing(f.path, f.content)
		if err != nil {
			return err
		}
		if wrote {
			created = append(created, f.path)
		}
	}

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, "pbhp init complete.")
	fmt.Fprintln(w)
	if len(created) > 0 {
		fmt.Fprintln(w, "Created:")
		for _, path := range created {
			fmt.Fprintf(w, "  %s\n", path)
		}
	} else {
		fmt.Fprintln(w, "All files already exist (use --force to overwrite).")
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Verify:")
	fmt.Fprintf(w, "  pbhp check --scenario '%s'\n", filepath.Join(configDir, "scenarios", "*.yaml"))
	return nil
}

// writeIfMissing writes content to path if it doesn't exist or --force is set.
// Returns true if the file was written.
func writeIfMissing(path, content string) (bool, error) {
	if !initForce {
		if _, err := os.Stat(path); err == nil {
			return false, nil
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false, fmt.Errorf("create directory %s: %w", dir, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	return true, nil
}
