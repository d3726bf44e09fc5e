package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath  string
	storeDriver string
	storeDSN    string
	auditPath   string
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "pbhp",
	Short: "Pause Before Harm Protocol gate",
	Long: "Walks an action through the Pause Before Harm Protocol: classifies declared harms,\n" +
		"enforces the requirements of the resulting risk class, screens text for drift,\n" +
		"and seals an auditable record. Decision support, not an ethical theory.",
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "Path to policy YAML (default ~/.pbhp/policy.yaml)")
	pf.StringVar(&storeDriver, "store", "", "Record store driver: file, memory, sqlite, postgres, redis (overrides config)")
	pf.StringVar(&storeDSN, "store-dsn", "", "Record store DSN or directory (overrides config)")
	pf.StringVar(&auditPath, "audit-log", "", "Append sealed records to this hash-chained log (overrides config)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Log engine activity to stderr")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
