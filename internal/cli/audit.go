package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/pbhp/internal/audit"
	"github.com/ppiankov/pbhp/internal/model"
)

var (
	verifyRecords bool

	timelineSince    string
	timelineMinClass string
	timelineFormat   string
)

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditVerifyCmd)
	auditCmd.AddCommand(auditTimelineCmd)
	auditVerifyCmd.Flags().BoolVar(&verifyRecords, "records", false, "Also check each entry's digest against the record store")
	auditTimelineCmd.Flags().StringVar(&timelineSince, "since", "", "Only entries newer than this duration (e.g. 24h)")
	auditTimelineCmd.Flags().StringVar(&timelineMinClass, "min-class", "", "Only entries at or above this risk class")
	auditTimelineCmd.Flags().StringVarP(&timelineFormat, "format", "f", "text", "Output format (text|json)")
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Audit log operations",
	Long:  "Commands for verifying and inspecting the hash-chained log of sealed records.",
}

var auditVerifyCmd = &cobra.Command{
	Use:   "verify <path>",
	Short: "Verify hash chain integrity of an audit log",
	Long: "Walks the JSONL audit log and validates that every entry's prev_hash\n" +
		"matches the SHA-256 of the previous entry. With --records each entry's\n" +
		"record digest is recomputed from the store. Exits 0 if valid, 1 if tampered.",
	Args: cobra.ExactArgs(1),
	RunE: runAuditVerify,
}

var auditTimelineCmd = &cobra.Command{
	Use:   "timeline <path>",
	Short: "Summarize sealed records by class and outcome",
	Args:  cobra.ExactArgs(1),
	RunE:  runAuditTimeline,
}

func runAuditVerify(cmd *cobra.Command, args []string) error {
	var result audit.VerifyResult
	if verifyRecords {
		rt, err := openRuntime(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.Close()
		result = audit.VerifyRecords(args[0], func(id string) (model.Record, error) {
			return rt.store.Get(context.Background(), id)
		})
	} else {
		result = audit.Verify(args[0])
	}

	if result.Valid {
		fmt.Fprintf(cmd.OutOrStdout(), "OK: %d entries verified\n", result.Lines)
		return nil
	}
	fmt.Fprintf(os.Stderr, "FAILED at line %d: %s\n", result.ErrorLine, result.Error)
	os.Exit(1)
	return nil
}

func runAuditTimeline(cmd *cobra.Command, args []string) error {
	var f audit.Filter
	if timelineSince != "" {
		d, err := time.ParseDuration(timelineSince)
		if err != nil {
			return fmt.Errorf("invalid --since: %w", err)
		}
		f.From = time.Now().Add(-d)
	}
	if timelineMinClass != "" {
		rc, err := model.ParseRiskClass(timelineMinClass)
		if err != nil {
			return err
		}
		f.MinClass = rc
	}

	entries, err := audit.Entries(args[0])
	if err != nil {
		return err
	}
	s := audit.Summarize(entries, f)

	w := cmd.OutOrStdout()
	if timelineFormat == "json" {
		out, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(out))
		return nil
	}
	fmt.Fprint(w, audit.FormatTimeline(s))
	return nil
}
