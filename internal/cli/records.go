package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/pbhp/internal/store"
)

var exportOutput string

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Write to file instead of stdout")

	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(showCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export every stored record as a JSON array",
	RunE:  runExport,
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Load records from a JSON export into the store",
	Long:  "Records from a newer protocol version or a different major version are rejected.",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print one stored record",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func runExport(cmd *cobra.Command, args []string) error {
	rt, err := openRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.Close()

	records, err := rt.store.List(cmd.Context())
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if exportOutput != "" {
		f, err := os.OpenFile(exportOutput, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
		if err != nil {
			return fmt.Errorf("open export file: %w", err)
		}
		defer f.Close()
		w = f
	}
	if err := store.WriteJSON(w, records); err != nil {
		return err
	}
	if exportOutput != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d records to %s\n", len(records), exportOutput)
	}
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open import file: %w", err)
	}
	defer f.Close()

	records, err := store.ReadJSON(f)
	if err != nil {
		return err
	}

	rt, err := openRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.Close()

	for _, rec := range records {
		if err := rt.store.Save(cmd.Context(), rec); err != nil {
			return err
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d records\n", len(records))
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	if err := store.ValidateID(args[0]); err != nil {
		return err
	}
	rt, err := openRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.Close()

	rec, err := rt.store.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
