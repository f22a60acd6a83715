// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/post-engine/internal/archive"
	"github.com/pdiddy/post-engine/internal/topics"
	"github.com/pdiddy/post-engine/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect published drafts and the used-topic ledger",
	Long: `History reads the local draft archive, which records every draft that
reached Notion, and the history ledger, which lists the topics used in the
current cycle.`,
}

// --- list subcommand ---

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived drafts, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		bucket, _ := cmd.Flags().GetString("bucket")
		jsonOutput, _ := cmd.Flags().GetBool("json")

		store, err := archive.Open(cfg.Paths.Archive)
		if err != nil {
			return err
		}
		defer store.Close()

		records, err := store.List(cmd.Context(), archive.ListOptions{Bucket: bucket, Limit: limit})
		if err != nil {
			return err
		}
		return formatHistoryOutput(cmd.OutOrStdout(), records, jsonOutput)
	},
}

func formatHistoryOutput(w io.Writer, records []types.DraftRecord, jsonOutput bool) error {
	if jsonOutput {
		if records == nil {
			records = []types.DraftRecord{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	if len(records) == 0 {
		fmt.Fprintln(w, "No drafts archived.")
		return nil
	}

	fmt.Fprintf(w, "%-16s  %-15s  %-50s  %s\n", "Created", "Bucket", "Topic", "Words")
	fmt.Fprintln(w, strings.Repeat("-", 92))
	for _, r := range records {
		fmt.Fprintf(w, "%-16s  %-15s  %-50s  %d\n",
			r.CreatedAt.Local().Format("2006-01-02 15:04"), truncate(r.Bucket, 15), truncate(r.Topic, 50), r.Words)
	}
	fmt.Fprintf(w, "\n%d drafts\n", len(records))
	return nil
}

// --- ledger subcommand ---

var historyLedgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Show the topics used in the current cycle",
	RunE: func(cmd *cobra.Command, args []string) error {
		ledger, err := topics.LoadLedger(cfg.Paths.History, logger)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, e := range ledger.Entries() {
			fmt.Fprintln(out, e.String())
		}
		fmt.Fprintf(out, "%d used\n", ledger.Len())
		return nil
	},
}

// --- reset subcommand ---

var historyResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear the ledger so every topic is eligible again",
	RunE: func(cmd *cobra.Command, args []string) error {
		ledger := topics.NewLedger(cfg.Paths.History)
		if err := ledger.Reset(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s cleared.\n", cfg.Paths.History)
		return nil
	},
}

// --- export subcommand ---

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the draft archive to stdout as YAML or JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")

		store, err := archive.Open(cfg.Paths.Archive)
		if err != nil {
			return err
		}
		defer store.Close()

		return store.Export(cmd.Context(), cmd.OutOrStdout(), format)
	},
}

func init() {
	historyListCmd.Flags().Int("limit", 20, "maximum drafts to list (0 = all)")
	historyListCmd.Flags().String("bucket", "", "only list drafts from this bucket")
	historyListCmd.Flags().Bool("json", false, "output drafts as JSON")

	historyExportCmd.Flags().String("format", archive.FormatYAML, "export format: yaml or json")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyLedgerCmd)
	historyCmd.AddCommand(historyResetCmd)
	historyCmd.AddCommand(historyExportCmd)

	rootCmd.AddCommand(historyCmd)
}

// truncate shortens s to at most n runes, ending in "..." when cut.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
