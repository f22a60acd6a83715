// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/post-engine/internal/topics"
	"github.com/pdiddy/post-engine/pkg/types"
)

var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "Inspect the topic pool",
}

// --- list subcommand ---

var topicsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List topics per bucket, marking those already used",
	RunE: func(cmd *cobra.Command, args []string) error {
		bucket, _ := cmd.Flags().GetString("bucket")

		store, err := topics.LoadStore(cfg.Paths.Topics)
		if err != nil {
			return err
		}
		ledger, err := topics.LoadLedger(cfg.Paths.History, logger)
		if err != nil {
			return err
		}
		return printTopics(cmd.OutOrStdout(), store, ledger.Used(), bucket)
	},
}

func printTopics(w io.Writer, store *types.TopicStore, used map[types.UsedEntry]bool, only string) error {
	total, usedCount := 0, 0
	for _, b := range store.Buckets() {
		if only != "" && b != only {
			continue
		}
		recs := store.Topics(b)
		fmt.Fprintf(w, "%s (%d)\n", b, len(recs))
		for _, r := range recs {
			mark := " "
			if used[types.UsedEntry{Bucket: b, Topic: r.Topic}] {
				mark = "x"
				usedCount++
			}
			line := fmt.Sprintf("  [%s] %s", mark, r.Topic)
			if r.HasImage() {
				line += "  (image)"
			}
			fmt.Fprintln(w, line)
		}
		total += len(recs)
	}
	if only != "" && total == 0 {
		return fmt.Errorf("bucket %q has no topics", only)
	}
	fmt.Fprintf(w, "\n%d topics, %d used\n", total, usedCount)
	return nil
}

// --- export subcommand ---

var topicsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the topic pool to stdout as YAML or JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")

		store, err := topics.LoadStore(cfg.Paths.Topics)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		switch format {
		case "yaml", "":
			enc := yaml.NewEncoder(out)
			enc.SetIndent(2)
			if err := enc.Encode(store); err != nil {
				return fmt.Errorf("marshaling YAML: %w", err)
			}
			return enc.Close()
		case "json":
			enc := json.NewEncoder(out)
			enc.SetEscapeHTML(false)
			enc.SetIndent("", "  ")
			return enc.Encode(store)
		default:
			return fmt.Errorf("unsupported format %q: use yaml or json", format)
		}
	},
}

func init() {
	topicsListCmd.Flags().String("bucket", "", "only list this bucket")
	topicsExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	topicsCmd.AddCommand(topicsListCmd)
	topicsCmd.AddCommand(topicsExportCmd)

	rootCmd.AddCommand(topicsCmd)
}
