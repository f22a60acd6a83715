// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/post-engine/internal/generate"
	"github.com/pdiddy/post-engine/internal/refresh"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Rebuild the topic pool from web sources and model suggestions",
	Long: `Refresh rebuilds the topic pool file. For each bucket it scrapes the
allowed source pages listed in the restrictions file, keeping headings and
list items that match a keyword and no excluded term, and asks the local
model for fresh topics. Web topics come first and keep their images; model
topics follow unless already present. The topic file is overwritten.`,
	RunE: runRefresh,
}

func runRefresh(cmd *cobra.Command, args []string) error {
	buckets, _ := cmd.Flags().GetStringSlice("buckets")
	if len(buckets) == 0 {
		buckets = cfg.Refresh.Buckets
	}
	count, _ := cmd.Flags().GetInt("count")
	if count <= 0 {
		count = cfg.Refresh.Count
	}
	noWeb, _ := cmd.Flags().GetBool("no-web")
	noLLM, _ := cmd.Flags().GetBool("no-llm")

	var (
		suggester    *refresh.Suggester
		scraper      *refresh.Scraper
		restrictions *refresh.Restrictions
	)
	if !noLLM {
		runner := generate.NewProcessRunner(cfg.Generation.Runner, 0)
		suggester = refresh.NewSuggester(runner, cfg.Generation.Model, count, cfg.Refresh.Timeout, logger)
	}
	if !noWeb {
		r, err := refresh.LoadRestrictions(cfg.Paths.Restrictions)
		if err != nil {
			return err
		}
		restrictions = r
		scraper = refresh.NewScraper(nil, cfg.Refresh.ScrapeTimeout, cfg.Refresh.UserAgent, logger)
	}

	r, err := refresh.NewRefresher(suggester, scraper, cfg.Paths.Topics, refresh.Options{
		SkipWeb:   noWeb,
		SkipModel: noLLM,
	}, logger)
	if err != nil {
		return err
	}

	store, err := r.Refresh(cmd.Context(), buckets, restrictions)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, b := range store.Buckets() {
		fmt.Fprintf(out, "%-20s %d topics\n", b, len(store.Topics(b)))
	}
	fmt.Fprintf(out, "%s updated.\n", cfg.Paths.Topics)
	return nil
}

func init() {
	refreshCmd.Flags().StringSlice("buckets", nil, "buckets to rebuild (default from REFRESH_BUCKETS)")
	refreshCmd.Flags().Int("count", 0, "topics to request from the model per bucket (default from REFRESH_COUNT)")
	refreshCmd.Flags().Bool("no-web", false, "skip scraping web sources")
	refreshCmd.Flags().Bool("no-llm", false, "skip model suggestions")

	rootCmd.AddCommand(refreshCmd)
}
