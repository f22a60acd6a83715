// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/post-engine/internal/archive"
	"github.com/pdiddy/post-engine/internal/generate"
	"github.com/pdiddy/post-engine/internal/notion"
	"github.com/pdiddy/post-engine/internal/pipeline"
	"github.com/pdiddy/post-engine/internal/topics"
)

var draftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Draft one post and file it in Notion",
	Long: `Draft runs one pass of the pipeline: it aligns the database's Bucket
options with the topic pool, picks an unused topic at random, asks the local
model for a post, validates it, and creates a Draft page. The topic is
recorded in the history ledger only after the page exists.

With --dry-run the validated post is printed and nothing is published or
recorded.`,
	RunE: runDraft,
}

func runDraft(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	skipSync, _ := cmd.Flags().GetBool("skip-sync")

	var (
		syncer    pipeline.BucketSyncer
		publisher pipeline.Publisher
	)
	if err := cfg.ValidateNotion(); err != nil {
		if !dryRun {
			return err
		}
		skipSync = true
	} else {
		client, err := notion.NewClient(cfg.Notion, nil, logger)
		if err != nil {
			return err
		}
		p := notion.NewPublisher(client, logger)
		syncer, publisher = p, p
	}

	tmpl, err := generate.LoadTemplate(cfg.Generation.InstructionsPath)
	if err != nil {
		return err
	}
	runner := generate.NewProcessRunner(cfg.Generation.Runner, cfg.Generation.Timeout)
	gen, err := generate.NewGenerator(runner, tmpl, cfg.Generation, logger)
	if err != nil {
		return err
	}

	var recorder pipeline.Recorder
	if !dryRun {
		store, err := archive.Open(cfg.Paths.Archive)
		if err != nil {
			logger.WithError(err).Warn("draft archive unavailable, continuing without it")
		} else {
			defer store.Close()
			recorder = store
		}
	}

	p, err := pipeline.New(syncer, topics.NewSelector(nil), gen, publisher, recorder, pipeline.Options{
		TopicsPath:  cfg.Paths.Topics,
		HistoryPath: cfg.Paths.History,
		DryRun:      dryRun,
		SkipSync:    skipSync,
		Out:         cmd.OutOrStdout(),
	}, logger)
	if err != nil {
		return err
	}

	_, err = p.Run(cmd.Context())
	if errors.Is(err, generate.ErrRunnerNotFound) {
		return fmt.Errorf("%w (install %s or set RUNNER_BIN)", err, cfg.Generation.Runner)
	}
	return err
}

func init() {
	draftCmd.Flags().Bool("dry-run", false, "print the validated draft without publishing or recording it")
	draftCmd.Flags().Bool("skip-sync", false, "do not update the database's Bucket options first")

	rootCmd.AddCommand(draftCmd)
}
