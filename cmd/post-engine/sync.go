// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/post-engine/internal/notion"
	"github.com/pdiddy/post-engine/internal/topics"
)

var syncBucketsCmd = &cobra.Command{
	Use:   "sync-buckets",
	Short: "Set the database's Bucket options to the topic pool's buckets",
	Long: `Sync-buckets replaces the select options of the database's Bucket
property with the bucket names of the topic pool, in file order. Running it
twice leaves the same options.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.ValidateNotion(); err != nil {
			return err
		}
		store, err := topics.LoadStore(cfg.Paths.Topics)
		if err != nil {
			return err
		}
		client, err := notion.NewClient(cfg.Notion, nil, logger)
		if err != nil {
			return err
		}
		buckets := store.Buckets()
		if err := notion.NewPublisher(client, logger).SyncBuckets(cmd.Context(), buckets); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Bucket options: %s\n", strings.Join(buckets, ", "))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncBucketsCmd)
}
