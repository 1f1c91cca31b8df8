package main

import (
	"fmt"

	"github.com/alvmarrod/rank-weaver/internal/crawler"
	"github.com/alvmarrod/rank-weaver/internal/metrics"
	"github.com/alvmarrod/rank-weaver/internal/storage"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newSnapshotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot <corpus-dir> <db>",
		Short: "Crawl a corpus directory into a SQLite crawl database",
		Long:  "Snapshot parses every page of a corpus directory and stores its pages and links in a crawl database that can later be ranked with --db.",
		Args:  cobra.ExactArgs(2),
		RunE:  runSnapshot,
	}
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	setupLogging(cfg.LogLevel)

	dir, dbPath := args[0], args[1]
	tracker := metrics.NewTracker("dir:" + dir)

	cr, err := crawler.NewCrawler(dir, cfg.Workers, tracker.CrawlCallback())
	if err != nil {
		return err
	}
	if err := cr.Run(cmd.Context()); err != nil {
		return fmt.Errorf("crawl failed: %w", err)
	}

	store, err := storage.NewStorage(dbPath)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	if err := cr.FlushToStorage(store); err != nil {
		return fmt.Errorf("failed to flush crawl graph: %w", err)
	}

	for _, page := range cr.Corpus().Pages() {
		node, err := store.GetNode(page)
		if err != nil {
			return err
		}
		if node == nil {
			return fmt.Errorf("page %s missing from %s after flush", page, dbPath)
		}
		logrus.Debugf("Stored %s (node %d, title %q)", node.Name, node.NodeID, node.Description)
	}

	snapshot := tracker.GetSnapshot()
	logrus.Infof("Snapshot written to %s: %d pages parsed, %d links, %d failed",
		dbPath, snapshot.PagesParsed, snapshot.LinksRecorded, snapshot.PagesFailed)
	fmt.Fprintf(cmd.OutOrStdout(), "Snapshot of %s written to %s\n", dir, dbPath)
	return nil
}
