package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/alvmarrod/rank-weaver/internal/config"
	"github.com/alvmarrod/rank-weaver/internal/corpus"
	"github.com/alvmarrod/rank-weaver/internal/crawler"
	"github.com/alvmarrod/rank-weaver/internal/metrics"
	"github.com/alvmarrod/rank-weaver/internal/rank"
	"github.com/alvmarrod/rank-weaver/internal/report"
	"github.com/alvmarrod/rank-weaver/internal/storage"
	"github.com/alvmarrod/rank-weaver/internal/version"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "rankweaver [corpus-dir]",
		Short:         "Rank the pages of a linked corpus with PageRank",
		Long:          "Rank Weaver estimates PageRank for a closed corpus of linked pages, both by sampling a random surfer and by iterating to convergence.",
		Version:       version.Version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runRank,
	}

	flags := cmd.PersistentFlags()
	flags.String("config", "config.json", "config file (optional unless set explicitly)")
	flags.String("log-level", "", "log level (default info)")
	flags.Int("workers", 0, "parallel page parsers (default 4)")

	cmd.Flags().String("db", "", "load the corpus from a SQLite crawl database")
	cmd.Flags().Float64("damping", 0, "damping factor (default 0.85)")
	cmd.Flags().Int("samples", 0, "random surfer steps (default 10000)")
	cmd.Flags().Float64("tolerance", 0, "iteration convergence tolerance (default 0.001)")
	cmd.Flags().Int("max-iterations", 0, "iteration ceiling (default 10000)")
	cmd.Flags().Uint64("seed", 0, "random seed, 0 picks one")
	cmd.Flags().String("metrics", "", "write run metrics as JSON to this path")

	cmd.AddCommand(newSnapshotCmd())
	return cmd
}

// loadConfig layers the config file, environment and explicitly set flags
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadConfig(path, !cmd.Flags().Changed("config"))
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("workers") {
		cfg.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("db") {
		cfg.DBPath, _ = flags.GetString("db")
		cfg.CorpusDir = ""
	}
	if flags.Changed("damping") {
		cfg.DampingFactor, _ = flags.GetFloat64("damping")
	}
	if flags.Changed("samples") {
		cfg.Samples, _ = flags.GetInt("samples")
	}
	if flags.Changed("tolerance") {
		cfg.Tolerance, _ = flags.GetFloat64("tolerance")
	}
	if flags.Changed("max-iterations") {
		cfg.MaxIterations, _ = flags.GetInt("max-iterations")
	}
	if flags.Changed("seed") {
		cfg.Seed, _ = flags.GetUint64("seed")
	}
	if flags.Changed("metrics") {
		cfg.MetricsPath, _ = flags.GetString("metrics")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func setupLogging(level string) {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)
}

func runRank(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if len(args) == 1 {
		cfg.CorpusDir = args[0]
		cfg.DBPath = ""
	}
	if cfg.CorpusDir == "" && cfg.DBPath == "" {
		return errors.New("a corpus directory or --db is required")
	}

	setupLogging(cfg.LogLevel)
	logrus.Infof("Rank Weaver v%s starting...", version.Version)

	tracker := metrics.NewTracker(cfg.Source())
	logrus.Infof("Run %s: source=%s, damping=%.2f, samples=%d, tolerance=%g",
		tracker.RunID(), cfg.Source(), cfg.DampingFactor, cfg.Samples, cfg.Tolerance)

	err = rankCorpus(cmd, cfg, tracker)

	if cfg.MetricsPath != "" {
		reason := "completed"
		if err != nil {
			reason = "error"
		}
		if werr := tracker.WriteToFile(cfg.MetricsPath, reason); werr != nil {
			logrus.Errorf("Failed to write metrics: %v", werr)
		} else {
			logrus.Infof("Metrics written to %s", cfg.MetricsPath)
		}
	}
	return err
}

func rankCorpus(cmd *cobra.Command, cfg *config.Config, tracker *metrics.Tracker) error {
	logrus.Info("Step 1/3: Loading corpus...")
	c, err := loadCorpus(cmd.Context(), cfg, tracker)
	if err != nil {
		return err
	}
	tracker.RecordCorpus(c)
	logrus.Infof("Corpus loaded: %d pages, %d links, %d dangling", c.Len(), c.EdgeCount(), len(c.Dangling()))

	opts := cfg.Options()
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}

	logrus.Infof("Step 2/3: Sampling %d steps (seed %d)...", opts.Samples, seed)
	start := time.Now()
	sampled, err := rank.SampleRank(c, opts.DampingFactor, opts.Samples, rank.NewSource(seed))
	if err != nil {
		return fmt.Errorf("sampling failed: %w", err)
	}
	tracker.RecordSampling(opts.DampingFactor, opts.Samples, seed, time.Since(start))

	logrus.Info("Step 3/3: Iterating to convergence...")
	start = time.Now()
	result, err := rank.Iterate(c, opts.IterateOptions())
	if err != nil {
		return fmt.Errorf("iteration failed: %w", err)
	}
	tracker.RecordIteration(opts.Tolerance, result, time.Since(start))
	tracker.RecordDistance(rank.Distance(sampled, result.Ranks))
	logrus.Infof("Converged after %d iterations (max change %.2g)", result.Iterations, result.MaxDelta)

	out := cmd.OutOrStdout()
	if err := report.Write(out, fmt.Sprintf("PageRank Results from Sampling (n = %d)", opts.Samples), sampled); err != nil {
		return err
	}
	if err := report.Write(out, "PageRank Results from Iteration", result.Ranks); err != nil {
		return err
	}
	if err := report.Compare(out, sampled, result.Ranks); err != nil {
		return err
	}

	logrus.Info("Final stats: " + tracker.LogProgress())
	return nil
}

func loadCorpus(ctx context.Context, cfg *config.Config, tracker *metrics.Tracker) (*corpus.Corpus, error) {
	if cfg.DBPath != "" {
		store, err := storage.NewStorage(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open crawl database: %w", err)
		}
		defer store.Close()
		return store.LoadCorpus()
	}

	cr, err := crawler.NewCrawler(cfg.CorpusDir, cfg.Workers, tracker.CrawlCallback())
	if err != nil {
		return nil, err
	}
	if err := cr.Run(ctx); err != nil {
		return nil, err
	}
	return cr.Corpus(), nil
}
