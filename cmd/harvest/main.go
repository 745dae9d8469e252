package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/surepl/commit-census/cfg"
	"github.com/surepl/commit-census/internal/githubapi"
	"github.com/surepl/commit-census/internal/harvester"
	"github.com/surepl/commit-census/internal/limiter"
	"github.com/surepl/commit-census/pkg/kafka"
	"github.com/surepl/commit-census/pkg/log"
)

func main() {
	// Parse command line flags; any flag left at its zero value keeps
	// the configured default.
	query := flag.String("query", "", "Commit search query")
	start := flag.String("start", "", "Start date (YYYY-MM-DD)")
	end := flag.String("end", "", "End date (YYYY-MM-DD)")
	dateField := flag.String("date-field", "", "Date qualifier: committer or author")
	perPage := flag.Int("per-page", 0, "Results per page (max 100)")
	maxPages := flag.Int("max-pages", 0, "Max pages per window")
	minDelay := flag.Int("min-delay-ms", -1, "Minimum delay between API calls in ms")
	out := flag.String("out", "", "Output JSON file")
	token := flag.String("token", "", "GitHub API token (overrides config and GITHUB_TOKEN)")
	enrichRepos := flag.Bool("enrich-repos", false, "Fetch repository metadata for harvested commits")
	repoCache := flag.String("repo-cache", "", "Repo metadata cache file")
	maxRepos := flag.Int("max-repos", 0, "Cap on repos to enrich (0 = no cap)")
	skipTopics := flag.Bool("skip-topics", false, "Skip the separate topics request")
	publish := flag.Bool("publish", false, "Publish harvested records to Kafka")
	flag.Parse()

	// Setup dependencies
	ctx := context.Background()
	loader, _ := cfg.NewViperLoader()
	config, err := loader.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, _ := log.NewCslLogger()

	applyFlags(config, flagValues{
		query: *query, start: *start, end: *end, dateField: *dateField,
		perPage: *perPage, maxPages: *maxPages, minDelay: *minDelay,
		out: *out, token: *token, enrichRepos: *enrichRepos,
		repoCache: *repoCache, maxRepos: *maxRepos, skipTopics: *skipTopics,
		publish: *publish,
	})

	caller, err := githubapi.NewCaller(logger, config)
	if err != nil {
		logger.Error(ctx, "Failed to create API caller: %v", err)
		os.Exit(1)
	}
	governor := limiter.NewGovernor(time.Duration(config.Harvest.MinDelayMs) * time.Millisecond)

	h, err := harvester.NewHarvester(logger, config, caller, governor)
	if err != nil {
		logger.Error(ctx, "Failed to create harvester: %v", err)
		os.Exit(1)
	}

	if config.Harvest.Publish {
		commitProducer, err := kafka.NewProducer(config, logger, config.Kafka.Producer.TopicCommit)
		if err != nil {
			logger.Error(ctx, "Failed to create commit producer: %v", err)
			os.Exit(1)
		}
		defer commitProducer.Close()
		repoProducer, err := kafka.NewProducer(config, logger, config.Kafka.Producer.TopicRepo)
		if err != nil {
			logger.Error(ctx, "Failed to create repo producer: %v", err)
			os.Exit(1)
		}
		defer repoProducer.Close()
		h.CommitProducer = commitProducer
		h.RepoProducer = repoProducer
	}

	if _, err := h.Run(ctx); err != nil {
		logger.Error(ctx, "Harvest failed: %v", err)
		os.Exit(1)
	}
}

type flagValues struct {
	query, start, end, dateField     string
	perPage, maxPages, minDelay      int
	out, token, repoCache            string
	maxRepos                         int
	enrichRepos, skipTopics, publish bool
}

func applyFlags(config *cfg.Config, f flagValues) {
	if f.query != "" {
		config.Harvest.Query = f.query
	}
	if f.start != "" {
		config.Harvest.Start = f.start
	}
	if f.end != "" {
		config.Harvest.End = f.end
	}
	if f.dateField != "" {
		config.Harvest.DateField = f.dateField
	}
	if f.perPage != 0 {
		config.Harvest.PerPage = f.perPage
	}
	if f.maxPages != 0 {
		config.Harvest.MaxPages = f.maxPages
	}
	if f.minDelay >= 0 {
		config.Harvest.MinDelayMs = f.minDelay
	}
	if f.out != "" {
		config.Harvest.OutFile = f.out
	}
	if f.token != "" {
		config.GithubApi.AccessToken = f.token
	}
	if f.enrichRepos {
		config.Harvest.EnrichRepos = true
	}
	if f.repoCache != "" {
		config.Harvest.RepoCache = f.repoCache
	}
	if f.maxRepos != 0 {
		config.Harvest.MaxRepos = f.maxRepos
	}
	if f.skipTopics {
		config.Harvest.SkipTopics = true
	}
	if f.publish {
		config.Harvest.Publish = true
	}
}
