// Package harvester walks a date range against the GitHub commit
// search API one day window at a time, splitting any window the
// 1000-result cap cannot hold, and assembles the deduplicated payload.

package harvester

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/surepl/commit-census/cfg"
	"github.com/surepl/commit-census/internal/githubapi"
	"github.com/surepl/commit-census/internal/model"
	"github.com/surepl/commit-census/internal/repocache"
	kafkapkg "github.com/surepl/commit-census/pkg/kafka"
	"github.com/surepl/commit-census/pkg/log"
)

// Governor is what the harvester needs from the rate limiter.
type Governor interface {
	Throttle(headers http.Header)
}

type Harvester struct {
	Logger   log.Logger
	Config   *cfg.Config
	Caller   *githubapi.Caller
	Governor Governor

	// Optional Kafka publishers, wired when harvest.publish is set.
	CommitProducer *kafkapkg.Producer
	RepoProducer   *kafkapkg.Producer

	now       func() time.Time
	truncated bool
}

func NewHarvester(logger log.Logger, config *cfg.Config, caller *githubapi.Caller, governor Governor) (*Harvester, error) {
	return &Harvester{
		Logger:   logger,
		Config:   config,
		Caller:   caller,
		Governor: governor,
		now:      time.Now,
	}, nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// resolveRange turns the configured date strings into day bounds.
// Defaults follow the original census habit: the last 90 days.
func (h *Harvester) resolveRange() (time.Time, time.Time, error) {
	today := h.now().UTC()

	startDay := truncateToDay(today.AddDate(0, 0, -89))
	if h.Config.Harvest.Start != "" {
		parsed, err := parseDay(h.Config.Harvest.Start)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid start date %q: %w", h.Config.Harvest.Start, err)
		}
		startDay = parsed
	}

	endDay := truncateToDay(today)
	if h.Config.Harvest.End != "" {
		parsed, err := parseDay(h.Config.Harvest.End)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid end date %q: %w", h.Config.Harvest.End, err)
		}
		endDay = parsed
	}

	if endDay.Before(startDay) {
		return time.Time{}, time.Time{}, fmt.Errorf("end date must be after start date")
	}

	return startDay, endDay, nil
}

func (h *Harvester) validate() error {
	if h.Config.Harvest.PerPage < 1 || h.Config.Harvest.PerPage > 100 {
		return fmt.Errorf("per-page must be between 1 and 100")
	}
	if h.Config.Harvest.MaxPages < 1 {
		return fmt.Errorf("max-pages must be at least 1")
	}
	if field := h.Config.Harvest.DateField; field != "committer" && field != "author" {
		return fmt.Errorf("date-field must be committer or author, got %q", field)
	}
	return nil
}

// Run executes one harvest. All validation happens before the first
// network call; any search failure aborts without writing output.
func (h *Harvester) Run(ctx context.Context) (*Payload, error) {
	startDay, endDay, err := h.resolveRange()
	if err != nil {
		return nil, err
	}
	if err := h.validate(); err != nil {
		return nil, err
	}

	if h.Config.GithubApi.AccessToken == "" {
		h.Logger.Warn(ctx, "no GitHub token provided, expect heavy rate limiting")
		if h.Config.Harvest.EnrichRepos {
			h.Logger.Warn(ctx, "repo enrichment without a token will likely fail")
		}
	}

	var raw []githubapi.CommitItem
	for day := startDay; !day.After(endDay); day = day.AddDate(0, 0, 1) {
		h.Logger.Info(ctx, "fetching %s...", day.Format("2006-01-02"))
		items, err := h.fetchWindow(ctx, dayWindow(day))
		if err != nil {
			return nil, err
		}
		raw = append(raw, items...)
	}

	commits := Dedup(raw)

	notes := "Commit search is capped at 1000 results per query. Oversized time windows are split until they fit."
	if h.truncated {
		notes += " Some windows could not be split further; their results are truncated."
	}

	payload := &Payload{
		Meta: Meta{
			Source:      "GitHub Search API (commits)",
			Query:       h.Config.Harvest.Query,
			DateField:   h.Config.Harvest.DateField,
			Start:       startDay.Format("2006-01-02"),
			End:         endDay.Format("2006-01-02"),
			CollectedAt: isoTime(h.now()),
			Notes:       notes,
		},
		Commits: commits,
	}

	if h.Config.Harvest.EnrichRepos {
		repos, err := h.enrichRepos(ctx, commits, payload)
		if err != nil {
			return nil, err
		}
		payload.Repos = &repos
	}

	if h.CommitProducer != nil {
		h.publish(ctx, payload)
	}

	if out := h.Config.Harvest.OutFile; out != "" {
		if err := payload.Write(out); err != nil {
			return nil, err
		}
		h.Logger.Info(ctx, "wrote %d commits to %s", len(commits), out)
	}

	return payload, nil
}

// enrichRepos runs the enricher over every distinct repository the
// kept commits reference and fills in the enrichment meta fields. The
// cache is only persisted after a fully successful pass, matching the
// abort-without-partial-output rule for the run as a whole.
func (h *Harvester) enrichRepos(ctx context.Context, commits []model.Commit, payload *Payload) ([]model.Repo, error) {
	cache := repocache.Load(h.Config.Harvest.RepoCache)

	seen := make(map[string]struct{}, len(commits))
	names := make([]string, 0, len(commits))
	for _, commit := range commits {
		if commit.Repo == "" {
			continue
		}
		if _, ok := seen[commit.Repo]; ok {
			continue
		}
		seen[commit.Repo] = struct{}{}
		names = append(names, commit.Repo)
	}

	enricher := &Enricher{
		Logger:        h.Logger,
		Caller:        h.Caller,
		Governor:      h.Governor,
		IncludeTopics: !h.Config.Harvest.SkipTopics,
		MaxRepos:      h.Config.Harvest.MaxRepos,
	}

	planned, err := enricher.Enrich(ctx, names, cache)
	if err != nil {
		return nil, err
	}

	if err := cache.Save(); err != nil {
		h.Logger.Warn(ctx, "failed to persist repo cache: %v", err)
	}

	repos := make([]model.Repo, 0, len(planned))
	for _, name := range planned {
		if repo, ok := cache.Get(name); ok {
			repos = append(repos, repo)
		}
	}

	count := len(repos)
	topics := !h.Config.Harvest.SkipTopics
	payload.Meta.RepoEnriched = &count
	payload.Meta.RepoCache = h.Config.Harvest.RepoCache
	payload.Meta.TopicsIncluded = &topics

	return repos, nil
}

// publish mirrors the payload onto Kafka for the database consumer.
// Publish failures do not fail the run; the JSON artifact is the
// primary output.
func (h *Harvester) publish(ctx context.Context, payload *Payload) {
	published := 0
	for _, commit := range payload.Commits {
		if err := h.CommitProducer.Publish(ctx, "commit", commit); err != nil {
			h.Logger.Error(ctx, "failed to publish commit %s: %v", commit.Key(), err)
			continue
		}
		published++
	}
	h.Logger.Info(ctx, "published %d/%d commits to kafka", published, len(payload.Commits))

	if h.RepoProducer == nil || payload.Repos == nil {
		return
	}
	published = 0
	for _, repo := range *payload.Repos {
		if err := h.RepoProducer.Publish(ctx, "repo", repo); err != nil {
			h.Logger.Error(ctx, "failed to publish repo %s: %v", repo.FullName, err)
			continue
		}
		published++
	}
	h.Logger.Info(ctx, "published %d/%d repos to kafka", published, len(*payload.Repos))
}
