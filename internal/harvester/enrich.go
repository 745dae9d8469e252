package harvester

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/surepl/commit-census/internal/githubapi"
	"github.com/surepl/commit-census/internal/model"
	"github.com/surepl/commit-census/internal/repocache"
	"github.com/surepl/commit-census/pkg/log"
)

// Enricher fetches repository metadata for the repos a harvest
// touched, through the persistent cache.
type Enricher struct {
	Logger        log.Logger
	Caller        *githubapi.Caller
	Governor      Governor
	IncludeTopics bool
	MaxRepos      int // 0 means unlimited
}

// plan sorts the names and applies the enrichment cap. The same list
// drives both the fetch loop and the repos section of the payload.
func (e *Enricher) plan(names []string) []string {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	if e.MaxRepos > 0 && len(sorted) > e.MaxRepos {
		sorted = sorted[:e.MaxRepos]
	}
	return sorted
}

// Enrich fills the cache for every planned name not already present
// and returns the planned list. A rate-limited response aborts the
// whole run: the token is spent and retrying mid-run cannot help. Any
// other HTTP error only skips that repository. Transport errors are
// fatal.
func (e *Enricher) Enrich(ctx context.Context, names []string, cache *repocache.Cache) ([]string, error) {
	planned := e.plan(names)

	for _, name := range planned {
		if cache.Has(name) {
			continue
		}
		e.Logger.Info(ctx, "enriching %s...", name)

		record, err := e.fetchRepo(ctx, name)
		if err != nil {
			var statusErr *githubapi.StatusError
			if errors.As(err, &statusErr) {
				if statusErr.IsRateLimit() {
					return planned, fmt.Errorf("rate limit hit while fetching %s: %w", name, err)
				}
				e.Logger.Warn(ctx, "repo fetch failed for %s: %v", name, err)
				continue
			}
			return planned, fmt.Errorf("network error while fetching %s: %w", name, err)
		}

		cache.Put(name, record)
	}

	return planned, nil
}

func (e *Enricher) fetchRepo(ctx context.Context, name string) (model.Repo, error) {
	detail, headers, err := e.Caller.GetRepo(ctx, name)
	if err != nil {
		return model.Repo{}, err
	}
	e.Governor.Throttle(headers)

	topics := detail.Topics
	if e.IncludeTopics && len(topics) == 0 {
		names, topicHeaders, err := e.Caller.GetRepoTopics(ctx, name)
		if err != nil {
			return model.Repo{}, err
		}
		e.Governor.Throttle(topicHeaders)
		topics = names
	}

	return extractRepo(detail, topics), nil
}

func extractRepo(detail *githubapi.RepoDetail, topics []string) model.Repo {
	if topics == nil {
		topics = []string{}
	}
	license := ""
	if detail.License != nil {
		license = detail.License.SpdxId
	}
	return model.Repo{
		FullName:        detail.FullName,
		HtmlUrl:         detail.HtmlUrl,
		Description:     detail.Description,
		Homepage:        detail.Homepage,
		Topics:          topics,
		Language:        detail.Language,
		OwnerLogin:      detail.Owner.Login,
		OwnerType:       detail.Owner.Type,
		CreatedAt:       detail.CreatedAt,
		UpdatedAt:       detail.UpdatedAt,
		PushedAt:        detail.PushedAt,
		StargazersCount: detail.StargazersCount,
		ForksCount:      detail.ForksCount,
		Archived:        detail.Archived,
		IsTemplate:      detail.IsTemplate,
		License:         license,
	}
}
