package harvester

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/surepl/commit-census/internal/githubapi"
)

func TestRunRejectsBadInputBeforeAnyNetworkCall(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(h *Harvester)
		wantErr string
	}{
		{
			name: "end before start",
			mutate: func(h *Harvester) {
				h.Config.Harvest.Start = "2024-05-02"
				h.Config.Harvest.End = "2024-05-01"
			},
			wantErr: "end date must be after start date",
		},
		{
			name: "per-page too large",
			mutate: func(h *Harvester) {
				h.Config.Harvest.Start = "2024-05-01"
				h.Config.Harvest.End = "2024-05-01"
				h.Config.Harvest.PerPage = 101
			},
			wantErr: "per-page must be between 1 and 100",
		},
		{
			name: "per-page zero",
			mutate: func(h *Harvester) {
				h.Config.Harvest.Start = "2024-05-01"
				h.Config.Harvest.End = "2024-05-01"
				h.Config.Harvest.PerPage = 0
			},
			wantErr: "per-page must be between 1 and 100",
		},
		{
			name: "unknown date field",
			mutate: func(h *Harvester) {
				h.Config.Harvest.Start = "2024-05-01"
				h.Config.Harvest.End = "2024-05-01"
				h.Config.Harvest.DateField = "merged"
			},
			wantErr: "date-field must be committer or author",
		},
		{
			name: "unparseable start",
			mutate: func(h *Harvester) {
				h.Config.Harvest.Start = "May 1st"
			},
			wantErr: "invalid start date",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeGithub{search: func(q string, page int, w Window) githubapi.SearchResponse {
				return githubapi.SearchResponse{}
			}}
			h, _ := newTestHarvester(t, fake)
			tt.mutate(h)

			_, err := h.Run(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Zero(t, fake.searchCallCount(), "validation must precede network activity")
		})
	}
}

func TestRunTwoDaysYieldsChronologicalCommits(t *testing.T) {
	fake := &fakeGithub{
		search: func(q string, page int, w Window) githubapi.SearchResponse {
			day := w.Start.Format("0102")
			return githubapi.SearchResponse{
				TotalCount: 3,
				Items: []githubapi.CommitItem{
					item("a/b", day+"-1"), item("a/b", day+"-2"), item("c/d", day+"-3"),
				},
			}
		},
	}
	h, config := newTestHarvester(t, fake)
	config.Harvest.Start = "2024-05-01"
	config.Harvest.End = "2024-05-02"

	payload, err := h.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, payload.Commits, 6)
	shas := make([]string, 0, 6)
	for _, commit := range payload.Commits {
		shas = append(shas, commit.Sha)
	}
	assert.Equal(t, []string{"0501-1", "0501-2", "0501-3", "0502-1", "0502-2", "0502-3"}, shas)

	assert.Equal(t, "GitHub Search API (commits)", payload.Meta.Source)
	assert.Equal(t, "2024-05-01", payload.Meta.Start)
	assert.Equal(t, "2024-05-02", payload.Meta.End)
	assert.Nil(t, payload.Repos)
	assert.Nil(t, payload.Meta.RepoEnriched)
}

func TestRunWritesPayloadFile(t *testing.T) {
	fake := &fakeGithub{
		search: func(q string, page int, w Window) githubapi.SearchResponse {
			return githubapi.SearchResponse{
				TotalCount: 1,
				Items:      []githubapi.CommitItem{item("a/b", "s1")},
			}
		},
	}
	h, config := newTestHarvester(t, fake)
	config.Harvest.Start = "2024-05-01"
	config.Harvest.End = "2024-05-01"
	config.Harvest.OutFile = filepath.Join(t.TempDir(), "out.json")

	_, err := h.Run(context.Background())
	require.NoError(t, err)

	data, err := os.ReadFile(config.Harvest.OutFile)
	require.NoError(t, err)

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Contains(t, decoded, "meta")
	assert.Contains(t, decoded, "commits")
	assert.NotContains(t, decoded, "repos")
}

func TestRunWithEnrichmentFillsReposAndCache(t *testing.T) {
	fake := &fakeGithub{
		search: func(q string, page int, w Window) githubapi.SearchResponse {
			return githubapi.SearchResponse{
				TotalCount: 2,
				Items:      []githubapi.CommitItem{item("b/late", "s1"), item("a/early", "s2")},
			}
		},
		repos: map[string]repoReply{
			"a/early": repoDetail("a/early", "census"),
			"b/late":  repoDetail("b/late", "tooling"),
		},
	}
	h, config := newTestHarvester(t, fake)
	config.Harvest.Start = "2024-05-01"
	config.Harvest.End = "2024-05-01"
	config.Harvest.EnrichRepos = true
	config.Harvest.RepoCache = filepath.Join(t.TempDir(), "cache.json")

	payload, err := h.Run(context.Background())
	require.NoError(t, err)

	require.NotNil(t, payload.Repos)
	repos := *payload.Repos
	require.Len(t, repos, 2)
	// Repos come out in planned (lexicographic) order, not hit order.
	assert.Equal(t, "a/early", repos[0].FullName)
	assert.Equal(t, "b/late", repos[1].FullName)

	require.NotNil(t, payload.Meta.RepoEnriched)
	assert.Equal(t, 2, *payload.Meta.RepoEnriched)
	require.NotNil(t, payload.Meta.TopicsIncluded)
	assert.True(t, *payload.Meta.TopicsIncluded)
	assert.Equal(t, config.Harvest.RepoCache, payload.Meta.RepoCache)

	// The cache file survived for the next run.
	data, err := os.ReadFile(config.Harvest.RepoCache)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "a/early"))
}

func TestRunSecondEnrichedRunHitsCacheOnly(t *testing.T) {
	fake := &fakeGithub{
		search: func(q string, page int, w Window) githubapi.SearchResponse {
			return githubapi.SearchResponse{
				TotalCount: 1,
				Items:      []githubapi.CommitItem{item("a/early", "s1")},
			}
		},
		repos: map[string]repoReply{"a/early": repoDetail("a/early")},
	}
	h, config := newTestHarvester(t, fake)
	config.Harvest.Start = "2024-05-01"
	config.Harvest.End = "2024-05-01"
	config.Harvest.EnrichRepos = true
	config.Harvest.SkipTopics = true
	config.Harvest.RepoCache = filepath.Join(t.TempDir(), "cache.json")

	_, err := h.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, fake.repoCalls, 1)

	// Fresh harvester, same cache file.
	h2, config2 := newTestHarvester(t, fake)
	config2.Harvest = config.Harvest

	payload, err := h2.Run(context.Background())
	require.NoError(t, err)

	assert.Len(t, fake.repoCalls, 1, "second run must be served from the cache")
	require.NotNil(t, payload.Repos)
	assert.Len(t, *payload.Repos, 1)
}

func TestRunSearchFailureWritesNoOutput(t *testing.T) {
	fake := &fakeGithub{}
	h, config := newTestHarvester(t, fake)
	config.GithubApi.SearchApiUrl = "http://127.0.0.1:1/search/commits"
	config.Harvest.Start = "2024-05-01"
	config.Harvest.End = "2024-05-01"
	config.Harvest.OutFile = filepath.Join(t.TempDir(), "out.json")

	_, err := h.Run(context.Background())
	require.Error(t, err)

	_, statErr := os.Stat(config.Harvest.OutFile)
	assert.True(t, os.IsNotExist(statErr))
}

func TestResolveRangeDefaultsToLast90Days(t *testing.T) {
	fake := &fakeGithub{}
	h, _ := newTestHarvester(t, fake)
	h.now = func() time.Time { return time.Date(2024, 5, 15, 17, 30, 0, 0, time.UTC) }

	start, end, err := h.resolveRange()
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 2, 16, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC), end)
}
