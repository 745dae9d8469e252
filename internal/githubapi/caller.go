// Package githubapi is the single place that talks HTTP to GitHub.
// The caller decodes responses and hands the headers back untouched;
// rate-limit pacing is the harvester's job, not ours.

package githubapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/surepl/commit-census/cfg"
	"github.com/surepl/commit-census/pkg/log"
)

const (
	// Commit search still needs the cloak preview media type.
	searchAcceptHeader = "application/vnd.github.cloak-preview+json"
	repoAcceptHeader   = "application/vnd.github+json"
	repoApiVersion     = "2022-11-28"
	userAgent          = "surepl-commit-census"
)

type Caller struct {
	Logger log.Logger
	Config *cfg.Config
	client *http.Client
}

func NewCaller(logger log.Logger, config *cfg.Config) (*Caller, error) {
	return &Caller{
		Logger: logger,
		Config: config,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// SearchCommits fetches one page of commit search results.
func (c *Caller) SearchCommits(ctx context.Context, query string, page, perPage int) (*SearchResponse, http.Header, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("per_page", strconv.Itoa(perPage))
	params.Set("page", strconv.Itoa(page))
	fullUrl := c.Config.GithubApi.SearchApiUrl + "?" + params.Encode()

	resp := &SearchResponse{}
	headers, err := c.getJSON(ctx, fullUrl, searchAcceptHeader, false, resp)
	if err != nil {
		return nil, headers, err
	}

	c.Logger.Debug(ctx, "search page %d: total_count=%d, items=%d", page, resp.TotalCount, len(resp.Items))
	return resp, headers, nil
}

// GetRepo fetches repository metadata for enrichment.
func (c *Caller) GetRepo(ctx context.Context, fullName string) (*RepoDetail, http.Header, error) {
	repo := &RepoDetail{}
	headers, err := c.getJSON(ctx, c.repoUrl(fullName), repoAcceptHeader, true, repo)
	if err != nil {
		return nil, headers, err
	}
	return repo, headers, nil
}

// GetRepoTopics fetches the topics sub-resource for repositories whose
// metadata came back without a topics list.
func (c *Caller) GetRepoTopics(ctx context.Context, fullName string) ([]string, http.Header, error) {
	topics := &TopicsResponse{}
	headers, err := c.getJSON(ctx, c.repoUrl(fullName)+"/topics", repoAcceptHeader, true, topics)
	if err != nil {
		return nil, headers, err
	}
	return topics.Names, headers, nil
}

func (c *Caller) repoUrl(fullName string) string {
	base := c.Config.GithubApi.RepoApiUrl
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + fullName
}

func (c *Caller) getJSON(ctx context.Context, fullUrl, accept string, versioned bool, out interface{}) (http.Header, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullUrl, nil)
	if err != nil {
		return nil, fmt.Errorf("cannot build request: %w", err)
	}

	req.Header.Set("Accept", accept)
	req.Header.Set("User-Agent", userAgent)
	if versioned {
		req.Header.Set("X-GitHub-Api-Version", repoApiVersion)
	}
	if c.Config.GithubApi.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.Config.GithubApi.AccessToken)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cannot send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return resp.Header, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.Header, fmt.Errorf("cannot decode response: %w", err)
	}

	return resp.Header, nil
}
