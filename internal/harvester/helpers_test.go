package harvester

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/surepl/commit-census/cfg"
	"github.com/surepl/commit-census/internal/githubapi"
)

type nopLogger struct{}

func (nopLogger) Info(ctx context.Context, format string, args ...interface{})      {}
func (nopLogger) Alert(ctx context.Context, format string, args ...interface{})     {}
func (nopLogger) Error(ctx context.Context, format string, args ...interface{})     {}
func (nopLogger) Warn(ctx context.Context, format string, args ...interface{})      {}
func (nopLogger) Debug(ctx context.Context, format string, args ...interface{})     {}
func (nopLogger) Notice(ctx context.Context, format string, args ...interface{})    {}
func (nopLogger) Critical(ctx context.Context, format string, args ...interface{})  {}
func (nopLogger) Emergency(ctx context.Context, format string, args ...interface{}) {}

// countingGovernor records throttle invocations instead of sleeping.
type countingGovernor struct {
	mu    sync.Mutex
	count int
}

func (g *countingGovernor) Throttle(headers http.Header) {
	g.mu.Lock()
	g.count++
	g.mu.Unlock()
}

type searchCall struct {
	Query string
	Page  int
}

// fakeGithub serves the two endpoints the harvester touches and keeps
// a log of every search call it saw.
type fakeGithub struct {
	mu          sync.Mutex
	searchCalls []searchCall
	repoCalls   []string

	// search maps a query+page to a response; the window bounds are
	// available pre-parsed for window-shape assertions.
	search func(q string, page int, w Window) githubapi.SearchResponse
	repos  map[string]repoReply
}

type repoReply struct {
	status int
	detail githubapi.RepoDetail
	topics []string
}

var windowRe = regexp.MustCompile(`date:([0-9T:Z-]+)\.\.([0-9T:Z-]+)`)

func parseQueryWindow(t *testing.T, q string) Window {
	t.Helper()
	m := windowRe.FindStringSubmatch(q)
	if m == nil {
		t.Fatalf("query %q has no date clause", q)
	}
	start, err := time.Parse("2006-01-02T15:04:05Z", m[1])
	if err != nil {
		t.Fatalf("bad window start in %q: %v", q, err)
	}
	end, err := time.Parse("2006-01-02T15:04:05Z", m[2])
	if err != nil {
		t.Fatalf("bad window end in %q: %v", q, err)
	}
	return Window{Start: start, End: end}
}

func (f *fakeGithub) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/search/commits", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))

		f.mu.Lock()
		f.searchCalls = append(f.searchCalls, searchCall{Query: q, Page: page})
		f.mu.Unlock()

		resp := f.search(q, page, parseQueryWindow(t, q))
		w.Header().Set("X-RateLimit-Remaining", "30")
		json.NewEncoder(w).Encode(resp)
	})

	mux.HandleFunc("/repos/", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.repoCalls = append(f.repoCalls, r.URL.Path)
		f.mu.Unlock()

		if name, ok := trimSuffixPath(r.URL.Path, "/topics"); ok {
			reply := f.repos[name]
			json.NewEncoder(w).Encode(githubapi.TopicsResponse{Names: reply.topics})
			return
		}

		name := r.URL.Path[len("/repos/"):]
		reply, ok := f.repos[name]
		if !ok {
			http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
			return
		}
		if reply.status != 0 && reply.status != http.StatusOK {
			http.Error(w, `{"message":"nope"}`, reply.status)
			return
		}
		json.NewEncoder(w).Encode(reply.detail)
	})

	return mux
}

func trimSuffixPath(path, suffix string) (string, bool) {
	if len(path) > len(suffix) && path[len(path)-len(suffix):] == suffix {
		return path[len("/repos/") : len(path)-len(suffix)], true
	}
	return "", false
}

func (f *fakeGithub) searchCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.searchCalls)
}

func (f *fakeGithub) maxPageRequested() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	max := 0
	for _, call := range f.searchCalls {
		if call.Page > max {
			max = call.Page
		}
	}
	return max
}

// newTestHarvester wires a harvester against the fake server with
// throttling disabled.
func newTestHarvester(t *testing.T, fake *fakeGithub) (*Harvester, *cfg.Config) {
	t.Helper()

	srv := httptest.NewServer(fake.handler(t))
	t.Cleanup(srv.Close)

	loader, _ := cfg.NewMockLoader()
	config, _ := loader.Load()
	config.GithubApi.SearchApiUrl = srv.URL + "/search/commits"
	config.GithubApi.RepoApiUrl = srv.URL + "/repos/"
	config.Harvest.MinDelayMs = 0
	config.Harvest.OutFile = ""
	config.Harvest.RepoCache = ""

	caller, err := githubapi.NewCaller(nopLogger{}, config)
	if err != nil {
		t.Fatalf("caller: %v", err)
	}
	h, err := NewHarvester(nopLogger{}, config, caller, &countingGovernor{})
	if err != nil {
		t.Fatalf("harvester: %v", err)
	}
	return h, config
}

func item(repo, sha string) githubapi.CommitItem {
	return githubapi.CommitItem{
		Sha:     sha,
		HtmlUrl: "https://github.com/" + repo + "/commit/" + sha,
		Commit: githubapi.CommitDetail{
			Message:   "msg " + sha,
			Author:    githubapi.CommitSignature{Name: "Ann Author", Date: "2024-05-01T10:00:00Z"},
			Committer: githubapi.CommitSignature{Date: "2024-05-01T10:00:05Z"},
		},
		Author: &githubapi.Account{Login: "ann", HtmlUrl: "https://github.com/ann"},
		Repository: githubapi.RepositoryRef{
			FullName: repo,
			HtmlUrl:  "https://github.com/" + repo,
		},
	}
}
