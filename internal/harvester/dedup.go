package harvester

import (
	"github.com/surepl/commit-census/internal/githubapi"
	"github.com/surepl/commit-census/internal/model"
)

// extractCommit flattens one raw search hit into an output record.
func extractCommit(item githubapi.CommitItem) model.Commit {
	record := model.Commit{
		Sha:           item.Sha,
		Repo:          item.Repository.FullName,
		RepoUrl:       item.Repository.HtmlUrl,
		CommitUrl:     item.HtmlUrl,
		Message:       item.Commit.Message,
		AuthorName:    item.Commit.Author.Name,
		AuthorDate:    item.Commit.Author.Date,
		CommitterDate: item.Commit.Committer.Date,
	}
	if item.Author != nil {
		record.AuthorLogin = item.Author.Login
		record.AuthorUrl = item.Author.HtmlUrl
	}
	return record
}

// Dedup merges raw hits across all windows into commit records.
// Identity is repository plus sha (commit URL when sha is missing);
// the first occurrence wins and first-seen order is preserved.
func Dedup(items []githubapi.CommitItem) []model.Commit {
	seen := make(map[string]struct{}, len(items))
	commits := make([]model.Commit, 0, len(items))
	for _, item := range items {
		record := extractCommit(item)
		key := record.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		commits = append(commits, record)
	}
	return commits
}
