package harvester

import (
	"context"
	"fmt"
	"time"

	"github.com/surepl/commit-census/internal/githubapi"
)

// Below one hour a window is treated as indivisible; if it still holds
// more hits than the API cap those extra hits cannot be retrieved.
const bisectFloor = time.Hour

func (h *Harvester) buildQuery(w Window) string {
	return fmt.Sprintf("%s %s-date:%s..%s",
		h.Config.Harvest.Query, h.Config.Harvest.DateField, isoTime(w.Start), isoTime(w.End))
}

// fetchWindow returns every hit inside the window in chronological
// window order. The first page doubles as the probe for total_count:
// an over-cap window that can still shrink is bisected and both halves
// fetched independently, left before right.
func (h *Harvester) fetchWindow(ctx context.Context, w Window) ([]githubapi.CommitItem, error) {
	query := h.buildQuery(w)
	perPage := h.Config.Harvest.PerPage
	maxPages := h.Config.Harvest.MaxPages

	resp, headers, err := h.Caller.SearchCommits(ctx, query, 1, perPage)
	if err != nil {
		return nil, err
	}
	total := resp.TotalCount
	h.Governor.Throttle(headers)

	if total > h.Config.GithubApi.MaxSearchResults && w.Duration() > bisectFloor {
		left, right := splitWindow(w)
		leftItems, err := h.fetchWindow(ctx, left)
		if err != nil {
			return nil, err
		}
		rightItems, err := h.fetchWindow(ctx, right)
		if err != nil {
			return nil, err
		}
		return append(leftItems, rightItems...), nil
	}

	items := resp.Items
	results := append([]githubapi.CommitItem{}, items...)
	page := 1
	for len(items) == perPage && page < maxPages {
		page++
		resp, headers, err = h.Caller.SearchCommits(ctx, query, page, perPage)
		if err != nil {
			return nil, err
		}
		items = resp.Items
		results = append(results, items...)
		h.Governor.Throttle(headers)
	}

	if total > h.Config.GithubApi.MaxSearchResults && w.Duration() <= bisectFloor {
		h.truncated = true
		h.Logger.Warn(ctx, "window %s..%s still exceeds %d results, output may be truncated",
			isoTime(w.Start), isoTime(w.End), h.Config.GithubApi.MaxSearchResults)
	}

	return results, nil
}
