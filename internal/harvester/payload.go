package harvester

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/surepl/commit-census/internal/model"
)

// Meta describes the run that produced a payload. The enrichment
// fields only appear when enrichment actually ran.
type Meta struct {
	Source         string `json:"source"`
	Query          string `json:"query"`
	DateField      string `json:"date_field"`
	Start          string `json:"start"`
	End            string `json:"end"`
	CollectedAt    string `json:"collected_at"`
	Notes          string `json:"notes"`
	RepoEnriched   *int   `json:"repo_enriched,omitempty"`
	RepoCache      string `json:"repo_cache,omitempty"`
	TopicsIncluded *bool  `json:"topics_included,omitempty"`
}

// Payload is the write-once artifact of a run. Repos stays absent
// unless enrichment ran; an enriched run with zero surviving repos
// still writes an empty list.
type Payload struct {
	Meta    Meta           `json:"meta"`
	Commits []model.Commit `json:"commits"`
	Repos   *[]model.Repo  `json:"repos,omitempty"`
}

func (p *Payload) Write(path string) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write payload: %w", err)
	}
	return nil
}
