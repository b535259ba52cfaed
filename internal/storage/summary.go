package storage

import (
	"sort"

	"ealife/internal/model"
)

// sortSummaries orders checkpoints by update, then creation time.
func sortSummaries(summaries []model.CheckpointSummary) {
	sort.SliceStable(summaries, func(i, j int) bool {
		if summaries[i].Update != summaries[j].Update {
			return summaries[i].Update < summaries[j].Update
		}
		return summaries[i].CreatedAt.Before(summaries[j].CreatedAt)
	})
}
