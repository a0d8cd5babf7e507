package scoring

import (
	"github.com/algojourney/algojourney/internal/database/models"
	"gorm.io/gorm"
)

// RecalculateRanks reassigns ranks for every group participating in a
// contest: 1 + index over score descending, ties broken by the earliest
// attempt record so the ordering is deterministic. It must run inside the
// same transaction as the score mutation that triggered it, so no reader
// ever observes a score/rank pairing from two different orderings.
func RecalculateRanks(tx *gorm.DB, contestID string) error {
	var rows []models.GroupOnContest
	if err := tx.Where("contest_id = ?", contestID).
		Order("score desc, created_at asc").
		Find(&rows).Error; err != nil {
		return err
	}

	for i := range rows {
		rank := i + 1
		if rows[i].Rank == rank {
			continue
		}
		if err := tx.Model(&models.GroupOnContest{}).
			Where("id = ?", rows[i].ID).
			Update("rank", rank).Error; err != nil {
			return err
		}
	}
	return nil
}
