package contest

import (
	"time"

	"github.com/algojourney/algojourney/internal/database/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Location is the platform clock zone. All contest windows are evaluated at
// UTC+5:30; this is a fixed design constraint, not configuration.
var Location = time.FixedZone("IST", 5*3600+30*60)

// nowFunc is swapped out by tests.
var nowFunc = func() time.Time { return time.Now().In(Location) }

func Now() time.Time {
	return nowFunc()
}

// DeriveStatus computes a contest's lifecycle phase from the clock. Both
// window bounds are inclusive.
func DeriveStatus(c *models.Contest, now time.Time) models.ContestStatus {
	switch {
	case now.Before(c.StartTime):
		return models.ContestUpcoming
	case now.After(c.EndTime):
		return models.ContestCompleted
	default:
		return models.ContestActive
	}
}

// ReconcileStatuses refreshes the stored status of every contest whose
// derived phase has gone stale. Statuses are reconciled lazily whenever the
// contest list is read; there is no background scheduler. A failed persist is
// logged and never blocks the read.
func ReconcileStatuses(db *gorm.DB, contests []models.Contest) []models.Contest {
	now := Now()
	for i := range contests {
		derived := DeriveStatus(&contests[i], now)
		if contests[i].Status == derived {
			continue
		}
		contests[i].Status = derived
		if err := db.Model(&models.Contest{}).
			Where("id = ?", contests[i].ID).
			Update("status", derived).Error; err != nil {
			zap.S().Errorf("failed to persist status %s for contest %s: %v", derived, contests[i].ID, err)
		}
	}
	return contests
}
