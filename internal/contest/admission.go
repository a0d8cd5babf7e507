package contest

import (
	"errors"
	"time"

	"github.com/algojourney/algojourney/internal/database"
	"github.com/algojourney/algojourney/internal/database/models"
	"gorm.io/gorm"
)

// Admission failure signals. Each denial condition gets its own error so the
// API layer can surface a distinct reason instead of one generic refusal.
var (
	ErrNoGroup          = errors.New("user does not belong to any group")
	ErrNotPermitted     = errors.New("no permission to attempt this contest")
	ErrNotStarted       = errors.New("contest has not started yet")
	ErrEnded            = errors.New("contest has ended")
	ErrAlreadyAttempted = errors.New("contest already attempted")
)

// QuestionEntry annotates a contest question with the caller's solved state.
type QuestionEntry struct {
	Question models.Question `json:"question"`
	Solved   bool            `json:"solved"`
}

// JoinResult is what a successful join returns: the question list, the
// personal countdown and whether the attempt runs in practice mode.
type JoinResult struct {
	ContestID        string               `json:"contest_id"`
	Status           models.ContestStatus `json:"status"`
	Practice         bool                 `json:"practice"`
	RemainingSeconds int64                `json:"remaining_seconds"`
	Questions        []QuestionEntry      `json:"questions"`
}

// Join runs the full admission flow for one (user, contest) attempt.
//
// The latest contest by start time is strictly gated: the user needs an
// explicit per-user grant, must not have an open submission for the contest,
// and the wall clock must be inside the contest window. Any older contest is
// attempted in practice mode, where those three checks are skipped and
// re-attempts are always allowed. Both modes require the user's group to hold
// a group-level grant.
//
// No attempt state is written until every check has passed.
func Join(db *gorm.DB, userID, contestID string) (*JoinResult, error) {
	user, err := database.GetUserByID(db, userID)
	if err != nil {
		return nil, err
	}
	if user.GroupID == nil {
		return nil, ErrNoGroup
	}

	target, err := database.GetContestByID(db, contestID)
	if err != nil {
		return nil, err
	}

	latest, err := database.GetLatestContest(db)
	if err != nil {
		return nil, err
	}
	isLatest := latest.ID == target.ID

	now := Now()
	if isLatest {
		permitted, err := database.HasContestPermission(db, target.ID, user.ID)
		if err != nil {
			return nil, err
		}
		if !permitted {
			return nil, ErrNotPermitted
		}

		attempted, err := database.HasOpenSubmission(db, user.ID, target.ID)
		if err != nil {
			return nil, err
		}
		if attempted {
			return nil, ErrAlreadyAttempted
		}

		if now.Before(target.StartTime) {
			return nil, ErrNotStarted
		}
		if now.After(target.EndTime) {
			return nil, ErrEnded
		}
	}

	groupPermitted, err := database.HasGroupPermission(db, target.ID, *user.GroupID)
	if err != nil {
		return nil, err
	}
	if !groupPermitted {
		return nil, ErrNotPermitted
	}

	// All checks passed; create (or reuse) the attempt records atomically.
	var timer *models.TempContestTime
	err = db.Transaction(func(tx *gorm.DB) error {
		if _, err := database.GetOrCreateGroupOnContest(tx, *user.GroupID, target.ID); err != nil {
			return err
		}
		end := now.Add(time.Duration(target.Duration) * time.Minute)
		timer, err = database.GetOrCreateTempContestTime(tx, user.ID, target.ID, end)
		return err
	})
	if err != nil {
		return nil, err
	}

	remaining := int64(timer.EndTime.Sub(now).Seconds())
	if remaining < 0 {
		remaining = 0
	}

	solved, err := database.GetSolvedQuestionIDs(db, user.ID)
	if err != nil {
		return nil, err
	}
	entries := make([]QuestionEntry, 0, len(target.Questions))
	for _, q := range target.Questions {
		entries = append(entries, QuestionEntry{Question: q, Solved: solved[q.ID]})
	}

	return &JoinResult{
		ContestID:        target.ID,
		Status:           DeriveStatus(target, now),
		Practice:         !isLatest,
		RemainingSeconds: remaining,
		Questions:        entries,
	}, nil
}
