package scoring

import (
	"context"
	"errors"
	"time"

	"github.com/algojourney/algojourney/internal/database"
	"github.com/algojourney/algojourney/internal/database/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// applyDeltaTimeout bounds the retroactive points-edit transaction, which can
// touch every historical solver of a question.
const applyDeltaTimeout = 40 * time.Second

// groupDivisorFloor keeps very small groups from being over-rewarded
// per-capita: per-member contributions divide by at least this.
const groupDivisorFloor = 4

func groupDivisor(memberCount int64) float64 {
	if memberCount < groupDivisorFloor {
		return groupDivisorFloor
	}
	return float64(memberCount)
}

// RecordSubmission inserts an ACCEPTED submission and credits the user in one
// transaction. Contest submissions award the question's full point value and
// additionally push the per-capita share onto the group's aggregate and its
// contest score, re-ranking the contest; practice submissions award half
// credit (floored) and touch no group state.
//
// Duplicate-credit prevention is the caller's job: the admission flow blocks
// re-entry into the latest contest, and practice re-attempts are allowed by
// design.
func RecordSubmission(db *gorm.DB, userID, questionSlug string, contestID *string) (*models.Submission, error) {
	user, err := database.GetUserByID(db, userID)
	if err != nil {
		return nil, err
	}
	question, err := database.GetQuestionBySlug(db, questionSlug)
	if err != nil {
		return nil, err
	}

	awarded := question.Points
	if contestID == nil {
		awarded = question.Points / 2
	}

	sub := &models.Submission{
		ID:         uuid.NewString(),
		UserID:     user.ID,
		QuestionID: question.ID,
		ContestID:  contestID,
		Score:      awarded,
		Status:     models.SubmissionAccepted,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := database.CreateSubmission(tx, sub); err != nil {
			return err
		}
		if err := tx.Model(&models.User{}).
			Where("id = ?", user.ID).
			Update("individual_points", gorm.Expr("individual_points + ?", float64(awarded))).Error; err != nil {
			return err
		}

		if contestID == nil || user.GroupID == nil {
			return nil
		}

		members, err := database.CountGroupMembers(tx, *user.GroupID)
		if err != nil {
			return err
		}
		share := float64(awarded) / groupDivisor(members)

		if err := tx.Model(&models.Group{}).
			Where("id = ?", *user.GroupID).
			Update("group_points", gorm.Expr("group_points + ?", share)).Error; err != nil {
			return err
		}

		goc, err := database.GetOrCreateGroupOnContest(tx, *user.GroupID, *contestID)
		if err != nil {
			return err
		}
		if err := tx.Model(&models.GroupOnContest{}).
			Where("id = ?", goc.ID).
			Update("score", gorm.Expr("score + ?", share)).Error; err != nil {
			return err
		}

		return RecalculateRanks(tx, *contestID)
	})
	if err != nil {
		return nil, err
	}

	zap.S().Infof("submission %s: user %s solved %s for %d points", sub.ID, user.Username, question.Slug, awarded)
	return sub, nil
}

// groupMutation is one pre-computed aggregate adjustment from a retroactive
// point edit.
type groupMutation struct {
	groupID   string
	contestID string
	delta     float64
}

// ApplyPointsDelta changes a question's point value and reconciles all
// historical credit: every distinct ACCEPTED solver gains the delta exactly
// once, and every group with a solver in a contest gains
// solvers*delta/max(4, groupSize) on both its running total and its contest
// score. Affected contests are re-ranked.
//
// The whole fan-out is one transaction with an extended timeout; sqlite
// serializes it. All mutations are enumerated from a consistent read before
// any write is issued. Returns the updated question and the IDs of re-ranked
// contests.
func ApplyPointsDelta(db *gorm.DB, questionID string, newPoints int) (*models.Question, []string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), applyDeltaTimeout)
	defer cancel()

	var question *models.Question
	var affected []string

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		question, err = database.GetQuestionByID(tx, questionID)
		if err != nil {
			return err
		}

		delta := newPoints - question.Points
		question.Points = newPoints
		if err := tx.Model(&models.Question{}).
			Where("id = ?", questionID).
			Update("points", newPoints).Error; err != nil {
			return err
		}
		if delta == 0 {
			return nil
		}

		solvers, err := database.DistinctAcceptedSolvers(tx, questionID)
		if err != nil {
			return err
		}

		// Enumerate all group mutations before writing anything.
		contestIDs, err := database.ContestsWithAcceptedSolves(tx, questionID)
		if err != nil {
			return err
		}
		var mutations []groupMutation
		for _, cid := range contestIDs {
			contestSolvers, err := database.DistinctContestSolvers(tx, questionID, cid)
			if err != nil {
				return err
			}
			solversPerGroup := make(map[string]int)
			for _, uid := range contestSolvers {
				u, err := database.GetUserByID(tx, uid)
				if err != nil {
					// Submissions outlive soft-deleted accounts; a vanished
					// solver contributes nothing to any group.
					if errors.Is(err, gorm.ErrRecordNotFound) {
						continue
					}
					return err
				}
				if u.GroupID == nil {
					continue
				}
				solversPerGroup[*u.GroupID]++
			}
			for gid, n := range solversPerGroup {
				members, err := database.CountGroupMembers(tx, gid)
				if err != nil {
					return err
				}
				mutations = append(mutations, groupMutation{
					groupID:   gid,
					contestID: cid,
					delta:     float64(n) * float64(delta) / groupDivisor(members),
				})
			}
		}

		for _, uid := range solvers {
			if err := tx.Model(&models.User{}).
				Where("id = ?", uid).
				Update("individual_points", gorm.Expr("individual_points + ?", float64(delta))).Error; err != nil {
				return err
			}
		}

		for _, m := range mutations {
			if err := tx.Model(&models.Group{}).
				Where("id = ?", m.groupID).
				Update("group_points", gorm.Expr("group_points + ?", m.delta)).Error; err != nil {
				return err
			}
			goc, err := database.GetOrCreateGroupOnContest(tx, m.groupID, m.contestID)
			if err != nil {
				return err
			}
			if err := tx.Model(&models.GroupOnContest{}).
				Where("id = ?", goc.ID).
				Update("score", gorm.Expr("score + ?", m.delta)).Error; err != nil {
				return err
			}
		}

		for _, cid := range contestIDs {
			if err := RecalculateRanks(tx, cid); err != nil {
				return err
			}
		}
		affected = contestIDs
		return nil
	})

	if err != nil {
		return nil, nil, err
	}
	return question, affected, nil
}

// DeleteQuestion reverses every solver's previously awarded credit for the
// question, then removes the question and its dependent rows, all in one
// transaction so no orphaned credit survives a partial failure.
func DeleteQuestion(db *gorm.DB, questionID string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if _, err := database.GetQuestionByID(tx, questionID); err != nil {
			return err
		}

		type userCredit struct {
			UserID string
			Total  float64
		}
		var credits []userCredit
		if err := tx.Model(&models.Submission{}).
			Select("user_id, SUM(score) as total").
			Where("question_id = ? AND status = ?", questionID, models.SubmissionAccepted).
			Group("user_id").
			Scan(&credits).Error; err != nil {
			return err
		}

		for _, cr := range credits {
			if err := tx.Model(&models.User{}).
				Where("id = ?", cr.UserID).
				Update("individual_points", gorm.Expr("individual_points - ?", cr.Total)).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("question_id = ?", questionID).
			Delete(&models.Submission{}).Error; err != nil {
			return err
		}
		if err := tx.Where("question_id = ?", questionID).
			Delete(&models.Hint{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM question_on_contests WHERE question_id = ?", questionID).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM question_tag_links WHERE question_id = ?", questionID).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Question{}, "id = ?", questionID).Error
	})
}
