package scoring

import (
	"fmt"
	"testing"
	"time"

	"github.com/algojourney/algojourney/internal/database"
	"github.com/algojourney/algojourney/internal/database/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func seedGroup(t *testing.T, db *gorm.DB, name string) *models.Group {
	t.Helper()
	g := models.Group{ID: uuid.NewString(), Name: name}
	require.NoError(t, database.CreateGroup(db, &g))
	return &g
}

func seedUser(t *testing.T, db *gorm.DB, username string, groupID *string) *models.User {
	t.Helper()
	u := models.User{
		ID:       uuid.NewString(),
		Email:    username + "@example.com",
		Username: username,
		GroupID:  groupID,
	}
	require.NoError(t, database.CreateUser(db, &u))
	return &u
}

func seedQuestion(t *testing.T, db *gorm.DB, slugName string, points int) *models.Question {
	t.Helper()
	q := models.Question{
		ID:         uuid.NewString(),
		Slug:       slugName,
		Title:      slugName,
		Points:     points,
		Difficulty: models.DifficultyMedium,
	}
	require.NoError(t, database.CreateQuestion(db, &q))
	return &q
}

func seedContest(t *testing.T, db *gorm.DB, name string) *models.Contest {
	t.Helper()
	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	c := models.Contest{
		ID:        uuid.NewString(),
		Name:      name,
		StartTime: start,
		EndTime:   start.Add(2 * time.Hour),
		Duration:  90,
		Status:    models.ContestActive,
	}
	require.NoError(t, database.CreateContest(db, &c))
	return &c
}

func userPoints(t *testing.T, db *gorm.DB, userID string) float64 {
	t.Helper()
	u, err := database.GetUserByID(db, userID)
	require.NoError(t, err)
	return u.IndividualPoints
}

func groupPoints(t *testing.T, db *gorm.DB, groupID string) float64 {
	t.Helper()
	g, err := database.GetGroupByID(db, groupID)
	require.NoError(t, err)
	return g.GroupPoints
}

func TestGroupDivisorFloorsAtFour(t *testing.T) {
	require.Equal(t, 4.0, groupDivisor(1))
	require.Equal(t, 4.0, groupDivisor(3))
	require.Equal(t, 4.0, groupDivisor(4))
	require.Equal(t, 5.0, groupDivisor(5))
}

func TestRecordSubmissionPracticeHalvesAndFloors(t *testing.T) {
	db := newTestDB(t)
	g := seedGroup(t, db, "alpha")
	u := seedUser(t, db, "alice", &g.ID)
	seedQuestion(t, db, "odd-points", 45)

	sub, err := RecordSubmission(db, u.ID, "odd-points", nil)
	require.NoError(t, err)
	require.Equal(t, 22, sub.Score)
	require.Equal(t, 22.0, userPoints(t, db, u.ID))

	// Practice never touches group state.
	require.Equal(t, 0.0, groupPoints(t, db, g.ID))
	var gocCount int64
	require.NoError(t, db.Model(&models.GroupOnContest{}).Count(&gocCount).Error)
	require.Zero(t, gocCount)
}

func TestRecordSubmissionContestCreditsGroup(t *testing.T) {
	db := newTestDB(t)
	g := seedGroup(t, db, "alpha")
	u := seedUser(t, db, "alice", &g.ID)
	seedUser(t, db, "bob", &g.ID)
	seedQuestion(t, db, "two-sum", 100)
	c := seedContest(t, db, "weekly")

	sub, err := RecordSubmission(db, u.ID, "two-sum", &c.ID)
	require.NoError(t, err)
	require.Equal(t, 100, sub.Score)
	require.Equal(t, 100.0, userPoints(t, db, u.ID))

	// Two members, so the divisor floor of 4 applies: 100/4 = 25.
	require.Equal(t, 25.0, groupPoints(t, db, g.ID))

	goc, err := database.GetOrCreateGroupOnContest(db, g.ID, c.ID)
	require.NoError(t, err)
	require.Equal(t, 25.0, goc.Score)
	require.Equal(t, 1, goc.Rank)
}

func TestRecordSubmissionGrouplessContestUser(t *testing.T) {
	db := newTestDB(t)
	u := seedUser(t, db, "solo", nil)
	seedQuestion(t, db, "two-sum", 100)
	c := seedContest(t, db, "weekly")

	_, err := RecordSubmission(db, u.ID, "two-sum", &c.ID)
	require.NoError(t, err)
	require.Equal(t, 100.0, userPoints(t, db, u.ID))

	var gocCount int64
	require.NoError(t, db.Model(&models.GroupOnContest{}).Count(&gocCount).Error)
	require.Zero(t, gocCount)
}

func TestApplyPointsDeltaFansOut(t *testing.T) {
	db := newTestDB(t)

	// Five-member group, two of whom solved the question in a contest.
	g := seedGroup(t, db, "alpha")
	solver1 := seedUser(t, db, "alice", &g.ID)
	solver2 := seedUser(t, db, "bob", &g.ID)
	for _, name := range []string{"carol", "dave", "erin"} {
		seedUser(t, db, name, &g.ID)
	}
	q := seedQuestion(t, db, "two-sum", 100)
	c := seedContest(t, db, "weekly")

	_, err := RecordSubmission(db, solver1.ID, "two-sum", &c.ID)
	require.NoError(t, err)
	_, err = RecordSubmission(db, solver2.ID, "two-sum", &c.ID)
	require.NoError(t, err)
	// A second accepted submission from the same solver must not double the
	// retroactive credit.
	_, err = RecordSubmission(db, solver1.ID, "two-sum", &c.ID)
	require.NoError(t, err)

	groupBefore := groupPoints(t, db, g.ID)

	updated, affected, err := ApplyPointsDelta(db, q.ID, 150)
	require.NoError(t, err)
	require.Equal(t, 150, updated.Points)
	require.Equal(t, []string{c.ID}, affected)

	// Each distinct solver gains the delta exactly once.
	require.Equal(t, 100.0+100.0+50.0, userPoints(t, db, solver1.ID))
	require.Equal(t, 100.0+50.0, userPoints(t, db, solver2.ID))

	// 2 solvers * 50 delta / 5 members = 20 on both aggregates.
	require.Equal(t, groupBefore+20.0, groupPoints(t, db, g.ID))
	goc, err := database.GetOrCreateGroupOnContest(db, g.ID, c.ID)
	require.NoError(t, err)
	require.Equal(t, groupBefore+20.0, goc.Score)
}

func TestApplyPointsDeltaNegative(t *testing.T) {
	db := newTestDB(t)
	g := seedGroup(t, db, "alpha")
	u := seedUser(t, db, "alice", &g.ID)
	q := seedQuestion(t, db, "two-sum", 100)
	c := seedContest(t, db, "weekly")

	_, err := RecordSubmission(db, u.ID, "two-sum", &c.ID)
	require.NoError(t, err)

	_, _, err = ApplyPointsDelta(db, q.ID, 60)
	require.NoError(t, err)

	require.Equal(t, 60.0, userPoints(t, db, u.ID))
	// 1 solver * -40 / 4 (floor) = -10 off the original 25 share.
	require.Equal(t, 15.0, groupPoints(t, db, g.ID))
}

func TestApplyPointsDeltaSurvivesDeletedSolver(t *testing.T) {
	db := newTestDB(t)
	g := seedGroup(t, db, "alpha")
	alice := seedUser(t, db, "alice", &g.ID)
	bob := seedUser(t, db, "bob", &g.ID)
	q := seedQuestion(t, db, "two-sum", 100)
	c := seedContest(t, db, "weekly")

	_, err := RecordSubmission(db, alice.ID, "two-sum", &c.ID)
	require.NoError(t, err)
	_, err = RecordSubmission(db, bob.ID, "two-sum", &c.ID)
	require.NoError(t, err)

	// Bob's account is removed; his submissions stay in place.
	require.NoError(t, database.DeleteUser(db, bob.ID))

	updated, affected, err := ApplyPointsDelta(db, q.ID, 150)
	require.NoError(t, err)
	require.Equal(t, 150, updated.Points)
	require.Equal(t, []string{c.ID}, affected)

	// The surviving solver still gets the delta.
	require.Equal(t, 150.0, userPoints(t, db, alice.ID))

	// Each original submission added 100/4 = 25 to the group. The edit counts
	// only the surviving solver: 1 * 50 / max(4, 1 member) = 12.5.
	require.Equal(t, 62.5, groupPoints(t, db, g.ID))
	goc, err := database.GetOrCreateGroupOnContest(db, g.ID, c.ID)
	require.NoError(t, err)
	require.Equal(t, 62.5, goc.Score)
}

func TestApplyPointsDeltaNoopWhenUnchanged(t *testing.T) {
	db := newTestDB(t)
	g := seedGroup(t, db, "alpha")
	u := seedUser(t, db, "alice", &g.ID)
	q := seedQuestion(t, db, "two-sum", 100)
	c := seedContest(t, db, "weekly")

	_, err := RecordSubmission(db, u.ID, "two-sum", &c.ID)
	require.NoError(t, err)

	_, affected, err := ApplyPointsDelta(db, q.ID, 100)
	require.NoError(t, err)
	require.Empty(t, affected)
	require.Equal(t, 100.0, userPoints(t, db, u.ID))
}

func TestDeleteQuestionReversesCredit(t *testing.T) {
	db := newTestDB(t)
	g := seedGroup(t, db, "alpha")
	u := seedUser(t, db, "alice", &g.ID)
	q := seedQuestion(t, db, "two-sum", 100)
	keep := seedQuestion(t, db, "three-sum", 150)
	c := seedContest(t, db, "weekly")

	_, err := RecordSubmission(db, u.ID, "two-sum", &c.ID)
	require.NoError(t, err)
	_, err = RecordSubmission(db, u.ID, "three-sum", nil)
	require.NoError(t, err)
	require.Equal(t, 175.0, userPoints(t, db, u.ID))

	require.NoError(t, DeleteQuestion(db, q.ID))

	// Only the deleted question's credit is reversed.
	require.Equal(t, 75.0, userPoints(t, db, u.ID))

	_, err = database.GetQuestionByID(db, q.ID)
	require.Error(t, err)
	_, err = database.GetQuestionByID(db, keep.ID)
	require.NoError(t, err)

	var subCount int64
	require.NoError(t, db.Model(&models.Submission{}).
		Where("question_id = ?", q.ID).Count(&subCount).Error)
	require.Zero(t, subCount)
}
