package contest

import (
	"testing"
	"time"

	"github.com/algojourney/algojourney/internal/database"
	"github.com/algojourney/algojourney/internal/database/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

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

func seedContest(t *testing.T, db *gorm.DB, name string, start time.Time, questions ...models.Question) *models.Contest {
	t.Helper()
	c := models.Contest{
		ID:        uuid.NewString(),
		Name:      name,
		StartTime: start,
		EndTime:   start.Add(2 * time.Hour),
		Duration:  90,
		Status:    models.ContestUpcoming,
		Questions: questions,
	}
	require.NoError(t, database.CreateContest(db, &c))
	return &c
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

func grantAll(t *testing.T, db *gorm.DB, c *models.Contest, u *models.User, g *models.Group) {
	t.Helper()
	require.NoError(t, database.GrantContestPermissions(db, c.ID, []string{u.ID}))
	require.NoError(t, database.GrantGroupPermissions(db, c.ID, []string{g.ID}))
}

func TestJoinRequiresGroup(t *testing.T) {
	db := newTestDB(t)
	start := time.Date(2024, 3, 1, 10, 0, 0, 0, Location)
	c := seedContest(t, db, "weekly", start)
	u := seedUser(t, db, "solo", nil)
	setNow(t, start.Add(time.Minute))

	_, err := Join(db, u.ID, c.ID)
	require.ErrorIs(t, err, ErrNoGroup)
}

func TestJoinLatestRequiresContestPermission(t *testing.T) {
	db := newTestDB(t)
	start := time.Date(2024, 3, 1, 10, 0, 0, 0, Location)
	g := seedGroup(t, db, "alpha")
	u := seedUser(t, db, "alice", &g.ID)
	c := seedContest(t, db, "weekly", start)
	require.NoError(t, database.GrantGroupPermissions(db, c.ID, []string{g.ID}))
	setNow(t, start.Add(time.Minute))

	_, err := Join(db, u.ID, c.ID)
	require.ErrorIs(t, err, ErrNotPermitted)
}

func TestJoinLatestTimingWindow(t *testing.T) {
	db := newTestDB(t)
	start := time.Date(2024, 3, 1, 10, 0, 0, 0, Location)
	g := seedGroup(t, db, "alpha")
	u := seedUser(t, db, "alice", &g.ID)
	c := seedContest(t, db, "weekly", start)
	grantAll(t, db, c, u, g)

	// 1ms before start: refused as not started.
	setNow(t, start.Add(-time.Millisecond))
	_, err := Join(db, u.ID, c.ID)
	require.ErrorIs(t, err, ErrNotStarted)

	// 1ms after end: refused as ended.
	setNow(t, c.EndTime.Add(time.Millisecond))
	_, err = Join(db, u.ID, c.ID)
	require.ErrorIs(t, err, ErrEnded)

	// Exactly at start: admitted.
	setNow(t, start)
	res, err := Join(db, u.ID, c.ID)
	require.NoError(t, err)
	require.False(t, res.Practice)
}

func TestJoinLatestBlocksReentry(t *testing.T) {
	db := newTestDB(t)
	start := time.Date(2024, 3, 1, 10, 0, 0, 0, Location)
	g := seedGroup(t, db, "alpha")
	u := seedUser(t, db, "alice", &g.ID)
	q := seedQuestion(t, db, "two-sum", 100)
	c := seedContest(t, db, "weekly", start)
	grantAll(t, db, c, u, g)
	setNow(t, start.Add(time.Minute))

	require.NoError(t, database.CreateSubmission(db, &models.Submission{
		ID:         uuid.NewString(),
		UserID:     u.ID,
		QuestionID: q.ID,
		ContestID:  &c.ID,
		Status:     models.SubmissionAccepted,
	}))

	_, err := Join(db, u.ID, c.ID)
	require.ErrorIs(t, err, ErrAlreadyAttempted)
}

func TestJoinIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	start := time.Date(2024, 3, 1, 10, 0, 0, 0, Location)
	g := seedGroup(t, db, "alpha")
	u := seedUser(t, db, "alice", &g.ID)
	c := seedContest(t, db, "weekly", start)
	grantAll(t, db, c, u, g)
	setNow(t, start.Add(time.Minute))

	first, err := Join(db, u.ID, c.ID)
	require.NoError(t, err)
	second, err := Join(db, u.ID, c.ID)
	require.NoError(t, err)

	var gocCount, timerCount int64
	require.NoError(t, db.Model(&models.GroupOnContest{}).
		Where("group_id = ? AND contest_id = ?", g.ID, c.ID).Count(&gocCount).Error)
	require.NoError(t, db.Model(&models.TempContestTime{}).
		Where("user_id = ? AND contest_id = ?", u.ID, c.ID).Count(&timerCount).Error)
	require.EqualValues(t, 1, gocCount)
	require.EqualValues(t, 1, timerCount)

	// The countdown was pinned on the first join, not reset.
	require.Equal(t, first.RemainingSeconds, second.RemainingSeconds)
}

func TestJoinCountdownSurvivesReload(t *testing.T) {
	db := newTestDB(t)
	start := time.Date(2024, 3, 1, 10, 0, 0, 0, Location)
	g := seedGroup(t, db, "alpha")
	u := seedUser(t, db, "alice", &g.ID)
	c := seedContest(t, db, "weekly", start)
	grantAll(t, db, c, u, g)

	setNow(t, start)
	first, err := Join(db, u.ID, c.ID)
	require.NoError(t, err)
	require.EqualValues(t, 90*60, first.RemainingSeconds)

	// Rejoin half an hour later: 60 minutes remain.
	setNow(t, start.Add(30*time.Minute))
	second, err := Join(db, u.ID, c.ID)
	require.NoError(t, err)
	require.EqualValues(t, 60*60, second.RemainingSeconds)
}

func TestPracticeModeSkipsLatestGating(t *testing.T) {
	db := newTestDB(t)
	oldStart := time.Date(2024, 2, 1, 10, 0, 0, 0, Location)
	newStart := time.Date(2024, 3, 1, 10, 0, 0, 0, Location)
	g := seedGroup(t, db, "alpha")
	u := seedUser(t, db, "alice", &g.ID)
	older := seedContest(t, db, "old weekly", oldStart)
	seedContest(t, db, "new weekly", newStart)
	// Group permission only; no per-user grant, and the window is long over.
	require.NoError(t, database.GrantGroupPermissions(db, older.ID, []string{g.ID}))
	setNow(t, newStart.Add(time.Hour))

	res, err := Join(db, u.ID, older.ID)
	require.NoError(t, err)
	require.True(t, res.Practice)
}

func TestPracticeModeStillRequiresGroupPermission(t *testing.T) {
	db := newTestDB(t)
	oldStart := time.Date(2024, 2, 1, 10, 0, 0, 0, Location)
	newStart := time.Date(2024, 3, 1, 10, 0, 0, 0, Location)
	g := seedGroup(t, db, "alpha")
	u := seedUser(t, db, "alice", &g.ID)
	older := seedContest(t, db, "old weekly", oldStart)
	seedContest(t, db, "new weekly", newStart)
	setNow(t, newStart.Add(time.Hour))

	_, err := Join(db, u.ID, older.ID)
	require.ErrorIs(t, err, ErrNotPermitted)
}

func TestJoinAnnotatesSolvedQuestions(t *testing.T) {
	db := newTestDB(t)
	start := time.Date(2024, 3, 1, 10, 0, 0, 0, Location)
	g := seedGroup(t, db, "alpha")
	u := seedUser(t, db, "alice", &g.ID)
	solvedQ := seedQuestion(t, db, "two-sum", 100)
	openQ := seedQuestion(t, db, "three-sum", 150)
	c := seedContest(t, db, "weekly", start, *solvedQ, *openQ)
	grantAll(t, db, c, u, g)
	setNow(t, start.Add(time.Minute))

	require.NoError(t, database.CreateSubmission(db, &models.Submission{
		ID:         uuid.NewString(),
		UserID:     u.ID,
		QuestionID: solvedQ.ID,
		Status:     models.SubmissionAccepted,
	}))

	res, err := Join(db, u.ID, c.ID)
	require.NoError(t, err)
	require.Len(t, res.Questions, 2)

	solvedBySlug := map[string]bool{}
	for _, entry := range res.Questions {
		solvedBySlug[entry.Question.Slug] = entry.Solved
	}
	require.True(t, solvedBySlug["two-sum"])
	require.False(t, solvedBySlug["three-sum"])
}

func TestRejectedJoinWritesNothing(t *testing.T) {
	db := newTestDB(t)
	start := time.Date(2024, 3, 1, 10, 0, 0, 0, Location)
	g := seedGroup(t, db, "alpha")
	u := seedUser(t, db, "alice", &g.ID)
	c := seedContest(t, db, "weekly", start)
	grantAll(t, db, c, u, g)
	setNow(t, start.Add(-time.Hour))

	_, err := Join(db, u.ID, c.ID)
	require.ErrorIs(t, err, ErrNotStarted)

	var gocCount, timerCount int64
	require.NoError(t, db.Model(&models.GroupOnContest{}).Count(&gocCount).Error)
	require.NoError(t, db.Model(&models.TempContestTime{}).Count(&timerCount).Error)
	require.Zero(t, gocCount)
	require.Zero(t, timerCount)
}
