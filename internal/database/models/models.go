package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

type SubmissionStatus string

const (
	SubmissionPending  SubmissionStatus = "PENDING"
	SubmissionAccepted SubmissionStatus = "ACCEPTED"
	SubmissionRejected SubmissionStatus = "REJECTED"
)

type ContestStatus string

const (
	ContestUpcoming  ContestStatus = "UPCOMING"
	ContestActive    ContestStatus = "ACTIVE"
	ContestCompleted ContestStatus = "COMPLETED"
)

type Difficulty string

const (
	DifficultyBeginner Difficulty = "BEGINNER"
	DifficultyEasy     Difficulty = "EASY"
	DifficultyMedium   Difficulty = "MEDIUM"
	DifficultyHard     Difficulty = "HARD"
	DifficultyVeryHard Difficulty = "VERYHARD"
)

// Rank returns the ordering position of a difficulty; unknown values sort last.
func (d Difficulty) Rank() int {
	switch d {
	case DifficultyBeginner:
		return 0
	case DifficultyEasy:
		return 1
	case DifficultyMedium:
		return 2
	case DifficultyHard:
		return 3
	case DifficultyVeryHard:
		return 4
	}
	return 5
}

// JSONMap is a helper type for storing JSON data in the database.
type JSONMap map[string]interface{}

func (m JSONMap) Value() (driver.Value, error) {
	return json.Marshal(m)
}

func (m *JSONMap) Scan(value interface{}) error {
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(bytes, &m)
}

type User struct {
	ID        string `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`

	Email        string `gorm:"uniqueIndex" json:"email"`
	Username     string `gorm:"uniqueIndex" json:"username"`
	PasswordHash string `json:"-"`

	// Running practice + contest credit. Mutated only by the scoring engine.
	IndividualPoints float64 `json:"individual_points"`

	GroupID *string `gorm:"index" json:"group_id"`
	Group   *Group  `json:"group,omitempty"`

	LeetcodeUsername string  `json:"leetcode_username"`
	CodeforcesHandle string  `json:"codeforces_handle"`
	GithubUsername   string  `json:"github_username"`
	GithubID         *string `gorm:"uniqueIndex" json:"-"`
}

type Group struct {
	ID        string `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Name string `gorm:"uniqueIndex" json:"name"`

	// Aggregate credit across contests. Fractional: per-member deltas divide
	// by group size.
	GroupPoints float64 `json:"group_points"`

	// The coordinator need not be a member.
	CoordinatorID *string `json:"coordinator_id"`

	Members []User `gorm:"foreignKey:GroupID" json:"members,omitempty"`
}

type Question struct {
	ID        string `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Slug       string     `gorm:"uniqueIndex" json:"slug"`
	Title      string     `json:"title"`
	URL        string     `json:"url"`
	Points     int        `json:"points"`
	Difficulty Difficulty `gorm:"index" json:"difficulty"`

	InArena      bool       `gorm:"index" json:"in_arena"`
	ArenaAddedAt *time.Time `json:"arena_added_at"`
	InContest    bool       `json:"in_contest"`

	Tags []QuestionTag `gorm:"many2many:question_tag_links" json:"tags,omitempty"`
}

type QuestionTag struct {
	ID        string `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time

	Name string `gorm:"uniqueIndex" json:"name"`
}

type Hint struct {
	ID        string `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time
	UpdatedAt time.Time

	QuestionID string `gorm:"uniqueIndex" json:"question_id"`
	Content    string `json:"content"`
}

type Contest struct {
	ID        string `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Name      string        `json:"name"`
	StartTime time.Time     `gorm:"index" json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  int           `json:"duration"` // minutes, personal countdown
	Status    ContestStatus `json:"status"`

	Questions []Question `gorm:"many2many:question_on_contests" json:"questions,omitempty"`
}

// GroupOnContest is the scoring record for one group's participation in one
// contest. Created lazily when the first member joins.
type GroupOnContest struct {
	ID        string `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time
	UpdatedAt time.Time

	GroupID   string `gorm:"uniqueIndex:idx_group_contest" json:"group_id"`
	ContestID string `gorm:"uniqueIndex:idx_group_contest" json:"contest_id"`

	Score float64 `json:"score"`
	Rank  int     `json:"rank"`

	Group *Group `json:"group,omitempty"`
}

type Submission struct {
	ID        string `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time

	UserID     string  `gorm:"index" json:"user_id"`
	QuestionID string  `gorm:"index" json:"question_id"`
	ContestID  *string `gorm:"index" json:"contest_id"`

	Score  int              `json:"score"`
	Status SubmissionStatus `gorm:"index" json:"status"`
}

// ContestPermission is an explicit per-user allow-list entry for a contest,
// independent of group membership.
type ContestPermission struct {
	ID        string `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time

	ContestID string `gorm:"uniqueIndex:idx_contest_user_perm" json:"contest_id"`
	UserID    string `gorm:"uniqueIndex:idx_contest_user_perm" json:"user_id"`
}

// GroupPermission gates which groups may attempt a contest.
type GroupPermission struct {
	ID        string `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time

	ContestID string `gorm:"uniqueIndex:idx_contest_group_perm" json:"contest_id"`
	GroupID   string `gorm:"uniqueIndex:idx_contest_group_perm" json:"group_id"`
}

// TempContestTime pins a user's personal countdown end so remaining time
// survives page reloads.
type TempContestTime struct {
	ID        string `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time

	UserID    string    `gorm:"uniqueIndex:idx_user_contest_time" json:"user_id"`
	ContestID string    `gorm:"uniqueIndex:idx_user_contest_time" json:"contest_id"`
	EndTime   time.Time `json:"end_time"`
}

type Role struct {
	ID        string `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time

	Name string `gorm:"uniqueIndex" json:"name"`
}

type UserRole struct {
	ID        string `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time

	UserID string `gorm:"uniqueIndex:idx_user_role" json:"user_id"`
	RoleID string `gorm:"uniqueIndex:idx_user_role" json:"role_id"`
}

// ExternalStat holds the last fetched third-party profile payload for a user
// on one platform (leetcode, codeforces, github).
type ExternalStat struct {
	ID        string `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time
	UpdatedAt time.Time

	UserID   string  `gorm:"uniqueIndex:idx_user_platform" json:"user_id"`
	Platform string  `gorm:"uniqueIndex:idx_user_platform" json:"platform"`
	Data     JSONMap `gorm:"type:text" json:"data"`

	FetchedAt time.Time `json:"fetched_at"`
}
