package database

import (
	"time"

	"github.com/algojourney/algojourney/internal/database/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// User CRUD
func CreateUser(db *gorm.DB, user *models.User) error {
	return db.Create(user).Error
}

func GetUserByID(db *gorm.DB, id string) (*models.User, error) {
	var user models.User
	if err := db.Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func GetUserByUsername(db *gorm.DB, username string) (*models.User, error) {
	var user models.User
	if err := db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func GetUserByEmail(db *gorm.DB, email string) (*models.User, error) {
	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func GetUserByGithubID(db *gorm.DB, githubID string) (*models.User, error) {
	var user models.User
	if err := db.Where("github_id = ?", githubID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func GetAllUsers(db *gorm.DB) ([]models.User, error) {
	var users []models.User
	if err := db.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func UpdateUser(db *gorm.DB, user *models.User) error {
	return db.Save(user).Error
}

func DeleteUser(db *gorm.DB, userID string) error {
	return db.Delete(&models.User{}, "id = ?", userID).Error
}

// Group CRUD
func CreateGroup(db *gorm.DB, group *models.Group) error {
	return db.Create(group).Error
}

func GetGroupByID(db *gorm.DB, id string) (*models.Group, error) {
	var group models.Group
	if err := db.Preload("Members").Where("id = ?", id).First(&group).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

func GetAllGroups(db *gorm.DB) ([]models.Group, error) {
	var groups []models.Group
	if err := db.Preload("Members").Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}

func UpdateGroup(db *gorm.DB, group *models.Group) error {
	return db.Save(group).Error
}

func CountGroupMembers(db *gorm.DB, groupID string) (int64, error) {
	var count int64
	err := db.Model(&models.User{}).Where("group_id = ?", groupID).Count(&count).Error
	return count, err
}

// SetUserGroup moves a user between groups (or out of any group when groupID
// is nil). The pointer update is a single statement, callers wrap larger
// membership changes in a transaction.
func SetUserGroup(db *gorm.DB, userID string, groupID *string) error {
	return db.Model(&models.User{}).Where("id = ?", userID).Update("group_id", groupID).Error
}

// Question CRUD
func CreateQuestion(db *gorm.DB, q *models.Question) error {
	return db.Create(q).Error
}

func GetQuestionByID(db *gorm.DB, id string) (*models.Question, error) {
	var q models.Question
	if err := db.Preload("Tags").Where("id = ?", id).First(&q).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

func GetQuestionBySlug(db *gorm.DB, s string) (*models.Question, error) {
	var q models.Question
	if err := db.Preload("Tags").Where("slug = ?", s).First(&q).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

func GetAllQuestions(db *gorm.DB) ([]models.Question, error) {
	var qs []models.Question
	if err := db.Preload("Tags").Order("created_at desc").Find(&qs).Error; err != nil {
		return nil, err
	}
	return qs, nil
}

// arenaOrder sorts by difficulty rank, then arena_added_at with unset
// timestamps last.
const arenaOrder = "CASE difficulty " +
	"WHEN 'BEGINNER' THEN 0 WHEN 'EASY' THEN 1 WHEN 'MEDIUM' THEN 2 " +
	"WHEN 'HARD' THEN 3 WHEN 'VERYHARD' THEN 4 ELSE 5 END, " +
	"arena_added_at IS NULL, arena_added_at"

func GetArenaQuestions(db *gorm.DB) ([]models.Question, error) {
	var qs []models.Question
	if err := db.Preload("Tags").
		Where("in_arena = ?", true).
		Order(arenaOrder).
		Find(&qs).Error; err != nil {
		return nil, err
	}
	return qs, nil
}

func UpdateQuestion(db *gorm.DB, q *models.Question) error {
	return db.Save(q).Error
}

// Contest CRUD
func CreateContest(db *gorm.DB, contest *models.Contest) error {
	return db.Create(contest).Error
}

func GetContestByID(db *gorm.DB, id string) (*models.Contest, error) {
	var contest models.Contest
	if err := db.Preload("Questions").Where("id = ?", id).First(&contest).Error; err != nil {
		return nil, err
	}
	return &contest, nil
}

func GetAllContests(db *gorm.DB) ([]models.Contest, error) {
	var contests []models.Contest
	if err := db.Order("start_time desc").Find(&contests).Error; err != nil {
		return nil, err
	}
	return contests, nil
}

// GetLatestContest returns the most recent contest by start time. Gating
// rules differ between this contest and older "practice mode" ones.
func GetLatestContest(db *gorm.DB) (*models.Contest, error) {
	var contest models.Contest
	if err := db.Order("start_time desc").First(&contest).Error; err != nil {
		return nil, err
	}
	return &contest, nil
}

func UpdateContest(db *gorm.DB, contest *models.Contest) error {
	return db.Save(contest).Error
}

// Permissions

func HasContestPermission(db *gorm.DB, contestID, userID string) (bool, error) {
	var count int64
	err := db.Model(&models.ContestPermission{}).
		Where("contest_id = ? AND user_id = ?", contestID, userID).
		Count(&count).Error
	return count > 0, err
}

func HasGroupPermission(db *gorm.DB, contestID, groupID string) (bool, error) {
	var count int64
	err := db.Model(&models.GroupPermission{}).
		Where("contest_id = ? AND group_id = ?", contestID, groupID).
		Count(&count).Error
	return count > 0, err
}

// GrantContestPermissions inserts allow-list entries for a set of users,
// skipping ones that already exist.
func GrantContestPermissions(db *gorm.DB, contestID string, userIDs []string) error {
	if len(userIDs) == 0 {
		return nil
	}
	perms := make([]models.ContestPermission, 0, len(userIDs))
	for _, uid := range userIDs {
		perms = append(perms, models.ContestPermission{
			ID:        uuid.NewString(),
			ContestID: contestID,
			UserID:    uid,
		})
	}
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&perms).Error
}

func GrantGroupPermissions(db *gorm.DB, contestID string, groupIDs []string) error {
	if len(groupIDs) == 0 {
		return nil
	}
	perms := make([]models.GroupPermission, 0, len(groupIDs))
	for _, gid := range groupIDs {
		perms = append(perms, models.GroupPermission{
			ID:        uuid.NewString(),
			ContestID: contestID,
			GroupID:   gid,
		})
	}
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&perms).Error
}

func GetGroupPermissions(db *gorm.DB, contestID string) ([]models.GroupPermission, error) {
	var perms []models.GroupPermission
	if err := db.Where("contest_id = ?", contestID).Find(&perms).Error; err != nil {
		return nil, err
	}
	return perms, nil
}

// GroupOnContest

// GetOrCreateGroupOnContest creates the (group, contest) attempt record if it
// does not exist yet. Two members joining at once race on the unique index,
// so the insert ignores conflicts and the row is re-read afterwards.
func GetOrCreateGroupOnContest(db *gorm.DB, groupID, contestID string) (*models.GroupOnContest, error) {
	row := models.GroupOnContest{
		ID:        uuid.NewString(),
		GroupID:   groupID,
		ContestID: contestID,
		Score:     0,
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
		return nil, err
	}

	var existing models.GroupOnContest
	if err := db.Where("group_id = ? AND contest_id = ?", groupID, contestID).
		First(&existing).Error; err != nil {
		return nil, err
	}
	return &existing, nil
}

func GetGroupsOnContest(db *gorm.DB, contestID string) ([]models.GroupOnContest, error) {
	var rows []models.GroupOnContest
	if err := db.Preload("Group").
		Where("contest_id = ?", contestID).
		Order("score desc, created_at asc").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// TempContestTime

// GetOrCreateTempContestTime pins the user's personal countdown end on first
// join; later joins reuse the stored end time.
func GetOrCreateTempContestTime(db *gorm.DB, userID, contestID string, endTime time.Time) (*models.TempContestTime, error) {
	row := models.TempContestTime{
		ID:        uuid.NewString(),
		UserID:    userID,
		ContestID: contestID,
		EndTime:   endTime,
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
		return nil, err
	}

	var existing models.TempContestTime
	if err := db.Where("user_id = ? AND contest_id = ?", userID, contestID).
		First(&existing).Error; err != nil {
		return nil, err
	}
	return &existing, nil
}

// Submissions

func CreateSubmission(db *gorm.DB, sub *models.Submission) error {
	return db.Create(sub).Error
}

func GetSubmissionsByUserID(db *gorm.DB, userID string) ([]models.Submission, error) {
	var subs []models.Submission
	if err := db.Where("user_id = ?", userID).Order("created_at desc").Find(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}

// HasOpenSubmission reports whether the user already has a PENDING or
// ACCEPTED submission tied to the contest. Governs latest-contest re-entry.
func HasOpenSubmission(db *gorm.DB, userID, contestID string) (bool, error) {
	var count int64
	err := db.Model(&models.Submission{}).
		Where("user_id = ? AND contest_id = ? AND status IN ?",
			userID, contestID,
			[]models.SubmissionStatus{models.SubmissionPending, models.SubmissionAccepted}).
		Count(&count).Error
	return count > 0, err
}

// GetSolvedQuestionIDs returns the set of question IDs the user has an
// ACCEPTED submission for.
func GetSolvedQuestionIDs(db *gorm.DB, userID string) (map[string]bool, error) {
	var ids []string
	if err := db.Model(&models.Submission{}).
		Distinct("question_id").
		Where("user_id = ? AND status = ?", userID, models.SubmissionAccepted).
		Pluck("question_id", &ids).Error; err != nil {
		return nil, err
	}
	solved := make(map[string]bool, len(ids))
	for _, id := range ids {
		solved[id] = true
	}
	return solved, nil
}

// DistinctAcceptedSolvers returns user IDs with at least one ACCEPTED
// submission for the question, each listed once regardless of how many
// submissions they have.
func DistinctAcceptedSolvers(db *gorm.DB, questionID string) ([]string, error) {
	var ids []string
	err := db.Model(&models.Submission{}).
		Distinct("user_id").
		Where("question_id = ? AND status = ?", questionID, models.SubmissionAccepted).
		Pluck("user_id", &ids).Error
	return ids, err
}

// ContestsWithAcceptedSolves returns IDs of contests in which the question
// has at least one ACCEPTED submission.
func ContestsWithAcceptedSolves(db *gorm.DB, questionID string) ([]string, error) {
	var ids []string
	err := db.Model(&models.Submission{}).
		Distinct("contest_id").
		Where("question_id = ? AND status = ? AND contest_id IS NOT NULL",
			questionID, models.SubmissionAccepted).
		Pluck("contest_id", &ids).Error
	return ids, err
}

// DistinctContestSolvers returns user IDs with an ACCEPTED submission for the
// question inside one specific contest.
func DistinctContestSolvers(db *gorm.DB, questionID, contestID string) ([]string, error) {
	var ids []string
	err := db.Model(&models.Submission{}).
		Distinct("user_id").
		Where("question_id = ? AND contest_id = ? AND status = ?",
			questionID, contestID, models.SubmissionAccepted).
		Pluck("user_id", &ids).Error
	return ids, err
}

// Roles

func GetOrCreateRole(db *gorm.DB, name string) (*models.Role, error) {
	role := models.Role{ID: uuid.NewString(), Name: name}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&role).Error; err != nil {
		return nil, err
	}
	var existing models.Role
	if err := db.Where("name = ?", name).First(&existing).Error; err != nil {
		return nil, err
	}
	return &existing, nil
}

func UserHasRole(db *gorm.DB, userID, roleName string) (bool, error) {
	var count int64
	err := db.Model(&models.UserRole{}).
		Joins("JOIN roles ON roles.id = user_roles.role_id").
		Where("user_roles.user_id = ? AND roles.name = ?", userID, roleName).
		Count(&count).Error
	return count > 0, err
}

func GrantRole(db *gorm.DB, userID, roleID string) error {
	link := models.UserRole{ID: uuid.NewString(), UserID: userID, RoleID: roleID}
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&link).Error
}

func RevokeRole(db *gorm.DB, userID, roleID string) error {
	return db.Where("user_id = ? AND role_id = ?", userID, roleID).
		Delete(&models.UserRole{}).Error
}

// ExternalStat

func UpsertExternalStat(db *gorm.DB, stat *models.ExternalStat) error {
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "platform"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"data":       stat.Data,
			"fetched_at": stat.FetchedAt,
		}),
	}).Create(stat).Error
}

func GetExternalStats(db *gorm.DB, userID string) ([]models.ExternalStat, error) {
	var stats []models.ExternalStat
	if err := db.Where("user_id = ?", userID).Find(&stats).Error; err != nil {
		return nil, err
	}
	return stats, nil
}
