package database

import (
	"os"
	"path/filepath"

	"github.com/algojourney/algojourney/internal/database/models"
	"go.uber.org/zap"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func Init(dsn string) (*gorm.DB, error) {
	if _, err := os.Stat(dsn); os.IsNotExist(err) {
		zap.S().Infof("database file not found at '%s', creating directory for it.", dsn)
		// Ensure the directory for the database file exists.
		dbDir := filepath.Dir(dsn)
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate applies the schema. Split out of Init so tests can run it against
// an in-memory database.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.Question{},
		&models.QuestionTag{},
		&models.Hint{},
		&models.Contest{},
		&models.GroupOnContest{},
		&models.Submission{},
		&models.ContestPermission{},
		&models.GroupPermission{},
		&models.TempContestTime{},
		&models.Role{},
		&models.UserRole{},
		&models.ExternalStat{},
	)
}
