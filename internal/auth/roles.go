package auth

import (
	"github.com/algojourney/algojourney/internal/database"
	"gorm.io/gorm"
)

const RoleAdmin = "admin"

// HasRole is the capability check used for authorization decisions. Roles
// live in the role tables rather than a hardcoded allow-list, so grants can
// change without a deploy.
func HasRole(db *gorm.DB, userID, role string) (bool, error) {
	return database.UserHasRole(db, userID, role)
}

// GrantRole assigns a named role to a user, creating the role row on first
// use.
func GrantRole(db *gorm.DB, userID, role string) error {
	r, err := database.GetOrCreateRole(db, role)
	if err != nil {
		return err
	}
	return database.GrantRole(db, userID, r.ID)
}

func RevokeRole(db *gorm.DB, userID, role string) error {
	r, err := database.GetOrCreateRole(db, role)
	if err != nil {
		return err
	}
	return database.RevokeRole(db, userID, r.ID)
}
