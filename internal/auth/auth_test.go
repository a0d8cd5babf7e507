package auth

import (
	"fmt"
	"testing"

	"github.com/algojourney/algojourney/internal/database"
	"github.com/algojourney/algojourney/internal/database/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestJWTRoundTrip(t *testing.T) {
	token, err := GenerateJWT("user-123", "secret", 72)
	require.NoError(t, err)

	claims, err := ValidateJWT(token, "secret")
	require.NoError(t, err)
	require.Equal(t, "user-123", claims.Subject)
}

func TestJWTRejectsWrongSecret(t *testing.T) {
	token, err := GenerateJWT("user-123", "secret", 72)
	require.NoError(t, err)

	_, err = ValidateJWT(token, "another-secret")
	require.Error(t, err)
}

func TestJWTRejectsExpired(t *testing.T) {
	token, err := GenerateJWT("user-123", "secret", -1)
	require.NoError(t, err)

	_, err = ValidateJWT(token, "secret")
	require.Error(t, err)
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("hunter2hunter2")
	require.NoError(t, err)
	require.NotEqual(t, "hunter2hunter2", hash)

	require.True(t, CheckPasswordHash("hunter2hunter2", hash))
	require.False(t, CheckPasswordHash("wrong", hash))
}

func TestRoleLifecycle(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	u := models.User{ID: uuid.NewString(), Email: "a@example.com", Username: "alice"}
	require.NoError(t, database.CreateUser(db, &u))

	ok, err := HasRole(db, u.ID, RoleAdmin)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, GrantRole(db, u.ID, RoleAdmin))
	ok, err = HasRole(db, u.ID, RoleAdmin)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, RevokeRole(db, u.ID, RoleAdmin))
	ok, err = HasRole(db, u.ID, RoleAdmin)
	require.NoError(t, err)
	require.False(t, ok)
}
