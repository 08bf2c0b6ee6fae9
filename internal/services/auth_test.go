package services

import (
	"testing"
	"time"

	"github.com/dylanbaghel/devcamper-api/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupAuthDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))
	return db
}

func createUser(t *testing.T, db *gorm.DB, email, password, role string) *models.User {
	t.Helper()
	hash, err := HashPassword(password)
	require.NoError(t, err)
	u := &models.User{Name: "Tester", Email: email, Password: hash, Role: role}
	require.NoError(t, db.Create(u).Error)
	return u
}

func TestTokenRoundTrip(t *testing.T) {
	db := setupAuthDB(t)
	svc := NewAuthService(db, "secret", time.Hour)
	u := createUser(t, db, "t@test", "123456", models.RolePublisher)

	token, err := svc.IssueToken(u)
	require.NoError(t, err)

	claims, err := svc.ParseToken(token)
	require.NoError(t, err)
	require.Equal(t, u.ID, claims.UserID)
	require.Equal(t, models.RolePublisher, claims.Role)
}

func TestTokenExpiry(t *testing.T) {
	db := setupAuthDB(t)
	svc := NewAuthService(db, "secret", time.Hour)
	u := createUser(t, db, "t@test", "123456", models.RoleUser)

	token, err := svc.IssueToken(u)
	require.NoError(t, err)

	svc.SetClock(func() time.Time { return time.Now().Add(2 * time.Hour) })
	_, err = svc.ParseToken(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenWrongSecret(t *testing.T) {
	db := setupAuthDB(t)
	svc := NewAuthService(db, "secret", time.Hour)
	other := NewAuthService(db, "not-the-secret", time.Hour)
	u := createUser(t, db, "t@test", "123456", models.RoleUser)

	token, err := svc.IssueToken(u)
	require.NoError(t, err)
	_, err = other.ParseToken(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestFindByEmailAndPassword(t *testing.T) {
	db := setupAuthDB(t)
	svc := NewAuthService(db, "secret", time.Hour)
	createUser(t, db, "t@test", "123456", models.RoleUser)

	u, err := svc.FindByEmailAndPassword("t@test", "123456")
	require.NoError(t, err)
	require.Equal(t, "t@test", u.Email)

	_, err = svc.FindByEmailAndPassword("t@test", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.FindByEmailAndPassword("nobody@test", "123456")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestResetTokenFlow(t *testing.T) {
	db := setupAuthDB(t)
	svc := NewAuthService(db, "secret", time.Hour)
	u := createUser(t, db, "t@test", "123456", models.RoleUser)

	plain, err := svc.NewResetToken(u)
	require.NoError(t, err)
	require.Len(t, plain, 40) // 20 random bytes, hex encoded

	var stored models.User
	require.NoError(t, db.First(&stored, u.ID).Error)
	require.NotEmpty(t, stored.ResetPasswordToken)
	require.NotEqual(t, plain, stored.ResetPasswordToken)
	require.NotNil(t, stored.ResetPasswordExpire)

	_, err = svc.ResetPassword(plain, "newpassword")
	require.NoError(t, err)

	_, err = svc.FindByEmailAndPassword("t@test", "newpassword")
	require.NoError(t, err)

	// A consumed token cannot be replayed.
	_, err = svc.ResetPassword(plain, "again")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestResetTokenExpires(t *testing.T) {
	db := setupAuthDB(t)
	svc := NewAuthService(db, "secret", time.Hour)
	u := createUser(t, db, "t@test", "123456", models.RoleUser)

	plain, err := svc.NewResetToken(u)
	require.NoError(t, err)

	svc.SetClock(func() time.Time { return time.Now().Add(11 * time.Minute) })
	_, err = svc.ResetPassword(plain, "newpassword")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestClearResetToken(t *testing.T) {
	db := setupAuthDB(t)
	svc := NewAuthService(db, "secret", time.Hour)
	u := createUser(t, db, "t@test", "123456", models.RoleUser)

	plain, err := svc.NewResetToken(u)
	require.NoError(t, err)
	require.NoError(t, svc.ClearResetToken(u))

	_, err = svc.ResetPassword(plain, "newpassword")
	require.ErrorIs(t, err, ErrInvalidToken)
}
