// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"marketadmin/internal/database"
	"marketadmin/internal/domain"
)

// NewDB returns a migrated in-memory sqlite database.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Connect(":memory:", nil)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// Password is the plaintext password of every account made by CreateAccount.
const Password = "correct-horse-battery"

var passwordHash = func() string {
	h, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return string(h)
}()

// CreateAccount inserts an active account with a profile of the given role.
func CreateAccount(t *testing.T, db *gorm.DB, username string, role domain.Role) *domain.Account {
	t.Helper()

	acc := &domain.Account{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: passwordHash,
		IsActive:     true,
		IsStaff:      role.IsAdminTier(),
		IsSuperuser:  role == domain.RoleSuperAdmin,
		DateJoined:   time.Now(),
	}
	require.NoError(t, db.Create(acc).Error)

	profile := &domain.Profile{AccountID: acc.ID, Role: role}
	require.NoError(t, db.Create(profile).Error)
	acc.Profile = profile
	return acc
}

// CreateProvider inserts a provider profile owned by account.
func CreateProvider(t *testing.T, db *gorm.DB, account *domain.Account, status domain.ProviderStatus) *domain.ProviderProfile {
	t.Helper()

	p := &domain.ProviderProfile{
		AccountID:   account.ID,
		DisplayName: account.Username + " services",
		Status:      status,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

// CreateService inserts a listing with the given slug and status.
func CreateService(t *testing.T, db *gorm.DB, slug string, status domain.ServiceStatus) *domain.Service {
	t.Helper()

	s := &domain.Service{
		Name:        slug,
		Slug:        slug,
		Description: "test listing",
		Status:      status,
	}
	require.NoError(t, db.Create(s).Error)
	return s
}
