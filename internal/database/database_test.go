package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketadmin/internal/domain"
)

func TestConnectAndMigrate_SQLite(t *testing.T) {
	db, err := Connect(":memory:", nil)
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	for _, table := range []string{"accounts", "profiles", "provider_profiles", "services", "service_categories", "refresh_tokens"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}

	cat := domain.ServiceCategory{Name: "Cleaning", Slug: "cleaning"}
	require.NoError(t, db.Create(&cat).Error)

	dup := domain.ServiceCategory{Name: "Cleaning 2", Slug: "cleaning"}
	assert.Error(t, db.Create(&dup).Error)
}
