package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/models"
)

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "file:foodgram.db?_foreign_keys=1", SQLiteDSN("foodgram.db"))
	assert.Equal(t, "file::memory:?cache=shared&_foreign_keys=1", SQLiteDSN("file::memory:?cache=shared"))
	assert.Equal(t, "file:x.db?_foreign_keys=1", SQLiteDSN("file:x.db?_foreign_keys=1"))
}

func TestNewSQLiteAndMigrate(t *testing.T) {
	cfg := &config.Config{DBDriver: "sqlite", SQLitePath: "file:database_test?mode=memory&cache=shared"}

	db, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, Migrate(context.Background(), db))
	require.NoError(t, HealthCheck(context.Background(), db))

	for _, m := range models.AllModels() {
		assert.True(t, db.Migrator().HasTable(m), "%T table missing", m)
	}
	assert.True(t, db.Migrator().HasTable("recipe_tags"))

	user := models.User{Email: "cook@example.com", Username: "cook", FirstName: "A", LastName: "B", PasswordHash: "x"}
	require.NoError(t, db.Create(&user).Error)
	assert.NotZero(t, user.ID)
}

func TestNewUnsupportedDriver(t *testing.T) {
	_, err := New(&config.Config{DBDriver: "mysql"})
	assert.Error(t, err)
}

func TestNewRedisClientDisabled(t *testing.T) {
	client, err := NewRedisClient(&config.Config{})
	assert.NoError(t, err)
	assert.Nil(t, client)
}
