package testhelpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/models"
)

func TestSetupTestDBIsIsolated(t *testing.T) {
	first := SetupTestDB(t)
	second := SetupTestDB(t)

	CreateUser(t, first, "alice")

	var count int64
	require.NoError(t, second.Model(&models.User{}).Count(&count).Error)
	assert.Zero(t, count)

	require.NoError(t, first.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestSetupTestDBEnforcesForeignKeys(t *testing.T) {
	db := SetupTestDB(t)
	ing := CreateIngredient(t, db, "Flour", "g")

	err := db.Create(&models.RecipeIngredient{IngredientID: ing.ID, Amount: 1}).Error
	assert.Error(t, err)
}
