package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
)

func TestSubscribe(t *testing.T) {
	k := newKitchen(t)
	subs := service.NewSubscriptionService(k.db)
	ctx := context.Background()

	card, err := subs.Subscribe(ctx, k.other.ID, k.author.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, k.author.ID, card.ID)
	assert.True(t, card.IsSubscribed)
	assert.Empty(t, card.Recipes)
	assert.NotNil(t, card.Recipes)
	assert.Zero(t, card.RecipesCount)

	_, err = subs.Subscribe(ctx, k.other.ID, k.author.ID, 0)
	assert.ErrorIs(t, err, service.ErrAlreadySubscribed)

	_, err = subs.Subscribe(ctx, k.author.ID, k.author.ID, 0)
	assert.ErrorIs(t, err, service.ErrSelfSubscription)

	_, err = subs.Subscribe(ctx, k.other.ID, uuid.New(), 0)
	assert.ErrorIs(t, err, service.ErrUserNotFound)

	assert.Equal(t, int64(1), countRows(t, k.db, &models.Subscription{}))
}

func TestSelfSubscriptionWinsOverDuplicate(t *testing.T) {
	k := newKitchen(t)
	subs := service.NewSubscriptionService(k.db)

	_, err := subs.Subscribe(context.Background(), k.author.ID, k.author.ID, 0)
	assert.ErrorIs(t, err, service.ErrSelfSubscription)
	assert.NotErrorIs(t, err, service.ErrAlreadySubscribed)
}

func TestUnsubscribe(t *testing.T) {
	k := newKitchen(t)
	subs := service.NewSubscriptionService(k.db)
	ctx := context.Background()

	err := subs.Unsubscribe(ctx, k.other.ID, k.author.ID)
	assert.ErrorIs(t, err, service.ErrNotSubscribed)

	_, err = subs.Subscribe(ctx, k.other.ID, k.author.ID, 0)
	require.NoError(t, err)
	require.NoError(t, subs.Unsubscribe(ctx, k.other.ID, k.author.ID))

	_, err = subs.GetSubscription(ctx, k.other.ID, k.author.ID, 0)
	assert.ErrorIs(t, err, service.ErrNotSubscribed)

	err = subs.Unsubscribe(ctx, k.other.ID, uuid.New())
	assert.ErrorIs(t, err, service.ErrUserNotFound)
}

func TestSubscriptionRecipesLimit(t *testing.T) {
	k := newKitchen(t)
	recipes := service.NewRecipeService(k.db, noImages{})
	subs := service.NewSubscriptionService(k.db)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i, name := range []string{"First", "Second", "Third"} {
		r, err := recipes.CreateRecipe(ctx, k.author.ID,
			recipeRequest(name, []uuid.UUID{k.dinner.ID}, amount(k.egg, 1)))
		require.NoError(t, err)
		require.NoError(t, k.db.Model(&models.Recipe{}).Where("id = ?", r.ID).
			Update("pub_date", base.Add(time.Duration(i)*time.Minute)).Error)
	}

	card, err := subs.Subscribe(ctx, k.other.ID, k.author.ID, 1)
	require.NoError(t, err)
	require.Len(t, card.Recipes, 1)
	assert.Equal(t, "Third", card.Recipes[0].Name)
	assert.Equal(t, int64(3), card.RecipesCount)

	full, err := subs.GetSubscription(ctx, k.other.ID, k.author.ID, 0)
	require.NoError(t, err)
	assert.Len(t, full.Recipes, 3)
	assert.Equal(t, int64(3), full.RecipesCount)
}

func TestListSubscriptions(t *testing.T) {
	k := newKitchen(t)
	third := testhelpers.CreateUser(t, k.db, "baker")
	subs := service.NewSubscriptionService(k.db)
	ctx := context.Background()

	_, err := subs.Subscribe(ctx, k.other.ID, k.author.ID, 0)
	require.NoError(t, err)
	_, err = subs.Subscribe(ctx, k.other.ID, third.ID, 0)
	require.NoError(t, err)
	_, err = subs.Subscribe(ctx, k.author.ID, third.ID, 0)
	require.NoError(t, err)

	cards, total, err := subs.ListSubscriptions(ctx, k.other.ID, types.PageRequest{Page: 1, Limit: 10}, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, cards, 2)
	ids := []uuid.UUID{cards[0].ID, cards[1].ID}
	assert.ElementsMatch(t, []uuid.UUID{k.author.ID, third.ID}, ids)
	for _, c := range cards {
		assert.True(t, c.IsSubscribed)
	}

	page, total, err := subs.ListSubscriptions(ctx, k.other.ID, types.PageRequest{Page: 2, Limit: 1}, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, page, 1)
}
