package service

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

func toUserView(u *models.User, subscribed bool) types.UserView {
	return types.UserView{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: subscribed,
	}
}

func toTagView(t *models.Tag) types.TagView {
	return types.TagView{ID: t.ID, Name: t.Name, Color: t.Color, Slug: t.Slug}
}

func toRecipeSummary(r *models.Recipe) types.RecipeSummary {
	return types.RecipeSummary{ID: r.ID, Name: r.Name, Image: r.Image, CookingTime: r.CookingTime}
}

// subscribedAuthors returns the subset of authorIDs the viewer follows.
// Anonymous viewers follow nobody.
func subscribedAuthors(ctx context.Context, db *gorm.DB, viewer *uuid.UUID, authorIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	result := make(map[uuid.UUID]bool)
	if viewer == nil || len(authorIDs) == 0 {
		return result, nil
	}

	var followed []uuid.UUID
	err := db.WithContext(ctx).
		Model(&models.Subscription{}).
		Where("user_id = ? AND author_id IN ?", *viewer, authorIDs).
		Pluck("author_id", &followed).Error
	if err != nil {
		return nil, err
	}
	for _, id := range followed {
		result[id] = true
	}
	return result, nil
}
