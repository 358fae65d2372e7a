package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

// SubscriptionService manages follower-to-author subscriptions.
type SubscriptionService struct {
	db *gorm.DB
}

func NewSubscriptionService(db *gorm.DB) *SubscriptionService {
	return &SubscriptionService{db: db}
}

// Subscribe makes follower follow author and returns the author card.
// Self-subscription is rejected before any duplicate check. recipesLimit
// truncates the card's recipe list when positive.
func (s *SubscriptionService) Subscribe(ctx context.Context, followerID, authorID uuid.UUID, recipesLimit int) (*types.SubscriptionView, error) {
	if followerID == authorID {
		return nil, ErrSelfSubscription
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := userExists(tx, authorID); err != nil {
			return err
		}

		sub := models.Subscription{UserID: followerID, AuthorID: authorID}
		if err := tx.Create(&sub).Error; err != nil {
			switch {
			case isUniqueViolation(err):
				return ErrAlreadySubscribed
			case isCheckViolation(err):
				return ErrSelfSubscription
			case isForeignKeyViolation(err):
				return ErrUserNotFound
			}
			return fmt.Errorf("failed to subscribe: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("component", "subscriptions").
		Str("user_id", followerID.String()).
		Str("author_id", authorID.String()).
		Msg("Subscribed")
	return s.GetSubscription(ctx, followerID, authorID, recipesLimit)
}

// Unsubscribe removes the subscription. Removing a missing one is an error.
func (s *SubscriptionService) Unsubscribe(ctx context.Context, followerID, authorID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := userExists(tx, authorID); err != nil {
			return err
		}

		res := tx.Where("user_id = ? AND author_id = ?", followerID, authorID).Delete(&models.Subscription{})
		if res.Error != nil {
			return fmt.Errorf("failed to unsubscribe: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotSubscribed
		}
		return nil
	})
}

// GetSubscription returns the author card when follower follows author.
func (s *SubscriptionService) GetSubscription(ctx context.Context, followerID, authorID uuid.UUID, recipesLimit int) (*types.SubscriptionView, error) {
	db := s.db.WithContext(ctx)
	if err := userExists(db, authorID); err != nil {
		return nil, err
	}

	var author models.User
	err := db.Joins("JOIN subscriptions ON subscriptions.author_id = users.id").
		Where("subscriptions.user_id = ? AND users.id = ?", followerID, authorID).
		First(&author).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotSubscribed
		}
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}

	cards, err := s.buildCards(ctx, []models.User{author}, recipesLimit)
	if err != nil {
		return nil, err
	}
	return &cards[0], nil
}

// ListSubscriptions returns one page of authors the follower follows, most
// recently followed first.
func (s *SubscriptionService) ListSubscriptions(ctx context.Context, followerID uuid.UUID, page types.PageRequest, recipesLimit int) ([]types.SubscriptionView, int64, error) {
	q := s.db.WithContext(ctx).
		Model(&models.User{}).
		Joins("JOIN subscriptions ON subscriptions.author_id = users.id").
		Where("subscriptions.user_id = ?", followerID).
		Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count subscriptions: %w", err)
	}

	var authors []models.User
	err := q.Order("subscriptions.created_at DESC").
		Order("users.username ASC").
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&authors).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list subscriptions: %w", err)
	}

	cards, err := s.buildCards(ctx, authors, recipesLimit)
	if err != nil {
		return nil, 0, err
	}
	return cards, total, nil
}

func (s *SubscriptionService) buildCards(ctx context.Context, authors []models.User, recipesLimit int) ([]types.SubscriptionView, error) {
	cards := make([]types.SubscriptionView, len(authors))
	if len(authors) == 0 {
		return cards, nil
	}

	ids := make([]uuid.UUID, len(authors))
	for i := range authors {
		ids[i] = authors[i].ID
	}

	var counts []struct {
		AuthorID uuid.UUID
		Total    int64
	}
	err := s.db.WithContext(ctx).
		Model(&models.Recipe{}).
		Select("author_id, COUNT(*) AS total").
		Where("author_id IN ?", ids).
		Group("author_id").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count author recipes: %w", err)
	}
	countByAuthor := make(map[uuid.UUID]int64, len(counts))
	for _, c := range counts {
		countByAuthor[c.AuthorID] = c.Total
	}

	var recipes []models.Recipe
	err = s.db.WithContext(ctx).
		Where("author_id IN ?", ids).
		Order("pub_date DESC").
		Order("name ASC").
		Find(&recipes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load author recipes: %w", err)
	}
	byAuthor := make(map[uuid.UUID][]types.RecipeSummary, len(authors))
	for i := range recipes {
		r := &recipes[i]
		if recipesLimit > 0 && len(byAuthor[r.AuthorID]) >= recipesLimit {
			continue
		}
		byAuthor[r.AuthorID] = append(byAuthor[r.AuthorID], toRecipeSummary(r))
	}

	for i := range authors {
		a := &authors[i]
		list := byAuthor[a.ID]
		if list == nil {
			list = []types.RecipeSummary{}
		}
		cards[i] = types.SubscriptionView{
			UserView:     toUserView(a, true),
			Recipes:      list,
			RecipesCount: countByAuthor[a.ID],
		}
	}
	return cards, nil
}

func userExists(db *gorm.DB, id uuid.UUID) error {
	var n int64
	if err := db.Model(&models.User{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return fmt.Errorf("failed to load user: %w", err)
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}
