package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

func (s *UserService) Register(ctx context.Context, req types.RegisterRequest) (*types.UserView, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Username = strings.TrimSpace(req.Username)
	if err := req.Validate(); err != nil {
		return nil, fromValidation(err)
	}
	if strings.EqualFold(req.Username, models.ReservedUsername) {
		return nil, newValidationError(CodeReservedUsername, "username", fmt.Sprintf("username %q is reserved", req.Username))
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		Email:        req.Email,
		Username:     req.Username,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: string(hashedPassword),
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		switch {
		case uniqueViolationOn(err, "idx_users_email", "users.email"):
			return nil, newValidationError(CodeDuplicateUser, "email", "a user with this email already exists")
		case uniqueViolationOn(err, "idx_users_username", "users.username"):
			return nil, newValidationError(CodeDuplicateUser, "username", "a user with this username already exists")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	view := toUserView(&user, false)
	return &view, nil
}

func (s *UserService) GetUser(ctx context.Context, viewer *uuid.UUID, id uuid.UUID) (*types.UserView, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	followed, err := subscribedAuthors(ctx, s.db, viewer, []uuid.UUID{user.ID})
	if err != nil {
		return nil, fmt.Errorf("failed to load subscriptions: %w", err)
	}
	view := toUserView(&user, followed[user.ID])
	return &view, nil
}

func (s *UserService) ListUsers(ctx context.Context, viewer *uuid.UUID, page types.PageRequest) ([]types.UserView, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.User{}).Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	var users []models.User
	err := q.Order("created_at").Order("username").
		Limit(page.Limit).Offset(page.Offset()).
		Find(&users).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}

	ids := make([]uuid.UUID, len(users))
	for i := range users {
		ids[i] = users[i].ID
	}
	followed, err := subscribedAuthors(ctx, s.db, viewer, ids)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load subscriptions: %w", err)
	}

	views := make([]types.UserView, len(users))
	for i := range users {
		views[i] = toUserView(&users[i], followed[users[i].ID])
	}
	return views, total, nil
}

// SetPassword replaces the password after checking the current one.
func (s *UserService) SetPassword(ctx context.Context, userID uuid.UUID, req types.SetPasswordRequest) error {
	if err := req.Validate(); err != nil {
		return fromValidation(err)
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return newValidationError(CodeWrongPassword, "current_password", "current password is incorrect")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.db.WithContext(ctx).Model(&user).Update("password_hash", string(hashed)).Error
}
