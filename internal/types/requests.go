package types

import (
	"math"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

type RegisterRequest struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
}

func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email,
			validation.Required.Error("email is required"),
			is.Email.Error("invalid email format"),
			validation.Length(3, 254),
		),
		validation.Field(&r.Username,
			validation.Required.Error("username is required"),
			validation.Length(1, 150),
			validation.Match(usernamePattern).Error("username may contain only letters, digits and @/./+/-/_"),
		),
		validation.Field(&r.FirstName, validation.Required, validation.Length(1, 150)),
		validation.Field(&r.LastName, validation.Required, validation.Length(1, 150)),
		validation.Field(&r.Password,
			validation.Required.Error("password is required"),
			validation.Length(8, 128).Error("password must be 8-128 characters"),
		),
	)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

type SetPasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (r SetPasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CurrentPassword, validation.Required),
		validation.Field(&r.NewPassword,
			validation.Required,
			validation.Length(8, 128).Error("password must be 8-128 characters"),
		),
	)
}

// IngredientAmount is one ingredient entry of a recipe payload.
type IngredientAmount struct {
	ID     uuid.UUID `json:"id"`
	Amount int       `json:"amount"`
}

// RecipeRequest is the create/update payload. CookingTime is a pointer so an
// absent value can be told apart from zero. Image is a base64 data URI;
// empty keeps the current image on update.
type RecipeRequest struct {
	Name        string             `json:"name"`
	Text        string             `json:"text"`
	CookingTime *int               `json:"cooking_time"`
	Image       string             `json:"image"`
	Tags        []uuid.UUID        `json:"tags"`
	Ingredients []IngredientAmount `json:"ingredients"`
}

// RecipeFilter narrows recipe listings. Favorited and InShoppingCart only
// apply to an authenticated viewer.
type RecipeFilter struct {
	TagSlugs       []string
	AuthorID       *uuid.UUID
	Favorited      bool
	InShoppingCart bool
}

// PageRequest is a 1-based page-number pagination request.
type PageRequest struct {
	Page  int
	Limit int
}

// MaxOffset bounds Offset so page arithmetic never overflows.
const MaxOffset = math.MaxInt32

// MaxPage is the last page number whose offset fits within MaxOffset.
func MaxPage(limit int) int {
	if limit < 1 {
		return 1
	}
	return MaxOffset/limit + 1
}

func (p PageRequest) Offset() int {
	if p.Page < 1 || p.Limit < 1 {
		return 0
	}
	if p.Page > MaxPage(p.Limit) {
		return MaxOffset
	}
	return (p.Page - 1) * p.Limit
}
