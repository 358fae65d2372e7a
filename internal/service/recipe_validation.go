package service

import (
	"fmt"
	"math"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/internal/types"
)

// positiveInt bounds a value to a Postgres integer column. Required comes
// first because Min skips zero values.
var positiveInt = []validation.Rule{
	validation.Required,
	validation.Min(1),
	validation.Max(math.MaxInt32),
}

// validateRecipeRequest checks the payload shape. The first failure wins:
// required fields, then cooking time, then each ingredient entry in order,
// then duplicate tags. Catalog lookups happen later inside the write
// transaction.
func validateRecipeRequest(req *types.RecipeRequest) error {
	req.Name = strings.TrimSpace(req.Name)

	required := []struct {
		field string
		value interface{}
	}{
		{"tags", req.Tags},
		{"ingredients", req.Ingredients},
		{"name", req.Name},
		{"text", req.Text},
	}
	for _, r := range required {
		if err := validation.Validate(r.value, validation.Required); err != nil {
			return newValidationError(CodeMissingField, r.field, "this field is required")
		}
	}
	if err := validation.Validate(req.CookingTime, validation.NotNil); err != nil {
		return newValidationError(CodeMissingField, "cooking_time", "this field is required")
	}

	if err := validation.Validate(req.Name, validation.RuneLength(1, 200)); err != nil {
		return newValidationError(CodeInvalidValue, "name", err.Error())
	}
	if err := validation.Validate(*req.CookingTime, positiveInt...); err != nil {
		return newValidationError(CodeInvalidCookingTime, "cooking_time", "cooking time must be between 1 and 2147483647 minutes")
	}

	seen := make(map[uuid.UUID]struct{}, len(req.Ingredients))
	for i, entry := range req.Ingredients {
		field := fmt.Sprintf("ingredients[%d]", i)
		if entry.ID == uuid.Nil {
			return newValidationError(CodeMissingField, field+".id", "ingredient id is required")
		}
		if err := validation.Validate(entry.Amount, positiveInt...); err != nil {
			return newValidationError(CodeInvalidAmount, field+".amount", "amount must be between 1 and 2147483647")
		}
		if _, dup := seen[entry.ID]; dup {
			return newValidationError(CodeDuplicateIngredient, field+".id", fmt.Sprintf("ingredient %s is listed more than once", entry.ID))
		}
		seen[entry.ID] = struct{}{}
	}

	seenTags := make(map[uuid.UUID]struct{}, len(req.Tags))
	for i, id := range req.Tags {
		if _, dup := seenTags[id]; dup {
			return newValidationError(CodeDuplicateTag, fmt.Sprintf("tags[%d]", i), fmt.Sprintf("tag %s is listed more than once", id))
		}
		seenTags[id] = struct{}{}
	}

	return nil
}
