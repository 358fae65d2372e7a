package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Base error classes. Handlers map these to status codes with errors.Is.
var (
	ErrValidation      = errors.New("validation failed")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrForbidden       = errors.New("forbidden")
	ErrUnauthenticated = errors.New("authentication required")
)

var (
	ErrRecipeNotFound     = fmt.Errorf("recipe %w", ErrNotFound)
	ErrUserNotFound       = fmt.Errorf("user %w", ErrNotFound)
	ErrTagNotFound        = fmt.Errorf("tag %w", ErrNotFound)
	ErrIngredientNotFound = fmt.Errorf("ingredient %w", ErrNotFound)

	ErrAlreadyFavorited  = &RelationError{Kind: "favorite", Msg: "recipe is already in favorites", Base: ErrConflict}
	ErrAlreadyInCart     = &RelationError{Kind: "shopping_cart", Msg: "recipe is already in the shopping cart", Base: ErrConflict}
	ErrNotFavorited      = &RelationError{Kind: "favorite", Msg: "recipe is not in favorites", Base: ErrNotFound}
	ErrNotInCart         = &RelationError{Kind: "shopping_cart", Msg: "recipe is not in the shopping cart", Base: ErrNotFound}
	ErrSelfSubscription  = fmt.Errorf("cannot subscribe to yourself: %w", ErrConflict)
	ErrAlreadySubscribed = fmt.Errorf("already subscribed to this author: %w", ErrConflict)
	ErrNotSubscribed     = fmt.Errorf("not subscribed to this author: %w", ErrConflict)

	ErrInvalidCredentials = fmt.Errorf("invalid credentials: %w", ErrUnauthenticated)
	ErrTokenRevoked       = fmt.Errorf("token has been revoked: %w", ErrUnauthenticated)
)

// RelationError reports a favorite or cart membership conflict. Conflicts
// (already present) unwrap to ErrConflict, absences to ErrNotFound.
type RelationError struct {
	Kind string
	Msg  string
	Base error
}

func (e *RelationError) Error() string { return e.Msg }
func (e *RelationError) Unwrap() error { return e.Base }

// Validation codes carried by ValidationError.
const (
	CodeMissingField        = "missing_field"
	CodeInvalidAmount       = "invalid_amount"
	CodeInvalidCookingTime  = "invalid_cooking_time"
	CodeDuplicateIngredient = "duplicate_ingredient"
	CodeDuplicateTag        = "duplicate_tag"
	CodeUnknownIngredient   = "unknown_ingredient"
	CodeUnknownTag          = "unknown_tag"
	CodeDuplicateName       = "duplicate_name"
	CodeInvalidImage        = "invalid_image"
	CodeInvalidValue        = "invalid_value"
	CodeDuplicateUser       = "duplicate_user"
	CodeReservedUsername    = "reserved_username"
	CodeWrongPassword       = "wrong_password"
)

// ValidationError is a client input failure tied to one field.
type ValidationError struct {
	Code    string
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func newValidationError(code, field, msg string) *ValidationError {
	return &ValidationError{Code: code, Field: field, Message: msg}
}

// fromValidation converts ozzo-validation output into a ValidationError for
// the first failing field in alphabetical order.
func fromValidation(err error) error {
	var errs validation.Errors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return newValidationError(CodeInvalidValue, "", err.Error())
	}

	fields := make([]string, 0, len(errs))
	for field := range errs {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	field := fields[0]
	fieldErr := errs[field]
	code := CodeInvalidValue
	var obj validation.Error
	if errors.As(fieldErr, &obj) && (obj.Code() == validation.ErrRequired.Code() || obj.Code() == validation.ErrNotNilRequired.Code()) {
		code = CodeMissingField
	}
	return newValidationError(code, field, fieldErr.Error())
}

// Postgres SQLSTATE codes.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

func pgCode(err error) (string, string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.ConstraintName, true
	}
	return "", "", false
}

// isUniqueViolation reports whether err is a unique constraint failure from
// either Postgres or SQLite.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	if code, _, ok := pgCode(err); ok {
		return code == pgUniqueViolation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isCheckViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrCheckConstraintViolated) {
		return true
	}
	if code, _, ok := pgCode(err); ok {
		return code == pgCheckViolation
	}
	return strings.Contains(err.Error(), "CHECK constraint failed")
}

func isForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	if code, _, ok := pgCode(err); ok {
		return code == pgForeignKeyViolation
	}
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

// uniqueViolationOn narrows a unique failure to a named constraint or,
// for SQLite, to the columns listed in its message.
func uniqueViolationOn(err error, constraint string, columns ...string) bool {
	if !isUniqueViolation(err) {
		return false
	}
	if _, name, ok := pgCode(err); ok {
		return name == constraint
	}
	msg := err.Error()
	for _, col := range columns {
		if !strings.Contains(msg, col) {
			return false
		}
	}
	return true
}
