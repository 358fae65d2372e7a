package service

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

// ShoppingListHeader is the first line of a rendered shopping list.
const ShoppingListHeader = "Список продуктов: "

// ShoppingListService sums the ingredients of every recipe in a user's cart.
type ShoppingListService struct {
	db *gorm.DB
}

func NewShoppingListService(db *gorm.DB) *ShoppingListService {
	return &ShoppingListService{db: db}
}

// Aggregate groups cart ingredients by (name, unit) and sums amounts.
// Items are ordered by name then unit.
func (s *ShoppingListService) Aggregate(ctx context.Context, userID uuid.UUID) ([]types.ShoppingListItem, error) {
	query, args, err := sq.Select(
		"i.name AS name",
		"i.measurement_unit AS measurement_unit",
		"SUM(ri.amount) AS amount",
	).
		From("recipe_relations rr").
		Join("recipe_ingredients ri ON ri.recipe_id = rr.recipe_id").
		Join("ingredients i ON i.id = ri.ingredient_id").
		Where(sq.Eq{"rr.kind": string(models.RelationShoppingCart), "rr.user_id": userID.String()}).
		GroupBy("i.name", "i.measurement_unit").
		OrderBy("i.name", "i.measurement_unit").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build shopping list query: %w", err)
	}

	var items []types.ShoppingListItem
	if err := s.db.WithContext(ctx).Raw(query, args...).Scan(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate shopping list: %w", err)
	}
	return items, nil
}

// BuildShoppingList returns the rendered lines for the user's cart. An empty
// cart yields only the header.
func (s *ShoppingListService) BuildShoppingList(ctx context.Context, userID uuid.UUID) ([]string, error) {
	items, err := s.Aggregate(ctx, userID)
	if err != nil {
		return nil, err
	}
	return RenderShoppingList(items), nil
}

// RenderShoppingList formats items as "<name> (<unit>) - <total> " lines
// after the header. Every line keeps its trailing space.
func RenderShoppingList(items []types.ShoppingListItem) []string {
	lines := make([]string, 0, len(items)+1)
	lines = append(lines, ShoppingListHeader)
	for _, item := range items {
		lines = append(lines, fmt.Sprintf("%s (%s) - %d ", item.Name, item.MeasurementUnit, item.Amount))
	}
	return lines
}
