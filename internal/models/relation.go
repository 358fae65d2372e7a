package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RelationKind tags a user-to-recipe relation. Each kind has its own
// uniqueness scope.
type RelationKind string

const (
	RelationFavorite     RelationKind = "favorite"
	RelationShoppingCart RelationKind = "shopping_cart"
)

type RecipeRelation struct {
	ID        uuid.UUID    `gorm:"type:varchar(36);primarykey" json:"id"`
	Kind      RelationKind `gorm:"size:32;not null;uniqueIndex:idx_recipe_relations_kind_user_recipe" json:"kind"`
	UserID    uuid.UUID    `gorm:"type:varchar(36);not null;uniqueIndex:idx_recipe_relations_kind_user_recipe" json:"user_id"`
	RecipeID  uuid.UUID    `gorm:"type:varchar(36);not null;uniqueIndex:idx_recipe_relations_kind_user_recipe;index" json:"recipe_id"`
	CreatedAt time.Time    `json:"created_at"`
}

func (r *RecipeRelation) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
