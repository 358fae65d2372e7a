package models

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Ingredient is catalog reference data. Recipes point at it, never own it.
type Ingredient struct {
	ID              uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	Name            string    `gorm:"size:200;not null;uniqueIndex:idx_ingredients_name_unit;index" json:"name" yaml:"name"`
	MeasurementUnit string    `gorm:"size:200;not null;uniqueIndex:idx_ingredients_name_unit" json:"measurement_unit" yaml:"measurement_unit"`
	// NameLower is Name folded by FoldName; prefix search queries it.
	NameLower string `gorm:"size:200;not null;index" json:"-" yaml:"-"`
}

func (i *Ingredient) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	i.NameLower = FoldName(i.Name)
	return nil
}

// FoldName is the search key stored in Ingredient.NameLower.
func FoldName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

type Tag struct {
	ID    uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	Name  string    `gorm:"size:200;not null;uniqueIndex" json:"name" yaml:"name"`
	Color string    `gorm:"size:7;not null;uniqueIndex" json:"color" yaml:"color"`
	Slug  string    `gorm:"size:200;not null;uniqueIndex" json:"slug" yaml:"slug"`
}

func (t *Tag) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
