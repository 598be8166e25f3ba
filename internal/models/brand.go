package models

import "gorm.io/gorm"

// Brand is a catalog brand referenced by items.
type Brand struct {
	ID         string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name       string `json:"name" gorm:"uniqueIndex;type:varchar(100)" validate:"required,min=2,max=100"`
	gorm.Model        // CreatedAt, UpdatedAt, DeletedAt
}

// Category is a catalog category referenced by items.
type Category struct {
	ID         string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name       string `json:"name" gorm:"uniqueIndex;type:varchar(100)" validate:"required,min=2,max=100"`
	gorm.Model
}
