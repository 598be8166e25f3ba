package models

import "gorm.io/gorm"

// User is an operator account allowed to mutate the catalog.
type User struct {
	ID         string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Username   string `json:"username" gorm:"uniqueIndex;type:varchar(100)" validate:"required,min=3,max=100"`
	Email      string `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Password   string `json:"-" gorm:"type:varchar(255)" validate:"required,min=6"` // bcrypt hash at rest
	gorm.Model        // CreatedAt, UpdatedAt, DeletedAt
}
