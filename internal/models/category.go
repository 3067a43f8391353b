package models

// Category represents a named bucket money is tracked under.
// Names are unique per user.
type Category struct {
	Base
	UserID string `gorm:"type:uuid;not null;uniqueIndex:uq_categories_user_name" json:"user_id"`
	Name   string `gorm:"not null;uniqueIndex:uq_categories_user_name" json:"name"`
}
