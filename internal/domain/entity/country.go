package entity

import (
	"time"

	"gorm.io/gorm"
)

// Country represents one row of the ISO country reference table.
type Country struct {
	ID        uint
	Code      string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt
}
