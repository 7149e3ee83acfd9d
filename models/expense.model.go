package models

import (
	"time"

	"gorm.io/gorm"
)

type Expense struct {
	gorm.Model
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	Amount      float64   `gorm:"not null" json:"amount"`
	Category    string    `gorm:"size:100;not null" json:"category"`
	Description string    `gorm:"size:255" json:"description,omitempty"`
	Date        time.Time `gorm:"not null" json:"date"`
}
