package models

import (
	"time"

	"gorm.io/gorm"
)

type Income struct {
	gorm.Model
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	Source      string    `gorm:"size:100;not null" json:"source"`
	Amount      float64   `gorm:"not null" json:"amount"`
	Description string    `gorm:"size:255" json:"description,omitempty"`
	IncomeDate  time.Time `gorm:"not null" json:"income_date"`
}
