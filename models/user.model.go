package models

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"gorm.io/gorm"
)

// Reset secret kinds. At most one reset secret is outstanding per user;
// issuing a new one overwrites the previous slot.
const (
	ResetNone = ""
	ResetOtp  = "otp"  // ResetSecret holds the 6-digit code
	ResetLink = "link" // ResetSecret holds the SHA-256 hex of the reset token
)

type User struct {
	gorm.Model
	FullName          string     `gorm:"size:100;not null" json:"fullname"`
	Email             string     `gorm:"unique;not null" json:"email"`
	Gender            string     `gorm:"size:20;not null" json:"gender"`
	MobileNumber      string     `gorm:"size:10;unique;not null" json:"mobilenumber"`
	Password          string     `gorm:"not null" json:"-"`
	ResetSecretKind   string     `gorm:"size:10;default:''" json:"-"`
	ResetSecret       string     `gorm:"default:''" json:"-"`
	ResetSecretExpiry *time.Time `json:"-"`
}

// HashResetToken stores reset-link tokens hashed so a leaked users table
// cannot be replayed as live reset credentials.
func HashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// ResetSecretExpired reports whether the outstanding reset secret has lapsed.
// A missing expiry counts as expired.
func (u *User) ResetSecretExpired(at time.Time) bool {
	return u.ResetSecretExpiry == nil || at.After(*u.ResetSecretExpiry)
}
