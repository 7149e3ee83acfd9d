package utils

import (
	"fintrack/config"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword returns a salted bcrypt hash of password. Two calls with the
// same input yield different hashes.
func HashPassword(password string) (string, error) {
	cost := bcrypt.DefaultCost
	if config.AppConfig != nil {
		cost = config.AppConfig.SaltRound
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CheckPassword reports whether password matches the stored hash. A malformed
// stored hash is a verification failure, not an error.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
