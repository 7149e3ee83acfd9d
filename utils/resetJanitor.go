package utils

import (
	"log"
	"time"

	"fintrack/models"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// StartResetSecretJanitor schedules an hourly sweep that clears lapsed
// reset-secret slots. Hygiene only: expiry is always re-checked at use time,
// so correctness never depends on this job running.
func StartResetSecretJanitor(db *gorm.DB) *cron.Cron {
	c := cron.New()

	c.AddFunc("@hourly", func() {
		PurgeExpiredResetSecrets(db)
	})
	c.Start()

	return c
}

// PurgeExpiredResetSecrets clears every reset-secret slot whose expiry has
// passed.
func PurgeExpiredResetSecrets(db *gorm.DB) {
	result := db.Model(&models.User{}).
		Where("reset_secret_kind <> '' AND reset_secret_expiry < ?", time.Now()).
		Updates(map[string]interface{}{
			"reset_secret_kind":   models.ResetNone,
			"reset_secret":        "",
			"reset_secret_expiry": nil,
		})

	if result.Error != nil {
		log.Printf("[RESET-JANITOR] Error purging expired reset secrets: %v", result.Error)
		return
	}
	if result.RowsAffected > 0 {
		log.Printf("[RESET-JANITOR] Cleared %d expired reset secrets", result.RowsAffected)
	}
}
