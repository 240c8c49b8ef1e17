package flashsale

import (
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/kamaudev/dukashop/internal/models"
)

// RegisterJob flips the active flag on flash sales whose window has opened
// or closed. Checkout only honors sales marked active, so the flag doubles
// as a kill switch an admin can clear by hand.
func RegisterJob(c *cron.Cron, db *gorm.DB, log *slog.Logger) error {
	_, err := c.AddFunc("@every 1m", func() {
		if err := Sweep(db); err != nil {
			log.Error("flash sale sweep failed", "error", err)
		}
	})
	return err
}

func Sweep(db *gorm.DB) error {
	now := time.Now()

	if err := db.Model(&models.FlashSale{}).
		Where("active = ? AND starts_at <= ? AND ends_at > ?", false, now, now).
		Update("active", true).Error; err != nil {
		return err
	}

	return db.Model(&models.FlashSale{}).
		Where("active = ? AND ends_at <= ?", true, now).
		Update("active", false).Error
}
