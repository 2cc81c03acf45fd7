package storage

import (
	"tg-groupguard/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CaptchaRepository handles database operations for PendingCaptcha records
type CaptchaRepository struct {
	db *gorm.DB
}

// NewCaptchaRepository creates a new CaptchaRepository
func NewCaptchaRepository(db *gorm.DB) *CaptchaRepository {
	return &CaptchaRepository{db: db}
}

// MigrateTable ensures the pending_captchas table exists with the right schema
func (r *CaptchaRepository) MigrateTable() error {
	return r.db.AutoMigrate(&models.PendingCaptcha{})
}

// Insert stores a pending captcha, replacing any stale record for the
// same (chat, user).
func (r *CaptchaRepository) Insert(pending *models.PendingCaptcha) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("chat_id = ? AND user_id = ?", pending.ChatID, pending.UserID).
			Delete(&models.PendingCaptcha{}).Error; err != nil {
			return err
		}
		return tx.Create(pending).Error
	})
}

// Get fetches the live pending captcha for a user, nil if none
func (r *CaptchaRepository) Get(chatID, userID int64) (*models.PendingCaptcha, error) {
	var pending models.PendingCaptcha
	result := r.db.Where("chat_id = ? AND user_id = ?", chatID, userID).First(&pending)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}
	return &pending, nil
}

// Pop atomically fetches and deletes the pending captcha. Exactly one of
// the solve path and the kick-timeout job gets a non-nil record back, so
// both can never act on the same user.
func (r *CaptchaRepository) Pop(chatID, userID int64) (*models.PendingCaptcha, error) {
	var pending *models.PendingCaptcha
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var found models.PendingCaptcha
		result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("chat_id = ? AND user_id = ?", chatID, userID).First(&found)
		if result.Error != nil {
			if result.Error == gorm.ErrRecordNotFound {
				return nil
			}
			return result.Error
		}
		deleted := tx.Where("id = ?", found.ID).Delete(&models.PendingCaptcha{})
		if deleted.Error != nil {
			return deleted.Error
		}
		if deleted.RowsAffected == 0 {
			// someone else popped it between the read and the delete
			return nil
		}
		pending = &found
		return nil
	})
	return pending, err
}

// Delete removes a specific pending captcha by record ID
func (r *CaptchaRepository) Delete(id uint) error {
	return r.db.Delete(&models.PendingCaptcha{}, id).Error
}
