package storage

import (
	"time"

	"tg-groupguard/internal/models"

	"gorm.io/gorm"
)

// WarningRepository handles database operations for Warning records
type WarningRepository struct {
	db *gorm.DB
}

// NewWarningRepository creates a new WarningRepository
func NewWarningRepository(db *gorm.DB) *WarningRepository {
	return &WarningRepository{db: db}
}

// MigrateTable ensures the warnings table exists with the right schema
func (r *WarningRepository) MigrateTable() error {
	return r.db.AutoMigrate(&models.Warning{})
}

// Insert appends a warning record
func (r *WarningRepository) Insert(warning *models.Warning) error {
	return r.db.Create(warning).Error
}

// CountSince counts a user's warnings issued at or after since. A zero
// since counts all-time.
func (r *WarningRepository) CountSince(chatID, userID int64, since time.Time) (int64, error) {
	var count int64
	query := r.db.Model(&models.Warning{}).Where("chat_id = ? AND user_id = ?", chatID, userID)
	if !since.IsZero() {
		query = query.Where("created_at >= ?", since)
	}
	result := query.Count(&count)
	return count, result.Error
}

// DeleteLatest removes the most recent warning for a user; returns whether
// one existed.
func (r *WarningRepository) DeleteLatest(chatID, userID int64) (bool, error) {
	var warning models.Warning
	result := r.db.Where("chat_id = ? AND user_id = ?", chatID, userID).
		Order("created_at DESC").First(&warning)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return false, nil
		}
		return false, result.Error
	}
	return true, r.db.Delete(&warning).Error
}

// DeleteUser removes all of a user's warnings in a chat
func (r *WarningRepository) DeleteUser(chatID, userID int64) error {
	return r.db.Where("chat_id = ? AND user_id = ?", chatID, userID).Delete(&models.Warning{}).Error
}

// DeleteChat removes every warning stored for a chat
func (r *WarningRepository) DeleteChat(chatID int64) error {
	return r.db.Where("chat_id = ?", chatID).Delete(&models.Warning{}).Error
}
