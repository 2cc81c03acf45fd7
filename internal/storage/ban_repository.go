package storage

import (
	"tg-groupguard/internal/models"

	"gorm.io/gorm"
)

// BanRepository handles database operations for BanRecord audit rows
type BanRepository struct {
	db *gorm.DB
}

// NewBanRepository creates a new BanRepository
func NewBanRepository(db *gorm.DB) *BanRepository {
	return &BanRepository{db: db}
}

// MigrateTable ensures the ban_records table exists with the right schema
func (r *BanRepository) MigrateTable() error {
	return r.db.AutoMigrate(&models.BanRecord{})
}

// Insert appends an audit record for an executed punishment
func (r *BanRepository) Insert(record *models.BanRecord) error {
	return r.db.Create(record).Error
}

// RecentForChat returns the latest punishment records for a chat
func (r *BanRepository) RecentForChat(chatID int64, limit int) ([]*models.BanRecord, error) {
	var records []*models.BanRecord
	result := r.db.Where("chat_id = ?", chatID).
		Order("created_at DESC").Limit(limit).Find(&records)
	if result.Error != nil {
		return nil, result.Error
	}
	return records, nil
}
