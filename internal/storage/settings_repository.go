package storage

import (
	"tg-groupguard/internal/models"

	"gorm.io/gorm"
)

// SettingsRepository handles database operations for ChatSettings
type SettingsRepository struct {
	db *gorm.DB
}

// NewSettingsRepository creates a new SettingsRepository
func NewSettingsRepository(db *gorm.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// MigrateTable ensures the chat_settings table exists with the right schema
func (r *SettingsRepository) MigrateTable() error {
	return r.db.AutoMigrate(&models.ChatSettings{})
}

// GetSettings retrieves the settings row for a chat, nil if none stored yet
func (r *SettingsRepository) GetSettings(chatID int64) (*models.ChatSettings, error) {
	var settings models.ChatSettings
	result := r.db.Where("chat_id = ?", chatID).First(&settings)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}
	return &settings, nil
}

// SaveSettings creates or updates the settings row. Last write wins; there
// is no optimistic concurrency on admin configuration changes.
func (r *SettingsRepository) SaveSettings(settings *models.ChatSettings) error {
	return r.db.Save(settings).Error
}

// DeleteSettings removes a chat's settings row entirely (explicit reset)
func (r *SettingsRepository) DeleteSettings(chatID int64) error {
	return r.db.Where("chat_id = ?", chatID).Delete(&models.ChatSettings{}).Error
}

// GetAllSettings loads every stored chat's settings, used to warm the cache
func (r *SettingsRepository) GetAllSettings() ([]*models.ChatSettings, error) {
	var all []*models.ChatSettings
	result := r.db.Find(&all)
	if result.Error != nil {
		return nil, result.Error
	}
	return all, nil
}
