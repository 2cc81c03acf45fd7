package service

import (
	"tg-groupguard/internal/logger"
	"tg-groupguard/internal/models"
	"tg-groupguard/internal/storage"
)

// SettingsService is the read-modify-write front for per-chat settings:
// an in-memory cache over the settings table. A chat with no stored row
// gets a zero-value ChatSettings, so absent fields always read as feature
// defaults. Rows are created implicitly on the first configuration write.
type SettingsService struct {
	manager *models.SettingsManager
	repo    *storage.SettingsRepository
}

// NewSettingsService builds the service. repo may be nil when the
// database is disabled; settings then live only in memory.
func NewSettingsService(repo *storage.SettingsRepository) *SettingsService {
	return &SettingsService{
		manager: models.NewSettingsManager(),
		repo:    repo,
	}
}

// WarmCache loads every stored chat's settings into the cache.
func (s *SettingsService) WarmCache() error {
	if s.repo == nil {
		return nil
	}
	all, err := s.repo.GetAllSettings()
	if err != nil {
		return err
	}
	for _, settings := range all {
		s.manager.Put(settings)
	}
	logger.Infof("Loaded settings for %d chats into cache", len(all))
	return nil
}

// Settings returns the chat's settings, never nil. The returned struct
// is a stable snapshot: Update swaps in a fresh copy rather than
// mutating it, so callers may read it without locking.
func (s *SettingsService) Settings(chatID int64) *models.ChatSettings {
	if cached := s.manager.Get(chatID); cached != nil {
		return cached
	}

	if s.repo != nil {
		stored, err := s.repo.GetSettings(chatID)
		if err != nil {
			logger.Warningf("Error fetching settings for chat %d: %v", chatID, err)
		} else if stored != nil {
			s.manager.Put(stored)
			return stored
		}
	}

	settings := &models.ChatSettings{ChatID: chatID}
	s.manager.Put(settings)
	return settings
}

// Update applies a targeted field mutation and persists the result with
// upsert semantics. The mutation runs on a copy that replaces the cached
// struct, so snapshots handed out by Settings are never written to.
// Applying the same mutation twice yields the same stored document;
// concurrent writers are last-write-wins.
func (s *SettingsService) Update(chatID int64, mutate func(*models.ChatSettings)) error {
	next := s.Settings(chatID).Clone()
	mutate(next)
	s.manager.Put(next)

	if s.repo != nil {
		if err := s.repo.SaveSettings(next); err != nil {
			logger.Warningf("Error saving settings for chat %d: %v", chatID, err)
			return err
		}
	}
	return nil
}

// Reset deletes the chat's settings document entirely; the next read sees
// pure defaults.
func (s *SettingsService) Reset(chatID int64) error {
	s.manager.Remove(chatID)
	if s.repo != nil {
		return s.repo.DeleteSettings(chatID)
	}
	return nil
}
