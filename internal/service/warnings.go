package service

import (
	"context"
	"errors"
	"time"

	"github.com/mymmrac/telego"

	"tg-groupguard/internal/logger"
	"tg-groupguard/internal/models"
)

// ErrTargetExempt is returned when a warning is aimed at a user the
// exemption gate protects.
var ErrTargetExempt = errors.New("cannot warn an admin or approved user")

// WarnResult tells the caller what happened so it can phrase the
// announcement.
type WarnResult struct {
	Count       int64
	Limit       int
	Punished    bool
	Description string
}

// WarningsService implements progressive discipline: an append-only
// warning log, a derived count over the expiry window, and a punishment
// that zeroes the counter once the limit is reached.
type WarningsService struct {
	settings *SettingsService
	perms    Exempter
	executor PunishmentExecutor
	store    WarningStore
	audit    BanAudit
	now      func() time.Time
}

func NewWarningsService(settings *SettingsService, perms Exempter, executor PunishmentExecutor, store WarningStore, audit BanAudit) *WarningsService {
	return &WarningsService{
		settings: settings,
		perms:    perms,
		executor: executor,
		store:    store,
		audit:    audit,
		now:      time.Now,
	}
}

// Issue records a warning against target and applies the configured
// punishment if the derived count reaches the limit. Punishment always
// deletes the target's records, so counts never carry across punishment
// cycles.
func (s *WarningsService) Issue(ctx context.Context, chatID int64, target telego.User, warnerID int64, reason string) (*WarnResult, error) {
	if s.perms.IsExempt(ctx, chatID, target.ID) {
		return nil, ErrTargetExempt
	}

	if err := s.store.Insert(&models.Warning{
		ChatID:    chatID,
		UserID:    target.ID,
		WarnerID:  warnerID,
		Reason:    reason,
		CreatedAt: s.now(),
	}); err != nil {
		return nil, err
	}

	settings := s.settings.Settings(chatID)
	count, err := s.Count(chatID, target.ID)
	if err != nil {
		return nil, err
	}

	result := &WarnResult{Count: count, Limit: settings.GetWarnLimit()}
	if count < int64(result.Limit) {
		return result, nil
	}

	mode := settings.GetWarnMode()
	duration := time.Duration(settings.WarnModeSeconds) * time.Second
	ok, description := s.executor.Execute(ctx, chatID, target.ID, mode, duration)
	result.Punished = ok
	result.Description = description
	if !ok {
		logger.Warningf("Warn punishment on user %d in chat %d failed: %s", target.ID, chatID, description)
		return result, nil
	}

	s.recordPunishment(chatID, target.ID, description, "warn limit reached")
	if err := s.store.DeleteUser(chatID, target.ID); err != nil {
		return result, err
	}
	result.Count = 0
	return result, nil
}

// Count derives the current warning count: records inside the expiry
// window, or all-time when no window is configured.
func (s *WarningsService) Count(chatID, userID int64) (int64, error) {
	settings := s.settings.Settings(chatID)
	var since time.Time
	if settings.WarnTimeSeconds > 0 {
		since = s.now().Add(-time.Duration(settings.WarnTimeSeconds) * time.Second)
	}
	return s.store.CountSince(chatID, userID, since)
}

// RemoveLatest deletes the user's most recent warning.
func (s *WarningsService) RemoveLatest(chatID, userID int64) (bool, error) {
	return s.store.DeleteLatest(chatID, userID)
}

// ResetUser clears all of a user's warnings.
func (s *WarningsService) ResetUser(chatID, userID int64) error {
	return s.store.DeleteUser(chatID, userID)
}

// ResetChat clears every warning in the chat. Callers put this behind a
// confirmation flow.
func (s *WarningsService) ResetChat(chatID int64) error {
	return s.store.DeleteChat(chatID)
}

func (s *WarningsService) recordPunishment(chatID, userID int64, action, reason string) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Insert(&models.BanRecord{
		ChatID: chatID,
		UserID: userID,
		Action: action,
		Reason: reason,
	}); err != nil {
		logger.Warningf("Error recording punishment for user %d in chat %d: %v", userID, chatID, err)
	}
}
