package service

import (
	"context"
	"fmt"

	"github.com/mymmrac/telego"

	"tg-groupguard/internal/logger"
	"tg-groupguard/internal/models"
)

// AdminChecker is the slice of the permission resolver misban needs to
// classify the performer of a removal.
type AdminChecker interface {
	IsCreator(ctx context.Context, chatID, userID int64) (bool, error)
	IsNativeAdmin(ctx context.Context, chatID, userID int64) (bool, error)
}

// MisbanService is the anti-betrayal watch: it reacts to member removals
// performed by "rogue" admins, i.e. native chat admins who were never
// promoted through the bot.
//
// This is the one feature that deliberately acts on users the exemption
// gate would protect; it never consults IsExempt.
type MisbanService struct {
	settings  *SettingsService
	admins    AdminChecker
	executor  PunishmentExecutor
	messenger Messenger
	audit     BanAudit
}

func NewMisbanService(settings *SettingsService, admins AdminChecker, executor PunishmentExecutor, messenger Messenger, audit BanAudit) *MisbanService {
	return &MisbanService{
		settings:  settings,
		admins:    admins,
		executor:  executor,
		messenger: messenger,
		audit:     audit,
	}
}

// HandleMemberRemoval evaluates one removal event. performer is who did
// the removing; botID filters out the bot's own punishments.
func (s *MisbanService) HandleMemberRemoval(ctx context.Context, chatID int64, performer telego.User, botID int64) error {
	settings := s.settings.Settings(chatID)
	if !settings.MisbanEnabled {
		return nil
	}

	if performer.ID == botID || performer.IsBot {
		return nil
	}
	isCreator, err := s.admins.IsCreator(ctx, chatID, performer.ID)
	if err != nil {
		return fmt.Errorf("creator check failed: %w", err)
	}
	if isCreator {
		return nil
	}

	isNativeAdmin, err := s.admins.IsNativeAdmin(ctx, chatID, performer.ID)
	if err != nil {
		return fmt.Errorf("admin check failed: %w", err)
	}
	if !isNativeAdmin || settings.IsPromoted(performer.ID) {
		return nil
	}

	// rogue admin: native admin without bot promotion
	mode := settings.GetMisbanMode()
	ok, description := s.executor.Execute(ctx, chatID, performer.ID, mode, 0)
	if !ok {
		logger.Warningf("Misban action on rogue admin %d in chat %d failed: %s", performer.ID, chatID, description)
		return nil
	}

	s.recordPunishment(chatID, performer.ID, description, "rogue admin removal")

	if settings.GetMisbanNotify() {
		if _, err := s.messenger.SendMessage(ctx, &telego.SendMessageParams{
			ChatID: telego.ChatID{ID: chatID},
			Text: fmt.Sprintf("🚨 <b>Anti-Betrayal System</b> 🚨\n%s was detected as a rogue admin and has been <b>%s</b>.",
				LinkedUserName(performer), description),
			ParseMode: "HTML",
		}); err != nil {
			logger.Warningf("Error sending misban notice to chat %d: %v", chatID, err)
		}
	}

	return nil
}

func (s *MisbanService) recordPunishment(chatID, userID int64, action, reason string) {
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
