package service

import (
	"context"
	"fmt"
	"time"

	"github.com/mymmrac/telego"

	"tg-groupguard/internal/logger"
	"tg-groupguard/internal/models"
	"tg-groupguard/internal/tracker"
)

// AntifloodService runs the two flood detectors: consecutive-message runs
// and a per-user timed window. Both are independently configurable and a
// single message can trigger at most one of them.
type AntifloodService struct {
	settings  *SettingsService
	perms     Exempter
	executor  PunishmentExecutor
	messenger Messenger
	audit     BanAudit
	runs      *tracker.RunTracker
	windows   *tracker.WindowTracker
	now       func() time.Time
}

func NewAntifloodService(settings *SettingsService, perms Exempter, executor PunishmentExecutor, messenger Messenger, audit BanAudit) *AntifloodService {
	return &AntifloodService{
		settings:  settings,
		perms:     perms,
		executor:  executor,
		messenger: messenger,
		audit:     audit,
		runs:      tracker.NewRunTracker(),
		windows:   tracker.NewWindowTracker(),
		now:       time.Now,
	}
}

// CheckMessage evaluates one inbound message against both detectors.
// Exempt users never advance either counter.
func (s *AntifloodService) CheckMessage(ctx context.Context, message telego.Message) error {
	if message.From == nil || message.From.IsBot {
		return nil
	}
	chatID := message.Chat.ID
	user := *message.From

	settings := s.settings.Settings(chatID)
	if settings.FloodLimit <= 0 && settings.TimedFloodLimit <= 0 {
		return nil
	}
	if s.perms.IsExempt(ctx, chatID, user.ID) {
		return nil
	}

	// consecutive run first; if it fires, the timed window is skipped so
	// one message never punishes twice
	if settings.FloodLimit > 0 {
		count, messageIDs := s.runs.Observe(chatID, user.ID, message.MessageID)
		if count >= settings.FloodLimit {
			s.punish(ctx, chatID, user, settings, messageIDs)
			s.runs.Clear(chatID)
			return nil
		}
	}

	if settings.TimedFloodLimit > 0 && settings.TimedFloodSeconds > 0 {
		window := time.Duration(settings.TimedFloodSeconds) * time.Second
		count, messageIDs := s.windows.Observe(chatID, user.ID, message.MessageID, s.now(), window)
		if count >= settings.TimedFloodLimit {
			s.punish(ctx, chatID, user, settings, messageIDs)
			s.windows.ClearUser(chatID, user.ID)
		}
	}

	return nil
}

func (s *AntifloodService) punish(ctx context.Context, chatID int64, user telego.User, settings *models.ChatSettings, messageIDs []int) {
	mode := settings.GetFloodMode()
	duration := time.Duration(settings.FloodActionSeconds) * time.Second

	ok, description := s.executor.Execute(ctx, chatID, user.ID, mode, duration)
	if !ok {
		s.announce(ctx, chatID, fmt.Sprintf("⚠️ Tried to take flood action on %s but failed: %s", LinkedUserName(user), description))
		return
	}

	s.recordPunishment(chatID, user.ID, description, "flooding")
	s.announce(ctx, chatID, fmt.Sprintf("%s has been <b>%s</b> for flooding.", LinkedUserName(user), description))

	if settings.GetClearFlood() {
		for _, messageID := range messageIDs {
			if err := s.messenger.DeleteMessage(ctx, &telego.DeleteMessageParams{
				ChatID:    telego.ChatID{ID: chatID},
				MessageID: messageID,
			}); err != nil {
				logger.Debugf("Error deleting flood message %d in chat %d: %v", messageID, chatID, err)
			}
		}
	}
}

func (s *AntifloodService) announce(ctx context.Context, chatID int64, text string) {
	if _, err := s.messenger.SendMessage(ctx, &telego.SendMessageParams{
		ChatID:    telego.ChatID{ID: chatID},
		Text:      text,
		ParseMode: "HTML",
	}); err != nil {
		logger.Warningf("Error sending flood notice to chat %d: %v", chatID, err)
	}
}

func (s *AntifloodService) recordPunishment(chatID, userID int64, action, reason string) {
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
