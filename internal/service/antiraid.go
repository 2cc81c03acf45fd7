package service

import (
	"context"
	"fmt"
	"time"

	"github.com/mymmrac/telego"

	"tg-groupguard/internal/logger"
	"tg-groupguard/internal/models"
	"tg-groupguard/internal/moderation"
	"tg-groupguard/internal/tracker"
)

// joinWindow is how far back the auto-antiraid trigger looks.
const joinWindow = time.Minute

// AntiraidService temp-bans every new joiner while a raid is active.
// Raids are activated manually or by the auto trigger watching the join
// rate; "active" is purely a comparison of stored expiry vs. now.
type AntiraidService struct {
	settings  *SettingsService
	executor  PunishmentExecutor
	messenger Messenger
	audit     BanAudit
	joins     *tracker.JoinTracker
	now       func() time.Time
}

func NewAntiraidService(settings *SettingsService, executor PunishmentExecutor, messenger Messenger, audit BanAudit) *AntiraidService {
	return &AntiraidService{
		settings:  settings,
		executor:  executor,
		messenger: messenger,
		audit:     audit,
		joins:     tracker.NewJoinTracker(),
		now:       time.Now,
	}
}

// RaidActive reports whether the chat is currently in raid mode.
func (s *AntiraidService) RaidActive(chatID int64) bool {
	return raidActive(s.settings.Settings(chatID), s.now())
}

func raidActive(settings *models.ChatSettings, now time.Time) bool {
	return settings.ManualAntiraidUntil != nil && settings.ManualAntiraidUntil.After(now)
}

// HandleJoin evaluates one join event. Bots are the caller's problem;
// this expects human joiners only.
func (s *AntiraidService) HandleJoin(ctx context.Context, chatID int64, user telego.User) error {
	settings := s.settings.Settings(chatID)
	now := s.now()
	active := raidActive(settings, now)

	if !active && settings.AutoRaidTrigger > 0 {
		count := s.joins.Observe(chatID, now, joinWindow)
		if count >= settings.AutoRaidTrigger {
			duration := settings.GetRaidDuration()
			until := now.Add(duration)
			if err := s.settings.Update(chatID, func(cs *models.ChatSettings) {
				cs.ManualAntiraidUntil = &until
			}); err != nil {
				return err
			}
			s.joins.Clear(chatID)
			active = true

			s.announce(ctx, chatID, fmt.Sprintf(
				"🚨 <b>Auto-AntiRaid Triggered!</b> 🚨\n%d or more users joined in the last minute. "+
					"New joins will be temporarily banned for the next <b>%s</b>.",
				settings.AutoRaidTrigger, moderation.HumanizeDuration(duration)))
		}
	}

	if active {
		actionDuration := settings.GetRaidActionDuration()
		ok, description := s.executor.Execute(ctx, chatID, user.ID, moderation.ModeTBan, actionDuration)
		if ok {
			s.recordPunishment(chatID, user.ID, description, "joined during raid")
		}
	}

	return nil
}

// Enable turns raid mode on for duration, overriding any earlier expiry.
func (s *AntiraidService) Enable(chatID int64, duration time.Duration) (time.Time, error) {
	until := s.now().Add(duration)
	err := s.settings.Update(chatID, func(cs *models.ChatSettings) {
		cs.ManualAntiraidUntil = &until
	})
	return until, err
}

// Disable ends raid mode by moving the expiry one second into the past,
// keeping active-state a pure function of stored time.
func (s *AntiraidService) Disable(chatID int64) error {
	past := s.now().Add(-time.Second)
	return s.settings.Update(chatID, func(cs *models.ChatSettings) {
		cs.ManualAntiraidUntil = &past
	})
}

func (s *AntiraidService) announce(ctx context.Context, chatID int64, text string) {
	if _, err := s.messenger.SendMessage(ctx, &telego.SendMessageParams{
		ChatID:    telego.ChatID{ID: chatID},
		Text:      text,
		ParseMode: "HTML",
	}); err != nil {
		logger.Warningf("Error sending antiraid notice to chat %d: %v", chatID, err)
	}
}

func (s *AntiraidService) recordPunishment(chatID, userID int64, action, reason string) {
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
