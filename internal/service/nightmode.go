package service

import (
	"context"
	"fmt"
	"time"

	"github.com/mymmrac/telego"

	"tg-groupguard/internal/logger"
	"tg-groupguard/internal/models"
)

// NightModeService blocks configured content types during the chat's
// quiet hours. Activity is recomputed from the schedule on every check,
// so there is nothing to persist when the window opens or closes.
type NightModeService struct {
	settings  *SettingsService
	perms     Exempter
	messenger Messenger
	now       func() time.Time
}

func NewNightModeService(settings *SettingsService, perms Exempter, messenger Messenger) *NightModeService {
	return &NightModeService{
		settings:  settings,
		perms:     perms,
		messenger: messenger,
		now:       time.Now,
	}
}

// Active reports whether night mode is currently in effect for the chat.
func (s *NightModeService) Active(chatID int64) bool {
	return nightModeActive(s.settings.Settings(chatID), s.now())
}

// nightModeActive resolves the manual override first, then the
// schedule. An overnight window (start after end) wraps past midnight.
func nightModeActive(settings *models.ChatSettings, now time.Time) bool {
	if settings.NightModeOverride != nil {
		return *settings.NightModeOverride
	}
	if settings.NightModeStart == "" || settings.NightModeEnd == "" {
		return false
	}

	loc, err := time.LoadLocation(settings.GetNightModeTimezone())
	if err != nil {
		logger.Warningf("Invalid night mode timezone %q for chat %d: %v", settings.NightModeTimezone, settings.ChatID, err)
		loc = time.UTC
	}
	local := now.In(loc)

	start, err := parseClock(settings.NightModeStart)
	if err != nil {
		return false
	}
	end, err := parseClock(settings.NightModeEnd)
	if err != nil {
		return false
	}

	minutes := local.Hour()*60 + local.Minute()
	if start > end {
		return minutes >= start || minutes < end
	}
	return minutes >= start && minutes < end
}

// parseClock converts "HH:MM" to minutes since midnight.
func parseClock(value string) (int, error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q: %w", value, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// SetSchedule stores the nightly window and clears any manual override.
func (s *NightModeService) SetSchedule(chatID int64, start, end, timezone string) error {
	if _, err := parseClock(start); err != nil {
		return err
	}
	if _, err := parseClock(end); err != nil {
		return err
	}
	if timezone != "" {
		if _, err := time.LoadLocation(timezone); err != nil {
			return fmt.Errorf("unknown timezone %q: %w", timezone, err)
		}
	}
	return s.settings.Update(chatID, func(cs *models.ChatSettings) {
		cs.NightModeStart = start
		cs.NightModeEnd = end
		if timezone != "" {
			cs.NightModeTimezone = timezone
		}
		cs.NightModeOverride = nil
	})
}

// Override forces night mode on or off regardless of the schedule.
func (s *NightModeService) Override(chatID int64, active bool) error {
	return s.settings.Update(chatID, func(cs *models.ChatSettings) {
		cs.NightModeOverride = &active
	})
}

// ClearOverride hands control back to the schedule.
func (s *NightModeService) ClearOverride(chatID int64) error {
	return s.settings.Update(chatID, func(cs *models.ChatSettings) {
		cs.NightModeOverride = nil
	})
}

// CheckMessage deletes blocked content while night mode is active.
// Returns whether the message was consumed.
func (s *NightModeService) CheckMessage(ctx context.Context, message telego.Message) (bool, error) {
	if message.From == nil {
		return false, nil
	}
	chatID := message.Chat.ID

	settings := s.settings.Settings(chatID)
	if len(settings.NightModeBlocked) == 0 {
		return false, nil
	}
	if !nightModeActive(settings, s.now()) {
		return false, nil
	}
	if s.perms.IsExempt(ctx, chatID, message.From.ID) {
		return false, nil
	}

	if !hasBlockedType(settings.NightModeBlocked, message) {
		return false, nil
	}

	if err := s.messenger.DeleteMessage(ctx, &telego.DeleteMessageParams{
		ChatID:    telego.ChatID{ID: chatID},
		MessageID: message.MessageID,
	}); err != nil {
		logger.Warningf("Error deleting night mode message %d in chat %d: %v", message.MessageID, chatID, err)
	}
	return true, nil
}

func hasBlockedType(blocked []string, message telego.Message) bool {
	types := messageContentTypes(message)
	for _, b := range blocked {
		if b == "all" {
			return true
		}
		for _, t := range types {
			if t == b {
				return true
			}
		}
	}
	return false
}
