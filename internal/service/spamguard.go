package service

import (
	"context"
	"fmt"
	"time"

	"github.com/mymmrac/telego"

	"tg-groupguard/internal/logger"
	"tg-groupguard/internal/scheduler"
)

// warnNoticeTTL is how long the transient quarantine notice stays up.
const warnNoticeTTL = 20 * time.Second

// SpamGuardService suppresses links, forwards, and media from users still
// inside their post-join quarantine window. Pure content deletion, no
// punishment escalation.
type SpamGuardService struct {
	settings  *SettingsService
	perms     Exempter
	messenger Messenger
	members   MemberStore
	sched     JobScheduler
	now       func() time.Time
}

func NewSpamGuardService(settings *SettingsService, perms Exempter, messenger Messenger, members MemberStore, sched JobScheduler) *SpamGuardService {
	return &SpamGuardService{
		settings:  settings,
		perms:     perms,
		messenger: messenger,
		members:   members,
		sched:     sched,
		now:       time.Now,
	}
}

// TrackJoin records when a user joined; rejoining restarts the clock.
func (s *SpamGuardService) TrackJoin(chatID, userID int64) error {
	return s.members.RecordJoin(chatID, userID, s.now())
}

// CheckMessage deletes a violating message from a quarantined user and
// posts a transient notice. Returns whether the message was consumed.
func (s *SpamGuardService) CheckMessage(ctx context.Context, message telego.Message) (bool, error) {
	if message.From == nil || message.From.IsBot {
		return false, nil
	}
	chatID := message.Chat.ID
	user := *message.From

	settings := s.settings.Settings(chatID)
	if !settings.SpamGuardEnabled {
		return false, nil
	}
	quarantineSeconds := settings.GetQuarantineSeconds()
	if quarantineSeconds <= 0 {
		return false, nil
	}
	if s.perms.IsExempt(ctx, chatID, user.ID) {
		return false, nil
	}

	joinedAt, err := s.members.JoinTime(chatID, user.ID)
	if err != nil {
		return false, err
	}
	if joinedAt.IsZero() || s.now().Sub(joinedAt) >= time.Duration(quarantineSeconds)*time.Second {
		return false, nil
	}

	if !violating(message) {
		return false, nil
	}

	if err := s.messenger.DeleteMessage(ctx, &telego.DeleteMessageParams{
		ChatID:    telego.ChatID{ID: chatID},
		MessageID: message.MessageID,
	}); err != nil {
		logger.Warningf("Error deleting quarantined message %d in chat %d: %v", message.MessageID, chatID, err)
	}

	notice, err := s.messenger.SendMessage(ctx, &telego.SendMessageParams{
		ChatID: telego.ChatID{ID: chatID},
		Text: fmt.Sprintf("%s, new members are not permitted to send links, media, or forwards for a short period.",
			LinkedUserName(user)),
		ParseMode: "HTML",
	})
	if err != nil {
		logger.Warningf("Error sending quarantine notice to chat %d: %v", chatID, err)
		return true, nil
	}

	jobName := fmt.Sprintf("quarantine_notice_%d_%d", chatID, notice.MessageID)
	messenger := s.messenger
	s.sched.RunOnce(jobName, warnNoticeTTL, scheduler.JobData{ChatID: chatID, MessageID: notice.MessageID}, func(data scheduler.JobData) {
		if err := messenger.DeleteMessage(context.Background(), &telego.DeleteMessageParams{
			ChatID:    telego.ChatID{ID: data.ChatID},
			MessageID: data.MessageID,
		}); err != nil {
			logger.Debugf("Error deleting quarantine notice %d in chat %d: %v", data.MessageID, data.ChatID, err)
		}
	})

	return true, nil
}

// violating marks the content classes a quarantined user may not send.
func violating(message telego.Message) bool {
	types := messageContentTypes(message)
	for _, t := range types {
		switch t {
		case "forward", "url", "photo", "video", "document", "sticker", "animation":
			return true
		}
	}
	return false
}
