package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/mymmrac/telego"

	"tg-groupguard/internal/logger"
	"tg-groupguard/internal/moderation"
	"tg-groupguard/internal/models"
	"tg-groupguard/internal/scheduler"
)

// lockNoticeTTL is how long the transient lock notice stays up.
const lockNoticeTTL = 15 * time.Second

// LockableTypes are the content classes a lock rule may target.
var LockableTypes = []string{
	"animation", "audio", "document", "forward", "photo", "poll",
	"sticker", "url", "video", "videonote", "voice",
}

// LocksService deletes messages carrying locked content types and
// optionally escalates to a punishment per rule.
type LocksService struct {
	settings  *SettingsService
	perms     Exempter
	executor  PunishmentExecutor
	messenger Messenger
	audit     BanAudit
	sched     JobScheduler
}

func NewLocksService(settings *SettingsService, perms Exempter, executor PunishmentExecutor, messenger Messenger, audit BanAudit, sched JobScheduler) *LocksService {
	return &LocksService{
		settings:  settings,
		perms:     perms,
		executor:  executor,
		messenger: messenger,
		audit:     audit,
		sched:     sched,
	}
}

// ValidLockType reports whether lockType names a lockable content class.
func ValidLockType(lockType string) bool {
	for _, t := range LockableTypes {
		if t == lockType {
			return true
		}
	}
	return false
}

// Lock installs or replaces the rule for lockType.
func (s *LocksService) Lock(chatID int64, rule models.LockRule) error {
	if !ValidLockType(rule.Type) {
		return fmt.Errorf("unknown lock type: %s", rule.Type)
	}
	if rule.Action != "" && rule.Action != "del" && !moderation.ValidMode(rule.Action) {
		return fmt.Errorf("unknown lock action: %s", rule.Action)
	}
	return s.settings.Update(chatID, func(cs *models.ChatSettings) {
		for i := range cs.Locks {
			if cs.Locks[i].Type == rule.Type {
				cs.Locks[i] = rule
				return
			}
		}
		cs.Locks = append(cs.Locks, rule)
	})
}

// Unlock removes the rule for lockType. Returns whether one existed.
func (s *LocksService) Unlock(chatID int64, lockType string) (bool, error) {
	removed := false
	err := s.settings.Update(chatID, func(cs *models.ChatSettings) {
		for i := range cs.Locks {
			if cs.Locks[i].Type == lockType {
				cs.Locks = append(cs.Locks[:i], cs.Locks[i+1:]...)
				removed = true
				return
			}
		}
	})
	return removed, err
}

// Active returns the chat's lock rules sorted by type.
func (s *LocksService) Active(chatID int64) []models.LockRule {
	settings := s.settings.Settings(chatID)
	rules := make([]models.LockRule, len(settings.Locks))
	copy(rules, settings.Locks)
	sort.Slice(rules, func(i, j int) bool { return rules[i].Type < rules[j].Type })
	return rules
}

// CheckMessage enforces lock rules against one message. Returns whether
// the message was consumed.
func (s *LocksService) CheckMessage(ctx context.Context, message telego.Message) (bool, error) {
	if message.From == nil {
		return false, nil
	}
	chatID := message.Chat.ID
	user := *message.From

	settings := s.settings.Settings(chatID)
	if len(settings.Locks) == 0 {
		return false, nil
	}
	if s.perms.IsExempt(ctx, chatID, user.ID) {
		return false, nil
	}

	var rule *models.LockRule
	for _, contentType := range messageContentTypes(message) {
		if rule = settings.FindLock(contentType); rule != nil {
			break
		}
	}
	if rule == nil {
		return false, nil
	}

	if err := s.messenger.DeleteMessage(ctx, &telego.DeleteMessageParams{
		ChatID:    telego.ChatID{ID: chatID},
		MessageID: message.MessageID,
	}); err != nil {
		logger.Warningf("Error deleting locked %s message %d in chat %d: %v", rule.Type, message.MessageID, chatID, err)
	}

	if rule.Action != "" && rule.Action != "del" {
		duration := time.Duration(rule.ActionSeconds) * time.Second
		ok, description := s.executor.Execute(ctx, chatID, user.ID, rule.Action, duration)
		if ok {
			s.recordPunishment(chatID, user.ID, description, fmt.Sprintf("sent locked content: %s", rule.Type))
		} else {
			logger.Warningf("Lock action on user %d in chat %d failed: %s", user.ID, chatID, description)
		}
	}

	if settings.LockWarnsEnabled {
		s.sendNotice(ctx, chatID, fmt.Sprintf("%s, sending <b>%s</b> content is not allowed here.",
			LinkedUserName(user), rule.Type))
	}

	return true, nil
}

func (s *LocksService) sendNotice(ctx context.Context, chatID int64, text string) {
	notice, err := s.messenger.SendMessage(ctx, &telego.SendMessageParams{
		ChatID:    telego.ChatID{ID: chatID},
		Text:      text,
		ParseMode: "HTML",
	})
	if err != nil {
		logger.Warningf("Error sending lock notice to chat %d: %v", chatID, err)
		return
	}

	jobName := fmt.Sprintf("lock_notice_%d_%d", chatID, notice.MessageID)
	messenger := s.messenger
	s.sched.RunOnce(jobName, lockNoticeTTL, scheduler.JobData{ChatID: chatID, MessageID: notice.MessageID}, func(data scheduler.JobData) {
		if err := messenger.DeleteMessage(context.Background(), &telego.DeleteMessageParams{
			ChatID:    telego.ChatID{ID: data.ChatID},
			MessageID: data.MessageID,
		}); err != nil {
			logger.Debugf("Error deleting lock notice %d in chat %d: %v", data.MessageID, data.ChatID, err)
		}
	})
}

func (s *LocksService) recordPunishment(chatID, userID int64, action, reason string) {
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
