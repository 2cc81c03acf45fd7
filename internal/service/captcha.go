package service

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/mymmrac/telego"

	"tg-groupguard/internal/logger"
	"tg-groupguard/internal/moderation"
	"tg-groupguard/internal/models"
	"tg-groupguard/internal/scheduler"
)

// CaptchaOutcome is the result of a challenge interaction.
type CaptchaOutcome int

const (
	// CaptchaNotPending means no live challenge exists for the user; the
	// click was stale, someone else's, or the timeout already claimed it.
	CaptchaNotPending CaptchaOutcome = iota
	CaptchaWrong
	CaptchaSolved
)

// CaptchaService runs the join-verification state machine:
// NONE -> PENDING -> {SOLVED, KICKED}. The PendingCaptcha record's
// existence is the PENDING state; the solve path and the timeout job
// race on the store's atomic Pop, so only one can win.
type CaptchaService struct {
	settings   *SettingsService
	restrictor moderation.Restrictor
	executor   PunishmentExecutor
	messenger  Messenger
	store      CaptchaStore
	sched      JobScheduler
	rng        *rand.Rand
}

func NewCaptchaService(settings *SettingsService, restrictor moderation.Restrictor, executor PunishmentExecutor, messenger Messenger, store CaptchaStore, sched JobScheduler) *CaptchaService {
	return &CaptchaService{
		settings:   settings,
		restrictor: restrictor,
		executor:   executor,
		messenger:  messenger,
		store:      store,
		sched:      sched,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// HandleJoin mutes the new member, sends a challenge, and schedules the
// kick timeout.
func (s *CaptchaService) HandleJoin(ctx context.Context, chatID int64, user telego.User) error {
	settings := s.settings.Settings(chatID)
	if !settings.CaptchaEnabled {
		return nil
	}

	if err := s.restrictor.RestrictChatMember(ctx, &telego.RestrictChatMemberParams{
		ChatID:      telego.ChatID{ID: chatID},
		UserID:      user.ID,
		Permissions: moderation.MutedPermissions(),
	}); err != nil {
		return fmt.Errorf("failed to mute new user for captcha: %w", err)
	}

	text, keyboard, answer := s.generateChallenge(settings.GetCaptchaMode())
	sent, err := s.messenger.SendMessage(ctx, &telego.SendMessageParams{
		ChatID:      telego.ChatID{ID: chatID},
		Text:        fmt.Sprintf("Welcome %s!\n\n%s", LinkedUserName(user), text),
		ParseMode:   "HTML",
		ReplyMarkup: keyboard,
	})
	if err != nil {
		return fmt.Errorf("failed to send captcha challenge: %w", err)
	}

	if err := s.store.Insert(&models.PendingCaptcha{
		ChatID:           chatID,
		UserID:           user.ID,
		ChallengeMessage: sent.MessageID,
		CorrectAnswer:    answer,
		CreatedAt:        time.Now(),
	}); err != nil {
		return fmt.Errorf("failed to store pending captcha: %w", err)
	}

	kickDelay := time.Duration(settings.GetCaptchaKickSeconds()) * time.Second
	s.sched.RunOnce(kickJobName(chatID, user.ID), kickDelay,
		scheduler.JobData{ChatID: chatID, UserID: user.ID}, s.KickTimeout)

	return nil
}

// HandleCallback processes a challenge button click from user.
func (s *CaptchaService) HandleCallback(ctx context.Context, chatID int64, user telego.User, answer string) (CaptchaOutcome, error) {
	pending, err := s.store.Get(chatID, user.ID)
	if err != nil {
		return CaptchaNotPending, err
	}
	if pending == nil {
		return CaptchaNotPending, nil
	}

	if answer != pending.CorrectAnswer {
		return CaptchaWrong, nil
	}

	// claim the record; losing the race to the timeout means the kick
	// already happened
	claimed, err := s.store.Pop(chatID, user.ID)
	if err != nil {
		return CaptchaNotPending, err
	}
	if claimed == nil {
		return CaptchaNotPending, nil
	}

	s.sched.Cancel(kickJobName(chatID, user.ID))

	if err := s.restrictor.RestrictChatMember(ctx, &telego.RestrictChatMemberParams{
		ChatID:      telego.ChatID{ID: chatID},
		UserID:      user.ID,
		Permissions: moderation.UnmutedPermissions(),
	}); err != nil {
		logger.Warningf("Error unmuting user %d in chat %d after captcha solve: %v", user.ID, chatID, err)
	}

	s.deleteChallenge(ctx, chatID, claimed.ChallengeMessage)
	return CaptchaSolved, nil
}

// KickTimeout is the scheduled job that fires when the challenge goes
// unsolved. The atomic Pop guarantees it never kicks a user the solve
// path already released.
func (s *CaptchaService) KickTimeout(data scheduler.JobData) {
	pending, err := s.store.Pop(data.ChatID, data.UserID)
	if err != nil {
		logger.Warningf("Error fetching pending captcha for user %d in chat %d: %v", data.UserID, data.ChatID, err)
		return
	}
	if pending == nil {
		return
	}

	ctx := context.Background()
	ok, description := s.executor.Execute(ctx, data.ChatID, data.UserID, moderation.ModeKick, 0)
	if !ok {
		logger.Warningf("Captcha kick of user %d in chat %d failed: %s", data.UserID, data.ChatID, description)
	}
	s.deleteChallenge(ctx, data.ChatID, pending.ChallengeMessage)
}

// HandleLeave drops a pending challenge for a user who left before
// solving it, so the timeout cannot kick someone who is already gone.
func (s *CaptchaService) HandleLeave(ctx context.Context, chatID, userID int64) {
	pending, err := s.store.Get(chatID, userID)
	if err != nil {
		logger.Warningf("Error fetching pending captcha for user %d in chat %d: %v", userID, chatID, err)
		return
	}
	if pending == nil {
		return
	}

	s.sched.Cancel(kickJobName(chatID, userID))
	s.deleteChallenge(ctx, chatID, pending.ChallengeMessage)
	if err := s.store.Delete(pending.ID); err != nil {
		logger.Warningf("Error deleting pending captcha for user %d in chat %d: %v", userID, chatID, err)
	}
}

func (s *CaptchaService) deleteChallenge(ctx context.Context, chatID int64, messageID int) {
	if err := s.messenger.DeleteMessage(ctx, &telego.DeleteMessageParams{
		ChatID:    telego.ChatID{ID: chatID},
		MessageID: messageID,
	}); err != nil {
		logger.Debugf("Error deleting captcha message %d in chat %d: %v", messageID, chatID, err)
	}
}

// generateChallenge builds the challenge text, keyboard, and expected
// answer for the configured mode.
func (s *CaptchaService) generateChallenge(mode string) (string, *telego.InlineKeyboardMarkup, string) {
	if mode == "math" {
		a := s.rng.Intn(10) + 1
		b := s.rng.Intn(10) + 1
		correct := a + b

		answers := map[int]bool{correct: true}
		for len(answers) < 4 {
			answers[s.rng.Intn(19)+2] = true
		}
		options := make([]int, 0, 4)
		for answer := range answers {
			options = append(options, answer)
		}
		s.rng.Shuffle(len(options), func(i, j int) {
			options[i], options[j] = options[j], options[i]
		})

		row := make([]telego.InlineKeyboardButton, 0, 4)
		for _, option := range options {
			row = append(row, telego.InlineKeyboardButton{
				Text:         strconv.Itoa(option),
				CallbackData: fmt.Sprintf("captcha:answer:%d", option),
			})
		}
		keyboard := &telego.InlineKeyboardMarkup{InlineKeyboard: [][]telego.InlineKeyboardButton{row}}
		text := fmt.Sprintf("To prove you're human, please solve: <b>%d + %d = ?</b>", a, b)
		return text, keyboard, strconv.Itoa(correct)
	}

	keyboard := &telego.InlineKeyboardMarkup{InlineKeyboard: [][]telego.InlineKeyboardButton{{
		{Text: "I am not a bot", CallbackData: "captcha:answer:solve"},
	}}}
	return "Please prove you're human by clicking the button below.", keyboard, "solve"
}

func kickJobName(chatID, userID int64) string {
	return fmt.Sprintf("captchakick_%d_%d", chatID, userID)
}
