package moderation

import (
	"context"
	"fmt"
	"time"

	"github.com/mymmrac/telego"

	"tg-groupguard/internal/logger"
)

// Punishment modes accepted by the executor.
const (
	ModeBan   = "ban"
	ModeKick  = "kick"
	ModeMute  = "mute"
	ModeTBan  = "tban"
	ModeTMute = "tmute"
)

// ValidMode reports whether mode is one the executor accepts.
func ValidMode(mode string) bool {
	switch mode {
	case ModeBan, ModeKick, ModeMute, ModeTBan, ModeTMute:
		return true
	}
	return false
}

// TimedMode reports whether mode carries an explicit duration.
func TimedMode(mode string) bool {
	return mode == ModeTBan || mode == ModeTMute
}

// Restrictor is the slice of the transport the executor needs.
// *telego.Bot satisfies it.
type Restrictor interface {
	BanChatMember(ctx context.Context, params *telego.BanChatMemberParams) error
	RestrictChatMember(ctx context.Context, params *telego.RestrictChatMemberParams) error
}

// Executor turns abstract punishment requests into transport calls with a
// uniform (ok, description) outcome. Every feature that disciplines a user
// funnels through it.
//
// The executor does not re-check exemption: callers gate on it themselves,
// and misban depends on being able to skip that gate for rogue admins.
type Executor struct {
	transport Restrictor
	kickGrace time.Duration
	now       func() time.Time
}

// NewExecutor builds an executor. kickGrace is how long a "kick" ban lasts
// before the user may rejoin.
func NewExecutor(transport Restrictor, kickGrace time.Duration) *Executor {
	if kickGrace <= 0 {
		kickGrace = 45 * time.Second
	}
	return &Executor{
		transport: transport,
		kickGrace: kickGrace,
		now:       time.Now,
	}
}

// Execute applies mode to the user and returns whether it worked plus a
// past-participle description ("banned", "muted for 3 hours") that callers
// embed verbatim in announcements and logs. Transport failures come back
// as ok=false with a readable reason; they never propagate.
func (e *Executor) Execute(ctx context.Context, chatID, userID int64, mode string, duration time.Duration) (bool, string) {
	var err error
	var description string

	switch mode {
	case ModeBan:
		err = e.ban(ctx, chatID, userID, 0)
		description = "banned"
	case ModeKick:
		// a kick is a short temporary ban: the user is removed but may
		// rejoin once the grace period lapses
		err = e.ban(ctx, chatID, userID, e.now().Add(e.kickGrace).Unix())
		description = "kicked"
	case ModeMute:
		err = e.mute(ctx, chatID, userID, 0)
		description = "muted"
	case ModeTBan, ModeTMute:
		if duration <= 0 {
			return false, "temporary action requires a positive duration"
		}
		until := e.now().Add(duration).Unix()
		human := HumanizeDuration(duration)
		if mode == ModeTBan {
			err = e.ban(ctx, chatID, userID, until)
			description = "banned for " + human
		} else {
			err = e.mute(ctx, chatID, userID, until)
			description = "muted for " + human
		}
	default:
		return false, fmt.Sprintf("invalid punishment mode: %s", mode)
	}

	if err != nil {
		logger.Warningf("punishment %s failed for user %d in chat %d: %v", mode, userID, chatID, err)
		return false, fmt.Sprintf("failed: %v", err)
	}

	logger.Infof("user %d in chat %d: %s", userID, chatID, description)
	return true, description
}

func (e *Executor) ban(ctx context.Context, chatID, userID int64, untilDate int64) error {
	return e.transport.BanChatMember(ctx, &telego.BanChatMemberParams{
		ChatID:    telego.ChatID{ID: chatID},
		UserID:    userID,
		UntilDate: untilDate,
	})
}

func (e *Executor) mute(ctx context.Context, chatID, userID int64, untilDate int64) error {
	return e.transport.RestrictChatMember(ctx, &telego.RestrictChatMemberParams{
		ChatID:      telego.ChatID{ID: chatID},
		UserID:      userID,
		Permissions: MutedPermissions(),
		UntilDate:   untilDate,
	})
}

// MutedPermissions is the all-denied permission set used for mutes and
// captcha holds.
func MutedPermissions() telego.ChatPermissions {
	falseValue := false
	return telego.ChatPermissions{
		CanSendMessages:       &falseValue,
		CanSendAudios:         &falseValue,
		CanSendDocuments:      &falseValue,
		CanSendPhotos:         &falseValue,
		CanSendVideos:         &falseValue,
		CanSendVideoNotes:     &falseValue,
		CanSendVoiceNotes:     &falseValue,
		CanSendPolls:          &falseValue,
		CanSendOtherMessages:  &falseValue,
		CanAddWebPagePreviews: &falseValue,
		CanChangeInfo:         &falseValue,
		CanInviteUsers:        &falseValue,
		CanPinMessages:        &falseValue,
		CanManageTopics:       &falseValue,
	}
}

// UnmutedPermissions is the permission set restored after a captcha solve
// or manual unmute.
func UnmutedPermissions() telego.ChatPermissions {
	trueValue := true
	falseValue := false
	return telego.ChatPermissions{
		CanSendMessages:       &trueValue,
		CanSendAudios:         &trueValue,
		CanSendDocuments:      &trueValue,
		CanSendPhotos:         &trueValue,
		CanSendVideos:         &trueValue,
		CanSendVideoNotes:     &trueValue,
		CanSendVoiceNotes:     &trueValue,
		CanSendPolls:          &trueValue,
		CanSendOtherMessages:  &trueValue,
		CanAddWebPagePreviews: &trueValue,
		CanChangeInfo:         &falseValue,
		CanInviteUsers:        &trueValue,
		CanPinMessages:        &falseValue,
		CanManageTopics:       &falseValue,
	}
}
