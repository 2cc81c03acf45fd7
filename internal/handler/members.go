package handler

import (
	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"

	"tg-groupguard/internal/logger"
)

// handleChatMemberUpdate routes one chat_member update: joins feed the
// raid tracker, quarantine clock, and captcha; removals feed the
// rogue-admin watch and clean up pending captchas; admin changes
// invalidate the cached admin list.
func (h *Handlers) handleChatMemberUpdate(ctx *th.Context, update telego.Update) error {
	if update.ChatMember == nil {
		return nil
	}
	chatID := update.ChatMember.Chat.ID
	performer := update.ChatMember.From
	oldStatus := update.ChatMember.OldChatMember.MemberStatus()
	newMember := update.ChatMember.NewChatMember
	newStatus := newMember.MemberStatus()
	user := newMember.MemberUser()

	// any admin-set change makes the cached list stale
	if oldStatus == telego.MemberStatusAdministrator || newStatus == telego.MemberStatusAdministrator ||
		oldStatus == telego.MemberStatusCreator || newStatus == telego.MemberStatusCreator {
		h.perms.Invalidate(chatID)
	}

	if user.ID == h.botID {
		return nil
	}

	if isJoin(oldStatus, newStatus) {
		return h.handleJoin(ctx, chatID, user)
	}

	if isRemoval(oldStatus, newStatus) {
		h.captcha.HandleLeave(ctx.Context(), chatID, user.ID)
		if performer.ID != user.ID {
			if err := h.misban.HandleMemberRemoval(ctx.Context(), chatID, performer, h.botID); err != nil {
				logger.Warningf("Error handling member removal in chat %d: %v", chatID, err)
			}
		}
	}
	return nil
}

func isJoin(oldStatus, newStatus string) bool {
	wasOut := oldStatus == telego.MemberStatusLeft || oldStatus == telego.MemberStatusBanned
	return wasOut && newStatus == telego.MemberStatusMember
}

func isRemoval(oldStatus, newStatus string) bool {
	wasIn := oldStatus == telego.MemberStatusMember || oldStatus == telego.MemberStatusRestricted ||
		oldStatus == telego.MemberStatusAdministrator
	return wasIn && (newStatus == telego.MemberStatusLeft || newStatus == telego.MemberStatusBanned)
}

func (h *Handlers) handleJoin(ctx *th.Context, chatID int64, user telego.User) error {
	if user.IsBot {
		return nil
	}

	if err := h.spamguard.TrackJoin(chatID, user.ID); err != nil {
		logger.Warningf("Error tracking join of user %d in chat %d: %v", user.ID, chatID, err)
	}

	if err := h.antiraid.HandleJoin(ctx.Context(), chatID, user); err != nil {
		logger.Warningf("Error running antiraid for user %d in chat %d: %v", user.ID, chatID, err)
	}
	if h.antiraid.RaidActive(chatID) {
		// the joiner was just temp-banned; no point challenging them
		return nil
	}

	if err := h.captcha.HandleJoin(ctx.Context(), chatID, user); err != nil {
		logger.Warningf("Error starting captcha for user %d in chat %d: %v", user.ID, chatID, err)
	}
	return nil
}

// handleMyChatMemberUpdate reacts to the bot's own membership changes.
func (h *Handlers) handleMyChatMemberUpdate(_ *th.Context, update telego.Update) error {
	if update.MyChatMember == nil {
		return nil
	}
	chatID := update.MyChatMember.Chat.ID
	newStatus := update.MyChatMember.NewChatMember.MemberStatus()

	switch newStatus {
	case telego.MemberStatusAdministrator:
		logger.Infof("Promoted to admin in chat %d", chatID)
	case telego.MemberStatusLeft, telego.MemberStatusBanned:
		logger.Infof("Removed from chat %d", chatID)
	}
	h.perms.Invalidate(chatID)
	return nil
}
