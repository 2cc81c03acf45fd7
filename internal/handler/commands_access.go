package handler

import (
	"fmt"
	"strings"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"

	"tg-groupguard/internal/models"
	"tg-groupguard/internal/service"
)

func (h *Handlers) cmdApprove(ctx *th.Context, message telego.Message, args []string) error {
	chatID := message.Chat.ID
	target, _, err := targetUser(message, args)
	if err != nil {
		h.sendHTML(ctx.Context(), chatID, "Reply to the user's message or pass their ID to approve them.")
		return nil
	}

	if err := h.access.Approve(chatID, target.ID); err != nil {
		return err
	}
	h.sendHTML(ctx.Context(), chatID, fmt.Sprintf("%s is now approved and exempt from moderation.",
		service.LinkedUserName(target)))
	return nil
}

func (h *Handlers) cmdUnapprove(ctx *th.Context, message telego.Message, args []string) error {
	chatID := message.Chat.ID
	target, _, err := targetUser(message, args)
	if err != nil {
		h.sendHTML(ctx.Context(), chatID, "Reply to the user's message or pass their ID.")
		return nil
	}

	if err := h.access.Unapprove(chatID, target.ID); err != nil {
		return err
	}
	h.sendHTML(ctx.Context(), chatID, fmt.Sprintf("%s is no longer approved.", service.LinkedUserName(target)))
	return nil
}

func (h *Handlers) cmdApproved(ctx *th.Context, message telego.Message, _ []string) error {
	chatID := message.Chat.ID
	ids := h.access.Approved(chatID)
	if len(ids) == 0 {
		h.sendHTML(ctx.Context(), chatID, "No users are approved in this chat.")
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "<b>Approved users</b> (%d)\n", len(ids))
	for _, id := range ids {
		fmt.Fprintf(&b, "• <a href=\"tg://user?id=%d\">%d</a>\n", id, id)
	}
	h.sendHTML(ctx.Context(), chatID, strings.TrimRight(b.String(), "\n"))
	return nil
}

func (h *Handlers) cmdUnapproveAll(ctx *th.Context, message telego.Message, args []string) error {
	chatID := message.Chat.ID
	userID := message.From.ID

	if len(args) == 0 {
		token, err := h.confirm.Issue(chatID, "unapproveall", userID)
		if err != nil {
			return err
		}
		h.sendHTML(ctx.Context(), chatID, fmt.Sprintf(
			"This removes <b>every approval</b> in this chat. Send <code>/unapproveall %s</code> within a minute to confirm.", token))
		return nil
	}

	if !h.confirm.Confirm(chatID, "unapproveall", userID, args[0]) {
		h.sendHTML(ctx.Context(), chatID, "That confirmation is invalid or expired. Send /unapproveall to start over.")
		return nil
	}
	if err := h.access.UnapproveAll(chatID); err != nil {
		return err
	}
	h.sendHTML(ctx.Context(), chatID, "All approvals in this chat have been removed.")
	return nil
}

func (h *Handlers) cmdPromote(ctx *th.Context, message telego.Message, args []string) error {
	chatID := message.Chat.ID
	target, _, err := targetUser(message, args)
	if err != nil {
		h.sendHTML(ctx.Context(), chatID, "Reply to the user's message or pass their ID to promote them.")
		return nil
	}

	if err := h.access.Promote(chatID, target.ID); err != nil {
		return err
	}
	h.sendHTML(ctx.Context(), chatID, fmt.Sprintf("%s can now use my admin commands.", service.LinkedUserName(target)))
	return nil
}

func (h *Handlers) cmdDemote(ctx *th.Context, message telego.Message, args []string) error {
	chatID := message.Chat.ID
	target, _, err := targetUser(message, args)
	if err != nil {
		h.sendHTML(ctx.Context(), chatID, "Reply to the user's message or pass their ID.")
		return nil
	}

	if err := h.access.Demote(chatID, target.ID); err != nil {
		return err
	}
	h.sendHTML(ctx.Context(), chatID, fmt.Sprintf("%s can no longer use my admin commands.", service.LinkedUserName(target)))
	return nil
}

func (h *Handlers) cmdAnonAdmin(ctx *th.Context, message telego.Message, args []string) error {
	chatID := message.Chat.ID
	if len(args) != 1 {
		h.sendHTML(ctx.Context(), chatID, "Usage: /anonadmin &lt;on|off&gt;")
		return nil
	}
	enabled, err := parseOnOff(args[0])
	if err != nil {
		h.sendHTML(ctx.Context(), chatID, "Usage: /anonadmin &lt;on|off&gt;")
		return nil
	}

	if err := h.settings.Update(chatID, func(cs *models.ChatSettings) {
		cs.AllowAnonAdmin = enabled
	}); err != nil {
		return err
	}
	if enabled {
		h.sendHTML(ctx.Context(), chatID, "Anonymous admins can now use admin commands.")
	} else {
		h.sendHTML(ctx.Context(), chatID, "Anonymous admins can no longer use admin commands.")
	}
	return nil
}

func (h *Handlers) cmdBans(ctx *th.Context, message telego.Message, _ []string) error {
	chatID := message.Chat.ID
	if h.banlog == nil {
		h.sendHTML(ctx.Context(), chatID, "Punishment history is only available when the database is enabled.")
		return nil
	}

	records, err := h.banlog.RecentForChat(chatID, 10)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		h.sendHTML(ctx.Context(), chatID, "No punishments have been recorded in this chat.")
		return nil
	}
	h.sendHTML(ctx.Context(), chatID, formatBanList(records))
	return nil
}

// formatBanList renders the audit records newest-first.
func formatBanList(records []*models.BanRecord) string {
	var b strings.Builder
	b.WriteString("<b>Recent punishments</b>\n")
	for _, r := range records {
		fmt.Fprintf(&b, "• <a href=\"tg://user?id=%d\">%d</a> — %s (%s)\n", r.UserID, r.UserID, r.Action, r.Reason)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (h *Handlers) cmdDisable(ctx *th.Context, message telego.Message, args []string) error {
	chatID := message.Chat.ID
	if len(args) != 1 {
		h.sendHTML(ctx.Context(), chatID, "Usage: /disable &lt;command&gt;")
		return nil
	}
	name := strings.ToLower(strings.TrimPrefix(args[0], "/"))

	if err := h.access.DisableCommand(chatID, name); err != nil {
		h.sendHTML(ctx.Context(), chatID, err.Error())
		return nil
	}
	h.sendHTML(ctx.Context(), chatID, fmt.Sprintf("/%s is now disabled for regular users.", name))
	return nil
}

func (h *Handlers) cmdEnable(ctx *th.Context, message telego.Message, args []string) error {
	chatID := message.Chat.ID
	if len(args) != 1 {
		h.sendHTML(ctx.Context(), chatID, "Usage: /enable &lt;command&gt;")
		return nil
	}
	name := strings.ToLower(strings.TrimPrefix(args[0], "/"))

	if err := h.access.EnableCommand(chatID, name); err != nil {
		return err
	}
	h.sendHTML(ctx.Context(), chatID, fmt.Sprintf("/%s is enabled again.", name))
	return nil
}

func (h *Handlers) cmdDisabled(ctx *th.Context, message telego.Message, _ []string) error {
	chatID := message.Chat.ID
	names := h.access.Disabled(chatID)
	if len(names) == 0 {
		h.sendHTML(ctx.Context(), chatID, "No commands are disabled in this chat.")
		return nil
	}

	var b strings.Builder
	b.WriteString("<b>Disabled commands</b>\n")
	for _, name := range names {
		fmt.Fprintf(&b, "• /%s\n", name)
	}
	h.sendHTML(ctx.Context(), chatID, strings.TrimRight(b.String(), "\n"))
	return nil
}
