package handler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"

	"tg-groupguard/internal/logger"
	"tg-groupguard/internal/moderation"
	"tg-groupguard/internal/models"
	"tg-groupguard/internal/service"
)

func (h *Handlers) cmdWarn(ctx *th.Context, message telego.Message, args []string) error {
	return h.issueWarning(ctx, message, args, false, false)
}

// cmdDWarn warns and removes the offending message.
func (h *Handlers) cmdDWarn(ctx *th.Context, message telego.Message, args []string) error {
	return h.issueWarning(ctx, message, args, true, false)
}

// cmdSWarn warns silently: the offending message and the command itself
// both disappear.
func (h *Handlers) cmdSWarn(ctx *th.Context, message telego.Message, args []string) error {
	return h.issueWarning(ctx, message, args, true, true)
}

func (h *Handlers) issueWarning(ctx *th.Context, message telego.Message, args []string, deleteReplied, deleteCommand bool) error {
	chatID := message.Chat.ID
	target, rest, err := targetUser(message, args)
	if err != nil {
		h.sendHTML(ctx.Context(), chatID, "Reply to the user's message or pass their ID to warn them.")
		return nil
	}
	reason := strings.Join(rest, " ")

	result, err := h.warnings.Issue(ctx.Context(), chatID, target, message.From.ID, reason)
	if errors.Is(err, service.ErrTargetExempt) {
		h.sendHTML(ctx.Context(), chatID, "Admins and approved users cannot be warned.")
		return nil
	}
	if err != nil {
		return err
	}

	if deleteReplied && message.ReplyToMessage != nil {
		if err := h.bot.DeleteMessage(ctx.Context(), &telego.DeleteMessageParams{
			ChatID:    telego.ChatID{ID: chatID},
			MessageID: message.ReplyToMessage.MessageID,
		}); err != nil {
			logger.Debugf("Error deleting warned message in chat %d: %v", chatID, err)
		}
	}
	if deleteCommand {
		if err := h.bot.DeleteMessage(ctx.Context(), &telego.DeleteMessageParams{
			ChatID:    telego.ChatID{ID: chatID},
			MessageID: message.MessageID,
		}); err != nil {
			logger.Debugf("Error deleting warn command in chat %d: %v", chatID, err)
		}
		return nil
	}

	if result.Punished {
		h.sendHTML(ctx.Context(), chatID, fmt.Sprintf("%s reached %d warnings and has been <b>%s</b>.",
			service.LinkedUserName(target), result.Limit, result.Description))
		return nil
	}
	text := fmt.Sprintf("%s has been warned. (%d/%d)", service.LinkedUserName(target), result.Count, result.Limit)
	if reason != "" {
		text += "\nReason: " + reason
	}
	h.sendHTML(ctx.Context(), chatID, text)
	return nil
}

func (h *Handlers) cmdRmWarn(ctx *th.Context, message telego.Message, args []string) error {
	chatID := message.Chat.ID
	target, _, err := targetUser(message, args)
	if err != nil {
		h.sendHTML(ctx.Context(), chatID, "Reply to the user's message or pass their ID.")
		return nil
	}

	removed, err := h.warnings.RemoveLatest(chatID, target.ID)
	if err != nil {
		return err
	}
	if !removed {
		h.sendHTML(ctx.Context(), chatID, fmt.Sprintf("%s has no warnings to remove.", service.LinkedUserName(target)))
		return nil
	}
	count, err := h.warnings.Count(chatID, target.ID)
	if err != nil {
		return err
	}
	h.sendHTML(ctx.Context(), chatID, fmt.Sprintf("Removed the latest warning for %s. (%d remaining)",
		service.LinkedUserName(target), count))
	return nil
}

func (h *Handlers) cmdResetWarns(ctx *th.Context, message telego.Message, args []string) error {
	chatID := message.Chat.ID
	target, _, err := targetUser(message, args)
	if err != nil {
		h.sendHTML(ctx.Context(), chatID, "Reply to the user's message or pass their ID.")
		return nil
	}

	if err := h.warnings.ResetUser(chatID, target.ID); err != nil {
		return err
	}
	h.sendHTML(ctx.Context(), chatID, fmt.Sprintf("Cleared all warnings for %s.", service.LinkedUserName(target)))
	return nil
}

func (h *Handlers) cmdResetAllWarns(ctx *th.Context, message telego.Message, args []string) error {
	chatID := message.Chat.ID
	userID := message.From.ID

	if len(args) == 0 {
		token, err := h.confirm.Issue(chatID, "resetallwarns", userID)
		if err != nil {
			return err
		}
		h.sendHTML(ctx.Context(), chatID, fmt.Sprintf(
			"This clears <b>every warning</b> in this chat. Send <code>/resetallwarns %s</code> within a minute to confirm.", token))
		return nil
	}

	if !h.confirm.Confirm(chatID, "resetallwarns", userID, args[0]) {
		h.sendHTML(ctx.Context(), chatID, "That confirmation is invalid or expired. Send /resetallwarns to start over.")
		return nil
	}
	if err := h.warnings.ResetChat(chatID); err != nil {
		return err
	}
	h.sendHTML(ctx.Context(), chatID, "All warnings in this chat have been cleared.")
	return nil
}

func (h *Handlers) cmdWarns(ctx *th.Context, message telego.Message, args []string) error {
	chatID := message.Chat.ID
	target, _, err := targetUser(message, args)
	if err != nil {
		// with no target, show the caller's own count
		target = *message.From
	}

	count, err := h.warnings.Count(chatID, target.ID)
	if err != nil {
		return err
	}
	limit := h.settings.Settings(chatID).GetWarnLimit()
	h.sendHTML(ctx.Context(), chatID, fmt.Sprintf("%s has %d/%d warnings.", service.LinkedUserName(target), count, limit))
	return nil
}

func (h *Handlers) cmdSetWarnLimit(ctx *th.Context, message telego.Message, args []string) error {
	chatID := message.Chat.ID
	if len(args) != 1 {
		h.sendHTML(ctx.Context(), chatID, "Usage: /setwarnlimit &lt;count&gt;")
		return nil
	}
	limit, err := strconv.Atoi(args[0])
	if err != nil || limit < 1 {
		h.sendHTML(ctx.Context(), chatID, "The warning limit must be a number of at least 1.")
		return nil
	}

	if err := h.settings.Update(chatID, func(cs *models.ChatSettings) {
		cs.WarnLimit = limit
	}); err != nil {
		return err
	}
	h.sendHTML(ctx.Context(), chatID, fmt.Sprintf("Users are now punished at %d warnings.", limit))
	return nil
}

func (h *Handlers) cmdSetWarnMode(ctx *th.Context, message telego.Message, args []string) error {
	chatID := message.Chat.ID
	if len(args) == 0 {
		h.sendHTML(ctx.Context(), chatID, "Usage: /setwarnmode &lt;ban|kick|mute|tban|tmute&gt; [duration]")
		return nil
	}

	mode := strings.ToLower(args[0])
	if !moderation.ValidMode(mode) {
		h.sendHTML(ctx.Context(), chatID, fmt.Sprintf("%q is not a punishment mode. Pick one of ban, kick, mute, tban, tmute.", args[0]))
		return nil
	}

	var actionSeconds int64
	if moderation.TimedMode(mode) {
		if len(args) < 2 {
			h.sendHTML(ctx.Context(), chatID, fmt.Sprintf("%s needs a duration, e.g. /setwarnmode %s 1d", mode, mode))
			return nil
		}
		duration, err := moderation.ParseDuration(args[1])
		if err != nil {
			h.sendHTML(ctx.Context(), chatID, "Could not read the duration. Use forms like 1h, 1d, 1w.")
			return nil
		}
		actionSeconds = int64(duration.Seconds())
	}

	if err := h.settings.Update(chatID, func(cs *models.ChatSettings) {
		cs.WarnMode = mode
		cs.WarnModeSeconds = actionSeconds
	}); err != nil {
		return err
	}
	h.sendHTML(ctx.Context(), chatID, fmt.Sprintf("Users reaching the warning limit will now be punished with <b>%s</b>.", mode))
	return nil
}

func (h *Handlers) cmdSetWarnTime(ctx *th.Context, message telego.Message, args []string) error {
	chatID := message.Chat.ID
	if len(args) != 1 {
		h.sendHTML(ctx.Context(), chatID, "Usage: /setwarntime &lt;duration&gt; or /setwarntime off")
		return nil
	}

	if strings.EqualFold(args[0], "off") {
		if err := h.settings.Update(chatID, func(cs *models.ChatSettings) {
			cs.WarnTimeSeconds = 0
		}); err != nil {
			return err
		}
		h.sendHTML(ctx.Context(), chatID, "Warnings no longer expire.")
		return nil
	}

	duration, err := moderation.ParseDuration(args[0])
	if err != nil {
		h.sendHTML(ctx.Context(), chatID, "Could not read the duration. Use forms like 1d, 1w.")
		return nil
	}
	if err := h.settings.Update(chatID, func(cs *models.ChatSettings) {
		cs.WarnTimeSeconds = int64(duration.Seconds())
	}); err != nil {
		return err
	}
	h.sendHTML(ctx.Context(), chatID, fmt.Sprintf("Warnings now expire after %s.", moderation.HumanizeDuration(duration)))
	return nil
}

func (h *Handlers) cmdWarningSettings(ctx *th.Context, message telego.Message, _ []string) error {
	chatID := message.Chat.ID
	settings := h.settings.Settings(chatID)

	var b strings.Builder
	b.WriteString("<b>Warnings</b>\n")
	fmt.Fprintf(&b, "Limit: %d\n", settings.GetWarnLimit())
	fmt.Fprintf(&b, "Action: %s\n", settings.GetWarnMode())
	if settings.WarnTimeSeconds > 0 {
		fmt.Fprintf(&b, "Expiry: %s", moderation.HumanizeDuration(time.Duration(settings.WarnTimeSeconds)*time.Second))
	} else {
		b.WriteString("Expiry: never")
	}

	h.sendHTML(ctx.Context(), chatID, b.String())
	return nil
}
