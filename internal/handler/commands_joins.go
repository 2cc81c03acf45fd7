package handler

import (
	"fmt"
	"time"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"

	"tg-groupguard/internal/moderation"
	"tg-groupguard/internal/models"
)

func (h *Handlers) cmdSpamGuard(ctx *th.Context, message telego.Message, args []string) error {
	chatID := message.Chat.ID
	if len(args) != 1 {
		h.sendHTML(ctx.Context(), chatID, "Usage: /spamguard &lt;on|off&gt;")
		return nil
	}
	enabled, err := parseOnOff(args[0])
	if err != nil {
		h.sendHTML(ctx.Context(), chatID, "Usage: /spamguard &lt;on|off&gt;")
		return nil
	}

	if err := h.settings.Update(chatID, func(cs *models.ChatSettings) {
		cs.SpamGuardEnabled = enabled
	}); err != nil {
		return err
	}
	if enabled {
		quarantine := time.Duration(h.settings.Settings(chatID).GetQuarantineSeconds()) * time.Second
		h.sendHTML(ctx.Context(), chatID, fmt.Sprintf(
			"Spam guard is now on. New members cannot send links, media, or forwards for %s after joining.",
			moderation.HumanizeDuration(quarantine)))
	} else {
		h.sendHTML(ctx.Context(), chatID, "Spam guard is now off.")
	}
	return nil
}

func (h *Handlers) cmdQuarantineTime(ctx *th.Context, message telego.Message, args []string) error {
	chatID := message.Chat.ID
	if len(args) != 1 {
		h.sendHTML(ctx.Context(), chatID, "Usage: /quarantinetime &lt;duration&gt;, e.g. /quarantinetime 1d")
		return nil
	}
	duration, err := moderation.ParseDuration(args[0])
	if err != nil {
		h.sendHTML(ctx.Context(), chatID, "Could not read the duration. Use forms like 1h, 1d, 1w.")
		return nil
	}

	if err := h.settings.Update(chatID, func(cs *models.ChatSettings) {
		cs.QuarantineSet = true
		cs.QuarantineSeconds = int64(duration.Seconds())
	}); err != nil {
		return err
	}
	h.sendHTML(ctx.Context(), chatID, fmt.Sprintf("The new-member quarantine now lasts %s.",
		moderation.HumanizeDuration(duration)))
	return nil
}

func (h *Handlers) cmdMisban(ctx *th.Context, message telego.Message, args []string) error {
	chatID := message.Chat.ID
	if len(args) != 1 {
		h.sendHTML(ctx.Context(), chatID, "Usage: /misban &lt;on|off&gt;")
		return nil
	}
	enabled, err := parseOnOff(args[0])
	if err != nil {
		h.sendHTML(ctx.Context(), chatID, "Usage: /misban &lt;on|off&gt;")
		return nil
	}

	if err := h.settings.Update(chatID, func(cs *models.ChatSettings) {
		cs.MisbanEnabled = enabled
	}); err != nil {
		return err
	}
	if enabled {
		h.sendHTML(ctx.Context(), chatID, "The rogue-admin watch is now on. Admins not promoted through me will be punished for removing members.")
	} else {
		h.sendHTML(ctx.Context(), chatID, "The rogue-admin watch is now off.")
	}
	return nil
}

func (h *Handlers) cmdMisbanMode(ctx *th.Context, message telego.Message, args []string) error {
	chatID := message.Chat.ID
	if len(args) != 1 || (args[0] != "ban" && args[0] != "kick") {
		h.sendHTML(ctx.Context(), chatID, "Usage: /misbanmode &lt;ban|kick&gt;")
		return nil
	}
	mode := args[0]

	if err := h.settings.Update(chatID, func(cs *models.ChatSettings) {
		cs.MisbanMode = mode
	}); err != nil {
		return err
	}
	h.sendHTML(ctx.Context(), chatID, fmt.Sprintf("Rogue admins will now be punished with <b>%s</b>.", mode))
	return nil
}

func (h *Handlers) cmdMisbanNotify(ctx *th.Context, message telego.Message, args []string) error {
	chatID := message.Chat.ID
	if len(args) != 1 {
		h.sendHTML(ctx.Context(), chatID, "Usage: /misbannotify &lt;on|off&gt;")
		return nil
	}
	enabled, err := parseOnOff(args[0])
	if err != nil {
		h.sendHTML(ctx.Context(), chatID, "Usage: /misbannotify &lt;on|off&gt;")
		return nil
	}

	if err := h.settings.Update(chatID, func(cs *models.ChatSettings) {
		cs.MisbanNotifySet = true
		cs.MisbanNotify = enabled
	}); err != nil {
		return err
	}
	h.sendHTML(ctx.Context(), chatID, fmt.Sprintf("Rogue-admin notifications are now %s.", onOffWord(enabled)))
	return nil
}

func (h *Handlers) cmdCaptcha(ctx *th.Context, message telego.Message, args []string) error {
	chatID := message.Chat.ID
	if len(args) != 1 {
		h.sendHTML(ctx.Context(), chatID, "Usage: /captcha &lt;on|off&gt;")
		return nil
	}
	enabled, err := parseOnOff(args[0])
	if err != nil {
		h.sendHTML(ctx.Context(), chatID, "Usage: /captcha &lt;on|off&gt;")
		return nil
	}

	if err := h.settings.Update(chatID, func(cs *models.ChatSettings) {
		cs.CaptchaEnabled = enabled
	}); err != nil {
		return err
	}
	if enabled {
		h.sendHTML(ctx.Context(), chatID, "New members must now solve a captcha before speaking.")
	} else {
		h.sendHTML(ctx.Context(), chatID, "The join captcha is now off.")
	}
	return nil
}

func (h *Handlers) cmdCaptchaMode(ctx *th.Context, message telego.Message, args []string) error {
	chatID := message.Chat.ID
	if len(args) != 1 || (args[0] != "button" && args[0] != "math") {
		h.sendHTML(ctx.Context(), chatID, "Usage: /captchamode &lt;button|math&gt;")
		return nil
	}
	mode := args[0]

	if err := h.settings.Update(chatID, func(cs *models.ChatSettings) {
		cs.CaptchaMode = mode
	}); err != nil {
		return err
	}
	h.sendHTML(ctx.Context(), chatID, fmt.Sprintf("The captcha style is now <b>%s</b>.", mode))
	return nil
}

func (h *Handlers) cmdCaptchaTime(ctx *th.Context, message telego.Message, args []string) error {
	chatID := message.Chat.ID
	if len(args) != 1 {
		h.sendHTML(ctx.Context(), chatID, "Usage: /captchatime &lt;duration&gt;, e.g. /captchatime 5m")
		return nil
	}
	duration, err := moderation.ParseDuration(args[0])
	if err != nil || duration < 30*time.Second {
		h.sendHTML(ctx.Context(), chatID, "The captcha timeout must be a duration of at least 30s.")
		return nil
	}

	if err := h.settings.Update(chatID, func(cs *models.ChatSettings) {
		cs.CaptchaKickSeconds = int64(duration.Seconds())
	}); err != nil {
		return err
	}
	h.sendHTML(ctx.Context(), chatID, fmt.Sprintf("Joiners now have %s to solve the captcha before being kicked.",
		moderation.HumanizeDuration(duration)))
	return nil
}
