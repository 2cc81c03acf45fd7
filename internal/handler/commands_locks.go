package handler

import (
	"fmt"
	"strings"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"

	"tg-groupguard/internal/moderation"
	"tg-groupguard/internal/models"
	"tg-groupguard/internal/service"
)

func (h *Handlers) cmdLock(ctx *th.Context, message telego.Message, args []string) error {
	chatID := message.Chat.ID
	if len(args) == 0 {
		h.sendHTML(ctx.Context(), chatID, fmt.Sprintf(
			"Usage: /lock &lt;type&gt; [action [duration]]\nLockable types: %s",
			strings.Join(service.LockableTypes, ", ")))
		return nil
	}

	rule := models.LockRule{Type: strings.ToLower(args[0]), Action: "del"}
	if len(args) > 1 {
		rule.Action = strings.ToLower(args[1])
	}
	if len(args) > 2 {
		duration, err := moderation.ParseDuration(args[2])
		if err != nil {
			h.sendHTML(ctx.Context(), chatID, "Could not read the duration. Use forms like 30m, 1h, 1d.")
			return nil
		}
		rule.ActionSeconds = int64(duration.Seconds())
	}

	if err := h.locks.Lock(chatID, rule); err != nil {
		h.sendHTML(ctx.Context(), chatID, err.Error())
		return nil
	}

	text := fmt.Sprintf("<b>%s</b> content is now locked.", rule.Type)
	if rule.Action != "del" {
		text = fmt.Sprintf("<b>%s</b> content is now locked; senders will be punished with <b>%s</b>.", rule.Type, rule.Action)
	}
	h.sendHTML(ctx.Context(), chatID, text)
	return nil
}

func (h *Handlers) cmdUnlock(ctx *th.Context, message telego.Message, args []string) error {
	chatID := message.Chat.ID
	if len(args) != 1 {
		h.sendHTML(ctx.Context(), chatID, "Usage: /unlock &lt;type&gt;")
		return nil
	}
	lockType := strings.ToLower(args[0])

	removed, err := h.locks.Unlock(chatID, lockType)
	if err != nil {
		return err
	}
	if !removed {
		h.sendHTML(ctx.Context(), chatID, fmt.Sprintf("<b>%s</b> was not locked.", lockType))
		return nil
	}
	h.sendHTML(ctx.Context(), chatID, fmt.Sprintf("<b>%s</b> content is now unlocked.", lockType))
	return nil
}

func (h *Handlers) cmdLocks(ctx *th.Context, message telego.Message, _ []string) error {
	chatID := message.Chat.ID
	rules := h.locks.Active(chatID)
	if len(rules) == 0 {
		h.sendHTML(ctx.Context(), chatID, "No content types are locked in this chat.")
		return nil
	}

	var b strings.Builder
	b.WriteString("<b>Locked content</b>\n")
	for _, rule := range rules {
		if rule.Action == "" || rule.Action == "del" {
			fmt.Fprintf(&b, "• %s — delete\n", rule.Type)
		} else {
			fmt.Fprintf(&b, "• %s — delete + %s\n", rule.Type, rule.Action)
		}
	}
	h.sendHTML(ctx.Context(), chatID, strings.TrimRight(b.String(), "\n"))
	return nil
}

func (h *Handlers) cmdLockWarns(ctx *th.Context, message telego.Message, args []string) error {
	chatID := message.Chat.ID
	if len(args) != 1 {
		h.sendHTML(ctx.Context(), chatID, "Usage: /lockwarns &lt;on|off&gt;")
		return nil
	}
	enabled, err := parseOnOff(args[0])
	if err != nil {
		h.sendHTML(ctx.Context(), chatID, "Usage: /lockwarns &lt;on|off&gt;")
		return nil
	}

	if err := h.settings.Update(chatID, func(cs *models.ChatSettings) {
		cs.LockWarnsEnabled = enabled
	}); err != nil {
		return err
	}
	h.sendHTML(ctx.Context(), chatID, fmt.Sprintf("Lock violation notices are now %s.", onOffWord(enabled)))
	return nil
}

func (h *Handlers) cmdNightMode(ctx *th.Context, message telego.Message, args []string) error {
	chatID := message.Chat.ID
	if len(args) == 0 {
		h.sendHTML(ctx.Context(), chatID,
			"Usage: /nightmode &lt;start&gt; &lt;end&gt; [timezone], e.g. /nightmode 23:00 06:00 Europe/Berlin\nOr: /nightmode on|off|auto")
		return nil
	}

	switch strings.ToLower(args[0]) {
	case "on":
		if err := h.nightmode.Override(chatID, true); err != nil {
			return err
		}
		h.sendHTML(ctx.Context(), chatID, "Night mode is now forced on.")
		return nil
	case "off":
		if err := h.nightmode.Override(chatID, false); err != nil {
			return err
		}
		h.sendHTML(ctx.Context(), chatID, "Night mode is now forced off.")
		return nil
	case "auto":
		if err := h.nightmode.ClearOverride(chatID); err != nil {
			return err
		}
		h.sendHTML(ctx.Context(), chatID, "Night mode now follows the schedule.")
		return nil
	}

	if len(args) < 2 {
		h.sendHTML(ctx.Context(), chatID, "Usage: /nightmode &lt;start&gt; &lt;end&gt; [timezone]")
		return nil
	}
	timezone := ""
	if len(args) > 2 {
		timezone = args[2]
	}
	if err := h.nightmode.SetSchedule(chatID, args[0], args[1], timezone); err != nil {
		h.sendHTML(ctx.Context(), chatID, "Could not read the schedule. Times are HH:MM, the timezone an IANA name like Europe/Berlin.")
		return nil
	}

	settings := h.settings.Settings(chatID)
	h.sendHTML(ctx.Context(), chatID, fmt.Sprintf("Quiet hours are now %s–%s (%s).",
		args[0], args[1], settings.GetNightModeTimezone()))
	return nil
}

func (h *Handlers) cmdNightModeBlock(ctx *th.Context, message telego.Message, args []string) error {
	chatID := message.Chat.ID
	if len(args) == 0 {
		h.sendHTML(ctx.Context(), chatID, fmt.Sprintf(
			"Usage: /nightmodeblock &lt;types...&gt;, all, or off\nTypes: %s",
			strings.Join(service.LockableTypes, ", ")))
		return nil
	}

	if strings.EqualFold(args[0], "off") {
		if err := h.settings.Update(chatID, func(cs *models.ChatSettings) {
			cs.NightModeBlocked = nil
		}); err != nil {
			return err
		}
		h.sendHTML(ctx.Context(), chatID, "Night mode no longer blocks any content.")
		return nil
	}

	var blocked []string
	if strings.EqualFold(args[0], "all") {
		blocked = []string{"all"}
	} else {
		for _, arg := range args {
			t := strings.ToLower(arg)
			if !service.ValidLockType(t) {
				h.sendHTML(ctx.Context(), chatID, fmt.Sprintf("%q is not a blockable content type.", arg))
				return nil
			}
			blocked = append(blocked, t)
		}
	}

	if err := h.settings.Update(chatID, func(cs *models.ChatSettings) {
		cs.NightModeBlocked = blocked
	}); err != nil {
		return err
	}
	h.sendHTML(ctx.Context(), chatID, fmt.Sprintf("Night mode now blocks: %s.", strings.Join(blocked, ", ")))
	return nil
}

func (h *Handlers) cmdNightModeStatus(ctx *th.Context, message telego.Message, _ []string) error {
	chatID := message.Chat.ID
	settings := h.settings.Settings(chatID)

	var b strings.Builder
	b.WriteString("<b>Night mode</b>\n")
	if h.nightmode.Active(chatID) {
		b.WriteString("State: <b>active</b>\n")
	} else {
		b.WriteString("State: inactive\n")
	}
	switch {
	case settings.NightModeOverride != nil && *settings.NightModeOverride:
		b.WriteString("Mode: forced on\n")
	case settings.NightModeOverride != nil:
		b.WriteString("Mode: forced off\n")
	case settings.NightModeStart != "" && settings.NightModeEnd != "":
		fmt.Fprintf(&b, "Schedule: %s–%s (%s)\n", settings.NightModeStart, settings.NightModeEnd, settings.GetNightModeTimezone())
	default:
		b.WriteString("Schedule: not set\n")
	}
	if len(settings.NightModeBlocked) > 0 {
		fmt.Fprintf(&b, "Blocked: %s", strings.Join(settings.NightModeBlocked, ", "))
	} else {
		b.WriteString("Blocked: nothing")
	}

	h.sendHTML(ctx.Context(), chatID, b.String())
	return nil
}
