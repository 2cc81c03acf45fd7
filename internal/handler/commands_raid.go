package handler

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"

	"tg-groupguard/internal/moderation"
	"tg-groupguard/internal/models"
)

func (h *Handlers) cmdAntiraid(ctx *th.Context, message telego.Message, args []string) error {
	chatID := message.Chat.ID

	if len(args) > 0 && strings.EqualFold(args[0], "off") {
		if err := h.antiraid.Disable(chatID); err != nil {
			return err
		}
		h.sendHTML(ctx.Context(), chatID, "Raid mode is now off. New members can join normally.")
		return nil
	}

	duration := h.settings.Settings(chatID).GetRaidDuration()
	if len(args) > 0 {
		parsed, err := moderation.ParseDuration(args[0])
		if err != nil {
			h.sendHTML(ctx.Context(), chatID, "Usage: /antiraid [duration|off], e.g. /antiraid 6h")
			return nil
		}
		duration = parsed
	}

	if _, err := h.antiraid.Enable(chatID, duration); err != nil {
		return err
	}
	h.sendHTML(ctx.Context(), chatID, fmt.Sprintf(
		"Raid mode is now on for <b>%s</b>. Everyone joining will be temporarily banned.",
		moderation.HumanizeDuration(duration)))
	return nil
}

func (h *Handlers) cmdRaidTime(ctx *th.Context, message telego.Message, args []string) error {
	chatID := message.Chat.ID
	if len(args) != 1 {
		h.sendHTML(ctx.Context(), chatID, "Usage: /raidtime &lt;duration&gt;, e.g. /raidtime 6h")
		return nil
	}
	duration, err := moderation.ParseDuration(args[0])
	if err != nil {
		h.sendHTML(ctx.Context(), chatID, "Could not read the duration. Use forms like 30m, 6h, 1d.")
		return nil
	}

	if err := h.settings.Update(chatID, func(cs *models.ChatSettings) {
		cs.RaidDurationSeconds = int64(duration.Seconds())
	}); err != nil {
		return err
	}
	h.sendHTML(ctx.Context(), chatID, fmt.Sprintf("Raid mode will now stay on for %s when triggered.",
		moderation.HumanizeDuration(duration)))
	return nil
}

func (h *Handlers) cmdRaidActionTime(ctx *th.Context, message telego.Message, args []string) error {
	chatID := message.Chat.ID
	if len(args) != 1 {
		h.sendHTML(ctx.Context(), chatID, "Usage: /raidactiontime &lt;duration&gt;, e.g. /raidactiontime 1h")
		return nil
	}
	duration, err := moderation.ParseDuration(args[0])
	if err != nil {
		h.sendHTML(ctx.Context(), chatID, "Could not read the duration. Use forms like 30m, 1h, 1d.")
		return nil
	}

	if err := h.settings.Update(chatID, func(cs *models.ChatSettings) {
		cs.RaidActionSeconds = int64(duration.Seconds())
	}); err != nil {
		return err
	}
	h.sendHTML(ctx.Context(), chatID, fmt.Sprintf("Users joining during a raid will now be banned for %s.",
		moderation.HumanizeDuration(duration)))
	return nil
}

func (h *Handlers) cmdAutoAntiraid(ctx *th.Context, message telego.Message, args []string) error {
	chatID := message.Chat.ID
	if len(args) != 1 {
		h.sendHTML(ctx.Context(), chatID, "Usage: /autoantiraid &lt;joins-per-minute&gt; or /autoantiraid off")
		return nil
	}

	if strings.EqualFold(args[0], "off") {
		if err := h.settings.Update(chatID, func(cs *models.ChatSettings) {
			cs.AutoRaidTrigger = 0
		}); err != nil {
			return err
		}
		h.sendHTML(ctx.Context(), chatID, "Automatic raid detection is now off.")
		return nil
	}

	trigger, err := strconv.Atoi(args[0])
	if err != nil || trigger < 2 {
		h.sendHTML(ctx.Context(), chatID, "The trigger must be a number of at least 2.")
		return nil
	}
	if err := h.settings.Update(chatID, func(cs *models.ChatSettings) {
		cs.AutoRaidTrigger = trigger
	}); err != nil {
		return err
	}
	h.sendHTML(ctx.Context(), chatID, fmt.Sprintf("Raid mode will now turn on automatically at %d joins per minute.", trigger))
	return nil
}

func (h *Handlers) cmdRaidStatus(ctx *th.Context, message telego.Message, _ []string) error {
	chatID := message.Chat.ID
	settings := h.settings.Settings(chatID)

	var b strings.Builder
	b.WriteString("<b>AntiRaid</b>\n")
	if h.antiraid.RaidActive(chatID) {
		remaining := time.Until(*settings.ManualAntiraidUntil)
		fmt.Fprintf(&b, "Raid mode: <b>active</b>, %s remaining\n", moderation.HumanizeDuration(remaining))
	} else {
		b.WriteString("Raid mode: inactive\n")
	}
	if settings.AutoRaidTrigger > 0 {
		fmt.Fprintf(&b, "Auto trigger: %d joins per minute\n", settings.AutoRaidTrigger)
	} else {
		b.WriteString("Auto trigger: off\n")
	}
	fmt.Fprintf(&b, "Raid duration: %s\n", moderation.HumanizeDuration(settings.GetRaidDuration()))
	fmt.Fprintf(&b, "Action on joiners: ban for %s", moderation.HumanizeDuration(settings.GetRaidActionDuration()))

	h.sendHTML(ctx.Context(), chatID, b.String())
	return nil
}
