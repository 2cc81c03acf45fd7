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

func (h *Handlers) cmdSetFlood(ctx *th.Context, message telego.Message, args []string) error {
	chatID := message.Chat.ID
	if len(args) != 1 {
		h.sendHTML(ctx.Context(), chatID, "Usage: /setflood &lt;count&gt; or /setflood off")
		return nil
	}

	if strings.EqualFold(args[0], "off") {
		if err := h.settings.Update(chatID, func(cs *models.ChatSettings) {
			cs.FloodLimit = 0
		}); err != nil {
			return err
		}
		h.sendHTML(ctx.Context(), chatID, "Consecutive flood detection is now off.")
		return nil
	}

	limit, err := strconv.Atoi(args[0])
	if err != nil || limit < 2 {
		h.sendHTML(ctx.Context(), chatID, "The flood limit must be a number of at least 2.")
		return nil
	}
	if err := h.settings.Update(chatID, func(cs *models.ChatSettings) {
		cs.FloodLimit = limit
	}); err != nil {
		return err
	}
	h.sendHTML(ctx.Context(), chatID, fmt.Sprintf("Users sending %d consecutive messages will now be punished.", limit))
	return nil
}

func (h *Handlers) cmdSetFloodTimer(ctx *th.Context, message telego.Message, args []string) error {
	chatID := message.Chat.ID

	if len(args) == 1 && strings.EqualFold(args[0], "off") {
		if err := h.settings.Update(chatID, func(cs *models.ChatSettings) {
			cs.TimedFloodLimit = 0
			cs.TimedFloodSeconds = 0
		}); err != nil {
			return err
		}
		h.sendHTML(ctx.Context(), chatID, "Timed flood detection is now off.")
		return nil
	}

	if len(args) != 2 {
		h.sendHTML(ctx.Context(), chatID, "Usage: /setfloodtimer &lt;count&gt; &lt;duration&gt;, e.g. /setfloodtimer 10 30s")
		return nil
	}
	limit, err := strconv.Atoi(args[0])
	if err != nil || limit < 2 {
		h.sendHTML(ctx.Context(), chatID, "The message count must be a number of at least 2.")
		return nil
	}
	window, err := moderation.ParseDuration(args[1])
	if err != nil {
		h.sendHTML(ctx.Context(), chatID, "Could not read the duration. Use forms like 30s, 5m, 1h.")
		return nil
	}

	if err := h.settings.Update(chatID, func(cs *models.ChatSettings) {
		cs.TimedFloodLimit = limit
		cs.TimedFloodSeconds = int64(window.Seconds())
	}); err != nil {
		return err
	}
	h.sendHTML(ctx.Context(), chatID, fmt.Sprintf("Users sending %d messages within %s will now be punished.",
		limit, moderation.HumanizeDuration(window)))
	return nil
}

func (h *Handlers) cmdSetFloodMode(ctx *th.Context, message telego.Message, args []string) error {
	chatID := message.Chat.ID
	if len(args) == 0 {
		h.sendHTML(ctx.Context(), chatID, "Usage: /setfloodmode &lt;ban|kick|mute|tban|tmute&gt; [duration]")
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
			h.sendHTML(ctx.Context(), chatID, fmt.Sprintf("%s needs a duration, e.g. /setfloodmode %s 1h", mode, mode))
			return nil
		}
		duration, err := moderation.ParseDuration(args[1])
		if err != nil {
			h.sendHTML(ctx.Context(), chatID, "Could not read the duration. Use forms like 30s, 5m, 1h.")
			return nil
		}
		actionSeconds = int64(duration.Seconds())
	}

	if err := h.settings.Update(chatID, func(cs *models.ChatSettings) {
		cs.FloodMode = mode
		cs.FloodActionSeconds = actionSeconds
	}); err != nil {
		return err
	}
	h.sendHTML(ctx.Context(), chatID, fmt.Sprintf("Flooding users will now be punished with <b>%s</b>.", mode))
	return nil
}

func (h *Handlers) cmdClearFlood(ctx *th.Context, message telego.Message, args []string) error {
	chatID := message.Chat.ID
	if len(args) != 1 {
		h.sendHTML(ctx.Context(), chatID, "Usage: /clearflood &lt;on|off&gt;")
		return nil
	}
	enabled, err := parseOnOff(args[0])
	if err != nil {
		h.sendHTML(ctx.Context(), chatID, "Usage: /clearflood &lt;on|off&gt;")
		return nil
	}

	if err := h.settings.Update(chatID, func(cs *models.ChatSettings) {
		cs.ClearFloodSet = true
		cs.ClearFlood = enabled
	}); err != nil {
		return err
	}
	if enabled {
		h.sendHTML(ctx.Context(), chatID, "Flood messages will now be deleted.")
	} else {
		h.sendHTML(ctx.Context(), chatID, "Flood messages will now be kept.")
	}
	return nil
}

func (h *Handlers) cmdFloodStatus(ctx *th.Context, message telego.Message, _ []string) error {
	chatID := message.Chat.ID
	settings := h.settings.Settings(chatID)

	var b strings.Builder
	b.WriteString("<b>Antiflood</b>\n")
	if settings.FloodLimit > 0 {
		fmt.Fprintf(&b, "Consecutive limit: %d messages\n", settings.FloodLimit)
	} else {
		b.WriteString("Consecutive limit: off\n")
	}
	if settings.TimedFloodLimit > 0 && settings.TimedFloodSeconds > 0 {
		fmt.Fprintf(&b, "Timed limit: %d messages per %s\n", settings.TimedFloodLimit,
			moderation.HumanizeDuration(time.Duration(settings.TimedFloodSeconds)*time.Second))
	} else {
		b.WriteString("Timed limit: off\n")
	}
	fmt.Fprintf(&b, "Action: %s\n", settings.GetFloodMode())
	fmt.Fprintf(&b, "Delete flood messages: %s", onOffWord(settings.GetClearFlood()))

	h.sendHTML(ctx.Context(), chatID, b.String())
	return nil
}
