package handler

import (
	"fmt"
	"strings"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"

	"tg-groupguard/internal/logger"
	"tg-groupguard/internal/registry"
)

// handleCommand parses and dispatches a command message. Returns whether
// the message was a command addressed to this bot.
func (h *Handlers) handleCommand(ctx *th.Context, message telego.Message) (bool, error) {
	name, args, ok := parseCommand(message.Text, h.botUsername)
	if !ok {
		return false, nil
	}

	cmd, known := h.commands.Lookup(name)
	if !known {
		return false, nil
	}
	chatID := message.Chat.ID
	userID := message.From.ID

	isAdmin := h.perms.IsChatAdmin(ctx.Context(), chatID, userID)

	if h.settings.Settings(chatID).IsCommandDisabled(name) && !isAdmin {
		// disabled commands vanish for regular users
		return true, nil
	}

	switch cmd.Category {
	case registry.CategoryAdmin:
		if !isAdmin {
			h.sendHTML(ctx.Context(), chatID, "This command is restricted to chat admins.")
			return true, nil
		}
	case registry.CategoryOwner:
		if !h.perms.IsOwner(userID) {
			return true, nil
		}
	}

	fn, exists := h.handlers[name]
	if !exists {
		logger.Errorf("Command %q registered without a handler", name)
		return true, nil
	}

	if err := fn(ctx, message, args); err != nil {
		logger.Warningf("Error handling /%s in chat %d: %v", name, chatID, err)
	}
	return true, nil
}

// commandTable maps command names to their handlers. Every entry in
// CommandDeclarations must appear here.
func (h *Handlers) commandTable() map[string]commandFunc {
	return map[string]commandFunc{
		"help": h.cmdHelp,

		"setflood":      h.cmdSetFlood,
		"setfloodtimer": h.cmdSetFloodTimer,
		"setfloodmode":  h.cmdSetFloodMode,
		"clearflood":    h.cmdClearFlood,
		"flood":         h.cmdFloodStatus,

		"antiraid":       h.cmdAntiraid,
		"raidtime":       h.cmdRaidTime,
		"raidactiontime": h.cmdRaidActionTime,
		"autoantiraid":   h.cmdAutoAntiraid,
		"raidstatus":     h.cmdRaidStatus,

		"spamguard":      h.cmdSpamGuard,
		"quarantinetime": h.cmdQuarantineTime,

		"misban":       h.cmdMisban,
		"misbanmode":   h.cmdMisbanMode,
		"misbannotify": h.cmdMisbanNotify,

		"warn":          h.cmdWarn,
		"dwarn":         h.cmdDWarn,
		"swarn":         h.cmdSWarn,
		"rmwarn":        h.cmdRmWarn,
		"resetwarns":    h.cmdResetWarns,
		"resetallwarns": h.cmdResetAllWarns,
		"warns":         h.cmdWarns,
		"setwarnlimit":  h.cmdSetWarnLimit,
		"setwarnmode":   h.cmdSetWarnMode,
		"setwarntime":   h.cmdSetWarnTime,
		"warnings":      h.cmdWarningSettings,

		"captcha":     h.cmdCaptcha,
		"captchamode": h.cmdCaptchaMode,
		"captchatime": h.cmdCaptchaTime,

		"lock":      h.cmdLock,
		"unlock":    h.cmdUnlock,
		"locks":     h.cmdLocks,
		"lockwarns": h.cmdLockWarns,

		"nightmode":       h.cmdNightMode,
		"nightmodeblock":  h.cmdNightModeBlock,
		"nightmodestatus": h.cmdNightModeStatus,

		"approve":      h.cmdApprove,
		"unapprove":    h.cmdUnapprove,
		"approved":     h.cmdApproved,
		"unapproveall": h.cmdUnapproveAll,

		"promote":   h.cmdPromote,
		"demote":    h.cmdDemote,
		"anonadmin": h.cmdAnonAdmin,
		"bans":      h.cmdBans,

		"disable":  h.cmdDisable,
		"enable":   h.cmdEnable,
		"disabled": h.cmdDisabled,
	}
}

// cmdHelp prints the command list, grouped per module, or one module's
// commands when named.
func (h *Handlers) cmdHelp(ctx *th.Context, message telego.Message, args []string) error {
	var b strings.Builder

	if len(args) > 0 {
		module := canonicalModule(h.commands, args[0])
		cmds := h.commands.ModuleCommands(module)
		if len(cmds) == 0 {
			h.sendHTML(ctx.Context(), message.Chat.ID, fmt.Sprintf("No module named %q. Send /help for the full list.", args[0]))
			return nil
		}
		fmt.Fprintf(&b, "<b>%s</b>\n", module)
		for _, cmd := range cmds {
			fmt.Fprintf(&b, "/%s — %s\n", cmd.Name, cmd.Help)
		}
		h.sendHTML(ctx.Context(), message.Chat.ID, b.String())
		return nil
	}

	b.WriteString("<b>Group Guard</b>\nModeration toolkit for this group.\n")
	for _, module := range h.commands.Modules() {
		fmt.Fprintf(&b, "\n<b>%s</b>: ", module)
		names := make([]string, 0)
		for _, cmd := range h.commands.ModuleCommands(module) {
			names = append(names, "/"+cmd.Name)
		}
		b.WriteString(strings.Join(names, " "))
	}
	b.WriteString("\n\nSend /help &lt;module&gt; for details.")
	h.sendHTML(ctx.Context(), message.Chat.ID, b.String())
	return nil
}

func canonicalModule(r *registry.Registry, name string) string {
	for _, module := range r.Modules() {
		if strings.EqualFold(module, name) {
			return module
		}
	}
	return name
}
