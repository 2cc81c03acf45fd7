package handler

import (
	"context"
	"runtime/debug"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"

	"tg-groupguard/internal/config"
	"tg-groupguard/internal/logger"
	"tg-groupguard/internal/permissions"
	"tg-groupguard/internal/registry"
	"tg-groupguard/internal/service"
)

// commandFunc handles one parsed command invocation.
type commandFunc func(ctx *th.Context, message telego.Message, args []string) error

// Handlers glues the update stream to the feature services.
type Handlers struct {
	cfg         *config.Config
	bot         *telego.Bot
	botID       int64
	botUsername string
	commands    *registry.Registry
	handlers    map[string]commandFunc

	perms     *permissions.Resolver
	settings  *service.SettingsService
	access    *service.AccessService
	confirm   *service.ConfirmService
	antiflood *service.AntifloodService
	antiraid  *service.AntiraidService
	spamguard *service.SpamGuardService
	misban    *service.MisbanService
	warnings  *service.WarningsService
	captcha   *service.CaptchaService
	locks     *service.LocksService
	nightmode *service.NightModeService
	banlog    service.BanLog
}

// Services bundles the feature services the handlers dispatch to.
type Services struct {
	Perms     *permissions.Resolver
	Settings  *service.SettingsService
	Access    *service.AccessService
	Confirm   *service.ConfirmService
	Antiflood *service.AntifloodService
	Antiraid  *service.AntiraidService
	SpamGuard *service.SpamGuardService
	Misban    *service.MisbanService
	Warnings  *service.WarningsService
	Captcha   *service.CaptchaService
	Locks     *service.LocksService
	NightMode *service.NightModeService
	BanLog    service.BanLog
}

// NewHandlers builds the handler set and its command table. botUser is
// the identity from GetMe.
func NewHandlers(cfg *config.Config, bot *telego.Bot, botUser telego.User, commands *registry.Registry, svcs Services) *Handlers {
	h := &Handlers{
		cfg:         cfg,
		bot:         bot,
		botID:       botUser.ID,
		botUsername: botUser.Username,
		commands:    commands,
		perms:       svcs.Perms,
		settings:    svcs.Settings,
		access:      svcs.Access,
		confirm:     svcs.Confirm,
		antiflood:   svcs.Antiflood,
		antiraid:    svcs.Antiraid,
		spamguard:   svcs.SpamGuard,
		misban:      svcs.Misban,
		warnings:    svcs.Warnings,
		captcha:     svcs.Captcha,
		locks:       svcs.Locks,
		nightmode:   svcs.NightMode,
		banlog:      svcs.BanLog,
	}
	h.handlers = h.commandTable()
	return h
}

// CommandDeclarations lists every command the bot registers, grouped by
// feature module. registry.Build validates it at startup.
func CommandDeclarations() []registry.Command {
	return []registry.Command{
		{Name: "help", Module: "Help", Category: registry.CategoryUser, Help: "show help, optionally for one module"},

		{Name: "setflood", Module: "Antiflood", Category: registry.CategoryAdmin, Help: "set the consecutive-message flood limit, or off"},
		{Name: "setfloodtimer", Module: "Antiflood", Category: registry.CategoryAdmin, Help: "set the timed flood limit: count and window, or off"},
		{Name: "setfloodmode", Module: "Antiflood", Category: registry.CategoryAdmin, Help: "set the flood punishment mode"},
		{Name: "clearflood", Module: "Antiflood", Category: registry.CategoryAdmin, Help: "toggle deleting flood messages"},
		{Name: "flood", Module: "Antiflood", Category: registry.CategoryUser, Help: "show the current antiflood settings"},

		{Name: "antiraid", Module: "AntiRaid", Category: registry.CategoryAdmin, Help: "toggle raid mode, optionally with a duration"},
		{Name: "raidtime", Module: "AntiRaid", Category: registry.CategoryAdmin, Help: "set how long raid mode stays on"},
		{Name: "raidactiontime", Module: "AntiRaid", Category: registry.CategoryAdmin, Help: "set the temp-ban duration for raid joiners"},
		{Name: "autoantiraid", Module: "AntiRaid", Category: registry.CategoryAdmin, Help: "set the joins-per-minute auto trigger, or off"},
		{Name: "raidstatus", Module: "AntiRaid", Category: registry.CategoryUser, Help: "show the current antiraid state"},

		{Name: "spamguard", Module: "SpamGuard", Category: registry.CategoryAdmin, Help: "toggle the new-member quarantine"},
		{Name: "quarantinetime", Module: "SpamGuard", Category: registry.CategoryAdmin, Help: "set the quarantine window"},

		{Name: "misban", Module: "Misban", Category: registry.CategoryAdmin, Help: "toggle the rogue-admin watch"},
		{Name: "misbanmode", Module: "Misban", Category: registry.CategoryAdmin, Help: "set the rogue-admin punishment: ban or kick"},
		{Name: "misbannotify", Module: "Misban", Category: registry.CategoryAdmin, Help: "toggle rogue-admin notifications"},

		{Name: "warn", Module: "Warnings", Category: registry.CategoryAdmin, Help: "warn the replied user"},
		{Name: "dwarn", Module: "Warnings", Category: registry.CategoryAdmin, Help: "warn and delete the replied message"},
		{Name: "swarn", Module: "Warnings", Category: registry.CategoryAdmin, Help: "silently warn: delete both messages"},
		{Name: "rmwarn", Module: "Warnings", Category: registry.CategoryAdmin, Help: "remove the user's latest warning"},
		{Name: "resetwarns", Module: "Warnings", Category: registry.CategoryAdmin, Help: "clear the user's warnings"},
		{Name: "resetallwarns", Module: "Warnings", Category: registry.CategoryAdmin, Help: "clear every warning in the chat (asks to confirm)"},
		{Name: "warns", Module: "Warnings", Category: registry.CategoryUser, Help: "show a user's warning count"},
		{Name: "setwarnlimit", Module: "Warnings", Category: registry.CategoryAdmin, Help: "set how many warnings trigger punishment"},
		{Name: "setwarnmode", Module: "Warnings", Category: registry.CategoryAdmin, Help: "set the warning punishment mode"},
		{Name: "setwarntime", Module: "Warnings", Category: registry.CategoryAdmin, Help: "set the warning expiry window, or off"},
		{Name: "warnings", Module: "Warnings", Category: registry.CategoryUser, Help: "show the warning settings"},

		{Name: "captcha", Module: "Captcha", Category: registry.CategoryAdmin, Help: "toggle the join captcha"},
		{Name: "captchamode", Module: "Captcha", Category: registry.CategoryAdmin, Help: "set the captcha style: button or math"},
		{Name: "captchatime", Module: "Captcha", Category: registry.CategoryAdmin, Help: "set how long a joiner has to solve the captcha"},

		{Name: "lock", Module: "Locks", Category: registry.CategoryAdmin, Help: "lock a content type, optionally with a punishment"},
		{Name: "unlock", Module: "Locks", Category: registry.CategoryAdmin, Help: "unlock a content type"},
		{Name: "locks", Module: "Locks", Category: registry.CategoryUser, Help: "list the active locks"},
		{Name: "lockwarns", Module: "Locks", Category: registry.CategoryAdmin, Help: "toggle lock violation notices"},

		{Name: "nightmode", Module: "NightMode", Category: registry.CategoryAdmin, Help: "set the quiet hours, or on/off/auto"},
		{Name: "nightmodeblock", Module: "NightMode", Category: registry.CategoryAdmin, Help: "set the content types blocked at night"},
		{Name: "nightmodestatus", Module: "NightMode", Category: registry.CategoryUser, Help: "show the night mode state"},

		{Name: "approve", Module: "Approvals", Category: registry.CategoryAdmin, Help: "exempt the user from moderation"},
		{Name: "unapprove", Module: "Approvals", Category: registry.CategoryAdmin, Help: "remove the user's exemption"},
		{Name: "approved", Module: "Approvals", Category: registry.CategoryAdmin, Help: "list approved users"},
		{Name: "unapproveall", Module: "Approvals", Category: registry.CategoryAdmin, Help: "clear the approval list (asks to confirm)"},

		{Name: "promote", Module: "Admins", Category: registry.CategoryAdmin, Help: "grant the user bot-admin rights"},
		{Name: "demote", Module: "Admins", Category: registry.CategoryAdmin, Help: "revoke the user's bot-admin rights"},
		{Name: "anonadmin", Module: "Admins", Category: registry.CategoryAdmin, Help: "toggle anonymous-admin commands"},
		{Name: "bans", Module: "Admins", Category: registry.CategoryAdmin, Help: "show the latest punishments"},

		{Name: "disable", Module: "Disabling", Category: registry.CategoryAdmin, Help: "disable a command in this chat"},
		{Name: "enable", Module: "Disabling", Category: registry.CategoryAdmin, Help: "re-enable a disabled command"},
		{Name: "disabled", Module: "Disabling", Category: registry.CategoryAdmin, Help: "list disabled commands"},
	}
}

// guard wraps a handler so a panic in one update never kills the loop.
func guard(name string, fn func(ctx *th.Context, update telego.Update) error) func(ctx *th.Context, update telego.Update) error {
	return func(ctx *th.Context, update telego.Update) error {
		defer func() {
			if r := recover(); r != nil {
				logger.Errorf("Recovered panic in %s handler: %v\n%s", name, r, debug.Stack())
			}
		}()
		return fn(ctx, update)
	}
}

// sendHTML posts an HTML-formatted message, logging failures instead of
// propagating them.
func (h *Handlers) sendHTML(ctx context.Context, chatID int64, text string) {
	if _, err := h.bot.SendMessage(ctx, &telego.SendMessageParams{
		ChatID:    telego.ChatID{ID: chatID},
		Text:      text,
		ParseMode: "HTML",
	}); err != nil {
		logger.Warningf("Error sending message to chat %d: %v", chatID, err)
	}
}
