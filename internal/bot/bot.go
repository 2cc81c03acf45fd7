package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"

	"tg-groupguard/internal/config"
	"tg-groupguard/internal/handler"
	"tg-groupguard/internal/logger"
	"tg-groupguard/internal/moderation"
	"tg-groupguard/internal/permissions"
	"tg-groupguard/internal/registry"
	"tg-groupguard/internal/scheduler"
	"tg-groupguard/internal/service"
	"tg-groupguard/internal/storage"
)

// BotService bundles the running bot and its update handler.
type BotService struct {
	Bot     *telego.Bot
	Handler *th.BotHandler

	sched *scheduler.Scheduler
}

// Start starts the bot handler loop.
func (b *BotService) Start() {
	b.Handler.Start()
}

// Stop stops the bot handler and the job scheduler.
func (b *BotService) Stop() {
	b.Handler.Stop()
	b.sched.Stop()
}

// Initialize builds the bot, wires every service, and sets up the
// webhook server.
func Initialize(ctx context.Context, cfg *config.Config) (*BotService, *WebhookServer, error) {
	if cfg.Bot.Token == "" {
		return nil, nil, fmt.Errorf("bot token is required")
	}

	bot, err := telego.NewBot(cfg.Bot.Token, telego.WithDefaultLogger(false, true))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize bot: %w", err)
	}

	botUser, err := bot.GetMe(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get bot info: %w", err)
	}
	logger.Infof("Authorized on account %s", botUser.Username)

	commands, err := registry.Build(handler.CommandDeclarations())
	if err != nil {
		return nil, nil, fmt.Errorf("invalid command table: %w", err)
	}
	setBotCommands(ctx, bot, commands)

	handlers, sched, err := wireServices(cfg, bot, *botUser, commands)
	if err != nil {
		return nil, nil, err
	}

	if err := bot.DeleteWebhook(ctx, &telego.DeleteWebhookParams{}); err != nil {
		return nil, nil, fmt.Errorf("failed to delete existing webhook: %w", err)
	}

	secretToken := "secure_webhook_token_" + cfg.Bot.Token[len(cfg.Bot.Token)-6:]
	bh, server, err := SetupWebhook(ctx, bot, cfg.Bot.Webhook.Endpoint, cfg.Bot.Webhook.ListenPort,
		secretToken, cfg.Bot.Webhook.CertFile, cfg.Bot.Webhook.KeyFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to setup webhook: %w", err)
	}

	handlers.Setup(bh)

	return &BotService{
		Bot:     bot,
		Handler: bh,
		sched:   sched,
	}, server, nil
}

// wireServices constructs the service graph behind the handlers.
func wireServices(cfg *config.Config, bot *telego.Bot, botUser telego.User, commands *registry.Registry) (*handler.Handlers, *scheduler.Scheduler, error) {
	var (
		settingsRepo *storage.SettingsRepository
		warningStore service.WarningStore
		captchaStore service.CaptchaStore
		memberStore  service.MemberStore
		banAudit     service.BanAudit
		banLog       service.BanLog
	)
	if db := storage.GetDB(); db != nil {
		settingsRepo = storage.NewSettingsRepository(db)
		warningStore = storage.NewWarningRepository(db)
		captchaStore = storage.NewCaptchaRepository(db)
		memberStore = storage.NewMemberRepository(db)
		banRepo := storage.NewBanRepository(db)
		banAudit = banRepo
		banLog = banRepo
	} else {
		warningStore = service.NewMemoryWarningStore()
		captchaStore = service.NewMemoryCaptchaStore()
		memberStore = service.NewMemoryMemberStore()
	}

	settings := service.NewSettingsService(settingsRepo)
	if err := settings.WarmCache(); err != nil {
		return nil, nil, fmt.Errorf("failed to load chat settings: %w", err)
	}

	perms := permissions.NewResolver(bot, settings, cfg.Owners,
		time.Duration(cfg.Moderation.AdminCacheTTLSeconds)*time.Second)
	executor := moderation.NewExecutor(bot, time.Duration(cfg.Moderation.KickGraceSeconds)*time.Second)
	sched := scheduler.New()
	confirm := service.NewConfirmService(time.Duration(cfg.Moderation.ConfirmExpirySeconds) * time.Second)
	access := service.NewAccessService(settings, commands)

	svcs := handler.Services{
		Perms:     perms,
		Settings:  settings,
		Access:    access,
		Confirm:   confirm,
		Antiflood: service.NewAntifloodService(settings, perms, executor, bot, banAudit),
		Antiraid:  service.NewAntiraidService(settings, executor, bot, banAudit),
		SpamGuard: service.NewSpamGuardService(settings, perms, bot, memberStore, sched),
		Misban:    service.NewMisbanService(settings, perms, executor, bot, banAudit),
		Warnings:  service.NewWarningsService(settings, perms, executor, warningStore, banAudit),
		Captcha:   service.NewCaptchaService(settings, bot, executor, bot, captchaStore, sched),
		Locks:     service.NewLocksService(settings, perms, executor, bot, banAudit, sched),
		NightMode: service.NewNightModeService(settings, perms, bot),
		BanLog:    banLog,
	}

	return handler.NewHandlers(cfg, bot, botUser, commands, svcs), sched, nil
}

// setBotCommands publishes the user-facing commands to the Telegram
// command menu. Admin commands stay out of the menu.
func setBotCommands(ctx context.Context, bot *telego.Bot, commands *registry.Registry) {
	var menu []telego.BotCommand
	for _, module := range commands.Modules() {
		for _, cmd := range commands.ModuleCommands(module) {
			if cmd.Category != registry.CategoryUser {
				continue
			}
			menu = append(menu, telego.BotCommand{
				Command:     cmd.Name,
				Description: cmd.Help,
			})
		}
	}

	if err := bot.SetMyCommands(ctx, &telego.SetMyCommandsParams{Commands: menu}); err != nil {
		logger.Warningf("Failed to set bot commands: %v", err)
	}
}
