package permissions

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/mymmrac/telego"

	"tg-groupguard/internal/logger"
	"tg-groupguard/internal/models"
)

// AnonAdminSenderID is the sentinel sender Telegram substitutes for
// anonymous chat admins.
const AnonAdminSenderID int64 = 1087968824

// AdminLister is the slice of the transport the resolver needs.
// *telego.Bot satisfies it.
type AdminLister interface {
	GetChatAdministrators(ctx context.Context, params *telego.GetChatAdministratorsParams) ([]telego.ChatMember, error)
}

// SettingsSource supplies per-chat settings for the list-based checks.
type SettingsSource interface {
	Settings(chatID int64) *models.ChatSettings
}

// Resolver answers "is this user exempt from moderation" and "is this
// user the bot owner". Native-admin lookups are cached per chat with a
// short TTL; a staleness window is an accepted tradeoff for call volume.
type Resolver struct {
	transport AdminLister
	settings  SettingsSource
	owners    map[int64]bool
	cache     *expirable.LRU[int64, map[int64]string]
}

// NewResolver builds a resolver. ttl bounds how stale the native-admin
// cache may be.
func NewResolver(transport AdminLister, settings SettingsSource, owners []int64, ttl time.Duration) *Resolver {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	ownerSet := make(map[int64]bool, len(owners))
	for _, id := range owners {
		ownerSet[id] = true
	}
	return &Resolver{
		transport: transport,
		settings:  settings,
		owners:    ownerSet,
		cache:     expirable.NewLRU[int64, map[int64]string](2048, nil, ttl),
	}
}

// IsOwner checks the static bot-owner set.
func (r *Resolver) IsOwner(userID int64) bool {
	return r.owners[userID]
}

// IsExempt reports whether the user is off-limits to moderation features:
// chat creator, native admin, bot-promoted admin, anonymous admin in a
// chat that allows them, or approved user. Callers must short-circuit
// before taking any action when this is true.
func (r *Resolver) IsExempt(ctx context.Context, chatID, userID int64) bool {
	settings := r.settings.Settings(chatID)

	if userID == AnonAdminSenderID {
		return settings.AllowAnonAdmin
	}
	if settings.IsPromoted(userID) || settings.IsApproved(userID) {
		return true
	}

	isAdmin, err := r.IsNativeAdmin(ctx, chatID, userID)
	if err != nil {
		logger.Warningf("admin lookup failed for chat %d: %v", chatID, err)
		return false
	}
	return isAdmin
}

// IsNativeAdmin reports whether the user is a creator or administrator in
// the chat's own admin list, ignoring the bot's promoted/approved lists.
func (r *Resolver) IsNativeAdmin(ctx context.Context, chatID, userID int64) (bool, error) {
	admins, err := r.chatAdmins(ctx, chatID)
	if err != nil {
		return false, err
	}
	_, ok := admins[userID]
	return ok, nil
}

// IsCreator reports whether the user is the chat creator.
func (r *Resolver) IsCreator(ctx context.Context, chatID, userID int64) (bool, error) {
	admins, err := r.chatAdmins(ctx, chatID)
	if err != nil {
		return false, err
	}
	return admins[userID] == telego.MemberStatusCreator, nil
}

// IsChatAdmin is the gate for admin configuration commands: native admin,
// bot-promoted admin, allowed anonymous admin, or bot owner.
func (r *Resolver) IsChatAdmin(ctx context.Context, chatID, userID int64) bool {
	if r.IsOwner(userID) {
		return true
	}
	settings := r.settings.Settings(chatID)
	if userID == AnonAdminSenderID {
		return settings.AllowAnonAdmin
	}
	if settings.IsPromoted(userID) {
		return true
	}
	isAdmin, err := r.IsNativeAdmin(ctx, chatID, userID)
	if err != nil {
		logger.Warningf("admin lookup failed for chat %d: %v", chatID, err)
		return false
	}
	return isAdmin
}

// chatAdmins returns userID -> member status for the chat's admin list,
// from cache when fresh.
func (r *Resolver) chatAdmins(ctx context.Context, chatID int64) (map[int64]string, error) {
	if cached, ok := r.cache.Get(chatID); ok {
		return cached, nil
	}

	list, err := r.transport.GetChatAdministrators(ctx, &telego.GetChatAdministratorsParams{
		ChatID: telego.ChatID{ID: chatID},
	})
	if err != nil {
		return nil, err
	}

	admins := make(map[int64]string, len(list))
	for _, member := range list {
		admins[member.MemberUser().ID] = member.MemberStatus()
	}
	r.cache.Add(chatID, admins)
	return admins, nil
}

// Invalidate drops the cached admin list for a chat. The cache otherwise
// expires by time, not events.
func (r *Resolver) Invalidate(chatID int64) {
	r.cache.Remove(chatID)
}
