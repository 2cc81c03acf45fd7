package handler

import (
	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"
)

// Setup registers all update handlers on the bot handler. Message
// pipeline order is fixed: commands first, then the content filters from
// most to least specific; each stage only runs if the previous one did
// not consume the message.
func (h *Handlers) Setup(bh *th.BotHandler) {
	bh.Handle(guard("message", func(ctx *th.Context, update telego.Update) error {
		return h.handleMessage(ctx, *update.Message)
	}), th.AnyMessage())

	bh.Handle(guard("chat_member", func(ctx *th.Context, update telego.Update) error {
		return h.handleChatMemberUpdate(ctx, update)
	}), th.AnyChatMember())

	bh.Handle(guard("my_chat_member", func(ctx *th.Context, update telego.Update) error {
		return h.handleMyChatMemberUpdate(ctx, update)
	}), th.AnyMyChatMember())

	bh.Handle(guard("callback", func(ctx *th.Context, update telego.Update) error {
		return h.handleCallbackQuery(ctx, *update.CallbackQuery)
	}), th.AnyCallbackQuery())
}

// handleMessage runs one inbound message through the moderation
// pipeline.
func (h *Handlers) handleMessage(ctx *th.Context, message telego.Message) error {
	if ignoredSender(message.From) {
		return nil
	}

	if message.Chat.Type == "private" {
		return h.handlePrivateMessage(ctx, message)
	}

	if consumed, err := h.handleCommand(ctx, message); consumed {
		return err
	}

	if consumed, err := h.locks.CheckMessage(ctx.Context(), message); consumed || err != nil {
		return err
	}
	if consumed, err := h.nightmode.CheckMessage(ctx.Context(), message); consumed || err != nil {
		return err
	}
	if consumed, err := h.spamguard.CheckMessage(ctx.Context(), message); consumed || err != nil {
		return err
	}
	return h.antiflood.CheckMessage(ctx.Context(), message)
}

func (h *Handlers) handlePrivateMessage(ctx *th.Context, message telego.Message) error {
	name, args, ok := parseCommand(message.Text, h.botUsername)
	if ok && name == "help" {
		return h.cmdHelp(ctx, message, args)
	}
	h.sendHTML(ctx.Context(), message.Chat.ID, "Add me to a group and send /help there to get started.")
	return nil
}
