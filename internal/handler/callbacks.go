package handler

import (
	"strings"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"

	"tg-groupguard/internal/logger"
	"tg-groupguard/internal/service"
)

// handleCallbackQuery routes inline keyboard clicks. Captcha answers are
// the only callbacks registered.
func (h *Handlers) handleCallbackQuery(ctx *th.Context, query telego.CallbackQuery) error {
	if strings.HasPrefix(query.Data, "captcha:answer:") {
		return h.handleCaptchaCallback(ctx, query)
	}
	return h.answerCallback(ctx, query.ID, "")
}

func (h *Handlers) handleCaptchaCallback(ctx *th.Context, query telego.CallbackQuery) error {
	answer := strings.TrimPrefix(query.Data, "captcha:answer:")

	message := query.Message
	if message == nil {
		return h.answerCallback(ctx, query.ID, "")
	}
	chatID := message.GetChat().ID

	outcome, err := h.captcha.HandleCallback(ctx.Context(), chatID, query.From, answer)
	if err != nil {
		logger.Warningf("Error handling captcha answer in chat %d: %v", chatID, err)
		return h.answerCallback(ctx, query.ID, "Something went wrong, try again.")
	}

	switch outcome {
	case service.CaptchaSolved:
		return h.answerCallback(ctx, query.ID, "Welcome! You can talk now.")
	case service.CaptchaWrong:
		return h.answerCallback(ctx, query.ID, "That's not right, try again.")
	default:
		return h.answerCallback(ctx, query.ID, "This captcha isn't for you.")
	}
}

func (h *Handlers) answerCallback(ctx *th.Context, queryID, text string) error {
	return h.bot.AnswerCallbackQuery(ctx.Context(), &telego.AnswerCallbackQueryParams{
		CallbackQueryID: queryID,
		Text:            text,
	})
}
