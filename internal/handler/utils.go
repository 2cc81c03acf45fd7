package handler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mymmrac/telego"

	"tg-groupguard/internal/permissions"
)

// ignoredSender reports whether messages from this sender are dropped
// before any processing. Bots are ignored, except the sender Telegram
// substitutes for anonymous chat admins.
func ignoredSender(from *telego.User) bool {
	if from == nil {
		return true
	}
	return from.IsBot && from.ID != permissions.AnonAdminSenderID
}

// parseCommand splits "/name@bot arg arg" into its parts. Returns ok
// false for non-command text or commands addressed to another bot.
func parseCommand(text, botUsername string) (string, []string, bool) {
	if !strings.HasPrefix(text, "/") {
		return "", nil, false
	}

	fields := strings.Fields(text)
	name := strings.TrimPrefix(fields[0], "/")
	if at := strings.Index(name, "@"); at >= 0 {
		mention := name[at+1:]
		name = name[:at]
		if botUsername != "" && !strings.EqualFold(mention, botUsername) {
			return "", nil, false
		}
	}
	if name == "" {
		return "", nil, false
	}
	return strings.ToLower(name), fields[1:], true
}

// targetUser resolves the user a command acts on: the replied-to message
// author, or a numeric user ID as the first argument. The remaining
// arguments are returned for use as e.g. a reason.
func targetUser(message telego.Message, args []string) (telego.User, []string, error) {
	if message.ReplyToMessage != nil && message.ReplyToMessage.From != nil {
		return *message.ReplyToMessage.From, args, nil
	}
	if len(args) > 0 {
		if id, err := strconv.ParseInt(args[0], 10, 64); err == nil {
			return telego.User{ID: id, FirstName: args[0]}, args[1:], nil
		}
	}
	return telego.User{}, nil, fmt.Errorf("reply to a message or pass a user ID")
}

// parseOnOff maps the usual toggle spellings to a bool.
func parseOnOff(value string) (bool, error) {
	switch strings.ToLower(value) {
	case "on", "yes", "true", "1":
		return true, nil
	case "off", "no", "false", "0":
		return false, nil
	}
	return false, fmt.Errorf("expected on or off, got %q", value)
}

// onOffWord renders a bool the way parseOnOff reads it.
func onOffWord(value bool) string {
	if value {
		return "on"
	}
	return "off"
}
