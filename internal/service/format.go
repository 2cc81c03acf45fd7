package service

import (
	"fmt"
	"strings"

	"github.com/mymmrac/telego"
)

// LinkedUserName returns an HTML profile link for a user, safe to embed
// in ParseMode HTML messages.
func LinkedUserName(user telego.User) string {
	displayName := user.FirstName
	if user.LastName != "" {
		displayName += " " + user.LastName
	}

	displayName = strings.ReplaceAll(displayName, "&", "&amp;")
	displayName = strings.ReplaceAll(displayName, "<", "&lt;")
	displayName = strings.ReplaceAll(displayName, ">", "&gt;")

	return fmt.Sprintf("<a href=\"tg://user?id=%d\">%s</a>", user.ID, displayName)
}

// messageContentTypes classifies a message into the content-type keywords
// used by locks, night mode, and the spam guard.
func messageContentTypes(message telego.Message) []string {
	var types []string
	if message.ForwardOrigin != nil {
		types = append(types, "forward")
	}
	if len(message.Photo) > 0 {
		types = append(types, "photo")
	}
	if message.Video != nil {
		types = append(types, "video")
	}
	if message.Document != nil {
		types = append(types, "document")
	}
	if message.Sticker != nil {
		types = append(types, "sticker")
	}
	if message.Animation != nil {
		types = append(types, "animation")
	}
	if message.Audio != nil {
		types = append(types, "audio")
	}
	if message.Voice != nil {
		types = append(types, "voice")
	}
	if message.VideoNote != nil {
		types = append(types, "videonote")
	}
	if message.Poll != nil {
		types = append(types, "poll")
	}
	for _, entity := range append(message.Entities, message.CaptionEntities...) {
		if entity.Type == telego.EntityTypeURL || entity.Type == telego.EntityTypeTextLink {
			types = append(types, "url")
			break
		}
	}
	return types
}
