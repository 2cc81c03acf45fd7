package models

import "time"

// PendingCaptcha marks a user as muted pending verification. At most one
// live record per (chat, user); its existence is the state, so the solve
// path and the timeout job race on who deletes it first.
type PendingCaptcha struct {
	ID               uint  `gorm:"primaryKey;autoIncrement"`
	ChatID           int64 `gorm:"index:idx_captcha_chat_user,unique"`
	UserID           int64 `gorm:"index:idx_captcha_chat_user,unique"`
	ChallengeMessage int
	CorrectAnswer    string
	CreatedAt        time.Time
}

func (PendingCaptcha) TableName() string {
	return "pending_captchas"
}
