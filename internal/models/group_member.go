package models

import "time"

// GroupMember records when a user joined a chat, for the spam-guard
// quarantine window.
type GroupMember struct {
	ID        uint  `gorm:"primaryKey;autoIncrement"`
	ChatID    int64 `gorm:"index:idx_member_chat_user,unique"`
	UserID    int64 `gorm:"index:idx_member_chat_user,unique"`
	JoinedAt  time.Time
	UpdatedAt time.Time
}

func (GroupMember) TableName() string {
	return "group_members"
}
