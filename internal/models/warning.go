package models

import "time"

// Warning is one issued warning. The log is append-only; the current
// warning count is always derived by counting records, never stored.
type Warning struct {
	ID        uint  `gorm:"primaryKey;autoIncrement"`
	ChatID    int64 `gorm:"index:idx_warn_chat_user"`
	UserID    int64 `gorm:"index:idx_warn_chat_user"`
	WarnerID  int64
	Reason    string `gorm:"type:text"`
	CreatedAt time.Time
}

func (Warning) TableName() string {
	return "warnings"
}
