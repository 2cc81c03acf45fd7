package models

import "time"

// BanRecord is the audit trail of every punishment the bot executed,
// regardless of which feature requested it.
type BanRecord struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	ChatID    int64  `gorm:"index;not null"`
	UserID    int64  `gorm:"index;not null"`
	Action    string // the executor's description, e.g. "banned for 1 hour"
	Reason    string `gorm:"type:text"`
	CreatedAt time.Time
}

func (BanRecord) TableName() string {
	return "ban_records"
}
