package service

import (
	"context"
	"time"

	"github.com/mymmrac/telego"

	"tg-groupguard/internal/models"
	"tg-groupguard/internal/scheduler"
)

// Messenger is the slice of the transport the feature services need for
// announcements and deletions. *telego.Bot satisfies it.
type Messenger interface {
	SendMessage(ctx context.Context, params *telego.SendMessageParams) (*telego.Message, error)
	DeleteMessage(ctx context.Context, params *telego.DeleteMessageParams) error
}

// Exempter answers whether moderation must leave a user alone.
type Exempter interface {
	IsExempt(ctx context.Context, chatID, userID int64) bool
}

// PunishmentExecutor is the uniform punishment contract every feature
// funnels through.
type PunishmentExecutor interface {
	Execute(ctx context.Context, chatID, userID int64, mode string, duration time.Duration) (ok bool, description string)
}

// JobScheduler runs named cancelable jobs.
type JobScheduler interface {
	RunOnce(name string, delay time.Duration, data scheduler.JobData, job scheduler.Job)
	Cancel(name string)
}

// WarningStore persists warning records.
type WarningStore interface {
	Insert(warning *models.Warning) error
	CountSince(chatID, userID int64, since time.Time) (int64, error)
	DeleteLatest(chatID, userID int64) (bool, error)
	DeleteUser(chatID, userID int64) error
	DeleteChat(chatID int64) error
}

// CaptchaStore persists pending captchas. Pop must be atomic: of the
// solve path and the timeout job, only one may receive the record.
type CaptchaStore interface {
	Insert(pending *models.PendingCaptcha) error
	Get(chatID, userID int64) (*models.PendingCaptcha, error)
	Pop(chatID, userID int64) (*models.PendingCaptcha, error)
	Delete(id uint) error
}

// MemberStore persists join timestamps for the quarantine window.
type MemberStore interface {
	RecordJoin(chatID, userID int64, joinedAt time.Time) error
	JoinTime(chatID, userID int64) (time.Time, error)
}

// BanAudit appends punishment audit records.
type BanAudit interface {
	Insert(record *models.BanRecord) error
}

// BanLog reads back the punishment audit trail.
type BanLog interface {
	RecentForChat(chatID int64, limit int) ([]*models.BanRecord, error)
}
