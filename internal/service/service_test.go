package service

import (
	"context"
	"sync"
	"time"

	"github.com/mymmrac/telego"

	"tg-groupguard/internal/models"
	"tg-groupguard/internal/scheduler"
)

// Shared fakes for the feature service tests.

type executeCall struct {
	chatID   int64
	userID   int64
	mode     string
	duration time.Duration
}

type fakeExecutor struct {
	fail  bool
	calls []executeCall
}

func (f *fakeExecutor) Execute(_ context.Context, chatID, userID int64, mode string, duration time.Duration) (bool, string) {
	f.calls = append(f.calls, executeCall{chatID: chatID, userID: userID, mode: mode, duration: duration})
	if f.fail {
		return false, "failed: no rights"
	}
	return true, mode
}

type fakeMessenger struct {
	sent      []*telego.SendMessageParams
	deleted   []*telego.DeleteMessageParams
	nextMsgID int
}

func (f *fakeMessenger) SendMessage(_ context.Context, params *telego.SendMessageParams) (*telego.Message, error) {
	f.sent = append(f.sent, params)
	f.nextMsgID++
	return &telego.Message{MessageID: f.nextMsgID + 1000}, nil
}

func (f *fakeMessenger) DeleteMessage(_ context.Context, params *telego.DeleteMessageParams) error {
	f.deleted = append(f.deleted, params)
	return nil
}

func (f *fakeMessenger) deletedIDs() []int {
	ids := make([]int, 0, len(f.deleted))
	for _, d := range f.deleted {
		ids = append(ids, d.MessageID)
	}
	return ids
}

type fakeExempter struct {
	exempt map[int64]bool
}

func (f *fakeExempter) IsExempt(_ context.Context, _ int64, userID int64) bool {
	return f.exempt[userID]
}

type scheduledJob struct {
	delay time.Duration
	data  scheduler.JobData
	job   scheduler.Job
}

type fakeScheduler struct {
	jobs     map[string]scheduledJob
	canceled []string
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{jobs: make(map[string]scheduledJob)}
}

func (f *fakeScheduler) RunOnce(name string, delay time.Duration, data scheduler.JobData, job scheduler.Job) {
	f.jobs[name] = scheduledJob{delay: delay, data: data, job: job}
}

func (f *fakeScheduler) Cancel(name string) {
	f.canceled = append(f.canceled, name)
	delete(f.jobs, name)
}

// fire runs a scheduled job as if its timer elapsed.
func (f *fakeScheduler) fire(name string) bool {
	j, ok := f.jobs[name]
	if !ok {
		return false
	}
	delete(f.jobs, name)
	j.job(j.data)
	return true
}

type memWarningStore struct {
	warnings []*models.Warning
}

func (m *memWarningStore) Insert(w *models.Warning) error {
	m.warnings = append(m.warnings, w)
	return nil
}

func (m *memWarningStore) CountSince(chatID, userID int64, since time.Time) (int64, error) {
	var count int64
	for _, w := range m.warnings {
		if w.ChatID == chatID && w.UserID == userID && (since.IsZero() || w.CreatedAt.After(since)) {
			count++
		}
	}
	return count, nil
}

func (m *memWarningStore) DeleteLatest(chatID, userID int64) (bool, error) {
	latest := -1
	for i, w := range m.warnings {
		if w.ChatID == chatID && w.UserID == userID {
			if latest < 0 || w.CreatedAt.After(m.warnings[latest].CreatedAt) {
				latest = i
			}
		}
	}
	if latest < 0 {
		return false, nil
	}
	m.warnings = append(m.warnings[:latest], m.warnings[latest+1:]...)
	return true, nil
}

func (m *memWarningStore) DeleteUser(chatID, userID int64) error {
	kept := m.warnings[:0]
	for _, w := range m.warnings {
		if !(w.ChatID == chatID && w.UserID == userID) {
			kept = append(kept, w)
		}
	}
	m.warnings = kept
	return nil
}

func (m *memWarningStore) DeleteChat(chatID int64) error {
	kept := m.warnings[:0]
	for _, w := range m.warnings {
		if w.ChatID != chatID {
			kept = append(kept, w)
		}
	}
	m.warnings = kept
	return nil
}

type memCaptchaStore struct {
	mu      sync.Mutex
	pending map[[2]int64]*models.PendingCaptcha
}

func newMemCaptchaStore() *memCaptchaStore {
	return &memCaptchaStore{pending: make(map[[2]int64]*models.PendingCaptcha)}
}

func (m *memCaptchaStore) Insert(p *models.PendingCaptcha) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending[[2]int64{p.ChatID, p.UserID}] = p
	return nil
}

func (m *memCaptchaStore) Get(chatID, userID int64) (*models.PendingCaptcha, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending[[2]int64{chatID, userID}], nil
}

func (m *memCaptchaStore) Pop(chatID, userID int64) (*models.PendingCaptcha, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := [2]int64{chatID, userID}
	p := m.pending[key]
	delete(m.pending, key)
	return p, nil
}

func (m *memCaptchaStore) Delete(id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, p := range m.pending {
		if p.ID == id {
			delete(m.pending, key)
		}
	}
	return nil
}

type memMemberStore struct {
	joins map[[2]int64]time.Time
}

func newMemMemberStore() *memMemberStore {
	return &memMemberStore{joins: make(map[[2]int64]time.Time)}
}

func (m *memMemberStore) RecordJoin(chatID, userID int64, joinedAt time.Time) error {
	m.joins[[2]int64{chatID, userID}] = joinedAt
	return nil
}

func (m *memMemberStore) JoinTime(chatID, userID int64) (time.Time, error) {
	return m.joins[[2]int64{chatID, userID}], nil
}

type memBanAudit struct {
	records []*models.BanRecord
}

func (m *memBanAudit) Insert(record *models.BanRecord) error {
	m.records = append(m.records, record)
	return nil
}

// fakeRestrictor records restriction calls for the captcha tests.
type fakeRestrictor struct {
	bans      []*telego.BanChatMemberParams
	restricts []*telego.RestrictChatMemberParams
}

func (f *fakeRestrictor) BanChatMember(_ context.Context, params *telego.BanChatMemberParams) error {
	f.bans = append(f.bans, params)
	return nil
}

func (f *fakeRestrictor) RestrictChatMember(_ context.Context, params *telego.RestrictChatMemberParams) error {
	f.restricts = append(f.restricts, params)
	return nil
}

func userMessage(chatID, userID int64, messageID int, text string) telego.Message {
	return telego.Message{
		MessageID: messageID,
		Chat:      telego.Chat{ID: chatID},
		From:      &telego.User{ID: userID, FirstName: "Test"},
		Text:      text,
	}
}
