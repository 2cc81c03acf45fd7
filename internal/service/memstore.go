package service

import (
	"sync"
	"time"

	"tg-groupguard/internal/models"
)

// In-memory store implementations, used when the database is disabled.
// State is lost on restart, which mirrors how the trackers behave.

type MemoryWarningStore struct {
	mu       sync.Mutex
	warnings []*models.Warning
}

func NewMemoryWarningStore() *MemoryWarningStore {
	return &MemoryWarningStore{}
}

func (m *MemoryWarningStore) Insert(warning *models.Warning) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.warnings = append(m.warnings, warning)
	return nil
}

func (m *MemoryWarningStore) CountSince(chatID, userID int64, since time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, w := range m.warnings {
		if w.ChatID == chatID && w.UserID == userID && (since.IsZero() || w.CreatedAt.After(since)) {
			count++
		}
	}
	return count, nil
}

func (m *MemoryWarningStore) DeleteLatest(chatID, userID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
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

func (m *MemoryWarningStore) DeleteUser(chatID, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.warnings[:0]
	for _, w := range m.warnings {
		if !(w.ChatID == chatID && w.UserID == userID) {
			kept = append(kept, w)
		}
	}
	m.warnings = kept
	return nil
}

func (m *MemoryWarningStore) DeleteChat(chatID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.warnings[:0]
	for _, w := range m.warnings {
		if w.ChatID != chatID {
			kept = append(kept, w)
		}
	}
	m.warnings = kept
	return nil
}

type MemoryCaptchaStore struct {
	mu      sync.Mutex
	nextID  uint
	pending map[[2]int64]*models.PendingCaptcha
}

func NewMemoryCaptchaStore() *MemoryCaptchaStore {
	return &MemoryCaptchaStore{pending: make(map[[2]int64]*models.PendingCaptcha)}
}

func (m *MemoryCaptchaStore) Insert(pending *models.PendingCaptcha) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	pending.ID = m.nextID
	m.pending[[2]int64{pending.ChatID, pending.UserID}] = pending
	return nil
}

func (m *MemoryCaptchaStore) Get(chatID, userID int64) (*models.PendingCaptcha, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending[[2]int64{chatID, userID}], nil
}

// Pop removes and returns the record under the store lock; solve and
// timeout cannot both receive it.
func (m *MemoryCaptchaStore) Pop(chatID, userID int64) (*models.PendingCaptcha, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := [2]int64{chatID, userID}
	pending := m.pending[key]
	delete(m.pending, key)
	return pending, nil
}

func (m *MemoryCaptchaStore) Delete(id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, pending := range m.pending {
		if pending.ID == id {
			delete(m.pending, key)
		}
	}
	return nil
}

type MemoryMemberStore struct {
	mu    sync.Mutex
	joins map[[2]int64]time.Time
}

func NewMemoryMemberStore() *MemoryMemberStore {
	return &MemoryMemberStore{joins: make(map[[2]int64]time.Time)}
}

func (m *MemoryMemberStore) RecordJoin(chatID, userID int64, joinedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.joins[[2]int64{chatID, userID}] = joinedAt
	return nil
}

func (m *MemoryMemberStore) JoinTime(chatID, userID int64) (time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.joins[[2]int64{chatID, userID}], nil
}
