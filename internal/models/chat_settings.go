package models

import (
	"sync"
	"time"
)

// ChatSettings holds all per-chat configuration. One row per chat.
//
// A zero value for any field means "feature default"; readers must go
// through the accessor methods rather than the raw fields so that a chat
// with no stored row behaves identically to one with an empty row.
type ChatSettings struct {
	ChatID    int64 `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	// Antiflood
	FloodLimit         int    // consecutive messages, 0 = disabled
	FloodMode          string // ban/kick/mute/tban/tmute
	FloodActionSeconds int64
	TimedFloodLimit    int
	TimedFloodSeconds  int64
	ClearFloodSet      bool // whether ClearFlood was explicitly configured
	ClearFlood         bool

	// AntiRaid
	ManualAntiraidUntil *time.Time
	RaidDurationSeconds int64
	RaidActionSeconds   int64
	AutoRaidTrigger     int // joins per minute, 0 = disabled

	// Misban (anti-betrayal)
	MisbanEnabled   bool
	MisbanMode      string // ban or kick
	MisbanNotifySet bool
	MisbanNotify    bool

	// Spam guard / quarantine
	SpamGuardEnabled  bool
	QuarantineSet     bool
	QuarantineSeconds int64

	// Warnings
	WarnLimit       int
	WarnMode        string
	WarnModeSeconds int64
	WarnTimeSeconds int64 // expiry window, 0 = warnings never expire

	// Locks
	Locks            []LockRule `gorm:"serializer:json"`
	LockWarnsEnabled bool

	// Night mode
	NightModeOverride *bool // manual on/off wins over the schedule
	NightModeStart    string
	NightModeEnd      string
	NightModeTimezone string
	NightModeBlocked  []string `gorm:"serializer:json"`

	// Captcha
	CaptchaEnabled     bool
	CaptchaMode        string // button or math
	CaptchaKickSeconds int64

	// Access lists
	AllowAnonAdmin   bool
	PromotedUsers    []int64  `gorm:"serializer:json"`
	ApprovedUsers    []int64  `gorm:"serializer:json"`
	DisabledCommands []string `gorm:"serializer:json"`
}

func (ChatSettings) TableName() string {
	return "chat_settings"
}

// Clone returns a deep copy. Writers mutate a clone and swap it in, so
// concurrent readers never observe a settings struct mid-change.
func (s *ChatSettings) Clone() *ChatSettings {
	c := *s
	c.Locks = append([]LockRule(nil), s.Locks...)
	c.NightModeBlocked = append([]string(nil), s.NightModeBlocked...)
	c.PromotedUsers = append([]int64(nil), s.PromotedUsers...)
	c.ApprovedUsers = append([]int64(nil), s.ApprovedUsers...)
	c.DisabledCommands = append([]string(nil), s.DisabledCommands...)
	if s.NightModeOverride != nil {
		v := *s.NightModeOverride
		c.NightModeOverride = &v
	}
	if s.ManualAntiraidUntil != nil {
		t := *s.ManualAntiraidUntil
		c.ManualAntiraidUntil = &t
	}
	return &c
}

// LockRule locks one content type, with an optional escalation beyond
// deleting the message.
type LockRule struct {
	Type          string `json:"type"`
	Action        string `json:"action"` // "del" or a punishment mode
	ActionSeconds int64  `json:"action_seconds,omitempty"`
}

// FindLock returns the rule locking lockType, if any.
func (s *ChatSettings) FindLock(lockType string) *LockRule {
	for i := range s.Locks {
		if s.Locks[i].Type == lockType {
			return &s.Locks[i]
		}
	}
	return nil
}

func (s *ChatSettings) GetFloodMode() string {
	if s.FloodMode == "" {
		return "kick"
	}
	return s.FloodMode
}

// GetClearFlood defaults to true: flooding messages are deleted unless
// an admin turned that off.
func (s *ChatSettings) GetClearFlood() bool {
	if !s.ClearFloodSet {
		return true
	}
	return s.ClearFlood
}

func (s *ChatSettings) GetRaidDuration() time.Duration {
	if s.RaidDurationSeconds <= 0 {
		return 6 * time.Hour
	}
	return time.Duration(s.RaidDurationSeconds) * time.Second
}

func (s *ChatSettings) GetRaidActionDuration() time.Duration {
	if s.RaidActionSeconds <= 0 {
		return time.Hour
	}
	return time.Duration(s.RaidActionSeconds) * time.Second
}

func (s *ChatSettings) GetMisbanMode() string {
	if s.MisbanMode != "ban" {
		return "kick"
	}
	return "ban"
}

func (s *ChatSettings) GetMisbanNotify() bool {
	if !s.MisbanNotifySet {
		return true
	}
	return s.MisbanNotify
}

// GetQuarantineSeconds defaults to 24 hours; an explicit 0 disables it.
func (s *ChatSettings) GetQuarantineSeconds() int64 {
	if !s.QuarantineSet {
		return 86400
	}
	return s.QuarantineSeconds
}

func (s *ChatSettings) GetWarnLimit() int {
	if s.WarnLimit <= 0 {
		return 3
	}
	return s.WarnLimit
}

func (s *ChatSettings) GetWarnMode() string {
	if s.WarnMode == "" {
		return "kick"
	}
	return s.WarnMode
}

func (s *ChatSettings) GetNightModeTimezone() string {
	if s.NightModeTimezone == "" {
		return "UTC"
	}
	return s.NightModeTimezone
}

func (s *ChatSettings) GetCaptchaMode() string {
	if s.CaptchaMode == "" {
		return "button"
	}
	return s.CaptchaMode
}

func (s *ChatSettings) GetCaptchaKickSeconds() int64 {
	if s.CaptchaKickSeconds <= 0 {
		return 300
	}
	return s.CaptchaKickSeconds
}

func (s *ChatSettings) IsPromoted(userID int64) bool {
	return containsID(s.PromotedUsers, userID)
}

func (s *ChatSettings) IsApproved(userID int64) bool {
	return containsID(s.ApprovedUsers, userID)
}

func (s *ChatSettings) IsCommandDisabled(command string) bool {
	for _, c := range s.DisabledCommands {
		if c == command {
			return true
		}
	}
	return false
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// AddID appends id to ids if absent, set-style.
func AddID(ids []int64, id int64) []int64 {
	if containsID(ids, id) {
		return ids
	}
	return append(ids, id)
}

// RemoveID deletes id from ids if present.
func RemoveID(ids []int64, id int64) []int64 {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

// SettingsManager is the in-memory cache in front of the settings table.
type SettingsManager struct {
	settings map[int64]*ChatSettings
	mu       sync.RWMutex
}

func NewSettingsManager() *SettingsManager {
	return &SettingsManager{
		settings: make(map[int64]*ChatSettings),
	}
}

func (m *SettingsManager) Get(chatID int64) *ChatSettings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.settings[chatID]
}

func (m *SettingsManager) Put(s *ChatSettings) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings[s.ChatID] = s
}

func (m *SettingsManager) Remove(chatID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.settings, chatID)
}
