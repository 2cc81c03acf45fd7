package tracker

import (
	"sync"
	"time"
)

// The trackers in this package are in-memory runtime state only. Losing
// them on restart resets flood/raid counters to zero and nothing else.

// RunTracker counts consecutive messages per chat. The run resets to
// length one whenever the speaking user changes and is cleared outright
// once a punishment fires.
type RunTracker struct {
	mu   sync.Mutex
	runs map[int64]*run
}

type run struct {
	userID     int64
	count      int
	messageIDs []int
}

func NewRunTracker() *RunTracker {
	return &RunTracker{runs: make(map[int64]*run)}
}

// Observe records a message and returns the current run length and the
// accumulated message IDs for the speaking user.
func (t *RunTracker) Observe(chatID, userID int64, messageID int) (int, []int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	r := t.runs[chatID]
	if r == nil || r.userID != userID {
		r = &run{userID: userID, count: 1, messageIDs: []int{messageID}}
		t.runs[chatID] = r
	} else {
		r.count++
		r.messageIDs = append(r.messageIDs, messageID)
	}

	ids := make([]int, len(r.messageIDs))
	copy(ids, r.messageIDs)
	return r.count, ids
}

// Clear drops the chat's current run.
func (t *RunTracker) Clear(chatID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.runs, chatID)
}

// WindowTracker keeps, per (chat, user), the timestamps and message IDs of
// recent messages pruned to a trailing window on every access.
type WindowTracker struct {
	mu      sync.Mutex
	windows map[int64]map[int64][]windowEntry
}

type windowEntry struct {
	ts        time.Time
	messageID int
}

func NewWindowTracker() *WindowTracker {
	return &WindowTracker{windows: make(map[int64]map[int64][]windowEntry)}
}

// Observe appends the message, prunes entries older than window, and
// returns the pruned count plus the windowed message IDs.
func (t *WindowTracker) Observe(chatID, userID int64, messageID int, now time.Time, window time.Duration) (int, []int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	users := t.windows[chatID]
	if users == nil {
		users = make(map[int64][]windowEntry)
		t.windows[chatID] = users
	}

	entries := append(users[userID], windowEntry{ts: now, messageID: messageID})
	kept := entries[:0]
	for _, e := range entries {
		if now.Sub(e.ts) <= window {
			kept = append(kept, e)
		}
	}
	users[userID] = kept

	ids := make([]int, len(kept))
	for i, e := range kept {
		ids[i] = e.messageID
	}
	return len(kept), ids
}

// ClearUser drops one user's window in a chat.
func (t *WindowTracker) ClearUser(chatID, userID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if users := t.windows[chatID]; users != nil {
		delete(users, userID)
	}
}

// JoinTracker keeps per-chat join timestamps pruned to a trailing window,
// for the auto-antiraid trigger.
type JoinTracker struct {
	mu    sync.Mutex
	joins map[int64][]time.Time
}

func NewJoinTracker() *JoinTracker {
	return &JoinTracker{joins: make(map[int64][]time.Time)}
}

// Observe records a join and returns how many joins the chat has seen
// within the trailing window.
func (t *JoinTracker) Observe(chatID int64, now time.Time, window time.Duration) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	entries := append(t.joins[chatID], now)
	kept := entries[:0]
	for _, ts := range entries {
		if now.Sub(ts) <= window {
			kept = append(kept, ts)
		}
	}
	t.joins[chatID] = kept
	return len(kept)
}

// Clear drops a chat's join window, done once the auto trigger fires.
func (t *JoinTracker) Clear(chatID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.joins, chatID)
}
