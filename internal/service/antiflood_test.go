package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tg-groupguard/internal/models"
)

func newAntifloodFixture(t *testing.T, mutate func(*models.ChatSettings)) (*AntifloodService, *fakeExecutor, *fakeMessenger, *memBanAudit) {
	t.Helper()
	settings := NewSettingsService(nil)
	require.NoError(t, settings.Update(10, mutate))

	executor := &fakeExecutor{}
	messenger := &fakeMessenger{}
	audit := &memBanAudit{}
	svc := NewAntifloodService(settings, &fakeExempter{exempt: map[int64]bool{99: true}}, executor, messenger, audit)
	return svc, executor, messenger, audit
}

func TestAntifloodConsecutiveRun(t *testing.T) {
	svc, executor, messenger, audit := newAntifloodFixture(t, func(cs *models.ChatSettings) {
		cs.FloodLimit = 3
	})
	ctx := context.Background()

	require.NoError(t, svc.CheckMessage(ctx, userMessage(10, 1, 101, "a")))
	require.NoError(t, svc.CheckMessage(ctx, userMessage(10, 1, 102, "b")))
	assert.Empty(t, executor.calls)

	require.NoError(t, svc.CheckMessage(ctx, userMessage(10, 1, 103, "c")))
	require.Len(t, executor.calls, 1)
	assert.Equal(t, int64(1), executor.calls[0].userID)
	assert.Equal(t, "kick", executor.calls[0].mode)

	// clear_flood defaults on: the run's messages are deleted
	assert.ElementsMatch(t, []int{101, 102, 103}, messenger.deletedIDs())
	require.Len(t, audit.records, 1)
	assert.Equal(t, "flooding", audit.records[0].Reason)
}

func TestAntifloodRunResetByOtherSpeaker(t *testing.T) {
	svc, executor, _, _ := newAntifloodFixture(t, func(cs *models.ChatSettings) {
		cs.FloodLimit = 3
	})
	ctx := context.Background()

	require.NoError(t, svc.CheckMessage(ctx, userMessage(10, 1, 101, "a")))
	require.NoError(t, svc.CheckMessage(ctx, userMessage(10, 1, 102, "b")))
	require.NoError(t, svc.CheckMessage(ctx, userMessage(10, 2, 103, "hi")))
	require.NoError(t, svc.CheckMessage(ctx, userMessage(10, 1, 104, "c")))
	require.NoError(t, svc.CheckMessage(ctx, userMessage(10, 1, 105, "d")))

	assert.Empty(t, executor.calls)
}

func TestAntifloodTimedWindow(t *testing.T) {
	svc, executor, _, _ := newAntifloodFixture(t, func(cs *models.ChatSettings) {
		cs.TimedFloodLimit = 5
		cs.TimedFloodSeconds = 30
	})
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	current := base
	svc.now = func() time.Time { return current }

	// spread two messages outside the window; they must not count
	require.NoError(t, svc.CheckMessage(ctx, userMessage(10, 1, 100, "x")))
	current = base.Add(31 * time.Second)
	for i := 0; i < 4; i++ {
		current = current.Add(time.Second)
		require.NoError(t, svc.CheckMessage(ctx, userMessage(10, 1, 101+i, "x")))
	}
	assert.Empty(t, executor.calls)

	current = current.Add(time.Second)
	require.NoError(t, svc.CheckMessage(ctx, userMessage(10, 1, 105, "x")))
	require.Len(t, executor.calls, 1)
}

func TestAntifloodNoDoublePunish(t *testing.T) {
	// both detectors primed to fire on the same message; only the run fires
	svc, executor, _, _ := newAntifloodFixture(t, func(cs *models.ChatSettings) {
		cs.FloodLimit = 2
		cs.TimedFloodLimit = 2
		cs.TimedFloodSeconds = 60
	})
	ctx := context.Background()

	require.NoError(t, svc.CheckMessage(ctx, userMessage(10, 1, 101, "a")))
	require.NoError(t, svc.CheckMessage(ctx, userMessage(10, 1, 102, "b")))

	assert.Len(t, executor.calls, 1)
}

func TestAntifloodExemptUser(t *testing.T) {
	svc, executor, _, _ := newAntifloodFixture(t, func(cs *models.ChatSettings) {
		cs.FloodLimit = 2
	})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, svc.CheckMessage(ctx, userMessage(10, 99, 200+i, "spam")))
	}
	assert.Empty(t, executor.calls)
}

func TestAntifloodDisabled(t *testing.T) {
	svc, executor, _, _ := newAntifloodFixture(t, func(cs *models.ChatSettings) {})
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		require.NoError(t, svc.CheckMessage(ctx, userMessage(10, 1, 300+i, "spam")))
	}
	assert.Empty(t, executor.calls)
}

func TestAntifloodFailedActionAnnounced(t *testing.T) {
	svc, executor, messenger, audit := newAntifloodFixture(t, func(cs *models.ChatSettings) {
		cs.FloodLimit = 2
	})
	executor.fail = true
	ctx := context.Background()

	require.NoError(t, svc.CheckMessage(ctx, userMessage(10, 1, 101, "a")))
	require.NoError(t, svc.CheckMessage(ctx, userMessage(10, 1, 102, "b")))

	require.Len(t, messenger.sent, 1)
	assert.Contains(t, messenger.sent[0].Text, "failed")
	assert.Empty(t, audit.records)
	assert.Empty(t, messenger.deleted)
}
