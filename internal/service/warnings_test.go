package service

import (
	"context"
	"testing"
	"time"

	"github.com/mymmrac/telego"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tg-groupguard/internal/models"
)

func newWarningsFixture(t *testing.T, mutate func(*models.ChatSettings)) (*WarningsService, *fakeExecutor, *memWarningStore, *memBanAudit) {
	t.Helper()
	settings := NewSettingsService(nil)
	require.NoError(t, settings.Update(30, mutate))

	executor := &fakeExecutor{}
	store := &memWarningStore{}
	audit := &memBanAudit{}
	svc := NewWarningsService(settings, &fakeExempter{exempt: map[int64]bool{99: true}}, executor, store, audit)
	return svc, executor, store, audit
}

func TestWarningsPunishAtLimit(t *testing.T) {
	svc, executor, store, audit := newWarningsFixture(t, func(cs *models.ChatSettings) {})
	ctx := context.Background()
	target := telego.User{ID: 7, FirstName: "Noisy"}

	res, err := svc.Issue(ctx, 30, target, 1, "spam")
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Count)
	assert.Equal(t, 3, res.Limit)
	assert.False(t, res.Punished)

	res, err = svc.Issue(ctx, 30, target, 1, "spam again")
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Count)

	res, err = svc.Issue(ctx, 30, target, 1, "third strike")
	require.NoError(t, err)
	assert.True(t, res.Punished)
	require.Len(t, executor.calls, 1)
	assert.Equal(t, "kick", executor.calls[0].mode)

	// punishment zeroes the counter; records are gone
	assert.Equal(t, int64(0), res.Count)
	count, err := svc.Count(30, target.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
	assert.Empty(t, store.warnings)

	require.Len(t, audit.records, 1)
	assert.Equal(t, "warn limit reached", audit.records[0].Reason)
}

func TestWarningsExemptTarget(t *testing.T) {
	svc, executor, store, _ := newWarningsFixture(t, func(cs *models.ChatSettings) {})
	ctx := context.Background()

	_, err := svc.Issue(ctx, 30, telego.User{ID: 99}, 1, "no")
	assert.ErrorIs(t, err, ErrTargetExempt)
	assert.Empty(t, executor.calls)
	assert.Empty(t, store.warnings)
}

func TestWarningsExpiryWindow(t *testing.T) {
	svc, executor, _, _ := newWarningsFixture(t, func(cs *models.ChatSettings) {
		cs.WarnTimeSeconds = 3600
	})
	ctx := context.Background()
	target := telego.User{ID: 7}

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	current := base
	svc.now = func() time.Time { return current }

	_, err := svc.Issue(ctx, 30, target, 1, "old")
	require.NoError(t, err)
	_, err = svc.Issue(ctx, 30, target, 1, "old")
	require.NoError(t, err)

	// both warnings age out of the window; the next one counts as the first
	current = base.Add(2 * time.Hour)
	res, err := svc.Issue(ctx, 30, target, 1, "new")
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Count)
	assert.False(t, res.Punished)
	assert.Empty(t, executor.calls)
}

func TestWarningsRemoveLatest(t *testing.T) {
	svc, _, _, _ := newWarningsFixture(t, func(cs *models.ChatSettings) {})
	ctx := context.Background()
	target := telego.User{ID: 7}

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	current := base
	svc.now = func() time.Time { return current }

	_, err := svc.Issue(ctx, 30, target, 1, "first")
	require.NoError(t, err)
	current = current.Add(time.Minute)
	_, err = svc.Issue(ctx, 30, target, 1, "second")
	require.NoError(t, err)

	removed, err := svc.RemoveLatest(30, target.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	count, err := svc.Count(30, target.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	removed, err = svc.RemoveLatest(30, target.ID)
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = svc.RemoveLatest(30, target.ID)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestWarningsResetChat(t *testing.T) {
	svc, _, store, _ := newWarningsFixture(t, func(cs *models.ChatSettings) {})
	ctx := context.Background()

	_, err := svc.Issue(ctx, 30, telego.User{ID: 7}, 1, "a")
	require.NoError(t, err)
	_, err = svc.Issue(ctx, 30, telego.User{ID: 8}, 1, "b")
	require.NoError(t, err)

	require.NoError(t, svc.ResetChat(30))
	assert.Empty(t, store.warnings)
}

func TestWarningsCustomLimitAndMode(t *testing.T) {
	svc, executor, _, _ := newWarningsFixture(t, func(cs *models.ChatSettings) {
		cs.WarnLimit = 2
		cs.WarnMode = "tmute"
		cs.WarnModeSeconds = 7200
	})
	ctx := context.Background()
	target := telego.User{ID: 7}

	_, err := svc.Issue(ctx, 30, target, 1, "a")
	require.NoError(t, err)
	res, err := svc.Issue(ctx, 30, target, 1, "b")
	require.NoError(t, err)

	assert.True(t, res.Punished)
	require.Len(t, executor.calls, 1)
	assert.Equal(t, "tmute", executor.calls[0].mode)
	assert.Equal(t, 2*time.Hour, executor.calls[0].duration)
}
