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

func newNightModeFixture(t *testing.T, mutate func(*models.ChatSettings)) (*NightModeService, *fakeMessenger) {
	t.Helper()
	settings := NewSettingsService(nil)
	require.NoError(t, settings.Update(50, mutate))

	messenger := &fakeMessenger{}
	svc := NewNightModeService(settings, &fakeExempter{exempt: map[int64]bool{99: true}}, messenger)
	return svc, messenger
}

func at(hour, minute int) time.Time {
	return time.Date(2025, 6, 1, hour, minute, 0, 0, time.UTC)
}

func TestNightModeOvernightWindow(t *testing.T) {
	settings := &models.ChatSettings{
		NightModeStart: "23:00",
		NightModeEnd:   "06:00",
	}

	assert.True(t, nightModeActive(settings, at(23, 30)))
	assert.True(t, nightModeActive(settings, at(2, 0)))
	assert.True(t, nightModeActive(settings, at(23, 0)))
	assert.False(t, nightModeActive(settings, at(6, 0)))
	assert.False(t, nightModeActive(settings, at(12, 0)))
	assert.False(t, nightModeActive(settings, at(22, 59)))
}

func TestNightModeSameDayWindow(t *testing.T) {
	settings := &models.ChatSettings{
		NightModeStart: "13:00",
		NightModeEnd:   "15:00",
	}

	assert.True(t, nightModeActive(settings, at(13, 0)))
	assert.True(t, nightModeActive(settings, at(14, 59)))
	assert.False(t, nightModeActive(settings, at(15, 0)))
	assert.False(t, nightModeActive(settings, at(12, 59)))
}

func TestNightModeOverrideWins(t *testing.T) {
	off := false
	on := true
	settings := &models.ChatSettings{
		NightModeStart:    "23:00",
		NightModeEnd:      "06:00",
		NightModeOverride: &off,
	}
	assert.False(t, nightModeActive(settings, at(23, 30)))

	settings.NightModeOverride = &on
	assert.True(t, nightModeActive(settings, at(12, 0)))
}

func TestNightModeNoSchedule(t *testing.T) {
	settings := &models.ChatSettings{}
	assert.False(t, nightModeActive(settings, at(3, 0)))
}

func TestNightModeTimezone(t *testing.T) {
	settings := &models.ChatSettings{
		NightModeStart:    "23:00",
		NightModeEnd:      "06:00",
		NightModeTimezone: "Asia/Shanghai",
	}

	// 16:00 UTC is midnight in Shanghai
	assert.True(t, nightModeActive(settings, at(16, 0)))
	assert.False(t, nightModeActive(settings, at(10, 0)))
}

func TestNightModeCheckMessageDeletesBlocked(t *testing.T) {
	svc, messenger := newNightModeFixture(t, func(cs *models.ChatSettings) {
		cs.NightModeStart = "23:00"
		cs.NightModeEnd = "06:00"
		cs.NightModeBlocked = []string{"photo", "sticker"}
	})
	svc.now = func() time.Time { return at(23, 30) }
	ctx := context.Background()

	msg := userMessage(50, 1, 400, "")
	msg.Photo = []telego.PhotoSize{{FileID: "x"}}
	consumed, err := svc.CheckMessage(ctx, msg)
	require.NoError(t, err)
	assert.True(t, consumed)
	require.Len(t, messenger.deleted, 1)
	assert.Equal(t, 400, messenger.deleted[0].MessageID)

	// plain text passes
	consumed, err = svc.CheckMessage(ctx, userMessage(50, 1, 401, "good night"))
	require.NoError(t, err)
	assert.False(t, consumed)
}

func TestNightModeBlockAll(t *testing.T) {
	svc, messenger := newNightModeFixture(t, func(cs *models.ChatSettings) {
		cs.NightModeStart = "23:00"
		cs.NightModeEnd = "06:00"
		cs.NightModeBlocked = []string{"all"}
	})
	svc.now = func() time.Time { return at(2, 0) }
	ctx := context.Background()

	consumed, err := svc.CheckMessage(ctx, userMessage(50, 1, 402, "anything"))
	require.NoError(t, err)
	assert.True(t, consumed)
	assert.Len(t, messenger.deleted, 1)
}

func TestNightModeInactiveOutsideWindow(t *testing.T) {
	svc, messenger := newNightModeFixture(t, func(cs *models.ChatSettings) {
		cs.NightModeStart = "23:00"
		cs.NightModeEnd = "06:00"
		cs.NightModeBlocked = []string{"all"}
	})
	svc.now = func() time.Time { return at(12, 0) }
	ctx := context.Background()

	consumed, err := svc.CheckMessage(ctx, userMessage(50, 1, 403, "hello"))
	require.NoError(t, err)
	assert.False(t, consumed)
	assert.Empty(t, messenger.deleted)
}

func TestNightModeExemptUser(t *testing.T) {
	svc, messenger := newNightModeFixture(t, func(cs *models.ChatSettings) {
		cs.NightModeStart = "23:00"
		cs.NightModeEnd = "06:00"
		cs.NightModeBlocked = []string{"all"}
	})
	svc.now = func() time.Time { return at(2, 0) }
	ctx := context.Background()

	consumed, err := svc.CheckMessage(ctx, userMessage(50, 99, 404, "admin talk"))
	require.NoError(t, err)
	assert.False(t, consumed)
	assert.Empty(t, messenger.deleted)
}

func TestNightModeSetScheduleValidates(t *testing.T) {
	svc, _ := newNightModeFixture(t, func(cs *models.ChatSettings) {})

	assert.Error(t, svc.SetSchedule(50, "25:00", "06:00", ""))
	assert.Error(t, svc.SetSchedule(50, "23:00", "06:00", "Mars/Olympus"))
	assert.NoError(t, svc.SetSchedule(50, "23:00", "06:00", "Europe/Berlin"))
}

func TestNightModeSetScheduleClearsOverride(t *testing.T) {
	svc, _ := newNightModeFixture(t, func(cs *models.ChatSettings) {})

	require.NoError(t, svc.Override(50, true))
	assert.True(t, svc.Active(50))

	require.NoError(t, svc.SetSchedule(50, "23:00", "06:00", ""))
	svc.now = func() time.Time { return at(12, 0) }
	assert.False(t, svc.Active(50))
}

func TestNightModeBlockAllButNoBlockedListConfigured(t *testing.T) {
	svc, messenger := newNightModeFixture(t, func(cs *models.ChatSettings) {
		cs.NightModeStart = "23:00"
		cs.NightModeEnd = "06:00"
	})
	svc.now = func() time.Time { return at(2, 0) }
	ctx := context.Background()

	consumed, err := svc.CheckMessage(ctx, userMessage(50, 1, 405, "hi"))
	require.NoError(t, err)
	assert.False(t, consumed)
	assert.Empty(t, messenger.deleted)
}
