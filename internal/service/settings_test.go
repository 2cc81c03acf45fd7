package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tg-groupguard/internal/models"
)

func TestSettingsNeverNil(t *testing.T) {
	svc := NewSettingsService(nil)

	settings := svc.Settings(123)
	require.NotNil(t, settings)
	assert.Equal(t, int64(123), settings.ChatID)

	// defaults come through the accessors
	assert.Equal(t, "kick", settings.GetFloodMode())
	assert.True(t, settings.GetClearFlood())
	assert.Equal(t, 3, settings.GetWarnLimit())
	assert.Equal(t, int64(86400), settings.GetQuarantineSeconds())
	assert.Equal(t, "button", settings.GetCaptchaMode())
}

func TestSettingsUpdateIdempotent(t *testing.T) {
	svc := NewSettingsService(nil)
	mutate := func(cs *models.ChatSettings) {
		cs.FloodLimit = 5
		cs.ApprovedUsers = models.AddID(cs.ApprovedUsers, 42)
	}

	require.NoError(t, svc.Update(123, mutate))
	require.NoError(t, svc.Update(123, mutate))

	settings := svc.Settings(123)
	assert.Equal(t, 5, settings.FloodLimit)
	assert.Equal(t, []int64{42}, settings.ApprovedUsers)
}

func TestSettingsUpdatePreservesOtherFields(t *testing.T) {
	svc := NewSettingsService(nil)

	require.NoError(t, svc.Update(123, func(cs *models.ChatSettings) {
		cs.FloodLimit = 5
	}))
	require.NoError(t, svc.Update(123, func(cs *models.ChatSettings) {
		cs.WarnLimit = 4
	}))

	settings := svc.Settings(123)
	assert.Equal(t, 5, settings.FloodLimit)
	assert.Equal(t, 4, settings.WarnLimit)
}

func TestSettingsUpdateDoesNotMutateSnapshot(t *testing.T) {
	svc := NewSettingsService(nil)
	require.NoError(t, svc.Update(123, func(cs *models.ChatSettings) {
		cs.FloodLimit = 5
		cs.ApprovedUsers = models.AddID(cs.ApprovedUsers, 42)
	}))

	before := svc.Settings(123)
	require.NoError(t, svc.Update(123, func(cs *models.ChatSettings) {
		cs.FloodLimit = 9
		cs.ApprovedUsers = models.RemoveID(cs.ApprovedUsers, 42)
	}))

	// the earlier snapshot is untouched; only a fresh read sees the change
	assert.Equal(t, 5, before.FloodLimit)
	assert.Equal(t, []int64{42}, before.ApprovedUsers)
	after := svc.Settings(123)
	assert.Equal(t, 9, after.FloodLimit)
	assert.Empty(t, after.ApprovedUsers)
}

func TestSettingsReset(t *testing.T) {
	svc := NewSettingsService(nil)

	require.NoError(t, svc.Update(123, func(cs *models.ChatSettings) {
		cs.FloodLimit = 5
	}))
	require.NoError(t, svc.Reset(123))

	assert.Equal(t, 0, svc.Settings(123).FloodLimit)
}
