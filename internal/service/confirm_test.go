package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfirmHappyPath(t *testing.T) {
	svc := NewConfirmService(time.Minute)

	token, err := svc.Issue(10, "resetallwarns", 1)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	assert.True(t, svc.Confirm(10, "resetallwarns", 1, token))
	// consumed: a second redemption fails
	assert.False(t, svc.Confirm(10, "resetallwarns", 1, token))
}

func TestConfirmWrongIssuer(t *testing.T) {
	svc := NewConfirmService(time.Minute)

	token, err := svc.Issue(10, "unapproveall", 1)
	require.NoError(t, err)

	assert.False(t, svc.Confirm(10, "unapproveall", 2, token))
	// still live for the real issuer
	assert.True(t, svc.Confirm(10, "unapproveall", 1, token))
}

func TestConfirmWrongToken(t *testing.T) {
	svc := NewConfirmService(time.Minute)

	_, err := svc.Issue(10, "unapproveall", 1)
	require.NoError(t, err)

	assert.False(t, svc.Confirm(10, "unapproveall", 1, "deadbeef"))
}

func TestConfirmExpiry(t *testing.T) {
	svc := NewConfirmService(time.Minute)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	current := base
	svc.now = func() time.Time { return current }

	token, err := svc.Issue(10, "resetallwarns", 1)
	require.NoError(t, err)

	current = base.Add(2 * time.Minute)
	assert.False(t, svc.Confirm(10, "resetallwarns", 1, token))
}

func TestConfirmReissueReplaces(t *testing.T) {
	svc := NewConfirmService(time.Minute)

	first, err := svc.Issue(10, "resetallwarns", 1)
	require.NoError(t, err)
	second, err := svc.Issue(10, "resetallwarns", 1)
	require.NoError(t, err)

	assert.False(t, svc.Confirm(10, "resetallwarns", 1, first))
	assert.True(t, svc.Confirm(10, "resetallwarns", 1, second))
}

func TestConfirmScopedByChatAndAction(t *testing.T) {
	svc := NewConfirmService(time.Minute)

	token, err := svc.Issue(10, "resetallwarns", 1)
	require.NoError(t, err)

	assert.False(t, svc.Confirm(11, "resetallwarns", 1, token))
	assert.False(t, svc.Confirm(10, "unapproveall", 1, token))
	assert.True(t, svc.Confirm(10, "resetallwarns", 1, token))
}
