package moderation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mymmrac/telego"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTransport records restriction calls and simulates membership state.
type fakeTransport struct {
	banErr      error
	restrictErr error
	bans        []*telego.BanChatMemberParams
	restricts   []*telego.RestrictChatMemberParams
}

func (f *fakeTransport) BanChatMember(_ context.Context, params *telego.BanChatMemberParams) error {
	if f.banErr != nil {
		return f.banErr
	}
	f.bans = append(f.bans, params)
	return nil
}

func (f *fakeTransport) RestrictChatMember(_ context.Context, params *telego.RestrictChatMemberParams) error {
	if f.restrictErr != nil {
		return f.restrictErr
	}
	f.restricts = append(f.restricts, params)
	return nil
}

// bannedAt reports whether the latest ban on user is active at t.
func (f *fakeTransport) bannedAt(userID int64, t time.Time) bool {
	for i := len(f.bans) - 1; i >= 0; i-- {
		if f.bans[i].UserID != userID {
			continue
		}
		until := f.bans[i].UntilDate
		return until == 0 || t.Unix() < until
	}
	return false
}

func newTestExecutor(transport *fakeTransport, at time.Time) *Executor {
	e := NewExecutor(transport, 45*time.Second)
	e.now = func() time.Time { return at }
	return e
}

func TestExecuteBanIsPermanent(t *testing.T) {
	transport := &fakeTransport{}
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	e := newTestExecutor(transport, now)

	ok, desc := e.Execute(context.Background(), -100, 42, ModeBan, 0)
	require.True(t, ok)
	assert.Equal(t, "banned", desc)
	assert.True(t, transport.bannedAt(42, now))
	assert.True(t, transport.bannedAt(42, now.Add(100*24*time.Hour)))
}

func TestExecuteKickLiftsAfterGrace(t *testing.T) {
	transport := &fakeTransport{}
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	e := newTestExecutor(transport, now)

	ok, desc := e.Execute(context.Background(), -100, 42, ModeKick, 0)
	require.True(t, ok)
	assert.Equal(t, "kicked", desc)
	assert.True(t, transport.bannedAt(42, now.Add(10*time.Second)))
	assert.False(t, transport.bannedAt(42, now.Add(46*time.Second)), "kick must allow rejoin after the grace period")
}

func TestExecuteMute(t *testing.T) {
	transport := &fakeTransport{}
	e := newTestExecutor(transport, time.Now())

	ok, desc := e.Execute(context.Background(), -100, 42, ModeMute, 0)
	require.True(t, ok)
	assert.Equal(t, "muted", desc)
	require.Len(t, transport.restricts, 1)
	require.NotNil(t, transport.restricts[0].Permissions.CanSendMessages)
	assert.False(t, *transport.restricts[0].Permissions.CanSendMessages)
	assert.EqualValues(t, 0, transport.restricts[0].UntilDate)
}

func TestExecuteTimedModesRequirePositiveDuration(t *testing.T) {
	transport := &fakeTransport{}
	e := newTestExecutor(transport, time.Now())

	ok, desc := e.Execute(context.Background(), -100, 42, ModeTBan, 0)
	assert.False(t, ok)
	assert.Equal(t, "temporary action requires a positive duration", desc)

	ok, _ = e.Execute(context.Background(), -100, 42, ModeTMute, -time.Minute)
	assert.False(t, ok)

	assert.Empty(t, transport.bans)
	assert.Empty(t, transport.restricts)
}

func TestExecuteTBanDescription(t *testing.T) {
	transport := &fakeTransport{}
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	e := newTestExecutor(transport, now)

	ok, desc := e.Execute(context.Background(), -100, 42, ModeTBan, 3*time.Hour)
	require.True(t, ok)
	assert.Equal(t, "banned for 3 hours", desc)
	require.Len(t, transport.bans, 1)
	assert.Equal(t, now.Add(3*time.Hour).Unix(), transport.bans[0].UntilDate)
}

func TestExecuteTMuteDescription(t *testing.T) {
	transport := &fakeTransport{}
	e := newTestExecutor(transport, time.Now())

	ok, desc := e.Execute(context.Background(), -100, 42, ModeTMute, 90*time.Minute)
	require.True(t, ok)
	assert.Equal(t, "muted for 1 hour, 30 minutes", desc)
}

func TestExecuteTransportFailureIsContained(t *testing.T) {
	transport := &fakeTransport{banErr: errors.New("not enough rights")}
	e := newTestExecutor(transport, time.Now())

	ok, desc := e.Execute(context.Background(), -100, 42, ModeBan, 0)
	assert.False(t, ok)
	assert.Contains(t, desc, "not enough rights")
}

func TestExecuteRejectsUnknownMode(t *testing.T) {
	e := newTestExecutor(&fakeTransport{}, time.Now())

	ok, desc := e.Execute(context.Background(), -100, 42, "obliterate", 0)
	assert.False(t, ok)
	assert.Contains(t, desc, "invalid punishment mode")
}

func TestParseDuration(t *testing.T) {
	cases := map[string]time.Duration{
		"30s": 30 * time.Second,
		"10m": 10 * time.Minute,
		"4h":  4 * time.Hour,
		"3d":  72 * time.Hour,
		"2w":  14 * 24 * time.Hour,
	}
	for input, want := range cases {
		got, err := ParseDuration(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}

	for _, bad := range []string{"", "h", "10", "1.5h", "10x", "h10"} {
		_, err := ParseDuration(bad)
		assert.Error(t, err, bad)
	}
}

func TestHumanizeDuration(t *testing.T) {
	assert.Equal(t, "45 seconds", HumanizeDuration(45*time.Second))
	assert.Equal(t, "1 hour", HumanizeDuration(time.Hour))
	assert.Equal(t, "3 days, 2 hours", HumanizeDuration(74*time.Hour))
	assert.Equal(t, "1 minute, 1 second", HumanizeDuration(61*time.Second))
	assert.Equal(t, "not set", HumanizeDuration(0))
}
