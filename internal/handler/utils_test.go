package handler

import (
	"testing"

	"github.com/mymmrac/telego"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tg-groupguard/internal/models"
	"tg-groupguard/internal/permissions"
)

func TestIgnoredSender(t *testing.T) {
	assert.True(t, ignoredSender(nil))
	assert.True(t, ignoredSender(&telego.User{ID: 99, IsBot: true}))
	assert.False(t, ignoredSender(&telego.User{ID: 99}))

	// the anonymous-admin sender is a bot account but must get through,
	// or admins posting as the group could never use commands
	assert.False(t, ignoredSender(&telego.User{ID: permissions.AnonAdminSenderID, IsBot: true}))
}

func TestParseCommand(t *testing.T) {
	name, args, ok := parseCommand("/warn spamming links", "guardbot")
	require.True(t, ok)
	assert.Equal(t, "warn", name)
	assert.Equal(t, []string{"spamming", "links"}, args)

	name, _, ok = parseCommand("/Lock@GuardBot url", "guardbot")
	require.True(t, ok)
	assert.Equal(t, "lock", name)

	_, _, ok = parseCommand("/warn@otherbot", "guardbot")
	assert.False(t, ok)

	_, _, ok = parseCommand("hello there", "guardbot")
	assert.False(t, ok)

	_, _, ok = parseCommand("/", "guardbot")
	assert.False(t, ok)
}

func TestTargetUser(t *testing.T) {
	replied := telego.Message{
		ReplyToMessage: &telego.Message{From: &telego.User{ID: 42, FirstName: "Bob"}},
	}
	target, rest, err := targetUser(replied, []string{"some", "reason"})
	require.NoError(t, err)
	assert.Equal(t, int64(42), target.ID)
	assert.Equal(t, []string{"some", "reason"}, rest)

	target, rest, err = targetUser(telego.Message{}, []string{"12345", "reason"})
	require.NoError(t, err)
	assert.Equal(t, int64(12345), target.ID)
	assert.Equal(t, []string{"reason"}, rest)

	_, _, err = targetUser(telego.Message{}, nil)
	assert.Error(t, err)

	_, _, err = targetUser(telego.Message{}, []string{"notanid"})
	assert.Error(t, err)
}

func TestParseOnOff(t *testing.T) {
	for _, word := range []string{"on", "Yes", "TRUE", "1"} {
		v, err := parseOnOff(word)
		require.NoError(t, err)
		assert.True(t, v)
	}
	for _, word := range []string{"off", "No", "FALSE", "0"} {
		v, err := parseOnOff(word)
		require.NoError(t, err)
		assert.False(t, v)
	}
	_, err := parseOnOff("maybe")
	assert.Error(t, err)
}

func TestFormatBanList(t *testing.T) {
	records := []*models.BanRecord{
		{UserID: 7, Action: "banned", Reason: "flooding"},
		{UserID: 8, Action: "kicked", Reason: "captcha timeout"},
	}
	text := formatBanList(records)
	assert.Contains(t, text, "Recent punishments")
	assert.Contains(t, text, `tg://user?id=7`)
	assert.Contains(t, text, "banned")
	assert.Contains(t, text, "captcha timeout")
}

func TestJoinAndRemovalTransitions(t *testing.T) {
	assert.True(t, isJoin(telego.MemberStatusLeft, telego.MemberStatusMember))
	assert.True(t, isJoin(telego.MemberStatusBanned, telego.MemberStatusMember))
	assert.False(t, isJoin(telego.MemberStatusMember, telego.MemberStatusAdministrator))
	assert.False(t, isJoin(telego.MemberStatusRestricted, telego.MemberStatusMember))

	assert.True(t, isRemoval(telego.MemberStatusMember, telego.MemberStatusBanned))
	assert.True(t, isRemoval(telego.MemberStatusAdministrator, telego.MemberStatusLeft))
	assert.False(t, isRemoval(telego.MemberStatusLeft, telego.MemberStatusBanned))
	assert.False(t, isRemoval(telego.MemberStatusMember, telego.MemberStatusRestricted))
}
