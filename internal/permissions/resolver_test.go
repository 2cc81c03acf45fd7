package permissions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mymmrac/telego"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tg-groupguard/internal/models"
)

type fakeAdminLister struct {
	admins map[int64][]telego.ChatMember
	err    error
	calls  int
}

func (f *fakeAdminLister) GetChatAdministrators(_ context.Context, params *telego.GetChatAdministratorsParams) ([]telego.ChatMember, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.admins[params.ChatID.ID], nil
}

type fakeSettings struct {
	byChat map[int64]*models.ChatSettings
}

func (f *fakeSettings) Settings(chatID int64) *models.ChatSettings {
	if s, ok := f.byChat[chatID]; ok {
		return s
	}
	return &models.ChatSettings{ChatID: chatID}
}

func creator(id int64) telego.ChatMember {
	return &telego.ChatMemberOwner{Status: telego.MemberStatusCreator, User: telego.User{ID: id}}
}

func admin(id int64) telego.ChatMember {
	return &telego.ChatMemberAdministrator{Status: telego.MemberStatusAdministrator, User: telego.User{ID: id}}
}

func TestIsExemptNativeAdmins(t *testing.T) {
	lister := &fakeAdminLister{admins: map[int64][]telego.ChatMember{
		-100: {creator(1), admin(2)},
	}}
	r := NewResolver(lister, &fakeSettings{}, nil, time.Minute)

	ctx := context.Background()
	assert.True(t, r.IsExempt(ctx, -100, 1))
	assert.True(t, r.IsExempt(ctx, -100, 2))
	assert.False(t, r.IsExempt(ctx, -100, 3))
}

func TestIsExemptPromotedAndApproved(t *testing.T) {
	lister := &fakeAdminLister{admins: map[int64][]telego.ChatMember{}}
	settings := &fakeSettings{byChat: map[int64]*models.ChatSettings{
		-100: {ChatID: -100, PromotedUsers: []int64{10}, ApprovedUsers: []int64{20}},
	}}
	r := NewResolver(lister, settings, nil, time.Minute)

	ctx := context.Background()
	assert.True(t, r.IsExempt(ctx, -100, 10))
	assert.True(t, r.IsExempt(ctx, -100, 20))
	assert.False(t, r.IsExempt(ctx, -100, 30))
}

func TestIsExemptAnonymousAdmin(t *testing.T) {
	lister := &fakeAdminLister{admins: map[int64][]telego.ChatMember{}}
	settings := &fakeSettings{byChat: map[int64]*models.ChatSettings{
		-100: {ChatID: -100, AllowAnonAdmin: true},
		-200: {ChatID: -200},
	}}
	r := NewResolver(lister, settings, nil, time.Minute)

	ctx := context.Background()
	assert.True(t, r.IsExempt(ctx, -100, AnonAdminSenderID))
	assert.False(t, r.IsExempt(ctx, -200, AnonAdminSenderID))
}

func TestIsOwner(t *testing.T) {
	r := NewResolver(&fakeAdminLister{}, &fakeSettings{}, []int64{777}, time.Minute)
	assert.True(t, r.IsOwner(777))
	assert.False(t, r.IsOwner(778))
}

func TestAdminListIsCached(t *testing.T) {
	lister := &fakeAdminLister{admins: map[int64][]telego.ChatMember{
		-100: {admin(2)},
	}}
	r := NewResolver(lister, &fakeSettings{}, nil, time.Minute)

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		r.IsExempt(ctx, -100, 2)
	}
	assert.Equal(t, 1, lister.calls)

	r.Invalidate(-100)
	r.IsExempt(ctx, -100, 2)
	assert.Equal(t, 2, lister.calls)
}

func TestIsCreatorDistinguishesStatus(t *testing.T) {
	lister := &fakeAdminLister{admins: map[int64][]telego.ChatMember{
		-100: {creator(1), admin(2)},
	}}
	r := NewResolver(lister, &fakeSettings{}, nil, time.Minute)

	ctx := context.Background()
	isCreator, err := r.IsCreator(ctx, -100, 1)
	require.NoError(t, err)
	assert.True(t, isCreator)

	isCreator, err = r.IsCreator(ctx, -100, 2)
	require.NoError(t, err)
	assert.False(t, isCreator)
}

func TestLookupFailureMeansNotExempt(t *testing.T) {
	lister := &fakeAdminLister{err: errors.New("network down")}
	r := NewResolver(lister, &fakeSettings{}, nil, time.Minute)

	assert.False(t, r.IsExempt(context.Background(), -100, 2))
}
