package service

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"
)

// ConfirmService guards destructive bulk operations behind a two-step
// flow: the first invocation issues a short-lived token, and only the
// original issuer presenting that token completes the action.
type ConfirmService struct {
	ttl     time.Duration
	mu      sync.Mutex
	pending map[string]pendingConfirm
	now     func() time.Time
}

type pendingConfirm struct {
	token    string
	issuerID int64
	expires  time.Time
}

func NewConfirmService(ttl time.Duration) *ConfirmService {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &ConfirmService{
		ttl:     ttl,
		pending: make(map[string]pendingConfirm),
		now:     time.Now,
	}
}

// Issue creates a confirmation token for the named action in the chat,
// replacing any earlier token for the same action.
func (s *ConfirmService) Issue(chatID int64, action string, issuerID int64) (string, error) {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate confirmation token: %w", err)
	}
	token := hex.EncodeToString(buf)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[confirmKey(chatID, action)] = pendingConfirm{
		token:    token,
		issuerID: issuerID,
		expires:  s.now().Add(s.ttl),
	}
	return token, nil
}

// Confirm redeems a token. It succeeds only for the issuer, with the
// matching token, before expiry; success consumes the token.
func (s *ConfirmService) Confirm(chatID int64, action string, issuerID int64, token string) bool {
	key := confirmKey(chatID, action)

	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pending[key]
	if !ok {
		return false
	}
	if s.now().After(p.expires) {
		delete(s.pending, key)
		return false
	}
	if p.issuerID != issuerID || p.token != token {
		return false
	}
	delete(s.pending, key)
	return true
}

func confirmKey(chatID int64, action string) string {
	return fmt.Sprintf("%d:%s", chatID, action)
}
