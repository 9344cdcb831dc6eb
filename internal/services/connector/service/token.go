package service

import (
	"context"
	"sync"
	"time"

	"gcsbridge/internal/platform/logger"
	"gcsbridge/internal/services/connector/domain"
)

// tokenManager caches the current access token and refreshes it when the
// remaining lifetime drops below the safety margin. A token that a remote
// call rejects is discarded via invalidate so the next get mints a new one.
type tokenManager struct {
	src    domain.TokenPort
	margin time.Duration
	now    func() time.Time

	mu  sync.Mutex
	cur domain.Token
}

func newTokenManager(src domain.TokenPort, margin time.Duration) *tokenManager {
	return &tokenManager{src: src, margin: margin, now: time.Now}
}

// get returns a usable token value, refreshing if needed. On refresh failure
// the cached token stays discarded, so the next call tries again.
func (m *tokenManager) get(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cur.Usable(m.now(), m.margin) {
		return m.cur.Value, nil
	}

	m.cur = domain.Token{}
	tok, err := m.src.Fetch(ctx)
	if err != nil {
		return "", err
	}
	m.cur = tok
	logger.C(ctx).Debug().Time("expires_at", tok.ExpiresAt).Msg("access token refreshed")
	return tok.Value, nil
}

// invalidate discards the cached token after a remote rejection
func (m *tokenManager) invalidate() {
	m.mu.Lock()
	m.cur = domain.Token{}
	m.mu.Unlock()
}
