package sentinel

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentinelauth/sentinel/internal/models"
)

// mockAttemptStore implements AttemptStore over an in-memory slice,
// mirroring the repository's count-then-insert contract
type mockAttemptStore struct {
	mu       sync.Mutex
	attempts []*models.LoginAttempt
	err      error
}

func (m *mockAttemptStore) CountAndRecordAttempt(
	_ context.Context,
	attempt *models.LoginAttempt,
	since int64,
	finalize func(count int) (int, bool),
) (int, error) {
	if m.err != nil {
		return 0, m.err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for _, a := range m.attempts {
		if a.Username == attempt.Username && a.IPAddress == attempt.IPAddress && a.Timestamp >= since {
			count++
		}
	}

	attempt.BotScore, attempt.Blocked = finalize(count)
	attempt.ID = int64(len(m.attempts) + 1)
	m.attempts = append(m.attempts, attempt)
	return count, nil
}

func (m *mockAttemptStore) countFor(username, ip string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, a := range m.attempts {
		if a.Username == username && a.IPAddress == ip {
			n++
		}
	}
	return n
}

func (m *mockAttemptStore) seed(username, ip string, n int) {
	now := time.Now().Unix()
	for i := 0; i < n; i++ {
		m.attempts = append(m.attempts, &models.LoginAttempt{
			Username:  username,
			IPAddress: ip,
			Timestamp: now,
			UserAgent: "seed",
		})
	}
}

func passThrough(limited bool) (int, bool) {
	if limited {
		return 100, true
	}
	return 0, false
}

func TestRateLimiter_AllowsUnderLimit(t *testing.T) {
	store := &mockAttemptStore{}
	store.seed("alice", "1.2.3.4", 4)
	limiter := NewRateLimiter(store, 5, 5*time.Minute)

	limited, detail, err := limiter.CheckAndRecord(context.Background(), "alice", "1.2.3.4", "ua", passThrough)

	require.NoError(t, err)
	assert.False(t, limited)
	assert.Equal(t, StatusWithinLimits, detail.Status)
	assert.Equal(t, 4, detail.Data["attempts_count"])
}

func TestRateLimiter_BlocksAtMaxAttempts(t *testing.T) {
	store := &mockAttemptStore{}
	store.seed("alice", "1.2.3.4", 5)
	limiter := NewRateLimiter(store, 5, 5*time.Minute)

	limited, detail, err := limiter.CheckAndRecord(context.Background(), "alice", "1.2.3.4", "ua", passThrough)

	require.NoError(t, err)
	assert.True(t, limited)
	assert.Equal(t, StatusBlocked, detail.Status)
	assert.True(t, detail.HasFlag(FlagRateLimitExceeded))
	assert.Equal(t, 5, detail.Data["attempts_count"])
	assert.Equal(t, 5, detail.Data["max_attempts"])
	assert.Equal(t, 300, detail.Data["window_seconds"])
}

func TestRateLimiter_DifferentIPIsNotBlocked(t *testing.T) {
	store := &mockAttemptStore{}
	store.seed("alice", "1.2.3.4", 5)
	limiter := NewRateLimiter(store, 5, 5*time.Minute)

	limited, _, err := limiter.CheckAndRecord(context.Background(), "alice", "9.9.9.9", "ua", passThrough)

	require.NoError(t, err)
	assert.False(t, limited)
}

func TestRateLimiter_RecordsEveryAttempt(t *testing.T) {
	store := &mockAttemptStore{}
	store.seed("alice", "1.2.3.4", 5)
	limiter := NewRateLimiter(store, 5, 5*time.Minute)

	// Blocked attempts are recorded too, so each retry counts against
	// the next window
	for i := 0; i < 3; i++ {
		limited, _, err := limiter.CheckAndRecord(context.Background(), "alice", "1.2.3.4", "ua", passThrough)
		require.NoError(t, err)
		assert.True(t, limited)
	}

	assert.Equal(t, 8, store.countFor("alice", "1.2.3.4"))
}

func TestRateLimiter_OldAttemptsFallOutOfWindow(t *testing.T) {
	store := &mockAttemptStore{}
	stale := time.Now().Add(-10 * time.Minute).Unix()
	for i := 0; i < 5; i++ {
		store.attempts = append(store.attempts, &models.LoginAttempt{
			Username: "alice", IPAddress: "1.2.3.4", Timestamp: stale,
		})
	}
	limiter := NewRateLimiter(store, 5, 5*time.Minute)

	limited, detail, err := limiter.CheckAndRecord(context.Background(), "alice", "1.2.3.4", "ua", passThrough)

	require.NoError(t, err)
	assert.False(t, limited)
	assert.Equal(t, 0, detail.Data["attempts_count"])
}

func TestRateLimiter_StoreErrorFailsClosed(t *testing.T) {
	store := &mockAttemptStore{err: errors.New("connection refused")}
	limiter := NewRateLimiter(store, 5, 5*time.Minute)

	_, _, err := limiter.CheckAndRecord(context.Background(), "alice", "1.2.3.4", "ua", passThrough)

	assert.Error(t, err)
}

func TestRateLimiter_FinalizeValuesLandOnRecord(t *testing.T) {
	store := &mockAttemptStore{}
	limiter := NewRateLimiter(store, 5, 5*time.Minute)

	_, _, err := limiter.CheckAndRecord(context.Background(), "alice", "1.2.3.4", "ua",
		func(limited bool) (int, bool) {
			return 42, true
		})

	require.NoError(t, err)
	require.Len(t, store.attempts, 1)
	assert.Equal(t, 42, store.attempts[0].BotScore)
	assert.True(t, store.attempts[0].Blocked)
}
