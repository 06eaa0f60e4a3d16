package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_BindAndGet(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	t.Cleanup(store.Close)
	ctx := context.Background()

	fp, err := store.GetFingerprint(ctx, "session-1")
	require.NoError(t, err)
	assert.Empty(t, fp)

	require.NoError(t, store.BindFingerprint(ctx, "session-1", "abc123"))

	fp, err = store.GetFingerprint(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, "abc123", fp)
}

func TestMemoryStore_SessionsAreIndependent(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	t.Cleanup(store.Close)
	ctx := context.Background()

	require.NoError(t, store.BindFingerprint(ctx, "session-1", "abc123"))

	fp, err := store.GetFingerprint(ctx, "session-2")
	require.NoError(t, err)
	assert.Empty(t, fp)
}

func TestMemoryStore_RebindOverwrites(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	t.Cleanup(store.Close)
	ctx := context.Background()

	require.NoError(t, store.BindFingerprint(ctx, "session-1", "abc123"))
	require.NoError(t, store.BindFingerprint(ctx, "session-1", "xyz789"))

	fp, err := store.GetFingerprint(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, "xyz789", fp)
}

func TestMemoryStore_Clear(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	t.Cleanup(store.Close)
	ctx := context.Background()

	require.NoError(t, store.BindFingerprint(ctx, "session-1", "abc123"))
	require.NoError(t, store.Clear(ctx, "session-1"))

	fp, err := store.GetFingerprint(ctx, "session-1")
	require.NoError(t, err)
	assert.Empty(t, fp)
}

func TestMemoryStore_ExpiredBindingIsInvisible(t *testing.T) {
	store := NewMemoryStore(10 * time.Millisecond)
	t.Cleanup(store.Close)
	ctx := context.Background()

	require.NoError(t, store.BindFingerprint(ctx, "session-1", "abc123"))
	time.Sleep(25 * time.Millisecond)

	fp, err := store.GetFingerprint(ctx, "session-1")
	require.NoError(t, err)
	assert.Empty(t, fp)
}

func TestEnsureSessionID_IssuesCookieWhenMissing(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/login", nil)

	id := EnsureSessionID(w, r, CookieConfig{TTL: time.Hour})

	_, err := uuid.Parse(id)
	require.NoError(t, err)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.Equal(t, id, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)
}

func TestEnsureSessionID_ReusesValidCookie(t *testing.T) {
	existing := uuid.NewString()
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/login", nil)
	r.AddCookie(&http.Cookie{Name: CookieName, Value: existing})

	id := EnsureSessionID(w, r, CookieConfig{TTL: time.Hour})

	assert.Equal(t, existing, id)
	assert.Empty(t, w.Result().Cookies())
}

func TestEnsureSessionID_RejectsMalformedCookie(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/login", nil)
	r.AddCookie(&http.Cookie{Name: CookieName, Value: "not-a-uuid"})

	id := EnsureSessionID(w, r, CookieConfig{TTL: time.Hour})

	assert.NotEqual(t, "not-a-uuid", id)
	_, err := uuid.Parse(id)
	require.NoError(t, err)
}

func TestClearSessionCookie(t *testing.T) {
	w := httptest.NewRecorder()

	ClearSessionCookie(w, CookieConfig{})

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.Less(t, cookies[0].MaxAge, 0)
}
