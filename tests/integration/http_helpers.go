//go:build integration

package integration

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sentinelauth/sentinel/internal/handlers"
	"github.com/sentinelauth/sentinel/internal/routes"
	"github.com/sentinelauth/sentinel/internal/sentinel"
	"github.com/sentinelauth/sentinel/internal/session"
	pkglogger "github.com/sentinelauth/sentinel/pkg/logger"
)

const (
	testDemoUsername = "demo"
	testDemoPassword = "password"
	testMaxAttempts  = 5
	testWindow       = 5 * time.Minute
	testThreshold    = 100
)

// TestServer wraps httptest.Server with the full scoring stack on a real
// database. Reputation is left unconfigured so runs stay offline.
type TestServer struct {
	Server   *httptest.Server
	Sessions *session.MemoryStore
	Client   *http.Client
	logger   *slog.Logger
}

// NewTestServer wires the production router against the given database
func NewTestServer(db *TestDB) (*TestServer, error) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))

	sessions := session.NewMemoryStore(time.Hour)

	aggregator := sentinel.NewScoreAggregator(
		db.Repo,
		sessions,
		sentinel.NewReputationChecker(nil, logger),
		sentinel.Config{
			MaxAttempts:    testMaxAttempts,
			Window:         testWindow,
			ScoreThreshold: testThreshold,
		},
		logger,
	)

	cookieConfig := session.CookieConfig{TTL: time.Hour}
	auditLogger := pkglogger.NewAuditLogger(logger)

	loginHandler, err := handlers.NewLoginHandler(
		aggregator, db.Repo, cookieConfig,
		testDemoUsername, testDemoPassword,
		logger, auditLogger,
	)
	if err != nil {
		sessions.Close()
		return nil, err
	}
	adminHandler := handlers.NewAdminHandler(aggregator, db.Repo, sessions, cookieConfig, logger)

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))
	routes.RegisterRoutes(r, loginHandler, adminHandler, "test")

	server := httptest.NewServer(r)

	// Cookie jar keeps the session cookie across requests so fingerprint
	// binding behaves like a real browser session
	jar, err := cookiejar.New(nil)
	if err != nil {
		server.Close()
		sessions.Close()
		return nil, err
	}

	return &TestServer{
		Server:   server,
		Sessions: sessions,
		Client:   &http.Client{Jar: jar},
		logger:   logger,
	}, nil
}

// Close shuts down the test server and its session store
func (ts *TestServer) Close() {
	if ts.Server != nil {
		ts.Server.Close()
	}
	if ts.Sessions != nil {
		ts.Sessions.Close()
	}
}

// PostForm submits a form to the test server, carrying session cookies
func (ts *TestServer) PostForm(path string, form url.Values) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodPost, ts.Server.URL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return ts.Client.Do(req)
}

// Get issues a GET request to the test server
func (ts *TestServer) Get(path string) (*http.Response, error) {
	return ts.Client.Get(ts.Server.URL + path)
}

// LoginForm builds a login form with the standard scoring fields
func LoginForm(username, password, fingerprint, metadata string) url.Values {
	form := url.Values{
		"username": {username},
		"password": {password},
	}
	if fingerprint != "" {
		form.Set("sentinel_fingerprint", fingerprint)
	}
	if metadata != "" {
		form.Set("sentinel_metadata", metadata)
	}
	return form
}

// ParseJSONResponse parses a JSON response body into target
func ParseJSONResponse(resp *http.Response, target any) error {
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(target)
}
