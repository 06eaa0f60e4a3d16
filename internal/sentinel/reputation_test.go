package sentinel

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}

func reputationServer(t *testing.T, body string, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestReputationChecker_NoClientConfigured(t *testing.T) {
	checker := NewReputationChecker(nil, testLogger())

	score, detail := checker.Check(context.Background(), "1.2.3.4")

	assert.Equal(t, 0, score)
	assert.Equal(t, StatusAPIKeyNotConfigured, detail.Status)
	assert.Empty(t, detail.Flags)
}

func TestReputationChecker_HighFraudScore(t *testing.T) {
	srv := reputationServer(t, `{"fraud_score":90,"proxy":false,"vpn":false}`, http.StatusOK)
	client := NewIPQualityScoreClient("key", time.Second).WithBaseURL(srv.URL)
	checker := NewReputationChecker(client, testLogger())

	score, detail := checker.Check(context.Background(), "1.2.3.4")

	assert.Equal(t, 80, score)
	assert.True(t, detail.HasFlag(FlagHighFraudScore))
	assert.Equal(t, StatusChecked, detail.Status)
}

func TestReputationChecker_ProxyOrVPN(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"proxy", `{"fraud_score":10,"proxy":true,"vpn":false}`},
		{"vpn", `{"fraud_score":10,"proxy":false,"vpn":true}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := reputationServer(t, tt.body, http.StatusOK)
			client := NewIPQualityScoreClient("key", time.Second).WithBaseURL(srv.URL)
			checker := NewReputationChecker(client, testLogger())

			score, detail := checker.Check(context.Background(), "1.2.3.4")

			assert.Equal(t, 30, score)
			assert.True(t, detail.HasFlag(FlagProxyOrVPN))
		})
	}
}

func TestReputationChecker_HighFraudOutranksProxy(t *testing.T) {
	srv := reputationServer(t, `{"fraud_score":90,"proxy":true,"vpn":true}`, http.StatusOK)
	client := NewIPQualityScoreClient("key", time.Second).WithBaseURL(srv.URL)
	checker := NewReputationChecker(client, testLogger())

	score, _ := checker.Check(context.Background(), "1.2.3.4")

	assert.Equal(t, 80, score)
}

func TestReputationChecker_CleanIP(t *testing.T) {
	srv := reputationServer(t, `{"fraud_score":5,"proxy":false,"vpn":false}`, http.StatusOK)
	client := NewIPQualityScoreClient("key", time.Second).WithBaseURL(srv.URL)
	checker := NewReputationChecker(client, testLogger())

	score, detail := checker.Check(context.Background(), "1.2.3.4")

	assert.Equal(t, 0, score)
	assert.Empty(t, detail.Flags)
	assert.Equal(t, StatusChecked, detail.Status)
}

func TestReputationChecker_LookupFailureFailsOpen(t *testing.T) {
	srv := reputationServer(t, `oops`, http.StatusInternalServerError)
	client := NewIPQualityScoreClient("key", time.Second).WithBaseURL(srv.URL)
	checker := NewReputationChecker(client, testLogger())

	score, detail := checker.Check(context.Background(), "1.2.3.4")

	assert.Equal(t, 0, score)
	assert.Equal(t, StatusAPIError, detail.Status)
	assert.Contains(t, detail.Data, "error")
}

func TestReputationChecker_TimeoutFailsOpen(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	t.Cleanup(srv.Close)

	client := NewIPQualityScoreClient("key", 20*time.Millisecond).WithBaseURL(srv.URL)
	checker := NewReputationChecker(client, testLogger())

	score, detail := checker.Check(context.Background(), "1.2.3.4")

	assert.Equal(t, 0, score)
	assert.Equal(t, StatusAPIError, detail.Status)
}
