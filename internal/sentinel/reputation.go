package sentinel

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/sentinelauth/sentinel/internal/models"
)

// Flags and statuses raised by the reputation checker
const (
	FlagHighFraudScore = "high_fraud_score"
	FlagProxyOrVPN     = "proxy_or_vpn_detected"

	StatusAPIKeyNotConfigured = "api_key_not_configured"
	StatusAPIError            = "api_error"
	StatusChecked             = "checked"
)

const (
	highFraudScoreThreshold = 75
	highFraudPenalty        = 80
	proxyVPNPenalty         = 30
)

// ReputationReport is the provider-agnostic shape of one IP lookup
type ReputationReport struct {
	FraudScore float64 `json:"fraud_score"`
	Proxy      bool    `json:"proxy"`
	VPN        bool    `json:"vpn"`
}

// ReputationClient performs an external IP reputation lookup with a bounded
// timeout
type ReputationClient interface {
	Lookup(ctx context.Context, ipAddress string) (*ReputationReport, error)
}

// IPQualityScoreClient queries the IPQualityScore HTTP API
type IPQualityScoreClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewIPQualityScoreClient creates a client with the given lookup timeout
func NewIPQualityScoreClient(apiKey string, timeout time.Duration) *IPQualityScoreClient {
	return &IPQualityScoreClient{
		apiKey:     apiKey,
		baseURL:    "https://api.ipqualityscore.com/v1/ip",
		httpClient: &http.Client{Timeout: timeout},
	}
}

// WithBaseURL overrides the API endpoint, for tests
func (c *IPQualityScoreClient) WithBaseURL(baseURL string) *IPQualityScoreClient {
	c.baseURL = baseURL
	return c
}

// Lookup fetches the reputation report for an IP
func (c *IPQualityScoreClient) Lookup(ctx context.Context, ipAddress string) (*ReputationReport, error) {
	endpoint := fmt.Sprintf("%s/%s/%s", c.baseURL, url.PathEscape(c.apiKey), url.PathEscape(ipAddress))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building reputation request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("reputation lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reputation lookup: unexpected status %d", resp.StatusCode)
	}

	var report ReputationReport
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return nil, fmt.Errorf("decoding reputation response: %w", err)
	}

	return &report, nil
}

// ReputationChecker maps external IP reputation signals to score penalties.
// With no client configured it is a no-op; on lookup failure it fails open.
type ReputationChecker struct {
	client ReputationClient
	logger *slog.Logger
}

// NewReputationChecker creates a checker. A nil client disables lookups.
func NewReputationChecker(client ReputationClient, logger *slog.Logger) *ReputationChecker {
	return &ReputationChecker{client: client, logger: logger}
}

// Check scores the IP's reputation. A high fraud score earns a large penalty,
// proxy or VPN detection a moderate one. Failures never block the request.
func (rc *ReputationChecker) Check(ctx context.Context, ipAddress string) (int, models.LayerDetail) {
	detail := models.LayerDetail{
		Flags: []string{},
		Data:  map[string]any{"ip_address": ipAddress},
	}

	if rc.client == nil {
		detail.Status = StatusAPIKeyNotConfigured
		return 0, detail
	}

	report, err := rc.client.Lookup(ctx, ipAddress)
	if err != nil {
		rc.logger.Warn("ip reputation lookup failed",
			slog.String("ip_address", ipAddress),
			slog.Any("error", err))
		detail.Status = StatusAPIError
		detail.Data["error"] = err.Error()
		return 0, detail
	}

	score := 0
	detail.Status = StatusChecked
	detail.Data["fraud_score"] = report.FraudScore

	if report.FraudScore > highFraudScoreThreshold {
		score += highFraudPenalty
		detail.Flags = append(detail.Flags, FlagHighFraudScore)
	} else if report.Proxy || report.VPN {
		score += proxyVPNPenalty
		detail.Flags = append(detail.Flags, FlagProxyOrVPN)
	}

	detail.Score = score
	return score, detail
}
