package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/sentinelauth/sentinel/internal/metrics"
	"github.com/sentinelauth/sentinel/internal/models"
	"github.com/sentinelauth/sentinel/internal/sentinel"
	"github.com/sentinelauth/sentinel/internal/session"
	pkghttp "github.com/sentinelauth/sentinel/pkg/http"
	pkglogger "github.com/sentinelauth/sentinel/pkg/logger"
)

// Evaluator runs one scoring pass over a login request
type Evaluator interface {
	Evaluate(ctx context.Context, req *sentinel.Request) (*models.AnalysisResult, error)
}

// Store is the attempt store surface the handlers need beyond scoring
type Store interface {
	UpsertFingerprint(ctx context.Context, fingerprint, ipAddress string) error
	ComputeStatistics(ctx context.Context, window time.Duration) (*models.AttemptStatistics, error)
	GetFingerprintHistory(ctx context.Context, fingerprint string) (*models.FingerprintRecord, error)
	ResetAll(ctx context.Context) error
}

// LoginHandler processes login attempts with multi-signal bot detection
type LoginHandler struct {
	evaluator        Evaluator
	store            Store
	cookieConfig     session.CookieConfig
	demoUsername     string
	demoPasswordHash []byte
	logger           *slog.Logger
	audit            *pkglogger.AuditLogger
}

// NewLoginHandler creates a new LoginHandler. The demo password is hashed
// once at construction.
func NewLoginHandler(
	evaluator Evaluator,
	store Store,
	cookieConfig session.CookieConfig,
	demoUsername, demoPassword string,
	logger *slog.Logger,
	audit *pkglogger.AuditLogger,
) (*LoginHandler, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	return &LoginHandler{
		evaluator:        evaluator,
		store:            store,
		cookieConfig:     cookieConfig,
		demoUsername:     demoUsername,
		demoPasswordHash: hash,
		logger:           logger,
		audit:            audit,
	}, nil
}

// LoginRequest represents the login form fields
type LoginRequest struct {
	Username string `validate:"required,max=255"`
	Password string
}

// LoginResponse represents the login outcome payload
type LoginResponse struct {
	Success  bool                   `json:"success"`
	Message  string                 `json:"message"`
	Username string                 `json:"username,omitempty"`
	Analysis *models.AnalysisResult `json:"analysis"`
}

// Login handles POST /login. The scoring pass runs on every request and
// records exactly one attempt carrying the final score; the credential
// check only happens for requests the engine lets through.
func (h *LoginHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid form data")
		return
	}

	req := LoginRequest{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	ipAddress := pkghttp.ClientIP(r)
	userAgent := pkghttp.UserAgent(r)
	sessionID := session.EnsureSessionID(w, r, h.cookieConfig)

	scoringReq := scoringRequestFromForm(r, req.Username, ipAddress, userAgent, sessionID)

	result, err := h.evaluator.Evaluate(r.Context(), scoringReq)
	if err != nil {
		h.logger.Error("scoring pass failed", slog.Any("error", err))
		pkghttp.WriteInternalError(w, "Unable to process login")
		return
	}

	metrics.ObserveVerdict(result)

	// Fingerprint usage history is recorded independently of the
	// validation outcome.
	if scoringReq.Fingerprint != "" {
		if err := h.store.UpsertFingerprint(r.Context(), scoringReq.Fingerprint, ipAddress); err != nil {
			h.logger.Error("failed to record fingerprint", slog.Any("error", err))
			pkghttp.WriteInternalError(w, "Unable to process login")
			return
		}
	}

	h.audit.LogVerdict(pkglogger.VerdictEvent{
		Username:  req.Username,
		IPAddress: ipAddress,
		UserAgent: userAgent,
		Verdict:   string(result.Verdict),
		Score:     result.TotalScore,
		Blocked:   result.Blocked,
	})

	if result.Blocked {
		writeJSON(w, http.StatusForbidden, LoginResponse{
			Success:  false,
			Message:  "Login blocked: " + string(result.Verdict),
			Analysis: result,
		})
		return
	}

	if req.Username != h.demoUsername ||
		bcrypt.CompareHashAndPassword(h.demoPasswordHash, []byte(req.Password)) != nil {
		writeJSON(w, http.StatusUnauthorized, LoginResponse{
			Success:  false,
			Message:  models.ErrInvalidCredentials.Error(),
			Analysis: result,
		})
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{
		Success:  true,
		Message:  "Login successful",
		Username: req.Username,
		Analysis: result,
	})
}

// scoringRequestFromForm extracts the sentinel fields, defaulting missing
// or malformed values rather than failing
func scoringRequestFromForm(r *http.Request, username, ipAddress, userAgent, sessionID string) *sentinel.Request {
	metadata := r.PostFormValue("sentinel_metadata")
	if metadata == "" {
		metadata = "{}"
	}

	return &sentinel.Request{
		Username:      username,
		IPAddress:     ipAddress,
		UserAgent:     userAgent,
		SessionID:     sessionID,
		TimingScore:   atoiDefault(r.PostFormValue("sentinel_timing"), 0),
		HeadlessScore: atoiDefault(r.PostFormValue("sentinel_headless"), 0),
		Fingerprint:   r.PostFormValue("sentinel_fingerprint"),
		Metadata:      metadata,
	}
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}
