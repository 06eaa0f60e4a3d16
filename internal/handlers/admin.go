package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sentinelauth/sentinel/internal/models"
	"github.com/sentinelauth/sentinel/internal/session"
	pkghttp "github.com/sentinelauth/sentinel/pkg/http"
)

// SessionClearer removes a session's fingerprint binding
type SessionClearer interface {
	Clear(ctx context.Context, sessionID string) error
}

const statisticsWindow = 24 * time.Hour

// AdminHandler serves the statistics and debug endpoints. The debug and
// reset routes are only registered outside production.
type AdminHandler struct {
	evaluator    Evaluator
	store        Store
	sessions     SessionClearer
	cookieConfig session.CookieConfig
	logger       *slog.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(
	evaluator Evaluator,
	store Store,
	sessions SessionClearer,
	cookieConfig session.CookieConfig,
	logger *slog.Logger,
) *AdminHandler {
	return &AdminHandler{
		evaluator:    evaluator,
		store:        store,
		sessions:     sessions,
		cookieConfig: cookieConfig,
		logger:       logger,
	}
}

// Stats handles GET /stats: attempt activity over the last 24 hours
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.ComputeStatistics(r.Context(), statisticsWindow)
	if err != nil {
		h.logger.Error("failed to compute statistics", slog.Any("error", err))
		pkghttp.WriteInternalError(w, "Unable to compute statistics")
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// DebugAnalysis handles POST /debug/analysis: runs a scoring pass and
// returns the full analysis without touching credentials
func (h *AdminHandler) DebugAnalysis(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid form data")
		return
	}

	ipAddress := pkghttp.ClientIP(r)
	userAgent := pkghttp.UserAgent(r)
	sessionID := session.EnsureSessionID(w, r, h.cookieConfig)

	scoringReq := scoringRequestFromForm(r, r.PostFormValue("username"), ipAddress, userAgent, sessionID)

	result, err := h.evaluator.Evaluate(r.Context(), scoringReq)
	if err != nil {
		h.logger.Error("debug scoring pass failed", slog.Any("error", err))
		pkghttp.WriteInternalError(w, "Unable to run analysis")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// FingerprintHistory handles GET /debug/fingerprint/{fingerprint}
func (h *AdminHandler) FingerprintHistory(w http.ResponseWriter, r *http.Request) {
	fingerprint := chi.URLParam(r, "fingerprint")

	record, err := h.store.GetFingerprintHistory(r.Context(), fingerprint)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Fingerprint not seen")
			return
		}
		h.logger.Error("failed to load fingerprint history", slog.Any("error", err))
		pkghttp.WriteInternalError(w, "Unable to load fingerprint history")
		return
	}

	writeJSON(w, http.StatusOK, record)
}

// ResetDatabase handles POST /reset-db: truncates the attempt log and
// fingerprint history and drops the caller's session binding. Demo only.
func (h *AdminHandler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.store.ResetAll(r.Context()); err != nil {
		h.logger.Error("failed to reset store", slog.Any("error", err))
		pkghttp.WriteInternalError(w, "Unable to reset database")
		return
	}

	if cookie, err := r.Cookie(session.CookieName); err == nil {
		if err := h.sessions.Clear(r.Context(), cookie.Value); err != nil {
			h.logger.Warn("failed to clear session binding", slog.Any("error", err))
		}
	}
	session.ClearSessionCookie(w, h.cookieConfig)

	h.logger.Info("store reset")
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Database reset successfully",
	})
}
