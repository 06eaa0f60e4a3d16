package sentinel

import (
	"context"

	"github.com/sentinelauth/sentinel/internal/models"
)

// Flags and statuses raised by the fingerprint validator
const (
	FlagMissingFingerprint  = "missing_or_invalid_fingerprint"
	FlagFingerprintMismatch = "fingerprint_mismatch"

	StatusFingerprintStored = "fingerprint_stored"
	StatusFingerprintValid  = "fingerprint_valid"
)

const (
	missingFingerprintPenalty  = 40
	fingerprintMismatchPenalty = 50
	minFingerprintLength       = 5
)

// SessionBinding is the one-value-per-session capability used to pin a
// browser fingerprint to a session. An unset binding reads as "".
type SessionBinding interface {
	GetFingerprint(ctx context.Context, sessionID string) (string, error)
	BindFingerprint(ctx context.Context, sessionID, fingerprint string) error
}

// ValidateFingerprint checks the supplied fingerprint against the one bound
// to the session. The first valid fingerprint a session presents gets bound;
// any later divergence within the same session is penalized. Binding store
// errors propagate to the caller.
func ValidateFingerprint(ctx context.Context, sessions SessionBinding, sessionID, fingerprint string) (int, models.LayerDetail, error) {
	detail := models.LayerDetail{
		Flags: []string{},
		Data:  map[string]any{"fingerprint": fingerprint},
	}

	if len(fingerprint) < minFingerprintLength {
		detail.Score = missingFingerprintPenalty
		detail.Flags = append(detail.Flags, FlagMissingFingerprint)
		return missingFingerprintPenalty, detail, nil
	}

	stored, err := sessions.GetFingerprint(ctx, sessionID)
	if err != nil {
		return 0, detail, err
	}

	switch {
	case stored == "":
		if err := sessions.BindFingerprint(ctx, sessionID, fingerprint); err != nil {
			return 0, detail, err
		}
		detail.Status = StatusFingerprintStored
	case stored != fingerprint:
		detail.Score = fingerprintMismatchPenalty
		detail.Flags = append(detail.Flags, FlagFingerprintMismatch)
		detail.Data["stored_fingerprint"] = stored
		return fingerprintMismatchPenalty, detail, nil
	default:
		detail.Status = StatusFingerprintValid
	}

	return 0, detail, nil
}
