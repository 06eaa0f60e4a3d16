package sentinel

import (
	"encoding/json"

	"github.com/sentinelauth/sentinel/internal/models"
)

// Flags raised by the timing analyzer
const (
	FlagFastSubmission   = "fast_submission"
	FlagNoFocusEvent     = "no_focus_event"
	FlagNoTypingDetected = "no_typing_detected"
	FlagFastTyping       = "fast_typing"
	FlagInvalidMetadata  = "invalid_metadata"
)

// Timing analyzer penalties and thresholds (milliseconds)
const (
	invalidMetadataPenalty = 30
	noFocusPenalty         = 20
	noTypingPenalty        = 15
	fastSubmitThresholdMs  = 800
	fastTypingThresholdMs  = 150
)

// TimingMetadata is the client-reported interaction timing payload.
// Pointer fields distinguish missing values from explicit zeros.
type TimingMetadata struct {
	LoadToSubmit   *float64 `json:"t_load_to_submit"`
	FirstFocus     *float64 `json:"t_first_focus"`
	FirstKey       *float64 `json:"t_first_key"`
	TypingDuration *float64 `json:"t_typing_duration"`
}

// AnalyzeTiming scores client interaction timing for automation tells.
// The returned score is the client-computed timingScore plus server-side
// penalties. Metadata that fails to parse is itself treated as suspicious
// rather than ignored.
func AnalyzeTiming(timingScore int, metadata string) (int, models.LayerDetail) {
	score := timingScore
	detail := models.LayerDetail{
		Flags: []string{},
		Data:  map[string]any{},
	}

	var md TimingMetadata
	if err := json.Unmarshal([]byte(metadata), &md); err != nil {
		score += invalidMetadataPenalty
		detail.Flags = append(detail.Flags, FlagInvalidMetadata)
		detail.Data["error"] = err.Error()
		detail.Score = score
		return score, detail
	}

	// Suspiciously fast page-load-to-submit. Observe-only: no penalty.
	loadToSubmit := float64(0)
	if md.LoadToSubmit != nil {
		loadToSubmit = *md.LoadToSubmit
	}
	if loadToSubmit < fastSubmitThresholdMs {
		detail.Flags = append(detail.Flags, FlagFastSubmission)
		detail.Data["submission_time_ms"] = loadToSubmit
	}

	// No focus event recorded on the form fields
	if md.FirstFocus == nil || *md.FirstFocus == 0 {
		score += noFocusPenalty
		detail.Flags = append(detail.Flags, FlagNoFocusEvent)
	}

	// No keystrokes at all
	if md.FirstKey == nil {
		score += noTypingPenalty
		detail.Flags = append(detail.Flags, FlagNoTypingDetected)
	}

	// Unrealistically fast typing. Observe-only: no penalty.
	if md.TypingDuration != nil && *md.TypingDuration < fastTypingThresholdMs {
		detail.Flags = append(detail.Flags, FlagFastTyping)
	}

	detail.Data["timing_data"] = md
	detail.Score = score
	return score, detail
}
