package sentinel

import "github.com/sentinelauth/sentinel/internal/models"

// Flags raised by the headless analyzer
const (
	FlagWebdriverDetected      = "webdriver_flag_detected"
	FlagMultipleHeadless       = "multiple_headless_indicators"
	FlagSuspiciousBrowserProps = "suspicious_browser_properties"
)

// Headless score thresholds for diagnostic flags
const (
	webdriverThreshold  = 100
	multipleThreshold   = 50
	suspiciousThreshold = 20
)

// AnalyzeHeadless interprets the client-supplied headless-browser probe
// score. The score passes through unmodified; flags are diagnostic only.
func AnalyzeHeadless(headlessScore int) (int, models.LayerDetail) {
	detail := models.LayerDetail{
		Score: headlessScore,
		Flags: []string{},
		Data:  map[string]any{"client_score": headlessScore},
	}

	switch {
	case headlessScore >= webdriverThreshold:
		detail.Flags = append(detail.Flags, FlagWebdriverDetected)
	case headlessScore >= multipleThreshold:
		detail.Flags = append(detail.Flags, FlagMultipleHeadless)
	case headlessScore >= suspiciousThreshold:
		detail.Flags = append(detail.Flags, FlagSuspiciousBrowserProps)
	}

	return headlessScore, detail
}
