package sentinel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const healthyMetadata = `{"t_load_to_submit":5000,"t_first_focus":1200,"t_first_key":1600,"t_typing_duration":2400}`

func TestAnalyzeTiming_HealthyMetadataAddsNothing(t *testing.T) {
	score, detail := AnalyzeTiming(0, healthyMetadata)

	assert.Equal(t, 0, score)
	assert.Empty(t, detail.Flags)
	assert.Equal(t, 0, detail.Score)
}

func TestAnalyzeTiming_ClientScorePassesThrough(t *testing.T) {
	score, detail := AnalyzeTiming(25, healthyMetadata)

	assert.Equal(t, 25, score)
	assert.Equal(t, 25, detail.Score)
}

func TestAnalyzeTiming_NoFocusEvent(t *testing.T) {
	tests := []struct {
		name     string
		metadata string
	}{
		{"focus missing", `{"t_load_to_submit":5000,"t_first_key":1600}`},
		{"focus explicitly zero", `{"t_load_to_submit":5000,"t_first_focus":0,"t_first_key":1600}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, detail := AnalyzeTiming(0, tt.metadata)

			assert.Equal(t, 20, score)
			assert.True(t, detail.HasFlag(FlagNoFocusEvent))
		})
	}
}

func TestAnalyzeTiming_NoTypingDetected(t *testing.T) {
	score, detail := AnalyzeTiming(0, `{"t_load_to_submit":5000,"t_first_focus":1200}`)

	assert.Equal(t, 15, score)
	assert.True(t, detail.HasFlag(FlagNoTypingDetected))
}

func TestAnalyzeTiming_FastSubmissionIsObserveOnly(t *testing.T) {
	score, detail := AnalyzeTiming(0, `{"t_load_to_submit":400,"t_first_focus":100,"t_first_key":150,"t_typing_duration":200}`)

	assert.Equal(t, 0, score)
	assert.True(t, detail.HasFlag(FlagFastSubmission))
	assert.Equal(t, float64(400), detail.Data["submission_time_ms"])
}

func TestAnalyzeTiming_FastTypingIsObserveOnly(t *testing.T) {
	score, detail := AnalyzeTiming(0, `{"t_load_to_submit":5000,"t_first_focus":1200,"t_first_key":1600,"t_typing_duration":90}`)

	assert.Equal(t, 0, score)
	assert.True(t, detail.HasFlag(FlagFastTyping))
}

func TestAnalyzeTiming_InvalidMetadata(t *testing.T) {
	tests := []struct {
		name     string
		metadata string
	}{
		{"not json at all", "not json"},
		{"empty string", ""},
		{"json array", "[1,2,3]"},
		{"truncated object", `{"t_first_focus":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, detail := AnalyzeTiming(0, tt.metadata)

			assert.Equal(t, 30, score)
			assert.True(t, detail.HasFlag(FlagInvalidMetadata))
			assert.Contains(t, detail.Data, "error")
		})
	}
}

func TestAnalyzeTiming_InvalidMetadataIgnoresClientScoreContent(t *testing.T) {
	// The +30 is fixed regardless of what the blob would have said
	score, _ := AnalyzeTiming(10, "{{{{")

	assert.Equal(t, 40, score)
}

func TestAnalyzeTiming_EmptyObjectStacksDefaults(t *testing.T) {
	// "{}" means: no focus (+20), no typing (+15), fast submission flag only
	score, detail := AnalyzeTiming(0, "{}")

	assert.Equal(t, 35, score)
	assert.True(t, detail.HasFlag(FlagNoFocusEvent))
	assert.True(t, detail.HasFlag(FlagNoTypingDetected))
	assert.True(t, detail.HasFlag(FlagFastSubmission))
	assert.False(t, detail.HasFlag(FlagFastTyping))
}
