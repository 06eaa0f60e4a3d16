package sentinel

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sentinelauth/sentinel/internal/models"
)

// rateLimitPenalty is added when the sliding window blocks an attempt.
// Large enough to force a block under the default threshold on its own.
const rateLimitPenalty = 100

// Config holds the scoring engine settings, fixed after startup
type Config struct {
	MaxAttempts    int
	Window         time.Duration
	ScoreThreshold int
}

// Request carries the raw fields of one login evaluation. Credentials are
// deliberately absent; the engine never sees them.
type Request struct {
	Username      string
	IPAddress     string
	UserAgent     string
	SessionID     string
	TimingScore   int
	HeadlessScore int
	Fingerprint   string
	Metadata      string
}

// ScoreAggregator fans one request out to the analyzer layers, sums their
// contributions, and applies the threshold and rate-limit override rules.
type ScoreAggregator struct {
	limiter    *RateLimiter
	reputation *ReputationChecker
	sessions   SessionBinding
	config     Config
	logger     *slog.Logger
}

// NewScoreAggregator creates a new ScoreAggregator
func NewScoreAggregator(
	store AttemptStore,
	sessions SessionBinding,
	reputation *ReputationChecker,
	config Config,
	logger *slog.Logger,
) *ScoreAggregator {
	return &ScoreAggregator{
		limiter:    NewRateLimiter(store, config.MaxAttempts, config.Window),
		reputation: reputation,
		sessions:   sessions,
		config:     config,
		logger:     logger,
	}
}

// Evaluate runs every analyzer layer in fixed order, none short-circuiting
// another, and returns the composite verdict. The attempt is persisted with
// its final score as part of the rate limiter's atomic count-and-record, so
// exactly one record exists per evaluation.
//
// A rate-limit block takes priority over the score threshold even when the
// summed score alone would also exceed it. Store errors abort the evaluation;
// the limiter's count path fails closed.
func (a *ScoreAggregator) Evaluate(ctx context.Context, req *Request) (*models.AnalysisResult, error) {
	layers := make(map[string]models.LayerDetail, 5)

	timingScore, timingDetail := AnalyzeTiming(req.TimingScore, req.Metadata)
	layers[models.LayerTiming] = timingDetail

	headlessScore, headlessDetail := AnalyzeHeadless(req.HeadlessScore)
	layers[models.LayerHeadless] = headlessDetail

	fpScore, fpDetail, err := ValidateFingerprint(ctx, a.sessions, req.SessionID, req.Fingerprint)
	if err != nil {
		return nil, fmt.Errorf("fingerprint validation: %w", err)
	}
	layers[models.LayerFingerprint] = fpDetail

	repScore, repDetail := a.reputation.Check(ctx, req.IPAddress)
	layers[models.LayerIPReputation] = repDetail

	preScore := timingScore + headlessScore + fpScore + repScore

	result := &models.AnalysisResult{}
	limited, rlDetail, err := a.limiter.CheckAndRecord(ctx, req.Username, req.IPAddress, req.UserAgent,
		func(limited bool) (int, bool) {
			total := preScore
			if limited {
				total += rateLimitPenalty
			}
			blocked := limited || total >= a.config.ScoreThreshold
			result.TotalScore = total
			result.Blocked = blocked
			return total, blocked
		})
	if err != nil {
		return nil, fmt.Errorf("rate limit check: %w", err)
	}
	layers[models.LayerRateLimiting] = rlDetail

	switch {
	case limited:
		result.Verdict = models.VerdictBlockedRateLimit
	case result.Blocked:
		result.Verdict = models.VerdictBlockedBot
	default:
		result.Verdict = models.VerdictPassed
	}
	result.Layers = layers

	a.logger.Debug("scoring pass complete",
		slog.String("username", req.Username),
		slog.String("ip_address", req.IPAddress),
		slog.Int("total_score", result.TotalScore),
		slog.String("verdict", string(result.Verdict)),
	)

	return result, nil
}
