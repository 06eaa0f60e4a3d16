package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/sentinelauth/sentinel/internal/database"
	"github.com/sentinelauth/sentinel/internal/models"
)

// AttemptRepository handles database operations for the login attempt log
// and the fingerprint usage table.
type AttemptRepository struct {
	db *database.DB
}

// NewAttemptRepository creates a new AttemptRepository
func NewAttemptRepository(db *database.DB) *AttemptRepository {
	return &AttemptRepository{db: db}
}

// RecordAttempt appends a login attempt and returns its id
func (r *AttemptRepository) RecordAttempt(ctx context.Context, attempt *models.LoginAttempt) (int64, error) {
	query := `
		INSERT INTO login_attempts (username, ip_address, timestamp, user_agent, bot_score, blocked)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	var id int64
	err := r.db.Pool.QueryRow(ctx, query,
		attempt.Username,
		attempt.IPAddress,
		attempt.Timestamp,
		attempt.UserAgent,
		attempt.BotScore,
		attempt.Blocked,
	).Scan(&id)
	if err != nil {
		return 0, database.MapPostgresError(err)
	}

	attempt.ID = id
	return id, nil
}

// CountAndRecordAttempt atomically counts attempts for the attempt's
// (username, ip_address) pair with timestamp >= since, then appends the
// attempt itself. The finalize callback receives the pre-insert count and
// returns the bot score and blocked flag to persist on the new row.
//
// A transaction-scoped advisory lock on the pair serializes concurrent
// requests for the same key, so two requests cannot both observe the same
// pre-insert count. The returned count never includes the inserted row.
func (r *AttemptRepository) CountAndRecordAttempt(
	ctx context.Context,
	attempt *models.LoginAttempt,
	since int64,
	finalize func(count int) (botScore int, blocked bool),
) (int, error) {
	var count int

	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		lockKey := attempt.Username + "|" + attempt.IPAddress
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, lockKey); err != nil {
			return err
		}

		countQuery := `
			SELECT COUNT(*) FROM login_attempts
			WHERE username = $1 AND ip_address = $2 AND timestamp >= $3
		`
		if err := tx.QueryRow(ctx, countQuery, attempt.Username, attempt.IPAddress, since).Scan(&count); err != nil {
			return err
		}

		attempt.BotScore, attempt.Blocked = finalize(count)

		insertQuery := `
			INSERT INTO login_attempts (username, ip_address, timestamp, user_agent, bot_score, blocked)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id
		`
		return tx.QueryRow(ctx, insertQuery,
			attempt.Username,
			attempt.IPAddress,
			attempt.Timestamp,
			attempt.UserAgent,
			attempt.BotScore,
			attempt.Blocked,
		).Scan(&attempt.ID)
	})
	if err != nil {
		return 0, database.MapPostgresError(err)
	}

	return count, nil
}

// QueryAttempts returns attempts for a (username, ip) pair with
// timestamp >= since, newest first
func (r *AttemptRepository) QueryAttempts(ctx context.Context, username, ipAddress string, since int64) ([]*models.LoginAttempt, error) {
	query := `
		SELECT id, username, ip_address, timestamp, user_agent, bot_score, blocked
		FROM login_attempts
		WHERE username = $1 AND ip_address = $2 AND timestamp >= $3
		ORDER BY timestamp DESC
	`

	rows, err := r.db.Pool.Query(ctx, query, username, ipAddress, since)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	defer rows.Close()

	var attempts []*models.LoginAttempt
	for rows.Next() {
		var a models.LoginAttempt
		if err := rows.Scan(&a.ID, &a.Username, &a.IPAddress, &a.Timestamp, &a.UserAgent, &a.BotScore, &a.Blocked); err != nil {
			return nil, err
		}
		attempts = append(attempts, &a)
	}

	return attempts, rows.Err()
}

// UpsertFingerprint records usage of a fingerprint from an IP. A new
// (fingerprint, ip) pair starts at request_count 1; an existing pair
// advances last_seen and increments request_count by exactly one.
func (r *AttemptRepository) UpsertFingerprint(ctx context.Context, fingerprint, ipAddress string) error {
	now := time.Now().Unix()

	query := `
		INSERT INTO fingerprint_history (fingerprint, ip_address, first_seen, last_seen, request_count)
		VALUES ($1, $2, $3, $3, 1)
		ON CONFLICT (fingerprint, ip_address)
		DO UPDATE SET last_seen = $3, request_count = fingerprint_history.request_count + 1
	`

	_, err := r.db.Pool.Exec(ctx, query, fingerprint, ipAddress, now)
	return database.MapPostgresError(err)
}

// GetFingerprintHistory returns the most recently seen record for a fingerprint
func (r *AttemptRepository) GetFingerprintHistory(ctx context.Context, fingerprint string) (*models.FingerprintRecord, error) {
	query := `
		SELECT id, fingerprint, ip_address, first_seen, last_seen, request_count
		FROM fingerprint_history
		WHERE fingerprint = $1
		ORDER BY last_seen DESC
		LIMIT 1
	`

	var rec models.FingerprintRecord
	err := r.db.Pool.QueryRow(ctx, query, fingerprint).Scan(
		&rec.ID, &rec.Fingerprint, &rec.IPAddress, &rec.FirstSeen, &rec.LastSeen, &rec.RequestCount,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &rec, nil
}

// CleanupOlderThan removes attempts and fingerprint records older than the
// retention period. Returns the total number of rows deleted.
func (r *AttemptRepository) CleanupOlderThan(ctx context.Context, days int) (int64, error) {
	cutoff := time.Now().Add(-time.Duration(days) * 24 * time.Hour).Unix()

	attemptsTag, err := r.db.Pool.Exec(ctx, `DELETE FROM login_attempts WHERE timestamp < $1`, cutoff)
	if err != nil {
		return 0, database.MapPostgresError(err)
	}

	fingerprintsTag, err := r.db.Pool.Exec(ctx, `DELETE FROM fingerprint_history WHERE last_seen < $1`, cutoff)
	if err != nil {
		return attemptsTag.RowsAffected(), database.MapPostgresError(err)
	}

	return attemptsTag.RowsAffected() + fingerprintsTag.RowsAffected(), nil
}

// ComputeStatistics aggregates attempt activity over the trailing window
func (r *AttemptRepository) ComputeStatistics(ctx context.Context, window time.Duration) (*models.AttemptStatistics, error) {
	cutoff := time.Now().Add(-window).Unix()

	stats := &models.AttemptStatistics{TopBlockedIPs: []models.BlockedIP{}}

	summaryQuery := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE blocked),
			COALESCE(AVG(bot_score), 0)
		FROM login_attempts
		WHERE timestamp >= $1
	`
	err := r.db.Pool.QueryRow(ctx, summaryQuery, cutoff).Scan(
		&stats.TotalAttempts, &stats.BlockedAttempts, &stats.AvgBotScore,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	uniqueQuery := `
		SELECT COUNT(DISTINCT ip_address) FROM login_attempts WHERE timestamp >= $1
	`
	if err := r.db.Pool.QueryRow(ctx, uniqueQuery, cutoff).Scan(&stats.UniqueIPs); err != nil {
		return nil, database.MapPostgresError(err)
	}

	topBlockedQuery := `
		SELECT ip_address, COUNT(*) AS block_count
		FROM login_attempts
		WHERE blocked AND timestamp >= $1
		GROUP BY ip_address
		ORDER BY block_count DESC
		LIMIT 10
	`
	rows, err := r.db.Pool.Query(ctx, topBlockedQuery, cutoff)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	defer rows.Close()

	for rows.Next() {
		var b models.BlockedIP
		if err := rows.Scan(&b.IPAddress, &b.BlockCount); err != nil {
			return nil, err
		}
		stats.TopBlockedIPs = append(stats.TopBlockedIPs, b)
	}

	return stats, rows.Err()
}

// ResetAll truncates both tables. Demo tooling only.
func (r *AttemptRepository) ResetAll(ctx context.Context) error {
	_, err := r.db.Pool.Exec(ctx, `TRUNCATE login_attempts, fingerprint_history`)
	return database.MapPostgresError(err)
}
