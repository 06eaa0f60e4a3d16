package models

// LoginAttempt is one row in the append-only login_attempts log.
// Timestamp is unix seconds; BotScore carries the final composite score
// computed for the request that produced this row.
type LoginAttempt struct {
	ID        int64  `db:"id" json:"id"`
	Username  string `db:"username" json:"username"`
	IPAddress string `db:"ip_address" json:"ip_address"`
	Timestamp int64  `db:"timestamp" json:"timestamp"`
	UserAgent string `db:"user_agent" json:"user_agent"`
	BotScore  int    `db:"bot_score" json:"bot_score"`
	Blocked   bool   `db:"blocked" json:"blocked"`
}

// FingerprintRecord tracks usage history of a browser fingerprint from one IP.
// Keyed by (fingerprint, ip_address); RequestCount only ever increases.
type FingerprintRecord struct {
	ID           int64  `db:"id" json:"id"`
	Fingerprint  string `db:"fingerprint" json:"fingerprint"`
	IPAddress    string `db:"ip_address" json:"ip_address"`
	FirstSeen    int64  `db:"first_seen" json:"first_seen"`
	LastSeen     int64  `db:"last_seen" json:"last_seen"`
	RequestCount int    `db:"request_count" json:"request_count"`
}

// BlockedIP is one entry in the top-blocked-IPs statistic
type BlockedIP struct {
	IPAddress  string `json:"ip_address"`
	BlockCount int    `json:"block_count"`
}

// AttemptStatistics aggregates login attempt activity over a window
type AttemptStatistics struct {
	TotalAttempts   int         `json:"total_attempts"`
	BlockedAttempts int         `json:"blocked_attempts"`
	AvgBotScore     float64     `json:"avg_bot_score"`
	UniqueIPs       int         `json:"unique_ips"`
	TopBlockedIPs   []BlockedIP `json:"top_blocked_ips"`
}
