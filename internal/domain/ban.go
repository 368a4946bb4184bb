package domain

import "time"

// BanRecord is an append-only audit entry, distinct from the live
// User.Status flag. Unbanning keeps the history.
type BanRecord struct {
	ID           string
	UserID       string
	BannedBy     string
	OriginalRole Role
	BanReason    string
	BannedAt     time.Time
}
