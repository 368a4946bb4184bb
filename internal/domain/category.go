package domain

import "time"

// Category groups events for browsing.
type Category struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
}
