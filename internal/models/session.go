package models

import "time"

// Session identifies the authenticated user behind a request.
type Session struct {
	UserID    string
	Username  string
	Email     string
	ExpiresAt time.Time
}
