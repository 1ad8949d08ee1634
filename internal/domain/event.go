package domain

import "time"

// UnknownLocation is the sentinel stored when no geo source could resolve
// the visitor's country or city.
const UnknownLocation = "Unknown"

// Event represents one tracked page view. An event is created on the first
// beacon of a session (or on navigation to a new page) and refreshed in
// place while the visitor stays on the same page inside the dedup window.
type Event struct {
	ID        string
	ProjectID string
	SessionID string
	PageURL   string
	Referrer  string
	UserAgent string
	IP        string
	Country   string
	City      string
	Timestamp time.Time
}

// VisitorKey is the identity used for uniqueness counting: the
// client-generated session id when present, the IP address otherwise.
func (e *Event) VisitorKey() string {
	if e.SessionID != "" {
		return e.SessionID
	}
	return e.IP
}

// Project owns zero or more events and is the addressing key of the
// real-time channel.
type Project struct {
	ID        string
	Name      string
	UserID    string
	CreatedAt time.Time
}

// User exists as the ownership boundary for projects. Identity resolution
// itself lives in the auth middleware.
type User struct {
	ID        string
	Email     string
	CreatedAt time.Time
}
