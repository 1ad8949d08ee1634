package dto

import "time"

// ErrorResponse is the uniform error shape for every endpoint.
type ErrorResponse struct {
	Error string `json:"error"`
}

// TrackResponse represents a successful beacon ingestion response
type TrackResponse struct {
	Success    bool   `json:"success"`
	EventID    string `json:"eventId"`
	Updated    bool   `json:"updated,omitempty"`
	PageChange bool   `json:"pageChange,omitempty"`
}

// Visitor is the per-visitor detail inside a real-time snapshot: the most
// recent event of each distinct visitor key in the trailing window.
type Visitor struct {
	ID        string    `json:"id"`
	PageURL   string    `json:"pageUrl"`
	Referrer  string    `json:"referrer"`
	Country   string    `json:"country"`
	City      string    `json:"city"`
	UserAgent string    `json:"userAgent"`
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"sessionId"`
	IP        string    `json:"ip"`
}

// RealtimeStats represents the live visitor snapshot for a project
type RealtimeStats struct {
	Count    int       `json:"count"`
	Visitors []Visitor `json:"visitors"`
}

// Message types carried on the real-time stream.
const (
	MessageTypeConnected = "connected"
	MessageTypeStats     = "stats"
	MessageTypeError     = "error"
)

// RealtimeMessage is one message on the SSE stream. The Type field tells the
// dashboard client how to interpret the rest.
type RealtimeMessage struct {
	Type      string    `json:"type"`
	Count     int       `json:"count,omitempty"`
	Visitors  []Visitor `json:"visitors,omitempty"`
	Timestamp string    `json:"timestamp,omitempty"`
	Message   string    `json:"message,omitempty"`
}

// DailyStats represents unique visitors for a single day
type DailyStats struct {
	Date      string `json:"date"`
	Visitors  int    `json:"visitors"`
	PageViews int    `json:"pageViews"`
}

// CountryStats represents unique visitors grouped by country
type CountryStats struct {
	Country    string  `json:"country"`
	Visitors   int     `json:"visitors"`
	Percentage float64 `json:"percentage"`
}

// ReferrerStats represents unique visitors grouped by referrer hostname
type ReferrerStats struct {
	Referrer   string  `json:"referrer"`
	Visitors   int     `json:"visitors"`
	Percentage float64 `json:"percentage"`
}

// Project is the API representation of a project
type Project struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

// SnippetResponse carries the copy-pastable script tag for a project
type SnippetResponse struct {
	ScriptTag string `json:"scriptTag"`
}
