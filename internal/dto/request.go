package dto

// TrackRequest is the beacon body posted by the tracking snippet. Field
// names match the snippet's wire format.
type TrackRequest struct {
	ProjectID string `json:"projectId"`
	PageURL   string `json:"pageUrl"`
	Referrer  string `json:"referrer"`
	UserAgent string `json:"userAgent"`
	SessionID string `json:"sessionId"`
}

// CreateProjectRequest represents a create project request
type CreateProjectRequest struct {
	Name string `json:"name" binding:"required"`
}
