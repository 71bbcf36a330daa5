package models

// ErrorResponse is returned for all failed requests. Only Message is always set.
type ErrorResponse struct {
	Success         *bool  `json:"success,omitempty"`
	Message         string `json:"message"`
	Error           string `json:"error,omitempty"`
	ExtractedLength *int   `json:"extractedLength,omitempty"`
}
