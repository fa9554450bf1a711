package model

// APIError is a failure reported by the catalog API
type APIError struct {
	Message       string `json:"message"`
	Code          string `json:"code,omitempty"`
	StatusCode    int    `json:"statusCode,omitempty"`
	CorrelationID string `json:"correlationId,omitempty"`
	Details       any    `json:"details,omitempty"`
}

// Error returns the message prefixed with the error code when there is one
func (e *APIError) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return e.Code + ": " + e.Message
}

// Error codes returned by the local catalog server
const (
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodePropertyTooLarge = "PROPERTY_TOO_LARGE"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeInvalidPayload   = "INVALID_PAYLOAD"
	ErrCodeInternal         = "INTERNAL_ERROR"
)
