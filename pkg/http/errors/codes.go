package errors

// Error codes for standardized error responses
const (
	// Validation errors
	ErrCodeInvalidRequest   = "invalid_request"
	ErrCodeInvalidLimit     = "invalid_limit"
	ErrCodeMethodNotAllowed = "method_not_allowed"

	// Quiz errors
	ErrCodeInvalidAnswer   = "invalid_answer"
	ErrCodeQuizUnavailable = "quiz_unavailable"

	// WebSocket errors
	ErrCodeInvalidPayload     = "invalid_payload"
	ErrCodeUnknownMessageType = "unknown_message_type"
	ErrCodeConnectionError    = "connection_error"

	// Server errors
	ErrCodeInternalError      = "internal_error"
	ErrCodeServiceUnavailable = "service_unavailable"
)
