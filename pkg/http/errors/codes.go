package errors

// Error codes for standardized error responses
const (
	// Validation errors
	ErrCodeInvalidRequest   = "invalid_request"
	ErrCodeValidationFailed = "validation_failed"
	ErrCodeInvalidIndex     = "invalid_index"
	ErrCodeInvalidTestID    = "invalid_test_id"

	// Import errors
	ErrCodeInvalidPayload   = "invalid_payload"
	ErrCodeNoQuestionsFound = "no_questions_found"

	// Resource errors
	ErrCodeNotFound         = "not_found"
	ErrCodeQuestionNotFound = "question_not_found"
	ErrCodeTestNotFound     = "test_not_found"
	ErrCodeEmptyBank        = "empty_bank"

	// Server errors
	ErrCodeInternalError = "internal_error"
	ErrCodeCorruptBank   = "corrupt_bank"
	ErrCodeUpstreamError = "upstream_error"
)
