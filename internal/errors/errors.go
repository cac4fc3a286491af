// Package errors provides enhanced error types with helpful context and suggestions
package errors

import (
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

const (
	// Construction-time errors
	ErrCodeConfiguration       ErrorCode = "CONFIGURATION_INVALID"
	ErrCodeSchemaIntrospection ErrorCode = "SCHEMA_INTROSPECTION_FAILED"

	// Query lifecycle errors
	ErrCodeTranslation          ErrorCode = "TRANSLATION_FAILED"
	ErrCodeValidationRejected   ErrorCode = "VALIDATION_REJECTED"
	ErrCodeDestructiveOperation ErrorCode = "DESTRUCTIVE_OPERATION"
	ErrCodeExecution            ErrorCode = "EXECUTION_FAILED"
	ErrCodeNoPriorQuery         ErrorCode = "NO_PRIOR_QUERY"

	// Conversation store errors
	ErrCodeStoreRead  ErrorCode = "CONVERSATION_READ_FAILED"
	ErrCodeStoreWrite ErrorCode = "CONVERSATION_WRITE_FAILED"

	// Authentication errors
	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeTokenCreation      ErrorCode = "TOKEN_CREATION_FAILED"
	ErrCodeNotAuthenticated   ErrorCode = "NOT_AUTHENTICATED"
	ErrCodeInsufficientPerms  ErrorCode = "INSUFFICIENT_PERMISSIONS"
	ErrCodeQuotaExceeded      ErrorCode = "QUERY_QUOTA_EXCEEDED"

	// Input validation errors
	ErrCodeInvalidInput    ErrorCode = "INVALID_INPUT"
	ErrCodeMissingRequired ErrorCode = "MISSING_REQUIRED_FIELD"
)

// EnhancedError represents an error with additional context and helpful information
type EnhancedError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	Details    string                 `json:"details,omitempty"`
	Suggestion string                 `json:"suggestion,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	Cause      error                  `json:"-"`
}

// Error implements the error interface
func (e *EnhancedError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))
	if e.Details != "" {
		sb.WriteString(fmt.Sprintf(": %s", e.Details))
	}
	if e.Cause != nil {
		sb.WriteString(fmt.Sprintf(" (cause: %v)", e.Cause))
	}
	return sb.String()
}

// Unwrap returns the underlying error for error chain unwrapping
func (e *EnhancedError) Unwrap() error {
	return e.Cause
}

// UserMessage returns a user-friendly error message with suggestions
func (e *EnhancedError) UserMessage() string {
	var sb strings.Builder
	sb.WriteString(e.Message)

	if e.Details != "" {
		sb.WriteString(fmt.Sprintf("\n\nDetails: %s", e.Details))
	}

	if e.Suggestion != "" {
		sb.WriteString(fmt.Sprintf("\n\nSuggestion: %s", e.Suggestion))
	}

	return sb.String()
}

// New creates a new EnhancedError
func New(code ErrorCode, message string) *EnhancedError {
	return &EnhancedError{
		Code:     code,
		Message:  message,
		Metadata: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with enhanced context
func Wrap(err error, code ErrorCode, message string) *EnhancedError {
	return &EnhancedError{
		Code:     code,
		Message:  message,
		Cause:    err,
		Metadata: make(map[string]interface{}),
	}
}

// WithDetails adds detailed information about the error
func (e *EnhancedError) WithDetails(details string) *EnhancedError {
	e.Details = details
	return e
}

// WithSuggestion adds a suggestion on how to fix the error
func (e *EnhancedError) WithSuggestion(suggestion string) *EnhancedError {
	e.Suggestion = suggestion
	return e
}

// WithMetadata adds additional metadata to the error
func (e *EnhancedError) WithMetadata(key string, value interface{}) *EnhancedError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// Code extracts the error code from an error, or empty string for plain errors
func Code(err error) ErrorCode {
	if enhanced, ok := err.(*EnhancedError); ok {
		return enhanced.Code
	}
	return ""
}

// Common error constructors with pre-configured messages

// NewConfigurationError creates an error for invalid construction-time configuration
func NewConfigurationError(detail string) *EnhancedError {
	return New(ErrCodeConfiguration, "Invalid configuration").
		WithDetails(detail).
		WithSuggestion("Check the service environment variables against the documented configuration surface.")
}

// NewSchemaIntrospectionError creates an error for schema discovery failures
func NewSchemaIntrospectionError(err error, locator string) *EnhancedError {
	return Wrap(err, ErrCodeSchemaIntrospection, "Failed to introspect database schema").
		WithDetails(fmt.Sprintf("Could not read table definitions from %s", locator)).
		WithSuggestion("Verify the database locator is reachable, or disable dynamic schema discovery and supply a static schema.").
		WithMetadata("retryable", true)
}

// NewTranslationError creates an error for SQL generation failures
func NewTranslationError(err error) *EnhancedError {
	return Wrap(err, ErrCodeTranslation, "Failed to translate natural language to SQL").
		WithDetails("The language model was unable to produce a SQL statement for this request").
		WithSuggestion("Try rephrasing the question, or simplify it to mention a single table.").
		WithMetadata("retryable", true)
}

// NewValidationRejectedError creates an error for validator-declined SQL
func NewValidationRejectedError(detail string) *EnhancedError {
	return New(ErrCodeValidationRejected, "Generated SQL was rejected by schema validation").
		WithDetails(detail).
		WithSuggestion("Rephrase the question using table and column names that exist in the schema.")
}

// NewDestructiveOperationError creates an error for guard-rejected statements
func NewDestructiveOperationError(keyword string) *EnhancedError {
	return New(ErrCodeDestructiveOperation, "Destructive operations are not allowed in read-only mode").
		WithDetails(fmt.Sprintf("The statement contains the destructive keyword %q", keyword)).
		WithSuggestion("Ask a read-only question, or run the service with read-only mode disabled.").
		WithMetadata("keyword", keyword)
}

// NewExecutionError creates an error for database-layer faults during execution
func NewExecutionError(err error) *EnhancedError {
	return Wrap(err, ErrCodeExecution, "Failed to execute SQL statement").
		WithDetails("The database reported an error while running the generated statement").
		WithMetadata("retryable", true)
}

// NewNoPriorQueryError creates an error for refinement without history
func NewNoPriorQueryError(userID string) *EnhancedError {
	return New(ErrCodeNoPriorQuery, "No previous query to refine.").
		WithDetails(fmt.Sprintf("User %q has no conversation history", userID)).
		WithSuggestion("Submit a query first, then send feedback to refine it.").
		WithMetadata("user_id", userID)
}

// NewInvalidCredentialsError creates an error for authentication failures
func NewInvalidCredentialsError() *EnhancedError {
	return New(ErrCodeInvalidCredentials, "Invalid username or password").
		WithDetails("Authentication failed with the provided credentials").
		WithSuggestion("Check your username and password and try again.")
}

// NewTokenCreationError creates an error for token creation failures
func NewTokenCreationError(err error) *EnhancedError {
	return Wrap(err, ErrCodeTokenCreation, "Failed to create authentication token").
		WithSuggestion("Try logging in again. If the problem persists, contact support.").
		WithMetadata("retryable", true)
}

// NewNotAuthenticatedError creates an error for unauthenticated requests
func NewNotAuthenticatedError() *EnhancedError {
	return New(ErrCodeNotAuthenticated, "Authentication required").
		WithDetails("This endpoint requires authentication").
		WithSuggestion("Log in via /api/v1/auth/login, or include a valid API key in the 'X-API-Key' header.")
}

// NewQuotaExceededError creates an error for exhausted per-user query quotas
func NewQuotaExceededError(userID string, window string) *EnhancedError {
	return New(ErrCodeQuotaExceeded, "Query quota exceeded").
		WithDetails(fmt.Sprintf("User %q has used up the %s language-model call quota", userID, window)).
		WithSuggestion("Wait for the quota window to reset, or ask an administrator to raise the limit.").
		WithMetadata("window", window)
}

// NewInvalidInputError creates an error for invalid input
func NewInvalidInputError(field string, reason string) *EnhancedError {
	return New(ErrCodeInvalidInput, "Invalid input").
		WithDetails(fmt.Sprintf("Field '%s' is invalid: %s", field, reason)).
		WithSuggestion("Check the API documentation for the expected format and try again.")
}

// NewMissingFieldError creates an error for absent required request fields
func NewMissingFieldError(field string) *EnhancedError {
	return New(ErrCodeMissingRequired, "Missing required field").
		WithDetails(fmt.Sprintf("Field '%s' is required", field)).
		WithSuggestion("Include the field in the request body and retry.")
}
