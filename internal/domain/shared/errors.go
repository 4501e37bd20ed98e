package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Error codes used across the receipt and cash-cut domain
const (
	CodeValidation        = "VALIDATION_ERROR"
	CodeForbidden         = "FORBIDDEN"
	CodeTransport         = "TRANSPORT_ERROR"
	CodeNotFound          = "NOT_FOUND"
	CodeIntegrityMismatch = "INTEGRITY_MISMATCH"
)

// Common domain errors
var (
	ErrNotFound        = NewDomainError(CodeNotFound, "Resource not found")
	ErrAlreadyExists   = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput    = NewDomainError(CodeValidation, "Invalid input provided")
	ErrForbidden       = NewDomainError(CodeForbidden, "Access to this resource is forbidden")
	ErrInvalidState    = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrUpstreamFailure = NewDomainError(CodeTransport, "Upstream service unavailable")
)

// NewValidationError builds a VALIDATION_ERROR with a specific message.
func NewValidationError(message string) *DomainError {
	return NewDomainError(CodeValidation, message)
}

// NewAuthorizationError builds a FORBIDDEN error with a specific message.
func NewAuthorizationError(message string) *DomainError {
	return NewDomainError(CodeForbidden, message)
}

// NewTransportError builds a retryable TRANSPORT_ERROR with a specific message.
func NewTransportError(message string) *DomainError {
	return NewDomainError(CodeTransport, message)
}

// IsRetryable reports whether the error is worth retrying by the caller.
// Only transport failures qualify; validation and authorization never do.
func (e *DomainError) IsRetryable() bool {
	return e.Code == CodeTransport
}
