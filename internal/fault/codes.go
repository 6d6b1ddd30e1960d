// Package fault normalizes arbitrary failures into a closed taxonomy of
// error codes with fixed type, severity, transport status, and user message
// mappings. All layers report failures through this package.
package fault

// Code identifies one entry of the fault taxonomy.
type Code string

const (
	// Validation
	CodeValidationFailed Code = "VALIDATION_FAILED"
	CodeMissingField     Code = "MISSING_FIELD"

	// Authentication and authorization
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeForbidden    Code = "FORBIDDEN"

	// Resource state
	CodeNotFound       Code = "NOT_FOUND"
	CodeConflict       Code = "CONFLICT"
	CodeDuplicateEntry Code = "DUPLICATE_ENTRY"
	CodeRateLimited    Code = "RATE_LIMITED"

	// Storage
	CodeStorageQueryFailed Code = "STORAGE_QUERY_FAILED"
	CodeStorageTimeout     Code = "STORAGE_TIMEOUT"

	// External dependencies
	CodeExternalService       Code = "EXTERNAL_SERVICE_ERROR"
	CodeDependencyAuth        Code = "DEPENDENCY_AUTH_FAILED"
	CodeDependencyUnavailable Code = "DEPENDENCY_UNAVAILABLE"
	CodeDependencyTimeout     Code = "DEPENDENCY_TIMEOUT"

	// Network
	CodeConnectionRefused Code = "CONNECTION_REFUSED"
	CodeHostUnreachable   Code = "HOST_UNREACHABLE"
	CodeNetworkTimeout    Code = "NETWORK_TIMEOUT"
	CodeSendFailed        Code = "SEND_FAILED"

	// System
	CodeInternal Code = "INTERNAL_ERROR"
	CodeUnknown  Code = "UNKNOWN"
)

// String returns the string representation of the code.
func (c Code) String() string {
	return string(c)
}

// Codes lists every code in the taxonomy. Used by the completeness check
// and by tests; new codes must be added here and to all mapping tables.
var Codes = []Code{
	CodeValidationFailed,
	CodeMissingField,
	CodeUnauthorized,
	CodeForbidden,
	CodeNotFound,
	CodeConflict,
	CodeDuplicateEntry,
	CodeRateLimited,
	CodeStorageQueryFailed,
	CodeStorageTimeout,
	CodeExternalService,
	CodeDependencyAuth,
	CodeDependencyUnavailable,
	CodeDependencyTimeout,
	CodeConnectionRefused,
	CodeHostUnreachable,
	CodeNetworkTimeout,
	CodeSendFailed,
	CodeInternal,
	CodeUnknown,
}
