package fault

import "fmt"

// Constructors for well-known failure situations. Each returns a fully
// formed *Error with contextual metadata populated; callers never need to
// know taxonomy internals.

// Validation reports an invalid value for a named field.
func Validation(field, reason string) *Error {
	return newError(CodeValidationFailed, fmt.Sprintf("validation failed for %q: %s", field, reason), 1).
		WithMeta("field", field)
}

// MissingField reports a required field absent from the input.
func MissingField(field string) *Error {
	return newError(CodeMissingField, fmt.Sprintf("required field %q is missing", field), 1).
		WithMeta("field", field)
}

// Unauthorized reports a missing or invalid credential.
func Unauthorized(reason string) *Error {
	return newError(CodeUnauthorized, reason, 1)
}

// Forbidden reports a permitted-identity, denied-action situation.
func Forbidden(action string) *Error {
	return newError(CodeForbidden, fmt.Sprintf("not allowed to %s", action), 1).
		WithMeta("action", action)
}

// NotFound reports a missing resource of the given kind.
func NotFound(resource, id string) *Error {
	return newError(CodeNotFound, fmt.Sprintf("%s %q not found", resource, id), 1).
		WithMeta("resource", resource).
		WithMeta("id", id)
}

// Conflict reports a state conflict on a resource.
func Conflict(resource, detail string) *Error {
	return newError(CodeConflict, fmt.Sprintf("conflict on %s: %s", resource, detail), 1).
		WithMeta("resource", resource)
}

// Duplicate reports a uniqueness violation.
func Duplicate(resource, id string) *Error {
	return newError(CodeDuplicateEntry, fmt.Sprintf("%s %q already exists", resource, id), 1).
		WithMeta("resource", resource).
		WithMeta("id", id)
}

// RateLimited reports a client exceeding its request budget.
func RateLimited(clientID string, limit int) *Error {
	return newError(CodeRateLimited, fmt.Sprintf("client %s exceeded limit of %d requests", clientID, limit), 1).
		WithMeta("client_id", clientID).
		WithMeta("limit", limit)
}

// Timeout reports an operation exceeding its deadline.
func Timeout(operation string, cause error) *Error {
	return newError(CodeNetworkTimeout, fmt.Sprintf("%s timed out", operation), 1).
		WithMeta("operation", operation).
		WithCause(cause)
}

// StorageFailed reports a failed storage query.
func StorageFailed(operation string, cause error) *Error {
	return newError(CodeStorageQueryFailed, fmt.Sprintf("storage operation %s failed", operation), 1).
		WithMeta("operation", operation).
		WithCause(cause)
}

// ExternalService reports a generic upstream failure.
func ExternalService(service string, cause error) *Error {
	return newError(CodeExternalService, fmt.Sprintf("external service %s failed", service), 1).
		WithMeta("service", service).
		WithCause(cause)
}

// DependencyAuth reports an upstream rejecting our credentials.
func DependencyAuth(service string, cause error) *Error {
	return newError(CodeDependencyAuth, fmt.Sprintf("authentication with %s failed", service), 1).
		WithMeta("service", service).
		WithCause(cause)
}

// DependencyUnavailable reports an unreachable or down upstream.
func DependencyUnavailable(service string, cause error) *Error {
	return newError(CodeDependencyUnavailable, fmt.Sprintf("%s is unavailable", service), 1).
		WithMeta("service", service).
		WithCause(cause)
}

// DependencyTimeout reports an upstream exceeding its deadline.
func DependencyTimeout(service string, cause error) *Error {
	return newError(CodeDependencyTimeout, fmt.Sprintf("%s timed out", service), 1).
		WithMeta("service", service).
		WithCause(cause)
}

// ConnectionRefused reports a refused network connection.
func ConnectionRefused(host string, port int, cause error) *Error {
	return newError(CodeConnectionRefused, fmt.Sprintf("connection to %s:%d refused", host, port), 1).
		WithMeta("host", host).
		WithMeta("port", port).
		WithCause(cause)
}

// HostUnreachable reports a host that could not be resolved or reached.
func HostUnreachable(host string, cause error) *Error {
	return newError(CodeHostUnreachable, fmt.Sprintf("host %s unreachable", host), 1).
		WithMeta("host", host).
		WithCause(cause)
}

// SendFailed reports a failed delivery to a connected client.
func SendFailed(connID string, cause error) *Error {
	return newError(CodeSendFailed, fmt.Sprintf("failed to send to connection %s", connID), 1).
		WithMeta("connection_id", connID).
		WithCause(cause)
}

// Internal reports an unexpected failure with no better classification.
func Internal(msg string, cause error) *Error {
	return newError(CodeInternal, msg, 1).WithCause(cause)
}
