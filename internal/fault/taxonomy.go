package fault

import (
	"fmt"
	"log/slog"
	"net/http"
)

// Type is the broad classification of a fault. It drives logging routing
// and client-side handling, never control flow.
type Type string

const (
	TypeValidation      Type = "validation"
	TypeAuthentication  Type = "authentication"
	TypeAuthorization   Type = "authorization"
	TypeNotFound        Type = "not_found"
	TypeConflict        Type = "conflict"
	TypeRateLimit       Type = "rate_limit"
	TypeExternalService Type = "external_service"
	TypeStorage         Type = "storage"
	TypeSystem          Type = "system"
	TypeNetwork         Type = "network"
	TypeTimeout         Type = "timeout"
	TypeUnknown         Type = "unknown"
)

// Severity is the ordered impact level of a fault.
type Severity int

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// LogLevel maps the severity to a slog level.
func (s Severity) LogLevel() slog.Level {
	switch s {
	case SeverityLow:
		return slog.LevelDebug
	case SeverityMedium:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

// Fallbacks for codes outside the taxonomy. Reporting a failure must never
// itself fail, so every lookup is total.
const (
	fallbackType     = TypeUnknown
	fallbackSeverity = SeverityMedium
	fallbackStatus   = http.StatusInternalServerError
	fallbackMessage  = "An unexpected error occurred. Please try again later."
)

var codeTypes = map[Code]Type{
	CodeValidationFailed:      TypeValidation,
	CodeMissingField:          TypeValidation,
	CodeUnauthorized:          TypeAuthentication,
	CodeForbidden:             TypeAuthorization,
	CodeNotFound:              TypeNotFound,
	CodeConflict:              TypeConflict,
	CodeDuplicateEntry:        TypeConflict,
	CodeRateLimited:           TypeRateLimit,
	CodeStorageQueryFailed:    TypeStorage,
	CodeStorageTimeout:        TypeTimeout,
	CodeExternalService:       TypeExternalService,
	CodeDependencyAuth:        TypeExternalService,
	CodeDependencyUnavailable: TypeExternalService,
	CodeDependencyTimeout:     TypeTimeout,
	CodeConnectionRefused:     TypeNetwork,
	CodeHostUnreachable:       TypeNetwork,
	CodeNetworkTimeout:        TypeTimeout,
	CodeSendFailed:            TypeNetwork,
	CodeInternal:              TypeSystem,
	CodeUnknown:               TypeUnknown,
}

var codeSeverities = map[Code]Severity{
	CodeValidationFailed:      SeverityLow,
	CodeMissingField:          SeverityLow,
	CodeUnauthorized:          SeverityMedium,
	CodeForbidden:             SeverityMedium,
	CodeNotFound:              SeverityLow,
	CodeConflict:              SeverityMedium,
	CodeDuplicateEntry:        SeverityMedium,
	CodeRateLimited:           SeverityMedium,
	CodeStorageQueryFailed:    SeverityHigh,
	CodeStorageTimeout:        SeverityHigh,
	CodeExternalService:       SeverityHigh,
	CodeDependencyAuth:        SeverityHigh,
	CodeDependencyUnavailable: SeverityHigh,
	CodeDependencyTimeout:     SeverityHigh,
	CodeConnectionRefused:     SeverityHigh,
	CodeHostUnreachable:       SeverityHigh,
	CodeNetworkTimeout:        SeverityHigh,
	CodeSendFailed:            SeverityMedium,
	CodeInternal:              SeverityCritical,
	CodeUnknown:               SeverityMedium,
}

var codeStatuses = map[Code]int{
	CodeValidationFailed:      http.StatusBadRequest,
	CodeMissingField:          http.StatusBadRequest,
	CodeUnauthorized:          http.StatusUnauthorized,
	CodeForbidden:             http.StatusForbidden,
	CodeNotFound:              http.StatusNotFound,
	CodeConflict:              http.StatusConflict,
	CodeDuplicateEntry:        http.StatusConflict,
	CodeRateLimited:           http.StatusTooManyRequests,
	CodeStorageQueryFailed:    http.StatusInternalServerError,
	CodeStorageTimeout:        http.StatusGatewayTimeout,
	CodeExternalService:       http.StatusBadGateway,
	CodeDependencyAuth:        http.StatusBadGateway,
	CodeDependencyUnavailable: http.StatusServiceUnavailable,
	CodeDependencyTimeout:     http.StatusGatewayTimeout,
	CodeConnectionRefused:     http.StatusBadGateway,
	CodeHostUnreachable:       http.StatusBadGateway,
	CodeNetworkTimeout:        http.StatusGatewayTimeout,
	CodeSendFailed:            http.StatusInternalServerError,
	CodeInternal:              http.StatusInternalServerError,
	CodeUnknown:               http.StatusInternalServerError,
}

var codeMessages = map[Code]string{
	CodeValidationFailed:      "The request contains invalid data.",
	CodeMissingField:          "A required field is missing.",
	CodeUnauthorized:          "Authentication is required.",
	CodeForbidden:             "You do not have permission to perform this action.",
	CodeNotFound:              "The requested resource was not found.",
	CodeConflict:              "The request conflicts with the current state.",
	CodeDuplicateEntry:        "The resource already exists.",
	CodeRateLimited:           "Too many requests. Please slow down.",
	CodeStorageQueryFailed:    "A storage operation failed.",
	CodeStorageTimeout:        "A storage operation timed out.",
	CodeExternalService:       "An upstream service failed.",
	CodeDependencyAuth:        "An upstream service rejected our credentials.",
	CodeDependencyUnavailable: "An upstream service is unavailable.",
	CodeDependencyTimeout:     "An upstream service timed out.",
	CodeConnectionRefused:     "A network connection was refused.",
	CodeHostUnreachable:       "A remote host could not be reached.",
	CodeNetworkTimeout:        "A network operation timed out.",
	CodeSendFailed:            "Failed to deliver a message to the client.",
	CodeInternal:              "An internal error occurred. Please try again later.",
	CodeUnknown:               fallbackMessage,
}

// TypeOf returns the type mapped to the code, TypeUnknown for codes
// outside the taxonomy.
func TypeOf(c Code) Type {
	if t, ok := codeTypes[c]; ok {
		return t
	}
	return fallbackType
}

// SeverityOf returns the severity mapped to the code.
func SeverityOf(c Code) Severity {
	if s, ok := codeSeverities[c]; ok {
		return s
	}
	return fallbackSeverity
}

// StatusOf returns the transport status mapped to the code.
func StatusOf(c Code) int {
	if s, ok := codeStatuses[c]; ok {
		return s
	}
	return fallbackStatus
}

// MessageOf returns the default user-facing message mapped to the code.
func MessageOf(c Code) string {
	if m, ok := codeMessages[c]; ok {
		return m
	}
	return fallbackMessage
}

// ValidateTaxonomy checks that every code appears in all four mapping
// tables. A missing entry is a programming error; call this at startup.
func ValidateTaxonomy() error {
	for _, c := range Codes {
		if _, ok := codeTypes[c]; !ok {
			return fmt.Errorf("taxonomy: code %s has no type mapping", c)
		}
		if _, ok := codeSeverities[c]; !ok {
			return fmt.Errorf("taxonomy: code %s has no severity mapping", c)
		}
		if _, ok := codeStatuses[c]; !ok {
			return fmt.Errorf("taxonomy: code %s has no status mapping", c)
		}
		if _, ok := codeMessages[c]; !ok {
			return fmt.Errorf("taxonomy: code %s has no message mapping", c)
		}
	}
	return nil
}
