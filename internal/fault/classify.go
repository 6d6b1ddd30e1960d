package fault

import (
	"context"
	"errors"
	"io/fs"
	"net"
	"net/http"
	"strconv"
	"strings"
	"syscall"

	"github.com/vinhng/gatewatch/internal/metrics"
)

// Context carries call-site hints for the classifier. All fields are
// optional; the classifier uses whatever is available.
type Context struct {
	Field      string // field under validation
	Resource   string // resource kind for not-found/conflict hints
	ID         string // resource id
	Endpoint   string // upstream endpoint for transport-status hints
	Dependency string // named external dependency, e.g. "renderer"
	Host       string
	Port       int
}

// Coder is implemented by failures carrying a platform-style error code
// such as "ECONNREFUSED". Queried defensively; absence is fine.
type Coder interface {
	ErrorCode() string
}

// Statuser is implemented by failures carrying a transport status hint.
type Statuser interface {
	StatusCode() int
}

// FieldError is a declared validation failure raised by input-checking
// glue. The classifier maps it to the validation category.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return "validation failed for " + e.Field + ": " + e.Reason
}

// Classify normalizes an arbitrary native failure into a classified Error.
// Already-classified inputs are returned unchanged. The heuristic rules run
// in a fixed order with first match winning, so ambiguous messages classify
// identically across runs. Classify never fails: when no rule matches the
// input is wrapped as a generic internal error.
func Classify(err error, ctx Context) *Error {
	if err == nil {
		return nil
	}
	if ce, ok := err.(*Error); ok {
		return ce
	}
	var wrapped *Error
	if errors.As(err, &wrapped) {
		return wrapped
	}

	ce := classify(err, ctx)
	metrics.ErrorsClassified.WithLabelValues(string(ce.Type()), ce.Severity().String()).Inc()
	return ce
}

func classify(err error, ctx Context) *Error {
	msg := strings.ToLower(err.Error())
	code := platformCode(err)

	// 1. Storage-layer signatures.
	switch {
	case code == "SQLITE_CONSTRAINT",
		strings.Contains(msg, "unique constraint"),
		strings.Contains(msg, "duplicate key"),
		strings.Contains(msg, "duplicate entry"):
		res := ctx.Resource
		if res == "" {
			res = "record"
		}
		return Duplicate(res, ctx.ID).WithCause(err)

	case code == "SQLITE_BUSY",
		strings.Contains(msg, "database is locked"),
		strings.Contains(msg, "lock wait timeout"),
		strings.Contains(msg, "deadlock"):
		return newError(CodeStorageTimeout, "storage lock contention", 1).WithCause(err)

	case strings.Contains(msg, "no such table"),
		strings.Contains(msg, "no such column"),
		strings.Contains(msg, "undefined table"),
		strings.Contains(msg, "undefined column"):
		return StorageFailed("query", err)
	}

	// 2. Network signatures. Generic "timeout" wording is left for the
	// dependency rule below; only platform-level timeout signals match here.
	host, port := hostPort(ctx, err)
	switch {
	case code == "ECONNREFUSED",
		errors.Is(err, syscall.ECONNREFUSED),
		strings.Contains(msg, "connection refused"):
		return ConnectionRefused(host, port, err)

	case code == "ENOTFOUND", code == "EHOSTUNREACH",
		errors.Is(err, syscall.EHOSTUNREACH),
		strings.Contains(msg, "no such host"),
		strings.Contains(msg, "host unreachable"):
		return HostUnreachable(host, err)

	case code == "ETIMEDOUT",
		errors.Is(err, context.DeadlineExceeded),
		isNetTimeout(err),
		strings.Contains(msg, "i/o timeout"),
		strings.Contains(msg, "connection timed out"):
		ne := newError(CodeNetworkTimeout, "network operation timed out", 1).WithCause(err)
		if host != "" {
			ne.WithMeta("host", host)
		}
		if port != 0 {
			ne.WithMeta("port", port)
		}
		return ne
	}

	// 3. Named external-dependency signatures, refined by sub-strings.
	if dep := strings.ToLower(ctx.Dependency); dep != "" && strings.Contains(msg, dep) {
		switch {
		case strings.Contains(msg, "timed out"), strings.Contains(msg, "timeout"):
			return DependencyTimeout(ctx.Dependency, err)
		case strings.Contains(msg, "unauthorized"),
			strings.Contains(msg, "forbidden"),
			strings.Contains(msg, "api key"),
			strings.Contains(msg, "auth"):
			return DependencyAuth(ctx.Dependency, err)
		case strings.Contains(msg, "unavailable"),
			strings.Contains(msg, "refused"),
			strings.Contains(msg, "connect"):
			return DependencyUnavailable(ctx.Dependency, err)
		default:
			return ExternalService(ctx.Dependency, err)
		}
	}

	// 4. Declared validation errors.
	var fe *FieldError
	if errors.As(err, &fe) {
		field := fe.Field
		if field == "" {
			field = ctx.Field
		}
		return Validation(field, fe.Reason).WithCause(err)
	}

	// 5. Transport-status hints.
	if status := transportStatus(err); status != 0 {
		if ce := fromStatus(status, ctx, err); ce != nil {
			return ce
		}
	}

	// 6. Filesystem not-found.
	if errors.Is(err, fs.ErrNotExist) || strings.Contains(msg, "no such file or directory") {
		return newError(CodeNotFound, "file not found", 1).
			WithMeta("resource", "file").
			WithCause(err)
	}

	// 7. No rule matched.
	return Internal("unclassified failure", err)
}

func fromStatus(status int, ctx Context, err error) *Error {
	var ce *Error
	switch status {
	case http.StatusNotFound:
		res := ctx.Resource
		if res == "" {
			res = "resource"
		}
		ce = NotFound(res, ctx.ID)
	case http.StatusUnauthorized:
		ce = Unauthorized("upstream returned 401")
	case http.StatusForbidden:
		ce = Forbidden("access upstream resource")
	case http.StatusConflict:
		res := ctx.Resource
		if res == "" {
			res = "resource"
		}
		ce = Conflict(res, "upstream returned 409")
	case http.StatusTooManyRequests:
		ce = newError(CodeRateLimited, "upstream rate limit hit", 1)
	default:
		return nil
	}

	ce.WithCause(err)
	if ctx.Endpoint != "" {
		ce.WithMeta("endpoint", ctx.Endpoint)
	}
	return ce
}

func platformCode(err error) string {
	var c Coder
	if errors.As(err, &c) {
		return c.ErrorCode()
	}
	return ""
}

func transportStatus(err error) int {
	var s Statuser
	if errors.As(err, &s) {
		return s.StatusCode()
	}
	return 0
}

func isNetTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// hostPort resolves host/port hints, preferring the caller's context over
// whatever can be parsed out of a net.OpError address.
func hostPort(ctx Context, err error) (string, int) {
	if ctx.Host != "" {
		return ctx.Host, ctx.Port
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Addr != nil {
		host, portStr, splitErr := net.SplitHostPort(opErr.Addr.String())
		if splitErr != nil {
			return opErr.Addr.String(), 0
		}
		port, _ := strconv.Atoi(portStr)
		return host, port
	}

	return "", 0
}
