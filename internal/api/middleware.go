package api

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type contextKey string

const correlationKey contextKey = "correlation_id"

const correlationHeader = "X-Correlation-ID"

// withCorrelation tags every request with a correlation ID so a failure
// rendered to the client can be matched against the log line.
func withCorrelation(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(correlationHeader)
		if id == "" {
			id = uuid.NewString()
		}

		w.Header().Set(correlationHeader, id)
		ctx := context.WithValue(r.Context(), correlationKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func correlationID(ctx context.Context) string {
	id, _ := ctx.Value(correlationKey).(string)
	return id
}
