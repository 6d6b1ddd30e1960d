package fault

import (
	"context"
	"log/slog"
)

// LogFailure routes a classified error to the logger at the level mapped
// from its severity. High and critical failures also carry the cause chain.
// Unclassified inputs are classified first.
func LogFailure(logger *slog.Logger, err error, where string) {
	if err == nil {
		return
	}
	if logger == nil {
		logger = slog.Default()
	}

	ce := Classify(err, Context{})

	attrs := []any{
		"code", ce.Code,
		"type", ce.Type(),
		"severity", ce.Severity().String(),
		"where", where,
	}
	if ce.CorrelationID() != "" {
		attrs = append(attrs, "correlation_id", ce.CorrelationID())
	}
	if len(ce.Metadata) > 0 {
		attrs = append(attrs, "metadata", ce.Metadata)
	}

	sev := ce.Severity()
	if sev >= SeverityHigh {
		if cv := causeView(ce.Cause); cv != nil {
			attrs = append(attrs, "cause", cv.Message)
			if len(cv.Chain) > 0 {
				attrs = append(attrs, "cause_chain", cv.Chain)
			}
		}
	}
	if sev == SeverityCritical {
		attrs = append(attrs, "critical", true)
	}

	logger.Log(context.Background(), sev.LogLevel(), ce.DeveloperMessage, attrs...)
}
