package errors

import (
	"errors"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/waypace/walk-eta/pkg/common"
	"github.com/waypace/walk-eta/pkg/config"
)

// InitSentry initializes the Sentry SDK from application configuration.
// Returns without error when Sentry is disabled.
func InitSentry(cfg *config.Config) error {
	if !cfg.Sentry.Enabled || cfg.Sentry.DSN == "" {
		return nil
	}

	tracesSampleRate := 1.0
	if cfg.Server.Environment == "production" {
		tracesSampleRate = 0.1
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.Sentry.DSN,
		Environment:      cfg.Server.Environment,
		ServerName:       cfg.Server.ServiceName,
		SampleRate:       1.0,
		TracesSampleRate: tracesSampleRate,
		EnableTracing:    true,
		AttachStacktrace: true,
		BeforeSend: func(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
			if event.Level == sentry.LevelInfo || event.Level == sentry.LevelDebug {
				return nil
			}
			return event
		},
	})
	if err != nil {
		return fmt.Errorf("failed to initialize sentry: %w", err)
	}

	return nil
}

// Flush flushes the Sentry buffer
func Flush(timeout time.Duration) bool {
	return sentry.Flush(timeout)
}

// CaptureError captures an error and sends it to Sentry
func CaptureError(err error) *sentry.EventID {
	if err == nil {
		return nil
	}
	return sentry.CaptureException(err)
}

// AddBreadcrumbForRequest adds a breadcrumb for an HTTP request
func AddBreadcrumbForRequest(method, url string, statusCode int, duration time.Duration) {
	sentry.AddBreadcrumb(&sentry.Breadcrumb{
		Type:      "http",
		Category:  "http.request",
		Level:     sentry.LevelInfo,
		Message:   fmt.Sprintf("%s %s", method, url),
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"method":      method,
			"url":         url,
			"status_code": statusCode,
			"duration_ms": duration.Milliseconds(),
		},
	})
}

// ShouldReportError determines if an error should be reported to Sentry.
// Expected client-facing failures (validation, not found, conflicts) stay
// out of the error tracker.
func ShouldReportError(err error, statusCode int) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, common.ErrValidation) ||
		errors.Is(err, common.ErrNotFound) ||
		errors.Is(err, common.ErrBadRequest) ||
		errors.Is(err, common.ErrConflict) {
		return false
	}

	// Client errors other than rate limiting are not actionable
	if statusCode >= 400 && statusCode < 500 && statusCode != 429 {
		return false
	}

	return true
}
