// Package provider implements the translation backend adapters: a
// vision-capable chat-completion client and a plain-text translation
// endpoint client, plus the retry policy shared by both.
package provider

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/pagelingo/pagelingo/internal/domain"
	"github.com/pagelingo/pagelingo/internal/observability"
)

// Classification decides whether a failed backend call may be retried.
type Classification string

const (
	// ClassificationFatal marks caller misconfiguration (bad request,
	// auth, unknown model/endpoint). Never retried.
	ClassificationFatal Classification = "fatal"

	// ClassificationRetryable marks transient failures: network errors,
	// 5xx, malformed responses, content-filter rejections.
	ClassificationRetryable Classification = "retryable"
)

// TranslateError is the failure type returned by provider adapters.
type TranslateError struct {
	Classification Classification
	StatusCode     int // 0 when no HTTP status applies
	Message        string
	Err            error
}

func (e *TranslateError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *TranslateError) Unwrap() error {
	return e.Err
}

// Fatal builds a non-retryable TranslateError.
func Fatal(statusCode int, message string, err error) *TranslateError {
	return &TranslateError{
		Classification: ClassificationFatal,
		StatusCode:     statusCode,
		Message:        message,
		Err:            err,
	}
}

// Retryable builds a retryable TranslateError.
func Retryable(statusCode int, message string, err error) *TranslateError {
	return &TranslateError{
		Classification: ClassificationRetryable,
		StatusCode:     statusCode,
		Message:        message,
		Err:            err,
	}
}

// IsFatal reports whether err carries the fatal classification.
// Unclassified errors are treated as retryable.
func IsFatal(err error) bool {
	var te *TranslateError
	if errors.As(err, &te) {
		return te.Classification == ClassificationFatal
	}
	return false
}

// classifyStatus maps an HTTP status to a classification for the vision
// provider: 400/401/403/404 indicate configuration or auth problems and
// are fatal, everything else is transient.
func classifyStatus(statusCode int) Classification {
	switch statusCode {
	case http.StatusBadRequest, http.StatusUnauthorized,
		http.StatusForbidden, http.StatusNotFound:
		return ClassificationFatal
	default:
		return ClassificationRetryable
	}
}

const defaultHTTPTimeout = 120 * time.Second

// ForConfig builds the adapter selected by the configuration. Adding a
// provider means adding one adapter here without touching the pipeline.
func ForConfig(cfg domain.TranslationConfig, logger *observability.Logger) (domain.Provider, error) {
	cfg = cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	httpClient := &http.Client{Timeout: defaultHTTPTimeout}

	switch cfg.Provider {
	case domain.ProviderVision:
		return NewVisionClient(cfg, httpClient, logger), nil
	case domain.ProviderTextEndpoint:
		return NewTextClient(cfg, httpClient, logger), nil
	default:
		return nil, domain.ConfigError("unknown provider: "+string(cfg.Provider), nil)
	}
}
