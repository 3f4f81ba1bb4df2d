// Package apperr holds the error kinds that are fatal to a single operation:
// reading a source document and interpreting configuration or tabular input.
package apperr

import (
	"errors"
	"fmt"
)

// ExtractionError reports a source that could not be turned into text or
// features: a missing or unreadable file, an unsupported type or empty text.
type ExtractionError struct {
	Path   string
	Reason string
	Err    error
}

func (e *ExtractionError) Error() string {
	msg := fmt.Sprintf("extracting %q: %s", e.Path, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// Extraction builds an ExtractionError.
func Extraction(path, reason string, err error) error {
	return &ExtractionError{Path: path, Reason: reason, Err: err}
}

// ConfigurationError reports input that cannot be used as given: an empty batch
// source, a missing tabular column or an incomplete weight mapping. Subject names
// the offending path, column or key.
type ConfigurationError struct {
	Subject string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration %q: %s", e.Subject, e.Reason)
}

// Configuration builds a ConfigurationError.
func Configuration(subject, reason string) error {
	return &ConfigurationError{Subject: subject, Reason: reason}
}

// IsExtraction reports whether err wraps an ExtractionError.
func IsExtraction(err error) bool {
	var target *ExtractionError
	return errors.As(err, &target)
}

// IsConfiguration reports whether err wraps a ConfigurationError.
func IsConfiguration(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}

// Kind returns a short label for metrics and logs.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case IsExtraction(err):
		return "extraction"
	case IsConfiguration(err):
		return "configuration"
	default:
		return "other"
	}
}
