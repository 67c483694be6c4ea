// Package apperr defines the error kinds reported by the ASV to CIGAR conversion.
// ConfigError and NoUsableDataError abort a run. BinFailure and AsvMismatch are
// recovered from: the offending bin or ASV is skipped and logged.
package apperr

import (
	"fmt"

	"github.com/pkg/errors"
)

// ConfigError reports a missing, unreadable, or malformed required input,
// or an invalid configuration value.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("configuration error: %v", e.Err)
	}
	return fmt.Sprintf("configuration error: %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Config returns a ConfigError for path wrapping err.
func Config(path string, err error) error {
	return errors.WithStack(&ConfigError{Path: path, Err: err})
}

// Configf returns a ConfigError for path with a formatted message.
func Configf(path string, format string, args ...interface{}) error {
	return errors.WithStack(&ConfigError{Path: path, Err: errors.Errorf(format, args...)})
}

// NoUsableDataError reports that a stage of the run left nothing to work on.
type NoUsableDataError struct {
	Stage string
	Msg   string
}

func (e *NoUsableDataError) Error() string {
	return fmt.Sprintf("no usable data after %s: %s", e.Stage, e.Msg)
}

// NoUsableData returns a NoUsableDataError for stage.
func NoUsableData(stage, format string, args ...interface{}) error {
	return errors.WithStack(&NoUsableDataError{Stage: stage, Msg: fmt.Sprintf(format, args...)})
}

// BinFailure reports that the aligner failed for one amplicon bin.
type BinFailure struct {
	Amplicon string
	Err      error
}

func (e *BinFailure) Error() string {
	return fmt.Sprintf("alignment failed for amplicon %s: %v", e.Amplicon, e.Err)
}

func (e *BinFailure) Unwrap() error { return e.Err }

// AsvMismatch reports an aligned ASV row whose length differs from the aligned reference.
type AsvMismatch struct {
	Asv      string
	Amplicon string
	RefLen   int
	AsvLen   int
}

func (e *AsvMismatch) Error() string {
	return fmt.Sprintf("aligned length of %s (%d) does not match reference %s (%d)", e.Asv, e.AsvLen, e.Amplicon, e.RefLen)
}

// IsFatal reports whether err must stop the run.
func IsFatal(err error) bool {
	var c *ConfigError
	var n *NoUsableDataError
	return errors.As(err, &c) || errors.As(err, &n)
}

// Catch recovers a panic raised while reading path and stores it in *err as a ConfigError.
// It must be called directly by defer.
func Catch(path string, err *error) {
	if r := recover(); r != nil {
		*err = Configf(path, "%v", r)
	}
}
