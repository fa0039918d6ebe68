// Package errors provides the classified error type used across targetdocs.
//
// Every error that reaches the command line carries an ErrorCategory, which
// selects the exit code, an ErrorSeverity, and a RetryStrategy that the
// notifier consults before publishing again. CLIErrorAdapter renders them.
//
//	err := errors.WrapError(err, errors.CategoryTargetSource, "rustc --print target-list failed").
//		WithContext("rustc", path).
//		Build()
package errors
