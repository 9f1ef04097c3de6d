// Package errors provides the error and warning taxonomy for the sensorbench
// pipeline. Errors are structured types built on cockroachdb/errors so that
// every failure carries the stage and parameter context needed to reproduce it.
package errors

import (
	"fmt"
	"log"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	Global warning handling
//
// ===========================================================================

var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		log.Printf("sensorbench-warning: %v\n", w)
	}
	// zerolog sink, injected lazily to avoid an import cycle with pkg/log.
	zerologWarnFunc func(warning error)
)

// SetWarningHandler sets the process-wide warning handler. Recoverable
// conditions such as ConvergenceWarning and PartialSearchError are routed
// through it instead of aborting the pipeline.
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// SetZerologWarnFunc installs a zerolog-backed warning sink.
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn emits a warning through the zerolog sink when one is installed,
// falling back to the plain handler otherwise.
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}
	if warningHandler != nil {
		warningHandler(w)
	}
}

// ===========================================================================
//
//	Pipeline error types
//
// ===========================================================================

// DataQualityError reports an unrecoverable defect in the input data, such as
// an all-missing numeric column or a single-class dataset. It aborts the
// pipeline: downstream stages assume clean, balanced, stratifiable input.
type DataQualityError struct {
	Stage  string // pipeline stage that detected the defect
	Column string // offending column, empty when the defect is table-wide
	Reason string
}

func (e *DataQualityError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("sensorbench: %s: column %q: %s", e.Stage, e.Column, e.Reason)
	}
	return fmt.Sprintf("sensorbench: %s: %s", e.Stage, e.Reason)
}

// MarshalZerologObject adds structured error information to a zerolog event.
func (e *DataQualityError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("stage", e.Stage).
		Str("column", e.Column).
		Str("reason", e.Reason).
		Str("type", "DataQualityError")
}

// NewDataQualityError creates a DataQualityError with a stack trace attached.
func NewDataQualityError(stage, column, reason string) error {
	err := &DataQualityError{Stage: stage, Column: column, Reason: reason}
	return errors.WithStack(err)
}

// InsufficientDataError reports that a class has too few rows to satisfy a
// stratified partitioning at the requested fraction.
type InsufficientDataError struct {
	Stage    string
	Label    string  // class that cannot be stratified
	Count    int     // rows available for that class
	Fraction float64 // requested test fraction
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("sensorbench: %s: class %q has %d rows, too few to stratify at fraction %g",
		e.Stage, e.Label, e.Count, e.Fraction)
}

// MarshalZerologObject adds structured error information to a zerolog event.
func (e *InsufficientDataError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("stage", e.Stage).
		Str("label", e.Label).
		Int("count", e.Count).
		Float64("fraction", e.Fraction).
		Str("type", "InsufficientDataError")
}

// NewInsufficientDataError creates an InsufficientDataError with a stack trace.
func NewInsufficientDataError(stage, label string, count int, fraction float64) error {
	err := &InsufficientDataError{Stage: stage, Label: label, Count: count, Fraction: fraction}
	return errors.WithStack(err)
}

// ConvergenceError reports that the optimizer diverged (NaN/Inf parameters)
// while fitting one hyperparameter combination. Grid search treats it as
// local to that combination and skips it; it is fatal only when every
// combination fails.
type ConvergenceError struct {
	Algorithm  string
	Params     string // formatted parameter combination, e.g. "C=100 gamma=1"
	Iterations int
	Reason     string
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("sensorbench: %s did not converge after %d iterations (%s): %s",
		e.Algorithm, e.Iterations, e.Params, e.Reason)
}

// MarshalZerologObject adds structured error information to a zerolog event.
func (e *ConvergenceError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("algorithm", e.Algorithm).
		Str("params", e.Params).
		Int("iterations", e.Iterations).
		Str("reason", e.Reason).
		Str("type", "ConvergenceError")
}

// NewConvergenceError creates a ConvergenceError with a stack trace attached.
func NewConvergenceError(algorithm, params string, iterations int, reason string) error {
	err := &ConvergenceError{Algorithm: algorithm, Params: params, Iterations: iterations, Reason: reason}
	return errors.WithStack(err)
}

// PartialSearchError reports that a grid search was cancelled before every
// combination was evaluated. The search still returns the best result found
// so far; callers surface this as a warning, not a failure.
type PartialSearchError struct {
	Evaluated int // combinations fully scored before cancellation
	Total     int // combinations in the grid
	Cause     error
}

func (e *PartialSearchError) Error() string {
	return fmt.Sprintf("sensorbench: grid search cancelled after %d/%d combinations: %v",
		e.Evaluated, e.Total, e.Cause)
}

func (e *PartialSearchError) Unwrap() error {
	return e.Cause
}

// MarshalZerologObject adds structured error information to a zerolog event.
func (e *PartialSearchError) MarshalZerologObject(event *zerolog.Event) {
	event.Int("evaluated", e.Evaluated).
		Int("total", e.Total).
		AnErr("cause", e.Cause).
		Str("type", "PartialSearchError")
}

// NewPartialSearchError creates a PartialSearchError wrapping the
// cancellation cause.
func NewPartialSearchError(evaluated, total int, cause error) error {
	err := &PartialSearchError{Evaluated: evaluated, Total: total, Cause: cause}
	return errors.WithStack(err)
}

// ===========================================================================
//
//	Estimator error types
//
// ===========================================================================

// NotFittedError is returned when Predict or Transform is called on an
// estimator before Fit.
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("sensorbench: %s: this estimator is not fitted yet. Call Fit() before using %s()", e.ModelName, e.Method)
}

// MarshalZerologObject adds structured error information to a zerolog event.
func (e *NotFittedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("model_name", e.ModelName).
		Str("method", e.Method).
		Str("type", "NotFittedError")
}

// NewNotFittedError creates a NotFittedError with a stack trace attached.
func NewNotFittedError(modelName, method string) error {
	err := &NotFittedError{ModelName: modelName, Method: method}
	return errors.WithStack(err)
}

// DimensionError reports a shape mismatch between the data an estimator was
// fitted on and the data it is asked to process.
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0 for rows, 1 for columns/features
}

func (e *DimensionError) Error() string {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "rows"
	}
	return fmt.Sprintf("sensorbench: %s: dimension mismatch on axis %d (%s). Expected %d, got %d", e.Op, e.Axis, axisName, e.Expected, e.Got)
}

// MarshalZerologObject adds structured error information to a zerolog event.
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("type", "DimensionError")
}

// NewDimensionError creates a DimensionError with a stack trace attached.
func NewDimensionError(op string, expected, got, axis int) error {
	err := &DimensionError{Op: op, Expected: expected, Got: got, Axis: axis}
	return errors.WithStack(err)
}

// ValueError reports an invalid argument value.
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("sensorbench: %s: %s", e.Op, e.Message)
}

// NewValueError creates a ValueError with a stack trace attached.
func NewValueError(op, message string) error {
	err := &ValueError{Op: op, Message: message}
	return errors.WithStack(err)
}

// ===========================================================================
//
//	Warning types
//
// ===========================================================================

// ConvergenceWarning is raised when an optimizer exhausts its iteration
// budget without reaching the stopping tolerance. The fitted model is still
// usable; the warning records how far the fit got.
type ConvergenceWarning struct {
	Algorithm  string
	Iterations int
	Message    string
}

func (w *ConvergenceWarning) Error() string {
	if w.Message != "" {
		return fmt.Sprintf("%s failed to converge after %d iterations: %s", w.Algorithm, w.Iterations, w.Message)
	}
	return fmt.Sprintf("%s failed to converge after %d iterations. Consider increasing max_iter or adjusting parameters.", w.Algorithm, w.Iterations)
}

// MarshalZerologObject adds structured warning information to a zerolog event.
func (w *ConvergenceWarning) MarshalZerologObject(event *zerolog.Event) {
	event.Str("algorithm", w.Algorithm).
		Int("iterations", w.Iterations).
		Str("message", w.Message).
		Str("type", "ConvergenceWarning")
}

// NewConvergenceWarning creates a new ConvergenceWarning.
func NewConvergenceWarning(algorithm string, iterations int, message string) *ConvergenceWarning {
	return &ConvergenceWarning{Algorithm: algorithm, Iterations: iterations, Message: message}
}

// UndefinedMetricWarning is raised when a metric is ill-defined, for example
// precision for a label that never appears in the predictions. The metric is
// set to Result instead of dividing by zero.
type UndefinedMetricWarning struct {
	Metric    string
	Condition string
	Result    float64
}

func (w *UndefinedMetricWarning) Error() string {
	return fmt.Sprintf("'%s' is ill-defined and being set to %f due to %s.", w.Metric, w.Result, w.Condition)
}

// MarshalZerologObject adds structured warning information to a zerolog event.
func (w *UndefinedMetricWarning) MarshalZerologObject(event *zerolog.Event) {
	event.Str("metric", w.Metric).
		Str("condition", w.Condition).
		Float64("result", w.Result).
		Str("type", "UndefinedMetricWarning")
}

// NewUndefinedMetricWarning creates a new UndefinedMetricWarning.
func NewUndefinedMetricWarning(metric, condition string, result float64) *UndefinedMetricWarning {
	return &UndefinedMetricWarning{Metric: metric, Condition: condition, Result: result}
}

// ===========================================================================
//
//	cockroachdb/errors wrappers
//
// ===========================================================================

// Is reports whether err matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap wraps an error with a message.
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf wraps an error with a formatted message.
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New creates a new error.
func New(message string) error {
	return errors.New(message)
}

// Newf creates a new formatted error.
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack annotates an error with a stack trace.
func WithStack(err error) error {
	return errors.WithStack(err)
}

// ===========================================================================
//
//	Common error values
//
// ===========================================================================

var (
	// ErrEmptyData is returned when an operation receives no rows or columns.
	ErrEmptyData = New("empty data")
)
