// Package log defines standard attribute keys for pipeline operations.
//
// Using these keys consistently across stages makes runs comparable: two runs
// with the same seeds must produce identical values for every data.* and
// search.* attribute, which is the quickest reproducibility check available.
package log

// Stage and operation context.
const (
	// StageKey identifies the pipeline stage emitting the record.
	// Standard values: "impute", "balance", "split", "scale", "select",
	// "search", "evaluate".
	StageKey = "pipeline.stage"

	// ModelNameKey identifies the estimator type.
	// Examples: "LinearSVC", "SVC(kernel=rbf)", "StandardScaler"
	ModelNameKey = "model.name"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "predict", "transform", "score"
	OperationKey = "ml.operation"
)

// Data shape and characteristics.
const (
	// SamplesKey is the number of rows being processed.
	SamplesKey = "data.samples"

	// FeaturesKey is the number of feature columns.
	FeaturesKey = "data.features"

	// ClassesKey is the number of distinct labels.
	ClassesKey = "data.classes"

	// SeedKey is the random seed governing a stage. Every stochastic stage
	// logs its seed; hidden process-wide random state is not allowed.
	SeedKey = "data.seed"
)

// Search and evaluation results.
const (
	// CombinationsKey is the number of hyperparameter combinations in a grid.
	CombinationsKey = "search.combinations"

	// FoldsKey is the number of cross-validation folds.
	FoldsKey = "search.folds"

	// BestScoreKey is the winning mean cross-validation score.
	BestScoreKey = "search.best_score"

	// BestParamsKey is the winning parameter combination, formatted.
	BestParamsKey = "search.best_params"

	// AccuracyKey is a test-set accuracy value.
	AccuracyKey = "eval.accuracy"

	// DurationMsKey records the execution time of a stage in milliseconds.
	DurationMsKey = "perf.duration_ms"
)

// Error context.
const (
	// ErrAttrKey carries an error value; ErrFmtHandler expands its stack trace.
	ErrAttrKey = "error"

	// StacktraceAttrKey carries the formatted stack trace added by ErrFmtHandler.
	StacktraceAttrKey = "stacktrace"
)
