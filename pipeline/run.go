// Package pipeline orchestrates the full benchmark: imputation, class
// rebalancing, a stratified train/test split, standardization, correlation
// feature selection, and one grid search per kernel family, each evaluated on
// the frozen test split.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/sensorbench/core/model"
	"github.com/YuminosukeSato/sensorbench/dataset"
	"github.com/YuminosukeSato/sensorbench/metrics"
	"github.com/YuminosukeSato/sensorbench/modelselection"
	"github.com/YuminosukeSato/sensorbench/pkg/errors"
	mllog "github.com/YuminosukeSato/sensorbench/pkg/log"
	"github.com/YuminosukeSato/sensorbench/preprocessing"
	"github.com/YuminosukeSato/sensorbench/selection"
	"github.com/YuminosukeSato/sensorbench/svm"
)

// ModelReport is the outcome of one kernel-family search evaluated on the
// test split.
type ModelReport struct {
	Family     string
	BestParams modelselection.Params
	// BestCVScore is the winning mean cross-validation accuracy on the
	// training set; Report.Accuracy is the held-out test accuracy.
	BestCVScore float64
	Report      *metrics.ClassificationReport
	// ClassNames maps the integer codes of Report back to input labels;
	// Features are the columns that survived correlation selection.
	ClassNames []string
	Features   []string
	Results    []modelselection.CandidateResult

	// Partial is set when the search was cancelled; Evaluated/Total then say
	// how much of the grid was covered before the best-so-far was taken.
	Partial   bool
	Evaluated int
	Total     int

	Duration time.Duration
}

// families are searched in fixed order so report output is stable.
var families = []struct {
	name string
	grid func() *modelselection.ParamGrid
}{
	{"linear", modelselection.DefaultLinearGrid},
	{"rbf", modelselection.DefaultRBFGrid},
}

// Run executes the pipeline described by cfg and returns one report per
// kernel family. The context bounds the grid searches: on cancellation each
// search returns its best result so far, marked Partial.
func Run(ctx context.Context, cfg *Config) ([]ModelReport, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := slog.Default()

	table, err := dataset.ReadCSV(cfg.Input)
	if err != nil {
		return nil, err
	}
	logger.Info("dataset loaded",
		mllog.SamplesKey, table.NumRows(),
		mllog.FeaturesKey, table.NumColumns()-1)

	prep, err := prepare(table, cfg, logger)
	if err != nil {
		return nil, err
	}

	reports := make([]ModelReport, 0, len(families))
	for _, family := range families {
		report, err := searchFamily(ctx, family.name, family.grid(), prep, cfg, logger)
		if err != nil {
			return nil, err
		}
		reports = append(reports, *report)
	}
	return reports, nil
}

// prepared carries the frozen, model-ready training and test matrices.
type prepared struct {
	trainX, testX *mat.Dense
	trainY        *mat.Dense // column matrix for estimators
	testY         *mat.VecDense
	classNames    []string
	labelCodes    []int
	features      []string
}

// prepare runs every stage up to (and including) feature selection. All
// fitted state — imputation means, encoder categories, scaler statistics,
// the selected feature set — comes from the training split only.
func prepare(table *dataset.Table, cfg *Config, logger *slog.Logger) (*prepared, error) {
	imputed, err := preprocessing.NewMeanImputer().FitTransform(table)
	if err != nil {
		return nil, err
	}
	logger.Debug("missing values imputed", mllog.StageKey, "impute")

	balanced, err := preprocessing.NewOversampler(cfg.Label, cfg.Seed).Balance(imputed)
	if err != nil {
		return nil, err
	}
	dist, err := balanced.ClassDistribution(cfg.Label)
	if err != nil {
		return nil, err
	}
	logger.Info("classes rebalanced",
		mllog.StageKey, "balance",
		mllog.SamplesKey, balanced.NumRows(),
		mllog.ClassesKey, len(dist),
		mllog.SeedKey, cfg.Seed)

	train, test, err := modelselection.TrainTestSplit(balanced, cfg.Label, cfg.TestFraction, cfg.Seed)
	if err != nil {
		return nil, err
	}
	logger.Info("dataset split",
		mllog.StageKey, "split",
		"train_rows", train.NumRows(),
		"test_rows", test.NumRows(),
		mllog.SeedKey, cfg.Seed)

	if catCols := train.CategoricalColumnNames(cfg.Label); len(catCols) > 0 {
		enc := preprocessing.NewOneHotEncoder(catCols)
		if err := enc.Fit(train); err != nil {
			return nil, err
		}
		if train, err = enc.Transform(train); err != nil {
			return nil, err
		}
		if test, err = enc.Transform(test); err != nil {
			return nil, err
		}
	}

	trainLabels, err := train.Labels(cfg.Label)
	if err != nil {
		return nil, err
	}
	testLabels, err := test.Labels(cfg.Label)
	if err != nil {
		return nil, err
	}
	encoder := preprocessing.NewLabelEncoder()
	yTrain, err := encoder.FitTransform(trainLabels)
	if err != nil {
		return nil, err
	}
	yTest, err := encoder.Transform(testLabels)
	if err != nil {
		return nil, err
	}

	features := train.NumericColumnNames(cfg.Label)
	trainX, err := train.Matrix(features)
	if err != nil {
		return nil, err
	}
	testX, err := test.Matrix(features)
	if err != nil {
		return nil, err
	}

	scaler := preprocessing.NewStandardScaler()
	if err := scaler.Fit(trainX); err != nil {
		return nil, err
	}
	scaledTrain, err := scaler.Transform(trainX)
	if err != nil {
		return nil, err
	}
	scaledTest, err := scaler.Transform(testX)
	if err != nil {
		return nil, err
	}

	mode := selection.ByTarget
	if cfg.SelectionMode == "inter-feature" {
		mode = selection.ByMaxInterFeature
	}
	selector := selection.NewCorrelationSelector(features,
		selection.WithThreshold(cfg.CorrelationThreshold),
		selection.WithMode(mode))
	if err := selector.Fit(scaledTrain, yTrain); err != nil {
		return nil, err
	}
	selected, err := selector.FeatureSet()
	if err != nil {
		return nil, err
	}
	selTrain, err := selector.Project(scaledTrain)
	if err != nil {
		return nil, err
	}
	selTest, err := selector.Project(scaledTest)
	if err != nil {
		return nil, err
	}
	logger.Info("features selected",
		mllog.StageKey, "select",
		mllog.FeaturesKey, len(selected),
		"features", selected)

	trainYMat := mat.NewDense(len(yTrain), 1, nil)
	for i, v := range yTrain {
		trainYMat.Set(i, 0, float64(v))
	}
	testYVec := mat.NewVecDense(len(yTest), nil)
	for i, v := range yTest {
		testYVec.SetVec(i, float64(v))
	}
	codes := make([]int, len(encoder.Classes()))
	for i := range codes {
		codes[i] = i
	}

	return &prepared{
		trainX:     selTrain,
		testX:      selTest,
		trainY:     trainYMat,
		testY:      testYVec,
		classNames: encoder.Classes(),
		labelCodes: codes,
		features:   selected,
	}, nil
}

// searchFamily grid-searches one kernel family and evaluates the refit
// winner on the test split. A cancelled search that still produced a usable
// model yields a report marked Partial; with no model at all the
// PartialSearchError is returned.
func searchFamily(ctx context.Context, name string, grid *modelselection.ParamGrid, prep *prepared, cfg *Config, logger *slog.Logger) (*ModelReport, error) {
	start := time.Now()

	factory := func(p modelselection.Params) model.Classifier {
		opts := []svm.Option{
			svm.WithC(p.C),
			svm.WithMaxIter(cfg.MaxIter),
			svm.WithTol(cfg.Tol),
		}
		if p.Kernel == "rbf" {
			opts = append(opts, svm.WithKernel(svm.KernelRBF), svm.WithGamma(p.Gamma))
		}
		return svm.NewSVC(opts...)
	}

	gs := modelselection.NewGridSearchCV(factory, grid,
		modelselection.WithCV(cfg.Folds),
		modelselection.WithSeed(cfg.Seed),
		modelselection.WithWorkers(cfg.Workers))
	logger.Info("grid search started",
		mllog.StageKey, "search",
		"family", name,
		mllog.CombinationsKey, grid.Len(),
		mllog.FoldsKey, cfg.Folds)

	searchErr := gs.Fit(ctx, prep.trainX, prep.trainY)
	report := &ModelReport{Family: name, Total: grid.Len()}
	if searchErr != nil {
		var pse *errors.PartialSearchError
		if !errors.As(searchErr, &pse) {
			return nil, searchErr
		}
		if gs.BestModel == nil {
			return nil, searchErr
		}
		report.Partial = true
		report.Evaluated = pse.Evaluated
		logger.Warn("grid search cancelled, using best result so far",
			mllog.StageKey, "search",
			"family", name,
			"evaluated", pse.Evaluated,
			mllog.CombinationsKey, pse.Total)
	} else {
		report.Evaluated = grid.Len()
	}

	report.BestParams = gs.BestParams
	report.BestCVScore = gs.BestScore
	report.Results = gs.Results
	logger.Info("grid search finished",
		mllog.StageKey, "search",
		"family", name,
		mllog.BestParamsKey, gs.BestParams.String(),
		mllog.BestScoreKey, gs.BestScore)

	pred, err := gs.Predict(prep.testX)
	if err != nil {
		return nil, err
	}
	rows, _ := pred.Dims()
	predVec := mat.NewVecDense(rows, nil)
	for i := 0; i < rows; i++ {
		predVec.SetVec(i, pred.At(i, 0))
	}

	eval, err := metrics.NewClassificationReport(prep.testY, predVec, prep.labelCodes)
	if err != nil {
		return nil, err
	}
	report.Report = eval
	report.ClassNames = prep.classNames
	report.Features = prep.features
	report.Duration = time.Since(start)
	logger.Info("model evaluated",
		mllog.StageKey, "evaluate",
		"family", name,
		mllog.AccuracyKey, eval.Accuracy,
		mllog.DurationMsKey, report.Duration.Milliseconds())

	return report, nil
}
