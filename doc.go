// Package sensorbench is a reproducible classification benchmark for
// multi-class tabular sensor data.
//
// The pipeline runs mean imputation, class rebalancing by oversampling, a
// stratified train/test split, train-only standardization, correlation-based
// feature selection, and an exhaustive grid search per kernel family (linear
// and RBF) with stratified cross-validation, then evaluates each winning
// model on the held-out test split.
//
// Every stochastic stage takes an explicit seed, so two runs with the same
// configuration produce bit-identical splits, resampling, fold assignments
// and therefore identical reports.
//
// # Packages
//
//   - dataset: the Table data model and CSV loading
//   - preprocessing: imputation, oversampling, scaling, encoders
//   - selection: correlation-based feature selection
//   - modelselection: train/test split, stratified k-fold, grid search
//   - svm: linear and RBF kernel classifiers
//   - metrics: accuracy, confusion matrix, classification report
//   - pipeline: configuration and end-to-end orchestration
//   - report: terminal tables and confusion-matrix heatmaps
//
// The cmd/sensorbench command wires these together behind a CLI:
//
//	sensorbench --input data.csv --label activity
package sensorbench
