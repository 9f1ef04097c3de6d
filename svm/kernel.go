// Package svm implements the two kernel-family classifiers benchmarked by
// the pipeline: a linear-separator machine and an RBF-kernel machine. Both
// train one-vs-rest margin classifiers with full-batch subgradient descent,
// so fitting is deterministic for a given input.
package svm

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/sensorbench/core/parallel"
)

// KernelType names a kernel family.
type KernelType string

const (
	// KernelLinear is the plain dot-product kernel.
	KernelLinear KernelType = "linear"
	// KernelRBF is the radial basis function kernel
	// exp(-gamma * ||a-b||^2).
	KernelRBF KernelType = "rbf"
)

// rbfKernel computes exp(-gamma*||a-b||^2) for rows a of X and b of Y.
func rbfKernel(a, b []float64, gamma float64) float64 {
	sum := 0.0
	for k := range a {
		d := a[k] - b[k]
		sum += d * d
	}
	return math.Exp(-gamma * sum)
}

// kernelMatrix computes the RBF cross-kernel matrix between the rows of X
// and the rows of Y. Rows are independent, so the computation fans out over
// the worker pool; each worker writes a disjoint row range.
func kernelMatrix(X, Y *mat.Dense, gamma float64) *mat.Dense {
	rx, _ := X.Dims()
	ry, _ := Y.Dims()
	K := mat.NewDense(rx, ry, nil)

	parallel.ParallelizeWithThreshold(rx, 64, func(start, end int) {
		for i := start; i < end; i++ {
			xi := X.RawRowView(i)
			for j := 0; j < ry; j++ {
				K.Set(i, j, rbfKernel(xi, Y.RawRowView(j), gamma))
			}
		}
	})
	return K
}
