// Package objective defines the pluggable loss-derivative and metric
// contracts consumed by the booster, together with reference implementations
// for binary classification (Logloss), regression (RMSE) and multiclass
// classification (softmax cross-entropy with an Accuracy metric).
//
// All implementations are stateless. The trainer may call them concurrently
// over disjoint subsets of examples without synchronization.
package objective

import (
	"gonum.org/v1/gonum/mat"

	"github.com/ymsk-ml/customboost/pkg/errors"
)

// Epsilon guards metric denominators against a zero weight sum. A zero-weight
// batch yields a finite result instead of a division by zero.
const Epsilon = 1e-38

// DerPair holds the first and second derivative of the per-example objective
// with respect to one prediction dimension.
//
// Sign convention: Der1 is the derivative of the objective being maximized
// (log-likelihood for Logloss), so the trainer moves predictions in the
// +Der1 direction. Der2 is non-positive for the losses in this package.
type DerPair struct {
	Der1 float64
	Der2 float64
}

// Objective computes per-example derivative pairs for single-output tasks.
type Objective interface {
	// CalcDersRange returns one DerPair per example. A nil weights slice is
	// equivalent to a weight of 1 for every example. It fails with a
	// DimensionError when slice lengths disagree.
	CalcDersRange(approxes, targets, weights []float64) ([]DerPair, error)

	// Name returns the objective identifier.
	Name() string
}

// MulticlassObjective computes the gradient vector and hessian matrix for a
// single example of a k-class task.
type MulticlassObjective interface {
	// CalcDersMulti returns the length-k gradient and the k×k symmetric
	// hessian for one example. target must lie in [0, k).
	CalcDersMulti(approx []float64, target int, weight float64) ([]float64, *mat.SymDense, error)

	// NumClasses returns k.
	NumClasses() int

	// Name returns the objective identifier.
	Name() string
}

// Metric aggregates per-example error into a single reported score.
//
// Evaluate accumulates (errorSum, weightSum) over a batch; GetFinalError
// combines the two into the reported number. approxes is indexed
// [dimension][example]: single-output metrics expect exactly one dimension,
// multiclass metrics expect one per class.
type Metric interface {
	// IsMaxOptimal reports whether higher metric values are better.
	IsMaxOptimal() bool

	// Evaluate accumulates the metric over a batch. A nil weights slice is
	// equivalent to all-ones weights.
	Evaluate(approxes [][]float64, targets, weights []float64) (errorSum, weightSum float64, err error)

	// GetFinalError combines the accumulated sums into the reported score.
	GetFinalError(errorSum, weightSum float64) float64

	// Name returns the metric identifier.
	Name() string
}

// validateRange checks the slice alignment shared by range objectives and
// single-output metrics.
func validateRange(op string, n int, targets, weights []float64) error {
	if len(targets) != n {
		return errors.NewDimensionError(op, n, len(targets), 0)
	}
	if weights != nil && len(weights) != n {
		return errors.NewDimensionError(op, n, len(weights), 0)
	}
	return nil
}

// weightAt treats a nil weight slice as all ones.
func weightAt(weights []float64, i int) float64 {
	if weights == nil {
		return 1.0
	}
	return weights[i]
}
