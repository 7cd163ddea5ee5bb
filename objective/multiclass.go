package objective

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/ymsk-ml/customboost/pkg/errors"
)

// SoftmaxObjective implements the softmax cross-entropy derivatives for a
// k-class task. For one example with probabilities p = softmax(approx):
//
//	grad[j]       = weight * (1{j==target} - p[j])
//	hess[j][j2]   = weight * (p[j]*p[j2] - 1{j==j2}*p[j])
//
// The hessian is symmetric and negative semi-definite.
type SoftmaxObjective struct {
	numClasses int
}

// NewSoftmaxObjective creates a SoftmaxObjective for the given class count.
func NewSoftmaxObjective(numClasses int) *SoftmaxObjective {
	if numClasses < 2 {
		numClasses = 2
	}
	return &SoftmaxObjective{numClasses: numClasses}
}

// CalcDersMulti implements the MulticlassObjective interface.
func (o *SoftmaxObjective) CalcDersMulti(approx []float64, target int, weight float64) ([]float64, *mat.SymDense, error) {
	k := o.numClasses
	if len(approx) != k {
		return nil, nil, errors.NewDimensionError("SoftmaxObjective.CalcDersMulti", k, len(approx), 1)
	}
	if target < 0 || target >= k {
		return nil, nil, errors.NewValueError("SoftmaxObjective.CalcDersMulti",
			fmt.Sprintf("target class %d out of range [0, %d)", target, k))
	}

	probs := Softmax(approx)

	grad := make([]float64, k)
	for j := 0; j < k; j++ {
		indicator := 0.0
		if j == target {
			indicator = 1.0
		}
		grad[j] = weight * (indicator - probs[j])
	}

	hess := mat.NewSymDense(k, nil)
	for j := 0; j < k; j++ {
		for j2 := j; j2 < k; j2++ {
			v := weight * probs[j] * probs[j2]
			if j == j2 {
				v = weight * (probs[j]*probs[j] - probs[j])
			}
			hess.SetSym(j, j2, v)
		}
	}

	return grad, hess, nil
}

// NumClasses returns the configured class count.
func (o *SoftmaxObjective) NumClasses() int {
	return o.numClasses
}

// Name returns the objective identifier.
func (o *SoftmaxObjective) Name() string {
	return "MultiClass"
}

// Softmax normalizes a vector of raw scores into a probability distribution.
// The maximum component is subtracted before exponentiation; softmax is
// shift-invariant, so this only prevents overflow.
func Softmax(approx []float64) []float64 {
	maxApprox := approx[0]
	for _, a := range approx[1:] {
		if a > maxApprox {
			maxApprox = a
		}
	}

	probs := make([]float64, len(approx))
	var sum float64
	for i, a := range approx {
		probs[i] = math.Exp(a - maxApprox)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}

// ArgMax returns the index of the largest value, ties broken by the lowest
// index.
func ArgMax(values []float64) int {
	best := 0
	for i, v := range values[1:] {
		if v > values[best] {
			best = i + 1
		}
	}
	return best
}

// AccuracyMetric reports the weighted fraction of examples whose argmax
// prediction matches the target class. Higher is better.
type AccuracyMetric struct{}

// NewAccuracyMetric creates a new AccuracyMetric.
func NewAccuracyMetric() *AccuracyMetric {
	return &AccuracyMetric{}
}

// IsMaxOptimal implements the Metric interface; accuracy is maximized.
func (m *AccuracyMetric) IsMaxOptimal() bool {
	return true
}

// Evaluate accumulates w*1{argmax(approx)==target} over the batch. approxes
// carries one slice per class dimension.
func (m *AccuracyMetric) Evaluate(approxes [][]float64, targets, weights []float64) (float64, float64, error) {
	if len(approxes) == 0 {
		return 0, 0, errors.ErrEmptyData
	}
	n := len(targets)
	for d, dim := range approxes {
		if len(dim) != n {
			return 0, 0, errors.NewDimensionError(
				fmt.Sprintf("AccuracyMetric.Evaluate dimension %d", d), n, len(dim), 0)
		}
	}
	if weights != nil && len(weights) != n {
		return 0, 0, errors.NewDimensionError("AccuracyMetric.Evaluate", n, len(weights), 0)
	}

	var errorSum, weightSum float64
	row := make([]float64, len(approxes))
	for i := 0; i < n; i++ {
		for d := range approxes {
			row[d] = approxes[d][i]
		}
		w := weightAt(weights, i)
		if ArgMax(row) == int(targets[i]) {
			errorSum += w
		}
		weightSum += w
	}
	return errorSum, weightSum, nil
}

// GetFinalError implements the Metric interface.
func (m *AccuracyMetric) GetFinalError(errorSum, weightSum float64) float64 {
	return errorSum / (weightSum + Epsilon)
}

// Name returns the metric identifier.
func (m *AccuracyMetric) Name() string {
	return "Accuracy"
}
