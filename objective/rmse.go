package objective

import (
	"math"

	"github.com/ymsk-ml/customboost/pkg/errors"
)

// RMSEObjective implements the squared-error derivatives. Predictions are
// used directly, without a probability transform:
//
//	der1 = weight * (target - approx)
//	der2 = weight * (-1)
type RMSEObjective struct{}

// NewRMSEObjective creates a new RMSEObjective.
func NewRMSEObjective() *RMSEObjective {
	return &RMSEObjective{}
}

// CalcDersRange implements the Objective interface.
func (o *RMSEObjective) CalcDersRange(approxes, targets, weights []float64) ([]DerPair, error) {
	if err := validateRange("RMSEObjective.CalcDersRange", len(approxes), targets, weights); err != nil {
		return nil, err
	}

	ders := make([]DerPair, len(approxes))
	for i, approx := range approxes {
		w := weightAt(weights, i)
		ders[i] = DerPair{
			Der1: w * (targets[i] - approx),
			Der2: -w,
		}
	}
	return ders, nil
}

// Name returns the objective identifier.
func (o *RMSEObjective) Name() string {
	return "RMSE"
}

// RMSEMetric reports the weighted root mean squared error. Lower is better.
type RMSEMetric struct{}

// NewRMSEMetric creates a new RMSEMetric.
func NewRMSEMetric() *RMSEMetric {
	return &RMSEMetric{}
}

// IsMaxOptimal implements the Metric interface; RMSE is minimized.
func (m *RMSEMetric) IsMaxOptimal() bool {
	return false
}

// Evaluate accumulates w*(approx-target)^2 over the batch.
func (m *RMSEMetric) Evaluate(approxes [][]float64, targets, weights []float64) (float64, float64, error) {
	if len(approxes) != 1 {
		return 0, 0, errors.NewDimensionError("RMSEMetric.Evaluate", 1, len(approxes), 1)
	}
	approx := approxes[0]
	if err := validateRange("RMSEMetric.Evaluate", len(approx), targets, weights); err != nil {
		return 0, 0, err
	}

	var errorSum, weightSum float64
	for i, a := range approx {
		w := weightAt(weights, i)
		diff := a - targets[i]
		errorSum += w * diff * diff
		weightSum += w
	}
	return errorSum, weightSum, nil
}

// GetFinalError implements the Metric interface.
func (m *RMSEMetric) GetFinalError(errorSum, weightSum float64) float64 {
	return math.Sqrt(errorSum / (weightSum + Epsilon))
}

// Name returns the metric identifier.
func (m *RMSEMetric) Name() string {
	return "RMSE"
}
