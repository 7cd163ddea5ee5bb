package objective

import (
	"math"

	"github.com/ymsk-ml/customboost/pkg/errors"
)

// LoglossObjective implements the binary log-loss derivatives.
//
// With p = sigmoid(approx):
//
//	der1 = weight * (target - p)
//	der2 = weight * (-p * (1 - p))
type LoglossObjective struct{}

// NewLoglossObjective creates a new LoglossObjective.
func NewLoglossObjective() *LoglossObjective {
	return &LoglossObjective{}
}

// CalcDersRange implements the Objective interface.
func (o *LoglossObjective) CalcDersRange(approxes, targets, weights []float64) ([]DerPair, error) {
	if err := validateRange("LoglossObjective.CalcDersRange", len(approxes), targets, weights); err != nil {
		return nil, err
	}

	ders := make([]DerPair, len(approxes))
	for i, approx := range approxes {
		e := math.Exp(approx)
		p := e / (1 + e)
		w := weightAt(weights, i)

		ders[i] = DerPair{
			Der1: w * (targets[i] - p),
			Der2: w * (-p * (1 - p)),
		}
	}
	return ders, nil
}

// Name returns the objective identifier.
func (o *LoglossObjective) Name() string {
	return "Logloss"
}

// LoglossMetric reports the weighted mean binary log-loss. Lower is better.
type LoglossMetric struct{}

// NewLoglossMetric creates a new LoglossMetric.
func NewLoglossMetric() *LoglossMetric {
	return &LoglossMetric{}
}

// IsMaxOptimal implements the Metric interface; log-loss is minimized.
func (m *LoglossMetric) IsMaxOptimal() bool {
	return false
}

// Evaluate accumulates -w*(t*ln(p) + (1-t)*ln(1-p)) over the batch.
func (m *LoglossMetric) Evaluate(approxes [][]float64, targets, weights []float64) (float64, float64, error) {
	if len(approxes) != 1 {
		return 0, 0, errors.NewDimensionError("LoglossMetric.Evaluate", 1, len(approxes), 1)
	}
	approx := approxes[0]
	if err := validateRange("LoglossMetric.Evaluate", len(approx), targets, weights); err != nil {
		return 0, 0, err
	}

	var errorSum, weightSum float64
	for i, a := range approx {
		e := math.Exp(a)
		p := e / (1 + e)
		w := weightAt(weights, i)

		errorSum += -w * (targets[i]*math.Log(p) + (1-targets[i])*math.Log(1-p))
		weightSum += w
	}
	return errorSum, weightSum, nil
}

// GetFinalError implements the Metric interface.
func (m *LoglossMetric) GetFinalError(errorSum, weightSum float64) float64 {
	return errorSum / (weightSum + Epsilon)
}

// Name returns the metric identifier.
func (m *LoglossMetric) Name() string {
	return "Logloss"
}
