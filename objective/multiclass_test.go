package objective

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ymsk-ml/customboost/pkg/errors"
)

func TestSoftmax(t *testing.T) {
	t.Run("SumsToOne", func(t *testing.T) {
		probs := Softmax([]float64{0.1, -2.0, 1.5, 0.0})
		sum := 0.0
		for _, p := range probs {
			assert.Greater(t, p, 0.0)
			sum += p
		}
		assert.InDelta(t, 1.0, sum, 1e-12)
	})

	t.Run("ShiftInvariant", func(t *testing.T) {
		a := []float64{1.0, 2.0, 3.0}
		b := []float64{101.0, 102.0, 103.0}
		pa := Softmax(a)
		pb := Softmax(b)
		for i := range pa {
			assert.InDelta(t, pa[i], pb[i], 1e-12)
		}
	})

	t.Run("LargeMagnitudeStable", func(t *testing.T) {
		probs := Softmax([]float64{1000.0, 0.0, -1000.0})
		for _, p := range probs {
			assert.False(t, math.IsNaN(p))
			assert.False(t, math.IsInf(p, 0))
		}
		assert.InDelta(t, 1.0, probs[0], 1e-12)
	})
}

func TestSoftmaxObjective(t *testing.T) {
	const k = 5
	obj := NewSoftmaxObjective(k)

	t.Run("NumClasses", func(t *testing.T) {
		assert.Equal(t, k, obj.NumClasses())
	})

	t.Run("GradientClosedForm", func(t *testing.T) {
		approx := []float64{0.2, -1.0, 0.5, 2.0, -0.3}
		target := 3
		weight := 1.5

		grad, hess, err := obj.CalcDersMulti(approx, target, weight)
		require.NoError(t, err)
		require.Len(t, grad, k)

		probs := Softmax(approx)
		for j := 0; j < k; j++ {
			indicator := 0.0
			if j == target {
				indicator = 1.0
			}
			assert.InDelta(t, weight*(indicator-probs[j]), grad[j], 1e-12)
		}

		for j := 0; j < k; j++ {
			for j2 := 0; j2 < k; j2++ {
				want := weight * probs[j] * probs[j2]
				if j == j2 {
					want = weight * (probs[j]*probs[j] - probs[j])
				}
				assert.InDelta(t, want, hess.At(j, j2), 1e-12,
					"hessian mismatch at (%d,%d)", j, j2)
			}
		}
	})

	t.Run("GradientSumsToZero", func(t *testing.T) {
		grad, _, err := obj.CalcDersMulti([]float64{1.0, 0.0, -1.0, 0.5, 2.2}, 1, 2.0)
		require.NoError(t, err)
		sum := 0.0
		for _, g := range grad {
			sum += g
		}
		assert.InDelta(t, 0.0, sum, 1e-10)
	})

	t.Run("HessianSymmetric", func(t *testing.T) {
		_, hess, err := obj.CalcDersMulti([]float64{0.1, 0.4, -0.7, 1.2, 0.0}, 0, 1.0)
		require.NoError(t, err)
		for i := 0; i < k; i++ {
			for j := 0; j < k; j++ {
				assert.Equal(t, hess.At(i, j), hess.At(j, i))
			}
		}
	})

	t.Run("DiagonalNonPositive", func(t *testing.T) {
		_, hess, err := obj.CalcDersMulti([]float64{0.3, -0.2, 0.9, 0.0, -1.4}, 2, 1.0)
		require.NoError(t, err)
		for j := 0; j < k; j++ {
			assert.LessOrEqual(t, hess.At(j, j), 0.0)
		}
	})

	t.Run("TargetOutOfRange", func(t *testing.T) {
		approx := make([]float64, k)
		_, _, err := obj.CalcDersMulti(approx, k, 1.0)
		require.Error(t, err)
		var valErr *errors.ValueError
		assert.True(t, errors.As(err, &valErr))

		_, _, err = obj.CalcDersMulti(approx, -1, 1.0)
		assert.Error(t, err)
	})

	t.Run("DimensionMismatch", func(t *testing.T) {
		_, _, err := obj.CalcDersMulti([]float64{0.1, 0.2}, 0, 1.0)
		require.Error(t, err)
		var dimErr *errors.DimensionError
		assert.True(t, errors.As(err, &dimErr))
	})
}

func TestArgMax(t *testing.T) {
	assert.Equal(t, 2, ArgMax([]float64{0.1, 0.5, 0.9}))
	assert.Equal(t, 0, ArgMax([]float64{3.0, 1.0, 2.0}))
	// ties break to the lowest index
	assert.Equal(t, 0, ArgMax([]float64{1.0, 1.0, 1.0}))
	assert.Equal(t, 1, ArgMax([]float64{0.0, 2.0, 2.0}))
}

func TestAccuracyMetric(t *testing.T) {
	metric := NewAccuracyMetric()

	t.Run("Direction", func(t *testing.T) {
		assert.True(t, metric.IsMaxOptimal())
	})

	t.Run("Accumulation", func(t *testing.T) {
		// three examples, three classes; dimensions indexed [class][example]
		approxes := [][]float64{
			{2.0, 0.1, 0.0},
			{0.5, 1.5, 0.0},
			{0.0, 0.3, 0.0},
		}
		targets := []float64{0, 1, 2}

		errSum, wSum, err := metric.Evaluate(approxes, targets, nil)
		require.NoError(t, err)
		// third example ties at index 0, so class 2 is wrong
		assert.InDelta(t, 2.0, errSum, 1e-12)
		assert.InDelta(t, 3.0, wSum, 1e-12)
	})

	t.Run("FinalErrorInUnitInterval", func(t *testing.T) {
		approxes := [][]float64{
			{1.0, 0.0},
			{0.0, 1.0},
		}
		targets := []float64{0, 0}
		weights := []float64{0.5, 2.0}

		errSum, wSum, err := metric.Evaluate(approxes, targets, weights)
		require.NoError(t, err)
		final := metric.GetFinalError(errSum, wSum)
		assert.GreaterOrEqual(t, final, 0.0)
		assert.LessOrEqual(t, final, 1.0)
		assert.InDelta(t, 0.5/2.5, final, 1e-9)
	})

	t.Run("NilWeightsEqualOnes", func(t *testing.T) {
		approxes := [][]float64{{1.0, 0.0}, {0.0, 2.0}}
		targets := []float64{0, 1}

		e1, w1, err := metric.Evaluate(approxes, targets, nil)
		require.NoError(t, err)
		e2, w2, err := metric.Evaluate(approxes, targets, []float64{1, 1})
		require.NoError(t, err)
		assert.Equal(t, e2, e1)
		assert.Equal(t, w2, w1)
	})

	t.Run("DimensionMismatch", func(t *testing.T) {
		_, _, err := metric.Evaluate([][]float64{{1.0}, {2.0, 3.0}}, []float64{0}, nil)
		assert.Error(t, err)
	})
}
