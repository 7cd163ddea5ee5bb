package objective

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRMSEObjective(t *testing.T) {
	obj := NewRMSEObjective()

	t.Run("ClosedForm", func(t *testing.T) {
		testCases := []struct {
			approx  float64
			target  float64
			weight  float64
			expDer1 float64
			expDer2 float64
		}{
			{approx: 2.0, target: 1.0, weight: 1.0, expDer1: -1.0, expDer2: -1.0},
			{approx: 1.0, target: 2.0, weight: 1.0, expDer1: 1.0, expDer2: -1.0},
			{approx: 3.5, target: 3.5, weight: 1.0, expDer1: 0.0, expDer2: -1.0},
			{approx: -1.0, target: 1.0, weight: 2.0, expDer1: 4.0, expDer2: -2.0},
		}

		for _, tc := range testCases {
			ders, err := obj.CalcDersRange([]float64{tc.approx}, []float64{tc.target}, []float64{tc.weight})
			require.NoError(t, err)
			assert.Equal(t, tc.expDer1, ders[0].Der1,
				"der1 mismatch for approx=%.2f target=%.2f", tc.approx, tc.target)
			assert.Equal(t, tc.expDer2, ders[0].Der2)
		}
	})

	t.Run("NilWeightsEqualOnes", func(t *testing.T) {
		approxes := []float64{1.5, -0.5, 3.0}
		targets := []float64{1.0, 0.0, 2.5}

		noWeights, err := obj.CalcDersRange(approxes, targets, nil)
		require.NoError(t, err)
		withOnes, err := obj.CalcDersRange(approxes, targets, []float64{1, 1, 1})
		require.NoError(t, err)
		assert.Equal(t, withOnes, noWeights)
	})

	t.Run("ShapeMismatch", func(t *testing.T) {
		_, err := obj.CalcDersRange([]float64{1}, []float64{1, 2}, nil)
		assert.Error(t, err)
	})
}

func TestRMSEMetric(t *testing.T) {
	metric := NewRMSEMetric()

	t.Run("Direction", func(t *testing.T) {
		assert.False(t, metric.IsMaxOptimal())
	})

	t.Run("FinalErrorIsRoot", func(t *testing.T) {
		approx := []float64{1.0, 3.0}
		targets := []float64{0.0, 1.0}

		errSum, wSum, err := metric.Evaluate([][]float64{approx}, targets, nil)
		require.NoError(t, err)
		assert.InDelta(t, 5.0, errSum, 1e-12) // 1 + 4
		assert.InDelta(t, 2.0, wSum, 1e-12)

		assert.InDelta(t, math.Sqrt(2.5), metric.GetFinalError(errSum, wSum), 1e-9)
	})

	t.Run("WeightedAccumulation", func(t *testing.T) {
		errSum, wSum, err := metric.Evaluate(
			[][]float64{{2.0}}, []float64{0.0}, []float64{3.0})
		require.NoError(t, err)
		assert.InDelta(t, 12.0, errSum, 1e-12) // 3 * 2^2
		assert.InDelta(t, 3.0, wSum, 1e-12)
	})

	t.Run("ZeroWeightSumStaysFinite", func(t *testing.T) {
		v := metric.GetFinalError(0.0, 0.0)
		assert.False(t, math.IsNaN(v))
		assert.Equal(t, 0.0, v)
	})

	t.Run("SingleDimensionOnly", func(t *testing.T) {
		_, _, err := metric.Evaluate([][]float64{{1.0}, {2.0}}, []float64{1}, nil)
		assert.Error(t, err)
	})
}
