package booster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/ymsk-ml/customboost/dataset"
	"github.com/ymsk-ml/customboost/objective"
)

// The cross checks train one model with a built-in loss and one with the
// equivalent custom objective, on identical data and parameters, and require
// the resulting predictions to match. The custom contract is ascent-style
// while the built-ins are loss derivatives, so agreement here pins down the
// sign adaptation as well as the formulas.

func assertPredictionsMatch(t *testing.T, builtin, custom *mat.Dense, tol float64) {
	t.Helper()
	br, bc := builtin.Dims()
	cr, cc := custom.Dims()
	require.Equal(t, br, cr)
	require.Equal(t, bc, cc)
	for i := 0; i < br; i++ {
		for j := 0; j < bc; j++ {
			assert.InDelta(t, builtin.At(i, j), custom.At(i, j), tol,
				"prediction mismatch at (%d,%d)", i, j)
		}
	}
}

func TestCustomLoglossMatchesBuiltin(t *testing.T) {
	X, y, err := dataset.MakeClassification(100, 5, 2, 42)
	require.NoError(t, err)
	XTrain, XTest, yTrain, _, err := dataset.TrainTestSplit(X, y, 0.2, 42)
	require.NoError(t, err)

	params := TrainingParams{
		NumIterations: 25,
		LearningRate:  0.3,
		MaxDepth:      3,
		MinDataInLeaf: 5,
		Lambda:        1.0,
		Objective:     "binary",
	}

	builtin := NewTrainer(params)
	require.NoError(t, builtin.Fit(XTrain, yTrain))

	custom := NewTrainer(params, WithObjective(objective.NewLoglossObjective()))
	require.NoError(t, custom.Fit(XTrain, yTrain))

	pb, err := builtin.Predict(XTest)
	require.NoError(t, err)
	pc, err := custom.Predict(XTest)
	require.NoError(t, err)
	assertPredictionsMatch(t, pb, pc, 1e-6)

	// the training histories must agree as well
	hb := builtin.EvalHistory()["train-Logloss"]
	hc := custom.EvalHistory()["train-Logloss"]
	require.Equal(t, len(hb), len(hc))
	for i := range hb {
		assert.InDelta(t, hb[i], hc[i], 1e-9)
	}
}

func TestCustomRMSEMatchesBuiltin(t *testing.T) {
	X, y, err := dataset.MakeRegression(200, 6, 0.3, 17)
	require.NoError(t, err)
	XTrain, XTest, yTrain, _, err := dataset.TrainTestSplit(X, y, 0.2, 17)
	require.NoError(t, err)

	params := TrainingParams{
		NumIterations: 30,
		LearningRate:  0.2,
		MaxDepth:      4,
		MinDataInLeaf: 5,
		Lambda:        0.5,
		Objective:     "regression",
	}

	builtin := NewTrainer(params)
	require.NoError(t, builtin.Fit(XTrain, yTrain))

	custom := NewTrainer(params, WithObjective(objective.NewRMSEObjective()))
	require.NoError(t, custom.Fit(XTrain, yTrain))

	pb, err := builtin.Predict(XTest)
	require.NoError(t, err)
	pc, err := custom.Predict(XTest)
	require.NoError(t, err)
	assertPredictionsMatch(t, pb, pc, 1e-6)
}

func TestCustomMultiClassMatchesBuiltin(t *testing.T) {
	const numClasses = 5

	X, y, err := dataset.MakeClassification(250, 4, numClasses, 7)
	require.NoError(t, err)
	XTrain, XTest, yTrain, _, err := dataset.TrainTestSplit(X, y, 0.2, 7)
	require.NoError(t, err)

	params := TrainingParams{
		NumIterations: 20,
		LearningRate:  0.3,
		MaxDepth:      3,
		MinDataInLeaf: 5,
		Lambda:        1.0,
		Objective:     "multiclass",
		NumClass:      numClasses,
	}

	builtin := NewTrainer(params)
	require.NoError(t, builtin.Fit(XTrain, yTrain))

	custom := NewTrainer(params,
		WithMulticlassObjective(objective.NewSoftmaxObjective(numClasses)))
	require.NoError(t, custom.Fit(XTrain, yTrain))

	pb, err := builtin.Predict(XTest)
	require.NoError(t, err)
	pc, err := custom.Predict(XTest)
	require.NoError(t, err)
	assertPredictionsMatch(t, pb, pc, 1e-6)
}

func TestWeightedCrossCheck(t *testing.T) {
	// the equivalence must survive non-uniform example weights
	X, y, err := dataset.MakeClassification(120, 4, 2, 23)
	require.NoError(t, err)

	weights := make([]float64, len(y))
	for i := range weights {
		weights[i] = 0.5 + float64(i%4)
	}

	params := TrainingParams{
		NumIterations: 15,
		LearningRate:  0.3,
		MaxDepth:      3,
		MinDataInLeaf: 5,
		Lambda:        1.0,
		Objective:     "binary",
	}

	builtin := NewTrainer(params)
	require.NoError(t, builtin.FitWeighted(X, y, weights))

	custom := NewTrainer(params, WithObjective(objective.NewLoglossObjective()))
	require.NoError(t, custom.FitWeighted(X, y, weights))

	pb, err := builtin.Predict(X)
	require.NoError(t, err)
	pc, err := custom.Predict(X)
	require.NoError(t, err)
	assertPredictionsMatch(t, pb, pc, 1e-6)
}
