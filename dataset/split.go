package dataset

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/ymsk-ml/customboost/pkg/errors"
)

// TrainTestSplit shuffles the examples and splits them into train and test
// partitions. testFraction must lie in (0, 1); the test partition holds at
// least one example.
func TrainTestSplit(X *mat.Dense, y []float64, testFraction float64, seed uint64) (XTrain, XTest *mat.Dense, yTrain, yTest []float64, err error) {
	rows, cols := X.Dims()
	if len(y) != rows {
		return nil, nil, nil, nil, errors.NewDimensionError("TrainTestSplit", rows, len(y), 0)
	}
	if testFraction <= 0 || testFraction >= 1 {
		return nil, nil, nil, nil, errors.NewValueError("TrainTestSplit", "testFraction must be in (0, 1)")
	}

	nTest := int(float64(rows) * testFraction)
	if nTest == 0 {
		nTest = 1
	}
	nTrain := rows - nTest
	if nTrain == 0 {
		return nil, nil, nil, nil, errors.NewValueError("TrainTestSplit", "split leaves no training examples")
	}

	rng := rand.New(rand.NewPCG(seed, seed+1))
	perm := rng.Perm(rows)

	XTrain = mat.NewDense(nTrain, cols, nil)
	XTest = mat.NewDense(nTest, cols, nil)
	yTrain = make([]float64, nTrain)
	yTest = make([]float64, nTest)

	for i, idx := range perm[:nTrain] {
		XTrain.SetRow(i, X.RawRowView(idx))
		yTrain[i] = y[idx]
	}
	for i, idx := range perm[nTrain:] {
		XTest.SetRow(i, X.RawRowView(idx))
		yTest[i] = y[idx]
	}
	return XTrain, XTest, yTrain, yTest, nil
}
