// Package dataset provides the synthetic data generators, splitting helpers
// and numpy-format I/O used by the examples and the end-to-end tests.
package dataset

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/ymsk-ml/customboost/pkg/errors"
)

// MakeClassification generates a classification dataset of Gaussian class
// blobs. Labels are class indices in [0, nClasses), balanced across classes.
// The same seed always produces the same dataset.
func MakeClassification(nSamples, nFeatures, nClasses int, seed uint64) (*mat.Dense, []float64, error) {
	if nSamples <= 0 || nFeatures <= 0 {
		return nil, nil, errors.NewValueError("MakeClassification", "nSamples and nFeatures must be positive")
	}
	if nClasses < 2 {
		return nil, nil, errors.NewValueError("MakeClassification", "nClasses must be >= 2")
	}

	src := rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
	rng := rand.New(src)
	normal := distuv.Normal{Mu: 0, Sigma: 1, Src: src}

	// Class centers spread far enough apart for the task to be learnable.
	centers := make([][]float64, nClasses)
	for c := range centers {
		centers[c] = make([]float64, nFeatures)
		for j := range centers[c] {
			centers[c][j] = (rng.Float64()*2 - 1) * 3
		}
	}

	X := mat.NewDense(nSamples, nFeatures, nil)
	y := make([]float64, nSamples)
	for i := 0; i < nSamples; i++ {
		c := i % nClasses
		for j := 0; j < nFeatures; j++ {
			X.Set(i, j, centers[c][j]+normal.Rand())
		}
		y[i] = float64(c)
	}
	return X, y, nil
}

// MakeRegression generates a regression dataset from a random linear model
// with additive Gaussian noise.
func MakeRegression(nSamples, nFeatures int, noise float64, seed uint64) (*mat.Dense, []float64, error) {
	if nSamples <= 0 || nFeatures <= 0 {
		return nil, nil, errors.NewValueError("MakeRegression", "nSamples and nFeatures must be positive")
	}
	if noise < 0 {
		return nil, nil, errors.NewValueError("MakeRegression", "noise must be >= 0")
	}

	src := rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
	rng := rand.New(src)
	normal := distuv.Normal{Mu: 0, Sigma: 1, Src: src}

	coef := make([]float64, nFeatures)
	for j := range coef {
		coef[j] = rng.Float64()*2 - 1
	}

	X := mat.NewDense(nSamples, nFeatures, nil)
	y := make([]float64, nSamples)
	for i := 0; i < nSamples; i++ {
		target := 0.0
		for j := 0; j < nFeatures; j++ {
			v := normal.Rand()
			X.Set(i, j, v)
			target += coef[j] * v
		}
		if noise > 0 {
			target += normal.Rand() * noise
		}
		y[i] = target
	}
	return X, y, nil
}
