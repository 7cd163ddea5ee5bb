package booster

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/ymsk-ml/customboost/objective"
	"github.com/ymsk-ml/customboost/pkg/errors"
)

// lossFunction is the internal single-output loss contract. Unlike the
// objective package's ascent-style derivatives, these are derivatives of the
// loss being minimized: the leaf value formula is -G/(H+lambda).
type lossFunction interface {
	// GradHess returns the first and second loss derivative for one example,
	// unweighted.
	GradHess(prediction, target float64) (grad, hess float64)

	// Name returns the loss identifier.
	Name() string
}

// l2Loss implements squared error: grad = pred - target, hess = 1.
type l2Loss struct{}

func (l *l2Loss) GradHess(prediction, target float64) (float64, float64) {
	return prediction - target, 1.0
}

func (l *l2Loss) Name() string { return "regression" }

// binaryLoglossLoss implements binary log-loss on raw scores.
//
// The sigmoid is written as e/(1+e) so the built-in derivatives are
// bit-for-bit comparable with objective.LoglossObjective.
type binaryLoglossLoss struct{}

func (l *binaryLoglossLoss) GradHess(prediction, target float64) (float64, float64) {
	e := math.Exp(prediction)
	p := e / (1 + e)
	return p - target, p * (1 - p)
}

func (l *binaryLoglossLoss) Name() string { return "binary" }

// softmaxLoss implements multiclass cross-entropy with the full per-example
// hessian, matching objective.SoftmaxObjective up to sign.
type softmaxLoss struct {
	numClasses int
}

// GradHessMulti returns the unweighted loss gradient (length k) and the
// positive semi-definite k×k hessian for one example.
func (l *softmaxLoss) GradHessMulti(approx []float64, target int) ([]float64, *mat.SymDense) {
	k := l.numClasses
	probs := objective.Softmax(approx)

	grad := make([]float64, k)
	for j := 0; j < k; j++ {
		indicator := 0.0
		if j == target {
			indicator = 1.0
		}
		grad[j] = probs[j] - indicator
	}

	hess := mat.NewSymDense(k, nil)
	for j := 0; j < k; j++ {
		for j2 := j; j2 < k; j2++ {
			if j == j2 {
				hess.SetSym(j, j2, probs[j]-probs[j]*probs[j])
			} else {
				hess.SetSym(j, j2, -probs[j]*probs[j2])
			}
		}
	}
	return grad, hess
}

func (l *softmaxLoss) Name() string { return "multiclass" }

// newLossFunction resolves a built-in single-output loss by name.
func newLossFunction(name string) (lossFunction, error) {
	switch name {
	case "regression", "regression_l2", "l2", "rmse", "mean_squared_error", "mse":
		return &l2Loss{}, nil
	case "binary", "binary_logloss", "logloss", "logistic":
		return &binaryLoglossLoss{}, nil
	default:
		return nil, errors.Newf("unknown objective: %s", name)
	}
}

// isMulticlassName reports whether the objective name selects the built-in
// softmax loss.
func isMulticlassName(name string) bool {
	switch name {
	case "multiclass", "softmax", "multiclass_logloss":
		return true
	}
	return false
}

// isBinaryName reports whether the objective name selects the built-in
// binary log-loss.
func isBinaryName(name string) bool {
	switch name {
	case "binary", "binary_logloss", "logloss", "logistic":
		return true
	}
	return false
}
