// Package booster implements a compact gradient-boosting trainer whose loss
// derivatives and evaluation metrics are pluggable through the objective
// package. Built-in losses cover binary log-loss, squared error and softmax
// cross-entropy; a custom objective supplied via WithObjective or
// WithMulticlassObjective replaces the built-in derivative computation while
// the rest of the training loop stays identical, which is what makes
// custom-vs-built-in cross checks meaningful.
package booster

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/ymsk-ml/customboost/objective"
	"github.com/ymsk-ml/customboost/pkg/errors"
	"github.com/ymsk-ml/customboost/pkg/log"
)

// Trainer implements the boosting training loop.
type Trainer struct {
	params TrainingParams

	// Data
	X            *mat.Dense
	y            []float64
	sampleWeight []float64
	numFeatures  int

	// Per-dimension state, indexed [dimension][example]. Gradients and
	// hessians are in loss-minimization convention.
	outputDim int
	approx    [][]float64
	gradients [][]float64
	hessians  [][]float64
	// Full per-example hessians, multiclass only.
	hessFull []*mat.SymDense

	trees  []Tree
	fitted bool

	// Loss selection: exactly one of loss, mcLoss, customObj, customMC is
	// active after resolveObjective.
	loss      lossFunction
	mcLoss    *softmaxLoss
	customObj objective.Objective
	customMC  objective.MulticlassObjective
	binary    bool

	metric    objective.Metric
	callbacks *CallbackList
	history   map[string][]float64

	evalX *mat.Dense
	evalY []float64

	iteration int
	logger    log.Logger
}

// SplitInfo describes a candidate split.
type SplitInfo struct {
	Feature   int
	Threshold float64
	Gain      float64
}

// Option configures a Trainer.
type Option func(*Trainer)

// WithObjective plugs in a custom single-output objective. It takes
// precedence over the built-in loss named in TrainingParams.Objective.
func WithObjective(obj objective.Objective) Option {
	return func(t *Trainer) { t.customObj = obj }
}

// WithMulticlassObjective plugs in a custom multiclass objective.
func WithMulticlassObjective(obj objective.MulticlassObjective) Option {
	return func(t *Trainer) { t.customMC = obj }
}

// WithMetric sets the evaluation metric. When unset, a default matching the
// objective is used.
func WithMetric(m objective.Metric) Option {
	return func(t *Trainer) { t.metric = m }
}

// WithCallbacks registers callbacks invoked after each iteration.
func WithCallbacks(callbacks ...Callback) Option {
	return func(t *Trainer) { t.callbacks = NewCallbackList(callbacks...) }
}

// WithEvalSet adds a validation set evaluated with the metric every
// iteration under the "valid-" prefix.
func WithEvalSet(X mat.Matrix, y []float64) Option {
	return func(t *Trainer) {
		t.evalX = toDense(X)
		t.evalY = y
	}
}

// NewTrainer creates a trainer with the given parameters and options.
func NewTrainer(params TrainingParams, opts ...Option) *Trainer {
	params.fillDefaults()
	t := &Trainer{
		params:  params,
		history: make(map[string][]float64),
		logger:  log.GetLoggerWithName("booster.trainer"),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Fit trains the model on X and y with unit example weights.
func (t *Trainer) Fit(X mat.Matrix, y []float64) error {
	return t.FitWeighted(X, y, nil)
}

// FitWeighted trains the model with optional per-example weights. A nil
// sampleWeight is equivalent to all-ones weights.
func (t *Trainer) FitWeighted(X mat.Matrix, y []float64, sampleWeight []float64) error {
	if err := t.params.validate(); err != nil {
		return err
	}

	t.X = toDense(X)
	rows, cols := t.X.Dims()
	if rows == 0 {
		return errors.ErrEmptyData
	}
	if len(y) != rows {
		return errors.NewDimensionError("Trainer.Fit", rows, len(y), 0)
	}
	if sampleWeight != nil && len(sampleWeight) != rows {
		return errors.NewDimensionError("Trainer.Fit", rows, len(sampleWeight), 0)
	}
	t.y = y
	t.sampleWeight = sampleWeight
	t.numFeatures = cols

	if err := t.resolveObjective(); err != nil {
		return err
	}

	t.approx = makeGrid(t.outputDim, rows)
	t.gradients = makeGrid(t.outputDim, rows)
	t.hessians = makeGrid(t.outputDim, rows)
	if t.outputDim > 1 {
		t.hessFull = make([]*mat.SymDense, rows)
	}
	t.trees = t.trees[:0]

	if t.params.Verbosity > 0 {
		t.logger.Info("training started",
			log.SamplesKey, rows,
			log.FeaturesKey, cols,
			log.ClassesKey, t.outputDim,
			log.OperationKey, "fit")
	}

	for iter := 0; iter < t.params.NumIterations; iter++ {
		t.iteration = iter

		if err := t.computeDerivatives(); err != nil {
			return errors.Wrapf(err, "derivative computation failed at iteration %d", iter)
		}

		tree := t.buildTree()
		t.trees = append(t.trees, tree)
		t.updateApprox(&tree)

		evalResults := t.evaluate()
		for name, value := range evalResults {
			t.history[name] = append(t.history[name], value)
		}

		if t.callbacks != nil {
			if err := t.callbacks.AfterIteration(iter, evalResults); err != nil {
				return errors.Wrapf(err, "callback failed at iteration %d", iter)
			}
			if t.callbacks.ShouldStop() {
				if t.params.Verbosity > 0 {
					t.logger.Info("training stopped by callback", log.IterationKey, iter)
				}
				break
			}
		}

		if t.params.Verbosity > 0 && iter%10 == 0 {
			fields := []any{log.IterationKey, iter}
			for name, value := range evalResults {
				fields = append(fields, name, value)
			}
			t.logger.Debug("training progress", fields...)
		}
	}

	t.fitted = true
	return nil
}

// resolveObjective selects the derivative source and the default metric.
func (t *Trainer) resolveObjective() error {
	t.loss = nil
	t.mcLoss = nil
	t.binary = false

	switch {
	case t.customMC != nil:
		t.outputDim = t.customMC.NumClasses()
		if t.params.NumClass != 0 && t.params.NumClass != t.outputDim {
			return errors.NewValidationError("num_class",
				"does not match the custom objective's class count", t.params.NumClass)
		}
	case t.customObj != nil:
		t.outputDim = 1
		t.binary = t.customObj.Name() == "Logloss"
	case isMulticlassName(t.params.Objective):
		if t.params.NumClass < 2 {
			return errors.NewValidationError("num_class", "must be >= 2 for multiclass", t.params.NumClass)
		}
		t.mcLoss = &softmaxLoss{numClasses: t.params.NumClass}
		t.outputDim = t.params.NumClass
	default:
		loss, err := newLossFunction(t.params.Objective)
		if err != nil {
			return err
		}
		t.loss = loss
		t.outputDim = 1
		t.binary = isBinaryName(t.params.Objective)
	}

	if t.metric == nil {
		t.metric = t.defaultMetric()
	}
	return nil
}

// defaultMetric pairs each objective with its conventional metric.
func (t *Trainer) defaultMetric() objective.Metric {
	switch {
	case t.outputDim > 1:
		return objective.NewAccuracyMetric()
	case t.binary:
		return objective.NewLoglossMetric()
	default:
		return objective.NewRMSEMetric()
	}
}

// computeDerivatives fills gradients/hessians for the current predictions.
// Custom objectives use the ascent-style contract of the objective package,
// so their derivatives are negated into the internal convention here.
func (t *Trainer) computeDerivatives() error {
	n := len(t.y)

	switch {
	case t.customObj != nil:
		ders, err := t.customObj.CalcDersRange(t.approx[0], t.y, t.sampleWeight)
		if err != nil {
			return err
		}
		if len(ders) != n {
			return errors.NewDimensionError("computeDerivatives", n, len(ders), 0)
		}
		for i, d := range ders {
			t.gradients[0][i] = -d.Der1
			t.hessians[0][i] = -d.Der2
		}
		return errors.CheckNumericalStability("calc_ders_range", t.gradients[0], t.iteration)

	case t.customMC != nil:
		k := t.outputDim
		row := make([]float64, k)
		for i := 0; i < n; i++ {
			for d := 0; d < k; d++ {
				row[d] = t.approx[d][i]
			}
			grad, hess, err := t.customMC.CalcDersMulti(row, int(t.y[i]), t.weightOf(i))
			if err != nil {
				return err
			}
			if len(grad) != k {
				return errors.NewDimensionError("computeDerivatives", k, len(grad), 1)
			}
			neg := mat.NewSymDense(k, nil)
			for a := 0; a < k; a++ {
				t.gradients[a][i] = -grad[a]
				t.hessians[a][i] = -hess.At(a, a)
				for b := a; b < k; b++ {
					neg.SetSym(a, b, -hess.At(a, b))
				}
			}
			t.hessFull[i] = neg
			if err := errors.CheckNumericalStability("calc_ders_multi", grad, t.iteration); err != nil {
				return err
			}
		}
		return nil

	case t.mcLoss != nil:
		k := t.outputDim
		row := make([]float64, k)
		for i := 0; i < n; i++ {
			for d := 0; d < k; d++ {
				row[d] = t.approx[d][i]
			}
			grad, hess := t.mcLoss.GradHessMulti(row, int(t.y[i]))
			w := t.weightOf(i)
			scaled := mat.NewSymDense(k, nil)
			for a := 0; a < k; a++ {
				t.gradients[a][i] = w * grad[a]
				t.hessians[a][i] = w * hess.At(a, a)
				for b := a; b < k; b++ {
					scaled.SetSym(a, b, w*hess.At(a, b))
				}
			}
			t.hessFull[i] = scaled
		}
		return nil

	default:
		for i := 0; i < n; i++ {
			g, h := t.loss.GradHess(t.approx[0][i], t.y[i])
			w := t.weightOf(i)
			t.gradients[0][i] = w * g
			t.hessians[0][i] = w * h
		}
		return errors.CheckNumericalStability("grad_hess", t.gradients[0], t.iteration)
	}
}

func (t *Trainer) weightOf(i int) float64 {
	if t.sampleWeight == nil {
		return 1.0
	}
	return t.sampleWeight[i]
}

// buildTree constructs one boosting tree over all examples.
func (t *Trainer) buildTree() Tree {
	tree := Tree{OutputDim: t.outputDim}

	rows, _ := t.X.Dims()
	indices := make([]int, rows)
	for i := range indices {
		indices[i] = i
	}

	t.buildNode(&tree, indices, 0)
	return tree
}

// buildNode recursively grows the tree and returns the new node's index.
func (t *Trainer) buildNode(tree *Tree, indices []int, depth int) int {
	nodeIdx := len(tree.Nodes)

	if (t.params.MaxDepth > 0 && depth >= t.params.MaxDepth) ||
		len(indices) < 2*t.params.MinDataInLeaf {
		tree.Nodes = append(tree.Nodes, Node{
			IsLeaf:    true,
			LeafValue: t.calculateLeafValue(indices),
			LeftChild: -1, RightChild: -1,
		})
		return nodeIdx
	}

	bestSplit := t.findBestSplit(indices)
	if bestSplit.Feature < 0 || bestSplit.Gain < t.params.MinGainToSplit {
		tree.Nodes = append(tree.Nodes, Node{
			IsLeaf:    true,
			LeafValue: t.calculateLeafValue(indices),
			LeftChild: -1, RightChild: -1,
		})
		return nodeIdx
	}

	tree.Nodes = append(tree.Nodes, Node{
		SplitFeature: bestSplit.Feature,
		Threshold:    bestSplit.Threshold,
	})

	left, right := t.splitData(indices, bestSplit)
	leftIdx := t.buildNode(tree, left, depth+1)
	rightIdx := t.buildNode(tree, right, depth+1)
	tree.Nodes[nodeIdx].LeftChild = leftIdx
	tree.Nodes[nodeIdx].RightChild = rightIdx
	return nodeIdx
}

// findBestSplit scans every feature for the best split of the given samples.
func (t *Trainer) findBestSplit(indices []int) SplitInfo {
	_, cols := t.X.Dims()
	bestSplit := SplitInfo{Feature: -1, Gain: math.Inf(-1)}

	for j := 0; j < cols; j++ {
		if split := t.findBestSplitForFeature(indices, j); split.Gain > bestSplit.Gain {
			bestSplit = split
		}
	}
	return bestSplit
}

// findBestSplitForFeature scans the sorted values of one feature.
func (t *Trainer) findBestSplitForFeature(indices []int, feature int) SplitInfo {
	values := make([]struct {
		value float64
		idx   int
	}, len(indices))
	for i, idx := range indices {
		values[i].value = t.X.At(idx, feature)
		values[i].idx = idx
	}
	sort.Slice(values, func(a, b int) bool {
		return values[a].value < values[b].value
	})

	k := t.outputDim
	totalGrad := make([]float64, k)
	totalHess := make([]float64, k)
	for _, idx := range indices {
		for d := 0; d < k; d++ {
			totalGrad[d] += t.gradients[d][idx]
			totalHess[d] += t.hessians[d][idx]
		}
	}

	bestSplit := SplitInfo{Feature: feature, Gain: math.Inf(-1)}
	leftGrad := make([]float64, k)
	leftHess := make([]float64, k)
	leftCount := 0

	for i := 0; i < len(values)-1; i++ {
		idx := values[i].idx
		for d := 0; d < k; d++ {
			leftGrad[d] += t.gradients[d][idx]
			leftHess[d] += t.hessians[d][idx]
		}
		leftCount++

		if values[i].value == values[i+1].value {
			continue
		}

		rightCount := len(indices) - leftCount
		if leftCount < t.params.MinDataInLeaf || rightCount < t.params.MinDataInLeaf {
			continue
		}

		gain := 0.0
		for d := 0; d < k; d++ {
			gain += t.splitGain(leftGrad[d], leftHess[d],
				totalGrad[d]-leftGrad[d], totalHess[d]-leftHess[d])
		}

		if gain > bestSplit.Gain {
			bestSplit.Gain = gain
			bestSplit.Threshold = (values[i].value + values[i+1].value) / 2
		}
	}
	return bestSplit
}

// splitGain is the standard second-order gain of splitting a node.
func (t *Trainer) splitGain(leftGrad, leftHess, rightGrad, rightHess float64) float64 {
	lambda := t.params.Lambda
	totalGrad := leftGrad + rightGrad
	totalHess := leftHess + rightHess
	return 0.5 * (leftGrad*leftGrad/(leftHess+lambda+1e-10) +
		rightGrad*rightGrad/(rightHess+lambda+1e-10) -
		totalGrad*totalGrad/(totalHess+lambda+1e-10))
}

// splitData partitions sample indices by the chosen split.
func (t *Trainer) splitData(indices []int, split SplitInfo) ([]int, []int) {
	var left, right []int
	for _, idx := range indices {
		if t.X.At(idx, split.Feature) <= split.Threshold {
			left = append(left, idx)
		} else {
			right = append(right, idx)
		}
	}
	return left, right
}

// calculateLeafValue computes the leaf's output vector, shrinkage applied.
// Scalar leaves use -G/(H+lambda); multiclass leaves take a Newton step on
// the accumulated full hessian, falling back to the diagonal when the
// Cholesky factorization fails.
func (t *Trainer) calculateLeafValue(indices []int) []float64 {
	k := t.outputDim
	value := make([]float64, k)

	if k == 1 {
		var sumGrad, sumHess float64
		for _, idx := range indices {
			sumGrad += t.gradients[0][idx]
			sumHess += t.hessians[0][idx]
		}
		value[0] = -sumGrad / (sumHess + t.params.Lambda + 1e-10) * t.params.LearningRate
		return value
	}

	sumGrad := make([]float64, k)
	sumHess := mat.NewSymDense(k, nil)
	for _, idx := range indices {
		hf := t.hessFull[idx]
		for a := 0; a < k; a++ {
			sumGrad[a] += t.gradients[a][idx]
			for b := a; b < k; b++ {
				sumHess.SetSym(a, b, sumHess.At(a, b)+hf.At(a, b))
			}
		}
	}

	// L2 damping on the diagonal keeps the system positive definite.
	for a := 0; a < k; a++ {
		sumHess.SetSym(a, a, sumHess.At(a, a)+t.params.Lambda+1e-10)
	}

	var chol mat.Cholesky
	if chol.Factorize(sumHess) {
		var step mat.VecDense
		if err := chol.SolveVecTo(&step, mat.NewVecDense(k, sumGrad)); err == nil {
			for d := 0; d < k; d++ {
				value[d] = -step.AtVec(d) * t.params.LearningRate
			}
			return value
		}
	}

	for d := 0; d < k; d++ {
		value[d] = -sumGrad[d] / (sumHess.At(d, d)) * t.params.LearningRate
	}
	return value
}

// updateApprox adds the new tree's outputs to the cached raw predictions.
func (t *Trainer) updateApprox(tree *Tree) {
	rows, _ := t.X.Dims()
	for i := 0; i < rows; i++ {
		leaf := tree.PredictRow(t.X.RawRowView(i))
		for d := 0; d < t.outputDim; d++ {
			t.approx[d][i] += leaf[d]
		}
	}
}

// evaluate runs the metric on the training set and, when configured, on the
// validation set.
func (t *Trainer) evaluate() map[string]float64 {
	results := make(map[string]float64)

	if errSum, wSum, err := t.metric.Evaluate(t.approx, t.y, t.sampleWeight); err == nil {
		results["train-"+t.metric.Name()] = t.metric.GetFinalError(errSum, wSum)
	} else {
		t.logger.Warn("train metric evaluation failed", log.ErrAttr(err))
	}

	if t.evalX != nil {
		approxes := t.rawApproxes(t.evalX)
		if errSum, wSum, err := t.metric.Evaluate(approxes, t.evalY, nil); err == nil {
			results["valid-"+t.metric.Name()] = t.metric.GetFinalError(errSum, wSum)
		} else {
			t.logger.Warn("valid metric evaluation failed", log.ErrAttr(err))
		}
	}
	return results
}

// rawApproxes computes raw ensemble outputs for X, indexed [dim][example].
func (t *Trainer) rawApproxes(X *mat.Dense) [][]float64 {
	rows, _ := X.Dims()
	out := makeGrid(t.outputDim, rows)
	for i := 0; i < rows; i++ {
		row := X.RawRowView(i)
		for _, tree := range t.trees {
			leaf := tree.PredictRow(row)
			for d := 0; d < t.outputDim; d++ {
				out[d][i] += leaf[d]
			}
		}
	}
	return out
}

// Predict returns raw ensemble outputs: an n×1 matrix for single-output
// objectives, n×k for multiclass.
func (t *Trainer) Predict(X mat.Matrix) (*mat.Dense, error) {
	if !t.fitted {
		return nil, errors.ErrNotFitted
	}
	xd := toDense(X)
	rows, cols := xd.Dims()
	if cols != t.numFeatures {
		return nil, errors.NewDimensionError("Trainer.Predict", t.numFeatures, cols, 1)
	}

	out := mat.NewDense(rows, t.outputDim, nil)
	acc := make([]float64, t.outputDim)
	for i := 0; i < rows; i++ {
		row := xd.RawRowView(i)
		for d := range acc {
			acc[d] = 0
		}
		for _, tree := range t.trees {
			leaf := tree.PredictRow(row)
			for d := 0; d < t.outputDim; d++ {
				acc[d] += leaf[d]
			}
		}
		out.SetRow(i, acc)
	}
	return out, nil
}

// PredictProba returns class probabilities: n×2 for binary log-loss
// objectives, n×k softmax for multiclass. Regression objectives have no
// probability interpretation and return a ValueError.
func (t *Trainer) PredictProba(X mat.Matrix) (*mat.Dense, error) {
	raw, err := t.Predict(X)
	if err != nil {
		return nil, err
	}
	rows, _ := raw.Dims()

	if t.outputDim == 1 {
		if !t.binary {
			return nil, errors.NewValueError("Trainer.PredictProba",
				"objective has no probability interpretation")
		}
		out := mat.NewDense(rows, 2, nil)
		for i := 0; i < rows; i++ {
			e := math.Exp(raw.At(i, 0))
			p := e / (1 + e)
			out.Set(i, 0, 1-p)
			out.Set(i, 1, p)
		}
		return out, nil
	}

	out := mat.NewDense(rows, t.outputDim, nil)
	for i := 0; i < rows; i++ {
		out.SetRow(i, objective.Softmax(raw.RawRowView(i)))
	}
	return out, nil
}

// EvalHistory returns the per-iteration metric history recorded during Fit.
func (t *Trainer) EvalHistory() map[string][]float64 {
	return t.history
}

// NumTrees returns the number of trees in the ensemble.
func (t *Trainer) NumTrees() int {
	return len(t.trees)
}

// toDense converts any mat.Matrix into a *mat.Dense without copying when
// possible.
func toDense(X mat.Matrix) *mat.Dense {
	if d, ok := X.(*mat.Dense); ok {
		return d
	}
	rows, cols := X.Dims()
	d := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			d.Set(i, j, X.At(i, j))
		}
	}
	return d
}

// makeGrid allocates a dims×n float grid.
func makeGrid(dims, n int) [][]float64 {
	grid := make([][]float64, dims)
	for d := range grid {
		grid[d] = make([]float64, n)
	}
	return grid
}
