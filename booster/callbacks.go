package booster

import (
	"math"

	"github.com/ymsk-ml/customboost/pkg/log"
)

// CallbackEnv is the environment passed to callbacks after each iteration.
type CallbackEnv struct {
	Iteration     int
	EvalResults   map[string]float64
	StopTraining  bool
	BestIteration int
}

// Callback is invoked after every boosting iteration.
type Callback func(env *CallbackEnv) error

// PrintEvaluation logs evaluation results every period iterations.
func PrintEvaluation(period int) Callback {
	logger := log.GetLoggerWithName("booster.callbacks")
	if period < 1 {
		period = 1
	}
	return func(env *CallbackEnv) error {
		if env.Iteration%period == 0 {
			fields := []any{log.IterationKey, env.Iteration}
			for name, value := range env.EvalResults {
				fields = append(fields, name, value)
			}
			logger.Info("eval", fields...)
		}
		return nil
	}
}

// RecordEvaluation appends the per-iteration evaluation results to history.
func RecordEvaluation(history *map[string][]float64) Callback {
	return func(env *CallbackEnv) error {
		if *history == nil {
			*history = make(map[string][]float64)
		}
		for name, value := range env.EvalResults {
			(*history)[name] = append((*history)[name], value)
		}
		return nil
	}
}

// EarlyStopping stops training when the metric under metricKey has not
// improved for rounds iterations. maximize selects the improvement
// direction, typically Metric.IsMaxOptimal().
func EarlyStopping(rounds int, metricKey string, maximize bool) Callback {
	logger := log.GetLoggerWithName("booster.callbacks")
	bestScore := math.Inf(1)
	if maximize {
		bestScore = math.Inf(-1)
	}
	bestIteration := 0
	roundsNoImprove := 0

	return func(env *CallbackEnv) error {
		value, exists := env.EvalResults[metricKey]
		if !exists {
			return nil
		}

		improved := value < bestScore
		if maximize {
			improved = value > bestScore
		}

		if improved {
			bestScore = value
			bestIteration = env.Iteration
			roundsNoImprove = 0
		} else {
			roundsNoImprove++
		}

		if roundsNoImprove >= rounds {
			logger.Info("early stopping",
				log.IterationKey, env.Iteration,
				"best_iteration", bestIteration,
				log.MetricKey, metricKey,
				"best_score", bestScore)
			env.StopTraining = true
			env.BestIteration = bestIteration
		}
		return nil
	}
}

// CallbackList manages multiple callbacks and their shared environment.
type CallbackList struct {
	callbacks []Callback
	env       *CallbackEnv
}

// NewCallbackList creates a new callback list.
func NewCallbackList(callbacks ...Callback) *CallbackList {
	return &CallbackList{
		callbacks: callbacks,
		env: &CallbackEnv{
			EvalResults: make(map[string]float64),
		},
	}
}

// AfterIteration invokes every callback with the iteration's eval results.
func (cl *CallbackList) AfterIteration(iteration int, evalResults map[string]float64) error {
	cl.env.Iteration = iteration
	cl.env.EvalResults = evalResults

	for _, cb := range cl.callbacks {
		if err := cb(cl.env); err != nil {
			return err
		}
	}
	return nil
}

// ShouldStop reports whether a callback requested to stop training.
func (cl *CallbackList) ShouldStop() bool {
	return cl.env.StopTraining
}

// BestIteration returns the best iteration recorded by an early-stopping
// callback, or 0 when none fired.
func (cl *CallbackList) BestIteration() int {
	return cl.env.BestIteration
}
