package booster

import (
	"github.com/ymsk-ml/customboost/pkg/errors"
)

// TrainingParams contains the training hyperparameters.
type TrainingParams struct {
	NumIterations  int     `json:"num_iterations"`
	LearningRate   float64 `json:"learning_rate"`
	MaxDepth       int     `json:"max_depth"` // <= 0 means unlimited
	MinDataInLeaf  int     `json:"min_data_in_leaf"`
	Lambda         float64 `json:"lambda_l2"`
	MinGainToSplit float64 `json:"min_gain_to_split"`

	// Objective selects a built-in loss by name. It is ignored when a custom
	// objective is supplied through WithObjective or WithMulticlassObjective.
	Objective string `json:"objective"`
	NumClass  int    `json:"num_class"`

	Verbosity int `json:"verbosity"`
}

// fillDefaults sets default values for unset parameters.
func (p *TrainingParams) fillDefaults() {
	if p.NumIterations == 0 {
		p.NumIterations = 100
	}
	if p.LearningRate == 0 {
		p.LearningRate = 0.1
	}
	if p.MaxDepth == 0 {
		p.MaxDepth = 6
	}
	if p.MinDataInLeaf == 0 {
		p.MinDataInLeaf = 20
	}
	if p.Objective == "" {
		p.Objective = "regression"
	}
}

// validate rejects parameter combinations the trainer cannot run with.
func (p *TrainingParams) validate() error {
	if p.NumIterations < 1 {
		return errors.NewValidationError("num_iterations", "must be >= 1", p.NumIterations)
	}
	if p.LearningRate <= 0 {
		return errors.NewValidationError("learning_rate", "must be > 0", p.LearningRate)
	}
	if p.MinDataInLeaf < 1 {
		return errors.NewValidationError("min_data_in_leaf", "must be >= 1", p.MinDataInLeaf)
	}
	if p.Lambda < 0 {
		return errors.NewValidationError("lambda_l2", "must be >= 0", p.Lambda)
	}
	return nil
}
