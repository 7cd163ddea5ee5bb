// Package customboost provides a gradient-boosting trainer with pluggable
// objectives and evaluation metrics for Go.
//
// The training loop is fixed; the loss derivatives and the evaluation metric
// are callbacks. A custom objective implements CalcDersRange (or
// CalcDersMulti for multiclass) and is guaranteed to reproduce the matching
// built-in loss exactly, which makes it a safe starting point for writing
// your own.
//
// # Quick Start
//
// Training a binary classifier with a user-supplied log-loss objective:
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/ymsk-ml/customboost/booster"
//	    "github.com/ymsk-ml/customboost/dataset"
//	    "github.com/ymsk-ml/customboost/objective"
//	)
//
//	func main() {
//	    X, y, err := dataset.MakeClassification(500, 6, 2, 42)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    params := booster.TrainingParams{
//	        NumIterations: 50,
//	        LearningRate:  0.1,
//	        Objective:     "binary",
//	    }
//	    trainer := booster.NewTrainer(params,
//	        booster.WithObjective(objective.NewLoglossObjective()))
//	    if err := trainer.Fit(X, y); err != nil {
//	        log.Fatal(err)
//	    }
//
//	    proba, err := trainer.PredictProba(X)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println("P(class=1) for the first example:", proba.At(0, 1))
//	}
//
// # Packages
//
//   - objective: Objective, MulticlassObjective and Metric contracts plus the
//     reference implementations (Logloss, RMSE, Softmax, Accuracy)
//   - booster: the boosting trainer, built-in losses, trees and training
//     callbacks (early stopping, evaluation recording)
//   - dataset: synthetic data generators, train/test splitting and numpy
//     .npy file I/O
//   - pkg/errors: structured error types with zerolog marshaling
//   - pkg/log: slog-compatible structured logging
//
// # Derivative Convention
//
// Objectives return derivatives of the score being maximized: for log-loss,
// der1 = target - p and der2 = -p(1-p). Metrics return an (error sum, weight
// sum) pair and fold them with GetFinalError, so weighted evaluation works
// without the metric knowing the weighting scheme.
package customboost
