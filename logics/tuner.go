// Copyright 2026 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package logics

import (
	"context"

	"github.com/c-bata/goptuna"
	"github.com/c-bata/goptuna/tpe"
	"github.com/gorse-io/hybrid/common/log"
	"github.com/juju/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// TuneResult holds every evaluated alpha and the one with the best precision.
type TuneResult struct {
	Best   Evaluation   `json:"best"`
	Trials []Evaluation `json:"trials"`
}

// Tune searches the alpha in [0, 1] maximizing Precision@K with a TPE sampler.
func (e *Evaluator) Tune(ctx context.Context, numTrials int) (TuneResult, error) {
	if numTrials <= 0 {
		return TuneResult{}, errors.NotValidf("number of trials %d", numTrials)
	}
	study, err := goptuna.CreateStudy("alpha",
		goptuna.StudyOptionDirection(goptuna.StudyDirectionMaximize),
		goptuna.StudyOptionSampler(tpe.NewSampler(tpe.SamplerOptionSeed(e.cfg.Seed))))
	if err != nil {
		return TuneResult{}, errors.Trace(err)
	}
	var result TuneResult
	if err = study.Optimize(func(trial goptuna.Trial) (float64, error) {
		alpha, err := trial.SuggestFloat("alpha", 0, 1)
		if err != nil {
			return 0, errors.Trace(err)
		}
		evaluation, err := e.Evaluate(ctx, float32(alpha))
		if err != nil {
			return 0, errors.Trace(err)
		}
		result.Trials = append(result.Trials, evaluation)
		return evaluation.Precision, nil
	}, numTrials); err != nil {
		return TuneResult{}, errors.Trace(err)
	}
	// ties go to the earliest trial
	result.Best = lo.MaxBy(result.Trials, func(a, b Evaluation) bool {
		return a.Precision > b.Precision
	})
	log.Logger().Info("tune alpha complete",
		zap.Int("n_trials", len(result.Trials)),
		zap.Float32("best_alpha", result.Best.Alpha),
		zap.Float64("best_precision", result.Best.Precision))
	return result, nil
}
