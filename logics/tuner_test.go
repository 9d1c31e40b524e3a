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
	"testing"

	"github.com/gorse-io/hybrid/config"
	"github.com/gorse-io/hybrid/storage/data"
	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
)

func TestTune(t *testing.T) {
	// content similarity points to C, collaborative scores point to A and B
	ds := newTestDataset(t, []string{"A", "B", "C", "D", "E"}, [][]float32{
		{1.0, 0.0, 0.9, 0.1, 0.1},
		{0.0, 1.0, 0.9, 0.1, 0.1},
		{0.9, 0.9, 1.0, 0.1, 0.1},
		{0.1, 0.1, 0.1, 1.0, 0.1},
		{0.1, 0.1, 0.1, 0.1, 1.0},
	}, []data.Score{
		{UserId: "u1", MovieId: 1, Score: 5},
		{UserId: "u1", MovieId: 2, Score: 5},
	})
	recommend := config.GetDefaultConfig().Recommend
	recommend.TopN = 1
	evaluator := NewEvaluator(NewHybridRanker(ds, recommend), ds, newTestEvaluateConfig())

	result, err := evaluator.Tune(context.Background(), 12)
	assert.NoError(t, err)
	assert.Len(t, result.Trials, 12)
	for _, trial := range result.Trials {
		assert.GreaterOrEqual(t, result.Best.Precision, trial.Precision)
		assert.GreaterOrEqual(t, trial.Alpha, float32(0))
		assert.LessOrEqual(t, trial.Alpha, float32(1))
	}
	assert.Equal(t, 1.0, result.Best.Precision)
	assert.Less(t, result.Best.Alpha, float32(0.53))
}

func TestTuneInvalidTrials(t *testing.T) {
	ds := newTestDataset(t, []string{"A", "B"}, uniformRows(2, 0.5), nil)
	evaluator := NewEvaluator(newTestRanker(ds), ds, newTestEvaluateConfig())
	_, err := evaluator.Tune(context.Background(), 0)
	assert.True(t, errors.Is(err, errors.NotValid))
}
