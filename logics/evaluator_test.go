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
	"github.com/stretchr/testify/assert"
)

func newTestEvaluateConfig() config.EvaluateConfig {
	cfg := config.GetDefaultConfig().Evaluate
	cfg.NumQueries = 20
	cfg.Jobs = 2
	return cfg
}

func uniformRows(n int, offDiagonal float32) [][]float32 {
	rows := make([][]float32, n)
	for i := range rows {
		rows[i] = make([]float32, n)
		for j := range rows[i] {
			if i == j {
				rows[i][j] = 1
			} else {
				rows[i][j] = offDiagonal
			}
		}
	}
	return rows
}

func TestEvaluator(t *testing.T) {
	ds := newTestDataset(t, []string{"A", "B", "C"}, uniformRows(3, 0.2), []data.Score{
		{UserId: "u1", MovieId: 1, Score: 5},
		{UserId: "u1", MovieId: 2, Score: 5},
		{UserId: "u1", MovieId: 3, Score: 4},
	})
	evaluator := NewEvaluator(newTestRanker(ds), ds, newTestEvaluateConfig())
	result, err := evaluator.Evaluate(context.Background(), 0.5)
	assert.NoError(t, err)
	assert.Equal(t, 20, result.NumQueries)
	assert.Equal(t, 10, result.K)
	assert.Equal(t, float32(0.5), result.Alpha)
	assert.Equal(t, 1.0, result.Precision)
	assert.Zero(t, result.PrecisionStd)
	assert.Equal(t, 1.0, result.Coverage)
	assert.InDelta(t, 0.8, result.Diversity, 1e-6)

	// nothing is relevant above the threshold
	cfg := newTestEvaluateConfig()
	cfg.RelevanceThreshold = 6
	result, err = NewEvaluator(newTestRanker(ds), ds, cfg).Evaluate(context.Background(), 0.5)
	assert.NoError(t, err)
	assert.Zero(t, result.Precision)
}

func TestEvaluatorDeterministic(t *testing.T) {
	ds := newTestDataset(t, []string{"A", "B", "C", "D", "E"}, uniformRows(5, 0.3), []data.Score{
		{UserId: "u1", MovieId: 1, Score: 5},
		{UserId: "u1", MovieId: 4, Score: 2},
		{UserId: "u2", MovieId: 2, Score: 4},
		{UserId: "u2", MovieId: 5, Score: 1},
		{UserId: "u3", MovieId: 3, Score: 3},
	})
	cfg := newTestEvaluateConfig()
	cfg.Seed = 7
	first, err := NewEvaluator(newTestRanker(ds), ds, cfg).Evaluate(context.Background(), 0.3)
	assert.NoError(t, err)
	second, err := NewEvaluator(newTestRanker(ds), ds, cfg).Evaluate(context.Background(), 0.3)
	assert.NoError(t, err)
	assert.Equal(t, first, second)
	assert.GreaterOrEqual(t, first.Precision, 0.0)
	assert.LessOrEqual(t, first.Precision, 1.0)
	assert.Greater(t, first.Coverage, 0.0)
	assert.LessOrEqual(t, first.Coverage, 1.0)
}

func TestEvaluatorWithoutScores(t *testing.T) {
	ds := newTestDataset(t, []string{"A", "B", "C"}, uniformRows(3, 0.5), nil)
	result, err := NewEvaluator(newTestRanker(ds), ds, newTestEvaluateConfig()).Evaluate(context.Background(), 1)
	assert.NoError(t, err)
	assert.Zero(t, result.Precision)
	assert.Greater(t, result.Coverage, 0.0)
	assert.InDelta(t, 0.5, result.Diversity, 1e-6)
}

func TestEvaluatorCancel(t *testing.T) {
	ds := newTestDataset(t, []string{"A", "B"}, uniformRows(2, 0.5), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewEvaluator(newTestRanker(ds), ds, newTestEvaluateConfig()).Evaluate(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSampleSimilarity(t *testing.T) {
	ds := newTestDataset(t, []string{"A", "B", "C"}, [][]float32{
		{1, 0.1, 0.2},
		{0.1, 1, 0.3},
		{0.2, 0.3, 1},
	}, nil)
	titles, block := SampleSimilarity(ds, 2, 0)
	assert.Len(t, titles, 2)
	assert.Len(t, block, 2)
	assert.NotEqual(t, titles[0], titles[1])
	for a := range block {
		assert.Len(t, block[a], 2)
		assert.Equal(t, float32(1), block[a][a])
		assert.Equal(t, block[0][1], block[1][0])
	}

	titles, block = SampleSimilarity(ds, 10, 0)
	assert.ElementsMatch(t, []string{"A", "B", "C"}, titles)
	assert.Len(t, block, 3)
}
