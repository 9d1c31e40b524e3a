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
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/gorse-io/hybrid/common/log"
	"github.com/gorse-io/hybrid/common/parallel"
	"github.com/gorse-io/hybrid/common/random"
	"github.com/gorse-io/hybrid/config"
	"github.com/gorse-io/hybrid/dataset"
	"github.com/juju/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"
)

// Evaluation is the quality of recommendations measured over sampled queries.
type Evaluation struct {
	NumQueries   int     `json:"num_queries"`
	K            int     `json:"k"`
	Alpha        float32 `json:"alpha"`
	Precision    float64 `json:"precision"`
	PrecisionStd float64 `json:"precision_std"`
	Coverage     float64 `json:"coverage"`
	Diversity    float64 `json:"diversity"`
}

type query struct {
	userId string
	index  int
}

// Evaluator measures a HybridRanker offline.
//
//   - Precision@K is the share of recommended movies the user scored at least
//     the relevance threshold.
//   - Coverage is the share of the catalog recommended at least once.
//   - Diversity is the mean of 1 - mean pairwise similarity within each list.
type Evaluator struct {
	ranker  *HybridRanker
	dataset *dataset.Dataset
	cfg     config.EvaluateConfig
}

func NewEvaluator(ranker *HybridRanker, ds *dataset.Dataset, cfg config.EvaluateConfig) *Evaluator {
	return &Evaluator{ranker: ranker, dataset: ds, cfg: cfg}
}

// sampleQueries draws (user, movie) pairs. The query movie is one the user has
// scored if possible, otherwise any catalog movie.
func (e *Evaluator) sampleQueries() []query {
	rng := random.New(e.cfg.Seed)
	catalog := e.dataset.Catalog()
	users := e.dataset.Scores().Users()
	queries := make([]query, e.cfg.NumQueries)
	for k := range queries {
		var q query
		if len(users) > 0 {
			q.userId = random.Choice(rng, users)
			scored := lo.FilterMap(e.dataset.Scores().MovieIds(q.userId), func(movieId int64, _ int) (int, bool) {
				return catalog.IndexOfMovie(movieId)
			})
			if len(scored) > 0 {
				q.index = random.Choice(rng, scored)
				queries[k] = q
				continue
			}
		}
		q.index = rng.Intn(catalog.Len())
		queries[k] = q
	}
	return queries
}

// Evaluate ranks sampled queries with alpha and measures the results.
func (e *Evaluator) Evaluate(ctx context.Context, alpha float32) (Evaluation, error) {
	start := time.Now()
	queries := e.sampleQueries()
	precisions := make([]float64, len(queries))
	diversities := make([]float64, len(queries))
	hasDiversity := make([]bool, len(queries))
	covered := mapset.NewSet[int64]()
	err := parallel.For(ctx, len(queries), e.cfg.Jobs, func(k int) {
		q := queries[k]
		recommendations := e.ranker.RecommendIndex(q.index, q.userId, alpha)
		if len(recommendations) == 0 {
			return
		}
		relevant := 0
		for _, rec := range recommendations {
			covered.Add(rec.MovieId)
			if score, ok := e.dataset.Scores().Lookup(q.userId, rec.MovieId); ok && score >= e.cfg.RelevanceThreshold {
				relevant++
			}
		}
		precisions[k] = float64(relevant) / float64(len(recommendations))
		diversities[k], hasDiversity[k] = e.diversity(recommendations)
	})
	if err != nil {
		return Evaluation{}, errors.Trace(err)
	}
	result := Evaluation{
		NumQueries: len(queries),
		K:          e.ranker.TopN(),
		Alpha:      alpha,
		Coverage:   float64(covered.Cardinality()) / float64(e.dataset.CountMovies()),
	}
	if len(precisions) > 0 {
		result.Precision, result.PrecisionStd = stat.MeanStdDev(precisions, nil)
		if len(precisions) == 1 {
			result.PrecisionStd = 0
		}
	}
	if listDiversities := lo.Filter(diversities, func(_ float64, k int) bool {
		return hasDiversity[k]
	}); len(listDiversities) > 0 {
		result.Diversity = stat.Mean(listDiversities, nil)
	}
	log.Logger().Info("evaluate complete",
		zap.Int("n_queries", result.NumQueries),
		zap.Float64("precision", result.Precision),
		zap.Float64("coverage", result.Coverage),
		zap.Float64("diversity", result.Diversity),
		zap.Duration("used_time", time.Since(start)))
	return result, nil
}

// diversity returns 1 - mean pairwise similarity of a list. Lists with fewer
// than two movies have no pairs.
func (e *Evaluator) diversity(recommendations []Recommendation) (float64, bool) {
	if len(recommendations) < 2 {
		return 0, false
	}
	catalog := e.dataset.Catalog()
	similarity := e.dataset.Similarity()
	indices := lo.Map(recommendations, func(rec Recommendation, _ int) int {
		i, _ := catalog.IndexOfMovie(rec.MovieId)
		return i
	})
	pairs := make([]float64, 0, len(indices)*(len(indices)-1)/2)
	for a := 0; a < len(indices); a++ {
		for b := a + 1; b < len(indices); b++ {
			pairs = append(pairs, float64(similarity.At(indices[a], indices[b])))
		}
	}
	return 1 - stat.Mean(pairs, nil), true
}

// SampleSimilarity returns the similarity block over n random movies along with
// their titles.
func SampleSimilarity(ds *dataset.Dataset, n int, seed int64) ([]string, [][]float32) {
	indices := random.New(seed).Sample(0, ds.CountMovies(), n)
	titles := make([]string, len(indices))
	block := make([][]float32, len(indices))
	for a, i := range indices {
		titles[a] = ds.Catalog().Movie(i).Title
		block[a] = make([]float32, len(indices))
		for b, j := range indices {
			block[a][b] = ds.Similarity().At(i, j)
		}
	}
	return titles, block
}
