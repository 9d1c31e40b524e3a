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
	"github.com/gorse-io/hybrid/common/heap"
	"github.com/gorse-io/hybrid/config"
	"github.com/gorse-io/hybrid/dataset"
	"github.com/juju/errors"
)

// ErrMovieNotFound is returned when a query title is not in the catalog.
var ErrMovieNotFound = errors.NotFoundf("movie")

// Recommendation is a ranked movie with its blended score.
type Recommendation struct {
	Title   string  `json:"title"`
	MovieId int64   `json:"movie_id"`
	Score   float32 `json:"score"`
}

// HybridRanker blends content similarity with collaborative scores:
//
//	score(j) = alpha * sim[i][j] + (1 - alpha) * raw(user, j) / scale
//
// where i is the query movie. Movies are ordered by score descending and
// ties are broken by catalog order. The query movie itself is never returned.
type HybridRanker struct {
	dataset    *dataset.Dataset
	topN       int
	scoreScale float32
}

func NewHybridRanker(ds *dataset.Dataset, cfg config.RecommendConfig) *HybridRanker {
	return &HybridRanker{
		dataset:    ds,
		topN:       cfg.TopN,
		scoreScale: cfg.ScoreScale,
	}
}

func (r *HybridRanker) TopN() int {
	return r.topN
}

// Recommend ranks movies for a title that exactly matches a catalog title.
// Alpha must be in [0, 1].
func (r *HybridRanker) Recommend(title, userId string, alpha float32) ([]Recommendation, error) {
	i, ok := r.dataset.Catalog().IndexOfTitle(title)
	if !ok {
		return nil, errors.Annotatef(ErrMovieNotFound, "%q", title)
	}
	return r.RecommendIndex(i, userId, alpha), nil
}

// RecommendIndex ranks movies for the movie at catalog index i.
func (r *HybridRanker) RecommendIndex(i int, userId string, alpha float32) []Recommendation {
	catalog := r.dataset.Catalog()
	filter := heap.NewTopKFilter[int, float32](r.topN)
	for j := 0; j < catalog.Len(); j++ {
		if j != i {
			filter.Push(j, r.Score(i, j, userId, alpha))
		}
	}
	elems := filter.PopAll()
	recommendations := make([]Recommendation, len(elems))
	for k, elem := range elems {
		movie := catalog.Movie(elem.Value)
		recommendations[k] = Recommendation{
			Title:   movie.Title,
			MovieId: movie.MovieId,
			Score:   elem.Weight,
		}
	}
	return recommendations
}

// Score returns the blended score of movie j for query movie i.
func (r *HybridRanker) Score(i, j int, userId string, alpha float32) float32 {
	content := r.dataset.Similarity().At(i, j)
	collab := r.dataset.Scores().Score(userId, r.dataset.Catalog().Movie(j).MovieId) / r.scoreScale
	return alpha*content + (1-alpha)*collab
}
