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

package metadata

import (
	"context"

	"github.com/gorse-io/hybrid/common/parallel"
	"github.com/gorse-io/hybrid/logics"
)

// EnrichedMovie is a recommendation with its metadata.
type EnrichedMovie struct {
	logics.Recommendation
	Details
}

// Enricher attaches metadata to recommendations.
type Enricher struct {
	fetcher       Fetcher
	jobs          int
	requirePoster bool
}

func NewEnricher(fetcher Fetcher, jobs int, requirePoster bool) *Enricher {
	return &Enricher{fetcher: fetcher, jobs: jobs, requirePoster: requirePoster}
}

// Enrich fetches metadata concurrently and keeps the ranking order. Movies
// without a poster are dropped if posters are required. Lookups not finished
// before ctx is done get the placeholder.
func (e *Enricher) Enrich(ctx context.Context, recommendations []logics.Recommendation) []EnrichedMovie {
	details := make([]Details, len(recommendations))
	done := make([]bool, len(recommendations))
	_ = parallel.For(ctx, len(recommendations), e.jobs, func(i int) {
		details[i] = e.fetcher.Fetch(ctx, recommendations[i].MovieId)
		done[i] = true
	})
	movies := make([]EnrichedMovie, 0, len(recommendations))
	for i, rec := range recommendations {
		if !done[i] {
			details[i] = Placeholder()
		}
		if e.requirePoster && !details[i].HasPoster() {
			continue
		}
		movies = append(movies, EnrichedMovie{Recommendation: rec, Details: details[i]})
	}
	return movies
}
