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
	"sync"
	"testing"

	"github.com/gorse-io/hybrid/logics"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
)

type mockFetcher struct {
	sync.Mutex
	details map[int64]Details
	fetched []int64
}

func (m *mockFetcher) Fetch(_ context.Context, movieId int64) Details {
	m.Lock()
	defer m.Unlock()
	m.fetched = append(m.fetched, movieId)
	if details, ok := m.details[movieId]; ok {
		return details
	}
	return Placeholder()
}

func newMockFetcher() *mockFetcher {
	return &mockFetcher{details: map[int64]Details{
		1: {Poster: "https://image.tmdb.org/t/p/w500/1.jpg", Rating: "7", Overview: "one", ReleaseDate: "2001-01-01"},
		3: {Poster: "https://image.tmdb.org/t/p/w500/3.jpg", Rating: "8", Overview: "three", ReleaseDate: "2003-01-01"},
	}}
}

var recommendations = []logics.Recommendation{
	{Title: "A", MovieId: 1, Score: 0.9},
	{Title: "B", MovieId: 2, Score: 0.8},
	{Title: "C", MovieId: 3, Score: 0.7},
}

func TestEnricher(t *testing.T) {
	fetcher := newMockFetcher()
	movies := NewEnricher(fetcher, 2, false).Enrich(context.Background(), recommendations)
	assert.Len(t, movies, 3)
	assert.Equal(t, []string{"A", "B", "C"}, lo.Map(movies, func(m EnrichedMovie, _ int) string {
		return m.Title
	}))
	assert.Equal(t, "one", movies[0].Overview)
	assert.Equal(t, Placeholder(), movies[1].Details)
	assert.Equal(t, float32(0.7), movies[2].Score)
	assert.ElementsMatch(t, []int64{1, 2, 3}, fetcher.fetched)
}

func TestEnricherRequirePoster(t *testing.T) {
	movies := NewEnricher(newMockFetcher(), 4, true).Enrich(context.Background(), recommendations)
	assert.Equal(t, []int64{1, 3}, lo.Map(movies, func(m EnrichedMovie, _ int) int64 {
		return m.MovieId
	}))

	// nothing left to show
	movies = NewEnricher(newMockFetcher(), 4, true).Enrich(context.Background(), recommendations[1:2])
	assert.Empty(t, movies)
}

func TestEnricherCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	movies := NewEnricher(newMockFetcher(), 1, false).Enrich(ctx, recommendations)
	assert.Len(t, movies, 3)
	for _, movie := range movies {
		assert.Equal(t, Placeholder(), movie.Details)
	}
}
