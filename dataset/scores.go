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

package dataset

import (
	"sort"

	"github.com/chewxy/math32"
	"github.com/gorse-io/hybrid/storage/data"
	"github.com/juju/errors"
	"github.com/samber/lo"
)

// ScoreTable holds raw collaborative scores by user and movie.
type ScoreTable struct {
	scores map[string]map[int64]float32
	count  int
}

func NewScoreTable() *ScoreTable {
	return &ScoreTable{scores: make(map[string]map[int64]float32)}
}

// NewScoreTableFrom builds a table from scores. Later scores of the same pair win.
func NewScoreTableFrom(scores []data.Score) *ScoreTable {
	t := NewScoreTable()
	t.add(scores...)
	return t
}

// validateScore rejects scores that would poison the blended ranking.
func validateScore(score data.Score) error {
	if math32.IsNaN(score.Score) || math32.IsInf(score.Score, 0) {
		return errors.NotValidf("score %v of user %s for movie %d", score.Score, score.UserId, score.MovieId)
	}
	return nil
}

func (t *ScoreTable) add(scores ...data.Score) {
	for _, score := range scores {
		userScores, exist := t.scores[score.UserId]
		if !exist {
			userScores = make(map[int64]float32)
			t.scores[score.UserId] = userScores
		}
		if _, exist = userScores[score.MovieId]; !exist {
			t.count++
		}
		userScores[score.MovieId] = score.Score
	}
}

// Score returns the raw score of a user for a movie, 0 if absent.
func (t *ScoreTable) Score(userId string, movieId int64) float32 {
	return t.scores[userId][movieId]
}

// Lookup returns the raw score and whether it exists.
func (t *ScoreTable) Lookup(userId string, movieId int64) (float32, bool) {
	score, ok := t.scores[userId][movieId]
	return score, ok
}

func (t *ScoreTable) HasUser(userId string) bool {
	_, ok := t.scores[userId]
	return ok
}

func (t *ScoreTable) CountUsers() int {
	return len(t.scores)
}

func (t *ScoreTable) CountScores() int {
	return t.count
}

// Users returns user ids in ascending order.
func (t *ScoreTable) Users() []string {
	users := lo.Keys(t.scores)
	sort.Strings(users)
	return users
}

// MovieIds returns movies scored by a user in ascending order.
func (t *ScoreTable) MovieIds(userId string) []int64 {
	movies := lo.Keys(t.scores[userId])
	sort.Slice(movies, func(i, j int) bool {
		return movies[i] < movies[j]
	})
	return movies
}

// All returns every score ordered by user then movie.
func (t *ScoreTable) All() []data.Score {
	scores := make([]data.Score, 0, t.count)
	for _, userId := range t.Users() {
		for _, movieId := range t.MovieIds(userId) {
			scores = append(scores, data.Score{UserId: userId, MovieId: movieId, Score: t.scores[userId][movieId]})
		}
	}
	return scores
}
