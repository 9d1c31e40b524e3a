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

package data

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/gorse-io/hybrid/storage"
	"github.com/juju/errors"
	"github.com/redis/go-redis/v9"
)

const scanCount = 1000

// Redis stores scores of each user in a hash {movie_id: score} under key
// <prefix>scores/<user_id>.
type Redis struct {
	storage.TablePrefix
	client *redis.Client
}

func (r *Redis) userKey(userId string) string {
	return r.ScoresTable() + "/" + userId
}

// Init does nothing.
func (r *Redis) Init() error {
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}

func (r *Redis) scanKeys(ctx context.Context) ([]string, error) {
	var (
		keys   []string
		cursor uint64
	)
	for {
		result, next, err := r.client.Scan(ctx, cursor, r.userKey("*"), scanCount).Result()
		if err != nil {
			return nil, errors.Trace(err)
		}
		keys = append(keys, result...)
		if cursor = next; cursor == 0 {
			break
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (r *Redis) Purge() error {
	ctx := context.Background()
	keys, err := r.scanKeys(ctx)
	if err != nil {
		return errors.Trace(err)
	}
	if len(keys) == 0 {
		return nil
	}
	return errors.Trace(r.client.Del(ctx, keys...).Err())
}

func (r *Redis) BatchInsertScores(ctx context.Context, scores []Score) error {
	if len(scores) == 0 {
		return nil
	}
	p := r.client.Pipeline()
	for _, score := range scores {
		p.HSet(ctx, r.userKey(score.UserId), strconv.FormatInt(score.MovieId, 10), score.Score)
	}
	_, err := p.Exec(ctx)
	return errors.Trace(err)
}

func (r *Redis) GetScoreStream(ctx context.Context, batchSize int) (chan []Score, chan error) {
	scoreChan := make(chan []Score, bufSize)
	errChan := make(chan error, 1)
	go func() {
		defer close(scoreChan)
		defer close(errChan)
		keys, err := r.scanKeys(ctx)
		if err != nil {
			errChan <- errors.Trace(err)
			return
		}
		scores := make([]Score, 0, batchSize)
		for _, key := range keys {
			userId := strings.TrimPrefix(key, r.userKey(""))
			values, err := r.client.HGetAll(ctx, key).Result()
			if err != nil {
				errChan <- errors.Trace(err)
				return
			}
			userScores := make([]Score, 0, len(values))
			for field, value := range values {
				movieId, err := strconv.ParseInt(field, 10, 64)
				if err != nil {
					errChan <- errors.Annotatef(err, "invalid movie id in %s", key)
					return
				}
				score, err := strconv.ParseFloat(value, 32)
				if err != nil {
					errChan <- errors.Annotatef(err, "invalid score in %s", key)
					return
				}
				userScores = append(userScores, Score{UserId: userId, MovieId: movieId, Score: float32(score)})
			}
			sort.Slice(userScores, func(i, j int) bool {
				return userScores[i].MovieId < userScores[j].MovieId
			})
			for _, score := range userScores {
				scores = append(scores, score)
				if len(scores) == batchSize {
					scoreChan <- scores
					scores = make([]Score, 0, batchSize)
				}
			}
		}
		if len(scores) > 0 {
			scoreChan <- scores
		}
		errChan <- nil
	}()
	return scoreChan, errChan
}
