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

	"github.com/gorse-io/hybrid/storage"
	"github.com/juju/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoDB stores scores in a collection of documents {user_id, movie_id, score}.
type MongoDB struct {
	storage.TablePrefix
	client *mongo.Client
	dbName string
}

func (m *MongoDB) collection() *mongo.Collection {
	return m.client.Database(m.dbName).Collection(m.ScoresTable())
}

func (m *MongoDB) Init() error {
	ctx := context.Background()
	d := m.client.Database(m.dbName)
	// list collections
	collections, err := d.ListCollectionNames(ctx, bson.M{"name": m.ScoresTable()})
	if err != nil {
		return errors.Trace(err)
	}
	if len(collections) == 0 {
		if err = d.CreateCollection(ctx, m.ScoresTable()); err != nil {
			return errors.Trace(err)
		}
	}
	// create index
	_, err = m.collection().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "movie_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return errors.Trace(err)
}

func (m *MongoDB) Close() error {
	return m.client.Disconnect(context.Background())
}

func (m *MongoDB) Purge() error {
	_, err := m.collection().DeleteMany(context.Background(), bson.M{})
	return errors.Trace(err)
}

func (m *MongoDB) BatchInsertScores(ctx context.Context, scores []Score) error {
	if len(scores) == 0 {
		return nil
	}
	models := make([]mongo.WriteModel, 0, len(scores))
	for _, score := range scores {
		models = append(models, mongo.NewUpdateOneModel().
			SetUpsert(true).
			SetFilter(bson.M{"user_id": score.UserId, "movie_id": score.MovieId}).
			SetUpdate(bson.M{"$set": bson.M{"score": score.Score}}))
	}
	_, err := m.collection().BulkWrite(ctx, models)
	return errors.Trace(err)
}

func (m *MongoDB) GetScoreStream(ctx context.Context, batchSize int) (chan []Score, chan error) {
	scoreChan := make(chan []Score, bufSize)
	errChan := make(chan error, 1)
	go func() {
		defer close(scoreChan)
		defer close(errChan)
		opt := options.Find().
			SetSort(bson.D{{Key: "user_id", Value: 1}, {Key: "movie_id", Value: 1}}).
			SetBatchSize(int32(batchSize))
		r, err := m.collection().Find(ctx, bson.M{}, opt)
		if err != nil {
			errChan <- errors.Trace(err)
			return
		}
		defer r.Close(ctx)
		scores := make([]Score, 0, batchSize)
		for r.Next(ctx) {
			var score Score
			if err = r.Decode(&score); err != nil {
				errChan <- errors.Trace(err)
				return
			}
			scores = append(scores, score)
			if len(scores) == batchSize {
				scoreChan <- scores
				scores = make([]Score, 0, batchSize)
			}
		}
		if err = r.Err(); err != nil {
			errChan <- errors.Trace(err)
			return
		}
		if len(scores) > 0 {
			scoreChan <- scores
		}
		errChan <- nil
	}()
	return scoreChan, errChan
}
