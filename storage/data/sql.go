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
	"database/sql"

	"github.com/gorse-io/hybrid/storage"
	"github.com/juju/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SQLDriver int

const (
	MySQL SQLDriver = iota
	Postgres
	SQLite
)

// SQLDatabase stores scores in MySQL, Postgres or SQLite.
type SQLDatabase struct {
	storage.TablePrefix
	gormDB *gorm.DB
	client *sql.DB
	driver SQLDriver
}

func (d *SQLDatabase) Init() error {
	tx := d.gormDB
	if d.driver == MySQL {
		tx = tx.Set("gorm:table_options", "ENGINE=InnoDB")
	}
	if err := tx.Table(d.ScoresTable()).AutoMigrate(&Score{}); err != nil {
		return errors.Trace(err)
	}
	return nil
}

func (d *SQLDatabase) Close() error {
	return d.client.Close()
}

func (d *SQLDatabase) Purge() error {
	if err := d.gormDB.Exec("DELETE FROM " + d.ScoresTable()).Error; err != nil {
		return errors.Trace(err)
	}
	return nil
}

func (d *SQLDatabase) BatchInsertScores(ctx context.Context, scores []Score) error {
	if len(scores) == 0 {
		return nil
	}
	err := d.gormDB.WithContext(ctx).Table(d.ScoresTable()).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "movie_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"score"}),
	}).Create(&scores).Error
	return errors.Trace(err)
}

func (d *SQLDatabase) GetScoreStream(ctx context.Context, batchSize int) (chan []Score, chan error) {
	scoreChan := make(chan []Score, bufSize)
	errChan := make(chan error, 1)
	go func() {
		defer close(scoreChan)
		defer close(errChan)
		result, err := d.gormDB.WithContext(ctx).Table(d.ScoresTable()).
			Select("user_id, movie_id, score").
			Order("user_id, movie_id").
			Rows()
		if err != nil {
			errChan <- errors.Trace(err)
			return
		}
		defer result.Close()
		scores := make([]Score, 0, batchSize)
		for result.Next() {
			var score Score
			if err = result.Scan(&score.UserId, &score.MovieId, &score.Score); err != nil {
				errChan <- errors.Trace(err)
				return
			}
			scores = append(scores, score)
			if len(scores) == batchSize {
				select {
				case scoreChan <- scores:
				case <-ctx.Done():
					errChan <- errors.Trace(ctx.Err())
					return
				}
				scores = make([]Score, 0, batchSize)
			}
		}
		if err = result.Err(); err != nil {
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
