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
	"context"
	"time"

	"github.com/gorse-io/hybrid/common/log"
	"github.com/gorse-io/hybrid/config"
	"github.com/gorse-io/hybrid/storage/blob"
	"github.com/gorse-io/hybrid/storage/data"
	"github.com/juju/errors"
	"go.uber.org/zap"
)

const batchSize = 10000

// Load reads the catalog and the similarity matrix from the artifact store and
// the collaborative scores from the score database. Scores are read from the
// artifact store if no score database is given. The loaded parts are validated
// and any failure is returned.
func Load(ctx context.Context, store blob.Store, database data.Database, cfg config.DatasetConfig) (*Dataset, error) {
	start := time.Now()
	catalog, err := loadCatalog(store, cfg.CatalogFile)
	if err != nil {
		return nil, errors.Trace(err)
	}
	similarity, err := loadSimilarity(store, cfg.SimilarityFile)
	if err != nil {
		return nil, errors.Trace(err)
	}
	var scores *ScoreTable
	if _, ok := database.(data.NoDatabase); database == nil || ok {
		scores, err = loadScoresFromFile(store, cfg.ScoresFile)
	} else {
		scores, err = loadScoresFromDatabase(ctx, database)
	}
	if err != nil {
		return nil, errors.Trace(err)
	}
	dataset, err := NewDataset(catalog, similarity, scores)
	if err != nil {
		return nil, errors.Trace(err)
	}
	log.Logger().Info("load dataset complete",
		zap.Int("n_movies", dataset.CountMovies()),
		zap.Int("n_users", dataset.CountUsers()),
		zap.Int("n_scores", scores.CountScores()),
		zap.Duration("used_time", time.Since(start)))
	return dataset, nil
}

func loadCatalog(store blob.Store, name string) (*Catalog, error) {
	r, err := store.Open(name)
	if err != nil {
		return nil, errors.Annotatef(err, "failed to open catalog %s", name)
	}
	defer r.Close()
	movies, err := ReadCatalog(r)
	if err != nil {
		return nil, errors.Annotatef(err, "failed to read catalog %s", name)
	}
	return NewCatalog(movies)
}

func loadSimilarity(store blob.Store, name string) (*SimilarityMatrix, error) {
	r, err := store.Open(name)
	if err != nil {
		return nil, errors.Annotatef(err, "failed to open similarity matrix %s", name)
	}
	defer r.Close()
	m, err := ReadMatrix(r)
	if err != nil {
		return nil, errors.Annotatef(err, "failed to read similarity matrix %s", name)
	}
	return m, nil
}

func loadScoresFromFile(store blob.Store, name string) (*ScoreTable, error) {
	scores := NewScoreTable()
	if name == "" {
		log.Logger().Warn("no collaborative scores configured, ranking by content only")
		return scores, nil
	}
	r, err := store.Open(name)
	if err != nil {
		return nil, errors.Annotatef(err, "failed to open scores %s", name)
	}
	defer r.Close()
	if err = ReadScores(r, func(score data.Score) error {
		scores.add(score)
		return nil
	}); err != nil {
		return nil, errors.Annotatef(err, "failed to read scores %s", name)
	}
	return scores, nil
}

func loadScoresFromDatabase(ctx context.Context, database data.Database) (*ScoreTable, error) {
	scores := NewScoreTable()
	scoreChan, errChan := database.GetScoreStream(ctx, batchSize)
	var invalid error
	for batch := range scoreChan {
		// keep draining after an invalid score so the stream can finish
		if invalid != nil {
			continue
		}
		for _, score := range batch {
			if invalid = validateScore(score); invalid != nil {
				break
			}
		}
		scores.add(batch...)
	}
	if err := <-errChan; err != nil {
		return nil, errors.Annotate(err, "failed to read scores from database")
	}
	if invalid != nil {
		return nil, errors.Annotate(invalid, "invalid score in database")
	}
	return scores, nil
}
