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
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/chewxy/math32"
	"github.com/gorse-io/hybrid/config"
	"github.com/gorse-io/hybrid/storage/blob"
	"github.com/gorse-io/hybrid/storage/data"
	"github.com/juju/errors"
	"github.com/stretchr/testify/suite"
)

// staticDatabase streams fixed batches of scores.
type staticDatabase struct {
	data.NoDatabase
	batches [][]data.Score
}

func (d staticDatabase) GetScoreStream(_ context.Context, _ int) (chan []data.Score, chan error) {
	scoreChan := make(chan []data.Score, len(d.batches))
	errChan := make(chan error, 1)
	for _, batch := range d.batches {
		scoreChan <- batch
	}
	close(scoreChan)
	errChan <- nil
	close(errChan)
	return scoreChan, errChan
}

type LoaderTestSuite struct {
	suite.Suite
	dir   string
	store blob.Store
	cfg   config.DatasetConfig
}

func (suite *LoaderTestSuite) SetupTest() {
	suite.dir = suite.T().TempDir()
	suite.store = blob.NewPOSIX(suite.dir)
	suite.cfg = config.GetDefaultConfig().Dataset
	suite.cfg.Store = suite.dir

	suite.writeFile(suite.cfg.CatalogFile, func(buf *bytes.Buffer) error {
		return WriteCatalog(buf, []Movie{
			{MovieId: 1, Title: "A"},
			{MovieId: 2, Title: "B"},
			{MovieId: 3, Title: "C"},
		})
	})
	suite.writeMatrix([][]float32{
		{1, 0.8, 0.2},
		{0.8, 1, 0.4},
		{0.2, 0.4, 1},
	})
	suite.writeFile(suite.cfg.ScoresFile, func(buf *bytes.Buffer) error {
		return WriteScores(buf, []data.Score{
			{UserId: "u1", MovieId: 2, Score: 5},
			{UserId: "u2", MovieId: 3, Score: 1},
		})
	})
}

func (suite *LoaderTestSuite) writeFile(name string, encode func(*bytes.Buffer) error) {
	buf := bytes.NewBuffer(nil)
	suite.NoError(encode(buf))
	suite.NoError(os.WriteFile(filepath.Join(suite.dir, name), buf.Bytes(), 0o644))
}

func (suite *LoaderTestSuite) writeMatrix(rows [][]float32) {
	m, err := NewSimilarityMatrix(rows)
	suite.NoError(err)
	suite.writeFile(suite.cfg.SimilarityFile, func(buf *bytes.Buffer) error {
		return WriteMatrix(buf, m)
	})
}

func (suite *LoaderTestSuite) TestLoadFromFiles() {
	dataset, err := Load(context.Background(), suite.store, data.NoDatabase{}, suite.cfg)
	suite.NoError(err)
	suite.Equal(3, dataset.CountMovies())
	suite.Equal(2, dataset.CountUsers())
	suite.Equal(float32(0.4), dataset.Similarity().At(1, 2))
	suite.Equal(float32(5), dataset.Scores().Score("u1", 2))
}

func (suite *LoaderTestSuite) TestLoadWithoutScores() {
	suite.cfg.ScoresFile = ""
	dataset, err := Load(context.Background(), suite.store, nil, suite.cfg)
	suite.NoError(err)
	suite.Zero(dataset.CountUsers())
}

func (suite *LoaderTestSuite) TestLoadFromDatabase() {
	database, err := data.Open(fmt.Sprintf("sqlite://%s/scores.db", suite.dir), "")
	suite.NoError(err)
	defer database.Close()
	suite.NoError(database.Init())
	suite.NoError(database.BatchInsertScores(context.Background(), []data.Score{
		{UserId: "u3", MovieId: 1, Score: 4},
		{UserId: "u3", MovieId: 3, Score: 2},
		{UserId: "u4", MovieId: 2, Score: 3},
	}))

	dataset, err := Load(context.Background(), suite.store, database, suite.cfg)
	suite.NoError(err)
	suite.Equal(2, dataset.CountUsers())
	suite.Equal(3, dataset.Scores().CountScores())
	suite.Equal(float32(2), dataset.Scores().Score("u3", 3))
	suite.False(dataset.Scores().HasUser("u1"))
}

func (suite *LoaderTestSuite) TestDimensionMismatch() {
	suite.writeMatrix([][]float32{{1, 0}, {0, 1}})
	_, err := Load(context.Background(), suite.store, nil, suite.cfg)
	suite.True(errors.Is(err, errors.NotValid))
}

func (suite *LoaderTestSuite) TestNonFiniteScores() {
	suite.writeFile(suite.cfg.ScoresFile, func(buf *bytes.Buffer) error {
		_, err := buf.WriteString("user_id,movie_id,score\nu1,2,NaN\nu1,3,+Inf\n")
		return err
	})
	_, err := Load(context.Background(), suite.store, nil, suite.cfg)
	suite.True(errors.Is(err, errors.NotValid))

	database := staticDatabase{batches: [][]data.Score{
		{{UserId: "u1", MovieId: 1, Score: 4}},
		{{UserId: "u1", MovieId: 2, Score: math32.Inf(1)}},
		{{UserId: "u2", MovieId: 3, Score: 1}},
	}}
	_, err = Load(context.Background(), suite.store, database, suite.cfg)
	suite.True(errors.Is(err, errors.NotValid))
}

func (suite *LoaderTestSuite) TestNonFiniteSimilarity() {
	suite.writeMatrix([][]float32{
		{1, 0.8, 0.2},
		{0.8, 1, math32.Inf(1)},
		{0.2, 0.4, 1},
	})
	_, err := Load(context.Background(), suite.store, nil, suite.cfg)
	suite.True(errors.Is(err, errors.NotValid))
}

func (suite *LoaderTestSuite) TestMissingArtifacts() {
	suite.NoError(suite.store.Remove(suite.cfg.SimilarityFile))
	_, err := Load(context.Background(), suite.store, nil, suite.cfg)
	suite.Error(err)

	suite.SetupTest()
	suite.NoError(suite.store.Remove(suite.cfg.CatalogFile))
	_, err = Load(context.Background(), suite.store, nil, suite.cfg)
	suite.Error(err)

	suite.SetupTest()
	suite.NoError(suite.store.Remove(suite.cfg.ScoresFile))
	_, err = Load(context.Background(), suite.store, nil, suite.cfg)
	suite.Error(err)
}

func TestLoader(t *testing.T) {
	suite.Run(t, new(LoaderTestSuite))
}
