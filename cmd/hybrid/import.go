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

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gorse-io/hybrid/common/log"
	"github.com/gorse-io/hybrid/dataset"
	"github.com/gorse-io/hybrid/storage/data"
	"github.com/juju/errors"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const importBatchSize = 10000

var importCommand = &cobra.Command{
	Use:   "import-scores <csv>",
	Short: "Import collaborative scores from csv into the score database.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		conf := loadConfig(cmd)
		if conf.Database.ScoreStore == "" {
			log.Logger().Fatal("score database is not configured")
		}
		database, err := openDatabase(conf)
		if err != nil {
			log.Logger().Fatal("failed to open score database", zap.Error(err))
		}
		defer database.Close()
		if err = database.Init(); err != nil {
			log.Logger().Fatal("failed to init score database", zap.Error(err))
		}

		file, err := os.Open(args[0])
		if err != nil {
			log.Logger().Fatal("failed to open scores", zap.Error(err))
		}
		defer file.Close()
		stat, err := file.Stat()
		if err != nil {
			log.Logger().Fatal("failed to stat scores", zap.Error(err))
		}
		pbReader := progressbar.NewReader(file, progressbar.DefaultBytes(stat.Size(), "Importing scores"))

		start := time.Now()
		count, err := importScores(context.Background(), database, &pbReader, importBatchSize)
		if err != nil {
			log.Logger().Fatal("failed to import scores", zap.Error(err))
		}
		fmt.Println()
		log.Logger().Info("import scores complete",
			zap.Int("n_scores", count),
			zap.Duration("used_time", time.Since(start)))
	},
}

func init() {
	rootCommand.AddCommand(importCommand)
}

// importScores inserts scores read from csv in batches and returns the number of
// imported scores.
func importScores(ctx context.Context, database data.Database, r io.Reader, batchSize int) (int, error) {
	count := 0
	batch := make([]data.Score, 0, batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := database.BatchInsertScores(ctx, batch); err != nil {
			return errors.Trace(err)
		}
		count += len(batch)
		batch = batch[:0]
		return nil
	}
	if err := dataset.ReadScores(r, func(score data.Score) error {
		batch = append(batch, score)
		if len(batch) >= batchSize {
			return flush()
		}
		return nil
	}); err != nil {
		return count, errors.Trace(err)
	}
	if err := flush(); err != nil {
		return count, errors.Trace(err)
	}
	return count, nil
}
