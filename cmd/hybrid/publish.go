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
	"bufio"
	"context"
	"io"
	"os"
	"time"

	"github.com/gorse-io/hybrid/common/log"
	"github.com/gorse-io/hybrid/config"
	"github.com/gorse-io/hybrid/dataset"
	"github.com/gorse-io/hybrid/storage/blob"
	"github.com/juju/errors"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var publishCommand = &cobra.Command{
	Use:   "publish <dir>",
	Short: "Validate the artifacts in a local directory and upload them to the artifact store.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		conf := loadConfig(cmd)
		prune, _ := cmd.Flags().GetBool("prune")
		store, err := blob.Open(conf.Dataset.Store, conf.Blob)
		if err != nil {
			log.Logger().Fatal("failed to open artifact store", zap.Error(err))
		}
		start := time.Now()
		names, err := publishDataset(context.Background(), blob.NewPOSIX(args[0]), store, conf.Dataset, prune)
		if err != nil {
			log.Logger().Fatal("failed to publish dataset", zap.Error(err))
		}
		log.Logger().Info("publish dataset complete",
			zap.String("store", conf.Dataset.Store),
			zap.Duration("used_time", time.Since(start)))
		if err = writeArtifactList(os.Stdout, names); err != nil {
			log.Logger().Fatal("failed to write artifacts", zap.Error(err))
		}
	},
}

func init() {
	publishCommand.Flags().Bool("prune", false, "remove artifacts that are not part of the dataset")
	rootCommand.AddCommand(publishCommand)
}

// publishDataset loads the dataset from src, so that only valid artifacts are
// published, and writes it to dst. It returns the artifacts in dst afterwards.
func publishDataset(ctx context.Context, src, dst blob.Store, cfg config.DatasetConfig, prune bool) ([]string, error) {
	ds, err := dataset.Load(ctx, src, nil, cfg)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if err = writeArtifact(dst, cfg.CatalogFile, func(w io.Writer) error {
		return dataset.WriteCatalog(w, ds.Catalog().Movies())
	}); err != nil {
		return nil, errors.Trace(err)
	}
	if err = writeArtifact(dst, cfg.SimilarityFile, func(w io.Writer) error {
		return dataset.WriteMatrix(w, ds.Similarity())
	}); err != nil {
		return nil, errors.Trace(err)
	}
	published := []string{cfg.CatalogFile, cfg.SimilarityFile}
	if cfg.ScoresFile != "" {
		if err = writeArtifact(dst, cfg.ScoresFile, func(w io.Writer) error {
			return dataset.WriteScores(w, ds.Scores().All())
		}); err != nil {
			return nil, errors.Trace(err)
		}
		published = append(published, cfg.ScoresFile)
	}
	names, err := dst.List()
	if err != nil {
		return nil, errors.Trace(err)
	}
	if !prune {
		return names, nil
	}
	stale, _ := lo.Difference(names, published)
	for _, name := range stale {
		if err = dst.Remove(name); err != nil {
			return nil, errors.Annotatef(err, "failed to remove %s", name)
		}
		log.Logger().Info("remove stale artifact", zap.String("name", name))
	}
	return lo.Filter(names, func(name string, _ int) bool {
		return lo.Contains(published, name)
	}), nil
}

func writeArtifact(store blob.Store, name string, encode func(io.Writer) error) error {
	w, done, err := store.Create(name)
	if err != nil {
		return errors.Annotatef(err, "failed to create %s", name)
	}
	buf := bufio.NewWriter(w)
	if err = encode(buf); err == nil {
		err = buf.Flush()
	}
	if closeErr := w.Close(); err == nil {
		err = closeErr
	}
	<-done
	return errors.Annotatef(err, "failed to write %s", name)
}
