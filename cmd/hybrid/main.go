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

	"github.com/gorse-io/hybrid/cmd/version"
	"github.com/gorse-io/hybrid/common/log"
	"github.com/gorse-io/hybrid/config"
	"github.com/gorse-io/hybrid/dataset"
	"github.com/gorse-io/hybrid/storage/blob"
	"github.com/gorse-io/hybrid/storage/data"
	"github.com/juju/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCommand = &cobra.Command{
	Use:   "hybrid",
	Short: "Hybrid movie recommender blending content similarity with collaborative scores.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// setup logger
		debug, _ := cmd.Flags().GetBool("debug")
		log.SetLogger(cmd.Flags(), debug)
	},
	Run: func(cmd *cobra.Command, args []string) {
		// Show version
		if showVersion, _ := cmd.Flags().GetBool("version"); showVersion {
			fmt.Println(version.BuildInfo())
			return
		}
		_ = cmd.Help()
	},
}

func init() {
	log.AddFlags(rootCommand.PersistentFlags())
	rootCommand.PersistentFlags().Bool("debug", false, "use debug log mode")
	rootCommand.PersistentFlags().StringP("config", "c", "", "configuration file path")
	rootCommand.Flags().BoolP("version", "v", false, "hybrid version")
}

func main() {
	if err := rootCommand.Execute(); err != nil {
		log.Logger().Fatal("failed to execute", zap.Error(err))
	}
}

// loadConfig loads the configuration given by --config. Defaults and
// environment variables apply if no file is given.
func loadConfig(cmd *cobra.Command) *config.Config {
	configPath, _ := cmd.Flags().GetString("config")
	log.Logger().Info("load config", zap.String("config", configPath))
	conf, err := config.LoadConfig(configPath)
	if err != nil {
		log.Logger().Fatal("failed to load config", zap.Error(err))
	}
	return conf
}

// openDatabase opens the score database, or returns NoDatabase if scores are
// read from the artifact store.
func openDatabase(conf *config.Config) (data.Database, error) {
	if conf.Database.ScoreStore == "" {
		return data.NoDatabase{}, nil
	}
	log.Logger().Info("connect score database", zap.String("score_store", log.RedactDBURL(conf.Database.ScoreStore)))
	database, err := data.Open(conf.Database.ScoreStore, conf.Database.TablePrefix)
	if err != nil {
		return nil, errors.Annotate(err, "failed to open score database")
	}
	return database, nil
}

// loadDataset opens the configured stores and loads the dataset from them.
func loadDataset(ctx context.Context, conf *config.Config) (*dataset.Dataset, error) {
	store, err := blob.Open(conf.Dataset.Store, conf.Blob)
	if err != nil {
		return nil, errors.Annotate(err, "failed to open artifact store")
	}
	database, err := openDatabase(conf)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer func() {
		if err := database.Close(); err != nil {
			log.Logger().Warn("failed to close score database", zap.Error(err))
		}
	}()
	return dataset.Load(ctx, store, database, conf.Dataset)
}

// mustLoadDataset loads the dataset and exits on failure.
func mustLoadDataset(ctx context.Context, conf *config.Config) *dataset.Dataset {
	ds, err := loadDataset(ctx, conf)
	if err != nil {
		log.Logger().Fatal("failed to load dataset", zap.Error(err))
	}
	return ds
}

// validateAlpha rejects weights outside [0, 1].
func validateAlpha(alpha float32) error {
	if !(alpha >= 0 && alpha <= 1) {
		return errors.BadRequestf("alpha %v out of range [0, 1]", alpha)
	}
	return nil
}

// alphaFlag returns --alpha if set, otherwise the configured default.
func alphaFlag(cmd *cobra.Command, conf *config.Config) float32 {
	alpha := conf.Recommend.Alpha
	if cmd.Flags().Changed("alpha") {
		alpha, _ = cmd.Flags().GetFloat32("alpha")
	}
	if err := validateAlpha(alpha); err != nil {
		log.Logger().Fatal("invalid alpha", zap.Error(err))
	}
	return alpha
}
