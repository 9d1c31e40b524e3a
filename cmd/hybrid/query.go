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
	"os"

	"github.com/gorse-io/hybrid/common/log"
	"github.com/gorse-io/hybrid/logics"
	"github.com/gorse-io/hybrid/metadata"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var recommendCommand = &cobra.Command{
	Use:   "recommend <title>",
	Short: "Recommend movies similar to a title.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		conf := loadConfig(cmd)
		if cmd.Flags().Changed("top-n") {
			conf.Recommend.TopN, _ = cmd.Flags().GetInt("top-n")
			if conf.Recommend.TopN <= 0 {
				log.Logger().Fatal("number of recommendations must be positive", zap.Int("top_n", conf.Recommend.TopN))
			}
		}
		alpha := alphaFlag(cmd, conf)
		userId, _ := cmd.Flags().GetString("user-id")
		ds := mustLoadDataset(context.Background(), conf)

		title := args[0]
		if fuzzy, _ := cmd.Flags().GetBool("fuzzy"); fuzzy {
			resolver := logics.NewTitleResolver(ds.Catalog().Titles(), conf.Resolver.Cutoff)
			resolved, ok := resolver.Resolve(title)
			if !ok {
				log.Logger().Fatal("no close match, try a different title", zap.String("query", title))
			}
			title = resolved
			fmt.Printf("Recommendations for %q\n", title)
		}
		ranker := logics.NewHybridRanker(ds, conf.Recommend)
		recommendations, err := ranker.Recommend(title, userId, alpha)
		if err != nil {
			log.Logger().Fatal("failed to recommend", zap.Error(err))
		}

		if enrich, _ := cmd.Flags().GetBool("enrich"); !enrich {
			if err = writeRecommendations(os.Stdout, recommendations); err != nil {
				log.Logger().Fatal("failed to write recommendations", zap.Error(err))
			}
			return
		}
		client := metadata.NewClient(conf.Metadata)
		go client.Start()
		defer client.Stop()
		enricher := metadata.NewEnricher(client, conf.Metadata.Jobs, conf.Metadata.RequirePoster)
		movies := enricher.Enrich(context.Background(), recommendations)
		if len(movies) == 0 {
			fmt.Println("No recommendations with metadata found. Try a different title.")
			return
		}
		if err = writeEnrichedMovies(os.Stdout, movies); err != nil {
			log.Logger().Fatal("failed to write recommendations", zap.Error(err))
		}
	},
}

var resolveCommand = &cobra.Command{
	Use:   "resolve <text>",
	Short: "Find the catalog title closest to free text.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		conf := loadConfig(cmd)
		ds := mustLoadDataset(context.Background(), conf)
		resolver := logics.NewTitleResolver(ds.Catalog().Titles(), conf.Resolver.Cutoff)
		title, ok := resolver.Resolve(args[0])
		if !ok {
			fmt.Println("No close match found. Try a different title.")
			os.Exit(1)
		}
		fmt.Println(title)
	},
}

var evaluateCommand = &cobra.Command{
	Use:   "evaluate",
	Short: "Measure precision, coverage and diversity over sampled queries.",
	Run: func(cmd *cobra.Command, args []string) {
		conf := loadConfig(cmd)
		if cmd.Flags().Changed("num-queries") {
			conf.Evaluate.NumQueries, _ = cmd.Flags().GetInt("num-queries")
		}
		if cmd.Flags().Changed("seed") {
			conf.Evaluate.Seed, _ = cmd.Flags().GetInt64("seed")
		}
		alphas := []float32{conf.Recommend.Alpha}
		if cmd.Flags().Changed("alpha") {
			alphas, _ = cmd.Flags().GetFloat32Slice("alpha")
		}
		for _, alpha := range alphas {
			if err := validateAlpha(alpha); err != nil {
				log.Logger().Fatal("invalid alpha", zap.Error(err))
			}
		}
		ds := mustLoadDataset(context.Background(), conf)

		evaluator := logics.NewEvaluator(logics.NewHybridRanker(ds, conf.Recommend), ds, conf.Evaluate)
		evaluations := make([]logics.Evaluation, 0, len(alphas))
		for _, alpha := range alphas {
			evaluation, err := evaluator.Evaluate(context.Background(), alpha)
			if err != nil {
				log.Logger().Fatal("failed to evaluate", zap.Error(err))
			}
			evaluations = append(evaluations, evaluation)
		}
		if err := writeEvaluations(os.Stdout, evaluations); err != nil {
			log.Logger().Fatal("failed to write evaluations", zap.Error(err))
		}
	},
}

var tuneCommand = &cobra.Command{
	Use:   "tune",
	Short: "Search the alpha maximizing precision over sampled queries.",
	Run: func(cmd *cobra.Command, args []string) {
		conf := loadConfig(cmd)
		if cmd.Flags().Changed("num-queries") {
			conf.Evaluate.NumQueries, _ = cmd.Flags().GetInt("num-queries")
		}
		if cmd.Flags().Changed("seed") {
			conf.Evaluate.Seed, _ = cmd.Flags().GetInt64("seed")
		}
		numTrials, _ := cmd.Flags().GetInt("trials")
		ds := mustLoadDataset(context.Background(), conf)

		evaluator := logics.NewEvaluator(logics.NewHybridRanker(ds, conf.Recommend), ds, conf.Evaluate)
		result, err := evaluator.Tune(context.Background(), numTrials)
		if err != nil {
			log.Logger().Fatal("failed to tune alpha", zap.Error(err))
		}
		if err = writeEvaluations(os.Stdout, result.Trials); err != nil {
			log.Logger().Fatal("failed to write evaluations", zap.Error(err))
		}
		fmt.Printf("Best alpha: %.4f (Precision@%d = %.4f)\n", result.Best.Alpha, result.Best.K, result.Best.Precision)
	},
}

var sampleCommand = &cobra.Command{
	Use:   "sample",
	Short: "Print the similarity between randomly sampled movies.",
	Run: func(cmd *cobra.Command, args []string) {
		conf := loadConfig(cmd)
		n, _ := cmd.Flags().GetInt("n")
		if n <= 0 {
			log.Logger().Fatal("number of sampled movies must be positive", zap.Int("n", n))
		}
		seed := conf.Evaluate.Seed
		if cmd.Flags().Changed("seed") {
			seed, _ = cmd.Flags().GetInt64("seed")
		}
		ds := mustLoadDataset(context.Background(), conf)
		titles, block := logics.SampleSimilarity(ds, n, seed)
		if err := writeSimilarity(os.Stdout, titles, block); err != nil {
			log.Logger().Fatal("failed to write similarity", zap.Error(err))
		}
	},
}

func init() {
	rootCommand.AddCommand(recommendCommand, resolveCommand, evaluateCommand, tuneCommand, sampleCommand)

	recommendCommand.Flags().StringP("user-id", "u", "", "identifier of the user")
	recommendCommand.Flags().Float32P("alpha", "a", 0.5, "weight of content similarity in [0, 1]")
	recommendCommand.Flags().IntP("top-n", "n", 10, "number of recommendations")
	recommendCommand.Flags().Bool("fuzzy", false, "resolve the title by fuzzy matching")
	recommendCommand.Flags().Bool("enrich", false, "attach movie metadata")

	evaluateCommand.Flags().Float32Slice("alpha", nil, "weights of content similarity to evaluate")
	evaluateCommand.Flags().Int("num-queries", 100, "number of sampled queries")
	evaluateCommand.Flags().Int64("seed", 0, "random seed")

	tuneCommand.Flags().Int("trials", 20, "number of evaluated alphas")
	tuneCommand.Flags().Int("num-queries", 100, "number of sampled queries")
	tuneCommand.Flags().Int64("seed", 0, "random seed")

	sampleCommand.Flags().Int("n", 5, "number of sampled movies")
	sampleCommand.Flags().Int64("seed", 0, "random seed")
}
