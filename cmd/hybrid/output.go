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
	"fmt"
	"io"
	"strconv"

	"github.com/gorse-io/hybrid/logics"
	"github.com/gorse-io/hybrid/metadata"
	"github.com/juju/errors"
	"github.com/olekukonko/tablewriter"
)

func writeRecommendations(w io.Writer, recommendations []logics.Recommendation) error {
	table := tablewriter.NewWriter(w)
	table.Header("#", "Title", "Movie ID", "Score")
	for i, rec := range recommendations {
		if err := table.Append([]string{
			strconv.Itoa(i + 1),
			rec.Title,
			strconv.FormatInt(rec.MovieId, 10),
			fmt.Sprintf("%.4f", rec.Score),
		}); err != nil {
			return errors.Trace(err)
		}
	}
	return errors.Trace(table.Render())
}

func writeEnrichedMovies(w io.Writer, movies []metadata.EnrichedMovie) error {
	table := tablewriter.NewWriter(w)
	table.Header("#", "Title", "Score", "Rating", "Genres", "Release Date", "Poster")
	for i, movie := range movies {
		if err := table.Append([]string{
			strconv.Itoa(i + 1),
			movie.Title,
			fmt.Sprintf("%.4f", movie.Score),
			movie.Rating,
			movie.Genres,
			movie.ReleaseDate,
			movie.Poster,
		}); err != nil {
			return errors.Trace(err)
		}
	}
	return errors.Trace(table.Render())
}

func writeEvaluations(w io.Writer, evaluations []logics.Evaluation) error {
	table := tablewriter.NewWriter(w)
	if len(evaluations) > 0 {
		k := evaluations[0].K
		table.Header("Alpha", "Queries", fmt.Sprintf("Precision@%d", k), "Std", "Coverage", "Diversity")
	}
	for _, evaluation := range evaluations {
		if err := table.Append([]string{
			fmt.Sprintf("%.2f", evaluation.Alpha),
			strconv.Itoa(evaluation.NumQueries),
			fmt.Sprintf("%.4f", evaluation.Precision),
			fmt.Sprintf("%.4f", evaluation.PrecisionStd),
			fmt.Sprintf("%.4f", evaluation.Coverage),
			fmt.Sprintf("%.4f", evaluation.Diversity),
		}); err != nil {
			return errors.Trace(err)
		}
	}
	return errors.Trace(table.Render())
}

// writeSimilarity renders a similarity block as a table with titles on both axes.
func writeSimilarity(w io.Writer, titles []string, block [][]float32) error {
	table := tablewriter.NewWriter(w)
	header := []any{""}
	for _, title := range titles {
		header = append(header, title)
	}
	table.Header(header...)
	for i, row := range block {
		cells := []string{titles[i]}
		for _, value := range row {
			cells = append(cells, fmt.Sprintf("%.2f", value))
		}
		if err := table.Append(cells); err != nil {
			return errors.Trace(err)
		}
	}
	return errors.Trace(table.Render())
}

func writeArtifactList(w io.Writer, names []string) error {
	table := tablewriter.NewWriter(w)
	table.Header("Artifact")
	for _, name := range names {
		if err := table.Append([]string{name}); err != nil {
			return errors.Trace(err)
		}
	}
	return errors.Trace(table.Render())
}
