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
	"github.com/juju/errors"
)

// Dataset owns the catalog, the similarity matrix and the score table. It is
// built once and never mutated, so it can be shared by concurrent readers.
type Dataset struct {
	catalog    *Catalog
	similarity *SimilarityMatrix
	scores     *ScoreTable
}

// NewDataset validates the parts and assembles a dataset.
func NewDataset(catalog *Catalog, similarity *SimilarityMatrix, scores *ScoreTable) (*Dataset, error) {
	if catalog == nil || catalog.Len() == 0 {
		return nil, errors.NotValidf("empty catalog")
	}
	if similarity == nil {
		return nil, errors.NotValidf("missing similarity matrix")
	}
	if similarity.Size() != catalog.Len() {
		return nil, errors.NotValidf("similarity matrix of size %d for %d movies", similarity.Size(), catalog.Len())
	}
	if err := similarity.validate(); err != nil {
		return nil, errors.Trace(err)
	}
	if scores == nil {
		scores = NewScoreTable()
	}
	return &Dataset{
		catalog:    catalog,
		similarity: similarity,
		scores:     scores,
	}, nil
}

func (d *Dataset) Catalog() *Catalog {
	return d.catalog
}

func (d *Dataset) Similarity() *SimilarityMatrix {
	return d.similarity
}

func (d *Dataset) Scores() *ScoreTable {
	return d.scores
}

func (d *Dataset) CountMovies() int {
	return d.catalog.Len()
}

func (d *Dataset) CountUsers() int {
	return d.scores.CountUsers()
}
