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
	"github.com/chewxy/math32"
	"github.com/juju/errors"
)

// SimilarityMatrix is a square matrix of content similarities stored row-major.
// Row and column order follow the catalog.
type SimilarityMatrix struct {
	n    int
	data []float32
}

// NewSimilarityMatrix copies rows into a matrix. Rows must form a square.
func NewSimilarityMatrix(rows [][]float32) (*SimilarityMatrix, error) {
	m := &SimilarityMatrix{n: len(rows), data: make([]float32, len(rows)*len(rows))}
	for i, row := range rows {
		if len(row) != m.n {
			return nil, errors.NotValidf("similarity matrix row %d has %d columns, expect %d", i, len(row), m.n)
		}
		copy(m.data[i*m.n:], row)
	}
	return m, nil
}

// Size returns the number of rows (and columns).
func (m *SimilarityMatrix) Size() int {
	return m.n
}

// At returns sim[i][j].
func (m *SimilarityMatrix) At(i, j int) float32 {
	return m.data[i*m.n+j]
}

// Row returns a copy of row i.
func (m *SimilarityMatrix) Row(i int) []float32 {
	row := make([]float32, m.n)
	copy(row, m.data[i*m.n:(i+1)*m.n])
	return row
}

// Rows returns a copy of the matrix as rows.
func (m *SimilarityMatrix) Rows() [][]float32 {
	rows := make([][]float32, m.n)
	for i := range rows {
		rows[i] = m.Row(i)
	}
	return rows
}

func (m *SimilarityMatrix) validate() error {
	for k, v := range m.data {
		if math32.IsNaN(v) || math32.IsInf(v, 0) {
			return errors.NotValidf("similarity %v at (%d, %d)", v, k/m.n, k%m.n)
		}
	}
	return nil
}
