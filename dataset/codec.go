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
	"encoding/binary"
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/gorse-io/hybrid/storage/data"
	"github.com/juju/errors"
)

const matrixChunk = 4096

var (
	catalogHeader = []string{"movie_id", "title"}
	scoresHeader  = []string{"user_id", "movie_id", "score"}
)

func readHeader(reader *csv.Reader, expected []string) error {
	header, err := reader.Read()
	if err == io.EOF {
		return errors.NotValidf("empty csv")
	} else if err != nil {
		return errors.Trace(err)
	}
	if len(header) != len(expected) {
		return errors.NotValidf("csv header %v", header)
	}
	for i := range header {
		if strings.TrimSpace(header[i]) != expected[i] {
			return errors.NotValidf("csv header %v", header)
		}
	}
	return nil
}

// ReadCatalog reads movies from csv with header movie_id,title.
func ReadCatalog(r io.Reader) ([]Movie, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(catalogHeader)
	if err := readHeader(reader, catalogHeader); err != nil {
		return nil, errors.Trace(err)
	}
	var movies []Movie
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, errors.Trace(err)
		}
		movieId, err := strconv.ParseInt(strings.TrimSpace(record[0]), 10, 64)
		if err != nil {
			return nil, errors.Annotatef(err, "invalid movie id in line %d", len(movies)+2)
		}
		movies = append(movies, Movie{MovieId: movieId, Title: record[1]})
	}
	return movies, nil
}

// WriteCatalog writes movies as csv with header movie_id,title.
func WriteCatalog(w io.Writer, movies []Movie) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(catalogHeader); err != nil {
		return errors.Trace(err)
	}
	for _, movie := range movies {
		if err := writer.Write([]string{strconv.FormatInt(movie.MovieId, 10), movie.Title}); err != nil {
			return errors.Trace(err)
		}
	}
	writer.Flush()
	return errors.Trace(writer.Error())
}

// ReadMatrix reads a little-endian int32 size N followed by N*N float32 values.
func ReadMatrix(r io.Reader) (*SimilarityMatrix, error) {
	var n int32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, errors.Annotate(err, "failed to read matrix size")
	}
	if n < 0 {
		return nil, errors.NotValidf("matrix size %d", n)
	}
	// values are read in chunks so that a corrupt size fails on short data
	// instead of allocating the claimed matrix up front
	total := int64(n) * int64(n)
	m := &SimilarityMatrix{n: int(n), data: make([]float32, 0, min(total, matrixChunk))}
	chunk := make([]float32, min(total, matrixChunk))
	for read := int64(0); read < total; {
		k := min(total-read, matrixChunk)
		if err := binary.Read(r, binary.LittleEndian, chunk[:k]); err != nil {
			return nil, errors.NotValidf("%dx%d matrix truncated after %d values", n, n, read)
		}
		m.data = append(m.data, chunk[:k]...)
		read += k
	}
	var trailing [1]byte
	if k, _ := io.ReadFull(r, trailing[:]); k > 0 {
		return nil, errors.NotValidf("trailing bytes after %dx%d matrix", n, n)
	}
	return m, nil
}

// WriteMatrix writes a matrix in the format read by ReadMatrix.
func WriteMatrix(w io.Writer, m *SimilarityMatrix) error {
	if err := binary.Write(w, binary.LittleEndian, int32(m.n)); err != nil {
		return errors.Trace(err)
	}
	for i := 0; i < m.n; i++ {
		if err := binary.Write(w, binary.LittleEndian, m.data[i*m.n:(i+1)*m.n]); err != nil {
			return errors.Trace(err)
		}
	}
	return nil
}

// ReadScores reads scores from csv with header user_id,movie_id,score.
func ReadScores(r io.Reader, handler func(data.Score) error) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(scoresHeader)
	reader.ReuseRecord = true
	if err := readHeader(reader, scoresHeader); err != nil {
		return errors.Trace(err)
	}
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			return nil
		} else if err != nil {
			return errors.Trace(err)
		}
		userId := strings.TrimSpace(record[0])
		if userId == "" {
			return errors.NotValidf("empty user id in line %d", line)
		}
		movieId, err := strconv.ParseInt(strings.TrimSpace(record[1]), 10, 64)
		if err != nil {
			return errors.Annotatef(err, "invalid movie id in line %d", line)
		}
		score, err := strconv.ParseFloat(strings.TrimSpace(record[2]), 32)
		if err != nil {
			return errors.Annotatef(err, "invalid score in line %d", line)
		}
		parsed := data.Score{UserId: userId, MovieId: movieId, Score: float32(score)}
		if err = validateScore(parsed); err != nil {
			return errors.Annotatef(err, "line %d", line)
		}
		if err = handler(parsed); err != nil {
			return errors.Trace(err)
		}
	}
}

// WriteScores writes scores as csv with header user_id,movie_id,score.
func WriteScores(w io.Writer, scores []data.Score) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(scoresHeader); err != nil {
		return errors.Trace(err)
	}
	for _, score := range scores {
		if err := writer.Write([]string{
			score.UserId,
			strconv.FormatInt(score.MovieId, 10),
			strconv.FormatFloat(float64(score.Score), 'f', -1, 32),
		}); err != nil {
			return errors.Trace(err)
		}
	}
	writer.Flush()
	return errors.Trace(writer.Error())
}
