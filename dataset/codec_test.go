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
	"encoding/binary"
	"strings"
	"testing"

	"github.com/gorse-io/hybrid/storage/data"
	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
)

func TestCatalogCodec(t *testing.T) {
	movies := []Movie{
		{MovieId: 19995, Title: "Avatar"},
		{MovieId: 285, Title: "Pirates of the Caribbean: At World's End"},
		{MovieId: 1, Title: "Crouching Tiger, Hidden Dragon"},
		{MovieId: 2, Title: `The "Quoted" Movie`},
	}
	buf := bytes.NewBuffer(nil)
	assert.NoError(t, WriteCatalog(buf, movies))
	assert.True(t, strings.HasPrefix(buf.String(), "movie_id,title\n"))
	read, err := ReadCatalog(buf)
	assert.NoError(t, err)
	assert.Equal(t, movies, read)
}

func TestReadCatalogError(t *testing.T) {
	_, err := ReadCatalog(strings.NewReader(""))
	assert.True(t, errors.Is(err, errors.NotValid))
	_, err = ReadCatalog(strings.NewReader("id,name\n1,A\n"))
	assert.True(t, errors.Is(err, errors.NotValid))
	_, err = ReadCatalog(strings.NewReader("movie_id,title\nx,A\n"))
	assert.Error(t, err)
	_, err = ReadCatalog(strings.NewReader("movie_id,title\n1,A,extra\n"))
	assert.Error(t, err)

	movies, err := ReadCatalog(strings.NewReader("movie_id,title\n"))
	assert.NoError(t, err)
	assert.Empty(t, movies)
}

func TestMatrixCodec(t *testing.T) {
	m, err := NewSimilarityMatrix([][]float32{
		{1, 0.1, 0.2},
		{0.1, 1, 0.3},
		{0.2, 0.3, 1},
	})
	assert.NoError(t, err)
	buf := bytes.NewBuffer(nil)
	assert.NoError(t, WriteMatrix(buf, m))
	assert.Equal(t, 4+9*4, buf.Len())
	read, err := ReadMatrix(bytes.NewReader(buf.Bytes()))
	assert.NoError(t, err)
	assert.Equal(t, m.Rows(), read.Rows())

	// truncated
	_, err = ReadMatrix(bytes.NewReader(buf.Bytes()[:buf.Len()-1]))
	assert.Error(t, err)
	// trailing bytes
	_, err = ReadMatrix(bytes.NewReader(append(buf.Bytes(), 0)))
	assert.True(t, errors.Is(err, errors.NotValid))
	// negative size
	neg := bytes.NewBuffer(nil)
	assert.NoError(t, binary.Write(neg, binary.LittleEndian, int32(-1)))
	_, err = ReadMatrix(neg)
	assert.True(t, errors.Is(err, errors.NotValid))
	// corrupt size is not trusted for allocation
	huge := bytes.NewBuffer(nil)
	assert.NoError(t, binary.Write(huge, binary.LittleEndian, int32(0x7fffffff)))
	assert.NoError(t, binary.Write(huge, binary.LittleEndian, []float32{1, 2, 3}))
	_, err = ReadMatrix(huge)
	assert.True(t, errors.Is(err, errors.NotValid))
	// empty
	_, err = ReadMatrix(bytes.NewReader(nil))
	assert.Error(t, err)
}

func TestScoresCodec(t *testing.T) {
	scores := []data.Score{
		{UserId: "u1", MovieId: 1, Score: 4.5},
		{UserId: "u2", MovieId: 2, Score: 3},
	}
	buf := bytes.NewBuffer(nil)
	assert.NoError(t, WriteScores(buf, scores))
	assert.Equal(t, "user_id,movie_id,score\nu1,1,4.5\nu2,2,3\n", buf.String())
	var read []data.Score
	assert.NoError(t, ReadScores(buf, func(score data.Score) error {
		read = append(read, score)
		return nil
	}))
	assert.Equal(t, scores, read)
}

func TestReadScoresError(t *testing.T) {
	ignore := func(data.Score) error { return nil }
	assert.Error(t, ReadScores(strings.NewReader("user,movie,score\n"), ignore))
	assert.Error(t, ReadScores(strings.NewReader("user_id,movie_id,score\nu1,x,1\n"), ignore))
	assert.Error(t, ReadScores(strings.NewReader("user_id,movie_id,score\nu1,1,x\n"), ignore))
	assert.True(t, errors.Is(ReadScores(strings.NewReader("user_id,movie_id,score\n ,1,1\n"), ignore), errors.NotValid))
	// non-finite scores
	for _, value := range []string{"NaN", "+Inf", "-Inf"} {
		err := ReadScores(strings.NewReader("user_id,movie_id,score\nu1,1,"+value+"\n"), ignore)
		assert.True(t, errors.Is(err, errors.NotValid), value)
	}
	// handler errors abort reading
	err := ReadScores(strings.NewReader("user_id,movie_id,score\nu1,1,1\nu2,1,1\n"), func(data.Score) error {
		return errors.New("stop")
	})
	assert.ErrorContains(t, err, "stop")
}
