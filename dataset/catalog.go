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
	"github.com/samber/lo"
)

// Movie is a catalog entry. Its position in the catalog is its dense index.
type Movie struct {
	MovieId int64  `json:"movie_id"`
	Title   string `json:"title"`
}

// Catalog is an ordered list of movies with lookup indices.
type Catalog struct {
	movies     []Movie
	titleIndex map[string]int
	idIndex    map[int64]int
}

// NewCatalog builds a catalog. Movie ids must be unique. If several movies
// share a title, the title resolves to the first of them.
func NewCatalog(movies []Movie) (*Catalog, error) {
	c := &Catalog{
		movies:     movies,
		titleIndex: make(map[string]int, len(movies)),
		idIndex:    make(map[int64]int, len(movies)),
	}
	for i, movie := range movies {
		if _, exist := c.idIndex[movie.MovieId]; exist {
			return nil, errors.NotValidf("duplicate movie id %d", movie.MovieId)
		}
		c.idIndex[movie.MovieId] = i
		if _, exist := c.titleIndex[movie.Title]; !exist {
			c.titleIndex[movie.Title] = i
		}
	}
	return c, nil
}

func (c *Catalog) Len() int {
	return len(c.movies)
}

// Movie returns the movie at index i.
func (c *Catalog) Movie(i int) Movie {
	return c.movies[i]
}

// IndexOfTitle returns the index of the first movie with exactly this title.
func (c *Catalog) IndexOfTitle(title string) (int, bool) {
	i, ok := c.titleIndex[title]
	return i, ok
}

// IndexOfMovie returns the index of the movie with this id.
func (c *Catalog) IndexOfMovie(movieId int64) (int, bool) {
	i, ok := c.idIndex[movieId]
	return i, ok
}

// Titles returns all titles in catalog order, duplicates included.
func (c *Catalog) Titles() []string {
	return lo.Map(c.movies, func(m Movie, _ int) string {
		return m.Title
	})
}

// Movies returns a copy of the catalog entries.
func (c *Catalog) Movies() []Movie {
	movies := make([]Movie, len(c.movies))
	copy(movies, c.movies)
	return movies
}
