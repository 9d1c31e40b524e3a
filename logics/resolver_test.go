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

package logics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTitleResolver(t *testing.T) {
	resolver := NewTitleResolver([]string{
		"Avatar",
		"The Avengers",
		"Avengers: Age of Ultron",
		"Spectre",
		"The Dark Knight Rises",
	}, 0.6)

	for text, expected := range map[string]string{
		"Avatar":           "Avatar",
		"avatar":           "Avatar",
		"the avengers":     "The Avengers",
		"Spectr":           "Spectre",
		"The Dark Knight":  "The Dark Knight Rises",
		"Avengers: Ultron": "Avengers: Age of Ultron",
	} {
		title, ok := resolver.Resolve(text)
		assert.True(t, ok, text)
		assert.Equal(t, expected, title, text)
	}

	_, ok := resolver.Resolve("xyz")
	assert.False(t, ok)
	_, ok = resolver.Resolve("")
	assert.False(t, ok)
}

func TestTitleResolverCutoff(t *testing.T) {
	resolver := NewTitleResolver([]string{"abcd"}, 0.6)
	title, ok := resolver.Resolve("ab")
	assert.True(t, ok)
	assert.Equal(t, "abcd", title)
	_, ok = resolver.Resolve("a")
	assert.False(t, ok)

	strict := NewTitleResolver([]string{"abcd"}, 1)
	_, ok = strict.Resolve("ab")
	assert.False(t, ok)
	title, ok = strict.Resolve("abcd")
	assert.True(t, ok)
	assert.Equal(t, "abcd", title)
}

func TestTitleResolverTies(t *testing.T) {
	resolver := NewTitleResolver([]string{"ab", "ac", "aa"}, 0.6)
	title, ok := resolver.Resolve("a")
	assert.True(t, ok)
	assert.Equal(t, "ac", title)
}

func TestTitleResolverUnicode(t *testing.T) {
	resolver := NewTitleResolver([]string{"Amélie", "Le Fabuleux Destin"}, 0.6)
	title, ok := resolver.Resolve("Amelie")
	assert.True(t, ok)
	assert.Equal(t, "Amélie", title)
}
