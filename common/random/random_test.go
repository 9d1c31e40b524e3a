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

package random

import (
	"testing"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/stretchr/testify/assert"
)

func TestSample(t *testing.T) {
	g := New(0)
	sampled := g.Sample(10, 100, 20)
	assert.Len(t, sampled, 20)
	assert.Equal(t, 20, mapset.NewSet(sampled...).Cardinality())
	for _, v := range sampled {
		assert.GreaterOrEqual(t, v, 10)
		assert.Less(t, v, 100)
	}

	// sample all
	sampled = g.Sample(0, 5, 10)
	assert.ElementsMatch(t, []int{0, 1, 2, 3, 4}, sampled)

	// empty range
	assert.Empty(t, g.Sample(3, 3, 1))
}

func TestSampleDeterministic(t *testing.T) {
	assert.Equal(t, New(42).Sample(0, 1000, 10), New(42).Sample(0, 1000, 10))
}

func TestChoice(t *testing.T) {
	g := New(0)
	values := []string{"a", "b", "c"}
	for i := 0; i < 10; i++ {
		assert.Contains(t, values, Choice(g, values))
	}
}
