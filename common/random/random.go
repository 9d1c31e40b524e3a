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
	"math/rand"

	mapset "github.com/deckarep/golang-set/v2"
)

// Generator is a seeded random generator. It is not safe for concurrent use.
type Generator struct {
	*rand.Rand
}

func New(seed int64) Generator {
	return Generator{rand.New(rand.NewSource(seed))}
}

// Sample returns min(n, high-low) distinct values in [low, high) in the order
// they were drawn.
func (g Generator) Sample(low, high, n int) []int {
	size := high - low
	if n >= size {
		sampled := make([]int, 0, max(size, 0))
		for i := low; i < high; i++ {
			sampled = append(sampled, i)
		}
		g.Shuffle(len(sampled), func(i, j int) {
			sampled[i], sampled[j] = sampled[j], sampled[i]
		})
		return sampled
	}
	seen := mapset.NewThreadUnsafeSetWithSize[int](n)
	sampled := make([]int, 0, n)
	for len(sampled) < n {
		v := g.Intn(size) + low
		if seen.Add(v) {
			sampled = append(sampled, v)
		}
	}
	return sampled
}

// Choice returns a random element of values.
func Choice[T any](g Generator, values []T) T {
	return values[g.Intn(len(values))]
}
