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
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// TitleResolver finds the catalog title closest to free text. Closeness is the
// ratio of matching characters reported by a sequence matcher.
type TitleResolver struct {
	titles []string
	chars  [][]string
	cutoff float64
}

func NewTitleResolver(titles []string, cutoff float64) *TitleResolver {
	r := &TitleResolver{
		titles: titles,
		chars:  make([][]string, len(titles)),
		cutoff: cutoff,
	}
	for i, title := range titles {
		r.chars[i] = splitChars(title)
	}
	return r
}

// Resolve returns the title with the highest ratio not below the cutoff. Among
// titles with equal ratios, the lexicographically greatest one wins.
func (r *TitleResolver) Resolve(text string) (string, bool) {
	if text == "" {
		return "", false
	}
	var (
		best      string
		bestRatio float64
		found     bool
	)
	// the query is the second sequence so its index is built only once
	matcher := difflib.NewMatcher(nil, splitChars(text))
	for i, title := range r.titles {
		matcher.SetSeq1(r.chars[i])
		if matcher.RealQuickRatio() < r.cutoff || matcher.QuickRatio() < r.cutoff {
			continue
		}
		ratio := matcher.Ratio()
		if ratio < r.cutoff {
			continue
		}
		if !found || ratio > bestRatio || (ratio == bestRatio && title > best) {
			best, bestRatio, found = title, ratio, true
		}
	}
	return best, found
}

func splitChars(s string) []string {
	return strings.Split(s, "")
}
