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

package data

import (
	"context"
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
)

func TestNoDatabase(t *testing.T) {
	ctx := context.Background()
	var database NoDatabase

	assert.NoError(t, database.Close())
	assert.ErrorIs(t, database.Init(), ErrNoDatabase)
	assert.ErrorIs(t, database.Purge(), ErrNoDatabase)
	assert.ErrorIs(t, database.BatchInsertScores(ctx, nil), ErrNoDatabase)
	scores, errChan := database.GetScoreStream(ctx, 10)
	_, ok := <-scores
	assert.False(t, ok)
	err := <-errChan
	assert.ErrorIs(t, err, ErrNoDatabase)
	assert.True(t, errors.Is(err, errors.NotSupported))
}
