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

	"github.com/juju/errors"
)

var ErrNoDatabase = errors.NotSupportedf("score database")

// NoDatabase is used when scores are loaded from an artifact instead of a database.
type NoDatabase struct{}

func (NoDatabase) Init() error {
	return ErrNoDatabase
}

func (NoDatabase) Close() error {
	return nil
}

func (NoDatabase) Purge() error {
	return ErrNoDatabase
}

func (NoDatabase) BatchInsertScores(_ context.Context, _ []Score) error {
	return ErrNoDatabase
}

func (NoDatabase) GetScoreStream(_ context.Context, _ int) (chan []Score, chan error) {
	scoreChan := make(chan []Score)
	errChan := make(chan error, 1)
	close(scoreChan)
	errChan <- ErrNoDatabase
	close(errChan)
	return scoreChan, errChan
}
