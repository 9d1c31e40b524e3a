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

package storage

import (
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
)

func TestAppendURLParams(t *testing.T) {
	rawURL, err := AppendURLParams("sqlite:///tmp/scores.db", []lo.Tuple2[string, string]{
		{A: "_pragma", B: "busy_timeout(10000)"},
	})
	assert.NoError(t, err)
	assert.Equal(t, "sqlite:///tmp/scores.db?_pragma=busy_timeout%2810000%29", rawURL)
}

func TestAppendMySQLParams(t *testing.T) {
	dsn, err := AppendMySQLParams("gorse:gorse_pass@tcp(localhost:3306)/gorse?foo=bar", map[string]string{
		"foo":      "baz",
		"sql_mode": "'STRICT_TRANS_TABLES'",
	})
	assert.NoError(t, err)
	assert.Contains(t, dsn, "foo=bar")
	assert.NotContains(t, dsn, "foo=baz")
	assert.Contains(t, dsn, "sql_mode=")
}

func TestSplitBucketURL(t *testing.T) {
	bucket, path, err := SplitBucketURL("s3://movies/artifacts/v1/", S3Prefix)
	assert.NoError(t, err)
	assert.Equal(t, "movies", bucket)
	assert.Equal(t, "artifacts/v1", path)

	bucket, path, err = SplitBucketURL("gcs://movies", GCSPrefix)
	assert.NoError(t, err)
	assert.Equal(t, "movies", bucket)
	assert.Equal(t, "", path)

	_, _, err = SplitBucketURL("gcs:///artifacts", GCSPrefix)
	assert.Error(t, err)
	_, _, err = SplitBucketURL("/var/lib/hybrid", S3Prefix)
	assert.Error(t, err)
}

func TestTablePrefix(t *testing.T) {
	assert.Equal(t, "hybrid_scores", TablePrefix("hybrid_").ScoresTable())
	assert.Equal(t, "scores", TablePrefix("").ScoresTable())
}
