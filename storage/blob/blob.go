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

package blob

import (
	"io"
	"strings"

	"github.com/gorse-io/hybrid/config"
	"github.com/gorse-io/hybrid/storage"
	"github.com/juju/errors"
)

// Store holds the precomputed artifacts: catalog, similarity matrix and
// collaborative scores.
type Store interface {
	// Open a file for reading.
	Open(name string) (io.ReadCloser, error)
	// Create a file for writing. The returned channel is closed once the content
	// has been persisted.
	Create(name string) (io.WriteCloser, chan struct{}, error)
	List() ([]string, error)
	Remove(name string) error
}

// Open creates an artifact store from a local directory or a bucket URL.
func Open(path string, cfg config.BlobConfig) (Store, error) {
	switch {
	case strings.HasPrefix(path, storage.S3Prefix):
		bucket, prefix, err := storage.SplitBucketURL(path, storage.S3Prefix)
		if err != nil {
			return nil, errors.Trace(err)
		}
		return NewS3(cfg.S3, bucket, prefix)
	case strings.HasPrefix(path, storage.GCSPrefix):
		bucket, prefix, err := storage.SplitBucketURL(path, storage.GCSPrefix)
		if err != nil {
			return nil, errors.Trace(err)
		}
		return NewGCS(cfg.GCS, bucket, prefix)
	case strings.HasPrefix(path, storage.AzurePrefix):
		container, prefix, err := storage.SplitBucketURL(path, storage.AzurePrefix)
		if err != nil {
			return nil, errors.Trace(err)
		}
		return NewAzureBlob(cfg.Azure, container, prefix)
	case strings.Contains(path, "://"):
		return nil, errors.NotSupportedf("artifact store %s", path)
	default:
		return NewPOSIX(path), nil
	}
}
