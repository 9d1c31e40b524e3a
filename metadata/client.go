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

package metadata

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/cenkalti/backoff/v5"
	"github.com/go-resty/resty/v2"
	"github.com/gorse-io/hybrid/common/log"
	"github.com/gorse-io/hybrid/config"
	"github.com/jellydator/ttlcache/v3"
	"github.com/juju/errors"
	"github.com/juju/ratelimit"
	"github.com/samber/lo"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

const (
	NoPoster       = "No Poster"
	NotAvailable   = "N/A"
	NoMetadata     = "Metadata not available"
	NoOverview     = "No overview available."
	breakerName    = "metadata"
	breakerTimeout = 30 * time.Second
)

// errCanceled marks lookups abandoned by the caller. They say nothing about
// the health of the upstream.
var errCanceled = errors.New("metadata lookup canceled by caller")

// Details is the metadata shown next to a recommended movie.
type Details struct {
	Poster      string `json:"poster"`
	Rating      string `json:"rating"`
	Genres      string `json:"genres"`
	Overview    string `json:"overview"`
	ReleaseDate string `json:"release_date"`
}

// Placeholder is returned whenever metadata cannot be fetched.
func Placeholder() Details {
	return Details{
		Poster:      NoPoster,
		Rating:      NotAvailable,
		Genres:      "",
		Overview:    NoMetadata,
		ReleaseDate: NotAvailable,
	}
}

func (d Details) HasPoster() bool {
	return d.Poster != NoPoster
}

// Fetcher looks up metadata of a movie. It never fails: errors degrade to
// the placeholder.
type Fetcher interface {
	Fetch(ctx context.Context, movieId int64) Details
}

type genre struct {
	Name string `json:"name"`
}

type movieResponse struct {
	PosterPath  *string  `json:"poster_path"`
	VoteAverage *float64 `json:"vote_average"`
	Genres      []genre  `json:"genres"`
	Overview    *string  `json:"overview"`
	ReleaseDate *string  `json:"release_date"`
}

// Client fetches movie metadata from a TMDB compatible API. Successful lookups
// are cached. Requests are throttled, retried with exponential backoff and
// guarded by a circuit breaker.
type Client struct {
	cfg     config.MetadataConfig
	client  *resty.Client
	cache   *ttlcache.Cache[int64, Details]
	bucket  *ratelimit.Bucket
	breaker *gobreaker.CircuitBreaker[Details]

	// newBackOff creates the retry policy of a single lookup
	newBackOff func() backoff.BackOff
}

func NewClient(cfg config.MetadataConfig) *Client {
	c := &Client{
		cfg: cfg,
		client: resty.New().
			SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
			SetTimeout(cfg.Timeout).
			SetQueryParam("api_key", cfg.APIKey).
			SetHeader("Accept", "application/json"),
		newBackOff: func() backoff.BackOff {
			return backoff.NewExponentialBackOff()
		},
	}
	options := []ttlcache.Option[int64, Details]{
		ttlcache.WithDisableTouchOnHit[int64, Details](),
	}
	if cfg.CacheTTL > 0 {
		options = append(options, ttlcache.WithTTL[int64, Details](cfg.CacheTTL))
	}
	if cfg.CacheSize > 0 {
		options = append(options, ttlcache.WithCapacity[int64, Details](cfg.CacheSize))
	}
	c.cache = ttlcache.New(options...)
	if cfg.RateLimit > 0 {
		c.bucket = ratelimit.NewBucketWithRate(cfg.RateLimit, max(int64(cfg.RateLimit), 1))
	}
	c.breaker = gobreaker.NewCircuitBreaker[Details](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Timeout:     breakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			// unknown movies and abandoned lookups are not upstream failures
			return err == nil || errors.Is(err, errors.NotFound) || errors.Is(err, errCanceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Logger().Info("circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
			BreakerState.Set(stateToFloat(to))
		},
	})
	return c
}

// Start removes expired cache entries until Stop is called.
func (c *Client) Start() {
	c.cache.Start()
}

func (c *Client) Stop() {
	c.cache.Stop()
}

// Fetch returns metadata of a movie, or the placeholder on any failure.
func (c *Client) Fetch(ctx context.Context, movieId int64) Details {
	if item := c.cache.Get(movieId); item != nil {
		FetchTotal.WithLabelValues(resultHit).Inc()
		return item.Value()
	}
	if err := ctx.Err(); err != nil {
		FetchTotal.WithLabelValues(resultFailure).Inc()
		log.Logger().Warn("failed to fetch metadata", zap.Int64("movie_id", movieId), zap.Error(err))
		return Placeholder()
	}
	details, err := c.breaker.Execute(func() (Details, error) {
		details, err := backoff.Retry(ctx, func() (Details, error) {
			return c.request(ctx, movieId)
		}, backoff.WithBackOff(c.newBackOff()), backoff.WithMaxTries(c.cfg.MaxRetries+1))
		if err != nil && ctx.Err() != nil {
			return details, errCanceled
		}
		return details, err
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			FetchTotal.WithLabelValues(resultReject).Inc()
		} else {
			FetchTotal.WithLabelValues(resultFailure).Inc()
		}
		log.Logger().Warn("failed to fetch metadata", zap.Int64("movie_id", movieId), zap.Error(err))
		return Placeholder()
	}
	FetchTotal.WithLabelValues(resultSuccess).Inc()
	c.cache.Set(movieId, details, ttlcache.DefaultTTL)
	return details
}

func (c *Client) wait(ctx context.Context) error {
	if c.bucket == nil {
		return nil
	}
	if d := c.bucket.Take(1); d > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(d):
		}
	}
	return nil
}

func (c *Client) request(ctx context.Context, movieId int64) (Details, error) {
	if err := c.wait(ctx); err != nil {
		return Details{}, backoff.Permanent(err)
	}
	start := time.Now()
	var movie movieResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("movie_id", strconv.FormatInt(movieId, 10)).
		SetResult(&movie).
		ForceContentType("application/json").
		Get("/movie/{movie_id}")
	FetchSeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		if ctx.Err() != nil {
			return Details{}, backoff.Permanent(err)
		}
		return Details{}, errors.Trace(err)
	}
	switch code := resp.StatusCode(); {
	case resp.IsSuccess():
		return c.convert(movie), nil
	case code == http.StatusNotFound:
		return Details{}, backoff.Permanent(errors.NotFoundf("movie %d", movieId))
	case code == http.StatusTooManyRequests:
		if seconds, err := strconv.Atoi(resp.Header().Get("Retry-After")); err == nil && seconds > 0 {
			return Details{}, backoff.RetryAfter(seconds)
		}
		return Details{}, errors.Errorf("metadata api returned %d", code)
	case code >= http.StatusInternalServerError:
		return Details{}, errors.Errorf("metadata api returned %d", code)
	default:
		return Details{}, backoff.Permanent(errors.Errorf("metadata api returned %d", code))
	}
}

func (c *Client) convert(movie movieResponse) Details {
	if movie.PosterPath == nil || *movie.PosterPath == "" {
		return Placeholder()
	}
	details := Details{
		Poster:      strings.TrimSuffix(c.cfg.ImageBaseURL, "/") + "/" + strings.TrimPrefix(*movie.PosterPath, "/"),
		Rating:      NotAvailable,
		Overview:    NoOverview,
		ReleaseDate: NotAvailable,
	}
	if movie.VoteAverage != nil {
		details.Rating = strconv.FormatFloat(*movie.VoteAverage, 'f', -1, 64)
	}
	details.Genres = strings.Join(lo.Map(movie.Genres, func(g genre, _ int) string {
		return g.Name
	}), ", ")
	if movie.Overview != nil {
		details.Overview = *movie.Overview
	}
	if movie.ReleaseDate != nil && *movie.ReleaseDate != "" {
		details.ReleaseDate = *movie.ReleaseDate
		if date, err := dateparse.ParseAny(*movie.ReleaseDate); err == nil {
			details.ReleaseDate = date.Format(time.DateOnly)
		}
	}
	return details
}
