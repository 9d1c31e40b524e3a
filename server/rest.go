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

package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	"github.com/emicklei/go-restful/v3"
	"github.com/google/uuid"
	"github.com/gorse-io/hybrid/common/log"
	"github.com/gorse-io/hybrid/config"
	"github.com/gorse-io/hybrid/dataset"
	"github.com/gorse-io/hybrid/logics"
	"github.com/gorse-io/hybrid/metadata"
	"github.com/juju/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/swaggest/swgui/v5emb"
	"go.opentelemetry.io/contrib/instrumentation/github.com/emicklei/go-restful/otelrestful"
	"go.uber.org/zap"
)

const (
	apiDocsPath       = "/apidocs/"
	defaultSampleSize = 5
)

// RestServer implements a REST-ful API server.
type RestServer struct {
	Config     *config.Config
	Dataset    *dataset.Dataset
	Ranker     *logics.HybridRanker
	Resolver   *logics.TitleResolver
	Evaluator  *logics.Evaluator
	Fetcher    metadata.Fetcher
	Enricher   *metadata.Enricher
	WebService *restful.WebService
	HttpServer *http.Server
}

// NewRestServer creates a server over a loaded dataset. Metadata enrichment
// is available only if fetcher is not nil.
func NewRestServer(cfg *config.Config, ds *dataset.Dataset, fetcher metadata.Fetcher) *RestServer {
	ranker := logics.NewHybridRanker(ds, cfg.Recommend)
	s := &RestServer{
		Config:     cfg,
		Dataset:    ds,
		Ranker:     ranker,
		Resolver:   logics.NewTitleResolver(ds.Catalog().Titles(), cfg.Resolver.Cutoff),
		Evaluator:  logics.NewEvaluator(ranker, ds, cfg.Evaluate),
		Fetcher:    fetcher,
		WebService: new(restful.WebService),
		HttpServer: &http.Server{Addr: fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)},
	}
	if fetcher != nil {
		s.Enricher = metadata.NewEnricher(fetcher, cfg.Metadata.Jobs, cfg.Metadata.RequirePoster)
	}
	return s
}

// RegisterHandlers adds the REST-ful APIs, OpenAPI docs and metrics to the container.
func (s *RestServer) RegisterHandlers(container *restful.Container) {
	s.CreateWebService()
	container.Add(s.WebService)
	// register OpenAPI
	specConfig := restfulspec.Config{
		WebServices: container.RegisteredWebServices(),
		APIPath:     "/apidocs.json",
	}
	container.Add(restfulspec.NewOpenAPIService(specConfig))
	container.Handle(apiDocsPath, v5emb.New("Hybrid Recommender", specConfig.APIPath, apiDocsPath))
	// register prometheus
	container.Handle("/metrics", promhttp.Handler())
}

// StartHttpServer starts the REST-ful API server and blocks until it is shut down.
func (s *RestServer) StartHttpServer(container *restful.Container) {
	s.RegisterHandlers(container)
	s.HttpServer.Handler = container
	log.Logger().Info("start http server",
		zap.String("url", fmt.Sprintf("http://%s", s.HttpServer.Addr)))
	if err := s.HttpServer.ListenAndServe(); err != http.ErrServerClosed {
		log.Logger().Fatal("failed to start http server", zap.Error(err))
	}
}

// Shutdown stops the http server gracefully.
func (s *RestServer) Shutdown(ctx context.Context) error {
	return s.HttpServer.Shutdown(ctx)
}

func LogFilter(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
	requestId := req.HeaderParameter(log.RequestIdHeader)
	if requestId == "" {
		requestId = uuid.NewString()
	}
	resp.Header().Set(log.RequestIdHeader, requestId)

	start := time.Now()
	chain.ProcessFilter(req, resp)
	route := req.SelectedRoutePath()
	RequestSeconds.WithLabelValues(route).Observe(time.Since(start).Seconds())
	RequestTotal.WithLabelValues(route, strconv.Itoa(resp.StatusCode())).Inc()
	if req.Request.URL.Path != "/api/health" {
		log.ResponseLogger(resp).Info(fmt.Sprintf("%s %s", req.Request.Method, req.Request.URL),
			zap.Int("status_code", resp.StatusCode()),
			zap.Duration("duration", time.Since(start)))
	}
}

// CreateWebService creates web service.
func (s *RestServer) CreateWebService() {
	ws := s.WebService
	ws.Consumes(restful.MIME_JSON).Produces(restful.MIME_JSON)
	ws.Path("/api/")
	ws.Filter(otelrestful.OTelFilter("hybrid"))
	ws.Filter(LogFilter)

	/* Recommendation */

	// Recommend by exact title
	ws.Route(ws.GET("/recommend/{title:*}").To(s.getRecommend).
		Doc("Get movies similar to a catalog title, personalized for a user.").
		Metadata(restfulspec.KeyOpenAPITags, []string{"recommendation"}).
		Param(ws.HeaderParameter("X-API-Key", "secret key for RESTful API")).
		Param(ws.PathParameter("title", "exact catalog title").DataType("string")).
		Param(ws.QueryParameter("user-id", "identifier of the user").DataType("string")).
		Param(ws.QueryParameter("alpha", "weight of content similarity in [0, 1]").DataType("number")).
		Writes([]logics.Recommendation{}))
	// Recommend by free text
	ws.Route(ws.GET("/recommend").To(s.searchRecommend).
		Doc("Resolve a free text title and recommend movies for it.").
		Metadata(restfulspec.KeyOpenAPITags, []string{"recommendation"}).
		Param(ws.HeaderParameter("X-API-Key", "secret key for RESTful API")).
		Param(ws.QueryParameter("q", "free text title").DataType("string").Required(true)).
		Param(ws.QueryParameter("user-id", "identifier of the user").DataType("string")).
		Param(ws.QueryParameter("alpha", "weight of content similarity in [0, 1]").DataType("number")).
		Param(ws.QueryParameter("enrich", "attach movie metadata").DataType("boolean")).
		Writes(SearchResponse{}))
	// Resolve a title
	ws.Route(ws.GET("/resolve").To(s.resolve).
		Doc("Find the catalog title closest to free text.").
		Metadata(restfulspec.KeyOpenAPITags, []string{"recommendation"}).
		Param(ws.HeaderParameter("X-API-Key", "secret key for RESTful API")).
		Param(ws.QueryParameter("q", "free text title").DataType("string").Required(true)).
		Writes(ResolveResponse{}))

	/* Catalog */

	ws.Route(ws.GET("/movie/{movie-id}").To(s.getMovie).
		Doc("Get a movie with its metadata.").
		Metadata(restfulspec.KeyOpenAPITags, []string{"movie"}).
		Param(ws.HeaderParameter("X-API-Key", "secret key for RESTful API")).
		Param(ws.PathParameter("movie-id", "identifier of the movie").DataType("integer")).
		Writes(MovieResponse{}))
	ws.Route(ws.GET("/similarity/sample").To(s.getSimilaritySample).
		Doc("Get the similarity block of randomly sampled movies.").
		Metadata(restfulspec.KeyOpenAPITags, []string{"movie"}).
		Param(ws.HeaderParameter("X-API-Key", "secret key for RESTful API")).
		Param(ws.QueryParameter("n", "number of sampled movies").DataType("integer")).
		Param(ws.QueryParameter("seed", "random seed").DataType("integer")).
		Writes(SampleResponse{}))

	/* Evaluation */

	ws.Route(ws.GET("/evaluation").To(s.getEvaluation).
		Doc("Measure recommendation quality over sampled queries.").
		Metadata(restfulspec.KeyOpenAPITags, []string{"evaluation"}).
		Param(ws.HeaderParameter("X-API-Key", "secret key for RESTful API")).
		Param(ws.QueryParameter("alpha", "weight of content similarity in [0, 1]").DataType("number")).
		Writes(logics.Evaluation{}))

	ws.Route(ws.GET("/health").To(s.health).
		Doc("Get sizes of the loaded dataset.").
		Metadata(restfulspec.KeyOpenAPITags, []string{"health"}).
		Writes(HealthResponse{}))
}

// SearchResponse is the result of a free text recommendation. Movies is set
// instead of Recommendations if metadata was attached.
type SearchResponse struct {
	Query           string                   `json:"query"`
	Title           string                   `json:"title"`
	Recommendations []logics.Recommendation  `json:"recommendations,omitempty"`
	Movies          []metadata.EnrichedMovie `json:"movies,omitempty"`
}

type ResolveResponse struct {
	Query string `json:"query"`
	Title string `json:"title"`
}

type MovieResponse struct {
	dataset.Movie
	metadata.Details
}

type SampleResponse struct {
	Titles     []string    `json:"titles"`
	Similarity [][]float32 `json:"similarity"`
}

type HealthResponse struct {
	Movies int `json:"movies"`
	Users  int `json:"users"`
	Scores int `json:"scores"`
}

// ParseInt parses integers from the query parameter.
func ParseInt(request *restful.Request, name string, fallback int) (value int, err error) {
	valueString := request.QueryParameter(name)
	value, err = strconv.Atoi(valueString)
	if err != nil && valueString == "" {
		value = fallback
		err = nil
	}
	return
}

// ParseFloat32 parses a float from the query parameter.
func ParseFloat32(request *restful.Request, name string, fallback float32) (float32, error) {
	valueString := request.QueryParameter(name)
	if valueString == "" {
		return fallback, nil
	}
	value, err := strconv.ParseFloat(valueString, 32)
	if err != nil {
		return 0, errors.Trace(err)
	}
	return float32(value), nil
}

// ParseBool parses a boolean from the query parameter.
func ParseBool(request *restful.Request, name string, fallback bool) (bool, error) {
	valueString := request.QueryParameter(name)
	if valueString == "" {
		return fallback, nil
	}
	value, err := strconv.ParseBool(valueString)
	return value, errors.Trace(err)
}

func (s *RestServer) parseAlpha(request *restful.Request) (float32, error) {
	alpha, err := ParseFloat32(request, "alpha", s.Config.Recommend.Alpha)
	if err != nil {
		return 0, errors.NewBadRequest(err, "invalid alpha")
	}
	if !(alpha >= 0 && alpha <= 1) {
		return 0, errors.BadRequestf("alpha %v out of range [0, 1]", alpha)
	}
	return alpha, nil
}

func (s *RestServer) getRecommend(request *restful.Request, response *restful.Response) {
	if !s.auth(request, response) {
		return
	}
	alpha, err := s.parseAlpha(request)
	if err != nil {
		Error(response, err)
		return
	}
	start := time.Now()
	recommendations, err := s.Ranker.Recommend(request.PathParameter("title"), request.QueryParameter("user-id"), alpha)
	if err != nil {
		Error(response, err)
		return
	}
	RecommendSeconds.Observe(time.Since(start).Seconds())
	Ok(response, recommendations)
}

func (s *RestServer) searchRecommend(request *restful.Request, response *restful.Response) {
	if !s.auth(request, response) {
		return
	}
	query := request.QueryParameter("q")
	if query == "" {
		BadRequest(response, errors.BadRequestf("missing query"))
		return
	}
	alpha, err := s.parseAlpha(request)
	if err != nil {
		Error(response, err)
		return
	}
	enrich, err := ParseBool(request, "enrich", s.Enricher != nil)
	if err != nil {
		BadRequest(response, err)
		return
	}
	if enrich && s.Enricher == nil {
		BadRequest(response, errors.BadRequestf("metadata is disabled"))
		return
	}
	title, ok := s.Resolver.Resolve(query)
	if !ok {
		PageNotFound(response, errors.NewNotFound(nil, fmt.Sprintf("no close match for %q, try a different title", query)))
		return
	}
	start := time.Now()
	recommendations, err := s.Ranker.Recommend(title, request.QueryParameter("user-id"), alpha)
	if err != nil {
		Error(response, err)
		return
	}
	RecommendSeconds.Observe(time.Since(start).Seconds())
	result := SearchResponse{Query: query, Title: title}
	if !enrich {
		result.Recommendations = recommendations
		Ok(response, result)
		return
	}
	start = time.Now()
	result.Movies = s.Enricher.Enrich(request.Request.Context(), recommendations)
	EnrichSeconds.Observe(time.Since(start).Seconds())
	if len(result.Movies) == 0 {
		PageNotFound(response, errors.NewNotFound(nil, fmt.Sprintf("no recommendations with metadata for %q, try a different title", title)))
		return
	}
	Ok(response, result)
}

func (s *RestServer) resolve(request *restful.Request, response *restful.Response) {
	if !s.auth(request, response) {
		return
	}
	query := request.QueryParameter("q")
	if query == "" {
		BadRequest(response, errors.BadRequestf("missing query"))
		return
	}
	title, ok := s.Resolver.Resolve(query)
	if !ok {
		PageNotFound(response, errors.NewNotFound(nil, fmt.Sprintf("no close match for %q", query)))
		return
	}
	Ok(response, ResolveResponse{Query: query, Title: title})
}

func (s *RestServer) getMovie(request *restful.Request, response *restful.Response) {
	if !s.auth(request, response) {
		return
	}
	movieId, err := strconv.ParseInt(request.PathParameter("movie-id"), 10, 64)
	if err != nil {
		BadRequest(response, err)
		return
	}
	index, ok := s.Dataset.Catalog().IndexOfMovie(movieId)
	if !ok {
		PageNotFound(response, errors.NotFoundf("movie %d", movieId))
		return
	}
	details := metadata.Placeholder()
	if s.Fetcher != nil {
		details = s.Fetcher.Fetch(request.Request.Context(), movieId)
	}
	Ok(response, MovieResponse{Movie: s.Dataset.Catalog().Movie(index), Details: details})
}

func (s *RestServer) getSimilaritySample(request *restful.Request, response *restful.Response) {
	if !s.auth(request, response) {
		return
	}
	n, err := ParseInt(request, "n", defaultSampleSize)
	if err != nil {
		BadRequest(response, err)
		return
	}
	if n <= 0 {
		BadRequest(response, errors.BadRequestf("n must be positive"))
		return
	}
	seed, err := ParseInt(request, "seed", int(s.Config.Evaluate.Seed))
	if err != nil {
		BadRequest(response, err)
		return
	}
	titles, block := logics.SampleSimilarity(s.Dataset, n, int64(seed))
	Ok(response, SampleResponse{Titles: titles, Similarity: block})
}

func (s *RestServer) getEvaluation(request *restful.Request, response *restful.Response) {
	if !s.auth(request, response) {
		return
	}
	alpha, err := s.parseAlpha(request)
	if err != nil {
		Error(response, err)
		return
	}
	evaluation, err := s.Evaluator.Evaluate(request.Request.Context(), alpha)
	if err != nil {
		Error(response, err)
		return
	}
	Ok(response, evaluation)
}

func (s *RestServer) health(_ *restful.Request, response *restful.Response) {
	Ok(response, HealthResponse{
		Movies: s.Dataset.CountMovies(),
		Users:  s.Dataset.CountUsers(),
		Scores: s.Dataset.Scores().CountScores(),
	})
}

// Error writes err with the status code of its kind.
func Error(response *restful.Response, err error) {
	switch {
	case errors.Is(err, errors.NotFound):
		PageNotFound(response, err)
	case errors.Is(err, errors.NotValid), errors.Is(err, errors.BadRequest):
		BadRequest(response, err)
	default:
		InternalServerError(response, err)
	}
}

// BadRequest returns a bad request error.
func BadRequest(response *restful.Response, err error) {
	response.Header().Set("Access-Control-Allow-Origin", "*")
	log.ResponseLogger(response).Error("bad request", zap.Error(err))
	if err = response.WriteError(http.StatusBadRequest, err); err != nil {
		log.ResponseLogger(response).Error("failed to write error", zap.Error(err))
	}
}

// InternalServerError returns a internal server error.
func InternalServerError(response *restful.Response, err error) {
	response.Header().Set("Access-Control-Allow-Origin", "*")
	log.ResponseLogger(response).Error("internal server error", zap.Error(err))
	if err = response.WriteError(http.StatusInternalServerError, err); err != nil {
		log.ResponseLogger(response).Error("failed to write error", zap.Error(err))
	}
}

// PageNotFound returns a not found error.
func PageNotFound(response *restful.Response, err error) {
	response.Header().Set("Access-Control-Allow-Origin", "*")
	if err := response.WriteError(http.StatusNotFound, err); err != nil {
		log.ResponseLogger(response).Error("failed to write error", zap.Error(err))
	}
}

// Ok sends the content as JSON to the client.
func Ok(response *restful.Response, content interface{}) {
	response.Header().Set("Access-Control-Allow-Origin", "*")
	if err := response.WriteAsJson(content); err != nil {
		log.ResponseLogger(response).Error("failed to write json", zap.Error(err))
	}
}

func (s *RestServer) auth(request *restful.Request, response *restful.Response) bool {
	if s.Config.Server.APIKey == "" {
		return true
	}
	apikey := request.HeaderParameter("X-API-Key")
	if apikey == s.Config.Server.APIKey {
		return true
	}
	log.ResponseLogger(response).Error("unauthorized", zap.String("X-API-Key", apikey))
	if err := response.WriteError(http.StatusUnauthorized, errors.Unauthorizedf("api key")); err != nil {
		log.ResponseLogger(response).Error("failed to write error", zap.Error(err))
	}
	return false
}
