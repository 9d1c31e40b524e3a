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

package config

import (
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/go-viper/mapstructure/v2"
	"github.com/juju/errors"
	"github.com/spf13/viper"
)

const EnvPrefix = "HYBRID"

// Config is the configuration for the recommender.
type Config struct {
	Dataset   DatasetConfig   `mapstructure:"dataset"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Blob      BlobConfig      `mapstructure:"blob"`
	Recommend RecommendConfig `mapstructure:"recommend"`
	Resolver  ResolverConfig  `mapstructure:"resolver"`
	Metadata  MetadataConfig  `mapstructure:"metadata"`
	Evaluate  EvaluateConfig  `mapstructure:"evaluate"`
	Server    ServerConfig    `mapstructure:"server"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
}

// DatasetConfig locates the precomputed artifacts. Store is a local directory
// or a bucket URL (s3://, gcs://, azblob://).
type DatasetConfig struct {
	Store          string `mapstructure:"store" validate:"required"`
	CatalogFile    string `mapstructure:"catalog_file" validate:"required"`
	SimilarityFile string `mapstructure:"similarity_file" validate:"required"`
	ScoresFile     string `mapstructure:"scores_file"`
}

// DatabaseConfig points to the collaborative score database. Scores are read
// from DatasetConfig.ScoresFile if ScoreStore is empty.
type DatabaseConfig struct {
	ScoreStore  string `mapstructure:"score_store"`
	TablePrefix string `mapstructure:"table_prefix"`
}

type BlobConfig struct {
	S3    S3Config        `mapstructure:"s3"`
	GCS   GCSConfig       `mapstructure:"gcs"`
	Azure AzureBlobConfig `mapstructure:"azure"`
}

type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

type GCSConfig struct {
	CredentialsFile string `mapstructure:"credentials_file"`
}

type AzureBlobConfig struct {
	AccountName      string `mapstructure:"account_name"`
	AccountKey       string `mapstructure:"account_key"`
	Endpoint         string `mapstructure:"endpoint"`
	ConnectionString string `mapstructure:"connection_string"`
}

type RecommendConfig struct {
	TopN       int     `mapstructure:"top_n" validate:"gt=0"`
	Alpha      float32 `mapstructure:"alpha" validate:"gte=0,lte=1"`
	ScoreScale float32 `mapstructure:"score_scale" validate:"gt=0"`
}

type ResolverConfig struct {
	Cutoff float64 `mapstructure:"cutoff" validate:"gte=0,lte=1"`
}

type MetadataConfig struct {
	Enable        bool          `mapstructure:"enable"`
	APIKey        string        `mapstructure:"api_key" validate:"required_if=Enable true"`
	BaseURL       string        `mapstructure:"base_url" validate:"required,url"`
	ImageBaseURL  string        `mapstructure:"image_base_url" validate:"required,url"`
	Timeout       time.Duration `mapstructure:"timeout" validate:"gt=0"`
	CacheTTL      time.Duration `mapstructure:"cache_ttl" validate:"gte=0"`
	CacheSize     uint64        `mapstructure:"cache_size"`
	RateLimit     float64       `mapstructure:"rate_limit" validate:"gte=0"`
	MaxRetries    uint          `mapstructure:"max_retries"`
	RequirePoster bool          `mapstructure:"require_poster"`
	Jobs          int           `mapstructure:"jobs" validate:"gt=0"`
}

type EvaluateConfig struct {
	NumQueries         int     `mapstructure:"num_queries" validate:"gt=0"`
	RelevanceThreshold float32 `mapstructure:"relevance_threshold"`
	Seed               int64   `mapstructure:"seed"`
	Jobs               int     `mapstructure:"jobs" validate:"gt=0"`
}

type ServerConfig struct {
	Host   string `mapstructure:"host"`
	Port   int    `mapstructure:"port" validate:"gte=0,lte=65535"`
	APIKey string `mapstructure:"api_key"`
}

func GetDefaultConfig() *Config {
	return &Config{
		Dataset: DatasetConfig{
			CatalogFile:    "movies.csv",
			SimilarityFile: "similarity.bin",
			ScoresFile:     "scores.csv",
		},
		Recommend: RecommendConfig{
			TopN:       10,
			Alpha:      0.5,
			ScoreScale: 5,
		},
		Resolver: ResolverConfig{
			Cutoff: 0.6,
		},
		Metadata: MetadataConfig{
			BaseURL:       "https://api.themoviedb.org/3",
			ImageBaseURL:  "https://image.tmdb.org/t/p/w500/",
			Timeout:       5 * time.Second,
			CacheTTL:      24 * time.Hour,
			CacheSize:     10000,
			RateLimit:     40,
			MaxRetries:    2,
			RequirePoster: true,
			Jobs:          4,
		},
		Evaluate: EvaluateConfig{
			NumQueries:         100,
			RelevanceThreshold: 4,
			Jobs:               4,
		},
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8087,
		},
		Tracing: TracingConfig{
			Exporter: ExporterOTLP,
			Sampler:  SamplerAlways,
			Ratio:    1,
		},
	}
}

// Validate checks the configuration and reports violated rules in plain English.
func (config *Config) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	trans, _ := ut.New(en.New()).GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return errors.Trace(err)
	}
	err := validate.Struct(config)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return errors.Trace(err)
	}
	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		messages = append(messages, e.Translate(trans))
	}
	return errors.NewNotValid(nil, strings.Join(messages, "; "))
}

func setDefault() {
	defaultConfig := GetDefaultConfig()
	// [dataset]
	viper.SetDefault("dataset.store", defaultConfig.Dataset.Store)
	viper.SetDefault("dataset.catalog_file", defaultConfig.Dataset.CatalogFile)
	viper.SetDefault("dataset.similarity_file", defaultConfig.Dataset.SimilarityFile)
	viper.SetDefault("dataset.scores_file", defaultConfig.Dataset.ScoresFile)
	// [database]
	viper.SetDefault("database.score_store", defaultConfig.Database.ScoreStore)
	viper.SetDefault("database.table_prefix", defaultConfig.Database.TablePrefix)
	// [blob]
	viper.SetDefault("blob.s3.endpoint", "")
	viper.SetDefault("blob.s3.access_key_id", "")
	viper.SetDefault("blob.s3.secret_access_key", "")
	viper.SetDefault("blob.s3.use_ssl", false)
	viper.SetDefault("blob.gcs.credentials_file", "")
	viper.SetDefault("blob.azure.account_name", "")
	viper.SetDefault("blob.azure.account_key", "")
	viper.SetDefault("blob.azure.endpoint", "")
	viper.SetDefault("blob.azure.connection_string", "")
	// [recommend]
	viper.SetDefault("recommend.top_n", defaultConfig.Recommend.TopN)
	viper.SetDefault("recommend.alpha", defaultConfig.Recommend.Alpha)
	viper.SetDefault("recommend.score_scale", defaultConfig.Recommend.ScoreScale)
	// [resolver]
	viper.SetDefault("resolver.cutoff", defaultConfig.Resolver.Cutoff)
	// [metadata]
	viper.SetDefault("metadata.enable", defaultConfig.Metadata.Enable)
	viper.SetDefault("metadata.api_key", defaultConfig.Metadata.APIKey)
	viper.SetDefault("metadata.base_url", defaultConfig.Metadata.BaseURL)
	viper.SetDefault("metadata.image_base_url", defaultConfig.Metadata.ImageBaseURL)
	viper.SetDefault("metadata.timeout", defaultConfig.Metadata.Timeout)
	viper.SetDefault("metadata.cache_ttl", defaultConfig.Metadata.CacheTTL)
	viper.SetDefault("metadata.cache_size", defaultConfig.Metadata.CacheSize)
	viper.SetDefault("metadata.rate_limit", defaultConfig.Metadata.RateLimit)
	viper.SetDefault("metadata.max_retries", defaultConfig.Metadata.MaxRetries)
	viper.SetDefault("metadata.require_poster", defaultConfig.Metadata.RequirePoster)
	viper.SetDefault("metadata.jobs", defaultConfig.Metadata.Jobs)
	// [evaluate]
	viper.SetDefault("evaluate.num_queries", defaultConfig.Evaluate.NumQueries)
	viper.SetDefault("evaluate.relevance_threshold", defaultConfig.Evaluate.RelevanceThreshold)
	viper.SetDefault("evaluate.seed", defaultConfig.Evaluate.Seed)
	viper.SetDefault("evaluate.jobs", defaultConfig.Evaluate.Jobs)
	// [server]
	viper.SetDefault("server.host", defaultConfig.Server.Host)
	viper.SetDefault("server.port", defaultConfig.Server.Port)
	viper.SetDefault("server.api_key", defaultConfig.Server.APIKey)
	// [tracing]
	viper.SetDefault("tracing.enable_tracing", defaultConfig.Tracing.EnableTracing)
	viper.SetDefault("tracing.exporter", defaultConfig.Tracing.Exporter)
	viper.SetDefault("tracing.collector_endpoint", defaultConfig.Tracing.CollectorEndpoint)
	viper.SetDefault("tracing.sampler", defaultConfig.Tracing.Sampler)
	viper.SetDefault("tracing.ratio", defaultConfig.Tracing.Ratio)
}

// LoadConfig loads configuration from a TOML file. Every key can be overridden
// by an environment variable, e.g. HYBRID_DATABASE_SCORE_STORE.
func LoadConfig(path string) (*Config, error) {
	viper.Reset()
	setDefault()
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if path != "" {
		viper.SetConfigFile(path)
		viper.SetConfigType("toml")
		if err := viper.ReadInConfig(); err != nil {
			return nil, errors.Trace(err)
		}
	}

	var conf Config
	if err := viper.Unmarshal(&conf, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))); err != nil {
		return nil, errors.Trace(err)
	}
	if err := conf.Validate(); err != nil {
		return nil, errors.Annotate(err, "invalid config")
	}
	return &conf, nil
}
