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

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/emicklei/go-restful/v3"
	"github.com/gorse-io/hybrid/common/log"
	"github.com/gorse-io/hybrid/metadata"
	"github.com/gorse-io/hybrid/server"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

var serveCommand = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server.",
	Run: func(cmd *cobra.Command, args []string) {
		conf := loadConfig(cmd)
		if cmd.Flags().Changed("host") {
			conf.Server.Host, _ = cmd.Flags().GetString("host")
		}
		if cmd.Flags().Changed("port") {
			conf.Server.Port, _ = cmd.Flags().GetInt("port")
		}
		// setup trace provider
		tp, err := conf.Tracing.NewTracerProvider("hybrid")
		if err != nil {
			log.Logger().Fatal("failed to create trace provider", zap.Error(err))
		}
		otel.SetTracerProvider(tp)
		otel.SetErrorHandler(log.GetErrorHandler())
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

		ds := mustLoadDataset(context.Background(), conf)

		// metadata client
		var fetcher metadata.Fetcher
		if conf.Metadata.Enable {
			client := metadata.NewClient(conf.Metadata)
			go client.Start()
			defer client.Stop()
			fetcher = client
		}

		s := server.NewRestServer(conf, ds, fetcher)
		// Stop server
		done := make(chan struct{})
		go func() {
			sigint := make(chan os.Signal, 1)
			signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
			<-sigint
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := s.Shutdown(ctx); err != nil {
				log.Logger().Error("failed to shutdown http server", zap.Error(err))
			}
			// flush pending spans
			if shutdowner, ok := tp.(interface{ Shutdown(context.Context) error }); ok {
				if err := shutdowner.Shutdown(ctx); err != nil {
					log.Logger().Error("failed to shutdown trace provider", zap.Error(err))
				}
			}
			close(done)
		}()
		// Start server
		s.StartHttpServer(restful.NewContainer())
		<-done
		log.Logger().Info("stop hybrid server successfully")
	},
}

func init() {
	rootCommand.AddCommand(serveCommand)
	serveCommand.Flags().String("host", "", "host of the http server")
	serveCommand.Flags().Int("port", 0, "port of the http server")
}
