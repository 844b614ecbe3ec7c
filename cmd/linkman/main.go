// Package main initializes and starts the linkman bookmark server,
// wiring configuration, logging, the database pool, repositories,
// the ingestion worker, and HTTP handlers. It also carries the
// create-api-key administrative subcommand.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	nethttp "net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/linkman/linkman/internal/config"
	"github.com/linkman/linkman/internal/db"
	"github.com/linkman/linkman/internal/excerpt"
	"github.com/linkman/linkman/internal/fetch"
	"github.com/linkman/linkman/internal/logger"
	"github.com/linkman/linkman/internal/repository"
	"github.com/linkman/linkman/internal/server/handler/http"
	"github.com/linkman/linkman/internal/service"
	"github.com/linkman/linkman/internal/tagger"
	"github.com/linkman/linkman/internal/worker"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: linkman <serve|create-api-key>")
		os.Exit(2)
	}

	switch os.Args[1] {
	case "serve":
		serve()
	case "create-api-key":
		createAPIKey(os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", os.Args[1])
		os.Exit(2)
	}
}

func serve() {
	options, err := config.Parse(true)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	zapLogger, err := logger.New(options.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = zapLogger.Sync() }()

	zapLogger.Info("running database migrations")
	postgresDB, err := db.InitPostgres(options.DatabaseDSN)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}
	zapLogger.Info("migrations complete")

	// Repositories over the shared pool.
	apiKeyRepo := repository.NewPostgresAPIKeyRepository(postgresDB)
	bookmarkRepo := repository.NewPostgresBookmarkRepository(postgresDB)

	// Ingestion pipeline: fetch → excerpt → tag → update.
	processor := worker.NewProcessor(
		fetch.New(fetch.Config{}),
		excerpt.New(),
		tagger.New(tagger.Config{
			Endpoint:     options.OpenAIURL,
			Model:        options.OpenAIModel,
			ExtraHeaders: tagger.ParseExtraHeaders(options.OpenAIExtraHeaders),
		}),
		bookmarkRepo,
		zapLogger,
	)

	bookmarkService := service.NewBookmarkService(bookmarkRepo, processor)
	bookmarkHandler := &http.BookmarkHandler{Service: bookmarkService, Logger: zapLogger}

	router := http.NewRouter(bookmarkHandler, apiKeyRepo, zapLogger)

	zapLogger.Info("starting HTTP server", zap.String("addr", options.ListenAddr))
	server := &nethttp.Server{Addr: options.ListenAddr, Handler: router}
	if err := server.ListenAndServe(); err != nil {
		zapLogger.Fatal("failed to start HTTP server", zap.Error(err))
	}
}

func createAPIKey(args []string) {
	fs := flag.NewFlagSet("create-api-key", flag.ExitOnError)
	description := fs.String("description", "", "description for the API key")
	key := fs.String("key", "", "optional specific key string; random if omitted")
	_ = fs.Parse(args)

	if *description == "" {
		fmt.Fprintln(os.Stderr, "create-api-key: --description is required")
		os.Exit(2)
	}

	options, err := config.Parse(false)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	zapLogger, err := logger.New(options.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = zapLogger.Sync() }()

	postgresDB, err := db.InitPostgres(options.DatabaseDSN)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}

	finalKey := *key
	if finalKey == "" {
		finalKey = uuid.NewString()
	}

	apiKeyRepo := repository.NewPostgresAPIKeyRepository(postgresDB)
	if err := apiKeyRepo.CreateKey(context.Background(), finalKey, *description); err != nil {
		zapLogger.Fatal("failed to create API key", zap.Error(err))
	}

	zapLogger.Info("created new API key", zap.String("description", *description))
	fmt.Println(finalKey)
}
