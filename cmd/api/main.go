package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"contentgen/internal/adapter/repo"
	"contentgen/internal/domain"
	"contentgen/internal/http/handlers"
	"contentgen/internal/http/httpapi"
	"contentgen/internal/infra"
	"contentgen/internal/infra/geoip"
	"contentgen/internal/metrics"
	"contentgen/internal/middleware"
	"contentgen/internal/orchestrator"
	"contentgen/internal/pipeline"
	"contentgen/internal/providers/copywriter"
	"contentgen/internal/providers/genai"
	imageprovider "contentgen/internal/providers/image"
	"contentgen/internal/providers/prompt"
	"contentgen/internal/providers/retrieval"
	"contentgen/internal/providers/score"
	"contentgen/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)
	ctx := context.Background()

	// Job store: Postgres when configured, in-memory otherwise.
	var jobStore domain.JobStore
	if cfg.DatabaseURL != "" {
		pool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect database")
		}
		defer pool.Close()
		pgStore := repo.NewJobRepository(pool)
		if err := pgStore.EnsureSchema(ctx); err != nil {
			logger.Fatal().Err(err).Msg("failed to prepare jobs schema")
		}
		jobStore = pgStore
		logger.Info().Msg("using postgres job store")
	} else {
		jobStore = store.NewMemoryStore()
		logger.Info().Msg("using in-memory job store")
	}

	m := metrics.New()

	geminiClient, err := genai.NewClient(genai.Options{
		APIKey:  cfg.GeminiAPIKey,
		BaseURL: cfg.GeminiBaseURL,
		Model:   cfg.GeminiModel,
		Logger:  &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure gemini client")
	}
	if !geminiClient.Configured() {
		logger.Warn().Str("model", geminiClient.Model()).Msg("gemini api key missing, using static generation")
	}

	writer, err := copywriter.NewGeminiWriter(copywriter.GeminiOptions{
		Client:   geminiClient,
		Fallback: copywriter.NewStaticWriter(),
		OnFallback: func(reason string, err error) {
			logger.Debug().Err(err).Str("reason", reason).Msg("copywriter fell back to static")
		},
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure copywriter")
	}

	stages := pipeline.DefaultStages(
		retrieval.NewStaticProvider(),
		prompt.NewBuilder(),
		writer,
		imageprovider.NewGeminiGenerator(geminiClient),
		score.NewHeuristicScorer(),
	)
	for i, stage := range stages {
		stages[i] = pipeline.Instrument(stage, func(name string, channel domain.Channel, seconds float64) {
			m.StageDurationSeconds.WithLabelValues(string(channel), name).Observe(seconds)
		})
	}
	runner := pipeline.NewRunner(stages...)

	orc := orchestrator.New(jobStore, runner, logger, m)

	var countryLookup middleware.CountryLookup
	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip resolver unavailable")
	} else if resolver != nil {
		countryLookup = resolver.CountryCode
	}

	app := handlers.NewApp(orc, logger)
	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:         logger,
		Config:         cfg,
		CountryLookup:  countryLookup,
		MetricsHandler: m.Handler(),
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	// Let in-flight generation jobs reach their terminal state before exit.
	orc.Wait()
	logger.Info().Msg("server stopped")
}
