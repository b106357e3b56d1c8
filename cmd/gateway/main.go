package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/udaykumar0515/speakup-gateway/internal/aptitude"
	"github.com/udaykumar0515/speakup-gateway/internal/credential"
	"github.com/udaykumar0515/speakup-gateway/internal/domain"
	"github.com/udaykumar0515/speakup-gateway/internal/gateway"
	"github.com/udaykumar0515/speakup-gateway/internal/pkg/config"
	"github.com/udaykumar0515/speakup-gateway/internal/provider"
	"github.com/udaykumar0515/speakup-gateway/internal/provider/documentai"
	"github.com/udaykumar0515/speakup-gateway/internal/provider/firestore"
	"github.com/udaykumar0515/speakup-gateway/internal/provider/gemini"
	"github.com/udaykumar0515/speakup-gateway/internal/provider/identity"
	"github.com/udaykumar0515/speakup-gateway/internal/server"
	"github.com/udaykumar0515/speakup-gateway/internal/storage/sqlite"
	"github.com/udaykumar0515/speakup-gateway/internal/telemetry"
	"github.com/udaykumar0515/speakup-gateway/internal/tokens"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	shutdownTracer, err := telemetry.Init("speakup-gateway", logger)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			logger.Error("failed to shutdown tracer", slog.String("error", err.Error()))
		}
	}()

	// Credentials resolve once, before any listener opens. A gateway with
	// a missing or malformed credential never starts serving.
	broker, err := credential.NewBroker(cfg.Providers)
	if err != nil {
		log.Fatalf("Failed to resolve credentials: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	registry, err := buildProviders(ctx, cfg, broker)
	if err != nil {
		log.Fatalf("Failed to build providers: %v", err)
	}

	library, err := aptitude.NewLibrary(cfg.Aptitude.DataDir)
	if err != nil {
		log.Fatalf("Failed to load aptitude banks: %v", err)
	}
	defer library.Close()
	if cfg.Aptitude.WatchBanks {
		go func() {
			if err := library.Watch(ctx); err != nil {
				logger.Error("bank watcher stopped", slog.String("error", err.Error()))
			}
		}()
	}

	counters := tokens.NewRegistry()
	counters.Register(tokens.NewGeminiCounter())

	opts := []gateway.Option{
		gateway.WithLogger(logger),
		gateway.WithModels(gateway.Models{
			Default:  cfg.Providers.Gemini.Model,
			Analysis: cfg.Providers.Gemini.AnalysisModel,
		}),
	}
	if cfg.Storage.AuditPath != "" {
		audit, err := sqlite.New(cfg.Storage.AuditPath)
		if err != nil {
			log.Fatalf("Failed to open audit store: %v", err)
		}
		defer audit.Close()
		opts = append(opts, gateway.WithAuditStore(audit))
	}

	service := gateway.New(registry, library, counters, opts...)
	handler := gateway.NewHandler(service)

	srv := server.New(cfg.Server.Port, cfg.Server.RequestTimeout, logger)
	srv.Router.Get("/healthz", handler.HandleHealthz)
	srv.Router.Mount("/v1", handler.Routes())

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	logger.Info("gateway ready",
		slog.Int("port", cfg.Server.Port),
		slog.Any("providers", registry.Tags()),
		slog.Any("aptitude_topics", library.Topics()),
		slog.Bool("audit", cfg.Storage.AuditPath != ""),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			log.Fatalf("Server failed: %v", err)
		}
		return
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("gateway shutdown complete")
}

// buildProviders constructs the four adapters from resolved credentials and
// registers each behind the retry decorator.
func buildProviders(ctx context.Context, cfg *config.Config, broker *credential.Broker) (*provider.Registry, error) {
	var providers []domain.Provider

	idCred, err := broker.Resolve(domain.TagIdentity)
	if err != nil {
		return nil, err
	}
	idKey, _ := idCred.APIKey()
	var idOpts []identity.ProviderOption
	if host := cfg.Providers.Identity.EmulatorHost; host != "" {
		idOpts = append(idOpts, identity.WithBaseURL(
			fmt.Sprintf("http://%s/identitytoolkit.googleapis.com/v1", host)))
	}
	if cfg.Providers.Identity.Timeout > 0 {
		idOpts = append(idOpts, identity.WithTimeout(cfg.Providers.Identity.Timeout))
	}
	providers = append(providers, identity.New(idKey, idOpts...))

	genCred, err := broker.Resolve(domain.TagGeneration)
	if err != nil {
		return nil, err
	}
	genKey, _ := genCred.APIKey()
	var genOpts []gemini.ProviderOption
	if cfg.Providers.Gemini.Model != "" {
		genOpts = append(genOpts, gemini.WithDefaultModel(cfg.Providers.Gemini.Model))
	}
	if cfg.Providers.Gemini.Timeout > 0 {
		genOpts = append(genOpts, gemini.WithTimeout(cfg.Providers.Gemini.Timeout))
	}
	gen, err := gemini.New(ctx, genKey, genOpts...)
	if err != nil {
		return nil, fmt.Errorf("generation provider: %w", err)
	}
	providers = append(providers, gen)

	if cfg.Providers.DocumentAI.ProjectID == "" || cfg.Providers.DocumentAI.ProcessorID == "" {
		return nil, fmt.Errorf("extraction provider: providers.documentai.project_id and processor_id are required")
	}
	ocrCred, err := broker.Resolve(domain.TagExtraction)
	if err != nil {
		return nil, err
	}
	ocrAccount, _ := ocrCred.Account()
	ocrTokens := credential.NewTokenSource(ocrAccount, credential.ScopeCloudPlatform, nil)
	var ocrOpts []documentai.ProviderOption
	if cfg.Providers.DocumentAI.Timeout > 0 {
		ocrOpts = append(ocrOpts, documentai.WithTimeout(cfg.Providers.DocumentAI.Timeout))
	}
	providers = append(providers, documentai.New(
		cfg.Providers.DocumentAI.ProjectID,
		cfg.Providers.DocumentAI.Location,
		cfg.Providers.DocumentAI.ProcessorID,
		ocrTokens, ocrOpts...))

	if cfg.Providers.Firestore.ProjectID == "" {
		return nil, fmt.Errorf("store provider: providers.firestore.project_id is required")
	}
	storeCred, err := broker.Resolve(domain.TagStore)
	if err != nil {
		return nil, err
	}
	storeAccount, _ := storeCred.Account()
	storeTokens := credential.NewTokenSource(storeAccount, credential.ScopeDatastore, nil)
	var storeOpts []firestore.ProviderOption
	if cfg.Providers.Firestore.Timeout > 0 {
		storeOpts = append(storeOpts, firestore.WithTimeout(cfg.Providers.Firestore.Timeout))
	}
	providers = append(providers, firestore.New(cfg.Providers.Firestore.ProjectID, storeTokens, storeOpts...))

	registry := provider.NewRegistry()
	for _, p := range providers {
		if err := registry.Register(provider.NewRetryProvider(p, cfg.Retry.BaseDelay)); err != nil {
			return nil, err
		}
	}
	return registry, nil
}
