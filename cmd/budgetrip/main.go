package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"budgetrip/internal/amqp"
	"budgetrip/internal/cli"
	"budgetrip/internal/core"
	apphttp "budgetrip/internal/http"
	"budgetrip/internal/integrations"
	"budgetrip/internal/integrations/splitwise"
	stripesource "budgetrip/internal/integrations/stripe"
	"budgetrip/internal/integrations/venmo"
	applog "budgetrip/internal/log"
	"budgetrip/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger("budgetrip")

	cfg := cli.LoadAndValidateConfig(logger)
	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)

	// AMQP is optional; without it events stay local until the worker's
	// sweep picks them up, so a broker outage never blocks reviews.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		var err error
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without export messages", "error", err)
			amqpClient = nil
		} else {
			logger.Info("Initialized AMQP client",
				"exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	lineItems := services.NewLineItemService(repo)
	events := services.NewEventService(repo, amqpClient)

	sources := buildSources(cfg.StripeAPIKey, cfg.VenmoBaseURL, cfg.VenmoAccessToken,
		cfg.SplitwiseBaseURL, cfg.SplitwiseAPIKey, logger)

	var refresher *services.RefreshProcessor
	if len(sources) > 0 {
		refreshCfg := services.DefaultRefreshProcessorConfig()
		refreshCfg.Interval = cfg.RefreshInterval
		refresher = services.NewRefreshProcessor(repo, lineItems, sources, refreshCfg)
	} else {
		logger.Info("No provider credentials configured, account refresh disabled")
	}

	srv := apphttp.NewServer(":"+cfg.Port, lineItems, events, refresher,
		logger.WithComponent(applog.ComponentHTTP))
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		if refresher != nil {
			if err := refresher.Stop(shutdownCtx); err != nil {
				logger.Error("Refresh processor shutdown error", "error", err)
			}
		}
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		if err := events.Close(); err != nil {
			logger.Error("Service shutdown error", "error", err)
		}
	})

	if refresher != nil {
		if err := refresher.Start(ctx); err != nil {
			logger.Error("Failed to start refresh processor", "error", err)
			os.Exit(1)
		}
	}

	logger.Info("Starting budgetrip server",
		"port", cfg.Port, "providers", len(sources))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}

// buildSources assembles a transaction source per configured provider.
func buildSources(stripeKey, venmoBase, venmoToken, splitwiseBase, splitwiseKey string, logger *applog.Logger) []integrations.TransactionSource {
	var sources []integrations.TransactionSource

	if stripeKey != "" {
		sources = append(sources,
			stripesource.New(stripeKey, logger.WithComponent(string(core.ProviderStripe))))
	}
	if venmoToken != "" {
		sources = append(sources,
			venmo.New(venmoBase, venmoToken, logger.WithComponent(string(core.ProviderVenmo))))
	}
	if splitwiseKey != "" {
		sources = append(sources,
			splitwise.New(splitwiseBase, splitwiseKey, logger.WithComponent(string(core.ProviderSplitwise))))
	}

	return sources
}
