package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/JosherenPro/ManiocAGRI/internal/account"
	"github.com/JosherenPro/ManiocAGRI/internal/auth"
	"github.com/JosherenPro/ManiocAGRI/internal/catalog"
	"github.com/JosherenPro/ManiocAGRI/internal/config"
	"github.com/JosherenPro/ManiocAGRI/internal/db"
	handler "github.com/JosherenPro/ManiocAGRI/internal/handler/http"
	"github.com/JosherenPro/ManiocAGRI/internal/order"
)

func main() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	log.Logger = log.With().Str("service", "agrimarket").Logger()

	log.Info().Msg("Marketplace server starting...")

	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	dbConn, err := db.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer dbConn.Close()

	accountRepo := account.NewRepository(dbConn.Pool)
	accounts := account.NewService(accountRepo, nil)

	catalogRepo := catalog.NewRepository(dbConn.Pool)
	products := catalog.NewService(catalogRepo)

	orderRepo := order.NewRepository(dbConn.Pool)
	orders := order.NewService(orderRepo, accounts)

	tokens := auth.NewTokenManager(cfg.App.TokenSecret, cfg.App.TokenTTL)

	router := handler.NewRouter(accounts, products, orders, tokens, cfg.App.UploadDir)

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.App.Port).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	log.Info().Msg("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Shutdown failed")
	}
	log.Info().Msg("Server stopped")
}
