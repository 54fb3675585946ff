package main

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"blackjack-lite/apps/server/internal/auth"
	"blackjack-lite/apps/server/internal/config"
	"blackjack-lite/apps/server/internal/gateway"
	"blackjack-lite/apps/server/internal/ledger"
	"blackjack-lite/apps/server/internal/lobby"
	"blackjack-lite/blackjack"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("load config")
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	data, err := blackjack.LoadGameData(cfg.DataDir)
	if err != nil {
		logger.WithError(err).WithField("dir", cfg.DataDir).Fatal("load game data")
	}

	authService, authMode, err := auth.NewService(cfg.AuthMode, cfg.AuthSQLitePath, cfg.DatabaseURL, cfg.SessionTTL)
	if err != nil {
		logger.WithError(err).Fatal("init auth service")
	}
	defer authService.Close()

	ledgerService, ledgerMode, err := ledger.NewService(cfg.LedgerMode, cfg.LedgerSQLitePath, cfg.DatabaseURL)
	if err != nil {
		logger.WithError(err).Fatal("init ledger service")
	}
	defer ledgerService.Close()

	lby := lobby.New(data, ledgerService, logger, cfg.TickInterval)
	defer lby.Close()
	gw := gateway.New(authService, lby, logger)
	authHTTP := auth.NewHTTPHandler(authService)
	runsHTTP := ledger.NewHTTPHandler(authService, ledgerService)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", gw.HandleWebSocket)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	authHTTP.RegisterRoutes(mux)
	runsHTTP.RegisterRoutes(mux)

	logger.WithFields(logrus.Fields{
		"auth":   authMode,
		"ledger": ledgerMode,
		"addr":   cfg.Addr,
	}).Info("server starting")
	if err := http.ListenAndServe(cfg.Addr, mux); err != nil {
		logger.WithError(err).Fatal("server stopped")
	}
}
