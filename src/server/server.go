package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"terminalfleet/src/connectors"
	"terminalfleet/src/guard"
	"terminalfleet/src/handler"
	"terminalfleet/src/ingest"
	"terminalfleet/src/repository"
	"terminalfleet/src/security"
	"terminalfleet/src/terminal"
)

// NewRouter wires repositories, services and handlers once at process
// start; everything downstream receives its dependencies explicitly.
func NewRouter(db *gorm.DB, vault *security.Vault, handlerConfig handler.Config, requestTimeout time.Duration) chi.Router {
	terminals := repository.NewTerminalRepository(db)
	commands := repository.NewCommandRepository(db)
	connections := repository.NewBrokerConnectionRepository(db)
	trades := repository.NewTradeRepository(db)
	positions := repository.NewPositionRepository(db)
	candles := repository.NewCandleRepository(db)
	syncLogs := repository.NewSyncLogRepository(db)
	rateLimits := repository.NewRateLimitRepository(db)
	auditLogs := repository.NewAuditLogRepository(db)
	users := repository.NewUserRepository(db)

	lifecycle := terminal.NewService(terminals, commands, connections, terminal.GetConfig())
	quota := ingest.NewQuotaGate(connections, ingest.GetConfig().MonthlySyncLimit)
	pipeline := ingest.NewService(
		terminals, commands, trades, positions, candles, syncLogs,
		quota, marketDataProvider(),
	)
	limiter := guard.NewRateLimiter(rateLimits, guard.GetConfig())
	audit := guard.NewAuditor(auditLogs)

	r := chi.NewRouter()
	r.Use(withTimeout(requestTimeout))

	r.Get("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.WithError(err).Error("\"/healthcheck\" error")
		}
	})

	// Agent webhooks. Heartbeat tolerates an unset key outside
	// production; the data paths never do.
	r.Route("/terminal", func(r chi.Router) {
		r.With(handler.AgentAPIKey(handlerConfig, true)).
			Post("/heartbeat", handler.HeartbeatHandler(lifecycle))
		r.With(handler.AgentAPIKey(handlerConfig, true)).
			Post("/status", handler.FinalStatusHandler(lifecycle))

		r.Group(func(r chi.Router) {
			r.Use(handler.AgentAPIKey(handlerConfig, false))
			r.Post("/trades", handler.TradesHandler(pipeline))
			r.Post("/positions", handler.PositionsHandler(pipeline))
			r.Post("/candles", handler.CandlesHandler(pipeline))
		})
	})

	// Trusted orchestrator pull channel.
	r.With(handler.OrchestratorSecret(handlerConfig)).
		Get("/orchestrator/config", handler.OrchestratorConfigHandler(lifecycle, connections, vault))

	// User-facing surface, fronted by the journal app's session auth.
	r.Route("/accounts/{id}", func(r chi.Router) {
		r.Use(handler.ResolveUser(users))
		r.Post("/connect", handler.ConnectHandler(connections, vault, limiter, audit))
		r.Delete("/disconnect", handler.DisconnectHandler(connections, lifecycle, audit))
		r.Get("/connection", handler.ConnectionStatusHandler(connections))
		r.Post("/enable-autosync", handler.EnableAutoSyncHandler(lifecycle))
		r.Delete("/disable-autosync", handler.DisableAutoSyncHandler(lifecycle))
		r.Get("/terminal-status", handler.TerminalStatusHandler(lifecycle))
		r.Post("/trades/{tradeId}/refresh-candles", handler.RefreshCandlesHandler(pipeline))
	})

	return r
}

// marketDataProvider returns nil when no provider is configured; the
// pipeline treats that as "no fallback source".
func marketDataProvider() ingest.CandleProvider {
	client := connectors.NewMarketDataClientFromEnv()
	if client == nil {
		logger.Info("Market data fallback disabled (no base URL configured)")
		return nil
	}
	return client
}

func withTimeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func StartServer(db *gorm.DB, vault *security.Vault) {
	config := GetConfig()
	router := NewRouter(db, vault, handler.GetConfig(), config.RequestTimeout)

	addr := ":" + config.Port
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		logger.Infof("Listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server crashed")
		}
	}()

	// Shutdown on SIGINT or SIGTERM
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Shutdown error")
	}
}
