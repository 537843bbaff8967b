package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/robfig/cron/v3"

	"newsportal/internal/config"
	hhttp "newsportal/internal/handler/http"
	hauth "newsportal/internal/handler/http/auth"
	"newsportal/internal/infra/adapter/persistence/memory"
	pgRepo "newsportal/internal/infra/adapter/persistence/postgres"
	"newsportal/internal/infra/db"
	"newsportal/internal/infra/events"
	"newsportal/internal/infra/notifier"
	"newsportal/internal/infra/worker"
	"newsportal/internal/observability/logging"
	"newsportal/internal/repository"
	"newsportal/internal/resilience/circuitbreaker"
	artUC "newsportal/internal/usecase/article"
	"newsportal/internal/usecase/notify"
	principalUC "newsportal/internal/usecase/principal"
	pubUC "newsportal/internal/usecase/publisher"
	subUC "newsportal/internal/usecase/subscription"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger := initLogger(cfg)

	st, err := initStorage(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize storage", slog.Any("error", err))
		os.Exit(1)
	}
	defer st.close(logger)

	runServer(cfg, logger, setupServer(cfg, logger, st))
}

func initLogger(cfg *config.Config) *slog.Logger {
	logger := logging.NewLogger(cfg.Log.Level)
	slog.SetDefault(logger)
	return logger
}

// storage is either PostgreSQL or the in-memory store.
type storage struct {
	db    *sql.DB // nil for the in-memory store
	repos repository.Repositories
	tx    repository.Transactor
}

func (s *storage) close(logger *slog.Logger) {
	if s.db == nil {
		return
	}
	if err := s.db.Close(); err != nil {
		logger.Error("failed to close database", slog.Any("error", err))
	}
}

// initStorage opens the database and runs migrations, or falls back to the
// in-memory store when no database URL is configured.
func initStorage(cfg *config.Config, logger *slog.Logger) (*storage, error) {
	if cfg.UsesMemoryStore() {
		logger.Warn("DATABASE_URL not set, using the in-memory store; data is lost on restart")
		store := memory.NewStore()
		return &storage{repos: store.Repositories(), tx: store}, nil
	}

	database, err := db.Open(cfg.Database.URL, cfg.Database.Pool)
	if err != nil {
		return nil, err
	}
	if cfg.Database.AutoMigrate {
		if err := db.MigrateUp(database); err != nil {
			_ = database.Close()
			return nil, err
		}
	}
	return &storage{
		db:    database,
		repos: pgRepo.NewRepositories(circuitbreaker.NewDBCircuitBreaker(database)),
		tx:    pgRepo.NewTransactor(database),
	}, nil
}

// ServerComponents holds components needed for server operation and cleanup.
type ServerComponents struct {
	Handler     http.Handler
	Bus         *events.Bus
	Consumer    *events.Consumer
	Dispatcher  *notify.Dispatcher
	Sweeper     *worker.Sweeper
	AuthLimiter *hhttp.IPRateLimiter
}

// setupServer wires the use cases, the notification pipeline and the routes.
func setupServer(cfg *config.Config, logger *slog.Logger, st *storage) *ServerComponents {
	bus := events.NewBus(int64(cfg.Notify.BufferSize), logger)

	principals := principalUC.NewService(st.repos.Principals, st.tx, cfg.Auth.BcryptCost)
	articles := &artUC.Service{
		Tx:         st.tx,
		Articles:   st.repos.Articles,
		Publishers: st.repos.Publishers,
		Hook:       bus,
	}
	publishers := &pubUC.Service{Tx: st.tx, Publishers: st.repos.Publishers, Principals: st.repos.Principals}
	subscriptions := &subUC.Service{Tx: st.tx, Subscriptions: st.repos.Subscriptions}

	dispatcher := notify.NewDispatcher(st.repos, newEmailChannel(cfg), newBroadcasters(cfg), notify.Config{
		MaxConcurrent: cfg.Notify.Workers,
		EventTimeout:  cfg.Notify.EventTimeout,
	})
	for _, ch := range dispatcher.ChannelHealth() {
		logger.Info("notification channel configured",
			slog.String("channel", ch.Name),
			slog.Bool("enabled", ch.Enabled))
	}

	health := &hhttp.HealthHandler{Version: cfg.Version, Channels: dispatcher.ChannelHealth}
	ready := &hhttp.ReadyHandler{}
	if st.db != nil {
		health.DB = st.db
		ready.DB = st.db
	}

	authLimiter := hhttp.NewIPRateLimiter(cfg.Server.AuthRatePerMinute)
	handler := hhttp.NewRouter(hhttp.Deps{
		Logger:        logger,
		Issuer:        hauth.NewIssuer(cfg.Auth.Secret, cfg.Auth.TokenTTL),
		Principals:    principals,
		Articles:      articles,
		Resolver:      &artUC.Resolver{Articles: st.repos.Articles},
		Publishers:    publishers,
		Subscriptions: subscriptions,
		Health:        health,
		Ready:         ready,
		AuthLimiter:   authLimiter,
		MaxBodyBytes:  cfg.Server.MaxBodyBytes,
	})

	return &ServerComponents{
		Handler:     handler,
		Bus:         bus,
		Consumer:    events.NewConsumer(bus, dispatcher, logger),
		Dispatcher:  dispatcher,
		Sweeper:     worker.NewSweeper(st.repos.Outbox, bus, cfg.Notify.Sweep, logger),
		AuthLimiter: authLimiter,
	}
}

func newEmailChannel(cfg *config.Config) *notify.EmailChannel {
	if !cfg.Mail.Enabled {
		return notify.NewEmailChannel(nil, false)
	}
	return notify.NewEmailChannel(notifier.NewSMTPMailer(notifier.SMTPConfig{
		Host:     cfg.Mail.Host,
		Port:     cfg.Mail.Port,
		Username: cfg.Mail.Username,
		Password: cfg.Mail.Password,
		From:     cfg.Mail.From,
		Timeout:  cfg.Mail.Timeout,
	}), true)
}

func newBroadcasters(cfg *config.Config) []notify.Broadcaster {
	var social, desk notifier.Publisher
	if cfg.Social.Enabled {
		social = notifier.NewSocialPoster(notifier.SocialConfig{
			Endpoint:      cfg.Social.Endpoint,
			TokenURL:      cfg.Social.TokenURL,
			ClientID:      cfg.Social.ClientID,
			ClientSecret:  cfg.Social.ClientSecret,
			Scopes:        cfg.Social.Scopes,
			RatePerMinute: cfg.Social.RatePerMinute,
			MaxRetries:    cfg.Social.MaxRetries,
			Timeout:       cfg.Social.Timeout,
		})
	}
	if cfg.Newsroom.Enabled {
		desk = notifier.NewNewsroomDesk(notifier.SlackConfig{
			WebhookURL: cfg.Newsroom.WebhookURL,
			Channel:    cfg.Newsroom.Channel,
			Timeout:    cfg.Newsroom.Timeout,
		})
	}
	return []notify.Broadcaster{
		notify.NewSocialChannel(social, cfg.Social.Enabled),
		notify.NewNewsroomChannel(desk, cfg.Newsroom.Enabled),
	}
}

// runServer starts the HTTP server and the background workers, then handles
// graceful shutdown.
func runServer(cfg *config.Config, logger *slog.Logger, c *ServerComponents) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	consumerDone := make(chan struct{})
	go func() {
		defer close(consumerDone)
		if err := c.Consumer.Run(ctx); err != nil {
			logger.Error("approval event consumer stopped", slog.Any("error", err))
		}
	}()
	select {
	case <-c.Consumer.Ready():
	case <-consumerDone:
		logger.Error("approval event consumer failed to start")
		os.Exit(1)
	}

	if err := c.Sweeper.Start(); err != nil {
		logger.Error("failed to start outbox sweeper", slog.Any("error", err))
		os.Exit(1)
	}

	// アイドルな IP のリミッタを定期的に破棄
	cleanup := cron.New()
	if _, err := cleanup.AddFunc("@every 5m", func() {
		remaining := c.AuthLimiter.Cleanup()
		logger.Debug("auth rate limiter cleanup", slog.Int("active_ips", remaining))
	}); err != nil {
		logger.Error("failed to schedule rate limiter cleanup", slog.Any("error", err))
		os.Exit(1)
	}
	cleanup.Start()

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           c.Handler,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		logger.Info("server starting",
			slog.String("addr", cfg.Server.Addr),
			slog.String("version", cfg.Version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	// 新規リクエストを止めてから承認イベントの処理を止める
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}
	<-cleanup.Stop().Done()
	c.Sweeper.Stop(shutdownCtx)

	if err := c.Bus.Close(); err != nil {
		logger.Error("event bus close failed", slog.Any("error", err))
	}
	cancel()
	select {
	case <-consumerDone:
	case <-shutdownCtx.Done():
		logger.Warn("approval event consumer did not stop in time")
	}

	if err := c.Dispatcher.Shutdown(shutdownCtx); err != nil {
		logger.Error("notification dispatcher shutdown failed", slog.Any("error", err))
	}
	logger.Info("server stopped")
}
