package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"

	"github.com/gizetz/gbairai/internal/auth"
	"github.com/gizetz/gbairai/internal/config"
	"github.com/gizetz/gbairai/internal/dm"
	"github.com/gizetz/gbairai/internal/email"
	"github.com/gizetz/gbairai/internal/handlers"
	"github.com/gizetz/gbairai/internal/moderation"
	"github.com/gizetz/gbairai/internal/notify"
	"github.com/gizetz/gbairai/internal/store/sqlstore"
	"github.com/gizetz/gbairai/internal/ws"
)

const shutdownTimeout = 10 * time.Second

func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:          "serve",
		Short:        "Run the HTTP API and notification worker",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(rootOpts)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, log)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "http service address (overrides server.addr)")
	return cmd
}

// app is the wired service. close releases everything newApp opened.
type app struct {
	handler http.Handler
	close   func()
}

func newApp(ctx context.Context, cfg *config.Config, log *slog.Logger) (*app, error) {
	st, err := sqlstore.New(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	closers := []func(){func() { st.Close() }}
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	hubCtx, stopHub := context.WithCancel(ctx)
	closers = append(closers, stopHub)
	hub := ws.NewHub(log)
	go hub.Run(hubCtx)

	mailer := email.NewSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From, cfg.Server.BaseURL, log)
	notifiers := notify.Fanout{hub}

	if cfg.Queue.RedisURL != "" {
		redisOpt, err := asynq.ParseRedisURI(cfg.Queue.RedisURL)
		if err != nil {
			cleanup()
			return nil, err
		}
		client := asynq.NewClient(redisOpt)
		closers = append(closers, func() { client.Close() })
		notifiers = append(notifiers, notify.NewQueueEmitter(client, cfg.Queue.Name))

		srv := asynq.NewServer(redisOpt, asynq.Config{
			Concurrency: cfg.Queue.Concurrency,
			Queues:      map[string]int{cfg.Queue.Name: 1},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				log.Warn("notification task failed", "type", task.Type(), "err", err)
			}),
		})
		mux := asynq.NewServeMux()
		notify.NewWorker(hub, st, mailer, log).Register(mux)
		if err := srv.Start(mux); err != nil {
			cleanup()
			return nil, err
		}
		closers = append(closers, srv.Shutdown)
		log.Info("notification worker started", "queue", cfg.Queue.Name)
	}

	svc := dm.NewService(st, dm.Options{
		Notifier:             notifiers,
		Logger:               log,
		TombstonePlaceholder: cfg.Messages.TombstonePlaceholder,
	})
	signer := auth.NewSigner(cfg.Auth.CookieSecret)

	router := handlers.NewRouter(handlers.RouterConfig{
		Auth: &handlers.AuthHandler{
			Store:         st,
			Signer:        signer,
			Mailer:        mailer,
			Logger:        log,
			SecureCookies: strings.HasPrefix(cfg.Server.BaseURL, "https://"),
		},
		DM: &handlers.DMHandler{
			Service: svc,
			Policy:  moderation.Basic{MaxLength: cfg.Messages.MaxLength},
			Logger:  log,
		},
		Signer:         signer,
		Logger:         log,
		RequestTimeout: cfg.Server.RequestTimeout,
		WebSocket:      http.HandlerFunc(hub.ServeWs),
	})
	return &app{handler: router, close: cleanup}, nil
}

func serve(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.close()

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           a.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting server", "addr", cfg.Server.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
