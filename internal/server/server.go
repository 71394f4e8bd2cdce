package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/inkwell-blog/apiserver/config"
	"github.com/inkwell-blog/apiserver/internal/auth"
	"github.com/inkwell-blog/apiserver/internal/db"
	"github.com/inkwell-blog/apiserver/internal/events"
	"github.com/inkwell-blog/apiserver/internal/handlers"
	"github.com/inkwell-blog/apiserver/internal/media"
	"github.com/inkwell-blog/apiserver/internal/services"
	"github.com/inkwell-blog/apiserver/internal/store"
)

// Server wraps the HTTP server and its attached resources.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	bus        *events.Bus
	denylist   *auth.Denylist
	cancel     context.CancelFunc
}

// New constructs a fully wired Server from config.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	if strings.TrimSpace(cfg.Auth.Secret) == "" {
		return nil, errors.New("AUTH_SECRET is required")
	}

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	bus, err := newBus(ctx, cfg)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	library, err := newLibrary(ctx, cfg)
	if err != nil {
		_ = bus.Close()
		_ = dbConn.Close()
		return nil, err
	}

	accountRepo := store.NewAccountRepository(dbConn)
	postRepo := store.NewPostRepository(dbConn)
	commentRepo := store.NewCommentRepository(dbConn)

	cascade := services.NewCascade(postRepo, commentRepo, library, bus)
	accountService := services.NewAccountService(accountRepo, postRepo, cascade)
	postService := services.NewPostService(postRepo, cascade)
	commentService := services.NewCommentService(commentRepo, postRepo)

	tokens := auth.NewTokens(cfg.Auth.Secret, cfg.Auth.TokenTTL)
	denylist := auth.NewDenylist(cfg.Redis)
	guard := handlers.RequireSession(tokens, denylist, cfg.Auth.CookieName)

	authHandler := handlers.NewAuthHandler(accountService, tokens, denylist, cfg.Auth.CookieName, cfg.IsProduction())
	accountHandler := handlers.NewAccountHandler(accountService)
	postHandler := handlers.NewPostHandler(postService, accountService)
	commentHandler := handlers.NewCommentHandler(commentService)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)
	router.Route("/auth", func(r chi.Router) {
		handlers.AuthRouter(r, authHandler, guard)
	})
	router.Route("/accounts", func(r chi.Router) {
		handlers.AccountRouter(r, accountHandler, guard)
	})
	router.Route("/posts", func(r chi.Router) {
		handlers.PostRouter(r, postHandler, guard)
	})
	router.Route("/comments", func(r chi.Router) {
		handlers.CommentRouter(r, commentHandler, guard)
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8000
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	workerCtx, cancel := context.WithCancel(ctx)
	if bus != nil {
		reconciler := services.NewReconciler(cascade, bus)
		go func() {
			if err := reconciler.Run(workerCtx); err != nil && !errors.Is(err, context.Canceled) {
				fmt.Fprintf(os.Stderr, "reconciler stopped: %v\n", err)
			}
		}()
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		bus:        bus,
		denylist:   denylist,
		cancel:     cancel,
	}, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown stops the reconciler and releases attached resources.
func (s *Server) Shutdown() error {
	if s.cancel != nil {
		s.cancel()
	}
	_ = s.bus.Close()
	_ = s.denylist.Close()
	if s.db != nil {
		_ = s.db.Close()
	}
	return s.httpServer.Close()
}

func newBus(ctx context.Context, cfg config.Config) (*events.Bus, error) {
	switch cfg.MQ.Provider {
	case "":
		return nil, nil
	case "rabbitmq":
		backend, err := events.NewRabbitMQBackend(cfg.MQ.RabbitMQ)
		if err != nil {
			return nil, err
		}
		return events.NewBus(backend, cfg.MQ.Channel), nil
	case "pubsub":
		backend, err := events.NewPubSubBackend(ctx, cfg.MQ.PubSub)
		if err != nil {
			return nil, err
		}
		return events.NewBus(backend, cfg.MQ.Channel), nil
	default:
		return nil, fmt.Errorf("unknown mq provider %q", cfg.MQ.Provider)
	}
}

func newLibrary(ctx context.Context, cfg config.Config) (*media.Library, error) {
	var backend media.ObjectStore
	switch cfg.Media.Provider {
	case "":
		return nil, nil
	case "minio":
		store, err := media.NewMinioStore(cfg.Media.Minio)
		if err != nil {
			return nil, err
		}
		backend = store
	case "gcs":
		store, err := media.NewGCSStore(ctx, cfg.Media.GCS)
		if err != nil {
			return nil, err
		}
		backend = store
	default:
		return nil, fmt.Errorf("unknown media provider %q", cfg.Media.Provider)
	}

	library := media.NewLibrary(backend)
	if err := library.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return library, nil
}
