package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"quizis-session-service/internal/app"
	"quizis-session-service/internal/config"
	"quizis-session-service/internal/infra/memory"
	pgbank "quizis-session-service/internal/infra/postgres"
	redisstore "quizis-session-service/internal/infra/redis"
	"quizis-session-service/internal/provider"
	transport "quizis-session-service/internal/transport/http"
)

const defaultProviderURL = "https://opentdb.com"

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz session server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	// Question source: the Postgres bank when configured, the public trivia
	// API otherwise. Either way the category listing is cached.
	var source provider.Source
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		source = pgbank.NewQuestionBank(pool)
	} else {
		baseURL := cfg.Provider.BaseURL
		if baseURL == "" {
			baseURL = defaultProviderURL
		}
		source = provider.NewTriviaClient(baseURL, config.TTLDuration(cfg.Provider.Timeout, 10*time.Second))
	}
	categoryTTL := config.TTLDuration(cfg.Quiz.CategoryTTL, 10*time.Minute)
	questionProvider := provider.WithCategoryCache(source, categoryTTL)

	var (
		progress app.ProgressStore
		results  app.ResultStore
		users    app.UserStore
	)
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		progressTTL := config.TTLDuration(cfg.Quiz.ProgressTTL, 24*time.Hour)
		resultTTL := config.TTLDuration(cfg.Quiz.ResultTTL, 24*time.Hour)
		progress = redisstore.NewProgressStore(client, progressTTL)
		results = redisstore.NewResultStore(client, resultTTL)
		users = redisstore.NewUserStore(client)
	} else {
		progress = memory.NewProgressStore()
		results = memory.NewResultStore()
		users = memory.NewUserStore()
	}

	controller := app.NewSessionController(progress, results, questionProvider)
	auth := app.NewAuthService(users)

	revealDelay := config.TTLDuration(cfg.Quiz.RevealDelay, 1500*time.Millisecond)
	wsHandler := transport.NewWSHandler(controller, revealDelay)
	apiHandler := transport.NewAPIHandler(auth, questionProvider)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	mux.HandleFunc("POST /api/auth/register", apiHandler.Register)
	mux.HandleFunc("POST /api/auth/login", apiHandler.Login)
	mux.HandleFunc("GET /api/categories", apiHandler.Categories)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quiz session service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
