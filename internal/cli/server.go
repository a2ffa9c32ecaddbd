package cli

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"quizcast/internal/app"
	"quizcast/internal/config"
	"quizcast/internal/domain"
	"quizcast/internal/infra/memory"
	"quizcast/internal/infra/openrouter"
	pginfra "quizcast/internal/infra/postgres"
	redisinfra "quizcast/internal/infra/redis"
	"quizcast/internal/realtime"
	transport "quizcast/internal/transport/http"
)

// NewServeCmd builds the CLI subcommand to start the server.
func NewServeCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
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

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var pool *pgxpool.Pool
	var bundb *bun.DB
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.URL)))
		bundb = bun.NewDB(sqldb, pgdialect.New())
		defer bundb.Close()
	}

	var quizStore app.QuizStore = memory.NewQuizStore(sampleQuizzes())
	if pool != nil {
		quizStore = pginfra.NewQuizRepository(pool)
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	var quizRepo app.QuizRepository
	if redisClient != nil {
		quizRepo = redisinfra.NewQuizCache(redisClient, quizStore, quizTTL)
	} else {
		quizRepo = memory.NewQuizCache(quizStore, quizTTL)
	}

	var sessionStore app.SessionStore = memory.NewSessionStore()
	if bundb != nil {
		sessionStore = pginfra.NewSessionStore(bundb)
	}

	hub := realtime.NewHub()
	sessions := app.NewSessionService(sessionStore, quizRepo, hub)

	generator := openrouter.NewGenerator(cfg.OpenRouter.APIKey, cfg.OpenRouter.Referer,
		openrouter.WithModel(cfg.OpenRouter.Model))
	quizzes := app.NewQuizService(generator, quizStore)

	mux := transport.NewMux(sessions, quizzes, hub)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quizcast on :%s", finalPort)
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

// sampleQuizzes seeds the in-memory store for running without Postgres.
func sampleQuizzes() map[string]domain.Quiz {
	return map[string]domain.Quiz{
		"quiz-demo": {
			ID:         "quiz-demo",
			Title:      "Warm-up trivia",
			Topic:      "general",
			Difficulty: domain.DifficultyEasy,
			Questions: []domain.Question{
				{
					ID:     "q1",
					Prompt: "What is 2 + 2?",
					Order:  0,
					Options: []domain.Option{
						{ID: "o1", Text: "3"},
						{ID: "o2", Text: "4"},
						{ID: "o3", Text: "5"},
						{ID: "o4", Text: "22"},
					},
					CorrectIndex: 1,
				},
				{
					ID:     "q2",
					Prompt: "Which planet is known as the Red Planet?",
					Order:  1,
					Options: []domain.Option{
						{ID: "o5", Text: "Venus"},
						{ID: "o6", Text: "Jupiter"},
						{ID: "o7", Text: "Mars"},
						{ID: "o8", Text: "Saturn"},
					},
					CorrectIndex: 2,
				},
			},
		},
	}
}
