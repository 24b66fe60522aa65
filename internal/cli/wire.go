package cli

import (
	"context"
	"fmt"
	"log"

	"quiz-platform/internal/cache"
	"quiz-platform/internal/config"
	"quiz-platform/internal/db"
	"quiz-platform/internal/event"
	"quiz-platform/internal/handlers"
	"quiz-platform/internal/middleware"
	"quiz-platform/internal/models"
	"quiz-platform/internal/repository"
	"quiz-platform/internal/repository/memory"
	"quiz-platform/internal/server"
	"quiz-platform/internal/service"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type stores struct {
	quizzes service.QuizStore
	results service.ResultStore
	users   service.UserStore
	tx      service.Transactor
	health  server.HealthCheck
}

// app holds the wired router and whatever must be closed on shutdown.
type app struct {
	router  *server.Router
	closers []func()
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func wire(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{}

	st, err := openStores(ctx, cfg, a)
	if err != nil {
		a.close()
		return nil, err
	}

	var lb service.LeaderboardCache = cache.Passthrough{}
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			log.Printf("Warning: redis at %s is unreachable, leaderboard cache will retry per request: %v", cfg.Redis.Addr, err)
		}
		a.closers = append(a.closers, func() { _ = client.Close() })
		leaderboards := cache.NewLeaderboards(client, cfg.Redis.TTL)
		if cfg.Server.RequestTimeout > 0 {
			leaderboards.LoadTimeout = cfg.Server.RequestTimeout
		}
		lb = leaderboards
	} else {
		log.Println("Redis not configured, leaderboards will be computed on every request")
	}

	var events event.Publisher = event.LogPublisher{}
	if cfg.RabbitMQ.URI != "" && cfg.RabbitMQ.Exchange != "" {
		publisher, err := event.NewEventPublisher(cfg.RabbitMQ.URI, cfg.RabbitMQ.Exchange, cfg.Server.ServiceName)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
		}
		a.closers = append(a.closers, publisher.Close)
		events = publisher
	} else {
		log.Println("RabbitMQ not configured, events will only be logged")
	}

	quizHandler := handlers.NewQuizHandler(
		service.NewQuizService(st.quizzes, lb, events),
		service.NewAttemptService(st.quizzes, st.results, lb, events),
		service.NewTerminationService(st.users, st.results, st.tx, lb, events),
		service.NewVisibilityService(st.quizzes, st.results, st.users),
		service.NewLeaderboardService(st.results, st.users, lb),
		cfg.Server.RequestTimeout,
	)
	a.router = &server.Router{
		Config: cfg,
		Quiz:   quizHandler,
		Auth:   middleware.NewAuthenticator(cfg.Auth.JWTSecret, cfg.Auth.TokenExpiry, cfg.Auth.TrustGatewayHeaders),
		Health: st.health,
	}
	return a, nil
}

func openStores(ctx context.Context, cfg *config.Config, a *app) (*stores, error) {
	if cfg.Storage.Driver == config.StorageMemory {
		log.Println("Using in-memory storage; data is lost on restart")
		store := memory.NewStore()
		seedUsers(store, cfg.Storage.SeedUsers)
		return &stores{
			quizzes: store.Quizzes(),
			results: store.Results(),
			users:   store.Users(),
			tx:      memory.Transactor{},
		}, nil
	}

	client, err := db.Connect(ctx, cfg.Mongo)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func() { db.Disconnect(client) })

	database := client.Database(cfg.Mongo.Database)
	if err := repository.EnsureIndexes(ctx, database); err != nil {
		log.Printf("Warning: failed to ensure indexes: %v", err)
	}
	return &stores{
		quizzes: repository.NewQuizRepository(database),
		results: repository.NewResultRepository(database),
		users:   repository.NewUserRepository(database),
		tx:      repository.NewMongoTransactor(client, cfg.Mongo.Transactions),
		health:  mongoHealth(client),
	}, nil
}

// seedUsers makes the configured accounts known to the memory driver, which
// otherwise has no users and rejects every termination with 404.
func seedUsers(store *memory.Store, users []config.SeedUser) {
	for _, u := range users {
		id, err := primitive.ObjectIDFromHex(u.ID)
		if err != nil {
			log.Printf("Warning: skipping seed user %q: %v", u.ID, err)
			continue
		}
		store.PutUser(models.User{ID: id, Name: u.Name, Email: u.Email})
	}
	if len(users) > 0 {
		log.Printf("Seeded %d users into in-memory storage", len(users))
	}
}

func mongoHealth(client *mongo.Client) server.HealthCheck {
	return func(ctx context.Context) error {
		return db.Ping(ctx, client)
	}
}
