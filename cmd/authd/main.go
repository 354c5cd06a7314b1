package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/dmitrymomot/authkit/pkg/auth"
	"github.com/dmitrymomot/authkit/pkg/config"
	"github.com/dmitrymomot/authkit/pkg/handler"
	"github.com/dmitrymomot/authkit/pkg/httpserver"
	"github.com/dmitrymomot/authkit/pkg/logger"
	"github.com/dmitrymomot/authkit/pkg/mongodb"
	"github.com/dmitrymomot/authkit/pkg/mongostore"
	"github.com/dmitrymomot/authkit/pkg/redis"
	"github.com/dmitrymomot/authkit/pkg/session"
)

func main() {
	if err := run(context.Background()); err != nil {
		slog.Error("authd exited with error", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var logCfg logger.Config
	config.MustLoad(&logCfg)
	log := logger.NewFromConfig(logCfg, logger.WithAttrs(slog.String("app", "authd")))

	var mongoCfg mongodb.Config
	var authCfg auth.Config
	var serverCfg httpserver.Config
	config.MustLoad(&mongoCfg)
	config.MustLoad(&authCfg)
	config.MustLoad(&serverCfg)

	// The service is useless without its database; fail fast instead of
	// limping along and erroring on every request.
	connector := mongodb.NewConnector(mongoCfg)
	if _, err := connector.Connect(ctx); err != nil {
		return errors.Join(errors.New("database connection failed"), err)
	}
	defer func() {
		if err := connector.Close(context.Background()); err != nil {
			log.Error("failed to close database connection", logger.Error(err))
		}
	}()

	db, err := connector.Database(ctx)
	if err != nil {
		return err
	}
	if err := mongostore.EnsureIndexes(ctx, db); err != nil {
		return err
	}

	users := mongostore.NewUserStore(db)
	accounts := mongostore.NewAccountStore(db)
	states := mongostore.NewStateStore(db)

	// Sessions live in Redis when configured, falling back to MongoDB.
	var sessions session.Store = mongostore.NewSessionStore(db)
	healthchecks := []func(context.Context) error{connector.Healthcheck()}

	var redisCfg redis.Config
	config.MustLoad(&redisCfg)
	if redisCfg.Enabled() {
		redisClient, err := redis.Connect(ctx, redisCfg)
		if err != nil {
			return errors.Join(errors.New("redis connection failed"), err)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("failed to close redis connection", logger.Error(err))
			}
		}()
		sessions = session.NewRedisStore(redisClient)
		healthchecks = append(healthchecks, redis.Healthcheck(redisClient))
	}

	gw := auth.New(users, sessions,
		auth.WithLogger(log),
		auth.WithSessionTTL(authCfg.SessionTTL),
		auth.WithStateTTL(authCfg.StateTTL),
		auth.WithTokenSecret(authCfg.TokenSecret),
		auth.WithResetTokenTTL(authCfg.ResetTokenTTL),
		auth.WithProviders(buildRegistry(log), accounts, states),
	)

	h := handler.New(gw,
		handler.WithLogger(log),
		handler.WithSessionTTL(authCfg.SessionTTL),
		handler.WithTransport(session.NewCompositeTransport(
			session.NewCookieTransport(session.DefaultCookieName),
			session.NewHeaderTransport("Authorization"),
		)),
		handler.WithHealthcheck(func(ctx context.Context) error {
			for _, check := range healthchecks {
				if err := check(ctx); err != nil {
					return err
				}
			}
			return nil
		}),
	)

	srv := httpserver.New(serverCfg, httpserver.WithLogger(log))
	return srv.Run(ctx, h.Router())
}

// buildRegistry registers every provider whose credentials are present in
// the environment. A missing provider config disables that provider, it is
// not an error.
func buildRegistry(log *slog.Logger) *auth.Registry {
	registry := auth.NewRegistry()

	var github auth.GitHubConfig
	if err := config.Load(&github); err == nil {
		registry.Register(auth.NewGitHubAdapter(github))
	}

	var google auth.GoogleConfig
	if err := config.Load(&google); err == nil {
		registry.Register(auth.NewGoogleAdapter(google))
	}

	var twitter auth.TwitterConfig
	if err := config.Load(&twitter); err == nil {
		registry.Register(auth.NewTwitterAdapter(twitter))
	}

	log.Info("identity providers configured",
		slog.Any("providers", registry.IDs()),
	)
	return registry
}
