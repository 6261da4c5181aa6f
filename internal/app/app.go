// Package app assembles the server from configuration: store, identity
// provider, services and router.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/synergia/erp-api/internal/api"
	"github.com/synergia/erp-api/internal/api/handler"
	"github.com/synergia/erp-api/internal/api/metrics"
	"github.com/synergia/erp-api/internal/core/ports"
	"github.com/synergia/erp-api/internal/core/service"
	"github.com/synergia/erp-api/internal/infrastructure/config"
	"github.com/synergia/erp-api/internal/infrastructure/db/mongo"
	"github.com/synergia/erp-api/internal/infrastructure/db/postgres"
	"github.com/synergia/erp-api/internal/infrastructure/db/redis"
	"github.com/synergia/erp-api/internal/infrastructure/identity"
)

// Store is the selected backing store behind the repository ports.
type Store struct {
	Tx          ports.Transactor
	Users       ports.UserRepository
	Clients     ports.ClientRepository
	Projects    ports.ProjectRepository
	Credentials ports.CredentialRepository

	ping  func(ctx context.Context) error
	close func(ctx context.Context) error
}

func (s *Store) Ping(ctx context.Context) error { return s.ping(ctx) }

func (s *Store) Close(ctx context.Context) error { return s.close(ctx) }

// FromPostgres exposes a gorm store through the ports.
func FromPostgres(s *postgres.Store) *Store {
	return &Store{
		Tx:          s.Tx,
		Users:       s.Users,
		Clients:     s.Clients,
		Projects:    s.Projects,
		Credentials: s.Credentials,
		ping:        s.Ping,
		close:       s.Close,
	}
}

// FromMongo exposes a MongoDB store through the ports.
func FromMongo(s *mongo.Store) *Store {
	return &Store{
		Tx:          s.Tx,
		Users:       s.Users,
		Clients:     s.Clients,
		Projects:    s.Projects,
		Credentials: s.Credentials,
		ping:        s.Ping,
		close:       s.Close,
	}
}

// OpenStore connects to the configured driver and prepares its schema.
func OpenStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Store, error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		db, err := postgres.Connect(ctx, postgres.Config{
			DSN:     cfg.Store.DatabaseURL,
			Timeout: cfg.ExternalTimeout,
			Debug:   log.GetLevel() <= zerolog.DebugLevel,
		})
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(ctx, db); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
		log.Info().Msg("connected to postgres")
		return FromPostgres(postgres.NewStore(db)), nil

	case config.DriverMongo:
		client, db, err := mongo.Connect(ctx, mongo.Config{
			URI:      cfg.Store.MongoURI,
			Database: cfg.Store.MongoDB,
			Timeout:  cfg.ExternalTimeout,
		})
		if err != nil {
			return nil, err
		}
		s := mongo.NewStore(client, db)
		if err := s.EnsureIndexes(ctx); err != nil {
			_ = s.Close(ctx)
			return nil, err
		}
		log.Info().Str("database", cfg.Store.MongoDB).Msg("connected to mongodb")
		return FromMongo(s), nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}

// Identity is the configured identity provider plus the optional Redis
// connection backing local token revocation.
type Identity struct {
	Provider    ports.IdentityProvider
	Revocations *redis.RevocationList
	redis       *goredis.Client
}

func (i *Identity) Close() error {
	if i.redis == nil {
		return nil
	}
	return i.redis.Close()
}

// OpenIdentity builds the configured identity provider.
func OpenIdentity(ctx context.Context, cfg *config.Config, store *Store, log zerolog.Logger) (*Identity, error) {
	switch cfg.Identity.Provider {
	case config.ProviderSupabase:
		sb, err := identity.NewSupabase(identity.SupabaseConfig{
			URL:            cfg.Identity.SupabaseURL,
			AnonKey:        cfg.Identity.SupabaseAnonKey,
			ServiceRoleKey: cfg.Identity.SupabaseServiceRoleKey,
			Timeout:        cfg.ExternalTimeout,
		})
		if err != nil {
			return nil, err
		}
		return &Identity{Provider: sb}, nil

	case config.ProviderLocal:
		out := &Identity{}
		var revoked identity.RevocationList
		if cfg.Redis.Addr != "" {
			rdb, err := redis.Connect(ctx, redis.Config{
				Addr:     cfg.Redis.Addr,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			})
			if err != nil {
				return nil, err
			}
			out.redis = rdb
			out.Revocations = redis.NewRevocationList(rdb)
			revoked = out.Revocations
		} else {
			log.Warn().Msg("REDIS_ADDR not set: signed-out tokens are tracked in memory only")
		}
		out.Provider = identity.NewLocal(store.Credentials, revoked, identity.LocalConfig{
			Secret:   cfg.Identity.JWTSecret,
			TokenTTL: cfg.Identity.TokenTTL,
			Issuer:   "erp-api",
		})
		return out, nil
	}
	return nil, fmt.Errorf("unknown identity provider %q", cfg.Identity.Provider)
}

// Services are the core use cases over one store and provider.
type Services struct {
	Auth      *service.AuthService
	Clients   *service.ClientService
	Projects  *service.ProjectService
	Users     *service.UserService
	Dashboard *service.DashboardService
}

func NewServices(store *Store, idp ports.IdentityProvider, log zerolog.Logger) *Services {
	return &Services{
		Auth:      service.NewAuthService(store.Users, idp, log.With().Str("component", "auth").Logger()),
		Clients:   service.NewClientService(store.Tx, store.Clients, store.Projects, log.With().Str("component", "clients").Logger()),
		Projects:  service.NewProjectService(store.Tx, store.Projects, store.Clients, log.With().Str("component", "projects").Logger()),
		Users:     service.NewUserService(store.Tx, store.Users, idp, log.With().Str("component", "users").Logger()),
		Dashboard: service.NewDashboardService(store.Clients, store.Projects),
	}
}

// Server is the assembled HTTP application.
type Server struct {
	Echo     *echo.Echo
	store    *Store
	identity *Identity
}

// NewServer opens every dependency and builds the router.
func NewServer(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Server, error) {
	store, err := OpenStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	ident, err := OpenIdentity(ctx, cfg, store, log)
	if err != nil {
		_ = store.Close(ctx)
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	svcs := NewServices(store, metrics.InstrumentIdentityProvider(ident.Provider, m), log)

	health := map[string]handler.Pinger{"database": store}
	if ident.Revocations != nil {
		health["redis"] = ident.Revocations
	}

	e := api.NewRouter(api.Deps{
		Auth:        svcs.Auth,
		Clients:     svcs.Clients,
		Projects:    svcs.Projects,
		Users:       svcs.Users,
		Dashboard:   svcs.Dashboard,
		Health:      health,
		Registry:    reg,
		Metrics:     m,
		Logger:      log,
		CORSOrigins: cfg.CORSAllowedOrigins,
	})

	return &Server{Echo: e, store: store, identity: ident}, nil
}

// Shutdown stops the HTTP server and then releases the store and Redis.
func (s *Server) Shutdown(ctx context.Context) error {
	return errors.Join(
		s.Echo.Shutdown(ctx),
		s.identity.Close(),
		s.store.Close(ctx),
	)
}
