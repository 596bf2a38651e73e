// Package stub assembles the development ticket service: an in-process
// implementation of the four endpoints the client consumes, plus login.
package stub

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/ticket-client/internal/api/http"
	"github.com/spec-kit/ticket-client/internal/api/http/handlers"
	"github.com/spec-kit/ticket-client/internal/auth"
	"github.com/spec-kit/ticket-client/internal/clock"
	"github.com/spec-kit/ticket-client/internal/config"
	"github.com/spec-kit/ticket-client/internal/domain"
	"github.com/spec-kit/ticket-client/internal/events"
	"github.com/spec-kit/ticket-client/internal/observability"
	"github.com/spec-kit/ticket-client/internal/persistence"
	"github.com/spec-kit/ticket-client/internal/repository"
	"github.com/spec-kit/ticket-client/internal/service"
	"github.com/spec-kit/ticket-client/internal/worker"
)

// DemoPassword is the initial password of every seeded account.
const DemoPassword = "Password1!"

// Seed is an account created at startup with DemoPassword.
type Seed struct {
	ID        string
	Username  string
	Email     string
	Kind      domain.UserKind
	FirstName string
	LastName  string
	Staff     bool
}

// DefaultSeeds are the accounts available out of the box.
var DefaultSeeds = []Seed{
	{ID: "2021-0001", Username: "jdoe", Email: "jdoe@example.com", Kind: domain.UserKindStudent, FirstName: "Juan", LastName: "Dela Cruz"},
	{ID: "E-1001", Username: "mreyes", Email: "mreyes@example.com", Kind: domain.UserKindEmployee, FirstName: "Maria", LastName: "Reyes"},
	{ID: "E-9001", Username: "acruz", Email: "acruz@example.com", Kind: domain.UserKindEmployee, FirstName: "Ana", LastName: "Cruz", Staff: true},
}

// Options configures New.
type Options struct {
	Config config.Config
	// Seeds defaults to DefaultSeeds.
	Seeds   []Seed
	Clock   clock.Clock
	Logger  *zap.Logger
	Metrics *observability.Metrics
}

// Server is an assembled development ticket service.
type Server struct {
	App        *fiber.App
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics

	logger   *zap.Logger
	postgres *persistence.Postgres
	redis    *persistence.Redis
	worker   *worker.NotificationWorker
	cancel   context.CancelFunc
}

// New wires repositories, services and routes. Tickets go to Postgres when
// a DSN is configured; OTPs go to Redis when STUB_OTP_STORE is redis.
func New(ctx context.Context, opts Options) (*Server, error) {
	logger := observability.OrNop(opts.Logger)
	cfg := opts.Config
	if opts.Metrics == nil {
		opts.Metrics = observability.NewMetrics()
	}
	seeds := opts.Seeds
	if seeds == nil {
		seeds = DefaultSeeds
	}

	accounts := make([]repository.Account, 0, len(seeds))
	for _, seed := range seeds {
		hash, err := auth.HashPassword(DemoPassword, cfg.Stub.BcryptCost)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, repository.Account{
			ID:           seed.ID,
			Username:     seed.Username,
			Email:        seed.Email,
			Kind:         seed.Kind,
			FirstName:    seed.FirstName,
			LastName:     seed.LastName,
			PasswordHash: hash,
			Staff:        seed.Staff,
		})
	}
	userRepo := repository.NewMemoryUserRepository(accounts...)

	s := &Server{Metrics: opts.Metrics, logger: logger}

	pg, err := persistence.NewPostgres(ctx, cfg.Stub, logger)
	if err != nil {
		return nil, err
	}
	s.postgres = pg
	var ticketRepo repository.TicketRepository
	if pool := pg.PoolHandle(); pool != nil {
		if err := persistence.RunMigrations(ctx, pool, logger); err != nil {
			pg.Close()
			return nil, err
		}
		ticketRepo = repository.NewTicketRepository(pool)
	} else {
		ticketRepo = repository.NewMemoryTicketRepository()
	}

	var resetRepo repository.PasswordResetRepository
	if cfg.Stub.OTPStore == config.OTPStoreRedis {
		s.redis = persistence.NewRedis(cfg.Redis, logger)
		resetRepo = repository.NewRedisPasswordResetRepository(s.redis.Client, cfg.Session.KeyPrefix+"stub:")
	} else {
		resetRepo = repository.NewMemoryPasswordResetRepository()
	}

	s.Dispatcher = events.NewInMemoryDispatcher(logger)
	workerCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.worker = worker.StartNotificationWorker(workerCtx, s.Dispatcher, service.NewNotificationService(logger, cfg.Stub.LogOTP), logger)

	authService := service.NewAuthService(cfg.Stub, service.AuthDependencies{
		UserRepo:          userRepo,
		PasswordResetRepo: resetRepo,
		Dispatcher:        s.Dispatcher,
		Clock:             opts.Clock,
		Logger:            logger,
	})
	ticketService := service.NewTicketService(ticketRepo, logger)
	assignmentService := service.NewAssignmentService(service.AssignmentDependencies{
		TicketRepo: ticketRepo,
		Dispatcher: s.Dispatcher,
		Clock:      opts.Clock,
		Logger:     logger,
	})

	dependencies := map[string]handlers.Pinger{"postgres": pg}
	if s.redis != nil {
		dependencies["redis"] = s.redis
	}

	s.App = httptransport.NewApp(cfg.App.Name)
	httptransport.RegisterMiddlewares(s.App, logger, s.Metrics, 0)
	httptransport.RegisterRoutes(s.App, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, dependencies),
		Users:          handlers.NewUsersHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Assignments:    handlers.NewAssignmentHandler(assignmentService),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), userRepo),
	})
	return s, nil
}

// Listen serves on addr until Shutdown.
func (s *Server) Listen(addr string) error {
	s.logger.Info("ticket service listening", zap.String("addr", addr))
	return s.App.Listen(addr)
}

// Shutdown stops the HTTP server, the notification worker and storage.
func (s *Server) Shutdown() error {
	err := s.App.Shutdown()
	s.cancel()
	s.worker.Wait()
	s.postgres.Close()
	if s.redis != nil {
		_ = s.redis.Close()
	}
	return err
}
