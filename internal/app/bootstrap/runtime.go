package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	cacheadapter "github.com/viralforge/tool-feedback-portal/internal/adapters/cache"
	"github.com/viralforge/tool-feedback-portal/internal/adapters/document"
	eventadapter "github.com/viralforge/tool-feedback-portal/internal/adapters/events"
	grpcadapter "github.com/viralforge/tool-feedback-portal/internal/adapters/grpc"
	httpadapter "github.com/viralforge/tool-feedback-portal/internal/adapters/http"
	"github.com/viralforge/tool-feedback-portal/internal/adapters/memory"
	"github.com/viralforge/tool-feedback-portal/internal/adapters/postgres"
	"github.com/viralforge/tool-feedback-portal/internal/adapters/security"
	"github.com/viralforge/tool-feedback-portal/internal/application"
	"github.com/viralforge/tool-feedback-portal/internal/ports"
)

// Core is the wired application shared by the API, the worker and the CLI.
type Core struct {
	Config   Config
	Logger   *slog.Logger
	Service  *application.Service
	Outbox   ports.OutboxRepository
	Verifier ports.PrincipalVerifier
	// Signer is set only when a private key is configured or keys are ephemeral.
	Signer *security.JWTSigner

	ready     func(context.Context) error
	cleanupFn func()
}

// OpenCore loads configuration and connects the storage backends.
func OpenCore(ctx context.Context, configPath string) (*Core, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})).
		With("service", cfg.ServiceID)
	slog.SetDefault(logger)

	policy, err := LoadPolicy(cfg.GroupsPath)
	if err != nil {
		return nil, fmt.Errorf("load permission groups: %w", err)
	}

	core := &Core{Config: cfg, Logger: logger, cleanupFn: func() {}}
	deps := application.Dependencies{
		Config: application.Config{
			ServiceName:    cfg.ServiceID,
			SessionTTL:     cfg.SessionTTL,
			IdempotencyTTL: cfg.IdempotencyTTL,
		},
		Policy:    policy,
		Renderers: []ports.DocumentRenderer{document.NewCSVRenderer(), document.NewPDFRenderer()},
	}

	switch cfg.StorageDriver {
	case StorageMemory:
		logger.Warn("using in-memory storage; data is lost on restart")
		repos := memory.NewRepositories()
		deps.Visitors = repos.Visitors
		deps.Reports = repos.Reports
		deps.Artifacts = repos.Artifacts
		deps.Administrators = repos.Administrators
		deps.Catalog = repos.Catalog
		deps.Groups = repos.Groups
		deps.Idempotency = repos.Idempotency
		deps.Sessions = memory.NewSessionStore()
		core.Outbox = repos.Outbox
		core.ready = func(context.Context) error { return nil }
	default:
		db, err := postgres.Connect(ctx, cfg.DatabaseURL, cfg.MaxDBConns)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("gorm sql db: %w", err)
		}
		if err := postgres.RunMigrations(ctx, db); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		redisClient, err := cacheadapter.Connect(ctx, cfg.RedisURL)
		if err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
		sessions := cacheadapter.NewRedisSessionStore(redisClient)

		repos := postgres.NewRepositories(db)
		deps.Visitors = repos.Visitors
		deps.Reports = repos.Reports
		deps.Artifacts = repos.Artifacts
		deps.Administrators = repos.Administrators
		deps.Catalog = repos.Catalog
		deps.Groups = repos.Groups
		deps.Idempotency = repos.Idempotency
		deps.Sessions = sessions
		core.Outbox = repos.Outbox
		core.ready = func(ctx context.Context) error {
			if err := postgres.Ping(ctx, db); err != nil {
				return fmt.Errorf("postgres: %w", err)
			}
			if err := sessions.Ping(ctx); err != nil {
				return fmt.Errorf("redis: %w", err)
			}
			return nil
		}
		core.cleanupFn = func() {
			_ = redisClient.Close()
			_ = sqlDB.Close()
		}
	}

	if err := core.initKeys(); err != nil {
		core.Close()
		return nil, err
	}
	core.Service = application.NewService(deps)
	return core, nil
}

// initKeys prefers the identity service public key, then a local private
// key, then an ephemeral keypair when allowed.
func (c *Core) initKeys() error {
	cfg := c.Config
	if cfg.JWTPrivateKeyPEM != "" {
		signer, err := security.NewJWTSigner("", cfg.JWTPrivateKeyPEM, cfg.JWTIssuer, cfg.SessionTTL)
		if err != nil {
			return fmt.Errorf("init jwt signer: %w", err)
		}
		c.Signer = signer
		c.Verifier = signer.Verifier()
	}
	if cfg.JWTPublicKeyPEM != "" {
		verifier, err := security.NewJWTVerifier(cfg.JWTPublicKeyPEM, cfg.JWTIssuer)
		if err != nil {
			return fmt.Errorf("init jwt verifier: %w", err)
		}
		c.Verifier = verifier
	}
	if c.Verifier != nil {
		return nil
	}
	if !cfg.AllowEphemeralJWT {
		return errors.New("missing JWT_PUBLIC_KEY_PEM")
	}
	c.Logger.Warn("using ephemeral JWT keys for local/dev runtime")
	signer, err := security.NewEphemeralJWTSigner("", cfg.JWTIssuer, cfg.SessionTTL)
	if err != nil {
		return fmt.Errorf("init ephemeral jwt signer: %w", err)
	}
	c.Signer = signer
	c.Verifier = signer.Verifier()
	return nil
}

// Publisher picks Kafka when brokers are configured, the log otherwise.
func (c *Core) Publisher() (ports.EventPublisher, func(), error) {
	if len(c.Config.KafkaBrokers) == 0 {
		return eventadapter.NewLoggingPublisher(c.Logger), func() {}, nil
	}
	publisher, err := eventadapter.NewKafkaPublisher(c.Config.KafkaBrokers, eventadapter.DefaultTopics)
	if err != nil {
		return nil, nil, err
	}
	return publisher, func() { _ = publisher.Close() }, nil
}

func (c *Core) Close() {
	c.cleanupFn()
}

type Runtime struct {
	core       *Core
	logger     *slog.Logger
	httpServer *http.Server
	grpcServer *grpc.Server
	grpcAddr   string
	outbox     *eventadapter.OutboxWorker
	cleanupFn  func()
}

func NewRuntime(ctx context.Context, configPath string) (*Runtime, error) {
	core, err := OpenCore(ctx, configPath)
	if err != nil {
		return nil, err
	}
	cfg := core.Config
	logger := core.Logger
	logger.Info("bootstrapping tool feedback portal", "http_port", cfg.HTTPPort, "grpc_port", cfg.GRPCPort, "storage", cfg.StorageDriver)

	handler := httpadapter.NewHandler(core.Service, core.Verifier, httpadapter.Options{
		VisitorCookieTTL: cfg.VisitorCookieTTL,
		CookieSecure:     cfg.CookieSecure,
		Ready:            core.ready,
	})
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           httpadapter.NewRouter(handler),
		ReadHeaderTimeout: 5 * time.Second,
	}

	grpcServer := grpc.NewServer()
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthSrv)
	healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	grpcadapter.Register(grpcServer, grpcadapter.NewDirectoryServer(core.Service))

	publisher, closePublisher, err := core.Publisher()
	if err != nil {
		core.Close()
		return nil, fmt.Errorf("init publisher: %w", err)
	}
	outbox := eventadapter.NewOutboxWorker(
		logger,
		core.Outbox,
		publisher,
		cfg.OutboxPollInterval,
		cfg.OutboxBatchSize,
		cfg.OutboxClaimTTL,
		cfg.OutboxMaxRetries,
	)

	return &Runtime{
		core:       core,
		logger:     logger,
		httpServer: httpServer,
		grpcServer: grpcServer,
		grpcAddr:   fmt.Sprintf(":%d", cfg.GRPCPort),
		outbox:     outbox,
		cleanupFn: func() {
			closePublisher()
			core.Close()
		},
	}, nil
}

func (r *Runtime) RunAPI(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	lis, err := net.Listen("tcp", r.grpcAddr)
	if err != nil {
		r.cleanupFn()
		return fmt.Errorf("listen gRPC: %w", err)
	}

	errCh := make(chan error, 2)
	go func() {
		r.logger.Info("http server started", "addr", r.httpServer.Addr)
		if err := r.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()
	go func() {
		r.logger.Info("grpc server started", "addr", lis.Addr().String())
		if err := r.grpcServer.Serve(lis); err != nil {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()
	// The in-memory outbox is process-local, so the API relays it itself.
	if r.core.Config.StorageDriver == StorageMemory {
		go func() { _ = r.outbox.Run(ctx) }()
	}

	select {
	case <-ctx.Done():
		r.logger.Info("shutdown signal received")
	case err := <-errCh:
		r.logger.Error("server failure", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = r.httpServer.Shutdown(shutdownCtx)
	r.grpcServer.GracefulStop()
	r.cleanupFn()
	return nil
}

func (r *Runtime) RunWorker(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	r.logger.Info("outbox worker started")
	err := r.outbox.Run(ctx)
	r.cleanupFn()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
