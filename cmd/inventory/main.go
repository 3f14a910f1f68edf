package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"embassy-inventory/internal/bootstrap"
	"embassy-inventory/internal/config"
	"embassy-inventory/internal/export"
	"embassy-inventory/internal/handler"
	"embassy-inventory/internal/metrics"
	"embassy-inventory/internal/repository"
	"embassy-inventory/internal/service"
	"embassy-inventory/pkg/database"
	"embassy-inventory/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run wires the application for a single command and returns its exit code.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	// 1. Config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return 1
	}

	// 2. Logger
	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(stderr, "logger: %v\n", err)
		return 1
	}
	defer func() { _ = log.Sync() }()

	// 3. Store
	m := metrics.New()
	db, err := bootstrap.Open(ctx, bootstrap.Paths{
		DataDir:   cfg.DataDir,
		DBPath:    cfg.DBPath(),
		SeedPath:  cfg.SeedPath,
		ExportDir: cfg.ExportDir,
	}, log)
	if err != nil {
		log.Error("store unavailable", zap.String("path", cfg.DBPath()), zap.Error(err))
		fmt.Fprintln(stderr, "Could not open the inventory store. See the log for details.")
		return 1
	}
	defer func() { _ = database.Close(db) }()

	// 4. Repositories and services
	productRepo := repository.NewProductRepo(db)
	outflowRepo := repository.NewOutflowRepo(db)

	invService := service.NewInventoryService(db, productRepo, outflowRepo, logger.Named(log, "inventory"), m)
	outService := service.NewOutflowService(outflowRepo, logger.Named(log, "outflow"), m)
	dashService := service.NewDashboardService(productRepo, cfg.Inventory.LowStockThreshold)

	// Legacy ledger rows are repaired on every start.
	if _, err := outService.Backfill(ctx); err != nil {
		log.Error("outflow backfill failed", zap.Error(err))
		fmt.Fprintln(stderr, "Could not repair the outflow ledger. See the log for details.")
		return 1
	}

	// 5. Session
	authService, err := newAuthService(cfg, logger.Named(log, "auth"))
	if err != nil {
		log.Error("auth setup failed", zap.Error(err))
		fmt.Fprintf(stderr, "auth: %v\n", err)
		return 1
	}

	// 6. Commands
	root := newRootCommand(routeDeps{
		inventory: invService,
		outflow:   outService,
		dashboard: dashService,
		auth:      authService,
		username:  cfg.Auth.Username,
		exporter:  export.New(cfg.ExportDir),
		metrics:   m,
	})
	code := handler.NewRunner(logger.Named(log, "cli"), m).Run(ctx, root, args, stdin, stdout, stderr)

	if err := m.WriteTextfile(cfg.Metrics.Textfile); err != nil {
		log.Warn("metrics textfile not written", zap.String("path", cfg.Metrics.Textfile), zap.Error(err))
	}
	return code
}

// newAuthService signs sessions with auth.session_secret when set, otherwise
// with a key generated once into the data directory.
func newAuthService(cfg config.Config, log *zap.Logger) (service.AuthService, error) {
	verifier, err := service.NewBcryptVerifier(cfg.Auth.Username, cfg.Auth.PasswordHash)
	if err != nil {
		return nil, err
	}

	secret := []byte(cfg.Auth.SessionSecret)
	if len(secret) == 0 {
		if secret, err = service.LoadOrCreateSecret(cfg.SecretPath()); err != nil {
			return nil, err
		}
	}
	return service.NewAuthService(verifier, secret, cfg.Auth.SessionTTL, cfg.SessionPath(), log), nil
}
