package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"

	"github.com/alfredjeanlab/rolodex/internal/config"
	"github.com/alfredjeanlab/rolodex/internal/events"
	"github.com/alfredjeanlab/rolodex/internal/export"
	"github.com/alfredjeanlab/rolodex/internal/server"
	"github.com/alfredjeanlab/rolodex/internal/store"
	"github.com/alfredjeanlab/rolodex/internal/store/postgres"
	rolosync "github.com/alfredjeanlab/rolodex/internal/sync"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:     "serve",
	Short:   "Run the HTTP and gRPC servers and the snapshot scheduler",
	GroupID: "system",
	// serve talks to the database directly; skip the client setup.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

		envFile, _ := cmd.Flags().GetString("env-file")
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", envFile, err)
		}
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		app, err := newServeApp(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		return app.run(cmd.Context())
	},
}

// serveApp owns the long-running components of rx serve.
type serveApp struct {
	cfg       *config.Config
	logger    *slog.Logger
	store     store.Store
	publisher events.Publisher
	grpc      *grpc.Server
	http      *http.Server
	scheduler *rolosync.Scheduler
}

func newServeApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*serveApp, error) {
	db, err := postgres.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	app := &serveApp{cfg: cfg, logger: logger, store: db, publisher: &events.NoopPublisher{}}
	if cfg.NATSURL != "" {
		pub, err := events.NewNATSPublisher(cfg.NATSURL)
		if err != nil {
			db.Close()
			return nil, err
		}
		app.publisher = pub
		logger.Info("events enabled", "nats_url", cfg.NATSURL)
	}

	envelope := export.Options{Company: cfg.ExportCompany, ExportedBy: cfg.ExportAuthor}
	srv := server.NewServer(db, app.publisher, envelope, logger)
	app.grpc = server.NewGRPCServer(srv)
	app.http = &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.NewHTTPHandler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if cfg.SnapshotsEnabled() {
		if dests := snapshotDestinations(ctx, cfg, logger); len(dests) > 0 {
			app.scheduler = rolosync.NewScheduler(db, dests, cfg.SnapshotInterval, envelope, app.publisher, logger)
		}
	}
	return app, nil
}

// run serves until ctx is done or a listener fails, then shuts everything
// down.
func (a *serveApp) run(ctx context.Context) error {
	lis, err := net.Listen("tcp", a.cfg.GRPCAddr)
	if err != nil {
		a.close()
		return fmt.Errorf("listening on %s: %w", a.cfg.GRPCAddr, err)
	}

	errc := make(chan error, 2)
	go func() {
		a.logger.Info("gRPC server listening", "addr", a.cfg.GRPCAddr)
		if err := a.grpc.Serve(lis); err != nil {
			errc <- fmt.Errorf("gRPC server: %w", err)
		}
	}()
	go func() {
		a.logger.Info("HTTP server listening", "addr", a.cfg.HTTPAddr)
		if err := a.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- fmt.Errorf("HTTP server: %w", err)
		}
	}()
	if a.scheduler != nil {
		a.scheduler.Start()
		a.logger.Info("snapshot scheduler started", "interval", a.cfg.SnapshotInterval)
	}

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("received signal, shutting down")
	case runErr = <-errc:
		a.logger.Error("server failed, shutting down", "err", runErr)
	}

	a.shutdown()
	return runErr
}

func (a *serveApp) shutdown() {
	if a.scheduler != nil {
		a.scheduler.Stop()
	}
	a.grpc.GracefulStop()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.http.Shutdown(ctx); err != nil {
		a.logger.Error("HTTP server shutdown error", "err", err)
	}
	a.close()
	a.logger.Info("shutdown complete")
}

func (a *serveApp) close() {
	if err := a.publisher.Close(); err != nil {
		a.logger.Warn("closing publisher", "err", err)
	}
	if err := a.store.Close(); err != nil {
		a.logger.Warn("closing store", "err", err)
	}
}

// snapshotDestinations builds the configured snapshot destinations. One
// that fails to initialize is logged and skipped.
func snapshotDestinations(ctx context.Context, cfg *config.Config, logger *slog.Logger) []rolosync.Destination {
	var dests []rolosync.Destination
	if cfg.SnapshotDir != "" {
		dests = append(dests, rolosync.NewFileDestination(cfg.SnapshotDir))
	}
	if cfg.S3Bucket != "" {
		d, err := rolosync.NewS3Destination(ctx, cfg.S3Bucket, cfg.S3Prefix, cfg.S3Region, cfg.S3Endpoint)
		if err != nil {
			logger.Error("S3 snapshot destination disabled", "bucket", cfg.S3Bucket, "err", err)
		} else {
			dests = append(dests, d)
		}
	}
	if cfg.GitRepo != "" {
		dests = append(dests, rolosync.NewGitDestination(cfg.GitRepo, cfg.GitDir, cfg.GitBranch))
	}
	for _, d := range dests {
		logger.Info("snapshot destination enabled", "destination", d.Name())
	}
	return dests
}

func init() {
	serveCmd.Flags().String("env-file", ".env", "dotenv file loaded before reading the environment")
}
