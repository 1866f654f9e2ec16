package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"

	"github.com/lucentlabs/lens/pkg/dataset"
	"github.com/lucentlabs/lens/pkg/logger"
	"github.com/lucentlabs/lens/pkg/metrics"
	"github.com/lucentlabs/lens/pkg/server"
	"github.com/lucentlabs/lens/pkg/view"
)

var (
	// Set by LDFLAGS
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const defaultListenAddr = "0.0.0.0:8080"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	verboseFlag := flag.Bool("verbose", false, "enable verbose (debug) logging")
	listenAddrFlag := flag.String("listen-addr", defaultListenAddr, "address to listen on (or set LENS_LISTEN_ADDR env var)")
	dataDirFlag := flag.String("data-dir", "Dataset", "directory containing the dashboard CSV datasets (or set LENS_DATA_DIR env var)")
	shutdownTimeoutFlag := flag.Duration("shutdown-timeout", 15*time.Second, "maximum time to wait for graceful shutdown")
	flag.Parse()

	// .env is optional; env vars override flags the way the storage
	// location is meant to be externally configurable.
	_ = godotenv.Load()

	listenAddr := *listenAddrFlag
	if v := os.Getenv("LENS_LISTEN_ADDR"); v != "" {
		listenAddr = v
	}
	dataDir := *dataDirFlag
	if v := os.Getenv("LENS_DATA_DIR"); v != "" {
		dataDir = v
	}

	log := logger.New(*verboseFlag)

	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:     dsn,
			Release: version,
		}); err != nil {
			log.Warn("sentry init failed, continuing without it", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	metrics.BuildInfo.WithLabelValues(version, commit, date).Set(1)

	loader, err := dataset.NewLoader(dataset.Config{Logger: log})
	if err != nil {
		return fmt.Errorf("failed to create loader: %w", err)
	}
	renderer, err := view.NewRenderer(view.RendererConfig{Logger: log})
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}

	srv, err := server.New(server.Config{
		ListenAddr:      listenAddr,
		DataDir:         dataDir,
		ShutdownTimeout: *shutdownTimeoutFlag,
		VersionInfo: server.VersionInfo{
			Version:  version,
			Commit:   commit,
			Date:     date,
			Instance: uuid.NewString(),
		},
		Logger:   log,
		Loader:   loader,
		Renderer: renderer,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// The only fatal load condition is zero usable datasets; partial
	// availability still serves degraded views.
	if err := srv.Load(ctx); err != nil {
		sentry.CaptureException(err)
		return err
	}

	return srv.Run(ctx)
}
