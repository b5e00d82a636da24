// Command navmcp serves the navigation engine's MCP tools over stdio: a
// single binary that wires up logging, tracing, and Prometheus metrics,
// then blocks on the stdio transport until the host closes stdin.
//
// The engine itself performs no I/O, so there are no outbound clients or
// rate limiters to configure; everything a tool call needs arrives in its
// arguments.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"log/slog"

	"github.com/NERVsystems/navengine/pkg/monitoring"
	"github.com/NERVsystems/navengine/pkg/server"
	"github.com/NERVsystems/navengine/pkg/tracing"
)

// BuildVersion is set at release time via -ldflags; it defaults to "dev"
// for local builds.
var BuildVersion = "dev"

var (
	showVersionFlag  bool
	debug            bool
	enableMonitoring bool
	monitoringAddr   string
)

func init() {
	flag.BoolVar(&showVersionFlag, "version", false, "Display version information")
	flag.BoolVar(&debug, "debug", false, "Enable debug logging")
	flag.BoolVar(&enableMonitoring, "enable-monitoring", true, "Enable Prometheus metrics endpoint")
	flag.StringVar(&monitoringAddr, "monitoring-addr", ":9090", "Prometheus metrics server address")
}

func main() {
	flag.Parse()

	if showVersionFlag {
		fmt.Println("navmcp " + BuildVersion)
		return
	}

	logLevel := slog.LevelInfo
	if debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	ctx := context.Background()
	shutdownTracing, err := tracing.InitTracing(ctx, BuildVersion)
	if err != nil {
		logger.Error("failed to initialize tracing", "error", err)
	} else {
		defer func() {
			if err := shutdownTracing(ctx); err != nil {
				logger.Error("error shutting down tracing", "error", err)
			}
		}()
	}

	logger.Info("starting navigation engine MCP server",
		"version", BuildVersion,
		"log_level", logLevel.String(),
		"monitoring_enabled", enableMonitoring,
		"monitoring_addr", monitoringAddr)

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var monitoringServer *http.Server
	if enableMonitoring {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
		})

		monitoringServer = &http.Server{
			Addr:              monitoringAddr,
			Handler:           mux,
			ReadHeaderTimeout: 30 * time.Second,
		}

		go func() {
			logger.Info("starting Prometheus metrics server", "addr", monitoringAddr, "service", monitoring.ServiceName)
			if err := monitoringServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("monitoring server error", "error", err)
			}
		}()

		go func() {
			<-runCtx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := monitoringServer.Shutdown(shutdownCtx); err != nil {
				logger.Error("failed to shutdown monitoring server", "error", err)
			}
		}()
	}

	srv := server.NewServer(logger)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run() }()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	case <-runCtx.Done():
		logger.Info("shutdown signal received")
	}

	logger.Info("server stopped")
}
