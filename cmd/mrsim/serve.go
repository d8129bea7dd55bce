package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/aretw0/mrsim"
	"github.com/aretw0/mrsim/internal/logging"
	"github.com/aretw0/mrsim/internal/presentation/tui"
	"github.com/aretw0/mrsim/pkg/adapters/memory"
	httpAdapter "github.com/aretw0/mrsim/pkg/adapters/http"
	redisadapter "github.com/aretw0/mrsim/pkg/adapters/redis"
	"github.com/aretw0/mrsim/pkg/observability"
	"github.com/aretw0/mrsim/pkg/ports"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serves simulations over a JSON API with Prometheus metrics on /metrics.
Spectra are kept in memory, or in Redis when --redis is set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetString("port")
		redisAddr, _ := cmd.Flags().GetString("redis")
		ttl, _ := cmd.Flags().GetDuration("ttl")
		level, _ := cmd.Flags().GetString("log-level")

		lvl, err := logging.ParseLevel(level)
		if err != nil {
			return err
		}
		logger := logging.NewWithWriter(os.Stderr, lvl, true)

		var store ports.SpectrumStore = memory.NewStore()
		simOpts := []mrsim.Option{mrsim.WithLogger(logger)}
		var locker ports.DistributedLocker = memory.NewLocker()
		if redisAddr != "" {
			rs := redisadapter.New(redisAddr, "", 0, redisadapter.WithTTL(ttl))
			defer rs.Close()
			if err := rs.Client().Ping(cmd.Context()).Err(); err != nil {
				return fmt.Errorf("failed to connect to redis at %s: %w", redisAddr, err)
			}
			store = rs
			locker = redisadapter.NewLocker(rs.Client(), redisadapter.DefaultPrefix)
		}
		simOpts = append(simOpts, mrsim.WithLocker(locker))

		metrics := observability.NewMetrics()
		handler := httpAdapter.NewHandler(
			httpAdapter.WithSimulatorOptions(simOpts...),
			httpAdapter.WithStore(store),
			httpAdapter.WithHooks(metrics.Hooks()),
			httpAdapter.WithMetrics(metrics.Handler()),
			httpAdapter.WithLogger(logger),
		)

		srv := &http.Server{
			Addr:              ":" + port,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		if term.IsTerminal(int(os.Stdout.Fd())) {
			tui.PrintBanner(os.Stdout)
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("Starting mrsim server", "addr", srv.Addr, "version", mrsim.Version)
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)
		case sig := <-shutdown:
			logger.Info("Start shutdown", "signal", sig.String())

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				logger.Error("Graceful shutdown did not complete", "error", err)
				return srv.Close()
			}
			logger.Info("mrsim server stopped gracefully")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().String("redis", "", "Redis address of the spectrum store")
	serveCmd.Flags().Duration("ttl", 24*time.Hour, "Expiry of spectra stored in Redis, 0 keeps them")
}
