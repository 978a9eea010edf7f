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

	httpAdapter "github.com/aretw0/espalier/internal/adapters/http"
	"github.com/aretw0/espalier/internal/cli"
	"github.com/aretw0/espalier/internal/presentation/tui"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the ops HTTP server",
	Long:  `Starts the Espalier engine behind an HTTP surface for dispatching intents, inspecting derived state and resolving layouts and tokens.`,
	Run: func(cmd *cobra.Command, args []string) {
		manifest, _ := cmd.Flags().GetString("manifest")
		addr, _ := cmd.Flags().GetString("addr")
		logPath, _ := cmd.Flags().GetString("log")
		redisAddr, _ := cmd.Flags().GetString("redis")

		logger := newLogger(cmd)
		rt, err := cli.BuildRuntime(cli.RunOptions{
			ManifestPath: manifest,
			LogPath:      logPath,
			RedisAddr:    redisAddr,
		}, logger)
		if err != nil {
			fmt.Printf("Error initializing espalier: %v\n", err)
			os.Exit(1)
		}

		// Recover whatever log the sink holds before serving.
		rt.Engine.Load(cmd.Context())

		if addr == "" {
			addr = rt.Manifest.Serve.Addr
		}
		if addr == "" {
			addr = ":8080"
		}

		handler := httpAdapter.NewHandler(rt.Engine,
			httpAdapter.WithTracer(rt.Tracer),
			httpAdapter.WithMetrics(rt.Registry),
			httpAdapter.WithLogger(logger),
		)

		srv := &http.Server{
			Addr:    addr,
			Handler: handler,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			tui.PrintBanner()
			fmt.Printf("Starting Espalier Server on %s\n", srv.Addr)
			fmt.Printf("Manifest: %s\n", manifest)
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		// Blocking main and waiting for shutdown.
		select {
		case err := <-serverErrors:
			// Error when starting HTTP server.
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)

		case sig := <-shutdown:
			fmt.Printf("\nStart shutdown... Signal: %v\n", sig)

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			// Asking listener to shut down and shed load.
			if err := srv.Shutdown(ctx); err != nil {
				fmt.Printf("Graceful shutdown did not complete in %v: %v\n", 5*time.Second, err)
				if err := srv.Close(); err != nil {
					fmt.Printf("Error killing server: %v\n", err)
				}
			}
			fmt.Println("Espalier Server stopped gracefully")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", "", "Address to listen on (default from manifest, else :8080)")
	serveCmd.Flags().String("log", "", "Persist the event log to this JSON file")
	serveCmd.Flags().String("redis", "", "Persist the event log to this Redis address")
}
