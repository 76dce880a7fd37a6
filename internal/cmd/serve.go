package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/harrison/dataworks/internal/api"
)

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dispatcher over HTTP",
		Long: `Start an HTTP server exposing:

  POST /run?task=<instruction>   dispatch one instruction
  GET  /read?path=<file>         read a file from the data directory
  GET  /tasks                    list the registered tasks`,
		Args: cobra.NoArgs,
		RunE: serveCommand,
	}

	cmd.Flags().String("listen", "", "Bind address (overrides config, e.g. :8000)")

	return cmd
}

// serveCommand runs the HTTP server until interrupted.
func serveCommand(cmd *cobra.Command, args []string) error {
	a, err := buildApp(cmd)
	if err != nil {
		return err
	}

	addr := a.cfg.ListenAddr
	if flagAddr, _ := cmd.Flags().GetString("listen"); flagAddr != "" {
		addr = flagAddr
	}

	server := api.NewServer(a.dispatcher, a.registry, a.cfg.DataRoot, a.log)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		a.log.LogInfo(fmt.Sprintf("listening on %s, data root %s", addr, a.cfg.DataRoot))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	a.log.LogInfo("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
