package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/handlescan/internal/config"
	"github.com/nao1215/handlescan/internal/database"
	"github.com/nao1215/handlescan/internal/log"
	"github.com/nao1215/handlescan/internal/server"
	"github.com/spf13/cobra"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve scan history as a web dashboard and JSON API",
		Long: `Serve starts an HTTP server over the scan history database.

Pages:
  /                         Scanned handles
  /handles/<handle>         HTML report of the latest scan

API:
  /api/handles                       Scanned handles
  /api/handles/<handle>              Latest report as JSON
  /api/handles/<handle>/history      Scan history metadata
  /api/signals?kind=email&value=...  Handles sharing an email, phone, link or bio
  /healthz                           Liveness probe

Examples:
  # Serve on the default address
  handlescan serve

  # Serve on localhost only
  handlescan serve --addr 127.0.0.1:8080`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	cmd.Flags().StringP("addr", "a", config.DefaultServeAddress, "Listen address")
	cmd.Flags().String("db-dir", "", "History database directory (default: XDG data dir)")

	return cmd
}

// runServeCmd executes the serve command.
func runServeCmd(cmd *cobra.Command, _ []string) error {
	addr, err := cmd.Flags().GetString("addr")
	if err != nil {
		return err
	}
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}
	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}

	verbose := getVerboseFlag(cmd)
	if !verbose {
		gin.SetMode(gin.ReleaseMode)
	}
	logger := log.NewSecureJSONLogger(cmd.ErrOrStderr(), verbose)

	db, err := database.Open(dbDir, database.ReadOnlyOptions())
	if err != nil {
		if errors.Is(err, database.ErrDatabaseNotFound) {
			return fmt.Errorf("%w (run 'handlescan scan' first)", err)
		}
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(cmd.ErrOrStderr(), "Serving scan history from %s on %s\n", db.Path(), addr)

	srv := server.New(db, server.WithLogger(logger), server.WithVersion(getVersion()))
	return srv.Run(ctx, addr)
}
