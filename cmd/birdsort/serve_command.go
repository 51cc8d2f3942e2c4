package main

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"birdsort/internal/ipc"
	"birdsort/internal/logging"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve scan, reveal, and open commands over the local socket",
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			defer func() { err = errors.Join(err, ctx.close()) }()

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			svc, err := ctx.ensureService()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			handler := ipc.NewHandler(signalCtx, svc, logger)
			srv, err := ipc.NewServer(signalCtx, ctx.socketPath(), handler, logger)
			if err != nil {
				return err
			}
			srv.Serve()
			logger.Info("birdsort serving",
				logging.String(logging.FieldEventType, "serve_started"),
				logging.String("socket", srv.Path()))
			fmt.Fprintf(cmd.OutOrStdout(), "Listening on %s\n", srv.Path())

			<-signalCtx.Done()
			srv.Close()
			logger.Info("birdsort stopped", logging.String(logging.FieldEventType, "serve_stopped"))
			return nil
		},
	}
}
