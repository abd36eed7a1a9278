package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/1broseidon/focusdim/internal/ipc"
	"github.com/1broseidon/focusdim/internal/logging"
	"github.com/1broseidon/focusdim/internal/mcp"
)

func newMCPCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Model Context Protocol integration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server (stdio transport)",
		Long: `Start the MCP server on stdio. Designed to be invoked by MCP clients.
Tool calls are forwarded to the running daemon over its IPC socket.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// stdout carries the protocol; logs go to stderr.
			logger := logging.New(logging.Options{Level: opts.logLevel, Output: os.Stderr, Prefix: "mcp"})

			var client *ipc.Client
			if opts.socketPath != "" {
				client = ipc.NewClientWithPath(opts.socketPath)
			} else {
				client = ipc.NewClient()
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return mcp.NewServer(client, logger.Logger).Run(ctx)
		},
	})
	return cmd
}
