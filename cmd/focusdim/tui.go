package main

import (
	"github.com/spf13/cobra"

	"github.com/1broseidon/focusdim/internal/tui"
)

func newTUICmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open a live dashboard for the running daemon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return tui.Run(opts.client())
		},
	}
}
