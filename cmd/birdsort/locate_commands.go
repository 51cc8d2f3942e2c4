package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"birdsort/internal/config"
	"birdsort/internal/ipc"
	"birdsort/internal/locator"
)

func newRevealCommand(ctx *commandContext) *cobra.Command {
	var remote bool
	cmd := &cobra.Command{
		Use:   "reveal <photo>",
		Short: "Show a photo in the system file manager",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			if remote {
				return ctx.withClient(func(client *ipc.Client) error {
					resp, err := client.Reveal(cmd.Context(), path)
					if err != nil {
						return err
					}
					return responseError(resp.Error)
				})
			}
			if err := locator.Reveal(cmd.Context(), path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Revealed %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&remote, "remote", false, "Ask a running `birdsort serve` instance to reveal the photo")
	return cmd
}

func newOpenCommand(ctx *commandContext) *cobra.Command {
	var remote bool
	cmd := &cobra.Command{
		Use:   "open <photo>",
		Short: "Open a photo with its default application",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			if remote {
				return ctx.withClient(func(client *ipc.Client) error {
					resp, err := client.OpenFile(cmd.Context(), path)
					if err != nil {
						return err
					}
					return responseError(resp.Error)
				})
			}
			if err := locator.Open(cmd.Context(), path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Opened %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&remote, "remote", false, "Ask a running `birdsort serve` instance to open the photo")
	return cmd
}

func responseError(msg string) error {
	if msg == "" {
		return nil
	}
	return errors.New(msg)
}
