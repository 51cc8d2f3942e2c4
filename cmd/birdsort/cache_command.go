package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"birdsort/internal/scancache"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	var cachePath string

	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the scan cache",
	}
	cacheCmd.PersistentFlags().StringVar(&cachePath, "cache", "", "Scan cache location (overrides paths.cache)")

	cacheCmd.AddCommand(newCacheInfoCommand(ctx, &cachePath))
	cacheCmd.AddCommand(newCacheClearCommand(ctx, &cachePath))

	return cacheCmd
}

// openCacheStore opens the cache directly rather than through the service so
// inspecting a session cache does not purge it first.
func openCacheStore(ctx *commandContext, override string) (scancache.Store, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return nil, err
	}
	path := cfg.Paths.Cache
	if expanded, err := expandOptional(override); err != nil {
		return nil, err
	} else if expanded != "" {
		path = expanded
	}
	return scancache.Open(cfg.Cache.Backend, path, logger)
}

func newCacheInfoCommand(ctx *commandContext, cachePath *string) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show scan cache contents",
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			defer func() { err = errors.Join(err, ctx.close()) }()
			store, err := openCacheStore(ctx, *cachePath)
			if err != nil {
				return err
			}
			info, err := store.Stat(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, info)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Path:      %s\n", info.Path)
			fmt.Fprintf(out, "Exists:    %s\n", yesNo(info.Exists))
			if !info.Exists {
				return nil
			}
			fingerprint := strings.TrimSpace(info.ReferenceFingerprint)
			if fingerprint == "" {
				fingerprint = "(none)"
			}
			fmt.Fprintf(out, "Version:   %d\n", info.Version)
			fmt.Fprintf(out, "Reference: %s\n", fingerprint)
			fmt.Fprintf(out, "Records:   %d (%d matched)\n", info.Records, info.Matched)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print cache details as JSON")
	return cmd
}

func newCacheClearCommand(ctx *commandContext, cachePath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete the scan cache",
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			defer func() { err = errors.Join(err, ctx.close()) }()
			store, err := openCacheStore(ctx, *cachePath)
			if err != nil {
				return err
			}
			info, err := store.Stat(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !info.Exists {
				fmt.Fprintf(out, "No scan cache at %s\n", store.Path())
				return nil
			}
			if err := store.Purge(); err != nil {
				return err
			}
			fmt.Fprintf(out, "Removed scan cache at %s (%d records)\n", store.Path(), info.Records)
			return nil
		},
	}
}
