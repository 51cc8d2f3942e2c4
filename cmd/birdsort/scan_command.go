package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"birdsort/internal/classify"
	"birdsort/internal/config"
	"birdsort/internal/ipc"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var referencePath string
	var cachePath string
	var jsonOutput bool
	var remote bool
	var photos bool

	cmd := &cobra.Command{
		Use:   "scan [folder...]",
		Short: "Classify the photos under one or more folders",
		Long: "Scan folders for bird photos, match each file name against the reference\n" +
			"taxonomy, and print the order / family / genus / species tree.\n\n" +
			"Without arguments the folders in scan.roots are used.",
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			defer func() { err = errors.Join(err, ctx.close()) }()

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			req, err := buildScanRequest(cfg, args, referencePath, cachePath)
			if err != nil {
				return err
			}

			var resp *classify.Response
			var warning string
			if remote {
				resp, warning, err = scanRemote(cmd, ctx, req)
			} else {
				resp, warning, err = scanLocal(cmd, ctx, req)
			}
			if err != nil {
				return err
			}
			if warning != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "warn: %s\n", warning)
			}

			if jsonOutput {
				return writeJSON(cmd, resp)
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			fmt.Fprintln(out, renderTree(resp.Tree, treeOptions{photos: photos, colorize: colorize}))
			fmt.Fprintln(out)
			fmt.Fprintln(out, renderScanSummary(resp, colorize))
			return nil
		},
	}

	cmd.Flags().StringVar(&referencePath, "reference", "", "Reference taxonomy source (overrides paths.reference)")
	cmd.Flags().StringVar(&cachePath, "cache", "", "Scan cache location (overrides paths.cache)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the scan result as JSON")
	cmd.Flags().BoolVar(&remote, "remote", false, "Run the scan on a running `birdsort serve` instance")
	cmd.Flags().BoolVar(&photos, "photos", true, "List photo files under each species")
	return cmd
}

// buildScanRequest resolves roots and overrides to absolute paths so a remote
// server sees the same locations as the caller.
func buildScanRequest(cfg *config.Config, args []string, referencePath, cachePath string) (classify.Request, error) {
	roots := args
	if len(roots) == 0 {
		roots = cfg.Scan.Roots
	}
	if len(roots) == 0 {
		return classify.Request{}, errors.New("no folders to scan; pass one or set scan.roots")
	}

	req := classify.Request{Roots: make([]string, 0, len(roots))}
	for _, root := range roots {
		expanded, err := config.ExpandPath(strings.TrimSpace(root))
		if err != nil {
			return classify.Request{}, err
		}
		req.Roots = append(req.Roots, expanded)
	}
	var err error
	if req.ReferencePath, err = expandOptional(referencePath); err != nil {
		return classify.Request{}, err
	}
	if req.CachePath, err = expandOptional(cachePath); err != nil {
		return classify.Request{}, err
	}
	return req, nil
}

func expandOptional(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", nil
	}
	return config.ExpandPath(path)
}

func scanLocal(cmd *cobra.Command, ctx *commandContext, req classify.Request) (*classify.Response, string, error) {
	svc, err := ctx.ensureService()
	if err != nil {
		return nil, "", err
	}
	resp, err := svc.Scan(cmd.Context(), req)
	if err != nil {
		if resp != nil && errors.Is(err, classify.ErrCacheSave) {
			return resp, err.Error(), nil
		}
		return nil, "", err
	}
	return resp, "", nil
}

func scanRemote(cmd *cobra.Command, ctx *commandContext, req classify.Request) (*classify.Response, string, error) {
	var resp *ipc.ScanResponse
	err := ctx.withClient(func(client *ipc.Client) error {
		var callErr error
		resp, callErr = client.Scan(cmd.Context(), req)
		return callErr
	})
	if err != nil {
		return nil, "", err
	}
	if resp.Error != "" {
		return nil, "", errors.New(resp.Error)
	}
	if resp.Result == nil {
		return nil, "", errors.New("scan returned no result")
	}
	return resp.Result, resp.Warning, nil
}
