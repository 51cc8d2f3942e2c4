package ipc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"birdsort/internal/classify"
	"birdsort/internal/locator"
	"birdsort/internal/logging"
)

// Scanner runs classification scans.
type Scanner interface {
	Scan(ctx context.Context, req classify.Request) (*classify.Response, error)
}

// Handler implements the Birdsort RPC service.
type Handler struct {
	ctx     context.Context
	scanner Scanner
	logger  *slog.Logger

	reveal func(context.Context, string) error
	open   func(context.Context, string) error
}

// NewHandler wires the commands to scanner and the platform locator.
func NewHandler(ctx context.Context, scanner Scanner, logger *slog.Logger) *Handler {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Handler{
		ctx:     ctx,
		scanner: scanner,
		logger:  logging.NewComponentLogger(logger, "ipc"),
		reveal:  locator.Reveal,
		open:    locator.Open,
	}
}

// Scan runs a scan.
func (h *Handler) Scan(req ScanRequest, resp *ScanResponse) error {
	h.logger.Debug("scan requested", logging.Strings("roots", req.Roots))
	result, err := h.scanner.Scan(h.ctx, req)
	switch {
	case err == nil:
		resp.Result = result
	case errors.Is(err, classify.ErrCacheSave) && result != nil:
		resp.Result = result
		resp.Warning = err.Error()
	default:
		resp.Error = err.Error()
		h.logger.Info("scan request failed",
			logging.String(logging.FieldEventType, "ipc_scan_failed"),
			logging.Error(err))
	}
	return nil
}

// Reveal shows a photo in the file manager.
func (h *Handler) Reveal(req RevealRequest, resp *RevealResponse) error {
	if err := h.reveal(h.ctx, req.Path); err != nil {
		resp.Error = err.Error()
	}
	return nil
}

// OpenFile opens a photo with the default application.
func (h *Handler) OpenFile(req OpenFileRequest, resp *OpenFileResponse) error {
	if err := h.open(h.ctx, req.Path); err != nil {
		resp.Error = err.Error()
	}
	return nil
}

// Dispatch runs the command called name with a JSON payload and returns the
// JSON result. A non-empty message reports failure; a scan whose cache could
// not be saved returns both its result and the message.
func (h *Handler) Dispatch(name string, payload []byte) ([]byte, string) {
	switch name {
	case "scan":
		var req ScanRequest
		if err := decodePayload(payload, &req); err != nil {
			return nil, err.Error()
		}
		var resp ScanResponse
		_ = h.Scan(req, &resp)
		if resp.Error != "" {
			return nil, resp.Error
		}
		data, err := json.Marshal(resp.Result)
		if err != nil {
			return nil, fmt.Sprintf("encode scan result: %v", err)
		}
		return data, resp.Warning
	case "reveal":
		var req RevealRequest
		if err := decodePayload(payload, &req); err != nil {
			return nil, err.Error()
		}
		var resp RevealResponse
		_ = h.Reveal(req, &resp)
		return nil, resp.Error
	case "open_file":
		var req OpenFileRequest
		if err := decodePayload(payload, &req); err != nil {
			return nil, err.Error()
		}
		var resp OpenFileResponse
		_ = h.OpenFile(req, &resp)
		return nil, resp.Error
	default:
		return nil, fmt.Sprintf("unknown command %q", name)
	}
}

func decodePayload(payload []byte, v any) error {
	if len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("decode request: %w", err)
	}
	return nil
}
