package ipc

import "birdsort/internal/classify"

// ScanRequest names the roots to scan and optional path overrides.
type ScanRequest = classify.Request

// ScanResponse carries the scan result or a user-facing error. Warning is set
// when the result is complete but the cache could not be saved.
type ScanResponse struct {
	Result  *classify.Response `json:"result,omitempty"`
	Warning string             `json:"warning,omitempty"`
	Error   string             `json:"error,omitempty"`
}

// RevealRequest asks the file manager to show a photo.
type RevealRequest struct {
	Path string `json:"path"`
}

// RevealResponse reports a reveal failure.
type RevealResponse struct {
	Error string `json:"error,omitempty"`
}

// OpenFileRequest asks the default application to open a photo.
type OpenFileRequest struct {
	Path string `json:"path"`
}

// OpenFileResponse reports an open failure.
type OpenFileResponse struct {
	Error string `json:"error,omitempty"`
}
