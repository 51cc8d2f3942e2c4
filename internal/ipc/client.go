package ipc

import (
	"context"
	"fmt"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"
)

const dialTimeout = 2 * time.Second

// Client provides RPC access to a running birdsort server.
type Client struct {
	rpc *rpc.Client
}

// Dial connects to the IPC server at the given socket path.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, dialTimeout)
	if err != nil {
		return nil, err
	}
	return &Client{rpc: rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c == nil || c.rpc == nil {
		return nil
	}
	return c.rpc.Close()
}

// call waits for method to return or ctx to end. An abandoned call keeps
// running on the server; only the reply is dropped.
func (c *Client) call(ctx context.Context, method string, args, reply any) error {
	if ctx == nil {
		ctx = context.Background()
	}
	pending := c.rpc.Go(ServiceName+"."+method, args, reply, make(chan *rpc.Call, 1))
	select {
	case done := <-pending.Done:
		if done.Error != nil {
			return fmt.Errorf("%s: %w", method, done.Error)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Scan runs a scan on the server.
func (c *Client) Scan(ctx context.Context, req ScanRequest) (*ScanResponse, error) {
	var resp ScanResponse
	if err := c.call(ctx, "Scan", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Reveal asks the server to show path in the file manager.
func (c *Client) Reveal(ctx context.Context, path string) (*RevealResponse, error) {
	var resp RevealResponse
	if err := c.call(ctx, "Reveal", RevealRequest{Path: path}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// OpenFile asks the server to open path with its default application.
func (c *Client) OpenFile(ctx context.Context, path string) (*OpenFileResponse, error) {
	var resp OpenFileResponse
	if err := c.call(ctx, "OpenFile", OpenFileRequest{Path: path}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
