package stub

import (
	"context"
	"errors"
	"sync"

	"governor-xrpl-lab/internal/xrpl"
)

// ErrUnavailable is returned when no canned response is configured.
var ErrUnavailable = errors.New("stub node unavailable")

// RPCClient implements xrpl.RPCClient for testing.
// Responses are returned in order; the last one repeats.
type RPCClient struct {
	Name string

	mu          sync.Mutex
	feeResults  []*xrpl.FeeResult
	serverInfos []*xrpl.ServerInfo
	FeeErr      error
	InfoErr     error
	FeeCalls    int
	InfoCalls   int
}

// Compile-time interface check.
var _ xrpl.RPCClient = (*RPCClient)(nil)

// NewRPCClient creates a new stub RPC client.
func NewRPCClient(name string) *RPCClient {
	return &RPCClient{Name: name}
}

// Endpoint returns the stub name.
func (c *RPCClient) Endpoint() string {
	return c.Name
}

// PushFee queues fee results.
func (c *RPCClient) PushFee(results ...*xrpl.FeeResult) *RPCClient {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.feeResults = append(c.feeResults, results...)
	return c
}

// PushServerInfo queues server_info results.
func (c *RPCClient) PushServerInfo(infos ...*xrpl.ServerInfo) *RPCClient {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.serverInfos = append(c.serverInfos, infos...)
	return c
}

// Fee returns the next queued fee result.
func (c *RPCClient) Fee(ctx context.Context) (*xrpl.FeeResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.FeeCalls++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.FeeErr != nil {
		return nil, c.FeeErr
	}
	if len(c.feeResults) == 0 {
		return nil, ErrUnavailable
	}
	r := c.feeResults[0]
	if len(c.feeResults) > 1 {
		c.feeResults = c.feeResults[1:]
	}
	return r, nil
}

// ServerInfo returns the next queued server_info result.
func (c *RPCClient) ServerInfo(ctx context.Context) (*xrpl.ServerInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.InfoCalls++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.InfoErr != nil {
		return nil, c.InfoErr
	}
	if len(c.serverInfos) == 0 {
		return nil, ErrUnavailable
	}
	r := c.serverInfos[0]
	if len(c.serverInfos) > 1 {
		c.serverInfos = c.serverInfos[1:]
	}
	return r, nil
}

// SetFeeErr sets the error returned by Fee.
func (c *RPCClient) SetFeeErr(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.FeeErr = err
}

// Calls returns the number of Fee calls made so far.
func (c *RPCClient) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.FeeCalls
}
