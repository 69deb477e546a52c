package xrpl

// WSClient defines the XRPL WebSocket request/response interface.
type WSClient interface {
	RPCClient

	// Close closes the WebSocket connection.
	Close() error
}
