// Package rpc provides the transport used to reach the name server: a
// narrow Messenger interface, a Proxy that binds calls to a protocol and
// user, and a TCP implementation with XDR-framed messages.
//
// The metadata client only ever depends on the Messenger interface, so
// alternative transports (and test fakes) can be swapped in at connect time.
package rpc

import "context"

// Call identifies one remote invocation: which protocol it belongs to,
// which method to run, and on whose behalf.
type Call struct {
	// Protocol is the server-side protocol name, e.g. the client protocol
	// of the name server.
	Protocol string

	// Method is the operation name within the protocol.
	Method string

	// User is the effective user the call is made as.
	User string
}

// Messenger performs remote invocations against a single server address.
//
// Implementations must be safe for concurrent use by multiple goroutines;
// callers may have any number of invocations in flight.
type Messenger interface {
	// Invoke performs one round trip: req is encoded and sent, and the
	// server's reply is decoded into resp. A non-nil error means either a
	// transport failure or a server-reported failure; resp holds no usable
	// data in that case.
	Invoke(ctx context.Context, call Call, req, resp any) error

	// Close releases the underlying connection. It is safe to call more
	// than once.
	Close() error
}

// Proxy binds a Messenger to a fixed protocol and user so that callers
// only supply the method and message pair per invocation.
type Proxy struct {
	messenger Messenger
	protocol  string
	user      string
}

// NewProxy creates a proxy over messenger for the given protocol and user.
func NewProxy(messenger Messenger, protocol, user string) *Proxy {
	return &Proxy{messenger: messenger, protocol: protocol, user: user}
}

// Call invokes method with the proxy's protocol and user binding.
func (p *Proxy) Call(ctx context.Context, method string, req, resp any) error {
	return p.messenger.Invoke(ctx, Call{
		Protocol: p.protocol,
		Method:   method,
		User:     p.user,
	}, req, resp)
}
