package rpc

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	xdr "github.com/rasky/go-xdr/xdr2"

	"github.com/cortexfs/ndfs/internal/logger"
)

// DefaultDialTimeout bounds connection establishment.
const DefaultDialTimeout = 30 * time.Second

// ServerError is a failure reported by the server for a single call, as
// opposed to a transport failure.
type ServerError struct {
	Method  string
	Message string
	Fatal   bool
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error on %s: %s", e.Method, e.Message)
}

type dialOptions struct {
	metrics     *Metrics
	dialTimeout time.Duration
	callTimeout time.Duration
}

// DialOption customizes a TCP messenger.
type DialOption func(*dialOptions)

// WithMetrics attaches transport metrics to the messenger.
func WithMetrics(m *Metrics) DialOption {
	return func(o *dialOptions) { o.metrics = m }
}

// WithDialTimeout overrides the connection establishment timeout.
func WithDialTimeout(d time.Duration) DialOption {
	return func(o *dialOptions) { o.dialTimeout = d }
}

// WithCallTimeout sets a per-call deadline used when the caller's context
// carries none. Zero means no deadline.
func WithCallTimeout(d time.Duration) DialOption {
	return func(o *dialOptions) { o.callTimeout = d }
}

// TCPMessenger is a Messenger over a single TCP connection. Round trips are
// serialized on the connection; the messenger itself is safe for concurrent
// use by multiple goroutines.
type TCPMessenger struct {
	addr        string
	clientID    ClientID
	metrics     *Metrics
	callTimeout time.Duration

	mu     sync.Mutex
	conn   net.Conn
	xid    uint32
	closed bool
}

// Dial connects to addr (host:port) and returns a ready messenger.
func Dial(addr string, opts ...DialOption) (*TCPMessenger, error) {
	options := dialOptions{dialTimeout: DefaultDialTimeout}
	for _, opt := range opts {
		opt(&options)
	}

	conn, err := net.DialTimeout("tcp", addr, options.dialTimeout)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}

	m := &TCPMessenger{
		addr:        addr,
		clientID:    NewClientID(),
		metrics:     options.metrics,
		callTimeout: options.callTimeout,
		conn:        conn,
	}
	logger.Debug("connected to %s (client id %s)", addr, m.clientID)
	return m, nil
}

// Invoke implements Messenger.
func (m *TCPMessenger) Invoke(ctx context.Context, call Call, req, resp any) (err error) {
	start := time.Now()
	defer func() { m.metrics.observe(call.Method, start, err) }()

	if err := ctx.Err(); err != nil {
		return err
	}

	var body bytes.Buffer
	if req != nil {
		if _, err := xdr.Marshal(&body, req); err != nil {
			return fmt.Errorf("%s: marshal request: %w", call.Method, err)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return fmt.Errorf("%s: messenger is closed", call.Method)
	}

	m.xid++
	framed, err := EncodeMessage(&CallMessage{
		XID:      m.xid,
		ClientID: m.clientID[:],
		Protocol: call.Protocol,
		Method:   call.Method,
		User:     call.User,
		Body:     body.Bytes(),
	})
	if err != nil {
		return fmt.Errorf("%s: %w", call.Method, err)
	}

	if err := m.applyDeadline(ctx); err != nil {
		return fmt.Errorf("%s: %w", call.Method, err)
	}
	if _, err := m.conn.Write(framed); err != nil {
		return fmt.Errorf("%s: write to %s: %w", call.Method, m.addr, err)
	}

	payload, err := ReadFrame(m.conn)
	if err != nil {
		return fmt.Errorf("%s: read reply from %s: %w", call.Method, m.addr, err)
	}
	reply, err := DecodeReply(payload)
	if err != nil {
		return fmt.Errorf("%s: %w", call.Method, err)
	}
	if reply.XID != m.xid {
		return fmt.Errorf("%s: reply XID 0x%x does not match call XID 0x%x",
			call.Method, reply.XID, m.xid)
	}
	if reply.Status != StatusSuccess {
		return &ServerError{
			Method:  call.Method,
			Message: reply.Message,
			Fatal:   reply.Status == StatusFatal,
		}
	}

	if resp != nil {
		if _, err := xdr.Unmarshal(bytes.NewReader(reply.Body), resp); err != nil {
			return fmt.Errorf("%s: unmarshal reply body: %w", call.Method, err)
		}
	}
	return nil
}

// applyDeadline sets the connection deadline from the context, falling back
// to the configured per-call timeout. Must be called with mu held.
func (m *TCPMessenger) applyDeadline(ctx context.Context) error {
	if deadline, ok := ctx.Deadline(); ok {
		return m.conn.SetDeadline(deadline)
	}
	if m.callTimeout > 0 {
		return m.conn.SetDeadline(time.Now().Add(m.callTimeout))
	}
	return m.conn.SetDeadline(time.Time{})
}

// Close implements Messenger.
func (m *TCPMessenger) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true
	logger.Debug("closing connection to %s", m.addr)
	return m.conn.Close()
}
