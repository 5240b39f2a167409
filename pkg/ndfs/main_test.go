package ndfs

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cortexfs/ndfs/internal/rpc"
	"github.com/cortexfs/ndfs/internal/wire"
)

// ============================================================================
// Test Fakes
// ============================================================================

type recordedCall struct {
	call rpc.Call
	req  any
}

// fakeMessenger records every invocation and answers via handler. When
// handler is nil (or returns errUnhandled), getServerDefaults is answered
// with a canned block size so Connect succeeds.
type fakeMessenger struct {
	mu      sync.Mutex
	calls   []recordedCall
	handler func(call rpc.Call, req, resp any) error
	closed  bool
}

const testBlockSize = uint64(128 * 1024 * 1024)

func (f *fakeMessenger) Invoke(_ context.Context, call rpc.Call, req, resp any) error {
	f.mu.Lock()
	f.calls = append(f.calls, recordedCall{call: call, req: req})
	f.mu.Unlock()

	if f.handler != nil {
		return f.handler(call, req, resp)
	}
	if defaults, ok := resp.(*wire.GetServerDefaultsResponse); ok {
		defaults.ServerDefaults.BlockSize = testBlockSize
	}
	return nil
}

func (f *fakeMessenger) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeMessenger) callCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.call.Method == method {
			n++
		}
	}
	return n
}

// mapConfig is an in-memory Config provider.
type mapConfig struct {
	strings map[string]string
	ints    map[string]int64
}

func (m mapConfig) GetString(key string) (string, bool) {
	v, ok := m.strings[key]
	return v, ok
}

func (m mapConfig) GetInt64(key string, def int64) int64 {
	if v, ok := m.ints[key]; ok {
		return v
	}
	return def
}

// newTestClient connects a client backed by fake, with user bob at
// hdfs://namenode (default port).
func newTestClient(t *testing.T, fake *fakeMessenger, conf Config) *Client {
	t.Helper()
	if conf == nil {
		conf = mapConfig{}
	}

	c, err := Connect(context.Background(), "hdfs://bob@namenode/", 0, conf,
		WithDialer(func(addr string) (rpc.Messenger, error) { return fake, nil }),
		WithResolver(func(host string) (string, error) { return "127.0.0.1", nil }),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}
