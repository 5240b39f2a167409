package ndfs

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cortexfs/ndfs/internal/rpc"
	"github.com/cortexfs/ndfs/internal/wire"
)

// ============================================================================
// Address and Permission Parsing
// ============================================================================

func TestParseRPCAddr(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		defaultPort int
		wantHost    string
		wantPort    int
		wantErr     bool
	}{
		{name: "bare hostname", input: "namenode", wantHost: "namenode", wantPort: 8020},
		{name: "bare hostname with default override", input: "namenode", defaultPort: 9000, wantHost: "namenode", wantPort: 9000},
		{name: "explicit port", input: "namenode:50070", wantHost: "namenode", wantPort: 50070},
		{name: "explicit port beats default override", input: "namenode:50070", defaultPort: 9000, wantHost: "namenode", wantPort: 50070},
		{name: "lowest valid port", input: "nn:1", wantHost: "nn", wantPort: 1},
		{name: "highest valid port", input: "nn:65535", wantHost: "nn", wantPort: 65535},
		{name: "port zero", input: "nn:0", wantErr: true},
		{name: "port too large", input: "nn:65536", wantErr: true},
		{name: "non-numeric port", input: "nn:abc", wantErr: true},
		{name: "empty port", input: "nn:", wantErr: true},
		{name: "empty hostname", input: ":8020", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host, port, err := ParseRPCAddr(tt.input, tt.defaultPort)
			if tt.wantErr {
				require.Error(t, err)
				var clientErr *ClientError
				require.ErrorAs(t, err, &clientErr)
				assert.Equal(t, ErrInvalidArgument, clientErr.Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantHost, host)
			assert.Equal(t, tt.wantPort, port)
		})
	}
}

func TestParsePermission(t *testing.T) {
	tests := []struct {
		input   string
		want    uint32
		wantErr bool
	}{
		{input: "022", want: 0o022},
		{input: "0777", want: 0o777},
		{input: "755", want: 0o755},
		{input: " 644 ", want: 0o644},
		{input: "8", wantErr: true},
		{input: "rwxr-xr-x", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.input), func(t *testing.T) {
			got, err := ParsePermission(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// ============================================================================
// Connect
// ============================================================================

func TestConnect(t *testing.T) {
	fake := &fakeMessenger{}
	var dialedAddr string

	c, err := Connect(context.Background(), "hdfs://bob@namenode/", 0, mapConfig{},
		WithDialer(func(addr string) (rpc.Messenger, error) {
			dialedAddr = addr
			return fake, nil
		}),
		WithResolver(func(host string) (string, error) {
			assert.Equal(t, "namenode", host)
			return "10.0.0.7", nil
		}),
	)
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, "10.0.0.7:8020", dialedAddr)
	assert.Equal(t, "bob", c.User())
	assert.Equal(t, "hdfs://namenode", c.urlPrefix)
	assert.Equal(t, "/user/bob/", c.WorkingDirectory())
	assert.Equal(t, testBlockSize, c.GetDefaultBlockSize())
	assert.Equal(t, uint32(0o022), c.umask)
	assert.Equal(t, 1, fake.callCount(wire.MethodGetServerDefaults))
}

func TestConnectNonDefaultPortInPrefix(t *testing.T) {
	fake := &fakeMessenger{}
	c, err := Connect(context.Background(), "hdfs://bob@namenode:9000/", 0, mapConfig{},
		WithDialer(func(string) (rpc.Messenger, error) { return fake, nil }),
		WithResolver(func(string) (string, error) { return "127.0.0.1", nil }),
	)
	require.NoError(t, err)
	defer c.Close()
	assert.Equal(t, "hdfs://namenode:9000", c.urlPrefix)
}

func TestConnectPortOverride(t *testing.T) {
	fake := &fakeMessenger{}
	var dialedAddr string
	c, err := Connect(context.Background(), "hdfs://bob@namenode/", 9000, mapConfig{},
		WithDialer(func(addr string) (rpc.Messenger, error) {
			dialedAddr = addr
			return fake, nil
		}),
		WithResolver(func(string) (string, error) { return "127.0.0.1", nil }),
	)
	require.NoError(t, err)
	defer c.Close()
	assert.Equal(t, "127.0.0.1:9000", dialedAddr)
}

func TestConnectRPCAddressFromConfig(t *testing.T) {
	fake := &fakeMessenger{}
	var dialedAddr string
	conf := mapConfig{strings: map[string]string{KeyNameNodeRPCAddress: "altnn:9999"}}

	c, err := Connect(context.Background(), "hdfs://bob@namenode/", 0, conf,
		WithDialer(func(addr string) (rpc.Messenger, error) {
			dialedAddr = addr
			return fake, nil
		}),
		WithResolver(func(host string) (string, error) {
			assert.Equal(t, "altnn", host)
			return "10.1.1.1", nil
		}),
	)
	require.NoError(t, err)
	defer c.Close()
	assert.Equal(t, "10.1.1.1:9999", dialedAddr)
	assert.Equal(t, "hdfs://altnn:9999", c.urlPrefix)
}

func TestConnectRejectsNameservice(t *testing.T) {
	conf := mapConfig{strings: map[string]string{KeyNameserviceID: "cluster1"}}
	dialed := false

	_, err := Connect(context.Background(), "hdfs://bob@namenode/", 0, conf,
		WithDialer(func(string) (rpc.Messenger, error) {
			dialed = true
			return &fakeMessenger{}, nil
		}),
	)
	require.Error(t, err)
	var clientErr *ClientError
	require.ErrorAs(t, err, &clientErr)
	assert.Equal(t, ErrUnsupported, clientErr.Code)
	assert.False(t, dialed)
}

func TestConnectInvalidConfiguredPort(t *testing.T) {
	conf := mapConfig{strings: map[string]string{KeyNameNodeRPCAddress: "nn:70000"}}
	_, err := Connect(context.Background(), "hdfs://bob@namenode/", 0, conf)
	var clientErr *ClientError
	require.ErrorAs(t, err, &clientErr)
	assert.Equal(t, ErrInvalidArgument, clientErr.Code)
}

func TestConnectResolverFailureIsFatal(t *testing.T) {
	dialed := false
	_, err := Connect(context.Background(), "hdfs://bob@namenode/", 0, mapConfig{},
		WithResolver(func(string) (string, error) { return "", errors.New("no such host") }),
		WithDialer(func(string) (rpc.Messenger, error) {
			dialed = true
			return &fakeMessenger{}, nil
		}),
	)
	require.Error(t, err)
	assert.False(t, dialed)
}

func TestConnectDialFailureIsFatal(t *testing.T) {
	_, err := Connect(context.Background(), "hdfs://bob@namenode/", 0, mapConfig{},
		WithResolver(func(string) (string, error) { return "127.0.0.1", nil }),
		WithDialer(func(string) (rpc.Messenger, error) { return nil, errors.New("connection refused") }),
	)
	require.Error(t, err)
}

func TestConnectBadUmaskReleasesTransport(t *testing.T) {
	fake := &fakeMessenger{}
	conf := mapConfig{strings: map[string]string{KeyPermissionsUmask: "not-octal"}}

	_, err := Connect(context.Background(), "hdfs://bob@namenode/", 0, conf,
		WithDialer(func(string) (rpc.Messenger, error) { return fake, nil }),
		WithResolver(func(string) (string, error) { return "127.0.0.1", nil }),
	)
	require.Error(t, err)
	assert.True(t, fake.closed, "failed connect must release the transport")
	// The umask failure happens before any RPC goes out.
	assert.Empty(t, fake.calls)
}

func TestConnectServerDefaultsFailureReleasesTransport(t *testing.T) {
	fake := &fakeMessenger{
		handler: func(call rpc.Call, req, resp any) error {
			return errors.New("connection reset")
		},
	}

	_, err := Connect(context.Background(), "hdfs://bob@namenode/", 0, mapConfig{},
		WithDialer(func(string) (rpc.Messenger, error) { return fake, nil }),
		WithResolver(func(string) (string, error) { return "127.0.0.1", nil }),
	)
	require.Error(t, err)
	assert.True(t, fake.closed, "failed connect must release the transport")
}

func TestConnectAppliesExcludeExpiry(t *testing.T) {
	fake := &fakeMessenger{}
	conf := mapConfig{ints: map[string]int64{KeyExcludeNodesCacheExpiry: 1500}}
	c := newTestClient(t, fake, conf)
	assert.Equal(t, int64(1500*1000*1000), int64(c.deadNodeTimeout))
}

func TestCloseIsIdempotent(t *testing.T) {
	fake := &fakeMessenger{}
	c := newTestClient(t, fake, nil)
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	assert.True(t, fake.closed)
}
