// Package ndfs is a native metadata client for a distributed filesystem
// name server. It speaks the name server's client protocol directly over a
// narrow transport interface and exposes namespace operations: delete,
// rename, mkdir, attribute changes, directory listing, and filesystem
// statistics.
//
// A Client is created once by Connect, is safe for concurrent use by any
// number of goroutines, and is torn down by Close. It holds exactly one
// authority address for its whole lifetime; multi-authority (HA or
// federated) configurations are rejected at connect time.
package ndfs

import (
	"context"
	"fmt"
	"net"
	osuser "os/user"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cortexfs/ndfs/internal/logger"
	"github.com/cortexfs/ndfs/internal/rpc"
	"github.com/cortexfs/ndfs/internal/uri"
	"github.com/cortexfs/ndfs/internal/wire"
)

// DefaultPort is the well-known metadata-service port, used when neither
// the URI, the configuration, nor the port override supplies one.
const DefaultPort = 8020

// Configuration keys read at connect time.
const (
	// KeyNameserviceID declares a multi-authority name service. Its
	// presence makes Connect fail: this client supports exactly one fixed
	// authority per session.
	KeyNameserviceID = "dfs.nameservice.id"

	// KeyNameNodeRPCAddress overrides the authority address from the URI.
	KeyNameNodeRPCAddress = "dfs.namenode.rpc-address"

	// KeyPermissionsUmask is the octal umask applied to directory
	// creation.
	KeyPermissionsUmask = "fs.permissions.umask-mode"

	// KeyExcludeNodesCacheExpiry is how long a misbehaving data peer stays
	// excluded from the write path, in milliseconds.
	KeyExcludeNodesCacheExpiry = "dfs.client.write.exclude.nodes.cache.expiry.interval.millis"
)

// Defaults for the configuration keys above.
const (
	DefaultUmask                         = "022"
	DefaultExcludeNodesCacheExpiryMillis = 10 * 60 * 1000
)

// Config supplies configuration values to Connect. Implementations only
// need string and int64 lookups; pkg/config provides one backed by viper.
type Config interface {
	// GetString returns the value for key and whether it was set.
	GetString(key string) (string, bool)

	// GetInt64 returns the value for key, or def when unset.
	GetInt64(key string, def int64) int64
}

// Dialer establishes the transport connection to a resolved host:port
// address.
type Dialer func(addr string) (rpc.Messenger, error)

// Resolver turns a hostname into an IPv4 address literal.
type Resolver func(host string) (string, error)

type options struct {
	dialer   Dialer
	resolver Resolver
}

// Option customizes Connect.
type Option func(*options)

// WithDialer replaces the default TCP transport. Tests and alternative
// transports hook in here.
func WithDialer(d Dialer) Option {
	return func(o *options) { o.dialer = d }
}

// WithResolver replaces the default hostname resolution.
func WithResolver(r Resolver) Option {
	return func(o *options) { o.resolver = r }
}

func defaultDialer(addr string) (rpc.Messenger, error) {
	return rpc.Dial(addr)
}

func defaultResolver(host string) (string, error) {
	addrs, err := net.LookupIP(host)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", host, err)
	}
	for _, addr := range addrs {
		if v4 := addr.To4(); v4 != nil {
			return v4.String(), nil
		}
	}
	return "", fmt.Errorf("resolve %s: no IPv4 address", host)
}

// Client is one live binding to a name server. All exported methods are
// safe for concurrent use; the only field that changes after Connect is the
// working directory, which is guarded by mu.
type Client struct {
	addr             string
	scheme           string
	authHost         string
	user             string
	urlPrefix        string
	umask            uint32
	defaultBlockSize uint64
	deadNodeTimeout  time.Duration

	messenger rpc.Messenger
	proxy     *rpc.Proxy

	mu         sync.Mutex
	workingURI *uri.URI
}

// Connect establishes a session against the name server named by rawURI
// (e.g. "hdfs://alice@namenode:8020/"). port overrides the URI's port when
// positive. conf supplies the configuration keys documented above.
//
// Connect either returns a fully usable client or releases everything it
// acquired; no partial session escapes. The server-defaults round trip at
// the end doubles as a connectivity check.
func Connect(ctx context.Context, rawURI string, port int, conf Config, opts ...Option) (_ *Client, err error) {
	o := options{dialer: defaultDialer, resolver: defaultResolver}
	for _, opt := range opts {
		opt(&o)
	}

	if _, ok := conf.GetString(KeyNameserviceID); ok {
		return nil, newError(ErrUnsupported, rawURI,
			"HA and federated name service configurations are not supported")
	}

	connURI, err := uri.Parse(rawURI, nil, uri.ParseAll)
	if err != nil {
		return nil, newError(ErrInvalidArgument, rawURI, fmt.Sprintf("connect: %v", err))
	}

	host, rpcPort, err := namenodeAddr(connURI, conf, port)
	if err != nil {
		return nil, err
	}
	ip, err := o.resolver(host)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", rawURI, err)
	}

	c := &Client{
		addr:     net.JoinHostPort(ip, strconv.Itoa(rpcPort)),
		scheme:   connURI.Scheme,
		authHost: host,
	}

	// The URL prefix is rendered in front of every display name produced
	// by listings and stat calls. The port is omitted when it's the
	// well-known one.
	if rpcPort == DefaultPort {
		c.urlPrefix = fmt.Sprintf("%s://%s", c.scheme, host)
	} else {
		c.urlPrefix = fmt.Sprintf("%s://%s:%d", c.scheme, host, rpcPort)
	}

	c.user = connURI.UserInfo
	if c.user == "" {
		if u, uerr := osuser.Current(); uerr == nil {
			c.user = u.Username
		}
	}
	if c.user == "" {
		return nil, newError(ErrInvalidArgument, rawURI,
			"connect: cannot determine the connecting user")
	}

	c.messenger, err = o.dialer(c.addr)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", rawURI, err)
	}
	// From here on, any failure must release the transport before
	// propagating.
	defer func() {
		if err != nil {
			_ = c.messenger.Close()
		}
	}()

	c.workingURI, err = uri.Parse(
		fmt.Sprintf("%s:///user/%s/", c.scheme, c.user),
		nil, uri.ParseAll|uri.AppendSlash)
	if err != nil {
		return nil, fmt.Errorf("connect %s: parse working directory: %w", rawURI, err)
	}

	if err = c.setupConf(conf); err != nil {
		return nil, err
	}

	c.proxy = rpc.NewProxy(c.messenger, wire.ClientProtocol, c.user)

	// Fetch the server defaults. Besides seeding the default block size,
	// this validates that the server actually talks to us with the
	// current configuration.
	defaults := &wire.GetServerDefaultsResponse{}
	if err = c.proxy.Call(ctx, wire.MethodGetServerDefaults, &wire.GetServerDefaultsRequest{}, defaults); err != nil {
		return nil, fmt.Errorf("connect %s: get server defaults: %w", rawURI, err)
	}
	c.defaultBlockSize = defaults.ServerDefaults.BlockSize

	logger.Debug("connected to %s as %s (block size %d)", c.addr, c.user, c.defaultBlockSize)
	return c, nil
}

// setupConf applies session configuration: the directory-creation umask and
// the stale-peer exclusion timeout kept for the write path.
func (c *Client) setupConf(conf Config) error {
	umaskStr, ok := conf.GetString(KeyPermissionsUmask)
	if !ok {
		umaskStr = DefaultUmask
	}
	umask, err := ParsePermission(umaskStr)
	if err != nil {
		return fmt.Errorf("handling %s: %w", KeyPermissionsUmask, err)
	}
	c.umask = umask

	expiry := conf.GetInt64(KeyExcludeNodesCacheExpiry, DefaultExcludeNodesCacheExpiryMillis)
	c.deadNodeTimeout = time.Duration(expiry) * time.Millisecond
	return nil
}

// namenodeAddr picks the authority address: the explicit RPC-address
// configuration entry wins over the URI's authority component.
func namenodeAddr(connURI *uri.URI, conf Config, portOverride int) (string, int, error) {
	if rpcAddr, ok := conf.GetString(KeyNameNodeRPCAddress); ok {
		return ParseRPCAddr(rpcAddr, portOverride)
	}
	if connURI.Host == "" {
		return "", 0, newError(ErrInvalidArgument, connURI.String(),
			"connect: no authority in URI and no RPC address configured")
	}
	if connURI.Port != 0 {
		return connURI.Host, connURI.Port, nil
	}
	if portOverride > 0 {
		return connURI.Host, portOverride, nil
	}
	return connURI.Host, DefaultPort, nil
}

// ParseRPCAddr parses an authority address of the form "host" or
// "host:port". When the string carries no port, defaultPort is used if
// positive, else the well-known port. An unparseable or out-of-range port
// is an ErrInvalidArgument failure.
func ParseRPCAddr(input string, defaultPort int) (string, int, error) {
	port := defaultPort
	if port <= 0 {
		port = DefaultPort
	}

	host := input
	if colon := strings.IndexByte(input, ':'); colon >= 0 {
		host = input[:colon]
		portStr := input[colon+1:]
		parsed, err := strconv.Atoi(portStr)
		if err != nil || parsed < 1 || parsed > 65535 {
			return "", 0, newError(ErrInvalidArgument, input,
				fmt.Sprintf("invalid port string %q", portStr))
		}
		port = parsed
	}
	if host == "" {
		return "", 0, newError(ErrInvalidArgument, input, "empty hostname")
	}
	return host, port, nil
}

// ParsePermission parses an octal permission string such as "022".
func ParsePermission(s string) (uint32, error) {
	trimmed := strings.TrimSpace(s)
	perm, err := strconv.ParseUint(trimmed, 8, 32)
	if err != nil {
		return 0, newError(ErrInvalidArgument, "",
			fmt.Sprintf("cannot parse octal permission string %q", s))
	}
	return uint32(perm), nil
}

// Close tears the session down, releasing the transport. It is best-effort
// and always succeeds; closing an already-closed client is a no-op.
func (c *Client) Close() error {
	if c.messenger != nil {
		if err := c.messenger.Close(); err != nil {
			logger.Debug("close %s: %v", c.addr, err)
		}
	}
	return nil
}

// User returns the connecting user the session was established as.
func (c *Client) User() string {
	return c.user
}

// GetDefaultBlockSize returns the server's default block size, queried once
// at connect time.
func (c *Client) GetDefaultBlockSize() uint64 {
	return c.defaultBlockSize
}
