package ndfs

import (
	"context"
	"errors"
	"fmt"

	"github.com/cortexfs/ndfs/internal/wire"
)

// Every operation below follows the same dispatch pattern: resolve the
// caller's path(s) against the working directory, build a typed request,
// invoke it through the proxy, and interpret the typed response. Transport
// failures propagate wrapped with the operation; a server-side result
// boolean of false is turned into the operation's domain failure rather
// than silent success.

// Delete removes path. When recursive is false and path is a non-empty
// directory, the server refuses.
func (c *Client) Delete(ctx context.Context, path string, recursive bool) error {
	src, err := c.buildPath(path)
	if err != nil {
		return err
	}

	resp := &wire.DeleteResponse{}
	req := &wire.DeleteRequest{Src: src, Recursive: recursive}
	if err := c.proxy.Call(ctx, wire.MethodDelete, req, resp); err != nil {
		return fmt.Errorf("delete %s: %w", path, err)
	}
	if !resp.Result {
		return newError(ErrNotFound, path,
			fmt.Sprintf("delete (recursive=%v): deletion failed on the server", recursive))
	}
	return nil
}

// Rename moves src to dst. Overwriting an existing destination is not
// exposed by this client and is always off.
func (c *Client) Rename(ctx context.Context, src, dst string) error {
	srcPath, err := c.buildPath(src)
	if err != nil {
		return err
	}
	dstPath, err := c.buildPath(dst)
	if err != nil {
		return err
	}

	req := &wire.Rename2Request{Src: srcPath, Dst: dstPath, OverwriteDest: false}
	if err := c.proxy.Call(ctx, wire.MethodRename2, req, &wire.Rename2Response{}); err != nil {
		return fmt.Errorf("rename %s -> %s: %w", src, dst, err)
	}
	return nil
}

// Mkdir creates path and any missing intermediate directories. The new
// directories get mode 0777 masked by the session umask.
func (c *Client) Mkdir(ctx context.Context, path string) error {
	src, err := c.buildPath(path)
	if err != nil {
		return err
	}

	resp := &wire.MkdirsResponse{}
	req := &wire.MkdirsRequest{
		Src:          src,
		Masked:       wire.FsPermission{Perm: 0777 &^ c.umask},
		CreateParent: true,
	}
	if err := c.proxy.Call(ctx, wire.MethodMkdirs, req, resp); err != nil {
		return fmt.Errorf("mkdir %s: %w", path, err)
	}
	if !resp.Result {
		return newError(ErrAlreadyExists, src,
			"mkdir: a path component already exists as a non-directory")
	}
	return nil
}

// SetReplication changes the target replication factor of a regular file.
func (c *Client) SetReplication(ctx context.Context, path string, replication uint32) error {
	src, err := c.buildPath(path)
	if err != nil {
		return err
	}

	resp := &wire.SetReplicationResponse{}
	req := &wire.SetReplicationRequest{Src: src, Replication: replication}
	if err := c.proxy.Call(ctx, wire.MethodSetReplication, req, resp); err != nil {
		return fmt.Errorf("set replication %s: %w", path, err)
	}
	if !resp.Result {
		return newError(ErrInvalidArgument, src,
			"set replication: path does not exist or is not a regular file")
	}
	return nil
}

// SetOwner changes the owner and/or group of path. Empty strings leave the
// corresponding field unchanged.
func (c *Client) SetOwner(ctx context.Context, path, owner, group string) error {
	src, err := c.buildPath(path)
	if err != nil {
		return err
	}

	req := &wire.SetOwnerRequest{Src: src, Username: owner, Groupname: group}
	if err := c.proxy.Call(ctx, wire.MethodSetOwner, req, &wire.SetOwnerResponse{}); err != nil {
		return fmt.Errorf("set owner %s: %w", path, err)
	}
	return nil
}

// SetPermission changes the permission bits of path.
func (c *Client) SetPermission(ctx context.Context, path string, perm uint32) error {
	src, err := c.buildPath(path)
	if err != nil {
		return err
	}

	req := &wire.SetPermissionRequest{Src: src, Permission: wire.FsPermission{Perm: perm}}
	if err := c.proxy.Call(ctx, wire.MethodSetPermission, req, &wire.SetPermissionResponse{}); err != nil {
		return fmt.Errorf("set permission %s: %w", path, err)
	}
	return nil
}

// SetTimes changes the modification and access times of path. Times are in
// seconds; a negative value means "no change". The wire protocol carries
// milliseconds, so non-sentinel values are scaled up.
func (c *Client) SetTimes(ctx context.Context, path string, mtime, atime int64) error {
	src, err := c.buildPath(path)
	if err != nil {
		return err
	}

	req := &wire.SetTimesRequest{Src: src, Mtime: -1, Atime: -1}
	if mtime >= 0 {
		req.Mtime = mtime * 1000
	}
	if atime >= 0 {
		req.Atime = atime * 1000
	}
	if err := c.proxy.Call(ctx, wire.MethodSetTimes, req, &wire.SetTimesResponse{}); err != nil {
		return fmt.Errorf("set times %s: %w", path, err)
	}
	return nil
}

// GetFileInfo returns the metadata record for one path, or an ErrNotFound
// failure when the path does not exist.
func (c *Client) GetFileInfo(ctx context.Context, path string) (*FileInfo, error) {
	src, err := c.buildPath(path)
	if err != nil {
		return nil, err
	}
	// The stat reply carries a blank relative path, so the display name is
	// entirely the prefix: the session URL prefix plus the resolved path.
	prefix := c.urlPrefix + src

	resp := &wire.GetFileInfoResponse{}
	if err := c.proxy.Call(ctx, wire.MethodGetFileInfo, &wire.GetFileInfoRequest{Src: src}, resp); err != nil {
		return nil, fmt.Errorf("get file info %s: %w", path, err)
	}
	if !resp.HasStatus {
		return nil, newError(ErrNotFound, src, "get file info: no such file or directory")
	}
	return fileInfoFromStatus(&resp.Status, prefix), nil
}

// Exists reports whether path exists, with a single stat round trip.
func (c *Client) Exists(ctx context.Context, path string) (bool, error) {
	_, err := c.GetFileInfo(ctx, path)
	if err != nil {
		var clientErr *ClientError
		if errors.As(err, &clientErr) && clientErr.Code == ErrNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// GetDefaultBlockSizeAtPath asks the server for the preferred block size of
// one particular path.
func (c *Client) GetDefaultBlockSizeAtPath(ctx context.Context, path string) (uint64, error) {
	src, err := c.buildPath(path)
	if err != nil {
		return 0, err
	}

	resp := &wire.GetPreferredBlockSizeResponse{}
	req := &wire.GetPreferredBlockSizeRequest{Filename: src}
	if err := c.proxy.Call(ctx, wire.MethodGetPreferredBlockSize, req, resp); err != nil {
		return 0, fmt.Errorf("get preferred block size %s: %w", path, err)
	}
	return resp.BlockSize, nil
}

// FsStats are whole-filesystem statistics reported by the name server.
type FsStats struct {
	Capacity        int64
	Used            int64
	Remaining       int64
	UnderReplicated int64
	CorruptBlocks   int64
	MissingBlocks   int64
}

// StatFS fetches the current whole-filesystem statistics.
func (c *Client) StatFS(ctx context.Context) (*FsStats, error) {
	resp := &wire.GetFsStatsResponse{}
	if err := c.proxy.Call(ctx, wire.MethodGetFsStats, &wire.GetFsStatsRequest{}, resp); err != nil {
		return nil, fmt.Errorf("statfs: %w", err)
	}
	return &FsStats{
		Capacity:        resp.Capacity,
		Used:            resp.Used,
		Remaining:       resp.Remaining,
		UnderReplicated: resp.UnderReplicated,
		CorruptBlocks:   resp.CorruptBlocks,
		MissingBlocks:   resp.MissingBlocks,
	}, nil
}

// GetCapacity returns the filesystem's total capacity in bytes.
func (c *Client) GetCapacity(ctx context.Context) (int64, error) {
	stats, err := c.StatFS(ctx)
	if err != nil {
		return 0, err
	}
	return stats.Capacity, nil
}

// GetUsed returns the number of bytes currently used.
func (c *Client) GetUsed(ctx context.Context) (int64, error) {
	stats, err := c.StatFS(ctx)
	if err != nil {
		return 0, err
	}
	return stats.Used, nil
}
