package ndfs

import (
	"fmt"

	"github.com/cortexfs/ndfs/internal/uri"
)

// buildPath resolves a caller-supplied path or URI into an absolute
// server-side path. Relative inputs are resolved against the current
// working directory; absolute URIs are validated against the session's
// scheme and authority. The working directory is read under the session
// lock so a concurrent SetWorkingDirectory is never observed half-applied.
func (c *Client) buildPath(pathOrURI string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	parsed, err := uri.Parse(pathOrURI, c.workingURI, uri.ParseAll)
	if err != nil {
		return "", newError(ErrInvalidArgument, pathOrURI, fmt.Sprintf("resolve path: %v", err))
	}
	if parsed.Scheme != "" && parsed.Scheme != c.scheme {
		return "", newError(ErrInvalidArgument, pathOrURI,
			fmt.Sprintf("scheme %q does not match the session scheme %q", parsed.Scheme, c.scheme))
	}
	if parsed.Host != "" && parsed.Host != c.authHost {
		return "", newError(ErrInvalidArgument, pathOrURI,
			fmt.Sprintf("authority %q does not match the session authority %q", parsed.Host, c.authHost))
	}

	if parsed.Path == "" {
		// A URI with an empty path ("hdfs://namenode", no trailing slash)
		// names the current working directory, not the root.
		return c.workingURI.Path, nil
	}
	return parsed.Path, nil
}

// GetWorkingDirectory copies the current working-directory path into buf
// and returns the number of path bytes written. buf must have room for the
// path plus one terminating zero byte; otherwise the call fails with an
// ErrNameTooLong failure and buf is untouched.
func (c *Client) GetWorkingDirectory(buf []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	path := c.workingURI.Path
	if len(path)+1 > len(buf) {
		return 0, newError(ErrNameTooLong, path,
			fmt.Sprintf("the buffer supplied was only %d bytes, but we would need %d bytes to hold the working directory",
				len(buf), len(path)+1))
	}
	n := copy(buf, path)
	buf[n] = 0
	return n, nil
}

// WorkingDirectory returns the current working-directory path.
func (c *Client) WorkingDirectory() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.workingURI.Path
}

// SetWorkingDirectory replaces the working directory. The new value is
// parsed relative to the previous working directory, inheriting its scheme
// and authority when omitted, and always ends in a path separator. On a
// parse failure the previous working directory stays active.
func (c *Client) SetWorkingDirectory(pathOrURI string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	parsed, err := uri.Parse(pathOrURI, c.workingURI, uri.ParseAll|uri.AppendSlash)
	if err != nil {
		return newError(ErrInvalidArgument, pathOrURI, fmt.Sprintf("set working directory: %v", err))
	}
	c.workingURI = parsed
	return nil
}
