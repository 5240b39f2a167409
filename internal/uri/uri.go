// Package uri parses and resolves filesystem URIs of the form
// scheme://user@authority:port/path. It supports resolving a relative
// reference against a base URI, which is how the client combines
// caller-supplied paths with the session working directory.
package uri

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Flag controls which components Parse extracts and how the path is
// normalized.
type Flag int

const (
	// ParseScheme extracts the scheme component.
	ParseScheme Flag = 1 << iota

	// ParseUserInfo extracts the user-info component.
	ParseUserInfo

	// ParseAuth extracts the authority (host) component.
	ParseAuth

	// ParsePort extracts the port component.
	ParsePort

	// ParsePath extracts the path component.
	ParsePath

	// AppendSlash forces the parsed path to end with a separator.
	AppendSlash

	// ParseAll extracts every component.
	ParseAll = ParseScheme | ParseUserInfo | ParseAuth | ParsePort | ParsePath
)

// URI is a parsed filesystem URI. Components that were not requested via
// flags (or absent in the input) are zero values.
type URI struct {
	Scheme   string
	UserInfo string
	Host     string
	Port     int
	Path     string
}

// Parse parses text into a URI. When base is non-nil and text is a relative
// reference, it is resolved against base the way a relative URL is resolved
// against its document.
func Parse(text string, base *URI, flags Flag) (*URI, error) {
	ref, err := url.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse uri %q: %w", text, err)
	}

	resolved := ref
	if base != nil {
		resolved = base.toURL().ResolveReference(ref)
	}

	out := &URI{}
	if flags&ParseScheme != 0 {
		out.Scheme = resolved.Scheme
	}
	if flags&ParseUserInfo != 0 && resolved.User != nil {
		out.UserInfo = resolved.User.Username()
	}
	if flags&ParseAuth != 0 {
		out.Host = resolved.Hostname()
	}
	if flags&ParsePort != 0 && resolved.Port() != "" {
		port, err := strconv.Atoi(resolved.Port())
		if err != nil || port < 1 || port > 65535 {
			return nil, fmt.Errorf("parse uri %q: invalid port %q", text, resolved.Port())
		}
		out.Port = port
	}
	if flags&ParsePath != 0 {
		out.Path = resolved.Path
	}
	if flags&AppendSlash != 0 && !strings.HasSuffix(out.Path, "/") {
		out.Path += "/"
	}
	return out, nil
}

// Authority renders the host[:port] part, omitting a zero port.
func (u *URI) Authority() string {
	if u.Port != 0 {
		return fmt.Sprintf("%s:%d", u.Host, u.Port)
	}
	return u.Host
}

// String renders the URI back into text form.
func (u *URI) String() string {
	return u.toURL().String()
}

func (u *URI) toURL() *url.URL {
	out := &url.URL{
		Scheme: u.Scheme,
		Host:   u.Authority(),
		Path:   u.Path,
	}
	if u.UserInfo != "" {
		out.User = url.User(u.UserInfo)
	}
	return out
}
