package ndfs

// ClientError represents a domain error from a metadata operation.
//
// These are namespace-level failures (path not found, already exists, bad
// argument) as opposed to infrastructure failures, which are passed through
// wrapped with the operation that hit them.
type ClientError struct {
	// Code is the error category
	Code ErrorCode

	// Message is a human-readable error description
	Message string

	// Path is the filesystem path related to the error (if applicable)
	Path string
}

// Error implements the error interface.
func (e *ClientError) Error() string {
	if e.Path != "" {
		return e.Message + ": " + e.Path
	}
	return e.Message
}

// ErrorCode represents the category of a client error.
type ErrorCode int

const (
	// ErrNotFound indicates the requested path or directory doesn't exist
	ErrNotFound ErrorCode = iota

	// ErrAlreadyExists indicates a path component already exists as a
	// non-directory
	ErrAlreadyExists

	// ErrInvalidArgument indicates invalid parameters were provided
	// Examples: malformed port, bad permission string, unparseable URI
	ErrInvalidArgument

	// ErrUnsupported indicates a configuration or operation this client
	// does not support, such as multi-authority name services
	ErrUnsupported

	// ErrNameTooLong indicates a caller-supplied buffer cannot hold a path
	ErrNameTooLong

	// ErrIO indicates a transport or protocol failure
	ErrIO
)

func newError(code ErrorCode, path, message string) *ClientError {
	return &ClientError{Code: code, Message: message, Path: path}
}
