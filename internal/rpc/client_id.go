package rpc

import "github.com/google/uuid"

// ClientID identifies one client connection to the server for the lifetime
// of the session. It is carried on every call so the server can correlate
// retries from the same client.
type ClientID [16]byte

// NewClientID generates a random client ID.
func NewClientID() ClientID {
	return ClientID(uuid.New())
}

func (id ClientID) String() string {
	return uuid.UUID(id).String()
}
