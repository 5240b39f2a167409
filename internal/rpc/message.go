package rpc

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	xdr "github.com/rasky/go-xdr/xdr2"
)

// Reply status values carried in ReplyMessage.Status.
const (
	StatusSuccess uint32 = 0
	StatusError   uint32 = 1
	StatusFatal   uint32 = 2
)

// maxFrameSize bounds a single message frame. Metadata replies are small;
// anything larger indicates a corrupt or hostile stream.
const maxFrameSize = 64 << 20

// CallMessage is the header and payload of one outgoing invocation.
type CallMessage struct {
	XID      uint32
	ClientID []byte `xdr:"opaque"`
	Protocol string
	Method   string
	User     string
	Body     []byte `xdr:"opaque"`
}

// ReplyMessage is the server's answer to a CallMessage. Message is only
// meaningful when Status != StatusSuccess.
type ReplyMessage struct {
	XID     uint32
	Status  uint32
	Message string
	Body    []byte `xdr:"opaque"`
}

// EncodeMessage renders v as the payload of a single frame: a 4-byte header
// carrying the last-fragment bit and length, followed by the XDR encoding.
func EncodeMessage(v any) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := xdr.Marshal(&buf, v); err != nil {
		return nil, fmt.Errorf("marshal message: %w", err)
	}

	data := buf.Bytes()
	framed := make([]byte, 4+len(data))
	binary.BigEndian.PutUint32(framed, 0x80000000|uint32(len(data)))
	copy(framed[4:], data)
	return framed, nil
}

// ReadFrame reads one complete message from r, reassembling fragments until
// the last-fragment bit is seen.
func ReadFrame(r io.Reader) ([]byte, error) {
	var message []byte
	for {
		var header [4]byte
		if _, err := io.ReadFull(r, header[:]); err != nil {
			return nil, err
		}

		raw := binary.BigEndian.Uint32(header[:])
		last := raw&0x80000000 != 0
		length := raw & 0x7fffffff
		if length > maxFrameSize || uint64(len(message))+uint64(length) > maxFrameSize {
			return nil, fmt.Errorf("frame of %d bytes exceeds maximum of %d", length, maxFrameSize)
		}

		fragment := make([]byte, length)
		if _, err := io.ReadFull(r, fragment); err != nil {
			return nil, fmt.Errorf("read %d-byte fragment: %w", length, err)
		}
		message = append(message, fragment...)

		if last {
			return message, nil
		}
	}
}

// DecodeCall parses a framed payload as a CallMessage.
func DecodeCall(data []byte) (*CallMessage, error) {
	call := &CallMessage{}
	if _, err := xdr.Unmarshal(bytes.NewReader(data), call); err != nil {
		return nil, fmt.Errorf("unmarshal call: %w", err)
	}
	return call, nil
}

// DecodeReply parses a framed payload as a ReplyMessage.
func DecodeReply(data []byte) (*ReplyMessage, error) {
	reply := &ReplyMessage{}
	if _, err := xdr.Unmarshal(bytes.NewReader(data), reply); err != nil {
		return nil, fmt.Errorf("unmarshal reply: %w", err)
	}
	return reply, nil
}
