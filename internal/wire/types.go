// Package wire defines the typed messages exchanged with the name server's
// client protocol. The structures are plain values; the transport in
// internal/rpc is responsible for encoding them. Optional fields carry an
// explicit Has* presence flag so that absence survives encoding.
package wire

// File type discriminator carried in FileStatus.FileType.
const (
	FileTypeIsDir     uint32 = 1
	FileTypeIsFile    uint32 = 2
	FileTypeIsSymlink uint32 = 3
)

// FsPermission is a set of Unix permission bits.
type FsPermission struct {
	Perm uint32
}

// FileStatus is one namespace entry as reported by the name server.
//
// Path holds the entry name relative to the listed directory as raw bytes;
// it is length-bounded, not terminated. Times are in milliseconds.
type FileStatus struct {
	FileType         uint32
	Path             []byte `xdr:"opaque"`
	Length           uint64
	Permission       FsPermission
	Owner            string
	Group            string
	ModificationTime int64
	AccessTime       int64

	HasReplication bool
	Replication    uint32

	HasBlockSize bool
	BlockSize    uint64
}

// DirectoryListing is one page of a paginated directory listing.
// RemainingEntries is advisory: zero means the listing is complete, any
// nonzero value means at least one more page must be requested.
type DirectoryListing struct {
	PartialListing   []FileStatus
	RemainingEntries uint32
}

// FsServerDefaults carries the server-side defaults reported at connect
// time. Only the block size is consumed by this client.
type FsServerDefaults struct {
	BlockSize     uint64
	BytesPerCheck uint32
	WritePacket   uint32
	Replication   uint32
	FileBuffer    uint32
}
