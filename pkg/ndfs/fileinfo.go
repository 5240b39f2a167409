package ndfs

import "github.com/cortexfs/ndfs/internal/wire"

// Kind distinguishes the two entry kinds this client reports.
type Kind int

const (
	// KindFile is a regular file. Symbolic links are reported as files as
	// well, since this client exposes no link kind.
	KindFile Kind = iota

	// KindDirectory is a directory.
	KindDirectory
)

func (k Kind) String() string {
	if k == KindDirectory {
		return "directory"
	}
	return "file"
}

// FileInfo is the client-facing metadata record for one namespace entry.
//
// Times are reported in whole seconds. The server carries milliseconds on
// the wire; the conversion truncates.
type FileInfo struct {
	// Kind is the entry kind (file or directory).
	Kind Kind

	// Name is the absolute display name: the session's URL prefix followed
	// by the server-relative path.
	Name string

	// Size is the entry size in bytes.
	Size int64

	// Replication is the target replication factor, or 0 when not
	// applicable (e.g. directories).
	Replication uint32

	// BlockSize is the entry's block size in bytes, or 0 when not
	// applicable.
	BlockSize int64

	// Owner and Group identify the entry's owner.
	Owner string
	Group string

	// Permission holds the Unix permission bits.
	Permission uint32

	// ModTime is the last-modification time in seconds.
	ModTime int64

	// AccessTime is the last-access time in seconds.
	AccessTime int64
}

// fileInfoFromStatus translates one wire status record into the public
// metadata record. prefix is prepended to the wire-reported relative path
// to form the absolute display name.
func fileInfoFromStatus(status *wire.FileStatus, prefix string) *FileInfo {
	info := &FileInfo{
		Name:       prefix + string(status.Path),
		Size:       int64(status.Length),
		Owner:      status.Owner,
		Group:      status.Group,
		Permission: status.Permission.Perm,
		ModTime:    status.ModificationTime / 1000,
		AccessTime: status.AccessTime / 1000,
	}

	if status.FileType == wire.FileTypeIsDir {
		info.Kind = KindDirectory
	} else {
		// Symbolic links are not a representable kind here; report them
		// as files.
		info.Kind = KindFile
	}

	if status.HasReplication {
		info.Replication = status.Replication
	}
	if status.HasBlockSize {
		info.BlockSize = int64(status.BlockSize)
	}
	return info
}
