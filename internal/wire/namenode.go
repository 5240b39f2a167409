package wire

// ClientProtocol is the protocol name presented to the name server when a
// call is dispatched.
const ClientProtocol = "org.apache.hadoop.hdfs.protocol.ClientProtocol"

// Method names understood by the name server's client protocol.
const (
	MethodDelete                = "delete"
	MethodRename2               = "rename2"
	MethodMkdirs                = "mkdirs"
	MethodSetReplication        = "setReplication"
	MethodSetOwner              = "setOwner"
	MethodSetPermission         = "setPermission"
	MethodSetTimes              = "setTimes"
	MethodGetListing            = "getListing"
	MethodGetFileInfo           = "getFileInfo"
	MethodGetPreferredBlockSize = "getPreferredBlockSize"
	MethodGetFsStats            = "getFsStats"
	MethodGetServerDefaults     = "getServerDefaults"
)

type DeleteRequest struct {
	Src       string
	Recursive bool
}

type DeleteResponse struct {
	Result bool
}

type Rename2Request struct {
	Src           string
	Dst           string
	OverwriteDest bool
}

type Rename2Response struct{}

type MkdirsRequest struct {
	Src          string
	Masked       FsPermission
	CreateParent bool
}

type MkdirsResponse struct {
	Result bool
}

type SetReplicationRequest struct {
	Src         string
	Replication uint32
}

type SetReplicationResponse struct {
	Result bool
}

type SetOwnerRequest struct {
	Src       string
	Username  string
	Groupname string
}

type SetOwnerResponse struct{}

type SetPermissionRequest struct {
	Src        string
	Permission FsPermission
}

type SetPermissionResponse struct{}

// SetTimesRequest carries times in milliseconds; -1 means "no change".
type SetTimesRequest struct {
	Src   string
	Mtime int64
	Atime int64
}

type SetTimesResponse struct{}

// GetListingRequest asks for the page of entries strictly after StartAfter
// (the empty string requests the first page). NeedLocation requests block
// location data, which this client never needs for metadata listings.
type GetListingRequest struct {
	Src          string
	StartAfter   []byte `xdr:"opaque"`
	NeedLocation bool
}

// GetListingResponse carries one listing page. HasDirList is false when the
// requested directory does not exist.
type GetListingResponse struct {
	HasDirList bool
	DirList    DirectoryListing
}

type GetFileInfoRequest struct {
	Src string
}

// GetFileInfoResponse carries the status of one path. HasStatus is false
// when the path does not exist.
type GetFileInfoResponse struct {
	HasStatus bool
	Status    FileStatus
}

type GetPreferredBlockSizeRequest struct {
	Filename string
}

type GetPreferredBlockSizeResponse struct {
	BlockSize uint64
}

type GetFsStatsRequest struct{}

type GetFsStatsResponse struct {
	Capacity        int64
	Used            int64
	Remaining       int64
	UnderReplicated int64
	CorruptBlocks   int64
	MissingBlocks   int64
}

type GetServerDefaultsRequest struct{}

type GetServerDefaultsResponse struct {
	ServerDefaults FsServerDefaults
}
