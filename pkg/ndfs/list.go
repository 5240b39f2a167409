package ndfs

import (
	"context"
	"fmt"

	"github.com/cortexfs/ndfs/internal/wire"
)

// ListDirectory returns every entry of the directory at path, in server
// order.
//
// The server pages listings: each round trip returns one batch plus an
// advisory count of remaining entries. The count's magnitude is meaningless
// by the time the next request lands, so pagination continues exactly while
// it is nonzero, using the last entry's display name as the cursor. On any
// mid-pagination failure the partial result is dropped and the failure
// propagates; callers never see a truncated listing presented as complete.
func (c *Client) ListDirectory(ctx context.Context, path string) ([]*FileInfo, error) {
	dir, err := c.buildPath(path)
	if err != nil {
		return nil, err
	}
	prefix := fmt.Sprintf("%s%s/", c.urlPrefix, dir)

	var entries []*FileInfo
	prev := ""
	for {
		batch, remaining, err := c.listPartial(ctx, dir, prev, prefix)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", path, err)
		}
		entries = append(entries, batch...)
		if remaining == 0 {
			return entries, nil
		}
		if len(entries) > 0 {
			prev = entries[len(entries)-1].Name
		}
	}
}

// listPartial fetches the batch of entries strictly after prev.
func (c *Client) listPartial(ctx context.Context, dir, prev, prefix string) ([]*FileInfo, uint32, error) {
	resp := &wire.GetListingResponse{}
	req := &wire.GetListingRequest{
		Src:          dir,
		StartAfter:   []byte(prev),
		NeedLocation: false,
	}
	if err := c.proxy.Call(ctx, wire.MethodGetListing, req, resp); err != nil {
		return nil, 0, err
	}
	if !resp.HasDirList {
		return nil, 0, newError(ErrNotFound, dir, "no such directory")
	}

	batch := make([]*FileInfo, 0, len(resp.DirList.PartialListing))
	for i := range resp.DirList.PartialListing {
		batch = append(batch, fileInfoFromStatus(&resp.DirList.PartialListing[i], prefix))
	}
	return batch, resp.DirList.RemainingEntries, nil
}
