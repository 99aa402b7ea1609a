package discogs

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
)

// perPage is the page size used for folder release listings.
const perPage = 100

// Folders fetches the collection folder listing for a user.
// Folder names are reported verbatim; callers normalize case as needed.
func (c *Client) Folders(ctx context.Context, username string) ([]Folder, error) {
	var resp foldersResponse
	path := fmt.Sprintf("/users/%s/collection/folders", url.PathEscape(username))
	if err := c.getJSON(ctx, path, nil, false, &resp); err != nil {
		return nil, err
	}
	return resp.Folders, nil
}

// FolderReleases fetches every release in a collection folder, following
// pagination until the reported page count is exhausted. A 404 on the
// folder is treated as an empty folder, not an error.
func (c *Client) FolderReleases(ctx context.Context, username string, folderID int64) ([]CollectionRelease, error) {
	path := fmt.Sprintf("/users/%s/collection/folders/%d/releases", url.PathEscape(username), folderID)

	var out []CollectionRelease
	for page := 1; ; page++ {
		query := url.Values{
			"page":     {strconv.Itoa(page)},
			"per_page": {strconv.Itoa(perPage)},
		}

		var resp folderReleasesResponse
		err := c.getJSON(ctx, path, query, true, &resp)
		if errors.Is(err, ErrNotFound) {
			break
		}
		if err != nil {
			return nil, err
		}

		out = append(out, resp.Releases...)

		if resp.Pagination.Pages == 0 || page >= resp.Pagination.Pages {
			break
		}
	}
	return out, nil
}

// MarketplaceStats fetches current marketplace supply and pricing for a
// release in the client's configured currency. Returns ErrNotFound when
// the release has no marketplace stats.
func (c *Client) MarketplaceStats(ctx context.Context, releaseID int64) (*MarketplaceStats, error) {
	var stats MarketplaceStats
	path := fmt.Sprintf("/marketplace/stats/%d", releaseID)
	query := url.Values{"curr_abbr": {c.currency}}
	if err := c.getJSON(ctx, path, query, true, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Release fetches release details. Unlike marketplace stats, a missing
// release is an error: identifiers come from the user's own collection, so
// a 404 here signals a real problem rather than an empty result.
func (c *Client) Release(ctx context.Context, releaseID int64) (*Release, error) {
	var rel Release
	path := fmt.Sprintf("/releases/%d", releaseID)
	if err := c.getJSON(ctx, path, nil, false, &rel); err != nil {
		return nil, err
	}
	return &rel, nil
}
