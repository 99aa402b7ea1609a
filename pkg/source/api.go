package source

import (
	"context"
	"sort"
	"strings"

	"github.com/waxrank/waxrank/pkg/discogs"
	"github.com/waxrank/waxrank/pkg/errors"
)

// CollectionAPI is the slice of the Discogs client the API source needs.
type CollectionAPI interface {
	Folders(ctx context.Context, username string) ([]discogs.Folder, error)
	FolderReleases(ctx context.Context, username string, folderID int64) ([]discogs.CollectionRelease, error)
}

// FromAPI fetches a user's collection rows for one folder, or for every
// real folder when category is "all". Folder names match
// case-insensitively; rows are tagged with the lowercased folder name.
func FromAPI(ctx context.Context, api CollectionAPI, username, category string) ([]Row, error) {
	folders, err := api.Folders(ctx, username)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]int64, len(folders))
	for _, f := range folders {
		name := strings.TrimSpace(f.Name)
		if name == "" {
			continue
		}
		byName[strings.ToLower(name)] = f.ID
	}
	if len(byName) == 0 {
		return nil, errors.New(errors.ErrCodeFolderNotFound,
			"no folders found for user %q (user may not exist or collection may be private)", username)
	}

	category = normalizeCategory(category)
	if category == CategoryAll {
		return allFolders(ctx, api, username, byName)
	}

	id, ok := byName[category]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidCategory,
			"folder %q not found for user %q (available folders: %s)",
			category, username, strings.Join(folderNames(byName), ", "))
	}
	return folderRows(ctx, api, username, category, id)
}

// allFolders iterates every folder except the id-0 "All" pseudo-folder,
// in name order, and concatenates their rows.
func allFolders(ctx context.Context, api CollectionAPI, username string, byName map[string]int64) ([]Row, error) {
	names := make([]string, 0, len(byName))
	for name, id := range byName {
		if id == 0 {
			continue
		}
		names = append(names, name)
	}
	if len(names) == 0 {
		return nil, errors.New(errors.ErrCodeFolderNotFound,
			"no public folders found for user %q", username)
	}
	sort.Strings(names)

	var rows []Row
	for _, name := range names {
		got, err := folderRows(ctx, api, username, name, byName[name])
		if err != nil {
			return nil, err
		}
		rows = append(rows, got...)
	}
	return rows, nil
}

func folderRows(ctx context.Context, api CollectionAPI, username, folder string, folderID int64) ([]Row, error) {
	releases, err := api.FolderReleases(ctx, username, folderID)
	if err != nil {
		return nil, err
	}
	rows := make([]Row, 0, len(releases))
	for _, rel := range releases {
		rows = append(rows, rowFromRelease(folder, rel))
	}
	return rows, nil
}

func folderNames(byName map[string]int64) []string {
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
