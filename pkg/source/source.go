// Package source loads the base row set to enrich, either live from a
// Discogs collection or from a prior CSV export. Rows carry display
// fields plus the release identifier; the identifier is absent when the
// input could not provide one.
package source

import (
	"strconv"
	"strings"

	"github.com/waxrank/waxrank/pkg/discogs"
)

// CategoryAll selects every folder (API) or every row (CSV).
const CategoryAll = "all"

// Row is one collection item as supplied by an input source.
type Row struct {
	CollectionFolder string
	Artist           string
	Title            string
	Label            string
	Format           string
	Released         string
	CatalogNo        string

	// ReleaseID is nil when the input row had no parseable identifier.
	ReleaseID *int64
}

// IDs returns the release ids of rows that have one, in row order and
// with duplicates preserved.
func IDs(rows []Row) []int64 {
	out := make([]int64, 0, len(rows))
	for _, r := range rows {
		if r.ReleaseID != nil {
			out = append(out, *r.ReleaseID)
		}
	}
	return out
}

func normalizeCategory(category string) string {
	return strings.ToLower(strings.TrimSpace(category))
}

// rowFromRelease maps one collection release onto a row. Only the first
// artist and label are kept; the format string is the first format's
// name with its descriptions in parentheses.
func rowFromRelease(folder string, rel discogs.CollectionRelease) Row {
	bi := rel.BasicInformation

	row := Row{
		CollectionFolder: folder,
		Title:            bi.Title,
	}
	if len(bi.Artists) > 0 {
		row.Artist = bi.Artists[0].Name
	}
	if len(bi.Labels) > 0 {
		row.Label = bi.Labels[0].Name
		row.CatalogNo = bi.Labels[0].CatalogNo
	}
	if len(bi.Formats) > 0 {
		f := bi.Formats[0]
		if len(f.Descriptions) > 0 {
			row.Format = f.Name + " (" + strings.Join(f.Descriptions, ", ") + ")"
		} else {
			row.Format = f.Name
		}
	}
	if bi.Year != 0 {
		row.Released = strconv.Itoa(bi.Year)
	}
	if bi.ID != 0 {
		id := bi.ID
		row.ReleaseID = &id
	}
	return row
}
