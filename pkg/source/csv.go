package source

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/waxrank/waxrank/pkg/errors"
)

// columns an input CSV must carry; everything else is optional.
const (
	colFolder    = "CollectionFolder"
	colReleaseID = "release_id"
)

// FromCSV reads rows from a prior export. The header must include the
// CollectionFolder and release_id columns; category filters rows by
// folder label, case-insensitively, with "all" keeping everything.
func FromCSV(path, category string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "input file not found: %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "opening input file: %s", path)
	}
	defer f.Close()

	return parseCSV(f, path, category)
}

func parseCSV(r io.Reader, path, category string) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.New(errors.ErrCodeInvalidCSV, "input file is empty: %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidCSV, err, "reading CSV header: %s", path)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{colFolder, colReleaseID} {
		if _, ok := cols[required]; !ok {
			return nil, errors.New(errors.ErrCodeInvalidCSV,
				"CSV input is missing required column: %s", required)
		}
	}

	category = normalizeCategory(category)

	var rows []Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidCSV, err, "reading CSV row: %s", path)
		}

		field := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		folder := field(colFolder)
		if category != CategoryAll && strings.ToLower(folder) != category {
			continue
		}

		rows = append(rows, Row{
			CollectionFolder: folder,
			Artist:           field("Artist"),
			Title:            field("Title"),
			Label:            field("Label"),
			Format:           field("Format"),
			Released:         field("Released"),
			CatalogNo:        field("Catalog#"),
			ReleaseID:        parseReleaseID(field(colReleaseID)),
		})
	}
	return rows, nil
}

// parseReleaseID accepts integer and float renderings of an id, as
// spreadsheet round trips produce both. Anything else is absent.
func parseReleaseID(raw string) *int64 {
	if raw == "" {
		return nil
	}
	if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
		return &id
	}
	if v, err := strconv.ParseFloat(raw, 64); err == nil && v > 0 && v == float64(int64(v)) {
		id := int64(v)
		return &id
	}
	return nil
}
