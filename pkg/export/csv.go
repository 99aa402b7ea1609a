// Package export writes the ranked result CSV by joining base rows to
// scored records.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/waxrank/waxrank/pkg/enrich"
	"github.com/waxrank/waxrank/pkg/errors"
	"github.com/waxrank/waxrank/pkg/source"
)

const releaseURLBase = "https://www.discogs.com/release/"

// header is the fixed output column order.
var header = []string{
	"Sell Order",
	"CollectionFolder",
	"Artist", "Title", "Label", "Format", "Released", "Catalog#",
	"release_id", "Release URL",
	"want_count", "have_count",
	"num_for_sale", "lowest_price",
	"liquidity_score",
}

// DefaultPath names the output file for a run date, MMDDYYYY.
func DefaultPath(now time.Time) string {
	return fmt.Sprintf("collection-output-%s.csv", now.Format("01022006"))
}

// WriteFile writes the ranked CSV to path. Returns the row count.
func WriteFile(path string, rows []source.Row, records []enrich.Record) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidInput, err, "creating output file: %s", path)
	}
	n, werr := Write(f, rows, records)
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	return n, werr
}

// Write joins rows to records by release id and writes the ranked CSV.
// Output order follows the record ranking; rows sharing an id keep
// their input order, and rows with no matching record go last. The
// Sell Order column is the 1-based output row position. Absent values
// are written as empty strings.
func Write(w io.Writer, rows []source.Row, records []enrich.Record) (int, error) {
	byID := make(map[int64][]source.Row, len(records))
	var unmatched []source.Row
	recordFor := make(map[int64]enrich.Record, len(records))
	for _, rec := range records {
		recordFor[rec.ReleaseID] = rec
	}
	for _, row := range rows {
		if row.ReleaseID != nil {
			if _, ok := recordFor[*row.ReleaseID]; ok {
				byID[*row.ReleaseID] = append(byID[*row.ReleaseID], row)
				continue
			}
		}
		unmatched = append(unmatched, row)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return 0, err
	}

	order := 0
	writeRow := func(row source.Row, rec *enrich.Record) error {
		order++
		return cw.Write(renderRow(order, row, rec))
	}

	for _, rec := range records {
		for _, row := range byID[rec.ReleaseID] {
			if err := writeRow(row, &rec); err != nil {
				return order, err
			}
		}
	}
	for _, row := range unmatched {
		if err := writeRow(row, nil); err != nil {
			return order, err
		}
	}

	cw.Flush()
	return order, cw.Error()
}

func renderRow(order int, row source.Row, rec *enrich.Record) []string {
	var (
		id, url                            string
		want, have, forSale, price, scored string
	)
	if row.ReleaseID != nil {
		id = strconv.FormatInt(*row.ReleaseID, 10)
		url = releaseURLBase + id
	}
	if rec != nil {
		want = num(rec.WantCount)
		have = num(rec.HaveCount)
		forSale = num(rec.NumForSale)
		price = num(rec.LowestPrice)
		scored = strconv.FormatFloat(rec.LiquidityScore, 'f', -1, 64)
	}
	return []string{
		strconv.Itoa(order),
		row.CollectionFolder,
		row.Artist, row.Title, row.Label, row.Format, row.Released, row.CatalogNo,
		id, url,
		want, have,
		forSale, price,
		scored,
	}
}

func num(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
