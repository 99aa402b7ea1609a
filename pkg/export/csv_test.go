package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/waxrank/waxrank/pkg/enrich"
	"github.com/waxrank/waxrank/pkg/source"
)

func f(v float64) *float64 { return &v }
func id(v int64) *int64    { return &v }

func record(releaseID int64, scoreVal, want float64) enrich.Record {
	return enrich.Record{
		ReleaseID: releaseID,
		MarketStats: enrich.MarketStats{
			NumForSale:  f(3),
			LowestPrice: f(12.5),
		},
		ReleaseDetails: enrich.ReleaseDetails{
			WantCount: f(want),
			HaveCount: f(10),
		},
		LiquidityScore: scoreVal,
	}
}

func TestWriteOrderAndJoin(t *testing.T) {
	rows := []source.Row{
		{CollectionFolder: "selling", Title: "Low Score", ReleaseID: id(2)},
		{CollectionFolder: "selling", Title: "No ID"},
		{CollectionFolder: "selling", Title: "High Score", ReleaseID: id(1)},
		{CollectionFolder: "keepers", Title: "High Score Dupe", ReleaseID: id(1)},
	}
	records := []enrich.Record{
		record(1, 4.2, 100),
		record(2, -1.5, 5),
	}

	var buf strings.Builder
	n, err := Write(&buf, rows, records)
	if err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if n != 4 {
		t.Errorf("wrote %d rows, want 4", n)
	}

	out, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if len(out) != 5 {
		t.Fatalf("got %d lines, want header + 4 rows", len(out))
	}

	if got := strings.Join(out[0], ","); got != "Sell Order,CollectionFolder,Artist,Title,Label,Format,Released,Catalog#,release_id,Release URL,want_count,have_count,num_for_sale,lowest_price,liquidity_score" {
		t.Errorf("header = %q", got)
	}

	titles := []string{out[1][3], out[2][3], out[3][3], out[4][3]}
	want := []string{"High Score", "High Score Dupe", "Low Score", "No ID"}
	for i := range want {
		if titles[i] != want[i] {
			t.Errorf("row %d title = %q, want %q", i+1, titles[i], want[i])
		}
	}

	// Sell Order counts output rows, 1-based.
	for i := 1; i < len(out); i++ {
		if out[i][0] != string(rune('0'+i)) {
			t.Errorf("row %d Sell Order = %q", i, out[i][0])
		}
	}
}

func TestWriteCellRendering(t *testing.T) {
	rows := []source.Row{
		{CollectionFolder: "selling", Title: "Scored", ReleaseID: id(42)},
		{CollectionFolder: "selling", Title: "Blank ID"},
	}
	rec := enrich.Record{
		ReleaseID:      42,
		MarketStats:    enrich.MarketStats{NumForSale: f(0)},
		ReleaseDetails: enrich.ReleaseDetails{WantCount: f(150), HaveCount: f(80)},
		LiquidityScore: -8.9078,
	}

	var buf strings.Builder
	if _, err := Write(&buf, rows, []enrich.Record{rec}); err != nil {
		t.Fatal(err)
	}
	out, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	if err != nil {
		t.Fatal(err)
	}

	scored := out[1]
	if scored[8] != "42" || scored[9] != "https://www.discogs.com/release/42" {
		t.Errorf("id cells = %q/%q", scored[8], scored[9])
	}
	if scored[10] != "150" || scored[11] != "80" || scored[12] != "0" {
		t.Errorf("count cells = %q/%q/%q", scored[10], scored[11], scored[12])
	}
	if scored[13] != "" {
		t.Errorf("absent lowest_price = %q, want empty", scored[13])
	}
	if scored[14] != "-8.9078" {
		t.Errorf("liquidity_score = %q", scored[14])
	}

	blank := out[2]
	for _, i := range []int{8, 9, 10, 11, 12, 13, 14} {
		if blank[i] != "" {
			t.Errorf("blank-id cell %d = %q, want empty", i, blank[i])
		}
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	rows := []source.Row{{CollectionFolder: "selling", Title: "A", ReleaseID: id(1)}}

	n, err := WriteFile(path, rows, []enrich.Record{record(1, 1.0, 10)})
	if err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}
	if n != 1 {
		t.Errorf("wrote %d rows, want 1", n)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "Sell Order,") {
		t.Errorf("output missing header: %q", string(data[:20]))
	}
}

func TestDefaultPath(t *testing.T) {
	now := time.Date(2026, time.March, 7, 12, 0, 0, 0, time.UTC)
	if got := DefaultPath(now); got != "collection-output-03072026.csv" {
		t.Errorf("DefaultPath = %q", got)
	}
}
