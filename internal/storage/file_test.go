package storage

import (
	"encoding/csv"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/gridcrawl/gridcrawl/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func sampleRecords() []*types.ProductRecord {
	discount := 25.0
	return []*types.ProductRecord{
		{
			ProductID:        "E459592-000",
			Title:            "AIRism Cotton T-Shirt",
			ImageURL:         "https://img.example.com/459592.jpg",
			ColorOptionCount: 2,
			SizeInfo:         "XS-XXL",
			OriginalPrice:    "RM100.00",
			SalePrice:        "RM75.00",
			DiscountPercent:  &discount,
			LimitedOffer:     "Limited Offer",
			AdditionalTags:   []string{"NEW", "Online Exclusive"},
			ProductURL:       "https://www.example.com/my/en/products/E459592-000",
		},
		{
			ProductID:        "E460101-000",
			Title:            "Ultra Stretch Tシャツ", // non-ASCII survives the JSON form
			ImageURL:         "https://img.example.com/460101.jpg",
			ColorOptionCount: 0,
			SizeInfo:         "S-XL",
			ProductURL:       "https://www.example.com/my/en/products/E460101-000",
		},
	}
}

func TestJSONSinkRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.json")
	sink, err := NewJSONSink(path, testLogger)
	if err != nil {
		t.Fatalf("NewJSONSink: %v", err)
	}

	in := sampleRecords()
	if err := sink.Write(in); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	out, err := ReadJSON(path)
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Errorf("round trip mismatch:\nwrote %+v\nread  %+v", in[0], out[0])
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if !strings.Contains(string(raw), "Tシャツ") {
		t.Error("non-ASCII text was escaped or lost")
	}
}

func TestJSONSinkEmptyWritesNoFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.json")
	sink, err := NewJSONSink(path, testLogger)
	if err != nil {
		t.Fatalf("NewJSONSink: %v", err)
	}

	if err := sink.Write(nil); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("empty input must not create a file")
	}
}

func TestCSVSinkColumnOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.csv")
	sink, err := NewCSVSink(path, testLogger)
	if err != nil {
		t.Fatalf("NewCSVSink: %v", err)
	}

	if err := sink.Write(sampleRecords()); err != nil {
		t.Fatalf("Write: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header + 2 records", len(rows))
	}
	if !reflect.DeepEqual(rows[0], types.FieldNames()) {
		t.Errorf("header = %v, want field order %v", rows[0], types.FieldNames())
	}
	if rows[1][0] != "E459592-000" || rows[1][7] != "25" {
		t.Errorf("first row = %v", rows[1])
	}
	if rows[2][5] != "" || rows[2][7] != "" {
		t.Errorf("absent price fields must be empty cells, got %v", rows[2])
	}
}

func TestCSVSinkEmptyWritesNoFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.csv")
	sink, err := NewCSVSink(path, testLogger)
	if err != nil {
		t.Fatalf("NewCSVSink: %v", err)
	}

	if err := sink.Write(nil); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("empty input must not create a file")
	}
}

func TestMultiSinkFanOut(t *testing.T) {
	dir := t.TempDir()
	csvSink, err := NewCSVSink(filepath.Join(dir, "products.csv"), testLogger)
	if err != nil {
		t.Fatalf("NewCSVSink: %v", err)
	}
	jsonSink, err := NewJSONSink(filepath.Join(dir, "products.json"), testLogger)
	if err != nil {
		t.Fatalf("NewJSONSink: %v", err)
	}

	multi := NewMultiSink(testLogger, csvSink, jsonSink)
	if err := multi.Write(sampleRecords()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := multi.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	for _, name := range []string{"products.csv", "products.json"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s not written: %v", name, err)
		}
	}
}
