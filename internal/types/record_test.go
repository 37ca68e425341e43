package types

import (
	"testing"
)

func TestFlatRowAlignsWithFieldNames(t *testing.T) {
	discount := 33.44
	rec := &ProductRecord{
		ProductID:        "E459592-000",
		Title:            "AIRism Cotton T-Shirt",
		ImageURL:         "https://img.example.com/459592.jpg",
		ColorOptionCount: 2,
		SizeInfo:         "XS-XXL",
		OriginalPrice:    "RM29.90",
		SalePrice:        "RM19.90",
		DiscountPercent:  &discount,
		LimitedOffer:     "Limited Offer",
		AdditionalTags:   []string{"NEW"},
		ProductURL:       "https://www.example.com/my/en/products/E459592-000",
	}

	names := FieldNames()
	row := rec.FlatRow()
	if len(row) != len(names) {
		t.Fatalf("row has %d cells, header has %d", len(row), len(names))
	}

	cells := map[string]string{}
	for i, name := range names {
		cells[name] = row[i]
	}
	if cells["product_id"] != "E459592-000" {
		t.Errorf("product_id cell = %q", cells["product_id"])
	}
	if cells["discount"] != "33.44" {
		t.Errorf("discount cell = %q, want 33.44", cells["discount"])
	}
	if cells["additional_info"] != `["NEW"]` {
		t.Errorf("additional_info cell = %q", cells["additional_info"])
	}
}

func TestFlatRowAbsentOptionals(t *testing.T) {
	rec := &ProductRecord{ProductID: "X", Title: "Y", ImageURL: "Z", ProductURL: "W"}
	row := rec.FlatRow()

	names := FieldNames()
	for i, name := range names {
		switch name {
		case "original_price", "sale_price", "discount", "limited_offer", "additional_info":
			if row[i] != "" {
				t.Errorf("%s cell = %q, want empty", name, row[i])
			}
		}
	}
}

func TestComplete(t *testing.T) {
	tests := []struct {
		name string
		rec  ProductRecord
		want bool
	}{
		{"all required", ProductRecord{ProductID: "a", Title: "b", ImageURL: "c", ProductURL: "d"}, true},
		{"missing id", ProductRecord{Title: "b", ImageURL: "c", ProductURL: "d"}, false},
		{"missing title", ProductRecord{ProductID: "a", ImageURL: "c", ProductURL: "d"}, false},
		{"missing image", ProductRecord{ProductID: "a", Title: "b", ProductURL: "d"}, false},
		{"missing url", ProductRecord{ProductID: "a", Title: "b", ImageURL: "c"}, false},
	}

	for _, tt := range tests {
		if got := tt.rec.Complete(); got != tt.want {
			t.Errorf("%s: Complete() = %v, want %v", tt.name, got, tt.want)
		}
	}
}
