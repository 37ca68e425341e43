package types

import (
	"encoding/json"
	"strconv"
)

// ProductRecord is one extracted item card from a category page.
type ProductRecord struct {
	// ProductID is the suffix of the card's data-test attribute.
	ProductID string `json:"product_id"              bson:"product_id"`

	// Title is the product name.
	Title string `json:"title"                   bson:"title"`

	// ImageURL is the primary product image source.
	ImageURL string `json:"image"                   bson:"image"`

	// ColorOptionCount is the number of real color swatches, excluding
	// the "+N more" overflow indicator.
	ColorOptionCount int `json:"color_options"           bson:"color_options"`

	// SizeInfo is the rendered size range text.
	SizeInfo string `json:"size_info"               bson:"size_info"`

	// OriginalPrice and SalePrice are currency-formatted strings as
	// rendered; either or both may be absent.
	OriginalPrice string `json:"original_price,omitempty" bson:"original_price,omitempty"`
	SalePrice     string `json:"sale_price,omitempty"     bson:"sale_price,omitempty"`

	// DiscountPercent is (original-sale)/original*100 rounded to two
	// decimals, present only when both prices parse as numbers.
	DiscountPercent *float64 `json:"discount,omitempty"       bson:"discount,omitempty"`

	// LimitedOffer is the text of the limited-offer promotional flag.
	LimitedOffer string `json:"limited_offer,omitempty"  bson:"limited_offer,omitempty"`

	// AdditionalTags are the remaining promotional flag texts in render
	// order; duplicates are kept.
	AdditionalTags []string `json:"additional_info,omitempty" bson:"additional_info,omitempty"`

	// ProductURL is the absolute product page URL.
	ProductURL string `json:"product_url"             bson:"product_url"`
}

// FieldNames returns the record's field names in struct order. CSV output
// uses this as the header row.
func FieldNames() []string {
	return []string{
		"product_id",
		"title",
		"image",
		"color_options",
		"size_info",
		"original_price",
		"sale_price",
		"discount",
		"limited_offer",
		"additional_info",
		"product_url",
	}
}

// FlatRow returns the record as CSV cells, aligned with FieldNames.
// Non-scalar fields are JSON-encoded into their cell.
func (r *ProductRecord) FlatRow() []string {
	discount := ""
	if r.DiscountPercent != nil {
		discount = strconv.FormatFloat(*r.DiscountPercent, 'f', -1, 64)
	}

	tags := ""
	if len(r.AdditionalTags) > 0 {
		b, _ := json.Marshal(r.AdditionalTags)
		tags = string(b)
	}

	return []string{
		r.ProductID,
		r.Title,
		r.ImageURL,
		strconv.Itoa(r.ColorOptionCount),
		r.SizeInfo,
		r.OriginalPrice,
		r.SalePrice,
		discount,
		r.LimitedOffer,
		tags,
		r.ProductURL,
	}
}

// Complete reports whether the record carries every required field.
func (r *ProductRecord) Complete() bool {
	return r.ProductID != "" && r.Title != "" && r.ImageURL != "" && r.ProductURL != ""
}
