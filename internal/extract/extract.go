// Package extract maps one rendered item card to a ProductRecord,
// applying the field-specific fallback rules of the site template. A
// failing item never takes the batch down with it.
package extract

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/gridcrawl/gridcrawl/internal/policy"
	"github.com/gridcrawl/gridcrawl/internal/types"
)

// Selectors of the site template. The card markup is the one stable part
// of the page; the load-more control is handled elsewhere.
const (
	attrCardID       = "data-test"
	cardIDPrefix     = "product-card-"
	selImage         = ".fr-product-image img"
	selColorTips     = ".color-tips .color-tip"
	selTitle         = "h2.description"
	selSize          = `[data-test="product-card-size"]`
	selOriginalPrice = ".fr-product-price .price-original .fr-price-currency span"
	selLimitedPrice  = ".fr-product-price .price-limited .fr-price-currency span"
	selLimitedOffer  = `.fr-status-flag-text[data-test^="limited-offer-from"]`
	selFlagItems     = "ul.fr-status-flag li"
	selAnchor        = "a"
)

// extraSwatchMarker tags the "+N more" overflow swatch, which is not a
// real color option.
const extraSwatchMarker = "extra"

// Extractor turns item cards into ProductRecords.
type Extractor struct {
	baseURL *url.URL
	policy  *policy.Policy
	logger  *slog.Logger
}

// New creates an Extractor resolving product links against baseURL.
func New(baseURL string, pol *policy.Policy, logger *slog.Logger) (*Extractor, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", types.ErrInvalidURL, baseURL, err)
	}
	return &Extractor{
		baseURL: u,
		policy:  pol,
		logger:  logger.With("component", "extractor"),
	}, nil
}

// ExtractHTML parses one card's outer HTML and extracts its record.
func (e *Extractor) ExtractHTML(index int, cardHTML string) (*types.ProductRecord, error) {
	node, err := html.Parse(strings.NewReader(cardHTML))
	if err != nil {
		return nil, &types.ExtractError{Index: index, Err: err}
	}
	doc := goquery.NewDocumentFromNode(node)
	return e.Extract(index, doc.Selection)
}

// Extract maps one parsed item card to a ProductRecord. It returns a
// *types.ExtractError when a required field is missing, or an error
// wrapping types.ErrPolicyDisallowed when the product URL is filtered;
// both mean "no record" and are the item's own terminal failure.
func (e *Extractor) Extract(index int, card *goquery.Selection) (*types.ProductRecord, error) {
	rec := &types.ProductRecord{}

	// Identifier: suffix of the card's data-test attribute.
	cardAttr, ok := cardAttrValue(card)
	if !ok {
		return nil, &types.ExtractError{Index: index, Field: "product_id", Err: types.ErrMissingField}
	}
	parts := strings.Split(cardAttr, cardIDPrefix)
	rec.ProductID = parts[len(parts)-1]
	if rec.ProductID == "" {
		return nil, &types.ExtractError{Index: index, Field: "product_id", Err: types.ErrMissingField}
	}

	img := card.Find(selImage).First()
	if img.Length() == 0 {
		return nil, &types.ExtractError{Index: index, Field: "image", Err: types.ErrMissingField}
	}
	rec.ImageURL, ok = img.Attr("src")
	if !ok || rec.ImageURL == "" {
		return nil, &types.ExtractError{Index: index, Field: "image", Err: types.ErrMissingField}
	}

	// Color options, excluding the "+N more" overflow swatch.
	card.Find(selColorTips).Each(func(_ int, tip *goquery.Selection) {
		if !strings.Contains(tip.AttrOr("class", ""), extraSwatchMarker) {
			rec.ColorOptionCount++
		}
	})

	title := card.Find(selTitle).First()
	if title.Length() == 0 {
		return nil, &types.ExtractError{Index: index, Field: "title", Err: types.ErrMissingField}
	}
	rec.Title = strings.TrimSpace(title.Text())
	if rec.Title == "" {
		return nil, &types.ExtractError{Index: index, Field: "title", Err: types.ErrMissingField}
	}

	size := card.Find(selSize).First()
	if size.Length() == 0 {
		return nil, &types.ExtractError{Index: index, Field: "size_info", Err: types.ErrMissingField}
	}
	rec.SizeInfo = strings.TrimSpace(size.Text())

	// Prices: either, both, or neither fragment may be present. The last
	// currency span wins; nested markup duplicates the currency symbol.
	if spans := card.Find(selOriginalPrice); spans.Length() > 0 {
		rec.OriginalPrice = strings.TrimSpace(spans.Last().Text())
	}
	if spans := card.Find(selLimitedPrice); spans.Length() > 0 {
		rec.SalePrice = strings.TrimSpace(spans.Last().Text())
	}

	if rec.OriginalPrice != "" && rec.SalePrice != "" {
		discount, err := discountPercent(rec.OriginalPrice, rec.SalePrice)
		if err != nil {
			e.logger.Warn("discount omitted", "index", index, "error", err)
		} else {
			rec.DiscountPercent = &discount
		}
	}

	if flag := card.Find(selLimitedOffer).First(); flag.Length() > 0 {
		rec.LimitedOffer = strings.TrimSpace(flag.Text())
	}

	// Remaining promotional flags in render order, duplicates kept.
	card.Find(selFlagItems).Each(func(_ int, item *goquery.Selection) {
		if strings.Contains(item.AttrOr(attrCardID, ""), "limited-offer") {
			return
		}
		rec.AdditionalTags = append(rec.AdditionalTags, strings.TrimSpace(item.Text()))
	})

	anchor := card.Find(selAnchor).First()
	if anchor.Length() == 0 {
		return nil, &types.ExtractError{Index: index, Field: "product_url", Err: types.ErrMissingField}
	}
	href := anchor.AttrOr("href", "")
	if href == "" {
		return nil, &types.ExtractError{Index: index, Field: "product_url", Err: types.ErrMissingField}
	}
	ref, err := url.Parse(href)
	if err != nil {
		return nil, &types.ExtractError{Index: index, Field: "product_url", Err: err}
	}
	rec.ProductURL = e.baseURL.ResolveReference(ref).String()

	if !e.policy.Allowed(rec.ProductURL) {
		return nil, fmt.Errorf("%w: %s", types.ErrPolicyDisallowed, rec.ProductURL)
	}

	return rec, nil
}

// cardAttrValue finds the card's identifying data-test attribute, on the
// root element of the fragment or its first carrier.
func cardAttrValue(card *goquery.Selection) (string, bool) {
	if v, ok := card.Attr(attrCardID); ok {
		return v, true
	}
	// Fragment parsing wraps the card in html/body; look for the first
	// element carrying the attribute.
	carrier := card.Find("[" + attrCardID + "^='" + cardIDPrefix + "']").First()
	if carrier.Length() == 0 {
		return "", false
	}
	return carrier.Attr(attrCardID)
}
