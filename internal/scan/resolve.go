package scan

import (
	"context"
	"math"

	"retailscan/m/domain"
)

// Directory is the read-only lookup collaborator the pipeline resolves
// against. A miss is (nil, nil); a non-nil error means the lookup itself
// failed (storage error), not that nothing matched.
type Directory interface {
	// PromoterByStore returns the first promoter whose point of sale
	// contains store as a case-insensitive substring.
	PromoterByStore(ctx context.Context, store string) (*domain.Promoter, error)
	// Article returns the article registered for (articleCode, promoter).
	Article(ctx context.Context, articleCode int64, promoter string) (*domain.ArticleCode, error)
	// ArticleByName returns the first article whose product name contains
	// name, scoped to promoter when promoter is non-empty.
	ArticleByName(ctx context.Context, name, promoter string) (*domain.ArticleCode, error)
	// Price returns the price of product under the named pricelist.
	Price(ctx context.Context, product, pricelist string) (*domain.Price, error)
	// PriceByProduct returns the first price of product under any pricelist.
	PriceByProduct(ctx context.Context, product string) (*domain.Price, error)
}

// formatPromoters maps a barcode format to the promoter that owns it. Used
// only when the store-based promoter lookup comes up empty: store identity is
// more reliable than format inference, since one format can be in use by
// several legal entities.
var formatPromoters = map[Format]string{
	FormatRelianceSmart:    "Smart & Essentials Barcode",
	FormatSmartAlternative: "Smart Alternate Barcode",
	FormatRelianceFresh:    "FP & Signature Barcode",
	FormatStarBazar:        "Star Bazaar Barcode",
	FormatFoodSquare:       "Food Square Barcode",
	FormatRapsap:           "Rapsap",
	FormatMrdpl:            "Magson Barcode",
}

// promoterPricelists maps a promoter to the pricelists to probe, in priority
// order, when resolving a price.
var promoterPricelists = map[string][]string{
	"Smart & Essentials Barcode": {"Smart Bazaar", "Essentials"},
	"Smart Alternate Barcode":    {"Smart Bazaar"},
	"FP & Signature Barcode":     {"Signature Plus", "FP JWD, Powai, 1MG"},
	"Star Bazaar Barcode":        {"Star Bazaar"},
	"Food Square Barcode":        {"Food Square"},
	"Rapsap":                     {"Rapsap"},
	"Magson Barcode":             {"Magson"},
}

// resolvePromoter determines the responsible promoter: the store directory
// first, the format fallback table second.
func (p *Pipeline) resolvePromoter(ctx context.Context, storeName string, format Format) (string, error) {
	if storeName != "" {
		rec, err := p.dir.PromoterByStore(ctx, storeName)
		if err != nil {
			return "", err
		}
		if rec != nil {
			return rec.Promoter, nil
		}
	}
	if name, ok := formatPromoters[format]; ok {
		return name, nil
	}
	return "", nil
}

// resolveArticle finds the product for (articleCode, promoter). When the
// store-derived promoter has no record and the barcode format implies a
// different promoter, that one is retried, and on a hit the returned promoter
// is the one that actually matched so downstream price resolution stays
// consistent.
func (p *Pipeline) resolveArticle(ctx context.Context, articleCode int64, promoter, storeName string, format Format) (*domain.ArticleCode, string, []string, error) {
	tried := []string{promoter}

	rec, err := p.dir.Article(ctx, articleCode, promoter)
	if err != nil {
		return nil, "", tried, err
	}
	if rec != nil {
		return rec, promoter, tried, nil
	}

	if storeName != "" {
		if alt, ok := formatPromoters[format]; ok && alt != promoter {
			tried = append(tried, alt)
			rec, err = p.dir.Article(ctx, articleCode, alt)
			if err != nil {
				return nil, "", tried, err
			}
			if rec != nil {
				return rec, alt, tried, nil
			}
		}
	}

	return nil, "", tried, nil
}

// priceOutcome is always a value: a product with no price on file is a
// legitimate result, not a failure.
type priceOutcome struct {
	Price        *float64
	GST          *float64
	PriceWithGST *float64
	Pricelist    string
}

// resolvePrice probes the promoter's candidate pricelists in order, then any
// pricelist carrying the product. The returned pricelist name is the matched
// record's, reflecting ground truth; fallbackLabel (typically the store name)
// is used only when nothing matched.
func (p *Pipeline) resolvePrice(ctx context.Context, product, promoter, fallbackLabel string) (priceOutcome, error) {
	out := priceOutcome{Pricelist: fallbackLabel}

	var rec *domain.Price
	for _, pricelist := range promoterPricelists[promoter] {
		found, err := p.dir.Price(ctx, product, pricelist)
		if err != nil {
			return out, err
		}
		if found != nil {
			rec = found
			break
		}
	}
	if rec == nil {
		found, err := p.dir.PriceByProduct(ctx, product)
		if err != nil {
			return out, err
		}
		rec = found
	}
	if rec == nil {
		return out, nil
	}

	price := rec.Price
	out.Price = &price
	out.Pricelist = rec.Pricelist
	if rec.GST != nil {
		gst := *rec.GST
		withGST := round2(price + price*gst)
		out.GST = &gst
		out.PriceWithGST = &withGST
	}
	return out, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
