package scan

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"retailscan/m/domain"
)

// fakeDirectory serves lookups from slices, mirroring the first-match
// semantics of the real queries.
type fakeDirectory struct {
	promoters []domain.Promoter
	articles  []domain.ArticleCode
	prices    []domain.Price
}

func (f *fakeDirectory) PromoterByStore(_ context.Context, store string) (*domain.Promoter, error) {
	needle := strings.ToLower(store)
	for i := range f.promoters {
		if strings.Contains(strings.ToLower(f.promoters[i].PointOfSale), needle) {
			return &f.promoters[i], nil
		}
	}
	return nil, nil
}

func (f *fakeDirectory) Article(_ context.Context, articleCode int64, promoter string) (*domain.ArticleCode, error) {
	for i := range f.articles {
		if f.articles[i].ArticleCode == articleCode && f.articles[i].Promoter == promoter {
			return &f.articles[i], nil
		}
	}
	return nil, nil
}

func (f *fakeDirectory) ArticleByName(_ context.Context, name, promoter string) (*domain.ArticleCode, error) {
	needle := strings.ToLower(name)
	for i := range f.articles {
		if !strings.Contains(strings.ToLower(f.articles[i].Product), needle) {
			continue
		}
		if promoter != "" && f.articles[i].Promoter != promoter {
			continue
		}
		return &f.articles[i], nil
	}
	return nil, nil
}

func (f *fakeDirectory) Price(_ context.Context, product, pricelist string) (*domain.Price, error) {
	for i := range f.prices {
		if f.prices[i].Product == product && f.prices[i].Pricelist == pricelist {
			return &f.prices[i], nil
		}
	}
	return nil, nil
}

func (f *fakeDirectory) PriceByProduct(_ context.Context, product string) (*domain.Price, error) {
	for i := range f.prices {
		if f.prices[i].Product == product {
			return &f.prices[i], nil
		}
	}
	return nil, nil
}

func testDirectory() *fakeDirectory {
	return &fakeDirectory{
		promoters: []domain.Promoter{
			{State: "Maharashtra", PointOfSale: "Food Square - Bandra West", Promoter: "Food Square Barcode"},
			{State: "Maharashtra", PointOfSale: "Reliance Smart Bazaar - Genesis Mall (FRDS)", Promoter: "Smart & Essentials Barcode"},
		},
		articles: []domain.ArticleCode{
			{Product: "Almonds Non Pareil Running (25-29) Loose FG", ArticleCode: 9029792, Promoter: "Food Square Barcode"},
			{Product: "Cashew W320 Loose FG", ArticleCode: 30028, Promoter: "Smart & Essentials Barcode"},
		},
		prices: []domain.Price{
			{Pricelist: "Food Square", Product: "Almonds Non Pareil Running (25-29) Loose FG", Price: 100.00, GST: fp(0.05)},
			{Pricelist: "Smart Bazaar", Product: "Cashew W320 Loose FG", Price: 80.00},
		},
	}
}

func TestScanEndToEnd(t *testing.T) {
	p := New(testDirectory())

	res, err := p.Scan(context.Background(), "W902979200110", "Food Square - Bandra", ModeBarcode)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	if res.Product != "Almonds Non Pareil Running (25-29) Loose FG" {
		t.Fatalf("product = %q", res.Product)
	}
	if res.ArticleCode != 9029792 {
		t.Fatalf("article code = %d", res.ArticleCode)
	}
	if res.Format != FormatFoodSquare || res.FormatLabel != "Food Square" {
		t.Fatalf("format = %s label = %q", res.Format, res.FormatLabel)
	}
	if res.Promoter != "Food Square Barcode" {
		t.Fatalf("promoter = %q", res.Promoter)
	}
	if res.Pricelist != "Food Square" {
		t.Fatalf("pricelist = %q", res.Pricelist)
	}
	if res.WeightKg == nil || *res.WeightKg != 0.110 || res.WeightCode != "00110" {
		t.Fatalf("weight = %v code = %q", res.WeightKg, res.WeightCode)
	}
	if res.Price == nil || *res.Price != 100.00 {
		t.Fatalf("price = %v", res.Price)
	}
	if res.GST == nil || *res.GST != 0.05 {
		t.Fatalf("gst = %v", res.GST)
	}
	if res.PriceWithGST == nil || *res.PriceWithGST != 105.00 {
		t.Fatalf("price with gst = %v", res.PriceWithGST)
	}

	// Identical inputs against unchanged directory state must yield an
	// identical result.
	again, err := p.Scan(context.Background(), "W902979200110", "Food Square - Bandra", ModeBarcode)
	if err != nil {
		t.Fatalf("second Scan: %v", err)
	}
	if !reflect.DeepEqual(res, again) {
		t.Fatalf("scan is not idempotent: %+v vs %+v", res, again)
	}
}

func TestScanPromoterFormatFallback(t *testing.T) {
	p := New(testDirectory())

	// Unknown store: promoter comes from the format table.
	res, err := p.Scan(context.Background(), "W902979200110", "Some Other Store", ModeBarcode)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if res.Promoter != "Food Square Barcode" {
		t.Fatalf("promoter = %q", res.Promoter)
	}

	// Unknown store and unknown format: promoter stage fails.
	_, err = p.Scan(context.Background(), "8801234567890", "Some Other Store", ModeBarcode)
	var perr *PipelineError
	if !errors.As(err, &perr) || perr.Kind != KindPromoterUnresolved || perr.Stage != StagePromoter {
		t.Fatalf("expected promoter_unresolved, got %v", err)
	}
}

func TestScanArticlePromoterRetry(t *testing.T) {
	dir := testDirectory()
	// The store resolves to the Smart & Essentials promoter, but the article
	// is registered under the format's promoter.
	dir.promoters[0].PointOfSale = "Reliance Smart Bazaar - Bandra"
	dir.promoters[0].Promoter = "Smart & Essentials Barcode"

	p := New(dir)
	res, err := p.Scan(context.Background(), "W902979200110", "Bandra", ModeBarcode)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if res.Promoter != "Food Square Barcode" {
		t.Fatalf("promoter not updated to matching fallback: %q", res.Promoter)
	}
	if res.Pricelist != "Food Square" {
		t.Fatalf("price resolved against stale promoter: %q", res.Pricelist)
	}
}

func TestScanFailureKinds(t *testing.T) {
	p := New(testDirectory())

	cases := []struct {
		name  string
		input string
		store string
		kind  string
		stage Stage
	}{
		{"undecodable", "not-a-barcode", "Food Square - Bandra", KindUndecodable, StageDecode},
		{"empty", "", "Food Square - Bandra", KindUndecodable, StageDecode},
		{"whitespace", "   ", "Food Square - Bandra", KindUndecodable, StageDecode},
		{"article missing", "W000000100110", "Food Square - Bandra", KindArticleUnresolved, StageArticle},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := p.Scan(context.Background(), tc.input, tc.store, ModeBarcode)
			var perr *PipelineError
			if !errors.As(err, &perr) {
				t.Fatalf("expected PipelineError, got %v", err)
			}
			if perr.Kind != tc.kind || perr.Stage != tc.stage {
				t.Fatalf("got kind=%s stage=%s, want kind=%s stage=%s", perr.Kind, perr.Stage, tc.kind, tc.stage)
			}
		})
	}
}

func TestScanPricedUnknown(t *testing.T) {
	dir := testDirectory()
	dir.prices = nil

	p := New(dir)
	res, err := p.Scan(context.Background(), "W902979200110", "Food Square - Bandra", ModeBarcode)
	if err != nil {
		t.Fatalf("missing price must not fail the scan: %v", err)
	}
	if res.Price != nil || res.GST != nil || res.PriceWithGST != nil {
		t.Fatalf("expected empty price fields, got %+v", res)
	}
	if res.Pricelist != "Food Square - Bandra" {
		t.Fatalf("pricelist fallback label = %q", res.Pricelist)
	}
}

func TestManualLookup(t *testing.T) {
	p := New(testDirectory())

	res, err := p.Scan(context.Background(), "Almonds Non Pareil", "Food Square - Bandra", ModeManualLookup)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if res.Product != "Almonds Non Pareil Running (25-29) Loose FG" {
		t.Fatalf("product = %q", res.Product)
	}
	if res.ArticleCode != 9029792 {
		t.Fatalf("article code = %d", res.ArticleCode)
	}
	if res.Format != FormatManualLookup || res.FormatLabel != "Manual Lookup" {
		t.Fatalf("format = %s label = %q", res.Format, res.FormatLabel)
	}
	if res.WeightKg != nil || res.WeightCode != "00000" {
		t.Fatalf("manual lookup carries no weight: %v %q", res.WeightKg, res.WeightCode)
	}

	// Lookup against a store with no promoter record fails at the promoter
	// stage: there is no format to fall back on.
	_, err = p.Scan(context.Background(), "Almonds Non Pareil", "Nowhere", ModeManualLookup)
	var perr *PipelineError
	if !errors.As(err, &perr) || perr.Kind != KindPromoterUnresolved {
		t.Fatalf("expected promoter_unresolved, got %v", err)
	}

	// A product registered under a different promoter than the store's is
	// still found, and the promoter follows the matching record.
	res, err = p.Scan(context.Background(), "Cashew W320", "Food Square - Bandra", ModeManualLookup)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if res.Promoter != "Smart & Essentials Barcode" {
		t.Fatalf("promoter = %q", res.Promoter)
	}
	if res.Pricelist != "Smart Bazaar" {
		t.Fatalf("pricelist = %q", res.Pricelist)
	}
}
