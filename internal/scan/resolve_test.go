package scan

import (
	"context"
	"testing"

	"retailscan/m/domain"
)

func TestResolvePriceCandidateOrder(t *testing.T) {
	dir := &fakeDirectory{
		prices: []domain.Price{
			{Pricelist: "Essentials", Product: "Cashew W320 Loose FG", Price: 90.00},
			{Pricelist: "Smart Bazaar", Product: "Cashew W320 Loose FG", Price: 80.00},
		},
	}
	p := New(dir)

	// "Smart Bazaar" precedes "Essentials" in the candidate list, so it wins
	// even though the Essentials row sorts first in the directory.
	out, err := p.resolvePrice(context.Background(), "Cashew W320 Loose FG", "Smart & Essentials Barcode", "store")
	if err != nil {
		t.Fatalf("resolvePrice: %v", err)
	}
	if out.Pricelist != "Smart Bazaar" || out.Price == nil || *out.Price != 80.00 {
		t.Fatalf("got %+v", out)
	}
}

func TestResolvePriceAnyPricelistFallback(t *testing.T) {
	dir := &fakeDirectory{
		prices: []domain.Price{
			{Pricelist: "Magson", Product: "Pistachios Loose FG", Price: 120.00, GST: fp(0.12)},
		},
	}
	p := New(dir)

	// No candidate list for this promoter: any pricelist carrying the
	// product serves, and the matched pricelist name is reported.
	out, err := p.resolvePrice(context.Background(), "Pistachios Loose FG", "No Such Promoter", "store")
	if err != nil {
		t.Fatalf("resolvePrice: %v", err)
	}
	if out.Pricelist != "Magson" {
		t.Fatalf("pricelist = %q", out.Pricelist)
	}
	if out.PriceWithGST == nil || *out.PriceWithGST != 134.40 {
		t.Fatalf("price with gst = %v", out.PriceWithGST)
	}
}

func TestResolvePriceGSTMath(t *testing.T) {
	dir := &fakeDirectory{
		prices: []domain.Price{
			{Pricelist: "Food Square", Product: "Almonds", Price: 100.00, GST: fp(0.05)},
			{Pricelist: "Food Square", Product: "Walnuts", Price: 99.99},
		},
	}
	p := New(dir)

	out, err := p.resolvePrice(context.Background(), "Almonds", "Food Square Barcode", "store")
	if err != nil {
		t.Fatalf("resolvePrice: %v", err)
	}
	if out.PriceWithGST == nil || *out.PriceWithGST != 105.00 {
		t.Fatalf("price with gst = %v", out.PriceWithGST)
	}

	out, err = p.resolvePrice(context.Background(), "Walnuts", "Food Square Barcode", "store")
	if err != nil {
		t.Fatalf("resolvePrice: %v", err)
	}
	if out.GST != nil || out.PriceWithGST != nil {
		t.Fatalf("nil GST must leave price_with_gst empty: %+v", out)
	}
	if out.Price == nil || *out.Price != 99.99 {
		t.Fatalf("price = %v", out.Price)
	}
}

func TestFallbackTablesCoverAllFormats(t *testing.T) {
	for _, spec := range formatSpecs {
		promoter, ok := formatPromoters[spec.tag]
		if !ok {
			t.Fatalf("no fallback promoter for format %s", spec.tag)
		}
		if _, ok := promoterPricelists[promoter]; !ok {
			t.Fatalf("no pricelist candidates for promoter %q", promoter)
		}
	}
}
