package repository

import (
	"context"
	"testing"

	"retailscan/m/internal/database"
	"retailscan/m/internal/migrations"
)

func testDirectoryDB(t *testing.T) *Directory {
	t.Helper()
	db := database.Connect(":memory:")
	t.Cleanup(func() { _ = db.Close() })
	migrations.Run(db)

	db.MustExec(`INSERT INTO promoters (state, point_of_sale, promoter) VALUES
        ('Maharashtra', 'Food Square - Bandra West', 'Food Square Barcode'),
        ('Gujarat', 'Magson - Ahmedabad', 'Magson Barcode')`)
	db.MustExec(`INSERT INTO article_codes (product, article_code, promoter) VALUES
        ('Almonds Non Pareil Running (25-29) Loose FG', 9029792, 'Food Square Barcode'),
        ('Cashew W320 Loose FG', 30028, 'Magson Barcode')`)
	db.MustExec(`INSERT INTO prices (pricelist, product, price, gst) VALUES
        ('Food Square', 'Almonds Non Pareil Running (25-29) Loose FG', 100.00, 0.05),
        ('Magson', 'Cashew W320 Loose FG', 80.00, NULL)`)

	return NewDirectory(db)
}

func TestPromoterByStoreSubstring(t *testing.T) {
	dir := testDirectoryDB(t)
	ctx := context.Background()

	rec, err := dir.PromoterByStore(ctx, "food square - bandra")
	if err != nil {
		t.Fatalf("PromoterByStore: %v", err)
	}
	if rec == nil || rec.Promoter != "Food Square Barcode" {
		t.Fatalf("got %+v", rec)
	}

	rec, err = dir.PromoterByStore(ctx, "No Such Store")
	if err != nil {
		t.Fatalf("PromoterByStore: %v", err)
	}
	if rec != nil {
		t.Fatalf("miss must return nil, got %+v", rec)
	}
}

func TestArticleLookups(t *testing.T) {
	dir := testDirectoryDB(t)
	ctx := context.Background()

	rec, err := dir.Article(ctx, 9029792, "Food Square Barcode")
	if err != nil {
		t.Fatalf("Article: %v", err)
	}
	if rec == nil || rec.Product != "Almonds Non Pareil Running (25-29) Loose FG" {
		t.Fatalf("got %+v", rec)
	}

	// Wrong promoter is a miss, not an error.
	rec, err = dir.Article(ctx, 9029792, "Magson Barcode")
	if err != nil || rec != nil {
		t.Fatalf("got %+v, %v", rec, err)
	}

	rec, err = dir.ArticleByName(ctx, "cashew", "")
	if err != nil {
		t.Fatalf("ArticleByName: %v", err)
	}
	if rec == nil || rec.ArticleCode != 30028 {
		t.Fatalf("got %+v", rec)
	}

	rec, err = dir.ArticleByName(ctx, "cashew", "Food Square Barcode")
	if err != nil || rec != nil {
		t.Fatalf("promoter-scoped lookup must miss, got %+v, %v", rec, err)
	}
}

func TestPriceLookups(t *testing.T) {
	dir := testDirectoryDB(t)
	ctx := context.Background()

	rec, err := dir.Price(ctx, "Almonds Non Pareil Running (25-29) Loose FG", "Food Square")
	if err != nil {
		t.Fatalf("Price: %v", err)
	}
	if rec == nil || rec.Price != 100.00 || rec.GST == nil || *rec.GST != 0.05 {
		t.Fatalf("got %+v", rec)
	}

	rec, err = dir.PriceByProduct(ctx, "Cashew W320 Loose FG")
	if err != nil {
		t.Fatalf("PriceByProduct: %v", err)
	}
	if rec == nil || rec.Pricelist != "Magson" || rec.GST != nil {
		t.Fatalf("got %+v", rec)
	}

	rec, err = dir.Price(ctx, "Cashew W320 Loose FG", "Food Square")
	if err != nil || rec != nil {
		t.Fatalf("miss must return nil, got %+v, %v", rec, err)
	}
}
