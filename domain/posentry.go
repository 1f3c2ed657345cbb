package domain

// GeneralNote is the header record of a POS entry session: one promoter's
// visit to a store on a given date.
type GeneralNote struct {
	ID        int64  `db:"id" json:"id"`
	NoteDate  string `db:"note_date" json:"note_date"`
	Promoter  string `db:"promoter" json:"promoter"`
	Note      string `db:"note" json:"note"`
	StoreName string `db:"store_name" json:"store_name"`
	CreatedAt string `db:"created_at" json:"created_at,omitempty"`
	UpdatedAt string `db:"updated_at" json:"updated_at,omitempty"`
}

// NoteItem is a summary line of a POS entry (manually keyed totals).
type NoteItem struct {
	ID            int64   `db:"id" json:"id"`
	GeneralNoteID int64   `db:"general_note_id" json:"general_note_id"`
	Ykey          string  `db:"ykey" json:"ykey"`
	Product       string  `db:"product" json:"product"`
	Quantity      float64 `db:"quantity" json:"quantity"`
	Price         float64 `db:"price" json:"price"`
	Unit          string  `db:"unit" json:"unit"`
	Discount      float64 `db:"discount" json:"discount"`
	StoreName     string  `db:"store_name" json:"store_name"`
	CreatedAt     string  `db:"created_at" json:"created_at,omitempty"`
}

// BarcodePage groups the scans captured from one page of a scan sheet.
type BarcodePage struct {
	ID            int64  `db:"id" json:"id"`
	GeneralNoteID int64  `db:"general_note_id" json:"general_note_id"`
	PageNumber    int64  `db:"page_number" json:"page_number"`
	Count         int64  `db:"count" json:"count"`
	CreatedAt     string `db:"created_at" json:"created_at,omitempty"`
}

// BarcodeProduct is one persisted scan: the raw barcode plus the resolved
// fields the scan pipeline produced for it.
type BarcodeProduct struct {
	ID            int64    `db:"id" json:"id"`
	BarcodePageID int64    `db:"barcode_page_id" json:"barcode_page_id"`
	Barcode       string   `db:"barcode" json:"barcode"`
	Product       string   `db:"product" json:"product"`
	Price         *float64 `db:"price" json:"price,omitempty"`
	ArticleCode   *int64   `db:"article_code" json:"article_code,omitempty"`
	WeightCode    string   `db:"weight_code" json:"weight_code"`
	BarcodeFormat string   `db:"barcode_format" json:"barcode_format"`
	StoreName     string   `db:"store_name" json:"store_name"`
	Pricelist     string   `db:"pricelist" json:"pricelist"`
	Weight        *float64 `db:"weight" json:"weight,omitempty"`
	GST           *float64 `db:"gst" json:"gst,omitempty"`
	PriceWithGST  *float64 `db:"price_with_gst" json:"price_with_gst,omitempty"`
	CreatedAt     string   `db:"created_at" json:"created_at,omitempty"`
}
