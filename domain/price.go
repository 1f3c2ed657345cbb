package domain

// Price is one row of the consolidated pricelist: a product's price under a
// named pricelist. GST is a fraction (0.05 = 5%) and may be absent.
type Price struct {
	ID        int64    `db:"id" json:"id"`
	Pricelist string   `db:"pricelist" json:"pricelist"`
	Product   string   `db:"product" json:"product"`
	Price     float64  `db:"price" json:"price"`
	GST       *float64 `db:"gst" json:"gst,omitempty"`
	CreatedAt string   `db:"created_at" json:"created_at,omitempty"`
	UpdatedAt string   `db:"updated_at" json:"updated_at,omitempty"`
}

// PricePos maps a point of sale to the pricelist it trades under.
type PricePos struct {
	ID          int64  `db:"id" json:"id"`
	State       string `db:"state" json:"state"`
	PointOfSale string `db:"point_of_sale" json:"point_of_sale"`
	Promoter    string `db:"promoter" json:"promoter"`
	Pricelist   string `db:"pricelist" json:"pricelist"`
	CreatedAt   string `db:"created_at" json:"created_at,omitempty"`
	UpdatedAt   string `db:"updated_at" json:"updated_at,omitempty"`
}
