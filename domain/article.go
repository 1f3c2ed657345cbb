package domain

// ArticleCode maps a vendor article code to a product for one promoter.
// The (article_code, promoter) pair is unique.
type ArticleCode struct {
	ID          int64  `db:"id" json:"id"`
	Product     string `db:"product" json:"product"`
	ArticleCode int64  `db:"article_code" json:"article_code"`
	Promoter    string `db:"promoter" json:"promoter"`
	CreatedAt   string `db:"created_at" json:"created_at,omitempty"`
	UpdatedAt   string `db:"updated_at" json:"updated_at,omitempty"`
}

// Promoter is the merchandising entity responsible for a point of sale.
type Promoter struct {
	ID          int64  `db:"id" json:"id"`
	State       string `db:"state" json:"state"`
	PointOfSale string `db:"point_of_sale" json:"point_of_sale"`
	Promoter    string `db:"promoter" json:"promoter"`
	CreatedAt   string `db:"created_at" json:"created_at,omitempty"`
	UpdatedAt   string `db:"updated_at" json:"updated_at,omitempty"`
}
