package domain

// StockTake tracks a counting window for one store. Status is "active" until
// closing quantities are recorded, then "completed".
type StockTake struct {
	ID        int64   `db:"id" json:"id"`
	StoreName string  `db:"store_name" json:"store_name"`
	StartDate string  `db:"start_date" json:"start_date"`
	EndDate   *string `db:"end_date" json:"end_date,omitempty"`
	Status    string  `db:"status" json:"status"`
	CreatedAt string  `db:"created_at" json:"created_at,omitempty"`
	UpdatedAt string  `db:"updated_at" json:"updated_at,omitempty"`
}

type OpenStock struct {
	ID          int64   `db:"id" json:"id"`
	StockTakeID int64   `db:"stock_take_id" json:"stock_take_id"`
	ProductName string  `db:"product_name" json:"product_name"`
	Promoter    string  `db:"promoter" json:"promoter"`
	OpenQty     float64 `db:"open_qty" json:"open_qty"`
	CreatedAt   string  `db:"created_at" json:"created_at,omitempty"`
	UpdatedAt   string  `db:"updated_at" json:"updated_at,omitempty"`
}

type CloseStock struct {
	ID          int64   `db:"id" json:"id"`
	StockTakeID int64   `db:"stock_take_id" json:"stock_take_id"`
	ProductName string  `db:"product_name" json:"product_name"`
	Promoter    string  `db:"promoter" json:"promoter"`
	CloseQty    float64 `db:"close_qty" json:"close_qty"`
	CreatedAt   string  `db:"created_at" json:"created_at,omitempty"`
	UpdatedAt   string  `db:"updated_at" json:"updated_at,omitempty"`
}
