package domain

// Product is a catalog item keyed by its Y key (e.g. Y0520).
type Product struct {
	ProductID          string `db:"product_id" json:"product_id"`
	ProductType        string `db:"product_type" json:"product_type"`
	ProductDescription string `db:"product_description" json:"product_description"`
	IsActive           bool   `db:"is_active" json:"is_active"`
	CreatedAt          string `db:"created_at" json:"created_at,omitempty"`
	UpdatedAt          string `db:"updated_at" json:"updated_at,omitempty"`
}

type State struct {
	StateID   int64   `db:"state_id" json:"state_id"`
	StateName string  `db:"state_name" json:"state_name"`
	StateCode *string `db:"state_code" json:"state_code,omitempty"`
	IsActive  bool    `db:"is_active" json:"is_active"`
	CreatedAt string  `db:"created_at" json:"created_at,omitempty"`
	UpdatedAt string  `db:"updated_at" json:"updated_at,omitempty"`
}

type Store struct {
	StoreID   int64   `db:"store_id" json:"store_id"`
	StoreName string  `db:"store_name" json:"store_name"`
	StoreCode *string `db:"store_code" json:"store_code,omitempty"`
	Email     *string `db:"email" json:"email,omitempty"`
	StateID   int64   `db:"state_id" json:"state_id"`
	IsActive  bool    `db:"is_active" json:"is_active"`
	CreatedAt string  `db:"created_at" json:"created_at,omitempty"`
	UpdatedAt string  `db:"updated_at" json:"updated_at,omitempty"`
}

// StoreProduct marks a product as available at a store.
type StoreProduct struct {
	ID          int64  `db:"id" json:"id"`
	StoreID     int64  `db:"store_id" json:"store_id"`
	ProductID   string `db:"product_id" json:"product_id"`
	IsAvailable bool   `db:"is_available" json:"is_available"`
	CreatedAt   string `db:"created_at" json:"created_at,omitempty"`
	UpdatedAt   string `db:"updated_at" json:"updated_at,omitempty"`
}

// StoreProductFlat mirrors the raw availability workbook rows: one line per
// (ykey, store) pair, before normalization into stores/states.
type StoreProductFlat struct {
	ID          int64  `db:"id" json:"id"`
	Ykey        string `db:"ykey" json:"ykey"`
	ProductName string `db:"product_name" json:"product_name"`
	Store       string `db:"store" json:"store"`
	State       string `db:"state" json:"state"`
	CreatedAt   string `db:"created_at" json:"created_at,omitempty"`
	UpdatedAt   string `db:"updated_at" json:"updated_at,omitempty"`
}
