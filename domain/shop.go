package domain

// Admin is a backoffice user allowed to log in to the API.
type Admin struct {
	ID       int64  `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	Email    string `db:"email" json:"email"`
	Password string `db:"password" json:"password,omitempty"`
}

// Shop is a storefront account tied to a POS shop name.
type Shop struct {
	ID          int64  `db:"id" json:"id"`
	Company     string `db:"company" json:"company"`
	Users       string `db:"users" json:"users"`
	PosShopName string `db:"pos_shop_name" json:"pos_shop_name"`
	Email       string `db:"email" json:"email"`
	Password    string `db:"password" json:"password,omitempty"`
	CreatedAt   string `db:"created_at" json:"created_at,omitempty"`
	UpdatedAt   string `db:"updated_at" json:"updated_at,omitempty"`
}
