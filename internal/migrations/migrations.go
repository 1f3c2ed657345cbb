package migrations

import (
	"log"

	"github.com/jmoiron/sqlx"
)

// Run creates the database schema required for the retail operations backend.
func Run(db *sqlx.DB) {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS admins (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            name TEXT NOT NULL,
            email TEXT NOT NULL UNIQUE,
            password TEXT NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS shops (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            company TEXT NOT NULL,
            users TEXT,
            pos_shop_name TEXT NOT NULL,
            email TEXT NOT NULL UNIQUE,
            password TEXT NOT NULL,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
        );`,
		`CREATE TABLE IF NOT EXISTS promoters (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            state TEXT NOT NULL,
            point_of_sale TEXT NOT NULL,
            promoter TEXT NOT NULL,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
        );`,
		`CREATE TABLE IF NOT EXISTS article_codes (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            product TEXT NOT NULL,
            article_code INTEGER NOT NULL,
            promoter TEXT NOT NULL,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            UNIQUE(article_code, promoter)
        );`,
		`CREATE INDEX IF NOT EXISTS idx_article_codes_code ON article_codes(article_code);`,
		`CREATE TABLE IF NOT EXISTS prices (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            pricelist TEXT NOT NULL,
            product TEXT NOT NULL,
            price REAL NOT NULL,
            gst REAL,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            UNIQUE(pricelist, product)
        );`,
		`CREATE INDEX IF NOT EXISTS idx_prices_product ON prices(product);`,
		`CREATE TABLE IF NOT EXISTS price_pos (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            state TEXT NOT NULL,
            point_of_sale TEXT NOT NULL,
            promoter TEXT NOT NULL,
            pricelist TEXT NOT NULL,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
        );`,
		`CREATE TABLE IF NOT EXISTS products (
            product_id TEXT PRIMARY KEY,
            product_type TEXT NOT NULL,
            product_description TEXT NOT NULL,
            is_active INTEGER NOT NULL DEFAULT 1,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
        );`,
		`CREATE TABLE IF NOT EXISTS states (
            state_id INTEGER PRIMARY KEY AUTOINCREMENT,
            state_name TEXT NOT NULL UNIQUE,
            state_code TEXT UNIQUE,
            is_active INTEGER NOT NULL DEFAULT 1,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
        );`,
		`CREATE TABLE IF NOT EXISTS stores (
            store_id INTEGER PRIMARY KEY AUTOINCREMENT,
            store_name TEXT NOT NULL,
            store_code TEXT UNIQUE,
            email TEXT,
            state_id INTEGER NOT NULL,
            is_active INTEGER NOT NULL DEFAULT 1,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            FOREIGN KEY(state_id) REFERENCES states(state_id)
        );`,
		`CREATE TABLE IF NOT EXISTS store_products (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            store_id INTEGER NOT NULL,
            product_id TEXT NOT NULL,
            is_available INTEGER NOT NULL DEFAULT 1,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            UNIQUE(store_id, product_id),
            FOREIGN KEY(store_id) REFERENCES stores(store_id),
            FOREIGN KEY(product_id) REFERENCES products(product_id)
        );`,
		`CREATE TABLE IF NOT EXISTS store_product_flat (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            ykey TEXT NOT NULL,
            product_name TEXT NOT NULL,
            store TEXT NOT NULL,
            state TEXT NOT NULL,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
        );`,
		`CREATE TABLE IF NOT EXISTS stock_takes (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            store_name TEXT NOT NULL,
            start_date TEXT NOT NULL,
            end_date TEXT,
            status TEXT NOT NULL DEFAULT 'active',
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
        );`,
		`CREATE TABLE IF NOT EXISTS open_stock (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            stock_take_id INTEGER NOT NULL,
            product_name TEXT NOT NULL,
            promoter TEXT NOT NULL,
            open_qty REAL NOT NULL DEFAULT 0,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            UNIQUE(stock_take_id, product_name, promoter),
            FOREIGN KEY(stock_take_id) REFERENCES stock_takes(id) ON DELETE CASCADE
        );`,
		`CREATE TABLE IF NOT EXISTS close_stock (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            stock_take_id INTEGER NOT NULL,
            product_name TEXT NOT NULL,
            promoter TEXT NOT NULL,
            close_qty REAL NOT NULL DEFAULT 0,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            UNIQUE(stock_take_id, product_name, promoter),
            FOREIGN KEY(stock_take_id) REFERENCES stock_takes(id) ON DELETE CASCADE
        );`,
		`CREATE TABLE IF NOT EXISTS general_notes (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            note_date TEXT NOT NULL,
            promoter TEXT NOT NULL,
            note TEXT,
            store_name TEXT,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
        );`,
		`CREATE TABLE IF NOT EXISTS note_items (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            general_note_id INTEGER NOT NULL,
            ykey TEXT NOT NULL,
            product TEXT NOT NULL,
            quantity REAL NOT NULL,
            price REAL NOT NULL,
            unit TEXT NOT NULL,
            discount REAL NOT NULL DEFAULT 0,
            store_name TEXT NOT NULL,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            FOREIGN KEY(general_note_id) REFERENCES general_notes(id) ON DELETE CASCADE
        );`,
		`CREATE TABLE IF NOT EXISTS barcode_pages (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            general_note_id INTEGER NOT NULL,
            page_number INTEGER NOT NULL,
            count INTEGER NOT NULL,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            FOREIGN KEY(general_note_id) REFERENCES general_notes(id) ON DELETE CASCADE
        );`,
		`CREATE TABLE IF NOT EXISTS barcode_products (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            barcode_page_id INTEGER NOT NULL,
            barcode TEXT NOT NULL,
            product TEXT NOT NULL,
            price REAL,
            article_code INTEGER,
            weight_code TEXT,
            barcode_format TEXT,
            store_name TEXT,
            pricelist TEXT,
            weight REAL,
            gst REAL,
            price_with_gst REAL,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            FOREIGN KEY(barcode_page_id) REFERENCES barcode_pages(id) ON DELETE CASCADE
        );`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			log.Fatalf("migration failed: %v", err)
		}
	}
}
