package main

import (
	"io"
	"log"
	"net/http"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"

	"retailscan/m/internal/api"
	"retailscan/m/internal/config"
	"retailscan/m/internal/database"
	"retailscan/m/internal/migrations"
	"retailscan/m/internal/seed"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	db := database.Connect(cfg.DatabaseDSN)
	defer db.Close()

	migrations.Run(db)

	if cfg.ArticleCSV != "" {
		seed.LoadArticleCodes(db, cfg.ArticleCSV)
	}
	if cfg.ProductsXLSX != "" {
		loadWorkbook(db, cfg.ProductsXLSX, seed.LoadArticleWorkbook)
	}
	if cfg.PricesXLSX != "" {
		loadWorkbook(db, cfg.PricesXLSX, seed.LoadPriceWorkbook)
	}

	handler := api.New(db, cfg.Secret)

	log.Printf("retailscan server starting on :%s", cfg.HTTPPort)
	if err := http.ListenAndServe(":"+cfg.HTTPPort, handler.Router()); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func loadWorkbook(db *sqlx.DB, path string, load func(*sqlx.DB, io.Reader) (int, error)) {
	file, err := os.Open(path)
	if err != nil {
		log.Printf("unable to open workbook %s: %v", path, err)
		return
	}
	defer file.Close()
	if n, err := load(db, file); err != nil {
		log.Printf("unable to import workbook %s: %v", path, err)
	} else {
		log.Printf("imported %d rows from %s", n, path)
	}
}
