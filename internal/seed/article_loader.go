package seed

import (
	"encoding/csv"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
)

// LoadArticleCodes ingests the CSV into the article_codes table, ignoring
// duplicates. Expected columns: product, article_code, promoter.
func LoadArticleCodes(db *sqlx.DB, csvPath string) {
	file, err := os.Open(csvPath)
	if err != nil {
		log.Printf("unable to load article code catalog %s: %v", csvPath, err)
		return
	}
	defer file.Close()

	reader := csv.NewReader(file)
	// Skip header
	if _, err := reader.Read(); err != nil {
		log.Printf("unable to read article code header: %v", err)
		return
	}

	tx, err := db.Beginx()
	if err != nil {
		log.Printf("unable to start article code transaction: %v", err)
		return
	}
	stmt, err := tx.Preparex(`INSERT OR IGNORE INTO article_codes (product, article_code, promoter) VALUES (?, ?, ?)`)
	if err != nil {
		log.Printf("unable to prepare article code insert: %v", err)
		_ = tx.Rollback()
		return
	}
	defer stmt.Close()

	rows := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Printf("unable to read article code row: %v", err)
			continue
		}
		if len(record) < 3 {
			continue
		}
		product := strings.TrimSpace(record[0])
		code, convErr := strconv.ParseInt(strings.TrimSpace(record[1]), 10, 64)
		promoter := strings.TrimSpace(record[2])

		if product == "" || promoter == "" || convErr != nil {
			continue
		}

		if _, err := stmt.Exec(product, code, promoter); err != nil {
			log.Printf("unable to insert article code %d: %v", code, err)
		} else {
			rows++
		}
	}

	if err := tx.Commit(); err != nil {
		log.Printf("unable to commit article code seed: %v", err)
	} else {
		log.Printf("seeded article code catalog with %d rows", rows)
	}
}
