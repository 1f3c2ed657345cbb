package seed

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/xuri/excelize/v2"
)

// Workbook ingestion for the two spreadsheets the backoffice maintains by
// hand: the product/article-code register and the consolidated pricelist.
// Rows land in the same tables the API serves; the database is the only
// cache.

// LoadArticleWorkbook upserts rows of an xlsx with columns
// product | article code | promoter into article_codes.
func LoadArticleWorkbook(db *sqlx.DB, r io.Reader) (int, error) {
	rows, err := sheetRows(r)
	if err != nil {
		return 0, err
	}

	tx, err := db.Beginx()
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Preparex(`INSERT INTO article_codes (product, article_code, promoter) VALUES (?, ?, ?)
        ON CONFLICT(article_code, promoter) DO UPDATE SET product = excluded.product, updated_at = CURRENT_TIMESTAMP`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	count := 0
	for i, row := range rows {
		if i == 0 || len(row) < 3 {
			continue
		}
		product := strings.TrimSpace(row[0])
		code, convErr := strconv.ParseInt(strings.TrimSpace(row[1]), 10, 64)
		promoter := strings.TrimSpace(row[2])
		if product == "" || promoter == "" || convErr != nil {
			continue
		}
		if _, err := stmt.Exec(product, code, promoter); err != nil {
			return count, fmt.Errorf("row %d: %w", i+1, err)
		}
		count++
	}

	return count, tx.Commit()
}

// LoadPriceWorkbook upserts rows of an xlsx with columns
// pricelist | product | price | gst into prices. GST is optional.
func LoadPriceWorkbook(db *sqlx.DB, r io.Reader) (int, error) {
	rows, err := sheetRows(r)
	if err != nil {
		return 0, err
	}

	tx, err := db.Beginx()
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Preparex(`INSERT INTO prices (pricelist, product, price, gst) VALUES (?, ?, ?, ?)
        ON CONFLICT(pricelist, product) DO UPDATE SET price = excluded.price, gst = excluded.gst, updated_at = CURRENT_TIMESTAMP`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	count := 0
	for i, row := range rows {
		if i == 0 || len(row) < 3 {
			continue
		}
		pricelist := strings.TrimSpace(row[0])
		product := strings.TrimSpace(row[1])
		price, convErr := strconv.ParseFloat(strings.TrimSpace(row[2]), 64)
		if pricelist == "" || product == "" || convErr != nil {
			continue
		}

		var gst *float64
		if len(row) > 3 {
			if v, err := strconv.ParseFloat(strings.TrimSpace(row[3]), 64); err == nil {
				gst = &v
			}
		}

		if _, err := stmt.Exec(pricelist, product, price, gst); err != nil {
			return count, fmt.Errorf("row %d: %w", i+1, err)
		}
		count++
	}

	return count, tx.Commit()
}

// sheetRows reads every row of the workbook's first sheet.
func sheetRows(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	return f.GetRows(sheets[0])
}
