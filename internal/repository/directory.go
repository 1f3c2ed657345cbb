package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"retailscan/m/domain"
)

// Directory answers the scan pipeline's read-only lookups from the database.
// Every method reports a miss as (nil, nil); only storage failures surface as
// errors.
type Directory struct {
	db *sqlx.DB
}

func NewDirectory(db *sqlx.DB) *Directory {
	return &Directory{db: db}
}

func (d *Directory) PromoterByStore(ctx context.Context, store string) (*domain.Promoter, error) {
	var rec domain.Promoter
	err := d.db.GetContext(ctx, &rec,
		`SELECT id, state, point_of_sale, promoter, created_at, updated_at
         FROM promoters WHERE LOWER(point_of_sale) LIKE '%' || LOWER($1) || '%'
         ORDER BY id LIMIT 1`, store)
	return oneOrNil(&rec, err)
}

func (d *Directory) Article(ctx context.Context, articleCode int64, promoter string) (*domain.ArticleCode, error) {
	var rec domain.ArticleCode
	err := d.db.GetContext(ctx, &rec,
		`SELECT id, product, article_code, promoter, created_at, updated_at
         FROM article_codes WHERE article_code = $1 AND promoter = $2 LIMIT 1`,
		articleCode, promoter)
	return oneOrNil(&rec, err)
}

func (d *Directory) ArticleByName(ctx context.Context, name, promoter string) (*domain.ArticleCode, error) {
	var rec domain.ArticleCode
	query := `SELECT id, product, article_code, promoter, created_at, updated_at
         FROM article_codes WHERE LOWER(product) LIKE '%' || LOWER($1) || '%'`
	args := []any{name}
	if promoter != "" {
		query += ` AND promoter = $2`
		args = append(args, promoter)
	}
	query += ` ORDER BY id LIMIT 1`
	err := d.db.GetContext(ctx, &rec, query, args...)
	return oneOrNil(&rec, err)
}

func (d *Directory) Price(ctx context.Context, product, pricelist string) (*domain.Price, error) {
	var rec domain.Price
	err := d.db.GetContext(ctx, &rec,
		`SELECT id, pricelist, product, price, gst, created_at, updated_at
         FROM prices WHERE product = $1 AND pricelist = $2 LIMIT 1`,
		product, pricelist)
	return oneOrNil(&rec, err)
}

func (d *Directory) PriceByProduct(ctx context.Context, product string) (*domain.Price, error) {
	var rec domain.Price
	err := d.db.GetContext(ctx, &rec,
		`SELECT id, pricelist, product, price, gst, created_at, updated_at
         FROM prices WHERE product = $1 ORDER BY id LIMIT 1`, product)
	return oneOrNil(&rec, err)
}

func oneOrNil[T any](rec *T, err error) (*T, error) {
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}
