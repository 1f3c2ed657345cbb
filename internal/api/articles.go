package api

import (
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"retailscan/m/domain"
)

// Article code handlers

type articleCodeRequest struct {
	Product     string `json:"product"`
	ArticleCode int64  `json:"article_code"`
	Promoter    string `json:"promoter"`
}

func (h *Handler) createArticleCode(w http.ResponseWriter, r *http.Request) {
	var req articleCodeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Product == "" || req.ArticleCode <= 0 || req.Promoter == "" {
		respondError(w, http.StatusBadRequest, "product, article_code and promoter are required")
		return
	}

	var id int64
	err := h.db.QueryRowx(`INSERT INTO article_codes (product, article_code, promoter) VALUES ($1, $2, $3) RETURNING id`,
		req.Product, req.ArticleCode, req.Promoter).Scan(&id)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			respondError(w, http.StatusConflict, fmt.Sprintf("article code %d already exists for promoter %s", req.ArticleCode, req.Promoter))
		} else {
			respondError(w, http.StatusInternalServerError, "unable to create article code")
		}
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"id": id, "article_code": req.ArticleCode})
}

func (h *Handler) listArticleCodes(w http.ResponseWriter, r *http.Request) {
	var (
		args    []any
		clauses []string
	)

	search := strings.TrimSpace(r.URL.Query().Get("search"))
	if search != "" {
		args = append(args, search)
		clauses = append(clauses, fmt.Sprintf("(LOWER(product) LIKE '%%' || LOWER($%d) || '%%' OR CAST(article_code AS TEXT) LIKE '%%' || $%d || '%%')", len(args), len(args)))
	}
	promoter := strings.TrimSpace(r.URL.Query().Get("promoter"))
	if promoter != "" {
		args = append(args, promoter)
		clauses = append(clauses, fmt.Sprintf("promoter = $%d", len(args)))
	}

	where := ""
	if len(clauses) > 0 {
		where = " WHERE " + strings.Join(clauses, " AND ")
	}

	var total int64
	if err := h.db.Get(&total, `SELECT COUNT(*) FROM article_codes`+where, args...); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to count article codes")
		return
	}

	page, perPage := pagination(r, 50)
	args = append(args, perPage, (page-1)*perPage)
	query := fmt.Sprintf(`SELECT id, product, article_code, promoter, created_at, updated_at FROM article_codes%s ORDER BY product LIMIT $%d OFFSET $%d`,
		where, len(args)-1, len(args))

	var codes []domain.ArticleCode
	if err := h.db.Select(&codes, query, args...); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list article codes")
		return
	}
	if codes == nil {
		codes = []domain.ArticleCode{}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"items":    codes,
		"total":    total,
		"page":     page,
		"per_page": perPage,
	})
}

func (h *Handler) getArticleCode(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid article code id")
		return
	}
	var code domain.ArticleCode
	err = h.db.Get(&code, `SELECT id, product, article_code, promoter, created_at, updated_at FROM article_codes WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		respondError(w, http.StatusNotFound, "article code not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load article code")
		return
	}
	respondJSON(w, http.StatusOK, code)
}

func (h *Handler) updateArticleCode(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid article code id")
		return
	}
	var req articleCodeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Product == "" || req.ArticleCode <= 0 || req.Promoter == "" {
		respondError(w, http.StatusBadRequest, "product, article_code and promoter are required")
		return
	}
	_, err = h.db.Exec(`UPDATE article_codes SET product = $1, article_code = $2, promoter = $3, updated_at = CURRENT_TIMESTAMP WHERE id = $4`,
		req.Product, req.ArticleCode, req.Promoter, id)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			respondError(w, http.StatusConflict, fmt.Sprintf("article code %d already exists for promoter %s", req.ArticleCode, req.Promoter))
		} else {
			respondError(w, http.StatusInternalServerError, "unable to update article code")
		}
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) deleteArticleCode(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid article code id")
		return
	}
	res, err := h.db.Exec(`DELETE FROM article_codes WHERE id = $1`, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to delete article code")
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		respondError(w, http.StatusNotFound, "article code not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Bulk CSV ingestion

const (
	maxCSVBytes = 10 << 20
	maxCSVRows  = 10000
)

type csvRowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

type csvArticleRow struct {
	articleCodeRequest
	Row int
}

// articleCSVRows parses the uploaded CSV into article code requests. The
// header row is matched case-insensitively so hand-exported sheets with
// "Article Code" or "article_code" both work.
func articleCSVRows(r *http.Request) ([]csvArticleRow, []csvRowError, error) {
	if err := r.ParseMultipartForm(maxCSVBytes); err != nil {
		return nil, nil, fmt.Errorf("unable to parse upload: %w", err)
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, nil, fmt.Errorf("file field is required")
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("unable to read CSV header")
	}

	cols := map[string]int{}
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		key = strings.ReplaceAll(key, " ", "_")
		cols[key] = i
	}
	productCol, okP := cols["product"]
	codeCol, okC := cols["article_code"]
	promoterCol, okR := cols["promoter"]
	if !okP || !okC || !okR {
		return nil, nil, fmt.Errorf("CSV must have product, article_code and promoter columns")
	}

	var (
		rows     []csvArticleRow
		rowErrs  []csvRowError
		rowCount int
	)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		rowCount++
		if rowCount > maxCSVRows {
			return nil, nil, fmt.Errorf("CSV exceeds %d rows", maxCSVRows)
		}
		if err != nil {
			rowErrs = append(rowErrs, csvRowError{Row: rowCount + 1, Message: err.Error()})
			continue
		}
		need := productCol
		if codeCol > need {
			need = codeCol
		}
		if promoterCol > need {
			need = promoterCol
		}
		if len(record) <= need {
			rowErrs = append(rowErrs, csvRowError{Row: rowCount + 1, Message: "missing columns"})
			continue
		}

		product := strings.TrimSpace(record[productCol])
		promoter := strings.TrimSpace(record[promoterCol])
		code, convErr := strconv.ParseInt(strings.TrimSpace(record[codeCol]), 10, 64)
		if product == "" || promoter == "" {
			rowErrs = append(rowErrs, csvRowError{Row: rowCount + 1, Message: "product and promoter are required"})
			continue
		}
		if convErr != nil || code <= 0 {
			rowErrs = append(rowErrs, csvRowError{Row: rowCount + 1, Message: "article_code must be a positive integer"})
			continue
		}
		rows = append(rows, csvArticleRow{
			articleCodeRequest: articleCodeRequest{Product: product, ArticleCode: code, Promoter: promoter},
			Row:                rowCount + 1,
		})
	}
	return rows, rowErrs, nil
}

func (h *Handler) uploadArticleCSV(w http.ResponseWriter, r *http.Request) {
	rows, rowErrs, err := articleCSVRows(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	tx, err := h.db.Beginx()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to start import")
		return
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Preparex(`INSERT INTO article_codes (product, article_code, promoter) VALUES ($1, $2, $3)`)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to prepare import")
		return
	}
	defer stmt.Close()

	created := 0
	for _, row := range rows {
		if _, err := stmt.Exec(row.Product, row.ArticleCode, row.Promoter); err != nil {
			if strings.Contains(err.Error(), "UNIQUE constraint") {
				rowErrs = append(rowErrs, csvRowError{Row: row.Row, Message: fmt.Sprintf("article code %d already exists for promoter %s", row.ArticleCode, row.Promoter)})
				continue
			}
			respondError(w, http.StatusInternalServerError, "unable to import article codes")
			return
		}
		created++
	}
	if err := tx.Commit(); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to complete import")
		return
	}

	if rowErrs == nil {
		rowErrs = []csvRowError{}
	}
	respondJSON(w, http.StatusCreated, map[string]any{"created": created, "errors": rowErrs})
}

func (h *Handler) updateArticleCSV(w http.ResponseWriter, r *http.Request) {
	rows, rowErrs, err := articleCSVRows(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	tx, err := h.db.Beginx()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to start import")
		return
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Preparex(`INSERT INTO article_codes (product, article_code, promoter) VALUES ($1, $2, $3)
        ON CONFLICT(article_code, promoter) DO UPDATE SET product = excluded.product, updated_at = CURRENT_TIMESTAMP`)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to prepare import")
		return
	}
	defer stmt.Close()

	applied := 0
	for _, row := range rows {
		if _, err := stmt.Exec(row.Product, row.ArticleCode, row.Promoter); err != nil {
			respondError(w, http.StatusInternalServerError, "unable to import article codes")
			return
		}
		applied++
	}
	if err := tx.Commit(); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to complete import")
		return
	}

	if rowErrs == nil {
		rowErrs = []csvRowError{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"applied": applied, "errors": rowErrs})
}

// Promoter handlers

type promoterRequest struct {
	State       string `json:"state"`
	PointOfSale string `json:"point_of_sale"`
	Promoter    string `json:"promoter"`
}

func (h *Handler) createPromoter(w http.ResponseWriter, r *http.Request) {
	var req promoterRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.State == "" || req.PointOfSale == "" || req.Promoter == "" {
		respondError(w, http.StatusBadRequest, "state, point_of_sale and promoter are required")
		return
	}
	var id int64
	err := h.db.QueryRowx(`INSERT INTO promoters (state, point_of_sale, promoter) VALUES ($1, $2, $3) RETURNING id`,
		req.State, req.PointOfSale, req.Promoter).Scan(&id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to create promoter")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"id": id, "point_of_sale": req.PointOfSale})
}

func (h *Handler) listPromoters(w http.ResponseWriter, r *http.Request) {
	var (
		args    []any
		clauses []string
	)
	state := strings.TrimSpace(r.URL.Query().Get("state"))
	if state != "" {
		args = append(args, state)
		clauses = append(clauses, fmt.Sprintf("state = $%d", len(args)))
	}
	search := strings.TrimSpace(r.URL.Query().Get("search"))
	if search != "" {
		args = append(args, search)
		clauses = append(clauses, fmt.Sprintf("(LOWER(point_of_sale) LIKE '%%' || LOWER($%d) || '%%' OR LOWER(promoter) LIKE '%%' || LOWER($%d) || '%%')", len(args), len(args)))
	}

	query := `SELECT id, state, point_of_sale, promoter, created_at, updated_at FROM promoters`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY point_of_sale"

	var promoters []domain.Promoter
	if err := h.db.Select(&promoters, query, args...); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list promoters")
		return
	}
	if promoters == nil {
		promoters = []domain.Promoter{}
	}
	respondJSON(w, http.StatusOK, promoters)
}

func (h *Handler) getPromoter(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid promoter id")
		return
	}
	var promoter domain.Promoter
	err = h.db.Get(&promoter, `SELECT id, state, point_of_sale, promoter, created_at, updated_at FROM promoters WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		respondError(w, http.StatusNotFound, "promoter not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load promoter")
		return
	}
	respondJSON(w, http.StatusOK, promoter)
}

func (h *Handler) updatePromoter(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid promoter id")
		return
	}
	var req promoterRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.State == "" || req.PointOfSale == "" || req.Promoter == "" {
		respondError(w, http.StatusBadRequest, "state, point_of_sale and promoter are required")
		return
	}
	_, err = h.db.Exec(`UPDATE promoters SET state = $1, point_of_sale = $2, promoter = $3, updated_at = CURRENT_TIMESTAMP WHERE id = $4`,
		req.State, req.PointOfSale, req.Promoter, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to update promoter")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) deletePromoter(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid promoter id")
		return
	}
	res, err := h.db.Exec(`DELETE FROM promoters WHERE id = $1`, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to delete promoter")
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		respondError(w, http.StatusNotFound, "promoter not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// pagination reads page/per_page query parameters with sane bounds.
func pagination(r *http.Request, defaultPerPage int) (page, perPage int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ = strconv.Atoi(r.URL.Query().Get("per_page"))
	if perPage < 1 || perPage > 500 {
		perPage = defaultPerPage
	}
	return page, perPage
}
