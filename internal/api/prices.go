package api

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"retailscan/m/domain"
	"retailscan/m/internal/seed"
)

// Price handlers

type priceRequest struct {
	Pricelist string   `json:"pricelist"`
	Product   string   `json:"product"`
	Price     float64  `json:"price"`
	GST       *float64 `json:"gst"`
}

func (h *Handler) createPrice(w http.ResponseWriter, r *http.Request) {
	var req priceRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Pricelist == "" || req.Product == "" || req.Price < 0 {
		respondError(w, http.StatusBadRequest, "pricelist, product and a non-negative price are required")
		return
	}
	if req.GST != nil && (*req.GST < 0 || *req.GST > 1) {
		respondError(w, http.StatusBadRequest, "gst must be a fraction between 0 and 1")
		return
	}

	var id int64
	err := h.db.QueryRowx(`INSERT INTO prices (pricelist, product, price, gst) VALUES ($1, $2, $3, $4) RETURNING id`,
		req.Pricelist, req.Product, req.Price, req.GST).Scan(&id)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			respondError(w, http.StatusConflict, fmt.Sprintf("product %q is already priced on pricelist %q", req.Product, req.Pricelist))
		} else {
			respondError(w, http.StatusInternalServerError, "unable to create price")
		}
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"id": id, "pricelist": req.Pricelist, "product": req.Product})
}

func (h *Handler) listPrices(w http.ResponseWriter, r *http.Request) {
	var (
		args    []any
		clauses []string
	)
	pricelist := strings.TrimSpace(r.URL.Query().Get("pricelist"))
	if pricelist != "" {
		args = append(args, pricelist)
		clauses = append(clauses, fmt.Sprintf("pricelist = $%d", len(args)))
	}
	search := strings.TrimSpace(r.URL.Query().Get("search"))
	if search != "" {
		args = append(args, search)
		clauses = append(clauses, fmt.Sprintf("LOWER(product) LIKE '%%' || LOWER($%d) || '%%'", len(args)))
	}

	where := ""
	if len(clauses) > 0 {
		where = " WHERE " + strings.Join(clauses, " AND ")
	}

	var total int64
	if err := h.db.Get(&total, `SELECT COUNT(*) FROM prices`+where, args...); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to count prices")
		return
	}

	page, perPage := pagination(r, 50)
	args = append(args, perPage, (page-1)*perPage)
	query := fmt.Sprintf(`SELECT id, pricelist, product, price, gst, created_at, updated_at FROM prices%s ORDER BY pricelist, product LIMIT $%d OFFSET $%d`,
		where, len(args)-1, len(args))

	var prices []domain.Price
	if err := h.db.Select(&prices, query, args...); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list prices")
		return
	}
	if prices == nil {
		prices = []domain.Price{}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"items":    prices,
		"total":    total,
		"page":     page,
		"per_page": perPage,
	})
}

func (h *Handler) getPrice(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid price id")
		return
	}
	var price domain.Price
	err = h.db.Get(&price, `SELECT id, pricelist, product, price, gst, created_at, updated_at FROM prices WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		respondError(w, http.StatusNotFound, "price not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load price")
		return
	}
	respondJSON(w, http.StatusOK, price)
}

func (h *Handler) updatePrice(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid price id")
		return
	}
	var req priceRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Pricelist == "" || req.Product == "" || req.Price < 0 {
		respondError(w, http.StatusBadRequest, "pricelist, product and a non-negative price are required")
		return
	}
	_, err = h.db.Exec(`UPDATE prices SET pricelist = $1, product = $2, price = $3, gst = $4, updated_at = CURRENT_TIMESTAMP WHERE id = $5`,
		req.Pricelist, req.Product, req.Price, req.GST, id)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			respondError(w, http.StatusConflict, fmt.Sprintf("product %q is already priced on pricelist %q", req.Product, req.Pricelist))
		} else {
			respondError(w, http.StatusInternalServerError, "unable to update price")
		}
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) deletePrice(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid price id")
		return
	}
	res, err := h.db.Exec(`DELETE FROM prices WHERE id = $1`, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to delete price")
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		respondError(w, http.StatusNotFound, "price not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// uploadPriceWorkbook ingests the consolidated pricelist spreadsheet.
func (h *Handler) uploadPriceWorkbook(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxCSVBytes); err != nil {
		respondError(w, http.StatusBadRequest, "unable to parse upload")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	n, err := seed.LoadPriceWorkbook(h.db, file)
	if err != nil {
		respondError(w, http.StatusBadRequest, "unable to import workbook: "+err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"imported": n})
}

// Price POS handlers

type pricePosRequest struct {
	State       string `json:"state"`
	PointOfSale string `json:"point_of_sale"`
	Promoter    string `json:"promoter"`
	Pricelist   string `json:"pricelist"`
}

func (h *Handler) createPricePos(w http.ResponseWriter, r *http.Request) {
	var req pricePosRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.State == "" || req.PointOfSale == "" || req.Promoter == "" || req.Pricelist == "" {
		respondError(w, http.StatusBadRequest, "state, point_of_sale, promoter and pricelist are required")
		return
	}
	var id int64
	err := h.db.QueryRowx(`INSERT INTO price_pos (state, point_of_sale, promoter, pricelist) VALUES ($1, $2, $3, $4) RETURNING id`,
		req.State, req.PointOfSale, req.Promoter, req.Pricelist).Scan(&id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to create price pos mapping")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"id": id, "point_of_sale": req.PointOfSale})
}

func (h *Handler) listPricePos(w http.ResponseWriter, r *http.Request) {
	var (
		args    []any
		clauses []string
	)
	state := strings.TrimSpace(r.URL.Query().Get("state"))
	if state != "" {
		args = append(args, state)
		clauses = append(clauses, fmt.Sprintf("state = $%d", len(args)))
	}
	pricelist := strings.TrimSpace(r.URL.Query().Get("pricelist"))
	if pricelist != "" {
		args = append(args, pricelist)
		clauses = append(clauses, fmt.Sprintf("pricelist = $%d", len(args)))
	}

	query := `SELECT id, state, point_of_sale, promoter, pricelist, created_at, updated_at FROM price_pos`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY point_of_sale"

	var rows []domain.PricePos
	if err := h.db.Select(&rows, query, args...); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list price pos mappings")
		return
	}
	if rows == nil {
		rows = []domain.PricePos{}
	}
	respondJSON(w, http.StatusOK, rows)
}

func (h *Handler) updatePricePos(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid price pos id")
		return
	}
	var req pricePosRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.State == "" || req.PointOfSale == "" || req.Promoter == "" || req.Pricelist == "" {
		respondError(w, http.StatusBadRequest, "state, point_of_sale, promoter and pricelist are required")
		return
	}
	_, err = h.db.Exec(`UPDATE price_pos SET state = $1, point_of_sale = $2, promoter = $3, pricelist = $4, updated_at = CURRENT_TIMESTAMP WHERE id = $5`,
		req.State, req.PointOfSale, req.Promoter, req.Pricelist, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to update price pos mapping")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) deletePricePos(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid price pos id")
		return
	}
	res, err := h.db.Exec(`DELETE FROM price_pos WHERE id = $1`, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to delete price pos mapping")
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		respondError(w, http.StatusNotFound, "price pos mapping not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
