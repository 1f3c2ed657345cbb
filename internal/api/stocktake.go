package api

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"retailscan/m/domain"
)

// Stock take handlers. A stock take is "active" from creation until closing
// quantities are recorded for its store, then "completed".

type stockTakeRequest struct {
	StoreName string `json:"store_name"`
	StartDate string `json:"start_date"`
}

func (h *Handler) createStockTake(w http.ResponseWriter, r *http.Request) {
	var req stockTakeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.StoreName == "" {
		respondError(w, http.StatusBadRequest, "store_name is required")
		return
	}
	if req.StartDate == "" {
		req.StartDate = time.Now().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", req.StartDate); err != nil {
		respondError(w, http.StatusBadRequest, "start_date must be in YYYY-MM-DD format")
		return
	}

	// Only one active stock take per store.
	var exists bool
	if err := h.db.Get(&exists, `SELECT EXISTS(SELECT 1 FROM stock_takes WHERE store_name = $1 AND status = 'active')`, req.StoreName); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to check active stock takes")
		return
	}
	if exists {
		respondError(w, http.StatusConflict, "store already has an active stock take")
		return
	}

	var id int64
	err := h.db.QueryRowx(`INSERT INTO stock_takes (store_name, start_date, status) VALUES ($1, $2, 'active') RETURNING id`,
		req.StoreName, req.StartDate).Scan(&id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to create stock take")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"id": id, "store_name": req.StoreName, "status": "active"})
}

func (h *Handler) listStockTakes(w http.ResponseWriter, r *http.Request) {
	var (
		args    []any
		clauses []string
	)
	status := strings.TrimSpace(r.URL.Query().Get("status"))
	if status != "" {
		args = append(args, status)
		clauses = append(clauses, fmt.Sprintf("status = $%d", len(args)))
	}
	store := strings.TrimSpace(r.URL.Query().Get("store"))
	if store != "" {
		args = append(args, store)
		clauses = append(clauses, fmt.Sprintf("LOWER(store_name) LIKE '%%' || LOWER($%d) || '%%'", len(args)))
	}

	where := ""
	if len(clauses) > 0 {
		where = " WHERE " + strings.Join(clauses, " AND ")
	}

	var total int64
	if err := h.db.Get(&total, `SELECT COUNT(*) FROM stock_takes`+where, args...); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to count stock takes")
		return
	}

	page, perPage := pagination(r, 25)
	args = append(args, perPage, (page-1)*perPage)
	query := fmt.Sprintf(`SELECT id, store_name, start_date, end_date, status, created_at, updated_at FROM stock_takes%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		where, len(args)-1, len(args))

	var takes []domain.StockTake
	if err := h.db.Select(&takes, query, args...); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list stock takes")
		return
	}
	if takes == nil {
		takes = []domain.StockTake{}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"items":    takes,
		"total":    total,
		"page":     page,
		"per_page": perPage,
	})
}

type stockTakeDetail struct {
	domain.StockTake
	OpenStock  []domain.OpenStock  `json:"open_stock"`
	CloseStock []domain.CloseStock `json:"close_stock"`
}

func (h *Handler) getStockTake(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid stock take id")
		return
	}
	var take domain.StockTake
	err = h.db.Get(&take, `SELECT id, store_name, start_date, end_date, status, created_at, updated_at FROM stock_takes WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		respondError(w, http.StatusNotFound, "stock take not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load stock take")
		return
	}

	detail := stockTakeDetail{StockTake: take, OpenStock: []domain.OpenStock{}, CloseStock: []domain.CloseStock{}}
	if err := h.db.Select(&detail.OpenStock, `SELECT id, stock_take_id, product_name, promoter, open_qty, created_at, updated_at FROM open_stock WHERE stock_take_id = $1 ORDER BY product_name`, id); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load open stock")
		return
	}
	if err := h.db.Select(&detail.CloseStock, `SELECT id, stock_take_id, product_name, promoter, close_qty, created_at, updated_at FROM close_stock WHERE stock_take_id = $1 ORDER BY product_name`, id); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load close stock")
		return
	}
	respondJSON(w, http.StatusOK, detail)
}

func (h *Handler) updateStockTake(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid stock take id")
		return
	}
	var payload struct {
		EndDate string `json:"end_date"`
		Status  string `json:"status"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if payload.Status != "active" && payload.Status != "completed" {
		respondError(w, http.StatusBadRequest, "status must be active or completed")
		return
	}
	res, err := h.db.Exec(`UPDATE stock_takes SET end_date = $1, status = $2, updated_at = CURRENT_TIMESTAMP WHERE id = $3`,
		nullIfEmpty(payload.EndDate), payload.Status, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to update stock take")
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		respondError(w, http.StatusNotFound, "stock take not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) deleteStockTake(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid stock take id")
		return
	}
	res, err := h.db.Exec(`DELETE FROM stock_takes WHERE id = $1`, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to delete stock take")
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		respondError(w, http.StatusNotFound, "stock take not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Open/close stock entries

type stockEntryRequest struct {
	ProductName string  `json:"product_name"`
	Promoter    string  `json:"promoter"`
	Quantity    float64 `json:"quantity"`
}

type stockEntriesRequest struct {
	Entries []stockEntryRequest `json:"entries"`
}

func (h *Handler) addOpenStock(w http.ResponseWriter, r *http.Request) {
	h.addStockEntries(w, r, "open_stock", "open_qty")
}

func (h *Handler) addCloseStock(w http.ResponseWriter, r *http.Request) {
	h.addStockEntries(w, r, "close_stock", "close_qty")
}

func (h *Handler) addStockEntries(w http.ResponseWriter, r *http.Request, table, qtyCol string) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid stock take id")
		return
	}
	var req stockEntriesRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Entries) == 0 {
		respondError(w, http.StatusBadRequest, "entries are required")
		return
	}

	var status string
	err = h.db.Get(&status, `SELECT status FROM stock_takes WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		respondError(w, http.StatusNotFound, "stock take not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load stock take")
		return
	}
	if status != "active" {
		respondError(w, http.StatusConflict, "stock take is not active")
		return
	}

	tx, err := h.db.Beginx()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to start stock entry")
		return
	}
	defer func() { _ = tx.Rollback() }()

	// Re-submitting a product replaces the earlier quantity.
	stmt, err := tx.Preparex(`INSERT INTO ` + table + ` (stock_take_id, product_name, promoter, ` + qtyCol + `) VALUES ($1, $2, $3, $4)
        ON CONFLICT(stock_take_id, product_name, promoter) DO UPDATE SET ` + qtyCol + ` = excluded.` + qtyCol + `, updated_at = CURRENT_TIMESTAMP`)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to prepare stock entry")
		return
	}
	defer stmt.Close()

	for _, entry := range req.Entries {
		if entry.ProductName == "" || entry.Promoter == "" || entry.Quantity < 0 {
			respondError(w, http.StatusBadRequest, "product_name, promoter and a non-negative quantity are required")
			return
		}
		if _, err := stmt.Exec(id, entry.ProductName, entry.Promoter, entry.Quantity); err != nil {
			respondError(w, http.StatusInternalServerError, "unable to record stock entry")
			return
		}
	}
	if err := tx.Commit(); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to complete stock entry")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"stock_take_id": id, "recorded": len(req.Entries)})
}

type closeByStoreRequest struct {
	StoreName string              `json:"store_name"`
	EndDate   string              `json:"end_date"`
	Entries   []stockEntryRequest `json:"entries"`
}

// closeStockTakeByStore records closing quantities for the store's active
// stock take and completes it in one call, the way the counting app submits.
func (h *Handler) closeStockTakeByStore(w http.ResponseWriter, r *http.Request) {
	var req closeByStoreRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.StoreName == "" {
		respondError(w, http.StatusBadRequest, "store_name is required")
		return
	}
	if req.EndDate == "" {
		req.EndDate = time.Now().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", req.EndDate); err != nil {
		respondError(w, http.StatusBadRequest, "end_date must be in YYYY-MM-DD format")
		return
	}

	var takeID int64
	err := h.db.Get(&takeID, `SELECT id FROM stock_takes WHERE store_name = $1 AND status = 'active' ORDER BY created_at DESC LIMIT 1`, req.StoreName)
	if errors.Is(err, sql.ErrNoRows) {
		respondError(w, http.StatusNotFound, "no active stock take for store")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to find active stock take")
		return
	}

	tx, err := h.db.Beginx()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to start close")
		return
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Preparex(`INSERT INTO close_stock (stock_take_id, product_name, promoter, close_qty) VALUES ($1, $2, $3, $4)
        ON CONFLICT(stock_take_id, product_name, promoter) DO UPDATE SET close_qty = excluded.close_qty, updated_at = CURRENT_TIMESTAMP`)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to prepare close")
		return
	}
	defer stmt.Close()

	for _, entry := range req.Entries {
		if entry.ProductName == "" || entry.Promoter == "" || entry.Quantity < 0 {
			respondError(w, http.StatusBadRequest, "product_name, promoter and a non-negative quantity are required")
			return
		}
		if _, err := stmt.Exec(takeID, entry.ProductName, entry.Promoter, entry.Quantity); err != nil {
			respondError(w, http.StatusInternalServerError, "unable to record closing stock")
			return
		}
	}

	if _, err := tx.Exec(`UPDATE stock_takes SET status = 'completed', end_date = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`, req.EndDate, takeID); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to complete stock take")
		return
	}
	if err := tx.Commit(); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to finalize close")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"stock_take_id": takeID, "status": "completed", "recorded": len(req.Entries)})
}
