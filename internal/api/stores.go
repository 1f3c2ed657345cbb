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
)

// Product handlers. Products are keyed by their Y key, not a rowid.

type productRequest struct {
	ProductID          string `json:"product_id"`
	ProductType        string `json:"product_type"`
	ProductDescription string `json:"product_description"`
	IsActive           *bool  `json:"is_active"`
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.ProductID == "" || req.ProductDescription == "" {
		respondError(w, http.StatusBadRequest, "product_id and product_description are required")
		return
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	_, err := h.db.Exec(`INSERT INTO products (product_id, product_type, product_description, is_active) VALUES ($1, $2, $3, $4)`,
		req.ProductID, req.ProductType, req.ProductDescription, active)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			respondError(w, http.StatusConflict, fmt.Sprintf("product %s already exists", req.ProductID))
		} else {
			respondError(w, http.StatusInternalServerError, "unable to create product")
		}
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"product_id": req.ProductID})
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	var (
		args    []any
		clauses []string
	)
	search := strings.TrimSpace(r.URL.Query().Get("search"))
	if search != "" {
		args = append(args, search)
		clauses = append(clauses, fmt.Sprintf("(LOWER(product_description) LIKE '%%' || LOWER($%d) || '%%' OR LOWER(product_id) LIKE '%%' || LOWER($%d) || '%%')", len(args), len(args)))
	}
	if r.URL.Query().Get("active") == "true" {
		clauses = append(clauses, "is_active = 1")
	}

	query := `SELECT product_id, product_type, product_description, is_active, created_at, updated_at FROM products`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY product_id"

	var products []domain.Product
	if err := h.db.Select(&products, query, args...); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list products")
		return
	}
	if products == nil {
		products = []domain.Product{}
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var product domain.Product
	err := h.db.Get(&product, `SELECT product_id, product_type, product_description, is_active, created_at, updated_at FROM products WHERE product_id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		respondError(w, http.StatusNotFound, "product not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load product")
		return
	}
	respondJSON(w, http.StatusOK, product)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.ProductDescription == "" {
		respondError(w, http.StatusBadRequest, "product_description is required")
		return
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	res, err := h.db.Exec(`UPDATE products SET product_type = $1, product_description = $2, is_active = $3, updated_at = CURRENT_TIMESTAMP WHERE product_id = $4`,
		req.ProductType, req.ProductDescription, active, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to update product")
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		respondError(w, http.StatusNotFound, "product not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	res, err := h.db.Exec(`DELETE FROM products WHERE product_id = $1`, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to delete product")
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		respondError(w, http.StatusNotFound, "product not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Store handlers

type storeRequest struct {
	StoreName string  `json:"store_name"`
	StoreCode *string `json:"store_code"`
	Email     *string `json:"email"`
	StateName string  `json:"state_name"`
}

// createStore registers a store, creating its state row on first sight.
func (h *Handler) createStore(w http.ResponseWriter, r *http.Request) {
	var req storeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.StoreName == "" || req.StateName == "" {
		respondError(w, http.StatusBadRequest, "store_name and state_name are required")
		return
	}

	tx, err := h.db.Beginx()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to start store creation")
		return
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`INSERT OR IGNORE INTO states (state_name) VALUES ($1)`, req.StateName); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to register state")
		return
	}
	var stateID int64
	if err := tx.Get(&stateID, `SELECT state_id FROM states WHERE state_name = $1`, req.StateName); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to resolve state")
		return
	}

	var id int64
	err = tx.QueryRowx(`INSERT INTO stores (store_name, store_code, email, state_id) VALUES ($1, $2, $3, $4) RETURNING store_id`,
		req.StoreName, req.StoreCode, req.Email, stateID).Scan(&id)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			respondError(w, http.StatusConflict, "store code already exists")
		} else {
			respondError(w, http.StatusInternalServerError, "unable to create store")
		}
		return
	}
	if err := tx.Commit(); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to complete store creation")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"store_id": id, "store_name": req.StoreName, "state_id": stateID})
}

type storeListEntry struct {
	domain.Store
	StateName string `db:"state_name" json:"state_name"`
}

func (h *Handler) listStores(w http.ResponseWriter, r *http.Request) {
	var (
		args    []any
		clauses []string
	)
	state := strings.TrimSpace(r.URL.Query().Get("state"))
	if state != "" {
		args = append(args, state)
		clauses = append(clauses, fmt.Sprintf("st.state_name = $%d", len(args)))
	}
	search := strings.TrimSpace(r.URL.Query().Get("search"))
	if search != "" {
		args = append(args, search)
		clauses = append(clauses, fmt.Sprintf("LOWER(s.store_name) LIKE '%%' || LOWER($%d) || '%%'", len(args)))
	}

	query := `SELECT s.store_id, s.store_name, s.store_code, s.email, s.state_id, s.is_active, s.created_at, s.updated_at, st.state_name
              FROM stores s
              JOIN states st ON st.state_id = s.state_id`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY s.store_name"

	var stores []storeListEntry
	if err := h.db.Select(&stores, query, args...); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list stores")
		return
	}
	if stores == nil {
		stores = []storeListEntry{}
	}
	respondJSON(w, http.StatusOK, stores)
}

// Store product availability

type storeProductsRequest struct {
	ProductIDs []string `json:"product_ids"`
}

// setStoreProducts replaces the availability set of a store in one shot.
func (h *Handler) setStoreProducts(w http.ResponseWriter, r *http.Request) {
	storeID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid store id")
		return
	}
	var req storeProductsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var exists bool
	if err := h.db.Get(&exists, `SELECT EXISTS(SELECT 1 FROM stores WHERE store_id = $1)`, storeID); err != nil || !exists {
		respondError(w, http.StatusNotFound, "store not found")
		return
	}

	tx, err := h.db.Beginx()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to start availability update")
		return
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM store_products WHERE store_id = $1`, storeID); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to reset availability")
		return
	}
	stmt, err := tx.Preparex(`INSERT INTO store_products (store_id, product_id) VALUES ($1, $2)`)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to prepare availability update")
		return
	}
	defer stmt.Close()

	for _, productID := range req.ProductIDs {
		if _, err := stmt.Exec(storeID, productID); err != nil {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("unknown product %s", productID))
			return
		}
	}
	if err := tx.Commit(); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to complete availability update")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"store_id": storeID, "count": len(req.ProductIDs)})
}

type storeProductEntry struct {
	ProductID          string `db:"product_id" json:"product_id"`
	ProductDescription string `db:"product_description" json:"product_description"`
	ProductType        string `db:"product_type" json:"product_type"`
	IsAvailable        bool   `db:"is_available" json:"is_available"`
}

func (h *Handler) listStoreProducts(w http.ResponseWriter, r *http.Request) {
	storeID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid store id")
		return
	}
	var items []storeProductEntry
	query := `SELECT p.product_id, p.product_description, p.product_type, sp.is_available
              FROM store_products sp
              JOIN products p ON p.product_id = sp.product_id
              WHERE sp.store_id = $1
              ORDER BY p.product_id`
	if err := h.db.Select(&items, query, storeID); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list store products")
		return
	}
	if items == nil {
		items = []storeProductEntry{}
	}
	respondJSON(w, http.StatusOK, items)
}

// Flat availability rows, as exported from the availability workbook.

type storeProductFlatRequest struct {
	Ykey        string `json:"ykey"`
	ProductName string `json:"product_name"`
	Store       string `json:"store"`
	State       string `json:"state"`
}

func (h *Handler) createStoreProductFlat(w http.ResponseWriter, r *http.Request) {
	var req storeProductFlatRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Ykey == "" || req.ProductName == "" || req.Store == "" {
		respondError(w, http.StatusBadRequest, "ykey, product_name and store are required")
		return
	}
	var id int64
	err := h.db.QueryRowx(`INSERT INTO store_product_flat (ykey, product_name, store, state) VALUES ($1, $2, $3, $4) RETURNING id`,
		req.Ykey, req.ProductName, req.Store, req.State).Scan(&id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to create availability row")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"id": id})
}

func (h *Handler) listStoreProductFlat(w http.ResponseWriter, r *http.Request) {
	var (
		args    []any
		clauses []string
	)
	store := strings.TrimSpace(r.URL.Query().Get("store"))
	if store != "" {
		args = append(args, store)
		clauses = append(clauses, fmt.Sprintf("LOWER(store) LIKE '%%' || LOWER($%d) || '%%'", len(args)))
	}
	ykey := strings.TrimSpace(r.URL.Query().Get("ykey"))
	if ykey != "" {
		args = append(args, ykey)
		clauses = append(clauses, fmt.Sprintf("ykey = $%d", len(args)))
	}

	query := `SELECT id, ykey, product_name, store, state, created_at, updated_at FROM store_product_flat`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY store, ykey"

	var rows []domain.StoreProductFlat
	if err := h.db.Select(&rows, query, args...); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list availability rows")
		return
	}
	if rows == nil {
		rows = []domain.StoreProductFlat{}
	}
	respondJSON(w, http.StatusOK, rows)
}

func (h *Handler) deleteStoreProductFlat(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid row id")
		return
	}
	res, err := h.db.Exec(`DELETE FROM store_product_flat WHERE id = $1`, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to delete availability row")
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		respondError(w, http.StatusNotFound, "availability row not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
