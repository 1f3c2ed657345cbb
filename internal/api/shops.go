package api

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"retailscan/m/domain"
)

// Shop handlers

type shopRequest struct {
	Company     string `json:"company"`
	Users       string `json:"users"`
	PosShopName string `json:"pos_shop_name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
}

func (h *Handler) createShop(w http.ResponseWriter, r *http.Request) {
	var req shopRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Company == "" || req.PosShopName == "" || req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "company, pos_shop_name, email and password are required")
		return
	}

	hashed, err := hashPassword(req.Password)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to secure password")
		return
	}

	var id int64
	err = h.db.QueryRowx(`INSERT INTO shops (company, users, pos_shop_name, email, password) VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		req.Company, req.Users, req.PosShopName, strings.ToLower(req.Email), hashed).Scan(&id)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			respondError(w, http.StatusConflict, "email already exists")
		} else {
			respondError(w, http.StatusInternalServerError, "unable to create shop")
		}
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"id": id, "company": req.Company, "pos_shop_name": req.PosShopName})
}

func (h *Handler) listShops(w http.ResponseWriter, r *http.Request) {
	var shops []domain.Shop
	if err := h.db.Select(&shops, `SELECT id, company, users, pos_shop_name, email, created_at, updated_at FROM shops ORDER BY company`); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list shops")
		return
	}
	respondJSON(w, http.StatusOK, shops)
}

func (h *Handler) getShop(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid shop id")
		return
	}
	var shop domain.Shop
	err = h.db.Get(&shop, `SELECT id, company, users, pos_shop_name, email, created_at, updated_at FROM shops WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		respondError(w, http.StatusNotFound, "shop not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load shop")
		return
	}
	respondJSON(w, http.StatusOK, shop)
}

func (h *Handler) updateShop(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid shop id")
		return
	}
	var req shopRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Company == "" || req.PosShopName == "" || req.Email == "" {
		respondError(w, http.StatusBadRequest, "company, pos_shop_name and email are required")
		return
	}

	if req.Password != "" {
		hashed, err := hashPassword(req.Password)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "unable to secure password")
			return
		}
		_, err = h.db.Exec(`UPDATE shops SET company = $1, users = $2, pos_shop_name = $3, email = $4, password = $5, updated_at = CURRENT_TIMESTAMP WHERE id = $6`,
			req.Company, req.Users, req.PosShopName, strings.ToLower(req.Email), hashed, id)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "unable to update shop")
			return
		}
	} else {
		_, err = h.db.Exec(`UPDATE shops SET company = $1, users = $2, pos_shop_name = $3, email = $4, updated_at = CURRENT_TIMESTAMP WHERE id = $5`,
			req.Company, req.Users, req.PosShopName, strings.ToLower(req.Email), id)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "unable to update shop")
			return
		}
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) deleteShop(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid shop id")
		return
	}
	res, err := h.db.Exec(`DELETE FROM shops WHERE id = $1`, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to delete shop")
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		respondError(w, http.StatusNotFound, "shop not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
