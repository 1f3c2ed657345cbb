package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"retailscan/m/domain"
)

// Admin handlers

type adminRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string       `json:"token"`
	Admin domain.Admin `json:"admin"`
}

func (h *Handler) createAdmin(w http.ResponseWriter, r *http.Request) {
	var req adminRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "name, email and password are required")
		return
	}

	hashed, err := hashPassword(req.Password)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to secure password")
		return
	}

	var id int64
	err = h.db.QueryRowx(`INSERT INTO admins (name, email, password) VALUES ($1, $2, $3) RETURNING id`,
		req.Name, strings.ToLower(req.Email), hashed).Scan(&id)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			respondError(w, http.StatusConflict, "email already exists")
		} else {
			respondError(w, http.StatusInternalServerError, "unable to create admin")
		}
		return
	}

	token, err := h.generateToken(strings.ToLower(req.Email), req.Name)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to generate token")
		return
	}
	respondJSON(w, http.StatusCreated, authResponse{Token: token, Admin: domain.Admin{ID: id, Name: req.Name, Email: strings.ToLower(req.Email)}})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var admin domain.Admin
	err := h.db.Get(&admin, `SELECT id, name, email, password FROM admins WHERE email = $1`, strings.ToLower(req.Email))
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if !checkPassword(admin.Password, req.Password) {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := h.generateToken(admin.Email, admin.Name)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to generate token")
		return
	}

	admin.Password = ""
	respondJSON(w, http.StatusOK, authResponse{Token: token, Admin: admin})
}

func (h *Handler) listAdmins(w http.ResponseWriter, r *http.Request) {
	var admins []domain.Admin
	if err := h.db.Select(&admins, `SELECT id, name, email FROM admins ORDER BY id`); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list admins")
		return
	}
	respondJSON(w, http.StatusOK, admins)
}

func (h *Handler) updateAdmin(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid admin id")
		return
	}
	var req adminRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Name == "" || req.Email == "" {
		respondError(w, http.StatusBadRequest, "name and email are required")
		return
	}

	if req.Password != "" {
		hashed, err := hashPassword(req.Password)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "unable to secure password")
			return
		}
		_, err = h.db.Exec(`UPDATE admins SET name = $1, email = $2, password = $3 WHERE id = $4`,
			req.Name, strings.ToLower(req.Email), hashed, id)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "unable to update admin")
			return
		}
	} else {
		if _, err := h.db.Exec(`UPDATE admins SET name = $1, email = $2 WHERE id = $3`, req.Name, strings.ToLower(req.Email), id); err != nil {
			respondError(w, http.StatusInternalServerError, "unable to update admin")
			return
		}
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) deleteAdmin(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid admin id")
		return
	}
	res, err := h.db.Exec(`DELETE FROM admins WHERE id = $1`, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to delete admin")
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		respondError(w, http.StatusNotFound, "admin not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
