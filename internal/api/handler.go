package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"retailscan/m/internal/repository"
	"retailscan/m/internal/scan"
)

type ctxKey string

const ctxEmail ctxKey = "email"

// Handler bundles dependencies for HTTP handlers.
type Handler struct {
	db       *sqlx.DB
	secret   string
	pipeline *scan.Pipeline
}

// New constructs a Handler backed by the given database.
func New(db *sqlx.DB, secret string) *Handler {
	return &Handler{
		db:       db,
		secret:   secret,
		pipeline: scan.New(repository.NewDirectory(db)),
	}
}

// Router wires up the HTTP API.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}))
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.health)

	r.Route("/admin", func(r chi.Router) {
		r.Post("/", h.createAdmin)
		r.Post("/login", h.login)
		r.Group(func(protected chi.Router) {
			protected.Use(h.authMiddleware)
			protected.Get("/", h.listAdmins)
			protected.Put("/{id}", h.updateAdmin)
			protected.Delete("/{id}", h.deleteAdmin)
		})
	})

	r.Group(func(pr chi.Router) {
		pr.Use(h.authMiddleware)

		pr.Route("/shops", func(r chi.Router) {
			r.Post("/", h.createShop)
			r.Get("/", h.listShops)
			r.Get("/{id}", h.getShop)
			r.Put("/{id}", h.updateShop)
			r.Delete("/{id}", h.deleteShop)
		})

		pr.Route("/article-codes", func(r chi.Router) {
			r.Post("/barcode-scan", h.barcodeScan)
			r.Post("/article-lookup", h.articleLookup)
			r.Post("/upload-csv", h.uploadArticleCSV)
			r.Post("/update-csv", h.updateArticleCSV)

			r.Route("/promoters", func(r chi.Router) {
				r.Get("/", h.listPromoters)
				r.Post("/", h.createPromoter)
				r.Get("/{id}", h.getPromoter)
				r.Put("/{id}", h.updatePromoter)
				r.Delete("/{id}", h.deletePromoter)
			})

			r.Get("/", h.listArticleCodes)
			r.Post("/", h.createArticleCode)
			r.Get("/{id}", h.getArticleCode)
			r.Put("/{id}", h.updateArticleCode)
			r.Delete("/{id}", h.deleteArticleCode)
		})

		pr.Route("/prices", func(r chi.Router) {
			r.Get("/", h.listPrices)
			r.Post("/", h.createPrice)
			r.Post("/upload-xlsx", h.uploadPriceWorkbook)
			r.Get("/{id}", h.getPrice)
			r.Put("/{id}", h.updatePrice)
			r.Delete("/{id}", h.deletePrice)
		})

		pr.Route("/price-pos", func(r chi.Router) {
			r.Get("/", h.listPricePos)
			r.Post("/", h.createPricePos)
			r.Put("/{id}", h.updatePricePos)
			r.Delete("/{id}", h.deletePricePos)
		})

		pr.Route("/products", func(r chi.Router) {
			r.Get("/", h.listProducts)
			r.Post("/", h.createProduct)
			r.Get("/{id}", h.getProduct)
			r.Put("/{id}", h.updateProduct)
			r.Delete("/{id}", h.deleteProduct)
		})

		pr.Route("/stores", func(r chi.Router) {
			r.Get("/", h.listStores)
			r.Post("/", h.createStore)
			r.Post("/{id}/products", h.setStoreProducts)
			r.Get("/{id}/products", h.listStoreProducts)
		})

		pr.Route("/store-product-flat", func(r chi.Router) {
			r.Get("/", h.listStoreProductFlat)
			r.Post("/", h.createStoreProductFlat)
			r.Delete("/{id}", h.deleteStoreProductFlat)
		})

		pr.Route("/stock-takes", func(r chi.Router) {
			r.Get("/", h.listStockTakes)
			r.Post("/", h.createStockTake)
			r.Post("/close-by-store", h.closeStockTakeByStore)
			r.Get("/{id}", h.getStockTake)
			r.Put("/{id}", h.updateStockTake)
			r.Delete("/{id}", h.deleteStockTake)
			r.Post("/{id}/open-stock", h.addOpenStock)
			r.Post("/{id}/close-stock", h.addCloseStock)
		})

		pr.Route("/pos-entries", func(r chi.Router) {
			r.Post("/", h.createPosEntry)
			r.Get("/{id}", h.getPosEntry)
		})
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Authentication helpers

type authClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

func (h *Handler) generateToken(email, name string) (string, error) {
	claims := authClaims{
		Email: email,
		Name:  name,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.secret))
}

func (h *Handler) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			respondError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		tokenString := strings.TrimSpace(header[len("Bearer "):])
		token, err := jwt.ParseWithClaims(tokenString, &authClaims{}, func(token *jwt.Token) (interface{}, error) {
			if token.Method != jwt.SigningMethodHS256 {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(h.secret), nil
		})
		if err != nil || !token.Valid {
			respondError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		claims, ok := token.Claims.(*authClaims)
		if !ok {
			respondError(w, http.StatusUnauthorized, "invalid token claims")
			return
		}
		ctx := context.WithValue(r.Context(), ctxEmail, claims.Email)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func hashPassword(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	return string(hashed), err
}

func checkPassword(hashed, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}

// Helpers

func nullIfEmpty(val string) *string {
	trimmed := strings.TrimSpace(val)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func decodeJSON(r *http.Request, dest interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	_ = encoder.Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
