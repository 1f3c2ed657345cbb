package api

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"

	"retailscan/m/domain"
)

// POS entry handlers. One submission is a promoter's full visit record: the
// note header, manually keyed summary lines and the scanned barcode pages.

type posEntryItemRequest struct {
	Ykey     string  `json:"ykey"`
	Product  string  `json:"product"`
	Quantity float64 `json:"quantity"`
	Price    float64 `json:"price"`
	Unit     string  `json:"unit"`
	Discount float64 `json:"discount"`
}

type posEntryProductRequest struct {
	Barcode       string   `json:"barcode"`
	Product       string   `json:"product"`
	Price         *float64 `json:"price"`
	ArticleCode   *int64   `json:"article_code"`
	WeightCode    string   `json:"weight_code"`
	BarcodeFormat string   `json:"barcode_format"`
	Pricelist     string   `json:"pricelist"`
	Weight        *float64 `json:"weight"`
	GST           *float64 `json:"gst"`
	PriceWithGST  *float64 `json:"price_with_gst"`
}

type posEntryPageRequest struct {
	PageNumber int64                    `json:"page_number"`
	Products   []posEntryProductRequest `json:"products"`
}

type posEntryRequest struct {
	NoteDate  string                `json:"note_date"`
	Promoter  string                `json:"promoter"`
	Note      string                `json:"note"`
	StoreName string                `json:"store_name"`
	Items     []posEntryItemRequest `json:"items"`
	Pages     []posEntryPageRequest `json:"pages"`
}

func (h *Handler) createPosEntry(w http.ResponseWriter, r *http.Request) {
	var req posEntryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.NoteDate == "" || req.Promoter == "" {
		respondError(w, http.StatusBadRequest, "note_date and promoter are required")
		return
	}
	if len(req.Items) == 0 && len(req.Pages) == 0 {
		respondError(w, http.StatusBadRequest, "entry must carry items or scanned pages")
		return
	}

	tx, err := h.db.Beginx()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to start entry")
		return
	}
	defer func() { _ = tx.Rollback() }()

	var noteID int64
	err = tx.QueryRowx(`INSERT INTO general_notes (note_date, promoter, note, store_name) VALUES ($1, $2, $3, $4) RETURNING id`,
		req.NoteDate, req.Promoter, req.Note, req.StoreName).Scan(&noteID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to create note")
		return
	}

	for _, item := range req.Items {
		if item.Product == "" || item.Quantity <= 0 {
			respondError(w, http.StatusBadRequest, "each item needs a product and a positive quantity")
			return
		}
		_, err := tx.Exec(`INSERT INTO note_items (general_note_id, ykey, product, quantity, price, unit, discount, store_name)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			noteID, item.Ykey, item.Product, item.Quantity, item.Price, item.Unit, item.Discount, req.StoreName)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "unable to record note item")
			return
		}
	}

	scanned := 0
	for _, page := range req.Pages {
		var pageID int64
		err := tx.QueryRowx(`INSERT INTO barcode_pages (general_note_id, page_number, count) VALUES ($1, $2, $3) RETURNING id`,
			noteID, page.PageNumber, len(page.Products)).Scan(&pageID)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "unable to record barcode page")
			return
		}
		for _, product := range page.Products {
			if product.Barcode == "" || product.Product == "" {
				respondError(w, http.StatusBadRequest, "each scanned product needs a barcode and a product name")
				return
			}
			_, err := tx.Exec(`INSERT INTO barcode_products
                (barcode_page_id, barcode, product, price, article_code, weight_code, barcode_format, store_name, pricelist, weight, gst, price_with_gst)
                VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
				pageID, product.Barcode, product.Product, product.Price, product.ArticleCode, product.WeightCode,
				product.BarcodeFormat, req.StoreName, product.Pricelist, product.Weight, product.GST, product.PriceWithGST)
			if err != nil {
				respondError(w, http.StatusInternalServerError, "unable to record scanned product")
				return
			}
			scanned++
		}
	}

	if err := tx.Commit(); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to finalize entry")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"id":      noteID,
		"items":   len(req.Items),
		"pages":   len(req.Pages),
		"scanned": scanned,
	})
}

type posEntryPage struct {
	domain.BarcodePage
	Products []domain.BarcodeProduct `json:"products"`
}

type posEntryDetail struct {
	domain.GeneralNote
	Items []domain.NoteItem `json:"items"`
	Pages []posEntryPage    `json:"pages"`
}

func (h *Handler) getPosEntry(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid entry id")
		return
	}

	var note domain.GeneralNote
	err = h.db.Get(&note, `SELECT id, note_date, promoter, note, store_name, created_at, updated_at FROM general_notes WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		respondError(w, http.StatusNotFound, "entry not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load entry")
		return
	}

	detail := posEntryDetail{GeneralNote: note, Items: []domain.NoteItem{}, Pages: []posEntryPage{}}
	if err := h.db.Select(&detail.Items, `SELECT id, general_note_id, ykey, product, quantity, price, unit, discount, store_name, created_at FROM note_items WHERE general_note_id = $1 ORDER BY id`, id); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load note items")
		return
	}

	var pages []domain.BarcodePage
	if err := h.db.Select(&pages, `SELECT id, general_note_id, page_number, count, created_at FROM barcode_pages WHERE general_note_id = $1 ORDER BY page_number`, id); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load barcode pages")
		return
	}
	if len(pages) == 0 {
		respondJSON(w, http.StatusOK, detail)
		return
	}

	pageIDs := make([]int64, len(pages))
	for i, page := range pages {
		pageIDs[i] = page.ID
	}
	query, queryArgs, err := sqlx.In(`SELECT id, barcode_page_id, barcode, product, price, article_code, weight_code, barcode_format, store_name, pricelist, weight, gst, price_with_gst, created_at
        FROM barcode_products WHERE barcode_page_id IN (?) ORDER BY id`, pageIDs)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to prepare product query")
		return
	}
	query = h.db.Rebind(query)

	var products []domain.BarcodeProduct
	if err := h.db.Select(&products, query, queryArgs...); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load scanned products")
		return
	}
	productsByPage := make(map[int64][]domain.BarcodeProduct)
	for _, product := range products {
		productsByPage[product.BarcodePageID] = append(productsByPage[product.BarcodePageID], product)
	}

	for _, page := range pages {
		items := productsByPage[page.ID]
		if items == nil {
			items = []domain.BarcodeProduct{}
		}
		detail.Pages = append(detail.Pages, posEntryPage{BarcodePage: page, Products: items})
	}

	respondJSON(w, http.StatusOK, detail)
}
