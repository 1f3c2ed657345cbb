package api

import (
	"errors"
	"net/http"
	"strings"

	"retailscan/m/internal/scan"
)

// Scan endpoints. Both run the same resolution pipeline; barcode-scan decodes
// the raw scanner string first, article-lookup takes a product name and is
// used when a label is unreadable.

type barcodeScanRequest struct {
	Barcode   string `json:"barcode"`
	StoreName string `json:"store_name"`
}

func (h *Handler) barcodeScan(w http.ResponseWriter, r *http.Request) {
	var req barcodeScanRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Barcode) == "" {
		respondError(w, http.StatusBadRequest, "barcode is required")
		return
	}

	result, err := h.pipeline.Scan(r.Context(), req.Barcode, strings.TrimSpace(req.StoreName), scan.ModeBarcode)
	if err != nil {
		respondScanError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

type articleLookupRequest struct {
	ArticleName string `json:"article_name"`
	StoreName   string `json:"store_name"`
}

func (h *Handler) articleLookup(w http.ResponseWriter, r *http.Request) {
	var req articleLookupRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.ArticleName) == "" {
		respondError(w, http.StatusBadRequest, "article_name is required")
		return
	}
	if strings.TrimSpace(req.StoreName) == "" {
		respondError(w, http.StatusBadRequest, "store_name is required")
		return
	}

	result, err := h.pipeline.Scan(r.Context(), strings.TrimSpace(req.ArticleName), strings.TrimSpace(req.StoreName), scan.ModeManualLookup)
	if err != nil {
		respondScanError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// respondScanError maps pipeline failures onto HTTP statuses: bad input is a
// 400, a resolution miss is a 404, anything else is a database fault.
func respondScanError(w http.ResponseWriter, err error) {
	var perr *scan.PipelineError
	if !errors.As(err, &perr) {
		respondError(w, http.StatusInternalServerError, "scan failed: "+err.Error())
		return
	}

	switch perr.Kind {
	case scan.KindUndecodable:
		respondError(w, http.StatusBadRequest, perr.Error())
	case scan.KindPromoterUnresolved, scan.KindArticleUnresolved:
		respondError(w, http.StatusNotFound, perr.Error())
	default:
		respondError(w, http.StatusInternalServerError, perr.Error())
	}
}
