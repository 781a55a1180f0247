package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/superpool/superpool/internal/core"
)

type QuoteHandler struct {
	svc core.QuoteService
	log *slog.Logger
}

func NewQuoteHandler(svc core.QuoteService, log *slog.Logger) *QuoteHandler {
	return &QuoteHandler{svc: svc, log: log}
}

func (h *QuoteHandler) Mount(r chi.Router) {
	r.Route("/quotes", func(r chi.Router) {
		r.Post("/", h.Request)
		r.Get("/{quote_code}", h.Get)
		r.Post("/{quote_code}/accept", h.Accept)
		r.Post("/{quote_code}/decline", h.Decline)
		r.Post("/{quote_code}/purchase-id", h.PurchaseID)
	})
}

type quoteRequestBody struct {
	Category           string         `json:"category"`
	ProductName        string         `json:"product_name,omitempty"`
	CoveragePreference []string       `json:"coverage_preferences,omitempty"`
	Applicant          core.Applicant `json:"applicant,omitempty"`
}

// Request runs quote aggregation for a category and returns every
// persisted quote matching the request.
func (h *QuoteHandler) Request(w http.ResponseWriter, r *http.Request) {
	var body quoteRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(r, h.log, w, core.ErrValidation, "Request body must be valid JSON.")
		return
	}

	category, err := core.ParseCategory(body.Category)
	if err != nil {
		writeError(r, h.log, w, err, "Category is required and must be a supported insurance line.")
		return
	}

	quotes, err := h.svc.RequestQuote(r.Context(), core.QuoteRequest{
		Category:          category,
		ProductName:       body.ProductName,
		CoveragePreferred: body.CoveragePreference,
		Applicant:         body.Applicant,
	})
	if err != nil {
		writeError(r, h.log, w, err, "Could not aggregate quotes for this request.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"quotes": quotes})
}

func (h *QuoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	q, err := h.svc.Get(r.Context(), chi.URLParam(r, "quote_code"))
	if err != nil {
		writeError(r, h.log, w, err, "Quote not found.")
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (h *QuoteHandler) Accept(w http.ResponseWriter, r *http.Request) {
	q, err := h.svc.Accept(r.Context(), chi.URLParam(r, "quote_code"))
	if err != nil {
		writeError(r, h.log, w, err, "Quote could not be accepted.")
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (h *QuoteHandler) Decline(w http.ResponseWriter, r *http.Request) {
	q, err := h.svc.Decline(r.Context(), chi.URLParam(r, "quote_code"))
	if err != nil {
		writeError(r, h.log, w, err, "Quote could not be declined.")
		return
	}
	writeJSON(w, http.StatusOK, q)
}

// PurchaseID hands out the time-boxed payment token, reissuing it when the
// previous window has lapsed.
func (h *QuoteHandler) PurchaseID(w http.ResponseWriter, r *http.Request) {
	q, err := h.svc.RefreshPurchaseID(r.Context(), chi.URLParam(r, "quote_code"))
	if err != nil {
		writeError(r, h.log, w, err, "Purchase id could not be issued.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"quote_code":             q.QuoteCode,
		"purchase_id":            q.PurchaseID,
		"purchase_id_created_at": q.PurchaseIDCreatedAt,
	})
}
