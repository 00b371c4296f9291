package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/bselens/bselens/internal/errors"
	"github.com/bselens/bselens/internal/exchange"
	"github.com/bselens/bselens/internal/lookup"
	"github.com/bselens/bselens/internal/throttle"
)

// ExchangeAPI is the subset of the exchange client served over HTTP.
type ExchangeAPI interface {
	LookupEntries(ctx context.Context, text string) ([]lookup.Entry, error)
	ScripName(ctx context.Context, scripCode string) (string, error)
	ScripCode(ctx context.Context, symbol string) (string, error)
	Quote(ctx context.Context, scripCode string) (*exchange.Quote, error)
	Throttle() *throttle.Throttle
}

// Exchange serves lookups and quotes through an ExchangeAPI.
type Exchange struct {
	API ExchangeAPI
}

// LookupResponse lists entries matching a search.
type LookupResponse struct {
	Query   string         `json:"query"`
	Entries []lookup.Entry `json:"entries"`
}

// ScripResponse pairs a scrip code with its trading symbol.
type ScripResponse struct {
	ScripCode string `json:"scrip_code"`
	Symbol    string `json:"symbol"`
}

// QuoteResponse wraps a quote with its scrip code.
type QuoteResponse struct {
	ScripCode string `json:"scrip_code"`
	*exchange.Quote
}

// Lookup handles GET /v1/lookup?q=.
func (h *Exchange) Lookup(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		respondWithError(w, r, apperrors.NewInvalidInputError("query parameter q is required"))
		return
	}

	entries, err := h.API.LookupEntries(r.Context(), query)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	if entries == nil {
		entries = []lookup.Entry{}
	}
	writeJSON(w, http.StatusOK, LookupResponse{Query: query, Entries: entries})
}

// ScripName handles GET /v1/scrips/{code}/name.
func (h *Exchange) ScripName(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	symbol, err := h.API.ScripName(r.Context(), code)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ScripResponse{ScripCode: code, Symbol: symbol})
}

// ScripCode handles GET /v1/symbols/{symbol}/code.
func (h *Exchange) ScripCode(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(chi.URLParam(r, "symbol"))
	code, err := h.API.ScripCode(r.Context(), symbol)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ScripResponse{ScripCode: code, Symbol: symbol})
}

// Quote handles GET /v1/quotes/{code}.
func (h *Exchange) Quote(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	quote, err := h.API.Quote(r.Context(), code)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, QuoteResponse{ScripCode: code, Quote: quote})
}

// Throttle handles GET /v1/throttle.
func (h *Exchange) Throttle(w http.ResponseWriter, r *http.Request) {
	states := h.API.Throttle().Snapshot()
	if states == nil {
		states = []throttle.BucketState{}
	}
	writeJSON(w, http.StatusOK, states)
}
