package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/bselens/bselens/internal/exchange"
	"github.com/bselens/bselens/internal/lookup"
	"github.com/bselens/bselens/internal/throttle"
)

type stubExchange struct {
	entries []lookup.Entry
	err     error
	th      *throttle.Throttle
}

func (s *stubExchange) LookupEntries(ctx context.Context, text string) ([]lookup.Entry, error) {
	return s.entries, s.err
}

func (s *stubExchange) ScripName(ctx context.Context, code string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	entry, ok := lookup.FindByCode(s.entries, code)
	if !ok {
		return "", fmt.Errorf("could not find scrip name for %s: %w", code, exchange.ErrScripNotFound)
	}
	return entry.Symbol, nil
}

func (s *stubExchange) ScripCode(ctx context.Context, symbol string) (string, error) {
	entry, ok := lookup.FindBySymbol(s.entries, symbol)
	if !ok {
		return "", exchange.ErrScripNotFound
	}
	return entry.BSECode, nil
}

func (s *stubExchange) Quote(ctx context.Context, code string) (*exchange.Quote, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &exchange.Quote{PrevClose: 10, Open: 11, High: 12, Low: 9, LTP: 11.5}, nil
}

func (s *stubExchange) Throttle() *throttle.Throttle {
	return s.th
}

func newExchangeRouter(api ExchangeAPI) http.Handler {
	h := &Exchange{API: api}
	r := chi.NewRouter()
	r.Get("/v1/lookup", h.Lookup)
	r.Get("/v1/scrips/{code}/name", h.ScripName)
	r.Get("/v1/symbols/{symbol}/code", h.ScripCode)
	r.Get("/v1/quotes/{code}", h.Quote)
	r.Get("/v1/throttle", h.Throttle)
	return r
}

var hdfcEntries = []lookup.Entry{{
	CompanyName: "HDFC Bank Ltd",
	Symbol:      "HDFCBANK",
	ISIN:        "INE040A01034",
	BSECode:     "500180",
}}

func serve(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestLookupHandler(t *testing.T) {
	router := newExchangeRouter(&stubExchange{entries: hdfcEntries})

	rec := serve(t, router, "/v1/lookup?q=hdfc")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp LookupResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Equal(t, "hdfc", resp.Query)
	require.Equal(t, hdfcEntries, resp.Entries)

	rec = serve(t, router, "/v1/lookup")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScripHandlers(t *testing.T) {
	router := newExchangeRouter(&stubExchange{entries: hdfcEntries})

	rec := serve(t, router, "/v1/scrips/500180/name")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp ScripResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Equal(t, ScripResponse{ScripCode: "500180", Symbol: "HDFCBANK"}, resp)

	rec = serve(t, router, "/v1/symbols/hdfcbank/code")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Equal(t, "500180", resp.ScripCode)

	rec = serve(t, router, "/v1/scrips/999999/name")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestQuoteHandlerMapsTimeout(t *testing.T) {
	router := newExchangeRouter(&stubExchange{err: fmt.Errorf("getScripHeaderData: %w", exchange.ErrTimeout)})

	rec := serve(t, router, "/v1/quotes/500180")
	require.Equal(t, http.StatusGatewayTimeout, rec.Code)
}

func TestQuoteHandler(t *testing.T) {
	router := newExchangeRouter(&stubExchange{})

	rec := serve(t, router, "/v1/quotes/500180")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Equal(t, "500180", resp["scrip_code"])
	require.Equal(t, 11.5, resp["ltp"])
}

func TestThrottleHandler(t *testing.T) {
	router := newExchangeRouter(&stubExchange{th: throttle.New(throttle.DefaultConfig())})

	rec := serve(t, router, "/v1/throttle")
	require.Equal(t, http.StatusOK, rec.Code)

	var states []throttle.BucketState
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&states))
	require.Len(t, states, 2)
}
