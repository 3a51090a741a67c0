package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/buenedata/lumidex-v2-sub002/internal/domain"
)

// writeJSON marshals v as JSON and writes it to the response with the given
// HTTP status code. If marshaling fails, it falls back to a plain-text 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(data)
}

// writeError sends a JSON-formatted error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// pathParam extracts a named path parameter from the request using Go 1.22+
// built-in routing (http.Request.PathValue).
func pathParam(r *http.Request, name string) string {
	return r.PathValue(name)
}

// currencyParam reads and validates the "currency" query parameter, falling
// back to def when absent. Unrecognised codes are rejected here so they
// never reach the engine.
func currencyParam(r *http.Request, def domain.Currency) (domain.Currency, bool) {
	v := r.URL.Query().Get("currency")
	if v == "" {
		return def, true
	}
	c := domain.Currency(v)
	return c, domain.ValidCurrency(c)
}

// sourceParam reads and validates the "source" query parameter, falling back
// to def when absent.
func sourceParam(r *http.Request, def domain.PriceSource) (domain.PriceSource, bool) {
	v := r.URL.Query().Get("source")
	if v == "" {
		return def, true
	}
	s := domain.PriceSource(v)
	return s, domain.ValidPriceSource(s)
}

// logHandler is a convenience to attach slog fields in handler code.
func logHandler(logger *slog.Logger, handler string) *slog.Logger {
	return logger.With(slog.String("handler", handler))
}
