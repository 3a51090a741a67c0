package handler

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/buenedata/lumidex-v2-sub002/internal/domain"
)

func TestCurrencyParam(t *testing.T) {
	tests := []struct {
		name   string
		url    string
		want   domain.Currency
		wantOK bool
	}{
		{"absent falls back to default", "/api/cards/c1/price", domain.CurrencyEUR, true},
		{"valid code", "/api/cards/c1/price?currency=NOK", domain.CurrencyNOK, true},
		{"unknown code rejected", "/api/cards/c1/price?currency=XXX", domain.Currency("XXX"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", tt.url, nil)
			got, ok := currencyParam(r, domain.CurrencyEUR)
			assert.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestSourceParam(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/cards/c1/price?source=tcgplayer", nil)
	got, ok := sourceParam(r, domain.SourceCardmarket)
	assert.True(t, ok)
	assert.Equal(t, domain.SourceTCGPlayer, got)

	r = httptest.NewRequest("GET", "/api/cards/c1/price?source=ebay", nil)
	_, ok = sourceParam(r, domain.SourceCardmarket)
	assert.False(t, ok)
}

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()
	writeError(w, 404, "card not found")

	assert.Equal(t, 404, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"card not found"}`, w.Body.String())
}
