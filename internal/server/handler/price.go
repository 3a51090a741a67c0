package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"sort"

	"github.com/buenedata/lumidex-v2-sub002/internal/domain"
	"github.com/buenedata/lumidex-v2-sub002/internal/service"
)

// PriceHandler serves normalized price lookups for single cards and whole
// sets.
type PriceHandler struct {
	svc             *service.PriceService
	defaultCurrency domain.Currency
	preferredSource domain.PriceSource
	logger          *slog.Logger
}

// NewPriceHandler creates a PriceHandler with server-wide defaults applied
// when the caller omits currency or source.
func NewPriceHandler(svc *service.PriceService, defaultCurrency domain.Currency, preferredSource domain.PriceSource, logger *slog.Logger) *PriceHandler {
	return &PriceHandler{
		svc:             svc,
		defaultCurrency: defaultCurrency,
		preferredSource: preferredSource,
		logger:          logHandler(logger, "price"),
	}
}

// GetCardPrice handles GET /api/cards/{id}/price.
func (h *PriceHandler) GetCardPrice(w http.ResponseWriter, r *http.Request) {
	cardID := pathParam(r, "id")
	if cardID == "" {
		writeError(w, http.StatusBadRequest, "missing card id")
		return
	}
	currency, ok := currencyParam(r, h.defaultCurrency)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown currency")
		return
	}
	source, ok := sourceParam(r, h.preferredSource)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown price source")
		return
	}

	price, err := h.svc.GetNormalizedPrice(r.Context(), cardID, currency, source)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "card not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "get card price failed",
			slog.String("card_id", cardID),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, price)
}

// setPricesResponse wraps per-card normalized prices in a stable order.
type setPricesResponse struct {
	SetID string          `json:"set_id"`
	Cards []setPriceEntry `json:"cards"`
}

type setPriceEntry struct {
	CardID string                 `json:"card_id"`
	Price  domain.NormalizedPrice `json:"price"`
}

// GetSetPrices handles GET /api/sets/{id}/prices.
func (h *PriceHandler) GetSetPrices(w http.ResponseWriter, r *http.Request) {
	setID := pathParam(r, "id")
	if setID == "" {
		writeError(w, http.StatusBadRequest, "missing set id")
		return
	}
	currency, ok := currencyParam(r, h.defaultCurrency)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown currency")
		return
	}
	source, ok := sourceParam(r, h.preferredSource)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown price source")
		return
	}

	prices, err := h.svc.GetSetPrices(r.Context(), setID, currency, source)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "get set prices failed",
			slog.String("set_id", setID),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := setPricesResponse{SetID: setID, Cards: make([]setPriceEntry, 0, len(prices))}
	for cardID, price := range prices {
		resp.Cards = append(resp.Cards, setPriceEntry{CardID: cardID, Price: price})
	}
	sort.Slice(resp.Cards, func(i, j int) bool {
		return resp.Cards[i].CardID < resp.Cards[j].CardID
	})

	writeJSON(w, http.StatusOK, resp)
}
