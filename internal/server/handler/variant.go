package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/buenedata/lumidex-v2-sub002/internal/domain"
	"github.com/buenedata/lumidex-v2-sub002/internal/service"
)

// VariantHandler serves the variant display and preview endpoints.
type VariantHandler struct {
	svc    *service.VariantService
	logger *slog.Logger
}

// NewVariantHandler creates a VariantHandler.
func NewVariantHandler(svc *service.VariantService, logger *slog.Logger) *VariantHandler {
	return &VariantHandler{
		svc:    svc,
		logger: logHandler(logger, "variant"),
	}
}

// variantResponse is the JSON shape for both display and preview responses.
type variantResponse struct {
	CardID       string               `json:"card_id"`
	Display      []domain.VariantKind `json:"display"`
	Hidden       []domain.VariantKind `json:"hidden"`
	Custom       []customVariantView  `json:"custom"`
	Explanations []string             `json:"explanations"`
}

type customVariantView struct {
	ID            string                      `json:"id"`
	Name          string                      `json:"name"`
	Family        string                      `json:"family"`
	DisplayName   string                      `json:"display_name"`
	Description   string                      `json:"description,omitempty"`
	SourceProduct string                      `json:"source_product,omitempty"`
	Prices        map[domain.Currency]float64 `json:"prices,omitempty"`
	Replaces      *domain.VariantKind         `json:"replaces_standard_variant,omitempty"`
}

func toVariantResponse(dv domain.DisplayVariants) variantResponse {
	resp := variantResponse{
		CardID:       dv.CardID,
		Display:      dv.Display,
		Hidden:       dv.Hidden,
		Custom:       make([]customVariantView, 0, len(dv.Custom)),
		Explanations: dv.Explanations,
	}
	for _, cv := range dv.Custom {
		resp.Custom = append(resp.Custom, customVariantView{
			ID:            cv.ID.String(),
			Name:          cv.Name,
			Family:        cv.Family,
			DisplayName:   cv.DisplayName,
			Description:   cv.Description,
			SourceProduct: cv.SourceProduct,
			Prices:        cv.Prices,
			Replaces:      cv.ReplacesStandardVariant,
		})
	}
	return resp
}

// GetDisplayVariants handles GET /api/cards/{id}/variants.
func (h *VariantHandler) GetDisplayVariants(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.svc.GetDisplayVariants)
}

// PreviewVariants handles GET /api/cards/{id}/variants/preview. It runs the
// identical pipeline as the display endpoint.
func (h *VariantHandler) PreviewVariants(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.svc.PreviewVariants)
}

func (h *VariantHandler) respond(
	w http.ResponseWriter,
	r *http.Request,
	fn func(ctx context.Context, cardID string) (domain.DisplayVariants, error),
) {
	cardID := pathParam(r, "id")
	if cardID == "" {
		writeError(w, http.StatusBadRequest, "missing card id")
		return
	}

	dv, err := fn(r.Context(), cardID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "card not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "get display variants failed",
			slog.String("card_id", cardID),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, toVariantResponse(dv))
}
