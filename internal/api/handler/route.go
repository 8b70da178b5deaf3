// Package handler provides HTTP handlers for the OneJourney API.
package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/onejourney/onejourney/internal/api/models"
	"github.com/onejourney/onejourney/internal/api/response"
	"github.com/onejourney/onejourney/internal/routing"
)

// RouteHandler handles trip optimization.
type RouteHandler struct {
	routes *routing.Service
	logger zerolog.Logger
}

// NewRouteHandler creates a new RouteHandler.
func NewRouteHandler(routes *routing.Service, logger zerolog.Logger) *RouteHandler {
	return &RouteHandler{routes: routes, logger: logger}
}

// Optimize handles POST /api/optimize - rank trip options between two places.
func (h *RouteHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	var input models.OptimizeRequest
	if err := response.Decode(w, r, &input); err != nil && !errors.Is(err, response.ErrEmptyBody) {
		h.logger.Debug().Err(err).Msg("rejected optimize request body")
		response.BadRequest(w, r, "Invalid request body", nil)
		return
	}

	input.Source = strings.TrimSpace(input.Source)
	input.Destination = strings.TrimSpace(input.Destination)

	var fieldErrors []models.FieldError
	if input.Source == "" {
		fieldErrors = append(fieldErrors, models.FieldError{Field: "source", Message: "required", Code: "REQUIRED"})
	}
	if input.Destination == "" {
		fieldErrors = append(fieldErrors, models.FieldError{Field: "destination", Message: "required", Code: "REQUIRED"})
	}
	if len(fieldErrors) > 0 {
		response.BadRequest(w, r, "Source and destination are required", fieldErrors)
		return
	}

	res := h.routes.Fetch(r.Context(), input.Source, input.Destination)
	ranked := routing.Score(res.Candidates, input.Constraints)

	h.logger.Debug().
		Str("provider", res.Provider).
		Bool("real_data", res.UsingRealData).
		Int("candidates", len(res.Candidates)).
		Int("ranked", len(ranked)).
		Msg("routes optimized")

	response.JSON(w, r, http.StatusOK, models.OptimizeResponse{
		Success:       true,
		Routes:        ranked,
		Source:        input.Source,
		Destination:   input.Destination,
		UsingRealData: res.UsingRealData,
	})
}
