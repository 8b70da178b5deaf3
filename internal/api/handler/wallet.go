package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/onejourney/onejourney/internal/api/middleware"
	"github.com/onejourney/onejourney/internal/api/models"
	"github.com/onejourney/onejourney/internal/api/response"
	"github.com/onejourney/onejourney/internal/routing"
	"github.com/onejourney/onejourney/internal/wallet"
)

// WalletHandler handles the wallet, trip history and weekly challenges.
type WalletHandler struct {
	wallet *wallet.Service
	logger zerolog.Logger
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(w *wallet.Service, logger zerolog.Logger) *WalletHandler {
	return &WalletHandler{wallet: w, logger: logger}
}

// Get handles GET /api/wallet - current balance and totals.
func (h *WalletHandler) Get(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, h.wallet.State())
}

// Use handles POST /api/wallet/use - pay for a chosen route.
func (h *WalletHandler) Use(w http.ResponseWriter, r *http.Request) {
	var input models.UseRouteRequest
	if err := response.Decode(w, r, &input); err != nil {
		response.BadRequest(w, r, "Invalid route data", nil)
		return
	}

	result, err := h.wallet.UseRoute(r.Context(), input.TripInput())
	switch {
	case err == nil:
		response.JSON(w, r, http.StatusOK, result)
	case errors.Is(err, wallet.ErrInvalidInput):
		response.BadRequest(w, r, "Invalid route data", []models.FieldError{
			{Field: "cost", Message: "must be a positive number", Code: "INVALID"},
		})
	case errors.Is(err, wallet.ErrInsufficientBalance):
		response.InsufficientBalance(w, r, "Insufficient balance")
	default:
		h.internalError(w, r, err, "Wallet transaction failed")
	}
}

// TopUp handles POST /api/wallet/topup - add money to the wallet.
func (h *WalletHandler) TopUp(w http.ResponseWriter, r *http.Request) {
	var input models.TopUpRequest
	if err := response.Decode(w, r, &input); err != nil {
		response.BadRequest(w, r, "Invalid amount", nil)
		return
	}

	updated, err := h.wallet.TopUp(r.Context(), routing.Round(input.Amount))
	switch {
	case err == nil:
		response.JSON(w, r, http.StatusOK, models.TopUpResponse{Success: true, Wallet: updated})
	case errors.Is(err, wallet.ErrInvalidAmount):
		response.BadRequest(w, r, "Invalid amount", []models.FieldError{
			{Field: "amount", Message: "must be greater than zero", Code: "INVALID"},
		})
	default:
		h.internalError(w, r, err, "Topup failed")
	}
}

// History handles GET /api/history - recent trips, newest first.
// An optional ?limit narrows the page; it never exceeds the default.
func (h *WalletHandler) History(w http.ResponseWriter, r *http.Request) {
	limit := wallet.DefaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			response.BadRequest(w, r, "limit must be an integer", []models.FieldError{
				{Field: "limit", Message: "must be an integer", Code: "INVALID"},
			})
			return
		}
		limit = n
	}

	response.JSON(w, r, http.StatusOK, models.HistoryResponse{
		Success: true,
		Trips:   h.wallet.History(limit),
	})
}

// Challenges handles GET /api/challenges - the current challenge week.
func (h *WalletHandler) Challenges(w http.ResponseWriter, r *http.Request) {
	set, carbon := h.wallet.Challenges(r.Context())
	response.JSON(w, r, http.StatusOK, models.ChallengesResponse{
		Success:          true,
		Challenges:       set,
		TotalCarbonSaved: carbon,
	})
}

func (h *WalletHandler) internalError(w http.ResponseWriter, r *http.Request, err error, detail string) {
	h.logger.Error().Err(err).
		Str("request_id", middleware.GetRequestID(r.Context())).
		Str("path", r.URL.Path).
		Msg("wallet request failed")
	response.InternalError(w, r, detail)
}
