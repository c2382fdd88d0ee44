package ticket_api

import (
	"errors"
	"net/http"

	"ticket-mailer/internal/models"
	"ticket-mailer/internal/settings"
	"ticket-mailer/internal/utils"
)

type SequenceResponse struct {
	LastSequence int64 `json:"lastSequence"`
}

type IncrementSequenceRequest struct {
	Quantity int64 `json:"quantity"`
}

func (h *Handler) GetEventConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.Settings.EventConfig(r.Context())
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to load event config", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Event config", cfg))
}

func (h *Handler) SaveEventConfig(w http.ResponseWriter, r *http.Request) {
	var cfg models.EventConfig
	if err := h.decodeJSON(w, r, &cfg); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request", err)
		return
	}

	saved, err := h.Settings.SaveEventConfig(r.Context(), cfg)
	if errors.Is(err, settings.ErrEventNameRequired) {
		utils.WriteError(w, http.StatusBadRequest, "Invalid event config", err)
		return
	}
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to save event config", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Event config saved", saved))
}

func (h *Handler) GetSequence(w http.ResponseWriter, r *http.Request) {
	last, err := h.Settings.LastSequence(r.Context())
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to read sequence", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Sequence", SequenceResponse{LastSequence: last}))
}

func (h *Handler) IncrementSequence(w http.ResponseWriter, r *http.Request) {
	var req IncrementSequenceRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request", err)
		return
	}

	last, err := h.Settings.IncrementSequence(r.Context(), req.Quantity)
	if errors.Is(err, settings.ErrInvalidQuantity) {
		utils.WriteError(w, http.StatusBadRequest, "Invalid quantity", err)
		return
	}
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to increment sequence", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Sequence incremented", SequenceResponse{LastSequence: last}))
}

func (h *Handler) ResetSequence(w http.ResponseWriter, r *http.Request) {
	if err := h.Settings.ResetSequence(r.Context()); err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to reset sequence", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Sequence reset", SequenceResponse{LastSequence: 0}))
}
