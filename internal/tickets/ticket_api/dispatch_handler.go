package ticket_api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"ticket-mailer/internal/dispatch"
	"ticket-mailer/internal/models"
	"ticket-mailer/internal/utils"
)

type SendEmailsRequest struct {
	Guests      []models.Guest      `json:"guests"`
	EventConfig *models.EventConfig `json:"eventConfig"`
}

type SendEmailsResponse struct {
	Message string             `json:"message"`
	Stats   models.BatchResult `json:"stats"`
}

type PreviewEmailRequest struct {
	Guest       models.Guest        `json:"guest"`
	EventConfig *models.EventConfig `json:"eventConfig"`
}

type AssignCodesRequest struct {
	Guests  []models.Guest `json:"guests"`
	EventID string         `json:"eventId"`
}

type AssignCodesResponse struct {
	Guests []models.Guest `json:"guests"`
	Offset int64          `json:"offset"`
}

// SendEmails runs a whole batch before answering. The batch keeps going if
// the client disconnects, and the server write timeout does not apply.
func (h *Handler) SendEmails(w http.ResponseWriter, r *http.Request) {
	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		h.Logger.Warn("API", fmt.Sprintf("Failed to clear write deadline: %v", err))
	}

	var req SendEmailsRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request", err)
		return
	}

	ctx := context.WithoutCancel(r.Context())
	event, err := h.eventConfigFor(ctx, req.EventConfig)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("Failed to load event config: %v", err))
		utils.WriteError(w, http.StatusInternalServerError, "Failed to load event config", err)
		return
	}

	h.Logger.Info("API", fmt.Sprintf("Starting dispatch to %d guests for %q", len(req.Guests), event.Name))
	result := h.Dispatcher.SendBatch(ctx, req.Guests, event)

	utils.WriteJSON(w, http.StatusOK, SendEmailsResponse{
		Message: "Proceso finalizado",
		Stats:   result,
	})
}

// PreviewEmail answers with the rendered ticket as HTML, or a plain-text 500
// carrying the render error.
func (h *Handler) PreviewEmail(w http.ResponseWriter, r *http.Request) {
	var req PreviewEmailRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		http.Error(w, "Error: "+err.Error(), http.StatusBadRequest)
		return
	}

	event, err := h.eventConfigFor(r.Context(), req.EventConfig)
	if err != nil {
		http.Error(w, "Error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	html, err := h.Dispatcher.Preview(req.Guest, event)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("Preview failed: %v", err))
		http.Error(w, "Error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(html))
}

// AssignCodes fills in codes for guests without one, continuing after the
// saved sequence. The counter itself is left untouched.
func (h *Handler) AssignCodes(w http.ResponseWriter, r *http.Request) {
	var req AssignCodesRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request", err)
		return
	}

	eventID := req.EventID
	if eventID == "" {
		event, err := h.eventConfigFor(r.Context(), nil)
		if err != nil {
			utils.WriteError(w, http.StatusInternalServerError, "Failed to load event config", err)
			return
		}
		eventID = event.EventID()
	}

	var offset int64
	if h.Settings != nil {
		last, err := h.Settings.LastSequence(r.Context())
		if err != nil {
			utils.WriteError(w, http.StatusInternalServerError, "Failed to read sequence", err)
			return
		}
		offset = last
	}

	guests := dispatch.AssignCodes(req.Guests, eventID, offset)
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Codes assigned", AssignCodesResponse{
		Guests: guests,
		Offset: offset,
	}))
}
