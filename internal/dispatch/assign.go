package dispatch

import (
	"ticket-mailer/internal/models"
	"ticket-mailer/internal/tickets/code"
)

// AssignCodes returns a copy of guests in which every guest without a code
// gets one, numbered offset+position. Existing codes are kept.
func AssignCodes(guests []models.Guest, eventID string, offset int64) []models.Guest {
	if eventID == "" {
		eventID = models.DefaultEventID
	}
	out := make([]models.Guest, len(guests))
	for i, guest := range guests {
		if guest.UniqueCode == "" {
			guest.UniqueCode = code.Generate(eventID, guest.TicketType, int(offset)+i+1)
		}
		out[i] = guest
	}
	return out
}
