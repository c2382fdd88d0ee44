package dispatch

import (
	"testing"

	"ticket-mailer/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestAssignCodes(t *testing.T) {
	in := []models.Guest{
		{Email: "a@example.com", TicketType: "VIP"},
		{Email: "b@example.com", TicketType: "Regular", UniqueCode: "KEEP-1"},
		{Email: "c@example.com", TicketType: "plus"},
	}

	out := AssignCodes(in, "EVT", 40)

	assert.Equal(t, "EVT-003-00041", out[0].UniqueCode)
	assert.Equal(t, "KEEP-1", out[1].UniqueCode)
	assert.Equal(t, "EVT-002-00043", out[2].UniqueCode)

	assert.Empty(t, in[0].UniqueCode, "input must not be modified")
}

func TestAssignCodesDefaultEvent(t *testing.T) {
	out := AssignCodes([]models.Guest{{Email: "a@example.com"}}, "", 0)
	assert.Equal(t, "001-000-00001", out[0].UniqueCode)
}
