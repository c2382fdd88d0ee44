package models

// Guest is one recipient of a batch. Order in the batch defines its sequence.
type Guest struct {
	Email      string `json:"email"`
	TicketType string `json:"ticketType,omitempty"`
	UniqueCode string `json:"uniqueCode,omitempty"`
	// QRImage is an optional caller-rendered QR as a data URI or raw base64 PNG.
	QRImage string `json:"qrImage,omitempty"`
}

type EventConfig struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Address       string `json:"address"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	WelcomeMsg    string `json:"welcomeMsg"`
	AssistanceMsg string `json:"assistanceMsg,omitempty"`
}

// DefaultEventID is used when an event config arrives without an id.
const DefaultEventID = "001"

func (e EventConfig) EventID() string {
	if e.ID == "" {
		return DefaultEventID
	}
	return e.ID
}

// IsZero reports whether no field was supplied at all.
func (e EventConfig) IsZero() bool {
	return e == EventConfig{}
}
