package models

import "time"

type BatchResult struct {
	BatchID      string `json:"batchId"`
	SuccessCount int    `json:"success"`
	ErrorCount   int    `json:"errors"`
	Processed    int    `json:"processed"`
	Total        int    `json:"total"`
	Aborted      bool   `json:"aborted"`
	AbortReason  string `json:"abortReason,omitempty"`
}

type DispatchStatus string

const (
	DispatchSent    DispatchStatus = "sent"
	DispatchFailed  DispatchStatus = "failed"
	DispatchBlocked DispatchStatus = "blocked"
)

// DispatchProgress is emitted once per guest while a batch runs.
type DispatchProgress struct {
	BatchID    string         `json:"batchId"`
	EventID    string         `json:"eventId"`
	Position   int            `json:"position"`
	Total      int            `json:"total"`
	Email      string         `json:"email"`
	TicketType string         `json:"ticketType"`
	UniqueCode string         `json:"uniqueCode"`
	Status     DispatchStatus `json:"status"`
	Error      string         `json:"error,omitempty"`
	At         time.Time      `json:"at"`
}

// BatchCompletedEvent is published once a batch terminates.
type BatchCompletedEvent struct {
	BatchID      string    `json:"batchId"`
	EventID      string    `json:"eventId"`
	EventName    string    `json:"eventName"`
	SuccessCount int       `json:"success"`
	ErrorCount   int       `json:"errors"`
	Total        int       `json:"total"`
	Aborted      bool      `json:"aborted"`
	StartedAt    time.Time `json:"startedAt"`
	FinishedAt   time.Time `json:"finishedAt"`
}
