package sse

import (
	"context"
	"sync"

	"ticket-mailer/internal/models"
)

// DispatchEventEmitter fans per-guest dispatch progress out to the SSE
// clients watching an event.
type DispatchEventEmitter struct {
	clients     map[string][]chan models.DispatchProgress
	clientMutex sync.RWMutex
}

func NewDispatchEventEmitter() *DispatchEventEmitter {
	return &DispatchEventEmitter{
		clients: make(map[string][]chan models.DispatchProgress),
	}
}

// Subscribe registers a client for eventID. The returned channel is closed
// once ctx is done.
func (e *DispatchEventEmitter) Subscribe(ctx context.Context, eventID string) <-chan models.DispatchProgress {
	clientChan := make(chan models.DispatchProgress, 32)

	e.clientMutex.Lock()
	e.clients[eventID] = append(e.clients[eventID], clientChan)
	e.clientMutex.Unlock()

	go func() {
		<-ctx.Done()
		e.removeClient(eventID, clientChan)
	}()

	return clientChan
}

// EmitProgress never blocks; a client with a full buffer misses the update.
func (e *DispatchEventEmitter) EmitProgress(progress models.DispatchProgress) {
	e.clientMutex.RLock()
	defer e.clientMutex.RUnlock()

	for _, clientChan := range e.clients[progress.EventID] {
		select {
		case clientChan <- progress:
		default:
		}
	}
}

func (e *DispatchEventEmitter) removeClient(eventID string, clientChan chan models.DispatchProgress) {
	e.clientMutex.Lock()
	defer e.clientMutex.Unlock()

	clients := e.clients[eventID]
	for i, ch := range clients {
		if ch == clientChan {
			e.clients[eventID] = append(clients[:i], clients[i+1:]...)
			close(clientChan)
			break
		}
	}

	if len(e.clients[eventID]) == 0 {
		delete(e.clients, eventID)
	}
}

func (e *DispatchEventEmitter) ClientCount(eventID string) int {
	e.clientMutex.RLock()
	defer e.clientMutex.RUnlock()
	return len(e.clients[eventID])
}
