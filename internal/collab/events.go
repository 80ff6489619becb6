package collab

import (
	"encoding/json"
	"fmt"
)

// Event names on the socket channel. Client→server events carry edit
// intents; server→client events mirror the applied result.
const (
	EventInitialState = "initial-state"
	EventFullSync     = "full-sync"
	EventUsersCount   = "users-count"
	EventError        = "error"

	EventAnimeAdd     = "anime-add"
	EventAnimeAdded   = "anime-added"
	EventAnimeMove    = "anime-move"
	EventAnimeMoved   = "anime-moved"
	EventTiersUpdate  = "tiers-update"
	EventTiersUpdated = "tiers-updated"
	EventBulkImport   = "bulk-import"
	EventBulkImported = "bulk-imported"
	EventAnimeDelete  = "anime-delete"
	EventAnimeDeleted = "anime-deleted"
	EventAnimeUpdate  = "anime-update"
	EventAnimeUpdated = "anime-updated"
	EventRequestSync  = "request-sync"
)

// Envelope is the JSON frame exchanged on the socket.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// NewEnvelope marshals v into an envelope of the given type.
func NewEnvelope(typ string, v any) (Envelope, error) {
	if v == nil {
		return Envelope{Type: typ}, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s payload: %w", typ, err)
	}
	return Envelope{Type: typ, Data: b}, nil
}

// ErrorPayload is sent to the originator of a failed event.
type ErrorPayload struct {
	Message string `json:"message"`
}
