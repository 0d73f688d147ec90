package chat

import "time"

// Session captures a transient conversation bound to one websocket connection.
type Session struct {
	ID        string    `json:"id"`
	PersonaID string    `json:"personaId"`
	CreatedAt time.Time `json:"createdAt"`
}
