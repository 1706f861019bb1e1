// Package realtime defines the broadcast collaborator consumed after
// successful mutations. The transport itself (WebSocket fan-out) lives
// outside this service; handlers only hand events to a Broadcaster.
package realtime

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Event is one broadcast payload addressed to a room.
type Event struct {
	// Room is the canonical room name the event is delivered to.
	Room string
	// Kind names the event for clients (e.g. "message.created").
	Kind string
	// Payload is the JSON-serializable event body.
	Payload any
}

// Broadcaster delivers events to every connected client of a room.
type Broadcaster interface {
	Broadcast(event Event)
}

// GroupRoom is the canonical room name for group-wide events.
func GroupRoom(groupID uuid.UUID) string {
	return fmt.Sprintf("group:%s", groupID)
}

// ChannelRoom is the canonical room name for one text channel.
func ChannelRoom(groupID, channelID uuid.UUID) string {
	return fmt.Sprintf("group:%s:channel:%s", groupID, channelID)
}

// Noop is a Broadcaster that drops every event. Used when no realtime
// transport is attached (tests, single-process dev runs).
type Noop struct{}

// Broadcast logs the dropped event at trace level.
func (Noop) Broadcast(event Event) {
	log.Trace().Str("room", event.Room).Str("kind", event.Kind).Msg("realtime broadcast dropped")
}
