package room

import "github.com/rafgames/roletrando/network"

// Broadcaster fans an envelope out to every connection bound to a room.
// Defined here to break the import cycle between room and broadcast.
type Broadcaster interface {
	BroadcastToRoom(roomID string, env *network.Envelope) error
}
