package broadcast

import (
	"errors"

	"github.com/rafgames/roletrando/logger"
	"github.com/rafgames/roletrando/network"
	"github.com/rafgames/roletrando/room"
	"github.com/rafgames/roletrando/session"
)

var ErrRoomNotFound = errors.New("room not found")

// RoomBroadcaster delivers envelopes to every connection bound to a room's
// players. Delivery is fire-and-forget: a failed send is logged and never
// blocks the other recipients.
type RoomBroadcaster struct {
	registry       *room.Registry
	sessionManager *session.Manager
}

func NewRoomBroadcaster(registry *room.Registry, sessionManager *session.Manager) *RoomBroadcaster {
	return &RoomBroadcaster{
		registry:       registry,
		sessionManager: sessionManager,
	}
}

func (b *RoomBroadcaster) BroadcastToRoom(roomID string, env *network.Envelope) error {
	r, exists := b.registry.GetRoom(roomID)
	if !exists {
		return ErrRoomNotFound
	}

	for _, connID := range r.ConnectionIDs() {
		sess, ok := b.sessionManager.Get(connID)
		if !ok {
			continue
		}
		if err := sess.Send(env); err != nil {
			logger.Log.Warnf("Broadcast to connection %s in room %s failed: %v", connID, roomID, err)
		}
	}
	return nil
}

// BroadcastToRoomExcept sends to every room member except one connection,
// used when the actor already applied the effect locally.
func (b *RoomBroadcaster) BroadcastToRoomExcept(roomID, excludeConnID string, env *network.Envelope) error {
	r, exists := b.registry.GetRoom(roomID)
	if !exists {
		return ErrRoomNotFound
	}

	for _, connID := range r.ConnectionIDs() {
		if connID == excludeConnID {
			continue
		}
		sess, ok := b.sessionManager.Get(connID)
		if !ok {
			continue
		}
		if err := sess.Send(env); err != nil {
			logger.Log.Warnf("Broadcast to connection %s in room %s failed: %v", connID, roomID, err)
		}
	}
	return nil
}
