package server

import (
	"math/rand"

	"github.com/rafgames/roletrando/logger"
	"github.com/rafgames/roletrando/network"
	"github.com/rafgames/roletrando/room"
	"github.com/rafgames/roletrando/session"
)

// joinGameRoom resolves or creates the phrase-game room for a joining
// connection. The first joiner creates the room, its game session, and
// becomes host.
func (s *GameServer) joinGameRoom(sess *session.Session, roomID, name, theme string) bool {
	var initErr error
	r, created := s.registry.GetOrCreate(roomID, func(r *room.Room) {
		gs, err := s.engine.StartNewGame(theme)
		if err != nil {
			initErr = err
			return
		}
		r.GameSession = gs
		r.Seats = s.seats
		r.HostConnectionID = sess.ID
		s.mon.IncGamesCreated()
	})
	if created && initErr != nil {
		logger.Log.Errorf("Failed to create game for room %s: %v", roomID, initErr)
		s.registry.RemoveRoom(roomID)
		sess.Send(network.NewEnvelope(network.MsgTypeError, "Nenhuma frase encontrada para o tema."))
		return false
	}

	r.Lock()
	if r.Status != room.StatusWaiting {
		r.Unlock()
		sess.Send(network.NewEnvelope(network.MsgTypeError, "Jogo já em andamento."))
		return false
	}
	if r.IsFull() {
		r.Unlock()
		sess.Send(network.NewEnvelope(network.MsgTypeError, "Sala cheia."))
		return false
	}

	r.AddPlayer(room.NewPlayer(name, sess.ID))
	sess.RoomID = roomID
	s.sessions.Add(sess)

	// The room auto-starts the moment every seat is taken by a human.
	started := false
	if r.IsFull() {
		r.Start()
		started = true
	}
	env := r.StateEnvelope()
	r.Unlock()

	s.broadcaster.BroadcastToRoom(roomID, env)
	if started {
		s.bots.Poke(roomID)
	}
	return true
}

// handleGameMessage applies one inbound phrase-game message. Messages
// from the seat that does not hold the turn are silently discarded.
func (s *GameServer) handleGameMessage(sess *session.Session, env *network.Envelope) {
	r, ok := s.registry.GetRoomByConnection(sess.ID)
	if !ok {
		return
	}

	r.Lock()
	sender := r.PlayerByConnection(sess.ID)
	if sender == nil {
		r.Unlock()
		return
	}

	isTurn := r.Status == room.StatusPlaying && r.IsTurn(sess.ID) &&
		r.GameSession != nil && !r.GameSession.GameOver

	var outs []*network.Envelope
	var results []room.GameResult

	switch env.Type {
	case network.MsgTypeStartGame:
		if sess.ID == r.HostConnectionID && r.Status == room.StatusWaiting {
			r.Start()
			outs = append(outs, r.StateEnvelope())
		}

	case network.MsgTypeSpinStart:
		if isTurn {
			value := r.DrawSpin(rand.Intn)
			// Every client's wheel animation must land on the same
			// server-drawn value, the spinner's included.
			outs = append(outs, network.NewEnvelope(network.MsgTypeSpinStart, value))
		}

	case network.MsgTypeSpinEnd:
		if isTurn {
			r.ApplySpinResult(sender)
			outs = append(outs, r.StateEnvelope())
		}

	case network.MsgTypeGuess:
		if isTurn {
			payload := env.PayloadString()
			if payload != "" {
				letter := []rune(payload)[0]
				r.ApplyGuess(s.engine, sender, letter)
				results = s.finishIfOver(r)
				outs = append(outs, r.StateEnvelope())
			}
		}

	case network.MsgTypeSolve:
		if isTurn {
			r.ApplySolve(s.engine, sender, env.PayloadString())
			results = s.finishIfOver(r)
			outs = append(outs, r.StateEnvelope())
		}

	default:
		logger.Log.Infof("Unknown message type %q on connection %s", env.Type, sess.ID)
	}
	roomID := r.ID
	r.Unlock()

	for _, out := range outs {
		s.broadcaster.BroadcastToRoom(roomID, out)
	}
	if len(results) > 0 {
		s.recordResults(GameRoletrando, results)
	}
	s.bots.Poke(roomID)
}

// finishIfOver drives the FINISHED transition from the session's gameOver
// edge. Caller holds the room lock.
func (s *GameServer) finishIfOver(r *room.Room) []room.GameResult {
	if r.GameSession == nil || !r.GameSession.GameOver {
		return nil
	}
	return r.Finish()
}
