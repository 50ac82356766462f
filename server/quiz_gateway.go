package server

import (
	"encoding/json"
	"strconv"

	"github.com/rafgames/roletrando/logger"
	"github.com/rafgames/roletrando/network"
	"github.com/rafgames/roletrando/room"
	"github.com/rafgames/roletrando/session"
)

// joinQuizRoom resolves or creates a quiz room. Quiz rooms have no seat
// limit and no bots; the first joiner becomes host and starts the round.
func (s *GameServer) joinQuizRoom(sess *session.Session, roomID, name string) bool {
	r, _ := s.registry.GetOrCreate(roomID, func(r *room.Room) {
		r.QuizSession = room.NewQuizSession()
		r.HostConnectionID = sess.ID
	})

	r.Lock()
	if r.Status != room.StatusWaiting {
		r.Unlock()
		sess.Send(network.NewEnvelope(network.MsgTypeError, "Jogo já em andamento."))
		return false
	}

	r.AddPlayer(room.NewPlayer(name, sess.ID))
	sess.RoomID = roomID
	s.sessions.Add(sess)
	env := r.StateEnvelope()
	r.Unlock()

	s.broadcaster.BroadcastToRoom(roomID, env)
	return true
}

// handleQuizMessage applies one inbound quiz message. Scoring happens
// client-side per question; the server reconciles the deltas and steps
// the shared question pointer.
func (s *GameServer) handleQuizMessage(sess *session.Session, env *network.Envelope) {
	r, ok := s.registry.GetRoomByConnection(sess.ID)
	if !ok {
		return
	}

	r.Lock()
	sender := r.PlayerByConnection(sess.ID)
	quiz := r.QuizSession
	if sender == nil || quiz == nil {
		r.Unlock()
		return
	}

	var outs []*network.Envelope
	var results []room.GameResult

	switch env.Type {
	case network.MsgTypeStartGame:
		if sess.ID == r.HostConnectionID && r.Status == room.StatusWaiting {
			quiz.TotalQuestions = s.loader.QuizQuestionCount(s.loader.DefaultTheme())
			r.Start()
			outs = append(outs,
				network.NewEnvelope(network.MsgTypeGameStart, quiz.TotalQuestions),
				r.StateEnvelope())
		}

	case network.MsgTypeSubmitScore:
		if r.Status == room.StatusPlaying && quiz.Phase == "question" {
			if _, answered := quiz.RoundScores[sender.ID]; !answered {
				delta := payloadInt(env.Payload)
				sender.Score += delta
				quiz.RoundScores[sender.ID] = delta
				quiz.AnsweredCount++
				if quiz.AnsweredCount >= len(r.Players) {
					quiz.Phase = "reveal"
				}
				outs = append(outs, r.StateEnvelope())
			}
		}

	case network.MsgTypeNextQuestion:
		if sess.ID == r.HostConnectionID && r.Status == room.StatusPlaying {
			quiz.CurrentStep++
			quiz.RoundScores = make(map[string]int)
			quiz.AnsweredCount = 0
			quiz.Phase = "question"
			if quiz.CurrentStep >= quiz.TotalQuestions {
				results = r.Finish()
			}
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
		s.recordResults(GameQuiz, results)
	}
}

// payloadInt reads a numeric payload, tolerating both JSON numbers and
// numeric strings.
func payloadInt(payload any) int {
	switch v := payload.(type) {
	case float64:
		return int(v)
	case int:
		return v
	case json.Number:
		n, _ := v.Int64()
		return int(n)
	case string:
		n, _ := strconv.Atoi(v)
		return n
	default:
		return 0
	}
}
