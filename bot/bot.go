// Package bot drives simulated players through the same mutation path a
// human message takes: spin, wait for the wheel animation, then guess.
package bot

import (
	"math/rand"
	"time"

	"github.com/rafgames/roletrando/engine"
	"github.com/rafgames/roletrando/logger"
	"github.com/rafgames/roletrando/network"
	"github.com/rafgames/roletrando/room"
	"github.com/rafgames/roletrando/timer"
)

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Delays are the fixed pauses between bot steps: thinking before acting,
// the wheel animation, and the moment before picking a letter.
type Delays struct {
	Think     time.Duration
	Animation time.Duration
	PreGuess  time.Duration
}

func DefaultDelays() Delays {
	return Delays{
		Think:     1500 * time.Millisecond,
		Animation: 4 * time.Second,
		PreGuess:  1200 * time.Millisecond,
	}
}

// Scheduler plays bot turns on timer callbacks. Every scheduled step
// re-validates the room before acting, so a step that fires after the
// turn moved on is a harmless no-op.
type Scheduler struct {
	registry    *room.Registry
	engine      *engine.Engine
	broadcaster room.Broadcaster
	timers      *timer.Manager
	delays      Delays

	// onFinish receives the results of a game a bot action finished.
	onFinish func(results []room.GameResult)
}

func NewScheduler(registry *room.Registry, eng *engine.Engine, broadcaster room.Broadcaster,
	delays Delays, onFinish func([]room.GameResult)) *Scheduler {
	return &Scheduler{
		registry:    registry,
		engine:      eng,
		broadcaster: broadcaster,
		timers:      timer.NewManager(),
		delays:      delays,
		onFinish:    onFinish,
	}
}

func (s *Scheduler) Stop() {
	s.timers.Stop()
}

// Poke inspects the room and, when the acting seat belongs to a bot,
// schedules that bot's turn after the think delay. Call it after any
// mutation that may have moved the turn.
func (s *Scheduler) Poke(roomID string) {
	r, ok := s.registry.GetRoom(roomID)
	if !ok {
		return
	}

	r.Lock()
	bot := actingBot(r)
	r.Unlock()
	if bot == nil {
		return
	}

	botID := bot.ID
	logger.Log.Debugf("Room %s: scheduling bot %s", roomID, bot.Name)
	s.timers.AddTimer(s.delays.Think, 0, func() {
		s.stepSpin(roomID, botID)
	})
}

// actingBot returns the current player when it is a bot in a live game.
// Caller holds the room lock.
func actingBot(r *room.Room) *room.Player {
	if r.Status != room.StatusPlaying || r.GameSession == nil || r.GameSession.GameOver {
		return nil
	}
	current := r.CurrentPlayer()
	if current == nil || !current.IsBot {
		return nil
	}
	return current
}

// validate re-checks that the seat at the turn index still belongs to the
// same bot. Caller holds the room lock.
func validate(r *room.Room, botID string) *room.Player {
	bot := actingBot(r)
	if bot == nil || bot.ID != botID {
		return nil
	}
	return bot
}

func (s *Scheduler) stepSpin(roomID, botID string) {
	r, ok := s.registry.GetRoom(roomID)
	if !ok {
		return
	}

	r.Lock()
	bot := validate(r, botID)
	if bot == nil {
		r.Unlock()
		return
	}

	if r.GameSession.CurrentSpinValue > 0 {
		// Spin already active, go straight to the guess.
		r.Unlock()
		s.timers.AddTimer(s.delays.PreGuess, 0, func() {
			s.stepGuess(roomID, botID)
		})
		return
	}

	value := r.DrawSpin(rand.Intn)
	r.Unlock()

	// Clients animate the wheel toward the drawn value.
	s.broadcaster.BroadcastToRoom(roomID, network.NewEnvelope(network.MsgTypeSpinStart, value))
	s.timers.AddTimer(s.delays.Animation, 0, func() {
		s.stepSpinEnd(roomID, botID)
	})
}

func (s *Scheduler) stepSpinEnd(roomID, botID string) {
	r, ok := s.registry.GetRoom(roomID)
	if !ok {
		return
	}

	r.Lock()
	bot := validate(r, botID)
	if bot == nil {
		r.Unlock()
		return
	}

	value := r.ApplySpinResult(bot)
	env := r.StateEnvelope()
	r.Unlock()

	s.broadcaster.BroadcastToRoom(roomID, env)

	if value == 0 {
		// Bankrupt: the turn moved on, maybe to another bot.
		s.Poke(roomID)
		return
	}
	s.timers.AddTimer(s.delays.PreGuess, 0, func() {
		s.stepGuess(roomID, botID)
	})
}

func (s *Scheduler) stepGuess(roomID, botID string) {
	r, ok := s.registry.GetRoom(roomID)
	if !ok {
		return
	}

	r.Lock()
	bot := validate(r, botID)
	if bot == nil {
		r.Unlock()
		return
	}

	letter, ok := s.pickLetter(r.GameSession.GuessedLetters)
	if !ok {
		// Alphabet exhausted, give the turn away.
		r.NextTurn()
		env := r.StateEnvelope()
		r.Unlock()
		s.broadcaster.BroadcastToRoom(roomID, env)
		s.Poke(roomID)
		return
	}

	r.ApplyGuess(s.engine, bot, letter)

	var results []room.GameResult
	if r.GameSession.GameOver {
		results = r.Finish()
	}
	env := r.StateEnvelope()
	r.Unlock()

	s.broadcaster.BroadcastToRoom(roomID, env)
	if len(results) > 0 && s.onFinish != nil {
		s.onFinish(results)
	}
	s.Poke(roomID)
}

// pickLetter chooses uniformly among letters not yet guessed.
func (s *Scheduler) pickLetter(guessed engine.LetterSet) (rune, bool) {
	remaining := make([]rune, 0, len(alphabet))
	for _, c := range alphabet {
		if !guessed.Contains(c) {
			remaining = append(remaining, c)
		}
	}
	if len(remaining) == 0 {
		return 0, false
	}
	return remaining[rand.Intn(len(remaining))], true
}
