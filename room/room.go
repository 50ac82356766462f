package room

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sync"

	"github.com/google/uuid"
	"github.com/rafgames/roletrando/engine"
	"github.com/rafgames/roletrando/network"
)

// Status is the room's lifecycle state. FINISHED is driven explicitly from
// the embedded session's gameOver edge.
type Status string

const (
	StatusWaiting  Status = "WAITING"
	StatusPlaying  Status = "PLAYING"
	StatusFinished Status = "FINISHED"
)

// WheelValues is the fixed discrete outcome set of the wheel. Zero is the
// "lose everything" segment.
var WheelValues = []int{100, 500, 200, 1000, 0, 300, 600, 150, 800, 400}

type Player struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Avatar       string `json:"avatar"`
	ConnectionID string `json:"connectionId"`
	Score        int    `json:"score"`
	IsBot        bool   `json:"isBot"`
}

func NewPlayer(name, connectionID string) *Player {
	return &Player{
		ID:           uuid.New().String(),
		Name:         name,
		Avatar:       avatarFor(name),
		ConnectionID: connectionID,
	}
}

func NewBot(number int) *Player {
	name := fmt.Sprintf("Robô %d", number)
	return &Player{
		ID:     uuid.New().String(),
		Name:   name,
		Avatar: avatarFor(name),
		IsBot:  true,
	}
}

func avatarFor(name string) string {
	return "https://api.dicebear.com/7.x/avataaars/svg?seed=" + url.QueryEscape(name)
}

// QuizSession is the embedded per-room state of a trivia quiz.
type QuizSession struct {
	CurrentStep    int            `json:"currentStep"`
	TotalQuestions int            `json:"totalQuestions"`
	Phase          string         `json:"phase"`
	RoundScores    map[string]int `json:"roundScores"`
	AnsweredCount  int            `json:"answeredCount"`
}

func NewQuizSession() *QuizSession {
	return &QuizSession{
		Phase:       "question",
		RoundScores: make(map[string]int),
	}
}

// GameResult is one player's outcome of a finished game, handed to the
// history store by the gateway.
type GameResult struct {
	PlayerName string
	Score      int
	Winner     bool
}

// Room is one game's shared mutable state. All mutation happens with mu
// held for the whole of a message's processing; methods below that mutate
// or read composite state expect the caller to hold the lock unless noted.
type Room struct {
	ID               string          `json:"id"`
	Players          []*Player       `json:"players"`
	GameSession      *engine.Session `json:"gameSession,omitempty"`
	QuizSession      *QuizSession    `json:"quizSession,omitempty"`
	CurrentTurnIndex int             `json:"currentTurnIndex"`
	Status           Status          `json:"status"`
	HostConnectionID string          `json:"hostConnectionId"`

	// Seats is the fixed capacity; zero means unlimited (quiz rooms).
	Seats int `json:"-"`

	recorded bool
	mu       sync.Mutex
}

func NewRoom(id string) *Room {
	return &Room{
		ID:      id,
		Players: make([]*Player, 0, 4),
		Status:  StatusWaiting,
	}
}

func (r *Room) Lock()   { r.mu.Lock() }
func (r *Room) Unlock() { r.mu.Unlock() }

// AddPlayer appends a player, keeping insertion order (turn order).
func (r *Room) AddPlayer(p *Player) bool {
	if r.Seats > 0 && len(r.Players) >= r.Seats {
		return false
	}
	r.Players = append(r.Players, p)
	return true
}

// RemovePlayerByConnection removes the player bound to a connection and
// clamps the turn index when removal left it out of bounds.
func (r *Room) RemovePlayerByConnection(connectionID string) bool {
	for i, p := range r.Players {
		if p.ConnectionID == connectionID {
			r.Players = append(r.Players[:i], r.Players[i+1:]...)
			if r.CurrentTurnIndex >= len(r.Players) {
				r.CurrentTurnIndex = 0
			}
			return true
		}
	}
	return false
}

func (r *Room) PlayerByConnection(connectionID string) *Player {
	for _, p := range r.Players {
		if p.ConnectionID == connectionID {
			return p
		}
	}
	return nil
}

func (r *Room) CurrentPlayer() *Player {
	if len(r.Players) == 0 || r.CurrentTurnIndex >= len(r.Players) {
		return nil
	}
	return r.Players[r.CurrentTurnIndex]
}

// IsTurn reports whether the seat at the turn index belongs to the given
// connection. Messages from any other seat are discarded by the gateway.
func (r *Room) IsTurn(connectionID string) bool {
	current := r.CurrentPlayer()
	return current != nil && current.ConnectionID == connectionID
}

// IsFull reports whether every seat is taken.
func (r *Room) IsFull() bool {
	return r.Seats > 0 && len(r.Players) >= r.Seats
}

// Start transitions WAITING -> PLAYING. Phrase-game rooms fill every
// remaining seat with a bot, in order.
func (r *Room) Start() {
	if r.Status != StatusWaiting {
		return
	}
	if r.GameSession != nil && r.Seats > 0 {
		for n := 1; len(r.Players) < r.Seats; n++ {
			r.Players = append(r.Players, NewBot(n))
		}
	}
	r.Status = StatusPlaying
}

// NextTurn advances the turn pointer and forces a new spin before the next
// guess. It is a no-op once the session is over.
func (r *Room) NextTurn() {
	if len(r.Players) == 0 {
		return
	}
	if r.GameSession != nil && r.GameSession.GameOver {
		return
	}
	r.CurrentTurnIndex = (r.CurrentTurnIndex + 1) % len(r.Players)
	if r.GameSession != nil {
		r.GameSession.CurrentSpinValue = 0
	}
}

// DrawSpin picks the wheel outcome server-side and parks it until the
// client-side animation finishes, so clients cannot choose their own
// result.
func (r *Room) DrawSpin(pick func(n int) int) int {
	value := WheelValues[pick(len(WheelValues))]
	r.GameSession.PendingSpinValue = value
	return value
}

// ApplySpinResult applies the previously drawn outcome for the acting
// player. The zero segment wipes the player's score and ends the turn.
func (r *Room) ApplySpinResult(p *Player) int {
	session := r.GameSession
	value := session.PendingSpinValue
	session.PendingSpinValue = 0

	if value == 0 {
		p.Score = 0
		session.CurrentSpinValue = 0
		session.Message = "Que azar! Perdeu tudo!"
		r.NextTurn()
	} else {
		session.CurrentSpinValue = value
		session.Message = fmt.Sprintf("A roleta parou em %d pontos! Escolha uma letra.", value)
	}
	return value
}

// ApplyGuess runs a letter guess through the engine and reconciles the
// session score into the acting player. A scoring guess keeps the turn but
// demands a fresh spin; anything else passes the turn on.
func (r *Room) ApplyGuess(eng *engine.Engine, p *Player, letter rune) bool {
	session := r.GameSession
	before := session.Score
	eng.ProcessGuess(session.ID, letter)

	if delta := session.Score - before; delta > 0 {
		p.Score += delta
		session.CurrentSpinValue = 0
		return true
	}
	r.NextTurn()
	return false
}

// ApplySolve runs a full-phrase attempt through the engine. Success
// credits the engine's bonus to the acting player; failure costs the
// player their score and the turn.
func (r *Room) ApplySolve(eng *engine.Engine, p *Player, phrase string) bool {
	session := r.GameSession
	before := session.Score
	eng.Solve(session.ID, phrase)

	if session.GameOver {
		p.Score += session.Score - before
		return true
	}
	p.Score = 0
	r.NextTurn()
	return false
}

// Finish flips the room to FINISHED exactly once and returns the per-player
// results to record. It returns nil on every later call.
func (r *Room) Finish() []GameResult {
	if r.recorded {
		return nil
	}
	r.recorded = true
	r.Status = StatusFinished

	best := 0
	for _, p := range r.Players {
		if p.Score > best {
			best = p.Score
		}
	}

	results := make([]GameResult, 0, len(r.Players))
	for _, p := range r.Players {
		if p.IsBot {
			continue
		}
		results = append(results, GameResult{
			PlayerName: p.Name,
			Score:      p.Score,
			Winner:     p.Score == best,
		})
	}
	return results
}

// StateEnvelope marshals the full room snapshot while the caller still
// holds the lock, so every recipient sees a mutually consistent state.
func (r *Room) StateEnvelope() *network.Envelope {
	turnID := ""
	if current := r.CurrentPlayer(); current != nil {
		turnID = current.ID
	}
	payload, err := json.Marshal(map[string]any{
		"room":                r,
		"currentPlayerTurnId": turnID,
	})
	if err != nil {
		return network.NewEnvelope(network.MsgTypeStateUpdate, nil)
	}
	return network.NewEnvelope(network.MsgTypeStateUpdate, json.RawMessage(payload))
}

// ConnectionIDs returns the live transport bindings of the room's players.
// It takes the room lock itself; call it only after releasing the lock.
func (r *Room) ConnectionIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]string, 0, len(r.Players))
	for _, p := range r.Players {
		if p.ConnectionID != "" {
			ids = append(ids, p.ConnectionID)
		}
	}
	return ids
}
