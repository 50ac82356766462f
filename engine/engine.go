package engine

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"unicode"

	"github.com/google/uuid"
	"github.com/rafgames/roletrando/logger"
)

// ErrNoContent is returned when the requested theme has no phrase pool.
var ErrNoContent = errors.New("no wheel phrases available")

// Phrase is one entry of a theme's phrase pool.
type Phrase struct {
	Category string `json:"category"`
	Phrase   string `json:"phrase"`
}

// DataProvider supplies phrase pools per theme.
type DataProvider interface {
	PhrasePool(theme string) []Phrase
	DefaultTheme() string
}

// Engine holds the pure phrase-game logic: phrase selection, letter
// masking, guess scoring and full-phrase solve adjudication. It knows
// nothing about rooms or connections.
//
// The hidden phrase text is keyed by session id and never leaves the
// engine; clients only ever see the obscured form.
type Engine struct {
	data DataProvider
	rng  *rand.Rand

	mu        sync.Mutex
	lastIndex int
	sessions  map[string]*Session
	phrases   map[string]string // session id -> hidden phrase
}

func New(data DataProvider) *Engine {
	return &Engine{
		data:      data,
		rng:       rand.New(rand.NewSource(rand.Int63())),
		lastIndex: -1,
		sessions:  make(map[string]*Session),
		phrases:   make(map[string]string),
	}
}

// StartNewGame picks a random phrase from the theme's pool and creates a
// fresh session for it. The same pool index is never picked twice in a row
// unless the pool has a single entry.
func (e *Engine) StartNewGame(theme string) (*Session, error) {
	pool := e.data.PhrasePool(theme)
	if len(pool) == 0 {
		return nil, fmt.Errorf("%w: theme %q", ErrNoContent, theme)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	index := e.rng.Intn(len(pool))
	for index == e.lastIndex && len(pool) > 1 {
		index = e.rng.Intn(len(pool))
	}
	e.lastIndex = index

	selected := pool[index]
	session := &Session{
		ID:             uuid.New().String(),
		Category:       selected.Category,
		GuessedLetters: NewLetterSet(),
	}
	session.ObscuredPhrase = obscure(selected.Phrase, session.GuessedLetters)

	e.phrases[session.ID] = selected.Phrase
	e.sessions[session.ID] = session

	logger.Log.Infof("New game session %s, category %q", session.ID, session.Category)
	return session, nil
}

// StartNewDefaultGame starts a game with the configured default theme.
func (e *Engine) StartNewDefaultGame() (*Session, error) {
	return e.StartNewGame(e.data.DefaultTheme())
}

// Session returns a session by id.
func (e *Engine) Session(sessionID string) (*Session, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.sessions[sessionID]
	return s, ok
}

// SetSpinValue arms the session's current spin value. Unknown sessions
// and finished games are no-ops.
func (e *Engine) SetSpinValue(sessionID string, value int) *Session {
	e.mu.Lock()
	defer e.mu.Unlock()

	session := e.sessions[sessionID]
	if session == nil || session.GameOver {
		return session
	}
	if value == 0 {
		session.Score = 0
		session.CurrentSpinValue = 0
		session.Message = "Que azar! Perdeu tudo!"
	} else {
		session.CurrentSpinValue = value
		session.Message = fmt.Sprintf("A roleta parou em %d pontos! Escolha uma letra.", value)
	}
	return session
}

// ProcessGuess scores a single-letter guess against the hidden phrase.
// Repeated letters, unknown sessions and finished games are no-ops.
func (e *Engine) ProcessGuess(sessionID string, letter rune) *Session {
	e.mu.Lock()
	defer e.mu.Unlock()

	session := e.sessions[sessionID]
	phrase, ok := e.phrases[sessionID]
	if session == nil || !ok || session.GameOver {
		logger.Log.Warnf("Ignoring guess for session %s: session invalid or game over", sessionID)
		return session
	}

	letter = unicode.ToUpper(letter)
	if session.GuessedLetters.Contains(letter) {
		session.Message = "Você já disse essa letra!"
		return session
	}
	session.GuessedLetters.Add(letter)

	count := 0
	for _, c := range phrase {
		if unicode.ToUpper(c) == letter {
			count++
		}
	}

	if count > 0 {
		session.Score += count * session.CurrentSpinValue
		session.Message = fmt.Sprintf("Acertou! A letra %c aparece %d vezes.", letter, count)
	} else {
		session.Message = fmt.Sprintf("Errou! Não tem a letra %c.", letter)
	}

	session.ObscuredPhrase = obscure(phrase, session.GuessedLetters)

	if !strings.ContainsRune(session.ObscuredPhrase, maskRune) {
		session.GameOver = true
		session.Message = "Parabéns! Você descobriu a frase!"
		logger.Log.Infof("Session %s completed by guessing all letters", sessionID)
	}

	return session
}

// Solve adjudicates a full-phrase guess. A match reveals the phrase, ends
// the game and awards 1000 points per letter that had not been guessed
// individually. A miss only flips SolveCorrect; the caller decides any
// turn or score penalty.
func (e *Engine) Solve(sessionID, guessedPhrase string) *Session {
	e.mu.Lock()
	defer e.mu.Unlock()

	session := e.sessions[sessionID]
	phrase, ok := e.phrases[sessionID]
	if session == nil || !ok || session.GameOver {
		return session
	}

	if strings.EqualFold(phrase, strings.TrimSpace(guessedPhrase)) {
		hidden := hiddenLetterCount(phrase, session.GuessedLetters)
		bonus := hidden * 1000
		session.Score += bonus
		session.GameOver = true
		session.ObscuredPhrase = phrase
		session.SolveCorrect = boolPtr(true)
		session.Message = fmt.Sprintf(
			"SENSACIONAL! Você acertou a frase! +%d pontos (%d letras ocultas × 1000)!", bonus, hidden)
		logger.Log.Infof("Session %s solved correctly, %d hidden letters, bonus %d", sessionID, hidden, bonus)
	} else {
		session.SolveCorrect = boolPtr(false)
		session.Message = fmt.Sprintf("Oops! '%s' está errado. Você perde tudo e a vez!", guessedPhrase)
		logger.Log.Infof("Session %s: wrong solve attempt %q", sessionID, guessedPhrase)
	}

	return session
}

const maskRune = '_'

// obscure replaces every letter not yet guessed with the mask glyph.
// Whitespace maps to a single space so the result keeps the phrase's
// length and word boundaries.
func obscure(phrase string, guessed LetterSet) string {
	var sb strings.Builder
	for _, c := range phrase {
		switch {
		case unicode.IsSpace(c):
			sb.WriteRune(' ')
		case guessed.Contains(unicode.ToUpper(c)):
			sb.WriteRune(c)
		default:
			sb.WriteRune(maskRune)
		}
	}
	return sb.String()
}

func hiddenLetterCount(phrase string, guessed LetterSet) int {
	count := 0
	for _, c := range phrase {
		if !unicode.IsSpace(c) && !guessed.Contains(unicode.ToUpper(c)) {
			count++
		}
	}
	return count
}

func boolPtr(b bool) *bool { return &b }
