package engine

import (
	"encoding/json"
	"sort"
)

// Session is the public state of one phrase being guessed. It is embedded
// in a room for multiplayer play and returned directly by the REST API for
// single-player play. The hidden phrase itself lives only in the Engine.
type Session struct {
	ID               string    `json:"id"`
	Category         string    `json:"category"`
	ObscuredPhrase   string    `json:"obscuredPhrase"`
	Score            int       `json:"score"`
	CurrentSpinValue int       `json:"currentSpinValue"`
	PendingSpinValue int       `json:"pendingSpinValue"`
	GuessedLetters   LetterSet `json:"guessedLetters"`
	GameOver         bool      `json:"gameOver"`
	Message          string    `json:"message"`
	SolveCorrect     *bool     `json:"solveCorrect,omitempty"`
}

// LetterSet is a case-normalized set of guessed letters. It marshals as a
// sorted array of single-character strings, matching what clients render.
type LetterSet map[rune]struct{}

func NewLetterSet() LetterSet {
	return make(LetterSet)
}

func (s LetterSet) Add(r rune) {
	s[r] = struct{}{}
}

func (s LetterSet) Contains(r rune) bool {
	_, ok := s[r]
	return ok
}

func (s LetterSet) MarshalJSON() ([]byte, error) {
	letters := make([]string, 0, len(s))
	for r := range s {
		letters = append(letters, string(r))
	}
	sort.Strings(letters)
	return json.Marshal(letters)
}

func (s *LetterSet) UnmarshalJSON(data []byte) error {
	var letters []string
	if err := json.Unmarshal(data, &letters); err != nil {
		return err
	}
	set := NewLetterSet()
	for _, l := range letters {
		for _, r := range l {
			set.Add(r)
			break
		}
	}
	*s = set
	return nil
}
