package engine

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rafgames/roletrando/logger"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

type stubProvider struct {
	pools map[string][]Phrase
}

func (p *stubProvider) PhrasePool(theme string) []Phrase {
	return p.pools[theme]
}

func (p *stubProvider) DefaultTheme() string {
	return "default"
}

func newTestEngine(phrases ...string) *Engine {
	pool := make([]Phrase, 0, len(phrases))
	for _, phrase := range phrases {
		pool = append(pool, Phrase{Category: "Teste", Phrase: phrase})
	}
	return New(&stubProvider{pools: map[string][]Phrase{"default": pool}})
}

func TestStartNewGameMasksEveryLetter(t *testing.T) {
	eng := newTestEngine("GATO")

	session, err := eng.StartNewGame("default")
	require.NoError(t, err)

	assert.Equal(t, "____", session.ObscuredPhrase)
	assert.Equal(t, "Teste", session.Category)
	assert.Equal(t, 0, session.Score)
	assert.False(t, session.GameOver)
}

func TestStartNewGameKeepsWordBoundaries(t *testing.T) {
	eng := newTestEngine("ARROZ COM FEIJAO")

	session, err := eng.StartNewGame("default")
	require.NoError(t, err)

	assert.Equal(t, "_____ ___ ______", session.ObscuredPhrase)
}

func TestStartNewDefaultGame(t *testing.T) {
	eng := newTestEngine("GATO")

	session, err := eng.StartNewDefaultGame()
	require.NoError(t, err)

	got, ok := eng.Session(session.ID)
	require.True(t, ok)
	assert.Same(t, session, got)
}

func TestStartNewGameEmptyPool(t *testing.T) {
	eng := New(&stubProvider{pools: map[string][]Phrase{}})

	_, err := eng.StartNewGame("default")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoContent)
}

func TestStartNewGameNeverRepeatsIndex(t *testing.T) {
	eng := newTestEngine("UM", "DOIS", "TRES", "QUATRO")

	last := -1
	for i := 0; i < 50; i++ {
		_, err := eng.StartNewGame("default")
		require.NoError(t, err)
		assert.NotEqual(t, last, eng.lastIndex)
		last = eng.lastIndex
	}
}

func TestProcessGuessScoresPerOccurrence(t *testing.T) {
	eng := newTestEngine("ARROZ COM FEIJAO")
	session, err := eng.StartNewGame("default")
	require.NoError(t, err)

	session.CurrentSpinValue = 100
	eng.ProcessGuess(session.ID, 'A')

	// Two occurrences of A at 100 points each.
	assert.Equal(t, 200, session.Score)
	assert.Equal(t, "A____ ___ ____A_", session.ObscuredPhrase)
}

func TestProcessGuessRevealsOnlyGuessedLetter(t *testing.T) {
	eng := newTestEngine("GATO")
	session, err := eng.StartNewGame("default")
	require.NoError(t, err)

	session.CurrentSpinValue = 200
	eng.ProcessGuess(session.ID, 'A')

	assert.Equal(t, "_A__", session.ObscuredPhrase)
	assert.Equal(t, 200, session.Score)
	assert.Contains(t, session.Message, "Acertou")
}

func TestProcessGuessIsCaseInsensitive(t *testing.T) {
	eng := newTestEngine("GATO")
	session, err := eng.StartNewGame("default")
	require.NoError(t, err)

	session.CurrentSpinValue = 100
	eng.ProcessGuess(session.ID, 'g')

	assert.Equal(t, "G___", session.ObscuredPhrase)
	assert.Equal(t, 100, session.Score)
}

func TestProcessGuessMiss(t *testing.T) {
	eng := newTestEngine("GATO")
	session, err := eng.StartNewGame("default")
	require.NoError(t, err)

	session.CurrentSpinValue = 500
	eng.ProcessGuess(session.ID, 'Z')

	assert.Equal(t, 0, session.Score)
	assert.Equal(t, "____", session.ObscuredPhrase)
	assert.Contains(t, session.Message, "Errou")
	assert.True(t, session.GuessedLetters.Contains('Z'))
}

func TestProcessGuessRepeatedLetterIsNoOp(t *testing.T) {
	eng := newTestEngine("GATO")
	session, err := eng.StartNewGame("default")
	require.NoError(t, err)

	session.CurrentSpinValue = 100
	eng.ProcessGuess(session.ID, 'A')
	scoreAfterFirst := session.Score

	eng.ProcessGuess(session.ID, 'A')

	assert.Equal(t, scoreAfterFirst, session.Score)
	assert.Equal(t, "Você já disse essa letra!", session.Message)
}

func TestProcessGuessCompletesGame(t *testing.T) {
	eng := newTestEngine("ABA")
	session, err := eng.StartNewGame("default")
	require.NoError(t, err)

	session.CurrentSpinValue = 100
	eng.ProcessGuess(session.ID, 'A')
	eng.ProcessGuess(session.ID, 'B')

	assert.True(t, session.GameOver)
	assert.Equal(t, "ABA", session.ObscuredPhrase)
	assert.Equal(t, "Parabéns! Você descobriu a frase!", session.Message)
}

func TestProcessGuessAfterGameOverIsNoOp(t *testing.T) {
	eng := newTestEngine("ABA")
	session, err := eng.StartNewGame("default")
	require.NoError(t, err)

	session.CurrentSpinValue = 100
	eng.ProcessGuess(session.ID, 'A')
	eng.ProcessGuess(session.ID, 'B')
	require.True(t, session.GameOver)
	score := session.Score

	eng.ProcessGuess(session.ID, 'C')
	assert.Equal(t, score, session.Score)
}

func TestProcessGuessUnknownSession(t *testing.T) {
	eng := newTestEngine("GATO")
	assert.Nil(t, eng.ProcessGuess("nope", 'A'))
}

func TestSolveCorrectAwardsHiddenLetterBonus(t *testing.T) {
	eng := newTestEngine("ARROZ COM FEIJAO")
	session, err := eng.StartNewGame("default")
	require.NoError(t, err)

	session.CurrentSpinValue = 100
	eng.ProcessGuess(session.ID, 'A') // reveals 2 letters, 12 remain hidden

	before := session.Score
	eng.Solve(session.ID, "arroz com feijao")

	require.True(t, session.GameOver)
	require.NotNil(t, session.SolveCorrect)
	assert.True(t, *session.SolveCorrect)
	assert.Equal(t, before+12*1000, session.Score)
	assert.Equal(t, "ARROZ COM FEIJAO", session.ObscuredPhrase)
}

func TestSolveTrimsWhitespace(t *testing.T) {
	eng := newTestEngine("GATO")
	session, err := eng.StartNewGame("default")
	require.NoError(t, err)

	eng.Solve(session.ID, "  gato  ")
	assert.True(t, session.GameOver)
}

func TestSolveWrongFlagsFailureOnly(t *testing.T) {
	eng := newTestEngine("GATO")
	session, err := eng.StartNewGame("default")
	require.NoError(t, err)

	session.CurrentSpinValue = 100
	eng.ProcessGuess(session.ID, 'A')
	score := session.Score

	eng.Solve(session.ID, "PATO")

	assert.False(t, session.GameOver)
	require.NotNil(t, session.SolveCorrect)
	assert.False(t, *session.SolveCorrect)
	// The engine never applies the penalty; the room layer does.
	assert.Equal(t, score, session.Score)
	assert.Contains(t, session.Message, "PATO")
}

func TestSetSpinValue(t *testing.T) {
	eng := newTestEngine("GATO")
	session, err := eng.StartNewGame("default")
	require.NoError(t, err)

	eng.SetSpinValue(session.ID, 500)
	assert.Equal(t, 500, session.CurrentSpinValue)
	assert.Contains(t, session.Message, "500")
}

func TestSetSpinValueZeroWipesScore(t *testing.T) {
	eng := newTestEngine("GATO")
	session, err := eng.StartNewGame("default")
	require.NoError(t, err)

	session.Score = 700
	eng.SetSpinValue(session.ID, 0)

	assert.Equal(t, 0, session.Score)
	assert.Equal(t, 0, session.CurrentSpinValue)
	assert.Equal(t, "Que azar! Perdeu tudo!", session.Message)
}

func TestLetterSetJSONRoundTrip(t *testing.T) {
	set := NewLetterSet()
	set.Add('C')
	set.Add('A')
	set.Add('B')

	data, err := set.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `["A","B","C"]`, string(data))

	decoded := NewLetterSet()
	require.NoError(t, decoded.UnmarshalJSON(data))
	assert.True(t, decoded.Contains('A'))
	assert.True(t, decoded.Contains('B'))
	assert.True(t, decoded.Contains('C'))
	assert.False(t, decoded.Contains('D'))
}
