package rest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rafgames/roletrando/data"
	"github.com/rafgames/roletrando/engine"
	"github.com/rafgames/roletrando/history"
	"github.com/rafgames/roletrando/logger"
	"github.com/rafgames/roletrando/monitor"
	"github.com/rafgames/roletrando/room"
)

var testMonitor *monitor.Monitor

func TestMain(m *testing.M) {
	logger.Init()
	testMonitor = monitor.NewMonitor("rest_test")
	os.Exit(m.Run())
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newTestRouter(t *testing.T) (*httprouter.Router, *Deps) {
	t.Helper()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "default", "wheel.json"),
		`[{"category":"Teste","phrase":"GATO"}]`)
	writeFile(t, filepath.Join(dir, "default", "quiz.json"),
		`{"levels":[{"level":1,"label":"Fácil","questions":[{"question":"Q1","options":["a","b"],"answer":1}]}]}`)
	writeFile(t, filepath.Join(dir, "default", "millionaire.json"),
		`{"levels":[{"level":1,"prize":"R$ 1.000","questions":[{"question":"M1","options":["a","b","c","d"],"answer":2},{"question":"M2","options":["a","b","c","d"],"answer":0}]}]}`)

	loader, err := data.Load(dir, "default")
	require.NoError(t, err)

	store, err := history.NewFileStore(filepath.Join(t.TempDir(), "history.jsonl"))
	require.NoError(t, err)

	deps := &Deps{
		Engine:   engine.New(loader),
		Loader:   loader,
		Store:    store,
		Monitor:  testMonitor,
		Registry: room.NewRegistry(),
	}
	router := httprouter.New()
	Register(router, deps)
	return router, deps
}

func do(t *testing.T, router *httprouter.Router, method, path string, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func TestNewGameEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/game", "")
	require.Equal(t, http.StatusCreated, rec.Code)

	var session engine.Session
	decode(t, rec, &session)
	assert.NotEmpty(t, session.ID)
	assert.Equal(t, "____", session.ObscuredPhrase)
	assert.Equal(t, "Teste", session.Category)
}

func TestGameFlowOverREST(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/game", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	var session engine.Session
	decode(t, rec, &session)

	rec = do(t, router, http.MethodPost, "/api/game/"+session.ID+"/spin", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var spin struct {
		Value   int            `json:"value"`
		Session engine.Session `json:"session"`
	}
	decode(t, rec, &spin)
	assert.Contains(t, room.WheelValues, spin.Value)

	rec = do(t, router, http.MethodPost, "/api/game/"+session.ID+"/guess?letter=A", "")
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &session)
	assert.Equal(t, "_A__", session.ObscuredPhrase)

	rec = do(t, router, http.MethodPost, "/api/game/"+session.ID+"/solve?phrase=GATO", "")
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &session)
	assert.True(t, session.GameOver)
}

func TestGuessRequiresLetter(t *testing.T) {
	router, _ := newTestRouter(t)
	rec := do(t, router, http.MethodPost, "/api/game/xyz/guess", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSpinUnknownSession(t *testing.T) {
	router, _ := newTestRouter(t)
	rec := do(t, router, http.MethodPost, "/api/game/nope/spin", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestThemesEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/api/data/themes", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Themes  []string `json:"themes"`
		Default string   `json:"default"`
	}
	decode(t, rec, &body)
	assert.Equal(t, []string{"default"}, body.Themes)
	assert.Equal(t, "default", body.Default)
}

func TestQuizQuestionsStripAnswers(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/api/data/quiz/questions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), `"answer"`)

	var levels []quizLevelView
	decode(t, rec, &levels)
	require.Len(t, levels, 1)
	assert.Equal(t, "Q1", levels[0].Questions[0].Question)
}

func TestQuizAnswerEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/api/data/quiz/answer/1/0", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]int
	decode(t, rec, &body)
	assert.Equal(t, 1, body["answer"])

	rec = do(t, router, http.MethodGet, "/api/data/quiz/answer/9/0", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMillionaireQuestionsStripAnswers(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/api/data/millionaire/questions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), `"answer"`)
	assert.Contains(t, rec.Body.String(), "R$ 1.000")
}

func TestFiftyFiftyRemovesTwoWrongOptions(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/api/data/millionaire/lifeline/fiftyfifty/1/0", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string][]int
	decode(t, rec, &body)
	require.Len(t, body["remove"], 2)
	// Never eliminates the correct answer (index 2).
	assert.NotContains(t, body["remove"], 2)
}

func TestAudienceVotesSumToHundred(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/api/data/millionaire/lifeline/audience/1/0", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string][]int
	decode(t, rec, &body)
	votes := body["votes"]
	require.Len(t, votes, 4)

	total := 0
	for _, v := range votes {
		total += v
	}
	assert.Equal(t, 100, total)
	assert.GreaterOrEqual(t, votes[2], 40)
}

func TestSkipReturnsDifferentQuestion(t *testing.T) {
	router, _ := newTestRouter(t)

	for i := 0; i < 10; i++ {
		rec := do(t, router, http.MethodGet, "/api/data/millionaire/skip/1/0", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var body map[string]int
		decode(t, rec, &body)
		assert.Equal(t, 1, body["question"])
	}
}

func TestRankingAndRecordEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/history/record",
		`{"playerName":"Ana","game":"roletrando","score":1500,"winner":true}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/ranking", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var ranking []history.PlayerRanking
	decode(t, rec, &ranking)
	require.Len(t, ranking, 1)
	assert.Equal(t, "Ana", ranking[0].PlayerName)
	assert.Equal(t, 1500, ranking[0].TotalScore)
}

func TestRecordRejectsMissingFields(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/history/record", `{"score":10}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/history/record", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/api/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	decode(t, rec, &body)
	assert.Contains(t, body, "onlinePlayers")
	assert.Contains(t, body, "activeRooms")
	assert.Contains(t, body, "requestsProcessed")
	assert.Contains(t, body, "gamesCreated")
	assert.Contains(t, body, "uptime")
}
