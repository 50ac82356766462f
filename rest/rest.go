// Package rest is the HTTP surface next to the websocket gateway:
// single-player game endpoints, question data with the answers stripped,
// ranking and stats.
package rest

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"

	"github.com/rafgames/roletrando/data"
	"github.com/rafgames/roletrando/engine"
	"github.com/rafgames/roletrando/history"
	"github.com/rafgames/roletrando/logger"
	"github.com/rafgames/roletrando/monitor"
	"github.com/rafgames/roletrando/room"
)

// Deps are the services the REST handlers draw on.
type Deps struct {
	Engine   *engine.Engine
	Loader   *data.Loader
	Store    history.Store
	Monitor  *monitor.Monitor
	Registry *room.Registry
}

type handlers struct {
	deps *Deps
}

// Register mounts every REST route on the router.
func Register(router *httprouter.Router, deps *Deps) {
	h := &handlers{deps: deps}

	router.POST("/api/game", h.newGame)
	router.POST("/api/game/:sessionId/spin", h.spin)
	router.POST("/api/game/:sessionId/guess", h.guess)
	router.POST("/api/game/:sessionId/solve", h.solve)

	router.GET("/api/data/themes", h.themes)
	router.GET("/api/data/quiz/questions", h.quizQuestions)
	router.GET("/api/data/quiz/answer/:level/:question", h.quizAnswer)
	router.GET("/api/data/millionaire/questions", h.millionaireQuestions)
	router.GET("/api/data/millionaire/answer/:level/:question", h.millionaireAnswer)
	router.GET("/api/data/millionaire/lifeline/fiftyfifty/:level/:question", h.fiftyFifty)
	router.GET("/api/data/millionaire/lifeline/audience/:level/:question", h.audience)
	router.GET("/api/data/millionaire/skip/:level/:question", h.skip)

	router.GET("/api/ranking", h.ranking)
	router.GET("/api/stats", h.stats)
	router.POST("/api/history/record", h.recordHistory)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Warnf("Failed to write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func (h *handlers) newGame(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	theme := r.URL.Query().Get("theme")
	if theme == "" {
		theme = h.deps.Loader.DefaultTheme()
	}

	session, err := h.deps.Engine.StartNewGame(theme)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	h.deps.Monitor.IncGamesCreated()
	writeJSON(w, http.StatusCreated, session)
}

func (h *handlers) spin(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	value := room.WheelValues[rand.Intn(len(room.WheelValues))]
	session := h.deps.Engine.SetSpinValue(ps.ByName("sessionId"), value)
	if session == nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"value":   value,
		"session": session,
	})
}

func (h *handlers) guess(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	letter := r.URL.Query().Get("letter")
	if letter == "" {
		writeError(w, http.StatusBadRequest, "missing letter parameter")
		return
	}
	session := h.deps.Engine.ProcessGuess(ps.ByName("sessionId"), []rune(letter)[0])
	if session == nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (h *handlers) solve(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	phrase := r.URL.Query().Get("phrase")
	if phrase == "" {
		writeError(w, http.StatusBadRequest, "missing phrase parameter")
		return
	}
	session := h.deps.Engine.Solve(ps.ByName("sessionId"), phrase)
	if session == nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (h *handlers) themes(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, map[string]any{
		"themes":  h.deps.Loader.Themes(),
		"default": h.deps.Loader.DefaultTheme(),
	})
}

// Question DTOs strip the answer index so clients cannot read the
// solution out of the questions payload.
type questionView struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

type quizLevelView struct {
	Level     int            `json:"level"`
	Label     string         `json:"label"`
	Questions []questionView `json:"questions"`
}

type millionaireLevelView struct {
	Level     int            `json:"level"`
	Prize     string         `json:"prize"`
	Questions []questionView `json:"questions"`
}

func (h *handlers) quizQuestions(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	levels := h.deps.Loader.QuizLevels(r.URL.Query().Get("theme"))
	views := make([]quizLevelView, 0, len(levels))
	for _, lvl := range levels {
		view := quizLevelView{Level: lvl.Level, Label: lvl.Label}
		for _, q := range lvl.Questions {
			view.Questions = append(view.Questions, questionView{Question: q.Question, Options: q.Options})
		}
		views = append(views, view)
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *handlers) quizAnswer(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	levels := h.deps.Loader.QuizLevels(r.URL.Query().Get("theme"))
	level, question, ok := parseLevelQuestion(ps)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid level or question")
		return
	}
	for _, lvl := range levels {
		if lvl.Level == level && question < len(lvl.Questions) {
			writeJSON(w, http.StatusOK, map[string]int{"answer": lvl.Questions[question].Answer})
			return
		}
	}
	writeError(w, http.StatusNotFound, "question not found")
}

func (h *handlers) millionaireQuestions(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	levels := h.deps.Loader.MillionaireLevels(r.URL.Query().Get("theme"))
	views := make([]millionaireLevelView, 0, len(levels))
	for _, lvl := range levels {
		view := millionaireLevelView{Level: lvl.Level, Prize: lvl.Prize}
		for _, q := range lvl.Questions {
			view.Questions = append(view.Questions, questionView{Question: q.Question, Options: q.Options})
		}
		views = append(views, view)
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *handlers) millionaireQuestion(r *http.Request, ps httprouter.Params) (*data.MillionaireQuestion, int, bool) {
	levels := h.deps.Loader.MillionaireLevels(r.URL.Query().Get("theme"))
	level, question, ok := parseLevelQuestion(ps)
	if !ok {
		return nil, 0, false
	}
	for _, lvl := range levels {
		if lvl.Level == level && question < len(lvl.Questions) {
			return &lvl.Questions[question], len(lvl.Questions), true
		}
	}
	return nil, 0, false
}

func (h *handlers) millionaireAnswer(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	q, _, ok := h.millionaireQuestion(r, ps)
	if !ok {
		writeError(w, http.StatusNotFound, "question not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"answer": q.Answer})
}

// fiftyFifty picks two wrong options to eliminate.
func (h *handlers) fiftyFifty(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	q, _, ok := h.millionaireQuestion(r, ps)
	if !ok {
		writeError(w, http.StatusNotFound, "question not found")
		return
	}

	wrong := make([]int, 0, len(q.Options))
	for i := range q.Options {
		if i != q.Answer {
			wrong = append(wrong, i)
		}
	}
	rand.Shuffle(len(wrong), func(i, j int) {
		wrong[i], wrong[j] = wrong[j], wrong[i]
	})
	if len(wrong) > 2 {
		wrong = wrong[:2]
	}
	writeJSON(w, http.StatusOK, map[string][]int{"remove": wrong})
}

// audience simulates an audience poll leaning toward the right answer.
func (h *handlers) audience(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	q, _, ok := h.millionaireQuestion(r, ps)
	if !ok {
		writeError(w, http.StatusNotFound, "question not found")
		return
	}

	votes := make([]int, len(q.Options))
	correct := 40 + rand.Intn(31)
	votes[q.Answer] = correct

	remaining := 100 - correct
	others := len(q.Options) - 1
	for i := range votes {
		if i == q.Answer {
			continue
		}
		if others == 1 {
			votes[i] = remaining
		} else {
			share := rand.Intn(remaining + 1)
			votes[i] = share
			remaining -= share
		}
		others--
	}
	writeJSON(w, http.StatusOK, map[string][]int{"votes": votes})
}

// skip swaps the current question for a different one of the same level.
func (h *handlers) skip(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	_, total, ok := h.millionaireQuestion(r, ps)
	if !ok {
		writeError(w, http.StatusNotFound, "question not found")
		return
	}
	_, question, _ := parseLevelQuestion(ps)
	if total < 2 {
		writeError(w, http.StatusConflict, "no alternative question available")
		return
	}

	next := rand.Intn(total)
	for next == question {
		next = rand.Intn(total)
	}
	writeJSON(w, http.StatusOK, map[string]int{"question": next})
}

func (h *handlers) ranking(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ranking, err := h.deps.Store.Ranking()
	if err != nil {
		logger.Log.Errorf("Failed to load ranking: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to load ranking")
		return
	}
	writeJSON(w, http.StatusOK, ranking)
}

func (h *handlers) stats(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, map[string]any{
		"onlinePlayers":     h.deps.Registry.OnlinePlayerCount(),
		"activeRooms":       h.deps.Registry.ActiveRoomCount(),
		"requestsProcessed": h.deps.Monitor.RequestCount(),
		"gamesCreated":      h.deps.Monitor.GamesCreated(),
		"uptime":            h.deps.Monitor.Uptime(),
	})
}

type recordRequest struct {
	PlayerName string `json:"playerName"`
	Game       string `json:"game"`
	Score      int    `json:"score"`
	Winner     bool   `json:"winner"`
}

func (h *handlers) recordHistory(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req recordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if req.PlayerName == "" || req.Game == "" {
		writeError(w, http.StatusBadRequest, "playerName and game are required")
		return
	}
	if err := h.deps.Store.Record(req.PlayerName, req.Game, req.Score, req.Winner); err != nil {
		logger.Log.Errorf("Failed to record history: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to record history")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "recorded"})
}

func parseLevelQuestion(ps httprouter.Params) (int, int, bool) {
	level, err := strconv.Atoi(ps.ByName("level"))
	if err != nil {
		return 0, 0, false
	}
	question, err := strconv.Atoi(ps.ByName("question"))
	if err != nil || question < 0 {
		return 0, 0, false
	}
	return level, question, true
}
