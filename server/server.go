package server

import (
	"errors"
	"net/http"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"

	"github.com/rafgames/roletrando/bot"
	"github.com/rafgames/roletrando/broadcast"
	"github.com/rafgames/roletrando/config"
	"github.com/rafgames/roletrando/data"
	"github.com/rafgames/roletrando/engine"
	"github.com/rafgames/roletrando/history"
	"github.com/rafgames/roletrando/logger"
	"github.com/rafgames/roletrando/monitor"
	"github.com/rafgames/roletrando/network"
	"github.com/rafgames/roletrando/rest"
	"github.com/rafgames/roletrando/room"
	"github.com/rafgames/roletrando/session"
)

// Game labels used in history records.
const (
	GameRoletrando = "roletrando"
	GameQuiz       = "quiz"
)

var (
	roomIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,32}$`)
	namePattern   = regexp.MustCompile(`^[\p{L}\p{N} ]{1,20}$`)
)

// GameServer owns the websocket gateways and the supporting HTTP surface.
type GameServer struct {
	addr     string
	seats    int
	upgrader websocket.Upgrader

	registry    *room.Registry
	sessions    *session.Manager
	engine      *engine.Engine
	loader      *data.Loader
	store       history.Store
	mon         *monitor.Monitor
	broadcaster *broadcast.RoomBroadcaster
	bots        *bot.Scheduler
}

func NewGameServer(cfg *config.Config, eng *engine.Engine, loader *data.Loader,
	store history.Store, mon *monitor.Monitor) *GameServer {
	s := &GameServer{
		addr:     cfg.Server.HTTPAddress,
		seats:    cfg.Game.RoomSeats,
		registry: room.NewRegistry(),
		sessions: session.NewManager(),
		engine:   eng,
		loader:   loader,
		store:    store,
		mon:      mon,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}

	s.broadcaster = broadcast.NewRoomBroadcaster(s.registry, s.sessions)
	s.bots = bot.NewScheduler(s.registry, eng, s.broadcaster, bot.Delays{
		Think:     cfg.Game.BotThink,
		Animation: cfg.Game.BotAnimation,
		PreGuess:  cfg.Game.BotPreGuess,
	}, func(results []room.GameResult) {
		s.recordResults(GameRoletrando, results)
	})

	return s
}

// Registry exposes the room directory to the stats surfaces.
func (s *GameServer) Registry() *room.Registry {
	return s.registry
}

func (s *GameServer) Start() error {
	router := httprouter.New()
	router.GET("/api/ws/game/:roomId/:playerName", s.handleGameWS)
	router.GET("/api/ws/quiz/:roomId/:playerName", s.handleQuizWS)
	rest.Register(router, &rest.Deps{
		Engine:   s.engine,
		Loader:   s.loader,
		Store:    s.store,
		Monitor:  s.mon,
		Registry: s.registry,
	})

	logger.Log.Infof("Game server listening on %s", s.addr)
	return http.ListenAndServe(s.addr, s.countRequests(router))
}

func (s *GameServer) Shutdown() {
	s.bots.Stop()
}

func (s *GameServer) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mon.IncRequests()
		next.ServeHTTP(w, r)
	})
}

func (s *GameServer) handleGameWS(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}

	theme := r.URL.Query().Get("theme")
	if theme == "" {
		theme = s.loader.DefaultTheme()
	}
	s.handleConnection(network.NewWSConnection(conn), ps.ByName("roomId"), ps.ByName("playerName"),
		func(sess *session.Session, roomID, name string) bool {
			return s.joinGameRoom(sess, roomID, name, theme)
		},
		s.handleGameMessage)
}

func (s *GameServer) handleQuizWS(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}

	s.handleConnection(network.NewWSConnection(conn), ps.ByName("roomId"), ps.ByName("playerName"),
		s.joinQuizRoom, s.handleQuizMessage)
}

// handleConnection validates the join, binds a session and pumps inbound
// messages until the connection drops.
func (s *GameServer) handleConnection(conn network.Connection, roomID, name string,
	join func(*session.Session, string, string) bool,
	handle func(*session.Session, *network.Envelope)) {

	if !roomIDPattern.MatchString(roomID) || !namePattern.MatchString(name) {
		conn.Send(network.NewEnvelope(network.MsgTypeError, "Sala ou nome inválido."))
		conn.Close()
		return
	}

	sess := session.NewSession(uuid.New().String(), conn)
	sess.PlayerName = name

	logger.Log.Infof("User %s joining room %s on connection %s from %s",
		name, roomID, sess.ID, conn.RemoteAddr())

	if !join(sess, roomID, name) {
		conn.Close()
		return
	}

	s.mon.IncOnlinePlayers()
	s.mon.SetActiveRooms(s.registry.ActiveRoomCount())

	defer s.disconnect(sess)

	for {
		env, err := conn.Read()
		if err != nil {
			if errors.Is(err, network.ErrMalformed) {
				logger.Log.Warnf("Dropping malformed message on connection %s: %v", sess.ID, err)
				continue
			}
			return
		}
		s.mon.IncMessagesReceived()
		start := time.Now()
		handle(sess, env)
		s.mon.ObserveMessageLatency(time.Since(start))
	}
}

func (s *GameServer) disconnect(sess *session.Session) {
	logger.Log.Infof("Connection %s closed", sess.ID)
	s.sessions.Remove(sess.ID)
	sess.Close()
	s.mon.DecOnlinePlayers()

	r, ok := s.registry.GetRoomByConnection(sess.ID)
	if !ok {
		s.mon.SetActiveRooms(s.registry.ActiveRoomCount())
		return
	}

	r.Lock()
	r.RemovePlayerByConnection(sess.ID)
	humans := 0
	for _, p := range r.Players {
		if !p.IsBot {
			humans++
		}
	}
	var env *network.Envelope
	if humans > 0 {
		env = r.StateEnvelope()
	}
	r.Unlock()

	if humans == 0 {
		// A room with no connected humans is unreachable.
		s.registry.RemoveRoom(r.ID)
	} else {
		s.broadcaster.BroadcastToRoom(r.ID, env)
		s.bots.Poke(r.ID)
	}
	s.mon.SetActiveRooms(s.registry.ActiveRoomCount())
}

// recordResults writes one history entry per human player of a finished
// game. Failures are logged; the game outcome already reached the clients.
func (s *GameServer) recordResults(game string, results []room.GameResult) {
	for _, res := range results {
		if err := s.store.Record(res.PlayerName, game, res.Score, res.Winner); err != nil {
			logger.Log.Errorf("Failed to record history for %s: %v", res.PlayerName, err)
		}
	}
}
