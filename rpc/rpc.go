package rpc

import (
	"net"
	"net/rpc"

	"github.com/rafgames/roletrando/history"
	"github.com/rafgames/roletrando/logger"
	"github.com/rafgames/roletrando/monitor"
	"github.com/rafgames/roletrando/room"
)

// Server manages the RPC listener.
type Server struct {
	listener net.Listener
	address  string
}

func NewServer(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: listener,
		address:  addr,
	}, nil
}

// Start begins accepting RPC connections. Services must be registered
// with net/rpc before the first connection arrives.
func (s *Server) Start() {
	logger.Log.Infof("RPC server listening on %s", s.address)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if _, ok := err.(*net.OpError); ok {
				logger.Log.Info("RPC server listener closed.")
				return
			}
			logger.Log.Errorf("RPC server accept error: %v", err)
			continue
		}
		go rpc.ServeConn(conn)
	}
}

func (s *Server) Stop() {
	if s.listener != nil {
		logger.Log.Info("Stopping RPC server.")
		s.listener.Close()
	}
}

// AdminService exposes operational queries over net/rpc: the player
// ranking and the live process counters.
type AdminService struct {
	store    history.Store
	mon      *monitor.Monitor
	registry *room.Registry
}

func NewAdminService(store history.Store, mon *monitor.Monitor, registry *room.Registry) *AdminService {
	return &AdminService{store: store, mon: mon, registry: registry}
}

// RegisterAdminService publishes the service under its default name.
func RegisterAdminService(svc *AdminService) error {
	return rpc.Register(svc)
}

type RankingArgs struct{}

type RankingReply struct {
	Ranking []history.PlayerRanking
}

func (s *AdminService) GetRanking(args *RankingArgs, reply *RankingReply) error {
	ranking, err := s.store.Ranking()
	if err != nil {
		return err
	}
	reply.Ranking = ranking
	return nil
}

type StatsArgs struct{}

type StatsReply struct {
	OnlinePlayers     int
	ActiveRooms       int
	RequestsProcessed int64
	GamesCreated      int64
	Uptime            string
}

func (s *AdminService) GetStats(args *StatsArgs, reply *StatsReply) error {
	reply.OnlinePlayers = s.registry.OnlinePlayerCount()
	reply.ActiveRooms = s.registry.ActiveRoomCount()
	reply.RequestsProcessed = s.mon.RequestCount()
	reply.GamesCreated = s.mon.GamesCreated()
	reply.Uptime = s.mon.Uptime()
	return nil
}
