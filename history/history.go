// Package history persists per-player results of finished games and
// aggregates them into the ranking.
package history

import (
	"time"
)

// Entry is one player's result for one finished game.
type Entry struct {
	Timestamp  time.Time `json:"timestamp"`
	PlayerName string    `json:"playerName"`
	Game       string    `json:"game"`
	Score      int       `json:"score"`
	Winner     bool      `json:"winner"`
}

// PlayerRanking is one aggregated row of the ranking, ordered by total
// score descending.
type PlayerRanking struct {
	PlayerName  string `json:"playerName"`
	TotalScore  int    `json:"totalScore"`
	GamesPlayed int    `json:"gamesPlayed"`
	Wins        int    `json:"wins"`
}

// Store is the history/ranking store consumed by the gateways and the
// REST/RPC surfaces.
type Store interface {
	Record(playerName, game string, score int, winner bool) error
	Ranking() ([]PlayerRanking, error)
	Close() error
}
