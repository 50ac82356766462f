package history

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/rafgames/roletrando/logger"
)

// FileStore appends entries to a JSON-Lines file, one object per line.
// It is the default backend: no infrastructure required, survives restarts
// on the same host.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates the store. An empty path resolves to
// ~/.roletrando/history.jsonl.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(home, ".roletrando", "history.jsonl")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return &FileStore{path: path}, nil
}

func (s *FileStore) Record(playerName, game string, score int, winner bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := Entry{
		Timestamp:  time.Now().UTC(),
		PlayerName: playerName,
		Game:       game,
		Score:      score,
		Winner:     winner,
	}
	line, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return err
	}
	logger.Log.Infof("History recorded: %s | %s | score=%d | winner=%t", playerName, game, score, winner)
	return nil
}

// Ranking reads every record and aggregates per player. Malformed lines
// are skipped, never fatal.
func (s *FileStore) Ranking() ([]PlayerRanking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []PlayerRanking{}, nil
		}
		return nil, err
	}
	defer f.Close()

	aggregated := make(map[string]*PlayerRanking)
	order := make([]string, 0)

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var entry Entry
		if err := json.Unmarshal(line, &entry); err != nil {
			logger.Log.Warnf("Skipping malformed history line: %s", line)
			continue
		}
		row, ok := aggregated[entry.PlayerName]
		if !ok {
			row = &PlayerRanking{PlayerName: entry.PlayerName}
			aggregated[entry.PlayerName] = row
			order = append(order, entry.PlayerName)
		}
		row.TotalScore += entry.Score
		row.GamesPlayed++
		if entry.Winner {
			row.Wins++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	ranking := make([]PlayerRanking, 0, len(order))
	for _, name := range order {
		ranking = append(ranking, *aggregated[name])
	}
	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].TotalScore > ranking[j].TotalScore
	})
	return ranking, nil
}

func (s *FileStore) Close() error {
	return nil
}
