package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// Postgres is a plain database/sql implementation of the store, for
// deployments that prefer not to carry GORM.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(host string, port int, user, password, dbname string) (*Postgres, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if _, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS game_history (
            id SERIAL PRIMARY KEY,
            player_name TEXT NOT NULL,
            game TEXT NOT NULL,
            score INT NOT NULL,
            winner BOOLEAN NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT now()
        )`); err != nil {
		return nil, err
	}
	if _, err := db.Exec(
		`CREATE INDEX IF NOT EXISTS idx_game_history_player ON game_history (player_name)`); err != nil {
		return nil, err
	}

	return &Postgres{db: db}, nil
}

func (s *Postgres) Record(playerName, game string, score int, winner bool) error {
	_, err := s.db.Exec(
		`INSERT INTO game_history (player_name, game, score, winner) VALUES ($1, $2, $3, $4)`,
		playerName, game, score, winner)
	return err
}

func (s *Postgres) Ranking() ([]PlayerRanking, error) {
	rows, err := s.db.Query(`
        SELECT
            player_name,
            SUM(score),
            COUNT(*),
            SUM(CASE WHEN winner THEN 1 ELSE 0 END)
        FROM game_history
        GROUP BY player_name
        ORDER BY SUM(score) DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ranking := make([]PlayerRanking, 0)
	for rows.Next() {
		var row PlayerRanking
		if err := rows.Scan(&row.PlayerName, &row.TotalScore, &row.GamesPlayed, &row.Wins); err != nil {
			return nil, err
		}
		ranking = append(ranking, row)
	}
	return ranking, rows.Err()
}

func (s *Postgres) Close() error {
	return s.db.Close()
}
