package history

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// EntryModel is the GORM mapping of one history entry.
type EntryModel struct {
	ID         uint      `gorm:"primaryKey"`
	PlayerName string    `gorm:"index;not null"`
	Game       string    `gorm:"not null"`
	Score      int       `gorm:"not null"`
	Winner     bool      `gorm:"not null"`
	CreatedAt  time.Time
}

func (EntryModel) TableName() string { return "game_history" }

// GormPostgres is the PostgreSQL history store, the primary backend when a
// database is configured.
type GormPostgres struct {
	db *gorm.DB
}

func NewGormPostgres(host string, port int, user, password, dbname string) (*GormPostgres, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	gormLogger := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold: time.Second,
			LogLevel:      gormlogger.Silent,
			Colorful:      false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&EntryModel{}); err != nil {
		return nil, err
	}

	return &GormPostgres{db: db}, nil
}

func (s *GormPostgres) Record(playerName, game string, score int, winner bool) error {
	entry := EntryModel{
		PlayerName: playerName,
		Game:       game,
		Score:      score,
		Winner:     winner,
	}
	return s.db.Create(&entry).Error
}

func (s *GormPostgres) Ranking() ([]PlayerRanking, error) {
	var ranking []PlayerRanking
	err := s.db.Raw(`
        SELECT
            player_name AS player_name,
            SUM(score) AS total_score,
            COUNT(*) AS games_played,
            SUM(CASE WHEN winner THEN 1 ELSE 0 END) AS wins
        FROM game_history
        GROUP BY player_name
        ORDER BY total_score DESC`,
	).Scan(&ranking).Error
	if err != nil {
		return nil, err
	}
	if ranking == nil {
		ranking = []PlayerRanking{}
	}
	return ranking, nil
}

func (s *GormPostgres) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
