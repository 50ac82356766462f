package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Game    GameConfig    `mapstructure:"game"`
	History HistoryConfig `mapstructure:"history"`
}

type ServerConfig struct {
	HTTPAddress    string `mapstructure:"http_address"`
	RPCAddress     string `mapstructure:"rpc_address"`
	MetricsAddress string `mapstructure:"metrics_address"`
}

type GameConfig struct {
	DataDir      string        `mapstructure:"data_dir"`
	DefaultTheme string        `mapstructure:"default_theme"`
	RoomSeats    int           `mapstructure:"room_seats"`
	BotThink     time.Duration `mapstructure:"bot_think"`
	BotAnimation time.Duration `mapstructure:"bot_animation"`
	BotPreGuess  time.Duration `mapstructure:"bot_pre_guess"`
}

type HistoryConfig struct {
	// Backend selects the history store: "postgres", "pq" or "file".
	Backend  string         `mapstructure:"backend"`
	File     string         `mapstructure:"file"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

func LoadConfig(path string) (config *Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetDefault("server.http_address", ":8080")
	viper.SetDefault("server.rpc_address", ":8081")
	viper.SetDefault("server.metrics_address", ":9100")
	viper.SetDefault("game.data_dir", "./data")
	viper.SetDefault("game.default_theme", "default")
	viper.SetDefault("game.room_seats", 3)
	viper.SetDefault("game.bot_think", 1500*time.Millisecond)
	viper.SetDefault("game.bot_animation", 4*time.Second)
	viper.SetDefault("game.bot_pre_guess", 1200*time.Millisecond)
	viper.SetDefault("history.backend", "file")
	viper.SetDefault("history.file", "")

	viper.AutomaticEnv()

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}
