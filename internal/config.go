package internal

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
)

const (
	DriverBadger   = "badger"
	DriverPostgres = "postgres"
)

type Config struct {
	Host                string        `env:"HOST,default=localhost"`
	Port                int           `env:"PORT,default=8080"`
	GRPCPort            int           `env:"GRPC_PORT,default=9090"`
	LogLevel            string        `env:"LOG_LEVEL,default=INFO"`
	StoreDriver         string        `env:"STORE_DRIVER,default=badger"`
	BadgerFilepath      string        `env:"BADGER_FILEPATH,default=./data/badger"`
	BadgerInMemory      bool          `env:"BADGER_IN_MEMORY,default=false"`
	DatabaseDSN         string        `env:"DATABASE_DSN"`
	BusCapacity         int           `env:"BUS_CAPACITY,default=1024"`
	StreamSecret        string        `env:"STREAM_SECRET,required=true"`
	StreamTokenDuration time.Duration `env:"STREAM_TOKEN_DURATION,default=24h"`
	ShutdownTimeout     time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s"`
	MetricInterval      time.Duration `env:"METRIC_INTERVAL,default=15s"`
	RestartInterval     time.Duration `env:"RESTART_INTERVAL,default=1s"`
	CensoredWords       string        `env:"CENSORED_WORDS"`
	CharReplacement     string        `env:"CHARACTER_REPLACEMENT,default=*"`
}

// LoadConfig reads an optional .env file, then the environment.
// Variables already set in the environment win over the file.
func LoadConfig(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("dotenv: %w", err)
	}
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return Config{}, fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

func (c Config) Validate() error {
	if c.BusCapacity <= 0 {
		return fmt.Errorf("BUS_CAPACITY must be positive, got %d", c.BusCapacity)
	}
	if c.StoreDriver == DriverPostgres && c.DatabaseDSN == "" {
		return fmt.Errorf("DATABASE_DSN is required with STORE_DRIVER=%s", DriverPostgres)
	}
	if c.MetricInterval <= 0 {
		return fmt.Errorf("METRIC_INTERVAL must be positive, got %s", c.MetricInterval)
	}
	_, err := CharacterRune(c.CharReplacement)
	return err
}

func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c Config) GRPCAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.GRPCPort)
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
