package world

import (
	"context"
	"errors"
	"fmt"

	"ealife/internal/config"
	"ealife/internal/storage"
)

// Config sizes and seeds a world. A zero Seed selects a wall-clock seed,
// which makes the run non-reproducible unless the logged seed is reused.
type Config struct {
	Seed      uint64 `env:"SEED"`
	Capacity  int    `env:"CAPACITY" envDefault:"1024"`
	Workers   int    `env:"WORKERS" envDefault:"1"`
	StoreKind string `env:"STORE" envDefault:"memory"`
	DBPath    string `env:"DB_PATH" envDefault:"ealife.db"`
}

func DefaultConfig() Config {
	return Config{
		Capacity:  1024,
		Workers:   1,
		StoreKind: "memory",
		DBPath:    "ealife.db",
	}
}

// LoadConfig reads the EALIFE_* environment variables.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Capacity <= 0 {
		return fmt.Errorf("capacity must be positive: %d", c.Capacity)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive: %d", c.Workers)
	}
	if c.StoreKind == "sqlite" && c.DBPath == "" {
		return errors.New("sqlite store requires a database path")
	}
	return nil
}

// OpenStore builds and initializes the configured checkpoint store.
func (c Config) OpenStore(ctx context.Context) (storage.Store, error) {
	store, err := storage.NewStore(c.StoreKind, c.DBPath)
	if err != nil {
		return nil, err
	}
	if err := store.Init(ctx); err != nil {
		_ = storage.CloseIfSupported(store)
		return nil, fmt.Errorf("init %s store: %w", c.StoreKind, err)
	}
	return store, nil
}
