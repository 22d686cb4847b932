package config

import (
	"fmt"
	"strconv"
)

// Environment variables that override configuration values.
const (
	EnvSeed   = "RECEIPTMAP_SEED"
	EnvWidth  = "RECEIPTMAP_WIDTH"
	EnvHeight = "RECEIPTMAP_HEIGHT"
	EnvPort   = "RECEIPTMAP_PORT"
)

// ApplyEnv overrides configuration values from the environment. getenv is
// usually os.Getenv.
func ApplyEnv(cfg *SceneConfig, getenv func(string) string) error {
	if v := getenv(EnvSeed); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvSeed, err)
		}
		cfg.Placement.Seed = seed
	}
	if v := getenv(EnvWidth); v != "" {
		w, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvWidth, err)
		}
		cfg.Canvas.Width = w
	}
	if v := getenv(EnvHeight); v != "" {
		h, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvHeight, err)
		}
		cfg.Canvas.Height = h
	}
	if v := getenv(EnvPort); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPort, err)
		}
		cfg.Server.Port = p
	}
	return nil
}
