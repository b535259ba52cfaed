package rng

import (
	"encoding/base64"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
)

const stateTokenPrefix = "pcg1"

// Save exports the engine's exact generator state. Loading the token into any
// engine resumes the output sequence where this engine left it.
func (e *Engine) Save() (string, error) {
	if e.src == nil {
		return "", fmt.Errorf("%w: engine was never seeded", ErrInvalidState)
	}
	raw, err := e.src.MarshalBinary()
	if err != nil {
		return "", fmt.Errorf("marshal generator: %w", err)
	}
	return stateTokenPrefix + ":" + strconv.FormatUint(e.seed, 10) + ":" + base64.StdEncoding.EncodeToString(raw), nil
}

// Load replaces the engine's state with one produced by Save. On error the
// engine is left unchanged.
func (e *Engine) Load(token string) error {
	parts := strings.SplitN(token, ":", 3)
	if len(parts) != 3 || parts[0] != stateTokenPrefix {
		return fmt.Errorf("%w: unrecognized token", ErrInvalidState)
	}
	seed, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return fmt.Errorf("%w: seed: %v", ErrInvalidState, err)
	}
	raw, err := base64.StdEncoding.DecodeString(parts[2])
	if err != nil {
		return fmt.Errorf("%w: payload: %v", ErrInvalidState, err)
	}
	src := &rand.PCG{}
	if err := src.UnmarshalBinary(raw); err != nil {
		return fmt.Errorf("%w: generator: %v", ErrInvalidState, err)
	}
	e.seed = seed
	e.src = src
	e.r = rand.New(src)
	return nil
}

func (e *Engine) MarshalText() ([]byte, error) {
	token, err := e.Save()
	if err != nil {
		return nil, err
	}
	return []byte(token), nil
}

func (e *Engine) UnmarshalText(text []byte) error {
	return e.Load(string(text))
}
