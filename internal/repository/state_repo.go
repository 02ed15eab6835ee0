package repository

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("state not found")

// StateKeyPrefix - every saved game lives under clipit:state:<player id>
const StateKeyPrefix = "clipit:state:"

func StateKey(playerID string) string {
	return StateKeyPrefix + playerID
}

// StateRepository stores one opaque serialized game state per key.
// Save overwrites.
type StateRepository interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, payload []byte) error
}
