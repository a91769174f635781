package store

import (
	"encoding/json"
	"fmt"

	"github.com/lox/holdem/internal/game"
)

func encode(snap game.Snapshot) ([]byte, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

func decode(data []byte) (game.Snapshot, error) {
	var snap game.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return game.Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}

func clone(snap game.Snapshot) (game.Snapshot, error) {
	data, err := encode(snap)
	if err != nil {
		return game.Snapshot{}, err
	}
	return decode(data)
}
