package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MigrateStoredData decodes a persisted conversation history and upgrades it to
// CurrentStorageVersion.
//
// Accepted inputs:
//   - empty or null: a fresh, empty history
//   - version 0: a bare JSON array of conversations (written before the envelope existed)
//   - version 1: {"version":1,"data":[...]}
//
// Data written by a newer schema is rejected with ErrStorageVersion rather than truncated.
func MigrateStoredData(raw []byte) (*StoredData, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return &StoredData{Version: CurrentStorageVersion, Data: []StoredConversation{}}, nil
	}

	if trimmed[0] == '[' {
		var legacy []StoredConversation
		if err := json.Unmarshal(trimmed, &legacy); err != nil {
			return nil, fmt.Errorf("migration: decode v0 history: %w", err)
		}
		return &StoredData{Version: CurrentStorageVersion, Data: nonNil(legacy)}, nil
	}

	var envelope struct {
		Version *int                 `json:"version"`
		Data    []StoredConversation `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, fmt.Errorf("migration: decode history envelope: %w", err)
	}
	if envelope.Version == nil {
		return nil, fmt.Errorf("migration: history envelope has no version: %w", ErrStorageVersion)
	}

	switch v := *envelope.Version; {
	case v > CurrentStorageVersion:
		return nil, fmt.Errorf("migration: version %d is newer than %d: %w", v, CurrentStorageVersion, ErrStorageVersion)
	case v < 1:
		return nil, fmt.Errorf("migration: envelope version %d: %w", v, ErrStorageVersion)
	}

	return &StoredData{Version: CurrentStorageVersion, Data: nonNil(envelope.Data)}, nil
}

func nonNil(c []StoredConversation) []StoredConversation {
	if c == nil {
		return []StoredConversation{}
	}
	return c
}
