package realtime

import (
	"encoding/json"
	"fmt"

	"github.com/amirasaad/finsync/pkg/remote"
)

// ChangeType is the envelope type of a record change.
const ChangeType = "record.changed"

type envelope struct {
	Type    string          `json:"type"`
	Email   string          `json:"email"`
	Payload json.RawMessage `json:"payload"`
}

func encode(ch remote.Change) ([]byte, error) {
	data, err := json.Marshal(ch)
	if err != nil {
		return nil, fmt.Errorf("realtime: marshal change: %w", err)
	}
	env, err := json.Marshal(envelope{Type: ChangeType, Email: ch.Email, Payload: data})
	if err != nil {
		return nil, fmt.Errorf("realtime: marshal envelope: %w", err)
	}
	return env, nil
}

func decode(raw []byte) (remote.Change, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return remote.Change{}, fmt.Errorf("realtime: unmarshal envelope: %w", err)
	}
	if env.Type != ChangeType {
		return remote.Change{}, fmt.Errorf("realtime: unexpected envelope type %q", env.Type)
	}
	var ch remote.Change
	if err := json.Unmarshal(env.Payload, &ch); err != nil {
		return remote.Change{}, fmt.Errorf("realtime: unmarshal change: %w", err)
	}
	if ch.Email == "" {
		ch.Email = env.Email
	}
	return ch, nil
}
