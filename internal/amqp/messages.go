package amqp

import (
	"encoding/json"
	"time"
)

// DepositSyncMessage is the lightweight message queued when a deposit needs
// mirroring to the ledger. It carries only the ID and version; the worker
// fetches the full deposit from the database.
type DepositSyncMessage struct {
	ID        string    `json:"id"`
	Version   int64     `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

// NewDepositSyncMessage creates a sync message for the given deposit.
func NewDepositSyncMessage(id string, version int64) *DepositSyncMessage {
	return &DepositSyncMessage{
		ID:        id,
		Version:   version,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *DepositSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// DepositSyncMessageFromJSON creates a message from JSON bytes
func DepositSyncMessageFromJSON(data []byte) (*DepositSyncMessage, error) {
	var msg DepositSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
