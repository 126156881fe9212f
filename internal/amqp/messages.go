package amqp

import (
	"encoding/json"
	"time"

	"spendwise/internal/core"
)

// Operations carried by record events.
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// RecordEventMessage describes one record mutation. The audit worker
// persists these; the message carries ids only, never field values.
type RecordEventMessage struct {
	RecordID  int64           `json:"record_id"`
	UserID    int64           `json:"user_id"`
	Type      core.RecordType `json:"type"`
	Operation string          `json:"operation"`
	Timestamp time.Time       `json:"timestamp"`
}

func NewRecordEventMessage(recordID, userID int64, t core.RecordType, op string) *RecordEventMessage {
	return &RecordEventMessage{
		RecordID:  recordID,
		UserID:    userID,
		Type:      t,
		Operation: op,
		Timestamp: time.Now(),
	}
}

func (m *RecordEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func RecordEventMessageFromJSON(data []byte) (*RecordEventMessage, error) {
	var msg RecordEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
