package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AllocationMessage asks the worker to record the district share of one
// tithe or offering income row. The worker re-reads the row from the store.
type AllocationMessage struct {
	MessageID string    `json:"message_id"`
	IncomeID  int64     `json:"income_id"`
	Version   int64     `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

func NewAllocationMessage(incomeID, version int64) *AllocationMessage {
	return &AllocationMessage{
		MessageID: uuid.NewString(),
		IncomeID:  incomeID,
		Version:   version,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *AllocationMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func AllocationMessageFromJSON(data []byte) (*AllocationMessage, error) {
	var msg AllocationMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
