package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"budget/internal/journal"
)

// EntryRecordedMessage announces one ledger entry. It carries the whole entry
// so consumers can rebuild categories without reading the journal.
type EntryRecordedMessage struct {
	journal.EntryRecord
	Timestamp time.Time `json:"timestamp"`
}

// NewEntryRecordedMessage wraps a journal entry with the current time.
func NewEntryRecordedMessage(e journal.EntryRecord) *EntryRecordedMessage {
	return &EntryRecordedMessage{
		EntryRecord: e,
		Timestamp:   time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *EntryRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// EntryRecordedMessageFromJSON decodes a message and rejects ones that
// cannot be applied.
func EntryRecordedMessageFromJSON(data []byte) (*EntryRecordedMessage, error) {
	var msg EntryRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.CategoryID == "" || msg.Category == "" {
		return nil, fmt.Errorf("entry message without category")
	}
	if msg.Seq < 1 {
		return nil, fmt.Errorf("entry message with invalid seq %d", msg.Seq)
	}
	return &msg, nil
}
