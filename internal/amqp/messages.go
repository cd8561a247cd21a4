package amqp

import (
	"encoding/json"
	"time"
)

// BatchIngestedMessage announces that a bulk load appended records.
type BatchIngestedMessage struct {
	BatchID   string    `json:"batch_id"`
	Source    string    `json:"source"`
	Count     int       `json:"count"`
	Timestamp time.Time `json:"timestamp"`
}

// RecordEditedMessage announces that a committed edit mutated a record.
type RecordEditedMessage struct {
	Index     int       `json:"index"`
	Timestamp time.Time `json:"timestamp"`
}

func (m BatchIngestedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func BatchIngestedFromJSON(data []byte) (BatchIngestedMessage, error) {
	var m BatchIngestedMessage
	err := json.Unmarshal(data, &m)
	return m, err
}

func (m RecordEditedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func RecordEditedFromJSON(data []byte) (RecordEditedMessage, error) {
	var m RecordEditedMessage
	err := json.Unmarshal(data, &m)
	return m, err
}
