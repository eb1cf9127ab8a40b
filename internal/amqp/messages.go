package amqp

import (
	"encoding/json"
	"time"
)

// DashboardRefreshMessage announces that a company's dashboard snapshot was
// rebuilt. Consumers fetch the snapshot from the database; the message only
// carries identifiers.
type DashboardRefreshMessage struct {
	Company    string    `json:"company"`
	SnapshotID int64     `json:"snapshot_id"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewDashboardRefreshMessage creates a refresh notification for a company snapshot
func NewDashboardRefreshMessage(company string, snapshotID int64) *DashboardRefreshMessage {
	return &DashboardRefreshMessage{
		Company:    company,
		SnapshotID: snapshotID,
		Timestamp:  time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *DashboardRefreshMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// DashboardRefreshMessageFromJSON creates a message from JSON bytes
func DashboardRefreshMessageFromJSON(data []byte) (*DashboardRefreshMessage, error) {
	var msg DashboardRefreshMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
