package amqp

import (
	"encoding/json"
	"time"
)

// Reasons carried by an ExportRequest. The worker treats ReasonProfileDeleted
// as "remove the profile's exports"; everything else triggers a rebuild.
const (
	ReasonExpenseCreated = "expense_created"
	ReasonExpenseUpdated = "expense_updated"
	ReasonExpenseDeleted = "expense_deleted"
	ReasonExpensePaid    = "expense_paid"
	ReasonProfileDeleted = "profile_deleted"
	ReasonRefresh        = "refresh"
)

// ExportRequest asks the export worker to refresh one profile's budget
// exports. It carries only the profile id and a reason; the worker loads
// the full snapshot from storage.
type ExportRequest struct {
	ProfileID int64     `json:"profile_id"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

// NewExportRequest creates an export request stamped with the current time.
func NewExportRequest(profileID int64, reason string) *ExportRequest {
	return &ExportRequest{
		ProfileID: profileID,
		Reason:    reason,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ExportRequest) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExportRequestFromJSON creates a message from JSON bytes
func ExportRequestFromJSON(data []byte) (*ExportRequest, error) {
	var msg ExportRequest
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
