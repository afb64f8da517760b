package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Mutation actions carried by expense events.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// ExpenseEventMessage announces one expense mutation. It carries ids only;
// consumers that need record detail fetch it themselves. EventID makes
// redelivered messages deduplicable.
type ExpenseEventMessage struct {
	EventID   string    `json:"event_id"`
	UserID    int64     `json:"user_id"`
	ExpenseID int64     `json:"expense_id"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

func NewExpenseEventMessage(userID, expenseID int64, action string) *ExpenseEventMessage {
	return &ExpenseEventMessage{
		EventID:   uuid.New().String(),
		UserID:    userID,
		ExpenseID: expenseID,
		Action:    action,
		Timestamp: time.Now(),
	}
}

func (m *ExpenseEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ExpenseEventMessageFromJSON(data []byte) (*ExpenseEventMessage, error) {
	var msg ExpenseEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
