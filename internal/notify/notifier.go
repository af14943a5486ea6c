package notify

import "github.com/google/uuid"

// Notifier is the outbound notification collaborator. Calls are
// fire-and-forget: implementations log failures and never return them, so a
// dead notification channel can never fail or roll back a core operation.
// Callers must invoke it after their transaction commits, never inside.
type Notifier interface {
	Notify(recipientID uuid.UUID, title, body, category string, data map[string]interface{})
}

// Noop discards everything. Used in tests.
type Noop struct{}

func (Noop) Notify(uuid.UUID, string, string, string, map[string]interface{}) {}
