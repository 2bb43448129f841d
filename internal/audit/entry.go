package audit

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

// Task types processed by the worker.
const (
	TaskRecord = "audit:record"
	TaskPrune  = "audit:prune"
)

// Actions recorded for dashboard mutations.
const (
	ActionLogin   = "LOGIN"
	ActionLogout  = "LOGOUT"
	ActionCreate  = "CREATE"
	ActionUpdate  = "UPDATE"
	ActionDelete  = "DELETE"
	ActionPay     = "PAY"
	ActionImport  = "IMPORT"
	ActionConvert = "CONVERT"
)

// Entry is one audited operation.
type Entry struct {
	ActorID    string            `json:"actor_id"`
	Actor      string            `json:"actor"`
	Action     string            `json:"action"`
	Entity     string            `json:"entity"`
	EntityID   string            `json:"entity_id,omitempty"`
	Meta       map[string]string `json:"meta,omitempty"`
	RequestID  string            `json:"request_id,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// NewRecordTask encodes entry as an audit:record task.
func NewRecordTask(entry Entry) (*asynq.Task, error) {
	payload, err := json.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("audit: encode entry: %w", err)
	}
	return asynq.NewTask(TaskRecord, payload), nil
}

// ParseRecordTask decodes the entry carried by an audit:record task.
func ParseRecordTask(task *asynq.Task) (Entry, error) {
	var entry Entry
	if err := json.Unmarshal(task.Payload(), &entry); err != nil {
		return Entry{}, fmt.Errorf("audit: decode entry: %w", err)
	}
	if entry.Action == "" || entry.Entity == "" {
		return Entry{}, fmt.Errorf("audit: entry missing action or entity")
	}
	return entry, nil
}

// PrunePayload carries the retention window of an audit:prune task.
type PrunePayload struct {
	RetentionDays int `json:"retention_days"`
}

// NewPruneTask encodes an audit:prune task.
func NewPruneTask(retentionDays int) (*asynq.Task, error) {
	payload, err := json.Marshal(PrunePayload{RetentionDays: retentionDays})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPrune, payload), nil
}
