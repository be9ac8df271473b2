package domain

import (
	"errors"
	"time"
)

// Backend names the durable store that served a gateway call.
type Backend string

const (
	BackendRemote Backend = "remote"
	BackendLocal  Backend = "local"
)

var (
	ErrRemoteUnavailable = errors.New("remote endpoint unavailable")
	ErrNotConnected      = errors.New("channel not connected")
)

// ActivityType classifies a live-feed entry.
type ActivityType string

const (
	ActivityTaskCreate ActivityType = "task_create"
	ActivityTaskUpdate ActivityType = "task_update"
	ActivityTaskDelete ActivityType = "task_delete"
)

// ActivityEvent is a transient record of a task mutation shown in the feed.
type ActivityEvent struct {
	ID        string       `json:"id"`
	Type      ActivityType `json:"type"`
	Message   string       `json:"message"`
	Timestamp time.Time    `json:"timestamp"`
	TaskID    int64        `json:"taskId,omitempty"`
}
