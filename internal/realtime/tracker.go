package realtime

import (
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/taskpanel/taskpanel/internal/core/domain"
)

// Tracker turns task echoes on a channel into feed entries.
type Tracker struct {
	ch   *Channel
	feed *Feed
	now  func() time.Time
	seq  atomic.Uint64
	ids  map[string]ListenerID
	// OnActivity, when set before Start, is called after each entry is added.
	OnActivity func(domain.ActivityEvent)
}

func NewTracker(ch *Channel, feed *Feed) *Tracker {
	return &Tracker{ch: ch, feed: feed, now: time.Now}
}

// Start subscribes to the task_created, task_updated and task_deleted echoes.
func (t *Tracker) Start() {
	t.ids = map[string]ListenerID{
		EventTaskCreated: t.ch.On(EventTaskCreated, func(p Payload) {
			t.record(domain.ActivityTaskCreate, "create",
				fmt.Sprintf(`New task "%s" was created`, titleOf(p)), p, "id")
		}),
		EventTaskUpdated: t.ch.On(EventTaskUpdated, func(p Payload) {
			t.record(domain.ActivityTaskUpdate, "update",
				fmt.Sprintf(`Task "%s" was updated`, titleOf(p)), p, "id")
		}),
		EventTaskDeleted: t.ch.On(EventTaskDeleted, func(p Payload) {
			t.record(domain.ActivityTaskDelete, "delete",
				fmt.Sprintf(`Task "%s" was deleted`, titleOf(p)), p, "taskId")
		}),
	}
}

// Stop removes the tracker's listeners.
func (t *Tracker) Stop() {
	for event, id := range t.ids {
		t.ch.Off(event, id)
	}
	t.ids = nil
}

func (t *Tracker) record(typ domain.ActivityType, prefix, msg string, p Payload, idKey string) {
	ts, ok := p["timestamp"].(time.Time)
	if !ok {
		ts = t.now().UTC()
	}
	e := domain.ActivityEvent{
		ID:        fmt.Sprintf("%s-%d-%d", prefix, ts.UnixMilli(), t.seq.Add(1)),
		Type:      typ,
		Message:   msg,
		Timestamp: ts,
		TaskID:    int64Of(p[idKey]),
	}
	t.feed.Add(e)
	if t.OnActivity != nil {
		t.OnActivity(e)
	}
}

func titleOf(p Payload) string {
	if s, ok := p["title"].(string); ok && s != "" {
		return s
	}
	return "Unknown"
}

func int64Of(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	case json.Number:
		i, _ := n.Int64()
		return i
	}
	return 0
}
