// Package realtime simulates a push channel for task activity. Emitted task
// events are echoed back to the emitting channel's own listeners after a
// short delay, as a broadcasting server would.
package realtime

import (
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskpanel/taskpanel/internal/core/domain"
)

// Event names.
const (
	EventConnect      = "connect"
	EventDisconnect   = "disconnect"
	EventConnectError = "connect_error"

	EventJoinRoom   = "join_room"
	EventLeaveRoom  = "leave_room"
	EventRoomJoined = "room_joined"

	EventTaskCreate  = "task_create"
	EventTaskUpdate  = "task_update"
	EventTaskDelete  = "task_delete"
	EventTaskCreated = "task_created"
	EventTaskUpdated = "task_updated"
	EventTaskDeleted = "task_deleted"
)

// echoes maps an emitted event to the broadcast variant delivered back.
// Events not listed here produce no echo.
var echoes = map[string]string{
	EventJoinRoom:   EventRoomJoined,
	EventTaskCreate: EventTaskCreated,
	EventTaskUpdate: EventTaskUpdated,
	EventTaskDelete: EventTaskDeleted,
}

const (
	defaultDelay         = 500 * time.Millisecond
	defaultReconnectBase = time.Second
	defaultMaxReconnects = 5
)

// Payload is the loosely structured body of a channel event.
type Payload map[string]any

func (p Payload) clone() Payload {
	if p == nil {
		return Payload{}
	}
	return maps.Clone(p)
}

// Listener receives event payloads. Listeners run on dispatcher workers.
type Listener func(Payload)

// ListenerID identifies a registration made with On.
type ListenerID uint64

type registration struct {
	id ListenerID
	fn Listener
}

// Options tune a Channel. Zero values select the defaults.
type Options struct {
	// Delay before a synthetic connect or an echo is delivered.
	Delay time.Duration
	// ReconnectBase is multiplied by the attempt number between reconnects.
	ReconnectBase time.Duration
	MaxReconnects int
	// Dial, when set, is consulted on every connection attempt.
	Dial func(identity int64) error
	Now  func() time.Time
	Log  zerolog.Logger
}

func (o Options) withDefaults() Options {
	if o.Delay <= 0 {
		o.Delay = defaultDelay
	}
	if o.ReconnectBase <= 0 {
		o.ReconnectBase = defaultReconnectBase
	}
	if o.MaxReconnects <= 0 {
		o.MaxReconnects = defaultMaxReconnects
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Channel is a simulated realtime connection for one identity. It is safe
// for concurrent use.
type Channel struct {
	opts       Options
	dispatcher *Dispatcher

	mu        sync.Mutex
	connected bool
	// dropped is set while the connection was lost and reconnects are pending.
	dropped   bool
	identity  int64
	socketID  string
	attempts  int
	gen       uint64
	nextID    ListenerID
	listeners map[string][]registration
	// pending deliveries are handed to the dispatcher once mu is released.
	pending []delivery
}

// NewChannel returns a disconnected channel delivering through d.
func NewChannel(d *Dispatcher, opts Options) *Channel {
	return &Channel{
		opts:       opts.withDefaults(),
		dispatcher: d,
		listeners:  make(map[string][]registration),
	}
}

// Connect opens the channel for identity. Calling it while connected is a
// no-op. A synthetic connect event follows after the delay.
func (c *Channel) Connect(identity int64) error {
	c.mu.Lock()
	defer c.unlock()
	if c.connected {
		return nil
	}
	return c.connectLocked(identity)
}

func (c *Channel) connectLocked(identity int64) error {
	c.identity = identity
	if c.opts.Dial != nil {
		if err := c.opts.Dial(identity); err != nil {
			c.opts.Log.Warn().Err(err).Int64("identity", identity).Msg("channel connection failed")
			c.fireLocked(EventConnectError, Payload{"error": err.Error()})
			c.dropped = true
			c.scheduleReconnectLocked()
			return fmt.Errorf("connect channel: %w", err)
		}
	}
	c.connected = true
	c.dropped = false
	c.socketID = fmt.Sprintf("mock-socket-%d", identity)
	c.gen++
	gen := c.gen
	time.AfterFunc(c.opts.Delay, func() {
		c.mu.Lock()
		defer c.unlock()
		if c.gen != gen || !c.connected {
			return
		}
		c.attempts = 0
		c.opts.Log.Debug().Str("socket_id", c.socketID).Msg("channel connected")
		c.fireLocked(EventConnect, Payload{})
	})
	return nil
}

// Disconnect closes the channel. No reconnect is attempted and pending
// echoes are discarded. Listeners stay registered.
func (c *Channel) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = false
	c.dropped = false
	c.gen++
}

// Drop simulates losing the connection: a disconnect event fires and
// reconnects are attempted with a linearly growing delay.
func (c *Channel) Drop(reason string) {
	c.mu.Lock()
	defer c.unlock()
	if !c.connected {
		return
	}
	c.connected = false
	c.dropped = true
	c.gen++
	c.opts.Log.Info().Str("reason", reason).Int64("identity", c.identity).Msg("channel dropped")
	c.fireLocked(EventDisconnect, Payload{"reason": reason})
	c.scheduleReconnectLocked()
}

func (c *Channel) scheduleReconnectLocked() {
	if c.attempts >= c.opts.MaxReconnects {
		c.opts.Log.Warn().Int("attempts", c.attempts).Int64("identity", c.identity).Msg("channel reconnect attempts exhausted")
		return
	}
	c.attempts++
	attempt := c.attempts
	time.AfterFunc(c.opts.ReconnectBase*time.Duration(attempt), func() {
		c.mu.Lock()
		defer c.unlock()
		if c.connected || !c.dropped {
			return
		}
		c.opts.Log.Debug().Int("attempt", attempt).Int("max", c.opts.MaxReconnects).Msg("channel reconnecting")
		_ = c.connectLocked(c.identity)
	})
}

// Connected reports whether the channel is currently open.
func (c *Channel) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// SocketID returns the identifier of the current connection.
func (c *Channel) SocketID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.socketID
}

// On registers fn for event. Listeners of one event run in registration
// order.
func (c *Channel) On(event string, fn Listener) ListenerID {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	c.listeners[event] = append(c.listeners[event], registration{id: c.nextID, fn: fn})
	return c.nextID
}

// Off removes the registration id from event.
func (c *Channel) Off(event string, id ListenerID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	regs := c.listeners[event]
	for i, r := range regs {
		if r.id == id {
			c.listeners[event] = append(regs[:i:i], regs[i+1:]...)
			return
		}
	}
}

// OffAll removes every listener of event.
func (c *Channel) OffAll(event string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.listeners, event)
}

// Emit sends event. Known events are echoed back to this channel's listeners
// under their broadcast name after the delay; task echoes carry a timestamp.
func (c *Channel) Emit(event string, payload Payload) error {
	c.mu.Lock()
	defer c.unlock()
	if !c.connected {
		return domain.ErrNotConnected
	}
	broadcast, ok := echoes[event]
	if !ok {
		return nil
	}

	var out Payload
	if event == EventJoinRoom {
		out = Payload{"room": payload["room"]}
	} else {
		out = payload.clone()
	}

	gen := c.gen
	time.AfterFunc(c.opts.Delay, func() {
		c.mu.Lock()
		defer c.unlock()
		if c.gen != gen {
			return
		}
		if event != EventJoinRoom {
			out["timestamp"] = c.opts.Now().UTC()
		}
		c.fireLocked(broadcast, out)
	})
	return nil
}

// fireLocked queues event with a snapshot of its listeners. It is sent to
// the dispatcher by unlock.
func (c *Channel) fireLocked(event string, payload Payload) {
	regs := c.listeners[event]
	if len(regs) == 0 {
		return
	}
	fns := make([]Listener, len(regs))
	for i, r := range regs {
		fns[i] = r.fn
	}
	c.pending = append(c.pending, delivery{event: event, payload: payload, listeners: fns})
}

func (c *Channel) unlock() {
	pending := c.pending
	c.pending = nil
	c.mu.Unlock()
	for _, dl := range pending {
		c.dispatcher.enqueue(dl)
	}
}

func (c *Channel) JoinRoom(room string) error {
	return c.Emit(EventJoinRoom, Payload{"room": room})
}

func (c *Channel) LeaveRoom(room string) error {
	return c.Emit(EventLeaveRoom, Payload{"room": room})
}

// EmitTaskCreate announces a new task created by the named user.
func (c *Channel) EmitTaskCreate(t domain.Task, by string) error {
	p := taskPayload(t)
	p["createdBy"] = by
	return c.Emit(EventTaskCreate, p)
}

// EmitTaskUpdate announces a changed task updated by the named user.
func (c *Channel) EmitTaskUpdate(t domain.Task, by string) error {
	p := taskPayload(t)
	p["updatedBy"] = by
	return c.Emit(EventTaskUpdate, p)
}

// EmitTaskDelete announces a deletion. title may be empty.
func (c *Channel) EmitTaskDelete(taskID int64, title, by string) error {
	p := Payload{"taskId": taskID, "deletedBy": by}
	if title != "" {
		p["title"] = title
	}
	return c.Emit(EventTaskDelete, p)
}

func taskPayload(t domain.Task) Payload {
	return Payload{
		"id":          t.ID,
		"title":       t.Title,
		"description": t.Description,
		"status":      string(t.Status),
		"priority":    string(t.Priority),
		"assignedTo":  t.AssignedTo,
		"dueDate":     t.DueDate,
	}
}
