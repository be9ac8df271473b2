package realtime

import (
	"fmt"
	"sync"

	"github.com/taskpanel/taskpanel/internal/core/domain"
)

// Stream is the live state kept for one signed-in user.
type Stream struct {
	Channel *Channel
	Feed    *Feed
	tracker *Tracker
}

// Hub keeps one Stream per user id.
type Hub struct {
	dispatcher *Dispatcher
	opts       Options
	feedSize   int

	mu      sync.Mutex
	streams map[int64]*Stream
}

func NewHub(d *Dispatcher, opts Options, feedSize int) *Hub {
	return &Hub{
		dispatcher: d,
		opts:       opts,
		feedSize:   feedSize,
		streams:    make(map[int64]*Stream),
	}
}

// Attach returns the user's stream, creating and connecting it on first use.
// New streams join the user's own room and the general room.
func (h *Hub) Attach(user domain.User) (*Stream, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if s, ok := h.streams[user.ID]; ok {
		if err := s.Channel.Connect(user.ID); err != nil {
			return nil, err
		}
		return s, nil
	}

	ch := NewChannel(h.dispatcher, h.opts)
	feed := NewFeed(h.feedSize)
	s := &Stream{Channel: ch, Feed: feed, tracker: NewTracker(ch, feed)}
	s.tracker.OnActivity = func(e domain.ActivityEvent) {
		h.opts.Log.Debug().Int64("user_id", user.ID).Str("type", string(e.Type)).Str("message", e.Message).Msg("activity recorded")
	}
	s.tracker.Start()
	if err := ch.Connect(user.ID); err != nil {
		s.tracker.Stop()
		return nil, err
	}
	_ = ch.JoinRoom(fmt.Sprintf("user_%d", user.ID))
	_ = ch.JoinRoom("general")
	h.streams[user.ID] = s
	h.opts.Log.Info().Int64("user_id", user.ID).Msg("realtime stream attached")
	return s, nil
}

// Get returns the user's stream if one is attached.
func (h *Hub) Get(userID int64) (*Stream, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.streams[userID]
	return s, ok
}

// Detach disconnects and forgets the user's stream.
func (h *Hub) Detach(userID int64) {
	h.mu.Lock()
	s, ok := h.streams[userID]
	delete(h.streams, userID)
	h.mu.Unlock()
	if !ok {
		return
	}
	s.tracker.Stop()
	s.Channel.Disconnect()
	h.opts.Log.Info().Int64("user_id", userID).Msg("realtime stream detached")
}
