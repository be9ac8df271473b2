package realtime

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskpanel/taskpanel/internal/core/domain"
)

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	d := NewDispatcher(2, zerolog.Nop())
	d.Start(t.Context())
	return NewHub(d, Options{Delay: 5 * time.Millisecond, Log: zerolog.Nop()}, 10)
}

func TestHub_AttachReusesStream(t *testing.T) {
	h := newTestHub(t)
	u := domain.User{ID: 1, Name: "Admin"}

	s1, err := h.Attach(u)
	if err != nil {
		t.Fatalf("attach: %v", err)
	}
	s2, _ := h.Attach(u)
	if s1 != s2 {
		t.Fatal("expected the same stream for the same user")
	}
	if !s1.Channel.Connected() {
		t.Fatal("expected connected channel")
	}

	other, _ := h.Attach(domain.User{ID: 2})
	if other == s1 {
		t.Fatal("users must not share streams")
	}
}

func TestHub_StreamFeedsActivity(t *testing.T) {
	h := newTestHub(t)
	s, _ := h.Attach(domain.User{ID: 1})

	_ = s.Channel.EmitTaskCreate(domain.Task{ID: 4, Title: "Plan"}, "Admin")
	waitUntil(t, func() bool { return s.Feed.Len() == 1 })

	if got := s.Feed.Items()[0].Message; got != `New task "Plan" was created` {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestHub_Detach(t *testing.T) {
	h := newTestHub(t)
	s, _ := h.Attach(domain.User{ID: 1})

	h.Detach(1)
	if s.Channel.Connected() {
		t.Fatal("expected channel closed")
	}
	if _, ok := h.Get(1); ok {
		t.Fatal("expected stream removed")
	}
	h.Detach(1)
}
