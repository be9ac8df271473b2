package localstore

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskpanel/taskpanel/internal/core/domain"
)

type failingKV struct{ err error }

func (f failingKV) Get(context.Context, string) ([]byte, bool, error) { return nil, false, f.err }
func (f failingKV) Set(context.Context, string, []byte) error          { return f.err }

func sampleTasks() []domain.Task {
	ts := time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)
	return []domain.Task{
		{ID: 10, Title: "b", Status: domain.StatusPending, CreatedAt: ts, UpdatedAt: ts},
		{ID: 5, Title: "a", Status: domain.StatusCompleted, CreatedAt: ts, UpdatedAt: ts},
	}
}

func TestRead_SeedsWhenAbsent(t *testing.T) {
	kv := NewMemoryStore()
	seed := sampleTasks()

	got, err := Read(context.Background(), kv, zerolog.Nop(), KeyTasks, seed)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !reflect.DeepEqual(got, seed) {
		t.Fatalf("expected seed, got %+v", got)
	}
	if _, found, _ := kv.Get(context.Background(), KeyTasks); !found {
		t.Fatalf("expected seed to be persisted")
	}
}

func TestWriteThenRead_RoundTripPreservesOrder(t *testing.T) {
	kv := NewMemoryStore()
	data := sampleTasks()

	if err := Write(context.Background(), kv, KeyTasks, data); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := Read(context.Background(), kv, zerolog.Nop(), KeyTasks, []domain.Task{{ID: 99}})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !reflect.DeepEqual(got, data) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, data)
	}
}

func TestRead_CorruptValueIsReplacedBySeed(t *testing.T) {
	for _, raw := range []string{"{not json", "null", `{"id":1}`} {
		kv := NewMemoryStore()
		_ = kv.Set(context.Background(), KeyTasks, []byte(raw))
		seed := sampleTasks()

		got, err := Read(context.Background(), kv, zerolog.Nop(), KeyTasks, seed)
		if err != nil {
			t.Fatalf("%q: corrupt data must not surface an error, got %v", raw, err)
		}
		if !reflect.DeepEqual(got, seed) {
			t.Fatalf("%q: expected seed, got %+v", raw, got)
		}
		again, _ := Read(context.Background(), kv, zerolog.Nop(), KeyTasks, []domain.Task{})
		if !reflect.DeepEqual(again, seed) {
			t.Fatalf("%q: expected reseeded value to persist, got %+v", raw, again)
		}
	}
}

func TestRead_EmptyArrayIsKept(t *testing.T) {
	kv := NewMemoryStore()
	_ = kv.Set(context.Background(), KeyTasks, []byte("[]"))

	got, err := Read(context.Background(), kv, zerolog.Nop(), KeyTasks, sampleTasks())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty collection to stay empty, got %d items", len(got))
	}
}

func TestRead_StoreErrorIsReturned(t *testing.T) {
	boom := errors.New("boom")
	_, err := Read(context.Background(), failingKV{err: boom}, zerolog.Nop(), KeyUsers, []domain.UserRecord{})
	if !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestCollections_UsersSeededWithHashedPasswords(t *testing.T) {
	seed, err := DefaultSeed()
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	c := NewCollections(NewMemoryStore(), seed, zerolog.Nop())

	users, err := c.Users(context.Background())
	if err != nil {
		t.Fatalf("users: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 seeded users, got %d", len(users))
	}
	for _, u := range users {
		if u.Password == "admin123" || u.Password == "user123" {
			t.Fatalf("seed password stored in plain text for %s", u.Email)
		}
	}

	tasks, err := c.Tasks(context.Background())
	if err != nil {
		t.Fatalf("tasks: %v", err)
	}
	if len(tasks) != 3 {
		t.Fatalf("expected 3 seeded tasks, got %d", len(tasks))
	}
}

func TestCollections_SaveIsLastWriterWins(t *testing.T) {
	c := NewCollections(NewMemoryStore(), Seed{}, zerolog.Nop())
	ctx := context.Background()

	_ = c.SaveTasks(ctx, sampleTasks())
	_ = c.SaveTasks(ctx, sampleTasks()[:1])

	got, err := c.Tasks(ctx)
	if err != nil {
		t.Fatalf("tasks: %v", err)
	}
	if len(got) != 1 || got[0].ID != 10 {
		t.Fatalf("expected last write to win, got %+v", got)
	}
}
