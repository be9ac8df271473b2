package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskpanel/taskpanel/internal/core/domain"
	"github.com/taskpanel/taskpanel/internal/core/ports"
	"github.com/taskpanel/taskpanel/internal/localstore"
	"github.com/taskpanel/taskpanel/internal/pkg/password"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubRemote struct {
	err   error
	calls int
	users []domain.UserRecord
	tasks []domain.Task
	// created holds tasks posted through CreateTask.
	created []domain.Task
}

func (r *stubRemote) hit() error {
	r.calls++
	return r.err
}

func (r *stubRemote) Ping(context.Context) error { return r.hit() }

func (r *stubRemote) ListUsers(context.Context) ([]domain.UserRecord, error) {
	if err := r.hit(); err != nil {
		return nil, err
	}
	return r.users, nil
}

func (r *stubRemote) CreateUser(_ context.Context, u domain.UserRecord) (*domain.UserRecord, error) {
	if err := r.hit(); err != nil {
		return nil, err
	}
	r.users = append(r.users, u)
	return &u, nil
}

func (r *stubRemote) ListTasks(context.Context) ([]domain.Task, error) {
	if err := r.hit(); err != nil {
		return nil, err
	}
	return r.tasks, nil
}

func (r *stubRemote) CreateTask(_ context.Context, t domain.Task) (*domain.Task, error) {
	if err := r.hit(); err != nil {
		return nil, err
	}
	r.created = append(r.created, t)
	r.tasks = append(r.tasks, t)
	return &t, nil
}

func (r *stubRemote) UpdateTask(_ context.Context, id int64, p domain.TaskPatch) (*domain.Task, error) {
	if err := r.hit(); err != nil {
		return nil, err
	}
	for i := range r.tasks {
		if r.tasks[i].ID == id {
			r.tasks[i] = p.Apply(r.tasks[i])
			return &r.tasks[i], nil
		}
	}
	return nil, fmt.Errorf("%w: status 404", domain.ErrRemoteUnavailable)
}

func (r *stubRemote) DeleteTask(context.Context, int64) error { return r.hit() }

// countingStore wraps the real local collections and counts reads.
type countingStore struct {
	ports.CollectionStore
	taskReads int
	userReads int
}

func (s *countingStore) Tasks(ctx context.Context) ([]domain.Task, error) {
	s.taskReads++
	return s.CollectionStore.Tasks(ctx)
}

func (s *countingStore) Users(ctx context.Context) ([]domain.UserRecord, error) {
	s.userReads++
	return s.CollectionStore.Users(ctx)
}

var errDown = fmt.Errorf("%w: connection refused", domain.ErrRemoteUnavailable)

func newLocal(t *testing.T) *countingStore {
	t.Helper()
	seed, err := localstore.DefaultSeed()
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return &countingStore{CollectionStore: localstore.NewCollections(localstore.NewMemoryStore(), seed, zerolog.Nop())}
}

// tickingClock returns a clock advancing by step on every call.
func tickingClock(start time.Time, step time.Duration) func() time.Time {
	now := start
	return func() time.Time {
		now = now.Add(step)
		return now
	}
}

func newOfflineGateway(t *testing.T) (*Gateway, *stubRemote, *countingStore) {
	t.Helper()
	remote := &stubRemote{err: errDown}
	local := newLocal(t)
	g := NewGateway(remote, local, zerolog.Nop(), GatewayOptions{
		Now: tickingClock(time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC), time.Second),
	})
	return g, remote, local
}

// ---------------------------------------------------------------------------
// Fallback behaviour
// ---------------------------------------------------------------------------

func TestGateway_RemoteServesWhileAvailable(t *testing.T) {
	remote := &stubRemote{tasks: []domain.Task{{ID: 1, Title: "remote"}}}
	local := newLocal(t)
	g := NewGateway(remote, local, zerolog.Nop(), GatewayOptions{})

	res, err := g.ListTasks(context.Background(), domain.TaskFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if res.Backend != domain.BackendRemote {
		t.Fatalf("expected remote backend, got %s", res.Backend)
	}
	if len(res.Value) != 1 || res.Value[0].Title != "remote" {
		t.Fatalf("unexpected tasks: %+v", res.Value)
	}
	if local.taskReads != 0 {
		t.Fatalf("local store must not be touched, got %d reads", local.taskReads)
	}
}

func TestGateway_FirstFailureFallsBackOnceAndSticks(t *testing.T) {
	g, remote, local := newOfflineGateway(t)

	res, err := g.ListTasks(context.Background(), domain.TaskFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if res.Backend != domain.BackendLocal {
		t.Fatalf("expected local backend, got %s", res.Backend)
	}
	if remote.calls != 1 {
		t.Fatalf("expected exactly one remote attempt, got %d", remote.calls)
	}
	if local.taskReads != 1 {
		t.Fatalf("expected exactly one local read, got %d", local.taskReads)
	}
	if g.Available() {
		t.Fatalf("expected remote to be marked unavailable")
	}
	if len(res.Value) != 3 {
		t.Fatalf("expected seeded tasks, got %d", len(res.Value))
	}

	if _, err := g.ListTasks(context.Background(), domain.TaskFilter{}); err != nil {
		t.Fatalf("second list: %v", err)
	}
	if remote.calls != 1 {
		t.Fatalf("remote must be skipped once unavailable, got %d calls", remote.calls)
	}
}

func TestGateway_ProbeRestoresRemote(t *testing.T) {
	g, remote, _ := newOfflineGateway(t)
	_, _ = g.ListTasks(context.Background(), domain.TaskFilter{})

	if g.Probe(context.Background()) {
		t.Fatalf("probe must fail while remote is down")
	}
	remote.err = nil
	if !g.Probe(context.Background()) || !g.Available() {
		t.Fatalf("expected probe to restore availability")
	}

	res, err := g.ListTasks(context.Background(), domain.TaskFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if res.Backend != domain.BackendRemote {
		t.Fatalf("expected remote after probe, got %s", res.Backend)
	}
}

func TestGateway_RemoteAnswerIsNotAFailure(t *testing.T) {
	hash, _ := password.Hash("pw")
	remote := &stubRemote{users: []domain.UserRecord{{ID: 9, Email: "a@x.io", Password: hash, Role: domain.RoleAdmin}}}
	local := newLocal(t)
	g := NewGateway(remote, local, zerolog.Nop(), GatewayOptions{})

	_, err := g.Authenticate(context.Background(), "a@x.io", "nope")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if !g.Available() {
		t.Fatalf("a rejection from a reachable remote must not flip availability")
	}
	if local.userReads != 0 {
		t.Fatalf("local store must not be consulted, got %d reads", local.userReads)
	}
}

// ---------------------------------------------------------------------------
// Task scenarios
// ---------------------------------------------------------------------------

func TestGateway_CreateThenList(t *testing.T) {
	g, _, _ := newOfflineGateway(t)
	actor := &domain.User{ID: 1, Role: domain.RoleAdmin}

	res, err := g.CreateTask(context.Background(), actor, ports.CreateTaskInput{
		Title: "X", Description: "Y", Priority: domain.PriorityHigh, DueDate: "2024-02-01",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	task := res.Value
	if task.Status != domain.StatusPending {
		t.Fatalf("expected pending, got %s", task.Status)
	}
	if task.ID == 0 {
		t.Fatalf("expected generated id")
	}
	if !task.CreatedAt.Equal(task.UpdatedAt) {
		t.Fatalf("expected createdAt == updatedAt, got %v / %v", task.CreatedAt, task.UpdatedAt)
	}
	if task.CreatedBy != 1 || task.AssignedTo != 1 {
		t.Fatalf("expected creator defaults, got createdBy=%d assignedTo=%d", task.CreatedBy, task.AssignedTo)
	}

	list, err := g.ListTasks(context.Background(), domain.TaskFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	found := false
	for _, tk := range list.Value {
		if tk.ID == task.ID && tk.Title == "X" {
			found = true
		}
	}
	if !found {
		t.Fatalf("created task missing from list")
	}
}

func TestGateway_CreateWithoutActorDefaultsCreator(t *testing.T) {
	g, _, _ := newOfflineGateway(t)

	res, err := g.CreateTask(context.Background(), nil, ports.CreateTaskInput{Title: "t", AssignedTo: 2})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if res.Value.CreatedBy != 1 || res.Value.AssignedTo != 2 {
		t.Fatalf("unexpected ownership: %+v", res.Value)
	}
	if res.Value.Priority != domain.PriorityMedium {
		t.Fatalf("expected default priority medium, got %s", res.Value.Priority)
	}
}

func TestGateway_AssignToCreatorOverridesInput(t *testing.T) {
	remote := &stubRemote{}
	g := NewGateway(remote, newLocal(t), zerolog.Nop(), GatewayOptions{AssignToCreator: true})

	res, err := g.CreateTask(context.Background(), &domain.User{ID: 7}, ports.CreateTaskInput{Title: "t", AssignedTo: 2})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if res.Value.AssignedTo != 7 {
		t.Fatalf("expected assignee forced to creator, got %d", res.Value.AssignedTo)
	}
	if len(remote.created) != 1 || remote.created[0].Status != domain.StatusPending {
		t.Fatalf("expected pending task posted to remote, got %+v", remote.created)
	}
}

func TestGateway_IDsAreStrictlyIncreasing(t *testing.T) {
	fixed := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	g := NewGateway(&stubRemote{err: errDown}, newLocal(t), zerolog.Nop(), GatewayOptions{
		Now: func() time.Time { return fixed },
	})

	var last int64
	for i := 0; i < 5; i++ {
		res, err := g.CreateTask(context.Background(), nil, ports.CreateTaskInput{Title: "t"})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if res.Value.ID <= last {
			t.Fatalf("id %d not greater than %d", res.Value.ID, last)
		}
		last = res.Value.ID
	}
}

func TestGateway_UpdateMergesAndRefreshesUpdatedAt(t *testing.T) {
	g, _, _ := newOfflineGateway(t)
	created, err := g.CreateTask(context.Background(), nil, ports.CreateTaskInput{
		Title: "X", Description: "Y", Priority: domain.PriorityHigh, DueDate: "2024-02-01",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	done := domain.StatusCompleted
	res, err := g.UpdateTask(context.Background(), created.Value.ID, domain.TaskPatch{Status: &done})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	got := res.Value
	if got.Status != domain.StatusCompleted {
		t.Fatalf("expected completed, got %s", got.Status)
	}
	if got.Title != "X" || got.Description != "Y" || got.Priority != domain.PriorityHigh {
		t.Fatalf("unpatched fields changed: %+v", got)
	}
	if !got.UpdatedAt.After(created.Value.UpdatedAt) {
		t.Fatalf("expected updatedAt to advance: %v -> %v", created.Value.UpdatedAt, got.UpdatedAt)
	}
	if !got.CreatedAt.Equal(created.Value.CreatedAt) {
		t.Fatalf("createdAt must not change")
	}
}

func TestGateway_UpdateAdvancesUpdatedAtWithFrozenClock(t *testing.T) {
	fixed := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	g := NewGateway(&stubRemote{err: errDown}, newLocal(t), zerolog.Nop(), GatewayOptions{
		Now: func() time.Time { return fixed },
	})
	created, _ := g.CreateTask(context.Background(), nil, ports.CreateTaskInput{Title: "t"})

	title := "t2"
	res, err := g.UpdateTask(context.Background(), created.Value.ID, domain.TaskPatch{Title: &title})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !res.Value.UpdatedAt.After(created.Value.UpdatedAt) {
		t.Fatalf("expected strictly later updatedAt")
	}
}

// recordRemote answers task writes through a RecordService the way the task
// API does.
type recordRemote struct {
	*stubRemote
	records *RecordService
}

func (r recordRemote) CreateTask(ctx context.Context, t domain.Task) (*domain.Task, error) {
	return r.records.CreateTask(ctx, t)
}

func (r recordRemote) UpdateTask(ctx context.Context, id int64, p domain.TaskPatch) (*domain.Task, error) {
	return r.records.UpdateTask(ctx, id, p)
}

func TestGateway_RemoteUpdateAdvancesUpdatedAtWithFrozenClock(t *testing.T) {
	fixed := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	frozen := func() time.Time { return fixed }
	records := NewRecordService(&stubTaskRepo{}, &stubUserRepo{}, zerolog.Nop())
	records.now = frozen
	remote := recordRemote{stubRemote: &stubRemote{}, records: records}
	g := NewGateway(remote, newLocal(t), zerolog.Nop(), GatewayOptions{Now: frozen})

	created, err := g.CreateTask(context.Background(), nil, ports.CreateTaskInput{Title: "t"})
	if err != nil || created.Backend != domain.BackendRemote {
		t.Fatalf("create: %v (%s)", err, created.Backend)
	}
	status := domain.StatusCompleted
	first, err := g.UpdateTask(context.Background(), created.Value.ID, domain.TaskPatch{Status: &status})
	if err != nil || first.Backend != domain.BackendRemote {
		t.Fatalf("update: %v (%s)", err, first.Backend)
	}
	if !first.Value.UpdatedAt.After(created.Value.UpdatedAt) {
		t.Fatalf("remote updatedAt not strictly greater: %v -> %v", created.Value.UpdatedAt, first.Value.UpdatedAt)
	}
	second, err := g.UpdateTask(context.Background(), created.Value.ID, domain.TaskPatch{Status: &status})
	if err != nil {
		t.Fatalf("second update: %v", err)
	}
	if !second.Value.UpdatedAt.After(first.Value.UpdatedAt) {
		t.Fatalf("remote updatedAt not strictly greater: %v -> %v", first.Value.UpdatedAt, second.Value.UpdatedAt)
	}
}

func TestGateway_UpdateMissingTask(t *testing.T) {
	g, _, _ := newOfflineGateway(t)
	title := "nope"
	_, err := g.UpdateTask(context.Background(), 12345, domain.TaskPatch{Title: &title})
	if !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestGateway_DeleteMissingTaskIsIdempotent(t *testing.T) {
	g, _, _ := newOfflineGateway(t)
	before, _ := g.ListTasks(context.Background(), domain.TaskFilter{})

	res, err := g.DeleteTask(context.Background(), 999999)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if res.Existed {
		t.Fatalf("expected Existed=false for missing id")
	}
	after, _ := g.ListTasks(context.Background(), domain.TaskFilter{})
	if len(after.Value) != len(before.Value) {
		t.Fatalf("collection changed: %d -> %d", len(before.Value), len(after.Value))
	}
}

func TestGateway_DeleteExistingTask(t *testing.T) {
	g, _, _ := newOfflineGateway(t)

	res, err := g.DeleteTask(context.Background(), 2)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !res.Existed || res.Backend != domain.BackendLocal {
		t.Fatalf("unexpected result: %+v", res)
	}
	list, _ := g.ListTasks(context.Background(), domain.TaskFilter{})
	for _, tk := range list.Value {
		if tk.ID == 2 {
			t.Fatalf("task 2 still present")
		}
	}
}

func TestGateway_ListTasksFilters(t *testing.T) {
	g, _, _ := newOfflineGateway(t)

	res, err := g.ListTasks(context.Background(), domain.TaskFilter{Priority: domain.PriorityHigh, Search: "AUTH"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(res.Value) != 1 || res.Value[0].ID != 2 {
		t.Fatalf("unexpected filtered tasks: %+v", res.Value)
	}
}

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

func TestGateway_ListUsersStripsPasswords(t *testing.T) {
	remote := &stubRemote{users: []domain.UserRecord{{ID: 1, Email: "a@x.io", Password: "plain", Role: domain.RoleAdmin}}}
	g := NewGateway(remote, newLocal(t), zerolog.Nop(), GatewayOptions{})

	res, err := g.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(res.Value) != 1 || res.Value[0].Email != "a@x.io" {
		t.Fatalf("unexpected users: %+v", res.Value)
	}
}

func TestGateway_AuthenticateAgainstLocalSeed(t *testing.T) {
	g, _, _ := newOfflineGateway(t)

	res, err := g.Authenticate(context.Background(), "admin@example.com", "admin123")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if res.Value.ID != 1 || res.Value.Role != domain.RoleAdmin || res.Backend != domain.BackendLocal {
		t.Fatalf("unexpected result: %+v", res)
	}

	if _, err := g.Authenticate(context.Background(), "admin@example.com", "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestGateway_RegisterUser(t *testing.T) {
	g, _, _ := newOfflineGateway(t)

	res, err := g.RegisterUser(context.Background(), "new@example.com", "pw", "New Person")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if res.Value.Role != domain.RoleUser {
		t.Fatalf("expected user role, got %s", res.Value.Role)
	}
	if res.Value.Avatar != "/placeholder.svg?height=40&width=40&query=New+Person+avatar" {
		t.Fatalf("unexpected avatar: %s", res.Value.Avatar)
	}
	if _, err := g.Authenticate(context.Background(), "new@example.com", "pw"); err != nil {
		t.Fatalf("expected new user to authenticate: %v", err)
	}
	if _, err := g.RegisterUser(context.Background(), "NEW@example.com", "pw", "Again"); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestGateway_RegisterUserEscapesAvatarQuery(t *testing.T) {
	g, _, _ := newOfflineGateway(t)

	res, err := g.RegisterUser(context.Background(), "tj@example.com", "pw", "Tom & Jerry #1")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if res.Value.Avatar != "/placeholder.svg?height=40&width=40&query=Tom+%26+Jerry+%231+avatar" {
		t.Fatalf("unexpected avatar: %s", res.Value.Avatar)
	}
}

// assigningRemote stores users under ids and timestamps of its own choosing.
type assigningRemote struct {
	*stubRemote
}

func (r assigningRemote) CreateUser(ctx context.Context, u domain.UserRecord) (*domain.UserRecord, error) {
	u.ID = 900
	u.CreatedAt = time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	return r.stubRemote.CreateUser(ctx, u)
}

func TestGateway_RegisterUserReturnsRemoteRecord(t *testing.T) {
	remote := assigningRemote{stubRemote: &stubRemote{}}
	g := NewGateway(remote, newLocal(t), zerolog.Nop(), GatewayOptions{})

	res, err := g.RegisterUser(context.Background(), "new@example.com", "pw", "New Person")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if res.Backend != domain.BackendRemote || res.Value.ID != 900 {
		t.Fatalf("expected the remote's record, got %+v (%s)", res.Value, res.Backend)
	}
	if !res.Value.CreatedAt.Equal(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected createdAt: %v", res.Value.CreatedAt)
	}
}
