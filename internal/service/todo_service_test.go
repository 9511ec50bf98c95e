package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"todo-records/internal/apperr"
	"todo-records/internal/domain"
	"todo-records/internal/repository"
)

// fakeRepo is an in-memory TodoRepository. Transaction just runs fn against
// the same map; good enough for single-goroutine tests.
type fakeRepo struct {
	todos  map[int64]domain.Todo
	nextID int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{todos: make(map[int64]domain.Todo), nextID: 1}
}

func (f *fakeRepo) Create(_ context.Context, todo *domain.Todo) error {
	todo.ID = f.nextID
	f.nextID++
	f.todos[todo.ID] = *todo
	return nil
}

func (f *fakeRepo) FindByID(_ context.Context, id int64) (*domain.Todo, error) {
	todo, ok := f.todos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &todo, nil
}

func (f *fakeRepo) GetAll(_ context.Context) ([]domain.Todo, error) {
	out := make([]domain.Todo, 0, len(f.todos))
	for id := int64(1); id < f.nextID; id++ {
		if todo, ok := f.todos[id]; ok {
			out = append(out, todo)
		}
	}
	return out, nil
}

func (f *fakeRepo) Save(_ context.Context, todo *domain.Todo) error {
	if _, ok := f.todos[todo.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	f.todos[todo.ID] = *todo
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.todos[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.todos, id)
	return nil
}

func (f *fakeRepo) Transaction(_ context.Context, fn func(repository.TodoRepository) error) error {
	return fn(f)
}

func newTestService(t *testing.T) (*todoService, *fakeRepo) {
	t.Helper()
	repo := newFakeRepo()
	svc := NewTodoService(repo, nil).(*todoService)
	return svc, repo
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestCreateTodo_Defaults(t *testing.T) {
	svc, _ := newTestService(t)
	before := time.Now().UTC()

	resp, err := svc.CreateTodo(context.Background(), CreateTodoRequest{
		Title:       "Test Todo",
		Description: "Test description",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.ID == 0 {
		t.Fatalf("expected assigned id")
	}
	if resp.CompletionStatus {
		t.Fatalf("expected completion_status false")
	}
	if resp.CompletionTime != nil {
		t.Fatalf("expected completion_time nil, got %v", *resp.CompletionTime)
	}
	if resp.EndingNote != nil {
		t.Fatalf("expected ending_note nil")
	}
	if resp.CreationTime.Before(before) || resp.CreationTime.After(time.Now().UTC()) {
		t.Fatalf("expected creation_time near now, got %v", resp.CreationTime)
	}
}

func TestCreateTodo_UniqueIDs(t *testing.T) {
	svc, _ := newTestService(t)

	seen := make(map[int64]bool)
	for i := 0; i < 5; i++ {
		resp, err := svc.CreateTodo(context.Background(), CreateTodoRequest{
			Title:       "t",
			Description: "d",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if seen[resp.ID] {
			t.Fatalf("id %d assigned twice", resp.ID)
		}
		seen[resp.ID] = true
	}
}

func TestCreateTodo_MissingFieldsRejected(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CreateTodo(context.Background(), CreateTodoRequest{Description: "only desc"})
	if !apperr.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}

	_, err = svc.CreateTodo(context.Background(), CreateTodoRequest{Title: "only title"})
	if !apperr.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGetAllTodos_ReturnsEveryCreated(t *testing.T) {
	svc, _ := newTestService(t)

	list, err := svc.GetAllTodos(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected empty list, got %d", len(list))
	}

	const n = 3
	ids := make(map[int64]bool)
	for i := 0; i < n; i++ {
		resp, err := svc.CreateTodo(context.Background(), CreateTodoRequest{Title: "t", Description: "d"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		ids[resp.ID] = true
	}

	list, err = svc.GetAllTodos(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != n {
		t.Fatalf("expected %d todos, got %d", n, len(list))
	}
	for _, todo := range list {
		if !ids[todo.ID] {
			t.Fatalf("unexpected id %d in list", todo.ID)
		}
	}
}

func TestGetTodoByID_UnknownIDNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.GetTodoByID(context.Background(), 9999)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestUpdateTodo_PartialPatch(t *testing.T) {
	svc, _ := newTestService(t)
	created, err := svc.CreateTodo(context.Background(), CreateTodoRequest{Title: "Test Todo", Description: "Test description"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resp, err := svc.UpdateTodo(context.Background(), created.ID, UpdateTodoRequest{
		Title: strPtr("Updated"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Title != "Updated" {
		t.Fatalf("expected title updated, got %q", resp.Title)
	}
	if resp.Description != "Test description" {
		t.Fatalf("expected description untouched, got %q", resp.Description)
	}
	if !resp.CreationTime.Equal(created.CreationTime) {
		t.Fatalf("expected creation_time immutable")
	}

	resp, err = svc.UpdateTodo(context.Background(), created.ID, UpdateTodoRequest{
		Description: strPtr("New desc"),
		EndingNote:  strPtr("end"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Title != "Updated" {
		t.Fatalf("expected title untouched, got %q", resp.Title)
	}
	if resp.Description != "New desc" || resp.EndingNote == nil || *resp.EndingNote != "end" {
		t.Fatalf("expected description and ending_note updated, got %+v", resp)
	}
}

func TestUpdateTodo_EmptyTitleRejected(t *testing.T) {
	svc, _ := newTestService(t)
	created, err := svc.CreateTodo(context.Background(), CreateTodoRequest{Title: "t", Description: "d"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = svc.UpdateTodo(context.Background(), created.ID, UpdateTodoRequest{Title: strPtr("  ")})
	if !apperr.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateTodo_CompletionStampAndClear(t *testing.T) {
	svc, _ := newTestService(t)
	created, err := svc.CreateTodo(context.Background(), CreateTodoRequest{Title: "t", Description: "d"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resp, err := svc.UpdateTodo(context.Background(), created.ID, UpdateTodoRequest{CompletionStatus: boolPtr(true)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.CompletionStatus || resp.CompletionTime == nil {
		t.Fatalf("expected completed with timestamp, got %+v", resp)
	}

	resp, err = svc.UpdateTodo(context.Background(), created.ID, UpdateTodoRequest{CompletionStatus: boolPtr(false)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.CompletionStatus || resp.CompletionTime != nil {
		t.Fatalf("expected incomplete with cleared timestamp, got %+v", resp)
	}
}

func TestUpdateTodo_CompleteTwiceKeepsTimestamp(t *testing.T) {
	svc, _ := newTestService(t)
	created, err := svc.CreateTodo(context.Background(), CreateTodoRequest{Title: "t", Description: "d"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stamp := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return stamp }
	first, err := svc.UpdateTodo(context.Background(), created.ID, UpdateTodoRequest{CompletionStatus: boolPtr(true)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	svc.now = func() time.Time { return stamp.Add(time.Hour) }
	second, err := svc.UpdateTodo(context.Background(), created.ID, UpdateTodoRequest{CompletionStatus: boolPtr(true)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.CompletionTime == nil || !second.CompletionTime.Equal(*first.CompletionTime) {
		t.Fatalf("expected completion_time unchanged after second complete, got %v then %v",
			first.CompletionTime, second.CompletionTime)
	}
}

func TestUpdateTodo_UnknownIDNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.UpdateTodo(context.Background(), 9999, UpdateTodoRequest{Title: strPtr("x")})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestDeleteTodo(t *testing.T) {
	svc, _ := newTestService(t)
	keep, err := svc.CreateTodo(context.Background(), CreateTodoRequest{Title: "keep", Description: "d"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	created, err := svc.CreateTodo(context.Background(), CreateTodoRequest{Title: "gone", Description: "d"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.DeleteTodo(context.Background(), created.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.GetTodoByID(context.Background(), created.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not-found after delete, got %v", err)
	}

	// Deleting an unknown id fails and leaves other records alone.
	if err := svc.DeleteTodo(context.Background(), 9999); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not-found for unknown id, got %v", err)
	}
	if _, err := svc.GetTodoByID(context.Background(), keep.ID); err != nil {
		t.Fatalf("expected surviving record, got %v", err)
	}
}
