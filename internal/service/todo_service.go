package service

import (
	"context"
	"errors"
	"log"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"todo-records/internal/apperr"
	"todo-records/internal/cache"
	"todo-records/internal/domain"
	"todo-records/internal/repository"
)

// CreateTodoRequest holds the data needed to create a new todo.
type CreateTodoRequest struct {
	Title       string  `json:"title" validate:"required"`
	Description string  `json:"description" validate:"required"`
	EndingNote  *string `json:"ending_note"`
}

// UpdateTodoRequest is a partial update. Pointer fields distinguish "not
// provided" from a zero value; nil fields leave the record untouched.
type UpdateTodoRequest struct {
	Title            *string `json:"title"`
	Description      *string `json:"description"`
	CompletionStatus *bool   `json:"completion_status"`
	EndingNote       *string `json:"ending_note"`
}

// TodoResponse is the representation of a Todo returned by the service.
// Timestamps marshal as RFC 3339; completion_time and ending_note are null
// when absent.
type TodoResponse struct {
	ID               int64      `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	CreationTime     time.Time  `json:"creation_time"`
	CompletionTime   *time.Time `json:"completion_time"`
	CompletionStatus bool       `json:"completion_status"`
	EndingNote       *string    `json:"ending_note"`
}

// TodoService defines the operations for managing todo records.
type TodoService interface {
	// CreateTodo validates the request and persists a new record with a
	// fresh id, creation_time of now, and completion cleared.
	CreateTodo(ctx context.Context, req CreateTodoRequest) (*TodoResponse, error)

	// GetTodoByID retrieves a single record, or apperr.ErrNotFound.
	GetTodoByID(ctx context.Context, id int64) (*TodoResponse, error)

	// GetAllTodos retrieves every record in id order. An empty store yields
	// an empty slice, never an error.
	GetAllTodos(ctx context.Context) ([]TodoResponse, error)

	// UpdateTodo applies a partial update atomically and maintains the
	// completion_time <-> completion_status invariant.
	UpdateTodo(ctx context.Context, id int64, req UpdateTodoRequest) (*TodoResponse, error)

	// DeleteTodo permanently removes a record, or apperr.ErrNotFound.
	DeleteTodo(ctx context.Context, id int64) error
}

type todoService struct {
	repo     repository.TodoRepository
	cache    *cache.TodoCache // nil disables caching
	validate *validator.Validate
	sf       singleflight.Group
	now      func() time.Time
}

// NewTodoService creates a TodoService. If c is nil, caching is disabled.
func NewTodoService(repo repository.TodoRepository, c *cache.TodoCache) TodoService {
	v := validator.New()
	// Report JSON field names in validation errors, not Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &todoService{
		repo:     repo,
		cache:    c,
		validate: v,
		now:      time.Now,
	}
}

func (s *todoService) CreateTodo(ctx context.Context, req CreateTodoRequest) (*TodoResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, validationError(err)
	}

	newTodo := &domain.Todo{
		Title:            req.Title,
		Description:      req.Description,
		CreationTime:     s.now().UTC(),
		CompletionStatus: false,
		CompletionTime:   nil,
		EndingNote:       req.EndingNote,
	}

	if err := s.repo.Create(ctx, newTodo); err != nil {
		return nil, err
	}

	s.invalidateCache(ctx, newTodo.ID)
	resp := toResponse(*newTodo)
	return &resp, nil
}

func (s *todoService) GetTodoByID(ctx context.Context, id int64) (*TodoResponse, error) {
	if s.cache != nil {
		key := "item:" + strconv.FormatInt(id, 10)
		v, err, _ := s.sf.Do(key, func() (interface{}, error) {
			if todo, err := s.cache.GetItem(ctx, id); err == nil && todo != nil {
				return todo, nil
			}
			todo, err := s.repo.FindByID(ctx, id)
			if err != nil {
				return nil, err
			}
			if err := s.cache.SetItem(ctx, *todo); err != nil {
				log.Printf("cache set todo %d: %v", id, err)
			}
			return todo, nil
		})
		if err != nil {
			return nil, mapNotFound(err, id)
		}
		resp := toResponse(*v.(*domain.Todo))
		return &resp, nil
	}

	todo, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, id)
	}
	resp := toResponse(*todo)
	return &resp, nil
}

func (s *todoService) GetAllTodos(ctx context.Context) ([]TodoResponse, error) {
	if s.cache != nil {
		v, err, _ := s.sf.Do("list", func() (interface{}, error) {
			if list, err := s.cache.GetList(ctx); err == nil && list != nil {
				return list, nil
			}
			list, err := s.repo.GetAll(ctx)
			if err != nil {
				return nil, err
			}
			if err := s.cache.SetList(ctx, list); err != nil {
				log.Printf("cache set todo list: %v", err)
			}
			return list, nil
		})
		if err != nil {
			return nil, err
		}
		return toResponses(v.([]domain.Todo)), nil
	}

	todos, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return toResponses(todos), nil
}

func (s *todoService) UpdateTodo(ctx context.Context, id int64, req UpdateTodoRequest) (*TodoResponse, error) {
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		return nil, apperr.ValidationFields("title")
	}
	if req.Description != nil && strings.TrimSpace(*req.Description) == "" {
		return nil, apperr.ValidationFields("description")
	}

	var updated domain.Todo
	err := s.repo.Transaction(ctx, func(r repository.TodoRepository) error {
		todo, err := r.FindByID(ctx, id)
		if err != nil {
			return mapNotFound(err, id)
		}

		if req.Title != nil {
			todo.Title = *req.Title
		}
		if req.Description != nil {
			todo.Description = *req.Description
		}
		if req.EndingNote != nil {
			todo.EndingNote = req.EndingNote
		}
		if req.CompletionStatus != nil {
			todo.CompletionStatus = *req.CompletionStatus
			todo.CompletionTime = applyCompletionRule(*req.CompletionStatus, todo.CompletionTime, s.now().UTC())
		}

		if err := r.Save(ctx, todo); err != nil {
			return err
		}
		updated = *todo
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateCache(ctx, id)
	resp := toResponse(updated)
	return &resp, nil
}

func (s *todoService) DeleteTodo(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapNotFound(err, id)
	}
	s.invalidateCache(ctx, id)
	return nil
}

// invalidateCache drops stale entries after a write. Best effort: a cache
// failure must not fail the request.
func (s *todoService) invalidateCache(ctx context.Context, id int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, id); err != nil {
		log.Printf("cache invalidate todo %d: %v", id, err)
	}
}

func mapNotFound(err error, id int64) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("todo", id)
	}
	return err
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fe.Field())
		}
		return apperr.ValidationFields(fields...)
	}
	return apperr.Validation(err.Error())
}

func toResponse(todo domain.Todo) TodoResponse {
	return TodoResponse{
		ID:               todo.ID,
		Title:            todo.Title,
		Description:      todo.Description,
		CreationTime:     todo.CreationTime,
		CompletionTime:   todo.CompletionTime,
		CompletionStatus: todo.CompletionStatus,
		EndingNote:       todo.EndingNote,
	}
}

func toResponses(todos []domain.Todo) []TodoResponse {
	responses := make([]TodoResponse, 0, len(todos))
	for _, todo := range todos {
		responses = append(responses, toResponse(todo))
	}
	return responses
}
