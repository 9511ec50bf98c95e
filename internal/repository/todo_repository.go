package repository

import (
	"context"

	"gorm.io/gorm"

	"todo-records/internal/domain"
)

// TodoRepository defines the data operations for todos. Transaction runs fn
// against a repository bound to one DB transaction, so a read-modify-write
// commits as a single unit.
type TodoRepository interface {
	Create(ctx context.Context, todo *domain.Todo) error
	FindByID(ctx context.Context, id int64) (*domain.Todo, error)
	GetAll(ctx context.Context) ([]domain.Todo, error)
	Save(ctx context.Context, todo *domain.Todo) error
	Delete(ctx context.Context, id int64) error
	Transaction(ctx context.Context, fn func(TodoRepository) error) error
}

// gormTodoRepository implements TodoRepository using GORM
type gormTodoRepository struct {
	db *gorm.DB
}

// NewGormTodoRepository creates a new GORM todo repository
func NewGormTodoRepository(db *gorm.DB) TodoRepository {
	return &gormTodoRepository{db: db}
}

// Create inserts the todo and fills in its assigned ID.
func (r *gormTodoRepository) Create(ctx context.Context, todo *domain.Todo) error {
	return r.db.WithContext(ctx).Create(todo).Error
}

// FindByID retrieves a todo by its ID. Returns gorm.ErrRecordNotFound when
// no row matches; the service maps that to the domain not-found error.
func (r *gormTodoRepository) FindByID(ctx context.Context, id int64) (*domain.Todo, error) {
	var todo domain.Todo
	result := r.db.WithContext(ctx).First(&todo, id)
	if result.Error != nil {
		return nil, result.Error
	}
	return &todo, nil
}

// GetAll retrieves all todos in insertion (id) order.
func (r *gormTodoRepository) GetAll(ctx context.Context) ([]domain.Todo, error) {
	var todos []domain.Todo
	result := r.db.WithContext(ctx).Order("id").Find(&todos)
	if result.Error != nil {
		return nil, result.Error
	}
	return todos, nil
}

// Save writes every field of an existing todo.
func (r *gormTodoRepository) Save(ctx context.Context, todo *domain.Todo) error {
	return r.db.WithContext(ctx).Save(todo).Error
}

// Delete removes a todo permanently. Returns gorm.ErrRecordNotFound when the
// id does not exist, so delete-on-unknown-id surfaces as 404 upstream.
func (r *gormTodoRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&domain.Todo{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Transaction runs fn inside one DB transaction.
func (r *gormTodoRepository) Transaction(ctx context.Context, fn func(TodoRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTodoRepository{db: tx})
	})
}
