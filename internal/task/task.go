package task

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"taskboard/internal/store"
	"taskboard/pkg/mq"
)

// Priority values a task may carry.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// ValidationError marks input the caller can fix; the HTTP layer maps it to 400.
type ValidationError string

func (e ValidationError) Error() string { return string(e) }

// CreateInput carries the accepted fields for a new task. Description and
// Priority are optional; empty values take their defaults.
type CreateInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

// UpdateInput is a partial update: nil means the field was not supplied and
// keeps its prior value.
type UpdateInput struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
	Priority    *string `json:"priority"`
}

func (in UpdateInput) empty() bool {
	return in.Title == nil && in.Description == nil && in.Completed == nil && in.Priority == nil
}

// Manager owns task validation and the CRUD operations over the store.
type Manager struct {
	st  *store.Store
	pub mq.Publisher
}

func NewManager(st *store.Store) *Manager {
	return &Manager{st: st, pub: mq.Noop{}}
}

// WithPublisher routes lifecycle events through p instead of the default Noop.
func (m *Manager) WithPublisher(p mq.Publisher) *Manager {
	m.pub = p
	return m
}

func (m *Manager) List(ctx context.Context) ([]store.Task, error) {
	all, err := m.st.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return all, nil
}

func (m *Manager) Get(ctx context.Context, id int64) (store.Task, error) {
	return m.st.Get(ctx, id)
}

func (m *Manager) Create(ctx context.Context, in CreateInput) (store.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return store.Task{}, ValidationError("title required")
	}
	priority := in.Priority
	if priority == "" {
		priority = PriorityMedium
	}
	if !ValidPriority(priority) {
		return store.Task{}, ValidationError("invalid priority")
	}

	now := time.Now().UTC()
	id, err := m.st.Insert(ctx, store.Task{
		Title:       title,
		Description: in.Description,
		Priority:    priority,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return store.Task{}, fmt.Errorf("insert task: %w", err)
	}
	// Re-read instead of trusting the in-memory copy, so the caller sees
	// exactly what the row holds.
	created, err := m.st.Get(ctx, id)
	if err != nil {
		return store.Task{}, fmt.Errorf("read created task: %w", err)
	}
	m.publish("tasks.created", created)
	return created, nil
}

func (m *Manager) Update(ctx context.Context, id int64, in UpdateInput) (store.Task, error) {
	cur, err := m.st.Get(ctx, id)
	if err != nil {
		return store.Task{}, err
	}

	if in.Title != nil && strings.TrimSpace(*in.Title) == "" {
		return store.Task{}, ValidationError("title required")
	}
	if in.Priority != nil && !ValidPriority(*in.Priority) {
		return store.Task{}, ValidationError("invalid priority")
	}
	if in.empty() {
		return store.Task{}, ValidationError("no fields to update")
	}

	if in.Title != nil {
		cur.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		cur.Description = *in.Description
	}
	if in.Completed != nil {
		cur.Completed = *in.Completed
	}
	if in.Priority != nil {
		cur.Priority = *in.Priority
	}
	cur.UpdatedAt = time.Now().UTC()

	if err := m.st.Update(ctx, cur); err != nil {
		return store.Task{}, fmt.Errorf("update task: %w", err)
	}
	updated, err := m.st.Get(ctx, id)
	if err != nil {
		return store.Task{}, fmt.Errorf("read updated task: %w", err)
	}
	m.publish("tasks.updated", updated)
	return updated, nil
}

// Delete removes the task and returns it as it existed before removal.
func (m *Manager) Delete(ctx context.Context, id int64) (store.Task, error) {
	snapshot, err := m.st.Get(ctx, id)
	if err != nil {
		return store.Task{}, err
	}
	if err := m.st.Delete(ctx, id); err != nil {
		return store.Task{}, fmt.Errorf("delete task: %w", err)
	}
	m.publish("tasks.deleted", snapshot)
	return snapshot, nil
}

func (m *Manager) publish(topic string, t store.Task) {
	b, err := json.Marshal(t)
	if err != nil {
		return
	}
	if err := m.pub.Publish(topic, b); err != nil {
		log.Printf("publish %s: %v", topic, err)
	}
}
