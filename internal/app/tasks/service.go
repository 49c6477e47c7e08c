package tasks

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/PabloGalante/serene/internal/app/activity"
	"github.com/PabloGalante/serene/internal/app/insights"
	"github.com/PabloGalante/serene/internal/domain"
	"github.com/PabloGalante/serene/internal/observability"
)

const DefaultCategory = "Personal"

type Service struct {
	store    domain.DocumentStore
	insights *insights.Service
	now      func() time.Time

	mu     sync.Mutex
	lastID int64
}

func NewService(store domain.DocumentStore, ai domain.AIClient) *Service {
	return &Service{
		store:    store,
		insights: insights.NewService(ai),
		now:      time.Now,
	}
}

type CreateInput struct {
	UserID      domain.UserID
	Title       string
	Category    string
	DueDate     string
	Description string
}

// Create stores a new task. Its id is the creation time in milliseconds;
// when no description is given the AI suggests a breakdown.
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Task, error) {
	title := strings.TrimSpace(in.Title)
	if in.UserID == "" || title == "" {
		return nil, fmt.Errorf("task needs a title: %w", domain.ErrInvalidInput)
	}
	if in.DueDate != "" {
		if _, ok := (domain.Task{DueDate: in.DueDate}).Due(time.UTC); !ok {
			return nil, fmt.Errorf("due date %q: %w", in.DueDate, domain.ErrInvalidInput)
		}
	}

	task := domain.Task{
		ID:          s.nextID(),
		Title:       title,
		Category:    cmp.Or(strings.TrimSpace(in.Category), DefaultCategory),
		DueDate:     in.DueDate,
		Description: strings.TrimSpace(in.Description),
	}
	if task.Description == "" {
		task.Description = s.insights.TaskBreakdown(ctx, title)
	}

	if err := s.put(ctx, in.UserID, task); err != nil {
		return nil, err
	}
	observability.LoggerFromContext(ctx).Info("task created", "task_id", task.ID, "category", task.Category)
	return &task, nil
}

// nextID returns the current time in ms, bumped past the last issued id
// so two tasks created in the same millisecond stay distinct.
func (s *Service) nextID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := max(s.now().UnixMilli(), s.lastID+1)
	s.lastID = id
	return strconv.FormatInt(id, 10)
}

type Completion struct {
	Task    domain.Task `json:"task"`
	Insight string      `json:"insight"`
}

// Complete marks a task done with an optional reflection and returns an
// encouraging insight.
func (s *Service) Complete(ctx context.Context, userID domain.UserID, id, reflection string) (*Completion, error) {
	task, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	task.Completed = true
	if r := strings.TrimSpace(reflection); r != "" {
		task.Reflection = r
	}
	if err := s.put(ctx, userID, *task); err != nil {
		return nil, err
	}
	return &Completion{
		Task:    *task,
		Insight: s.insights.TaskInsight(ctx, task.Title, task.Category),
	}, nil
}

func (s *Service) Get(ctx context.Context, userID domain.UserID, id string) (*domain.Task, error) {
	doc, err := s.store.GetOne(ctx, userID, domain.CollectionTasks, id)
	if err != nil {
		return nil, err
	}
	var task domain.Task
	if err := domain.Decode(doc, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// List returns every task, newest first.
func (s *Service) List(ctx context.Context, userID domain.UserID) ([]domain.Task, error) {
	docs, err := s.store.GetAll(ctx, userID, domain.CollectionTasks)
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	tasks, err := domain.DecodeAll[domain.Task](docs)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(tasks, func(a, b domain.Task) int {
		return cmp.Compare(activity.TaskCreatedAt(b), activity.TaskCreatedAt(a))
	})
	return tasks, nil
}

func (s *Service) Delete(ctx context.Context, userID domain.UserID, id string) error {
	return s.store.Delete(ctx, userID, domain.CollectionTasks, id)
}

func (s *Service) put(ctx context.Context, userID domain.UserID, task domain.Task) error {
	doc, err := domain.Encode(task)
	if err != nil {
		return err
	}
	if err := s.store.Put(ctx, userID, domain.CollectionTasks, task.ID, doc); err != nil {
		return fmt.Errorf("save task: %w", err)
	}
	return nil
}
