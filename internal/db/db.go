package db

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/taskstack/taskboard/internal/validation"
)

const descriptionLimit = 500

type DB struct {
	db *gorm.DB
}

func NewDB(db *gorm.DB) *DB {
	return &DB{db: db}
}

// Migrate creates or updates the schema for every entity.
func (d *DB) Migrate() error {
	return d.db.AutoMigrate(
		&User{},
		&Category{},
		&Project{},
		&Task{},
		&Comment{},
		&Attachment{},
	)
}

// TaskInput is the payload accepted by CreateTask. Priority and Status
// fall back to their defaults when empty.
type TaskInput struct {
	Title       string
	Description string
	Priority    string
	Status      string
	DueDate     *time.Time
	ProjectID   *uint
	ParentID    *uint
}

// TaskPatch carries a partial update: nil fields keep their prior value.
type TaskPatch struct {
	Title       *string
	Description *string
	Priority    *string
	Status      *string
	Progress    *int
	DueDate     *time.Time
	ProjectID   *uint
}

// CreateTask validates the input, resolves the default owner and
// category, and persists the task in a single transaction.
func (d *DB) CreateTask(in TaskInput) (*Task, error) {
	title := strings.TrimSpace(in.Title)
	priority := strings.ToLower(in.Priority)
	if priority == "" {
		priority = PRIORITY_MEDIUM
	}
	status := strings.ToLower(in.Status)
	if status == "" {
		status = TASK_PENDING
	}

	if err := validationError(validation.Task(title, priority, status)); err != nil {
		return nil, err
	}

	task := &Task{
		Title:       title,
		Description: truncate(strings.TrimSpace(in.Description), descriptionLimit),
		Priority:    priority,
		Status:      status,
		DueDate:     in.DueDate,
		ProjectID:   in.ProjectID,
		ParentID:    in.ParentID,
	}

	err := d.db.Transaction(func(tx *gorm.DB) error {
		owner := &User{}
		if err := tx.Order("id").First(owner).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrDefaultsMissing
			}
			return err
		}

		category := &Category{}
		if err := tx.Order("id").First(category).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrDefaultsMissing
			}
			return err
		}

		task.UserID = owner.ID
		task.CategoryID = category.ID

		return tx.Create(task).Error
	})
	if err != nil {
		return nil, err
	}

	return d.GetTask(task.ID)
}

// GetTask loads one task with its related user, category and project.
func (d *DB) GetTask(id uint) (*Task, error) {
	task := &Task{}

	err := d.db.Preload("User").Preload("Category").Preload("Project").First(task, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return task, nil
}

// ListTasks returns every task, newest first.
func (d *DB) ListTasks() ([]Task, error) {
	tasks := make([]Task, 0)

	err := d.db.Preload("User").Preload("Category").Preload("Project").
		Order("created_at DESC, id DESC").Find(&tasks).Error
	if err != nil {
		return nil, err
	}

	return tasks, nil
}

// UpdateTask applies a partial update: omitted fields keep their prior
// value, the merged record is revalidated, and updated_at advances.
func (d *DB) UpdateTask(id uint, patch TaskPatch) (*Task, error) {
	err := d.db.Transaction(func(tx *gorm.DB) error {
		task := &Task{}
		if err := tx.First(task, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if patch.Title != nil {
			task.Title = strings.TrimSpace(*patch.Title)
		}
		if patch.Description != nil {
			task.Description = truncate(strings.TrimSpace(*patch.Description), descriptionLimit)
		}
		if patch.Priority != nil {
			task.Priority = strings.ToLower(*patch.Priority)
		}
		if patch.Status != nil {
			task.Status = strings.ToLower(*patch.Status)
		}
		if patch.Progress != nil {
			task.Progress = *patch.Progress
		}
		if patch.DueDate != nil {
			task.DueDate = patch.DueDate
		}
		if patch.ProjectID != nil {
			task.ProjectID = patch.ProjectID
		}

		violations := validation.Task(task.Title, task.Priority, task.Status)
		if patch.Progress != nil && !validation.Progress(task.Progress) {
			violations = append(violations, "progress must be between 0 and 100")
		}
		if err := validationError(violations); err != nil {
			return err
		}

		return tx.Save(task).Error
	})
	if err != nil {
		return nil, err
	}

	return d.GetTask(id)
}

// DeleteTask removes the task and its comments and attachments in one
// transaction, returning the deleted title for the confirmation message.
func (d *DB) DeleteTask(id uint) (string, error) {
	var title string

	err := d.db.Transaction(func(tx *gorm.DB) error {
		task := &Task{}
		if err := tx.First(task, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		title = task.Title

		if err := tx.Where("task_id = ?", id).Delete(&Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", id).Delete(&Attachment{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&Task{}).Where("parent_id = ?", id).Update("parent_id", nil).Error; err != nil {
			return err
		}

		return tx.Delete(task).Error
	})
	if err != nil {
		return "", err
	}

	return title, nil
}

// RelCounts holds the per-task related-row counts used by response
// shaping instead of embedding the collections themselves.
type RelCounts struct {
	Comments    int64
	Attachments int64
}

// CountTaskRelations returns comment and attachment counts for the given
// task ids in two grouped queries.
func (d *DB) CountTaskRelations(taskIDs []uint) (map[uint]RelCounts, error) {
	counts := make(map[uint]RelCounts, len(taskIDs))
	if len(taskIDs) == 0 {
		return counts, nil
	}

	type row struct {
		TaskID uint
		N      int64
	}

	var commentRows []row
	err := d.db.Model(&Comment{}).Select("task_id, count(*) as n").
		Where("task_id IN ?", taskIDs).Group("task_id").Scan(&commentRows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range commentRows {
		c := counts[r.TaskID]
		c.Comments = r.N
		counts[r.TaskID] = c
	}

	var attachmentRows []row
	err = d.db.Model(&Attachment{}).Select("task_id, count(*) as n").
		Where("task_id IN ?", taskIDs).Group("task_id").Scan(&attachmentRows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range attachmentRows {
		c := counts[r.TaskID]
		c.Attachments = r.N
		counts[r.TaskID] = c
	}

	return counts, nil
}

// truncate cuts s to at most limit characters, never splitting a rune.
func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}
