package db

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/taskstack/taskboard/internal/validation"
)

const (
	DefaultUserName  = "Default User"
	DefaultUserEmail = "user@example.com"
	DefaultCategory  = "General"
)

// EnsureDefaults creates the default user and category when their tables
// are empty, so task creation can always resolve an owner and category.
// Safe to run on every startup.
func (d *DB) EnsureDefaults() error {
	return d.db.Transaction(func(tx *gorm.DB) error {
		var users int64
		if err := tx.Model(&User{}).Count(&users).Error; err != nil {
			return err
		}
		if users == 0 {
			if err := tx.Create(&User{Name: DefaultUserName, Email: DefaultUserEmail, Active: true}).Error; err != nil {
				return err
			}
		}

		var categories int64
		if err := tx.Model(&Category{}).Count(&categories).Error; err != nil {
			return err
		}
		if categories == 0 {
			if err := tx.Create(&Category{Name: DefaultCategory, Active: true}).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

func (d *DB) CreateUser(name, email string) (*User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	var violations []string
	if name == "" {
		violations = append(violations, "name is required")
	}
	if !validation.Email(email) {
		violations = append(violations, "email is not valid")
	}
	if err := validationError(violations); err != nil {
		return nil, err
	}

	user := &User{Name: name, Email: email, Active: true}
	if err := d.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(user).Error
	}); err != nil {
		return nil, err
	}

	return user, nil
}

func (d *DB) ListUsers() ([]User, error) {
	users := make([]User, 0)
	if err := d.db.Order("id").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (d *DB) GetUser(id uint) (*User, error) {
	user := &User{}
	err := d.db.First(user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser removes the user and cascades to their tasks, comments and
// attachments in one transaction.
func (d *DB) DeleteUser(id uint) (string, error) {
	var name string

	err := d.db.Transaction(func(tx *gorm.DB) error {
		user := &User{}
		if err := tx.First(user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		name = user.Name

		var taskIDs []uint
		if err := tx.Model(&Task{}).Where("user_id = ?", id).Pluck("id", &taskIDs).Error; err != nil {
			return err
		}
		if len(taskIDs) > 0 {
			if err := tx.Where("task_id IN ?", taskIDs).Delete(&Comment{}).Error; err != nil {
				return err
			}
			if err := tx.Where("task_id IN ?", taskIDs).Delete(&Attachment{}).Error; err != nil {
				return err
			}
			if err := tx.Model(&Task{}).Where("parent_id IN ?", taskIDs).Update("parent_id", nil).Error; err != nil {
				return err
			}
			if err := tx.Where("user_id = ?", id).Delete(&Task{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("user_id = ?", id).Delete(&Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&Attachment{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&Project{}).Where("responsible_id = ?", id).Update("responsible_id", nil).Error; err != nil {
			return err
		}

		return tx.Delete(user).Error
	})
	if err != nil {
		return "", err
	}

	return name, nil
}

type CategoryInput struct {
	Name        string
	Description string
	Color       string
	Icon        string
}

func (d *DB) CreateCategory(in CategoryInput) (*Category, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, validationError([]string{"name is required"})
	}

	category := &Category{
		Name:        name,
		Description: in.Description,
		Color:       in.Color,
		Icon:        in.Icon,
		Active:      true,
	}
	if err := d.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(category).Error
	}); err != nil {
		return nil, err
	}

	return category, nil
}

func (d *DB) ListCategories() ([]Category, error) {
	categories := make([]Category, 0)
	if err := d.db.Order("id").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// DeleteCategory refuses to delete while tasks reference the category,
// so no task is ever silently orphaned.
func (d *DB) DeleteCategory(id uint) (string, error) {
	var name string

	err := d.db.Transaction(func(tx *gorm.DB) error {
		category := &Category{}
		if err := tx.First(category, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		name = category.Name

		var refs int64
		if err := tx.Model(&Task{}).Where("category_id = ?", id).Count(&refs).Error; err != nil {
			return err
		}
		if refs > 0 {
			return ErrCategoryInUse
		}

		return tx.Delete(category).Error
	})
	if err != nil {
		return "", err
	}

	return name, nil
}

type ProjectInput struct {
	Name          string
	Description   string
	Status        string
	Priority      string
	ResponsibleID *uint
}

type ProjectPatch struct {
	Name        *string
	Description *string
	Status      *string
	Priority    *string
	Progress    *int
}

func (d *DB) CreateProject(in ProjectInput) (*Project, error) {
	name := strings.TrimSpace(in.Name)
	status := strings.ToLower(in.Status)
	if status == "" {
		status = PROJECT_ACTIVE
	}
	priority := strings.ToLower(in.Priority)
	if priority == "" {
		priority = PRIORITY_MEDIUM
	}

	violations := validation.Project(status, priority, 0)
	if name == "" {
		violations = append(violations, "name is required")
	}
	if err := validationError(violations); err != nil {
		return nil, err
	}

	project := &Project{
		Name:          name,
		Description:   in.Description,
		Status:        status,
		Priority:      priority,
		ResponsibleID: in.ResponsibleID,
	}
	if err := d.db.Transaction(func(tx *gorm.DB) error {
		if in.ResponsibleID != nil {
			if err := tx.First(&User{}, *in.ResponsibleID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrNotFound
				}
				return err
			}
		}
		return tx.Create(project).Error
	}); err != nil {
		return nil, err
	}

	return d.GetProject(project.ID)
}

func (d *DB) GetProject(id uint) (*Project, error) {
	project := &Project{}
	err := d.db.Preload("Responsible").First(project, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return project, nil
}

func (d *DB) ListProjects() ([]Project, error) {
	projects := make([]Project, 0)
	if err := d.db.Preload("Responsible").Order("created_at DESC, id DESC").Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

func (d *DB) UpdateProject(id uint, patch ProjectPatch) (*Project, error) {
	err := d.db.Transaction(func(tx *gorm.DB) error {
		project := &Project{}
		if err := tx.First(project, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if patch.Name != nil {
			project.Name = strings.TrimSpace(*patch.Name)
		}
		if patch.Description != nil {
			project.Description = *patch.Description
		}
		if patch.Status != nil {
			project.Status = strings.ToLower(*patch.Status)
		}
		if patch.Priority != nil {
			project.Priority = strings.ToLower(*patch.Priority)
		}
		if patch.Progress != nil {
			project.Progress = *patch.Progress
		}

		violations := validation.Project(project.Status, project.Priority, project.Progress)
		if project.Name == "" {
			violations = append(violations, "name is required")
		}
		if err := validationError(violations); err != nil {
			return err
		}

		return tx.Save(project).Error
	})
	if err != nil {
		return nil, err
	}

	return d.GetProject(id)
}

type CommentInput struct {
	Body     string
	Type     string
	Private  bool
	ParentID *uint
}

// CreateComment attaches a comment to a task, owned by the default user
// (the CRUD surface has no authentication to resolve a real author).
func (d *DB) CreateComment(taskID uint, in CommentInput) (*Comment, error) {
	body := strings.TrimSpace(in.Body)
	ctype := strings.ToLower(in.Type)
	if ctype == "" {
		ctype = COMMENT_TYPE_COMMENT
	}

	var violations []string
	if body == "" {
		violations = append(violations, "body is required")
	}
	if !validation.CommentType(ctype) {
		violations = append(violations, "type must be one of: comment, note, log, change")
	}
	if err := validationError(violations); err != nil {
		return nil, err
	}

	comment := &Comment{Body: body, Type: ctype, Private: in.Private, TaskID: taskID, ParentID: in.ParentID}

	err := d.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&Task{}, taskID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		author := &User{}
		if err := tx.Order("id").First(author).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrDefaultsMissing
			}
			return err
		}
		comment.UserID = author.ID

		if in.ParentID != nil {
			if err := tx.Where("task_id = ?", taskID).First(&Comment{}, *in.ParentID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrNotFound
				}
				return err
			}
		}

		return tx.Create(comment).Error
	})
	if err != nil {
		return nil, err
	}

	if err := d.db.Preload("User").First(comment, comment.ID).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// ListComments returns a task's comments oldest first, plus a reply
// count per comment id resolved through the parent index, never through
// embedded back-references.
func (d *DB) ListComments(taskID uint) ([]Comment, map[uint]int64, error) {
	if err := d.db.First(&Task{}, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}

	comments := make([]Comment, 0)
	err := d.db.Preload("User").Where("task_id = ?", taskID).Order("created_at, id").Find(&comments).Error
	if err != nil {
		return nil, nil, err
	}

	type row struct {
		ParentID uint
		N        int64
	}
	var rows []row
	err = d.db.Model(&Comment{}).Select("parent_id, count(*) as n").
		Where("task_id = ? AND parent_id IS NOT NULL", taskID).Group("parent_id").Scan(&rows).Error
	if err != nil {
		return nil, nil, err
	}

	replies := make(map[uint]int64, len(rows))
	for _, r := range rows {
		replies[r.ParentID] = r.N
	}

	return comments, replies, nil
}

// CreateAttachment records attachment metadata for a task, owned by the
// default user. The caller is responsible for having stored the file.
func (d *DB) CreateAttachment(taskID uint, att *Attachment) (*Attachment, error) {
	var violations []string
	if att.StoredName == "" || att.OriginalName == "" {
		violations = append(violations, "file name is required")
	}
	if att.StoragePath == "" {
		violations = append(violations, "storage path is required")
	}
	if err := validationError(violations); err != nil {
		return nil, err
	}

	err := d.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&Task{}, taskID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		owner := &User{}
		if err := tx.Order("id").First(owner).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrDefaultsMissing
			}
			return err
		}

		att.TaskID = taskID
		att.UserID = owner.ID
		att.Active = true

		return tx.Create(att).Error
	})
	if err != nil {
		return nil, err
	}

	if err := d.db.Preload("User").First(att, att.ID).Error; err != nil {
		return nil, err
	}
	return att, nil
}

func (d *DB) ListAttachments(taskID uint) ([]Attachment, error) {
	if err := d.db.First(&Task{}, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	attachments := make([]Attachment, 0)
	err := d.db.Preload("User").Where("task_id = ?", taskID).Order("uploaded_at, id").Find(&attachments).Error
	if err != nil {
		return nil, err
	}
	return attachments, nil
}

// CountTasksBy returns task counts grouped by the given foreign key
// column (user_id, category_id or project_id).
func (d *DB) CountTasksBy(column string) (map[uint]int64, error) {
	switch column {
	case "user_id", "category_id", "project_id":
	default:
		return nil, errors.New("unsupported grouping column: " + column)
	}

	type row struct {
		Key uint
		N   int64
	}
	var rows []row
	err := d.db.Model(&Task{}).Select(column+" as key, count(*) as n").
		Where(column + " IS NOT NULL").Group(column).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[uint]int64, len(rows))
	for _, r := range rows {
		counts[r.Key] = r.N
	}
	return counts, nil
}

// Stats aggregates the counts served by /api/status.
type Stats struct {
	Users       int64
	Categories  int64
	Projects    int64
	Tasks       int64
	Comments    int64
	Attachments int64
	ByStatus    map[string]int64
	ByPriority  map[string]int64
}

func (d *DB) Stats() (*Stats, error) {
	stats := &Stats{
		ByStatus:   make(map[string]int64),
		ByPriority: make(map[string]int64),
	}

	totals := []struct {
		model any
		dst   *int64
	}{
		{&User{}, &stats.Users},
		{&Category{}, &stats.Categories},
		{&Project{}, &stats.Projects},
		{&Task{}, &stats.Tasks},
		{&Comment{}, &stats.Comments},
		{&Attachment{}, &stats.Attachments},
	}
	for _, t := range totals {
		if err := d.db.Model(t.model).Count(t.dst).Error; err != nil {
			return nil, err
		}
	}

	for _, status := range validation.TaskStatuses {
		var n int64
		if err := d.db.Model(&Task{}).Where("status = ?", status).Count(&n).Error; err != nil {
			return nil, err
		}
		stats.ByStatus[status] = n
	}
	for _, priority := range validation.Priorities {
		var n int64
		if err := d.db.Model(&Task{}).Where("priority = ?", priority).Count(&n).Error; err != nil {
			return nil, err
		}
		stats.ByPriority[priority] = n
	}

	return stats, nil
}
