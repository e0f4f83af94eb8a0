package db

import "time"

const (
	TASK_PENDING     = "pending"
	TASK_IN_PROGRESS = "in_progress"
	TASK_DONE        = "done"
	TASK_CANCELLED   = "cancelled"
)

const (
	PRIORITY_LOW      = "low"
	PRIORITY_MEDIUM   = "medium"
	PRIORITY_HIGH     = "high"
	PRIORITY_CRITICAL = "critical"
)

const (
	PROJECT_ACTIVE    = "active"
	PROJECT_PAUSED    = "paused"
	PROJECT_COMPLETED = "completed"
	PROJECT_CANCELLED = "cancelled"
)

const (
	COMMENT_TYPE_COMMENT = "comment"
	COMMENT_TYPE_NOTE    = "note"
	COMMENT_TYPE_LOG     = "log"
	COMMENT_TYPE_CHANGE  = "change"
)

type User struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:100;not null"`
	Email     string `gorm:"size:150;unique;not null"`
	Active    bool   `gorm:"default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Tasks       []Task       `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Comments    []Comment    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Attachments []Attachment `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Projects    []Project    `gorm:"foreignKey:ResponsibleID;constraint:OnDelete:SET NULL"`
}

type Category struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"size:80;unique;not null"`
	Description string
	Color       string `gorm:"size:7;default:#6366f1"`
	Icon        string `gorm:"size:50;default:folder"`
	Active      bool   `gorm:"default:true"`
	CreatedAt   time.Time

	// No cascade here: a task must never be orphaned by a category
	// deletion. DeleteCategory rejects while tasks still reference it.
	Tasks []Task `gorm:"foreignKey:CategoryID"`
}

type Project struct {
	ID             uint   `gorm:"primaryKey"`
	Name           string `gorm:"size:120;not null"`
	Description    string
	Status         string `gorm:"size:20;default:active"`
	Priority       string `gorm:"size:10;default:medium"`
	Progress       int    `gorm:"default:0"`
	StartDate      *time.Time
	PlannedEndDate *time.Time
	ActualEndDate  *time.Time
	ResponsibleID  *uint
	Responsible    *User
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Tasks []Task `gorm:"foreignKey:ProjectID"`
}

type Task struct {
	ID             uint   `gorm:"primaryKey"`
	Title          string `gorm:"size:200;not null"`
	Description    string `gorm:"size:500"`
	Status         string `gorm:"size:20;default:pending"`
	Priority       string `gorm:"size:10;default:medium"`
	Progress       int    `gorm:"default:0"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
	StartedAt      *time.Time
	CompletedAt    *time.Time
	DueDate        *time.Time
	EstimatedHours *float64
	WorkedHours    float64 `gorm:"default:0"`

	UserID     uint `gorm:"not null"`
	User       User
	CategoryID uint `gorm:"not null"`
	Category   Category
	ProjectID  *uint
	Project    *Project
	// Self-reference for subtasks. Nothing prevents a parent chain from
	// forming a cycle; callers get exactly what they stored.
	ParentID *uint
	Parent   *Task `gorm:"foreignKey:ParentID"`

	Subtasks    []Task       `gorm:"foreignKey:ParentID"`
	Comments    []Comment    `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE"`
	Attachments []Attachment `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE"`
}

// IsOverdue reports whether the task's due date has passed. A task due
// today is not overdue, and tasks in a terminal status never are.
func (t *Task) IsOverdue(today time.Time) bool {
	if t.DueDate == nil {
		return false
	}
	if t.Status == TASK_DONE || t.Status == TASK_CANCELLED {
		return false
	}
	return startOfDay(*t.DueDate).Before(startOfDay(today))
}

// DaysUntilDue returns the signed day count between today and the due
// date (negative when overdue). ok is false when no due date is set.
func (t *Task) DaysUntilDue(today time.Time) (days int, ok bool) {
	if t.DueDate == nil {
		return 0, false
	}
	delta := startOfDay(*t.DueDate).Sub(startOfDay(today))
	return int(delta / (24 * time.Hour)), true
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type Comment struct {
	ID        uint   `gorm:"primaryKey"`
	Body      string `gorm:"not null"`
	Type      string `gorm:"size:20;default:comment"`
	Private   bool   `gorm:"default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time

	UserID   uint `gorm:"not null"`
	User     User
	TaskID   uint `gorm:"not null"`
	Task     Task
	ParentID *uint
	Parent   *Comment `gorm:"foreignKey:ParentID"`

	Replies []Comment `gorm:"foreignKey:ParentID"`
}

type Attachment struct {
	ID           uint      `gorm:"primaryKey"`
	StoredName   string    `gorm:"size:255;not null"`
	OriginalName string    `gorm:"size:255;not null"`
	MimeType     string    `gorm:"size:100"`
	SizeBytes    int64
	StoragePath  string    `gorm:"not null"`
	UploadedAt   time.Time `gorm:"autoCreateTime"`
	Active       bool      `gorm:"default:true"`

	UserID uint `gorm:"not null"`
	User   User
	TaskID uint `gorm:"not null"`
	Task   Task
}
