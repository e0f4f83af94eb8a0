package api

import (
	"time"

	"github.com/taskstack/taskboard/internal/db"
	"github.com/taskstack/taskboard/internal/utils"
)

// Payload shaping: own scalar fields, RFC3339 timestamps (null when
// absent), denormalized related names resolved through explicit
// preloads, and counts of related collections instead of the records.

type TaskPayload struct {
	ID              uint     `json:"id"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Status          string   `json:"status"`
	Priority        string   `json:"priority"`
	Progress        int      `json:"progress"`
	CreatedAt       string   `json:"created_at"`
	UpdatedAt       string   `json:"updated_at"`
	StartedAt       *string  `json:"started_at"`
	CompletedAt     *string  `json:"completed_at"`
	DueDate         *string  `json:"due_date"`
	EstimatedHours  *float64 `json:"estimated_hours"`
	WorkedHours     float64  `json:"worked_hours"`
	UserID          uint     `json:"user_id"`
	CategoryID      uint     `json:"category_id"`
	ProjectID       *uint    `json:"project_id"`
	ParentID        *uint    `json:"parent_id"`
	UserName        string   `json:"user_name"`
	CategoryName    string   `json:"category_name"`
	ProjectName     *string  `json:"project_name"`
	CommentCount    int64    `json:"comment_count"`
	AttachmentCount int64    `json:"attachment_count"`
	Overdue         bool     `json:"overdue"`
	DaysUntilDue    *int     `json:"days_until_due"`
}

func taskPayload(t *db.Task, counts db.RelCounts, now time.Time) TaskPayload {
	p := TaskPayload{
		ID:              t.ID,
		Title:           t.Title,
		Description:     t.Description,
		Status:          t.Status,
		Priority:        t.Priority,
		Progress:        t.Progress,
		CreatedAt:       formatTime(t.CreatedAt),
		UpdatedAt:       formatTime(t.UpdatedAt),
		StartedAt:       formatTimePtr(t.StartedAt),
		CompletedAt:     formatTimePtr(t.CompletedAt),
		DueDate:         formatDatePtr(t.DueDate),
		EstimatedHours:  t.EstimatedHours,
		WorkedHours:     t.WorkedHours,
		UserID:          t.UserID,
		CategoryID:      t.CategoryID,
		ProjectID:       t.ProjectID,
		ParentID:        t.ParentID,
		UserName:        t.User.Name,
		CategoryName:    t.Category.Name,
		CommentCount:    counts.Comments,
		AttachmentCount: counts.Attachments,
		Overdue:         t.IsOverdue(now),
	}
	if t.Project != nil {
		p.ProjectName = &t.Project.Name
	}
	if days, ok := t.DaysUntilDue(now); ok {
		p.DaysUntilDue = &days
	}
	return p
}

type UserPayload struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"created_at"`
	TaskCount int64  `json:"task_count"`
}

func userPayload(u *db.User, taskCount int64) UserPayload {
	return UserPayload{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Active:    u.Active,
		CreatedAt: formatTime(u.CreatedAt),
		TaskCount: taskCount,
	}
}

type CategoryPayload struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
	Icon        string `json:"icon"`
	Active      bool   `json:"active"`
	TaskCount   int64  `json:"task_count"`
}

func categoryPayload(c *db.Category, taskCount int64) CategoryPayload {
	return CategoryPayload{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Color:       c.Color,
		Icon:        c.Icon,
		Active:      c.Active,
		TaskCount:   taskCount,
	}
}

type ProjectPayload struct {
	ID              uint    `json:"id"`
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	Status          string  `json:"status"`
	Priority        string  `json:"priority"`
	Progress        int     `json:"progress"`
	StartDate       *string `json:"start_date"`
	PlannedEndDate  *string `json:"planned_end_date"`
	ActualEndDate   *string `json:"actual_end_date"`
	ResponsibleName *string `json:"responsible_name"`
	TaskCount       int64   `json:"task_count"`
}

func projectPayload(p *db.Project, taskCount int64) ProjectPayload {
	out := ProjectPayload{
		ID:             p.ID,
		Name:           p.Name,
		Description:    p.Description,
		Status:         p.Status,
		Priority:       p.Priority,
		Progress:       p.Progress,
		StartDate:      formatDatePtr(p.StartDate),
		PlannedEndDate: formatDatePtr(p.PlannedEndDate),
		ActualEndDate:  formatDatePtr(p.ActualEndDate),
		TaskCount:      taskCount,
	}
	if p.Responsible != nil {
		out.ResponsibleName = &p.Responsible.Name
	}
	return out
}

type CommentPayload struct {
	ID         uint   `json:"id"`
	Body       string `json:"body"`
	Type       string `json:"type"`
	Private    bool   `json:"private"`
	CreatedAt  string `json:"created_at"`
	UserName   string `json:"user_name"`
	TaskID     uint   `json:"task_id"`
	ParentID   *uint  `json:"parent_id"`
	ReplyCount int64  `json:"reply_count"`
}

func commentPayload(c *db.Comment, replyCount int64) CommentPayload {
	return CommentPayload{
		ID:         c.ID,
		Body:       c.Body,
		Type:       c.Type,
		Private:    c.Private,
		CreatedAt:  formatTime(c.CreatedAt),
		UserName:   c.User.Name,
		TaskID:     c.TaskID,
		ParentID:   c.ParentID,
		ReplyCount: replyCount,
	}
}

type AttachmentPayload struct {
	ID           uint   `json:"id"`
	StoredName   string `json:"stored_name"`
	OriginalName string `json:"original_name"`
	MimeType     string `json:"mime_type"`
	SizeBytes    int64  `json:"size_bytes"`
	SizeHuman    string `json:"size_human"`
	UploadedAt   string `json:"uploaded_at"`
	UserName     string `json:"user_name"`
	TaskID       uint   `json:"task_id"`
	Active       bool   `json:"active"`
}

func attachmentPayload(a *db.Attachment) AttachmentPayload {
	return AttachmentPayload{
		ID:           a.ID,
		StoredName:   a.StoredName,
		OriginalName: a.OriginalName,
		MimeType:     a.MimeType,
		SizeBytes:    a.SizeBytes,
		SizeHuman:    utils.HumanByteSize(a.SizeBytes),
		UploadedAt:   formatTime(a.UploadedAt),
		UserName:     a.User.Name,
		TaskID:       a.TaskID,
		Active:       a.Active,
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

func formatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format("2006-01-02")
	return &s
}
