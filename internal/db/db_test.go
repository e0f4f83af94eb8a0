package db

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *DB {
	t.Helper()

	store := NewDB(CreateTestDB())
	require.NoError(t, store.EnsureDefaults())

	return store
}

func TestEnsureDefaults(t *testing.T) {
	t.Run("creates default user and category on empty database", func(t *testing.T) {
		store := NewDB(CreateTestDB())

		err := store.EnsureDefaults()
		assert.NoError(t, err)

		users, err := store.ListUsers()
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, DefaultUserName, users[0].Name)
		assert.Equal(t, DefaultUserEmail, users[0].Email)
		assert.True(t, users[0].Active)

		categories, err := store.ListCategories()
		require.NoError(t, err)
		require.Len(t, categories, 1)
		assert.Equal(t, DefaultCategory, categories[0].Name)
	})

	t.Run("is idempotent", func(t *testing.T) {
		store := NewDB(CreateTestDB())

		require.NoError(t, store.EnsureDefaults())
		require.NoError(t, store.EnsureDefaults())

		users, err := store.ListUsers()
		require.NoError(t, err)
		assert.Len(t, users, 1)

		categories, err := store.ListCategories()
		require.NoError(t, err)
		assert.Len(t, categories, 1)
	})

	t.Run("does not recreate after user-driven setup", func(t *testing.T) {
		store := NewDB(CreateTestDB())
		_, err := store.CreateUser("Alice", "alice@example.com")
		require.NoError(t, err)

		require.NoError(t, store.EnsureDefaults())

		users, err := store.ListUsers()
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, "Alice", users[0].Name)
	})
}

func TestCreateTask(t *testing.T) {
	t.Run("successful creation with defaults", func(t *testing.T) {
		store := newTestStore(t)

		task, err := store.CreateTask(TaskInput{Title: "Buy milk"})
		assert.NoError(t, err)
		require.NotNil(t, task)
		assert.NotZero(t, task.ID)
		assert.Equal(t, "Buy milk", task.Title)
		assert.Equal(t, PRIORITY_MEDIUM, task.Priority)
		assert.Equal(t, TASK_PENDING, task.Status)
		assert.Equal(t, 0, task.Progress)
		assert.Equal(t, DefaultUserName, task.User.Name)
		assert.Equal(t, DefaultCategory, task.Category.Name)
		assert.False(t, task.CreatedAt.IsZero())
	})

	t.Run("explicit priority and status are kept", func(t *testing.T) {
		store := newTestStore(t)

		task, err := store.CreateTask(TaskInput{Title: "Ship release", Priority: "high", Status: "in_progress"})
		assert.NoError(t, err)
		assert.Equal(t, PRIORITY_HIGH, task.Priority)
		assert.Equal(t, TASK_IN_PROGRESS, task.Status)
	})

	t.Run("values are lowercased before validation", func(t *testing.T) {
		store := newTestStore(t)

		task, err := store.CreateTask(TaskInput{Title: "Mixed case", Priority: "HIGH", Status: "Pending"})
		assert.NoError(t, err)
		assert.Equal(t, PRIORITY_HIGH, task.Priority)
		assert.Equal(t, TASK_PENDING, task.Status)
	})

	t.Run("description longer than 500 characters is truncated", func(t *testing.T) {
		store := newTestStore(t)

		task, err := store.CreateTask(TaskInput{
			Title:       "Long description",
			Description: strings.Repeat("x", 700),
		})
		assert.NoError(t, err)
		assert.Len(t, task.Description, 500)
	})

	t.Run("description limit counts characters not bytes", func(t *testing.T) {
		store := newTestStore(t)

		short := strings.Repeat("ç", 400)
		task, err := store.CreateTask(TaskInput{Title: "Accented short", Description: short})
		assert.NoError(t, err)
		assert.Equal(t, short, task.Description, "description under the limit must be kept intact")

		exact := strings.Repeat("ç", 500)
		task, err = store.CreateTask(TaskInput{Title: "Accented exact", Description: exact})
		assert.NoError(t, err)
		assert.Equal(t, exact, task.Description)

		task, err = store.CreateTask(TaskInput{
			Title:       "Accented long",
			Description: strings.Repeat("ç", 600),
		})
		assert.NoError(t, err)
		assert.Equal(t, 500, utf8.RuneCountInString(task.Description))
		assert.True(t, utf8.ValidString(task.Description))
	})

	t.Run("title shorter than 3 trimmed characters is rejected", func(t *testing.T) {
		store := newTestStore(t)

		task, err := store.CreateTask(TaskInput{Title: "  ab  "})
		assert.Error(t, err)
		assert.Nil(t, task)

		verr := &ValidationError{}
		assert.ErrorAs(t, err, &verr)

		tasks, err := store.ListTasks()
		require.NoError(t, err)
		assert.Empty(t, tasks, "rejected task must not be persisted")
	})

	t.Run("title longer than 100 characters is rejected", func(t *testing.T) {
		store := newTestStore(t)

		_, err := store.CreateTask(TaskInput{Title: strings.Repeat("a", 101)})
		assert.Error(t, err)

		tasks, err := store.ListTasks()
		require.NoError(t, err)
		assert.Empty(t, tasks)
	})

	t.Run("priority outside the enumeration is rejected", func(t *testing.T) {
		store := newTestStore(t)

		_, err := store.CreateTask(TaskInput{Title: "Bad priority", Priority: "urgent"})
		verr := &ValidationError{}
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Error(), "priority")

		tasks, err := store.ListTasks()
		require.NoError(t, err)
		assert.Empty(t, tasks)
	})

	t.Run("status outside the enumeration is rejected", func(t *testing.T) {
		store := newTestStore(t)

		_, err := store.CreateTask(TaskInput{Title: "Bad status", Status: "archived"})
		verr := &ValidationError{}
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Error(), "status")
	})

	t.Run("missing defaults fail with ErrDefaultsMissing", func(t *testing.T) {
		store := NewDB(CreateTestDB())

		_, err := store.CreateTask(TaskInput{Title: "No owner available"})
		assert.ErrorIs(t, err, ErrDefaultsMissing)
	})

	t.Run("ids are unique across creations", func(t *testing.T) {
		store := newTestStore(t)

		seen := make(map[uint]bool)
		for _, title := range []string{"one", "two", "three"} {
			task, err := store.CreateTask(TaskInput{Title: title + " task"})
			require.NoError(t, err)
			assert.False(t, seen[task.ID])
			seen[task.ID] = true
		}
	})
}

func TestGetTask(t *testing.T) {
	t.Run("loads task with related names", func(t *testing.T) {
		store := newTestStore(t)

		created, err := store.CreateTask(TaskInput{Title: "Findable"})
		require.NoError(t, err)

		task, err := store.GetTask(created.ID)
		assert.NoError(t, err)
		assert.Equal(t, created.ID, task.ID)
		assert.Equal(t, DefaultUserName, task.User.Name)
		assert.Equal(t, DefaultCategory, task.Category.Name)
	})

	t.Run("unknown id returns ErrNotFound", func(t *testing.T) {
		store := newTestStore(t)

		task, err := store.GetTask(9999)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Nil(t, task)
	})
}

func TestListTasks(t *testing.T) {
	t.Run("returns tasks newest first", func(t *testing.T) {
		store := newTestStore(t)

		first, err := store.CreateTask(TaskInput{Title: "first task"})
		require.NoError(t, err)
		time.Sleep(5 * time.Millisecond)
		second, err := store.CreateTask(TaskInput{Title: "second task"})
		require.NoError(t, err)

		tasks, err := store.ListTasks()
		assert.NoError(t, err)
		require.Len(t, tasks, 2)
		assert.Equal(t, second.ID, tasks[0].ID)
		assert.Equal(t, first.ID, tasks[1].ID)
	})

	t.Run("order is stable across repeated calls", func(t *testing.T) {
		store := newTestStore(t)

		for _, title := range []string{"alpha", "beta", "gamma"} {
			_, err := store.CreateTask(TaskInput{Title: title})
			require.NoError(t, err)
		}

		firstListing, err := store.ListTasks()
		require.NoError(t, err)
		secondListing, err := store.ListTasks()
		require.NoError(t, err)

		require.Equal(t, len(firstListing), len(secondListing))
		for i := range firstListing {
			assert.Equal(t, firstListing[i].ID, secondListing[i].ID)
		}
	})

	t.Run("empty database lists zero tasks", func(t *testing.T) {
		store := newTestStore(t)

		tasks, err := store.ListTasks()
		assert.NoError(t, err)
		assert.Empty(t, tasks)
	})
}

func TestUpdateTask(t *testing.T) {
	t.Run("partial update keeps unspecified fields", func(t *testing.T) {
		store := newTestStore(t)

		created, err := store.CreateTask(TaskInput{
			Title:       "Original title",
			Description: "Original description",
			Priority:    "high",
		})
		require.NoError(t, err)

		time.Sleep(5 * time.Millisecond)

		status := "in_progress"
		updated, err := store.UpdateTask(created.ID, TaskPatch{Status: &status})
		assert.NoError(t, err)
		assert.Equal(t, "Original title", updated.Title)
		assert.Equal(t, "Original description", updated.Description)
		assert.Equal(t, PRIORITY_HIGH, updated.Priority)
		assert.Equal(t, TASK_IN_PROGRESS, updated.Status)
		assert.True(t, updated.UpdatedAt.After(created.UpdatedAt), "updated_at must advance")
	})

	t.Run("updated description is truncated", func(t *testing.T) {
		store := newTestStore(t)

		created, err := store.CreateTask(TaskInput{Title: "Truncate on update"})
		require.NoError(t, err)

		long := strings.Repeat("y", 600)
		updated, err := store.UpdateTask(created.ID, TaskPatch{Description: &long})
		assert.NoError(t, err)
		assert.Len(t, updated.Description, 500)
	})

	t.Run("invalid patch is rejected and prior values survive", func(t *testing.T) {
		store := newTestStore(t)

		created, err := store.CreateTask(TaskInput{Title: "Keep me intact"})
		require.NoError(t, err)

		bad := "nonsense"
		_, err = store.UpdateTask(created.ID, TaskPatch{Status: &bad})
		verr := &ValidationError{}
		assert.ErrorAs(t, err, &verr)

		task, err := store.GetTask(created.ID)
		require.NoError(t, err)
		assert.Equal(t, TASK_PENDING, task.Status)
	})

	t.Run("progress outside 0-100 is rejected", func(t *testing.T) {
		store := newTestStore(t)

		created, err := store.CreateTask(TaskInput{Title: "Progress bounds"})
		require.NoError(t, err)

		progress := 150
		_, err = store.UpdateTask(created.ID, TaskPatch{Progress: &progress})
		assert.Error(t, err)

		task, err := store.GetTask(created.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, task.Progress)
	})

	t.Run("unknown id returns ErrNotFound", func(t *testing.T) {
		store := newTestStore(t)

		title := "whatever"
		_, err := store.UpdateTask(12345, TaskPatch{Title: &title})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestDeleteTask(t *testing.T) {
	t.Run("removes the task and returns its title", func(t *testing.T) {
		store := newTestStore(t)

		created, err := store.CreateTask(TaskInput{Title: "Doomed task"})
		require.NoError(t, err)

		title, err := store.DeleteTask(created.ID)
		assert.NoError(t, err)
		assert.Equal(t, "Doomed task", title)

		_, err = store.GetTask(created.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("cascades to comments and attachments, sparing category", func(t *testing.T) {
		store := newTestStore(t)

		task, err := store.CreateTask(TaskInput{Title: "Parent of rows"})
		require.NoError(t, err)

		_, err = store.CreateComment(task.ID, CommentInput{Body: "a comment"})
		require.NoError(t, err)
		_, err = store.CreateAttachment(task.ID, &Attachment{
			StoredName:   "abc123.txt",
			OriginalName: "notes.txt",
			StoragePath:  "/tmp/abc123.txt",
		})
		require.NoError(t, err)

		_, err = store.DeleteTask(task.ID)
		require.NoError(t, err)

		stats, err := store.Stats()
		require.NoError(t, err)
		assert.Zero(t, stats.Comments)
		assert.Zero(t, stats.Attachments)
		assert.Equal(t, int64(1), stats.Categories, "category must survive task deletion")
	})

	t.Run("detaches subtasks instead of deleting them", func(t *testing.T) {
		store := newTestStore(t)

		parent, err := store.CreateTask(TaskInput{Title: "Parent task"})
		require.NoError(t, err)
		child, err := store.CreateTask(TaskInput{Title: "Child task", ParentID: &parent.ID})
		require.NoError(t, err)

		_, err = store.DeleteTask(parent.ID)
		require.NoError(t, err)

		got, err := store.GetTask(child.ID)
		assert.NoError(t, err)
		assert.Nil(t, got.ParentID)
	})

	t.Run("unknown id returns ErrNotFound", func(t *testing.T) {
		store := newTestStore(t)

		_, err := store.DeleteTask(777)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestCreateUser(t *testing.T) {
	t.Run("successful creation", func(t *testing.T) {
		store := NewDB(CreateTestDB())

		user, err := store.CreateUser("Alice", "alice@example.com")
		assert.NoError(t, err)
		assert.NotZero(t, user.ID)
		assert.True(t, user.Active)
	})

	t.Run("malformed email is rejected", func(t *testing.T) {
		store := NewDB(CreateTestDB())

		for _, email := range []string{"", "plain", "missing@tld", "at@domain.x"} {
			_, err := store.CreateUser("Bob", email)
			assert.Error(t, err, "email %q should be rejected", email)
		}
	})

	t.Run("duplicate email should fail", func(t *testing.T) {
		store := NewDB(CreateTestDB())

		_, err := store.CreateUser("Alice", "same@example.com")
		require.NoError(t, err)

		_, err = store.CreateUser("Other", "same@example.com")
		assert.Error(t, err)
	})
}

func TestDeleteUser(t *testing.T) {
	t.Run("cascades to tasks, comments and attachments", func(t *testing.T) {
		store := newTestStore(t)

		task, err := store.CreateTask(TaskInput{Title: "Owned by default user"})
		require.NoError(t, err)
		_, err = store.CreateComment(task.ID, CommentInput{Body: "their comment"})
		require.NoError(t, err)

		users, err := store.ListUsers()
		require.NoError(t, err)
		require.Len(t, users, 1)

		_, err = store.DeleteUser(users[0].ID)
		assert.NoError(t, err)

		stats, err := store.Stats()
		require.NoError(t, err)
		assert.Zero(t, stats.Users)
		assert.Zero(t, stats.Tasks)
		assert.Zero(t, stats.Comments)
	})

	t.Run("unknown id returns ErrNotFound", func(t *testing.T) {
		store := newTestStore(t)

		_, err := store.DeleteUser(4242)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestDeleteCategory(t *testing.T) {
	t.Run("rejected while tasks reference it", func(t *testing.T) {
		store := newTestStore(t)

		task, err := store.CreateTask(TaskInput{Title: "Holds the category"})
		require.NoError(t, err)

		_, err = store.DeleteCategory(task.CategoryID)
		assert.ErrorIs(t, err, ErrCategoryInUse)

		categories, err := store.ListCategories()
		require.NoError(t, err)
		assert.Len(t, categories, 1)
	})

	t.Run("allowed once no task references it", func(t *testing.T) {
		store := newTestStore(t)

		task, err := store.CreateTask(TaskInput{Title: "Transient task"})
		require.NoError(t, err)
		_, err = store.DeleteTask(task.ID)
		require.NoError(t, err)

		name, err := store.DeleteCategory(task.CategoryID)
		assert.NoError(t, err)
		assert.Equal(t, DefaultCategory, name)
	})

	t.Run("unknown id returns ErrNotFound", func(t *testing.T) {
		store := newTestStore(t)

		_, err := store.DeleteCategory(31337)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestProjects(t *testing.T) {
	t.Run("create with defaults", func(t *testing.T) {
		store := newTestStore(t)

		project, err := store.CreateProject(ProjectInput{Name: "Launch"})
		assert.NoError(t, err)
		assert.Equal(t, PROJECT_ACTIVE, project.Status)
		assert.Equal(t, PRIORITY_MEDIUM, project.Priority)
		assert.Equal(t, 0, project.Progress)
	})

	t.Run("invalid status is rejected", func(t *testing.T) {
		store := newTestStore(t)

		_, err := store.CreateProject(ProjectInput{Name: "Bad", Status: "stalled"})
		verr := &ValidationError{}
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("responsible user is denormalized on read", func(t *testing.T) {
		store := newTestStore(t)

		users, err := store.ListUsers()
		require.NoError(t, err)
		require.Len(t, users, 1)

		project, err := store.CreateProject(ProjectInput{Name: "Owned", ResponsibleID: &users[0].ID})
		assert.NoError(t, err)
		require.NotNil(t, project.Responsible)
		assert.Equal(t, DefaultUserName, project.Responsible.Name)
	})

	t.Run("update clamps progress to the valid range", func(t *testing.T) {
		store := newTestStore(t)

		project, err := store.CreateProject(ProjectInput{Name: "Progressing"})
		require.NoError(t, err)

		progress := 60
		updated, err := store.UpdateProject(project.ID, ProjectPatch{Progress: &progress})
		assert.NoError(t, err)
		assert.Equal(t, 60, updated.Progress)

		tooMuch := 101
		_, err = store.UpdateProject(project.ID, ProjectPatch{Progress: &tooMuch})
		assert.Error(t, err)
	})
}

func TestComments(t *testing.T) {
	t.Run("create with default type", func(t *testing.T) {
		store := newTestStore(t)

		task, err := store.CreateTask(TaskInput{Title: "Commented"})
		require.NoError(t, err)

		comment, err := store.CreateComment(task.ID, CommentInput{Body: "hello"})
		assert.NoError(t, err)
		assert.Equal(t, COMMENT_TYPE_COMMENT, comment.Type)
		assert.Equal(t, DefaultUserName, comment.User.Name)
	})

	t.Run("invalid type is rejected", func(t *testing.T) {
		store := newTestStore(t)

		task, err := store.CreateTask(TaskInput{Title: "Commented"})
		require.NoError(t, err)

		_, err = store.CreateComment(task.ID, CommentInput{Body: "hello", Type: "rant"})
		assert.Error(t, err)
	})

	t.Run("replies are counted through the parent index", func(t *testing.T) {
		store := newTestStore(t)

		task, err := store.CreateTask(TaskInput{Title: "Threaded"})
		require.NoError(t, err)

		root, err := store.CreateComment(task.ID, CommentInput{Body: "root"})
		require.NoError(t, err)
		_, err = store.CreateComment(task.ID, CommentInput{Body: "reply one", ParentID: &root.ID})
		require.NoError(t, err)
		_, err = store.CreateComment(task.ID, CommentInput{Body: "reply two", ParentID: &root.ID})
		require.NoError(t, err)

		comments, replies, err := store.ListComments(task.ID)
		assert.NoError(t, err)
		assert.Len(t, comments, 3)
		assert.Equal(t, int64(2), replies[root.ID])
	})

	t.Run("unknown task returns ErrNotFound", func(t *testing.T) {
		store := newTestStore(t)

		_, err := store.CreateComment(999, CommentInput{Body: "orphan"})
		assert.ErrorIs(t, err, ErrNotFound)

		_, _, err = store.ListComments(999)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestAttachments(t *testing.T) {
	t.Run("create and list", func(t *testing.T) {
		store := newTestStore(t)

		task, err := store.CreateTask(TaskInput{Title: "With files"})
		require.NoError(t, err)

		att, err := store.CreateAttachment(task.ID, &Attachment{
			StoredName:   "deadbeef.pdf",
			OriginalName: "report.pdf",
			MimeType:     "application/pdf",
			SizeBytes:    2048,
			StoragePath:  "/tmp/deadbeef.pdf",
		})
		assert.NoError(t, err)
		assert.True(t, att.Active)
		assert.Equal(t, DefaultUserName, att.User.Name)

		attachments, err := store.ListAttachments(task.ID)
		assert.NoError(t, err)
		require.Len(t, attachments, 1)
		assert.Equal(t, "report.pdf", attachments[0].OriginalName)
	})

	t.Run("missing metadata is rejected", func(t *testing.T) {
		store := newTestStore(t)

		task, err := store.CreateTask(TaskInput{Title: "With files"})
		require.NoError(t, err)

		_, err = store.CreateAttachment(task.ID, &Attachment{})
		assert.Error(t, err)
	})
}

func TestStats(t *testing.T) {
	t.Run("reflects writes", func(t *testing.T) {
		store := newTestStore(t)

		_, err := store.CreateTask(TaskInput{Title: "Pending one"})
		require.NoError(t, err)
		_, err = store.CreateTask(TaskInput{Title: "Working one", Status: "in_progress", Priority: "high"})
		require.NoError(t, err)

		stats, err := store.Stats()
		assert.NoError(t, err)
		assert.Equal(t, int64(2), stats.Tasks)
		assert.Equal(t, int64(1), stats.Users)
		assert.Equal(t, int64(1), stats.Categories)
		assert.Equal(t, int64(1), stats.ByStatus[TASK_PENDING])
		assert.Equal(t, int64(1), stats.ByStatus[TASK_IN_PROGRESS])
		assert.Equal(t, int64(0), stats.ByStatus[TASK_DONE])
		assert.Equal(t, int64(1), stats.ByPriority[PRIORITY_HIGH])
		assert.Equal(t, int64(1), stats.ByPriority[PRIORITY_MEDIUM])
	})
}

func TestCountTaskRelations(t *testing.T) {
	t.Run("counts per task without loading rows", func(t *testing.T) {
		store := newTestStore(t)

		withRows, err := store.CreateTask(TaskInput{Title: "Has relations"})
		require.NoError(t, err)
		bare, err := store.CreateTask(TaskInput{Title: "Has nothing"})
		require.NoError(t, err)

		_, err = store.CreateComment(withRows.ID, CommentInput{Body: "one"})
		require.NoError(t, err)
		_, err = store.CreateComment(withRows.ID, CommentInput{Body: "two"})
		require.NoError(t, err)

		counts, err := store.CountTaskRelations([]uint{withRows.ID, bare.ID})
		assert.NoError(t, err)
		assert.Equal(t, int64(2), counts[withRows.ID].Comments)
		assert.Zero(t, counts[bare.ID].Comments)
	})
}
