package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/pvieira/tarefinha/internal/model"
)

type TaskStore struct {
	db *sql.DB
}

func NewTaskStore(db *sql.DB) *TaskStore {
	return &TaskStore{db: db}
}

const taskCols = `id, title, emoji, category, assigned_to, recurrence_rule, time_of_day, status, completed_by, completed_at, last_reset_at, created_by, sort_order, created_at, updated_at`

func scanTask(scanner interface{ Scan(...any) error }) (*model.Task, error) {
	var t model.Task
	var assignedTo, completedBy sql.NullInt64
	var timeOfDay sql.NullString
	var completedAt sql.NullTime

	err := scanner.Scan(
		&t.ID, &t.Title, &t.Emoji, &t.Category, &assignedTo, &t.RecurrenceRule,
		&timeOfDay, &t.Status, &completedBy, &completedAt, &t.LastResetAt,
		&t.CreatedBy, &t.SortOrder, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if assignedTo.Valid {
		t.AssignedTo = &assignedTo.Int64
	}
	if completedBy.Valid {
		t.CompletedBy = &completedBy.Int64
	}
	if completedAt.Valid {
		t.CompletedAt = &completedAt.Time
	}
	if timeOfDay.Valid {
		tod := model.TimeOfDay(timeOfDay.String)
		t.TimeOfDay = &tod
	}
	return &t, nil
}

func (s *TaskStore) Create(title, emoji string, category model.TaskCategory, assignedTo *int64, recurrenceRule string, timeOfDay *model.TimeOfDay, createdBy string) (*model.Task, error) {
	var aTo sql.NullInt64
	if assignedTo != nil {
		aTo = sql.NullInt64{Int64: *assignedTo, Valid: true}
	}
	var tod sql.NullString
	if timeOfDay != nil {
		tod = sql.NullString{String: string(*timeOfDay), Valid: true}
	}

	now := time.Now().UTC()
	result, err := s.db.Exec(
		`INSERT INTO tasks (title, emoji, category, assigned_to, recurrence_rule, time_of_day, status, last_reset_at, created_by, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, 'todo', ?, ?, ?, ?)`,
		title, emoji, category, aTo, recurrenceRule, tod, now, createdBy, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *TaskStore) GetByID(id int64) (*model.Task, error) {
	row := s.db.QueryRow(`SELECT `+taskCols+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

func (s *TaskStore) List() ([]model.Task, error) {
	rows, err := s.db.Query(`SELECT ` + taskCols + ` FROM tasks ORDER BY sort_order ASC, title ASC`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()
	return collectTasks(rows)
}

// ListDone returns all completed tasks, for the reset sweep.
func (s *TaskStore) ListDone() ([]model.Task, error) {
	rows, err := s.db.Query(`SELECT `+taskCols+` FROM tasks WHERE status = ? ORDER BY id`, model.StatusDone)
	if err != nil {
		return nil, fmt.Errorf("list done tasks: %w", err)
	}
	defer rows.Close()
	return collectTasks(rows)
}

func collectTasks(rows *sql.Rows) ([]model.Task, error) {
	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

// Update edits the task's descriptive fields; status and completion fields
// are untouched.
func (s *TaskStore) Update(id int64, title, emoji string, category model.TaskCategory, recurrenceRule string, timeOfDay *model.TimeOfDay) (*model.Task, error) {
	var tod sql.NullString
	if timeOfDay != nil {
		tod = sql.NullString{String: string(*timeOfDay), Valid: true}
	}

	_, err := s.db.Exec(
		`UPDATE tasks SET title = ?, emoji = ?, category = ?, recurrence_rule = ?, time_of_day = ?, updated_at = ? WHERE id = ?`,
		title, emoji, category, recurrenceRule, tod, time.Now().UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return s.GetByID(id)
}

// Complete marks a pending task done. Returns false if the task was already
// done (or does not exist), so a double submit never credits twice.
func (s *TaskStore) Complete(id, completedBy int64, now time.Time) (bool, error) {
	result, err := s.db.Exec(
		`UPDATE tasks SET status = ?, completed_by = ?, completed_at = ?, updated_at = ? WHERE id = ? AND status = ?`,
		model.StatusDone, completedBy, now.UTC(), now.UTC(), id, model.StatusTodo,
	)
	if err != nil {
		return false, fmt.Errorf("complete task: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// Reopen puts a done task back to pending without touching last_reset_at.
func (s *TaskStore) Reopen(id int64) error {
	_, err := s.db.Exec(
		`UPDATE tasks SET status = ?, completed_by = NULL, completed_at = NULL, updated_at = ? WHERE id = ?`,
		model.StatusTodo, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("reopen task: %w", err)
	}
	return nil
}

// Reset performs the recurrence reset transition. The status guard in the
// WHERE clause makes overlapping sweeps harmless: only one of them flips the
// row. Returns false when the task was no longer done.
func (s *TaskStore) Reset(id int64, now time.Time) (bool, error) {
	result, err := s.db.Exec(
		`UPDATE tasks SET status = ?, completed_by = NULL, completed_at = NULL, last_reset_at = ?, updated_at = ? WHERE id = ? AND status = ?`,
		model.StatusTodo, now.UTC(), now.UTC(), id, model.StatusDone,
	)
	if err != nil {
		return false, fmt.Errorf("reset task: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

func (s *TaskStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

// DeleteGroup removes every task instance created from the same template:
// all rows sharing title, emoji, and recurrence rule. Returns the number of
// deleted instances.
func (s *TaskStore) DeleteGroup(title, emoji, recurrenceRule string) (int64, error) {
	result, err := s.db.Exec(
		`DELETE FROM tasks WHERE title = ? AND emoji = ? AND recurrence_rule = ?`,
		title, emoji, recurrenceRule,
	)
	if err != nil {
		return 0, fmt.Errorf("delete task group: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

func (s *TaskStore) UpdateSortOrder(ids []int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("UPDATE tasks SET sort_order = ? WHERE id = ?")
	if err != nil {
		return fmt.Errorf("prepare stmt: %w", err)
	}
	defer stmt.Close()

	for i, id := range ids {
		if _, err := stmt.Exec(i, id); err != nil {
			return fmt.Errorf("update sort order for id %d: %w", id, err)
		}
	}

	return tx.Commit()
}
