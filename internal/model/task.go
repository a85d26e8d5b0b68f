package model

import "time"

type TaskCategory string

const (
	CategoryAdult TaskCategory = "adult"
	CategoryChild TaskCategory = "child"
)

type TaskStatus string

const (
	StatusTodo TaskStatus = "todo"
	StatusDone TaskStatus = "done"
)

type TimeOfDay string

const (
	TimeMorning   TimeOfDay = "morning"
	TimeAfternoon TimeOfDay = "afternoon"
	TimeNight     TimeOfDay = "night"
)

type Task struct {
	ID             int64        `json:"id"`
	Title          string       `json:"title"`
	Emoji          string       `json:"emoji"`
	Category       TaskCategory `json:"category"`
	AssignedTo     *int64       `json:"assigned_to"`
	RecurrenceRule string       `json:"recurrence_rule"`
	TimeOfDay      *TimeOfDay   `json:"time_of_day"`
	Status         TaskStatus   `json:"status"`
	CompletedBy    *int64       `json:"completed_by"`
	CompletedAt    *time.Time   `json:"completed_at"`
	LastResetAt    time.Time    `json:"last_reset_at"`
	CreatedBy      string       `json:"created_by"`
	SortOrder      int          `json:"sort_order"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}
