package model

import "time"

type ActivityType string

const (
	ActivityTask    ActivityType = "task"
	ActivityPenalty ActivityType = "penalty"
)

// Activity is an immutable timeline entry for one point-affecting event.
type Activity struct {
	ID          int64        `json:"id"`
	MemberID    int64        `json:"member_id"`
	Type        ActivityType `json:"type"`
	Date        string       `json:"date"` // YYYY-MM-DD
	Points      int          `json:"points"`
	Description string       `json:"description"`
	Emoji       string       `json:"emoji"`
	CreatedAt   time.Time    `json:"created_at"`
}
