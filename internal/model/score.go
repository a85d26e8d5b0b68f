package model

// Score is one member's running point total for a single ISO week.
// Records are created lazily on first credit and never deleted.
type Score struct {
	MemberID       int64  `json:"member_id"`
	Week           string `json:"week"`
	Points         int    `json:"points"`
	TasksCompleted int    `json:"tasks_completed"`
}
