package model

import "time"

// PenaltyReason is a catalog entry describing an infraction and its point
// cost. Points are always zero or negative.
type PenaltyReason struct {
	ID        int64     `json:"id"`
	Emoji     string    `json:"emoji"`
	Reason    string    `json:"reason"`
	Points    int       `json:"points"`
	CreatedAt time.Time `json:"created_at"`
}
