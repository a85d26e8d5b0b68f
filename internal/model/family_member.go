package model

import "time"

type FamilyMember struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Color       string    `json:"color"`
	AvatarEmoji string    `json:"avatar_emoji"`
	PhotoURL    *string   `json:"photo_url"`
	IsChild     bool      `json:"is_child"`
	BirthDate   *string   `json:"birth_date"`
	HasPIN      bool      `json:"has_pin"`
	SortOrder   int       `json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
