package store

import (
	"database/sql"
	"fmt"

	"github.com/pvieira/tarefinha/internal/model"
)

type ActivityStore struct {
	db *sql.DB
}

func NewActivityStore(db *sql.DB) *ActivityStore {
	return &ActivityStore{db: db}
}

const activityCols = `id, member_id, type, date, points, description, emoji, created_at`

// Create appends one timeline entry. Activities are never updated or
// deleted.
func (s *ActivityStore) Create(memberID int64, typ model.ActivityType, date string, points int, description, emoji string) (*model.Activity, error) {
	result, err := s.db.Exec(
		`INSERT INTO activities (member_id, type, date, points, description, emoji) VALUES (?, ?, ?, ?, ?, ?)`,
		memberID, typ, date, points, description, emoji,
	)
	if err != nil {
		return nil, fmt.Errorf("insert activity: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	row := s.db.QueryRow(`SELECT `+activityCols+` FROM activities WHERE id = ?`, id)
	return scanActivity(row)
}

func scanActivity(scanner interface{ Scan(...any) error }) (*model.Activity, error) {
	var a model.Activity
	err := scanner.Scan(&a.ID, &a.MemberID, &a.Type, &a.Date, &a.Points, &a.Description, &a.Emoji, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ListByMemberDateRange returns a member's timeline entries with date in
// [start, end], both YYYY-MM-DD, newest first.
func (s *ActivityStore) ListByMemberDateRange(memberID int64, start, end string) ([]model.Activity, error) {
	rows, err := s.db.Query(
		`SELECT `+activityCols+` FROM activities WHERE member_id = ? AND date >= ? AND date <= ? ORDER BY date DESC, created_at DESC`,
		memberID, start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()

	var activities []model.Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		activities = append(activities, *a)
	}
	return activities, rows.Err()
}
