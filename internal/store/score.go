package store

import (
	"database/sql"
	"fmt"

	"github.com/pvieira/tarefinha/internal/model"
)

type ScoreStore struct {
	db *sql.DB
}

func NewScoreStore(db *sql.DB) *ScoreStore {
	return &ScoreStore{db: db}
}

// CreditTask awards one point to a member for completing a task in the given
// week. Each task id is credited at most once per (member, week): the insert
// into score_credits gates the points increment inside one transaction, so a
// repeated credit is a no-op. Returns whether a point was actually awarded.
func (s *ScoreStore) CreditTask(memberID int64, week string, taskID int64) (bool, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`INSERT OR IGNORE INTO score_credits (member_id, week, task_id) VALUES (?, ?, ?)`,
		memberID, week, taskID,
	)
	if err != nil {
		return false, fmt.Errorf("insert credit: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		// Already credited this week
		return false, nil
	}

	_, err = tx.Exec(
		`INSERT INTO scores (member_id, week, points) VALUES (?, ?, 1)
		 ON CONFLICT(member_id, week) DO UPDATE SET points = points + 1`,
		memberID, week,
	)
	if err != nil {
		return false, fmt.Errorf("increment points: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit credit: %w", err)
	}
	return true, nil
}

// ApplyPenalty adds a (non-positive) point delta to the member's week total,
// creating the score record if needed. A positive input is negated rather
// than rejected. Returns the delta actually applied.
func (s *ScoreStore) ApplyPenalty(memberID int64, week string, points int) (int, error) {
	if points > 0 {
		points = -points
	}

	_, err := s.db.Exec(
		`INSERT INTO scores (member_id, week, points) VALUES (?, ?, ?)
		 ON CONFLICT(member_id, week) DO UPDATE SET points = points + excluded.points`,
		memberID, week, points,
	)
	if err != nil {
		return 0, fmt.Errorf("apply penalty: %w", err)
	}
	return points, nil
}

// ListByWeek returns the score records for one week, including how many
// distinct tasks each member has been credited for. Members without a record
// are absent; the score package fills in zero entries from the roster.
func (s *ScoreStore) ListByWeek(week string) ([]model.Score, error) {
	rows, err := s.db.Query(
		`SELECT s.member_id, s.week, s.points,
		        (SELECT COUNT(*) FROM score_credits c WHERE c.member_id = s.member_id AND c.week = s.week)
		 FROM scores s WHERE s.week = ? ORDER BY s.member_id`,
		week,
	)
	if err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	defer rows.Close()

	var scores []model.Score
	for rows.Next() {
		var sc model.Score
		if err := rows.Scan(&sc.MemberID, &sc.Week, &sc.Points, &sc.TasksCompleted); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		scores = append(scores, sc)
	}
	return scores, rows.Err()
}

// Get returns one member's record for a week, or nil if none exists yet.
func (s *ScoreStore) Get(memberID int64, week string) (*model.Score, error) {
	var sc model.Score
	err := s.db.QueryRow(
		`SELECT s.member_id, s.week, s.points,
		        (SELECT COUNT(*) FROM score_credits c WHERE c.member_id = s.member_id AND c.week = s.week)
		 FROM scores s WHERE s.member_id = ? AND s.week = ?`,
		memberID, week,
	).Scan(&sc.MemberID, &sc.Week, &sc.Points, &sc.TasksCompleted)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get score: %w", err)
	}
	return &sc, nil
}
