package store

import (
	"database/sql"
	"fmt"

	"github.com/pvieira/tarefinha/internal/model"
)

type PenaltyStore struct {
	db *sql.DB
}

func NewPenaltyStore(db *sql.DB) *PenaltyStore {
	return &PenaltyStore{db: db}
}

const penaltyCols = `id, emoji, reason, points, created_at`

func scanPenaltyReason(scanner interface{ Scan(...any) error }) (*model.PenaltyReason, error) {
	var p model.PenaltyReason
	err := scanner.Scan(&p.ID, &p.Emoji, &p.Reason, &p.Points, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// coercePoints forces a penalty cost to be zero or negative.
func coercePoints(points int) int {
	if points > 0 {
		return -points
	}
	return points
}

func (s *PenaltyStore) Create(emoji, reason string, points int) (*model.PenaltyReason, error) {
	result, err := s.db.Exec(
		`INSERT INTO penalty_reasons (emoji, reason, points) VALUES (?, ?, ?)`,
		emoji, reason, coercePoints(points),
	)
	if err != nil {
		return nil, fmt.Errorf("insert penalty reason: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *PenaltyStore) GetByID(id int64) (*model.PenaltyReason, error) {
	row := s.db.QueryRow(`SELECT `+penaltyCols+` FROM penalty_reasons WHERE id = ?`, id)
	p, err := scanPenaltyReason(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get penalty reason: %w", err)
	}
	return p, nil
}

// List returns the catalog most severe first (most negative points), then by
// reason text for stable ordering.
func (s *PenaltyStore) List() ([]model.PenaltyReason, error) {
	rows, err := s.db.Query(`SELECT ` + penaltyCols + ` FROM penalty_reasons ORDER BY points ASC, reason ASC`)
	if err != nil {
		return nil, fmt.Errorf("list penalty reasons: %w", err)
	}
	defer rows.Close()

	var reasons []model.PenaltyReason
	for rows.Next() {
		p, err := scanPenaltyReason(rows)
		if err != nil {
			return nil, fmt.Errorf("scan penalty reason: %w", err)
		}
		reasons = append(reasons, *p)
	}
	return reasons, rows.Err()
}

func (s *PenaltyStore) Update(id int64, emoji, reason string, points int) (*model.PenaltyReason, error) {
	_, err := s.db.Exec(
		`UPDATE penalty_reasons SET emoji = ?, reason = ?, points = ? WHERE id = ?`,
		emoji, reason, coercePoints(points), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update penalty reason: %w", err)
	}
	return s.GetByID(id)
}

func (s *PenaltyStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM penalty_reasons WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete penalty reason: %w", err)
	}
	return nil
}
