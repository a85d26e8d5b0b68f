// Package score assembles the weekly leaderboard from the persisted score
// ledger and the family roster.
package score

import (
	"fmt"
	"sort"

	"github.com/pvieira/tarefinha/internal/model"
	"github.com/pvieira/tarefinha/internal/store"
)

// Entry is one leaderboard row for a week.
type Entry struct {
	MemberID       int64   `json:"member_id"`
	Name           string  `json:"name"`
	Color          string  `json:"color"`
	AvatarEmoji    string  `json:"avatar_emoji"`
	PhotoURL       *string `json:"photo_url"`
	Points         int     `json:"points"`
	TasksCompleted int     `json:"tasks_completed"`
	Rank           int     `json:"rank"`
}

// Rank assigns competition ranks to entries already sorted by points
// descending. Tied entries share a rank and the next distinct score skips
// the tied positions, so points 10, 10, 7 rank 1, 1, 3.
func Rank(entries []Entry) {
	for i := range entries {
		if i > 0 && entries[i].Points == entries[i-1].Points {
			entries[i].Rank = entries[i-1].Rank
		} else {
			entries[i].Rank = i + 1
		}
	}
}

type Service struct {
	scores  *store.ScoreStore
	members *store.FamilyMemberStore
}

func NewService(scores *store.ScoreStore, members *store.FamilyMemberStore) *Service {
	return &Service{scores: scores, members: members}
}

// Standings returns one ranked entry per roster member for the given week.
// Members with no score record yet appear with zero points so the board
// always shows the whole family.
func (s *Service) Standings(week string) ([]Entry, error) {
	members, err := s.members.List()
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	scores, err := s.scores.ListByWeek(week)
	if err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}

	byMember := make(map[int64]model.Score, len(scores))
	for _, sc := range scores {
		byMember[sc.MemberID] = sc
	}

	entries := make([]Entry, 0, len(members))
	for _, m := range members {
		e := Entry{
			MemberID:    m.ID,
			Name:        m.Name,
			Color:       m.Color,
			AvatarEmoji: m.AvatarEmoji,
			PhotoURL:    m.PhotoURL,
		}
		if sc, ok := byMember[m.ID]; ok {
			e.Points = sc.Points
			e.TasksCompleted = sc.TasksCompleted
		}
		entries = append(entries, e)
	}

	// Stable sort keeps roster order among ties.
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Points > entries[j].Points
	})
	Rank(entries)
	return entries, nil
}
