package services

import (
	"context"
	"errors"

	"github.com/dimitrije/standup-api/internal/models"
	"github.com/dimitrije/standup-api/internal/store"
	"github.com/google/uuid"
)

// MemberKPI aggregates one member's compliance over a date range.
type MemberKPI struct {
	UserID   uuid.UUID `json:"user_id"`
	Name     string    `json:"name"`
	Prepared int       `json:"prepared"`
	Partial  int       `json:"partial"`
	Missing  int       `json:"missing"`
	Rate     float64   `json:"rate"`
}

// TeamKPI is the compliance report for a team over a date range.
type TeamKPI struct {
	TeamID  uuid.UUID   `json:"team_id"`
	From    string      `json:"from,omitempty"`
	To      string      `json:"to,omitempty"`
	Days    int         `json:"days"`
	Members []MemberKPI `json:"members"`
}

// KPIService derives compliance history from persisted standup
// documents. It reads documents as written — no reconciliation — so the
// report reflects what each day actually recorded.
type KPIService struct {
	store    store.Store
	standups *StandupService
}

func NewKPIService(st store.Store, standups *StandupService) *KPIService {
	return &KPIService{store: st, standups: standups}
}

// TeamCompliance scans the team's standup history and counts row
// statuses per member. Empty from/to bounds leave that side of the
// range open. Rate is prepared days over days the member had a row.
func (s *KPIService) TeamCompliance(ctx context.Context, team *models.Team, from, to string) (*TeamKPI, error) {
	dates, err := s.standups.Dates(ctx, team)
	if err != nil {
		return nil, err
	}

	report := &TeamKPI{TeamID: team.ID, From: from, To: to}
	byUser := make(map[uuid.UUID]*MemberKPI)
	var order []uuid.UUID

	for _, date := range dates {
		if (from != "" && date < from) || (to != "" && date > to) {
			continue
		}
		doc, err := s.standups.Load(ctx, team, date)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		report.Days++

		for _, row := range doc.Rows {
			kpi, ok := byUser[row.UserID]
			if !ok {
				kpi = &MemberKPI{UserID: row.UserID}
				byUser[row.UserID] = kpi
				order = append(order, row.UserID)
			}
			// Latest document wins for the display name.
			kpi.Name = row.Name
			switch row.Status {
			case models.StatusPrepared:
				kpi.Prepared++
			case models.StatusPartial:
				kpi.Partial++
			default:
				kpi.Missing++
			}
		}
	}

	report.Members = make([]MemberKPI, 0, len(order))
	for _, id := range order {
		kpi := byUser[id]
		if total := kpi.Prepared + kpi.Partial + kpi.Missing; total > 0 {
			kpi.Rate = float64(kpi.Prepared) / float64(total)
		}
		report.Members = append(report.Members, *kpi)
	}
	return report, nil
}
