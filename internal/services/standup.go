package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dimitrije/standup-api/internal/models"
	"github.com/dimitrije/standup-api/internal/store"
	"github.com/google/uuid"
)

var (
	ErrConflict    = errors.New("standup document has been modified")
	ErrNotOnTeam   = errors.New("user is not a member of the team")
	ErrForbidden   = errors.New("not allowed to edit this entry")
	ErrInvalidDate = errors.New("date must be YYYY-MM-DD")
)

// StandupService owns the per-day standup document: lazy creation, row
// reconciliation against current membership, and the optimistic-
// concurrency entry update protocol.
//
// Concurrency control is at document granularity. Two members editing
// different rows can still collide on the shared version counter; that
// is a deliberate trade-off of keeping one small document per team per
// day, and stale writers are expected to reload and resubmit.
type StandupService struct {
	store store.Store
	users *UserService
}

func NewStandupService(st store.Store, users *UserService) *StandupService {
	return &StandupService{store: st, users: users}
}

// GetOrCreate returns the team's document for the date, creating it at
// version 0 when absent. An existing document's row set is reconciled
// against current membership before being returned: rows for departed
// members are dropped and fresh empty rows are synthesized for new
// members. Reconciliation is a read-time view only — it is not written
// back and does not advance the version, so a row added this way only
// reaches storage with the next entry update.
func (s *StandupService) GetOrCreate(ctx context.Context, team *models.Team, date string) (*models.StandupDocument, error) {
	if _, err := time.Parse(models.DateFormat, date); err != nil {
		return nil, ErrInvalidDate
	}

	key := store.StandupKey(team.ID, date)

	var doc models.StandupDocument
	err := store.GetJSON(ctx, s.store, key, &doc)
	if errors.Is(err, store.ErrNotFound) {
		return s.create(ctx, team, date)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load standup document: %w", err)
	}

	s.reconcile(ctx, &doc, team)
	return &doc, nil
}

// UpdateEntry applies one row's edit under the concurrency contract:
// the actor must be the row owner or a team manager, the target must
// currently be on the team, and a well-formed token must match the
// document version as read. On success the document version advances by
// one and the whole document is persisted. Cutoff enforcement is the
// caller's job; by the time this runs the write is assumed in-window.
func (s *StandupService) UpdateEntry(ctx context.Context, team *models.Team, date string, actor *models.User, targetUserID uuid.UUID, yesterday, today, blockers, token string) (*models.StandupDocument, error) {
	manager := actor.IsManager(team.ID)
	if actor.ID != targetUserID && !manager {
		return nil, ErrForbidden
	}

	doc, err := s.GetOrCreate(ctx, team, date)
	if err != nil {
		return nil, err
	}

	row := doc.Row(targetUserID)
	if row == nil {
		return nil, ErrNotOnTeam
	}

	// A missing or non-numeric token opts out of the conflict check.
	// That asymmetry exists for machine-initiated writes that don't
	// track versions.
	if v, err := strconv.Atoi(token); err == nil && v != doc.Version {
		return nil, ErrConflict
	}

	row.Yesterday = yesterday
	row.Today = today
	row.Blockers = blockers
	row.Status = models.RowStatus(yesterday, today, blockers)

	now := time.Now().UTC()
	if manager && actor.ID != targetUserID {
		row.OverriddenBy = &actor.ID
		doc.Overrides = append(doc.Overrides, models.Override{
			ManagerID: actor.ID,
			UserID:    targetUserID,
			At:        now,
		})
	}

	doc.Version++
	doc.UpdatedAt = now
	if err := store.PutJSON(ctx, s.store, store.StandupKey(team.ID, date), doc); err != nil {
		return nil, fmt.Errorf("failed to save standup document: %w", err)
	}
	return doc, nil
}

// Dates lists the calendar dates for which the team has a persisted
// standup document, in key order.
func (s *StandupService) Dates(ctx context.Context, team *models.Team) ([]string, error) {
	keys, err := s.store.ListKeys(ctx, store.StandupPrefix(team.ID))
	if err != nil {
		return nil, err
	}
	dates := make([]string, 0, len(keys))
	for _, key := range keys {
		if date := store.StandupDate(team.ID, key); date != "" {
			dates = append(dates, date)
		}
	}
	return dates, nil
}

// Load fetches a persisted document without reconciliation. History and
// reporting reads want the document as written, not the live view.
func (s *StandupService) Load(ctx context.Context, team *models.Team, date string) (*models.StandupDocument, error) {
	var doc models.StandupDocument
	err := store.GetJSON(ctx, s.store, store.StandupKey(team.ID, date), &doc)
	if errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load standup document: %w", err)
	}
	return &doc, nil
}

func (s *StandupService) create(ctx context.Context, team *models.Team, date string) (*models.StandupDocument, error) {
	doc := &models.StandupDocument{
		TeamID:    team.ID,
		Date:      date,
		Version:   0,
		UpdatedAt: time.Now().UTC(),
	}
	for _, memberID := range team.MemberIDs {
		if row, ok := s.buildRow(ctx, memberID); ok {
			doc.Rows = append(doc.Rows, row)
		}
	}
	if err := store.PutJSON(ctx, s.store, store.StandupKey(team.ID, date), doc); err != nil {
		return nil, fmt.Errorf("failed to create standup document: %w", err)
	}
	return doc, nil
}

// reconcile rebuilds the row set to match current membership, keeping
// existing rows (with their field values) for members still on the
// team.
func (s *StandupService) reconcile(ctx context.Context, doc *models.StandupDocument, team *models.Team) {
	existing := make(map[uuid.UUID]models.StandupRow, len(doc.Rows))
	for _, row := range doc.Rows {
		existing[row.UserID] = row
	}

	rows := make([]models.StandupRow, 0, len(team.MemberIDs))
	for _, memberID := range team.MemberIDs {
		if row, ok := existing[memberID]; ok {
			rows = append(rows, row)
			continue
		}
		if row, ok := s.buildRow(ctx, memberID); ok {
			rows = append(rows, row)
		}
	}
	doc.Rows = rows
}

// buildRow synthesizes a fresh empty row for a member, denormalizing
// the display name from the user record. A member id with no user
// record yields no row rather than an error.
func (s *StandupService) buildRow(ctx context.Context, userID uuid.UUID) (models.StandupRow, bool) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return models.StandupRow{}, false
	}
	return models.StandupRow{
		UserID: userID,
		Name:   user.Name,
		Status: models.StatusMissing,
	}, true
}
