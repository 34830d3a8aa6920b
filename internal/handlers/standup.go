package handlers

import (
	"errors"
	"time"

	"github.com/dimitrije/standup-api/internal/middleware"
	"github.com/dimitrije/standup-api/internal/models"
	"github.com/dimitrije/standup-api/internal/services"
	"github.com/dimitrije/standup-api/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

type StandupHandler struct {
	standupService StandupServiceInterface
	teamService    TeamServiceInterface
	userService    UserServiceInterface
	kpiService     KPIServiceInterface
}

func NewStandupHandler(standupService StandupServiceInterface, teamService TeamServiceInterface, userService UserServiceInterface, kpiService KPIServiceInterface) *StandupHandler {
	return &StandupHandler{
		standupService: standupService,
		teamService:    teamService,
		userService:    userService,
		kpiService:     kpiService,
	}
}

// Get returns the team's document for a date, lazily creating it.
func (h *StandupHandler) Get(c *drift.Context) {
	team, _, ok := h.teamForMember(c)
	if !ok {
		return
	}
	h.respondWithDocument(c, team, c.Param("date"), 200)
}

// Today is Get for the server's current date.
func (h *StandupHandler) Today(c *drift.Context) {
	team, _, ok := h.teamForMember(c)
	if !ok {
		return
	}
	h.respondWithDocument(c, team, time.Now().Format(models.DateFormat), 200)
}

// Create pre-warms a date's document. Normal flow never needs it; it
// exists so a scheduler can materialize documents ahead of the day.
func (h *StandupHandler) Create(c *drift.Context) {
	team, _, ok := h.teamForMember(c)
	if !ok {
		return
	}
	h.respondWithDocument(c, team, c.Param("date"), 201)
}

// UpdateEntry applies one row edit. The cutoff gate lives here, on the
// calling side of the update protocol: a locked day is rejected before
// the service ever sees the write.
func (h *StandupHandler) UpdateEntry(c *drift.Context) {
	team, user, ok := h.teamForMember(c)
	if !ok {
		return
	}

	date := c.Param("date")
	targetUserID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		c.BadRequest("invalid user id")
		return
	}

	var req dto.UpdateEntryRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if cutoffPassed(team, date, time.Now()) {
		_ = c.JSON(403, map[string]string{
			"code":    "CUTOFF_LOCKED",
			"message": "standup is locked for this date",
		})
		return
	}

	ctx := c.Request.Context()
	doc, err := h.standupService.UpdateEntry(ctx, team, date, user, targetUserID, req.Yesterday, req.Today, req.Blockers, req.Version)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrForbidden):
			c.Forbidden("you can only edit your own entry")
		case errors.Is(err, services.ErrNotOnTeam):
			c.BadRequest("user is not on this team")
		case errors.Is(err, services.ErrInvalidDate):
			c.BadRequest("date must be YYYY-MM-DD")
		case errors.Is(err, services.ErrConflict):
			currentVersion := ""
			if current, err := h.standupService.GetOrCreate(ctx, team, date); err == nil {
				currentVersion = current.Token()
			}
			_ = c.JSON(409, map[string]any{
				"code":            "VERSION_CONFLICT",
				"message":         "standup has been modified by someone else, reload and retry",
				"current_version": currentVersion,
			})
		default:
			c.InternalServerError("failed to update entry")
		}
		return
	}

	_ = c.JSON(200, standupResponse(doc, false))
}

// Dates lists the dates with a recorded document for the team, oldest
// first. Only written documents appear; a day nobody touched has no
// entry.
func (h *StandupHandler) Dates(c *drift.Context) {
	team, _, ok := h.teamForMember(c)
	if !ok {
		return
	}

	dates, err := h.standupService.Dates(c.Request.Context(), team)
	if err != nil {
		c.InternalServerError("failed to list standup dates")
		return
	}
	_ = c.JSON(200, dto.StandupDatesResponse{Dates: dates})
}

// KPI reports per-member compliance over the team's standup history.
func (h *StandupHandler) KPI(c *drift.Context) {
	team, _, ok := h.teamForMember(c)
	if !ok {
		return
	}

	from := c.QueryParam("from")
	to := c.QueryParam("to")
	for _, bound := range []string{from, to} {
		if bound == "" {
			continue
		}
		if _, err := time.Parse(models.DateFormat, bound); err != nil {
			c.BadRequest("from/to must be YYYY-MM-DD")
			return
		}
	}

	report, err := h.kpiService.TeamCompliance(c.Request.Context(), team, from, to)
	if err != nil {
		c.InternalServerError("failed to compute kpi")
		return
	}
	_ = c.JSON(200, report)
}

func (h *StandupHandler) respondWithDocument(c *drift.Context, team *models.Team, date string, status int) {
	doc, err := h.standupService.GetOrCreate(c.Request.Context(), team, date)
	if err != nil {
		if errors.Is(err, services.ErrInvalidDate) {
			c.BadRequest("date must be YYYY-MM-DD")
			return
		}
		c.InternalServerError("failed to load standup")
		return
	}
	_ = c.JSON(status, standupResponse(doc, cutoffPassed(team, date, time.Now())))
}

func (h *StandupHandler) teamForMember(c *drift.Context) (*models.Team, *models.User, bool) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return nil, nil, false
	}

	user, err := h.userService.GetByID(c.Request.Context(), userID)
	if err != nil {
		c.Unauthorized("not authenticated")
		return nil, nil, false
	}

	teamID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid team id")
		return nil, nil, false
	}

	team, err := h.teamService.GetByID(c.Request.Context(), teamID)
	if err != nil {
		c.NotFound("team not found")
		return nil, nil, false
	}
	if !team.HasMember(user.ID) {
		c.NotFound("team not found")
		return nil, nil, false
	}
	return team, user, true
}

// cutoffPassed reports whether the team's cutoff for the given date is
// behind now. An unparseable date counts as locked; an unparseable
// cutoff never locks.
func cutoffPassed(team *models.Team, date string, now time.Time) bool {
	day, err := time.ParseInLocation(models.DateFormat, date, now.Location())
	if err != nil {
		return true
	}
	hm, err := time.Parse("15:04", team.CutoffTime)
	if err != nil {
		return false
	}
	cutoff := time.Date(day.Year(), day.Month(), day.Day(), hm.Hour(), hm.Minute(), 0, 0, now.Location())
	return now.After(cutoff)
}

func standupResponse(doc *models.StandupDocument, locked bool) dto.StandupResponse {
	rows := make([]dto.StandupRowResponse, len(doc.Rows))
	for i, row := range doc.Rows {
		rows[i] = dto.StandupRowResponse{
			UserID:       row.UserID,
			Name:         row.Name,
			Yesterday:    row.Yesterday,
			Today:        row.Today,
			Blockers:     row.Blockers,
			Status:       row.Status,
			OverriddenBy: row.OverriddenBy,
		}
	}
	return dto.StandupResponse{
		TeamID:    doc.TeamID,
		Date:      doc.Date,
		Version:   doc.Token(),
		UpdatedAt: doc.UpdatedAt.Format(time.RFC3339),
		Locked:    locked,
		Rows:      rows,
	}
}
