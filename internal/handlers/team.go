package handlers

import (
	"errors"
	"fmt"

	"github.com/dimitrije/standup-api/internal/middleware"
	"github.com/dimitrije/standup-api/internal/models"
	"github.com/dimitrije/standup-api/internal/services"
	"github.com/dimitrije/standup-api/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/sirupsen/logrus"
)

type TeamHandler struct {
	teamService  TeamServiceInterface
	userService  UserServiceInterface
	emailService EmailServiceInterface
	log          *logrus.Logger
	frontendURL  string
}

func NewTeamHandler(teamService TeamServiceInterface, userService UserServiceInterface, emailService EmailServiceInterface, log *logrus.Logger, frontendURL string) *TeamHandler {
	return &TeamHandler{
		teamService:  teamService,
		userService:  userService,
		emailService: emailService,
		log:          log,
		frontendURL:  frontendURL,
	}
}

func (h *TeamHandler) Create(c *drift.Context) {
	user, ok := h.actingUser(c)
	if !ok {
		return
	}

	var req dto.CreateTeamRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}
	if req.Name == "" {
		c.BadRequest("name is required")
		return
	}

	team, err := h.teamService.Create(c.Request.Context(), req.Name, req.CutoffTime, user)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCutoff) {
			c.BadRequest("cutoff_time must be HH:MM")
			return
		}
		c.InternalServerError("failed to create team")
		return
	}

	_ = c.JSON(201, teamResponse(team, user, true))
}

// Active resolves the acting user's current team, repairing a dangling
// reference if storage lost it.
func (h *TeamHandler) Active(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	team, user, err := h.teamService.EnsureTeamForViewer(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			c.NotFound("no team for user")
			return
		}
		c.InternalServerError("failed to resolve team")
		return
	}

	_ = c.JSON(200, teamResponse(team, user, user.IsManager(team.ID)))
}

func (h *TeamHandler) Get(c *drift.Context) {
	team, user, ok := h.teamForMember(c)
	if !ok {
		return
	}
	_ = c.JSON(200, teamResponse(team, user, user.IsManager(team.ID)))
}

func (h *TeamHandler) Update(c *drift.Context) {
	team, user, ok := h.teamForMember(c)
	if !ok {
		return
	}
	if !user.IsManager(team.ID) {
		c.Forbidden("manager role required")
		return
	}

	var req dto.UpdateTeamRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	updated, err := h.teamService.Update(c.Request.Context(), team.ID, req.Name, req.CutoffTime)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCutoff) {
			c.BadRequest("cutoff_time must be HH:MM")
			return
		}
		c.InternalServerError("failed to update team")
		return
	}

	_ = c.JSON(200, teamResponse(updated, user, true))
}

func (h *TeamHandler) Members(c *drift.Context) {
	team, _, ok := h.teamForMember(c)
	if !ok {
		return
	}

	members, err := h.teamService.Members(c.Request.Context(), team)
	if err != nil {
		c.InternalServerError("failed to get members")
		return
	}

	response := make([]dto.TeamMemberResponse, len(members))
	for i, m := range members {
		response[i] = dto.TeamMemberResponse{
			UserID: m.ID,
			Email:  m.Email,
			Name:   m.Name,
			Role:   m.RoleFor(team.ID),
		}
	}
	_ = c.JSON(200, response)
}

// AddMember puts the owner of an email address on the team, creating
// the user record when the address is new, and emails them.
func (h *TeamHandler) AddMember(c *drift.Context) {
	team, user, ok := h.teamForMember(c)
	if !ok {
		return
	}
	if !user.IsManager(team.ID) {
		c.Forbidden("manager role required")
		return
	}

	var req dto.AddMemberRequest
	if err := c.BindJSON(&req); err != nil || req.Email == "" {
		c.BadRequest("email is required")
		return
	}

	member, _, err := h.teamService.AddMemberByEmail(c.Request.Context(), team, req.Email)
	if err != nil {
		c.InternalServerError("failed to add member")
		return
	}

	if h.emailService.IsConfigured() {
		joinURL := fmt.Sprintf("%s/teams/%s", h.frontendURL, team.ID)
		if err := h.emailService.SendTeamInvite(member.Email, team.Name, user.Name, joinURL); err != nil {
			h.log.WithError(err).Warn("failed to send invite email")
		}
	}

	_ = c.JSON(201, dto.TeamMemberResponse{
		UserID: member.ID,
		Email:  member.Email,
		Name:   member.Name,
		Role:   member.RoleFor(team.ID),
	})
}

func (h *TeamHandler) RemoveMember(c *drift.Context) {
	team, user, ok := h.teamForMember(c)
	if !ok {
		return
	}
	if !user.IsManager(team.ID) {
		c.Forbidden("manager role required")
		return
	}

	memberID, err := uuid.Parse(c.Param("memberId"))
	if err != nil {
		c.BadRequest("invalid member id")
		return
	}
	if memberID == user.ID {
		c.BadRequest("use leave to remove yourself")
		return
	}

	if err := h.teamService.RemoveMember(c.Request.Context(), team, memberID); err != nil {
		c.InternalServerError("failed to remove member")
		return
	}
	_ = c.JSON(200, map[string]string{"message": "member removed"})
}

func (h *TeamHandler) Join(c *drift.Context) {
	user, ok := h.actingUser(c)
	if !ok {
		return
	}

	var req dto.JoinTeamRequest
	if err := c.BindJSON(&req); err != nil || req.Code == "" {
		c.BadRequest("code is required")
		return
	}

	team, err := h.teamService.JoinByCode(c.Request.Context(), req.Code, user)
	if err != nil {
		if errors.Is(err, services.ErrInvalidJoinCode) || errors.Is(err, services.ErrTeamNotFound) {
			c.BadRequest("invalid join code")
			return
		}
		c.InternalServerError("failed to join team")
		return
	}

	_ = c.JSON(200, teamResponse(team, user, user.IsManager(team.ID)))
}

func (h *TeamHandler) RegenerateJoinCode(c *drift.Context) {
	team, user, ok := h.teamForMember(c)
	if !ok {
		return
	}
	if !user.IsManager(team.ID) {
		c.Forbidden("manager role required")
		return
	}

	if err := h.teamService.RegenerateJoinCode(c.Request.Context(), team); err != nil {
		c.InternalServerError("failed to regenerate join code")
		return
	}
	_ = c.JSON(200, teamResponse(team, user, true))
}

func (h *TeamHandler) Leave(c *drift.Context) {
	team, user, ok := h.teamForMember(c)
	if !ok {
		return
	}

	if err := h.teamService.Leave(c.Request.Context(), team, user); err != nil {
		c.InternalServerError("failed to leave team")
		return
	}
	_ = c.JSON(200, map[string]string{"message": "left team"})
}

// actingUser loads the authenticated user's record.
func (h *TeamHandler) actingUser(c *drift.Context) (*models.User, bool) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return nil, false
	}

	user, err := h.userService.GetByID(c.Request.Context(), userID)
	if err != nil {
		c.Unauthorized("not authenticated")
		return nil, false
	}
	return user, true
}

// teamForMember resolves the :id team and requires the acting user to
// be on it. Non-members get 404, not 403, so team ids don't leak.
func (h *TeamHandler) teamForMember(c *drift.Context) (*models.Team, *models.User, bool) {
	user, ok := h.actingUser(c)
	if !ok {
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

// teamResponse hides the join code from non-managers.
func teamResponse(team *models.Team, user *models.User, manager bool) dto.TeamResponse {
	resp := dto.TeamResponse{
		ID:         team.ID,
		Name:       team.Name,
		CutoffTime: team.CutoffTime,
		Role:       user.RoleFor(team.ID),
	}
	if manager {
		resp.JoinCode = team.JoinCode
	}
	return resp
}
