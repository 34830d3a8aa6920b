package handlers

import (
	"errors"

	"github.com/dimitrije/standup-api/internal/middleware"
	"github.com/dimitrije/standup-api/internal/models"
	"github.com/dimitrije/standup-api/internal/services"
	"github.com/dimitrije/standup-api/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

type UserHandler struct {
	userService UserServiceInterface
}

func NewUserHandler(userService UserServiceInterface) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) GetMe(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), userID)
	if err != nil {
		c.NotFound("user not found")
		return
	}

	_ = c.JSON(200, userResponse(user))
}

func (h *UserHandler) UpdateMe(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	var req dto.UpdateUserRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}
	if req.Name == "" {
		c.BadRequest("name is required")
		return
	}

	user, err := h.userService.UpdateName(c.Request.Context(), userID, req.Name)
	if err != nil {
		c.InternalServerError("failed to update user")
		return
	}

	_ = c.JSON(200, userResponse(user))
}

// SetActiveTeam switches which of the user's memberships gates
// role-checked operations.
func (h *UserHandler) SetActiveTeam(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	var req dto.SetActiveTeamRequest
	if err := c.BindJSON(&req); err != nil || req.TeamID == uuid.Nil {
		c.BadRequest("team_id is required")
		return
	}

	user, err := h.userService.SetActiveTeam(c.Request.Context(), userID, req.TeamID)
	if err != nil {
		if errors.Is(err, services.ErrNotAMember) {
			c.BadRequest("not a member of that team")
			return
		}
		c.InternalServerError("failed to switch team")
		return
	}

	_ = c.JSON(200, userResponse(user))
}

func userResponse(user *models.User) dto.UserResponse {
	memberships := make([]dto.MembershipResponse, len(user.Memberships))
	for i, m := range user.Memberships {
		memberships[i] = dto.MembershipResponse{TeamID: m.TeamID, Role: m.Role}
	}
	return dto.UserResponse{
		ID:           user.ID,
		Email:        user.Email,
		Name:         user.Name,
		ActiveTeamID: user.ActiveTeamID,
		Memberships:  memberships,
	}
}
