package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dimitrije/standup-api/internal/middleware"
	"github.com/dimitrije/standup-api/internal/models"
	"github.com/dimitrije/standup-api/internal/services"
	"github.com/dimitrije/standup-api/pkg/dto"
	"github.com/dimitrije/standup-api/tests/testutil"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	driftmw "github.com/m1z23r/drift/pkg/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupStandupTest(t *testing.T) (*testutil.MockStandupService, *testutil.MockTeamService, *testutil.MockUserService, *testutil.MockKPIService, *StandupHandler, *services.JWTService) {
	t.Helper()
	mockStandupService := new(testutil.MockStandupService)
	mockTeamService := new(testutil.MockTeamService)
	mockUserService := new(testutil.MockUserService)
	mockKPIService := new(testutil.MockKPIService)
	handler := NewStandupHandler(mockStandupService, mockTeamService, mockUserService, mockKPIService)
	jwtSvc := services.NewJWTService("test-secret-key", 15*time.Minute, 24*time.Hour)
	return mockStandupService, mockTeamService, mockUserService, mockKPIService, handler, jwtSvc
}

// memberAndTeam builds a user holding the given role on a fresh team.
func memberAndTeam(role string) (*models.User, *models.Team) {
	user := &models.User{ID: uuid.New(), Email: "alice@example.com", Name: "Alice"}
	team := &models.Team{
		ID:         uuid.New(),
		Name:       "Platform",
		CutoffTime: "10:00",
		MemberIDs:  []uuid.UUID{user.ID},
	}
	user.AddMembership(team.ID, role)
	user.ActiveTeamID = team.ID
	return user, team
}

// tomorrow is a date whose cutoff cannot have passed yet.
func tomorrow() string {
	return time.Now().AddDate(0, 0, 1).Format(models.DateFormat)
}

func standupApp(handler *StandupHandler, jwtSvc *services.JWTService) http.Handler {
	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(middleware.Auth(jwtSvc))
	app.Get("/teams/:id/standups", handler.Dates)
	app.Get("/teams/:id/standups/today", handler.Today)
	app.Get("/teams/:id/standups/:date", handler.Get)
	app.Post("/teams/:id/standups/:date", handler.Create)
	app.Patch("/teams/:id/standups/:date/entries/:userId", handler.UpdateEntry)
	app.Get("/teams/:id/kpi", handler.KPI)
	return app
}

func TestStandupHandler_Get_Success(t *testing.T) {
	mockStandupService, mockTeamService, mockUserService, _, handler, jwtSvc := setupStandupTest(t)

	user, team := memberAndTeam(models.RoleMember)
	date := tomorrow()
	doc := &models.StandupDocument{
		TeamID:    team.ID,
		Date:      date,
		Version:   3,
		UpdatedAt: time.Now().UTC(),
		Rows: []models.StandupRow{
			{UserID: user.ID, Name: "Alice", Status: models.StatusMissing},
		},
	}

	mockUserService.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	mockTeamService.On("GetByID", mock.Anything, team.ID).Return(team, nil)
	mockStandupService.On("GetOrCreate", mock.Anything, team, date).Return(doc, nil)

	app := standupApp(handler, jwtSvc)
	token := generateTestToken(t, jwtSvc, user.ID, user.Email)
	req := httptest.NewRequest(http.MethodGet, "/teams/"+team.ID.String()+"/standups/"+date, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response dto.StandupResponse
	testutil.ParseJSON(t, rec, &response)
	assert.Equal(t, team.ID, response.TeamID)
	assert.Equal(t, "3", response.Version)
	assert.False(t, response.Locked)
	require.Len(t, response.Rows, 1)
	assert.Equal(t, models.StatusMissing, response.Rows[0].Status)

	mockStandupService.AssertExpectations(t)
}

func TestStandupHandler_Get_PastDateIsLocked(t *testing.T) {
	mockStandupService, mockTeamService, mockUserService, _, handler, jwtSvc := setupStandupTest(t)

	user, team := memberAndTeam(models.RoleMember)
	date := "2020-01-02"
	doc := &models.StandupDocument{TeamID: team.ID, Date: date, Version: 5}

	mockUserService.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	mockTeamService.On("GetByID", mock.Anything, team.ID).Return(team, nil)
	mockStandupService.On("GetOrCreate", mock.Anything, team, date).Return(doc, nil)

	app := standupApp(handler, jwtSvc)
	token := generateTestToken(t, jwtSvc, user.ID, user.Email)
	req := httptest.NewRequest(http.MethodGet, "/teams/"+team.ID.String()+"/standups/"+date, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response dto.StandupResponse
	testutil.ParseJSON(t, rec, &response)
	assert.True(t, response.Locked)
}

func TestStandupHandler_Get_InvalidDate(t *testing.T) {
	mockStandupService, mockTeamService, mockUserService, _, handler, jwtSvc := setupStandupTest(t)

	user, team := memberAndTeam(models.RoleMember)

	mockUserService.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	mockTeamService.On("GetByID", mock.Anything, team.ID).Return(team, nil)
	mockStandupService.On("GetOrCreate", mock.Anything, team, "not-a-date").Return(nil, services.ErrInvalidDate)

	app := standupApp(handler, jwtSvc)
	token := generateTestToken(t, jwtSvc, user.ID, user.Email)
	req := httptest.NewRequest(http.MethodGet, "/teams/"+team.ID.String()+"/standups/not-a-date", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "YYYY-MM-DD")
}

func TestStandupHandler_Get_NonMemberGets404(t *testing.T) {
	_, mockTeamService, mockUserService, _, handler, jwtSvc := setupStandupTest(t)

	user, _ := memberAndTeam(models.RoleMember)
	otherTeam := &models.Team{ID: uuid.New(), Name: "Other", CutoffTime: "10:00"}

	mockUserService.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	mockTeamService.On("GetByID", mock.Anything, otherTeam.ID).Return(otherTeam, nil)

	app := standupApp(handler, jwtSvc)
	token := generateTestToken(t, jwtSvc, user.ID, user.Email)
	req := httptest.NewRequest(http.MethodGet, "/teams/"+otherTeam.ID.String()+"/standups/"+tomorrow(), nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "team not found")
}

func TestStandupHandler_Create_Returns201(t *testing.T) {
	mockStandupService, mockTeamService, mockUserService, _, handler, jwtSvc := setupStandupTest(t)

	user, team := memberAndTeam(models.RoleMember)
	date := tomorrow()
	doc := &models.StandupDocument{TeamID: team.ID, Date: date, Version: 0}

	mockUserService.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	mockTeamService.On("GetByID", mock.Anything, team.ID).Return(team, nil)
	mockStandupService.On("GetOrCreate", mock.Anything, team, date).Return(doc, nil)

	app := standupApp(handler, jwtSvc)
	token := generateTestToken(t, jwtSvc, user.ID, user.Email)
	req := httptest.NewRequest(http.MethodPost, "/teams/"+team.ID.String()+"/standups/"+date, bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestStandupHandler_Dates_Success(t *testing.T) {
	mockStandupService, mockTeamService, mockUserService, _, handler, jwtSvc := setupStandupTest(t)

	user, team := memberAndTeam(models.RoleMember)

	mockUserService.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	mockTeamService.On("GetByID", mock.Anything, team.ID).Return(team, nil)
	mockStandupService.On("Dates", mock.Anything, team).Return([]string{"2026-08-25", "2026-08-26"}, nil)

	app := standupApp(handler, jwtSvc)
	token := generateTestToken(t, jwtSvc, user.ID, user.Email)
	req := httptest.NewRequest(http.MethodGet, "/teams/"+team.ID.String()+"/standups", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var response dto.StandupDatesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, []string{"2026-08-25", "2026-08-26"}, response.Dates)
}

func TestStandupHandler_UpdateEntry_Success(t *testing.T) {
	mockStandupService, mockTeamService, mockUserService, _, handler, jwtSvc := setupStandupTest(t)

	user, team := memberAndTeam(models.RoleMember)
	date := tomorrow()
	doc := &models.StandupDocument{
		TeamID:    team.ID,
		Date:      date,
		Version:   1,
		UpdatedAt: time.Now().UTC(),
		Rows: []models.StandupRow{
			{UserID: user.ID, Name: "Alice", Yesterday: "a", Today: "b", Blockers: "c", Status: models.StatusPrepared},
		},
	}

	mockUserService.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	mockTeamService.On("GetByID", mock.Anything, team.ID).Return(team, nil)
	mockStandupService.On("UpdateEntry", mock.Anything, team, date, user, user.ID, "a", "b", "c", "0").Return(doc, nil)

	app := standupApp(handler, jwtSvc)
	body, _ := json.Marshal(dto.UpdateEntryRequest{Yesterday: "a", Today: "b", Blockers: "c", Version: "0"})
	token := generateTestToken(t, jwtSvc, user.ID, user.Email)
	req := httptest.NewRequest(http.MethodPatch, "/teams/"+team.ID.String()+"/standups/"+date+"/entries/"+user.ID.String(), bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response dto.StandupResponse
	testutil.ParseJSON(t, rec, &response)
	assert.Equal(t, "1", response.Version)
	require.Len(t, response.Rows, 1)
	assert.Equal(t, models.StatusPrepared, response.Rows[0].Status)

	mockStandupService.AssertExpectations(t)
}

func TestStandupHandler_UpdateEntry_VersionConflict(t *testing.T) {
	mockStandupService, mockTeamService, mockUserService, _, handler, jwtSvc := setupStandupTest(t)

	user, team := memberAndTeam(models.RoleMember)
	date := tomorrow()
	current := &models.StandupDocument{TeamID: team.ID, Date: date, Version: 4}

	mockUserService.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	mockTeamService.On("GetByID", mock.Anything, team.ID).Return(team, nil)
	mockStandupService.On("UpdateEntry", mock.Anything, team, date, user, user.ID, "a", "b", "c", "2").Return(nil, services.ErrConflict)
	mockStandupService.On("GetOrCreate", mock.Anything, team, date).Return(current, nil)

	app := standupApp(handler, jwtSvc)
	body, _ := json.Marshal(dto.UpdateEntryRequest{Yesterday: "a", Today: "b", Blockers: "c", Version: "2"})
	token := generateTestToken(t, jwtSvc, user.ID, user.Email)
	req := httptest.NewRequest(http.MethodPatch, "/teams/"+team.ID.String()+"/standups/"+date+"/entries/"+user.ID.String(), bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)

	var response map[string]any
	testutil.ParseJSON(t, rec, &response)
	assert.Equal(t, "VERSION_CONFLICT", response["code"])
	assert.Equal(t, "4", response["current_version"])

	mockStandupService.AssertExpectations(t)
}

func TestStandupHandler_UpdateEntry_Forbidden(t *testing.T) {
	mockStandupService, mockTeamService, mockUserService, _, handler, jwtSvc := setupStandupTest(t)

	user, team := memberAndTeam(models.RoleMember)
	other := uuid.New()
	team.AddMember(other)
	date := tomorrow()

	mockUserService.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	mockTeamService.On("GetByID", mock.Anything, team.ID).Return(team, nil)
	mockStandupService.On("UpdateEntry", mock.Anything, team, date, user, other, "a", "b", "c", "").Return(nil, services.ErrForbidden)

	app := standupApp(handler, jwtSvc)
	body, _ := json.Marshal(dto.UpdateEntryRequest{Yesterday: "a", Today: "b", Blockers: "c"})
	token := generateTestToken(t, jwtSvc, user.ID, user.Email)
	req := httptest.NewRequest(http.MethodPatch, "/teams/"+team.ID.String()+"/standups/"+date+"/entries/"+other.String(), bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "your own entry")
}

func TestStandupHandler_UpdateEntry_CutoffLocked(t *testing.T) {
	mockStandupService, mockTeamService, mockUserService, _, handler, jwtSvc := setupStandupTest(t)

	user, team := memberAndTeam(models.RoleMember)
	date := "2020-01-02" // long past the cutoff

	mockUserService.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	mockTeamService.On("GetByID", mock.Anything, team.ID).Return(team, nil)

	app := standupApp(handler, jwtSvc)
	body, _ := json.Marshal(dto.UpdateEntryRequest{Yesterday: "a", Today: "b", Blockers: "c"})
	token := generateTestToken(t, jwtSvc, user.ID, user.Email)
	req := httptest.NewRequest(http.MethodPatch, "/teams/"+team.ID.String()+"/standups/"+date+"/entries/"+user.ID.String(), bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "CUTOFF_LOCKED")

	// The locked day never reaches the service.
	mockStandupService.AssertNotCalled(t, "UpdateEntry", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestStandupHandler_UpdateEntry_TargetNotOnTeam(t *testing.T) {
	mockStandupService, mockTeamService, mockUserService, _, handler, jwtSvc := setupStandupTest(t)

	user, team := memberAndTeam(models.RoleManager)
	stranger := uuid.New()
	date := tomorrow()

	mockUserService.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	mockTeamService.On("GetByID", mock.Anything, team.ID).Return(team, nil)
	mockStandupService.On("UpdateEntry", mock.Anything, team, date, user, stranger, "a", "b", "c", "").Return(nil, services.ErrNotOnTeam)

	app := standupApp(handler, jwtSvc)
	body, _ := json.Marshal(dto.UpdateEntryRequest{Yesterday: "a", Today: "b", Blockers: "c"})
	token := generateTestToken(t, jwtSvc, user.ID, user.Email)
	req := httptest.NewRequest(http.MethodPatch, "/teams/"+team.ID.String()+"/standups/"+date+"/entries/"+stranger.String(), bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "not on this team")
}

func TestStandupHandler_KPI_Success(t *testing.T) {
	_, mockTeamService, mockUserService, mockKPIService, handler, jwtSvc := setupStandupTest(t)

	user, team := memberAndTeam(models.RoleManager)
	report := &services.TeamKPI{
		TeamID: team.ID,
		Days:   2,
		Members: []services.MemberKPI{
			{UserID: user.ID, Name: "Alice", Prepared: 2, Rate: 1.0},
		},
	}

	mockUserService.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	mockTeamService.On("GetByID", mock.Anything, team.ID).Return(team, nil)
	mockKPIService.On("TeamCompliance", mock.Anything, team, "2026-08-01", "2026-08-27").Return(report, nil)

	app := standupApp(handler, jwtSvc)
	token := generateTestToken(t, jwtSvc, user.ID, user.Email)
	req := httptest.NewRequest(http.MethodGet, "/teams/"+team.ID.String()+"/kpi?from=2026-08-01&to=2026-08-27", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response services.TeamKPI
	testutil.ParseJSON(t, rec, &response)
	assert.Equal(t, 2, response.Days)
	require.Len(t, response.Members, 1)
	assert.Equal(t, 1.0, response.Members[0].Rate)

	mockKPIService.AssertExpectations(t)
}

func TestStandupHandler_KPI_BadRange(t *testing.T) {
	_, mockTeamService, mockUserService, mockKPIService, handler, jwtSvc := setupStandupTest(t)

	user, team := memberAndTeam(models.RoleMember)

	mockUserService.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	mockTeamService.On("GetByID", mock.Anything, team.ID).Return(team, nil)

	app := standupApp(handler, jwtSvc)
	token := generateTestToken(t, jwtSvc, user.ID, user.Email)
	req := httptest.NewRequest(http.MethodGet, "/teams/"+team.ID.String()+"/kpi?from=last-week", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	mockKPIService.AssertNotCalled(t, "TeamCompliance", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
