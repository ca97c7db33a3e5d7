package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	inviteModel "github.com/festy23/squadup/internal/invite/model"
	teamModel "github.com/festy23/squadup/internal/team/model"
)

type mockEngine struct {
	mock.Mock
}

func (m *mockEngine) InviteMember(ctx context.Context, leaderID, invitedID string) (*inviteModel.Invite, error) {
	args := m.Called(ctx, leaderID, invitedID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inviteModel.Invite), args.Error(1)
}

func (m *mockEngine) AcceptInvite(ctx context.Context, invitedID, selector string) (*inviteModel.Invite, error) {
	args := m.Called(ctx, invitedID, selector)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inviteModel.Invite), args.Error(1)
}

func (m *mockEngine) DeclineInvite(ctx context.Context, invitedID, selector string) (*inviteModel.Invite, error) {
	args := m.Called(ctx, invitedID, selector)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inviteModel.Invite), args.Error(1)
}

var _ Engine = (*mockEngine)(nil)

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func postJSON(router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", path, bytes.NewBuffer(raw))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

var testInvite = &inviteModel.Invite{
	ID:        "inv1",
	TeamID:    "leader1",
	LeaderID:  "leader1",
	InvitedID: "user1",
	Status:    inviteModel.StatusPending,
	CreatedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
}

func TestHandler_InviteMember(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		eng := new(mockEngine)
		router := setupRouter()
		router.POST("/team/invite", New(eng, zap.NewNop().Sugar()).InviteMember)

		eng.On("InviteMember", mock.Anything, "leader1", "user1").Return(testInvite, nil)

		w := postJSON(router, "/team/invite", inviteModel.InviteMemberRequest{LeaderID: "leader1", UserID: "user1"})

		assert.Equal(t, http.StatusCreated, w.Code)
		var response map[string]inviteModel.InviteResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "inv1", response["invite"].ID)
		assert.Equal(t, inviteModel.StatusPending, response["invite"].Status)
		eng.AssertExpectations(t)
	})

	t.Run("on cooldown includes retry hint", func(t *testing.T) {
		eng := new(mockEngine)
		router := setupRouter()
		router.POST("/team/invite", New(eng, zap.NewNop().Sugar()).InviteMember)

		eng.On("InviteMember", mock.Anything, "leader1", "user1").
			Return(nil, &inviteModel.CooldownError{Remaining: 90 * time.Minute})

		w := postJSON(router, "/team/invite", inviteModel.InviteMemberRequest{LeaderID: "leader1", UserID: "user1"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var response struct {
			Error struct {
				Code string `json:"code"`
			} `json:"error"`
			RetryAfterSeconds int `json:"retry_after_seconds"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "ON_COOLDOWN", response.Error.Code)
		assert.Equal(t, 5400, response.RetryAfterSeconds)
	})

	cases := []struct {
		name string
		err  error
		code string
	}{
		{"not leader", teamModel.ErrNotLeader, "NOT_LEADER"},
		{"self invite", inviteModel.ErrSelfInvite, "SELF_INVITE"},
		{"already in team", teamModel.ErrAlreadyInTeam, "ALREADY_IN_TEAM"},
		{"team full", teamModel.ErrTeamFull, "TEAM_FULL"},
		{"invite pending", inviteModel.ErrInvitePending, "INVITE_PENDING"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			eng := new(mockEngine)
			router := setupRouter()
			router.POST("/team/invite", New(eng, zap.NewNop().Sugar()).InviteMember)

			eng.On("InviteMember", mock.Anything, "leader1", "user1").Return(nil, tc.err)

			w := postJSON(router, "/team/invite", inviteModel.InviteMemberRequest{LeaderID: "leader1", UserID: "user1"})

			assert.Equal(t, http.StatusBadRequest, w.Code)
			var response ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.Equal(t, tc.code, response.Error.Code)
		})
	}

	t.Run("invalid request body", func(t *testing.T) {
		eng := new(mockEngine)
		router := setupRouter()
		router.POST("/team/invite", New(eng, zap.NewNop().Sugar()).InviteMember)

		w := postJSON(router, "/team/invite", gin.H{"leader_id": "leader1"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		eng.AssertNotCalled(t, "InviteMember")
	})

	t.Run("internal error", func(t *testing.T) {
		eng := new(mockEngine)
		router := setupRouter()
		router.POST("/team/invite", New(eng, zap.NewNop().Sugar()).InviteMember)

		eng.On("InviteMember", mock.Anything, "leader1", "user1").Return(nil, errors.New("boom"))

		w := postJSON(router, "/team/invite", inviteModel.InviteMemberRequest{LeaderID: "leader1", UserID: "user1"})

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestHandler_AcceptInvite(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		eng := new(mockEngine)
		router := setupRouter()
		router.POST("/invite/accept", New(eng, zap.NewNop().Sugar()).AcceptInvite)

		accepted := testInvite.Clone()
		accepted.Status = inviteModel.StatusAccepted
		eng.On("AcceptInvite", mock.Anything, "user1", "").Return(accepted, nil)

		w := postJSON(router, "/invite/accept", inviteModel.InviteActionRequest{UserID: "user1"})

		assert.Equal(t, http.StatusOK, w.Code)
		var response map[string]inviteModel.InviteResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, inviteModel.StatusAccepted, response["invite"].Status)
		eng.AssertExpectations(t)
	})

	t.Run("selector is passed through", func(t *testing.T) {
		eng := new(mockEngine)
		router := setupRouter()
		router.POST("/invite/accept", New(eng, zap.NewNop().Sugar()).AcceptInvite)

		eng.On("AcceptInvite", mock.Anything, "user1", "Alpha").Return(testInvite, nil)

		w := postJSON(router, "/invite/accept", inviteModel.InviteActionRequest{UserID: "user1", Team: "Alpha"})

		assert.Equal(t, http.StatusOK, w.Code)
		eng.AssertExpectations(t)
	})

	t.Run("no pending invite", func(t *testing.T) {
		eng := new(mockEngine)
		router := setupRouter()
		router.POST("/invite/accept", New(eng, zap.NewNop().Sugar()).AcceptInvite)

		eng.On("AcceptInvite", mock.Anything, "user1", "").Return(nil, inviteModel.ErrNoPendingInvite)

		w := postJSON(router, "/invite/accept", inviteModel.InviteActionRequest{UserID: "user1"})

		assert.Equal(t, http.StatusNotFound, w.Code)
		var response ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "NO_PENDING_INVITE", response.Error.Code)
	})

	t.Run("team full", func(t *testing.T) {
		eng := new(mockEngine)
		router := setupRouter()
		router.POST("/invite/accept", New(eng, zap.NewNop().Sugar()).AcceptInvite)

		eng.On("AcceptInvite", mock.Anything, "user1", "").Return(nil, teamModel.ErrTeamFull)

		w := postJSON(router, "/invite/accept", inviteModel.InviteActionRequest{UserID: "user1"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var response ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "TEAM_FULL", response.Error.Code)
	})

	t.Run("already in a team", func(t *testing.T) {
		eng := new(mockEngine)
		router := setupRouter()
		router.POST("/invite/accept", New(eng, zap.NewNop().Sugar()).AcceptInvite)

		eng.On("AcceptInvite", mock.Anything, "user1", "").Return(nil, teamModel.ErrAlreadyInTeam)

		w := postJSON(router, "/invite/accept", inviteModel.InviteActionRequest{UserID: "user1"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var response ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "ALREADY_IN_TEAM", response.Error.Code)
	})
}

func TestHandler_DeclineInvite(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		eng := new(mockEngine)
		router := setupRouter()
		router.POST("/invite/decline", New(eng, zap.NewNop().Sugar()).DeclineInvite)

		until := testInvite.CreatedAt.Add(24 * time.Hour)
		declined := testInvite.Clone()
		declined.Status = inviteModel.StatusDeclined
		declined.DeclinedUntil = &until
		eng.On("DeclineInvite", mock.Anything, "user1", "").Return(declined, nil)

		w := postJSON(router, "/invite/decline", inviteModel.InviteActionRequest{UserID: "user1"})

		assert.Equal(t, http.StatusOK, w.Code)
		var response map[string]inviteModel.InviteResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, inviteModel.StatusDeclined, response["invite"].Status)
		require.NotNil(t, response["invite"].DeclinedUntil)
		assert.True(t, response["invite"].DeclinedUntil.Equal(until))
		eng.AssertExpectations(t)
	})

	t.Run("no pending invite", func(t *testing.T) {
		eng := new(mockEngine)
		router := setupRouter()
		router.POST("/invite/decline", New(eng, zap.NewNop().Sugar()).DeclineInvite)

		eng.On("DeclineInvite", mock.Anything, "user1", "").Return(nil, inviteModel.ErrNoPendingInvite)

		w := postJSON(router, "/invite/decline", inviteModel.InviteActionRequest{UserID: "user1"})

		assert.Equal(t, http.StatusNotFound, w.Code)
		var response ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "NO_PENDING_INVITE", response.Error.Code)
	})
}
