package effects

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	inviteModel "github.com/festy23/squadup/internal/invite/model"
	teamModel "github.com/festy23/squadup/internal/team/model"
)

// LoggingAdapter is a no-op implementation of all three ports that only
// logs what it would do. It stands in until a real platform adapter
// (chat roles, channels, DMs) is plugged behind the same interfaces.
type LoggingAdapter struct {
	logger *zap.SugaredLogger
}

// NewLoggingAdapter creates a logging adapter.
func NewLoggingAdapter(logger *zap.SugaredLogger) *LoggingAdapter {
	return &LoggingAdapter{logger: logger}
}

// GrantAccess logs the grant request.
func (a *LoggingAdapter) GrantAccess(_ context.Context, team *teamModel.Team, userID string) error {
	a.logger.Infow("grant access", "team_id", team.TeamID, "user_id", userID)
	return nil
}

// RevokeAccess logs the revoke request.
func (a *LoggingAdapter) RevokeAccess(_ context.Context, team *teamModel.Team, userID string) error {
	a.logger.Infow("revoke access", "team_id", team.TeamID, "user_id", userID)
	return nil
}

// ProvisionResources returns synthetic resource handles.
func (a *LoggingAdapter) ProvisionResources(_ context.Context, team *teamModel.Team) (teamModel.ResourceRefs, error) {
	a.logger.Infow("provision resources", "team_id", team.TeamID, "team_name", team.Name)
	return teamModel.ResourceRefs{
		"channel": fmt.Sprintf("channel-%s", team.TeamID),
		"role":    fmt.Sprintf("role-%s", team.TeamID),
	}, nil
}

// RenameResources logs the rename request.
func (a *LoggingAdapter) RenameResources(_ context.Context, team *teamModel.Team) error {
	a.logger.Infow("rename resources", "team_id", team.TeamID, "team_name", team.Name)
	return nil
}

// TeardownResources logs the teardown request.
func (a *LoggingAdapter) TeardownResources(_ context.Context, team *teamModel.Team) error {
	a.logger.Infow("teardown resources", "team_id", team.TeamID)
	return nil
}

// NotifyUser logs the notification.
func (a *LoggingAdapter) NotifyUser(_ context.Context, userID, message string) error {
	a.logger.Infow("notify user", "user_id", userID, "message", message)
	return nil
}

// RenderInvitePrompt returns a synthetic prompt handle.
func (a *LoggingAdapter) RenderInvitePrompt(_ context.Context, invite *inviteModel.Invite) (string, error) {
	a.logger.Infow("render invite prompt", "invite_id", invite.ID, "invited_id", invite.InvitedID)
	return fmt.Sprintf("prompt-%s", invite.ID), nil
}

// UpdatePresentation logs the prompt update.
func (a *LoggingAdapter) UpdatePresentation(_ context.Context, invite *inviteModel.Invite, statusText string) error {
	a.logger.Infow("update presentation", "invite_id", invite.ID, "status_text", statusText)
	return nil
}

// ClearPresentation logs the prompt removal.
func (a *LoggingAdapter) ClearPresentation(_ context.Context, invite *inviteModel.Invite) error {
	a.logger.Infow("clear presentation", "invite_id", invite.ID)
	return nil
}
