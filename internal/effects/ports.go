// Package effects defines the side-effect ports the lifecycle engine emits
// to (platform access sync, notifications, invite presentation) and an
// asynchronous dispatcher that executes them after state commit.
package effects

import (
	"context"

	inviteModel "github.com/festy23/squadup/internal/invite/model"
	teamModel "github.com/festy23/squadup/internal/team/model"
)

// AccessSync grants and revokes a user's access to the team's external
// resources. All methods are best-effort; failures never roll back a
// committed state transition.
type AccessSync interface {
	// GrantAccess gives the user access to the team's channel resources.
	GrantAccess(ctx context.Context, team *teamModel.Team, userID string) error

	// RevokeAccess removes the user's access to the team's channel resources.
	RevokeAccess(ctx context.Context, team *teamModel.Team, userID string) error

	// ProvisionResources creates the team's external resources and returns
	// their opaque handles.
	ProvisionResources(ctx context.Context, team *teamModel.Team) (teamModel.ResourceRefs, error)

	// RenameResources renames the team's external resources.
	RenameResources(ctx context.Context, team *teamModel.Team) error

	// TeardownResources removes the team's external resources.
	TeardownResources(ctx context.Context, team *teamModel.Team) error
}

// Notifier delivers fire-and-forget user messages.
type Notifier interface {
	NotifyUser(ctx context.Context, userID, message string) error
}

// Presenter renders and updates invite prompts on the external platform.
type Presenter interface {
	// RenderInvitePrompt renders the prompt for a fresh invite and returns
	// an opaque handle for later updates.
	RenderInvitePrompt(ctx context.Context, invite *inviteModel.Invite) (string, error)

	// UpdatePresentation rewrites a rendered prompt with the given status text.
	UpdatePresentation(ctx context.Context, invite *inviteModel.Invite, statusText string) error

	// ClearPresentation removes a rendered prompt.
	ClearPresentation(ctx context.Context, invite *inviteModel.Invite) error
}
