package passport

import (
	"context"
	"fmt"

	"github.com/temirov/git-passport/internal/gitrepo"
)

const (
	userNameConfigurationKeyConstant  = "user.name"
	userEmailConfigurationKeyConstant = "user.email"
	userConfigurationSectionConstant  = "user"

	identityReadErrorTemplateConstant    = "unable to read the local Git identity: %w"
	identityWriteErrorTemplateConstant   = "unable to write the local Git identity: %w"
	identityRemovalErrorTemplateConstant = "unable to remove the local Git identity: %w"
)

// GitIdentityApplier reads and writes the repository-local user identity
// through the git configuration gateway.
type GitIdentityApplier struct {
	gateway          GitConfigurationGateway
	workingDirectory string
}

// NewGitIdentityApplier constructs an applier bound to the provided
// repository working directory.
func NewGitIdentityApplier(gateway GitConfigurationGateway, workingDirectory string) (*GitIdentityApplier, error) {
	if gateway == nil {
		return nil, ErrGitGatewayNotConfigured
	}
	return &GitIdentityApplier{gateway: gateway, workingDirectory: workingDirectory}, nil
}

// CurrentIdentity returns the local user.name and user.email values. Unset
// fields come back empty.
func (applier *GitIdentityApplier) CurrentIdentity(executionContext context.Context) (Identity, error) {
	identityName, nameError := applier.gateway.GetConfigurationValue(executionContext, applier.workingDirectory, gitrepo.ConfigurationScopeLocal, userNameConfigurationKeyConstant)
	if nameError != nil {
		return Identity{}, fmt.Errorf(identityReadErrorTemplateConstant, nameError)
	}
	identityEmail, emailError := applier.gateway.GetConfigurationValue(executionContext, applier.workingDirectory, gitrepo.ConfigurationScopeLocal, userEmailConfigurationKeyConstant)
	if emailError != nil {
		return Identity{}, fmt.Errorf(identityReadErrorTemplateConstant, emailError)
	}
	return Identity{Name: identityName, Email: identityEmail}, nil
}

// Apply writes the passport's name and email into the local configuration.
// It reports false without writing when the identity already matches the
// passport on both fields.
func (applier *GitIdentityApplier) Apply(executionContext context.Context, selectedPassport Passport) (bool, error) {
	currentIdentity, identityError := applier.CurrentIdentity(executionContext)
	if identityError != nil {
		return false, identityError
	}
	if currentIdentity.MatchesPassport(selectedPassport) {
		return false, nil
	}
	if writeError := applier.gateway.SetLocalConfigurationValue(executionContext, applier.workingDirectory, userNameConfigurationKeyConstant, selectedPassport.Name); writeError != nil {
		return false, fmt.Errorf(identityWriteErrorTemplateConstant, writeError)
	}
	if writeError := applier.gateway.SetLocalConfigurationValue(executionContext, applier.workingDirectory, userEmailConfigurationKeyConstant, selectedPassport.Email); writeError != nil {
		return false, fmt.Errorf(identityWriteErrorTemplateConstant, writeError)
	}
	return true, nil
}

// Remove drops the local user section. ErrNothingToRemove reports the case
// where no identity was recorded.
func (applier *GitIdentityApplier) Remove(executionContext context.Context) error {
	sectionRemoved, removalError := applier.gateway.RemoveLocalSection(executionContext, applier.workingDirectory, userConfigurationSectionConstant)
	if removalError != nil {
		return fmt.Errorf(identityRemovalErrorTemplateConstant, removalError)
	}
	if !sectionRemoved {
		return ErrNothingToRemove
	}
	return nil
}
